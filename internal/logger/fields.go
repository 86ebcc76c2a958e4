package logger

import (
	"log/slog"
)

// Standard field keys for structured logging across the cache engine, CLI,
// and HTTP introspection server. Use these keys consistently so log lines
// can be aggregated and queried by tooling outside this repository.
const (
	// Correlation
	KeyTraceID = "trace_id" // correlation id for one CLI invocation or HTTP request

	// Operation
	KeyOperation = "operation" // store, retrieve, remove, stats, verify
	KeyFileID    = "file_id"   // the logical file identifier an operation concerns
	KeyDigest    = "digest"    // a block's content digest (hex)

	// Cache contents
	KeyCacheDir   = "cache_dir"
	KeyBlockSize  = "block_size"
	KeyBlockCount = "block_count"
	KeyFileCount  = "file_count"
	KeyPhysical   = "physical_bytes"
	KeyLogical    = "logical_bytes"

	// I/O
	KeyOffset       = "offset"
	KeySize         = "size"
	KeyPath         = "path"
	KeyBytesRead    = "bytes_read"
	KeyBytesWritten = "bytes_written"

	// HTTP introspection server
	KeyHTTPMethod = "method"
	KeyHTTPPath   = "path_route"
	KeyHTTPStatus = "status"
	KeyRemoteAddr = "remote_addr"

	// Operation metadata
	KeyDurationMs = "duration_ms"
	KeyError      = "error"
	KeyErrorCode  = "error_code"
)

// Operation returns a slog.Attr for the operation name (store, retrieve, ...).
func Operation(op string) slog.Attr {
	return slog.String(KeyOperation, op)
}

// FileID returns a slog.Attr for a logical file identifier.
func FileID(id string) slog.Attr {
	return slog.String(KeyFileID, id)
}

// Digest returns a slog.Attr for a block's hex-encoded content digest.
func Digest(hex string) slog.Attr {
	return slog.String(KeyDigest, hex)
}

// CacheDir returns a slog.Attr for the cache directory path.
func CacheDir(dir string) slog.Attr {
	return slog.String(KeyCacheDir, dir)
}

// BlockSize returns a slog.Attr for the cache's configured block size.
func BlockSize(n int) slog.Attr {
	return slog.Int(KeyBlockSize, n)
}

// Offset returns a slog.Attr for a byte offset within the block file.
func Offset(off uint64) slog.Attr {
	return slog.Uint64(KeyOffset, off)
}

// Size returns a slog.Attr for a byte length.
func Size(n uint64) slog.Attr {
	return slog.Uint64(KeySize, n)
}

// Path returns a slog.Attr for a filesystem path.
func Path(p string) slog.Attr {
	return slog.String(KeyPath, p)
}

// BytesRead returns a slog.Attr for actual bytes read.
func BytesRead(n int) slog.Attr {
	return slog.Int(KeyBytesRead, n)
}

// BytesWritten returns a slog.Attr for actual bytes written.
func BytesWritten(n int) slog.Attr {
	return slog.Int(KeyBytesWritten, n)
}

// DurationMs returns a slog.Attr for an operation's duration in milliseconds.
func DurationMs(ms float64) slog.Attr {
	return slog.Float64(KeyDurationMs, ms)
}

// Err returns a slog.Attr for an error.
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.String(KeyError, err.Error())
}

// ErrorCode returns a slog.Attr for a unicache error code string
// (not_found, already_exists, invalid_argument, corrupt, io_error).
func ErrorCode(code string) slog.Attr {
	return slog.String(KeyErrorCode, code)
}

// HTTPMethod returns a slog.Attr for the HTTP request method.
func HTTPMethod(method string) slog.Attr {
	return slog.String(KeyHTTPMethod, method)
}

// HTTPPath returns a slog.Attr for the HTTP route path.
func HTTPPath(path string) slog.Attr {
	return slog.String(KeyHTTPPath, path)
}

// HTTPStatus returns a slog.Attr for the HTTP response status code.
func HTTPStatus(code int) slog.Attr {
	return slog.Int(KeyHTTPStatus, code)
}

// RemoteAddr returns a slog.Attr for the client's remote address.
func RemoteAddr(addr string) slog.Attr {
	return slog.String(KeyRemoteAddr, addr)
}
