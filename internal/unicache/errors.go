package unicache

import "errors"

// Code categorizes a unicache Error the way callers (CLI commands, the
// HTTP introspection server) need to branch on outcome without string
// matching.
type Code int

const (
	// CodeNotFound indicates the requested file id is not registered.
	CodeNotFound Code = iota
	// CodeAlreadyExists indicates a file id is already registered.
	CodeAlreadyExists
	// CodeInvalidArgument indicates a caller-supplied parameter is malformed.
	CodeInvalidArgument
	// CodeCorrupt indicates the on-disk index and block file disagree in a
	// way that cannot be the result of ordinary operation (a missing block
	// record, a length mismatch on retrieve).
	CodeCorrupt
	// CodeIOError indicates a failure reading or writing the underlying
	// index document or block file.
	CodeIOError
)

func (c Code) String() string {
	switch c {
	case CodeNotFound:
		return "not_found"
	case CodeAlreadyExists:
		return "already_exists"
	case CodeInvalidArgument:
		return "invalid_argument"
	case CodeCorrupt:
		return "corrupt"
	case CodeIOError:
		return "io_error"
	default:
		return "unknown"
	}
}

// Sentinel errors, one per Code, in the manner of pkg/payload/errors.go's
// wrapped sentinels. Every *Error returned by this package wraps exactly
// one of these, so callers can test with errors.Is(err, unicache.ErrNotFound)
// instead of comparing error strings or reaching into Code.
var (
	ErrNotFound        = errors.New("file not found")
	ErrAlreadyExists   = errors.New("file already exists")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrCorrupt         = errors.New("cache corrupt")
	ErrIO              = errors.New("i/o error")
)

func codeForSentinel(err error) Code {
	switch err {
	case ErrNotFound:
		return CodeNotFound
	case ErrAlreadyExists:
		return CodeAlreadyExists
	case ErrInvalidArgument:
		return CodeInvalidArgument
	case ErrCorrupt:
		return CodeCorrupt
	default:
		return CodeIOError
	}
}

// Error is the domain error type returned by every Cache operation. Callers
// that need to branch on failure category should use errors.Is against one
// of the sentinels above, or errors.As to recover an *Error and inspect its
// Code and FileID, rather than comparing error strings.
type Error struct {
	Code    Code
	Message string
	FileID  string
	err     error
}

func (e *Error) Error() string {
	if e.FileID != "" {
		return e.Message + ": " + e.FileID
	}
	return e.Message
}

// Unwrap exposes the wrapped sentinel so errors.Is/errors.As see through
// an *Error to ErrNotFound, ErrAlreadyExists, etc.
func (e *Error) Unwrap() error {
	return e.err
}

func newError(sentinel error, message, fileID string) *Error {
	return &Error{Code: codeForSentinel(sentinel), Message: message, FileID: fileID, err: sentinel}
}

func newNotFoundError(fileID string) *Error {
	return newError(ErrNotFound, "file not found", fileID)
}

func newAlreadyExistsError(fileID string) *Error {
	return newError(ErrAlreadyExists, "file already exists", fileID)
}

func newInvalidArgumentError(message string) *Error {
	return newError(ErrInvalidArgument, message, "")
}

func newCorruptError(fileID, message string) *Error {
	return newError(ErrCorrupt, message, fileID)
}

func newIOError(message string) *Error {
	return newError(ErrIO, message, "")
}

// IsNotFound reports whether err is, or wraps, ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsAlreadyExists reports whether err is, or wraps, ErrAlreadyExists.
func IsAlreadyExists(err error) bool {
	return errors.Is(err, ErrAlreadyExists)
}
