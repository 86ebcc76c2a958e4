// Package blockfile implements the append-only, content-opaque byte store
// that backs a UniCache directory's blocks.bin file.
//
// The block file knows nothing about hashing, deduplication, or the index —
// it is a sequential append log with positional reads, in the same spirit as
// the durable append discipline of a write-ahead log: bytes are visible at
// their returned offset as soon as Append returns, and existing bytes are
// never rewritten or reclaimed.
package blockfile

import (
	"errors"
	"fmt"
	"io"
	"os"
)

// FileName is the conventional name of the block file within a cache directory.
const FileName = "blocks.bin"

// ErrClosed is returned by operations on a closed File.
var ErrClosed = errors.New("blockfile: closed")

// ErrShortRead is returned when a read range is not fully present in the file.
var ErrShortRead = errors.New("blockfile: requested range extends past end of file")

// File is a single append-only regular file opened for read, write, and
// positional access. It provides no deduplication and no knowledge of what
// the bytes mean; callers are responsible for tracking offsets and lengths.
type File struct {
	f      *os.File
	size   int64
	closed bool
}

// Open opens (creating if necessary) the block file at path.
func Open(path string) (*File, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, fmt.Errorf("blockfile: open %s: %w", path, err)
	}

	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("blockfile: stat %s: %w", path, err)
	}

	return &File{f: f, size: info.Size()}, nil
}

// Append writes data to the end of the file and returns the byte offset at
// which it begins. On successful return, the bytes are visible to
// subsequent ReadAt calls (flushed to the kernel; not necessarily to
// physical disk — matching the durability guarantee the specification
// requires and no more).
func (bf *File) Append(data []byte) (offset uint64, err error) {
	if bf.closed {
		return 0, ErrClosed
	}

	offset = uint64(bf.size)

	n, err := bf.f.WriteAt(data, bf.size)
	if err != nil {
		return 0, fmt.Errorf("blockfile: append: %w", err)
	}
	if n != len(data) {
		return 0, fmt.Errorf("blockfile: append: short write (%d of %d bytes)", n, len(data))
	}

	bf.size += int64(n)
	return offset, nil
}

// ReadAt reads exactly length bytes starting at offset. It fails with
// ErrShortRead if the requested range is not fully contained in the file.
func (bf *File) ReadAt(offset uint64, length uint32) ([]byte, error) {
	if bf.closed {
		return nil, ErrClosed
	}

	if length == 0 {
		return []byte{}, nil
	}

	if int64(offset)+int64(length) > bf.size {
		return nil, ErrShortRead
	}

	buf := make([]byte, length)
	n, err := bf.f.ReadAt(buf, int64(offset))
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("blockfile: read at %d: %w", offset, err)
	}
	if n != int(length) {
		return nil, ErrShortRead
	}

	return buf, nil
}

// Size returns the current length of the block file in bytes.
func (bf *File) Size() uint64 {
	return uint64(bf.size)
}

// Sync flushes any OS-buffered writes to the underlying device.
func (bf *File) Sync() error {
	if bf.closed {
		return ErrClosed
	}
	return bf.f.Sync()
}

// Close releases the underlying file descriptor. Subsequent operations
// return ErrClosed.
func (bf *File) Close() error {
	if bf.closed {
		return nil
	}
	bf.closed = true
	return bf.f.Close()
}
