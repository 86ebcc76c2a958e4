// Package chunker splits an input byte stream into fixed-size blocks for
// the store engine.
//
// This mirrors the lazy range-over-func iterator shape used for block-range
// splitting elsewhere in this codebase's teacher lineage: no hashing or
// storage happens here, only partitioning. The final chunk is allowed to be
// shorter than blockSize; every other chunk is exactly blockSize.
package chunker

import (
	"fmt"
	"io"
)

// Chunk is one fixed-size segment of the input stream.
type Chunk struct {
	// Index is the zero-based position of this chunk within the stream.
	Index int
	// Data holds the chunk's bytes. Each chunk gets its own freshly
	// allocated slice, so callers may retain it after the loop body.
	Data []byte
}

// Chunks returns a lazy iterator over r split into blockSize-sized chunks,
// plus an Err accessor that reports any non-EOF read error encountered
// during iteration. Callers must check Err() after the range loop ends
// (range-over-func has no channel for mid-loop errors); a nil Err() after
// a complete iteration means the stream was fully and successfully
// consumed.
//
// The last chunk may be shorter than blockSize (but never zero, except
// when r has no bytes at all, in which case the sequence is empty).
//
// blockSize must be positive; Chunks panics otherwise, since this is a
// programmer error (the caller is expected to validate block_size before
// ever reaching the chunker — see unicache.Open).
func Chunks(r io.Reader, blockSize int) (seq func(yield func(Chunk) bool), errFn func() error) {
	if blockSize <= 0 {
		panic(fmt.Sprintf("chunker: blockSize must be positive, got %d", blockSize))
	}

	var readErr error

	seq = func(yield func(Chunk) bool) {
		buf := make([]byte, blockSize)
		index := 0

		for {
			n, err := io.ReadFull(r, buf)
			if n > 0 {
				data := make([]byte, n)
				copy(data, buf[:n])
				if !yield(Chunk{Index: index, Data: data}) {
					return
				}
				index++
			}

			if err == io.EOF || err == io.ErrUnexpectedEOF {
				return
			}
			if err != nil {
				readErr = err
				return
			}
		}
	}

	errFn = func() error { return readErr }
	return seq, errFn
}

// Count returns the number of chunks that Chunks would yield for a stream
// of the given total length, and the length of the last chunk (0 if
// length is 0). This mirrors the block-boundary arithmetic used by
// callers that need to predict block_list length without reading bytes.
func Count(length uint64, blockSize int) (count uint64, lastLen uint64) {
	if length == 0 {
		return 0, 0
	}
	bs := uint64(blockSize)
	count = (length + bs - 1) / bs
	lastLen = length - (count-1)*bs
	return count, lastLen
}
