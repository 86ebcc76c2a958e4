// Package digest computes content digests for the block store.
//
// UniCache addresses every block by the BLAKE3-256 hash of its bytes.
// This package is intentionally small: it has no knowledge of blocks,
// files, or the index — it is a pure function from bytes to a fixed-size
// digest.
package digest

import (
	"encoding/hex"
	"fmt"

	"lukechampine.com/blake3"
)

// Size is the length of a Digest in bytes (BLAKE3-256).
const Size = 32

// Digest is a 32-byte BLAKE3 content hash.
type Digest [Size]byte

// Sum computes the BLAKE3-256 digest of data.
func Sum(data []byte) Digest {
	return Digest(blake3.Sum256(data))
}

// String returns the lowercase hex encoding of the digest.
func (d Digest) String() string {
	return hex.EncodeToString(d[:])
}

// IsZero reports whether the digest is the zero value.
func (d Digest) IsZero() bool {
	return d == Digest{}
}

// Parse decodes a lowercase hex-encoded digest string.
func Parse(s string) (Digest, error) {
	var d Digest
	if len(s) != Size*2 {
		return d, fmt.Errorf("digest: invalid length %d, want %d", len(s), Size*2)
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return d, fmt.Errorf("digest: invalid hex encoding: %w", err)
	}
	copy(d[:], b)
	return d, nil
}

// Empty is the digest of the zero-length byte string.
// It is used as the stable file identifier for files with no content.
var Empty = Sum(nil)
