// Package unicache implements the content-addressed, block-deduplicated
// file cache: the Store/Retrieve/Remove engines that coordinate the
// block file and the index.
//
// A Cache is a thin coordinating layer in the manner of
// pkg/payload/service.go's PayloadService: it owns two collaborators
// (a block file and an index) and is responsible for keeping them
// consistent across a store/retrieve/remove operation, persisting the
// index once per operation, and translating low-level errors into the
// package's stable Error/Code vocabulary.
package unicache

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/cachelabs/unicache/internal/blockfile"
	"github.com/cachelabs/unicache/internal/chunker"
	"github.com/cachelabs/unicache/internal/digest"
	"github.com/cachelabs/unicache/internal/index"
	"github.com/cachelabs/unicache/internal/logger"
)

// EmptyFileDigest is the file identifier assigned to a zero-length file:
// the BLAKE3-256 digest of the empty byte string. It is a stable
// constant so callers can recognize an empty-file id without storing
// one first.
var EmptyFileDigest = digest.Empty.String()

// Options configures how a Cache is opened.
type Options struct {
	// BlockSize is the fixed block size used when splitting newly stored
	// files. It is only consulted when creating a brand new cache
	// directory; an existing cache's persisted block_size always wins
	// (see Strict for how to change that).
	BlockSize int

	// Strict, when true, makes Open fail with an InvalidArgument error
	// instead of silently honoring a persisted block_size that differs
	// from the configured one.
	Strict bool
}

// Cache is a single content-addressed, block-deduplicated store rooted
// at one directory on disk. It is not safe for concurrent use by
// multiple goroutines: callers that need concurrency should guard a
// Cache with a single sync.Mutex, the same recommendation the source
// design notes make for dittofs's own single-writer components.
type Cache struct {
	dir       string
	blockSize int
	bf        *blockfile.File
	ix        *index.Index
}

// Open opens (creating if necessary) the cache rooted at dir.
func Open(dir string, opts Options) (*Cache, error) {
	if opts.BlockSize <= 0 {
		return nil, newInvalidArgumentError(fmt.Sprintf("block size must be positive, got %d", opts.BlockSize))
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, newIOError(fmt.Sprintf("create cache directory %s: %v", dir, err))
	}

	indexPath := filepath.Join(dir, index.FileName)
	ix, err := index.Load(indexPath, opts.BlockSize)
	if err != nil {
		return nil, newIOError(fmt.Sprintf("load index: %v", err))
	}

	if ix.BlockSize != opts.BlockSize {
		if opts.Strict {
			return nil, newInvalidArgumentError(fmt.Sprintf(
				"cache block size %d does not match configured %d (strict mode)",
				ix.BlockSize, opts.BlockSize))
		}
		logger.Info("opening cache with persisted block size",
			"configured_block_size", opts.BlockSize,
			"persisted_block_size", ix.BlockSize)
	}

	bf, err := blockfile.Open(filepath.Join(dir, blockfile.FileName))
	if err != nil {
		return nil, newIOError(fmt.Sprintf("open block file: %v", err))
	}

	return &Cache{dir: dir, blockSize: ix.BlockSize, bf: bf, ix: ix}, nil
}

// Close releases the underlying block file handle. It does not persist
// the index; callers must have already called Save-triggering operations
// (every mutating Cache method persists the index itself before
// returning).
func (c *Cache) Close() error {
	if err := c.bf.Close(); err != nil {
		return newIOError(fmt.Sprintf("close block file: %v", err))
	}
	return nil
}

// BlockSize returns the cache's fixed block size.
func (c *Cache) BlockSize() int {
	return c.blockSize
}

func (c *Cache) indexPath() string {
	return filepath.Join(c.dir, index.FileName)
}

// StoreFile reads the entirety of r, splits it into fixed-size blocks,
// stores each not-already-present block's bytes in the block file, and
// registers fileID as referencing the resulting ordered digest list.
//
// If a block digest already exists in the index (because some other
// stored file shares that block), its bytes are not written again and
// its reference count is simply incremented: this is the cache's
// deduplication guarantee.
//
// If fileID is empty, one is derived the way the specification's
// language-neutral store_file(path, file_id?) describes an omitted id:
// the digest of the first block, or EmptyFileDigest for a zero-length
// input.
//
// StoreFile returns an AlreadyExists error, leaving the cache state
// untouched as if the call had never happened, if the (possibly
// derived) fileID is already registered.
func (c *Cache) StoreFile(fileID string, r io.Reader) (*index.FileRecord, error) {
	return c.storeReader(fileID, "", r)
}

// StorePath opens the file at path and stores its contents the way
// StoreFile does, additionally recording the path's basename as the
// FileRecord's Name. If fileID is empty, one is derived as in StoreFile.
func (c *Cache) StorePath(path string, fileID string) (*index.FileRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, newIOError(fmt.Sprintf("open %s: %v", path, err))
	}
	defer f.Close()

	return c.storeReader(fileID, filepath.Base(path), f)
}

func (c *Cache) storeReader(fileID, name string, r io.Reader) (*index.FileRecord, error) {
	if fileID != "" && c.ix.HasFile(fileID) {
		return nil, newAlreadyExistsError(fileID)
	}

	seq, errFn := chunker.Chunks(r, c.blockSize)

	var (
		digests      []string
		totalSize    uint64
		createdRefs  []string // digests this call created (for rollback)
		incrementRef []string // digests this call only incremented (for rollback)
	)

	rollback := func() {
		for _, d := range createdRefs {
			_ = c.ix.ReleaseBlock(d)
		}
		for _, d := range incrementRef {
			_ = c.ix.ReleaseBlock(d)
		}
	}

	for chunk := range seq {
		sum := digest.Sum(chunk.Data)
		hexDigest := sum.String()

		if _, exists := c.ix.Block(hexDigest); !exists {
			offset, err := c.bf.Append(chunk.Data)
			if err != nil {
				rollback()
				return nil, newIOError(fmt.Sprintf("append block: %v", err))
			}
			c.ix.InsertBlockRef(hexDigest, offset, uint32(len(chunk.Data)))
			createdRefs = append(createdRefs, hexDigest)
		} else {
			c.ix.InsertBlockRef(hexDigest, 0, 0)
			incrementRef = append(incrementRef, hexDigest)
		}

		digests = append(digests, hexDigest)
		totalSize += uint64(len(chunk.Data))
	}

	if err := errFn(); err != nil {
		rollback()
		return nil, newIOError(fmt.Sprintf("read input: %v", err))
	}

	if fileID == "" {
		if len(digests) > 0 {
			fileID = digests[0]
		} else {
			fileID = EmptyFileDigest
		}
	}

	rec := &index.FileRecord{Name: name, Size: totalSize, Blocks: digests}
	if err := c.ix.RegisterFile(fileID, rec); err != nil {
		rollback()
		return nil, newAlreadyExistsError(fileID)
	}

	if err := c.ix.Save(c.indexPath()); err != nil {
		_, _ = c.ix.UnregisterFile(fileID)
		rollback()
		return nil, newIOError(fmt.Sprintf("save index: %v", err))
	}

	return rec, nil
}

// RetrieveFile writes fileID's content to w, in order, reading each
// block from the block file. If verify is true, each block's bytes are
// re-hashed and compared against its recorded digest before being
// written, returning a Corrupt error on the first mismatch.
func (c *Cache) RetrieveFile(fileID string, w io.Writer, verify bool) error {
	rec, err := c.ix.LookupFile(fileID)
	if err != nil {
		return newNotFoundError(fileID)
	}

	var total uint64
	for _, blockDigest := range rec.Blocks {
		block, ok := c.ix.Block(blockDigest)
		if !ok {
			return newCorruptError(fileID, fmt.Sprintf("missing block record for digest %s", blockDigest))
		}

		data, err := c.bf.ReadAt(block.Offset, block.Size)
		if err != nil {
			return newIOError(fmt.Sprintf("read block %s: %v", blockDigest, err))
		}

		if verify {
			sum := digest.Sum(data)
			if sum.String() != blockDigest {
				return newCorruptError(fileID, fmt.Sprintf("block %s failed verification", blockDigest))
			}
		}

		if _, err := w.Write(data); err != nil {
			return newIOError(fmt.Sprintf("write output: %v", err))
		}
		total += uint64(len(data))
	}

	if total != rec.Size {
		return newCorruptError(fileID, fmt.Sprintf("reconstructed %d bytes, file record declares %d", total, rec.Size))
	}

	return nil
}

// RemoveFile unregisters fileID and decrements the reference count of
// every block it referenced, deleting any block whose count reaches
// zero. It does not reclaim the disk space of deleted blocks (the
// block file only ever grows; see spec Non-goals on compaction).
func (c *Cache) RemoveFile(fileID string) error {
	rec, err := c.ix.UnregisterFile(fileID)
	if err != nil {
		return newNotFoundError(fileID)
	}

	for _, blockDigest := range rec.Blocks {
		if err := c.ix.ReleaseBlock(blockDigest); err != nil && !errors.Is(err, index.ErrBlockNotFound) {
			return newIOError(fmt.Sprintf("release block %s: %v", blockDigest, err))
		}
	}

	if err := c.ix.Save(c.indexPath()); err != nil {
		return newIOError(fmt.Sprintf("save index: %v", err))
	}

	return nil
}

// Exists reports whether fileID is currently registered.
func (c *Cache) Exists(fileID string) bool {
	return c.ix.HasFile(fileID)
}

// ListFiles returns every registered file id, in no particular order.
func (c *Cache) ListFiles() []string {
	return c.ix.ListFileIDs()
}

// Lookup returns the FileRecord for fileID, for callers (the CLI's
// `list` command) that need block-level detail rather than just the id.
func (c *Cache) Lookup(fileID string) (*index.FileRecord, error) {
	rec, err := c.ix.LookupFile(fileID)
	if err != nil {
		return nil, newNotFoundError(fileID)
	}
	return rec, nil
}

// Verify re-reads and re-hashes every block of fileID, returning a
// Corrupt error describing the first mismatch found, or nil if the
// file reconstructs cleanly. It is the standalone equivalent of calling
// RetrieveFile with verify=true against io.Discard.
func (c *Cache) Verify(fileID string) error {
	return c.RetrieveFile(fileID, io.Discard, true)
}

// Stats summarizes the cache's current contents.
type Stats struct {
	BlockCount    int    `json:"block_count"`
	FileCount     int    `json:"file_count"`
	PhysicalBytes uint64 `json:"physical_bytes"`
	LogicalBytes  uint64 `json:"logical_bytes"`
	BlockSize     int    `json:"block_size"`
}

// Stats reports the cache's block/file counts and logical/physical
// byte totals. The difference between LogicalBytes and PhysicalBytes
// is the space saved by deduplication.
func (c *Cache) Stats() Stats {
	blocks, files := c.ix.Counts()
	return Stats{
		BlockCount:    blocks,
		FileCount:     files,
		PhysicalBytes: c.ix.PhysicalBytes(),
		LogicalBytes:  c.ix.LogicalBytes(),
		BlockSize:     c.blockSize,
	}
}
