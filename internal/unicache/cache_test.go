package unicache_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cachelabs/unicache/internal/unicache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T, blockSize int) *unicache.Cache {
	t.Helper()
	dir := t.TempDir()
	c, err := unicache.Open(dir, unicache.Options{BlockSize: blockSize})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestStoreAndRetrieve_RoundTrip(t *testing.T) {
	c := newTestCache(t, 4)
	content := "the quick brown fox jumps"

	_, err := c.StoreFile("f1", strings.NewReader(content))
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, c.RetrieveFile("f1", &out, false))
	assert.Equal(t, content, out.String())
}

func TestStoreFile_DuplicateIDFails(t *testing.T) {
	c := newTestCache(t, 4)
	require.NoError(t, storeString(c, "f1", "hello"))

	err := storeString(c, "f1", "different content")
	require.Error(t, err)
	assert.True(t, unicache.IsAlreadyExists(err))

	// Original content must be untouched.
	var out bytes.Buffer
	require.NoError(t, c.RetrieveFile("f1", &out, false))
	assert.Equal(t, "hello", out.String())
}

func TestStoreFile_DedupKeepsPhysicalBytesFlat(t *testing.T) {
	c := newTestCache(t, 4)
	require.NoError(t, storeString(c, "f1", "AAAABBBB"))
	before := c.Stats()

	require.NoError(t, storeString(c, "f2", "AAAACCCC"))
	after := c.Stats()

	// f2 shares the "AAAA" block with f1; only "CCCC" is new physical data.
	assert.Equal(t, before.PhysicalBytes+4, after.PhysicalBytes)
	assert.Equal(t, before.LogicalBytes+8, after.LogicalBytes)
}

func TestRetrieveFile_NotFound(t *testing.T) {
	c := newTestCache(t, 4)
	var out bytes.Buffer
	err := c.RetrieveFile("missing", &out, false)
	require.Error(t, err)
	assert.True(t, unicache.IsNotFound(err))
}

func TestRemoveFile_IsInverseOfStore(t *testing.T) {
	c := newTestCache(t, 4)
	require.NoError(t, storeString(c, "f1", "AAAABBBB"))
	statsAfterStore := c.Stats()
	assert.Equal(t, 2, statsAfterStore.BlockCount)

	require.NoError(t, c.RemoveFile("f1"))
	statsAfterRemove := c.Stats()
	assert.Equal(t, 0, statsAfterRemove.BlockCount)
	assert.Equal(t, 0, statsAfterRemove.FileCount)
	assert.False(t, c.Exists("f1"))
}

func TestRemoveFile_DoesNotEvictSharedBlocks(t *testing.T) {
	c := newTestCache(t, 4)
	require.NoError(t, storeString(c, "f1", "AAAABBBB"))
	require.NoError(t, storeString(c, "f2", "AAAACCCC"))

	require.NoError(t, c.RemoveFile("f1"))

	// "AAAA" is still referenced by f2 and must survive.
	var out bytes.Buffer
	require.NoError(t, c.RetrieveFile("f2", &out, false))
	assert.Equal(t, "AAAACCCC", out.String())

	stats := c.Stats()
	assert.Equal(t, 2, stats.BlockCount) // AAAA (shared) + CCCC
}

func TestRemoveFile_NotFound(t *testing.T) {
	c := newTestCache(t, 4)
	err := c.RemoveFile("missing")
	require.Error(t, err)
	assert.True(t, unicache.IsNotFound(err))
}

func TestStoreFile_EmptyContentUsesEmptyDigest(t *testing.T) {
	c := newTestCache(t, 4)
	require.NoError(t, storeString(c, "", ""))

	var out bytes.Buffer
	require.NoError(t, c.RetrieveFile(unicache.EmptyFileDigest, &out, false))
	assert.Equal(t, "", out.String())

	stats := c.Stats()
	assert.Equal(t, 0, stats.BlockCount)
	assert.Equal(t, 1, stats.FileCount)
}

func TestRetrieveFile_VerifyDetectsTamperedBlock(t *testing.T) {
	dir := t.TempDir()
	c, err := unicache.Open(dir, unicache.Options{BlockSize: 4})
	require.NoError(t, err)
	require.NoError(t, storeString(c, "f1", "AAAABBBB"))
	require.NoError(t, c.Close())

	// Corrupt the block file directly on disk.
	blockPath := filepath.Join(dir, "blocks.bin")
	data, err := os.ReadFile(blockPath)
	require.NoError(t, err)
	data[0] = 'Z'
	require.NoError(t, os.WriteFile(blockPath, data, 0o644))

	c, err = unicache.Open(dir, unicache.Options{BlockSize: 4})
	require.NoError(t, err)
	defer c.Close()

	var out bytes.Buffer
	err = c.RetrieveFile("f1", &out, true)
	require.Error(t, err)

	var uerr *unicache.Error
	require.ErrorAs(t, err, &uerr)
	assert.Equal(t, unicache.CodeCorrupt, uerr.Code)
}

func TestVerify_CleanFileReportsNoError(t *testing.T) {
	c := newTestCache(t, 4)
	require.NoError(t, storeString(c, "f1", "AAAABBBB"))
	assert.NoError(t, c.Verify("f1"))
}

func TestOpen_PersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	c, err := unicache.Open(dir, unicache.Options{BlockSize: 4})
	require.NoError(t, err)
	require.NoError(t, storeString(c, "f1", "AAAABBBB"))
	require.NoError(t, c.Close())

	reopened, err := unicache.Open(dir, unicache.Options{BlockSize: 999})
	require.NoError(t, err)
	defer reopened.Close()

	assert.Equal(t, 4, reopened.BlockSize()) // persisted block size wins
	var out bytes.Buffer
	require.NoError(t, reopened.RetrieveFile("f1", &out, false))
	assert.Equal(t, "AAAABBBB", out.String())
}

func TestOpen_StrictRejectsBlockSizeMismatch(t *testing.T) {
	dir := t.TempDir()
	c, err := unicache.Open(dir, unicache.Options{BlockSize: 4})
	require.NoError(t, err)
	require.NoError(t, c.Close())

	_, err = unicache.Open(dir, unicache.Options{BlockSize: 8, Strict: true})
	require.Error(t, err)
	var uerr *unicache.Error
	require.ErrorAs(t, err, &uerr)
	assert.Equal(t, unicache.CodeInvalidArgument, uerr.Code)
}

func TestListFiles_ReflectsRegisteredFiles(t *testing.T) {
	c := newTestCache(t, 4)
	require.NoError(t, storeString(c, "f1", "AAAA"))
	require.NoError(t, storeString(c, "f2", "BBBB"))

	ids := c.ListFiles()
	assert.ElementsMatch(t, []string{"f1", "f2"}, ids)
}

func storeString(c *unicache.Cache, id, content string) error {
	_, err := c.StoreFile(id, strings.NewReader(content))
	return err
}

func TestStoreFile_EmptyIDDerivesFromFirstBlock(t *testing.T) {
	c := newTestCache(t, 4)
	rec, err := c.StoreFile("", strings.NewReader("AAAABBBB"))
	require.NoError(t, err)
	assert.True(t, c.Exists(rec.Blocks[0]))

	// A second file with a distinct first block derives a distinct id and
	// stores independently alongside the first.
	other, err := c.StoreFile("", strings.NewReader("CCCCBBBB"))
	require.NoError(t, err)
	assert.NotEqual(t, rec.Blocks[0], other.Blocks[0])

	// A second file that happens to share its first block with an
	// already-registered derived id collides on that id: the file id is
	// the first block's digest, not a function of the whole content, so
	// two different files with the same leading block are indistinguishable
	// by derived id and the second store is rejected as AlreadyExists.
	_, err = c.StoreFile("", strings.NewReader("AAAACCCC"))
	var uerr *unicache.Error
	require.ErrorAs(t, err, &uerr)
	assert.Equal(t, unicache.CodeAlreadyExists, uerr.Code)
}

func TestStoreFile_EmptyInputUsesEmptyFileDigest(t *testing.T) {
	c := newTestCache(t, 4)
	rec, err := c.StoreFile("", strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, rec.Blocks)
	assert.Equal(t, uint64(0), rec.Size)
	assert.True(t, c.Exists(unicache.EmptyFileDigest))

	var out bytes.Buffer
	require.NoError(t, c.RetrieveFile(unicache.EmptyFileDigest, &out, false))
	assert.Equal(t, "", out.String())
}

func TestStorePath_UsesBasenameAsName(t *testing.T) {
	c := newTestCache(t, 4)
	dir := t.TempDir()
	path := filepath.Join(dir, "snapshot.bin")
	require.NoError(t, os.WriteFile(path, []byte("AAAABBBB"), 0o644))

	rec, err := c.StorePath(path, "f1")
	require.NoError(t, err)
	assert.Equal(t, "snapshot.bin", rec.Name)
}
