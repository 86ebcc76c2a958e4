package index

import (
	"os"
	"path/filepath"
	"testing"
)

func TestInsertBlockRef_FirstInsertCreates(t *testing.T) {
	ix := New(4)
	created := ix.InsertBlockRef("abcd", 0, 4)
	if !created {
		t.Error("expected first insert to report created=true")
	}
	rec, ok := ix.Block("abcd")
	if !ok {
		t.Fatal("block record missing after insert")
	}
	if rec.RefCount != 1 {
		t.Errorf("RefCount = %d, want 1", rec.RefCount)
	}
}

func TestInsertBlockRef_DuplicateIncrementsRefCount(t *testing.T) {
	ix := New(4)
	ix.InsertBlockRef("abcd", 0, 4)
	created := ix.InsertBlockRef("abcd", 99, 4)
	if created {
		t.Error("expected duplicate insert to report created=false")
	}
	rec, _ := ix.Block("abcd")
	if rec.RefCount != 2 {
		t.Errorf("RefCount = %d, want 2", rec.RefCount)
	}
	// Offset/size from the first insert must be preserved.
	if rec.Offset != 0 {
		t.Errorf("Offset changed on duplicate insert: got %d, want 0", rec.Offset)
	}
}

func TestReleaseBlock_RemovesAtZero(t *testing.T) {
	ix := New(4)
	ix.InsertBlockRef("abcd", 0, 4)
	ix.InsertBlockRef("abcd", 0, 4)

	if err := ix.ReleaseBlock("abcd"); err != nil {
		t.Fatalf("ReleaseBlock failed: %v", err)
	}
	if _, ok := ix.Block("abcd"); !ok {
		t.Error("block should still be present after first release (refcount 1)")
	}

	if err := ix.ReleaseBlock("abcd"); err != nil {
		t.Fatalf("ReleaseBlock failed: %v", err)
	}
	if _, ok := ix.Block("abcd"); ok {
		t.Error("block should be removed once refcount reaches 0")
	}
}

func TestReleaseBlock_NotFound(t *testing.T) {
	ix := New(4)
	if err := ix.ReleaseBlock("missing"); err != ErrBlockNotFound {
		t.Errorf("ReleaseBlock on missing digest = %v, want ErrBlockNotFound", err)
	}
}

func TestRegisterFile_DuplicateFails(t *testing.T) {
	ix := New(4)
	rec := &FileRecord{Name: "a", Size: 4, Blocks: []string{"abcd"}}
	if err := ix.RegisterFile("f1", rec); err != nil {
		t.Fatalf("RegisterFile failed: %v", err)
	}
	if err := ix.RegisterFile("f1", rec); err != ErrFileExists {
		t.Errorf("duplicate RegisterFile = %v, want ErrFileExists", err)
	}
}

func TestLookupFile_NotFound(t *testing.T) {
	ix := New(4)
	if _, err := ix.LookupFile("nope"); err != ErrFileNotFound {
		t.Errorf("LookupFile on missing id = %v, want ErrFileNotFound", err)
	}
}

func TestUnregisterFile_RemovesAndReturns(t *testing.T) {
	ix := New(4)
	rec := &FileRecord{Name: "a", Size: 4, Blocks: []string{"abcd"}}
	_ = ix.RegisterFile("f1", rec)

	got, err := ix.UnregisterFile("f1")
	if err != nil {
		t.Fatalf("UnregisterFile failed: %v", err)
	}
	if got.Name != "a" {
		t.Errorf("UnregisterFile returned wrong record: %+v", got)
	}
	if ix.HasFile("f1") {
		t.Error("file should no longer be registered")
	}

	if _, err := ix.UnregisterFile("f1"); err != ErrFileNotFound {
		t.Errorf("second UnregisterFile = %v, want ErrFileNotFound", err)
	}
}

func TestCounts_PhysicalAndLogicalBytes(t *testing.T) {
	ix := New(4)
	ix.InsertBlockRef("aaaa", 0, 4)
	ix.InsertBlockRef("bbbb", 4, 4)
	_ = ix.RegisterFile("f1", &FileRecord{Size: 8, Blocks: []string{"aaaa", "bbbb"}})

	blocks, files := ix.Counts()
	if blocks != 2 || files != 1 {
		t.Errorf("Counts() = (%d, %d), want (2, 1)", blocks, files)
	}
	if got := ix.PhysicalBytes(); got != 8 {
		t.Errorf("PhysicalBytes() = %d, want 8", got)
	}
	if got := ix.LogicalBytes(); got != 8 {
		t.Errorf("LogicalBytes() = %d, want 8", got)
	}
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, FileName)

	ix := New(16)
	ix.InsertBlockRef("aaaa", 0, 16)
	ix.InsertBlockRef("bbbb", 16, 10)
	_ = ix.RegisterFile("f1", &FileRecord{Name: "report.bin", Size: 26, Blocks: []string{"aaaa", "bbbb"}})

	if err := ix.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(path, 999) // configured size must be overridden by persisted value
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if loaded.BlockSize != 16 {
		t.Errorf("loaded BlockSize = %d, want 16 (persisted value should win)", loaded.BlockSize)
	}
	blocks, files := loaded.Counts()
	if blocks != 2 || files != 1 {
		t.Errorf("loaded Counts() = (%d, %d), want (2, 1)", blocks, files)
	}
	rec, err := loaded.LookupFile("f1")
	if err != nil {
		t.Fatalf("LookupFile after reload failed: %v", err)
	}
	if rec.Name != "report.bin" || rec.Size != 26 || len(rec.Blocks) != 2 {
		t.Errorf("reloaded file record mismatch: %+v", rec)
	}
}

func TestLoad_MissingFileReturnsEmptyIndex(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, FileName)

	ix, err := Load(path, 4096)
	if err != nil {
		t.Fatalf("Load on missing file failed: %v", err)
	}
	if ix.BlockSize != 4096 {
		t.Errorf("fresh Index BlockSize = %d, want 4096 (configured value)", ix.BlockSize)
	}
	blocks, files := ix.Counts()
	if blocks != 0 || files != 0 {
		t.Errorf("fresh Index Counts() = (%d, %d), want (0, 0)", blocks, files)
	}
}

func TestLoad_MalformedJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, FileName)
	if err := writeFile(path, "{not json"); err != nil {
		t.Fatalf("writeFile failed: %v", err)
	}

	if _, err := Load(path, 4); err == nil {
		t.Error("expected error loading malformed JSON")
	}
}

func TestLoad_IgnoresUnknownFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, FileName)
	body := `{"block_size": 8, "blocks": {}, "files": {}, "future_field": {"x": 1}}`
	if err := writeFile(path, body); err != nil {
		t.Fatalf("writeFile failed: %v", err)
	}

	ix, err := Load(path, 4)
	if err != nil {
		t.Fatalf("Load failed on document with unknown field: %v", err)
	}
	if ix.BlockSize != 8 {
		t.Errorf("BlockSize = %d, want 8", ix.BlockSize)
	}
}

func writeFile(path, content string) error {
	return os.WriteFile(path, []byte(content), 0o644)
}
