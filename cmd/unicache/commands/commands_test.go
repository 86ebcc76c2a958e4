package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runCLI executes the root command with args against the cache directory
// and config file under dir, returning combined stdout/stderr. Calls that
// share dir share the cache.
func runCLI(t *testing.T, dir string, args ...string) string {
	t.Helper()

	cacheDir := filepath.Join(dir, "cache")
	configPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte(
		"cache_dir: "+cacheDir+"\nblock_size: 4\nlogging:\n  level: ERROR\n  format: text\n"), 0o644))

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append([]string{"--config", configPath}, args...))

	err := rootCmd.Execute()
	require.NoError(t, err)
	return out.String()
}

func TestCLI_StoreListStatsRemove(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "hello.txt")
	require.NoError(t, os.WriteFile(path, []byte("AAAABBBB"), 0o644))

	storeOut := runCLI(t, dir, "store", path, "--id", "f1")
	assert.Contains(t, storeOut, "stored")

	listOut := runCLI(t, dir, "list")
	assert.Contains(t, listOut, "f1")

	statsOut := runCLI(t, dir, "stats")
	assert.Contains(t, statsOut, "Blocks")

	removeOut := runCLI(t, dir, "remove", "f1", "--yes")
	assert.Contains(t, removeOut, "removed f1")
}
