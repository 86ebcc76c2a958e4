package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cachelabs/unicache/internal/unicache"
)

var storeFileID string

var storeCmd = &cobra.Command{
	Use:   "store <path>",
	Short: "Store a file in the cache",
	Long: `Store splits the file at <path> into fixed-size blocks, writes any
block not already present, and registers the file under its id (derived
from the content if --id is omitted).`,
	Args: cobra.ExactArgs(1),
	RunE: runStore,
}

func init() {
	storeCmd.Flags().StringVar(&storeFileID, "id", "", "file id to register (default: derived from content)")
}

func runStore(cmd *cobra.Command, args []string) error {
	path := args[0]

	c, err := openCache()
	if err != nil {
		return err
	}
	defer c.Close()

	rec, err := c.StorePath(path, storeFileID)
	if err != nil {
		return fmt.Errorf("store %s: %w", path, err)
	}

	id := storeFileID
	if id == "" {
		if len(rec.Blocks) > 0 {
			id = rec.Blocks[0]
		} else {
			id = unicache.EmptyFileDigest
		}
	}

	fmt.Fprintf(cmd.OutOrStdout(), "stored %s as %s (%d bytes, %d blocks)\n", path, id, rec.Size, len(rec.Blocks))
	return nil
}

// openCache opens the cache directory named by the loaded configuration.
func openCache() (*unicache.Cache, error) {
	return unicache.Open(cfg.CacheDir, unicache.Options{
		BlockSize: int(cfg.BlockSize),
		Strict:    cfg.Strict,
	})
}
