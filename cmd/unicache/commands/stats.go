package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cachelabs/unicache/internal/cli/output"
)

var statsJSON bool

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show block/file counts and logical/physical byte totals",
	RunE:  runStats,
}

func init() {
	statsCmd.Flags().BoolVar(&statsJSON, "json", false, "print as JSON instead of a table")
}

func runStats(cmd *cobra.Command, args []string) error {
	c, err := openCache()
	if err != nil {
		return err
	}
	defer c.Close()

	stats := c.Stats()

	if statsJSON {
		return output.PrintJSON(cmd.OutOrStdout(), stats)
	}

	var saved uint64
	if stats.LogicalBytes > stats.PhysicalBytes {
		saved = stats.LogicalBytes - stats.PhysicalBytes
	}

	return output.SimpleTable(cmd.OutOrStdout(), [][2]string{
		{"Cache dir", cfg.CacheDir},
		{"Block size", fmt.Sprintf("%d", stats.BlockSize)},
		{"Blocks", fmt.Sprintf("%d", stats.BlockCount)},
		{"Files", fmt.Sprintf("%d", stats.FileCount)},
		{"Physical bytes", fmt.Sprintf("%d", stats.PhysicalBytes)},
		{"Logical bytes", fmt.Sprintf("%d", stats.LogicalBytes)},
		{"Deduplication savings", fmt.Sprintf("%d bytes", saved)},
	})
}
