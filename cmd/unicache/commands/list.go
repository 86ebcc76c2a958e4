package commands

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/cachelabs/unicache/internal/cli/output"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List every file registered in the cache",
	RunE:  runList,
}

func runList(cmd *cobra.Command, args []string) error {
	c, err := openCache()
	if err != nil {
		return err
	}
	defer c.Close()

	ids := c.ListFiles()
	sort.Strings(ids)

	table := output.NewTableData("ID", "NAME", "SIZE", "BLOCKS")
	for _, id := range ids {
		rec, err := c.Lookup(id)
		if err != nil {
			return fmt.Errorf("lookup %s: %w", id, err)
		}
		table.AddRow(id, rec.Name, fmt.Sprintf("%d", rec.Size), fmt.Sprintf("%d", len(rec.Blocks)))
	}

	return output.PrintTable(cmd.OutOrStdout(), table)
}
