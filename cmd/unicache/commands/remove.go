package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cachelabs/unicache/internal/cli/prompt"
)

var removeYes bool

var removeCmd = &cobra.Command{
	Use:   "remove <id>",
	Short: "Remove a stored file and release its block references",
	Args:  cobra.ExactArgs(1),
	RunE:  runRemove,
}

func init() {
	removeCmd.Flags().BoolVarP(&removeYes, "yes", "y", false, "skip the confirmation prompt")
}

func runRemove(cmd *cobra.Command, args []string) error {
	id := args[0]

	confirmed, err := prompt.ConfirmWithForce(fmt.Sprintf("Remove %s?", id), removeYes)
	if err != nil {
		return err
	}
	if !confirmed {
		fmt.Fprintln(cmd.OutOrStdout(), "aborted")
		return nil
	}

	c, err := openCache()
	if err != nil {
		return err
	}
	defer c.Close()

	if err := c.RemoveFile(id); err != nil {
		return fmt.Errorf("remove %s: %w", id, err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "removed %s\n", id)
	return nil
}
