package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var verifyCmd = &cobra.Command{
	Use:   "verify <id>",
	Short: "Re-hash every block of a stored file and report any mismatch",
	Args:  cobra.ExactArgs(1),
	RunE:  runVerify,
}

func runVerify(cmd *cobra.Command, args []string) error {
	id := args[0]

	c, err := openCache()
	if err != nil {
		return err
	}
	defer c.Close()

	if err := c.Verify(id); err != nil {
		return fmt.Errorf("verify %s: %w", id, err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s: ok\n", id)
	return nil
}
