package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var retrieveVerify bool

var retrieveCmd = &cobra.Command{
	Use:   "retrieve <id> <dest>",
	Short: "Reconstruct a stored file to <dest>",
	Args:  cobra.ExactArgs(2),
	RunE:  runRetrieve,
}

func init() {
	retrieveCmd.Flags().BoolVar(&retrieveVerify, "verify", false, "re-hash every block before writing it")
}

func runRetrieve(cmd *cobra.Command, args []string) error {
	id, dest := args[0], args[1]

	c, err := openCache()
	if err != nil {
		return err
	}
	defer c.Close()

	f, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("create %s: %w", dest, err)
	}
	defer f.Close()

	if err := c.RetrieveFile(id, f, retrieveVerify); err != nil {
		return fmt.Errorf("retrieve %s: %w", id, err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "retrieved %s to %s\n", id, dest)
	return nil
}
