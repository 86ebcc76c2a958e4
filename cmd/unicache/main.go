// Command unicache is the CLI front-end for the content-addressed,
// block-deduplicated file cache implemented by internal/unicache.
package main

import (
	"fmt"
	"os"

	"github.com/cachelabs/unicache/cmd/unicache/commands"
)

// Build-time variables injected via ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	commands.Version = version
	commands.Commit = commit
	commands.Date = date

	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
