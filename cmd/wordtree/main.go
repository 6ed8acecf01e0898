// Command wordtree converts Word documents to a structured document tree.
package main

import (
	"fmt"
	"os"

	"github.com/tsawler/wordtree/internal/cli"
)

// Version information, set with -ldflags at build time.
var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

func main() {
	rootCmd := cli.NewRootCommand(Version, Commit, BuildDate)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "wordtree:", err)
		os.Exit(1)
	}
}
