// Command schedcore-demo is the CLI front-end for the scheduler library: it
// loads a config file's static job declarations and runs them until
// interrupted, prints a cron expression's upcoming occurrences, and manages
// the config file. Running jobs cannot be inspected or cancelled one by one.
package main

import (
	"fmt"
	"os"

	"github.com/jholhewres/schedcore/cmd/schedcore-demo/commands"
)

// version is injected at build time via ldflags.
var version = "dev"

func main() {
	rootCmd := commands.NewRootCmd(version)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
