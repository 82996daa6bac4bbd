// Package commands implements the schedcore-demo CLI using cobra.
package commands

import (
	"github.com/spf13/cobra"
)

// NewRootCmd builds the root command with every subcommand registered.
func NewRootCmd(version string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "schedcore-demo",
		Short: "Job scheduler demo CLI",
		Long: `schedcore-demo runs jobs and inspects cron schedules on top of the schedcore
library: one goroutine per job, a pure schedule evaluator, and an injectable
clock for deterministic testing.

Examples:
  schedcore-demo run --config config.yaml
  schedcore-demo schedule next "*/5 * * * *"
  schedcore-demo config init`,
		Version: version,
	}

	rootCmd.AddCommand(
		newRunCmd(),
		newScheduleCmd(),
		newConfigCmd(),
	)

	rootCmd.PersistentFlags().StringP("config", "c", "config.yaml", "path to the config file")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "enable debug logging")

	return rootCmd
}
