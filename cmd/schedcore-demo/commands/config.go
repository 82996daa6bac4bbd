package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	schedcorecfg "github.com/jholhewres/schedcore/pkg/schedcore/config"
	"github.com/jholhewres/schedcore/pkg/schedcore/cronparse"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the demo's config.yaml",
		Long: `Manage the schedcore-demo configuration file.

Examples:
  schedcore-demo config init
  schedcore-demo config show
  schedcore-demo config validate`,
	}

	cmd.AddCommand(
		newConfigInitCmd(),
		newConfigShowCmd(),
		newConfigValidateCmd(),
	)
	return cmd
}

func newConfigInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Write a default config.yaml",
		RunE: func(cmd *cobra.Command, _ []string) error {
			target, _ := cmd.Flags().GetString("config")

			if _, err := os.Stat(target); err == nil {
				return fmt.Errorf("%s already exists; remove it first or edit it directly", target)
			}

			cfg := schedcorecfg.Default()
			cfg.Jobs = []schedcorecfg.JobConfig{
				{Name: "heartbeat", Cron: "*/5 * * * *", Command: "log a heartbeat"},
			}

			data, err := yaml.Marshal(cfg)
			if err != nil {
				return fmt.Errorf("marshaling default config: %w", err)
			}
			if err := os.WriteFile(target, data, 0o644); err != nil {
				return fmt.Errorf("writing %s: %w", target, err)
			}
			fmt.Printf("wrote %s\n", target)
			return nil
		},
	}
}

func newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the resolved config",
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, _ := cmd.Flags().GetString("config")
			cfg, err := schedcorecfg.Load(path)
			if err != nil {
				return err
			}
			data, err := yaml.Marshal(cfg)
			if err != nil {
				return err
			}
			fmt.Print(string(data))
			return nil
		},
	}
}

func newConfigValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Load the config and check every job's cron expression",
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, _ := cmd.Flags().GetString("config")
			cfg, err := schedcorecfg.Load(path)
			if err != nil {
				return err
			}

			var problems int
			for _, job := range cfg.Jobs {
				if job.Cron == "" {
					continue
				}
				if _, err := cronparse.Parse(job.Cron); err != nil {
					fmt.Printf("job %q: %v\n", job.Name, err)
					problems++
				}
			}
			if problems > 0 {
				return fmt.Errorf("%d job(s) failed validation", problems)
			}
			fmt.Printf("%d job(s) OK\n", len(cfg.Jobs))
			return nil
		},
	}
}
