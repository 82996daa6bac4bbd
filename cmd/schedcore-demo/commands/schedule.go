package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jholhewres/schedcore/pkg/schedcore/clock"
	"github.com/jholhewres/schedcore/pkg/schedcore/cronparse"
	"github.com/jholhewres/schedcore/pkg/schedcore/schedule"
)

// newScheduleCmd groups one-shot schedule inspection utilities. schedcore
// activities live inside a single process's memory (no persistence layer),
// so there is no cross-invocation "add"/"list"/"remove" here — use `run` to
// start jobs from a config file. What this does offer is a way to check a
// cron expression's next few occurrences before putting it in a config.
func newScheduleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Inspect cron expressions",
		Long: `Inspect cron expressions against the same evaluator the
scheduler uses at runtime.

Examples:
  schedcore-demo schedule next "*/5 * * * *"
  schedcore-demo schedule next "30 2 * * *" --timezone America/Chicago --count 5`,
	}

	cmd.AddCommand(newScheduleNextCmd())
	return cmd
}

func newScheduleNextCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "next <cron-expression>",
		Short: "Print the next N occurrences of a cron expression",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tz, _ := cmd.Flags().GetString("timezone")
			count, _ := cmd.Flags().GetInt("count")
			strategy, _ := cmd.Flags().GetString("nonexistent-time-strategy")

			ast, err := cronparse.Parse(args[0])
			if err != nil {
				return err
			}

			opts := schedule.Options{
				Timezone:                tz,
				NonexistentTimeStrategy: schedule.NonexistentTimeStrategy(strategy),
			}
			sched := schedule.CronSchedule{AST: ast}

			// Cron evaluation always resolves against the TimeScale's
			// current reading rather than an explicit "from" instant, so
			// walking forward means re-anchoring a fresh virtual clock at
			// the previous match each time (offset by a nanosecond so the
			// same instant doesn't match itself again).
			from := time.Now()
			for i := 0; i < count; i++ {
				scale := clock.NewVirtual(from.Add(time.Nanosecond), 1)
				result, err := schedule.NextFire(from, sched, opts, scale)
				if err != nil {
					return fmt.Errorf("no further matches after %d occurrence(s): %w", i, err)
				}
				fmt.Println(result.NextInstant.Format(time.RFC3339))
				from = result.NextInstant
			}
			return nil
		},
	}
	c.Flags().String("timezone", "Etc/UTC", "IANA timezone to interpret the expression in")
	c.Flags().Int("count", 3, "number of occurrences to print")
	c.Flags().String("nonexistent-time-strategy", "skip", "skip or adjust")
	return c
}
