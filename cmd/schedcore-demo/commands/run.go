package commands

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/jholhewres/schedcore/pkg/schedcore/activity"
	"github.com/jholhewres/schedcore/pkg/schedcore/config"
	"github.com/jholhewres/schedcore/pkg/schedcore/facade"
	"github.com/jholhewres/schedcore/pkg/schedcore/schedule"
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Load the config file and run every declared job until interrupted",
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, _ := cmd.Flags().GetString("config")
			verbose, _ := cmd.Flags().GetBool("verbose")
			return runJobs(path, verbose)
		},
	}
	return cmd
}

func runJobs(path string, verbose bool) error {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	cfg, err := config.Load(path)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	registry := facade.NewRegistry()
	var handles []*activity.Handle

	for _, jc := range cfg.Jobs {
		jc := jc
		task := func(scheduledAt time.Time) {
			slog.Info("job fired", "name", jc.Name, "scheduled_at", scheduledAt.Format(time.RFC3339), "command", jc.Command)
		}

		opts := facade.Options{
			Name:                    jc.Name,
			Timezone:                firstNonEmpty(jc.Timezone, cfg.DefaultTZ),
			NonexistentTimeStrategy: schedule.NonexistentTimeStrategy(jc.NonexistentTimeStrategy),
			Overlap:                 jc.Overlap,
			RunOnce:                 jc.RunOnce,
		}

		var h *activity.Handle
		var startErr error
		switch {
		case jc.Cron != "":
			h, startErr = registry.RunEvery(task, jc.Cron, opts)
		case jc.DelayMs > 0:
			h, startErr = registry.RunIn(task, facade.DelayMillis(jc.DelayMs), opts)
		default:
			startErr = fmt.Errorf("job %q declares neither cron nor delay_ms", jc.Name)
		}

		if startErr != nil {
			slog.Error("failed to start job", "name", jc.Name, "error", startErr)
			continue
		}
		slog.Info("job started", "name", jc.Name)
		handles = append(handles, h)
	}

	if len(handles) == 0 {
		slog.Warn("no jobs started, exiting")
		return nil
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	slog.Info("shutting down, cancelling jobs", "count", len(handles))
	for _, h := range handles {
		h.Cancel()
	}
	for _, h := range handles {
		<-h.Done()
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
