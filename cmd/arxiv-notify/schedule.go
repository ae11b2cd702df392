package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const defaultSchedule = "0 8 * * *"

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Run the notifier on a cron schedule until interrupted",
	Long: `Schedule runs the same job as "run" on a standard five-field cron
expression (default: every day at 08:00 local time). A run that is still
going when the next one is due causes that tick to be skipped. Failed runs
are logged and the schedule continues.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		spec, _ := cmd.Flags().GetString("schedule")
		runNow, _ := cmd.Flags().GetBool("now")

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		c, err := newScheduler(ctx, spec, logger, func(ctx context.Context) {
			scheduledRun(ctx, logger, os.Stdout)
		})
		if err != nil {
			return err
		}

		if runNow {
			scheduledRun(ctx, logger, os.Stdout)
		}

		c.Start()
		logger.Info("scheduler started", zap.String("schedule", spec))
		<-ctx.Done()

		logger.Info("stopping scheduler")
		<-c.Stop().Done()
		return nil
	},
}

func init() {
	scheduleCmd.Flags().String("schedule", defaultSchedule, "cron expression (minute hour dom month dow)")
	scheduleCmd.Flags().Bool("now", false, "also run once immediately")

	rootCmd.AddCommand(scheduleCmd)
}

// newScheduler validates spec and registers job on a new cron scheduler.
// Overlapping runs are skipped.
func newScheduler(ctx context.Context, spec string, log *zap.Logger, job func(context.Context)) (*cron.Cron, error) {
	if _, err := cron.ParseStandard(spec); err != nil {
		return nil, fmt.Errorf("invalid schedule %q: %w", spec, err)
	}

	cl := cronLogger{log: log.Sugar()}
	c := cron.New(cron.WithLogger(cl), cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)))
	if _, err := c.AddFunc(spec, func() { job(ctx) }); err != nil {
		return nil, fmt.Errorf("scheduling job: %w", err)
	}
	return c, nil
}

// scheduledRun re-reads settings and the notifier config on every tick so
// edits take effect without a restart.
func scheduledRun(ctx context.Context, log *zap.Logger, out io.Writer) {
	report, err := executeRun(ctx, currentSettings(), loadedSecrets, log, false, out)
	if err != nil {
		log.Error("scheduled run failed", zap.Error(err))
		return
	}
	log.Info("scheduled run completed",
		zap.Int("articles", report.Articles()),
		zap.Int("recipients", report.Sent))
}

// cronLogger adapts zap to cron.Logger.
type cronLogger struct {
	log *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Errorw(msg, append(keysAndValues, "error", err)...)
}
