package cmd

import (
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"parlmonitor/internal/bootstrap"
	"parlmonitor/internal/bootstrap/logging"
	"parlmonitor/internal/errs"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the sync scheduler until interrupted",
	RunE: withApp(func(cmd *cobra.Command, app *bootstrap.App) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := app.Scheduler.Start(ctx); err != nil {
			return errs.Wrap(err, "start scheduler")
		}
		logging.Info(ctx, "scheduler running",
			slog.Int("interval_hours", app.Config.Sync.IntervalHours),
			slog.Int("discovery_cron_hour", app.Config.Sync.DiscoveryCronHour),
		)

		<-ctx.Done()
		logging.Info(ctx, "shutdown signal received")
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
