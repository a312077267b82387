package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"parlmonitor/internal/bootstrap"
	"parlmonitor/internal/errs"
)

var syncJobs = []string{
	bootstrap.JobParliamentarians,
	bootstrap.JobCommittees,
	bootstrap.JobVoting,
	bootstrap.JobBusinessCache,
	bootstrap.JobBusinesses,
	bootstrap.JobSchedules,
	bootstrap.JobMonitoring,
	bootstrap.JobAll,
}

var syncCmd = &cobra.Command{
	Use:       "sync <job>",
	Short:     "Run one sync job now",
	Long:      "Runs a sync job in the foreground. Jobs: " + strings.Join(syncJobs, ", ") + ".",
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	ValidArgs: syncJobs,
	RunE: withApp(func(cmd *cobra.Command, app *bootstrap.App) error {
		ctx := cmd.Context()
		job := cmd.Flags().Arg(0)

		runErr := app.Scheduler.RunNow(ctx, job)

		status, found, err := app.Scheduler.LastStatus(ctx, job)
		if err != nil {
			return err
		}
		if found {
			if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%s run=%s took=%s\n",
				status.Job, status.RunID, status.FinishedAt.Sub(status.StartedAt).Round(time.Millisecond)); err != nil {
				return errs.Wrap(err, "write sync output")
			}
		}
		if runErr != nil {
			return errs.Wrapf(runErr, "sync %s", job)
		}
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(syncCmd)
}
