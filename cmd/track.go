package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"parlmonitor/internal/bootstrap"
	"parlmonitor/internal/errs"
)

var trackCmd = &cobra.Command{
	Use:   "track <business-number>",
	Short: "Start tracking a business",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, app *bootstrap.App) error {
		userID, err := userFlag(cmd)
		if err != nil {
			return err
		}
		row, err := app.Tracking.Track(cmd.Context(), userID, cmd.Flags().Arg(0))
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "tracking %s: %s [%s]\n", row.BusinessNumber, row.Title, orDash(row.Status)); err != nil {
			return errs.Wrap(err, "write track output")
		}
		return nil
	}),
}

var untrackCmd = &cobra.Command{
	Use:   "untrack <business-number>",
	Short: "Stop tracking a business",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, app *bootstrap.App) error {
		userID, err := userFlag(cmd)
		if err != nil {
			return err
		}
		return app.Tracking.Untrack(cmd.Context(), userID, cmd.Flags().Arg(0))
	}),
}

var priorityCmd = &cobra.Command{
	Use:   "priority <business-number> <1|2|3|none>",
	Short: "Set or clear the priority of a tracked business",
	Args:  cobra.ExactArgs(2),
	RunE: withApp(func(cmd *cobra.Command, app *bootstrap.App) error {
		userID, err := userFlag(cmd)
		if err != nil {
			return err
		}
		var priority *int
		if raw := cmd.Flags().Arg(1); raw != "none" {
			p, err := strconv.Atoi(raw)
			if err != nil {
				return errs.Wrapf(err, "parse priority %q", raw)
			}
			priority = &p
		}
		return app.Tracking.SetPriority(cmd.Context(), userID, cmd.Flags().Arg(0), priority)
	}),
}

var trackedCmd = &cobra.Command{
	Use:   "tracked",
	Short: "List tracked businesses with their next event date",
	RunE: withApp(func(cmd *cobra.Command, app *bootstrap.App) error {
		userID, err := userFlag(cmd)
		if err != nil {
			return err
		}
		views, err := app.Tracking.ListTracked(cmd.Context(), userID)
		if err != nil {
			return err
		}

		rows := make([][]string, 0, len(views))
		for _, v := range views {
			priority := "-"
			if v.Priority != nil {
				priority = strconv.Itoa(*v.Priority)
			}
			rows = append(rows, []string{v.BusinessNumber, priority, orDash(v.Status), formatTime(v.NextEventDate), v.Title})
		}
		return renderTable(cmd.OutOrStdout(), []string{"Nummer", "Prio", "Status", "Nächster Termin", "Titel"}, rows)
	}),
}

func init() {
	for _, c := range []*cobra.Command{trackCmd, untrackCmd, priorityCmd, trackedCmd} {
		rootCmd.AddCommand(c)
		c.Flags().Uint64("user", 0, "User id")
	}
}
