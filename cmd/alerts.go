package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"parlmonitor/internal/bootstrap"
	"parlmonitor/internal/errs"
)

var alertsCmd = &cobra.Command{
	Use:   "alerts",
	Short: "Show a user's alerts, newest first",
	RunE: withApp(func(cmd *cobra.Command, app *bootstrap.App) error {
		userID, err := userFlag(cmd)
		if err != nil {
			return err
		}
		unread, _ := cmd.Flags().GetBool("unread")
		limit, _ := cmd.Flags().GetInt("limit")

		alerts, err := app.Tracking.ListAlerts(cmd.Context(), userID, unread, limit)
		if err != nil {
			return err
		}
		rows := make([][]string, 0, len(alerts))
		for _, a := range alerts {
			read := ""
			if !a.IsRead {
				read = "neu"
			}
			rows = append(rows, []string{strconv.FormatUint(a.ID, 10), read, a.CreatedAt.Format("2006-01-02 15:04"), a.BusinessNumber, string(a.AlertType), a.Message})
		}
		return renderTable(cmd.OutOrStdout(), []string{"ID", "", "Erstellt", "Nummer", "Typ", "Meldung"}, rows)
	}),
}

var alertsReadCmd = &cobra.Command{
	Use:   "read <alert-id>",
	Short: "Mark an alert as read",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, app *bootstrap.App) error {
		userID, err := userFlag(cmd)
		if err != nil {
			return err
		}
		alertID, err := strconv.ParseUint(cmd.Flags().Arg(0), 10, 64)
		if err != nil {
			return errs.Wrapf(err, "parse alert id %q", cmd.Flags().Arg(0))
		}
		if err := app.Tracking.MarkAlertRead(cmd.Context(), userID, alertID); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "alert %d marked read\n", alertID); err != nil {
			return errs.Wrap(err, "write alerts output")
		}
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(alertsCmd)
	alertsCmd.AddCommand(alertsReadCmd)

	alertsCmd.PersistentFlags().Uint64("user", 0, "User id")
	alertsCmd.Flags().Bool("unread", false, "Only unread alerts")
	alertsCmd.Flags().Int("limit", 50, "Maximum number of alerts")
}
