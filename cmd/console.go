package cmd

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"parlmonitor/internal/bootstrap"
	"parlmonitor/internal/errs"
	"parlmonitor/internal/usecase/watchconsole"
)

var consoleCmd = &cobra.Command{
	Use:   "console",
	Short: "Interactive watch list with alerts",
	RunE: withApp(func(cmd *cobra.Command, app *bootstrap.App) error {
		userID, err := userFlag(cmd)
		if err != nil {
			return err
		}
		refresh, _ := cmd.Flags().GetDuration("refresh-interval")

		model := watchconsole.NewWatchModel(cmd.Context(), app.Tracking, watchconsole.Options{
			UserID:          userID,
			RefreshInterval: refresh,
		})
		program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(cmd.Context()))
		if _, err := program.Run(); err != nil {
			return errs.Wrap(err, "run watch console")
		}
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(consoleCmd)

	consoleCmd.Flags().Uint64("user", 0, "User id")
	consoleCmd.Flags().Duration("refresh-interval", 0, "Reload interval (default 30s)")
}
