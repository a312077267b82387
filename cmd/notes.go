package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"parlmonitor/internal/bootstrap"
	"parlmonitor/internal/errs"
)

var notesCmd = &cobra.Command{
	Use:   "notes <business-number>",
	Short: "Show the notes on a tracked business, newest first",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, app *bootstrap.App) error {
		userID, err := userFlag(cmd)
		if err != nil {
			return err
		}
		notes, err := app.Tracking.ListNotes(cmd.Context(), userID, cmd.Flags().Arg(0))
		if err != nil {
			return err
		}

		rows := make([][]string, 0, len(notes))
		for _, n := range notes {
			rows = append(rows, []string{strconv.FormatUint(n.ID, 10), n.CreatedAt.Format("2006-01-02 15:04"), orDash(n.AuthorName), n.Content})
		}
		return renderTable(cmd.OutOrStdout(), []string{"ID", "Erstellt", "Von", "Notiz"}, rows)
	}),
}

var notesAddCmd = &cobra.Command{
	Use:   "add <business-number> <text>...",
	Short: "Add a note to a tracked business",
	Args:  cobra.MinimumNArgs(2),
	RunE: withApp(func(cmd *cobra.Command, app *bootstrap.App) error {
		userID, err := userFlag(cmd)
		if err != nil {
			return err
		}
		args := cmd.Flags().Args()
		note, err := app.Tracking.AddNote(cmd.Context(), userID, args[0], strings.Join(args[1:], " "))
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "note %d added to %s\n", note.ID, args[0]); err != nil {
			return errs.Wrap(err, "write notes output")
		}
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(notesCmd)
	notesCmd.AddCommand(notesAddCmd)

	notesCmd.PersistentFlags().Uint64("user", 0, "User id")
}
