package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"parlmonitor/internal/bootstrap"
	"parlmonitor/internal/errs"
)

var candidatesCmd = &cobra.Command{
	Use:   "candidates",
	Short: "List monitoring candidates found by the discovery job",
	RunE: withApp(func(cmd *cobra.Command, app *bootstrap.App) error {
		decision, _ := cmd.Flags().GetString("decision")
		rows, err := app.Monitor.ListCandidates(cmd.Context(), decision)
		if err != nil {
			return err
		}

		out := make([][]string, 0, len(rows))
		for _, c := range rows {
			out = append(out, []string{
				strconv.FormatUint(c.ID, 10),
				c.BusinessNumber,
				orDash(c.BusinessType),
				formatTime(c.SubmissionDate),
				string(c.Decision),
				c.Title,
			})
		}
		return renderTable(cmd.OutOrStdout(), []string{"ID", "Nummer", "Typ", "Eingereicht", "Entscheid", "Titel"}, out)
	}),
}

var candidatesDecideCmd = &cobra.Command{
	Use:       "decide <candidate-id> <accepted|rejected>",
	Short:     "Accept or reject a pending candidate",
	Args:      cobra.ExactArgs(2),
	ValidArgs: []string{"accepted", "rejected"},
	RunE: withApp(func(cmd *cobra.Command, app *bootstrap.App) error {
		userID, err := userFlag(cmd)
		if err != nil {
			return err
		}
		candidateID, err := strconv.ParseUint(cmd.Flags().Arg(0), 10, 64)
		if err != nil {
			return errs.Wrapf(err, "parse candidate id %q", cmd.Flags().Arg(0))
		}

		row, err := app.Monitor.DecideCandidate(cmd.Context(), candidateID, cmd.Flags().Arg(1), userID)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "candidate %d (%s) %s\n", row.ID, row.BusinessNumber, row.Decision); err != nil {
			return errs.Wrap(err, "write candidate output")
		}
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(candidatesCmd)
	candidatesCmd.AddCommand(candidatesDecideCmd)

	candidatesCmd.Flags().String("decision", "", "Filter by decision: pending (default), accepted or rejected")
	candidatesDecideCmd.Flags().Uint64("user", 0, "Deciding user id")
}
