package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"parlmonitor/internal/bootstrap"
	"parlmonitor/internal/errs"
	"parlmonitor/internal/usecase/prediction"
)

var predictCmd = &cobra.Command{
	Use:   "predict <business-number>",
	Short: "Predict how members will vote on a business",
	Long: "Without --persons the members of the treating committee are predicted, " +
		"falling back to the whole first council. With --persons the listed members are predicted directly.",
	Args: cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, app *bootstrap.App) error {
		ctx := cmd.Context()
		persons, _ := cmd.Flags().GetInt64Slice("persons")
		authorGroup, _ := cmd.Flags().GetInt64("author-group")
		businessType, _ := cmd.Flags().GetString("type")

		var (
			result prediction.Result
			err    error
		)
		if len(persons) > 0 {
			result, err = app.Prediction.Predict(ctx, prediction.Request{
				BusinessNumber:    cmd.Flags().Arg(0),
				BusinessType:      businessType,
				AuthorGroupNumber: authorGroup,
				PersonNumbers:     persons,
			})
		} else {
			result, err = app.Prediction.PredictForBusiness(ctx, cmd.Flags().Arg(0))
		}
		if err != nil {
			return err
		}
		return printPrediction(cmd, result)
	}),
}

func printPrediction(cmd *cobra.Command, result prediction.Result) error {
	w := cmd.OutOrStdout()

	body := "Rat"
	if result.CommitteeName != "" {
		body = fmt.Sprintf("%s (%s)", result.CommitteeName, orDash(result.CommitteeAbbreviation))
	}
	source := "berechnet"
	if result.FromCache {
		source = "aus Cache"
	}
	if _, err := fmt.Fprintf(w, "%s  %s  Modell %s, %s\nJa gesamt: %s  Prognose: %s\n\n",
		result.BusinessNumber, body, result.ModelVersion, source,
		formatPercent(result.OverallYes), result.Outcome); err != nil {
		return errs.Wrap(err, "write prediction output")
	}

	factions := make([][]string, 0, len(result.Factions))
	for _, f := range result.Factions {
		factions = append(factions, []string{f.GroupAbbreviation, f.GroupName, strconv.Itoa(f.MemberCount), formatPercent(f.AvgYes), formatPercent(f.AvgNo)})
	}
	if err := renderTable(w, []string{"Fraktion", "Name", "Mitglieder", "Ja", "Nein"}, factions); err != nil {
		return err
	}

	if verbose, _ := cmd.Flags().GetBool("members"); !verbose {
		return nil
	}
	members := make([][]string, 0, len(result.Members))
	for _, m := range result.Members {
		members = append(members, []string{
			strconv.FormatInt(m.PersonNumber, 10),
			m.FirstName + " " + m.LastName,
			orDash(m.ParlGroupAbbreviation),
			orDash(m.CantonAbbreviation),
			formatPercent(m.Yes),
			formatPercent(m.No),
			formatPercent(m.Confidence),
		})
	}
	return renderTable(w, []string{"Person", "Name", "Fraktion", "Kanton", "Ja", "Nein", "Sicherheit"}, members)
}

func init() {
	rootCmd.AddCommand(predictCmd)

	predictCmd.Flags().Int64Slice("persons", nil, "Person numbers to predict instead of the treating body")
	predictCmd.Flags().Int64("author-group", 0, "Parliamentary group number of the author")
	predictCmd.Flags().String("type", "", "Restrict faction tendency to roll calls on this business type")
	predictCmd.Flags().Bool("members", false, "Also print the per-member table")
}
