package cmd

import (
	"bytes"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	domainprediction "parlmonitor/internal/domain/prediction"
	"parlmonitor/internal/usecase/prediction"
)

func TestRenderTable(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if err := renderTable(&buf, []string{"Nummer", "Titel"}, [][]string{{"24.3001", "Steuerreform"}}); err != nil {
		t.Fatalf("renderTable() error = %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Nummer", "24.3001", "Steuerreform"} {
		if !strings.Contains(out, want) {
			t.Fatalf("table missing %q:\n%s", want, out)
		}
	}
}

func TestFormatHelpers(t *testing.T) {
	t.Parallel()

	if got := formatPercent(0.5878); got != "58.8%" {
		t.Fatalf("formatPercent = %q, want 58.8%%", got)
	}
	if got := formatTime(nil); got != "-" {
		t.Fatalf("formatTime(nil) = %q, want -", got)
	}
	if got := orDash(""); got != "-" {
		t.Fatalf("orDash(empty) = %q, want -", got)
	}
}

func TestUserFlagRequired(t *testing.T) {
	t.Parallel()

	cmd := &cobra.Command{Use: "x"}
	cmd.Flags().Uint64("user", 0, "")
	if _, err := userFlag(cmd); err == nil {
		t.Fatalf("expected error without --user")
	}
	if err := cmd.ParseFlags([]string{"--user", "3"}); err != nil {
		t.Fatalf("ParseFlags() error = %v", err)
	}
	userID, err := userFlag(cmd)
	if err != nil || userID != 3 {
		t.Fatalf("userFlag = %d, %v; want 3", userID, err)
	}
}

func TestPrintPrediction(t *testing.T) {
	t.Parallel()

	cmd := &cobra.Command{Use: "predict"}
	cmd.Flags().Bool("members", false, "")
	if err := cmd.ParseFlags([]string{"--members"}); err != nil {
		t.Fatalf("ParseFlags() error = %v", err)
	}
	var buf bytes.Buffer
	cmd.SetOut(&buf)

	err := printPrediction(cmd, prediction.Result{
		BusinessNumber:        "24.3001",
		ModelVersion:          "statistical-v1",
		OverallYes:            0.7,
		Outcome:               domainprediction.OutcomeLikelyAccept,
		CommitteeName:         "Kommission für Wirtschaft und Abgaben NR",
		CommitteeAbbreviation: "WAK-N",
		Factions: []domainprediction.FactionSummary{
			{GroupAbbreviation: "S", GroupName: "Sozialdemokratische Fraktion", MemberCount: 1, AvgYes: 0.7, AvgNo: 0.28},
		},
		Members: []prediction.MemberPrediction{
			{PersonNumber: 4001, FirstName: "Anna", LastName: "Muster", ParlGroupAbbreviation: "S", Yes: 0.7, No: 0.28, Confidence: 0.9},
		},
	})
	if err != nil {
		t.Fatalf("printPrediction() error = %v", err)
	}
	out := buf.String()
	for _, want := range []string{"WAK-N", "likely-accept", "70.0%", "Anna Muster", "4001"} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
}
