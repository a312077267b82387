package cmd

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"parlmonitor/internal/domain/parliament"
	"parlmonitor/internal/ports"
)

func exportFixture() []ports.Alert {
	eventID := uint64(7)
	meeting := time.Date(2025, 4, 2, 0, 0, 0, 0, time.UTC)
	return []ports.Alert{
		{
			ID:             2,
			BusinessNumber: "24.3001",
			AlertType:      parliament.AlertCommitteeScheduled,
			Message:        "24.3001 wird am 02.04.2025 in der WAK-N behandelt",
			EventID:        &eventID,
			EventDate:      &meeting,
			CreatedAt:      time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC),
		},
		{
			ID:             1,
			BusinessNumber: "24.3001",
			AlertType:      parliament.AlertStatusChange,
			Message:        "Status: Im Rat noch nicht behandelt -> Erledigt",
			IsRead:         true,
			CreatedAt:      time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC),
		},
	}
}

func TestParseExportWindow(t *testing.T) {
	t.Parallel()

	window, err := parseExportWindow("2025-03-05", "2025-03-31T00:00:00Z")
	if err != nil {
		t.Fatalf("parseExportWindow() error = %v", err)
	}
	filtered := window.filter(exportFixture())
	if len(filtered) != 1 || filtered[0].ID != 2 {
		t.Fatalf("filtered = %+v, want only alert 2", filtered)
	}

	if _, err := parseExportWindow("2025-04-01", "2025-03-01"); err == nil {
		t.Fatalf("expected error for inverted window")
	}
	if _, err := parseExportWindow("yesterday", ""); err == nil || !strings.Contains(err.Error(), "--since") {
		t.Fatalf("expected --since parse error, got %v", err)
	}

	open, err := parseExportWindow("", "")
	if err != nil {
		t.Fatalf("parseExportWindow(empty) error = %v", err)
	}
	if got := open.filter(exportFixture()); len(got) != 2 {
		t.Fatalf("open window kept %d alerts, want 2", len(got))
	}
}

func TestMarshalAlertExport(t *testing.T) {
	t.Parallel()

	payload, err := marshalAlertExport(exportFixture(), "jsonl")
	if err != nil {
		t.Fatalf("marshalAlertExport(jsonl) error = %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(payload)), "\n")
	if len(lines) != 2 {
		t.Fatalf("jsonl lines = %d, want 2", len(lines))
	}

	var first alertExportItem
	if err := json.Unmarshal([]byte(lines[0]), &first); err != nil {
		t.Fatalf("unmarshal first line: %v", err)
	}
	if first.EventDate != "2025-04-02" || first.EventID == nil || *first.EventID != 7 {
		t.Fatalf("first = %+v, want event date and id", first)
	}
	if !strings.Contains(lines[1], "->") {
		t.Fatalf("html escaping should be off, got %s", lines[1])
	}
	if strings.Contains(lines[1], "event_date") {
		t.Fatalf("status alert should omit event_date, got %s", lines[1])
	}

	payload, err = marshalAlertExport(nil, "json")
	if err != nil {
		t.Fatalf("marshalAlertExport(json) error = %v", err)
	}
	if strings.TrimSpace(string(payload)) != "[]" {
		t.Fatalf("empty json export = %q, want []", payload)
	}

	if _, err := marshalAlertExport(nil, "csv"); err == nil {
		t.Fatalf("expected error for csv format")
	}
}
