package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"parlmonitor/internal/bootstrap"
	"parlmonitor/internal/bootstrap/logging"
	"parlmonitor/internal/errs"
	"parlmonitor/internal/ports"
)

var alertsExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export a user's alerts as json or jsonl",
	RunE: withApp(func(cmd *cobra.Command, app *bootstrap.App) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		userID, err := userFlag(cmd)
		if err != nil {
			return err
		}
		limit, _ := cmd.Flags().GetInt("limit")
		format, _ := cmd.Flags().GetString("format")
		outPath, _ := cmd.Flags().GetString("out")
		sinceRaw, _ := cmd.Flags().GetString("since")
		untilRaw, _ := cmd.Flags().GetString("until")

		format = strings.ToLower(strings.TrimSpace(format))
		if format == "" {
			format = "json"
		}
		if format != "json" && format != "jsonl" {
			return fmt.Errorf("unsupported format %q (expected: json or jsonl)", format)
		}

		window, err := parseExportWindow(sinceRaw, untilRaw)
		if err != nil {
			return err
		}

		alerts, err := app.Tracking.ListAlerts(ctx, userID, false, limit)
		if err != nil {
			logging.Error(ctx, "list alerts for export failed", slog.Any("err", errs.Loggable(err)))
			return err
		}

		payload, err := marshalAlertExport(window.filter(alerts), format)
		if err != nil {
			return err
		}

		writer, closeFn, err := resolveExportWriter(cmd, outPath)
		if err != nil {
			return err
		}
		if _, err := writer.Write(payload); err != nil {
			_ = closeFn()
			return errs.Wrap(err, "write alert export")
		}
		if err := closeFn(); err != nil {
			return errs.Wrap(err, "close alert export")
		}
		return nil
	}),
}

type alertExportItem struct {
	AlertID        uint64  `json:"alert_id"`
	BusinessNumber string  `json:"business_number"`
	AlertType      string  `json:"alert_type"`
	Message        string  `json:"message"`
	EventID        *uint64 `json:"event_id,omitempty"`
	EventDate      string  `json:"event_date,omitempty"`
	IsRead         bool    `json:"is_read"`
	CreatedAt      string  `json:"created_at"`
}

func init() {
	alertsCmd.AddCommand(alertsExportCmd)

	alertsExportCmd.Flags().Int("limit", 500, "Max alerts to export")
	alertsExportCmd.Flags().String("format", "json", "Output format: json|jsonl")
	alertsExportCmd.Flags().String("out", "", "Output file path (default: stdout)")
	alertsExportCmd.Flags().String("since", "", "Only alerts created at or after this time (RFC3339)")
	alertsExportCmd.Flags().String("until", "", "Only alerts created at or before this time (RFC3339)")
}

type exportWindow struct {
	since *time.Time
	until *time.Time
}

func parseExportWindow(sinceRaw string, untilRaw string) (exportWindow, error) {
	since, err := parseExportFlagTime("since", sinceRaw)
	if err != nil {
		return exportWindow{}, err
	}
	until, err := parseExportFlagTime("until", untilRaw)
	if err != nil {
		return exportWindow{}, err
	}
	if since != nil && until != nil && since.After(*until) {
		return exportWindow{}, fmt.Errorf("invalid time window: --since %q is after --until %q",
			since.UTC().Format(time.RFC3339), until.UTC().Format(time.RFC3339))
	}
	return exportWindow{since: since, until: until}, nil
}

func parseExportFlagTime(flagName string, value string) (*time.Time, error) {
	normalized := strings.TrimSpace(value)
	if normalized == "" {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, time.DateOnly} {
		if parsed, err := time.Parse(layout, normalized); err == nil {
			return &parsed, nil
		}
	}
	return nil, fmt.Errorf("invalid --%s value %q: expected RFC3339 timestamp or YYYY-MM-DD", flagName, normalized)
}

func (w exportWindow) filter(alerts []ports.Alert) []ports.Alert {
	if w.since == nil && w.until == nil {
		return alerts
	}
	out := make([]ports.Alert, 0, len(alerts))
	for _, a := range alerts {
		if w.since != nil && a.CreatedAt.Before(*w.since) {
			continue
		}
		if w.until != nil && a.CreatedAt.After(*w.until) {
			continue
		}
		out = append(out, a)
	}
	return out
}

func marshalAlertExport(alerts []ports.Alert, format string) ([]byte, error) {
	items := make([]alertExportItem, 0, len(alerts))
	for _, a := range alerts {
		item := alertExportItem{
			AlertID:        a.ID,
			BusinessNumber: a.BusinessNumber,
			AlertType:      string(a.AlertType),
			Message:        a.Message,
			EventID:        a.EventID,
			IsRead:         a.IsRead,
			CreatedAt:      a.CreatedAt.UTC().Format(time.RFC3339),
		}
		if a.EventDate != nil {
			item.EventDate = a.EventDate.UTC().Format(time.DateOnly)
		}
		items = append(items, item)
	}

	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)

	switch format {
	case "json":
		if err := encoder.Encode(items); err != nil {
			return nil, errs.Wrap(err, "encode alerts as json")
		}
	case "jsonl":
		for _, item := range items {
			if err := encoder.Encode(item); err != nil {
				return nil, errs.Wrap(err, "encode alerts as jsonl")
			}
		}
	default:
		return nil, fmt.Errorf("unsupported format %q", format)
	}
	return buf.Bytes(), nil
}

func resolveExportWriter(cmd *cobra.Command, outPath string) (io.Writer, func() error, error) {
	trimmed := strings.TrimSpace(outPath)
	if trimmed == "" {
		return cmd.OutOrStdout(), func() error { return nil }, nil
	}
	f, err := os.Create(trimmed)
	if err != nil {
		return nil, nil, errs.Wrapf(err, "open output file %q", trimmed)
	}
	return f, f.Close, nil
}
