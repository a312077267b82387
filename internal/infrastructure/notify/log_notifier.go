// Package notify delivers alert digests to users.
package notify

import (
	"context"
	"log/slog"

	"parlmonitor/internal/bootstrap/logging"
	"parlmonitor/internal/ports"
)

// LogNotifier writes digests to the log instead of sending mail. It is used
// when no SMTP host is configured.
type LogNotifier struct{}

var _ ports.Notifier = LogNotifier{}

func (LogNotifier) Notify(ctx context.Context, to ports.Recipient, items []ports.NotificationItem) error {
	logCtx := logging.WithComponent(ctx, "notify.log")
	for _, item := range items {
		logging.Info(logCtx, "alert digest item",
			slog.String("to", to.Email),
			slog.String("business_number", item.BusinessNumber),
			slog.String("alert_type", string(item.AlertType)),
			slog.String("message", item.Message),
		)
	}
	return nil
}
