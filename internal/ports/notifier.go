package ports

import (
	"context"
	"time"

	"parlmonitor/internal/domain/parliament"
)

type NotificationItem struct {
	BusinessNumber string
	BusinessTitle  string
	AlertType      parliament.AlertType
	Message        string
	EventDate      *time.Time
}

type Recipient struct {
	Email       string
	DisplayName string
}

// Notifier delivers one digest per user. Failures are logged by the caller and
// never retried inline.
type Notifier interface {
	Notify(ctx context.Context, to Recipient, items []NotificationItem) error
}
