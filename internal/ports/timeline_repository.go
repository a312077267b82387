package ports

import (
	"context"
	"time"

	"parlmonitor/internal/domain/parliament"
)

// BusinessEvent is one timeline entry, shared by every user tracking the number.
type BusinessEvent struct {
	ID             uint64
	BusinessNumber string
	EventType      parliament.EventType
	EventDate      *time.Time
	Description    string
	CommitteeName  string
	// DedupKey is set for schedule events only.
	DedupKey  *string
	RawData   []byte
	CreatedAt time.Time
}

// EventKey is the natural key used to decide whether a schedule event is new.
type EventKey struct {
	BusinessNumber string
	EventType      parliament.EventType
	Description    string
	CommitteeName  string
}

type Alert struct {
	ID             uint64
	UserID         uint64
	BusinessNumber string
	EventID        *uint64
	AlertType      parliament.AlertType
	Message        string
	EventDate      *time.Time
	IsRead         bool
	CreatedAt      time.Time
}

type AlertFilter struct {
	UserID     uint64
	UnreadOnly bool
	// VisibleFrom hides scheduled alerts whose event date lies before it.
	// Undated alerts and non-scheduled types are always visible.
	VisibleFrom *time.Time
	Limit       int
}

type EventRepository interface {
	EventExists(ctx context.Context, key EventKey) (bool, error)
	// CreateEvent reports inserted=false when an event with the same dedup key
	// already exists.
	CreateEvent(ctx context.Context, event BusinessEvent) (created BusinessEvent, inserted bool, err error)
	ListEvents(ctx context.Context, businessNumber string) ([]BusinessEvent, error)
	CountEvents(ctx context.Context, businessNumber string) (int64, error)
	// NextEventDates returns, per number, the earliest event date strictly after the given time.
	NextEventDates(ctx context.Context, businessNumbers []string, after time.Time) (map[string]time.Time, error)
}

type AlertRepository interface {
	CreateAlerts(ctx context.Context, alerts []Alert) ([]Alert, error)
	ListAlerts(ctx context.Context, filter AlertFilter) ([]Alert, error)
	MarkAlertRead(ctx context.Context, userID uint64, alertID uint64) error
}
