package ports

import (
	"context"
	"time"

	"parlmonitor/internal/domain/parliament"
)

type User struct {
	ID                 uint64
	Email              string
	DisplayName        string
	EmailAlertsEnabled bool
	// AlertTypes is the comma separated subset of alert types mailed to the user.
	AlertTypes string
	CreatedAt  time.Time
}

// TrackedBusiness is one (user, business_number) tracking row with the cached
// business metadata.
type TrackedBusiness struct {
	ID             uint64
	UserID         uint64
	BusinessNumber string
	parliament.BusinessDetails
	SubmissionDate *time.Time
	Priority       *int
	LastAPISync    *time.Time
	CreatedAt      time.Time
}

// TrackedUpdate carries the merged metadata written back to a tracking row.
// A nil LastAPISync leaves the stored timestamp untouched.
type TrackedUpdate struct {
	Details        parliament.BusinessDetails
	SubmissionDate *time.Time
	LastAPISync    *time.Time
}

type CachedBusiness struct {
	BusinessNumber string
	Title          string
	CreatedAt      time.Time
}

type UserRepository interface {
	CreateUser(ctx context.Context, user User) (User, error)
	GetUser(ctx context.Context, userID uint64) (User, error)
	ListUsers(ctx context.Context, userIDs []uint64) ([]User, error)
	UpdateNotificationSettings(ctx context.Context, userID uint64, enabled bool, alertTypes string) error
}

type TrackingRepository interface {
	// ListTrackedNumbers returns every distinct tracked business number, sorted.
	ListTrackedNumbers(ctx context.Context) ([]string, error)
	ListByNumber(ctx context.Context, businessNumber string) ([]TrackedBusiness, error)
	ListByUser(ctx context.Context, userID uint64) ([]TrackedBusiness, error)
	Exists(ctx context.Context, userID uint64, businessNumber string) (bool, error)
	Create(ctx context.Context, tracked TrackedBusiness) (TrackedBusiness, error)
	Delete(ctx context.Context, userID uint64, businessNumber string) error
	SetPriority(ctx context.Context, userID uint64, businessNumber string, priority *int) error
	UpdateDetails(ctx context.Context, trackedID uint64, update TrackedUpdate) error
	Get(ctx context.Context, userID uint64, businessNumber string) (TrackedBusiness, error)
	AddNote(ctx context.Context, note BusinessNote) (BusinessNote, error)
	// ListNotes returns the notes of one tracking row, newest first.
	ListNotes(ctx context.Context, trackedID uint64) ([]BusinessNote, error)
}

type BusinessNote struct {
	ID         uint64
	TrackedID  uint64
	UserID     uint64
	AuthorName string
	Content    string
	CreatedAt  time.Time
}

type BusinessCacheRepository interface {
	// InsertMissing stores pairs not yet cached and reports how many were new.
	InsertMissing(ctx context.Context, items []CachedBusiness) (int64, error)
	GetCached(ctx context.Context, businessNumber string) (CachedBusiness, error)
	SearchCached(ctx context.Context, text string, limit int) ([]CachedBusiness, error)
}
