// Package tracking manages a user's watch list: adding and removing business
// numbers, priorities, and the alert inbox.
package tracking

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"parlmonitor/internal/bootstrap/logging"
	"parlmonitor/internal/domain/parliament"
	"parlmonitor/internal/errs"
	"parlmonitor/internal/ports"
)

type Service struct {
	users    ports.UserRepository
	tracking ports.TrackingRepository
	events   ports.EventRepository
	alerts   ports.AlertRepository
	cache    ports.BusinessCacheRepository
	gateway  ports.ParliamentGateway
	uow      ports.UnitOfWork
	now      func() time.Time
}

type Dependencies struct {
	Users         ports.UserRepository
	Tracking      ports.TrackingRepository
	Events        ports.EventRepository
	Alerts        ports.AlertRepository
	BusinessCache ports.BusinessCacheRepository
	Gateway       ports.ParliamentGateway
	UoW           ports.UnitOfWork
}

func NewService(deps Dependencies) *Service {
	return &Service{
		users:    deps.Users,
		tracking: deps.Tracking,
		events:   deps.Events,
		alerts:   deps.Alerts,
		cache:    deps.BusinessCache,
		gateway:  deps.Gateway,
		uow:      deps.UoW,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// TrackedView is a tracking row plus the earliest upcoming event date.
type TrackedView struct {
	ports.TrackedBusiness
	NextEventDate *time.Time
}

// Track adds a business to the user's list. The title is prefilled from the
// business cache (or the number itself), then details and status history are
// backfilled from upstream on a best-effort basis: a failing upstream never
// fails the call.
func (s *Service) Track(ctx context.Context, userID uint64, businessNumber string) (ports.TrackedBusiness, error) {
	if ctx == nil {
		return ports.TrackedBusiness{}, errors.New("context is required")
	}
	if s.uow == nil {
		return ports.TrackedBusiness{}, errors.New("unit of work is required")
	}
	number, err := parliament.ParseBusinessNumber(businessNumber)
	if err != nil {
		return ports.TrackedBusiness{}, err
	}

	var created ports.TrackedBusiness
	if err := s.uow.WithTx(ctx, func(txCtx context.Context) error {
		exists, err := s.tracking.Exists(txCtx, userID, number)
		if err != nil {
			return err
		}
		if exists {
			return ports.ErrAlreadyTracked
		}

		title := number
		if s.cache != nil {
			cached, err := s.cache.GetCached(txCtx, number)
			switch {
			case err == nil && cached.Title != "":
				title = cached.Title
			case err != nil && !errors.Is(err, ports.ErrNotFound):
				return err
			}
		}

		created, err = s.tracking.Create(txCtx, ports.TrackedBusiness{
			UserID:          userID,
			BusinessNumber:  number,
			BusinessDetails: parliament.BusinessDetails{Title: title},
		})
		return err
	}); err != nil {
		if errors.Is(err, ports.ErrAlreadyTracked) {
			return ports.TrackedBusiness{}, err
		}
		return ports.TrackedBusiness{}, errs.Wrapf(err, "track business %s", number)
	}

	logCtx := logging.WithComponent(ctx, "usecase.tracking")
	logging.Info(logCtx, "business tracked",
		slog.Uint64("user_id", userID),
		slog.String("business_number", number),
	)

	if err := s.backfill(ctx, &created); err != nil {
		logging.Warn(logCtx, "backfill failed",
			slog.String("business_number", number),
			slog.Any("err", errs.Loggable(err)),
		)
	}
	return created, nil
}

// backfill stores the status history when the number has no events yet and
// fills empty detail fields from upstream. Stored values are never replaced.
func (s *Service) backfill(ctx context.Context, row *ports.TrackedBusiness) error {
	if s.gateway == nil {
		return nil
	}

	count, err := s.events.CountEvents(ctx, row.BusinessNumber)
	if err != nil {
		return err
	}
	var history []ports.StatusEntry
	if count == 0 {
		history, err = s.gateway.FetchBusinessEvents(ctx, row.BusinessNumber)
		if err != nil {
			return err
		}
	}
	info, err := s.gateway.FetchBusiness(ctx, row.BusinessNumber)
	if err != nil {
		return err
	}

	syncedAt := s.now()
	return s.uow.WithTx(ctx, func(txCtx context.Context) error {
		if len(history) > 0 {
			// Re-checked inside the transaction; a concurrent sync may have written first.
			count, err := s.events.CountEvents(txCtx, row.BusinessNumber)
			if err != nil {
				return err
			}
			if count == 0 {
				for _, entry := range history {
					if entry.Status == "" {
						continue
					}
					if _, _, err := s.events.CreateEvent(txCtx, ports.BusinessEvent{
						BusinessNumber: row.BusinessNumber,
						EventType:      parliament.EventStatusChange,
						EventDate:      entry.Date,
						Description:    entry.Status,
						RawData:        entry.RawData,
					}); err != nil {
						return err
					}
				}
			}
		}

		if info == nil {
			return nil
		}
		stored := row.BusinessDetails
		// The number is only a placeholder title.
		if stored.Title == row.BusinessNumber {
			stored.Title = ""
		}
		details := parliament.FillMissing(stored, info.BusinessDetails)
		submission := row.SubmissionDate
		if submission == nil {
			submission = info.SubmissionDate
		}
		if err := s.tracking.UpdateDetails(txCtx, row.ID, ports.TrackedUpdate{
			Details:        details,
			SubmissionDate: submission,
			LastAPISync:    &syncedAt,
		}); err != nil {
			return err
		}
		row.BusinessDetails = details
		row.SubmissionDate = submission
		row.LastAPISync = &syncedAt
		return nil
	})
}

func (s *Service) Untrack(ctx context.Context, userID uint64, businessNumber string) error {
	number, err := parliament.ParseBusinessNumber(businessNumber)
	if err != nil {
		return err
	}
	return s.uow.WithTx(ctx, func(txCtx context.Context) error {
		return s.tracking.Delete(txCtx, userID, number)
	})
}

// SetPriority sets 1..3, or clears the priority when priority is nil.
func (s *Service) SetPriority(ctx context.Context, userID uint64, businessNumber string, priority *int) error {
	number, err := parliament.ParseBusinessNumber(businessNumber)
	if err != nil {
		return err
	}
	if err := parliament.ValidatePriority(priority); err != nil {
		return err
	}
	return s.tracking.SetPriority(ctx, userID, number, priority)
}

func (s *Service) ListTracked(ctx context.Context, userID uint64) ([]TrackedView, error) {
	rows, err := s.tracking.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}

	numbers := make([]string, 0, len(rows))
	for _, row := range rows {
		numbers = append(numbers, row.BusinessNumber)
	}
	next, err := s.events.NextEventDates(ctx, numbers, s.now())
	if err != nil {
		return nil, err
	}

	views := make([]TrackedView, 0, len(rows))
	for _, row := range rows {
		view := TrackedView{TrackedBusiness: row}
		if date, ok := next[row.BusinessNumber]; ok {
			d := date
			view.NextEventDate = &d
		}
		views = append(views, view)
	}
	return views, nil
}

// ListAlerts returns the user's inbox, newest first. Committee and debate
// alerts whose date lies before today are hidden.
func (s *Service) ListAlerts(ctx context.Context, userID uint64, unreadOnly bool, limit int) ([]ports.Alert, error) {
	now := s.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return s.alerts.ListAlerts(ctx, ports.AlertFilter{
		UserID:      userID,
		UnreadOnly:  unreadOnly,
		VisibleFrom: &today,
		Limit:       limit,
	})
}

func (s *Service) MarkAlertRead(ctx context.Context, userID uint64, alertID uint64) error {
	return s.alerts.MarkAlertRead(ctx, userID, alertID)
}
