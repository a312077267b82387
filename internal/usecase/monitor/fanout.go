package monitor

import (
	"context"
	"log/slog"
	"time"

	"parlmonitor/internal/bootstrap/logging"
	"parlmonitor/internal/domain/parliament"
	"parlmonitor/internal/errs"
	"parlmonitor/internal/ports"
)

// recordEvent stores one event and one alert per tracking row, event first.
// inserted is false when an event with the same dedup key already existed.
func (s *Service) recordEvent(
	ctx context.Context,
	event ports.BusinessEvent,
	trackers []ports.TrackedBusiness,
	alertType parliament.AlertType,
	message string,
	alertDate *time.Time,
) ([]ports.Alert, bool, error) {
	created, inserted, err := s.events.CreateEvent(ctx, event)
	if err != nil {
		return nil, false, err
	}
	if !inserted {
		return nil, false, nil
	}

	seen := make(map[uint64]struct{}, len(trackers))
	alerts := make([]ports.Alert, 0, len(trackers))
	for _, row := range trackers {
		if _, ok := seen[row.UserID]; ok {
			continue
		}
		seen[row.UserID] = struct{}{}

		eventID := created.ID
		alerts = append(alerts, ports.Alert{
			UserID:         row.UserID,
			BusinessNumber: event.BusinessNumber,
			EventID:        &eventID,
			AlertType:      alertType,
			Message:        message,
			EventDate:      alertDate,
		})
	}
	if len(alerts) == 0 {
		return nil, true, nil
	}
	stored, err := s.alerts.CreateAlerts(ctx, alerts)
	if err != nil {
		return nil, false, err
	}
	return stored, true, nil
}

// dispatch hands new alerts to the notifier, one digest per user. Users who
// opted out or whose subset excludes every alert type receive nothing.
// Failures are logged and never reach the calling job.
func (s *Service) dispatch(ctx context.Context, created []ports.Alert) {
	if len(created) == 0 || s.notifier == nil || s.users == nil {
		return
	}
	logCtx := logging.WithComponent(ctx, "usecase.monitor.notify")

	byUser := make(map[uint64][]ports.Alert)
	var userIDs []uint64
	numbers := make(map[string]struct{})
	for _, alert := range created {
		if _, ok := byUser[alert.UserID]; !ok {
			userIDs = append(userIDs, alert.UserID)
		}
		byUser[alert.UserID] = append(byUser[alert.UserID], alert)
		numbers[alert.BusinessNumber] = struct{}{}
	}

	users, err := s.users.ListUsers(ctx, userIDs)
	if err != nil {
		logging.Error(logCtx, "load alert recipients failed", slog.Any("err", errs.Loggable(err)))
		return
	}

	titles := make(map[string]string, len(numbers))
	for number := range numbers {
		rows, err := s.tracking.ListByNumber(ctx, number)
		if err != nil {
			logging.Warn(logCtx, "load business title failed",
				slog.String("business_number", number),
				slog.Any("err", errs.Loggable(err)),
			)
			continue
		}
		for _, row := range rows {
			if row.Title != "" {
				titles[number] = row.Title
				break
			}
		}
	}

	for _, user := range users {
		if !user.EmailAlertsEnabled {
			continue
		}
		enabled := parliament.ParseAlertTypeSet(user.AlertTypes)
		if len(enabled) == 0 {
			continue
		}

		var items []ports.NotificationItem
		for _, alert := range byUser[user.ID] {
			if _, ok := enabled[alert.AlertType]; !ok {
				continue
			}
			items = append(items, ports.NotificationItem{
				BusinessNumber: alert.BusinessNumber,
				BusinessTitle:  titles[alert.BusinessNumber],
				AlertType:      alert.AlertType,
				Message:        alert.Message,
				EventDate:      alert.EventDate,
			})
		}
		if len(items) == 0 {
			continue
		}

		recipient := ports.Recipient{Email: user.Email, DisplayName: user.DisplayName}
		if err := s.notifier.Notify(ctx, recipient, items); err != nil {
			logging.Warn(logCtx, "send alert digest failed",
				slog.Uint64("user_id", user.ID),
				slog.Any("err", errs.Loggable(err)),
			)
		}
	}
}
