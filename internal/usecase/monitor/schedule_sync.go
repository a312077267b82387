package monitor

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"parlmonitor/internal/bootstrap/logging"
	"parlmonitor/internal/domain/parliament"
	"parlmonitor/internal/errs"
	"parlmonitor/internal/ports"
)

type scheduleItem struct {
	eventType     parliament.EventType
	alertType     parliament.AlertType
	description   string
	committeeName string
	date          parliament.DateValue
}

type fetchedSchedule struct {
	number string
	items  []scheduleItem
}

// SyncSchedules re-reads committee preconsultations and plenary agendas for
// every tracked number. Upstream has no change marker, so novelty is decided
// by the (number, type, description, committee) key of stored events.
func (s *Service) SyncSchedules(ctx context.Context) (SyncReport, error) {
	var report SyncReport
	if err := s.checkRun(ctx); err != nil {
		return report, err
	}
	logCtx := logging.WithComponent(ctx, "usecase.monitor.schedule")

	numbers, err := s.tracking.ListTrackedNumbers(ctx)
	if err != nil {
		return report, err
	}

	fetched := make([]fetchedSchedule, 0, len(numbers))
	for _, number := range numbers {
		if err := ctx.Err(); err != nil {
			return report, errs.Wrap(err, "sync schedules")
		}
		items, err := s.fetchSchedule(ctx, number)
		if err != nil {
			report.Skipped++
			logging.Warn(logCtx, "fetch schedule failed, skipping",
				slog.String("business_number", number),
				slog.Any("err", errs.Loggable(err)),
			)
			continue
		}
		fetched = append(fetched, fetchedSchedule{number: number, items: items})
	}

	var created []ports.Alert
	events := 0
	if err := s.uow.WithTx(ctx, func(txCtx context.Context) error {
		created = created[:0]
		events = 0
		for _, business := range fetched {
			if len(business.items) == 0 {
				continue
			}
			rows, err := s.tracking.ListByNumber(txCtx, business.number)
			if err != nil {
				return err
			}
			if len(rows) == 0 {
				continue
			}

			for _, item := range business.items {
				exists, err := s.events.EventExists(txCtx, ports.EventKey{
					BusinessNumber: business.number,
					EventType:      item.eventType,
					Description:    item.description,
					CommitteeName:  item.committeeName,
				})
				if err != nil {
					return err
				}
				if exists {
					continue
				}

				key := parliament.DedupKey(business.number, item.eventType, item.description, item.committeeName)
				date := item.date.Ptr()
				alerts, inserted, err := s.recordEvent(
					txCtx,
					ports.BusinessEvent{
						BusinessNumber: business.number,
						EventType:      item.eventType,
						EventDate:      date,
						Description:    item.description,
						CommitteeName:  item.committeeName,
						DedupKey:       &key,
					},
					rows,
					item.alertType,
					parliament.ScheduledMessage(business.number, item.description, date),
					date,
				)
				if err != nil {
					return err
				}
				if inserted {
					events++
				}
				created = append(created, alerts...)
			}
		}
		return nil
	}); err != nil {
		return report, errs.Wrap(err, "apply schedule sync")
	}

	report.Businesses = len(fetched)
	report.Events = events
	report.Alerts = len(created)
	logging.Info(logCtx, "schedule sync complete",
		slog.Int("businesses", report.Businesses),
		slog.Int("skipped", report.Skipped),
		slog.Int("events", report.Events),
		slog.Int("alerts", report.Alerts),
	)

	s.dispatch(ctx, created)
	return report, nil
}

// fetchSchedule loads both schedule sources of one business concurrently.
// Either failing fails the business for this run.
func (s *Service) fetchSchedule(ctx context.Context, number string) ([]scheduleItem, error) {
	var (
		preconsultations []parliament.Preconsultation
		slots            []parliament.SessionSlot
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		preconsultations, err = s.gateway.FetchPreconsultations(gctx, number)
		return err
	})
	g.Go(func() error {
		var err error
		slots, err = s.gateway.FetchSessionSchedule(gctx, number)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	items := make([]scheduleItem, 0, len(preconsultations)+len(slots))
	for _, p := range preconsultations {
		items = append(items, scheduleItem{
			eventType:     parliament.EventCommitteeScheduled,
			alertType:     parliament.AlertCommitteeScheduled,
			description:   p.Description(),
			committeeName: p.CommitteeName,
			date:          p.Date,
		})
	}
	for _, slot := range slots {
		items = append(items, scheduleItem{
			eventType:     parliament.EventDebateScheduled,
			alertType:     parliament.AlertDebateScheduled,
			description:   slot.Description(),
			committeeName: slot.Council,
			date:          slot.MeetingDate,
		})
	}
	return items, nil
}
