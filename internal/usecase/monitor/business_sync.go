package monitor

import (
	"context"
	"log/slog"

	"parlmonitor/internal/bootstrap/logging"
	"parlmonitor/internal/domain/parliament"
	"parlmonitor/internal/errs"
	"parlmonitor/internal/ports"
)

type fetchedBusiness struct {
	number string
	info   *ports.BusinessInfo
}

// SyncBusinesses refreshes every tracked business once, however many users
// track it. Fetches happen before the transaction; a failed fetch skips that
// number until the next run. All writes of the pass share one transaction and
// notifications go out only after it committed.
func (s *Service) SyncBusinesses(ctx context.Context) (SyncReport, error) {
	var report SyncReport
	if err := s.checkRun(ctx); err != nil {
		return report, err
	}
	logCtx := logging.WithComponent(ctx, "usecase.monitor.business")

	numbers, err := s.tracking.ListTrackedNumbers(ctx)
	if err != nil {
		return report, err
	}

	fetched := make([]fetchedBusiness, 0, len(numbers))
	for _, number := range numbers {
		if err := ctx.Err(); err != nil {
			return report, errs.Wrap(err, "sync businesses")
		}
		info, err := s.gateway.FetchBusiness(ctx, number)
		if err != nil {
			report.Skipped++
			logging.Warn(logCtx, "fetch business failed, skipping",
				slog.String("business_number", number),
				slog.Any("err", errs.Loggable(err)),
			)
			continue
		}
		if info == nil {
			report.Skipped++
			logging.Warn(logCtx, "business not found upstream", slog.String("business_number", number))
			continue
		}
		fetched = append(fetched, fetchedBusiness{number: number, info: info})
	}

	now := s.now()
	var created []ports.Alert
	events := 0
	if err := s.uow.WithTx(ctx, func(txCtx context.Context) error {
		created = created[:0]
		events = 0
		for _, item := range fetched {
			rows, err := s.tracking.ListByNumber(txCtx, item.number)
			if err != nil {
				return err
			}
			if len(rows) == 0 {
				continue
			}

			stored := rows[0].Status
			incoming := item.info.Status
			if incoming != "" && incoming != stored {
				eventDate := now
				alerts, inserted, err := s.recordEvent(
					txCtx,
					ports.BusinessEvent{
						BusinessNumber: item.number,
						EventType:      parliament.EventStatusChange,
						EventDate:      &eventDate,
						Description:    parliament.StatusChangeDescription(stored, incoming),
						RawData:        item.info.RawData,
					},
					rows,
					parliament.AlertStatusChange,
					parliament.StatusChangeMessage(item.number, stored, incoming),
					nil,
				)
				if err != nil {
					return err
				}
				if inserted {
					events++
				}
				created = append(created, alerts...)
			}

			for _, row := range rows {
				submission := row.SubmissionDate
				if item.info.SubmissionDate != nil {
					submission = item.info.SubmissionDate
				}
				syncedAt := now
				if err := s.tracking.UpdateDetails(txCtx, row.ID, ports.TrackedUpdate{
					Details:        parliament.MergeUpstream(row.BusinessDetails, item.info.BusinessDetails),
					SubmissionDate: submission,
					LastAPISync:    &syncedAt,
				}); err != nil {
					return err
				}
			}
		}
		return nil
	}); err != nil {
		return report, errs.Wrap(err, "apply business sync")
	}

	report.Businesses = len(fetched)
	report.Events = events
	report.Alerts = len(created)
	logging.Info(logCtx, "business sync complete",
		slog.Int("businesses", report.Businesses),
		slog.Int("skipped", report.Skipped),
		slog.Int("events", report.Events),
		slog.Int("alerts", report.Alerts),
	)

	s.dispatch(ctx, created)
	return report, nil
}
