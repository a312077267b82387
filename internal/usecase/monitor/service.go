// Package monitor holds the sync jobs that reconcile local state with the
// parliament web service and turn deltas into events and alerts.
package monitor

import (
	"context"
	"errors"
	"time"

	"parlmonitor/internal/errs"
	"parlmonitor/internal/ports"
)

// Options tunes the jobs. Zero delays disable throttling.
type Options struct {
	MinSessionID      int64
	VoteDelay         time.Duration
	SessionDelay      time.Duration
	DiscoveryLookback time.Duration
	// BusinessCacheYears lists two-digit year prefixes ("25"). Empty means the
	// current and the previous year.
	BusinessCacheYears []string
}

// Dependencies groups the ports the jobs read and write.
type Dependencies struct {
	Gateway       ports.ParliamentGateway
	UoW           ports.UnitOfWork
	Users         ports.UserRepository
	Tracking      ports.TrackingRepository
	Events        ports.EventRepository
	Alerts        ports.AlertRepository
	Reference     ports.ReferenceRepository
	Committees    ports.CommitteeRepository
	Votes         ports.VoteRepository
	BusinessCache ports.BusinessCacheRepository
	Monitoring    ports.MonitoringRepository
	Notifier      ports.Notifier
}

type Service struct {
	gateway       ports.ParliamentGateway
	uow           ports.UnitOfWork
	users         ports.UserRepository
	tracking      ports.TrackingRepository
	events        ports.EventRepository
	alerts        ports.AlertRepository
	reference     ports.ReferenceRepository
	committees    ports.CommitteeRepository
	votes         ports.VoteRepository
	businessCache ports.BusinessCacheRepository
	monitoring    ports.MonitoringRepository
	notifier      ports.Notifier
	opts          Options
	now           func() time.Time
}

func NewService(deps Dependencies, opts Options) *Service {
	if opts.DiscoveryLookback <= 0 {
		opts.DiscoveryLookback = 48 * time.Hour
	}
	return &Service{
		gateway:       deps.Gateway,
		uow:           deps.UoW,
		users:         deps.Users,
		tracking:      deps.Tracking,
		events:        deps.Events,
		alerts:        deps.Alerts,
		reference:     deps.Reference,
		committees:    deps.Committees,
		votes:         deps.Votes,
		businessCache: deps.BusinessCache,
		monitoring:    deps.Monitoring,
		notifier:      deps.Notifier,
		opts:          opts,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// SyncReport summarizes one business or schedule pass.
type SyncReport struct {
	Businesses int
	Skipped    int
	Events     int
	Alerts     int
}

func (s *Service) checkRun(ctx context.Context) error {
	if ctx == nil {
		return errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return errs.Wrap(err, "check context")
	}
	if s.gateway == nil {
		return errors.New("parliament gateway is required")
	}
	if s.uow == nil {
		return errors.New("unit of work is required")
	}
	return nil
}
