package bootstrap

import (
	"context"
	"errors"
	"log/slog"

	"parlmonitor/internal/bootstrap/config"
	"parlmonitor/internal/bootstrap/logging"
	"parlmonitor/internal/scheduler"
	"parlmonitor/internal/usecase/monitor"
)

const (
	JobBusinesses       = "businesses"
	JobSchedules        = "schedules"
	JobMonitoring       = "monitoring"
	JobParliamentarians = "parliamentarians"
	JobCommittees       = "committees"
	JobVoting           = "voting"
	JobBusinessCache    = "business-cache"
	JobAll              = "all"
)

// referenceJobs is what JobAll runs, in this order.
var referenceJobs = []string{JobParliamentarians, JobCommittees, JobVoting, JobBusinessCache}

// RegisterJobs wires every sync job onto the registry with its configured cadence.
func RegisterJobs(registry *scheduler.Registry, cfg config.SyncConfig, svc *monitor.Service) error {
	jobs := []struct {
		name string
		spec string
		fn   scheduler.JobFunc
	}{
		{JobBusinesses, cfg.IntervalSpec(), func(ctx context.Context) error {
			_, err := svc.SyncBusinesses(ctx)
			return err
		}},
		{JobSchedules, cfg.IntervalSpec(), func(ctx context.Context) error {
			_, err := svc.SyncSchedules(ctx)
			return err
		}},
		{JobMonitoring, cfg.DiscoverySpec(), func(ctx context.Context) error {
			_, err := svc.DiscoverCandidates(ctx)
			return err
		}},
		{JobParliamentarians, cfg.ReferenceCron, func(ctx context.Context) error {
			_, err := svc.SyncParliamentarians(ctx)
			return err
		}},
		{JobCommittees, cfg.CommitteeCron, func(ctx context.Context) error {
			_, err := svc.SyncCommittees(ctx)
			return err
		}},
		{JobVoting, cfg.VotingCron, func(ctx context.Context) error {
			_, err := svc.SyncVotes(ctx)
			return err
		}},
		{JobBusinessCache, cfg.BusinessCacheCron, func(ctx context.Context) error {
			_, err := svc.SyncBusinessCache(ctx)
			return err
		}},
		{JobAll, "", func(ctx context.Context) error {
			return runAll(ctx, registry)
		}},
	}

	for _, job := range jobs {
		if err := registry.Register(job.name, job.spec, job.fn); err != nil {
			return err
		}
	}
	return nil
}

// runAll triggers the reference jobs one after another; a failing job does
// not stop the rest.
func runAll(ctx context.Context, registry *scheduler.Registry) error {
	var failed []error
	for _, name := range referenceJobs {
		if err := ctx.Err(); err != nil {
			return errors.Join(append(failed, err)...)
		}
		if err := registry.RunNow(ctx, name); err != nil {
			logging.Warn(ctx, "sub-job failed, continuing", slog.String("sub_job", name))
			failed = append(failed, err)
		}
	}
	return errors.Join(failed...)
}
