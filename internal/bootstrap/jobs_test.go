package bootstrap

import (
	"context"
	"strings"
	"testing"

	"parlmonitor/internal/bootstrap/config"
	"parlmonitor/internal/scheduler"
	"parlmonitor/internal/usecase/monitor"
)

func TestRegisterJobsUsesDefaultCadences(t *testing.T) {
	registry := scheduler.New(context.Background(), nil)
	svc := monitor.NewService(monitor.Dependencies{}, monitor.Options{})

	if err := RegisterJobs(registry, config.Defaults().Sync, svc); err != nil {
		t.Fatalf("RegisterJobs() error = %v", err)
	}
	got := strings.Join(registry.Names(), ",")
	want := "all,business-cache,businesses,committees,monitoring,parliamentarians,schedules,voting"
	if got != want {
		t.Fatalf("Names() = %s, want %s", got, want)
	}
}

func TestRegisterJobsRejectsBadCron(t *testing.T) {
	registry := scheduler.New(context.Background(), nil)
	cfg := config.Defaults().Sync
	cfg.VotingCron = "sundays at four"

	if err := RegisterJobs(registry, cfg, monitor.NewService(monitor.Dependencies{}, monitor.Options{})); err == nil {
		t.Fatalf("RegisterJobs() error = nil")
	}
}

func TestRunAllContinuesAfterFailures(t *testing.T) {
	registry := scheduler.New(context.Background(), nil)
	// Without a gateway every job fails its precondition check.
	svc := monitor.NewService(monitor.Dependencies{}, monitor.Options{})
	if err := RegisterJobs(registry, config.Defaults().Sync, svc); err != nil {
		t.Fatalf("RegisterJobs() error = %v", err)
	}

	err := registry.RunNow(context.Background(), JobAll)
	if err == nil {
		t.Fatalf("RunNow(all) error = nil")
	}
	if n := strings.Count(err.Error(), "parliament gateway is required"); n != len(referenceJobs) {
		t.Fatalf("failures = %d, want %d: %v", n, len(referenceJobs), err)
	}
}
