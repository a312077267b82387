package scheduler

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"parlmonitor/internal/ports"
)

type memoryCache struct {
	mu   sync.Mutex
	data map[string]string
}

var _ ports.Cache = (*memoryCache)(nil)

func newMemoryCache() *memoryCache {
	return &memoryCache{data: make(map[string]string)}
}

func (c *memoryCache) Get(_ context.Context, key string) (string, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data[key]
	return v, ok, nil
}

func (c *memoryCache) Set(_ context.Context, key string, value string, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
	return nil
}

func (c *memoryCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	return nil
}

func TestRegisterRejectsBadSpecAndDuplicates(t *testing.T) {
	r := New(context.Background(), nil)
	noop := func(context.Context) error { return nil }

	if err := r.Register("businesses", "every six hours", noop); err == nil {
		t.Fatalf("Register(bad spec) error = nil")
	}
	if err := r.Register("businesses", "@every 6h", noop); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if err := r.Register("businesses", "@every 6h", noop); err == nil {
		t.Fatalf("Register(duplicate) error = nil")
	}
	if err := r.Register("all", "", noop); err != nil {
		t.Fatalf("Register(manual) error = %v", err)
	}
	if got := strings.Join(r.Names(), ","); got != "all,businesses" {
		t.Fatalf("Names() = %s", got)
	}
}

func TestRunNowRecordsStatus(t *testing.T) {
	state := newMemoryCache()
	r := New(context.Background(), state)
	calls := 0
	if err := r.Register("voting", "0 4 * * 0", func(context.Context) error {
		calls++
		return nil
	}); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if err := r.Register("committees", "30 3 1 * *", func(context.Context) error {
		return errors.New("upstream down")
	}); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	ctx := context.Background()
	if err := r.RunNow(ctx, "voting"); err != nil {
		t.Fatalf("RunNow(voting) error = %v", err)
	}
	if calls != 1 {
		t.Fatalf("calls = %d", calls)
	}
	status, found, err := r.LastStatus(ctx, "voting")
	if err != nil || !found {
		t.Fatalf("LastStatus(voting) = %v, %v", found, err)
	}
	if status.RunID == "" || status.Error != "" || status.FinishedAt.Before(status.StartedAt) {
		t.Fatalf("status = %+v", status)
	}

	if err := r.RunNow(ctx, "committees"); err == nil {
		t.Fatalf("RunNow(committees) error = nil")
	}
	status, _, _ = r.LastStatus(ctx, "committees")
	if status.Error != "upstream down" {
		t.Fatalf("status error = %q", status.Error)
	}

	if err := r.RunNow(ctx, "nope"); !errors.Is(err, ErrUnknownJob) {
		t.Fatalf("RunNow(unknown) error = %v", err)
	}
}

func TestOverlappingRunIsSkipped(t *testing.T) {
	r := New(context.Background(), nil)
	entered := make(chan struct{})
	release := make(chan struct{})
	if err := r.Register("schedules", "@every 6h", func(context.Context) error {
		close(entered)
		<-release
		return nil
	}); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	ctx := context.Background()
	firstDone := make(chan error, 1)
	go func() { firstDone <- r.RunNow(ctx, "schedules") }()
	<-entered

	if err := r.RunNow(ctx, "schedules"); !errors.Is(err, ErrJobRunning) {
		t.Fatalf("overlapping RunNow() error = %v, want ErrJobRunning", err)
	}
	close(release)
	if err := <-firstDone; err != nil {
		t.Fatalf("first run error = %v", err)
	}
}

func TestPanicIsRecovered(t *testing.T) {
	r := New(context.Background(), nil)
	if err := r.Register("parliamentarians", "", func(context.Context) error {
		panic("roster exploded")
	}); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	err := r.RunNow(context.Background(), "parliamentarians")
	if err == nil || !strings.Contains(err.Error(), "roster exploded") {
		t.Fatalf("RunNow() error = %v", err)
	}
	if err := r.RunNow(context.Background(), "parliamentarians"); errors.Is(err, ErrJobRunning) {
		t.Fatalf("guard not released after panic")
	}
}

func TestStartAndStop(t *testing.T) {
	r := New(context.Background(), nil)
	if err := r.Register("monitoring", "0 7 * * *", func(context.Context) error { return nil }); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	ctx := context.Background()
	if err := r.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if err := r.Start(ctx); !errors.Is(err, ErrAlreadyStarted) {
		t.Fatalf("Start(again) error = %v", err)
	}
	if err := r.Register("late", "", func(context.Context) error { return nil }); !errors.Is(err, ErrAlreadyStarted) {
		t.Fatalf("Register(after start) error = %v", err)
	}

	stopCtx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	if err := r.Stop(stopCtx); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
	if err := r.Stop(stopCtx); err != nil {
		t.Fatalf("Stop(again) error = %v", err)
	}
}
