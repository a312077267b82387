// Package scheduler runs the sync jobs on their cron cadence and exposes the
// same jobs for manual triggering. A job never runs twice at the same time.
package scheduler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"parlmonitor/internal/bootstrap/logging"
	"parlmonitor/internal/errs"
	"parlmonitor/internal/ports"
)

var (
	ErrUnknownJob     = errors.New("unknown job")
	ErrJobRunning     = errors.New("job is already running")
	ErrAlreadyStarted = errors.New("scheduler already started")
)

// JobFunc is one unit of scheduled work.
type JobFunc func(ctx context.Context) error

// Status is the bookkeeping written after every run.
type Status struct {
	Job        string    `json:"job"`
	RunID      string    `json:"run_id"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Error      string    `json:"error,omitempty"`
}

type job struct {
	name    string
	spec    string
	fn      JobFunc
	running atomic.Bool
}

type Registry struct {
	cron  *cron.Cron
	state ports.Cache
	now   func() time.Time

	mu      sync.Mutex
	jobs    map[string]*job
	started bool
	baseCtx context.Context
	cancel  context.CancelFunc
}

// New builds an empty registry. state may be nil, in which case run status is
// only logged.
func New(ctx context.Context, state ports.Cache) *Registry {
	logCtx := logging.WithComponent(ctx, "scheduler")
	return &Registry{
		cron:  cron.New(cron.WithLogger(cronLogger{ctx: logCtx})),
		state: state,
		now:   func() time.Time { return time.Now().UTC() },
		jobs:  make(map[string]*job),
	}
}

// Register adds a job. An empty spec registers a manual-only job.
func (r *Registry) Register(name string, spec string, fn JobFunc) error {
	if name == "" || fn == nil {
		return errors.New("job name and function are required")
	}
	if spec != "" {
		if _, err := cron.ParseStandard(spec); err != nil {
			return errs.Wrapf(err, "parse schedule %q for job %s", spec, name)
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.started {
		return ErrAlreadyStarted
	}
	if _, ok := r.jobs[name]; ok {
		return fmt.Errorf("job %s registered twice", name)
	}
	r.jobs[name] = &job{name: name, spec: spec, fn: fn}
	return nil
}

func (r *Registry) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, 0, len(r.jobs))
	for name := range r.jobs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Start schedules every job that has a spec. Scheduled runs inherit ctx;
// cancelling it or calling Stop cancels in-flight runs.
func (r *Registry) Start(ctx context.Context) error {
	if ctx == nil {
		return errors.New("context is required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.started {
		return ErrAlreadyStarted
	}

	r.baseCtx, r.cancel = context.WithCancel(ctx)
	logCtx := logging.WithComponent(ctx, "scheduler")
	for _, j := range r.jobs {
		if j.spec == "" {
			continue
		}
		j := j
		if _, err := r.cron.AddFunc(j.spec, func() {
			_ = r.run(r.baseCtx, j)
		}); err != nil {
			r.cancel()
			return errs.Wrapf(err, "schedule job %s", j.name)
		}
		logging.Info(logCtx, "job scheduled", slog.String("job", j.name), slog.String("spec", j.spec))
	}
	r.cron.Start()
	r.started = true
	return nil
}

// Stop stops scheduling new runs and waits for running ones until ctx expires.
func (r *Registry) Stop(ctx context.Context) error {
	r.mu.Lock()
	if !r.started {
		r.mu.Unlock()
		return nil
	}
	r.started = false
	cancel := r.cancel
	r.mu.Unlock()

	cancel()
	done := r.cron.Stop()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return errs.Wrap(ctx.Err(), "wait for running jobs")
	}
}

// RunNow runs a job synchronously in the caller's context. It returns
// ErrJobRunning when a run of the same job is still in progress.
func (r *Registry) RunNow(ctx context.Context, name string) error {
	if ctx == nil {
		return errors.New("context is required")
	}
	r.mu.Lock()
	j, ok := r.jobs[name]
	r.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownJob, name)
	}
	return r.run(ctx, j)
}

// LastStatus returns the stored status of the job's latest finished run.
func (r *Registry) LastStatus(ctx context.Context, name string) (Status, bool, error) {
	if r.state == nil {
		return Status{}, false, nil
	}
	raw, found, err := r.state.Get(ctx, stateKey(name))
	if err != nil || !found {
		return Status{}, false, err
	}
	var status Status
	if err := json.Unmarshal([]byte(raw), &status); err != nil {
		return Status{}, false, errs.Wrapf(err, "decode status of job %s", name)
	}
	return status, true, nil
}

func (r *Registry) run(ctx context.Context, j *job) error {
	logCtx := logging.WithComponent(ctx, "scheduler")
	if !j.running.CompareAndSwap(false, true) {
		logging.Warn(logCtx, "previous run still in progress, skipping", slog.String("job", j.name))
		return fmt.Errorf("%w: %s", ErrJobRunning, j.name)
	}
	defer j.running.Store(false)

	status := Status{Job: j.name, RunID: uuid.NewString(), StartedAt: r.now()}
	runCtx := logging.WithJobRun(logCtx, j.name, status.RunID)
	logging.Info(runCtx, "job started")

	err := invoke(runCtx, j.fn)
	status.FinishedAt = r.now()
	if err != nil {
		status.Error = err.Error()
		logging.Error(runCtx, "job failed",
			slog.Duration("elapsed", status.FinishedAt.Sub(status.StartedAt)),
			slog.Any("err", errs.Loggable(err)),
		)
	} else {
		logging.Info(runCtx, "job finished", slog.Duration("elapsed", status.FinishedAt.Sub(status.StartedAt)))
	}

	r.record(runCtx, status)
	return err
}

func invoke(ctx context.Context, fn JobFunc) (err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			err = errs.Recovered(recovered)
		}
	}()
	return fn(ctx)
}

func (r *Registry) record(ctx context.Context, status Status) {
	if r.state == nil {
		return
	}
	payload, err := json.Marshal(status)
	if err != nil {
		logging.Warn(ctx, "encode job status failed", slog.Any("err", errs.Loggable(err)))
		return
	}
	// The run context may already be cancelled on shutdown; the status is still worth keeping.
	if err := r.state.Set(context.WithoutCancel(ctx), stateKey(status.Job), string(payload), 0); err != nil {
		logging.Warn(ctx, "store job status failed", slog.Any("err", errs.Loggable(err)))
	}
}

func stateKey(name string) string {
	return "scheduler/" + name
}
