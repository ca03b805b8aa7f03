// Package schedule runs the crawl job on a cron schedule and records the
// outcome of every run for the status endpoint.
package schedule

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/JakeFAU/sons-crawler/internal/crawler"
	"github.com/JakeFAU/sons-crawler/internal/metrics"
)

// DefaultSpec fires every Sunday at 00:00.
const DefaultSpec = "0 0 * * 0"

// State describes where the runner is in its lifecycle.
type State string

const (
	StateIdle      State = "idle"
	StateRunning   State = "running"
	StateSucceeded State = "succeeded"
	StateFailed    State = "failed"
)

// Job is the unit of work the runner triggers.
type Job interface {
	Run(ctx context.Context) (crawler.RunSummary, error)
}

// Config controls when runs fire.
type Config struct {
	Spec       string
	RunOnStart bool
}

// Status is a point-in-time view of the runner.
type Status struct {
	RunID        string     `json:"run_id,omitempty"`
	State        State      `json:"state"`
	LastStarted  *time.Time `json:"last_started,omitempty"`
	LastFinished *time.Time `json:"last_finished,omitempty"`
	LastError    string     `json:"last_error,omitempty"`
	LastAdded    int        `json:"last_added"`
	Runs         int        `json:"runs"`
	Failures     int        `json:"failures"`
	Skipped      int        `json:"skipped"`
	NextRun      *time.Time `json:"next_run,omitempty"`
}

// Runner owns the cron loop. At most one run is active at a time; a trigger
// that arrives while a run is in progress is skipped.
type Runner struct {
	job    Job
	cfg    Config
	clock  crawler.Clock
	ids    crawler.IDGenerator
	logger *zap.Logger

	cron    *cron.Cron
	entryID cron.EntryID

	running sync.Mutex
	mu      sync.RWMutex
	status  Status

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New validates cfg and builds a Runner. The runner is inert until Start.
func New(job Job, cfg Config, clock crawler.Clock, ids crawler.IDGenerator, logger *zap.Logger) (*Runner, error) {
	if job == nil || clock == nil || ids == nil {
		return nil, errors.New("schedule runner requires a job, clock and id generator")
	}
	if cfg.Spec == "" {
		cfg.Spec = DefaultSpec
	}
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	if _, err := parser.Parse(cfg.Spec); err != nil {
		return nil, fmt.Errorf("parse schedule %q: %w", cfg.Spec, err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		job:    job,
		cfg:    cfg,
		clock:  clock,
		ids:    ids,
		logger: logger,
		cron:   cron.New(cron.WithParser(parser), cron.WithChain(cron.Recover(cron.DefaultLogger))),
		status: Status{State: StateIdle},
	}, nil
}

// Start registers the schedule and, if configured, triggers an immediate run
// in the background. Cancelling ctx cancels any in-flight run.
func (r *Runner) Start(ctx context.Context) error {
	r.ctx, r.cancel = context.WithCancel(ctx)

	id, err := r.cron.AddFunc(r.cfg.Spec, func() {
		r.RunOnce(r.ctx)
	})
	if err != nil {
		r.cancel()
		return fmt.Errorf("register schedule: %w", err)
	}
	r.entryID = id
	r.cron.Start()
	r.logger.Info("crawl schedule started",
		zap.String("spec", r.cfg.Spec),
		zap.Time("next_run", r.cron.Entry(id).Next),
	)

	if r.cfg.RunOnStart {
		r.wg.Add(1)
		go func() {
			defer r.wg.Done()
			r.RunOnce(r.ctx)
		}()
	}
	return nil
}

// Stop cancels any in-flight run and waits for scheduled work to drain.
func (r *Runner) Stop() {
	if r.cancel != nil {
		r.cancel()
	}
	<-r.cron.Stop().Done()
	r.wg.Wait()
	r.logger.Info("crawl schedule stopped")
}

// RunOnce executes the job synchronously unless a run is already active.
// It reports whether the job actually ran. Failures are recorded, never fatal.
func (r *Runner) RunOnce(ctx context.Context) bool {
	if !r.running.TryLock() {
		r.mu.Lock()
		r.status.Skipped++
		r.mu.Unlock()
		r.logger.Warn("crawl already running, skipping trigger")
		metrics.ObserveRun("skipped")
		return false
	}
	defer r.running.Unlock()

	runID, err := r.ids.NewID()
	if err != nil {
		r.logger.Warn("run id generation failed", zap.Error(err))
	}
	started := r.clock.Now()
	r.mu.Lock()
	r.status.RunID = runID
	r.status.State = StateRunning
	r.status.LastStarted = &started
	r.status.Runs++
	r.mu.Unlock()

	log := r.logger.With(zap.String("run_id", runID))
	log.Info("crawl run started")

	summary, err := r.runJob(ctx)
	r.finish(summary, err, log)
	return true
}

func (r *Runner) runJob(ctx context.Context) (summary crawler.RunSummary, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("crawl run panicked: %v", rec)
		}
	}()
	return r.job.Run(ctx)
}

func (r *Runner) finish(summary crawler.RunSummary, err error, log *zap.Logger) {
	finished := r.clock.Now()

	r.mu.Lock()
	r.status.LastFinished = &finished
	r.status.LastAdded = summary.Added
	if err != nil {
		r.status.State = StateFailed
		r.status.LastError = err.Error()
		r.status.Failures++
	} else {
		r.status.State = StateSucceeded
		r.status.LastError = ""
	}
	r.mu.Unlock()

	if err != nil {
		metrics.ObserveRun("failed")
		log.Error("crawl run failed", zap.Error(err), zap.Int("added", summary.Added))
		return
	}
	metrics.ObserveRun("succeeded")
	log.Info("crawl run finished",
		zap.Int("added", summary.Added),
		zap.Int("terms", len(summary.Terms)),
	)
}

// Status returns a copy of the runner's current status.
func (r *Runner) Status() Status {
	r.mu.RLock()
	st := r.status
	r.mu.RUnlock()
	if r.entryID != 0 {
		if next := r.cron.Entry(r.entryID).Next; !next.IsZero() {
			st.NextRun = &next
		}
	}
	return st
}
