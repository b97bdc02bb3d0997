// Package purge runs the permanent removal of soft-deleted products, either
// on a cron schedule or on demand.
package purge

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

const (
	lockKey = "purge-deleted-products"
	lockTTL = 5 * time.Minute
)

// Purger removes soft-deleted products past their retention window.
type Purger interface {
	PurgeOldDeleted(ctx context.Context) (int64, error)
}

// Runner serializes purge runs across replicas and records their outcome.
type Runner struct {
	purger   Purger
	locker   Locker
	metrics  *Metrics
	schedule cron.Schedule
	spec     string
	timeout  time.Duration
}

// Options configures a Runner.
type Options struct {
	// Schedule is a standard five-field cron expression. Empty disables
	// scheduled runs; RunOnce still works.
	Schedule string
	// Locker is optional. Without it, concurrent runs rely on the purge
	// being idempotent.
	Locker  Locker
	Metrics *Metrics
	// Timeout bounds a single run. Defaults to one minute.
	Timeout time.Duration
}

// New creates a Runner. It fails when the schedule does not parse.
func New(purger Purger, opts Options) (*Runner, error) {
	r := &Runner{
		purger:  purger,
		locker:  opts.Locker,
		metrics: opts.Metrics,
		spec:    opts.Schedule,
		timeout: opts.Timeout,
	}
	if r.timeout <= 0 {
		r.timeout = time.Minute
	}
	if opts.Schedule != "" {
		s, err := cron.ParseStandard(opts.Schedule)
		if err != nil {
			return nil, fmt.Errorf("parsing purge schedule %q: %w", opts.Schedule, err)
		}
		r.schedule = s
	}
	return r, nil
}

// Scheduled reports whether the runner has a schedule.
func (r *Runner) Scheduled() bool {
	return r.schedule != nil
}

// Start runs the purge on schedule. It blocks until ctx is cancelled and
// waits for an in-flight run to finish before returning.
func (r *Runner) Start(ctx context.Context) {
	if r.schedule == nil {
		return
	}

	c := cron.New()
	c.Schedule(r.schedule, cron.FuncJob(func() {
		if _, err := r.RunOnce(ctx); err != nil {
			slog.Error("purge: scheduled run failed", "error", err)
		}
	}))

	slog.Info("purge scheduler started", "schedule", r.spec)
	c.Start()

	<-ctx.Done()
	<-c.Stop().Done()
	slog.Info("purge scheduler stopped")
}

// RunOnce performs a single purge and returns the number of products removed.
// When another replica holds the lock the run is skipped and reports zero.
func (r *Runner) RunOnce(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	if r.locker != nil {
		release, ok, err := r.locker.TryLock(ctx, lockKey, lockTTL)
		if err != nil {
			slog.Warn("purge: lock unavailable, running without it", "error", err)
		} else if !ok {
			slog.Info("purge: skipped, another run holds the lock")
			r.metrics.observe("skipped", 0)
			return 0, nil
		} else {
			defer release()
		}
	}

	start := time.Now()
	n, err := r.purger.PurgeOldDeleted(ctx)
	if err != nil {
		r.metrics.observe("error", 0)
		return 0, err
	}

	r.metrics.observe("ok", n)
	slog.Info("purge: run finished", "removed", n, "duration", time.Since(start).String())
	return n, nil
}
