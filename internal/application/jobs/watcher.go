package jobs

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/erp/dashboard/internal/domain/bulk"
	"github.com/erp/dashboard/internal/infrastructure/metrics"
	"go.uber.org/zap"
)

// Watcher polls the user's job list and fires OnComplete for every job it
// sees move from a non-terminal to a terminal status. Jobs first seen mid-flight
// are recorded without firing; jobs first seen terminal never fire.
type Watcher struct {
	list ListFunc
	cfg  config

	lifeMu sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}

	mu       sync.Mutex
	seen     map[string]bulk.Job
	fired    map[string]bool
	snapshot []bulk.Job
}

// NewWatcher creates a watcher reading jobs with list
func NewWatcher(list ListFunc, opts ...Option) *Watcher {
	return &Watcher{
		list:  list,
		cfg:   newConfig(opts),
		seen:  make(map[string]bulk.Job),
		fired: make(map[string]bool),
	}
}

// Start begins polling until Stop or ctx is cancelled. Starting a running watcher is a no-op.
func (w *Watcher) Start(ctx context.Context) {
	w.lifeMu.Lock()
	defer w.lifeMu.Unlock()
	if w.done != nil {
		select {
		case <-w.done:
		default:
			return
		}
	}

	ctx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	w.done = make(chan struct{})
	go w.loop(ctx, w.done)
}

// Stop cancels polling and waits for the loop to return
func (w *Watcher) Stop() {
	w.lifeMu.Lock()
	defer w.lifeMu.Unlock()
	if w.cancel == nil {
		return
	}
	w.cancel()
	<-w.done
	w.cancel = nil
}

// Snapshot returns the latest job list
func (w *Watcher) Snapshot() []bulk.Job {
	w.mu.Lock()
	defer w.mu.Unlock()
	return slices.Clone(w.snapshot)
}

func (w *Watcher) loop(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(w.cfg.interval)
	defer ticker.Stop()

	for {
		w.poll(ctx)
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (w *Watcher) poll(ctx context.Context) {
	jobs, err := w.list(ctx)
	if ctx.Err() != nil {
		return
	}
	if err != nil {
		w.cfg.metrics.JobPolled(metrics.ResultError)
		w.cfg.logger.Debug("Job list poll failed", zap.Error(err))
		w.cfg.onError(err)
		return
	}
	w.cfg.metrics.JobPolled(metrics.ResultOK)

	changed, completed := w.observe(jobs)
	w.cfg.onSnapshot(slices.Clone(jobs))
	for _, job := range changed {
		w.cfg.onUpdate(job)
	}
	for _, job := range completed {
		w.cfg.metrics.JobCompleted(string(job.Status))
		w.cfg.logger.Info("Job finished",
			zap.String("job_id", job.JobID),
			zap.String("status", string(job.Status)),
		)
		w.cfg.onComplete(job)
	}
}

// observe records the new snapshot. It returns the jobs that are new or moved
// since the previous read, and the jobs that just became terminal.
func (w *Watcher) observe(jobs []bulk.Job) (changed, completed []bulk.Job) {
	w.mu.Lock()
	defer w.mu.Unlock()

	for _, job := range jobs {
		prev, known := w.seen[job.JobID]
		if !known || prev.Status != job.Status || prev.ProgressPercentage != job.ProgressPercentage {
			changed = append(changed, job)
		}
		if known && !prev.Status.IsTerminal() && job.Status.IsTerminal() && !w.fired[job.JobID] {
			w.fired[job.JobID] = true
			completed = append(completed, job)
		}
		w.seen[job.JobID] = job
	}
	w.snapshot = slices.Clone(jobs)
	return changed, completed
}
