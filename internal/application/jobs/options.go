// Package jobs polls background import jobs and reports their completion.
package jobs

import (
	"context"
	"time"

	"github.com/erp/dashboard/internal/domain/bulk"
	"github.com/erp/dashboard/internal/infrastructure/metrics"
	"go.uber.org/zap"
)

// DefaultInterval is the polling period
const DefaultInterval = 2 * time.Second

// StatusFunc reads one job
type StatusFunc func(ctx context.Context, jobID string) (bulk.Job, error)

// ListFunc reads the current user's jobs
type ListFunc func(ctx context.Context) ([]bulk.Job, error)

type config struct {
	interval   time.Duration
	logger     *zap.Logger
	metrics    *metrics.Recorder
	onComplete func(bulk.Job)
	onUpdate   func(bulk.Job)
	onSnapshot func([]bulk.Job)
	onError    func(error)
}

func newConfig(opts []Option) config {
	c := config{
		interval:   DefaultInterval,
		logger:     zap.NewNop(),
		onComplete: func(bulk.Job) {},
		onUpdate:   func(bulk.Job) {},
		onSnapshot: func([]bulk.Job) {},
		onError:    func(error) {},
	}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// Option configures a Poller or Watcher.
// Callbacks run on the polling goroutine and must not call Track or Stop synchronously.
type Option func(*config)

// WithInterval overrides the polling period
func WithInterval(d time.Duration) Option {
	return func(c *config) {
		if d > 0 {
			c.interval = d
		}
	}
}

// WithLogger sets the logger
func WithLogger(l *zap.Logger) Option {
	return func(c *config) {
		c.logger = l
	}
}

// WithMetrics records poll and completion counters
func WithMetrics(m *metrics.Recorder) Option {
	return func(c *config) {
		c.metrics = m
	}
}

// OnComplete is called once per job id when the job moves from a non-terminal
// to a terminal status, including FAILED. Check job.Status.Succeeded().
func OnComplete(fn func(bulk.Job)) Option {
	return func(c *config) {
		c.onComplete = fn
	}
}

// OnUpdate is called with every job snapshot a Poller observes, and by a
// Watcher for each job that is new or changed status or progress
func OnUpdate(fn func(bulk.Job)) Option {
	return func(c *config) {
		c.onUpdate = fn
	}
}

// OnSnapshot is called by a Watcher with every list it reads
func OnSnapshot(fn func([]bulk.Job)) Option {
	return func(c *config) {
		c.onSnapshot = fn
	}
}

// OnError is called when a poll fails. Polling continues on the next tick.
func OnError(fn func(error)) Option {
	return func(c *config) {
		c.onError = fn
	}
}
