package jobs

import (
	"context"
	"sync"
	"time"

	"github.com/erp/dashboard/internal/domain/bulk"
	"github.com/erp/dashboard/internal/infrastructure/metrics"
	"github.com/erp/dashboard/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// Poller tracks one job id at a time. It polls immediately, then every interval,
// and stops on its own once the job reaches a terminal status.
type Poller struct {
	fetch StatusFunc
	cfg   config

	trackMu sync.Mutex

	mu      sync.Mutex
	current string
	cancel  context.CancelFunc
	done    chan struct{}
	last    *bulk.Job
	// status is the last status observed per job id, across Track calls
	status map[string]bulk.JobStatus
	fired  map[string]bool
}

// NewPoller creates a poller reading job status with fetch
func NewPoller(fetch StatusFunc, opts ...Option) *Poller {
	done := make(chan struct{})
	close(done)
	return &Poller{
		fetch: fetch,
		cfg:   newConfig(opts),
		done:   done,
		status: make(map[string]bulk.JobStatus),
		fired:  make(map[string]bool),
	}
}

// Track starts polling jobID. Any loop for a previous id is cancelled and
// has returned before the new one starts. Tracking the id already being polled is a no-op.
func (p *Poller) Track(ctx context.Context, jobID string) {
	p.trackMu.Lock()
	defer p.trackMu.Unlock()

	p.mu.Lock()
	same := jobID == p.current && !p.finishedLocked()
	p.mu.Unlock()
	if same {
		return
	}

	p.halt()
	if jobID == "" {
		return
	}

	loopCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	p.mu.Lock()
	p.current = jobID
	p.cancel = cancel
	p.done = done
	p.last = nil
	p.mu.Unlock()

	p.cfg.logger.Debug("Tracking job", zap.String("job_id", jobID))
	go p.loop(loopCtx, jobID, done)
}

// Stop cancels polling and waits for the loop to return
func (p *Poller) Stop() {
	p.trackMu.Lock()
	defer p.trackMu.Unlock()
	p.halt()
}

// halt cancels the running loop and waits for it to return
func (p *Poller) halt() {
	p.mu.Lock()
	cancel, done := p.cancel, p.done
	p.cancel = nil
	p.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	<-done
}

func (p *Poller) finishedLocked() bool {
	select {
	case <-p.done:
		return true
	default:
		return false
	}
}

// Tracking returns the job id currently tracked
func (p *Poller) Tracking() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current
}

// Done is closed when the current loop returns, on a terminal status or Stop
func (p *Poller) Done() <-chan struct{} {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.done
}

// Last returns the most recent snapshot of the tracked job
func (p *Poller) Last() (bulk.Job, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.last == nil {
		return bulk.Job{}, false
	}
	return *p.last, true
}

func (p *Poller) loop(ctx context.Context, jobID string, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(p.cfg.interval)
	defer ticker.Stop()

	for {
		if p.poll(ctx, jobID) {
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// poll reads the job once and reports whether polling should stop
func (p *Poller) poll(ctx context.Context, jobID string) bool {
	ctx, span := telemetry.StartSpan(ctx, "jobs.poll", telemetry.WithAttribute(telemetry.AttrJobID, jobID))
	defer span.End()

	job, err := p.fetch(ctx, jobID)
	if err != nil {
		if ctx.Err() != nil {
			return true
		}
		telemetry.RecordError(span, err)
		p.cfg.metrics.JobPolled(metrics.ResultError)
		p.cfg.logger.Debug("Job poll failed", zap.String("job_id", jobID), zap.Error(err))
		p.cfg.onError(err)
		return false
	}
	p.cfg.metrics.JobPolled(metrics.ResultOK)
	telemetry.SetAttributes(span, telemetry.AttrJobStatus, string(job.Status))

	if ctx.Err() != nil {
		return true
	}

	p.mu.Lock()
	snapshot := job
	p.last = &snapshot
	prev, seen := p.status[jobID]
	p.status[jobID] = job.Status
	p.mu.Unlock()

	p.cfg.onUpdate(job)

	if !job.Status.IsTerminal() {
		return false
	}
	p.cfg.logger.Debug("Job reached terminal status, polling stopped",
		zap.String("job_id", jobID),
		zap.String("status", string(job.Status)),
	)
	transitioned := seen && !prev.IsTerminal()
	if transitioned && p.markFired(jobID) {
		p.cfg.metrics.JobCompleted(string(job.Status))
		p.cfg.logger.Info("Job finished",
			zap.String("job_id", jobID),
			zap.String("status", string(job.Status)),
			zap.Int("success_records", job.SuccessRecords),
			zap.Int("error_records", job.ErrorRecords),
		)
		p.cfg.onComplete(job)
	}
	return true
}

func (p *Poller) markFired(jobID string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fired[jobID] {
		return false
	}
	p.fired[jobID] = true
	return true
}
