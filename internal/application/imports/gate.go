package imports

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/erp/dashboard/internal/infrastructure/logger"
	"github.com/erp/dashboard/internal/infrastructure/metrics"
	"github.com/erp/dashboard/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Uploader posts a workbook to the job queue and returns the job id
type Uploader interface {
	Queue(ctx context.Context, kind string, fields map[string]string, fileName string, content io.Reader) (string, error)
}

// JobTracker follows a queued job until it finishes
type JobTracker interface {
	Track(ctx context.Context, jobID string)
}

// Archive keeps a copy of every submitted workbook
type Archive interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
}

// Submission is the result of an accepted upload
type Submission struct {
	JobID      string
	Kind       Kind
	ArchiveKey string
}

// Gate checks an upload form, queues the workbook and hands the job to a tracker
type Gate struct {
	uploader Uploader
	guard    *StockInitialGuard
	tracker  JobTracker
	archive  Archive
	metrics  *metrics.Recorder
	logger   *zap.Logger
	now      func() time.Time
	newID    func() string
}

// GateOption configures a Gate
type GateOption func(*Gate)

// WithTracker hands every queued job id to t
func WithTracker(t JobTracker) GateOption {
	return func(g *Gate) {
		g.tracker = t
	}
}

// WithArchive stores a copy of every accepted workbook before upload
func WithArchive(a Archive) GateOption {
	return func(g *Gate) {
		g.archive = a
	}
}

// WithMetrics records submission outcomes
func WithMetrics(m *metrics.Recorder) GateOption {
	return func(g *Gate) {
		g.metrics = m
	}
}

// WithLogger sets the logger
func WithLogger(l *zap.Logger) GateOption {
	return func(g *Gate) {
		g.logger = l
	}
}

// WithClock overrides the time source used for archive keys
func WithClock(now func() time.Time) GateOption {
	return func(g *Gate) {
		g.now = now
	}
}

// NewGate creates a gate. guard may be nil when the stock flow is never used.
func NewGate(uploader Uploader, guard *StockInitialGuard, opts ...GateOption) *Gate {
	g := &Gate{
		uploader: uploader,
		guard:    guard,
		logger:   zap.NewNop(),
		now:      time.Now,
		newID:    func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Guard returns the stock-initial guard
func (g *Gate) Guard() *StockInitialGuard {
	return g.guard
}

// Validate runs the pre-submit checks in order and stops at the first failure.
// Only the stock-initial check may reach the server.
func (g *Gate) Validate(ctx context.Context, form Form) error {
	if !form.Kind.IsValid() {
		return fmt.Errorf("%w: %q", ErrUnknownKind, form.Kind)
	}
	if form.File == nil || form.File.Name == "" {
		return newValidationError(ErrCodeFileRequired, "Select a file to upload")
	}
	if !hasAllowedExtension(form.File.Name) {
		return newValidationError(ErrCodeFileType, "Select an Excel file (.xlsx or .xls)")
	}

	switch form.Kind.Stores() {
	case StoreSingle:
		if strings.TrimSpace(form.StoreCode) == "" {
			return newValidationError(ErrCodeStoreRequired, "Select a store for the %s import", strings.ToLower(form.Kind.Label()))
		}
	case StorePair:
		origin := strings.TrimSpace(form.OriginStoreCode)
		dest := strings.TrimSpace(form.DestinationStoreCode)
		if origin == "" || dest == "" {
			return newValidationError(ErrCodeTransferStores, "Select both the origin and the destination store")
		}
		if strings.EqualFold(origin, dest) {
			return newValidationError(ErrCodeTransferSameStore, "Origin and destination stores must be different")
		}
	}

	if form.Kind.IsStockInitial() {
		if g.guard == nil {
			return fmt.Errorf("stock import requires a stock initial guard")
		}
		return g.guard.Check(ctx, form.StoreCode)
	}
	return nil
}

// Submit validates the form, archives the workbook when an archive is set,
// queues it and starts tracking the returned job.
func (g *Gate) Submit(ctx context.Context, form Form) (*Submission, error) {
	ctx, span := telemetry.StartSpan(ctx, "imports.submit", telemetry.WithAttribute(telemetry.AttrImport, string(form.Kind)))
	defer span.End()
	log := logger.WithTraceContext(ctx, g.logger).With(zap.String("kind", string(form.Kind)))

	if err := g.Validate(ctx, form); err != nil {
		g.metrics.ImportSubmitted(string(form.Kind), metrics.ResultRejected)
		log.Info("Import rejected", zap.String("code", ValidationCode(err)), zap.Error(err))
		return nil, err
	}

	sub := &Submission{Kind: form.Kind}
	if g.archive != nil {
		key := ArchiveKey(form.Kind, g.now(), g.newID(), form.File.Name)
		if err := g.archive.Put(ctx, key, form.File.Data, form.File.ContentType()); err != nil {
			log.Warn("Failed to archive workbook, continuing with upload", zap.String("key", key), zap.Error(err))
		} else {
			sub.ArchiveKey = key
		}
	}

	jobID, err := g.uploader.Queue(ctx, string(form.Kind), form.Fields(), form.File.Name, bytes.NewReader(form.File.Data))
	if err != nil {
		telemetry.RecordError(span, err)
		g.metrics.ImportSubmitted(string(form.Kind), metrics.ResultError)
		log.Warn("Import upload failed", zap.Error(err))
		return nil, err
	}
	sub.JobID = jobID
	g.metrics.ImportSubmitted(string(form.Kind), metrics.ResultOK)
	telemetry.SetAttributes(span, telemetry.AttrJobID, jobID)
	log.Info("Import queued", zap.String("job_id", jobID), zap.String("file", form.File.Name))

	if g.tracker != nil {
		g.tracker.Track(context.WithoutCancel(ctx), jobID)
	}
	return sub, nil
}

// ArchiveKey builds imports/{kind}/{date}/{id}-{file}
func ArchiveKey(kind Kind, at time.Time, id, fileName string) string {
	name := path.Base(strings.ReplaceAll(fileName, "\\", "/"))
	name = strings.ReplaceAll(name, " ", "_")
	return path.Join("imports", string(kind), at.UTC().Format("2006-01-02"), id+"-"+name)
}
