package importapp

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/erp/dashboard/internal/domain/bulk"
	"github.com/erp/dashboard/internal/domain/inventory"
	"github.com/erp/dashboard/internal/domain/shared"
	sheetimport "github.com/erp/dashboard/internal/infrastructure/import"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Upload errors
var (
	ErrFileRequired    = shared.NewDomainError("FILE_REQUIRED", "An Excel file is required")
	ErrInvalidFileType = shared.NewDomainError("INVALID_FILE_TYPE", "Only .xlsx and .xls files are accepted")
	ErrStoreRequired   = shared.NewDomainError("STORE_REQUIRED", "A store code is required for this import")
	ErrTransferStores  = shared.NewDomainError("TRANSFER_STORES_REQUIRED", "Origin and destination stores are required")
	ErrSameStore       = shared.NewDomainError("TRANSFER_SAME_STORE", "Origin and destination stores must differ")
	ErrStoreNotFound   = shared.NewDomainError("STORE_NOT_FOUND", "Store does not exist")
	ErrUnknownJobType  = shared.NewDomainError("UNKNOWN_JOB_TYPE", "Unknown import type")
)

// DefaultRecentLimit is the number of jobs returned by Recent
const DefaultRecentLimit = 10

// Upload is one queued workbook
type Upload struct {
	JobType              bulk.JobType
	FileName             string
	Data                 []byte
	StoreCode            string
	OriginStoreCode      string
	DestinationStoreCode string
	StartedBy            string
}

// JobService queues uploads as background jobs and advances them as clients poll.
// Each status read moves a running job one lifecycle step.
type JobService struct {
	jobs      bulk.JobRepository
	stores    inventory.StoreRepository
	processor *sheetimport.Processor
	logger    *zap.Logger
	now       func() time.Time

	mu       sync.Mutex
	outcomes map[string]sheetimport.Result
}

// Option configures a JobService
type Option func(*JobService)

// WithLogger sets the service logger
func WithLogger(logger *zap.Logger) Option {
	return func(s *JobService) {
		s.logger = logger
	}
}

// WithClock overrides the time source
func WithClock(now func() time.Time) Option {
	return func(s *JobService) {
		s.now = now
	}
}

// WithProcessor overrides the workbook processor
func WithProcessor(p *sheetimport.Processor) Option {
	return func(s *JobService) {
		s.processor = p
	}
}

// NewJobService creates a new JobService
func NewJobService(jobs bulk.JobRepository, stores inventory.StoreRepository, opts ...Option) *JobService {
	s := &JobService{
		jobs:      jobs,
		stores:    stores,
		processor: sheetimport.NewProcessor(),
		logger:    zap.NewNop(),
		now:       time.Now,
		outcomes:  make(map[string]sheetimport.Result),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Enqueue validates the upload, processes the workbook and stores a QUEUED job
func (s *JobService) Enqueue(ctx context.Context, u Upload) (*bulk.Job, error) {
	if err := s.validate(ctx, u); err != nil {
		return nil, err
	}

	outcome := s.processor.Process(u.JobType, u.FileName, u.Data)
	storeCode := u.StoreCode
	if u.JobType == bulk.JobTypeTransfers {
		storeCode = u.OriginStoreCode + "->" + u.DestinationStoreCode
	}
	job := &bulk.Job{
		JobID:        uuid.New().String(),
		JobType:      u.JobType,
		Status:       bulk.JobStatusQueued,
		FileName:     u.FileName,
		StoreCode:    storeCode,
		TotalRecords: outcome.TotalRecords,
		StartedAt:    s.now(),
		StartedBy:    u.StartedBy,
	}
	if err := s.jobs.Create(ctx, job); err != nil {
		return nil, fmt.Errorf("failed to create job: %w", err)
	}

	s.mu.Lock()
	s.outcomes[job.JobID] = outcome
	s.mu.Unlock()

	s.logger.Info("Import queued",
		zap.String("job_id", job.JobID),
		zap.String("job_type", string(job.JobType)),
		zap.String("file", u.FileName),
		zap.Int("rows", outcome.TotalRecords),
		zap.String("started_by", u.StartedBy))
	return job, nil
}

func (s *JobService) validate(ctx context.Context, u Upload) error {
	if u.FileName == "" || len(u.Data) == 0 {
		return ErrFileRequired
	}
	switch strings.ToLower(filepath.Ext(u.FileName)) {
	case ".xlsx", ".xls":
	default:
		return ErrInvalidFileType
	}

	switch u.JobType {
	case bulk.JobTypeProducts:
		return nil
	case bulk.JobTypeTransfers:
		if u.OriginStoreCode == "" || u.DestinationStoreCode == "" {
			return ErrTransferStores
		}
		if strings.EqualFold(u.OriginStoreCode, u.DestinationStoreCode) {
			return ErrSameStore
		}
		if _, err := s.findStore(ctx, u.OriginStoreCode); err != nil {
			return err
		}
		_, err := s.findStore(ctx, u.DestinationStoreCode)
		return err
	case bulk.JobTypeStock, bulk.JobTypeSales, bulk.JobTypeCreditNotes, bulk.JobTypePurchases:
		if u.StoreCode == "" {
			return ErrStoreRequired
		}
		store, err := s.findStore(ctx, u.StoreCode)
		if err != nil {
			return err
		}
		if u.JobType == bulk.JobTypeStock {
			return store.CanAcceptStockInitial()
		}
		return nil
	default:
		return ErrUnknownJobType
	}
}

func (s *JobService) findStore(ctx context.Context, code string) (*inventory.Store, error) {
	store, err := s.stores.FindByCode(ctx, code)
	if errors.Is(err, shared.ErrNotFound) {
		return nil, shared.NewDomainError(ErrStoreNotFound.Code, fmt.Sprintf("Store %s does not exist", code))
	}
	return store, err
}

// Status returns the job after advancing it one lifecycle step
func (s *JobService) Status(ctx context.Context, id string) (*bulk.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, err := s.jobs.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if job.IsTerminal() {
		return job, nil
	}

	now := s.now()
	switch job.Status {
	case bulk.JobStatusQueued:
		if err := job.Advance(bulk.JobStatusProcessing, now); err != nil {
			return nil, err
		}
		job.ProcessedRecords = job.TotalRecords / 2
		job.ProgressPercentage = 50
	case bulk.JobStatusProcessing:
		if err := s.finish(ctx, job, now); err != nil {
			return nil, err
		}
	}

	if err := s.jobs.Save(ctx, job); err != nil {
		return nil, fmt.Errorf("failed to save job: %w", err)
	}
	return job, nil
}

// finish applies the processed outcome; file names containing "fail" or "warn" force that result
func (s *JobService) finish(ctx context.Context, job *bulk.Job, now time.Time) error {
	outcome, ok := s.outcomes[job.JobID]
	if !ok {
		outcome = sheetimport.Result{TotalRecords: job.TotalRecords, SuccessRecords: job.TotalRecords}
	}
	delete(s.outcomes, job.JobID)

	name := strings.ToLower(job.FileName)
	switch {
	case strings.Contains(name, "fail"):
		outcome.Fatal = "Import failed while processing the file"
	case strings.Contains(name, "warn") && outcome.Status() != bulk.JobStatusCompletedWithWarnings:
		if outcome.Fatal != "" {
			outcome.Warnings = append(outcome.Warnings, outcome.Fatal)
			outcome.Fatal = ""
		} else {
			outcome.Warnings = append(outcome.Warnings, "Some rows were imported with default values")
		}
		outcome.WarningRecords = max(outcome.WarningRecords, 1)
	}

	status := outcome.Status()
	if err := job.Advance(status, now); err != nil {
		return err
	}
	job.TotalRecords = outcome.TotalRecords
	job.ProcessedRecords = outcome.TotalRecords
	job.SuccessRecords = outcome.SuccessRecords
	job.ErrorRecords = outcome.ErrorRecords
	job.WarningRecords = outcome.WarningRecords
	job.DetailedErrors = outcome.Errors
	job.DetailedWarnings = outcome.Warnings
	job.ErrorMessage = outcome.Fatal
	if status == bulk.JobStatusFailed {
		job.SuccessRecords = 0
	}

	if job.JobType == bulk.JobTypeStock && status.Succeeded() {
		if err := s.stores.MarkInitialStock(ctx, job.StoreCode); err != nil {
			s.logger.Error("Failed to record initial stock",
				zap.String("job_id", job.JobID),
				zap.String("store_code", job.StoreCode),
				zap.Error(err))
		}
	}

	s.logger.Info("Import finished",
		zap.String("job_id", job.JobID),
		zap.String("status", string(status)),
		zap.Int("success", job.SuccessRecords),
		zap.Int("errors", job.ErrorRecords),
		zap.Int("warnings", job.WarningRecords))
	return nil
}

// Mine returns the jobs started by username, newest first
func (s *JobService) Mine(ctx context.Context, username string) ([]bulk.Job, error) {
	jobs, err := s.jobs.FindByUser(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}
	return nonNil(jobs), nil
}

// Recent returns the latest jobs of every user
func (s *JobService) Recent(ctx context.Context, limit int) ([]bulk.Job, error) {
	if limit <= 0 || limit > shared.MaxPageSize {
		limit = DefaultRecentLimit
	}
	jobs, err := s.jobs.FindRecent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent jobs: %w", err)
	}
	return nonNil(jobs), nil
}

// History returns one page of jobs matching the filter
func (s *JobService) History(ctx context.Context, f bulk.HistoryFilter) (shared.PageResult[bulk.Job], error) {
	q := shared.Query{Page: f.Page, PageSize: f.PageSize}.Normalize()
	q.PageSize = min(q.PageSize, shared.MaxPageSize)
	f.Page, f.PageSize = q.Page, q.PageSize

	jobs, total, err := s.jobs.History(ctx, f)
	if err != nil {
		return shared.PageResult[bulk.Job]{}, fmt.Errorf("failed to load job history: %w", err)
	}
	return shared.NewPageResult(jobs, total, q, nil), nil
}

func nonNil(jobs []bulk.Job) []bulk.Job {
	if jobs == nil {
		return []bulk.Job{}
	}
	return jobs
}
