package persistence

import (
	"context"
	"errors"

	"github.com/erp/dashboard/internal/domain/bulk"
	"github.com/erp/dashboard/internal/domain/shared"
	"github.com/erp/dashboard/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormJobRepository implements JobRepository using GORM
type GormJobRepository struct {
	db *gorm.DB
}

// NewGormJobRepository creates a new GormJobRepository
func NewGormJobRepository(db *gorm.DB) *GormJobRepository {
	return &GormJobRepository{db: db}
}

// Create stores a new job
func (r *GormJobRepository) Create(ctx context.Context, job *bulk.Job) error {
	var m models.JobModel
	m.FromDomain(*job)
	return r.db.WithContext(ctx).Create(&m).Error
}

// FindByID returns the job, or shared.ErrNotFound
func (r *GormJobRepository) FindByID(ctx context.Context, id string) (*bulk.Job, error) {
	var m models.JobModel
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	job := m.ToDomain()
	return &job, nil
}

// Save updates an existing job
func (r *GormJobRepository) Save(ctx context.Context, job *bulk.Job) error {
	var m models.JobModel
	m.FromDomain(*job)
	return r.db.WithContext(ctx).Save(&m).Error
}

// FindByUser returns the jobs started by username, newest first
func (r *GormJobRepository) FindByUser(ctx context.Context, username string) ([]bulk.Job, error) {
	var rows []models.JobModel
	if err := r.db.WithContext(ctx).
		Where("started_by = ?", username).
		Order("started_at DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return toJobs(rows), nil
}

// FindRecent returns the latest jobs of every user
func (r *GormJobRepository) FindRecent(ctx context.Context, limit int) ([]bulk.Job, error) {
	var rows []models.JobModel
	if err := r.db.WithContext(ctx).
		Order("started_at DESC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return toJobs(rows), nil
}

// History returns one page of jobs matching f, newest first
func (r *GormJobRepository) History(ctx context.Context, f bulk.HistoryFilter) ([]bulk.Job, int, error) {
	query := r.db.WithContext(ctx).Model(&models.JobModel{})
	if f.JobType != "" {
		query = query.Where("job_type = ?", string(f.JobType))
	}
	if f.Status != "" {
		query = query.Where("status = ?", string(f.Status))
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.JobModel
	if err := query.
		Scopes(paginate(shared.Query{Page: f.Page, PageSize: f.PageSize})).
		Order("started_at DESC").
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return toJobs(rows), int(total), nil
}

func toJobs(rows []models.JobModel) []bulk.Job {
	jobs := make([]bulk.Job, len(rows))
	for i := range rows {
		jobs[i] = rows[i].ToDomain()
	}
	return jobs
}

// Ensure GormJobRepository implements JobRepository
var _ bulk.JobRepository = (*GormJobRepository)(nil)
