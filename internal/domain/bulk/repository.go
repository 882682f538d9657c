package bulk

import "context"

// JobRepository defines the interface for background job persistence
type JobRepository interface {
	// Create stores a new job
	Create(ctx context.Context, job *Job) error

	// FindByID returns the job, or shared.ErrNotFound
	FindByID(ctx context.Context, id string) (*Job, error)

	// Save updates an existing job
	Save(ctx context.Context, job *Job) error

	// FindByUser returns the jobs started by username, newest first
	FindByUser(ctx context.Context, username string) ([]Job, error)

	// FindRecent returns the latest jobs of every user
	FindRecent(ctx context.Context, limit int) ([]Job, error)

	// History returns one page of jobs matching f and the total match count
	History(ctx context.Context, f HistoryFilter) ([]Job, int, error)
}
