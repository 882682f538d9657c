package api

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/erp/dashboard/internal/domain/bulk"
	"github.com/erp/dashboard/internal/domain/shared"
)

// JobService reads background import jobs
type JobService service

func validateJob(job bulk.Job) error {
	if err := validate.Struct(job); err != nil {
		return fmt.Errorf("%w: job: %v", ErrMalformedResponse, err)
	}
	if !job.Status.IsValid() {
		return fmt.Errorf("%w: job %s has unknown status %q", ErrMalformedResponse, job.JobID, job.Status)
	}
	return nil
}

// Status fetches GET /backgroundjobs/{id}/status
func (s *JobService) Status(ctx context.Context, jobID string) (bulk.Job, error) {
	var job bulk.Job
	path := "/backgroundjobs/" + url.PathEscape(jobID) + "/status"
	if err := s.client.getJSON(ctx, path, "/backgroundjobs/{id}/status", nil, &job); err != nil {
		return bulk.Job{}, err
	}
	if err := validateJob(job); err != nil {
		return bulk.Job{}, err
	}
	return job, nil
}

func (s *JobService) list(ctx context.Context, path string) ([]bulk.Job, error) {
	var jobs []bulk.Job
	if err := s.client.getJSON(ctx, path, "", nil, &jobs); err != nil {
		return nil, err
	}
	for _, job := range jobs {
		if err := validateJob(job); err != nil {
			return nil, err
		}
	}
	return jobs, nil
}

// Mine fetches GET /backgroundjobs/my-jobs
func (s *JobService) Mine(ctx context.Context) ([]bulk.Job, error) {
	return s.list(ctx, "/backgroundjobs/my-jobs")
}

// Recent fetches GET /backgroundjobs/recent
func (s *JobService) Recent(ctx context.Context) ([]bulk.Job, error) {
	return s.list(ctx, "/backgroundjobs/recent")
}

// History fetches one page of GET /backgroundjobs/history
func (s *JobService) History(ctx context.Context, f bulk.HistoryFilter) (shared.PageResult[bulk.Job], error) {
	page, pageSize := f.Page, f.PageSize
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 10
	}
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("pageSize", strconv.Itoa(pageSize))
	if f.JobType != "" {
		q.Set("jobType", string(f.JobType))
	}
	if f.Status != "" {
		q.Set("status", string(f.Status))
	}

	resp, err := s.client.Get(ctx, "/backgroundjobs/history", q)
	if err != nil {
		return shared.PageResult[bulk.Job]{}, err
	}
	return decodePaginated[bulk.Job](resp.Body, "history")
}
