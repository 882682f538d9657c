package bulk

import (
	"fmt"
	"time"

	"github.com/erp/dashboard/internal/domain/shared"
)

// JobStatus is the lifecycle state of a background import job
type JobStatus string

const (
	JobStatusQueued                JobStatus = "QUEUED"
	JobStatusProcessing            JobStatus = "PROCESSING"
	JobStatusCompleted             JobStatus = "COMPLETED"
	JobStatusCompletedWithWarnings JobStatus = "COMPLETED_WITH_WARNINGS"
	JobStatusFailed                JobStatus = "FAILED"
)

// AllStatuses lists every status in lifecycle order
var AllStatuses = []JobStatus{
	JobStatusQueued,
	JobStatusProcessing,
	JobStatusCompleted,
	JobStatusCompletedWithWarnings,
	JobStatusFailed,
}

// IsValid checks if the status is valid
func (s JobStatus) IsValid() bool {
	switch s {
	case JobStatusQueued, JobStatusProcessing, JobStatusCompleted,
		JobStatusCompletedWithWarnings, JobStatusFailed:
		return true
	}
	return false
}

// IsTerminal returns true if this is a terminal state
func (s JobStatus) IsTerminal() bool {
	return s == JobStatusCompleted || s == JobStatusCompletedWithWarnings || s == JobStatusFailed
}

// Succeeded returns true when the job finished and its data was applied
func (s JobStatus) Succeeded() bool {
	return s == JobStatusCompleted || s == JobStatusCompletedWithWarnings
}

// rank orders statuses along the lifecycle; all terminal states share the last rank
func (s JobStatus) rank() int {
	switch s {
	case JobStatusQueued:
		return 0
	case JobStatusProcessing:
		return 1
	default:
		return 2
	}
}

// CanTransitionTo reports whether next is a legal successor of s.
// Transitions only move forward and terminal states are final.
func (s JobStatus) CanTransitionTo(next JobStatus) bool {
	if !s.IsValid() || !next.IsValid() || s.IsTerminal() {
		return false
	}
	return next.rank() > s.rank()
}

// JobType identifies what a job imports
type JobType string

const (
	JobTypeProducts    JobType = "PRODUCTS_IMPORT"
	JobTypeStock       JobType = "STOCK_IMPORT"
	JobTypeSales       JobType = "SALES_IMPORT"
	JobTypeCreditNotes JobType = "CREDIT_NOTES_IMPORT"
	JobTypePurchases   JobType = "PURCHASES_IMPORT"
	JobTypeTransfers   JobType = "TRANSFERS_IMPORT"
)

// Label returns a human readable job type
func (t JobType) Label() string {
	switch t {
	case JobTypeProducts:
		return "Products"
	case JobTypeStock:
		return "Initial stock"
	case JobTypeSales:
		return "Sales"
	case JobTypeCreditNotes:
		return "Credit notes"
	case JobTypePurchases:
		return "Purchases"
	case JobTypeTransfers:
		return "Transfers"
	default:
		return string(t)
	}
}

// Job is the polled state of one background import
type Job struct {
	JobID              string     `json:"jobId" validate:"required"`
	JobType            JobType    `json:"jobType"`
	Status             JobStatus  `json:"status" validate:"required"`
	FileName           string     `json:"fileName,omitempty"`
	StoreCode          string     `json:"storeCode,omitempty"`
	TotalRecords       int        `json:"totalRecords" validate:"gte=0"`
	ProcessedRecords   int        `json:"processedRecords" validate:"gte=0"`
	SuccessRecords     int        `json:"successRecords" validate:"gte=0"`
	ErrorRecords       int        `json:"errorRecords" validate:"gte=0"`
	WarningRecords     int        `json:"warningRecords" validate:"gte=0"`
	ProgressPercentage float64    `json:"progressPercentage" validate:"gte=0,lte=100"`
	StartedAt          time.Time  `json:"startedAt"`
	CompletedAt        *time.Time `json:"completedAt,omitempty"`
	StartedBy          string     `json:"startedBy,omitempty"`
	ErrorMessage       string     `json:"errorMessage,omitempty"`
	DetailedErrors     []string   `json:"detailedErrors,omitempty"`
	DetailedWarnings   []string   `json:"detailedWarnings,omitempty"`
}

// IsTerminal reports whether the job reached a final state
func (j Job) IsTerminal() bool {
	return j.Status.IsTerminal()
}

// Duration returns the elapsed processing time, up to now for running jobs
func (j Job) Duration(now time.Time) time.Duration {
	if j.StartedAt.IsZero() {
		return 0
	}
	if j.CompletedAt != nil {
		return j.CompletedAt.Sub(j.StartedAt)
	}
	return now.Sub(j.StartedAt)
}

// Advance moves the job to next, recording completion time on terminal states
func (j *Job) Advance(next JobStatus, at time.Time) error {
	if !j.Status.CanTransitionTo(next) {
		return shared.NewDomainError("INVALID_JOB_TRANSITION",
			fmt.Sprintf("Cannot move job %s from %s to %s", j.JobID, j.Status, next))
	}
	j.Status = next
	if next.IsTerminal() {
		j.CompletedAt = &at
		j.ProgressPercentage = 100
	}
	return nil
}

// HistoryFilter narrows GET /backgroundjobs/history
type HistoryFilter struct {
	Page     int
	PageSize int
	JobType  JobType
	Status   JobStatus
}
