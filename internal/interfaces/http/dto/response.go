package dto

import (
	"github.com/erp/dashboard/internal/domain/shared"
)

// ListResponse is the envelope of every paginated list endpoint
type ListResponse[T any] struct {
	Data       []T          `json:"data"`
	TotalCount int          `json:"totalCount"`
	Page       int          `json:"page"`
	PageSize   int          `json:"pageSize"`
	TotalPages int          `json:"totalPages"`
	Stats      shared.Stats `json:"stats,omitempty"`
}

// NewListResponse wraps a page. TotalPages is recomputed from the count so the
// envelope always satisfies totalPages = ceil(totalCount/pageSize).
func NewListResponse[T any](page shared.PageResult[T]) ListResponse[T] {
	items := page.Items
	if items == nil {
		items = []T{}
	}
	return ListResponse[T]{
		Data:       items,
		TotalCount: page.TotalCount,
		Page:       page.Page,
		PageSize:   page.PageSize,
		TotalPages: shared.TotalPagesFor(page.TotalCount, page.PageSize),
		Stats:      page.Stats,
	}
}

// Pagination is the paging block of the job history endpoint
type Pagination struct {
	CurrentPage int `json:"currentPage"`
	PageSize    int `json:"pageSize"`
	TotalItems  int `json:"totalItems"`
	TotalPages  int `json:"totalPages"`
}

// PaginatedResponse is the {data,pagination} envelope used by GET /backgroundjobs/history
type PaginatedResponse[T any] struct {
	Data       []T        `json:"data"`
	Pagination Pagination `json:"pagination"`
}

// NewPaginatedResponse wraps a page in the history envelope
func NewPaginatedResponse[T any](page shared.PageResult[T]) PaginatedResponse[T] {
	items := page.Items
	if items == nil {
		items = []T{}
	}
	return PaginatedResponse[T]{
		Data: items,
		Pagination: Pagination{
			CurrentPage: page.Page,
			PageSize:    page.PageSize,
			TotalItems:  page.TotalCount,
			TotalPages:  shared.TotalPagesFor(page.TotalCount, page.PageSize),
		},
	}
}

// ErrorResponse is the structured error body
type ErrorResponse struct {
	Error      string `json:"error"`
	Message    string `json:"message"`
	Reason     string `json:"reason,omitempty"`
	Suggestion string `json:"suggestion,omitempty"`
}

// NewErrorResponse creates an error body with the default suggestion for code
func NewErrorResponse(code, message string) ErrorResponse {
	return ErrorResponse{
		Error:      code,
		Message:    message,
		Suggestion: SuggestionFor(code),
	}
}

// WithReason returns a copy carrying reason
func (e ErrorResponse) WithReason(reason string) ErrorResponse {
	e.Reason = reason
	return e
}

// ListRequest holds the common list query parameters
type ListRequest struct {
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"pageSize" binding:"omitempty,min=1,max=100"`
	Search   string `form:"search" binding:"max=100"`
}

// Query converts the request into a domain query. Zero values take the defaults.
func (r ListRequest) Query() shared.Query {
	q := shared.NewQuery()
	if r.Page > 0 {
		q.Page = r.Page
	}
	if r.PageSize > 0 {
		q.PageSize = r.PageSize
	}
	q.Search = r.Search
	return q
}

// HistoryRequest holds the job history query parameters
type HistoryRequest struct {
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"pageSize" binding:"omitempty,min=1,max=100"`
	JobType  string `form:"jobType"`
	Status   string `form:"status"`
}

// QueueRequest holds the non-file fields of an import upload
type QueueRequest struct {
	StoreCode            string `form:"storeCode"`
	OriginStoreCode      string `form:"originStoreCode"`
	DestinationStoreCode string `form:"destinationStoreCode"`
}

// QueueResponse is returned when an upload is accepted
type QueueResponse struct {
	JobID   string `json:"jobId"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

// ExportRequest holds the query parameters of a report export
type ExportRequest struct {
	Format         string `form:"format" binding:"required"`
	IncludeCharts  bool   `form:"includeCharts"`
	IncludeDetails bool   `form:"includeDetails"`
}

// HealthResponse is the body of GET /health
type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	PDF      bool   `json:"pdf"`
	Uptime   string `json:"uptime"`
}
