package handler

import (
	"fmt"
	"net/http"
	"slices"
	"strconv"
	"strings"

	importapp "github.com/erp/dashboard/internal/application/import"
	"github.com/erp/dashboard/internal/domain/bulk"
	"github.com/erp/dashboard/internal/domain/shared"
	"github.com/erp/dashboard/internal/interfaces/http/dto"
	"github.com/erp/dashboard/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
)

var knownJobTypes = []bulk.JobType{
	bulk.JobTypeProducts,
	bulk.JobTypeStock,
	bulk.JobTypeSales,
	bulk.JobTypeCreditNotes,
	bulk.JobTypePurchases,
	bulk.JobTypeTransfers,
}

// JobHandler serves background job state
type JobHandler struct {
	BaseHandler
	jobService *importapp.JobService
}

// NewJobHandler creates a new JobHandler
func NewJobHandler(jobService *importapp.JobService) *JobHandler {
	return &JobHandler{
		jobService: jobService,
	}
}

// Status handles GET /backgroundjobs/:id/status.
// Every read moves an unfinished job one step along its lifecycle.
func (h *JobHandler) Status(c *gin.Context) {
	job, err := h.jobService.Status(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, job)
}

// Mine handles GET /backgroundjobs/my-jobs
func (h *JobHandler) Mine(c *gin.Context) {
	jobs, err := h.jobService.Mine(c.Request.Context(), middleware.GetJWTUsername(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, jobs)
}

// Recent handles GET /backgroundjobs/recent?limit=
func (h *JobHandler) Recent(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			h.HandleError(c, shared.NewDomainError("INVALID_INPUT", "limit must be a number"))
			return
		}
		limit = n
	}

	jobs, err := h.jobService.Recent(c.Request.Context(), limit)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, jobs)
}

// History handles GET /backgroundjobs/history
func (h *JobHandler) History(c *gin.Context) {
	var req dto.HistoryRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	f := bulk.HistoryFilter{Page: req.Page, PageSize: req.PageSize}
	if req.PageSize == 0 {
		f.PageSize = importapp.DefaultRecentLimit
	}
	if req.JobType != "" {
		f.JobType = bulk.JobType(strings.ToUpper(req.JobType))
		if !slices.Contains(knownJobTypes, f.JobType) {
			h.HandleError(c, shared.NewDomainError("INVALID_INPUT", fmt.Sprintf("Unknown job type: %s", req.JobType)))
			return
		}
	}
	if req.Status != "" {
		f.Status = bulk.JobStatus(strings.ToUpper(req.Status))
		if !f.Status.IsValid() {
			h.HandleError(c, shared.NewDomainError("INVALID_INPUT", fmt.Sprintf("Unknown job status: %s", req.Status)))
			return
		}
	}

	page, err := h.jobService.History(c.Request.Context(), f)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewPaginatedResponse(page))
}
