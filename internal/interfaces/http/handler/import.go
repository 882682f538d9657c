package handler

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	importapp "github.com/erp/dashboard/internal/application/import"
	"github.com/erp/dashboard/internal/application/imports"
	"github.com/erp/dashboard/internal/interfaces/http/dto"
	"github.com/erp/dashboard/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
)

// ImportHandler accepts workbook uploads for background import
type ImportHandler struct {
	BaseHandler
	jobService *importapp.JobService
}

// NewImportHandler creates a new ImportHandler
func NewImportHandler(jobService *importapp.JobService) *ImportHandler {
	return &ImportHandler{
		jobService: jobService,
	}
}

// Queue handles POST /backgroundjobs/:id/queue, where the segment names the
// import kind (it shares the :id wildcard with the status route).
// The body is multipart form data: the workbook under "file" plus the store
// fields the import kind needs.
func (h *ImportHandler) Queue(c *gin.Context) {
	kind, err := imports.ParseKind(c.Param("id"))
	if err != nil {
		h.HandleError(c, importapp.ErrUnknownJobType)
		return
	}

	var req dto.QueueRequest
	if err := c.ShouldBind(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	fh, err := c.FormFile("file")
	if err != nil {
		h.HandleError(c, importapp.ErrFileRequired)
		return
	}
	data, err := readFormFile(fh)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	job, err := h.jobService.Enqueue(c.Request.Context(), importapp.Upload{
		JobType:              kind.JobType(),
		FileName:             fh.Filename,
		Data:                 data,
		StoreCode:            req.StoreCode,
		OriginStoreCode:      req.OriginStoreCode,
		DestinationStoreCode: req.DestinationStoreCode,
		StartedBy:            middleware.GetJWTUsername(c),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.QueueResponse{
		JobID:   job.JobID,
		Status:  string(job.Status),
		Message: fmt.Sprintf("%s import queued", kind.Label()),
	})
}

func readFormFile(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("opening upload %s: %w", fh.Filename, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("reading upload %s: %w", fh.Filename, err)
	}
	return data, nil
}
