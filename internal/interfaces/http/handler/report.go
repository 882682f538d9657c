package handler

import (
	"bytes"
	"encoding/json"
	"mime"
	"net/http"
	"strconv"

	reportapp "github.com/erp/dashboard/internal/application/report"
	"github.com/erp/dashboard/internal/domain/report"
	"github.com/erp/dashboard/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// ReportHandler serves dashboard figures and report exports
type ReportHandler struct {
	BaseHandler
	reportService *reportapp.ReportService
}

// NewReportHandler creates a new ReportHandler
func NewReportHandler(reportService *reportapp.ReportService) *ReportHandler {
	return &ReportHandler{
		reportService: reportService,
	}
}

// DashboardStats handles GET /dashboard/stats
func (h *ReportHandler) DashboardStats(c *gin.Context) {
	stats, err := h.reportService.DashboardStats(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, stats)
}

// Export handles POST /reports/export/:type?format=pdf|excel.
// The optional JSON body carries report.Filters; the response is the file itself.
func (h *ReportHandler) Export(c *gin.Context) {
	var req dto.ExportRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.ValidationError(c, err)
		return
	}
	format, err := report.ParseFormat(req.Format)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	var filters report.Filters
	body, err := c.GetRawData()
	if err != nil {
		h.BadRequest(c, "Unable to read request body")
		return
	}
	if len(bytes.TrimSpace(body)) > 0 {
		if err := json.Unmarshal(body, &filters); err != nil {
			h.BadRequest(c, "Filters must be a JSON object")
			return
		}
	}

	export, err := h.reportService.Export(c.Request.Context(), report.ExportRequest{
		Type:    report.Type(c.Param("type")),
		Format:  format,
		Filters: filters,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	c.Header("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": export.FileName}))
	c.Header("X-Report-Rows", strconv.Itoa(export.Rows))
	c.Data(http.StatusOK, export.ContentType, export.Data)
}
