package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/erp/dashboard/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// Pinger reports whether a dependency is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// SystemHandler serves the health endpoint
type SystemHandler struct {
	BaseHandler
	db           Pinger
	pdfAvailable bool
	startTime    time.Time
}

// NewSystemHandler creates a new SystemHandler
func NewSystemHandler(db Pinger, pdfAvailable bool) *SystemHandler {
	return &SystemHandler{
		db:           db,
		pdfAvailable: pdfAvailable,
		startTime:    time.Now(),
	}
}

// Health handles GET /health. It answers 503 when the database is unreachable.
func (h *SystemHandler) Health(c *gin.Context) {
	resp := dto.HealthResponse{
		Status:   "ok",
		Database: "up",
		PDF:      h.pdfAvailable,
		Uptime:   time.Since(h.startTime).Round(time.Second).String(),
	}
	status := http.StatusOK

	if h.db != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := h.db.Ping(ctx); err != nil {
			resp.Status = "degraded"
			resp.Database = "down"
			status = http.StatusServiceUnavailable
		}
	}
	c.JSON(status, resp)
}
