package handler

import (
	"net/http"

	tradeapp "github.com/erp/dashboard/internal/application/trade"
	"github.com/erp/dashboard/internal/domain/trade"
	"github.com/erp/dashboard/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// SalesHandler serves sales documents
type SalesHandler struct {
	BaseHandler
	salesService *tradeapp.SalesService
}

// NewSalesHandler creates a new SalesHandler
func NewSalesHandler(salesService *tradeapp.SalesService) *SalesHandler {
	return &SalesHandler{
		salesService: salesService,
	}
}

// List handles GET /sales.
// Query: page, pageSize, search, storeCode, startDate, endDate (YYYY-MM-DD).
func (h *SalesHandler) List(c *gin.Context) {
	q, err := bindListQuery(c,
		filterParam{trade.FilterStoreCode, filterText},
		filterParam{trade.FilterStartDate, filterText},
		filterParam{trade.FilterEndDate, filterText},
	)
	if err != nil {
		h.bindError(c, err)
		return
	}

	page, err := h.salesService.List(c.Request.Context(), q)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewListResponse(page))
}
