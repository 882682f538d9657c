package handler

import (
	"net/http"
	"strings"

	inventoryapp "github.com/erp/dashboard/internal/application/inventory"
	"github.com/erp/dashboard/internal/domain/inventory"
	"github.com/erp/dashboard/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// InventoryHandler serves stock positions and stores
type InventoryHandler struct {
	BaseHandler
	inventoryService *inventoryapp.InventoryService
}

// NewInventoryHandler creates a new InventoryHandler
func NewInventoryHandler(inventoryService *inventoryapp.InventoryService) *InventoryHandler {
	return &InventoryHandler{
		inventoryService: inventoryService,
	}
}

// List handles GET /inventory
func (h *InventoryHandler) List(c *gin.Context) {
	q, err := bindListQuery(c,
		filterParam{inventory.FilterStoreCode, filterText},
		filterParam{inventory.FilterLowStock, filterFlag},
	)
	if err != nil {
		h.bindError(c, err)
		return
	}

	page, err := h.inventoryService.List(c.Request.Context(), q)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewListResponse(page))
}

// Stores handles GET /stores. The body is a bare array.
func (h *InventoryHandler) Stores(c *gin.Context) {
	stores, err := h.inventoryService.Stores(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if stores == nil {
		stores = []inventory.Store{}
	}
	h.Success(c, stores)
}

// ValidateStockInitial handles GET /tandiaimport/stock-initial/validation/:code
func (h *InventoryHandler) ValidateStockInitial(c *gin.Context) {
	code := strings.TrimSpace(c.Param("code"))
	if code == "" {
		h.BadRequest(c, "Store code is required")
		return
	}

	v, err := h.inventoryService.ValidateStockInitial(c.Request.Context(), code)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, v)
}
