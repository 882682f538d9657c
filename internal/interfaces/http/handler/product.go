package handler

import (
	"net/http"

	catalogapp "github.com/erp/dashboard/internal/application/catalog"
	"github.com/erp/dashboard/internal/domain/catalog"
	"github.com/erp/dashboard/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// ProductHandler handles product-related API endpoints
type ProductHandler struct {
	BaseHandler
	productService *catalogapp.ProductService
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(productService *catalogapp.ProductService) *ProductHandler {
	return &ProductHandler{
		productService: productService,
	}
}

// List handles GET /products.
// Query: page, pageSize, search, categoryId, lowStock, status (active|inactive).
func (h *ProductHandler) List(c *gin.Context) {
	q, err := bindListQuery(c,
		filterParam{catalog.FilterCategoryID, filterNumber},
		filterParam{catalog.FilterLowStock, filterFlag},
		filterParam{catalog.FilterStatus, filterText},
	)
	if err != nil {
		h.bindError(c, err)
		return
	}

	page, err := h.productService.List(c.Request.Context(), q)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewListResponse(page))
}
