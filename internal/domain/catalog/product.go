package catalog

import (
	"github.com/erp/dashboard/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Filter keys accepted by GET /products
const (
	FilterCategoryID = "categoryId"
	FilterLowStock   = "lowStock"
	FilterStatus     = "status"
)

// Product status filter values
const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

// Product is a catalog entry as listed by the inventory API
type Product struct {
	ID            int             `json:"id"`
	Code          string          `json:"code" validate:"required"`
	Name          string          `json:"name" validate:"required"`
	Description   string          `json:"description,omitempty"`
	CategoryName  string          `json:"categoryName,omitempty"`
	BrandName     string          `json:"brandName,omitempty"`
	CurrentStock  decimal.Decimal `json:"currentStock"`
	MinimumStock  decimal.Decimal `json:"minimumStock"`
	PurchasePrice decimal.Decimal `json:"purchasePrice"`
	SalePrice     decimal.Decimal `json:"salePrice"`
	Active        bool            `json:"active"`
}

// IsLowStock reports stock at or below the configured minimum
func (p Product) IsLowStock() bool {
	return p.CurrentStock.LessThanOrEqual(p.MinimumStock)
}

// IsOutOfStock reports zero or negative stock
func (p Product) IsOutOfStock() bool {
	return !p.CurrentStock.IsPositive()
}

// Margin returns the unit margin between sale and purchase price
func (p Product) Margin() decimal.Decimal {
	return p.SalePrice.Sub(p.PurchasePrice)
}

// ProductStats is the aggregate block returned with product pages
type ProductStats struct {
	TotalProducts      int             `json:"totalProducts"`
	ActiveProducts     int             `json:"activeProducts"`
	LowStockProducts   int             `json:"lowStockProducts"`
	OutOfStockProducts int             `json:"outOfStockProducts"`
	TotalValue         decimal.Decimal `json:"totalValue"`
}

// Metrics implements shared.Stats
func (s ProductStats) Metrics() []shared.Metric {
	return []shared.Metric{
		{Key: "totalProducts", Label: "Products", Value: decimal.NewFromInt(int64(s.TotalProducts))},
		{Key: "activeProducts", Label: "Active", Value: decimal.NewFromInt(int64(s.ActiveProducts))},
		{Key: "lowStockProducts", Label: "Low stock", Value: decimal.NewFromInt(int64(s.LowStockProducts))},
		{Key: "outOfStockProducts", Label: "Out of stock", Value: decimal.NewFromInt(int64(s.OutOfStockProducts))},
		{Key: "totalValue", Label: "Inventory value", Value: s.TotalValue, Money: true},
	}
}

var _ shared.Stats = ProductStats{}
