package inventory

import (
	"github.com/erp/dashboard/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Filter keys accepted by GET /inventory
const (
	FilterStoreCode = "storeCode"
	FilterLowStock  = "lowStock"
)

// Item is the stock position of one product in one store
type Item struct {
	ProductCode  string          `json:"productCode" validate:"required"`
	ProductName  string          `json:"productName"`
	StoreCode    string          `json:"storeCode"`
	StoreName    string          `json:"storeName"`
	CurrentStock decimal.Decimal `json:"currentStock"`
	MinimumStock decimal.Decimal `json:"minimumStock"`
	MaximumStock decimal.Decimal `json:"maximumStock"`
	AverageCost  decimal.Decimal `json:"averageCost"`
	TotalValue   decimal.Decimal `json:"totalValue"`
	IsLowStock   bool            `json:"isLowStock"`
}

// StockLevel classifies the item for status badges
func (i Item) StockLevel() string {
	switch {
	case !i.CurrentStock.IsPositive():
		return "OUT"
	case i.IsLowStock:
		return "LOW"
	case i.MaximumStock.IsPositive() && i.CurrentStock.GreaterThan(i.MaximumStock):
		return "OVER"
	default:
		return "OK"
	}
}

// Stats is the aggregate block returned with inventory pages
type Stats struct {
	TotalItems      int             `json:"totalItems"`
	LowStockItems   int             `json:"lowStockItems"`
	OutOfStockItems int             `json:"outOfStockItems"`
	TotalValue      decimal.Decimal `json:"totalValue"`
}

// Metrics implements shared.Stats
func (s Stats) Metrics() []shared.Metric {
	return []shared.Metric{
		{Key: "totalItems", Label: "Items", Value: decimal.NewFromInt(int64(s.TotalItems))},
		{Key: "lowStockItems", Label: "Low stock", Value: decimal.NewFromInt(int64(s.LowStockItems))},
		{Key: "outOfStockItems", Label: "Out of stock", Value: decimal.NewFromInt(int64(s.OutOfStockItems))},
		{Key: "totalValue", Label: "Stock value", Value: s.TotalValue, Money: true},
	}
}

var _ shared.Stats = Stats{}
