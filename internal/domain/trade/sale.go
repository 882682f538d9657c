package trade

import (
	"time"

	"github.com/erp/dashboard/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Filter keys accepted by GET /sales. Dates are formatted 2006-01-02.
const (
	FilterStoreCode = "storeCode"
	FilterStartDate = "startDate"
	FilterEndDate   = "endDate"
)

// Sale is a sales document header
type Sale struct {
	ID           int             `json:"id"`
	SaleNumber   string          `json:"saleNumber" validate:"required"`
	SaleDate     time.Time       `json:"saleDate"`
	CustomerName string          `json:"customerName,omitempty"`
	StoreName    string          `json:"storeName"`
	ItemCount    int             `json:"itemCount"`
	Total        decimal.Decimal `json:"total"`
	ImportSource string          `json:"importSource,omitempty"`
}

// Imported reports whether the sale came from a bulk import rather than manual entry
func (s Sale) Imported() bool {
	return s.ImportSource != ""
}

// SalesStats is the aggregate block returned with sales pages
type SalesStats struct {
	TotalSales    int             `json:"totalSales"`
	TotalValue    decimal.Decimal `json:"totalValue"`
	TotalItems    int             `json:"totalItems"`
	AverageTicket decimal.Decimal `json:"averageTicket"`
}

// Metrics implements shared.Stats
func (s SalesStats) Metrics() []shared.Metric {
	return []shared.Metric{
		{Key: "totalSales", Label: "Sales", Value: decimal.NewFromInt(int64(s.TotalSales))},
		{Key: "totalValue", Label: "Revenue", Value: s.TotalValue, Money: true},
		{Key: "totalItems", Label: "Items sold", Value: decimal.NewFromInt(int64(s.TotalItems))},
		{Key: "averageTicket", Label: "Average ticket", Value: s.AverageTicket, Money: true},
	}
}

var _ shared.Stats = SalesStats{}
