package report

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/erp/dashboard/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// DashboardStats is the body of GET /dashboard/stats
type DashboardStats struct {
	TotalProducts   int `json:"totalProducts"`
	TotalStores     int `json:"totalStores"`
	TotalCategories int `json:"totalCategories"`
	TotalCustomers  int `json:"totalCustomers"`
	TotalBrands     int `json:"totalBrands"`
}

// Metrics implements shared.Stats
func (s DashboardStats) Metrics() []shared.Metric {
	return []shared.Metric{
		{Key: "totalProducts", Label: "Products", Value: decimal.NewFromInt(int64(s.TotalProducts))},
		{Key: "totalStores", Label: "Stores", Value: decimal.NewFromInt(int64(s.TotalStores))},
		{Key: "totalCategories", Label: "Categories", Value: decimal.NewFromInt(int64(s.TotalCategories))},
		{Key: "totalCustomers", Label: "Customers", Value: decimal.NewFromInt(int64(s.TotalCustomers))},
		{Key: "totalBrands", Label: "Brands", Value: decimal.NewFromInt(int64(s.TotalBrands))},
	}
}

// Type names an exportable report
type Type string

const (
	TypeStockCritical      Type = "stock-critical"
	TypeInventoryValuation Type = "inventory-valuation"
	TypeSalesPeriod        Type = "sales-period"
	TypeTopProducts        Type = "top-products"
	TypeSalesByCategory    Type = "sales-by-category"
)

// Types lists the exportable reports
var Types = []Type{TypeStockCritical, TypeInventoryValuation, TypeSalesPeriod, TypeTopProducts, TypeSalesByCategory}

// Format is the export file format
type Format string

const (
	FormatPDF   Format = "PDF"
	FormatExcel Format = "Excel"
)

// ParseFormat accepts "pdf" and "excel" in any case
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "pdf":
		return FormatPDF, nil
	case "excel", "xlsx":
		return FormatExcel, nil
	}
	return "", shared.NewDomainError("INVALID_FORMAT", fmt.Sprintf("Unsupported report format: %s", s))
}

// Extension returns the file extension for the format
func (f Format) Extension() string {
	if f == FormatExcel {
		return "xlsx"
	}
	return "pdf"
}

// Filters is the JSON body sent with a report export
type Filters struct {
	StartDate       *time.Time `json:"startDate,omitempty"`
	EndDate         *time.Time `json:"endDate,omitempty"`
	StoreCode       string     `json:"storeCode,omitempty"`
	CategoryID      *int       `json:"categoryId,omitempty"`
	ProductCode     string     `json:"productCode,omitempty"`
	IncludeInactive bool       `json:"includeInactive,omitempty"`
	DaysThreshold   *int       `json:"daysThreshold,omitempty"`
}

// ExportRequest describes one report download
type ExportRequest struct {
	Type    Type
	Format  Format
	Filters Filters
}

// Validate checks the report type, format and date range
func (r ExportRequest) Validate() error {
	if !slices.Contains(Types, r.Type) {
		return shared.NewDomainError("INVALID_REPORT_TYPE", fmt.Sprintf("Unknown report type: %s", r.Type))
	}
	if r.Format != FormatPDF && r.Format != FormatExcel {
		return shared.NewDomainError("INVALID_FORMAT", fmt.Sprintf("Unsupported report format: %s", r.Format))
	}
	if r.Filters.StartDate != nil && r.Filters.EndDate != nil && r.Filters.EndDate.Before(*r.Filters.StartDate) {
		return shared.NewDomainError("INVALID_DATE_RANGE", "End date must not be before start date")
	}
	return nil
}

// DefaultFileName is used when the server sends no Content-Disposition name
func (r ExportRequest) DefaultFileName(now time.Time) string {
	return fmt.Sprintf("%s_%s.%s", r.Type, now.Format("2006-01-02"), r.Format.Extension())
}

// StatsRepository computes the dashboard figures
type StatsRepository interface {
	DashboardStats(ctx context.Context) (DashboardStats, error)
}

// Table is the tabular content of a generated report
type Table struct {
	Title   string
	Columns []string
	Rows    [][]string
}

// Source produces the rows of an exportable report
type Source interface {
	ReportTable(ctx context.Context, r ExportRequest) (Table, error)
}
