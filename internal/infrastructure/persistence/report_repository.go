package persistence

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/erp/dashboard/internal/domain/report"
	"github.com/erp/dashboard/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// topProductsLimit caps the top-products report
const topProductsLimit = 20

// GormReportRepository computes dashboard figures and report tables
type GormReportRepository struct {
	db *gorm.DB
}

// NewGormReportRepository creates a new GormReportRepository
func NewGormReportRepository(db *gorm.DB) *GormReportRepository {
	return &GormReportRepository{db: db}
}

// DashboardStats counts the main catalog entities
func (r *GormReportRepository) DashboardStats(ctx context.Context) (report.DashboardStats, error) {
	var stats report.DashboardStats
	counts := []struct {
		model any
		dst   *int
	}{
		{&models.ProductModel{}, &stats.TotalProducts},
		{&models.StoreModel{}, &stats.TotalStores},
		{&models.CategoryModel{}, &stats.TotalCategories},
		{&models.CustomerModel{}, &stats.TotalCustomers},
		{&models.BrandModel{}, &stats.TotalBrands},
	}
	for _, c := range counts {
		var n int64
		if err := r.db.WithContext(ctx).Model(c.model).Count(&n).Error; err != nil {
			return report.DashboardStats{}, err
		}
		*c.dst = int(n)
	}
	return stats, nil
}

// ReportTable builds the rows of the requested report
func (r *GormReportRepository) ReportTable(ctx context.Context, req report.ExportRequest) (report.Table, error) {
	switch req.Type {
	case report.TypeStockCritical:
		return r.stockCritical(ctx, req.Filters)
	case report.TypeInventoryValuation:
		return r.inventoryValuation(ctx, req.Filters)
	case report.TypeSalesPeriod:
		return r.salesPeriod(ctx, req.Filters)
	case report.TypeTopProducts:
		return r.topProducts(ctx, req.Filters)
	case report.TypeSalesByCategory:
		return r.salesByCategory(ctx, req.Filters)
	default:
		return report.Table{}, fmt.Errorf("unknown report type %q", req.Type)
	}
}

type itemRow struct {
	ProductCode string
	ProductName string
	StoreCode   string
	Stock       float64
	Minimum     float64
	AverageCost float64
	Value       float64
}

func (r *GormReportRepository) items(ctx context.Context, f report.Filters) *gorm.DB {
	query := r.db.WithContext(ctx).Table("inventory_items AS i").
		Joins("JOIN products p ON p.id = i.product_id").
		Joins("JOIN stores s ON s.id = i.store_id").
		Select(`p.code AS product_code, p.name AS product_name, s.code AS store_code,
			i.current_stock AS stock, i.minimum_stock AS minimum, i.average_cost AS average_cost,
			i.current_stock * i.average_cost AS value`)
	if f.StoreCode != "" {
		query = query.Where("UPPER(s.code) = ?", strings.ToUpper(f.StoreCode))
	}
	if f.CategoryID != nil {
		query = query.Where("p.category_id = ?", *f.CategoryID)
	}
	if f.ProductCode != "" {
		query = query.Where("UPPER(p.code) = ?", strings.ToUpper(f.ProductCode))
	}
	if !f.IncludeInactive {
		query = query.Where("p.active = ?", true)
	}
	return query
}

func (r *GormReportRepository) stockCritical(ctx context.Context, f report.Filters) (report.Table, error) {
	var rows []itemRow
	if err := r.items(ctx, f).
		Where("i.current_stock <= i.minimum_stock").
		Order("i.current_stock ASC, p.code ASC").
		Scan(&rows).Error; err != nil {
		return report.Table{}, err
	}
	t := report.Table{
		Title:   "Critical stock",
		Columns: []string{"Product code", "Product", "Store", "Stock", "Minimum"},
	}
	for _, row := range rows {
		t.Rows = append(t.Rows, []string{row.ProductCode, row.ProductName, row.StoreCode, qty(row.Stock), qty(row.Minimum)})
	}
	return t, nil
}

func (r *GormReportRepository) inventoryValuation(ctx context.Context, f report.Filters) (report.Table, error) {
	var rows []itemRow
	if err := r.items(ctx, f).
		Order("value DESC, p.code ASC").
		Scan(&rows).Error; err != nil {
		return report.Table{}, err
	}
	t := report.Table{
		Title:   "Inventory valuation",
		Columns: []string{"Product code", "Product", "Store", "Stock", "Average cost", "Value"},
	}
	total := decimal.Zero
	for _, row := range rows {
		value := decimal.NewFromFloat(row.Value)
		total = total.Add(value)
		t.Rows = append(t.Rows, []string{row.ProductCode, row.ProductName, row.StoreCode, qty(row.Stock), money(row.AverageCost), value.StringFixed(2)})
	}
	t.Rows = append(t.Rows, []string{"", "TOTAL", "", "", "", total.StringFixed(2)})
	return t, nil
}

// salesScope joins the store of sales aliased s and applies the store and date filters
func salesScope(query *gorm.DB, f report.Filters) *gorm.DB {
	query = query.Joins("JOIN stores st ON st.id = s.store_id")
	if f.StoreCode != "" {
		query = query.Where("UPPER(st.code) = ?", strings.ToUpper(f.StoreCode))
	}
	if f.StartDate != nil {
		query = query.Where("s.sale_date >= ?", dayStart(*f.StartDate))
	}
	if f.EndDate != nil {
		query = query.Where("s.sale_date < ?", dayStart(*f.EndDate).AddDate(0, 0, 1))
	}
	return query
}

func (r *GormReportRepository) salesPeriod(ctx context.Context, f report.Filters) (report.Table, error) {
	var rows []struct {
		SaleNumber string
		SaleDate   time.Time
		StoreCode  string
		Customer   string
		ItemCount  int
		Total      float64
	}
	if err := salesScope(r.db.WithContext(ctx).Table("sales AS s"), f).
		Joins("LEFT JOIN customers c ON c.id = s.customer_id").
		Select(`s.sale_number AS sale_number, s.sale_date AS sale_date, st.code AS store_code,
			COALESCE(c.name, '') AS customer, s.item_count AS item_count, s.total AS total`).
		Order("s.sale_date ASC, s.sale_number ASC").
		Scan(&rows).Error; err != nil {
		return report.Table{}, err
	}
	t := report.Table{
		Title:   "Sales by period",
		Columns: []string{"Sale", "Date", "Store", "Customer", "Items", "Total"},
	}
	for _, row := range rows {
		t.Rows = append(t.Rows, []string{
			row.SaleNumber, row.SaleDate.Format(time.DateOnly), row.StoreCode, row.Customer,
			strconv.Itoa(row.ItemCount), money(row.Total),
		})
	}
	return t, nil
}

func (r *GormReportRepository) lines(ctx context.Context, f report.Filters) *gorm.DB {
	query := r.db.WithContext(ctx).Table("sale_lines AS l").
		Joins("JOIN sales s ON s.id = l.sale_id").
		Joins("JOIN products p ON p.id = l.product_id")
	query = salesScope(query, f)
	if f.CategoryID != nil {
		query = query.Where("p.category_id = ?", *f.CategoryID)
	}
	return query
}

func (r *GormReportRepository) topProducts(ctx context.Context, f report.Filters) (report.Table, error) {
	var rows []struct {
		Code     string
		Name     string
		Quantity int
		Revenue  float64
	}
	if err := r.lines(ctx, f).
		Select("p.code AS code, p.name AS name, SUM(l.quantity) AS quantity, SUM(l.subtotal) AS revenue").
		Group("p.code, p.name").
		Order("revenue DESC, p.code ASC").
		Limit(topProductsLimit).
		Scan(&rows).Error; err != nil {
		return report.Table{}, err
	}
	t := report.Table{
		Title:   "Top products",
		Columns: []string{"Rank", "Product code", "Product", "Units", "Revenue"},
	}
	for i, row := range rows {
		t.Rows = append(t.Rows, []string{strconv.Itoa(i + 1), row.Code, row.Name, strconv.Itoa(row.Quantity), money(row.Revenue)})
	}
	return t, nil
}

func (r *GormReportRepository) salesByCategory(ctx context.Context, f report.Filters) (report.Table, error) {
	var rows []struct {
		Category string
		Sales    int
		Quantity int
		Revenue  float64
	}
	if err := r.lines(ctx, f).
		Joins("LEFT JOIN categories c ON c.id = p.category_id").
		Select(`COALESCE(c.name, 'Uncategorized') AS category, COUNT(DISTINCT s.id) AS sales,
			SUM(l.quantity) AS quantity, SUM(l.subtotal) AS revenue`).
		Group("COALESCE(c.name, 'Uncategorized')").
		Order("revenue DESC").
		Scan(&rows).Error; err != nil {
		return report.Table{}, err
	}
	t := report.Table{
		Title:   "Sales by category",
		Columns: []string{"Category", "Sales", "Units", "Revenue"},
	}
	for _, row := range rows {
		t.Rows = append(t.Rows, []string{row.Category, strconv.Itoa(row.Sales), strconv.Itoa(row.Quantity), money(row.Revenue)})
	}
	return t, nil
}

func dayStart(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func qty(v float64) string {
	return decimal.NewFromFloat(v).Round(2).String()
}

func money(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}

// Ensure GormReportRepository implements the report interfaces
var (
	_ report.StatsRepository = (*GormReportRepository)(nil)
	_ report.Source          = (*GormReportRepository)(nil)
)
