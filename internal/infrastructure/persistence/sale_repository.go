package persistence

import (
	"context"
	"strings"
	"time"

	"github.com/erp/dashboard/internal/domain/shared"
	"github.com/erp/dashboard/internal/domain/trade"
	"github.com/erp/dashboard/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormSaleRepository implements SaleRepository using GORM
type GormSaleRepository struct {
	db *gorm.DB
}

// NewGormSaleRepository creates a new GormSaleRepository
func NewGormSaleRepository(db *gorm.DB) *GormSaleRepository {
	return &GormSaleRepository{db: db}
}

// List returns one page of sales, newest first
func (r *GormSaleRepository) List(ctx context.Context, q shared.Query) ([]trade.Sale, int, error) {
	var total int64
	if err := r.filtered(ctx, q).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.SaleModel
	if err := r.filtered(ctx, q).
		Preload("Customer").
		Preload("Store").
		Scopes(paginate(q)).
		Order("sale_date DESC, id DESC").
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	sales := make([]trade.Sale, len(rows))
	for i := range rows {
		sales[i] = rows[i].ToDomain()
	}
	return sales, int(total), nil
}

// Stats aggregates the sales matching the search and filters of q
func (r *GormSaleRepository) Stats(ctx context.Context, q shared.Query) (trade.SalesStats, error) {
	var row struct {
		Total int
		Value float64
		Items int
	}
	err := r.filtered(ctx, q).Select(`
		COUNT(*) AS total,
		COALESCE(SUM(total), 0) AS value,
		COALESCE(SUM(item_count), 0) AS items`).
		Scan(&row).Error
	if err != nil {
		return trade.SalesStats{}, err
	}
	stats := trade.SalesStats{
		TotalSales: row.Total,
		TotalValue: decimal.NewFromFloat(row.Value).Round(2),
		TotalItems: row.Items,
	}
	if row.Total > 0 {
		stats.AverageTicket = stats.TotalValue.Div(decimal.NewFromInt(int64(row.Total))).Round(2)
	}
	return stats, nil
}

func (r *GormSaleRepository) filtered(ctx context.Context, q shared.Query) *gorm.DB {
	query := r.db.WithContext(ctx).Model(&models.SaleModel{})
	if q.Search != "" {
		p := likePattern(q.Search)
		query = query.Where(`LOWER(sale_number) LIKE ? ESCAPE '\' OR customer_id IN (SELECT id FROM customers WHERE LOWER(name) LIKE ? ESCAPE '\')`, p, p)
	}
	if code := filterString(q.Filters, trade.FilterStoreCode); code != "" {
		query = query.Where("store_id IN (SELECT id FROM stores WHERE UPPER(code) = ?)", strings.ToUpper(code))
	}
	if d, err := time.Parse(time.DateOnly, filterString(q.Filters, trade.FilterStartDate)); err == nil {
		query = query.Where("sale_date >= ?", d)
	}
	if d, err := time.Parse(time.DateOnly, filterString(q.Filters, trade.FilterEndDate)); err == nil {
		query = query.Where("sale_date < ?", d.AddDate(0, 0, 1))
	}
	return query
}

// Ensure GormSaleRepository implements SaleRepository
var _ trade.SaleRepository = (*GormSaleRepository)(nil)
