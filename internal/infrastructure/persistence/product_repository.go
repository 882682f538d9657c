package persistence

import (
	"context"

	"github.com/erp/dashboard/internal/domain/catalog"
	"github.com/erp/dashboard/internal/domain/shared"
	"github.com/erp/dashboard/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormProductRepository implements ProductRepository using GORM
type GormProductRepository struct {
	db *gorm.DB
}

// NewGormProductRepository creates a new GormProductRepository
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// List returns one page of products ordered by name
func (r *GormProductRepository) List(ctx context.Context, q shared.Query) ([]catalog.Product, int, error) {
	var total int64
	if err := r.filtered(ctx, q).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.ProductModel
	if err := r.filtered(ctx, q).
		Preload("Category").
		Preload("Brand").
		Scopes(paginate(q)).
		Order("name ASC, id ASC").
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	products := make([]catalog.Product, len(rows))
	for i := range rows {
		products[i] = rows[i].ToDomain()
	}
	return products, int(total), nil
}

// Stats aggregates the products matching the search and filters of q
func (r *GormProductRepository) Stats(ctx context.Context, q shared.Query) (catalog.ProductStats, error) {
	var row struct {
		Total      int
		Active     int
		LowStock   int
		OutOfStock int
		Value      float64
	}
	err := r.filtered(ctx, q).Select(`
		COUNT(*) AS total,
		COALESCE(SUM(CASE WHEN active THEN 1 ELSE 0 END), 0) AS active,
		COALESCE(SUM(CASE WHEN current_stock <= minimum_stock THEN 1 ELSE 0 END), 0) AS low_stock,
		COALESCE(SUM(CASE WHEN current_stock <= 0 THEN 1 ELSE 0 END), 0) AS out_of_stock,
		COALESCE(SUM(current_stock * purchase_price), 0) AS value`).
		Scan(&row).Error
	if err != nil {
		return catalog.ProductStats{}, err
	}
	return catalog.ProductStats{
		TotalProducts:      row.Total,
		ActiveProducts:     row.Active,
		LowStockProducts:   row.LowStock,
		OutOfStockProducts: row.OutOfStock,
		TotalValue:         decimal.NewFromFloat(row.Value).Round(2),
	}, nil
}

func (r *GormProductRepository) filtered(ctx context.Context, q shared.Query) *gorm.DB {
	query := r.db.WithContext(ctx).Model(&models.ProductModel{})
	if q.Search != "" {
		p := likePattern(q.Search)
		query = query.Where(`LOWER(name) LIKE ? ESCAPE '\' OR LOWER(code) LIKE ? ESCAPE '\'`, p, p)
	}
	if id, ok := filterInt(q.Filters, catalog.FilterCategoryID); ok {
		query = query.Where("category_id = ?", id)
	}
	if filterBool(q.Filters, catalog.FilterLowStock) {
		query = query.Where("current_stock <= minimum_stock")
	}
	switch filterString(q.Filters, catalog.FilterStatus) {
	case catalog.StatusActive:
		query = query.Where("active = ?", true)
	case catalog.StatusInactive:
		query = query.Where("active = ?", false)
	}
	return query
}

// Ensure GormProductRepository implements ProductRepository
var _ catalog.ProductRepository = (*GormProductRepository)(nil)
