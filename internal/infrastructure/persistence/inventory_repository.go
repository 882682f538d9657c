package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/erp/dashboard/internal/domain/inventory"
	"github.com/erp/dashboard/internal/domain/shared"
	"github.com/erp/dashboard/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormStoreRepository implements StoreRepository using GORM
type GormStoreRepository struct {
	db *gorm.DB
}

// NewGormStoreRepository creates a new GormStoreRepository
func NewGormStoreRepository(db *gorm.DB) *GormStoreRepository {
	return &GormStoreRepository{db: db}
}

// FindAll returns every store ordered by code
func (r *GormStoreRepository) FindAll(ctx context.Context) ([]inventory.Store, error) {
	var rows []models.StoreModel
	if err := r.db.WithContext(ctx).Order("code ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	stores := make([]inventory.Store, len(rows))
	for i := range rows {
		stores[i] = rows[i].ToDomain()
	}
	return stores, nil
}

// FindByCode finds a store by code, case-insensitively
func (r *GormStoreRepository) FindByCode(ctx context.Context, code string) (*inventory.Store, error) {
	var row models.StoreModel
	if err := r.db.WithContext(ctx).
		Where("UPPER(code) = ?", strings.ToUpper(strings.TrimSpace(code))).
		First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	store := row.ToDomain()
	return &store, nil
}

// MarkInitialStock records that the store received its initial stock load
func (r *GormStoreRepository) MarkInitialStock(ctx context.Context, code string) error {
	res := r.db.WithContext(ctx).Model(&models.StoreModel{}).
		Where("UPPER(code) = ?", strings.ToUpper(strings.TrimSpace(code))).
		Update("has_initial_stock", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// GormInventoryItemRepository implements ItemRepository using GORM
type GormInventoryItemRepository struct {
	db *gorm.DB
}

// NewGormInventoryItemRepository creates a new GormInventoryItemRepository
func NewGormInventoryItemRepository(db *gorm.DB) *GormInventoryItemRepository {
	return &GormInventoryItemRepository{db: db}
}

// List returns one page of stock positions ordered by product and store
func (r *GormInventoryItemRepository) List(ctx context.Context, q shared.Query) ([]inventory.Item, int, error) {
	var total int64
	if err := r.filtered(ctx, q).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.InventoryItemModel
	if err := r.filtered(ctx, q).
		Preload("Product").
		Preload("Store").
		Scopes(paginate(q)).
		Order("product_id ASC, store_id ASC").
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	items := make([]inventory.Item, len(rows))
	for i := range rows {
		items[i] = rows[i].ToDomain()
	}
	return items, int(total), nil
}

// Stats aggregates the positions matching the search and filters of q
func (r *GormInventoryItemRepository) Stats(ctx context.Context, q shared.Query) (inventory.Stats, error) {
	var row struct {
		Total      int
		LowStock   int
		OutOfStock int
		Value      float64
	}
	err := r.filtered(ctx, q).Select(`
		COUNT(*) AS total,
		COALESCE(SUM(CASE WHEN current_stock <= minimum_stock THEN 1 ELSE 0 END), 0) AS low_stock,
		COALESCE(SUM(CASE WHEN current_stock <= 0 THEN 1 ELSE 0 END), 0) AS out_of_stock,
		COALESCE(SUM(current_stock * average_cost), 0) AS value`).
		Scan(&row).Error
	if err != nil {
		return inventory.Stats{}, err
	}
	return inventory.Stats{
		TotalItems:      row.Total,
		LowStockItems:   row.LowStock,
		OutOfStockItems: row.OutOfStock,
		TotalValue:      decimal.NewFromFloat(row.Value).Round(2),
	}, nil
}

func (r *GormInventoryItemRepository) filtered(ctx context.Context, q shared.Query) *gorm.DB {
	query := r.db.WithContext(ctx).Model(&models.InventoryItemModel{})
	if q.Search != "" {
		p := likePattern(q.Search)
		query = query.Where(`product_id IN (SELECT id FROM products WHERE LOWER(name) LIKE ? ESCAPE '\' OR LOWER(code) LIKE ? ESCAPE '\')`, p, p)
	}
	if code := filterString(q.Filters, inventory.FilterStoreCode); code != "" {
		query = query.Where("store_id IN (SELECT id FROM stores WHERE UPPER(code) = ?)", strings.ToUpper(code))
	}
	if filterBool(q.Filters, inventory.FilterLowStock) {
		query = query.Where("current_stock <= minimum_stock")
	}
	return query
}

var (
	_ inventory.StoreRepository = (*GormStoreRepository)(nil)
	_ inventory.ItemRepository  = (*GormInventoryItemRepository)(nil)
)
