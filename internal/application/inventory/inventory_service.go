package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/erp/dashboard/internal/domain/inventory"
	"github.com/erp/dashboard/internal/domain/shared"
	"go.uber.org/zap"
)

// InventoryService serves stock positions and store lookups
type InventoryService struct {
	items  inventory.ItemRepository
	stores inventory.StoreRepository
	logger *zap.Logger
}

// NewInventoryService creates a new InventoryService
func NewInventoryService(items inventory.ItemRepository, stores inventory.StoreRepository, logger *zap.Logger) *InventoryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InventoryService{items: items, stores: stores, logger: logger}
}

// List returns one page of stock positions with stats over every match
func (s *InventoryService) List(ctx context.Context, q shared.Query) (shared.PageResult[inventory.Item], error) {
	q = q.Normalize()
	q.PageSize = min(q.PageSize, shared.MaxPageSize)

	items, total, err := s.items.List(ctx, q)
	if err != nil {
		return shared.PageResult[inventory.Item]{}, fmt.Errorf("failed to list inventory: %w", err)
	}
	stats, err := s.items.Stats(ctx, q)
	if err != nil {
		return shared.PageResult[inventory.Item]{}, fmt.Errorf("failed to compute inventory stats: %w", err)
	}
	return shared.NewPageResult(items, total, q, stats), nil
}

// Stores returns every store
func (s *InventoryService) Stores(ctx context.Context) ([]inventory.Store, error) {
	stores, err := s.stores.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list stores: %w", err)
	}
	return stores, nil
}

// ValidateStockInitial reports whether a store may still receive its initial stock import
func (s *InventoryService) ValidateStockInitial(ctx context.Context, code string) (inventory.StockInitialValidation, error) {
	store, err := s.stores.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return inventory.StockInitialValidation{
				ValidationMessage: fmt.Sprintf("Store %s does not exist", code),
			}, nil
		}
		return inventory.StockInitialValidation{}, err
	}
	if err := store.CanAcceptStockInitial(); err != nil {
		return inventory.StockInitialValidation{
			ValidationMessage: fmt.Sprintf("Store %s already has initial stock loaded", store.Code),
		}, nil
	}
	return inventory.StockInitialValidation{CanPerformStockInitial: true}, nil
}

// MarkInitialStock records a completed initial stock import for the store
func (s *InventoryService) MarkInitialStock(ctx context.Context, code string) error {
	if err := s.stores.MarkInitialStock(ctx, code); err != nil {
		return fmt.Errorf("failed to mark initial stock for %s: %w", code, err)
	}
	s.logger.Info("Store initial stock recorded", zap.String("store_code", code))
	return nil
}
