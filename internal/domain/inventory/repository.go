package inventory

import (
	"context"

	"github.com/erp/dashboard/internal/domain/shared"
)

// StoreRepository defines the interface for store persistence
type StoreRepository interface {
	// FindAll returns every store ordered by code
	FindAll(ctx context.Context) ([]Store, error)

	// FindByCode finds a store by code, returning shared.ErrNotFound when missing
	FindByCode(ctx context.Context, code string) (*Store, error)

	// MarkInitialStock records that the store received its initial stock load
	MarkInitialStock(ctx context.Context, code string) error
}

// ItemRepository defines the interface for stock position persistence
type ItemRepository interface {
	// List returns one page of stock positions matching q and the total match count
	List(ctx context.Context, q shared.Query) ([]Item, int, error)

	// Stats aggregates the positions matching the filters of q
	Stats(ctx context.Context, q shared.Query) (Stats, error)
}
