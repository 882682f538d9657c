package catalog

import (
	"context"

	"github.com/erp/dashboard/internal/domain/shared"
)

// ProductRepository defines the interface for product persistence
type ProductRepository interface {
	// List returns one page of products matching q and the total match count
	List(ctx context.Context, q shared.Query) ([]Product, int, error)

	// Stats aggregates the products matching the filters of q
	Stats(ctx context.Context, q shared.Query) (ProductStats, error)
}
