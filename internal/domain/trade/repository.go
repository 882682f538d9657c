package trade

import (
	"context"

	"github.com/erp/dashboard/internal/domain/shared"
)

// SaleRepository defines the interface for sales persistence
type SaleRepository interface {
	// List returns one page of sales matching q and the total match count
	List(ctx context.Context, q shared.Query) ([]Sale, int, error)

	// Stats aggregates the sales matching the filters of q
	Stats(ctx context.Context, q shared.Query) (SalesStats, error)
}
