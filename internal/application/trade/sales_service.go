package trade

import (
	"context"
	"fmt"

	"github.com/erp/dashboard/internal/domain/shared"
	"github.com/erp/dashboard/internal/domain/trade"
	"go.uber.org/zap"
)

// SalesService serves the paginated sales list
type SalesService struct {
	repo   trade.SaleRepository
	logger *zap.Logger
}

// NewSalesService creates a new SalesService
func NewSalesService(repo trade.SaleRepository, logger *zap.Logger) *SalesService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SalesService{repo: repo, logger: logger}
}

// List returns one page of sales, newest first, with totals over every match
func (s *SalesService) List(ctx context.Context, q shared.Query) (shared.PageResult[trade.Sale], error) {
	q = q.Normalize()
	q.PageSize = min(q.PageSize, shared.MaxPageSize)

	sales, total, err := s.repo.List(ctx, q)
	if err != nil {
		return shared.PageResult[trade.Sale]{}, fmt.Errorf("failed to list sales: %w", err)
	}
	stats, err := s.repo.Stats(ctx, q)
	if err != nil {
		return shared.PageResult[trade.Sale]{}, fmt.Errorf("failed to compute sales stats: %w", err)
	}
	return shared.NewPageResult(sales, total, q, stats), nil
}
