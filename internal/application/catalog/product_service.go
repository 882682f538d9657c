package catalog

import (
	"context"
	"fmt"

	"github.com/erp/dashboard/internal/domain/catalog"
	"github.com/erp/dashboard/internal/domain/shared"
	"go.uber.org/zap"
)

// ProductService serves the paginated product list
type ProductService struct {
	repo   catalog.ProductRepository
	logger *zap.Logger
}

// NewProductService creates a new ProductService
func NewProductService(repo catalog.ProductRepository, logger *zap.Logger) *ProductService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProductService{repo: repo, logger: logger}
}

// List returns one page of products with aggregate stats over every match
func (s *ProductService) List(ctx context.Context, q shared.Query) (shared.PageResult[catalog.Product], error) {
	q = q.Normalize()
	if q.PageSize > shared.MaxPageSize {
		q.PageSize = shared.MaxPageSize
	}

	products, total, err := s.repo.List(ctx, q)
	if err != nil {
		return shared.PageResult[catalog.Product]{}, fmt.Errorf("failed to list products: %w", err)
	}
	stats, err := s.repo.Stats(ctx, q)
	if err != nil {
		return shared.PageResult[catalog.Product]{}, fmt.Errorf("failed to compute product stats: %w", err)
	}

	s.logger.Debug("Listed products",
		zap.Int("page", q.Page),
		zap.Int("count", len(products)),
		zap.Int("total", total))
	return shared.NewPageResult(products, total, q, stats), nil
}
