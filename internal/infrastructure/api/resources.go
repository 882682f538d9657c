package api

import (
	"context"
	"fmt"
	"net/url"

	"github.com/erp/dashboard/internal/domain/catalog"
	"github.com/erp/dashboard/internal/domain/inventory"
	"github.com/erp/dashboard/internal/domain/report"
	"github.com/erp/dashboard/internal/domain/shared"
	"github.com/erp/dashboard/internal/domain/trade"
)

// ProductService lists the product catalog
type ProductService service

// List fetches GET /products
func (s *ProductService) List(ctx context.Context, q shared.Query) (shared.PageResult[catalog.Product], error) {
	resp, err := s.client.Get(ctx, "/products", q.Values())
	if err != nil {
		return shared.PageResult[catalog.Product]{}, err
	}
	return decodePage[catalog.Product, catalog.ProductStats](resp.Body, s.client.logger, "products")
}

// InventoryService lists stock positions
type InventoryService service

// List fetches GET /inventory
func (s *InventoryService) List(ctx context.Context, q shared.Query) (shared.PageResult[inventory.Item], error) {
	resp, err := s.client.Get(ctx, "/inventory", q.Values())
	if err != nil {
		return shared.PageResult[inventory.Item]{}, err
	}
	return decodePage[inventory.Item, inventory.Stats](resp.Body, s.client.logger, "inventory")
}

// SalesService lists sales documents
type SalesService service

// List fetches GET /sales
func (s *SalesService) List(ctx context.Context, q shared.Query) (shared.PageResult[trade.Sale], error) {
	resp, err := s.client.Get(ctx, "/sales", q.Values())
	if err != nil {
		return shared.PageResult[trade.Sale]{}, err
	}
	return decodePage[trade.Sale, trade.SalesStats](resp.Body, s.client.logger, "sales")
}

// StoreService reads stores and their initial-stock state
type StoreService service

// List fetches GET /stores
func (s *StoreService) List(ctx context.Context) ([]inventory.Store, error) {
	var stores []inventory.Store
	if err := s.client.getJSON(ctx, "/stores", "", nil, &stores); err != nil {
		return nil, err
	}
	for i := range stores {
		if err := validate.Struct(stores[i]); err != nil {
			return nil, fmt.Errorf("%w: store %d: %v", ErrMalformedResponse, i, err)
		}
	}
	return stores, nil
}

// ValidateStockInitial asks whether storeCode may still receive its one-time initial stock import
func (s *StoreService) ValidateStockInitial(ctx context.Context, storeCode string) (inventory.StockInitialValidation, error) {
	var v inventory.StockInitialValidation
	path := "/tandiaimport/stock-initial/validation/" + url.PathEscape(storeCode)
	err := s.client.getJSON(ctx, path, "/tandiaimport/stock-initial/validation/{storeCode}", nil, &v)
	return v, err
}

// DashboardService reads the home screen figures
type DashboardService service

// Stats fetches GET /dashboard/stats
func (s *DashboardService) Stats(ctx context.Context) (report.DashboardStats, error) {
	var stats report.DashboardStats
	resp, err := s.client.Get(ctx, "/dashboard/stats", nil)
	if err != nil {
		return stats, err
	}
	err = decodeStats(resp.Body, &stats, s.client.logger, "dashboard")
	return stats, err
}
