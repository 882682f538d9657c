package persistence

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/erp/dashboard/internal/domain/bulk"
	"github.com/erp/dashboard/internal/domain/catalog"
	"github.com/erp/dashboard/internal/domain/identity"
	"github.com/erp/dashboard/internal/domain/inventory"
	"github.com/erp/dashboard/internal/domain/shared"
	"github.com/erp/dashboard/internal/domain/trade"
	"github.com/erp/dashboard/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormProductRepository(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	f := fixture{t: t, db: db}
	drinks := f.category("Drinks")
	food := f.category("Food")

	for i := 1; i <= 37; i++ {
		cat := drinks.ID
		if i%2 == 0 {
			cat = food.ID
		}
		f.product(fmt.Sprintf("P%03d", i), fmt.Sprintf("Item %03d", i), cat, int64(i%10), 3, i != 37)
	}
	f.product("X100", "Cola 100%_max", drinks.ID, 50, 5, true)

	repo := NewGormProductRepository(db)

	t.Run("pages through every match", func(t *testing.T) {
		q := shared.Query{Page: 2, PageSize: 20, Search: "item"}
		products, total, err := repo.List(ctx, q)
		require.NoError(t, err)
		assert.Equal(t, 37, total)
		assert.Len(t, products, 17)
		assert.Equal(t, "Item 021", products[0].Name)
		assert.Equal(t, "Drinks", products[0].CategoryName)
	})

	t.Run("search escapes wildcards", func(t *testing.T) {
		products, total, err := repo.List(ctx, shared.Query{Page: 1, PageSize: 20, Search: "100%_"})
		require.NoError(t, err)
		assert.Equal(t, 1, total)
		assert.Equal(t, "X100", products[0].Code)

		_, total, err = repo.List(ctx, shared.Query{Page: 1, PageSize: 20, Search: "%"})
		require.NoError(t, err)
		assert.Equal(t, 1, total)
	})

	t.Run("filters", func(t *testing.T) {
		q := shared.NewQuery()
		q.Filters.Set(catalog.FilterCategoryID, float64(food.ID))
		_, total, err := repo.List(ctx, q)
		require.NoError(t, err)
		assert.Equal(t, 18, total)

		q = shared.NewQuery()
		q.Filters.Set(catalog.FilterStatus, catalog.StatusInactive)
		products, total, err := repo.List(ctx, q)
		require.NoError(t, err)
		assert.Equal(t, 1, total)
		assert.Equal(t, "P037", products[0].Code)

		q = shared.NewQuery()
		q.Filters.Set(catalog.FilterLowStock, "true")
		products, _, err = repo.List(ctx, q)
		require.NoError(t, err)
		for _, p := range products {
			assert.True(t, p.IsLowStock(), p.Code)
		}
	})

	t.Run("stats follow the filters", func(t *testing.T) {
		stats, err := repo.Stats(ctx, shared.Query{Search: "item"})
		require.NoError(t, err)
		assert.Equal(t, 37, stats.TotalProducts)
		assert.Equal(t, 36, stats.ActiveProducts)
		// stock i%10 <= 3 for i%10 in 0..3
		assert.Equal(t, 15, stats.LowStockProducts)
		assert.Equal(t, 3, stats.OutOfStockProducts)
		assert.True(t, stats.TotalValue.IsPositive())
	})
}

func TestGormStoreRepository(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	f := fixture{t: t, db: db}
	f.store("T02", false)
	f.store("T01", true)
	repo := NewGormStoreRepository(db)

	stores, err := repo.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, stores, 2)
	assert.Equal(t, "T01", stores[0].Code)

	store, err := repo.FindByCode(ctx, " t02 ")
	require.NoError(t, err)
	assert.False(t, store.HasInitialStock)

	require.NoError(t, repo.MarkInitialStock(ctx, "t02"))
	store, err = repo.FindByCode(ctx, "T02")
	require.NoError(t, err)
	assert.True(t, store.HasInitialStock)

	_, err = repo.FindByCode(ctx, "ZZZ")
	assert.ErrorIs(t, err, shared.ErrNotFound)
	assert.ErrorIs(t, repo.MarkInitialStock(ctx, "ZZZ"), shared.ErrNotFound)
}

func TestGormInventoryItemRepository(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	f := fixture{t: t, db: db}
	t1 := f.store("T01", true)
	t2 := f.store("T02", true)
	cat := f.category("Drinks")
	cola := f.product("P001", "Cola", cat.ID, 0, 0, true)
	water := f.product("P002", "Water", cat.ID, 0, 0, true)

	item := func(p models.ProductModel, s models.StoreModel, stock, minimum int64) {
		f.create(&models.InventoryItemModel{
			ProductID:    p.ID,
			StoreID:      s.ID,
			CurrentStock: decimal.NewFromInt(stock),
			MinimumStock: decimal.NewFromInt(minimum),
			AverageCost:  decimal.NewFromFloat(1.5),
		})
	}
	item(cola, t1, 10, 5)
	item(cola, t2, 2, 5)
	item(water, t1, 0, 5)

	repo := NewGormInventoryItemRepository(db)

	q := shared.NewQuery()
	q.Filters.Set(inventory.FilterStoreCode, "t1")
	_, total, err := repo.List(ctx, q)
	require.NoError(t, err)
	assert.Zero(t, total)

	q.Filters.Set(inventory.FilterStoreCode, "t01")
	items, total, err := repo.List(ctx, q)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	for _, it := range items {
		assert.Equal(t, "T01", it.StoreCode)
	}

	q = shared.NewQuery()
	q.Search = "cola"
	q.Filters.Set(inventory.FilterLowStock, true)
	items, total, err = repo.List(ctx, q)
	require.NoError(t, err)
	require.Equal(t, 1, total)
	assert.Equal(t, "T02", items[0].StoreCode)
	assert.True(t, items[0].IsLowStock)
	assert.Equal(t, "3", items[0].TotalValue.String())

	stats, err := repo.Stats(ctx, shared.NewQuery())
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalItems)
	assert.Equal(t, 2, stats.LowStockItems)
	assert.Equal(t, 1, stats.OutOfStockItems)
	assert.Equal(t, "18", stats.TotalValue.String())
}

func TestGormSaleRepository(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	f := fixture{t: t, db: db}
	t1 := f.store("T01", true)
	t2 := f.store("T02", true)
	ana := models.CustomerModel{Name: "Ana Torres", Document: "10000001"}
	f.create(&ana)

	day := time.Date(2026, 2, 10, 15, 0, 0, 0, time.UTC)
	sale := func(number string, store models.StoreModel, customer *uint, at time.Time, items int, total float64) {
		f.create(&models.SaleModel{
			SaleNumber: number,
			SaleDate:   at,
			StoreID:    store.ID,
			CustomerID: customer,
			ItemCount:  items,
			Total:      decimal.NewFromFloat(total),
		})
	}
	sale("B001-000001", t1, &ana.ID, day, 2, 10)
	sale("B001-000002", t1, nil, day.AddDate(0, 0, 1), 3, 20)
	sale("B001-000003", t2, nil, day.AddDate(0, 0, 2), 1, 15)

	repo := NewGormSaleRepository(db)

	sales, total, err := repo.List(ctx, shared.NewQuery())
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Equal(t, "B001-000003", sales[0].SaleNumber, "newest first")
	assert.Equal(t, "Store T02", sales[0].StoreName)

	q := shared.NewQuery()
	q.Search = "torres"
	sales, _, err = repo.List(ctx, q)
	require.NoError(t, err)
	require.Len(t, sales, 1)
	assert.Equal(t, "Ana Torres", sales[0].CustomerName)

	q = shared.NewQuery()
	q.Filters.Set(trade.FilterStoreCode, "T01")
	q.Filters.Set(trade.FilterEndDate, "2026-02-10")
	sales, _, err = repo.List(ctx, q)
	require.NoError(t, err)
	require.Len(t, sales, 1)
	assert.Equal(t, "B001-000001", sales[0].SaleNumber)

	q = shared.NewQuery()
	q.Filters.Set(trade.FilterStoreCode, "T01")
	stats, err := repo.Stats(ctx, q)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalSales)
	assert.Equal(t, 5, stats.TotalItems)
	assert.Equal(t, "30", stats.TotalValue.String())
	assert.Equal(t, "15", stats.AverageTicket.String())

	q.Filters.Set(trade.FilterStoreCode, "NONE")
	stats, err = repo.Stats(ctx, q)
	require.NoError(t, err)
	assert.Zero(t, stats.TotalSales)
	assert.True(t, stats.AverageTicket.IsZero())
}

func TestGormJobRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewGormJobRepository(newTestDB(t))
	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	for i, typ := range []bulk.JobType{bulk.JobTypeProducts, bulk.JobTypeStock, bulk.JobTypeProducts} {
		require.NoError(t, repo.Create(ctx, &bulk.Job{
			JobID:     fmt.Sprintf("job-%d", i),
			JobType:   typ,
			Status:    bulk.JobStatusQueued,
			StartedAt: start.Add(time.Duration(i) * time.Minute),
			StartedBy: []string{"ana", "ana", "luis"}[i],
		}))
	}

	job, err := repo.FindByID(ctx, "job-1")
	require.NoError(t, err)
	require.NoError(t, job.Advance(bulk.JobStatusProcessing, start))
	require.NoError(t, job.Advance(bulk.JobStatusFailed, start.Add(time.Minute)))
	job.DetailedErrors = []string{"row 2: missing SKU", "row 9: bad price"}
	require.NoError(t, repo.Save(ctx, job))

	job, err = repo.FindByID(ctx, "job-1")
	require.NoError(t, err)
	assert.Equal(t, bulk.JobStatusFailed, job.Status)
	assert.Equal(t, []string{"row 2: missing SKU", "row 9: bad price"}, job.DetailedErrors)
	require.NotNil(t, job.CompletedAt)

	_, err = repo.FindByID(ctx, "missing")
	assert.ErrorIs(t, err, shared.ErrNotFound)

	mine, err := repo.FindByUser(ctx, "ana")
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, "job-1", mine[0].JobID)

	recent, err := repo.FindRecent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "job-2", recent[0].JobID)

	jobs, total, err := repo.History(ctx, bulk.HistoryFilter{Page: 1, PageSize: 1, JobType: bulk.JobTypeProducts})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	require.Len(t, jobs, 1)
	assert.Equal(t, "job-2", jobs[0].JobID)

	_, total, err = repo.History(ctx, bulk.HistoryFilter{Status: bulk.JobStatusFailed})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
}

func TestGormUserRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewGormUserRepository(newTestDB(t))

	c := &identity.Credentials{
		User:         identity.User{Username: "ana", Email: "ana@example.com", Role: identity.RoleManager},
		PasswordHash: "hash",
	}
	require.NoError(t, repo.Create(ctx, c))
	assert.NotEmpty(t, c.User.ID)

	found, err := repo.FindByUsername(ctx, "ANA")
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", found.User.Email)
	assert.Equal(t, "hash", found.PasswordHash)

	dup := &identity.Credentials{User: identity.User{Username: "Ana", Email: "other@example.com"}}
	assert.ErrorIs(t, repo.Create(ctx, dup), shared.ErrAlreadyExists)

	_, err = repo.FindByUsername(ctx, "nobody")
	assert.ErrorIs(t, err, shared.ErrNotFound)
}
