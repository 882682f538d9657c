package inventory

import (
	"context"
	"errors"
	"testing"

	"github.com/erp/dashboard/internal/domain/inventory"
	"github.com/erp/dashboard/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockItemRepository struct {
	mock.Mock
}

func (m *MockItemRepository) List(ctx context.Context, q shared.Query) ([]inventory.Item, int, error) {
	args := m.Called(ctx, q)
	return args.Get(0).([]inventory.Item), args.Int(1), args.Error(2)
}

func (m *MockItemRepository) Stats(ctx context.Context, q shared.Query) (inventory.Stats, error) {
	args := m.Called(ctx, q)
	return args.Get(0).(inventory.Stats), args.Error(1)
}

type MockStoreRepository struct {
	mock.Mock
}

func (m *MockStoreRepository) FindAll(ctx context.Context) ([]inventory.Store, error) {
	args := m.Called(ctx)
	return args.Get(0).([]inventory.Store), args.Error(1)
}

func (m *MockStoreRepository) FindByCode(ctx context.Context, code string) (*inventory.Store, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inventory.Store), args.Error(1)
}

func (m *MockStoreRepository) MarkInitialStock(ctx context.Context, code string) error {
	return m.Called(ctx, code).Error(0)
}

func TestInventoryService_List(t *testing.T) {
	ctx := context.Background()
	items := new(MockItemRepository)
	items.On("List", ctx, mock.Anything).Return([]inventory.Item{{ProductCode: "P0001"}}, 21, nil)
	items.On("Stats", ctx, mock.Anything).Return(inventory.Stats{TotalItems: 21}, nil)

	page, err := NewInventoryService(items, new(MockStoreRepository), nil).List(ctx, shared.Query{Page: 2, PageSize: 20})
	require.NoError(t, err)
	assert.Equal(t, 2, page.TotalPages)
	assert.Equal(t, inventory.Stats{TotalItems: 21}, page.Stats)
}

func TestInventoryService_ValidateStockInitial(t *testing.T) {
	ctx := context.Background()
	stores := new(MockStoreRepository)
	stores.On("FindByCode", ctx, "T01").Return(&inventory.Store{Code: "T01", HasInitialStock: true}, nil)
	stores.On("FindByCode", ctx, "T02").Return(&inventory.Store{Code: "T02"}, nil)
	stores.On("FindByCode", ctx, "ZZZ").Return(nil, shared.ErrNotFound)
	stores.On("FindByCode", ctx, "ERR").Return(nil, errors.New("db down"))
	svc := NewInventoryService(new(MockItemRepository), stores, nil)

	v, err := svc.ValidateStockInitial(ctx, "T01")
	require.NoError(t, err)
	assert.False(t, v.CanPerformStockInitial)
	assert.Equal(t, "Store T01 already has initial stock loaded", v.ValidationMessage)

	v, err = svc.ValidateStockInitial(ctx, "T02")
	require.NoError(t, err)
	assert.True(t, v.CanPerformStockInitial)
	assert.Empty(t, v.ValidationMessage)

	v, err = svc.ValidateStockInitial(ctx, "ZZZ")
	require.NoError(t, err)
	assert.False(t, v.CanPerformStockInitial)

	_, err = svc.ValidateStockInitial(ctx, "ERR")
	assert.Error(t, err)
}

func TestInventoryService_MarkInitialStock(t *testing.T) {
	ctx := context.Background()
	stores := new(MockStoreRepository)
	stores.On("MarkInitialStock", ctx, "T02").Return(nil)
	stores.On("MarkInitialStock", ctx, "ZZZ").Return(shared.ErrNotFound)
	svc := NewInventoryService(new(MockItemRepository), stores, nil)

	assert.NoError(t, svc.MarkInitialStock(ctx, "T02"))
	assert.ErrorIs(t, svc.MarkInitialStock(ctx, "ZZZ"), shared.ErrNotFound)
}
