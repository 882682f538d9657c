package imports

import (
	"context"
	"testing"

	"github.com/erp/dashboard/internal/domain/inventory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestStockInitialGuard_SelectStoreRechecks(t *testing.T) {
	validator := new(MockValidator)
	validator.On("ValidateStockInitial", mock.Anything, "T01").
		Return(inventory.StockInitialValidation{CanPerformStockInitial: true}, nil).Twice()
	validator.On("ValidateStockInitial", mock.Anything, "T02").
		Return(inventory.StockInitialValidation{CanPerformStockInitial: false, ValidationMessage: "done"}, nil).Once()
	guard := NewStockInitialGuard(validator, nil)
	ctx := context.Background()

	v, err := guard.SelectStore(ctx, "T01")
	require.NoError(t, err)
	assert.True(t, v.Allowed)

	// same selection reuses the cached verdict
	_, err = guard.SelectStore(ctx, "T01")
	require.NoError(t, err)
	require.NoError(t, guard.Check(ctx, "T01"))

	v, err = guard.SelectStore(ctx, "T02")
	require.NoError(t, err)
	assert.False(t, v.Allowed)
	assert.Equal(t, "done", v.Message)
	assert.Equal(t, "T02", guard.Selected())

	// switching back re-checks
	_, err = guard.SelectStore(ctx, "T01")
	require.NoError(t, err)

	validator.AssertExpectations(t)
}

func TestStockInitialGuard_EmptySelection(t *testing.T) {
	validator := new(MockValidator)
	guard := NewStockInitialGuard(validator, nil)

	v, err := guard.SelectStore(context.Background(), "")
	require.NoError(t, err)
	assert.False(t, v.Allowed)
	validator.AssertNotCalled(t, "ValidateStockInitial", mock.Anything, mock.Anything)
}

func TestStockInitialGuard_InvalidateMarksKnownStore(t *testing.T) {
	validator := new(MockValidator)
	validator.On("ValidateStockInitial", mock.Anything, "T01").
		Return(inventory.StockInitialValidation{CanPerformStockInitial: true}, nil).Once()
	guard := NewStockInitialGuard(validator, nil)
	guard.SetStores([]inventory.Store{{Code: "T01", Name: "Centro"}})
	ctx := context.Background()

	require.NoError(t, guard.Check(ctx, "T01"))

	guard.Invalidate("T01")
	err := guard.Check(ctx, "T01")
	assert.Equal(t, ErrCodeStockInitialDone, ValidationCode(err))
	validator.AssertNumberOfCalls(t, "ValidateStockInitial", 1)
}
