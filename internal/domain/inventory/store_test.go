package inventory

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestStore_CanAcceptStockInitial(t *testing.T) {
	assert.NoError(t, Store{Code: "T001"}.CanAcceptStockInitial())

	err := Store{Code: "T002", HasInitialStock: true}.CanAcceptStockInitial()
	assert.True(t, errors.Is(err, ErrStockInitialDone))
}

func TestFindStore(t *testing.T) {
	stores := []Store{{Code: "T001", Name: "Centro"}, {Code: "T002", Name: "Norte"}}

	s, ok := FindStore(stores, "t002")
	assert.True(t, ok)
	assert.Equal(t, "T002 - Norte", s.Label())

	_, ok = FindStore(stores, "T003")
	assert.False(t, ok)
}

func TestItem_StockLevel(t *testing.T) {
	d := decimal.NewFromInt
	assert.Equal(t, "OUT", Item{CurrentStock: d(0)}.StockLevel())
	assert.Equal(t, "LOW", Item{CurrentStock: d(2), IsLowStock: true}.StockLevel())
	assert.Equal(t, "OVER", Item{CurrentStock: d(120), MaximumStock: d(100)}.StockLevel())
	assert.Equal(t, "OK", Item{CurrentStock: d(50), MaximumStock: d(100)}.StockLevel())
}
