package catalog

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestProduct_StockFlags(t *testing.T) {
	p := Product{
		CurrentStock:  decimal.NewFromInt(5),
		MinimumStock:  decimal.NewFromInt(5),
		PurchasePrice: decimal.RequireFromString("2.50"),
		SalePrice:     decimal.RequireFromString("3.80"),
	}
	assert.True(t, p.IsLowStock())
	assert.False(t, p.IsOutOfStock())
	assert.Equal(t, "1.3", p.Margin().String())

	p.CurrentStock = decimal.Zero
	assert.True(t, p.IsOutOfStock())
}

func TestProductStats_Metrics(t *testing.T) {
	m := ProductStats{TotalProducts: 10, TotalValue: decimal.RequireFromString("1500.75")}.Metrics()
	assert.Len(t, m, 5)
	assert.True(t, m[4].Money)
	assert.Equal(t, "1500.75", m[4].Value.String())
}
