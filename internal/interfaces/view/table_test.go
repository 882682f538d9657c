package view

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/erp/dashboard/internal/application/listing"
	"github.com/erp/dashboard/internal/domain/catalog"
	"github.com/erp/dashboard/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type row struct {
	Code string
	Qty  int
}

func rowTable() Table[row] {
	return Table[row]{
		Columns: []Column[row]{
			{Key: "code", Label: "Code", Value: func(r row) any { return r.Code }},
			{Key: "qty", Label: "Qty", Value: func(r row) any { return r.Qty },
				Render: func(v any, r row) string { return fmt.Sprintf("%d units", v) }},
		},
		EmptyMessage: "No products found",
	}
}

func stateOf(page, pageSize, total int, data []row) listing.State[row] {
	return listing.State[row]{
		Query:      shared.Query{Page: page, PageSize: pageSize},
		Data:       data,
		TotalCount: total,
		TotalPages: shared.TotalPagesFor(total, pageSize),
	}
}

func render(t *testing.T, tbl Table[row], s listing.State[row]) []string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, tbl.Render(&buf, s))
	return strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
}

func TestTable_RowsAreNumberedAcrossPages(t *testing.T) {
	lines := render(t, rowTable(), stateOf(2, 20, 37, []row{{"A", 1}, {"B", 2}}))

	assert.Regexp(t, `^#\s+CODE\s+QTY$`, lines[0])
	assert.Regexp(t, `^21\s+A\s+1 units$`, lines[1])
	assert.Regexp(t, `^22\s+B\s+2 units$`, lines[2])
	assert.Contains(t, strings.Join(lines, "\n"), "Showing 21 to 37 of 37")
}

func TestTable_Loading(t *testing.T) {
	s := stateOf(1, 10, 37, []row{{"A", 1}})
	s.Loading = true
	lines := render(t, rowTable(), s)

	skeletons := 0
	for _, l := range lines {
		if strings.Contains(l, skeletonCell) {
			skeletons++
		}
	}
	assert.Equal(t, 10, skeletons)
	assert.NotContains(t, strings.Join(lines, "\n"), "1 units")
}

func TestTable_Empty(t *testing.T) {
	out := strings.Join(render(t, rowTable(), stateOf(1, 20, 0, nil)), "\n")
	assert.Contains(t, out, "No products found")
	assert.Contains(t, out, "Showing 0 to 0 of 0")
	assert.NotContains(t, out, "next >")
}

func TestTable_ErrorKeepsData(t *testing.T) {
	s := stateOf(1, 20, 1, []row{{"A", 1}})
	s.Err = errors.New("Products unavailable")
	lines := render(t, rowTable(), s)

	assert.Equal(t, "! Products unavailable", lines[0])
	assert.Contains(t, strings.Join(lines, "\n"), "1 units")
}

func TestTable_MoneyColumn(t *testing.T) {
	tbl := Table[catalog.Product]{Columns: ProductColumns()}
	s := listing.State[catalog.Product]{
		Query: shared.Query{Page: 1, PageSize: 20},
		Data: []catalog.Product{{
			Code: "P-1", Name: "Arroz", CurrentStock: decimal.NewFromInt(2), MinimumStock: decimal.NewFromInt(5),
			SalePrice: decimal.RequireFromString("1234.5"), Active: true,
		}},
		TotalCount: 1,
		TotalPages: 1,
	}
	var buf bytes.Buffer
	require.NoError(t, tbl.Render(&buf, s))
	assert.Contains(t, buf.String(), "S/ 1,234.50")
	assert.Contains(t, buf.String(), "2 !")
}

func TestRenderStats(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderStats(&buf, catalog.ProductStats{TotalProducts: 37, ActiveProducts: 30, TotalValue: decimal.NewFromInt(1500)}))
	assert.Equal(t, "Products: 37 | Active: 30 | Low stock: 0 | Out of stock: 0 | Inventory value: S/ 1,500.00\n", buf.String())

	buf.Reset()
	require.NoError(t, RenderStats(&buf, nil))
	assert.Empty(t, buf.String())
}
