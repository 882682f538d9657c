package sheetimport

import (
	"fmt"
	"testing"

	"github.com/erp/dashboard/internal/domain/bulk"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProcessor_Process(t *testing.T) {
	p := NewProcessor()

	t.Run("clean stock workbook", func(t *testing.T) {
		data := workbook(t, [][]any{
			{"productCode", "quantity", "unitCost"},
			{"P0001", 10, 2.5},
			{"P0002", 0, 1},
		})
		res := p.Process(bulk.JobTypeStock, "stock.xlsx", data)

		assert.Equal(t, 2, res.TotalRecords)
		assert.Equal(t, 2, res.SuccessRecords)
		assert.Zero(t, res.ErrorRecords)
		assert.Empty(t, res.Fatal)
		assert.Equal(t, bulk.JobStatusCompleted, res.Status())
	})

	t.Run("rejected and warned rows", func(t *testing.T) {
		data := workbook(t, [][]any{
			{"productCode", "quantity", "unitCost"},
			{"P0001", 10, 2.5},
			{"P0001", 4, 2.5},
			{"P0003", 5},
		})
		res := p.Process(bulk.JobTypeStock, "stock.xlsx", data)

		assert.Equal(t, 3, res.TotalRecords)
		assert.Equal(t, 2, res.SuccessRecords)
		assert.Equal(t, 1, res.ErrorRecords)
		assert.Equal(t, 1, res.WarningRecords)
		assert.Equal(t, []string{"Row 3, column 'productCode': duplicate value 'P0001' (first seen in row 2)"}, res.Errors)
		assert.Equal(t, []string{"Row 4, column 'unitCost': value is required"}, res.Warnings)
		assert.Equal(t, bulk.JobStatusCompletedWithWarnings, res.Status())
	})

	t.Run("missing columns", func(t *testing.T) {
		data := workbook(t, [][]any{{"saleNumber", "quantity"}, {"B1", 1}})
		res := p.Process(bulk.JobTypeSales, "sales.xlsx", data)

		assert.Equal(t, "Missing required columns: saleDate, productCode, unitPrice", res.Fatal)
		assert.Equal(t, bulk.JobStatusFailed, res.Status())
	})

	t.Run("header only", func(t *testing.T) {
		data := workbook(t, [][]any{{"productCode", "quantity"}})
		res := p.Process(bulk.JobTypeTransfers, "t.xlsx", data)
		assert.Equal(t, "The first sheet has no data rows", res.Fatal)
	})

	t.Run("not a workbook", func(t *testing.T) {
		res := p.Process(bulk.JobTypeProducts, "products.xlsx", []byte("plain text"))
		assert.Equal(t, bulk.JobStatusFailed, res.Status())
		assert.Contains(t, res.Fatal, "not a readable Excel workbook")
	})

	t.Run("every row rejected", func(t *testing.T) {
		data := workbook(t, [][]any{{"code", "name", "price"}, {"A1", "Widget", -1}})
		res := p.Process(bulk.JobTypeProducts, "products.xlsx", data)
		assert.Equal(t, 1, res.ErrorRecords)
		assert.Equal(t, bulk.JobStatusFailed, res.Status())
	})

	t.Run("legacy xls", func(t *testing.T) {
		res := p.Process(bulk.JobTypeProducts, "OLD.XLS", []byte{0xd0, 0xcf})
		assert.Empty(t, res.Fatal)
		require.Len(t, res.Warnings, 1)
		assert.Equal(t, bulk.JobStatusCompletedWithWarnings, res.Status())
	})

	t.Run("unknown type", func(t *testing.T) {
		res := p.Process(bulk.JobType("RETURNS_IMPORT"), "r.xlsx", nil)
		assert.Equal(t, bulk.JobStatusFailed, res.Status())
	})
}

func TestProcessor_Limits(t *testing.T) {
	records := [][]any{{"productCode", "quantity"}}
	for i := 1; i <= 5; i++ {
		records = append(records, []any{fmt.Sprintf("P%d", i), -1})
	}
	data := workbook(t, records)

	res := NewProcessor(WithMaxErrors(2)).Process(bulk.JobTypeTransfers, "t.xlsx", data)
	assert.Equal(t, 5, res.ErrorRecords)
	require.Len(t, res.Errors, 3)
	assert.Equal(t, "... and 3 more", res.Errors[2])

	res = NewProcessor(WithMaxRows(3)).Process(bulk.JobTypeTransfers, "t.xlsx", data)
	assert.Equal(t, "Workbook has 5 rows; the limit is 3", res.Fatal)
}

func TestSchemaFor(t *testing.T) {
	for _, jt := range []bulk.JobType{
		bulk.JobTypeProducts, bulk.JobTypeStock, bulk.JobTypeSales,
		bulk.JobTypeCreditNotes, bulk.JobTypePurchases, bulk.JobTypeTransfers,
	} {
		s, ok := SchemaFor(jt)
		require.True(t, ok, jt)
		assert.NotEmpty(t, s.Headers, jt)
		assert.NotEmpty(t, s.Rules, jt)
	}
}
