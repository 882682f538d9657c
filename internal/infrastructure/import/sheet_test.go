package sheetimport

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// workbook builds an xlsx file whose first sheet holds records
func workbook(t *testing.T, records [][]any) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	for i, record := range records {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &record))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func TestReadXLSX(t *testing.T) {
	data := workbook(t, [][]any{
		{"Product Code", "Quantity", "unit_cost"},
		{"P0001", 10, "2.50"},
		{},
		{" P0002 ", 3},
	})

	sheet, err := ReadXLSX(data)
	require.NoError(t, err)

	assert.Equal(t, []string{"Product Code", "Quantity", "unit_cost"}, sheet.Headers())
	assert.True(t, sheet.HasHeader("productCode"))
	assert.True(t, sheet.HasHeader("UNIT COST"))
	assert.Empty(t, sheet.ValidateHeaders([]string{"productCode", "quantity"}))
	assert.Equal(t, []string{"storeCode"}, sheet.ValidateHeaders([]string{"storeCode"}))

	require.Equal(t, 2, sheet.TotalRows())
	first, second := sheet.Rows()[0], sheet.Rows()[1]
	assert.Equal(t, 2, first.LineNumber)
	assert.Equal(t, "10", first.Get("quantity"))
	assert.Equal(t, "2.50", first.Get("unitCost"))
	assert.Equal(t, 4, second.LineNumber)
	assert.Equal(t, "P0002", second.Get("product_code"))
	assert.Equal(t, "n/a", second.GetOrDefault("unitCost", "n/a"))
}

func TestReadXLSX_Errors(t *testing.T) {
	_, err := ReadXLSX(nil)
	assert.ErrorIs(t, err, ErrEmptyFile)

	_, err = ReadXLSX([]byte("code,quantity\nP1,2\n"))
	assert.ErrorIs(t, err, ErrInvalidWorkbook)

	_, err = ReadXLSX(workbook(t, nil))
	assert.ErrorIs(t, err, ErrMissingHeader)
}

func TestNewSheet_SkipsLeadingBlankRows(t *testing.T) {
	sheet, err := NewSheet([][]string{
		{"", " "},
		{"code", "name"},
		{"A1", "Widget"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"code", "name"}, sheet.Headers())
	require.Len(t, sheet.Rows(), 1)
	assert.Equal(t, 3, sheet.Rows()[0].LineNumber)
	assert.False(t, sheet.Rows()[0].IsEmpty())
}

func TestRow_IsEmpty(t *testing.T) {
	assert.True(t, (&Row{Data: map[string]string{"code": ""}}).IsEmpty())
	assert.False(t, (&Row{Data: map[string]string{"code": "x"}}).IsEmpty())
}
