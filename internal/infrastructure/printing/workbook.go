package printing

import (
	"time"

	"github.com/erp/dashboard/internal/domain/report"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// XLSXContentType is the media type of Excel workbooks
const XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

const workbookSheet = "Report"

// WriteWorkbook renders the table as a single-sheet Excel workbook: a title row,
// a generation timestamp, the header and one row per table row. Numeric cells
// are written as numbers.
func WriteWorkbook(table report.Table, generatedAt time.Time) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", workbookSheet); err != nil {
		return nil, NewRenderError(ErrCodeWorkbookFailed, "failed to name sheet", err)
	}

	rows := [][]any{
		{table.Title},
		{"Generated", generatedAt.Format("2006-01-02 15:04")},
		{},
		toAny(table.Columns),
	}
	for _, r := range table.Rows {
		cells := make([]any, len(r))
		for i, v := range r {
			if d, err := decimal.NewFromString(v); err == nil && v != "" {
				cells[i] = d.InexactFloat64()
				continue
			}
			cells[i] = v
		}
		rows = append(rows, cells)
	}

	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return nil, NewRenderError(ErrCodeWorkbookFailed, "invalid cell", err)
		}
		if err := f.SetSheetRow(workbookSheet, cell, &r); err != nil {
			return nil, NewRenderError(ErrCodeWorkbookFailed, "failed to write row", err)
		}
	}

	if len(table.Columns) > 0 {
		header, _ := excelize.CoordinatesToCellName(1, 4)
		last, _ := excelize.CoordinatesToCellName(len(table.Columns), 4)
		style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
		if err == nil {
			_ = f.SetCellStyle(workbookSheet, header, last, style)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, NewRenderError(ErrCodeWorkbookFailed, "failed to encode workbook", err)
	}
	return buf.Bytes(), nil
}

func toAny(s []string) []any {
	out := make([]any, len(s))
	for i, v := range s {
		out[i] = v
	}
	return out
}
