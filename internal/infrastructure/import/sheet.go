package sheetimport

import (
	"bytes"
	"strings"
	"unicode"

	"github.com/xuri/excelize/v2"
)

// Sheet is the header and data rows of one worksheet
type Sheet struct {
	headers   []string
	headerMap map[string]int
	rows      []*Row
}

// ReadXLSX parses the first worksheet of an xlsx workbook
func ReadXLSX(data []byte) (*Sheet, error) {
	if len(data) == 0 {
		return nil, ErrEmptyFile
	}
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, ErrInvalidWorkbook
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrEmptyFile
	}
	records, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, ErrInvalidWorkbook
	}
	return NewSheet(records)
}

// NewSheet builds a sheet from raw records. The first non-empty record is the header.
func NewSheet(records [][]string) (*Sheet, error) {
	s := &Sheet{headerMap: map[string]int{}}
	for i, record := range records {
		if s.headers == nil {
			if isBlank(record) {
				continue
			}
			s.headers = make([]string, len(record))
			for col, h := range record {
				s.headers[col] = strings.TrimSpace(h)
				if key := normalizeHeader(h); key != "" {
					s.headerMap[key] = col
				}
			}
			continue
		}
		if isBlank(record) {
			continue
		}
		row := &Row{LineNumber: i + 1, Data: make(map[string]string, len(s.headerMap))}
		for key, col := range s.headerMap {
			if col < len(record) {
				row.Data[key] = strings.TrimSpace(record[col])
			}
		}
		s.rows = append(s.rows, row)
	}
	if s.headers == nil {
		return nil, ErrMissingHeader
	}
	return s, nil
}

// Headers returns the header row as written in the file
func (s *Sheet) Headers() []string {
	return s.headers
}

// HasHeader checks if a column exists, ignoring case, spaces and punctuation
func (s *Sheet) HasHeader(name string) bool {
	_, ok := s.headerMap[normalizeHeader(name)]
	return ok
}

// ValidateHeaders returns the required columns missing from the sheet
func (s *Sheet) ValidateHeaders(required []string) []string {
	var missing []string
	for _, h := range required {
		if !s.HasHeader(h) {
			missing = append(missing, h)
		}
	}
	return missing
}

// Rows returns the non-empty data rows
func (s *Sheet) Rows() []*Row {
	return s.rows
}

// TotalRows returns the number of non-empty data rows
func (s *Sheet) TotalRows() int {
	return len(s.rows)
}

// Row is one data row with its 1-based line number in the sheet
type Row struct {
	LineNumber int
	Data       map[string]string
}

// Get returns the value for a column by header name
func (r *Row) Get(header string) string {
	return r.Data[normalizeHeader(header)]
}

// GetOrDefault returns the value for a column, or def when empty
func (r *Row) GetOrDefault(header, def string) string {
	if v := r.Get(header); v != "" {
		return v
	}
	return def
}

// IsEmpty returns true if the row has no non-empty values
func (r *Row) IsEmpty() bool {
	for _, v := range r.Data {
		if v != "" {
			return false
		}
	}
	return true
}

// normalizeHeader makes "Product Code", "product_code" and "productCode" equal
func normalizeHeader(h string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(h) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func isBlank(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
