package view

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/erp/dashboard/internal/application/listing"
)

// DefaultEmptyMessage is shown for an empty, settled list
const DefaultEmptyMessage = "No data available"

const skeletonCell = "░░░░░░"

// Column describes one table column. Value extracts the cell value; Render,
// when set, turns it into text. Without Render the value goes through FormatValue.
type Column[T any] struct {
	Key    string
	Label  string
	Value  func(T) any
	Render func(value any, row T) string
}

func (c Column[T]) cell(row T) string {
	var v any
	if c.Value != nil {
		v = c.Value(row)
	}
	if c.Render != nil {
		return c.Render(v, row)
	}
	return FormatValue(v)
}

// Table renders a list controller snapshot
type Table[T any] struct {
	Columns      []Column[T]
	EmptyMessage string
	// MaxCellWidth truncates long cells; zero disables truncation
	MaxCellWidth int
}

// RowNumber returns the 1-based position of row i of page across the whole list
func RowNumber(page, pageSize, i int) int {
	return (page-1)*pageSize + i + 1
}

// Render writes the error banner, the header, the body and the pager footer
func (t Table[T]) Render(w io.Writer, s listing.State[T]) error {
	if msg := s.ErrorMessage(); msg != "" {
		if err := ErrorBanner(w, msg); err != nil {
			return err
		}
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	header := make([]string, 0, len(t.Columns)+1)
	header = append(header, "#")
	for _, c := range t.Columns {
		header = append(header, strings.ToUpper(c.Label))
	}
	fmt.Fprintln(tw, strings.Join(header, "\t"))

	switch {
	case s.Loading:
		for range s.Query.PageSize {
			cells := make([]string, len(t.Columns)+1)
			for i := range cells {
				cells[i] = skeletonCell
			}
			fmt.Fprintln(tw, strings.Join(cells, "\t"))
		}
	case len(s.Data) == 0:
		msg := t.EmptyMessage
		if msg == "" {
			msg = DefaultEmptyMessage
		}
		fmt.Fprintln(tw, "\t"+msg)
	default:
		for i, row := range s.Data {
			cells := make([]string, 0, len(t.Columns)+1)
			cells = append(cells, strconv.Itoa(RowNumber(s.Query.Page, s.Query.PageSize, i)))
			for _, c := range t.Columns {
				cells = append(cells, t.clip(sanitize(c.cell(row))))
			}
			fmt.Fprintln(tw, strings.Join(cells, "\t"))
		}
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintln(w)
	return PagerFor(s).Render(w)
}

func (t Table[T]) clip(s string) string {
	if t.MaxCellWidth > 0 {
		return Truncate(s, t.MaxCellWidth)
	}
	return s
}

// sanitize keeps a cell on one line and out of tabwriter's column logic
func sanitize(s string) string {
	return strings.NewReplacer("\t", " ", "\n", " ", "\r", "").Replace(s)
}

// PagerFor builds the footer of a controller snapshot
func PagerFor[T any](s listing.State[T]) Pager {
	return Pager{
		Page:       s.Query.Page,
		PageSize:   s.Query.PageSize,
		TotalCount: s.TotalCount,
		TotalPages: s.TotalPages,
	}
}

// ErrorBanner writes an inline error line
func ErrorBanner(w io.Writer, msg string) error {
	_, err := fmt.Fprintf(w, "! %s\n", msg)
	return err
}
