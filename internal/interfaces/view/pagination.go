package view

import (
	"fmt"
	"io"
	"strings"

	"github.com/erp/dashboard/internal/domain/shared"
)

// MaxPageButtons is the width of the page number window
const MaxPageButtons = 5

// PageWindow returns the page numbers to show: at most five, centred on page
// where possible and clamped to [1, totalPages].
func PageWindow(page, totalPages int) []int {
	if totalPages < 1 {
		return nil
	}
	n := min(MaxPageButtons, totalPages)
	start := max(1, min(totalPages-MaxPageButtons+1, page-2))
	pages := make([]int, n)
	for i := range pages {
		pages[i] = start + i
	}
	return pages
}

// RangeLabel returns "Showing X to Y of N". X is 0 when there are no rows.
func RangeLabel(page, pageSize, total int) string {
	from, to := 0, 0
	if total > 0 {
		from = (page-1)*pageSize + 1
		to = min(page*pageSize, total)
		if from > total {
			from = total
		}
	}
	return fmt.Sprintf("Showing %s to %s of %s", FormatInt(from), FormatInt(to), FormatInt(total))
}

// Pager describes the pagination footer of a list
type Pager struct {
	Page       int
	PageSize   int
	TotalCount int
	TotalPages int
}

// Visible reports whether page navigation is shown at all
func (p Pager) Visible() bool {
	return p.TotalPages > 1
}

// HasPrev reports whether "previous" is enabled
func (p Pager) HasPrev() bool {
	return p.Page > 1
}

// HasNext reports whether "next" is enabled
func (p Pager) HasNext() bool {
	return p.Page < p.TotalPages
}

// Render writes the range label, the navigation line when visible, and the page-size selector
func (p Pager) Render(w io.Writer) error {
	var b strings.Builder
	b.WriteString(RangeLabel(p.Page, p.PageSize, p.TotalCount))
	b.WriteByte('\n')

	if p.Visible() {
		b.WriteString(navButton("< prev", p.HasPrev()))
		for _, n := range PageWindow(p.Page, p.TotalPages) {
			b.WriteByte(' ')
			if n == p.Page {
				fmt.Fprintf(&b, "[%d]", n)
			} else {
				fmt.Fprintf(&b, " %d ", n)
			}
		}
		b.WriteByte(' ')
		b.WriteString(navButton("next >", p.HasNext()))
		fmt.Fprintf(&b, "   page %d of %d\n", p.Page, p.TotalPages)
	}

	b.WriteString(PageSizeSelector(p.PageSize))
	b.WriteByte('\n')
	_, err := io.WriteString(w, b.String())
	return err
}

func navButton(label string, enabled bool) string {
	if enabled {
		return label
	}
	return strings.Repeat(" ", len(label))
}

// PageSizeSelector lists the page size options with the current one bracketed
func PageSizeSelector(current int) string {
	parts := make([]string, 0, len(shared.PageSizeOptions))
	for _, n := range shared.PageSizeOptions {
		if n == current {
			parts = append(parts, fmt.Sprintf("[%d]", n))
		} else {
			parts = append(parts, fmt.Sprint(n))
		}
	}
	return "Rows per page: " + strings.Join(parts, " ")
}
