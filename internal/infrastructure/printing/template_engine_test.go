package printing

import (
	"html/template"
	"strings"
	"testing"
	"time"

	"github.com/erp/dashboard/internal/domain/report"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var generated = time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)

func TestTemplateEngine_RenderReport(t *testing.T) {
	engine := NewTemplateEngine()

	t.Run("rows", func(t *testing.T) {
		html, err := engine.RenderReport(report.Table{
			Title:   "stock critical",
			Columns: []string{"Code", "Name", "Stock"},
			Rows: [][]string{
				{"P0001", "Rice <5kg>", "3"},
				{"P0002", "Beans", "0.5"},
			},
		}, generated)
		require.NoError(t, err)

		assert.Contains(t, html, "<h1>Stock Critical</h1>")
		assert.Contains(t, html, "Generated 2024-05-01 09:30 | 2 rows")
		assert.Contains(t, html, "<th>Code</th><th>Name</th><th>Stock</th>")
		assert.Contains(t, html, "<td>Rice &lt;5kg&gt;</td>")
		assert.Contains(t, html, `<td class="num">0.5</td>`)
		assert.Contains(t, html, "<td>2</td><td>P0002</td>")
		assert.NotContains(t, html, "No data")
	})

	t.Run("empty", func(t *testing.T) {
		html, err := engine.RenderReport(report.Table{Title: "Top", Columns: []string{"A", "B"}}, generated)
		require.NoError(t, err)
		assert.Contains(t, html, `colspan="3">No data for the selected filters`)
	})
}

func TestTemplateEngine_Options(t *testing.T) {
	engine := NewTemplateEngine(
		WithFuncs(template.FuncMap{"shout": func(s string) string { return strings.ToUpper(s) + "!" }}),
		WithLayout(`{{shout .Table.Title}} {{len .Table.Rows}}`),
	)
	out, err := engine.RenderReport(report.Table{Title: "sales"}, generated)
	require.NoError(t, err)
	assert.Equal(t, "SALES! 0", out)
}

func TestTemplateEngine_RenderString_Errors(t *testing.T) {
	engine := NewTemplateEngine()
	var re *RenderError

	_, err := engine.RenderString("x", "", nil)
	require.ErrorAs(t, err, &re)
	assert.Equal(t, ErrCodeInvalidHTML, re.Code)

	_, err = engine.RenderString("x", "{{.Missing", nil)
	require.ErrorAs(t, err, &re)
	assert.Equal(t, ErrCodeInvalidHTML, re.Code)

	_, err = engine.RenderString("x", "{{.Nope.Deeper}}", struct{}{})
	require.ErrorAs(t, err, &re)
	assert.Equal(t, ErrCodeRenderFailed, re.Code)
}
