package printing

import (
	"bytes"
	"html/template"
	"maps"
	"strings"
	"time"

	"github.com/erp/dashboard/internal/domain/report"
	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// TemplateEngine renders report tables as HTML pages using html/template
type TemplateEngine struct {
	funcMap template.FuncMap
	layout  string
}

// TemplateEngineOption configures the template engine
type TemplateEngineOption func(*TemplateEngine)

// WithFuncs adds or overrides template functions
func WithFuncs(funcs template.FuncMap) TemplateEngineOption {
	return func(e *TemplateEngine) {
		maps.Copy(e.funcMap, funcs)
	}
}

// WithLayout replaces the built-in report layout
func WithLayout(layout string) TemplateEngineOption {
	return func(e *TemplateEngine) {
		e.layout = layout
	}
}

// NewTemplateEngine creates a new template engine with the default report layout
func NewTemplateEngine(opts ...TemplateEngineOption) *TemplateEngine {
	e := &TemplateEngine{
		layout: reportLayout,
		funcMap: template.FuncMap{
			"formatDateTime": formatDateTime,
			"title":          titleCase,
			"upper":          strings.ToUpper,
			"isNumeric":      isNumeric,
			"add":            func(a, b int) int { return a + b },
		},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// reportPage is the data bound to the layout
type reportPage struct {
	Table       report.Table
	GeneratedAt time.Time
}

// RenderReport renders the table as a complete HTML document
func (e *TemplateEngine) RenderReport(table report.Table, generatedAt time.Time) (string, error) {
	return e.RenderString("report", e.layout, reportPage{Table: table, GeneratedAt: generatedAt})
}

// RenderString renders a template string with the provided data
func (e *TemplateEngine) RenderString(name, content string, data any) (string, error) {
	if content == "" {
		return "", NewRenderError(ErrCodeInvalidHTML, "template content is empty", nil)
	}

	tmpl, err := template.New(name).Funcs(e.funcMap).Parse(content)
	if err != nil {
		return "", NewRenderError(ErrCodeInvalidHTML, "failed to parse template", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", NewRenderError(ErrCodeRenderFailed, "failed to execute template", err)
	}
	return buf.String(), nil
}

// FooterHTML is the page footer handed to the PDF renderers
const FooterHTML = `<div style="font-size:8px;width:100%;text-align:center;">` +
	`<span class="pageNumber"></span> / <span class="totalPages"></span></div>`

const reportLayout = `<!DOCTYPE html>
<html>
<head>
<meta charset="UTF-8">
<title>{{.Table.Title}}</title>
<style>
body { font-family: Helvetica, Arial, sans-serif; font-size: 11px; color: #222; }
h1 { font-size: 18px; margin-bottom: 2px; }
.meta { color: #777; margin-bottom: 12px; }
table { width: 100%; border-collapse: collapse; }
th { background: #f2f2f2; text-align: left; border-bottom: 2px solid #999; padding: 4px; }
td { border-bottom: 1px solid #ddd; padding: 4px; }
td.num { text-align: right; }
.empty { color: #999; font-style: italic; padding: 12px 4px; }
</style>
</head>
<body>
<h1>{{title .Table.Title}}</h1>
<div class="meta">Generated {{formatDateTime .GeneratedAt}} | {{len .Table.Rows}} rows</div>
<table>
<thead><tr><th>#</th>{{range .Table.Columns}}<th>{{.}}</th>{{end}}</tr></thead>
<tbody>
{{- range $i, $row := .Table.Rows}}
<tr><td>{{add $i 1}}</td>{{range $row}}<td{{if isNumeric .}} class="num"{{end}}>{{.}}</td>{{end}}</tr>
{{- else}}
<tr><td class="empty" colspan="{{add (len .Table.Columns) 1}}">No data for the selected filters</td></tr>
{{- end}}
</tbody>
</table>
</body>
</html>
`

func formatDateTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02 15:04")
}

// titleCase capitalizes each word
func titleCase(s string) string {
	return cases.Title(language.English).String(s)
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	_, err := decimal.NewFromString(s)
	return err == nil
}
