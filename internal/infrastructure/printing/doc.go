// Package printing turns report tables into downloadable documents for the
// fake inventory API.
//
// This package contains:
// - PDFRenderer interface for rendering HTML to PDF
// - ChromedpRenderer using headless Chrome through the DevTools protocol
// - WkhtmltopdfRenderer using the wkhtmltopdf command-line tool
// - TemplateEngine rendering a report.Table as an HTML page
// - WriteWorkbook rendering a report.Table as an Excel workbook
//
// Example usage:
//
//	renderer := NewChromedpRenderer(ChromedpConfig{NoSandbox: true})
//	defer renderer.Close()
//
//	html, err := NewTemplateEngine().RenderReport(table, time.Now())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	result, err := renderer.Render(ctx, &RenderRequest{
//	    HTML:        html,
//	    PaperSize:   PaperSizeA4,
//	    Orientation: OrientationLandscape,
//	})
package printing
