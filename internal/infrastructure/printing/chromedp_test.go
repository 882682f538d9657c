package printing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrintParams(t *testing.T) {
	t.Run("A4 portrait", func(t *testing.T) {
		p := printParams(&RenderRequest{PaperSize: PaperSizeA4, Margins: DefaultMargins()})

		assert.InDelta(t, 8.27, p.PaperWidth, 0.01)
		assert.InDelta(t, 11.69, p.PaperHeight, 0.01)
		assert.InDelta(t, 0.39, p.MarginTop, 0.01)
		assert.False(t, p.Landscape)
		assert.True(t, p.PrintBackground)
		assert.False(t, p.DisplayHeaderFooter)
	})

	t.Run("letter landscape with footer", func(t *testing.T) {
		p := printParams(&RenderRequest{
			PaperSize:   PaperSizeLetter,
			Orientation: OrientationLandscape,
			FooterHTML:  FooterHTML,
		})

		assert.InDelta(t, 8.5, p.PaperWidth, 0.01)
		assert.True(t, p.Landscape)
		assert.True(t, p.DisplayHeaderFooter)
		assert.Equal(t, "<span></span>", p.HeaderTemplate)
		assert.Equal(t, FooterHTML, p.FooterTemplate)
		assert.InDelta(t, 0.39, p.MarginBottom, 0.01, "footer needs room")
	})
}

func TestWrapDocument(t *testing.T) {
	full := "<!DOCTYPE html><html><body>x</body></html>"
	assert.Equal(t, full, wrapDocument(&RenderRequest{HTML: full}))

	doc := wrapDocument(&RenderRequest{HTML: "<p>hi</p>", Title: "Sales <Q1>"})
	assert.Contains(t, doc, "<title>Sales &lt;Q1&gt;</title>")
	assert.Contains(t, doc, "<body><p>hi</p></body>")
}

func TestChromedpRenderer_RejectsInvalidRequest(t *testing.T) {
	r := NewChromedpRenderer(ChromedpConfig{})
	defer r.Close()

	_, err := r.Render(t.Context(), &RenderRequest{PaperSize: PaperSizeA4})
	require.Error(t, err)
	var re *RenderError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, ErrCodeInvalidHTML, re.Code)
}
