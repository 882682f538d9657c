package printing

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateRequest(t *testing.T) {
	var re *RenderError

	err := validateRequest(nil)
	require.True(t, errors.As(err, &re))
	assert.Equal(t, ErrCodeInvalidHTML, re.Code)

	err = validateRequest(&RenderRequest{HTML: "  \n", PaperSize: PaperSizeA4})
	require.True(t, errors.As(err, &re))
	assert.Equal(t, ErrCodeInvalidHTML, re.Code)

	err = validateRequest(&RenderRequest{HTML: "<p>x</p>", PaperSize: "A5"})
	require.True(t, errors.As(err, &re))
	assert.Equal(t, ErrCodeInvalidPaperSize, re.Code)

	assert.NoError(t, validateRequest(&RenderRequest{HTML: "<p>x</p>", PaperSize: PaperSizeLetter}))
}

func TestPaperSize_Dimensions(t *testing.T) {
	w, h := PaperSizeA4.Dimensions()
	assert.Equal(t, []int{210, 297}, []int{w, h})
	w, h = PaperSizeLetter.Dimensions()
	assert.Equal(t, []int{216, 279}, []int{w, h})
}

func TestEstimatePageCount(t *testing.T) {
	pdf := []byte("<< /Type /Pages /Count 2 >> << /Type /Page >> << /Type /Page >>")
	assert.Equal(t, 2, estimatePageCount(pdf))
	assert.Equal(t, 1, estimatePageCount([]byte("%PDF-1.4")))
}

func TestRenderError(t *testing.T) {
	cause := errors.New("exit status 1")
	err := NewRenderError(ErrCodeRenderFailed, "wkhtmltopdf execution failed", cause)
	assert.Equal(t, "wkhtmltopdf execution failed: exit status 1", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "empty", NewRenderError(ErrCodeInvalidHTML, "empty", nil).Error())
}
