package printing

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"time"

	"go.uber.org/zap"
)

const (
	defaultWkhtmltopdfBinary  = "wkhtmltopdf"
	defaultWkhtmltopdfTimeout = 30 * time.Second
	defaultDPI                = 96
)

// WkhtmltopdfConfig configures the wkhtmltopdf renderer
type WkhtmltopdfConfig struct {
	// BinaryPath is an absolute path or a name looked up in PATH
	BinaryPath string
	Timeout    time.Duration
	TempDir    string
	DPI        int
	Logger     *zap.Logger
}

// WkhtmltopdfRenderer prints HTML to PDF with the wkhtmltopdf command-line tool
type WkhtmltopdfRenderer struct {
	binary  string
	timeout time.Duration
	tempDir string
	dpi     int
	logger  *zap.Logger
}

// NewWkhtmltopdfRenderer resolves the binary and returns a renderer
func NewWkhtmltopdfRenderer(cfg WkhtmltopdfConfig) (*WkhtmltopdfRenderer, error) {
	r := &WkhtmltopdfRenderer{
		binary:  cfg.BinaryPath,
		timeout: cfg.Timeout,
		tempDir: cfg.TempDir,
		dpi:     cfg.DPI,
		logger:  cfg.Logger,
	}
	if r.binary == "" {
		r.binary = defaultWkhtmltopdfBinary
	}
	if r.timeout == 0 {
		r.timeout = defaultWkhtmltopdfTimeout
	}
	if r.tempDir == "" {
		r.tempDir = os.TempDir()
	}
	if r.dpi == 0 {
		r.dpi = defaultDPI
	}
	if r.logger == nil {
		r.logger = zap.NewNop()
	}

	path, err := resolveBinaryPath(r.binary)
	if err != nil {
		return nil, NewRenderError(ErrCodeBinaryNotFound, "wkhtmltopdf binary not found: "+r.binary, err)
	}
	r.binary = path
	return r, nil
}

func resolveBinaryPath(path string) (string, error) {
	if filepath.IsAbs(path) {
		if _, err := os.Stat(path); err != nil {
			return "", err
		}
		return path, nil
	}
	return exec.LookPath(path)
}

// Render implements PDFRenderer
func (r *WkhtmltopdfRenderer) Render(ctx context.Context, req *RenderRequest) (*RenderResult, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	started := time.Now()

	timeout := req.Timeout
	if timeout == 0 {
		timeout = r.timeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	dir, err := os.MkdirTemp(r.tempDir, "report-*")
	if err != nil {
		return nil, NewRenderError(ErrCodeRenderFailed, "failed to create work directory", err)
	}
	defer os.RemoveAll(dir)

	htmlPath := filepath.Join(dir, "report.html")
	pdfPath := filepath.Join(dir, "report.pdf")
	if err := os.WriteFile(htmlPath, []byte(req.HTML), 0o600); err != nil {
		return nil, NewRenderError(ErrCodeRenderFailed, "failed to write report HTML", err)
	}
	args := r.buildArgs(req, htmlPath, pdfPath)
	r.logger.Debug("executing wkhtmltopdf", zap.String("binary", r.binary), zap.Strings("args", args))

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, r.binary, args...)
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		switch {
		case errors.Is(ctx.Err(), context.DeadlineExceeded):
			return nil, NewRenderError(ErrCodeRenderTimeout, fmt.Sprintf("PDF rendering timed out after %v", timeout), err)
		case errors.Is(ctx.Err(), context.Canceled):
			return nil, NewRenderError(ErrCodeRenderTimeout, "PDF rendering was cancelled", err)
		}
		r.logger.Error("wkhtmltopdf failed", zap.Error(err), zap.String("stderr", stderr.String()))
		return nil, NewRenderError(ErrCodeRenderFailed, "wkhtmltopdf execution failed: "+stderr.String(), err)
	}

	pdf, err := os.ReadFile(pdfPath)
	if err != nil {
		return nil, NewRenderError(ErrCodeRenderFailed, "failed to read generated PDF", err)
	}
	if len(pdf) == 0 {
		return nil, NewRenderError(ErrCodeRenderFailed, "generated PDF is empty", nil)
	}

	res := &RenderResult{PDFData: pdf, PageCount: estimatePageCount(pdf), RenderDuration: time.Since(started)}
	r.logger.Info("PDF rendered",
		zap.String("renderer", "wkhtmltopdf"),
		zap.Int("bytes", len(pdf)),
		zap.Int("pages", res.PageCount),
		zap.Duration("duration", res.RenderDuration))
	return res, nil
}

// buildArgs returns the wkhtmltopdf command line. JavaScript and local file access stay off.
func (r *WkhtmltopdfRenderer) buildArgs(req *RenderRequest, htmlPath, pdfPath string) []string {
	size := "A4"
	if req.PaperSize == PaperSizeLetter {
		size = "Letter"
	}
	orientation := "Portrait"
	if req.Orientation == OrientationLandscape {
		orientation = "Landscape"
	}

	args := []string{
		"--quiet",
		"--encoding", "UTF-8",
		"--dpi", strconv.Itoa(r.dpi),
		"--page-size", size,
		"--orientation", orientation,
		"--margin-top", fmt.Sprintf("%dmm", req.Margins.Top),
		"--margin-right", fmt.Sprintf("%dmm", req.Margins.Right),
		"--margin-bottom", fmt.Sprintf("%dmm", req.Margins.Bottom),
		"--margin-left", fmt.Sprintf("%dmm", req.Margins.Left),
		"--disable-javascript",
		"--disable-local-file-access",
	}
	if req.Title != "" {
		args = append(args, "--title", req.Title)
	}
	if req.FooterHTML != "" {
		// wkhtmltopdf substitutes its own page variables in text footers
		args = append(args, "--footer-center", "[page] / [topage]", "--footer-font-size", "8")
	}
	return append(args, htmlPath, pdfPath)
}

// Close implements PDFRenderer
func (r *WkhtmltopdfRenderer) Close() error {
	return nil
}

var _ PDFRenderer = (*WkhtmltopdfRenderer)(nil)
