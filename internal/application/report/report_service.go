package report

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/erp/dashboard/internal/domain/report"
	"github.com/erp/dashboard/internal/domain/shared"
	"github.com/erp/dashboard/internal/infrastructure/printing"
	"go.uber.org/zap"
)

// PDFContentType is the media type of PDF exports
const PDFContentType = "application/pdf"

// ErrPDFUnavailable is returned for PDF exports when no renderer is configured
var ErrPDFUnavailable = shared.NewDomainError("PDF_UNAVAILABLE", "PDF export is not available on this server; use Excel")

// Export is a generated report file
type Export struct {
	FileName    string
	ContentType string
	Data        []byte
	Rows        int
}

// ReportService computes dashboard figures and generates report downloads
type ReportService struct {
	stats    report.StatsRepository
	source   report.Source
	engine   *printing.TemplateEngine
	renderer printing.PDFRenderer
	logger   *zap.Logger
	now      func() time.Time
}

// Option configures a ReportService
type Option func(*ReportService)

// WithPDFRenderer enables PDF exports
func WithPDFRenderer(r printing.PDFRenderer) Option {
	return func(s *ReportService) {
		s.renderer = r
	}
}

// WithLogger sets the service logger
func WithLogger(logger *zap.Logger) Option {
	return func(s *ReportService) {
		s.logger = logger
	}
}

// WithClock overrides the generation timestamp source
func WithClock(now func() time.Time) Option {
	return func(s *ReportService) {
		s.now = now
	}
}

// NewReportService creates a new ReportService
func NewReportService(stats report.StatsRepository, source report.Source, opts ...Option) *ReportService {
	s := &ReportService{
		stats:  stats,
		source: source,
		engine: printing.NewTemplateEngine(),
		logger: zap.NewNop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// DashboardStats returns the dashboard counters
func (s *ReportService) DashboardStats(ctx context.Context) (report.DashboardStats, error) {
	stats, err := s.stats.DashboardStats(ctx)
	if err != nil {
		return report.DashboardStats{}, fmt.Errorf("failed to compute dashboard stats: %w", err)
	}
	return stats, nil
}

// PDFAvailable reports whether PDF exports can be produced
func (s *ReportService) PDFAvailable() bool {
	return s.renderer != nil
}

// Export builds the report table and encodes it in the requested format
func (s *ReportService) Export(ctx context.Context, req report.ExportRequest) (*Export, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if req.Format == report.FormatPDF && s.renderer == nil {
		return nil, ErrPDFUnavailable
	}

	table, err := s.source.ReportTable(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to build %s report: %w", req.Type, err)
	}
	now := s.now()

	var out *Export
	switch req.Format {
	case report.FormatExcel:
		data, err := printing.WriteWorkbook(table, now)
		if err != nil {
			return nil, err
		}
		out = &Export{ContentType: printing.XLSXContentType, Data: data}
	default:
		data, err := s.renderPDF(ctx, table, now)
		if err != nil {
			return nil, err
		}
		out = &Export{ContentType: PDFContentType, Data: data}
	}
	out.FileName = req.DefaultFileName(now)
	out.Rows = len(table.Rows)

	s.logger.Info("Report exported",
		zap.String("type", string(req.Type)),
		zap.String("format", string(req.Format)),
		zap.Int("rows", out.Rows),
		zap.Int("bytes", len(out.Data)))
	return out, nil
}

func (s *ReportService) renderPDF(ctx context.Context, table report.Table, now time.Time) ([]byte, error) {
	html, err := s.engine.RenderReport(table, now)
	if err != nil {
		return nil, err
	}
	orientation := printing.OrientationPortrait
	if len(table.Columns) > 5 {
		orientation = printing.OrientationLandscape
	}
	res, err := s.renderer.Render(ctx, &printing.RenderRequest{
		HTML:        html,
		PaperSize:   printing.PaperSizeA4,
		Orientation: orientation,
		Margins:     printing.DefaultMargins(),
		Title:       table.Title,
		FooterHTML:  printing.FooterHTML,
	})
	if err != nil {
		var re *printing.RenderError
		if errors.As(err, &re) {
			s.logger.Error("PDF rendering failed", zap.String("code", re.Code), zap.Error(err))
		}
		return nil, fmt.Errorf("failed to render PDF: %w", err)
	}
	return res.PDFData, nil
}
