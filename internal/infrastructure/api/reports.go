package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime"
	"net/http"
	"net/url"
	"path/filepath"
	"time"

	"github.com/erp/dashboard/internal/domain/report"
)

// ReportService downloads generated reports
type ReportService service

// Download is an exported report file
type Download struct {
	FileName    string
	ContentType string
	Data        []byte
}

// Export posts the filters to /reports/export/{type} and returns the generated file
func (s *ReportService) Export(ctx context.Context, req report.ExportRequest) (*Download, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	body, err := json.Marshal(req.Filters)
	if err != nil {
		return nil, fmt.Errorf("marshaling report filters: %w", err)
	}

	q := url.Values{}
	q.Set("format", string(req.Format))
	q.Set("includeCharts", "true")
	q.Set("includeDetails", "true")

	resp, err := s.client.Do(ctx, &Request{
		Method:   http.MethodPost,
		Path:     "/reports/export/" + url.PathEscape(string(req.Type)),
		Query:    q,
		Body:     bytes.NewReader(body),
		Accept:   "*/*",
		Endpoint: "/reports/export/{type}",
	})
	if err != nil {
		return nil, err
	}

	name := fileNameFromDisposition(resp.Header.Get("Content-Disposition"))
	if name == "" {
		name = req.DefaultFileName(time.Now())
	}
	return &Download{
		FileName:    name,
		ContentType: resp.Header.Get("Content-Type"),
		Data:        resp.Body,
	}, nil
}

// fileNameFromDisposition extracts a safe base name from a Content-Disposition header
func fileNameFromDisposition(header string) string {
	if header == "" {
		return ""
	}
	_, params, err := mime.ParseMediaType(header)
	if err != nil {
		return ""
	}
	name := filepath.Base(params["filename"])
	if name == "." || name == "/" {
		return ""
	}
	return name
}
