package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	reportapp "github.com/erp/dashboard/internal/application/report"
	"github.com/erp/dashboard/internal/domain/report"
	"github.com/erp/dashboard/internal/infrastructure/printing"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockReportRepository struct {
	mock.Mock
}

func (m *MockReportRepository) DashboardStats(ctx context.Context) (report.DashboardStats, error) {
	args := m.Called(ctx)
	return args.Get(0).(report.DashboardStats), args.Error(1)
}

func (m *MockReportRepository) ReportTable(ctx context.Context, r report.ExportRequest) (report.Table, error) {
	args := m.Called(ctx, r)
	return args.Get(0).(report.Table), args.Error(1)
}

func newReportRouter(repo *MockReportRepository) *gin.Engine {
	now := func() time.Time { return time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC) }
	h := NewReportHandler(reportapp.NewReportService(repo, repo, reportapp.WithClock(now)))
	router := gin.New()
	router.GET("/api/dashboard/stats", h.DashboardStats)
	router.POST("/api/reports/export/:type", h.Export)
	return router
}

func TestReportHandler_DashboardStats(t *testing.T) {
	repo := new(MockReportRepository)
	repo.On("DashboardStats", mock.Anything).Return(report.DashboardStats{
		TotalProducts: 120, TotalStores: 4, TotalCategories: 9, TotalCustomers: 31, TotalBrands: 12,
	}, nil)

	w := httptest.NewRecorder()
	newReportRouter(repo).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/dashboard/stats", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"totalProducts":120,"totalStores":4,"totalCategories":9,"totalCustomers":31,"totalBrands":12}`, w.Body.String())
}

func TestReportHandler_ExportExcel(t *testing.T) {
	repo := new(MockReportRepository)
	repo.On("ReportTable", mock.Anything, mock.MatchedBy(func(r report.ExportRequest) bool {
		return r.Type == report.TypeStockCritical && r.Format == report.FormatExcel &&
			r.Filters.StoreCode == "T01" && r.Filters.DaysThreshold != nil && *r.Filters.DaysThreshold == 30
	})).Return(report.Table{
		Title:   "Critical stock",
		Columns: []string{"Code", "Name", "Stock"},
		Rows:    [][]string{{"P0001", "Rice", "2"}, {"P0002", "Oil", "0"}},
	}, nil)

	body := strings.NewReader(`{"storeCode":"T01","daysThreshold":30}`)
	req := httptest.NewRequest(http.MethodPost, "/api/reports/export/stock-critical?format=excel&includeCharts=true", body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	newReportRouter(repo).ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, printing.XLSXContentType, w.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename=stock-critical_2026-03-14.xlsx`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, "2", w.Header().Get("X-Report-Rows"))
	assert.True(t, strings.HasPrefix(w.Body.String(), "PK"), "xlsx files are zip archives")
}

func TestReportHandler_ExportErrors(t *testing.T) {
	tests := []struct {
		name       string
		target     string
		body       string
		wantStatus int
		wantCode   string
	}{
		{"missing format", "/api/reports/export/stock-critical", "", http.StatusBadRequest, "VALIDATION_ERROR"},
		{"unknown format", "/api/reports/export/stock-critical?format=csv", "", http.StatusBadRequest, "INVALID_FORMAT"},
		{"unknown report", "/api/reports/export/payroll?format=excel", "", http.StatusBadRequest, "INVALID_REPORT_TYPE"},
		{"bad filters", "/api/reports/export/stock-critical?format=excel", "[1,2]", http.StatusBadRequest, "BAD_REQUEST"},
		{"inverted dates", "/api/reports/export/sales-period?format=excel", `{"startDate":"2026-02-01T00:00:00Z","endDate":"2026-01-01T00:00:00Z"}`, http.StatusBadRequest, "INVALID_DATE_RANGE"},
		{"pdf without renderer", "/api/reports/export/top-products?format=pdf", "{}", http.StatusNotImplemented, "PDF_UNAVAILABLE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockReportRepository)
			w := httptest.NewRecorder()
			newReportRouter(repo).ServeHTTP(w, httptest.NewRequest(http.MethodPost, tt.target, strings.NewReader(tt.body)))

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantCode, decodeError(t, w).Error)
			repo.AssertNotCalled(t, "ReportTable", mock.Anything, mock.Anything)
		})
	}
}
