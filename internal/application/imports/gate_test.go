package imports

import (
	"context"
	"errors"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/erp/dashboard/internal/domain/inventory"
	"github.com/erp/dashboard/internal/infrastructure/api"
	"github.com/erp/dashboard/internal/infrastructure/metrics"
	"github.com/erp/dashboard/internal/infrastructure/storage"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockUploader struct {
	mock.Mock
}

func (m *MockUploader) Queue(ctx context.Context, kind string, fields map[string]string, fileName string, content io.Reader) (string, error) {
	body, _ := io.ReadAll(content)
	args := m.Called(ctx, kind, fields, fileName, string(body))
	return args.String(0), args.Error(1)
}

type MockValidator struct {
	mock.Mock
}

func (m *MockValidator) ValidateStockInitial(ctx context.Context, storeCode string) (inventory.StockInitialValidation, error) {
	args := m.Called(ctx, storeCode)
	return args.Get(0).(inventory.StockInitialValidation), args.Error(1)
}

type MockTracker struct {
	mock.Mock
}

func (m *MockTracker) Track(ctx context.Context, jobID string) {
	m.Called(ctx, jobID)
}

func workbook(name string) *File {
	return &File{Name: name, Data: []byte("PK\x03\x04")}
}

func TestGate_ValidateOrder(t *testing.T) {
	gate := NewGate(new(MockUploader), NewStockInitialGuard(new(MockValidator), nil))
	ctx := context.Background()

	tests := []struct {
		name string
		form Form
		code string
	}{
		{"missing file", Form{Kind: KindSales, StoreCode: "T01"}, ErrCodeFileRequired},
		{"missing file wins over missing store", Form{Kind: KindSales}, ErrCodeFileRequired},
		{"csv rejected", Form{Kind: KindProducts, File: workbook("items.csv")}, ErrCodeFileType},
		{"file type wins over store", Form{Kind: KindSales, File: workbook("sales.pdf")}, ErrCodeFileType},
		{"store required for sales", Form{Kind: KindSales, File: workbook("sales.xlsx")}, ErrCodeStoreRequired},
		{"store required for credit notes", Form{Kind: KindCreditNotes, File: workbook("nc.xls"), StoreCode: "  "}, ErrCodeStoreRequired},
		{"store required for purchases", Form{Kind: KindPurchases, File: workbook("p.xlsx")}, ErrCodeStoreRequired},
		{"store required for stock", Form{Kind: KindStock, File: workbook("s.xlsx")}, ErrCodeStoreRequired},
		{"transfer needs origin", Form{Kind: KindTransfers, File: workbook("t.xlsx"), DestinationStoreCode: "T02"}, ErrCodeTransferStores},
		{"transfer needs destination", Form{Kind: KindTransfers, File: workbook("t.xlsx"), OriginStoreCode: "T01"}, ErrCodeTransferStores},
		{"transfer same store", Form{Kind: KindTransfers, File: workbook("t.xlsx"), OriginStoreCode: "T01", DestinationStoreCode: "t01"}, ErrCodeTransferSameStore},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := gate.Validate(ctx, tt.form)
			require.Error(t, err)
			assert.Equal(t, tt.code, ValidationCode(err))
			assert.ErrorIs(t, err, &ValidationError{Code: tt.code})
		})
	}
}

func TestGate_ValidatePasses(t *testing.T) {
	gate := NewGate(new(MockUploader), nil)
	ctx := context.Background()

	assert.NoError(t, gate.Validate(ctx, Form{Kind: KindProducts, File: workbook("Products.XLSX")}))
	assert.NoError(t, gate.Validate(ctx, Form{Kind: KindSales, File: workbook("s.xls"), StoreCode: "T01"}))
	assert.NoError(t, gate.Validate(ctx, Form{Kind: KindTransfers, File: workbook("t.xlsx"), OriginStoreCode: "T01", DestinationStoreCode: "T02"}))

	err := gate.Validate(ctx, Form{Kind: "returns", File: workbook("r.xlsx")})
	assert.ErrorIs(t, err, ErrUnknownKind)
}

func TestGate_StockInitialDoneBlocksWithoutUpload(t *testing.T) {
	uploader := new(MockUploader)
	validator := new(MockValidator)
	guard := NewStockInitialGuard(validator, nil)
	guard.SetStores([]inventory.Store{{Code: "T01", Name: "Centro", HasInitialStock: true}})
	rec := metrics.New(metrics.DefaultConfig())
	gate := NewGate(uploader, guard, WithMetrics(rec))

	_, err := gate.Submit(context.Background(), Form{Kind: KindStock, File: workbook("stock.xlsx"), StoreCode: "t01"})

	require.Error(t, err)
	assert.Equal(t, ErrCodeStockInitialDone, ValidationCode(err))
	validator.AssertNotCalled(t, "ValidateStockInitial", mock.Anything, mock.Anything)
	uploader.AssertNotCalled(t, "Queue", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	n, err := testutil.GatherAndCount(rec.Registry(), "dashboard_imports_submitted_total")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestGate_StockInitialServerVerdict(t *testing.T) {
	uploader := new(MockUploader)
	validator := new(MockValidator)
	validator.On("ValidateStockInitial", mock.Anything, "T02").
		Return(inventory.StockInitialValidation{CanPerformStockInitial: false, ValidationMessage: "Store T02 already loaded"}, nil).Once()
	gate := NewGate(uploader, NewStockInitialGuard(validator, nil))
	form := Form{Kind: KindStock, File: workbook("stock.xlsx"), StoreCode: "T02"}

	for range 2 {
		err := gate.Validate(context.Background(), form)
		require.Error(t, err)
		assert.Equal(t, "Store T02 already loaded", err.Error())
	}
	validator.AssertNumberOfCalls(t, "ValidateStockInitial", 1)
	uploader.AssertNotCalled(t, "Queue", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestGate_StockInitialValidatorErrorBlocks(t *testing.T) {
	validator := new(MockValidator)
	validator.On("ValidateStockInitial", mock.Anything, "T03").
		Return(inventory.StockInitialValidation{}, errors.New("connection refused")).Once()
	validator.On("ValidateStockInitial", mock.Anything, "T03").
		Return(inventory.StockInitialValidation{CanPerformStockInitial: true}, nil).Once()
	gate := NewGate(new(MockUploader), NewStockInitialGuard(validator, nil))
	form := Form{Kind: KindStock, File: workbook("stock.xlsx"), StoreCode: "T03"}

	err := gate.Validate(context.Background(), form)
	require.Error(t, err)
	assert.Empty(t, ValidationCode(err))

	assert.NoError(t, gate.Validate(context.Background(), form), "failures are not cached")
}

func TestGate_SubmitQueuesAndTracks(t *testing.T) {
	uploader := new(MockUploader)
	uploader.On("Queue", mock.Anything, "transfers",
		map[string]string{"originStoreCode": "T01", "destinationStoreCode": "T02"},
		"moves.xlsx", "PK\x03\x04").Return("job-42", nil)
	tracker := new(MockTracker)
	tracker.On("Track", mock.Anything, "job-42").Return()
	archive := storage.NewMemoryArchive()
	at := time.Date(2026, 3, 9, 23, 30, 0, 0, time.UTC)

	gate := NewGate(uploader, nil, WithTracker(tracker), WithArchive(archive), WithClock(func() time.Time { return at }))
	gate.newID = func() string { return "abc" }

	sub, err := gate.Submit(context.Background(), Form{
		Kind:                 KindTransfers,
		File:                 workbook("moves.xlsx"),
		OriginStoreCode:      "T01",
		DestinationStoreCode: "T02",
	})
	require.NoError(t, err)
	assert.Equal(t, "job-42", sub.JobID)
	assert.Equal(t, "imports/transfers/2026-03-09/abc-moves.xlsx", sub.ArchiveKey)

	data, ok := archive.Get(sub.ArchiveKey)
	require.True(t, ok)
	assert.Equal(t, []byte("PK\x03\x04"), data)
	uploader.AssertExpectations(t)
	tracker.AssertExpectations(t)
}

func TestGate_SubmitSurfacesServerError(t *testing.T) {
	apiErr := &api.APIError{Status: http.StatusBadRequest, Err: "INVALID_FILE", Message: "Missing column SKU", Suggestion: "Use the template"}
	uploader := new(MockUploader)
	uploader.On("Queue", mock.Anything, "products", map[string]string(nil), "p.xlsx", mock.Anything).Return("", apiErr)
	tracker := new(MockTracker)
	gate := NewGate(uploader, nil, WithTracker(tracker))

	sub, err := gate.Submit(context.Background(), Form{Kind: KindProducts, File: workbook("p.xlsx")})
	assert.Nil(t, sub)
	var got *api.APIError
	require.ErrorAs(t, err, &got)
	assert.Equal(t, "INVALID_FILE. Missing column SKU. Use the template", err.Error())
	tracker.AssertNotCalled(t, "Track", mock.Anything, mock.Anything)
}

type failingArchive struct{}

func (failingArchive) Put(context.Context, string, []byte, string) error {
	return errors.New("bucket unavailable")
}

func TestGate_ArchiveFailureDoesNotBlockUpload(t *testing.T) {
	uploader := new(MockUploader)
	uploader.On("Queue", mock.Anything, "sales", map[string]string{"storeCode": "T01"}, "s.xlsx", mock.Anything).Return("job-1", nil)
	gate := NewGate(uploader, nil, WithArchive(failingArchive{}))

	sub, err := gate.Submit(context.Background(), Form{Kind: KindSales, File: workbook("s.xlsx"), StoreCode: "T01"})
	require.NoError(t, err)
	assert.Equal(t, "job-1", sub.JobID)
	assert.Empty(t, sub.ArchiveKey)
}

func TestArchiveKey(t *testing.T) {
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	assert.Equal(t, "imports/stock/2026-01-02/id-my_stock.xlsx", ArchiveKey(KindStock, at, "id", `C:\Users\ops\my stock.xlsx`))
}
