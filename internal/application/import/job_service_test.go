package importapp

import (
	"context"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/erp/dashboard/internal/domain/bulk"
	"github.com/erp/dashboard/internal/domain/inventory"
	"github.com/erp/dashboard/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// memJobRepository keeps jobs in memory
type memJobRepository struct {
	mu   sync.Mutex
	jobs []bulk.Job
}

func (r *memJobRepository) Create(_ context.Context, job *bulk.Job) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.jobs = append(r.jobs, *job)
	return nil
}

func (r *memJobRepository) FindByID(_ context.Context, id string) (*bulk.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, j := range r.jobs {
		if j.JobID == id {
			return &j, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memJobRepository) Save(_ context.Context, job *bulk.Job) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.jobs {
		if r.jobs[i].JobID == job.JobID {
			r.jobs[i] = *job
			return nil
		}
	}
	return shared.ErrNotFound
}

func (r *memJobRepository) FindByUser(_ context.Context, username string) ([]bulk.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []bulk.Job
	for _, j := range slices.Backward(r.jobs) {
		if j.StartedBy == username {
			out = append(out, j)
		}
	}
	return out, nil
}

func (r *memJobRepository) FindRecent(_ context.Context, limit int) ([]bulk.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := slices.Clone(r.jobs)
	slices.Reverse(out)
	return out[:min(limit, len(out))], nil
}

func (r *memJobRepository) History(_ context.Context, f bulk.HistoryFilter) ([]bulk.Job, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var match []bulk.Job
	for _, j := range r.jobs {
		if (f.JobType == "" || j.JobType == f.JobType) && (f.Status == "" || j.Status == f.Status) {
			match = append(match, j)
		}
	}
	start := min((f.Page-1)*f.PageSize, len(match))
	end := min(start+f.PageSize, len(match))
	return match[start:end], len(match), nil
}

type MockStoreRepository struct {
	mock.Mock
}

func (m *MockStoreRepository) FindAll(ctx context.Context) ([]inventory.Store, error) {
	args := m.Called(ctx)
	return args.Get(0).([]inventory.Store), args.Error(1)
}

func (m *MockStoreRepository) FindByCode(ctx context.Context, code string) (*inventory.Store, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inventory.Store), args.Error(1)
}

func (m *MockStoreRepository) MarkInitialStock(ctx context.Context, code string) error {
	return m.Called(ctx, code).Error(0)
}

func newStores() *MockStoreRepository {
	stores := new(MockStoreRepository)
	stores.On("FindByCode", mock.Anything, "T01").Return(&inventory.Store{Code: "T01", HasInitialStock: true}, nil).Maybe()
	stores.On("FindByCode", mock.Anything, "T02").Return(&inventory.Store{Code: "T02"}, nil).Maybe()
	stores.On("FindByCode", mock.Anything, "ALM").Return(&inventory.Store{Code: "ALM"}, nil).Maybe()
	stores.On("FindByCode", mock.Anything, mock.Anything).Return(nil, shared.ErrNotFound).Maybe()
	return stores
}

var start = time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)

func newTestService(stores *MockStoreRepository) (*JobService, *memJobRepository) {
	repo := &memJobRepository{}
	return NewJobService(repo, stores, WithClock(func() time.Time { return start })), repo
}

func xlsx(t *testing.T, rows ...[]any) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i, r := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &r))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func productsBook(t *testing.T) []byte {
	return xlsx(t,
		[]any{"code", "name", "price"},
		[]any{"P9001", "Quinoa", 12.5},
		[]any{"P9002", "Maca", 8},
	)
}

func TestJobService_Enqueue_Validation(t *testing.T) {
	svc, _ := newTestService(newStores())
	ctx := context.Background()
	book := productsBook(t)

	tests := []struct {
		name   string
		upload Upload
		err    *shared.DomainError
	}{
		{"no file", Upload{JobType: bulk.JobTypeProducts}, ErrFileRequired},
		{"csv", Upload{JobType: bulk.JobTypeProducts, FileName: "p.csv", Data: book}, ErrInvalidFileType},
		{"sales without store", Upload{JobType: bulk.JobTypeSales, FileName: "s.xlsx", Data: book}, ErrStoreRequired},
		{"unknown store", Upload{JobType: bulk.JobTypeSales, FileName: "s.xlsx", Data: book, StoreCode: "ZZ"}, ErrStoreNotFound},
		{"stock already loaded", Upload{JobType: bulk.JobTypeStock, FileName: "s.xlsx", Data: book, StoreCode: "T01"}, inventory.ErrStockInitialDone},
		{"transfer missing dest", Upload{JobType: bulk.JobTypeTransfers, FileName: "t.xlsx", Data: book, OriginStoreCode: "T01"}, ErrTransferStores},
		{"transfer same store", Upload{JobType: bulk.JobTypeTransfers, FileName: "t.xlsx", Data: book, OriginStoreCode: "T02", DestinationStoreCode: "t02"}, ErrSameStore},
		{"unknown type", Upload{JobType: "RETURNS_IMPORT", FileName: "r.xlsx", Data: book}, ErrUnknownJobType},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Enqueue(ctx, tc.upload)
			assert.ErrorIs(t, err, tc.err)
		})
	}
}

func TestJobService_Lifecycle(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(newStores())

	job, err := svc.Enqueue(ctx, Upload{
		JobType: bulk.JobTypeProducts, FileName: "Products.XLSX", Data: productsBook(t), StartedBy: "admin",
	})
	require.NoError(t, err)
	assert.Equal(t, bulk.JobStatusQueued, job.Status)
	assert.Equal(t, 2, job.TotalRecords)
	assert.NotEmpty(t, job.JobID)

	job, err = svc.Status(ctx, job.JobID)
	require.NoError(t, err)
	assert.Equal(t, bulk.JobStatusProcessing, job.Status)
	assert.Equal(t, 1, job.ProcessedRecords)

	job, err = svc.Status(ctx, job.JobID)
	require.NoError(t, err)
	assert.Equal(t, bulk.JobStatusCompleted, job.Status)
	assert.Equal(t, 2, job.SuccessRecords)
	assert.Equal(t, float64(100), job.ProgressPercentage)
	require.NotNil(t, job.CompletedAt)

	again, err := svc.Status(ctx, job.JobID)
	require.NoError(t, err)
	assert.Equal(t, bulk.JobStatusCompleted, again.Status, "terminal jobs stay put")

	_, err = svc.Status(ctx, "missing")
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func runToEnd(t *testing.T, svc *JobService, id string) *bulk.Job {
	t.Helper()
	var job *bulk.Job
	for range 2 {
		var err error
		job, err = svc.Status(context.Background(), id)
		require.NoError(t, err)
	}
	require.True(t, job.IsTerminal())
	return job
}

func TestJobService_Outcomes(t *testing.T) {
	ctx := context.Background()

	t.Run("file name forces failure", func(t *testing.T) {
		svc, _ := newTestService(newStores())
		job, err := svc.Enqueue(ctx, Upload{JobType: bulk.JobTypeProducts, FileName: "will_FAIL.xlsx", Data: productsBook(t)})
		require.NoError(t, err)

		job = runToEnd(t, svc, job.JobID)
		assert.Equal(t, bulk.JobStatusFailed, job.Status)
		assert.NotEmpty(t, job.ErrorMessage)
		assert.Zero(t, job.SuccessRecords)
	})

	t.Run("file name forces warnings", func(t *testing.T) {
		svc, _ := newTestService(newStores())
		job, err := svc.Enqueue(ctx, Upload{JobType: bulk.JobTypeProducts, FileName: "warn.xlsx", Data: []byte("not a workbook")})
		require.NoError(t, err)

		job = runToEnd(t, svc, job.JobID)
		assert.Equal(t, bulk.JobStatusCompletedWithWarnings, job.Status)
		assert.Empty(t, job.ErrorMessage)
		assert.NotEmpty(t, job.DetailedWarnings)
	})

	t.Run("row errors complete with warnings", func(t *testing.T) {
		svc, _ := newTestService(newStores())
		data := xlsx(t,
			[]any{"code", "name", "price"},
			[]any{"P1", "Good", 1},
			[]any{"P2", "", 1},
		)
		job, err := svc.Enqueue(ctx, Upload{JobType: bulk.JobTypeProducts, FileName: "p.xlsx", Data: data})
		require.NoError(t, err)

		job = runToEnd(t, svc, job.JobID)
		assert.Equal(t, bulk.JobStatusCompletedWithWarnings, job.Status)
		assert.Equal(t, 1, job.SuccessRecords)
		assert.Equal(t, 1, job.ErrorRecords)
		assert.Equal(t, []string{"Row 3, column 'name': value is required"}, job.DetailedErrors)
	})

	t.Run("unreadable workbook fails", func(t *testing.T) {
		svc, _ := newTestService(newStores())
		job, err := svc.Enqueue(ctx, Upload{JobType: bulk.JobTypeProducts, FileName: "p.xlsx", Data: []byte("garbage")})
		require.NoError(t, err)

		job = runToEnd(t, svc, job.JobID)
		assert.Equal(t, bulk.JobStatusFailed, job.Status)
		assert.True(t, strings.Contains(job.ErrorMessage, "Excel"))
	})
}

func TestJobService_StockInitialMarksStore(t *testing.T) {
	ctx := context.Background()
	stores := newStores()
	stores.On("MarkInitialStock", mock.Anything, "T02").Return(nil).Once()
	svc, _ := newTestService(stores)

	data := xlsx(t, []any{"productCode", "quantity", "unitCost"}, []any{"P0001", 5, 1.2})
	job, err := svc.Enqueue(ctx, Upload{JobType: bulk.JobTypeStock, FileName: "stock.xlsx", Data: data, StoreCode: "T02"})
	require.NoError(t, err)

	job = runToEnd(t, svc, job.JobID)
	assert.Equal(t, bulk.JobStatusCompleted, job.Status)
	stores.AssertCalled(t, "MarkInitialStock", mock.Anything, "T02")
}

func TestJobService_Queries(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(newStores())
	book := productsBook(t)

	for _, user := range []string{"admin", "maria", "admin"} {
		_, err := svc.Enqueue(ctx, Upload{JobType: bulk.JobTypeProducts, FileName: "p.xlsx", Data: book, StartedBy: user})
		require.NoError(t, err)
	}
	_, err := svc.Enqueue(ctx, Upload{JobType: bulk.JobTypeSales, FileName: "s.xlsx", Data: book, StoreCode: "T02", StartedBy: "admin"})
	require.NoError(t, err)

	mine, err := svc.Mine(ctx, "admin")
	require.NoError(t, err)
	assert.Len(t, mine, 3)
	assert.Equal(t, bulk.JobTypeSales, mine[0].JobType)

	none, err := svc.Mine(ctx, "nobody")
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)

	recent, err := svc.Recent(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, recent, 4)

	page, err := svc.History(ctx, bulk.HistoryFilter{Page: 1, PageSize: 2, JobType: bulk.JobTypeProducts})
	require.NoError(t, err)
	assert.Len(t, page.Items, 2)
	assert.Equal(t, 3, page.TotalCount)
	assert.Equal(t, 2, page.TotalPages)
}
