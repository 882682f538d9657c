package router

import (
	"bytes"
	"context"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/erp/dashboard/internal/application/imports"
	"github.com/erp/dashboard/internal/application/jobs"
	"github.com/erp/dashboard/internal/application/listing"
	"github.com/erp/dashboard/internal/domain/bulk"
	"github.com/erp/dashboard/internal/domain/catalog"
	"github.com/erp/dashboard/internal/domain/identity"
	"github.com/erp/dashboard/internal/domain/report"
	"github.com/erp/dashboard/internal/domain/shared"
	"github.com/erp/dashboard/internal/infrastructure/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newClient serves the engine over a real listener and logs a client in
func newClient(t *testing.T) *api.Client {
	t.Helper()
	srv := httptest.NewServer(newTestAPI(t).engine)
	t.Cleanup(srv.Close)

	client, err := api.NewClient(api.Config{BaseURL: srv.URL + "/api", Timeout: 5 * time.Second}, nil)
	require.NoError(t, err)

	_, err = client.Auth.Login(t.Context(), identity.LoginRequest{Username: "admin", Password: "admin123"})
	require.NoError(t, err)
	require.True(t, client.Session().IsAuthenticated())
	return client
}

func TestClientAgainstAPI_ListController(t *testing.T) {
	client := newClient(t)
	ctx, cancel := context.WithTimeout(t.Context(), 5*time.Second)
	defer cancel()

	ctrl := listing.NewController(client.Products.List, listing.WithResource("products"))
	defer ctrl.Close()
	ctrl.Start(ctx)
	require.NoError(t, ctrl.Wait(ctx))

	state := ctrl.State()
	require.NoError(t, state.Err)
	assert.Equal(t, seedProducts, state.TotalCount)
	assert.Len(t, state.Data, seedProducts)
	stats, ok := state.Stats.(catalog.ProductStats)
	require.True(t, ok)
	assert.Equal(t, seedProducts, stats.TotalProducts)

	ctrl.SetPageSize(5)
	ctrl.SetPage(3)
	require.NoError(t, ctrl.Wait(ctx))
	state = ctrl.State()
	assert.Equal(t, 3, state.Query.Page)
	assert.Len(t, state.Data, seedProducts-10)
	assert.Equal(t, 3, state.TotalPages)
}

func TestClientAgainstAPI_ImportFlow(t *testing.T) {
	client := newClient(t)
	ctx, cancel := context.WithTimeout(t.Context(), 10*time.Second)
	defer cancel()

	completed := make(chan bulk.Job, 1)
	poller := jobs.NewPoller(client.Jobs.Status,
		jobs.WithInterval(20*time.Millisecond),
		jobs.OnComplete(func(j bulk.Job) { completed <- j }),
	)
	defer poller.Stop()

	guard := imports.NewStockInitialGuard(client.Stores, nil)
	gate := imports.NewGate(client.Imports, guard, imports.WithTracker(poller))

	t.Run("stock initial is blocked for a loaded store", func(t *testing.T) {
		_, err := gate.Submit(ctx, imports.Form{
			Kind:      imports.KindStock,
			File:      &imports.File{Name: "stock.xlsx", Data: workbook(t, []any{"productCode", "quantity"}, []any{"P0001", 1})},
			StoreCode: "T01",
		})
		assert.Equal(t, imports.ErrCodeStockInitialDone, imports.ValidationCode(err))
	})

	t.Run("products import runs to completion", func(t *testing.T) {
		sub, err := gate.Submit(ctx, imports.Form{
			Kind: imports.KindProducts,
			File: &imports.File{Name: "products.xlsx", Data: workbook(t,
				[]any{"code", "name", "price"},
				[]any{"P9001", "Quinoa", 12.5},
			)},
		})
		require.NoError(t, err)
		require.NotEmpty(t, sub.JobID)

		select {
		case job := <-completed:
			assert.Equal(t, sub.JobID, job.JobID)
			assert.Equal(t, bulk.JobStatusCompleted, job.Status)
			assert.Equal(t, 1, job.SuccessRecords)
		case <-ctx.Done():
			t.Fatal("job did not complete")
		}

		mine, err := client.Jobs.Mine(ctx)
		require.NoError(t, err)
		require.Len(t, mine, 1)

		history, err := client.Jobs.History(ctx, bulk.HistoryFilter{Page: 1, PageSize: 10})
		require.NoError(t, err)
		assert.Equal(t, 1, history.TotalCount)
	})

	t.Run("server side rejection surfaces as an API error", func(t *testing.T) {
		_, err := client.Imports.Queue(ctx, "purchases", map[string]string{"storeCode": "ZZ"}, "p.xlsx",
			bytes.NewReader(workbook(t, []any{"code"}, []any{"P1"})))
		var apiErr *api.APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, "STORE_NOT_FOUND", apiErr.Err)
		assert.Equal(t, 404, apiErr.Status)
	})
}

func TestClientAgainstAPI_DashboardAndReports(t *testing.T) {
	client := newClient(t)
	ctx := t.Context()

	stats, err := client.Dashboard.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, seedProducts, stats.TotalProducts)
	assert.Equal(t, 4, stats.TotalStores)

	dl, err := client.Reports.Export(ctx, report.ExportRequest{Type: report.TypeTopProducts, Format: report.FormatExcel})
	require.NoError(t, err)
	assert.Contains(t, dl.FileName, "top-products_")
	assert.NotEmpty(t, dl.Data)

	_, err = client.Reports.Export(ctx, report.ExportRequest{Type: report.TypeTopProducts, Format: report.FormatPDF})
	var apiErr *api.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "PDF_UNAVAILABLE", apiErr.Err)
}

func TestClientAgainstAPI_Unauthorized(t *testing.T) {
	client := newClient(t)
	ctx := t.Context()

	client.Auth.Logout(ctx)
	require.False(t, client.Session().IsAuthenticated())

	_, err := client.Products.List(ctx, shared.Query{Page: 1, PageSize: shared.DefaultPageSize})
	assert.True(t, errors.Is(err, api.ErrUnauthorized))
}
