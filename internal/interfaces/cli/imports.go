package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/erp/dashboard/internal/application/imports"
	"github.com/erp/dashboard/internal/application/jobs"
	"github.com/erp/dashboard/internal/application/listing"
	"github.com/erp/dashboard/internal/domain/bulk"
	"github.com/erp/dashboard/internal/domain/shared"
	"github.com/erp/dashboard/internal/interfaces/view"
)

// ErrJobFailed is returned by import -wait when the job ends FAILED
var ErrJobFailed = errors.New("import job failed")

func (a *App) runImport(ctx context.Context, args []string) error {
	fs := a.flagSet("import")
	kindName := fs.String("kind", "", "import flow: "+kindList())
	path := fs.String("file", "", "Excel workbook (.xlsx or .xls)")
	store := fs.String("store", "", "store code for store-bound flows")
	origin := fs.String("origin", "", "origin store code for transfers")
	dest := fs.String("dest", "", "destination store code for transfers")
	wait := fs.Bool("wait", false, "follow the job until it finishes")
	if err := parse(fs, args); err != nil {
		return err
	}

	kind, err := imports.ParseKind(*kindName)
	if err != nil {
		fmt.Fprintln(a.errOut, err)
		return errUsage
	}
	form := imports.Form{
		Kind:                 kind,
		StoreCode:            strings.ToUpper(strings.TrimSpace(*store)),
		OriginStoreCode:      strings.ToUpper(strings.TrimSpace(*origin)),
		DestinationStoreCode: strings.ToUpper(strings.TrimSpace(*dest)),
	}
	if *path != "" {
		if form.File, err = imports.ReadFile(*path); err != nil {
			return err
		}
	}

	gateOpts := []imports.GateOption{
		imports.WithLogger(a.logger),
		imports.WithMetrics(a.metrics),
	}
	if a.archive != nil {
		gateOpts = append(gateOpts, imports.WithArchive(a.archive))
	}
	guard := imports.NewStockInitialGuard(a.client.Stores, a.logger)
	var poller *jobs.Poller
	if *wait {
		poller = jobs.NewPoller(a.client.Jobs.Status,
			jobs.WithInterval(a.interval),
			jobs.WithLogger(a.logger),
			jobs.WithMetrics(a.metrics),
			jobs.OnUpdate(func(j bulk.Job) {
				fmt.Fprintf(a.out, "%-24s %s\n", view.StatusLabel(j.Status), view.ProgressBar(j.ProgressPercentage))
			}),
			jobs.OnComplete(stockLoadedNotice(a, guard, form)),
			jobs.OnError(func(err error) {
				fmt.Fprintf(a.errOut, "status check failed: %s\n", describeError(err))
			}),
		)
		defer poller.Stop()
		gateOpts = append(gateOpts, imports.WithTracker(poller))
	}

	gate := imports.NewGate(a.client.Imports, guard, gateOpts...)
	sub, err := gate.Submit(ctx, form)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%s import queued as job %s\n", kind.Label(), sub.JobID)
	if sub.ArchiveKey != "" {
		fmt.Fprintf(a.out, "Workbook archived at %s\n", sub.ArchiveKey)
	}
	if poller == nil {
		fmt.Fprintf(a.out, "Follow it with: dashboard job -id %s\n", sub.JobID)
		return nil
	}

	select {
	case <-poller.Done():
	case <-ctx.Done():
		return ctx.Err()
	}
	job, ok := poller.Last()
	if !ok {
		return fmt.Errorf("no status received for job %s", sub.JobID)
	}
	fmt.Fprintln(a.out)
	if err := view.RenderJob(a.out, job, a.now()); err != nil {
		return err
	}
	if job.Status == bulk.JobStatusFailed {
		return fmt.Errorf("%w: %s", ErrJobFailed, sub.JobID)
	}
	return nil
}

// stockLoadedNotice drops the guard's verdict for the store once its initial
// stock import succeeds, so the next check sees the store as loaded
func stockLoadedNotice(a *App, guard *imports.StockInitialGuard, form imports.Form) func(bulk.Job) {
	return func(j bulk.Job) {
		if form.Kind != imports.KindStock || !j.Status.Succeeded() {
			return
		}
		guard.Invalidate(form.StoreCode)
		fmt.Fprintf(a.out, "Store %s now has its initial stock loaded\n", form.StoreCode)
	}
}

func kindList() string {
	names := make([]string, 0, len(imports.AllKinds))
	for _, k := range imports.AllKinds {
		names = append(names, string(k))
	}
	return strings.Join(names, ", ")
}

func (a *App) runJobs(ctx context.Context, args []string) error {
	fs := a.flagSet("jobs")
	recent := fs.Bool("recent", false, "show the most recent jobs of every user")
	watch := fs.Bool("watch", false, "keep polling and report status changes until interrupted")
	if err := parse(fs, args); err != nil {
		return err
	}

	list := a.client.Jobs.Mine
	if *recent {
		list = a.client.Jobs.Recent
	}
	if *watch {
		return a.watchJobs(ctx, list)
	}

	items, err := list(ctx)
	if err != nil {
		return err
	}
	return renderJobs(a, items, "No import jobs yet")
}

// watchJobs reports every status change of the listed jobs until ctx ends
func (a *App) watchJobs(ctx context.Context, list jobs.ListFunc) error {
	w := jobs.NewWatcher(list,
		jobs.WithInterval(a.interval),
		jobs.WithLogger(a.logger),
		jobs.WithMetrics(a.metrics),
		jobs.OnUpdate(func(j bulk.Job) {
			fmt.Fprintf(a.out, "%s  %-20s %-24s %s\n", j.JobID, j.JobType.Label(), view.StatusLabel(j.Status), view.ProgressBar(j.ProgressPercentage))
		}),
		jobs.OnComplete(func(j bulk.Job) {
			fmt.Fprintf(a.out, "%s finished: %s (%d ok, %d errors)\n", j.JobID, view.StatusLabel(j.Status), j.SuccessRecords, j.ErrorRecords)
		}),
		jobs.OnError(func(err error) {
			fmt.Fprintf(a.errOut, "poll failed: %s\n", describeError(err))
		}),
	)
	fmt.Fprintln(a.errOut, "Watching jobs, press Ctrl-C to stop")
	w.Start(ctx)
	<-ctx.Done()
	w.Stop()
	return nil
}

func renderJobs(a *App, items []bulk.Job, empty string) error {
	state := listing.State[bulk.Job]{
		Query:      shared.Query{Page: 1, PageSize: max(len(items), 1)},
		Data:       items,
		TotalCount: len(items),
		TotalPages: 1,
	}
	return view.Table[bulk.Job]{Columns: view.JobColumns(), EmptyMessage: empty, MaxCellWidth: maxCellWidth}.Render(a.out, state)
}

func (a *App) runJob(ctx context.Context, args []string) error {
	fs := a.flagSet("job")
	id := fs.String("id", "", "job id")
	if err := parse(fs, args); err != nil {
		return err
	}
	if strings.TrimSpace(*id) == "" {
		fmt.Fprintln(a.errOut, "job requires -id")
		return errUsage
	}
	job, err := a.client.Jobs.Status(ctx, strings.TrimSpace(*id))
	if err != nil {
		return err
	}
	return view.RenderJob(a.out, job, a.now())
}

func (a *App) runHistory(ctx context.Context, args []string) error {
	fs := a.flagSet("history")
	page := fs.Int("page", 1, "page number")
	size := fs.Int("size", 10, "rows per page")
	jobType := fs.String("type", "", "job type, e.g. PRODUCTS_IMPORT")
	status := fs.String("status", "", "job status, e.g. COMPLETED")
	if err := parse(fs, args); err != nil {
		return err
	}

	filter := bulk.HistoryFilter{
		Page:     max(*page, 1),
		PageSize: min(max(*size, 1), shared.MaxPageSize),
		JobType:  bulk.JobType(strings.ToUpper(strings.TrimSpace(*jobType))),
		Status:   bulk.JobStatus(strings.ToUpper(strings.TrimSpace(*status))),
	}
	if filter.Status != "" && !filter.Status.IsValid() {
		fmt.Fprintf(a.errOut, "unknown job status %q\n", *status)
		return errUsage
	}

	result, err := a.client.Jobs.History(ctx, filter)
	if err != nil {
		return err
	}
	state := listing.State[bulk.Job]{
		Query:      shared.Query{Page: result.Page, PageSize: result.PageSize},
		Data:       result.Items,
		TotalCount: result.TotalCount,
		TotalPages: result.TotalPages,
	}
	return view.Table[bulk.Job]{Columns: view.JobColumns(), EmptyMessage: "No imports in history", MaxCellWidth: maxCellWidth}.Render(a.out, state)
}
