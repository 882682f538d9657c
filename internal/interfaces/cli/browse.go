package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/erp/dashboard/internal/application/jobs"
	"github.com/erp/dashboard/internal/application/listing"
	"github.com/erp/dashboard/internal/domain/bulk"
	"github.com/erp/dashboard/internal/domain/catalog"
	"github.com/erp/dashboard/internal/domain/inventory"
	"github.com/erp/dashboard/internal/domain/shared"
	"github.com/erp/dashboard/internal/domain/trade"
	"github.com/erp/dashboard/internal/infrastructure/api"
	"github.com/erp/dashboard/internal/interfaces/view"
)

const browseHelp = `Commands:
  n          next page
  p          previous page
  /text      search (/ alone clears the search)
  f k=v      set a filter (f k= removes it)
  c          clear all filters
  s N        rows per page (10, 20, 50, 100)
  r          reload
  q          quit
`

func (a *App) runBrowse(ctx context.Context, args []string) error {
	fs := a.flagSet("browse")
	resource := fs.String("resource", "products", "list to browse: products, inventory or sales")
	if err := parse(fs, args); err != nil {
		return err
	}

	q := shared.NewQuery()
	q.PageSize = a.pageSize
	switch *resource {
	case "products":
		return browse(ctx, a, newController(a, "products", a.client.Products.List, q),
			view.Table[catalog.Product]{Columns: view.ProductColumns(), MaxCellWidth: maxCellWidth})
	case "inventory":
		return browse(ctx, a, newController(a, "inventory", a.client.Inventory.List, q),
			view.Table[inventory.Item]{Columns: view.InventoryColumns(), MaxCellWidth: maxCellWidth})
	case "sales":
		return browse(ctx, a, newController(a, "sales", a.client.Sales.List, q),
			view.Table[trade.Sale]{Columns: view.SaleColumns(), MaxCellWidth: maxCellWidth})
	default:
		fmt.Fprintf(a.errOut, "unknown resource %q\n", *resource)
		return errUsage
	}
}

// browse runs the interactive loop: every line is one command, and the
// page is redrawn once the resulting fetch has settled
func browse[T any](ctx context.Context, a *App, ctrl *listing.Controller[T], table view.Table[T]) error {
	defer ctrl.Close()
	search := listing.SearchInput(ctrl, a.debounce)
	defer search.Stop()

	notices := make(chan string, 16)
	watcher := jobs.NewWatcher(a.client.Jobs.Mine,
		jobs.WithInterval(a.interval),
		jobs.WithLogger(a.logger),
		jobs.WithMetrics(a.metrics),
		jobs.OnComplete(reloadOnJobCompletion(ctrl, func(j bulk.Job) {
			select {
			case notices <- fmt.Sprintf("%s %s: %s, list reloaded", j.JobType.Label(), j.JobID, view.StatusLabel(j.Status)):
			default:
			}
		})),
	)

	render := func() error {
		if err := ctrl.Wait(ctx); err != nil {
			return err
		}
		state := ctrl.State()
		if errors.Is(state.Err, api.ErrUnauthorized) {
			return state.Err
		}
		fmt.Fprintln(a.out)
		for drained := false; !drained; {
			select {
			case n := <-notices:
				fmt.Fprintln(a.out, n)
			default:
				drained = true
			}
		}
		if err := view.RenderStats(a.out, state.Stats); err != nil {
			return err
		}
		if err := table.Render(a.out, state); err != nil {
			return err
		}
		fmt.Fprint(a.out, "> ")
		return nil
	}

	ctrl.Start(ctx)
	if err := render(); err != nil {
		return err
	}
	watcher.Start(ctx)
	defer watcher.Stop()

	scanner := bufio.NewScanner(a.in)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		state := ctrl.State()
		pager := view.PagerFor(state)

		switch {
		case line == "q":
			return nil
		case line == "n":
			if pager.HasNext() {
				ctrl.SetPage(state.Query.Page + 1)
			}
		case line == "p":
			if pager.HasPrev() {
				ctrl.SetPage(state.Query.Page - 1)
			}
		case strings.HasPrefix(line, "/"):
			text := strings.TrimPrefix(line, "/")
			if text == "" {
				search.Push("")
			}
			// one push per keystroke, as typed
			for i := range text {
				search.Push(text[:i+1])
			}
			search.Flush()
		case strings.HasPrefix(line, "f "):
			key, value, ok := strings.Cut(strings.TrimSpace(line[2:]), "=")
			if !ok || strings.TrimSpace(key) == "" {
				fmt.Fprintln(a.errOut, "usage: f key=value")
				break
			}
			ctrl.SetFilter(strings.TrimSpace(key), parseFilterValue(strings.TrimSpace(value)))
		case line == "c":
			ctrl.ClearFilters()
		case strings.HasPrefix(line, "s "):
			n, err := strconv.Atoi(strings.TrimSpace(line[2:]))
			if err != nil || !slices.Contains(shared.PageSizeOptions, n) {
				fmt.Fprintf(a.errOut, "rows per page must be one of %v\n", shared.PageSizeOptions)
				break
			}
			ctrl.SetPageSize(n)
		case line == "r":
			ctrl.Refetch()
		case line == "" || line == "?" || line == "h":
			fmt.Fprint(a.out, browseHelp)
		default:
			fmt.Fprintf(a.errOut, "unknown command %q\n", line)
			fmt.Fprint(a.out, browseHelp)
		}

		if err := render(); err != nil {
			return err
		}
	}
	return scanner.Err()
}

// reloadOnJobCompletion refetches the list once a background job finishes,
// since an import changes the rows and stats on screen
func reloadOnJobCompletion[T any](ctrl *listing.Controller[T], notify func(bulk.Job)) func(bulk.Job) {
	return func(j bulk.Job) {
		notify(j)
		ctrl.Refetch()
	}
}
