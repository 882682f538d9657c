package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/erp/dashboard/internal/application/listing"
	"github.com/erp/dashboard/internal/domain/catalog"
	"github.com/erp/dashboard/internal/domain/inventory"
	"github.com/erp/dashboard/internal/domain/shared"
	"github.com/erp/dashboard/internal/domain/trade"
	"github.com/erp/dashboard/internal/infrastructure/api"
	"github.com/erp/dashboard/internal/interfaces/view"
)

// maxCellWidth keeps wide names from pushing the table off screen
const maxCellWidth = 40

// filterFlag collects repeated -filter key=value flags
type filterFlag struct {
	filters shared.Filters
}

func (f *filterFlag) String() string {
	if f == nil || len(f.filters) == 0 {
		return ""
	}
	return f.filters.Key()
}

func (f *filterFlag) Set(s string) error {
	key, value, ok := strings.Cut(s, "=")
	key = strings.TrimSpace(key)
	if !ok || key == "" {
		return fmt.Errorf("filter must be key=value, got %q", s)
	}
	f.filters.Set(key, parseFilterValue(strings.TrimSpace(value)))
	return nil
}

// parseFilterValue types a filter value: booleans and integers become scalars, the rest stays text
func parseFilterValue(s string) any {
	switch s {
	case "true":
		return true
	case "false":
		return false
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	return s
}

// listFlags are the flags shared by every list command
type listFlags struct {
	page    int
	size    int
	search  string
	filters *filterFlag
}

func (a *App) listFlagSet(name string) (*flag.FlagSet, *listFlags) {
	fs := a.flagSet(name)
	lf := &listFlags{filters: &filterFlag{filters: shared.Filters{}}}
	fs.IntVar(&lf.page, "page", 1, "page number")
	fs.IntVar(&lf.size, "size", a.pageSize, "rows per page (10, 20, 50 or 100)")
	fs.StringVar(&lf.search, "search", "", "search text")
	fs.Var(lf.filters, "filter", "server filter as key=value, repeatable")
	return fs, lf
}

// parseList parses args and checks the page size against the selector options
func (a *App) parseList(fs *flag.FlagSet, lf *listFlags, args []string) error {
	if err := parse(fs, args); err != nil {
		return err
	}
	if !slices.Contains(shared.PageSizeOptions, lf.size) {
		fmt.Fprintf(a.errOut, "-size must be one of %v\n", shared.PageSizeOptions)
		return errUsage
	}
	return nil
}

func (lf *listFlags) query() shared.Query {
	q := shared.NewQuery()
	q.Page = lf.page
	q.PageSize = lf.size
	q.Search = strings.TrimSpace(lf.search)
	q.Filters = lf.filters.filters.Clone()
	return q.Normalize()
}

func (a *App) runProducts(ctx context.Context, args []string) error {
	fs, lf := a.listFlagSet("products")
	lowStock := fs.Bool("low", false, "only products at or below their minimum stock")
	category := fs.Int("category", 0, "category id")
	if err := a.parseList(fs, lf, args); err != nil {
		return err
	}
	if *lowStock {
		lf.filters.filters.Set(catalog.FilterLowStock, true)
	}
	if *category > 0 {
		lf.filters.filters.Set(catalog.FilterCategoryID, *category)
	}
	return showList(ctx, a, "products", a.client.Products.List, view.Table[catalog.Product]{
		Columns:      view.ProductColumns(),
		EmptyMessage: "No products match",
		MaxCellWidth: maxCellWidth,
	}, lf.query())
}

func (a *App) runInventory(ctx context.Context, args []string) error {
	fs, lf := a.listFlagSet("inventory")
	store := fs.String("store", "", "store code")
	lowStock := fs.Bool("low", false, "only positions at or below their minimum stock")
	if err := a.parseList(fs, lf, args); err != nil {
		return err
	}
	lf.filters.filters.Set(inventory.FilterStoreCode, strings.ToUpper(strings.TrimSpace(*store)))
	if *lowStock {
		lf.filters.filters.Set(inventory.FilterLowStock, true)
	}
	return showList(ctx, a, "inventory", a.client.Inventory.List, view.Table[inventory.Item]{
		Columns:      view.InventoryColumns(),
		EmptyMessage: "No stock positions match",
		MaxCellWidth: maxCellWidth,
	}, lf.query())
}

func (a *App) runSales(ctx context.Context, args []string) error {
	fs, lf := a.listFlagSet("sales")
	store := fs.String("store", "", "store code")
	from := fs.String("from", "", "first sale date, YYYY-MM-DD")
	to := fs.String("to", "", "last sale date, YYYY-MM-DD")
	if err := a.parseList(fs, lf, args); err != nil {
		return err
	}
	lf.filters.filters.Set(trade.FilterStoreCode, strings.ToUpper(strings.TrimSpace(*store)))
	lf.filters.filters.Set(trade.FilterStartDate, *from)
	lf.filters.filters.Set(trade.FilterEndDate, *to)
	return showList(ctx, a, "sales", a.client.Sales.List, view.Table[trade.Sale]{
		Columns:      view.SaleColumns(),
		EmptyMessage: "No sales match",
		MaxCellWidth: maxCellWidth,
	}, lf.query())
}

func newController[T any](a *App, resource string, fetch listing.FetchFunc[T], q shared.Query) *listing.Controller[T] {
	return listing.NewController(fetch,
		listing.WithResource(resource),
		listing.WithQuery(q),
		listing.WithLogger(a.logger),
		listing.WithMetrics(a.metrics),
	)
}

// showList fetches one page through a list controller and renders it
func showList[T any](ctx context.Context, a *App, resource string, fetch listing.FetchFunc[T], table view.Table[T], q shared.Query) error {
	ctrl := newController(a, resource, fetch, q)
	defer ctrl.Close()

	ctrl.Start(ctx)
	if err := ctrl.Wait(ctx); err != nil {
		return err
	}
	state := ctrl.State()
	if errors.Is(state.Err, api.ErrUnauthorized) {
		return state.Err
	}
	if err := view.RenderStats(a.out, state.Stats); err != nil {
		return err
	}
	if err := table.Render(a.out, state); err != nil {
		return err
	}
	if state.Err != nil {
		return fmt.Errorf("fetching %s: %w", resource, state.Err)
	}
	return nil
}

func (a *App) runStores(ctx context.Context, args []string) error {
	if err := parse(a.flagSet("stores"), args); err != nil {
		return err
	}
	stores, err := a.client.Stores.List(ctx)
	if err != nil {
		return err
	}
	if len(stores) == 0 {
		fmt.Fprintln(a.out, "No stores")
		return nil
	}

	tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "CODE\tNAME\tADDRESS\tACTIVE\tINITIAL STOCK")
	for _, s := range stores {
		initial := "pending"
		if s.HasInitialStock {
			initial = "loaded"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", s.Code, s.Name, s.Address, view.FormatValue(s.Active), initial)
	}
	return tw.Flush()
}
