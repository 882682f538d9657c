// Package cli implements the dashboard subcommands on top of the API client.
package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/erp/dashboard/internal/application/imports"
	"github.com/erp/dashboard/internal/application/listing"
	"github.com/erp/dashboard/internal/infrastructure/api"
	"github.com/erp/dashboard/internal/infrastructure/metrics"
	"go.uber.org/zap"
)

// Exit codes returned by Run
const (
	ExitOK    = 0
	ExitError = 1
	ExitUsage = 2
)

// App runs dashboard commands against one API client
type App struct {
	client   *api.Client
	archive  imports.Archive
	out      io.Writer
	errOut   io.Writer
	in       io.Reader
	logger   *zap.Logger
	metrics  *metrics.Recorder
	interval time.Duration
	pageSize int
	debounce time.Duration
	now      func() time.Time
}

// Option configures an App
type Option func(*App)

// WithOutput sets where results and errors are written
func WithOutput(out, errOut io.Writer) Option {
	return func(a *App) {
		a.out = out
		a.errOut = errOut
	}
}

// WithInput sets the reader browse takes its commands from
func WithInput(in io.Reader) Option {
	return func(a *App) {
		a.in = in
	}
}

// WithLogger sets the logger
func WithLogger(l *zap.Logger) Option {
	return func(a *App) {
		a.logger = l
	}
}

// WithMetrics records list and job metrics
func WithMetrics(m *metrics.Recorder) Option {
	return func(a *App) {
		a.metrics = m
	}
}

// WithArchive keeps a copy of every uploaded workbook
func WithArchive(ar imports.Archive) Option {
	return func(a *App) {
		a.archive = ar
	}
}

// WithPollInterval sets how often job status is read
func WithPollInterval(d time.Duration) Option {
	return func(a *App) {
		a.interval = d
	}
}

// WithListing sets the default page size and the search debounce of browse
func WithListing(pageSize int, debounce time.Duration) Option {
	return func(a *App) {
		a.pageSize = pageSize
		a.debounce = debounce
	}
}

// WithClock replaces time.Now
func WithClock(now func() time.Time) Option {
	return func(a *App) {
		a.now = now
	}
}

// New creates an App using client
func New(client *api.Client, opts ...Option) *App {
	a := &App{
		client:   client,
		out:      os.Stdout,
		errOut:   os.Stderr,
		in:       os.Stdin,
		logger:   zap.NewNop(),
		interval: 2 * time.Second,
		pageSize: 20,
		debounce: listing.DefaultDebounce,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

type command struct {
	name    string
	summary string
	run     func(ctx context.Context, args []string) error
}

func (a *App) commands() []command {
	return []command{
		{"login", "Log in: login -u <user> -p <password>", a.runLogin},
		{"logout", "Forget the stored session", a.runLogout},
		{"whoami", "Show the logged in user", a.runWhoami},
		{"products", "List products [-page -size -search -filter k=v]", a.runProducts},
		{"inventory", "List stock positions [-page -size -search -filter k=v]", a.runInventory},
		{"sales", "List sales [-page -size -search -filter k=v]", a.runSales},
		{"stores", "List stores and their initial stock state", a.runStores},
		{"browse", "Page through a list interactively: browse -resource products", a.runBrowse},
		{"import", "Queue an Excel import: import -kind -file [-store | -origin -dest] [-wait]", a.runImport},
		{"jobs", "List your import jobs [-recent] [-watch]", a.runJobs},
		{"job", "Show one import job: job -id <jobId>", a.runJob},
		{"history", "Import history [-page -size -type -status]", a.runHistory},
		{"stats", "Dashboard totals", a.runStats},
		{"export", "Download a report: export -type <report> [-format excel|pdf] [-out path]", a.runExport},
	}
}

// Run executes the command named by args[0] and returns the process exit code
func (a *App) Run(ctx context.Context, args []string) int {
	if len(args) == 0 || args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		a.Usage()
		if len(args) == 0 {
			return ExitUsage
		}
		return ExitOK
	}

	for _, cmd := range a.commands() {
		if cmd.name != args[0] {
			continue
		}
		err := cmd.run(ctx, args[1:])
		switch {
		case err == nil:
			return ExitOK
		case errors.Is(err, flag.ErrHelp):
			return ExitOK
		case errors.Is(err, errUsage):
			return ExitUsage
		default:
			a.logger.Debug("Command failed", zap.String("command", cmd.name), zap.Error(err))
			fmt.Fprintln(a.errOut, "Error: "+describeError(err))
			return ExitError
		}
	}

	fmt.Fprintf(a.errOut, "Error: unknown command %q\n\n", args[0])
	a.Usage()
	return ExitUsage
}

// Usage writes the command overview
func (a *App) Usage() {
	fmt.Fprint(a.errOut, `Inventory Dashboard - terminal client for the inventory API

USAGE:
    dashboard [-config path] <command> [options]

COMMANDS:
`)
	tw := tabwriter.NewWriter(a.errOut, 0, 0, 2, ' ', 0)
	for _, cmd := range a.commands() {
		fmt.Fprintf(tw, "    %s\t%s\n", cmd.name, cmd.summary)
	}
	_ = tw.Flush()
	fmt.Fprint(a.errOut, `
Run "dashboard <command> -h" for the options of a command.
`)
}

// errUsage marks a flag or argument problem already reported by the flag set
var errUsage = errors.New("usage error")

// flagSet returns a flag set that reports to the error writer
func (a *App) flagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.errOut)
	return fs
}

// parse runs fs over args and maps flag errors to errUsage
func parse(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return err
		}
		return errUsage
	}
	if fs.NArg() > 0 {
		fmt.Fprintf(fs.Output(), "unexpected arguments: %s\n", strings.Join(fs.Args(), " "))
		return errUsage
	}
	return nil
}

// describeError turns client errors into one line for the terminal
func describeError(err error) string {
	if errors.Is(err, api.ErrUnauthorized) {
		return "not logged in or session expired. Run: dashboard login -u <user> -p <password>"
	}
	return err.Error()
}
