package cli

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/erp/dashboard/internal/domain/report"
	"github.com/erp/dashboard/internal/interfaces/view"
)

const dateLayout = "2006-01-02"

func (a *App) runStats(ctx context.Context, args []string) error {
	if err := parse(a.flagSet("stats"), args); err != nil {
		return err
	}
	stats, err := a.client.Dashboard.Stats(ctx)
	if err != nil {
		return err
	}
	return view.RenderStats(a.out, stats)
}

func (a *App) runExport(ctx context.Context, args []string) error {
	flags := a.flagSet("export")
	reportType := flags.String("type", "", "report: "+reportList())
	formatName := flags.String("format", "excel", "file format: excel or pdf")
	out := flags.String("out", "", "output file or directory (default: the server's file name in the current directory)")
	from := flags.String("from", "", "start date, YYYY-MM-DD")
	to := flags.String("to", "", "end date, YYYY-MM-DD")
	store := flags.String("store", "", "store code")
	category := flags.Int("category", 0, "category id")
	days := flags.Int("days", 0, "days threshold for stock reports")
	inactive := flags.Bool("inactive", false, "include inactive products")
	if err := parse(flags, args); err != nil {
		return err
	}

	format, err := report.ParseFormat(*formatName)
	if err != nil {
		fmt.Fprintln(a.errOut, err)
		return errUsage
	}
	req := report.ExportRequest{
		Type:   report.Type(strings.ToLower(strings.TrimSpace(*reportType))),
		Format: format,
		Filters: report.Filters{
			StoreCode:       strings.ToUpper(strings.TrimSpace(*store)),
			IncludeInactive: *inactive,
		},
	}
	if req.Filters.StartDate, err = parseDate(*from); err != nil {
		return err
	}
	if req.Filters.EndDate, err = parseDate(*to); err != nil {
		return err
	}
	if *category > 0 {
		req.Filters.CategoryID = category
	}
	if *days > 0 {
		req.Filters.DaysThreshold = days
	}
	if err := req.Validate(); err != nil {
		return err
	}

	dl, err := a.client.Reports.Export(ctx, req)
	if err != nil {
		return err
	}
	path, err := outputPath(*out, dl.FileName)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, dl.Data, 0o644); err != nil {
		return fmt.Errorf("failed to save report: %w", err)
	}
	fmt.Fprintf(a.out, "Saved %s (%d bytes)\n", path, len(dl.Data))
	return nil
}

func reportList() string {
	names := make([]string, 0, len(report.Types))
	for _, t := range report.Types {
		names = append(names, string(t))
	}
	return strings.Join(names, ", ")
}

// parseDate reads a YYYY-MM-DD flag; empty means unset
func parseDate(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation(dateLayout, s, time.Local)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", s)
	}
	return &t, nil
}

// outputPath resolves -out: empty means the download's name in the working
// directory, an existing directory receives the download's name
func outputPath(out, fileName string) (string, error) {
	if out == "" {
		return fileName, nil
	}
	info, err := os.Stat(out)
	switch {
	case err == nil && info.IsDir():
		return filepath.Join(out, fileName), nil
	case err == nil || errors.Is(err, fs.ErrNotExist):
		return out, nil
	default:
		return "", err
	}
}
