package view

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/erp/dashboard/internal/domain/bulk"
)

// ProgressBarWidth is the number of cells in a job progress bar
const ProgressBarWidth = 20

// MaxDetailLines caps the detailed errors and warnings printed per job
const MaxDetailLines = 10

// StatusLabel returns the human readable job status
func StatusLabel(s bulk.JobStatus) string {
	switch s {
	case bulk.JobStatusQueued:
		return "Queued"
	case bulk.JobStatusProcessing:
		return "Processing"
	case bulk.JobStatusCompleted:
		return "Completed"
	case bulk.JobStatusCompletedWithWarnings:
		return "Completed with warnings"
	case bulk.JobStatusFailed:
		return "Failed"
	default:
		return string(s)
	}
}

// ProgressBar renders pct (0..100) as "[#####---------------]  25%"
func ProgressBar(pct float64) string {
	pct = max(0, min(100, pct))
	filled := int(pct / 100 * ProgressBarWidth)
	return fmt.Sprintf("[%s%s] %5s",
		strings.Repeat("#", filled),
		strings.Repeat("-", ProgressBarWidth-filled),
		FormatPercent(pct))
}

// RenderJob writes the status card of one job
func RenderJob(w io.Writer, job bulk.Job, now time.Time) error {
	var b strings.Builder
	fmt.Fprintf(&b, "%s  %s  %s\n", job.JobType.Label(), job.JobID, StatusLabel(job.Status))
	if job.FileName != "" {
		fmt.Fprintf(&b, "File: %s", job.FileName)
		if job.StoreCode != "" {
			fmt.Fprintf(&b, "  Store: %s", job.StoreCode)
		}
		b.WriteByte('\n')
	}
	b.WriteString(ProgressBar(job.ProgressPercentage))
	b.WriteByte('\n')
	fmt.Fprintf(&b, "Records: %s processed of %s | %s ok | %s errors | %s warnings\n",
		FormatInt(job.ProcessedRecords), FormatInt(job.TotalRecords),
		FormatInt(job.SuccessRecords), FormatInt(job.ErrorRecords), FormatInt(job.WarningRecords))
	if d := job.Duration(now); d > 0 {
		fmt.Fprintf(&b, "Elapsed: %s\n", d.Round(time.Second))
	}
	if job.ErrorMessage != "" {
		fmt.Fprintf(&b, "Error: %s\n", job.ErrorMessage)
	}
	writeDetails(&b, "Errors", job.DetailedErrors)
	writeDetails(&b, "Warnings", job.DetailedWarnings)

	_, err := io.WriteString(w, b.String())
	return err
}

func writeDetails(b *strings.Builder, title string, lines []string) {
	if len(lines) == 0 {
		return
	}
	fmt.Fprintf(b, "%s (%d):\n", title, len(lines))
	for i, l := range lines {
		if i == MaxDetailLines {
			fmt.Fprintf(b, "  ... and %d more\n", len(lines)-MaxDetailLines)
			return
		}
		fmt.Fprintf(b, "  - %s\n", l)
	}
}

// JobColumns are the import history table columns
func JobColumns() []Column[bulk.Job] {
	return []Column[bulk.Job]{
		{Key: "startedAt", Label: "Started", Value: func(j bulk.Job) any { return j.StartedAt }},
		{Key: "jobType", Label: "Type", Value: func(j bulk.Job) any { return j.JobType.Label() }},
		{Key: "fileName", Label: "File", Value: func(j bulk.Job) any { return j.FileName }},
		{Key: "status", Label: "Status", Value: func(j bulk.Job) any { return StatusLabel(j.Status) }},
		{Key: "records", Label: "Records", Value: func(j bulk.Job) any {
			return fmt.Sprintf("%d/%d", j.SuccessRecords, j.TotalRecords)
		}},
		{Key: "errorRecords", Label: "Errors", Value: func(j bulk.Job) any { return j.ErrorRecords }},
		{Key: "startedBy", Label: "User", Value: func(j bulk.Job) any { return j.StartedBy }},
	}
}
