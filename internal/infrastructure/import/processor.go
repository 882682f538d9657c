package sheetimport

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/erp/dashboard/internal/domain/bulk"
)

const (
	DefaultMaxErrors = 50
	DefaultMaxRows   = 10000
)

// Result summarises one processed workbook
type Result struct {
	TotalRecords   int
	SuccessRecords int
	ErrorRecords   int
	WarningRecords int
	Errors         []string
	Warnings       []string
	// Fatal is set when the workbook could not be processed at all
	Fatal string
}

// Status maps the result to the job's terminal status
func (r Result) Status() bulk.JobStatus {
	switch {
	case r.Fatal != "":
		return bulk.JobStatusFailed
	case r.ErrorRecords > 0 || len(r.Warnings) > 0:
		return bulk.JobStatusCompletedWithWarnings
	default:
		return bulk.JobStatusCompleted
	}
}

// Processor validates uploaded workbooks row by row
type Processor struct {
	maxErrors int
	maxRows   int
}

// ProcessorOption configures a Processor
type ProcessorOption func(*Processor)

// WithMaxErrors limits how many row problems are reported
func WithMaxErrors(n int) ProcessorOption {
	return func(p *Processor) {
		if n > 0 {
			p.maxErrors = n
		}
	}
}

// WithMaxRows limits how many data rows a workbook may carry
func WithMaxRows(n int) ProcessorOption {
	return func(p *Processor) {
		if n > 0 {
			p.maxRows = n
		}
	}
}

// NewProcessor creates a processor
func NewProcessor(opts ...ProcessorOption) *Processor {
	p := &Processor{maxErrors: DefaultMaxErrors, maxRows: DefaultMaxRows}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Process validates data as a workbook of the given job type.
// Legacy .xls files cannot be parsed and complete with a warning.
func (p *Processor) Process(jobType bulk.JobType, fileName string, data []byte) Result {
	if strings.EqualFold(filepath.Ext(fileName), ".xls") {
		return Result{Warnings: []string{"Legacy .xls workbook accepted without row validation"}}
	}

	schema, ok := SchemaFor(jobType)
	if !ok {
		return Result{Fatal: fmt.Sprintf("Unsupported import type %s", jobType)}
	}

	sheet, err := ReadXLSX(data)
	if err != nil {
		return Result{Fatal: fatalMessage(err)}
	}
	if missing := sheet.ValidateHeaders(schema.Headers); len(missing) > 0 {
		return Result{Fatal: fmt.Sprintf("Missing required columns: %s", strings.Join(missing, ", "))}
	}
	total := sheet.TotalRows()
	if total == 0 {
		return Result{Fatal: fatalMessage(ErrNoDataRows)}
	}
	if total > p.maxRows {
		return Result{TotalRecords: total, Fatal: fmt.Sprintf("Workbook has %d rows; the limit is %d", total, p.maxRows)}
	}

	validator := NewFieldValidator(schema.Rules, p.maxErrors)
	res := Result{TotalRecords: total}
	for _, row := range sheet.Rows() {
		switch validator.ValidateRow(row) {
		case RowRejected:
			res.ErrorRecords++
		case RowWarning:
			res.WarningRecords++
			res.SuccessRecords++
		default:
			res.SuccessRecords++
		}
	}
	res.Errors = summarise(validator.Errors())
	res.Warnings = summarise(validator.Warnings())
	if res.SuccessRecords == 0 {
		res.Fatal = "No valid rows to import"
	}
	return res
}

func summarise(ec *ErrorCollection) []string {
	lines := ec.Lines()
	if ec.IsTruncated() {
		lines = append(lines, fmt.Sprintf("... and %d more", ec.TotalCount()-len(ec.Errors())))
	}
	return lines
}

func fatalMessage(err error) string {
	switch {
	case errors.Is(err, ErrEmptyFile):
		return "The uploaded file is empty"
	case errors.Is(err, ErrInvalidWorkbook):
		return "The uploaded file is not a readable Excel workbook"
	case errors.Is(err, ErrMissingHeader):
		return "The first sheet has no header row"
	case errors.Is(err, ErrNoDataRows):
		return "The first sheet has no data rows"
	default:
		return err.Error()
	}
}
