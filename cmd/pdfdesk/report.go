package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/dgallion1/pdfdesk/internal/dataset"
	"github.com/dgallion1/pdfdesk/internal/layout"
	"github.com/dgallion1/pdfdesk/internal/preview"
	"github.com/dgallion1/pdfdesk/internal/report"
	"github.com/dgallion1/pdfdesk/internal/style"
)

type reportOptions struct {
	format     string
	out        string
	metrics    string
	catalog    string
	summary    string
	stylesheet string
	inventory  bool
}

func reportCommand() *cobra.Command {
	var opts reportOptions
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Build the quarterly sales report as paginated HTML or DOCX",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			log := newLogger()

			w := cmd.OutOrStdout()
			if opts.out == "" && opts.format == "docx" {
				if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
					return errors.New("refusing to write docx to a terminal; use --out")
				}
			}

			pages, err := runReport(w, opts, time.Now())
			if err != nil {
				return err
			}
			log.Info("report written", "format", opts.format, "pages", pages, "out", opts.out)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.format, "format", "html", "Output format: html or docx")
	f.StringVarP(&opts.out, "out", "o", "", "Output file path (default: stdout)")
	f.StringVar(&opts.metrics, "metrics", "", "Metric rows from CSV or XLSX (book.xlsx#Sheet selects a sheet)")
	f.StringVar(&opts.catalog, "catalog", "", "Catalog rows from CSV or XLSX")
	f.StringVar(&opts.summary, "summary", "", "Summary text from .txt or .md")
	f.StringVar(&opts.stylesheet, "stylesheet", "", "YAML stylesheet layered over the default")
	f.BoolVar(&opts.inventory, "inventory", false, "Show stock levels in the catalog table")
	return cmd
}

// buildReport starts from the sample report and replaces whatever the
// options supply.
func buildReport(opts reportOptions, now time.Time) (report.Report, *style.Sheet, error) {
	r := dataset.Sample(now)

	if opts.metrics != "" {
		rows, err := dataset.LoadRows(opts.metrics)
		if err != nil {
			return r, nil, fmt.Errorf("load metrics: %w", err)
		}
		r.Metrics.Rows = rows
	}
	if opts.catalog != "" {
		rows, err := dataset.LoadRows(opts.catalog)
		if err != nil {
			return r, nil, fmt.Errorf("load catalog: %w", err)
		}
		r.Catalog.Rows = rows
	}
	if opts.inventory {
		r.Catalog.Columns = dataset.InventoryColumns()
	}
	if opts.summary != "" {
		paras, err := dataset.LoadSummary(opts.summary)
		if err != nil {
			return r, nil, fmt.Errorf("load summary: %w", err)
		}
		r.Summary = paras
	}

	sheet := style.DefaultSheet()
	if opts.stylesheet != "" {
		var err error
		if sheet, err = style.LoadSheetFile(opts.stylesheet); err != nil {
			return r, nil, err
		}
	}
	return r, sheet, nil
}

// runReport renders the whole report before touching --out, so a bad format
// or a failed load leaves no file behind. Without --out it writes to stdout.
func runReport(stdout io.Writer, opts reportOptions, now time.Time) (int, error) {
	var buf bytes.Buffer
	pages, err := writeReport(&buf, opts, now)
	if err != nil {
		return 0, err
	}
	if opts.out == "" {
		if _, err := stdout.Write(buf.Bytes()); err != nil {
			return 0, fmt.Errorf("write output: %w", err)
		}
		return pages, nil
	}
	if err := os.WriteFile(opts.out, buf.Bytes(), 0o644); err != nil {
		return 0, fmt.Errorf("write output: %w", err)
	}
	return pages, nil
}

// writeReport renders the report in the requested format and returns the
// page count of the paginated layout.
func writeReport(w io.Writer, opts reportOptions, now time.Time) (int, error) {
	r, sheet, err := buildReport(opts, now)
	if err != nil {
		return 0, err
	}
	doc := report.Build(r, sheet)
	pages := layout.NewRenderer(layout.A4()).Render(doc)

	switch opts.format {
	case "", "html":
		err = preview.WriteHTML(w, r.Title, pages)
	case "docx":
		err = preview.WriteDOCX(w, doc)
	default:
		return 0, fmt.Errorf("unknown format %q (must be html or docx)", opts.format)
	}
	if err != nil {
		return 0, fmt.Errorf("write %s: %w", opts.format, err)
	}
	return len(pages), nil
}
