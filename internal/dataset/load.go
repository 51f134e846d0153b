package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/dgallion1/pdfdesk/internal/report"
)

// LoadCSV reads records whose first row names the column keys. Short rows
// simply lack the trailing keys; extra cells are dropped.
func LoadCSV(r io.Reader) ([]report.RecordRow, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	return toRows(records), nil
}

// LoadXLSX reads records from a workbook sheet, the first one when sheet is
// empty. The first row names the column keys.
func LoadXLSX(r io.Reader, sheet string) ([]report.RecordRow, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, nil
		}
		sheet = sheets[0]
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	return toRows(rows), nil
}

// LoadRows picks the loader from the file extension. A path of the form
// "book.xlsx#Sheet2" selects a sheet.
func LoadRows(path string) ([]report.RecordRow, error) {
	sheet := ""
	if i := strings.LastIndex(path, "#"); i > 0 {
		path, sheet = path[:i], path[i+1:]
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open records: %w", err)
	}
	defer f.Close()

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".csv":
		return LoadCSV(f)
	case ".xlsx", ".xlsm":
		return LoadXLSX(f, sheet)
	default:
		return nil, fmt.Errorf("unsupported record source %q", ext)
	}
}

// LoadSummary reads summary paragraphs from a .txt or .md file.
func LoadSummary(path string) ([]string, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".md", ".markdown":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read summary: %w", err)
		}
		return report.SummaryFromMarkdown(data), nil
	case ".txt", "":
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("read summary: %w", err)
		}
		defer f.Close()
		paras, err := report.SummaryFromText(f)
		if err != nil {
			return nil, fmt.Errorf("read summary: %w", err)
		}
		return paras, nil
	default:
		return nil, fmt.Errorf("unsupported summary source %q", ext)
	}
}

func toRows(records [][]string) []report.RecordRow {
	if len(records) == 0 {
		return nil
	}
	headers := make([]string, len(records[0]))
	for i, h := range records[0] {
		headers[i] = strings.TrimSpace(h)
	}

	out := make([]report.RecordRow, 0, len(records)-1)
	for _, rec := range records[1:] {
		if blank(rec) {
			continue
		}
		fields := make([]report.Field, 0, len(headers))
		for j, cell := range rec {
			if j >= len(headers) || headers[j] == "" {
				continue
			}
			fields = append(fields, report.Field{Key: headers[j], Value: strings.TrimSpace(cell)})
		}
		out = append(out, report.RowFromFields(fields))
	}
	return out
}

func blank(rec []string) bool {
	for _, c := range rec {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
