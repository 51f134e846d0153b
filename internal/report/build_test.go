package report

import (
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/dgallion1/pdfdesk/internal/style"
)

func metricColumns() []Column {
	return []Column{
		{Key: "metric", Header: "Metric", Width: 0.2},
		{Key: "value", Header: "Value", Width: 0.5},
		{Key: "period", Header: "Period", Width: 0.3},
	}
}

func testReport() Report {
	return Report{
		Title:       "Quarterly Sales Report",
		GeneratedAt: time.Date(2024, 12, 31, 15, 4, 5, 0, time.UTC),
		Metrics: TableSpec{
			Title:   "Performance Overview",
			Columns: metricColumns(),
			Rows: []RecordRow{
				Row("metric", "Sales Growth", "value", "+25%", "period", "YoY"),
				Row("metric", "Market Share", "value", "32%", "period", "Current"),
			},
		},
		Catalog: TableSpec{
			Title: "Product Catalog",
			Columns: []Column{
				{Key: "product", Header: "Product", Width: 0.2},
				{Key: "description", Header: "Description", Width: 0.5},
				{Key: "price", Header: "Price", Width: 0.3, Kind: ColumnNumeric},
			},
			Rows: []RecordRow{
				Row("product", "Laptop Pro", "description", "High-performance laptop", "price", "$1,299.99"),
			},
		},
		Summary: []string{"Strong quarter."},
		Footer:  "Confidential Document - For Internal Use Only",
	}
}

func TestBuild_Shape(t *testing.T) {
	doc := Build(testReport(), style.DefaultSheet())

	if doc.Kind != KindDocument {
		t.Fatalf("expected document root, got %s", doc.Kind)
	}
	if len(doc.Children) != 1 || doc.Children[0].Kind != KindPage {
		t.Fatalf("expected one page child, got %d", len(doc.Children))
	}
	page := doc.Children[0]
	if len(page.Children) != 2 {
		t.Fatalf("expected section + footer, got %d children", len(page.Children))
	}
	if page.Children[1].Role != RoleFooter {
		t.Errorf("expected footer last, got role %q", page.Children[1].Role)
	}

	body := page.Children[0]
	var kinds []string
	for _, c := range body.Children {
		kinds = append(kinds, c.Kind.String()+":"+string(c.Role))
	}
	want := []string{"text:title", "text:", "text:subtitle", "table:", "text:subtitle", "table:", "section:summary"}
	if !reflect.DeepEqual(kinds, want) {
		t.Errorf("expected body order %v, got %v", want, kinds)
	}
	if got := body.Children[1].Text; got != "Generated on: 12/31/2024 3:04:05 PM" {
		t.Errorf("unexpected generated line %q", got)
	}
}

func TestBuildTable_RowCountIsInputPlusHeader(t *testing.T) {
	sheet := style.DefaultSheet()
	for n := 1; n <= 7; n++ {
		spec := TableSpec{Columns: metricColumns()}
		for i := 0; i < n; i++ {
			spec.Rows = append(spec.Rows, Row("metric", "m", "value", "v", "period", "p"))
		}
		table := BuildTable(spec, sheet)
		if len(table.Children) != n+1 {
			t.Errorf("rows=%d: expected %d table rows, got %d", n, n+1, len(table.Children))
		}
		if table.Children[0].Role != RoleHeaderRow {
			t.Errorf("rows=%d: expected header row first", n)
		}
	}
}

func TestBuildTable_EmptyRowsHeaderOnly(t *testing.T) {
	table := BuildTable(TableSpec{Columns: metricColumns()}, style.DefaultSheet())
	if len(table.Children) != 1 {
		t.Fatalf("expected header only, got %d rows", len(table.Children))
	}
	header := table.Children[0]
	if len(header.Children) != 3 {
		t.Fatalf("expected 3 header cells, got %d", len(header.Children))
	}
	if header.Children[1].PlainText() != "Value" {
		t.Errorf("expected header label %q, got %q", "Value", header.Children[1].PlainText())
	}
}

func TestBuildTable_MissingKeyIsEmptyCell(t *testing.T) {
	spec := TableSpec{
		Columns: metricColumns(),
		Rows:    []RecordRow{Row("metric", "Only metric")},
	}
	table := BuildTable(spec, style.DefaultSheet())
	row := table.Children[1]
	if len(row.Children) != 3 {
		t.Fatalf("expected 3 cells, got %d", len(row.Children))
	}
	for i, want := range []string{"Only metric", "", ""} {
		got := row.Children[i].Children[0].Text
		if got != want {
			t.Errorf("cell %d: expected %q, got %q", i, want, got)
		}
	}

	missing := spec.MissingKeys()
	if !reflect.DeepEqual(missing[0], []string{"value", "period"}) {
		t.Errorf("expected missing keys [value period], got %v", missing[0])
	}
}

func TestBuildTable_CellStyles(t *testing.T) {
	spec := testReport().Catalog
	table := BuildTable(spec, style.DefaultSheet())

	headerCell := table.Children[0].Children[0]
	if !headerCell.Style.Bold() || headerCell.Style.Width != 0.2 {
		t.Errorf("expected bold header with width 0.2, got %+v", headerCell.Style)
	}

	priceCell := table.Children[1].Children[2]
	if priceCell.Style.Width != 0.3 {
		t.Errorf("expected price width 0.3, got %v", priceCell.Style.Width)
	}
	if priceCell.Style.TextAlign != "right" {
		t.Errorf("expected numeric column right-aligned, got %q", priceCell.Style.TextAlign)
	}
	if priceCell.Style.Bold() {
		t.Error("expected body cell not bold")
	}
}

func TestBuild_Deterministic(t *testing.T) {
	sheet := style.DefaultSheet()
	a := Build(testReport(), sheet)
	b := Build(testReport(), sheet)
	if a == b {
		t.Fatal("expected distinct trees")
	}
	if !reflect.DeepEqual(a, b) {
		t.Fatal("expected structurally equal trees")
	}
}

func TestTableSpec_WidthBudget(t *testing.T) {
	if !(TableSpec{Columns: metricColumns()}).WidthBudgetOK() {
		t.Error("expected 20/50/30 to fill the table")
	}
	over := TableSpec{Columns: []Column{{Key: "a", Width: 0.8}, {Key: "b", Width: 0.4}}}
	if over.WidthBudgetOK() {
		t.Error("expected 80/40 to be flagged")
	}
	// Still renders.
	if n := len(BuildTable(over, style.DefaultSheet()).Children); n != 1 {
		t.Errorf("expected header row, got %d rows", n)
	}
}

func TestRecordRow_Order(t *testing.T) {
	r := Row("b", "2", "a", "1", "dangling")
	fields := r.Fields()
	if len(fields) != 2 || fields[0].Key != "b" || fields[1].Key != "a" {
		t.Fatalf("expected insertion order [b a], got %v", fields)
	}
}

func TestSummaryFromMarkdown(t *testing.T) {
	src := `# Summary

Our Q4 2024 performance shows **strong** growth
across all key metrics.

- New product lines
- Higher satisfaction
`
	got := SummaryFromMarkdown([]byte(src))
	want := []string{
		"Our Q4 2024 performance shows strong growth across all key metrics.",
		"New product lines",
		"Higher satisfaction",
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestSummaryFromText(t *testing.T) {
	got, err := SummaryFromText(strings.NewReader("One\ntwo.\n\n\n  \nThree."))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"One two.", "Three."}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %q, got %q", want, got)
	}
}
