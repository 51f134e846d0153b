// Package report turns tabular business data into a styled document tree.
package report

import (
	"time"

	"github.com/dgallion1/pdfdesk/internal/style"
)

// Fragment names the builder looks up in the stylesheet.
const (
	stylePage        = "page"
	styleSection     = "section"
	styleTitle       = "title"
	styleSubtitle    = "subtitle"
	styleText        = "text"
	styleTable       = "table"
	styleRow         = "tableRow"
	styleHeaderRow   = "tableHeader"
	styleCell        = "tableCell"
	styleHeaderCell  = "headerCell"
	styleNumericCell = "numericCell"
	styleSummaryBox  = "summaryBox"
	styleFooter      = "footer"
)

// Report is everything needed to build one document.
type Report struct {
	Title       string
	GeneratedAt time.Time // zero omits the "Generated on" line
	Metrics     TableSpec
	Catalog     TableSpec
	Summary     []string // paragraphs of the summary block
	Footer      string
}

// Build produces Document → Page → [Section(title, metrics, catalog,
// summary), footer]. It never fails: rows lacking a column key get an empty
// cell and empty row sets produce header-only tables. Building twice from the
// same input yields structurally equal trees.
func Build(r Report, sheet *style.Sheet) *Node {
	body := &Node{
		Kind:  KindSection,
		Style: sheet.Resolve([]string{styleSection}),
	}

	if r.Title != "" {
		body.Children = append(body.Children,
			text(r.Title, sheet.Resolve([]string{styleTitle}), RoleTitle))
	}
	if !r.GeneratedAt.IsZero() {
		body.Children = append(body.Children,
			text("Generated on: "+r.GeneratedAt.Format("1/2/2006 3:04:05 PM"), sheet.Resolve([]string{styleText}), RoleNone))
	}

	for _, spec := range []TableSpec{r.Metrics, r.Catalog} {
		if spec.Title != "" {
			body.Children = append(body.Children,
				text(spec.Title, sheet.Resolve([]string{styleSubtitle}), RoleSubtitle))
		}
		body.Children = append(body.Children, BuildTable(spec, sheet))
	}

	if len(r.Summary) > 0 {
		summary := &Node{
			Kind:  KindSection,
			Role:  RoleSummary,
			Style: sheet.Resolve([]string{styleSummaryBox}),
		}
		para := sheet.Resolve([]string{styleText})
		for _, p := range r.Summary {
			summary.Children = append(summary.Children, text(p, para, RoleNone))
		}
		body.Children = append(body.Children, summary)
	}

	page := &Node{
		Kind:     KindPage,
		Style:    sheet.Resolve([]string{stylePage}),
		Children: []*Node{body},
	}
	if r.Footer != "" {
		page.Children = append(page.Children,
			text(r.Footer, sheet.Resolve([]string{styleFooter}), RoleFooter))
	}

	return &Node{
		Kind:     KindDocument,
		Style:    style.Default(),
		Children: []*Node{page},
	}
}

// BuildTable builds one header row plus one row per record. Cell styles are
// the base (or header) cell fragment followed by a synthesized column-width
// fragment, so the column width always wins.
func BuildTable(spec TableSpec, sheet *style.Sheet) *Node {
	table := &Node{
		Kind:  KindTable,
		Style: sheet.Resolve([]string{styleTable}),
	}

	widths := make([]style.Fragment, len(spec.Columns))
	for i, c := range spec.Columns {
		widths[i] = style.NewFragment("col:"+c.Key, map[string]any{style.PropWidth: c.Width})
	}

	header := &Node{
		Kind:  KindRow,
		Role:  RoleHeaderRow,
		Style: sheet.Resolve([]string{styleRow, styleHeaderRow}),
	}
	for i, c := range spec.Columns {
		st := sheet.Resolve([]string{styleCell, styleHeaderCell}, widths[i])
		header.Children = append(header.Children, cell(c.Header, st))
	}
	table.Children = append(table.Children, header)

	rowStyle := sheet.Resolve([]string{styleRow})
	for _, rec := range spec.Rows {
		row := &Node{Kind: KindRow, Style: rowStyle}
		for i, c := range spec.Columns {
			names := []string{styleCell}
			if c.Kind == ColumnNumeric {
				names = append(names, styleNumericCell)
			}
			v, _ := rec.Get(c.Key)
			row.Children = append(row.Children, cell(v, sheet.Resolve(names, widths[i])))
		}
		table.Children = append(table.Children, row)
	}
	return table
}

func cell(value string, st style.Style) *Node {
	return &Node{
		Kind:     KindCell,
		Style:    st,
		Children: []*Node{text(value, st, RoleNone)},
	}
}
