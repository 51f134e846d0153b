package preview

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fumiama/go-docx"

	"github.com/dgallion1/pdfdesk/internal/report"
	"github.com/dgallion1/pdfdesk/internal/style"
)

// WriteDOCX exports the document tree as a Word document. Word paginates on
// its own, so the tree is written before layout.
func WriteDOCX(w io.Writer, doc *report.Node) error {
	d := docx.New().WithDefaultTheme()

	var walk func(n *report.Node)
	walk = func(n *report.Node) {
		switch n.Kind {
		case report.KindText:
			para := d.AddParagraph()
			if j := justification(n.Style.TextAlign); j != "" {
				para.Justification(j)
			}
			styledRun(para, n.Text, n.Style)
		case report.KindTable:
			writeTable(d, n)
		default:
			for _, c := range n.Children {
				walk(c)
			}
		}
	}
	walk(doc)

	if _, err := d.WriteTo(w); err != nil {
		return fmt.Errorf("write docx: %w", err)
	}
	return nil
}

func writeTable(d *docx.Docx, n *report.Node) {
	cols := 0
	for _, row := range n.Children {
		cols = max(cols, len(row.Children))
	}
	if cols == 0 {
		return
	}

	tbl := d.AddTable(len(n.Children), cols, 0, nil)
	for i, row := range n.Children {
		for j, c := range row.Children {
			cell := tbl.TableRows[i].TableCells[j]
			if bg := hex(c.Style.BackgroundColor); bg != "" {
				cell.Shade("clear", "auto", bg)
			}
			para := cell.AddParagraph()
			if jc := justification(c.Style.TextAlign); jc != "" {
				para.Justification(jc)
			}
			styledRun(para, c.PlainText(), c.Style)
		}
	}
}

func styledRun(p *docx.Paragraph, s string, st style.Style) {
	run := p.AddText(s)
	if st.FontSize > 0 {
		// Word sizes are in half points.
		run.Size(strconv.Itoa(int(st.FontSize * 2)))
	}
	if c := hex(st.Color); c != "" && c != "000000" {
		run.Color(c)
	}
	if st.Bold() {
		run.Bold()
	}
}

func justification(align string) string {
	switch align {
	case "center":
		return "center"
	case "right":
		return "end"
	}
	return ""
}

// hex converts "#rgb" or "#rrggbb" to the bare six-digit form Word expects.
func hex(c string) string {
	c = strings.TrimPrefix(c, "#")
	switch len(c) {
	case 3:
		return strings.ToUpper(string([]byte{c[0], c[0], c[1], c[1], c[2], c[2]}))
	case 6:
		return strings.ToUpper(c)
	}
	return ""
}
