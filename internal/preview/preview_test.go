package preview

import (
	"archive/zip"
	"bytes"
	"io"
	"strings"
	"testing"
	"time"

	"golang.org/x/net/html"

	"github.com/dgallion1/pdfdesk/internal/dataset"
	"github.com/dgallion1/pdfdesk/internal/layout"
	"github.com/dgallion1/pdfdesk/internal/report"
	"github.com/dgallion1/pdfdesk/internal/style"
)

func sampleDoc() *report.Node {
	return report.Build(dataset.Sample(time.Date(2024, 12, 31, 9, 0, 0, 0, time.UTC)), style.DefaultSheet())
}

func countClass(n *html.Node, class string) int {
	count := 0
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			for _, a := range n.Attr {
				if a.Key == "class" && strings.Contains(" "+a.Val+" ", " "+class+" ") {
					count++
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return count
}

func TestWriteHTML_OneSheetPerPage(t *testing.T) {
	r := report.Report{Catalog: report.TableSpec{Columns: dataset.CatalogColumns()}}
	for i := 0; i < 100; i++ {
		r.Catalog.Rows = append(r.Catalog.Rows, dataset.SampleCatalog()...)
	}
	pages := layout.NewRenderer(layout.A4()).Render(report.Build(r, style.DefaultSheet()))

	var buf bytes.Buffer
	if err := WriteHTML(&buf, "Catalog", pages); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	doc, err := html.Parse(&buf)
	if err != nil {
		t.Fatalf("output does not parse: %v", err)
	}
	if got := countClass(doc, "page"); got != len(pages) {
		t.Errorf("expected %d page sheets, got %d", len(pages), got)
	}
}

func TestWriteHTML_SampleContent(t *testing.T) {
	pages := layout.NewRenderer(layout.A4()).Render(sampleDoc())

	var buf bytes.Buffer
	if err := WriteHTML(&buf, dataset.Title, pages); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		"<title>Quarterly Sales Report</title>",
		"Performance Overview",
		"Laptop Pro",
		"$1,299.99",
		"Confidential Document - For Internal Use Only",
		`data-role="footer"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected output to contain %q", want)
		}
	}
	if !strings.Contains(out, "text-align:right") {
		t.Error("expected numeric cells to be right-aligned")
	}
}

func TestWriteHTML_EscapesText(t *testing.T) {
	doc := report.Build(report.Report{Title: "<script>alert(1)</script>"}, style.DefaultSheet())
	pages := layout.NewRenderer(layout.A4()).Render(doc)

	var buf bytes.Buffer
	if err := WriteHTML(&buf, "x", pages); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(buf.String(), "<script>") {
		t.Error("expected text content to be escaped")
	}
}

func documentXML(t *testing.T, data []byte) string {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("output is not a zip archive: %v", err)
	}
	for _, f := range zr.File {
		if f.Name != "word/document.xml" {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("open document.xml: %v", err)
		}
		defer rc.Close()
		b, err := io.ReadAll(rc)
		if err != nil {
			t.Fatalf("read document.xml: %v", err)
		}
		return string(b)
	}
	t.Fatal("word/document.xml not found")
	return ""
}

func TestWriteDOCX_SampleContent(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteDOCX(&buf, sampleDoc()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	xml := documentXML(t, buf.Bytes())
	for _, want := range []string{"Quarterly Sales Report", "Customer Satisfaction", "Wireless Dock", "Confidential Document"} {
		if !strings.Contains(xml, want) {
			t.Errorf("expected document.xml to contain %q", want)
		}
	}
	if !strings.Contains(xml, "<w:tbl") {
		t.Error("expected tables in document.xml")
	}
}

func TestHex(t *testing.T) {
	tests := map[string]string{
		"#1976d2": "1976D2",
		"#fff":    "FFFFFF",
		"":        "",
		"blue":    "",
	}
	for in, want := range tests {
		if got := hex(in); got != want {
			t.Errorf("hex(%q): expected %q, got %q", in, want, got)
		}
	}
}
