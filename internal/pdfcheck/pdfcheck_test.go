package pdfcheck

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"slices"
	"strings"
	"testing"
)

// buildPDF writes a minimal PDF with the given number of pages. info is the
// body of the Info dictionary and xmp an optional metadata packet.
func buildPDF(pages int, info, xmp string) []byte {
	var objs []string
	kids := make([]string, pages)
	for i := range kids {
		kids[i] = fmt.Sprintf("%d 0 R", 4+i)
	}
	catalog := "<< /Type /Catalog /Pages 2 0 R"
	if xmp != "" {
		catalog += fmt.Sprintf(" /Metadata %d 0 R", 4+pages)
	}
	catalog += " >>"
	objs = append(objs,
		catalog,
		fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), pages),
		"<< "+info+" >>",
	)
	for range pages {
		objs = append(objs, "<< /Type /Page /Parent 2 0 R /MediaBox [0 0 595 842] >>")
	}
	if xmp != "" {
		objs = append(objs, fmt.Sprintf("<< /Type /Metadata /Subtype /XML /Length %d >>\nstream\n%s\nendstream", len(xmp), xmp))
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.7\n")
	offsets := make([]int, len(objs))
	for i, o := range objs {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, o)
	}
	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(objs)+1)
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R /Info 3 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objs)+1, xref)
	return buf.Bytes()
}

func TestInspect_PlainPDF(t *testing.T) {
	res := Inspect(buildPDF(3, "/Title (Report)", ""))
	if !res.IsPDF || !res.Valid {
		t.Fatalf("expected valid pdf, got %+v", res)
	}
	if res.NumPages != 3 {
		t.Errorf("expected 3 pages, got %d", res.NumPages)
	}
	if res.PDFA3 {
		t.Error("expected no PDF/A-3 marker")
	}
	if res.MIME != "application/pdf" {
		t.Errorf("expected application/pdf, got %q", res.MIME)
	}
}

func TestInspect_InfoMarker(t *testing.T) {
	res := Inspect(buildPDF(1, "/GTS_PDFA3 (Yes)", ""))
	if !res.PDFA3 {
		t.Fatalf("expected GTS_PDFA3 marker to be detected, got %+v", res)
	}
	res = Inspect(buildPDF(1, "/GTS_PDFA3 (No)", ""))
	if res.PDFA3 {
		t.Error("expected GTS_PDFA3 = No to be ignored")
	}
}

func TestInspect_XMPMarker(t *testing.T) {
	element := `<x:xmpmeta xmlns:x="adobe:ns:meta/"><rdf:RDF><rdf:Description><pdfaid:part>3</pdfaid:part></rdf:Description></rdf:RDF></x:xmpmeta>`
	if res := Inspect(buildPDF(1, "", element)); !res.PDFA3 {
		t.Errorf("expected element form to be detected, got %+v", res)
	}
	attr := `<rdf:Description pdfaid:part="3" pdfaid:conformance="B"/>`
	if res := Inspect(buildPDF(1, "", attr)); !res.PDFA3 {
		t.Errorf("expected attribute form to be detected, got %+v", res)
	}
	partTwo := `<pdfaid:part>2</pdfaid:part>`
	if res := Inspect(buildPDF(1, "", partTwo)); res.PDFA3 {
		t.Error("expected PDF/A-2 not to count")
	}
}

func TestInspect_NotPDF(t *testing.T) {
	res := Inspect([]byte("hello, world"))
	if res.IsPDF || res.Valid {
		t.Fatalf("expected non-pdf, got %+v", res)
	}
	if res.Error == "" {
		t.Error("expected an error description")
	}
}

func TestInspect_BrokenPDF(t *testing.T) {
	res := Inspect([]byte("%PDF-1.4\ngarbage without xref\n"))
	if !res.IsPDF {
		t.Fatal("expected header to sniff as pdf")
	}
	if res.Valid || res.Error == "" {
		t.Errorf("expected invalid structure with error, got %+v", res)
	}
}

func TestGhostscript_Args(t *testing.T) {
	g := &Ghostscript{ICCProfile: "/icc/srgb.icc"}
	args := g.Args("in.pdf", "out.pdf")
	for _, want := range []string{"-dPDFA=3", "-sDEVICE=pdfwrite", "-dBATCH", "-dNOPAUSE", "-sOutputICCProfile=/icc/srgb.icc", "-sOutputFile=out.pdf"} {
		if !slices.Contains(args, want) {
			t.Errorf("expected argument %q in %v", want, args)
		}
	}
	if args[len(args)-1] != "in.pdf" {
		t.Errorf("expected input last, got %q", args[len(args)-1])
	}
}

func TestGhostscript_MissingBinary(t *testing.T) {
	g := &Ghostscript{Path: "/nonexistent/gs"}
	if _, err := g.Convert(context.Background(), buildPDF(1, "", "")); err == nil {
		t.Fatal("expected error for missing binary")
	}
}

func TestGhostscript_Convert(t *testing.T) {
	path, err := exec.LookPath("gs")
	if err != nil {
		t.Skip("ghostscript not installed")
	}
	g := &Ghostscript{Path: path}
	out, err := g.Convert(context.Background(), buildPDF(2, "", ""))
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	res := Inspect(out)
	if !res.Valid || res.NumPages != 2 {
		t.Errorf("expected readable 2-page output, got %+v", res)
	}
}
