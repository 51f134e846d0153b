// Package pdfcheck inspects uploaded documents and converts PDFs to PDF/A-3.
package pdfcheck

import (
	"bytes"
	"fmt"
	"io"
	"regexp"

	"github.com/h2non/filetype"
	pdflib "github.com/ledongthuc/pdf"
)

// Result describes an uploaded document.
type Result struct {
	MIME     string // sniffed content type, empty when unknown
	IsPDF    bool
	Valid    bool // the PDF structure could be read
	NumPages int
	Error    string // why the structure could not be read
	PDFA3    bool   // carries a PDF/A-3 conformance marker
}

const maxXMP = 1 << 20

var xmpPart3 = regexp.MustCompile(`pdfaid:part\s*(?:=\s*["']\s*3\s*["']|>\s*3\s*<)`)

// Inspect sniffs data and, for PDFs, reads the page count and conformance
// markers. It never fails; problems are reported in the result.
func Inspect(data []byte) Result {
	var res Result
	if kind, err := filetype.Match(data); err == nil && kind != filetype.Unknown {
		res.MIME = kind.MIME.Value
		res.IsPDF = kind.Extension == "pdf"
	}
	if !res.IsPDF {
		res.Error = "not a PDF document"
		return res
	}

	if err := readStructure(data, &res); err != nil {
		res.Valid = false
		res.NumPages = 0
		res.PDFA3 = false
		res.Error = err.Error()
	}
	return res
}

// readStructure recovers from parser panics, which malformed input can trigger.
func readStructure(data []byte, res *Result) (err error) {
	defer func() {
		if v := recover(); v != nil {
			err = fmt.Errorf("read pdf: %v", v)
		}
	}()

	r, err := pdflib.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return fmt.Errorf("read pdf: %w", err)
	}
	res.NumPages = r.NumPage()
	res.Valid = true
	res.PDFA3 = infoMarksPDFA3(r.Trailer().Key("Info")) || xmpMarksPDFA3(r.Trailer().Key("Root").Key("Metadata"))
	return nil
}

// infoMarksPDFA3 checks the document information dictionary for
// GTS_PDFA3 = Yes.
func infoMarksPDFA3(info pdflib.Value) bool {
	v := info.Key("GTS_PDFA3")
	switch v.Kind() {
	case pdflib.String:
		return v.Text() == "Yes"
	case pdflib.Name:
		return v.Name() == "Yes"
	}
	return false
}

// xmpMarksPDFA3 checks the catalog's XMP packet for pdfaid:part 3, written
// either as an element or as an attribute.
func xmpMarksPDFA3(md pdflib.Value) bool {
	if md.Kind() != pdflib.Stream {
		return false
	}
	rc := md.Reader()
	defer rc.Close()
	packet, err := io.ReadAll(io.LimitReader(rc, maxXMP))
	if err != nil {
		return false
	}
	return xmpPart3.Match(packet)
}
