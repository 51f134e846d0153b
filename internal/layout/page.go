package layout

import (
	"github.com/dgallion1/pdfdesk/internal/report"
	"github.com/dgallion1/pdfdesk/internal/style"
)

// Rect is a rectangle in points, origin at the page's top-left corner.
type Rect struct {
	X, Y, W, H float64
}

// Bottom is the rectangle's lower edge.
func (r Rect) Bottom() float64 { return r.Y + r.H }

// Box is one laid-out element on a page.
type Box struct {
	Kind     report.Kind
	Role     report.Role
	Rect     Rect
	Style    style.Style
	Lines    []string // wrapped text for text boxes and cells
	Children []Box    // cells of a row
}

// Page is a fixed-size rendering surface. Pages are produced by Render only.
type Page struct {
	number int
	width  float64
	height float64
	style  style.Style
	boxes  []Box
	footer *Box
}

// Number is the 1-based page number.
func (p Page) Number() int { return p.number }

// Size returns the page's width and height in points.
func (p Page) Size() (float64, float64) { return p.width, p.height }

// Style is the resolved style of the page surface.
func (p Page) Style() style.Style { return p.style }

// Boxes returns the page's content in paint order: containers precede the
// boxes they enclose. The footer is not included.
func (p Page) Boxes() []Box {
	return append([]Box(nil), p.boxes...)
}

// Footer returns the pinned footer box, if the document has one.
func (p Page) Footer() (Box, bool) {
	if p.footer == nil {
		return Box{}, false
	}
	return *p.footer, true
}

// Rows returns the table rows placed on the page in order.
func (p Page) Rows() []Box {
	var out []Box
	for _, b := range p.boxes {
		if b.Kind == report.KindRow {
			out = append(out, b)
		}
	}
	return out
}
