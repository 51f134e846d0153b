// Package layout paginates a document tree into fixed-size pages.
package layout

import (
	"math"
	"slices"
	"strings"

	"github.com/muesli/reflow/wordwrap"
	"github.com/muesli/reflow/wrap"

	"github.com/dgallion1/pdfdesk/internal/report"
	"github.com/dgallion1/pdfdesk/internal/style"
)

// Config controls page geometry and text measurement.
type Config struct {
	Width        float64 // page width in points
	Height       float64 // page height in points
	FooterOffset float64 // distance from the bottom edge to the footer's lower edge
	FooterGap    float64 // space kept free between content and the footer
	GlyphWidth   float64 // average glyph advance as a fraction of the font size
}

// A4 returns the portrait A4 geometry used by the report.
func A4() Config {
	return Config{
		Width:        595.28,
		Height:       841.89,
		FooterOffset: 30,
		FooterGap:    10,
		GlyphWidth:   0.5,
	}
}

// Renderer turns document trees into pages. It holds no mutable state and is
// safe for concurrent use.
type Renderer struct {
	cfg Config
}

// NewRenderer creates a renderer. Zero fields fall back to A4 values.
func NewRenderer(cfg Config) *Renderer {
	def := A4()
	if cfg.Width <= 0 {
		cfg.Width = def.Width
	}
	if cfg.Height <= 0 {
		cfg.Height = def.Height
	}
	if cfg.FooterOffset <= 0 {
		cfg.FooterOffset = def.FooterOffset
	}
	if cfg.FooterGap < 0 {
		cfg.FooterGap = 0
	}
	if cfg.GlyphWidth <= 0 {
		cfg.GlyphWidth = def.GlyphWidth
	}
	return &Renderer{cfg: cfg}
}

// Config returns the effective configuration.
func (r *Renderer) Config() Config { return r.cfg }

// Render lays out every Page node of doc. Content accumulates on the current
// page until the next block would cross the page budget, then a new page is
// opened. Table rows are never split but a table may break between rows; the
// header row is not repeated. The footer is pinned to every emitted page.
// The result always holds at least one page.
func (r *Renderer) Render(doc *report.Node) []Page {
	p := &paginator{cfg: r.cfg}
	if doc != nil {
		doc.Walk(func(n *report.Node) bool {
			if n.Kind == report.KindPage {
				p.renderPage(n)
				return false
			}
			return true
		})
	}
	if len(p.pages) == 0 {
		p.pages = append(p.pages, Page{
			number: 1,
			width:  r.cfg.Width,
			height: r.cfg.Height,
			style:  style.Default(),
		})
	}
	return p.pages
}

type frame struct {
	node   *report.Node
	x, w   float64
	startY float64
	index  int // position in cur.boxes where the container box is inserted
}

type paginator struct {
	cfg   Config
	pages []Page

	cur    *Page
	top    float64
	bottom float64
	y      float64
	placed bool

	pageStyle style.Style
	footer    *Box
	frames    []frame
}

func (p *paginator) renderPage(n *report.Node) {
	p.pageStyle = n.Style
	pad := n.Style.Padding
	x, w := pad, p.cfg.Width-2*pad

	p.footer = nil
	p.bottom = p.cfg.Height - pad
	var content []*report.Node
	for _, c := range n.Children {
		if c.Role == report.RoleFooter && c.Kind == report.KindText {
			p.footer = p.footerBox(c, x, w)
			p.bottom = p.footer.Rect.Y - p.cfg.FooterGap
			continue
		}
		content = append(content, c)
	}
	p.top = pad

	p.startPage()
	for _, c := range content {
		p.flow(c, x, w)
	}
	p.finishPage()
}

func (p *paginator) footerBox(n *report.Node, x, w float64) *Box {
	st := n.Style
	lines := p.wrap(n.Text, w, st)
	h := float64(len(lines)) * st.LineAdvance()
	return &Box{
		Kind:  n.Kind,
		Role:  n.Role,
		Rect:  Rect{X: x, Y: p.cfg.Height - p.cfg.FooterOffset - h, W: w, H: h},
		Style: st,
		Lines: lines,
	}
}

func (p *paginator) startPage() {
	p.cur = &Page{
		number: len(p.pages) + 1,
		width:  p.cfg.Width,
		height: p.cfg.Height,
		style:  p.pageStyle,
		footer: p.footer,
	}
	p.y = p.top
	p.placed = false
}

func (p *paginator) finishPage() {
	p.pages = append(p.pages, *p.cur)
	p.cur = nil
}

// breakPage closes the open containers on the current page and continues
// them at the top of a fresh one.
func (p *paginator) breakPage() {
	for i := len(p.frames) - 1; i >= 0; i-- {
		p.closeFrame(p.frames[i], p.y)
	}
	p.finishPage()
	p.startPage()
	for i := range p.frames {
		p.frames[i].startY = p.y
		p.frames[i].index = 0
	}
}

func (p *paginator) closeFrame(f frame, endY float64) {
	h := endY - f.startY
	if h <= 0 {
		return
	}
	box := Box{
		Kind:  f.node.Kind,
		Role:  f.node.Role,
		Rect:  Rect{X: f.x, Y: f.startY, W: f.w, H: h},
		Style: f.node.Style,
	}
	p.cur.boxes = slices.Insert(p.cur.boxes, f.index, box)
}

func (p *paginator) flow(n *report.Node, x, w float64) {
	switch n.Kind {
	case report.KindRow:
		p.row(n, x, w)
	case report.KindText:
		p.text(n.Text, n, x, w)
	case report.KindCell:
		p.text(n.PlainText(), n, x, w)
	default:
		p.container(n, x, w)
	}
}

func (p *paginator) container(n *report.Node, x, w float64) {
	st := n.Style
	p.y += st.MarginTop
	ox, ow := x+st.MarginLeft, w-st.MarginLeft-st.MarginRight

	p.frames = append(p.frames, frame{node: n, x: ox, w: ow, startY: p.y, index: len(p.cur.boxes)})
	p.y += st.Padding
	for _, c := range n.Children {
		p.flow(c, ox+st.Padding, ow-2*st.Padding)
	}
	p.y += st.Padding

	f := p.frames[len(p.frames)-1]
	p.frames = p.frames[:len(p.frames)-1]
	p.closeFrame(f, p.y)
	p.y += st.MarginBottom
}

// text places wrapped lines, carrying the remainder to following pages.
func (p *paginator) text(s string, n *report.Node, x, w float64) {
	st := n.Style
	lines := p.wrap(s, w, st)
	adv := st.LineAdvance()

	p.y += st.MarginTop
	for len(lines) > 0 {
		fit := int(math.Floor((p.bottom - p.y) / adv))
		if fit < 1 {
			if p.placed {
				p.breakPage()
				continue
			}
			// An empty page always takes at least one line.
			fit = 1
		}
		fit = min(fit, len(lines))
		h := float64(fit) * adv
		p.cur.boxes = append(p.cur.boxes, Box{
			Kind:  n.Kind,
			Role:  n.Role,
			Rect:  Rect{X: x, Y: p.y, W: w, H: h},
			Style: st,
			Lines: lines[:fit],
		})
		p.y += h
		p.placed = true
		lines = lines[fit:]
		if len(lines) > 0 {
			p.breakPage()
		}
	}
	p.y += st.MarginBottom
}

// row places a table row as one unit. Rows without cells take no space and
// emit no box.
func (p *paginator) row(n *report.Node, x, w float64) {
	if len(n.Children) == 0 {
		return
	}
	widths := columnWidths(n.Children, w)
	cells := make([]Box, len(n.Children))
	var h float64
	cx := x
	for i, c := range n.Children {
		st := c.Style
		lines := p.wrap(c.PlainText(), widths[i]-2*st.Padding, st)
		ch := float64(len(lines))*st.LineAdvance() + 2*st.Padding
		h = max(h, ch)
		cells[i] = Box{
			Kind:  c.Kind,
			Role:  c.Role,
			Rect:  Rect{X: cx, W: widths[i]},
			Style: st,
			Lines: lines,
		}
		cx += widths[i]
	}

	if p.placed && p.y+h > p.bottom {
		p.breakPage()
	}
	for i := range cells {
		cells[i].Rect.Y = p.y
		cells[i].Rect.H = h
	}
	p.cur.boxes = append(p.cur.boxes, Box{
		Kind:     n.Kind,
		Role:     n.Role,
		Rect:     Rect{X: x, Y: p.y, W: w, H: h},
		Style:    n.Style,
		Children: cells,
	})
	p.y += h
	p.placed = true
}

// columnWidths converts width fractions to points. Cells without a width
// share what the others leave. Fractions summing past 1 overflow the row.
func columnWidths(cells []*report.Node, w float64) []float64 {
	out := make([]float64, len(cells))
	var fixed float64
	auto := 0
	for _, c := range cells {
		if c.Style.Width > 0 {
			fixed += c.Style.Width
		} else {
			auto++
		}
	}
	share := 0.0
	if auto > 0 {
		share = max(0, 1-fixed) / float64(auto)
	}
	for i, c := range cells {
		f := c.Style.Width
		if f <= 0 {
			f = share
		}
		out[i] = f * w
	}
	return out
}

func (p *paginator) wrap(s string, w float64, st style.Style) []string {
	return wrapLines(s, charsPerLine(w, st.FontSize, p.cfg.GlyphWidth))
}

func charsPerLine(w, fontSize, glyph float64) int {
	n := int(w / (fontSize * glyph))
	return max(n, 1)
}

// wrapLines breaks s on word boundaries, hard-wrapping words longer than the
// limit. Empty text still occupies one line.
func wrapLines(s string, limit int) []string {
	if strings.TrimSpace(s) == "" {
		return []string{""}
	}
	wrapped := wrap.String(wordwrap.String(s, limit), limit)
	lines := strings.Split(wrapped, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimRight(l, " ")
	}
	return lines
}
