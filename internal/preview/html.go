// Package preview writes rendered reports in formats a person can open:
// paginated HTML and DOCX.
package preview

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/dgallion1/pdfdesk/internal/layout"
	"github.com/dgallion1/pdfdesk/internal/style"
)

// WriteHTML renders pages as absolutely positioned blocks, one fixed-size
// sheet per page, stacked vertically.
func WriteHTML(w io.Writer, title string, pages []layout.Page) error {
	doc := &html.Node{Type: html.DocumentNode}
	doc.AppendChild(&html.Node{Type: html.DoctypeNode, Data: "html"})

	root := elem(atom.Html, "lang", "en")
	doc.AppendChild(root)

	head := elem(atom.Head)
	head.AppendChild(elem(atom.Meta, "charset", "utf-8"))
	t := elem(atom.Title)
	t.AppendChild(textNode(title))
	head.AppendChild(t)
	css := elem(atom.Style)
	css.AppendChild(textNode(sheetCSS))
	head.AppendChild(css)
	root.AppendChild(head)

	body := elem(atom.Body)
	root.AppendChild(body)
	for _, pg := range pages {
		body.AppendChild(pageNode(pg))
	}

	if err := html.Render(w, doc); err != nil {
		return fmt.Errorf("render html: %w", err)
	}
	return nil
}

const sheetCSS = `body{background:#e0e0e0;margin:0;padding:16px}` +
	`.page{position:relative;margin:0 auto 16px;box-shadow:0 1px 4px rgba(0,0,0,.3);overflow:hidden}` +
	`.box{position:absolute;box-sizing:border-box;white-space:pre}`

func pageNode(pg layout.Page) *html.Node {
	w, h := pg.Size()
	ps := pg.Style()
	div := elem(atom.Div,
		"class", "page",
		"data-page", strconv.Itoa(pg.Number()),
		"style", fmt.Sprintf("width:%spt;height:%spt;background:%s", pt(w), pt(h), orDefault(ps.BackgroundColor, "#ffffff")),
	)
	for _, b := range pg.Boxes() {
		div.AppendChild(boxNode(b, b.Rect))
	}
	if f, ok := pg.Footer(); ok {
		div.AppendChild(boxNode(f, f.Rect))
	}
	return div
}

// boxNode positions b relative to the page. Row cells are emitted as
// siblings of their row so every box shares the page's coordinate space.
func boxNode(b layout.Box, r layout.Rect) *html.Node {
	div := elem(atom.Div,
		"class", "box "+b.Kind.String(),
		"style", boxCSS(b.Style, r),
	)
	if b.Role != "" {
		div.Attr = append(div.Attr, html.Attribute{Key: "data-role", Val: string(b.Role)})
	}
	appendLines(div, b.Lines)
	for _, c := range b.Children {
		cell := elem(atom.Div,
			"class", "box "+c.Kind.String(),
			"style", boxCSS(c.Style, layout.Rect{X: c.Rect.X - r.X, Y: c.Rect.Y - r.Y, W: c.Rect.W, H: c.Rect.H}),
		)
		appendLines(cell, c.Lines)
		div.AppendChild(cell)
	}
	return div
}

func appendLines(n *html.Node, lines []string) {
	for i, l := range lines {
		if i > 0 {
			n.AppendChild(elem(atom.Br))
		}
		n.AppendChild(textNode(l))
	}
}

func boxCSS(st style.Style, r layout.Rect) string {
	var b strings.Builder
	fmt.Fprintf(&b, "left:%spt;top:%spt;width:%spt;height:%spt;", pt(r.X), pt(r.Y), pt(r.W), pt(r.H))
	fmt.Fprintf(&b, "font-size:%spt;line-height:%s;", pt(st.FontSize), pt(st.LineHeight))
	if st.FontFamily != "" {
		fmt.Fprintf(&b, "font-family:%q;", st.FontFamily)
	}
	if st.Bold() {
		b.WriteString("font-weight:bold;")
	}
	if st.Color != "" {
		b.WriteString("color:" + st.Color + ";")
	}
	if st.BackgroundColor != "" {
		b.WriteString("background:" + st.BackgroundColor + ";")
	}
	if st.BorderWidth > 0 {
		fmt.Fprintf(&b, "border:%spt solid %s;", pt(st.BorderWidth), orDefault(st.BorderColor, "#000000"))
	}
	if st.BorderRadius > 0 {
		fmt.Fprintf(&b, "border-radius:%spt;", pt(st.BorderRadius))
	}
	if st.Padding > 0 {
		fmt.Fprintf(&b, "padding:%spt;", pt(st.Padding))
	}
	if st.TextAlign != "" && st.TextAlign != "left" {
		b.WriteString("text-align:" + st.TextAlign + ";")
	}
	return b.String()
}

func pt(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func elem(a atom.Atom, attrs ...string) *html.Node {
	n := &html.Node{Type: html.ElementNode, DataAtom: a, Data: a.String()}
	for i := 0; i+1 < len(attrs); i += 2 {
		n.Attr = append(n.Attr, html.Attribute{Key: attrs[i], Val: attrs[i+1]})
	}
	return n
}

func textNode(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}
