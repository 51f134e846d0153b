package report

import "github.com/dgallion1/pdfdesk/internal/style"

// Kind tags a Node.
type Kind int

const (
	KindDocument Kind = iota
	KindPage
	KindSection
	KindTable
	KindRow
	KindCell
	KindText
)

func (k Kind) String() string {
	switch k {
	case KindDocument:
		return "document"
	case KindPage:
		return "page"
	case KindSection:
		return "section"
	case KindTable:
		return "table"
	case KindRow:
		return "row"
	case KindCell:
		return "cell"
	case KindText:
		return "text"
	}
	return "unknown"
}

// Role marks nodes the renderer treats specially.
type Role string

const (
	RoleNone      Role = ""
	RoleTitle     Role = "title"
	RoleSubtitle  Role = "subtitle"
	RoleHeaderRow Role = "header_row"
	RoleSummary   Role = "summary"
	RoleFooter    Role = "footer"
)

// Node is one element of the document tree. Parents own their children;
// there are no back references. Trees are built once and never edited.
type Node struct {
	Kind     Kind
	Role     Role
	Text     string      // Text nodes only
	Style    style.Style // resolved by the cascade at build time
	Children []*Node
}

// Walk visits n and its descendants depth first. Returning false from fn
// skips the node's children.
func (n *Node) Walk(fn func(*Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	for _, c := range n.Children {
		c.Walk(fn)
	}
}

// Tables returns every table node in document order.
func (n *Node) Tables() []*Node {
	var out []*Node
	n.Walk(func(c *Node) bool {
		if c.Kind == KindTable {
			out = append(out, c)
			return false
		}
		return true
	})
	return out
}

// PlainText concatenates the text of all descendant Text nodes.
func (n *Node) PlainText() string {
	var buf []byte
	n.Walk(func(c *Node) bool {
		if c.Kind == KindText && c.Text != "" {
			if len(buf) > 0 {
				buf = append(buf, '\n')
			}
			buf = append(buf, c.Text...)
		}
		return true
	})
	return string(buf)
}

func text(s string, st style.Style, role Role) *Node {
	return &Node{Kind: KindText, Role: role, Text: s, Style: st}
}
