package style

import (
	"reflect"
	"strings"
	"testing"
)

func TestResolve_Defaults(t *testing.T) {
	got := Resolve()
	if !reflect.DeepEqual(got, Default()) {
		t.Fatalf("expected default style %+v, got %+v", Default(), got)
	}
}

func TestResolve_LastWriteWins(t *testing.T) {
	a := NewFragment("a", map[string]any{"color": "#111111", "fontSize": 10})
	b := NewFragment("b", map[string]any{"color": "#222222"})

	got := Resolve(a, b)
	if got.Color != "#222222" {
		t.Errorf("expected later color to win, got %q", got.Color)
	}
	if got.FontSize != 10 {
		t.Errorf("expected fontSize 10 from earlier fragment, got %v", got.FontSize)
	}

	got = Resolve(b, a)
	if got.Color != "#111111" {
		t.Errorf("expected order to matter, got %q", got.Color)
	}
}

func TestResolve_LeftAssociativeOverride(t *testing.T) {
	a := NewFragment("a", map[string]any{"width": "20%", "padding": 5, "color": "#000000"})
	b := NewFragment("b", map[string]any{"padding": 7, "fontWeight": "bold"})
	c := NewFragment("c", map[string]any{"width": "30%", "fontWeight": "normal", "textAlign": "right"})

	flat := Resolve(a, b, c)
	nested := Resolve(Merge(a, b), c)
	if !reflect.DeepEqual(flat, nested) {
		t.Fatalf("expected [A,B]+C == [A,B,C]\nflat:   %+v\nnested: %+v", flat, nested)
	}
	if flat.Width != 0.3 || flat.Padding != 7 || flat.Bold() || flat.TextAlign != "right" {
		t.Errorf("unexpected resolved style %+v", flat)
	}
}

func TestResolve_IgnoresUnknownAndInvalid(t *testing.T) {
	f := NewFragment("odd", map[string]any{
		"flexDirection": "row",
		"fontSize":      "huge",
		"color":         "blue",
		"width":         "150%",
	})
	got := Resolve(f)
	if !reflect.DeepEqual(got, Default()) {
		t.Fatalf("expected defaults for unknown/invalid values, got %+v", got)
	}
}

func TestResolve_InvalidLaterValueKeepsEarlier(t *testing.T) {
	a := NewFragment("a", map[string]any{"width": "20%", "color": "#ff0000"})
	b := NewFragment("b", map[string]any{"width": "bogus", "color": "red"})
	got := Resolve(a, b)
	if got.Width != 0.2 {
		t.Errorf("expected width 0.2, got %v", got.Width)
	}
	if got.Color != "#ff0000" {
		t.Errorf("expected color #ff0000, got %q", got.Color)
	}
}

func TestNewFragment_ShorthandExpansion(t *testing.T) {
	f := NewFragment("m", map[string]any{"margin": 10, "marginTop": 3})
	s := Resolve(f)
	if s.MarginTop != 3 {
		t.Errorf("expected longhand to beat shorthand in one fragment, got %v", s.MarginTop)
	}
	if s.MarginBottom != 10 || s.MarginLeft != 10 || s.MarginRight != 10 {
		t.Errorf("expected shorthand to fill other sides, got %+v", s)
	}

	// A later shorthand overrides an earlier longhand.
	later := NewFragment("v", map[string]any{"marginVertical": 8})
	s = Resolve(f, later)
	if s.MarginTop != 8 || s.MarginBottom != 8 {
		t.Errorf("expected marginVertical to override, got top=%v bottom=%v", s.MarginTop, s.MarginBottom)
	}
}

func TestFragment_ImmutableProperties(t *testing.T) {
	src := map[string]any{"color": "#123456"}
	f := NewFragment("x", src)
	src["color"] = "#654321"

	props := f.Properties()
	props["color"] = "#000000"

	if v, _ := f.Get("color"); v != "#123456" {
		t.Fatalf("expected fragment to keep its value, got %q", v)
	}
}

func TestParseFraction(t *testing.T) {
	cases := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"20%", 0.2, true},
		{"0.5", 0.5, true},
		{"auto", 0, true},
		{"1", 1, true},
		{"101%", 0, false},
		{"2", 0, false},
		{"wide", 0, false},
	}
	for _, tc := range cases {
		got, ok := parseFraction(tc.in)
		if ok != tc.ok || (ok && got != tc.want) {
			t.Errorf("parseFraction(%q): expected (%v, %v), got (%v, %v)", tc.in, tc.want, tc.ok, got, ok)
		}
	}
}

func TestLoadSheet_Default(t *testing.T) {
	s := DefaultSheet()
	for _, name := range []string{"page", "title", "tableCell", "headerCell", "footer", "summaryBox"} {
		if _, ok := s.Fragment(name); !ok {
			t.Errorf("expected default sheet to define %q", name)
		}
	}

	header := s.Resolve([]string{"tableCell", "headerCell"})
	if !header.Bold() {
		t.Error("expected header cells to be bold")
	}
	if header.BackgroundColor != "#f5f5f5" {
		t.Errorf("expected header background #f5f5f5, got %q", header.BackgroundColor)
	}
	if header.Padding != 5 {
		t.Errorf("expected cell padding 5, got %v", header.Padding)
	}
}

func TestLoadSheet_ReportsInvalidValues(t *testing.T) {
	src := `
good:
  color: "#ffffff"
bad:
  fontSize: -3
  color: teal
`
	_, err := LoadSheet(strings.NewReader(src))
	if err == nil {
		t.Fatal("expected error for invalid values")
	}
	msg := err.Error()
	if !strings.Contains(msg, "fontSize") || !strings.Contains(msg, "color") {
		t.Errorf("expected both invalid properties reported, got %q", msg)
	}
}

func TestSheet_LookupSkipsUnknown(t *testing.T) {
	s := NewSheet(NewFragment("a", map[string]any{"color": "#aaaaaa"}))
	got := s.Lookup("missing", "a")
	if len(got) != 1 || got[0].Name() != "a" {
		t.Fatalf("expected only fragment a, got %v", got)
	}
}
