// Package style resolves ordered lists of named style fragments into one
// effective style per visual node.
package style

import (
	"fmt"
	"maps"
	"strconv"
	"strings"

	"go.uber.org/multierr"
)

// Property names understood by Resolve. Anything else is carried through
// Merge untouched and ignored by Resolve.
const (
	PropWidth           = "width"
	PropFontSize        = "fontSize"
	PropFontWeight      = "fontWeight"
	PropFontFamily      = "fontFamily"
	PropColor           = "color"
	PropBackgroundColor = "backgroundColor"
	PropBorderWidth     = "borderWidth"
	PropBorderColor     = "borderColor"
	PropBorderRadius    = "borderRadius"
	PropPadding         = "padding"
	PropMarginTop       = "marginTop"
	PropMarginBottom    = "marginBottom"
	PropMarginLeft      = "marginLeft"
	PropMarginRight     = "marginRight"
	PropLineHeight      = "lineHeight"
	PropTextAlign       = "textAlign"
)

// shorthands expand into their longhand properties when a fragment is
// declared, so that merging stays a plain per-key override.
var shorthands = map[string][]string{
	"margin":           {PropMarginTop, PropMarginBottom, PropMarginLeft, PropMarginRight},
	"marginVertical":   {PropMarginTop, PropMarginBottom},
	"marginHorizontal": {PropMarginLeft, PropMarginRight},
}

// Style is the effective style of a node after the cascade.
//
// Defaults for properties no fragment sets:
//
//	Width 0 (fill the parent), FontSize 12, FontWeight "normal",
//	FontFamily "Helvetica", Color "#000000", LineHeight 1.2,
//	TextAlign "left", everything else zero or empty.
type Style struct {
	Width           float64 // fraction of the parent's width, 0 = fill
	FontSize        float64 // points
	FontWeight      string  // normal|bold
	FontFamily      string
	Color           string // "#rrggbb"
	BackgroundColor string
	BorderWidth     float64
	BorderColor     string
	BorderRadius    float64
	Padding         float64
	MarginTop       float64
	MarginBottom    float64
	MarginLeft      float64
	MarginRight     float64
	LineHeight      float64 // multiple of FontSize
	TextAlign       string  // left|center|right
}

// Default returns the style used when no fragment sets a property.
func Default() Style {
	return Style{
		FontSize:   12,
		FontWeight: "normal",
		FontFamily: "Helvetica",
		Color:      "#000000",
		LineHeight: 1.2,
		TextAlign:  "left",
	}
}

// Bold reports whether the style asks for a bold face.
func (s Style) Bold() bool { return s.FontWeight == "bold" }

// LineAdvance is the vertical extent of one line of text in points.
func (s Style) LineAdvance() float64 { return s.FontSize * s.LineHeight }

// Fragment is a named, immutable set of visual properties.
type Fragment struct {
	name  string
	props map[string]string
}

// NewFragment declares a fragment. Values are stringified; shorthand margin
// properties are expanded into longhands in declaration order.
func NewFragment(name string, props map[string]any) Fragment {
	f := Fragment{name: name, props: make(map[string]string, len(props))}
	// Shorthands first so a longhand declared alongside wins.
	for k, v := range props {
		if longs, ok := shorthands[k]; ok {
			for _, l := range longs {
				f.props[l] = stringify(v)
			}
		}
	}
	for k, v := range props {
		if _, ok := shorthands[k]; ok {
			continue
		}
		f.props[k] = stringify(v)
	}
	return f
}

// Name returns the fragment's identifier.
func (f Fragment) Name() string { return f.name }

// Get returns the raw value of a property.
func (f Fragment) Get(prop string) (string, bool) {
	v, ok := f.props[prop]
	return v, ok
}

// Len is the number of declared properties.
func (f Fragment) Len() int { return len(f.props) }

// Properties returns a copy of the fragment's properties.
func (f Fragment) Properties() map[string]string {
	return maps.Clone(f.props)
}

// Check reports properties whose values Resolve would not understand.
// Unknown property names are not an error.
func (f Fragment) Check() error {
	var errs error
	for k, v := range f.props {
		if err := checkProp(k, v); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("fragment %q: %s: %w", f.name, k, err))
		}
	}
	return errs
}

// Merge folds fragments left to right; later values override earlier ones.
// The result is named after its inputs joined with "+".
func Merge(fragments ...Fragment) Fragment {
	names := make([]string, 0, len(fragments))
	out := Fragment{props: make(map[string]string)}
	for _, f := range fragments {
		if f.name != "" {
			names = append(names, f.name)
		}
		maps.Copy(out.props, f.props)
	}
	out.name = strings.Join(names, "+")
	return out
}

// Resolve computes the effective style of fragments applied in order.
// It never fails: unknown properties are ignored, and an unparseable value
// leaves whatever an earlier fragment set in place.
func Resolve(fragments ...Fragment) Style {
	s := Default()
	for _, f := range fragments {
		for k, v := range f.props {
			apply(&s, k, v)
		}
	}
	return s
}

func apply(s *Style, prop, v string) {
	switch prop {
	case PropWidth:
		if w, ok := parseFraction(v); ok {
			s.Width = w
		}
	case PropFontSize:
		setPositive(&s.FontSize, v)
	case PropFontWeight:
		if w, ok := parseWeight(v); ok {
			s.FontWeight = w
		}
	case PropFontFamily:
		if v != "" {
			s.FontFamily = v
		}
	case PropColor:
		if isColor(v) {
			s.Color = v
		}
	case PropBackgroundColor:
		if isColor(v) {
			s.BackgroundColor = v
		}
	case PropBorderColor:
		if isColor(v) {
			s.BorderColor = v
		}
	case PropBorderWidth:
		setNonNegative(&s.BorderWidth, v)
	case PropBorderRadius:
		setNonNegative(&s.BorderRadius, v)
	case PropPadding:
		setNonNegative(&s.Padding, v)
	case PropMarginTop:
		setNonNegative(&s.MarginTop, v)
	case PropMarginBottom:
		setNonNegative(&s.MarginBottom, v)
	case PropMarginLeft:
		setNonNegative(&s.MarginLeft, v)
	case PropMarginRight:
		setNonNegative(&s.MarginRight, v)
	case PropLineHeight:
		setPositive(&s.LineHeight, v)
	case PropTextAlign:
		switch v {
		case "left", "center", "right":
			s.TextAlign = v
		}
	}
}

func checkProp(prop, v string) error {
	var ok bool
	switch prop {
	case PropWidth:
		_, ok = parseFraction(v)
	case PropFontSize, PropLineHeight:
		var f float64
		f, ok = parseNumber(v)
		ok = ok && f > 0
	case PropBorderWidth, PropBorderRadius, PropPadding,
		PropMarginTop, PropMarginBottom, PropMarginLeft, PropMarginRight:
		var f float64
		f, ok = parseNumber(v)
		ok = ok && f >= 0
	case PropFontWeight:
		_, ok = parseWeight(v)
	case PropColor, PropBackgroundColor, PropBorderColor:
		ok = isColor(v)
	case PropTextAlign:
		ok = v == "left" || v == "center" || v == "right"
	default:
		return nil
	}
	if !ok {
		return fmt.Errorf("invalid value %q", v)
	}
	return nil
}

func setPositive(dst *float64, v string) {
	if f, ok := parseNumber(v); ok && f > 0 {
		*dst = f
	}
}

func setNonNegative(dst *float64, v string) {
	if f, ok := parseNumber(v); ok && f >= 0 {
		*dst = f
	}
}

func parseNumber(v string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSuffix(strings.TrimSpace(v), "pt"), 64)
	return f, err == nil
}

// parseFraction accepts "20%", "0.2" and "auto".
func parseFraction(v string) (float64, bool) {
	v = strings.TrimSpace(v)
	if v == "auto" {
		return 0, true
	}
	if p, ok := strings.CutSuffix(v, "%"); ok {
		f, err := strconv.ParseFloat(p, 64)
		if err != nil || f < 0 || f > 100 {
			return 0, false
		}
		return f / 100, true
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f < 0 || f > 1 {
		return 0, false
	}
	return f, true
}

func parseWeight(v string) (string, bool) {
	switch v {
	case "bold", "bolder":
		return "bold", true
	case "normal", "lighter":
		return "normal", true
	}
	if n, err := strconv.Atoi(v); err == nil && n >= 100 && n <= 900 {
		if n >= 600 {
			return "bold", true
		}
		return "normal", true
	}
	return "", false
}

func isColor(v string) bool {
	if !strings.HasPrefix(v, "#") || (len(v) != 4 && len(v) != 7) {
		return false
	}
	_, err := strconv.ParseUint(v[1:], 16, 32)
	return err == nil
}

func stringify(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case bool:
		return strconv.FormatBool(t)
	case nil:
		return ""
	default:
		return fmt.Sprint(t)
	}
}
