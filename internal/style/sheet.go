package style

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"

	"go.uber.org/multierr"
	yaml "gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultSheet []byte

// Sheet is a registry of fragments identified by name.
type Sheet struct {
	fragments map[string]Fragment
}

// NewSheet builds a sheet from already declared fragments. A later fragment
// with the same name replaces an earlier one.
func NewSheet(fragments ...Fragment) *Sheet {
	s := &Sheet{fragments: make(map[string]Fragment, len(fragments))}
	for _, f := range fragments {
		s.fragments[f.name] = f
	}
	return s
}

// DefaultSheet returns the stylesheet compiled into the binary.
func DefaultSheet() *Sheet {
	s, err := LoadSheet(bytes.NewReader(defaultSheet))
	if err != nil {
		panic(fmt.Sprintf("embedded stylesheet: %v", err))
	}
	return s
}

// LoadSheet decodes a YAML mapping of fragment name to properties and checks
// every known property value.
func LoadSheet(r io.Reader) (*Sheet, error) {
	var raw map[string]map[string]any
	dec := yaml.NewDecoder(r)
	if err := dec.Decode(&raw); err != nil && err != io.EOF {
		return nil, fmt.Errorf("decode stylesheet: %w", err)
	}

	var errs error
	s := &Sheet{fragments: make(map[string]Fragment, len(raw))}
	for name, props := range raw {
		if name == "" {
			errs = multierr.Append(errs, fmt.Errorf("fragment with empty name"))
			continue
		}
		f := NewFragment(name, props)
		errs = multierr.Append(errs, f.Check())
		s.fragments[name] = f
	}
	if errs != nil {
		return nil, errs
	}
	return s, nil
}

// LoadSheetFile reads a stylesheet from disk and layers it over the default
// sheet: fragments it names replace the defaults of the same name.
func LoadSheetFile(path string) (*Sheet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open stylesheet: %w", err)
	}
	defer f.Close()

	override, err := LoadSheet(f)
	if err != nil {
		return nil, err
	}
	base := DefaultSheet()
	for name, frag := range override.fragments {
		base.fragments[name] = frag
	}
	return base, nil
}

// Fragment looks up a fragment by name.
func (s *Sheet) Fragment(name string) (Fragment, bool) {
	f, ok := s.fragments[name]
	return f, ok
}

// Lookup returns the named fragments in the order given, skipping names the
// sheet does not define.
func (s *Sheet) Lookup(names ...string) []Fragment {
	out := make([]Fragment, 0, len(names))
	for _, n := range names {
		if f, ok := s.fragments[n]; ok {
			out = append(out, f)
		}
	}
	return out
}

// Resolve looks up the named fragments and cascades them, followed by any
// extra fragments (typically synthesized per node, like column widths).
func (s *Sheet) Resolve(names []string, extra ...Fragment) Style {
	return Resolve(append(s.Lookup(names...), extra...)...)
}
