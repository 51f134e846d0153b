package report

import "math"

// Field is one key/value pair of a RecordRow.
type Field struct {
	Key   string
	Value string
}

// RecordRow is an ordered mapping of column key to display string.
type RecordRow struct {
	fields []Field
}

// Row builds a RecordRow from alternating key, value arguments. A trailing
// key without a value is dropped.
func Row(kv ...string) RecordRow {
	r := RecordRow{fields: make([]Field, 0, len(kv)/2)}
	for i := 0; i+1 < len(kv); i += 2 {
		r.fields = append(r.fields, Field{Key: kv[i], Value: kv[i+1]})
	}
	return r
}

// RowFromFields builds a RecordRow preserving field order.
func RowFromFields(fields []Field) RecordRow {
	return RecordRow{fields: append([]Field(nil), fields...)}
}

// Get returns the value stored under key.
func (r RecordRow) Get(key string) (string, bool) {
	for _, f := range r.fields {
		if f.Key == key {
			return f.Value, true
		}
	}
	return "", false
}

// Fields returns a copy of the row's fields in order.
func (r RecordRow) Fields() []Field {
	return append([]Field(nil), r.fields...)
}

// Len is the number of fields.
func (r RecordRow) Len() int { return len(r.fields) }

// ColumnKind selects text or numeric presentation.
type ColumnKind int

const (
	ColumnText ColumnKind = iota
	ColumnNumeric
)

// Column defines one table column.
type Column struct {
	Key    string
	Header string
	Width  float64 // fraction of the table's width
	Kind   ColumnKind
}

// TableSpec is a set of column definitions plus the rows rendered under them.
type TableSpec struct {
	Title   string // rendered as a subtitle before the table when set
	Columns []Column
	Rows    []RecordRow
}

// WidthBudgetOK reports whether the column fractions sum to the table's full
// width. A mismatch is a layout defect only; the table still renders.
func (t TableSpec) WidthBudgetOK() bool {
	var sum float64
	for _, c := range t.Columns {
		sum += c.Width
	}
	return math.Abs(sum-1) < 1e-6
}

// MissingKeys lists, per row index, the declared column keys the row lacks.
// Build renders those as empty cells.
func (t TableSpec) MissingKeys() map[int][]string {
	out := make(map[int][]string)
	for i, r := range t.Rows {
		for _, c := range t.Columns {
			if _, ok := r.Get(c.Key); !ok {
				out[i] = append(out[i], c.Key)
			}
		}
	}
	return out
}
