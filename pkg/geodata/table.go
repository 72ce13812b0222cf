package geodata

import (
	"fmt"
	"slices"

	"github.com/rotisserie/eris"
)

// Row holds one record's named attribute values. Values are nil for nulls.
type Row map[string]any

// Table is an ordered set of named columns with positional rows. It serves
// both as the attribute table paired with a Collection and as a standalone
// keyed table loaded from delimited text or spreadsheets.
//
// Tables are treated as immutable snapshots: every transform returns a new
// Table and shares no row storage with its input.
type Table struct {
	columns []string
	rows    []Row
}

// NewTable builds a table from column names and rows. Row values outside the
// declared columns are rejected so that column order stays authoritative.
func NewTable(columns []string, rows []Row) (*Table, error) {
	colSet := make(map[string]bool, len(columns))
	for _, c := range columns {
		if colSet[c] {
			return nil, eris.Errorf("geodata: duplicate column %q", c)
		}
		colSet[c] = true
	}
	for i, r := range rows {
		for k := range r {
			if !colSet[k] {
				return nil, eris.Errorf("geodata: row %d has undeclared column %q", i, k)
			}
		}
	}
	return &Table{columns: slices.Clone(columns), rows: cloneRows(rows)}, nil
}

// Len returns the row count.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.rows)
}

// Columns returns the column names in declaration order.
func (t *Table) Columns() []string {
	if t == nil {
		return nil
	}
	return slices.Clone(t.columns)
}

// HasColumn reports whether the named column exists.
func (t *Table) HasColumn(name string) bool {
	return t != nil && slices.Contains(t.columns, name)
}

// Value returns the value at row i, column name. Nil for nulls.
func (t *Table) Value(i int, name string) any {
	return t.rows[i][name]
}

// Row returns a copy of row i.
func (t *Table) Row(i int) Row {
	out := make(Row, len(t.rows[i]))
	for k, v := range t.rows[i] {
		out[k] = v
	}
	return out
}

// Float returns the value at row i, column name coerced to float64. The
// second return is false for nulls and non-numeric values.
func (t *Table) Float(i int, name string) (float64, bool) {
	return toFloat(t.rows[i][name])
}

// WithoutColumn returns a copy of the table with the named column removed.
// Removing an absent column is a no-op.
func (t *Table) WithoutColumn(name string) *Table {
	if t == nil || !t.HasColumn(name) {
		return t
	}
	cols := make([]string, 0, len(t.columns)-1)
	for _, c := range t.columns {
		if c != name {
			cols = append(cols, c)
		}
	}
	rows := make([]Row, len(t.rows))
	for i, r := range t.rows {
		nr := make(Row, len(r))
		for k, v := range r {
			if k != name {
				nr[k] = v
			}
		}
		rows[i] = nr
	}
	return &Table{columns: cols, rows: rows}
}

// keyString canonicalizes a join key value for equality comparison, so that
// an int 5 and an int64 5 loaded from different sources match.
func keyString(v any) (string, bool) {
	switch x := v.(type) {
	case nil:
		return "", false
	case string:
		return x, true
	case float64, float32:
		f, _ := toFloat(x)
		return fmt.Sprintf("%g", f), true
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return fmt.Sprintf("%d", x), true
	default:
		return fmt.Sprintf("%v", x), true
	}
}

func toFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int32:
		return float64(x), true
	case int64:
		return float64(x), true
	case uint:
		return float64(x), true
	case uint32:
		return float64(x), true
	case uint64:
		return float64(x), true
	default:
		return 0, false
	}
}

func cloneRows(rows []Row) []Row {
	out := make([]Row, len(rows))
	for i, r := range rows {
		nr := make(Row, len(r))
		for k, v := range r {
			nr[k] = v
		}
		out[i] = nr
	}
	return out
}
