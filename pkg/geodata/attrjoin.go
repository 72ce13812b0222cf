package geodata

import (
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"go.uber.org/zap"
)

// JoinHow selects the attribute join semantics.
type JoinHow int

const (
	// JoinLeft keeps every geometry; unmatched geometries receive null-valued
	// new attributes. Geometry order and count are preserved.
	JoinLeft JoinHow = iota
	// JoinInner drops geometries with no matching table row.
	JoinInner
)

// JoinOption configures AttributeJoin.
type JoinOption func(*joinConfig)

type joinConfig struct {
	fanOut bool
}

// WithFanOut opts into one-to-many joins: when the right key matches several
// table rows, the geometry is replicated once per matching row. Without it a
// non-unique right key fails with ErrDuplicateKey.
func WithFanOut() JoinOption {
	return func(c *joinConfig) { c.fanOut = true }
}

// AttributeJoin merges a keyed table into a collection by key equality,
// matching each geometry's leftKey attribute against the table's rightKey
// column. The collection's own columns win on name collision with incoming
// table columns (the key column aside, colliding columns are replaced by the
// table's values only for matched rows; this is what makes rebinding the same
// table idempotent).
func AttributeJoin(c *Collection, table *Table, leftKey, rightKey string, how JoinHow, opts ...JoinOption) (*Collection, error) {
	var cfg joinConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	if c.Attrs() == nil || !c.Attrs().HasColumn(leftKey) {
		return nil, eris.Wrapf(ErrKeyNotFound, "left key %q", leftKey)
	}
	if table == nil || !table.HasColumn(rightKey) {
		return nil, eris.Wrapf(ErrKeyNotFound, "right key %q", rightKey)
	}

	// Index the right side by canonical key value.
	byKey := make(map[string][]int, table.Len())
	for i := 0; i < table.Len(); i++ {
		k, ok := keyString(table.Value(i, rightKey))
		if !ok {
			continue
		}
		byKey[k] = append(byKey[k], i)
		if len(byKey[k]) > 1 && !cfg.fanOut {
			return nil, eris.Wrapf(ErrDuplicateKey, "right key %q value %q", rightKey, k)
		}
	}

	// New columns: every table column except the right key that is not
	// already a key column on the left.
	newCols := make([]string, 0, len(table.columns))
	for _, col := range table.columns {
		if col == rightKey {
			continue
		}
		newCols = append(newCols, col)
	}

	left := c.Attrs()
	outCols := left.Columns()
	for _, col := range newCols {
		if !left.HasColumn(col) {
			outCols = append(outCols, col)
		}
	}

	var (
		geoms   []geom.T
		rows    []Row
		matched int
	)
	appendRow := func(srcIdx int, tblIdx int) {
		row := left.Row(srcIdx)
		if tblIdx >= 0 {
			for _, col := range newCols {
				row[col] = table.Value(tblIdx, col)
			}
		} else {
			for _, col := range newCols {
				if _, exists := row[col]; !exists {
					row[col] = nil
				}
			}
		}
		geoms = append(geoms, c.Geom(srcIdx))
		rows = append(rows, row)
	}

	for i := 0; i < c.Len(); i++ {
		k, ok := keyString(left.Value(i, leftKey))
		var hits []int
		if ok {
			hits = byKey[k]
		}
		switch {
		case len(hits) == 0:
			if how == JoinLeft {
				appendRow(i, -1)
			}
		default:
			matched++
			for _, h := range hits {
				appendRow(i, h)
			}
		}
	}

	zap.L().Debug("geodata: attribute join",
		zap.Int("geometries", c.Len()),
		zap.Int("matched", matched),
		zap.Int("result_rows", len(rows)),
	)

	attrs := &Table{columns: outCols, rows: rows}
	return &Collection{frame: c.frame, geoms: geoms, attrs: attrs}, nil
}
