package geodata

import (
	"slices"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
)

// Collection is an ordered sequence of geometries under one coordinate
// reference frame, optionally paired with an attribute table whose rows align
// 1:1 with the geometries by position.
//
// The pairing is deliberate: there is no API that re-sorts attribute rows
// independently of geometries, and no API that merges two bare tables and
// reattaches them positionally. Attribute alignment is never separable from
// geometry alignment.
type Collection struct {
	frame Frame
	geoms []geom.T
	attrs *Table
}

// NewCollection builds a collection. attrs may be nil; when present its row
// count must equal the geometry count.
func NewCollection(frame Frame, geoms []geom.T, attrs *Table) (*Collection, error) {
	if attrs != nil && attrs.Len() != len(geoms) {
		return nil, eris.Errorf("geodata: attribute rows (%d) do not align with geometries (%d)",
			attrs.Len(), len(geoms))
	}
	return &Collection{frame: frame, geoms: slices.Clone(geoms), attrs: attrs}, nil
}

// Len returns the geometry count.
func (c *Collection) Len() int { return len(c.geoms) }

// Frame returns the collection's coordinate reference frame.
func (c *Collection) Frame() Frame { return c.frame }

// Geom returns the geometry at positional index i.
func (c *Collection) Geom(i int) geom.T { return c.geoms[i] }

// Attrs returns the attribute table, or nil when the collection carries none.
func (c *Collection) Attrs() *Table { return c.attrs }

// WithAttrs returns a copy of the collection with the given attribute table,
// validating alignment.
func (c *Collection) WithAttrs(attrs *Table) (*Collection, error) {
	return NewCollection(c.frame, c.geoms, attrs)
}

// WithFrame returns a copy of the collection under a different frame without
// touching coordinates. This is for collaborators (reprojectors, loaders)
// that have actually transformed or authoritatively identified the
// coordinates; it is not a substitute for reprojection.
func (c *Collection) WithFrame(frame Frame) *Collection {
	return &Collection{frame: frame, geoms: c.geoms, attrs: c.attrs}
}

// Select returns a new collection containing the given positional indexes, in
// the given order, with attribute rows carried along. Indexes may repeat
// (fan-out joins replicate geometries).
func (c *Collection) Select(indexes []int) (*Collection, error) {
	geoms := make([]geom.T, 0, len(indexes))
	for _, i := range indexes {
		if i < 0 || i >= len(c.geoms) {
			return nil, eris.Errorf("geodata: index %d out of range [0,%d)", i, len(c.geoms))
		}
		geoms = append(geoms, c.geoms[i])
	}
	var attrs *Table
	if c.attrs != nil {
		rows := make([]Row, 0, len(indexes))
		for _, i := range indexes {
			rows = append(rows, c.attrs.Row(i))
		}
		attrs = &Table{columns: c.attrs.Columns(), rows: rows}
	}
	return &Collection{frame: c.frame, geoms: geoms, attrs: attrs}, nil
}

// Reprojector converts a collection into a target frame. Implementations are
// external collaborators (PROJ bindings, affine transformers); the core never
// performs projection math itself.
type Reprojector interface {
	Reproject(c *Collection, to Frame) (*Collection, error)
}
