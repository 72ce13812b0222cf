// Package relate provides the geometry relation provider consumed by the
// spatial join engine: pairwise intersection tests and polygon overlap areas.
//
// Planar is the pure-Go default. An exact GEOS-backed relator for arbitrary
// polygons is available under the "geos" build tag.
package relate

import (
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
)

// Relator reports spatial relations between two geometries. Both geometries
// are assumed to be expressed in the same coordinate reference frame; frame
// checking is the caller's responsibility (the join and zonal engines do it
// before any relation is evaluated).
type Relator interface {
	// Intersects reports whether the two geometries' point sets share at
	// least one point. Touching boundaries count as intersecting.
	Intersects(a, b geom.T) (bool, error)

	// IntersectionArea returns the area of the overlap of two polygonal
	// geometries. Boundary touches have zero area.
	IntersectionArea(a, b geom.T) (float64, error)
}

// Planar relators' limits, surfaced as errors rather than wrong numbers.
var (
	// ErrUnsupportedGeometry is returned for geometry types the planar
	// relator does not evaluate (geometry collections, curved types).
	ErrUnsupportedGeometry = eris.New("relate: unsupported geometry type")

	// ErrNonConvex is returned by Planar.IntersectionArea when neither
	// operand's exterior ring is convex. Use the GEOS-backed relator for
	// arbitrary polygon overlays.
	ErrNonConvex = eris.New("relate: intersection area requires a convex operand")

	// ErrNotPolygonal is returned by IntersectionArea for non-areal inputs.
	ErrNotPolygonal = eris.New("relate: intersection area requires polygonal inputs")
)

// Planar is a pure-Go Relator over planar coordinates.
type Planar struct{}

// Intersects implements Relator.
func (Planar) Intersects(a, b geom.T) (bool, error) {
	if a == nil || b == nil {
		return false, nil
	}
	// Type screening first: unsupported geometries (collections, curved
	// types) may carry empty bounds that the pruning below cannot index.
	pa, err := decompose(a)
	if err != nil {
		return false, err
	}
	pb, err := decompose(b)
	if err != nil {
		return false, err
	}
	if boundsDisjoint(a.Bounds(), b.Bounds()) {
		return false, nil
	}
	return partsIntersect(pa, pb), nil
}

// IntersectionArea implements Relator. Interior rings are not supported; a
// polygon with holes fails rather than returning an overestimate.
func (Planar) IntersectionArea(a, b geom.T) (float64, error) {
	ra, err := exteriorRings(a)
	if err != nil {
		return 0, err
	}
	rb, err := exteriorRings(b)
	if err != nil {
		return 0, err
	}
	if boundsDisjoint(a.Bounds(), b.Bounds()) {
		return 0, nil
	}
	var total float64
	for _, sa := range ra {
		for _, sb := range rb {
			area, err := convexClipArea(sa, sb)
			if err != nil {
				return 0, err
			}
			total += area
		}
	}
	return total, nil
}

// parts is a geometry decomposed into primitive pieces for predicate testing.
type parts struct {
	points [][]float64   // bare points
	paths  [][][]float64 // open linework
	polys  [][][][]float64 // polygons: poly -> rings -> coords; ring 0 is exterior
}

func decompose(g geom.T) (parts, error) {
	var p parts
	switch t := g.(type) {
	case *geom.Point:
		p.points = append(p.points, coordXY(t.Coords()))
	case *geom.MultiPoint:
		for _, c := range t.Coords() {
			p.points = append(p.points, coordXY(c))
		}
	case *geom.LineString:
		p.paths = append(p.paths, coordsXY(t.Coords()))
	case *geom.MultiLineString:
		for _, path := range t.Coords() {
			p.paths = append(p.paths, coordsXY(path))
		}
	case *geom.Polygon:
		p.polys = append(p.polys, ringsXY(t.Coords()))
	case *geom.MultiPolygon:
		for _, rings := range t.Coords() {
			p.polys = append(p.polys, ringsXY(rings))
		}
	default:
		return parts{}, eris.Wrapf(ErrUnsupportedGeometry, "%T", g)
	}
	return p, nil
}

// exteriorRings extracts polygon exterior rings, rejecting holes and
// non-polygonal input.
func exteriorRings(g geom.T) ([][][]float64, error) {
	var out [][][]float64
	switch t := g.(type) {
	case *geom.Polygon:
		rings := t.Coords()
		if len(rings) > 1 {
			return nil, eris.Wrap(ErrNonConvex, "interior rings not supported")
		}
		if len(rings) == 1 {
			out = append(out, coordsXY(rings[0]))
		}
	case *geom.MultiPolygon:
		for _, rings := range t.Coords() {
			if len(rings) > 1 {
				return nil, eris.Wrap(ErrNonConvex, "interior rings not supported")
			}
			if len(rings) == 1 {
				out = append(out, coordsXY(rings[0]))
			}
		}
	default:
		return nil, eris.Wrapf(ErrNotPolygonal, "%T", g)
	}
	return out, nil
}

func partsIntersect(a, b parts) bool {
	// point vs *
	for _, p := range a.points {
		if pointHits(p, b) {
			return true
		}
	}
	for _, p := range b.points {
		if pointHits(p, a) {
			return true
		}
	}
	// line vs line / polygon
	for _, la := range a.paths {
		for _, lb := range b.paths {
			if pathsIntersect(la, lb) {
				return true
			}
		}
		for _, pb := range b.polys {
			if pathIntersectsPolygon(la, pb) {
				return true
			}
		}
	}
	for _, lb := range b.paths {
		for _, pa := range a.polys {
			if pathIntersectsPolygon(lb, pa) {
				return true
			}
		}
	}
	// polygon vs polygon
	for _, pa := range a.polys {
		for _, pb := range b.polys {
			if polygonsIntersect(pa, pb) {
				return true
			}
		}
	}
	return false
}

func pointHits(p []float64, other parts) bool {
	for _, q := range other.points {
		if pointsEqual(p, q) {
			return true
		}
	}
	for _, path := range other.paths {
		if pointOnPath(p, path) {
			return true
		}
	}
	for _, poly := range other.polys {
		if pointInPolygon(p, poly) {
			return true
		}
	}
	return false
}

func boundsDisjoint(a, b *geom.Bounds) bool {
	return a.Min(0) > b.Max(0)+epsilon || b.Min(0) > a.Max(0)+epsilon ||
		a.Min(1) > b.Max(1)+epsilon || b.Min(1) > a.Max(1)+epsilon
}

func coordXY(c geom.Coord) []float64 { return []float64{c[0], c[1]} }

func coordsXY(cs []geom.Coord) [][]float64 {
	out := make([][]float64, len(cs))
	for i, c := range cs {
		out[i] = coordXY(c)
	}
	return out
}

func ringsXY(rings [][]geom.Coord) [][][]float64 {
	out := make([][][]float64, len(rings))
	for i, r := range rings {
		out[i] = coordsXY(r)
	}
	return out
}
