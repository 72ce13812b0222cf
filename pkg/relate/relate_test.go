package relate

import (
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-geom"
)

func point(x, y float64) *geom.Point {
	return geom.NewPointFlat(geom.XY, []float64{x, y})
}

func line(coords ...float64) *geom.LineString {
	return geom.NewLineStringFlat(geom.XY, coords)
}

// rect builds a closed rectangle polygon [x0,x1]×[y0,y1].
func rect(x0, y0, x1, y1 float64) *geom.Polygon {
	return geom.NewPolygonFlat(geom.XY, []float64{
		x0, y0, x1, y0, x1, y1, x0, y1, x0, y0,
	}, []int{10})
}

func TestPlanar_PointPolygon(t *testing.T) {
	r := Planar{}
	poly := rect(-1, -1, 1, 1)

	tests := []struct {
		name string
		p    *geom.Point
		want bool
	}{
		{"inside", point(0, 0), true},
		{"on boundary", point(1, 0), true},
		{"on corner", point(1, 1), true},
		{"outside", point(2, 2), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.Intersects(tt.p, poly)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)

			// Symmetric.
			got, err = r.Intersects(poly, tt.p)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPlanar_PointPoint(t *testing.T) {
	r := Planar{}
	ok, err := r.Intersects(point(3, 4), point(3, 4))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = r.Intersects(point(3, 4), point(3, 5))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPlanar_PointOnLine(t *testing.T) {
	r := Planar{}
	l := line(0, 0, 10, 10)

	ok, err := r.Intersects(point(5, 5), l)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = r.Intersects(point(5, 6), l)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPlanar_Lines(t *testing.T) {
	r := Planar{}

	ok, err := r.Intersects(line(0, 0, 10, 10), line(0, 10, 10, 0))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = r.Intersects(line(0, 0, 1, 0), line(0, 1, 1, 1))
	require.NoError(t, err)
	assert.False(t, ok)

	// Shared endpoint counts.
	ok, err = r.Intersects(line(0, 0, 1, 1), line(1, 1, 2, 0))
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestPlanar_LinePolygon(t *testing.T) {
	r := Planar{}
	poly := rect(0, 0, 10, 10)

	// Crossing straight through.
	ok, err := r.Intersects(line(-5, 5, 15, 5), poly)
	require.NoError(t, err)
	assert.True(t, ok)

	// Fully inside.
	ok, err = r.Intersects(line(1, 1, 2, 2), poly)
	require.NoError(t, err)
	assert.True(t, ok)

	// Fully outside.
	ok, err = r.Intersects(line(20, 20, 30, 30), poly)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPlanar_Polygons(t *testing.T) {
	r := Planar{}

	tests := []struct {
		name string
		a, b *geom.Polygon
		want bool
	}{
		{"overlap", rect(0, 0, 2, 2), rect(1, 1, 3, 3), true},
		{"containment", rect(0, 0, 10, 10), rect(2, 2, 3, 3), true},
		{"edge touch", rect(0, 0, 1, 1), rect(1, 0, 2, 1), true},
		{"corner touch", rect(0, 0, 1, 1), rect(1, 1, 2, 2), true},
		{"disjoint", rect(0, 0, 1, 1), rect(5, 5, 6, 6), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.Intersects(tt.a, tt.b)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPlanar_PolygonWithHole(t *testing.T) {
	r := Planar{}
	// [0,10]² with hole [4,6]².
	holed := geom.NewPolygonFlat(geom.XY, []float64{
		0, 0, 10, 0, 10, 10, 0, 10, 0, 0,
		4, 4, 6, 4, 6, 6, 4, 6, 4, 4,
	}, []int{10, 20})

	ok, err := r.Intersects(point(5, 5), holed)
	require.NoError(t, err)
	assert.False(t, ok, "point inside the hole is not in the polygon")

	ok, err = r.Intersects(point(4, 5), holed)
	require.NoError(t, err)
	assert.True(t, ok, "hole boundary belongs to the polygon")

	ok, err = r.Intersects(point(2, 2), holed)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestPlanar_UnsupportedGeometry(t *testing.T) {
	r := Planar{}
	// An empty collection has zero-dimension bounds; the relator must reject
	// it as unsupported rather than indexing into those bounds.
	gc := geom.NewGeometryCollection()

	_, err := r.Intersects(gc, point(0, 0))
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrUnsupportedGeometry))

	_, err = r.Intersects(point(0, 0), gc)
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrUnsupportedGeometry))

	_, err = r.Intersects(gc, gc)
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrUnsupportedGeometry))
}

func TestPlanar_IntersectionArea(t *testing.T) {
	r := Planar{}

	area, err := r.IntersectionArea(rect(0, 0, 2, 2), rect(1, 1, 3, 3))
	require.NoError(t, err)
	assert.InDelta(t, 1.0, area, 1e-9)

	// Containment: the smaller polygon's full area.
	area, err = r.IntersectionArea(rect(0, 0, 10, 10), rect(2, 2, 4, 4))
	require.NoError(t, err)
	assert.InDelta(t, 4.0, area, 1e-9)

	// Boundary touch has zero area.
	area, err = r.IntersectionArea(rect(0, 0, 1, 1), rect(1, 0, 2, 1))
	require.NoError(t, err)
	assert.InDelta(t, 0.0, area, 1e-9)

	// Disjoint.
	area, err = r.IntersectionArea(rect(0, 0, 1, 1), rect(5, 5, 6, 6))
	require.NoError(t, err)
	assert.Equal(t, 0.0, area)
}

func TestPlanar_IntersectionArea_ConvexWithNonConvex(t *testing.T) {
	r := Planar{}
	// L-shaped (non-convex) subject against a convex clip rectangle.
	lshape := geom.NewPolygonFlat(geom.XY, []float64{
		0, 0, 4, 0, 4, 2, 2, 2, 2, 4, 0, 4, 0, 0,
	}, []int{14})

	area, err := r.IntersectionArea(lshape, rect(0, 0, 4, 4))
	require.NoError(t, err)
	assert.InDelta(t, 12.0, area, 1e-9)

	// Order must not matter: the convex operand clips either way.
	area, err = r.IntersectionArea(rect(0, 0, 4, 4), lshape)
	require.NoError(t, err)
	assert.InDelta(t, 12.0, area, 1e-9)
}

func TestPlanar_IntersectionArea_Errors(t *testing.T) {
	r := Planar{}

	lshape := geom.NewPolygonFlat(geom.XY, []float64{
		0, 0, 4, 0, 4, 2, 2, 2, 2, 4, 0, 4, 0, 0,
	}, []int{14})
	_, err := r.IntersectionArea(lshape, lshape)
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrNonConvex))

	_, err = r.IntersectionArea(point(0, 0), rect(0, 0, 1, 1))
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrNotPolygonal))
}

func TestRingArea(t *testing.T) {
	square := [][]float64{{0, 0}, {2, 0}, {2, 2}, {0, 2}}
	assert.InDelta(t, 4.0, RingArea(square), 1e-12)

	// Winding direction does not change the absolute area.
	reversed := [][]float64{{0, 2}, {2, 2}, {2, 0}, {0, 0}}
	assert.InDelta(t, 4.0, RingArea(reversed), 1e-12)
}
