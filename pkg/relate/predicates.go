package relate

import "math"

// epsilon absorbs floating-point noise in orientation and containment tests.
// Coordinates are assumed to be in ordinary projected or geographic units, not
// denormalized extremes.
const epsilon = 1e-9

func pointsEqual(a, b []float64) bool {
	return math.Abs(a[0]-b[0]) <= epsilon && math.Abs(a[1]-b[1]) <= epsilon
}

// cross returns the z-component of (b-a) x (c-a).
func cross(a, b, c []float64) float64 {
	return (b[0]-a[0])*(c[1]-a[1]) - (b[1]-a[1])*(c[0]-a[0])
}

// pointOnSegment reports whether p lies on the closed segment ab.
func pointOnSegment(p, a, b []float64) bool {
	if math.Abs(cross(a, b, p)) > epsilon*(1+math.Abs(a[0])+math.Abs(b[0])+math.Abs(a[1])+math.Abs(b[1])) {
		return false
	}
	return p[0] >= math.Min(a[0], b[0])-epsilon && p[0] <= math.Max(a[0], b[0])+epsilon &&
		p[1] >= math.Min(a[1], b[1])-epsilon && p[1] <= math.Max(a[1], b[1])+epsilon
}

// segmentsIntersect reports whether closed segments ab and cd share a point.
func segmentsIntersect(a, b, c, d []float64) bool {
	d1 := cross(c, d, a)
	d2 := cross(c, d, b)
	d3 := cross(a, b, c)
	d4 := cross(a, b, d)

	if ((d1 > epsilon && d2 < -epsilon) || (d1 < -epsilon && d2 > epsilon)) &&
		((d3 > epsilon && d4 < -epsilon) || (d3 < -epsilon && d4 > epsilon)) {
		return true
	}
	// Collinear / endpoint touches.
	return pointOnSegment(a, c, d) || pointOnSegment(b, c, d) ||
		pointOnSegment(c, a, b) || pointOnSegment(d, a, b)
}

// pointOnPath reports whether p lies on any segment of the path.
func pointOnPath(p []float64, path [][]float64) bool {
	for i := 1; i < len(path); i++ {
		if pointOnSegment(p, path[i-1], path[i]) {
			return true
		}
	}
	return false
}

// pointOnRing reports whether p lies on the ring's boundary. The ring may be
// closed (first == last) or open; the closing segment is tested either way.
func pointOnRing(p []float64, ring [][]float64) bool {
	n := len(ring)
	if n == 0 {
		return false
	}
	for i := 0; i < n; i++ {
		if pointOnSegment(p, ring[i], ring[(i+1)%n]) {
			return true
		}
	}
	return false
}

// pointInRing reports whether p is strictly inside the ring, by ray casting.
// Boundary points are not inside; use pointOnRing for the boundary case.
func pointInRing(p []float64, ring [][]float64) bool {
	n := len(ring)
	if n < 3 {
		return false
	}
	inside := false
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		xi, yi := ring[i][0], ring[i][1]
		xj, yj := ring[j][0], ring[j][1]
		if (yi > p[1]) != (yj > p[1]) &&
			p[0] < (xj-xi)*(p[1]-yi)/(yj-yi)+xi {
			inside = !inside
		}
	}
	return inside
}

// pointInPolygon reports whether p is inside the polygon, boundary inclusive.
// Ring 0 is the exterior; further rings are holes. A point on a hole boundary
// is part of the polygon; a point strictly inside a hole is not.
func pointInPolygon(p []float64, rings [][][]float64) bool {
	if len(rings) == 0 {
		return false
	}
	if pointOnRing(p, rings[0]) {
		return true
	}
	if !pointInRing(p, rings[0]) {
		return false
	}
	for _, hole := range rings[1:] {
		if pointOnRing(p, hole) {
			return true
		}
		if pointInRing(p, hole) {
			return false
		}
	}
	return true
}

func pathsIntersect(a, b [][]float64) bool {
	for i := 1; i < len(a); i++ {
		for j := 1; j < len(b); j++ {
			if segmentsIntersect(a[i-1], a[i], b[j-1], b[j]) {
				return true
			}
		}
	}
	return false
}

// ringSegmentsIntersectPath reports whether any ring edge crosses the path.
func ringSegmentsIntersectPath(ring, path [][]float64) bool {
	n := len(ring)
	for i := 0; i < n; i++ {
		a, b := ring[i], ring[(i+1)%n]
		for j := 1; j < len(path); j++ {
			if segmentsIntersect(a, b, path[j-1], path[j]) {
				return true
			}
		}
	}
	return false
}

func pathIntersectsPolygon(path [][]float64, rings [][][]float64) bool {
	for _, p := range path {
		if pointInPolygon(p, rings) {
			return true
		}
	}
	for _, ring := range rings {
		if ringSegmentsIntersectPath(ring, path) {
			return true
		}
	}
	return false
}

func polygonsIntersect(a, b [][][]float64) bool {
	if len(a) == 0 || len(b) == 0 {
		return false
	}
	// Any vertex containment covers full containment either way; ring edge
	// crossings cover partial overlap. Hole rings participate in the edge
	// tests so a polygon straddling a hole boundary is still caught.
	for _, p := range a[0] {
		if pointInPolygon(p, b) {
			return true
		}
	}
	for _, p := range b[0] {
		if pointInPolygon(p, a) {
			return true
		}
	}
	for _, ra := range a {
		for _, rb := range b {
			if ringsCross(ra, rb) {
				return true
			}
		}
	}
	return false
}

func ringsCross(a, b [][]float64) bool {
	na, nb := len(a), len(b)
	for i := 0; i < na; i++ {
		for j := 0; j < nb; j++ {
			if segmentsIntersect(a[i], a[(i+1)%na], b[j], b[(j+1)%nb]) {
				return true
			}
		}
	}
	return false
}
