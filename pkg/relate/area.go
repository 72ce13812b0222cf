package relate

import "math"

// ringArea returns the signed shoelace area of a ring (positive for
// counterclockwise winding). The ring may be open or closed.
func ringArea(ring [][]float64) float64 {
	n := len(ring)
	if n < 3 {
		return 0
	}
	var sum float64
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		sum += ring[i][0]*ring[j][1] - ring[j][0]*ring[i][1]
	}
	return sum / 2
}

// RingArea returns the absolute area of a ring. Exported for the join and
// zonal engines, which need source-polygon areas for weighting.
func RingArea(ring [][]float64) float64 {
	return math.Abs(ringArea(ring))
}

// isConvex reports whether a ring is convex (collinear runs allowed).
func isConvex(ring [][]float64) bool {
	ring = openRing(ring)
	n := len(ring)
	if n < 3 {
		return false
	}
	sign := 0.0
	for i := 0; i < n; i++ {
		c := cross(ring[i], ring[(i+1)%n], ring[(i+2)%n])
		if math.Abs(c) <= epsilon {
			continue
		}
		if sign == 0 {
			sign = c
		} else if (c > 0) != (sign > 0) {
			return false
		}
	}
	return true
}

// openRing strips a duplicated closing coordinate.
func openRing(ring [][]float64) [][]float64 {
	if len(ring) > 1 && pointsEqual(ring[0], ring[len(ring)-1]) {
		return ring[:len(ring)-1]
	}
	return ring
}

// ccw returns the ring in counterclockwise winding.
func ccw(ring [][]float64) [][]float64 {
	if ringArea(ring) >= 0 {
		return ring
	}
	out := make([][]float64, len(ring))
	for i, p := range ring {
		out[len(ring)-1-i] = p
	}
	return out
}

// convexClipArea returns the overlap area of two rings, clipping the subject
// against whichever operand is convex. Neither being convex is an error; the
// planar relator never approximates.
func convexClipArea(subject, clip [][]float64) (float64, error) {
	subject = openRing(subject)
	clip = openRing(clip)
	switch {
	case isConvex(clip):
		// fall through
	case isConvex(subject):
		subject, clip = clip, subject
	default:
		return 0, ErrNonConvex
	}
	clipped := sutherlandHodgman(subject, ccw(clip))
	return RingArea(clipped), nil
}

// sutherlandHodgman clips the subject ring against each edge of the convex,
// counterclockwise clip ring.
func sutherlandHodgman(subject, clip [][]float64) [][]float64 {
	output := subject
	n := len(clip)
	for i := 0; i < n && len(output) > 0; i++ {
		a, b := clip[i], clip[(i+1)%n]
		input := output
		output = nil
		m := len(input)
		for j := 0; j < m; j++ {
			cur := input[j]
			prev := input[(j+m-1)%m]
			curIn := cross(a, b, cur) >= -epsilon
			prevIn := cross(a, b, prev) >= -epsilon
			switch {
			case curIn && prevIn:
				output = append(output, cur)
			case curIn && !prevIn:
				output = append(output, lineIntersection(prev, cur, a, b), cur)
			case !curIn && prevIn:
				output = append(output, lineIntersection(prev, cur, a, b))
			}
		}
	}
	return output
}

// lineIntersection returns the intersection of infinite lines pq and ab. The
// clipper only calls it when the segments straddle, so the denominator is
// nonzero up to epsilon.
func lineIntersection(p, q, a, b []float64) []float64 {
	a1 := q[1] - p[1]
	b1 := p[0] - q[0]
	c1 := a1*p[0] + b1*p[1]
	a2 := b[1] - a[1]
	b2 := a[0] - b[0]
	c2 := a2*a[0] + b2*a[1]
	det := a1*b2 - a2*b1
	if math.Abs(det) < epsilon {
		return p
	}
	return []float64{(b2*c1 - b1*c2) / det, (a1*c2 - a2*c1) / det}
}
