//go:build geos

package relate

import (
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/wkb"
	"github.com/twpayne/go-geos"
)

// GEOS is a Relator backed by the GEOS library via cgo, bridged through WKB.
// Unlike Planar it computes exact intersection areas for arbitrary polygons,
// holes included. Not safe for concurrent use; give each worker its own.
type GEOS struct {
	ctx *geos.Context
}

// NewGEOS returns a GEOS-backed relator with its own GEOS context.
func NewGEOS() *GEOS {
	return &GEOS{ctx: geos.NewContext()}
}

// Intersects implements Relator.
func (r *GEOS) Intersects(a, b geom.T) (bool, error) {
	ga, gb, err := r.pair(a, b)
	if err != nil {
		return false, err
	}
	defer ga.Destroy()
	defer gb.Destroy()
	return ga.Intersects(gb), nil
}

// IntersectionArea implements Relator.
func (r *GEOS) IntersectionArea(a, b geom.T) (float64, error) {
	ga, gb, err := r.pair(a, b)
	if err != nil {
		return 0, err
	}
	defer ga.Destroy()
	defer gb.Destroy()
	overlap := ga.Intersection(gb)
	if overlap == nil {
		return 0, nil
	}
	defer overlap.Destroy()
	return overlap.Area(), nil
}

func (r *GEOS) pair(a, b geom.T) (*geos.Geom, *geos.Geom, error) {
	ga, err := r.toGEOS(a)
	if err != nil {
		return nil, nil, err
	}
	gb, err := r.toGEOS(b)
	if err != nil {
		ga.Destroy()
		return nil, nil, err
	}
	return ga, gb, nil
}

func (r *GEOS) toGEOS(g geom.T) (*geos.Geom, error) {
	data, err := wkb.Marshal(g, wkb.NDR)
	if err != nil {
		return nil, eris.Wrap(err, "relate: encode WKB for GEOS")
	}
	gg, err := r.ctx.NewGeomFromWKB(data)
	if err != nil {
		return nil, eris.Wrap(err, "relate: decode WKB in GEOS")
	}
	return gg, nil
}
