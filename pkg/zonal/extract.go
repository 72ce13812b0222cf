package zonal

import (
	"context"
	"math"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/geokit/pkg/geodata"
	"github.com/sells-group/geokit/pkg/reduce"
	"github.com/sells-group/geokit/pkg/relate"
)

// Extraction holds, per polygon index, the raster cell values whose cells
// were included for that polygon, in row-major grid order. A polygon with no
// included cells has an empty (never nil) value set.
type Extraction struct {
	Values [][]float64
}

// Reduce collapses each polygon's value set with the reducer. Empty sets
// surface geodata.ErrEmptyReduction (wrapped with the polygon index) unless
// the reducer defines the empty case, as count does.
func (e *Extraction) Reduce(r reduce.Reducer) ([]float64, error) {
	out := make([]float64, len(e.Values))
	for i, vals := range e.Values {
		v, err := r.Reduce(vals)
		if err != nil {
			return nil, eris.Wrapf(err, "zonal: polygon %d", i)
		}
		out[i] = v
	}
	return out, nil
}

// Option configures extraction.
type Option func(*config)

type config struct {
	relator   relate.Relator
	workers   int
	fullCover bool
}

// WithRelator substitutes the geometry relation provider.
func WithRelator(r relate.Relator) Option {
	return func(c *config) { c.relator = r }
}

// WithWorkers runs the extraction data-parallel over polygons.
func WithWorkers(n int) Option {
	return func(c *config) { c.workers = n }
}

// WithFullCover selects the stricter inclusion rule: a cell is included only
// when its full footprint lies inside the polygon, instead of the default
// cell-center rule.
func WithFullCover() Option {
	return func(c *config) { c.fullCover = true }
}

// Extract collects, for each polygon, the grid cell values included under the
// inclusion rule. The default rule includes a cell when its center point
// falls within the polygon, boundary inclusive. Grid and polygons must share
// a coordinate reference frame; a polygon outside the grid extent yields an
// empty value set, not an error.
func Extract(ctx context.Context, grid *Grid, polys *geodata.Collection, opts ...Option) (*Extraction, error) {
	cfg := config{relator: relate.Planar{}, workers: 1}
	for _, opt := range opts {
		opt(&cfg)
	}

	if err := geodata.CheckFrames(grid.Frame(), polys.Frame()); err != nil {
		return nil, eris.Wrap(err, "zonal: incompatible inputs")
	}

	values := make([][]float64, polys.Len())

	if cfg.workers <= 1 {
		for i := 0; i < polys.Len(); i++ {
			if err := ctx.Err(); err != nil {
				return nil, eris.Wrap(err, "zonal: canceled")
			}
			vals, err := extractOne(grid, polys.Geom(i), cfg)
			if err != nil {
				return nil, eris.Wrapf(err, "zonal: polygon %d", i)
			}
			values[i] = vals
		}
	} else {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(cfg.workers)
		for i := 0; i < polys.Len(); i++ {
			i := i
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return eris.Wrap(err, "zonal: canceled")
				}
				vals, err := extractOne(grid, polys.Geom(i), cfg)
				if err != nil {
					return eris.Wrapf(err, "zonal: polygon %d", i)
				}
				values[i] = vals
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	}

	zap.L().Debug("zonal: extraction complete",
		zap.Int("polygons", polys.Len()),
		zap.Int("grid_cols", grid.Cols()),
		zap.Int("grid_rows", grid.Rows()),
	)
	return &Extraction{Values: values}, nil
}

func extractOne(grid *Grid, poly geom.T, cfg config) ([]float64, error) {
	vals := []float64{}

	b := poly.Bounds()
	minX, minY, maxX, maxY := grid.extent()
	if b.Min(0) > maxX || b.Max(0) < minX || b.Min(1) > maxY || b.Max(1) < minY {
		return vals, nil
	}

	// Restrict the scan to cells whose footprint can touch the polygon's
	// bounding box.
	colLo := clamp(int(math.Floor((b.Min(0)-grid.originX)/grid.dx)), 0, grid.cols-1)
	colHi := clamp(int(math.Ceil((b.Max(0)-grid.originX)/grid.dx)), 0, grid.cols-1)
	rowLo := clamp(int(math.Floor((grid.originY-b.Max(1))/grid.dy)), 0, grid.rows-1)
	rowHi := clamp(int(math.Ceil((grid.originY-b.Min(1))/grid.dy)), 0, grid.rows-1)

	var cellArea float64
	if cfg.fullCover {
		cellArea = grid.dx * grid.dy
	}

	for row := rowLo; row <= rowHi; row++ {
		for col := colLo; col <= colHi; col++ {
			v := grid.Value(row, col)
			if grid.IsNoData(v) {
				continue
			}
			include, err := cellIncluded(grid, row, col, poly, cfg, cellArea)
			if err != nil {
				return nil, err
			}
			if include {
				vals = append(vals, v)
			}
		}
	}
	return vals, nil
}

func cellIncluded(grid *Grid, row, col int, poly geom.T, cfg config, cellArea float64) (bool, error) {
	if !cfg.fullCover {
		cx, cy := grid.Center(row, col)
		pt := geom.NewPointFlat(geom.XY, []float64{cx, cy})
		return cfg.relator.Intersects(pt, poly)
	}

	// Full-cover rule: the overlap of the cell footprint with the polygon
	// must be the whole cell, up to floating-point tolerance.
	corners := grid.cellCorners(row, col)
	cell := geom.NewPolygonFlat(geom.XY, []float64{
		corners[0][0], corners[0][1],
		corners[1][0], corners[1][1],
		corners[2][0], corners[2][1],
		corners[3][0], corners[3][1],
		corners[0][0], corners[0][1],
	}, []int{10})
	overlap, err := cfg.relator.IntersectionArea(cell, poly)
	if err != nil {
		return false, err
	}
	return overlap >= cellArea*(1-1e-9), nil
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
