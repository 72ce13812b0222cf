// Package zonal implements raster zonal extraction: collecting the raster
// cell values that fall inside each polygon of a collection, for downstream
// reduction.
//
// When the raster and the polygons live in different frames, reproject the
// polygons into the raster's frame. Resampling the raster instead would
// interpolate cell values and force a new grid under the target frame;
// reprojecting vectors is lossless and cheap. The extractor therefore only
// accepts matching frames and never resamples.
package zonal

import (
	"slices"

	"github.com/rotisserie/eris"

	"github.com/sells-group/geokit/pkg/geodata"
)

// Grid is a regular raster grid: a frame, an upper-left origin, fixed cell
// sizes, and row-major cell values. Rows advance downward from the origin
// (north-up rasters), columns advance rightward.
type Grid struct {
	frame   geodata.Frame
	originX float64 // x of the upper-left corner of cell (0,0)
	originY float64 // y of the upper-left corner of cell (0,0)
	dx, dy  float64 // cell width and height, both positive
	cols    int
	rows    int
	values  []float64
	nodata  *float64
}

// GridOption configures grid construction.
type GridOption func(*Grid)

// WithNoData marks a sentinel value whose cells are excluded from extraction.
func WithNoData(v float64) GridOption {
	return func(g *Grid) { g.nodata = &v }
}

// NewGrid builds a grid over row-major values of length cols*rows.
func NewGrid(frame geodata.Frame, originX, originY, dx, dy float64, cols, rows int, values []float64, opts ...GridOption) (*Grid, error) {
	if dx <= 0 || dy <= 0 {
		return nil, eris.Errorf("zonal: cell size must be positive, got dx=%g dy=%g", dx, dy)
	}
	if cols <= 0 || rows <= 0 {
		return nil, eris.Errorf("zonal: grid dimensions must be positive, got %dx%d", cols, rows)
	}
	if len(values) != cols*rows {
		return nil, eris.Errorf("zonal: %d values do not fill a %dx%d grid", len(values), cols, rows)
	}
	g := &Grid{
		frame:   frame,
		originX: originX,
		originY: originY,
		dx:      dx,
		dy:      dy,
		cols:    cols,
		rows:    rows,
		values:  slices.Clone(values),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// Frame returns the grid's coordinate reference frame.
func (g *Grid) Frame() geodata.Frame { return g.frame }

// Cols returns the column count.
func (g *Grid) Cols() int { return g.cols }

// Rows returns the row count.
func (g *Grid) Rows() int { return g.rows }

// CellSize returns the cell width and height.
func (g *Grid) CellSize() (dx, dy float64) { return g.dx, g.dy }

// Value returns the cell value at (row, col).
func (g *Grid) Value(row, col int) float64 {
	return g.values[row*g.cols+col]
}

// IsNoData reports whether v is the grid's nodata sentinel.
func (g *Grid) IsNoData(v float64) bool {
	return g.nodata != nil && v == *g.nodata
}

// Center returns the coordinates of the cell center at (row, col).
func (g *Grid) Center(row, col int) (x, y float64) {
	return g.originX + (float64(col)+0.5)*g.dx,
		g.originY - (float64(row)+0.5)*g.dy
}

// cellCorners returns the four corner coordinates of cell (row, col).
func (g *Grid) cellCorners(row, col int) [][]float64 {
	x0 := g.originX + float64(col)*g.dx
	y0 := g.originY - float64(row)*g.dy
	return [][]float64{
		{x0, y0},
		{x0 + g.dx, y0},
		{x0 + g.dx, y0 - g.dy},
		{x0, y0 - g.dy},
	}
}

// extent returns the grid's outer bounds as minX, minY, maxX, maxY.
func (g *Grid) extent() (minX, minY, maxX, maxY float64) {
	return g.originX,
		g.originY - float64(g.rows)*g.dy,
		g.originX + float64(g.cols)*g.dx,
		g.originY
}
