// Package loader implements the I/O collaborators the geokit engines depend
// on: shapefile and raster readers, delimited and spreadsheet tables, and
// edge lists. Every loader takes explicit paths and frame arguments; nothing
// resolves inputs through ambient state.
package loader

import (
	"strconv"
	"strings"

	"github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"go.uber.org/zap"

	"github.com/sells-group/geokit/pkg/geodata"
)

// Shapefile reads a shapefile layer into a geometry collection. DBF fields
// become the attribute table, with numeric-looking values parsed to float64.
// The frame is an explicit argument because .prj sidecars are not reliably
// present or parseable; the caller states what the coordinates mean.
func Shapefile(path string, frame geodata.Frame) (*geodata.Collection, error) {
	reader, err := shp.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "loader: open shapefile %s", path)
	}
	defer func() { _ = reader.Close() }()

	fields := reader.Fields()
	columns := make([]string, len(fields))
	for i, f := range fields {
		columns[i] = strings.TrimRight(f.String(), "\x00")
	}

	var (
		geoms   []geom.T
		rows    []geodata.Row
		skipped int
	)
	for reader.Next() {
		_, shape := reader.Shape()
		g := shapeToGeom(shape)
		if g == nil {
			// Geometry and attributes stay aligned by skipping the whole
			// record, never just the shape.
			skipped++
			continue
		}

		row := make(geodata.Row, len(columns))
		for i, col := range columns {
			val := strings.TrimSpace(strings.TrimRight(reader.Attribute(i), "\x00"))
			row[col] = sniffValue(val)
		}
		geoms = append(geoms, g)
		rows = append(rows, row)
	}

	if skipped > 0 {
		zap.L().Debug("loader: skipped shapefile records",
			zap.String("path", path),
			zap.Int("skipped", skipped),
		)
	}

	table, err := geodata.NewTable(columns, rows)
	if err != nil {
		return nil, eris.Wrapf(err, "loader: shapefile attributes %s", path)
	}
	return geodata.NewCollection(frame, geoms, table)
}

// shapeToGeom converts a go-shp shape to a go-geom geometry. Unsupported or
// empty shapes yield nil.
func shapeToGeom(shape shp.Shape) geom.T {
	switch s := shape.(type) {
	case *shp.Point:
		return geom.NewPointFlat(geom.XY, []float64{s.X, s.Y})
	case *shp.PolyLine:
		return polyLineToMultiLineString(s)
	case *shp.Polygon:
		return polygonToMultiPolygon(s)
	default:
		return nil
	}
}

func polyLineToMultiLineString(pl *shp.PolyLine) geom.T {
	if pl == nil || pl.NumParts == 0 || len(pl.Points) == 0 {
		return nil
	}
	mls := geom.NewMultiLineString(geom.XY)
	for i := int32(0); i < pl.NumParts; i++ {
		start, end := partRange(pl.Parts, i, pl.NumParts, len(pl.Points))
		flat := make([]float64, 0, 2*(end-start))
		for j := start; j < end; j++ {
			flat = append(flat, pl.Points[j].X, pl.Points[j].Y)
		}
		ls := geom.NewLineStringFlat(geom.XY, flat)
		if err := mls.Push(ls); err != nil {
			zap.L().Debug("loader: skipping malformed linestring part",
				zap.Int32("part", i), zap.Error(err))
		}
	}
	if mls.NumLineStrings() == 0 {
		return nil
	}
	return mls
}

func polygonToMultiPolygon(p *shp.Polygon) geom.T {
	if p == nil || p.NumParts == 0 || len(p.Points) == 0 {
		return nil
	}
	// Shapefile rings arrive as flat parts; outer rings wind clockwise and
	// holes counterclockwise. Each outer ring starts a new polygon.
	mp := geom.NewMultiPolygon(geom.XY)
	var current *geom.Polygon
	for i := int32(0); i < p.NumParts; i++ {
		start, end := partRange(p.Parts, i, p.NumParts, len(p.Points))
		flat := make([]float64, 0, 2*(end-start))
		for j := start; j < end; j++ {
			flat = append(flat, p.Points[j].X, p.Points[j].Y)
		}
		ring := geom.NewLinearRingFlat(geom.XY, flat)

		if isClockwise(flat) || current == nil {
			if current != nil {
				if err := mp.Push(current); err != nil {
					zap.L().Debug("loader: skipping malformed polygon part", zap.Error(err))
				}
			}
			current = geom.NewPolygon(geom.XY)
		}
		if err := current.Push(ring); err != nil {
			zap.L().Debug("loader: skipping malformed ring", zap.Int32("part", i), zap.Error(err))
		}
	}
	if current != nil {
		if err := mp.Push(current); err != nil {
			zap.L().Debug("loader: skipping malformed polygon part", zap.Error(err))
		}
	}
	if mp.NumPolygons() == 0 {
		return nil
	}
	return mp
}

func partRange(parts []int32, i, numParts int32, total int) (int32, int32) {
	start := parts[i]
	if i+1 < numParts {
		return start, parts[i+1]
	}
	return start, int32(total)
}

func isClockwise(flat []float64) bool {
	var sum float64
	n := len(flat) / 2
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		sum += flat[2*i]*flat[2*j+1] - flat[2*j]*flat[2*i+1]
	}
	return sum < 0
}

// sniffValue parses numeric-looking DBF/CSV strings to float64 and maps the
// empty string to null.
func sniffValue(s string) any {
	if s == "" {
		return nil
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return s
}
