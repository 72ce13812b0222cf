package main

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"strconv"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom/encoding/geojson"

	"github.com/sells-group/geokit/pkg/geodata"
)

// writeGeoJSON writes a collection as a GeoJSON FeatureCollection.
func writeGeoJSON(path string, c *geodata.Collection) error {
	features := make([]*geojson.Feature, 0, c.Len())
	for i := 0; i < c.Len(); i++ {
		var props map[string]interface{}
		if c.Attrs() != nil {
			props = c.Attrs().Row(i)
		}
		features = append(features, &geojson.Feature{
			ID:         strconv.Itoa(i),
			Geometry:   c.Geom(i),
			Properties: props,
		})
	}
	fc := geojson.FeatureCollection{Features: features}

	data, err := json.MarshalIndent(&fc, "", "  ")
	if err != nil {
		return eris.Wrap(err, "geokit: marshal geojson")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return eris.Wrapf(err, "geokit: write %s", path)
	}
	return nil
}

// writeCSV writes rows with a header to path.
func writeCSV(path string, header []string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "geokit: create %s", path)
	}
	defer func() { _ = f.Close() }()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return eris.Wrap(err, "geokit: write csv header")
	}
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			return eris.Wrap(err, "geokit: write csv row")
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return eris.Wrap(err, "geokit: flush csv")
	}
	return nil
}

// withValueColumn attaches a per-geometry value column to a collection's
// attribute table, using nil for absent values.
func withValueColumn(c *geodata.Collection, name string, values []*float64) (*geodata.Collection, error) {
	if attrs := c.Attrs(); attrs != nil && attrs.HasColumn(name) {
		trimmed, err := c.WithAttrs(attrs.WithoutColumn(name))
		if err != nil {
			return nil, err
		}
		c = trimmed
	}
	columns := []string{name}
	var rows []geodata.Row
	if c.Attrs() != nil {
		columns = append(c.Attrs().Columns(), name)
	}
	for i := 0; i < c.Len(); i++ {
		var row geodata.Row
		if c.Attrs() != nil {
			row = c.Attrs().Row(i)
		} else {
			row = geodata.Row{}
		}
		if values[i] != nil {
			row[name] = *values[i]
		} else {
			row[name] = nil
		}
		rows = append(rows, row)
	}
	table, err := geodata.NewTable(columns, rows)
	if err != nil {
		return nil, err
	}
	return c.WithAttrs(table)
}
