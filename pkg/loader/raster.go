package loader

import (
	"image/color"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"golang.org/x/image/tiff"

	"github.com/sells-group/geokit/pkg/geodata"
	"github.com/sells-group/geokit/pkg/zonal"
)

// TIFFGrid reads a single-band grayscale TIFF raster plus its ESRI world
// file sidecar (same path with a .tfw extension) into a grid. Rotated world
// files are rejected; the grid model is strictly north-up.
func TIFFGrid(path string, frame geodata.Frame, opts ...zonal.GridOption) (*zonal.Grid, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "loader: open raster %s", path)
	}
	defer func() { _ = f.Close() }()

	img, err := tiff.Decode(f)
	if err != nil {
		return nil, eris.Wrapf(err, "loader: decode raster %s", path)
	}

	world, err := readWorldFile(worldFilePath(path))
	if err != nil {
		return nil, err
	}

	b := img.Bounds()
	cols, rows := b.Dx(), b.Dy()
	values := make([]float64, 0, cols*rows)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			values = append(values, sampleValue(img.At(x, y)))
		}
	}

	return zonal.NewGrid(frame,
		world.originX, world.originY, world.dx, world.dy,
		cols, rows, values, opts...)
}

// sampleValue reads a pixel as a band value. Gray variants map directly;
// anything else collapses to 16-bit luminance.
func sampleValue(c color.Color) float64 {
	switch g := c.(type) {
	case color.Gray:
		return float64(g.Y)
	case color.Gray16:
		return float64(g.Y)
	default:
		r, _, _, _ := c.RGBA()
		return float64(r)
	}
}

type worldFile struct {
	dx, dy           float64
	originX, originY float64
}

func worldFilePath(rasterPath string) string {
	ext := filepath.Ext(rasterPath)
	return strings.TrimSuffix(rasterPath, ext) + ".tfw"
}

// readWorldFile parses the six-line ESRI world file format: x pixel size,
// two rotation terms, negative y pixel size, and the center coordinates of
// the upper-left pixel.
func readWorldFile(path string) (*worldFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "loader: read world file %s", path)
	}
	lines := strings.Fields(strings.TrimSpace(string(data)))
	if len(lines) != 6 {
		return nil, eris.Errorf("loader: world file %s has %d values, want 6", path, len(lines))
	}
	vals := make([]float64, 6)
	for i, l := range lines {
		v, err := strconv.ParseFloat(l, 64)
		if err != nil {
			return nil, eris.Wrapf(err, "loader: world file %s value %d", path, i+1)
		}
		vals[i] = v
	}
	if vals[1] != 0 || vals[2] != 0 {
		return nil, eris.Errorf("loader: world file %s declares rotation, not supported", path)
	}
	dx := vals[0]
	dy := -vals[3]
	if dx <= 0 || dy <= 0 {
		return nil, eris.Errorf("loader: world file %s cell sizes dx=%g dy=%g", path, dx, dy)
	}
	// The world file locates the center of the upper-left pixel; the grid
	// origin is that pixel's upper-left corner.
	return &worldFile{
		dx:      dx,
		dy:      dy,
		originX: vals[4] - dx/2,
		originY: vals[5] + dy/2,
	}, nil
}
