// Package render rasterizes geometry collections into choropleth images for
// the CLI. It consumes the core's outputs; nothing in the core depends on it.
package render

import (
	"image"
	"image/color"
	"image/png"
	"io"
	"math"

	"github.com/chai2010/webp"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/geokit/pkg/geodata"
	"github.com/sells-group/geokit/pkg/relate"

	"github.com/twpayne/go-geom"
)

// Options configures choropleth rendering.
type Options struct {
	// Width in pixels; height follows the data aspect ratio. 0 means 800.
	Width int
	// Quality for lossy WebP output; 0 means 85.
	Quality float32
}

// Choropleth renders the collection's polygons colored by the named numeric
// attribute. Pixels are classified by sampling their center point against the
// geometries, so the output honors exactly the same containment semantics as
// the zonal extractor. Geometries with a null or non-numeric attribute render
// gray.
func Choropleth(c *geodata.Collection, attr string, opts Options) (image.Image, error) {
	if c.Len() == 0 {
		return nil, eris.New("render: empty collection")
	}
	if c.Attrs() == nil || !c.Attrs().HasColumn(attr) {
		return nil, eris.Wrapf(geodata.ErrKeyNotFound, "render attribute %q", attr)
	}

	width := opts.Width
	if width <= 0 {
		width = 800
	}

	minX, minY, maxX, maxY := collectionBounds(c)
	spanX, spanY := maxX-minX, maxY-minY
	if spanX <= 0 || spanY <= 0 {
		return nil, eris.New("render: degenerate extent")
	}
	height := int(math.Ceil(float64(width) * spanY / spanX))

	vals := make([]float64, c.Len())
	has := make([]bool, c.Len())
	lo, hi := math.Inf(1), math.Inf(-1)
	for i := 0; i < c.Len(); i++ {
		if v, ok := c.Attrs().Float(i, attr); ok {
			vals[i], has[i] = v, true
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
	}

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	relator := relate.Planar{}
	scaleX := spanX / float64(width)
	scaleY := spanY / float64(height)

	for py := 0; py < height; py++ {
		y := maxY - (float64(py)+0.5)*scaleY
		for px := 0; px < width; px++ {
			x := minX + (float64(px)+0.5)*scaleX
			pt := geom.NewPointFlat(geom.XY, []float64{x, y})
			img.Set(px, py, color.White)
			for i := 0; i < c.Len(); i++ {
				ok, err := relator.Intersects(pt, c.Geom(i))
				if err != nil || !ok {
					continue
				}
				if has[i] {
					img.Set(px, py, rampColor(normalize(vals[i], lo, hi)))
				} else {
					img.Set(px, py, color.Gray{Y: 0xb0})
				}
				break
			}
		}
	}

	zap.L().Debug("render: choropleth rasterized",
		zap.Int("width", width),
		zap.Int("height", height),
		zap.String("attr", attr),
	)
	return img, nil
}

// WritePNG encodes the image as PNG.
func WritePNG(w io.Writer, img image.Image) error {
	if err := png.Encode(w, img); err != nil {
		return eris.Wrap(err, "render: encode png")
	}
	return nil
}

// WriteWebP encodes the image as lossy WebP.
func WriteWebP(w io.Writer, img image.Image, quality float32) error {
	if quality <= 0 {
		quality = 85
	}
	if err := webp.Encode(w, img, &webp.Options{Lossless: false, Quality: quality}); err != nil {
		return eris.Wrap(err, "render: encode webp")
	}
	return nil
}

func collectionBounds(c *geodata.Collection) (minX, minY, maxX, maxY float64) {
	minX, minY = math.Inf(1), math.Inf(1)
	maxX, maxY = math.Inf(-1), math.Inf(-1)
	for i := 0; i < c.Len(); i++ {
		b := c.Geom(i).Bounds()
		minX = math.Min(minX, b.Min(0))
		minY = math.Min(minY, b.Min(1))
		maxX = math.Max(maxX, b.Max(0))
		maxY = math.Max(maxY, b.Max(1))
	}
	return
}

func normalize(v, lo, hi float64) float64 {
	if hi <= lo {
		return 0.5
	}
	return (v - lo) / (hi - lo)
}

// rampColor maps [0,1] onto a blue→yellow ramp.
func rampColor(t float64) color.RGBA {
	t = math.Max(0, math.Min(1, t))
	return color.RGBA{
		R: uint8(40 + 215*t),
		G: uint8(60 + 180*t),
		B: uint8(180 - 140*t),
		A: 0xff,
	}
}
