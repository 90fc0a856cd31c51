// Package overlay renders a human-viewable sea level anomaly heatmap that sits
// on the same geographic bounds as the encoded raster.
package overlay

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/couchcryptid/ocean-current-etl/internal/domain"
)

const (
	// paletteSize is the number of colours anomalies are bucketed into.
	paletteSize = 64

	// pointsPerInch renders one point per pixel.
	pointsPerInch = 72
)

// Renderer draws the GSLA field as a PNG heatmap, one scale x scale block
// per grid cell, with missing cells left transparent.
// It implements pipeline.OverlayRenderer.
type Renderer struct {
	scale   int
	palette palette.Palette
}

// NewRenderer creates a Renderer. Scales below 1 are raised to 1.
func NewRenderer(scale int) *Renderer {
	if scale < 1 {
		scale = 1
	}
	cmap := moreland.SmoothBlueRed()
	cmap.SetMin(0)
	cmap.SetMax(1)
	return &Renderer{scale: scale, palette: cmap.Palette(paletteSize)}
}

// Render returns the encoded PNG for g. A grid with no present anomaly
// renders as a fully transparent image of the same size.
func (r *Renderer) Render(g *domain.Grid) ([]byte, error) {
	rng, ok := g.SeaLevelAnomaly().Range()
	if !ok {
		return r.blank(g)
	}

	hm := plotter.NewHeatMap(newGridXYZ(g), r.palette)
	hm.NaN = color.Transparent
	hm.Min, hm.Max = rng[0], rng[1]
	if hm.Max == hm.Min {
		hm.Max = hm.Min + 1
	}

	p := plot.New()
	p.BackgroundColor = color.Transparent
	p.HideAxes()
	p.X.Padding, p.Y.Padding = 0, 0
	p.Add(hm)

	w := vg.Length(g.Cols() * r.scale)
	h := vg.Length(g.Rows() * r.scale)
	c := vgimg.NewWith(
		vgimg.UseWH(w, h),
		vgimg.UseDPI(pointsPerInch),
		vgimg.UseBackgroundColor(color.Transparent),
	)
	p.Draw(draw.New(c))

	var buf bytes.Buffer
	if _, err := (vgimg.PngCanvas{Canvas: c}).WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("encode overlay: %w", err)
	}
	return buf.Bytes(), nil
}

func (r *Renderer) blank(g *domain.Grid) ([]byte, error) {
	img := image.NewNRGBA(image.Rect(0, 0, g.Cols()*r.scale, g.Rows()*r.scale))
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode overlay: %w", err)
	}
	return buf.Bytes(), nil
}

// gridXYZ exposes a grid's GSLA to plotter.HeatMap. Columns are longitudes,
// rows are latitudes, and missing cells are NaN.
type gridXYZ struct {
	lats, lons []float64
	gsla       domain.Field
}

func newGridXYZ(g *domain.Grid) gridXYZ {
	return gridXYZ{lats: g.Latitudes(), lons: g.Longitudes(), gsla: g.SeaLevelAnomaly()}
}

func (x gridXYZ) Dims() (c, r int) { return len(x.lons), len(x.lats) }

func (x gridXYZ) Z(c, r int) float64 {
	v, ok := x.gsla.At(r, c)
	if !ok {
		return math.NaN()
	}
	return v
}

func (x gridXYZ) X(c int) float64 { return x.lons[c] }
func (x gridXYZ) Y(r int) float64 { return x.lats[r] }
