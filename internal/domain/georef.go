package domain

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Range is a closed [min, max] interval.
type Range [2]float64

// Bounds is a pixel-edge bounding box.
type Bounds struct {
	Lat Range
	Lon Range
}

// PixelEdgeBounds converts cell-center axes to an edge bounding box by
// extending each axis by half a cell, where a cell spans (max-min)/count.
// Both axes must be non-empty.
func PixelEdgeBounds(lats, lons []float64) Bounds {
	return Bounds{Lat: edgeRange(lats), Lon: edgeRange(lons)}
}

func edgeRange(centers []float64) Range {
	lo, hi := floats.Min(centers), floats.Max(centers)
	half := 0.5 * (hi - lo) / float64(len(centers))
	return Range{lo - half, hi + half}
}

// Bounds returns the grid's pixel-edge bounding box.
func (g *Grid) Bounds() Bounds {
	return PixelEdgeBounds(g.latitudes, g.longitudes)
}

// SourceRow maps an output row (0 = north) to the grid row it shows. Grid rows
// are stored south to north, so the mapping is a reversal.
func (g *Grid) SourceRow(outputRow int) int {
	return len(g.latitudes) - 1 - outputRow
}

// ClientBounds returns the box in the map client's [west, north, east, south]
// order.
func (b Bounds) ClientBounds() [4]float64 {
	return [4]float64{b.Lon[0], b.Lat[1], b.Lon[1], b.Lat[0]}
}

// LngLatToPixel maps a coordinate to the pixel of a width x height north-up
// image covering b. ok is false outside the image.
func (b Bounds) LngLatToPixel(lon, lat float64, width, height int) (x, y int, ok bool) {
	fx := (lon - b.Lon[0]) / (b.Lon[1] - b.Lon[0]) * float64(width)
	fy := (b.Lat[1] - lat) / (b.Lat[1] - b.Lat[0]) * float64(height)
	x, y = int(math.Floor(fx)), int(math.Floor(fy))
	ok = x >= 0 && x < width && y >= 0 && y < height
	return x, y, ok
}
