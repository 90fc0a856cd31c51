package domain

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Normalized holds the per-cell values every artifact is built from. Slices
// are row-major in grid order (row 0 = southernmost latitude) and must not be
// modified.
type Normalized struct {
	Rows, Cols int

	// Valid is false only where both u and v are missing.
	Valid []bool

	UFilled, VFilled, GSLAFilled []float64

	// UScaled and VScaled map the filled series onto 0..255 using
	// UFillRange and VFillRange.
	UScaled, VScaled       []uint8
	UFillRange, VFillRange Range

	// UDegenerate and VDegenerate report a zero-width fill range; the scaled
	// series is then all zero.
	UDegenerate, VDegenerate bool
}

// Normalize fills missing samples with zero, derives the validity mask and
// rescales the filled velocity components to bytes. It is total over any grid
// accepted by NewGrid.
func Normalize(g *Grid) *Normalized {
	n := &Normalized{
		Rows:       g.Rows(),
		Cols:       g.Cols(),
		Valid:      make([]bool, g.Rows()*g.Cols()),
		UFilled:    g.u.filled(),
		VFilled:    g.v.filled(),
		GSLAFilled: g.gsla.filled(),
	}
	for k := range n.Valid {
		n.Valid[k] = g.u.present[k] || g.v.present[k]
	}
	n.UScaled, n.UFillRange, n.UDegenerate = rescale(n.UFilled)
	n.VScaled, n.VFillRange, n.VDegenerate = rescale(n.VFilled)
	return n
}

// rescale maps values linearly onto 0..255 by their own min and max. A
// constant series maps to all zeros and is reported as degenerate.
func rescale(values []float64) (scaled []uint8, r Range, degenerate bool) {
	r = Range{floats.Min(values), floats.Max(values)}
	scaled = make([]uint8, len(values))
	span := r[1] - r[0]
	if span == 0 {
		return scaled, r, true
	}
	for k, v := range values {
		scaled[k] = clampByte(math.Round(255 * (v - r[0]) / span))
	}
	return scaled, r, false
}

func clampByte(v float64) uint8 {
	switch {
	case math.IsNaN(v), v <= 0:
		return 0
	case v >= 255:
		return 255
	default:
		return uint8(v)
	}
}

// At returns the flat index of grid cell (i, j).
func (n *Normalized) At(i, j int) int { return i*n.Cols + j }
