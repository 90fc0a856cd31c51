package domain

import (
	"fmt"
	"math"
	"slices"
	"time"
)

// Field is an immutable 2-D array of samples indexed [latitude][longitude],
// stored row-major with a parallel presence mask.
type Field struct {
	rows, cols int
	values     []float64
	present    []bool
}

// FieldFromRows copies rows into a Field. NaN marks a missing sample. All rows
// must have the same length.
func FieldFromRows(rows [][]float64) (Field, error) {
	f := Field{rows: len(rows)}
	if len(rows) > 0 {
		f.cols = len(rows[0])
	}
	f.values = make([]float64, 0, f.rows*f.cols)
	f.present = make([]bool, 0, f.rows*f.cols)
	for i, row := range rows {
		if len(row) != f.cols {
			return Field{}, fmt.Errorf("%w: row %d has %d values, want %d", ErrInvalidGrid, i, len(row), f.cols)
		}
		for _, v := range row {
			if math.IsNaN(v) {
				f.values = append(f.values, 0)
				f.present = append(f.present, false)
				continue
			}
			f.values = append(f.values, v)
			f.present = append(f.present, true)
		}
	}
	return f, nil
}

// Dims returns the number of rows and columns.
func (f Field) Dims() (rows, cols int) { return f.rows, f.cols }

// At returns the sample at row i, column j and whether it is present.
func (f Field) At(i, j int) (float64, bool) {
	k := i*f.cols + j
	return f.values[k], f.present[k]
}

// Range returns the min and max over present samples. ok is false when every
// sample is missing.
func (f Field) Range() (r Range, ok bool) {
	for k, v := range f.values {
		if !f.present[k] {
			continue
		}
		if !ok {
			r, ok = Range{v, v}, true
			continue
		}
		r[0] = math.Min(r[0], v)
		r[1] = math.Max(r[1], v)
	}
	return r, ok
}

// filled returns a row-major copy with missing samples replaced by 0.
func (f Field) filled() []float64 {
	out := make([]float64, len(f.values))
	for k, v := range f.values {
		if f.present[k] {
			out[k] = v
		}
	}
	return out
}

// Grid is a single-timestamp snapshot on a regular latitude/longitude grid.
// It is read-only once built.
type Grid struct {
	date       time.Time
	latitudes  []float64
	longitudes []float64
	gsla, u, v Field
}

// NewGrid validates and builds a Grid. Both axes must be non-empty and strictly
// ascending, and every field must be shaped (len(lats), len(lons)).
func NewGrid(date time.Time, lats, lons []float64, gsla, u, v Field) (*Grid, error) {
	if len(lats) == 0 || len(lons) == 0 {
		return nil, fmt.Errorf("%w: empty axis (%d latitudes, %d longitudes)", ErrInvalidGrid, len(lats), len(lons))
	}
	if err := checkAscending("latitude", lats); err != nil {
		return nil, err
	}
	if err := checkAscending("longitude", lons); err != nil {
		return nil, err
	}
	fields := []struct {
		name string
		f    Field
	}{{"gsla", gsla}, {"u", u}, {"v", v}}
	for _, fd := range fields {
		if r, c := fd.f.Dims(); r != len(lats) || c != len(lons) {
			return nil, fmt.Errorf("%w: %s is %dx%d, want %dx%d", ErrInvalidGrid, fd.name, r, c, len(lats), len(lons))
		}
	}
	return &Grid{
		date:       date,
		latitudes:  slices.Clone(lats),
		longitudes: slices.Clone(lons),
		gsla:       gsla,
		u:          u,
		v:          v,
	}, nil
}

func checkAscending(axis string, values []float64) error {
	for i := 1; i < len(values); i++ {
		if !(values[i] > values[i-1]) {
			return fmt.Errorf("%w: %s not strictly ascending at index %d", ErrInvalidGrid, axis, i)
		}
	}
	return nil
}

func (g *Grid) Date() time.Time { return g.date }

// Rows is the number of latitudes (image height).
func (g *Grid) Rows() int { return len(g.latitudes) }

// Cols is the number of longitudes (image width).
func (g *Grid) Cols() int { return len(g.longitudes) }

func (g *Grid) Latitudes() []float64  { return slices.Clone(g.latitudes) }
func (g *Grid) Longitudes() []float64 { return slices.Clone(g.longitudes) }

func (g *Grid) SeaLevelAnomaly() Field { return g.gsla }
func (g *Grid) UVelocity() Field       { return g.u }
func (g *Grid) VVelocity() Field       { return g.v }
