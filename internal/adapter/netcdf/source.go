// Package netcdf loads daily GSLA snapshots from local NetCDF files.
package netcdf

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/batchatco/go-native-netcdf/netcdf"
	"github.com/batchatco/go-native-netcdf/netcdf/api"
	"github.com/couchcryptid/ocean-current-etl/internal/domain"
)

// Variable names in IMOS OceanCurrent GSLA files.
const (
	varLatitude  = "LATITUDE"
	varLongitude = "LONGITUDE"
	varGSLA      = "GSLA"
	varU         = "UCUR"
	varV         = "VCUR"
)

// Box is an inclusive latitude/longitude subset.
type Box struct {
	LatMin, LatMax float64
	LonMin, LonMax float64
}

// Source reads one file per day from a directory. A file belongs to a date
// when its name contains the date as YYYYMMDD.
// It implements pipeline.GridSource.
type Source struct {
	dir    string
	box    Box
	logger *slog.Logger
}

// NewSource creates a Source over dir that trims every grid to box.
func NewSource(dir string, box Box, logger *slog.Logger) *Source {
	return &Source{dir: dir, box: box, logger: logger}
}

// Load reads, subsets and validates the snapshot for date.
func (s *Source) Load(ctx context.Context, date time.Time) (*domain.Grid, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path, err := s.find(date)
	if err != nil {
		return nil, err
	}

	nc, err := netcdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer nc.Close()

	lats, err := axisValues(nc, varLatitude)
	if err != nil {
		return nil, err
	}
	lons, err := axisValues(nc, varLongitude)
	if err != nil {
		return nil, err
	}
	latIdx := selectIndices(lats, s.box.LatMin, s.box.LatMax)
	lonIdx := selectIndices(lons, s.box.LonMin, s.box.LonMax)
	if len(latIdx) == 0 || len(lonIdx) == 0 {
		return nil, fmt.Errorf("%w: %s has no cells inside %+v", domain.ErrInvalidGrid, filepath.Base(path), s.box)
	}

	fields := make([]domain.Field, 0, 3)
	for _, name := range []string{varGSLA, varU, varV} {
		rows, err := readSlab(nc, name)
		if err != nil {
			return nil, err
		}
		if len(rows) != len(lats) || len(rows[0]) != len(lons) {
			return nil, fmt.Errorf("%w: %s is %dx%d, axes are %dx%d", domain.ErrInvalidGrid, name, len(rows), len(rows[0]), len(lats), len(lons))
		}
		f, err := domain.FieldFromRows(subset(rows, latIdx, lonIdx))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		fields = append(fields, f)
	}

	s.logger.Debug("grid loaded",
		"file", filepath.Base(path),
		"rows", len(latIdx),
		"cols", len(lonIdx),
	)
	return domain.NewGrid(date, pick(lats, latIdx), pick(lons, lonIdx), fields[0], fields[1], fields[2])
}

// find returns the first NetCDF file in the directory whose name carries the date.
func (s *Source) find(date time.Time) (string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("source dir %s: %w", s.dir, domain.ErrMissingSourceData)
		}
		return "", fmt.Errorf("read source dir: %w", err)
	}
	stamp := date.Format("20060102")
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".nc") {
			continue
		}
		if strings.Contains(name, stamp) {
			return filepath.Join(s.dir, name), nil
		}
	}
	return "", fmt.Errorf("no file for %s in %s: %w", stamp, s.dir, domain.ErrMissingSourceData)
}

func axisValues(nc api.Group, name string) ([]float64, error) {
	v, err := nc.GetVariable(name)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	switch vals := v.Values.(type) {
	case []float64:
		return vals, nil
	case []float32:
		out := make([]float64, len(vals))
		for i, x := range vals {
			out[i] = float64(x)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%s has unsupported type %T", name, v.Values)
	}
}

// readSlab reads a [lat][lon] variable, taking the first time step of a
// [time][lat][lon] variable. Later steps are ignored: NRT files hold a
// single daily step. Fill values become NaN.
func readSlab(nc api.Group, name string) ([][]float64, error) {
	v, err := nc.GetVariable(name)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	var rows [][]float64
	switch vals := v.Values.(type) {
	case [][][]float64:
		rows = firstStep(vals, func(s [][]float64) [][]float64 { return convert(s, v.Attributes) })
	case [][][]float32:
		rows = firstStep(vals, func(s [][]float32) [][]float64 { return convert(s, v.Attributes) })
	case [][][]int16:
		rows = firstStep(vals, func(s [][]int16) [][]float64 { return convert(s, v.Attributes) })
	case [][]float64:
		rows = convert(vals, v.Attributes)
	case [][]float32:
		rows = convert(vals, v.Attributes)
	case [][]int16:
		rows = convert(vals, v.Attributes)
	default:
		return nil, fmt.Errorf("%s has unsupported type %T", name, v.Values)
	}
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, fmt.Errorf("%w: %s is empty", domain.ErrInvalidGrid, name)
	}
	return rows, nil
}

func firstStep[T any](steps [][][]T, conv func([][]T) [][]float64) [][]float64 {
	if len(steps) == 0 {
		return nil
	}
	return conv(steps[0])
}

// selectIndices returns the indices of values inside [lo, hi], ordered by
// ascending value so a descending axis comes out flipped.
func selectIndices(values []float64, lo, hi float64) []int {
	var idx []int
	for i, v := range values {
		if v >= lo && v <= hi {
			idx = append(idx, i)
		}
	}
	sort.SliceStable(idx, func(a, b int) bool { return values[idx[a]] < values[idx[b]] })
	return idx
}

func pick(values []float64, idx []int) []float64 {
	out := make([]float64, len(idx))
	for i, k := range idx {
		out[i] = values[k]
	}
	return out
}

func subset(rows [][]float64, rowIdx, colIdx []int) [][]float64 {
	out := make([][]float64, len(rowIdx))
	for i, r := range rowIdx {
		out[i] = pick(rows[r], colIdx)
	}
	return out
}
