package netcdf

import (
	"context"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/batchatco/go-native-netcdf/netcdf/api"
	"github.com/batchatco/go-native-netcdf/netcdf/cdf"
	"github.com/batchatco/go-native-netcdf/netcdf/util"
	"github.com/couchcryptid/ocean-current-etl/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// attrMap is a minimal api.AttributeMap for tests.
type attrMap map[string]any

func (m attrMap) Keys() []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	return keys
}

func (m attrMap) Get(key string) (any, bool) {
	v, ok := m[key]
	return v, ok
}

func (m attrMap) GetType(string) (string, bool)   { return "", false }
func (m attrMap) GetGoType(string) (string, bool) { return "", false }

func TestConvert_FillValueAndNaN(t *testing.T) {
	slab := [][]float32{{1.5, 999, float32(math.NaN())}}
	rows := convert(slab, attrMap{"_FillValue": float32(999)})

	assert.Equal(t, 1.5, rows[0][0])
	assert.True(t, math.IsNaN(rows[0][1]))
	assert.True(t, math.IsNaN(rows[0][2]))
}

func TestConvert_ScaleAndOffset(t *testing.T) {
	slab := [][]int16{{100, -32768, -50}}
	rows := convert(slab, attrMap{
		"_FillValue":   []int16{-32768},
		"scale_factor": 0.01,
		"add_offset":   float32(1),
	})

	assert.InDelta(t, 2.0, rows[0][0], 1e-12)
	assert.True(t, math.IsNaN(rows[0][1]))
	assert.InDelta(t, 0.5, rows[0][2], 1e-12)
}

func TestConvert_NoAttributes(t *testing.T) {
	rows := convert([][]float64{{0, -1}}, nil)
	assert.Equal(t, [][]float64{{0, -1}}, rows)
}

func TestSelectIndices(t *testing.T) {
	t.Run("ascending axis", func(t *testing.T) {
		idx := selectIndices([]float64{-60, -50, -25, 0, 10}, -50, 0)
		assert.Equal(t, []int{1, 2, 3}, idx)
	})

	t.Run("descending axis is flipped", func(t *testing.T) {
		idx := selectIndices([]float64{10, 0, -25, -50, -60}, -50, 0)
		assert.Equal(t, []int{3, 2, 1}, idx)
	})

	t.Run("nothing inside", func(t *testing.T) {
		assert.Empty(t, selectIndices([]float64{200, 210}, 110, 170))
	})
}

func TestSubset(t *testing.T) {
	rows := [][]float64{{1, 2, 3}, {4, 5, 6}, {7, 8, 9}}
	assert.Equal(t, [][]float64{{9, 8}, {3, 2}}, subset(rows, []int{2, 0}, []int{2, 1}))
}

func TestSource_Find(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{
		"IMOS_OceanCurrent_HV_20250424T000000Z_GSLA_FV02_NRT.nc",
		"IMOS_OceanCurrent_HV_20250425T000000Z_GSLA_FV02_NRT.nc",
		"notes_20250426.txt",
	} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o644))
	}
	s := NewSource(dir, Box{-50, 0, 110, 170}, slog.Default())

	path, err := s.find(time.Date(2025, time.April, 25, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, "IMOS_OceanCurrent_HV_20250425T000000Z_GSLA_FV02_NRT.nc", filepath.Base(path))

	_, err = s.find(time.Date(2025, time.April, 26, 0, 0, 0, 0, time.UTC))
	assert.ErrorIs(t, err, domain.ErrMissingSourceData)
}

func TestSource_LoadMissingDir(t *testing.T) {
	s := NewSource(filepath.Join(t.TempDir(), "absent"), Box{-50, 0, 110, 170}, slog.Default())
	_, err := s.Load(context.Background(), time.Date(2025, time.April, 25, 0, 0, 0, 0, time.UTC))
	assert.ErrorIs(t, err, domain.ErrMissingSourceData)
}

const fillValue = 999999.0

// writeFixture writes a one-step [TIME][LATITUDE][LONGITUDE] file with a
// descending latitude axis, the layout of the daily NRT product.
func writeFixture(t *testing.T, path string) {
	t.Helper()
	lats := []float64{10, 0, -10}
	lons := []float64{100, 120, 130}

	cube := func(f func(i, j int) float64) [][][]float64 {
		out := make([][][]float64, 1)
		out[0] = make([][]float64, len(lats))
		for i := range lats {
			out[0][i] = make([]float64, len(lons))
			for j := range lons {
				out[0][i][j] = f(i, j)
			}
		}
		return out
	}
	fill, err := util.NewOrderedMap([]string{"_FillValue"}, map[string]interface{}{"_FillValue": fillValue})
	require.NoError(t, err)

	grid := []string{"TIME", "LATITUDE", "LONGITUDE"}
	cw, err := cdf.OpenWriter(path)
	require.NoError(t, err)
	require.NoError(t, cw.AddVar("TIME", api.Variable{Values: []float64{27143}, Dimensions: []string{"TIME"}}))
	require.NoError(t, cw.AddVar(varLatitude, api.Variable{Values: lats, Dimensions: []string{"LATITUDE"}}))
	require.NoError(t, cw.AddVar(varLongitude, api.Variable{Values: lons, Dimensions: []string{"LONGITUDE"}}))
	require.NoError(t, cw.AddVar(varGSLA, api.Variable{
		Values: cube(func(i, j int) float64 {
			if i == 1 && j == 1 {
				return fillValue
			}
			return float64(10*i + j)
		}),
		Dimensions: grid,
		Attributes: fill,
	}))
	require.NoError(t, cw.AddVar(varU, api.Variable{
		Values:     cube(func(i, j int) float64 { return float64(i - j) }),
		Dimensions: grid,
		Attributes: fill,
	}))
	require.NoError(t, cw.AddVar(varV, api.Variable{
		Values:     cube(func(i, j int) float64 { return float64(i + j) }),
		Dimensions: grid,
		Attributes: fill,
	}))
	require.NoError(t, cw.Close())
}

func TestSource_Load(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, filepath.Join(dir, "IMOS_OceanCurrent_HV_20250425T000000Z_GSLA_FV02_NRT.nc"))
	s := NewSource(dir, Box{-50, 0, 110, 170}, slog.Default())

	g, err := s.Load(context.Background(), time.Date(2025, time.April, 25, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	assert.Equal(t, []float64{-10, 0}, g.Latitudes())
	assert.Equal(t, []float64{120, 130}, g.Longitudes())

	gsla := g.SeaLevelAnomaly()
	missing := 0
	for i := range g.Rows() {
		for j := range g.Cols() {
			if _, ok := gsla.At(i, j); !ok {
				missing++
			}
		}
	}
	assert.Equal(t, 1, missing)
	_, ok := gsla.At(1, 0)
	assert.False(t, ok, "fill value at lat 0 lon 120")

	// Row 0 is latitude -10, the last row in the file.
	v, ok := gsla.At(0, 1)
	require.True(t, ok)
	assert.Equal(t, 22.0, v)
	v, ok = gsla.At(1, 1)
	require.True(t, ok)
	assert.Equal(t, 12.0, v)

	u, ok := g.UVelocity().At(0, 0)
	require.True(t, ok)
	assert.Equal(t, 1.0, u)
	vv, ok := g.VVelocity().At(1, 1)
	require.True(t, ok)
	assert.Equal(t, 3.0, vv)
}
