package netcdf

import (
	"math"

	"github.com/batchatco/go-native-netcdf/netcdf/api"
)

type number interface {
	~int16 | ~float32 | ~float64
}

// convert turns a packed slab into float64 rows, applying scale_factor and
// add_offset and mapping _FillValue and NaN to NaN.
func convert[T number](slab [][]T, attrs api.AttributeMap) [][]float64 {
	fill, hasFill := attrOf[T](attrs, "_FillValue")
	scale, ok := attrFloat(attrs, "scale_factor")
	if !ok {
		scale = 1
	}
	offset, _ := attrFloat(attrs, "add_offset")

	out := make([][]float64, len(slab))
	for i, row := range slab {
		out[i] = make([]float64, len(row))
		for j, x := range row {
			f := float64(x)
			if (hasFill && x == fill) || math.IsNaN(f) {
				out[i][j] = math.NaN()
				continue
			}
			out[i][j] = f*scale + offset
		}
	}
	return out
}

// attrOf reads a scalar (or first element of a vector) attribute of type T.
func attrOf[T any](attrs api.AttributeMap, key string) (T, bool) {
	var zero T
	if attrs == nil {
		return zero, false
	}
	v, ok := attrs.Get(key)
	if !ok {
		return zero, false
	}
	switch a := v.(type) {
	case T:
		return a, true
	case []T:
		if len(a) > 0 {
			return a[0], true
		}
	}
	return zero, false
}

func attrFloat(attrs api.AttributeMap, key string) (float64, bool) {
	if v, ok := attrOf[float64](attrs, key); ok {
		return v, true
	}
	if v, ok := attrOf[float32](attrs, key); ok {
		return float64(v), true
	}
	return 0, false
}
