package main

import (
	"testing"
	"time"

	"github.com/couchcryptid/ocean-current-etl/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSynthesize(t *testing.T) {
	date := time.Date(2025, time.April, 25, 0, 0, 0, 0, time.UTC)
	g, err := synthesize(date, 9, 12)
	require.NoError(t, err)

	assert.Equal(t, 9, g.Rows())
	assert.Equal(t, 12, g.Cols())

	// North-west corner is land.
	_, ok := g.SeaLevelAnomaly().At(8, 0)
	assert.False(t, ok)

	// The anomaly peaks at the eddy centre.
	peak, ok := g.SeaLevelAnomaly().At(4, 6)
	require.True(t, ok)
	assert.InDelta(t, eddyAmplitude, peak, 1e-12)

	// Flow is anticlockwise: eastward south of the centre, northward east of it.
	south, ok := g.UVelocity().At(0, 6)
	require.True(t, ok)
	assert.Positive(t, south)
	east, ok := g.VVelocity().At(4, 11)
	require.True(t, ok)
	assert.Positive(t, east)

	meta := domain.BuildMeta(g)
	assert.Equal(t, 12, meta.Width)
	assert.Equal(t, 9, meta.Height)
	assert.NotNil(t, meta.URange)
}
