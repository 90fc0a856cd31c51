package domain

import (
	"encoding/json"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildMeta_Scenario(t *testing.T) {
	meta := BuildMeta(scenarioGrid(t))

	want := MetaDocument{
		LatRange: Range{-12.5, 2.5},
		LonRange: Range{97.5, 112.5},
		URange:   &Range{1, 4},
		VRange:   &Range{1, 4},
		Width:    2,
		Height:   2,
	}
	if diff := cmp.Diff(want, meta); diff != "" {
		t.Fatalf("meta mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildMeta_AllMissingRangeIsNull(t *testing.T) {
	missing := mustField(t, [][]float64{{nan}})
	g, err := NewGrid(testDate, []float64{0}, []float64{0}, missing, missing, missing)
	require.NoError(t, err)

	data, err := json.Marshal(BuildMeta(g))
	require.NoError(t, err)
	assert.JSONEq(t, `{"latRange":[0,0],"lonRange":[0,0],"uRange":null,"vRange":null,"width":1,"height":1}`, string(data))
}

func TestBuildValues_Scenario(t *testing.T) {
	g := scenarioGrid(t)
	doc := BuildValues(g, Normalize(g))

	assert.Equal(t, 2, doc.Width)
	assert.Equal(t, 2, doc.Height)
	want := [][][4]float64{
		{{3, 0, 1, 0.3}, {4, 4, 1, 0.4}},
		{{1, 1, 1, 0.1}, {0, 2, 1, 0}},
	}
	if diff := cmp.Diff(want, doc.Data); diff != "" {
		t.Fatalf("data mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildValues_JSONKeys(t *testing.T) {
	g := scenarioGrid(t)
	data, err := json.Marshal(BuildValues(g, Normalize(g)))
	require.NoError(t, err)

	var doc map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &doc))
	for _, key := range []string{"width", "height", "latRange", "lonRange", "data"} {
		assert.Contains(t, doc, key)
	}
}

func TestDocuments_AgreeWithEachOtherAndRaster(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	for iter := 0; iter < 25; iter++ {
		rows, cols := 1+rng.IntN(5), 1+rng.IntN(5)
		g := randomGrid(t, rng, rows, cols)
		n := Normalize(g)
		meta, values, img := BuildMeta(g), BuildValues(g, n), EncodeRaster(g, n)

		// Bounds are bit-identical between documents.
		assert.Equal(t, meta.LatRange, values.LatRange)
		assert.Equal(t, meta.LonRange, values.LonRange)

		// Dimensions round-trip through the data array.
		require.Len(t, values.Data, values.Height)
		for _, row := range values.Data {
			assert.Len(t, row, values.Width)
		}
		assert.Equal(t, values.Width, img.Bounds().Dx())
		assert.Equal(t, values.Height, img.Bounds().Dy())

		// Row 0 of both artifacts is the northernmost grid row.
		north := rows - 1
		for j := 0; j < cols; j++ {
			k := n.At(north, j)
			assert.Equal(t, n.UFilled[k], values.Data[0][j][0])
			assert.Equal(t, n.UScaled[k], img.Pix[img.PixOffset(j, 0)])
			assert.Equal(t, values.Data[0][j][2] == 1, img.Pix[img.PixOffset(j, 0)+2] == 255)
		}
	}
}

func TestDirName(t *testing.T) {
	assert.Equal(t, "25-04-25", DirName(testDate))
	assert.Equal(t, "24-12-01", DirName(time.Date(2024, time.December, 1, 23, 0, 0, 0, time.UTC)))
}

func TestParseDirName(t *testing.T) {
	d, err := ParseDirName(DirName(testDate))
	require.NoError(t, err)
	assert.Equal(t, testDate, d)

	_, err = ParseDirName("2025-04-25")
	assert.Error(t, err)
}

func TestDateWindow(t *testing.T) {
	SetClock(clockwork.NewFakeClockAt(time.Date(2025, time.April, 28, 15, 10, 0, 0, time.UTC)))
	t.Cleanup(func() { SetClock(nil) })

	dates := DateWindow(7, 3)
	require.Len(t, dates, 7)
	assert.Equal(t, time.Date(2025, time.April, 19, 0, 0, 0, 0, time.UTC), dates[0])
	assert.Equal(t, time.Date(2025, time.April, 25, 0, 0, 0, 0, time.UTC), dates[6])
}

func TestToday_UsesUTCDate(t *testing.T) {
	sydney := time.FixedZone("AEST", 10*60*60)
	SetClock(clockwork.NewFakeClockAt(time.Date(2025, time.April, 29, 8, 0, 0, 0, sydney)))
	t.Cleanup(func() { SetClock(nil) })

	assert.Equal(t, time.Date(2025, time.April, 28, 0, 0, 0, 0, time.UTC), Today())
}

func TestArtifactError(t *testing.T) {
	inner := assert.AnError
	err := &ArtifactError{Date: testDate, Artifact: MetaFile, Err: inner}
	assert.Equal(t, "25-04-25 gsla_meta.json: "+inner.Error(), err.Error())
	assert.ErrorIs(t, err, inner)
}
