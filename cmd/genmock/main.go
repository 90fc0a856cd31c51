// Command genmock writes the artifact set of a synthetic GSLA grid: a
// warm-core eddy with geostrophic currents over a patch of ocean, with a
// block of land cells missing. The output exercises the same exporter the
// service uses, so client fixtures match real pipeline behaviour.
//
// Usage:
//
//	go run ./cmd/genmock -out data/mock/GSLA -date 2025-04-25 -rows 41 -cols 61
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"math"
	"os"
	"sort"
	"time"

	"github.com/couchcryptid/ocean-current-etl/internal/adapter/filesystem"
	"github.com/couchcryptid/ocean-current-etl/internal/adapter/overlay"
	"github.com/couchcryptid/ocean-current-etl/internal/domain"
	"github.com/couchcryptid/ocean-current-etl/internal/observability"
	"github.com/couchcryptid/ocean-current-etl/internal/pipeline"
)

// Eddy parameters in degrees and metres.
const (
	eddyAmplitude = 0.35
	eddyRadius    = 2.5
	cellSize      = 0.2
	velocityGain  = 1.8
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	out := flag.String("out", "data/mock/GSLA", "artifact root directory")
	dateArg := flag.String("date", "2025-04-25", "snapshot date (YYYY-MM-DD)")
	rows := flag.Int("rows", 41, "grid rows (latitudes)")
	cols := flag.Int("cols", 61, "grid columns (longitudes)")
	withOverlay := flag.Bool("overlay", true, "also render the heatmap overlay")
	flag.Parse()

	if *rows < 2 || *cols < 2 {
		flag.Usage()
		return fmt.Errorf("grid must be at least 2x2, got %dx%d", *rows, *cols)
	}
	date, err := time.Parse(time.DateOnly, *dateArg)
	if err != nil {
		return fmt.Errorf("parse -date: %w", err)
	}

	g, err := synthesize(date, *rows, *cols)
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	var renderer pipeline.OverlayRenderer
	if *withOverlay {
		renderer = overlay.NewRenderer(4)
	}
	exporter := pipeline.NewExporter(filesystem.NewStore(*out, logger), renderer, logger, observability.NewMetrics())

	set, err := exporter.Export(context.Background(), g, domain.DirName(date))
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}
	log.Printf("wrote %d artifacts to %s/%s", len(set.Files), *out, set.Dir)

	printStats(g, set.Meta)
	return nil
}

// synthesize builds a south-west Pacific grid around an eddy centred in the
// box. Cells in the north-west corner are land.
func synthesize(date time.Time, rows, cols int) (*domain.Grid, error) {
	lat0, lon0 := -38.0, 148.0
	lats := make([]float64, rows)
	for i := range lats {
		lats[i] = lat0 + float64(i)*cellSize
	}
	lons := make([]float64, cols)
	for j := range lons {
		lons[j] = lon0 + float64(j)*cellSize
	}
	cLat := lats[rows/2]
	cLon := lons[cols/2]

	gsla := make([][]float64, rows)
	u := make([][]float64, rows)
	v := make([][]float64, rows)
	for i := range rows {
		gsla[i] = make([]float64, cols)
		u[i] = make([]float64, cols)
		v[i] = make([]float64, cols)
		for j := range cols {
			if i >= rows*3/4 && j < cols/4 {
				gsla[i][j], u[i][j], v[i][j] = math.NaN(), math.NaN(), math.NaN()
				continue
			}
			dy := lats[i] - cLat
			dx := lons[j] - cLon
			eta := eddyAmplitude * math.Exp(-(dx*dx+dy*dy)/(eddyRadius*eddyRadius))
			// Southern hemisphere geostrophy: anticlockwise flow around a high.
			k := velocityGain * 2 * eta / (eddyRadius * eddyRadius)
			gsla[i][j] = eta
			u[i][j] = -k * dy
			v[i][j] = k * dx
		}
	}

	fields := make([]domain.Field, 0, 3)
	for _, rowsOf := range [][][]float64{gsla, u, v} {
		f, err := domain.FieldFromRows(rowsOf)
		if err != nil {
			return nil, err
		}
		fields = append(fields, f)
	}
	return domain.NewGrid(date, lats, lons, fields[0], fields[1], fields[2])
}

type directionCount struct {
	direction string
	count     int
}

func printStats(g *domain.Grid, meta domain.MetaDocument) {
	u, v := g.UVelocity(), g.VVelocity()
	var valid int
	var maxSpeed float64
	directions := map[string]int{}
	for i := range g.Rows() {
		for j := range g.Cols() {
			uu, uok := u.At(i, j)
			vv, vok := v.At(i, j)
			if !uok && !vok {
				continue
			}
			valid++
			maxSpeed = max(maxSpeed, domain.Speed(uu, vv))
			directions[domain.CompassDirection(uu, vv)]++
		}
	}

	fmt.Println("\n=== Stats for updating test assertions ===")
	fmt.Printf("Size: %dx%d, valid cells: %d\n", meta.Width, meta.Height, valid)
	fmt.Printf("Lat range: %v, lon range: %v\n", meta.LatRange, meta.LonRange)
	if meta.URange != nil && meta.VRange != nil {
		fmt.Printf("U range: %v, V range: %v\n", *meta.URange, *meta.VRange)
	}
	fmt.Printf("Max speed: %.3f m/s\n", maxSpeed)

	dc := make([]directionCount, 0, len(directions))
	for d, c := range directions {
		dc = append(dc, directionCount{d, c})
	}
	sort.Slice(dc, func(i, j int) bool {
		if dc[i].count != dc[j].count {
			return dc[i].count > dc[j].count
		}
		return dc[i].direction < dc[j].direction
	})
	fmt.Print("Directions: ")
	for _, d := range dc {
		fmt.Printf("%s=%d ", d.direction, d.count)
	}
	fmt.Println()
}
