// Command validate checks that one date directory of GSLA artifacts is
// internally consistent: the metadata and value documents agree on bounds and
// shape, and the data texture decodes back to the exported values.
//
// Usage:
//
//	go run ./cmd/validate -dir data/GSLA/25-04-25
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
	"path/filepath"

	"github.com/couchcryptid/ocean-current-etl/internal/domain"
	"gonum.org/v1/gonum/floats"
)

// rangeTolerance absorbs float64 formatting noise in the JSON documents.
const rangeTolerance = 1e-9

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

// artifacts holds the decoded contents of one date directory.
type artifacts struct {
	meta   domain.MetaDocument
	values domain.ValueDocument
	input  image.Image
}

func main() {
	dir := flag.String("dir", "", "date directory containing the artifact set")
	flag.Parse()

	if *dir == "" {
		flag.Usage()
		os.Exit(1)
	}

	if code := run(*dir); code != 0 {
		os.Exit(code)
	}
}

func run(dir string) int {
	fmt.Printf("=== GSLA Artifact Validation: %s ===\n", dir)

	a, err := load(dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: %v\n", err)
		return 1
	}

	phases := []*phase{
		validateBoundsParity(a),
		validateShape(a),
		validateRawRanges(a),
		validateTexture(a),
		validatePixelLookup(a),
	}

	fmt.Println()
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	fmt.Println()
	fmt.Printf("Grid: %dx%d, bounds %v\n", a.meta.Width, a.meta.Height,
		domain.Bounds{Lat: a.meta.LatRange, Lon: a.meta.LonRange}.ClientBounds())

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

// ── Data loading ──

func load(dir string) (*artifacts, error) {
	var a artifacts
	if err := loadJSON(filepath.Join(dir, domain.MetaFile), &a.meta); err != nil {
		return nil, err
	}
	if err := loadJSON(filepath.Join(dir, domain.DataFile), &a.values); err != nil {
		return nil, err
	}
	f, err := os.Open(filepath.Join(dir, domain.InputFile))
	if err != nil {
		return nil, err
	}
	defer f.Close()
	a.input, err = png.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", domain.InputFile, err)
	}
	return &a, nil
}

func loadJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}
	return nil
}

// ── Phases ──

func validateBoundsParity(a *artifacts) *phase {
	p := &phase{name: "Bounds parity (meta vs data)"}
	if !sameRange(a.meta.LatRange, a.values.LatRange) {
		p.errorf("latRange: meta %v, data %v", a.meta.LatRange, a.values.LatRange)
	}
	if !sameRange(a.meta.LonRange, a.values.LonRange) {
		p.errorf("lonRange: meta %v, data %v", a.meta.LonRange, a.values.LonRange)
	}
	if a.meta.LatRange[0] >= a.meta.LatRange[1] {
		p.errorf("latRange %v is not increasing", a.meta.LatRange)
	}
	if a.meta.LonRange[0] >= a.meta.LonRange[1] {
		p.errorf("lonRange %v is not increasing", a.meta.LonRange)
	}
	return p
}

func validateShape(a *artifacts) *phase {
	p := &phase{name: "Shape (meta, data, texture)"}
	if a.meta.Width != a.values.Width || a.meta.Height != a.values.Height {
		p.errorf("meta is %dx%d, data is %dx%d", a.meta.Width, a.meta.Height, a.values.Width, a.values.Height)
	}
	if len(a.values.Data) != a.values.Height {
		p.errorf("data has %d rows, height is %d", len(a.values.Data), a.values.Height)
	}
	for y, row := range a.values.Data {
		if len(row) != a.values.Width {
			p.errorf("data row %d has %d cells, width is %d", y, len(row), a.values.Width)
		}
	}
	b := a.input.Bounds()
	if b.Dx() != a.meta.Width || b.Dy() != a.meta.Height {
		p.errorf("texture is %dx%d, meta is %dx%d", b.Dx(), b.Dy(), a.meta.Width, a.meta.Height)
	}
	return p
}

// validateRawRanges checks that every valid cell's velocity is inside the raw
// range or is the zero fill of a missing component.
func validateRawRanges(a *artifacts) *phase {
	p := &phase{name: "Raw velocity ranges"}
	for y, row := range a.values.Data {
		for x, cell := range row {
			if cell[2] != 1 {
				continue
			}
			checkRaw(p, "u", a.meta.URange, cell[0], x, y)
			checkRaw(p, "v", a.meta.VRange, cell[1], x, y)
		}
	}
	return p
}

func checkRaw(p *phase, name string, r *domain.Range, value float64, x, y int) {
	if r == nil {
		if value != 0 {
			p.errorf("(%d,%d) %s=%g but %sRange is null", x, y, name, value, name)
		}
		return
	}
	if value != 0 && (value < r[0]-rangeTolerance || value > r[1]+rangeTolerance) {
		p.errorf("(%d,%d) %s=%g outside %sRange %v", x, y, name, value, name, *r)
	}
}

// validateTexture decodes every pixel the way the map client does and
// compares it with the value document.
func validateTexture(a *artifacts) *phase {
	p := &phase{name: "Texture decodes to data"}
	if !shapesAgree(a) {
		p.errorf("skipped: shapes disagree")
		return p
	}
	uRange := fillRange(a.values, 0)
	vRange := fillRange(a.values, 1)
	uTol := (uRange[1]-uRange[0])/255/2 + rangeTolerance
	vTol := (vRange[1]-vRange[0])/255/2 + rangeTolerance

	b := a.input.Bounds()
	for y, row := range a.values.Data {
		for x, cell := range row {
			px := color.NRGBAModel.Convert(a.input.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA)
			valid := cell[2] == 1
			if valid != (px.B == 255) {
				p.errorf("(%d,%d) blue=%d but valid=%g", x, y, px.B, cell[2])
			}
			if px.B != 0 && px.B != 255 {
				p.errorf("(%d,%d) blue=%d is not 0 or 255", x, y, px.B)
			}
			if u := domain.DecodeChannel(px.R, uRange); math.Abs(u-cell[0]) > uTol {
				p.errorf("(%d,%d) red decodes to u=%g, data has %g", x, y, u, cell[0])
			}
			if v := domain.DecodeChannel(px.G, vRange); math.Abs(v-cell[1]) > vTol {
				p.errorf("(%d,%d) green decodes to v=%g, data has %g", x, y, v, cell[1])
			}
		}
	}
	return p
}

// validatePixelLookup maps every cell centre through the client's
// coordinate-to-pixel lookup and expects the same cell back.
func validatePixelLookup(a *artifacts) *phase {
	p := &phase{name: "Coordinate lookup round-trip"}
	bounds := domain.Bounds{Lat: a.meta.LatRange, Lon: a.meta.LonRange}
	w, h := a.meta.Width, a.meta.Height
	if w == 0 || h == 0 {
		p.errorf("empty grid")
		return p
	}
	cellW := (bounds.Lon[1] - bounds.Lon[0]) / float64(w)
	cellH := (bounds.Lat[1] - bounds.Lat[0]) / float64(h)
	for y := range h {
		for x := range w {
			lon := bounds.Lon[0] + (float64(x)+0.5)*cellW
			lat := bounds.Lat[1] - (float64(y)+0.5)*cellH
			gx, gy, ok := bounds.LngLatToPixel(lon, lat, w, h)
			if !ok || gx != x || gy != y {
				p.errorf("centre of (%d,%d) at %.4f,%.4f resolves to (%d,%d) ok=%t", x, y, lon, lat, gx, gy, ok)
			}
		}
	}
	return p
}

// ── Helpers ──

func sameRange(a, b domain.Range) bool {
	return math.Abs(a[0]-b[0]) <= rangeTolerance && math.Abs(a[1]-b[1]) <= rangeTolerance
}

func shapesAgree(a *artifacts) bool {
	b := a.input.Bounds()
	if b.Dx() != a.values.Width || b.Dy() != a.values.Height || len(a.values.Data) != a.values.Height {
		return false
	}
	for _, row := range a.values.Data {
		if len(row) != a.values.Width {
			return false
		}
	}
	return true
}

// fillRange is the min/max of one tuple component over every cell, which is
// the range the encoder scaled against.
func fillRange(doc domain.ValueDocument, component int) domain.Range {
	values := make([]float64, 0, doc.Width*doc.Height)
	for _, row := range doc.Data {
		for _, cell := range row {
			values = append(values, cell[component])
		}
	}
	if len(values) == 0 {
		return domain.Range{}
	}
	return domain.Range{floats.Min(values), floats.Max(values)}
}
