package domain

// MetaDocument is the gsla_meta.json payload. URange and VRange are the
// min/max of present samples and are null when a component is all missing.
type MetaDocument struct {
	LatRange Range  `json:"latRange"`
	LonRange Range  `json:"lonRange"`
	URange   *Range `json:"uRange"`
	VRange   *Range `json:"vRange"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
}

// ValueDocument is the gsla_data.json payload. Data is north-up, one
// [u, v, valid, gsla] tuple per cell with missing values as 0 and valid as 0
// or 1.
type ValueDocument struct {
	Width    int            `json:"width"`
	Height   int            `json:"height"`
	LatRange Range          `json:"latRange"`
	LonRange Range          `json:"lonRange"`
	Data     [][][4]float64 `json:"data"`
}

// BuildMeta summarizes the grid's bounds, dimensions and raw velocity ranges.
func BuildMeta(g *Grid) MetaDocument {
	b := g.Bounds()
	doc := MetaDocument{
		LatRange: b.Lat,
		LonRange: b.Lon,
		Width:    g.Cols(),
		Height:   g.Rows(),
	}
	if r, ok := g.u.Range(); ok {
		doc.URange = &r
	}
	if r, ok := g.v.Range(); ok {
		doc.VRange = &r
	}
	return doc
}

// BuildValues dumps every cell's unscaled values in the same row order as
// EncodeRaster.
func BuildValues(g *Grid, n *Normalized) ValueDocument {
	b := g.Bounds()
	data := make([][][4]float64, n.Rows)
	for y := range data {
		src := g.SourceRow(y)
		row := make([][4]float64, n.Cols)
		for x := range row {
			k := n.At(src, x)
			var valid float64
			if n.Valid[k] {
				valid = 1
			}
			row[x] = [4]float64{n.UFilled[k], n.VFilled[k], valid, n.GSLAFilled[k]}
		}
		data[y] = row
	}
	return ValueDocument{
		Width:    g.Cols(),
		Height:   g.Rows(),
		LatRange: b.Lat,
		LonRange: b.Lon,
		Data:     data,
	}
}
