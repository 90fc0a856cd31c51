// Package domain models a daily gridded sea-level anomaly (GSLA) snapshot and
// the artifacts a map client consumes from it.
//
// # Data Source
//
// Snapshots come from the IMOS OceanCurrent GSLA near-real-time product: one
// NetCDF file per day with a regular latitude/longitude grid and three
// variables sampled at every cell:
//
//	GSLA  gridded sea-level anomaly (m)
//	UCUR  eastward geostrophic current velocity (m/s)
//	VCUR  northward geostrophic current velocity (m/s)
//
// Cells over land, or where the altimetry is not valid, carry the variable's
// fill value. They are modelled as missing samples in a [Field], never as zero.
//
// # Artifacts
//
// Each date produces one directory named "YY-MM-DD" (see [DirName]) holding:
//
//	gsla_meta.json   bounds, raw u/v ranges, width and height
//	gsla_data.json   every cell as [u, v, valid, gsla] with bounds
//	gsla_input.png   RGBA data texture: R=u, G=v, B=valid, A=255
//	gsla_overlay.png styled preview of GSLA (not read back by anything here)
//
// # Conventions
//
// Grid coordinates name cell centers. Bounds written to the artifacts are cell
// edges: half a cell is added past the outermost centers, with the cell size
// taken as (max-min)/count. Latitudes are stored ascending, but image row 0
// and data row 0 are the northernmost grid row. Both conversions live in
// georef.go.
//
// The byte channels of gsla_input.png are scaled with the min/max of the
// zero-filled velocity series, while gsla_meta.json reports the min/max of
// the present samples only. Clients decode a channel as
//
//	value/255*(max-min) + min
//
// using the meta ranges, which is exact only when no cell was filled.
package domain
