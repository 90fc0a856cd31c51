package domain

import "time"

// Artifact file names, written directly inside a date directory.
const (
	MetaFile    = "gsla_meta.json"
	DataFile    = "gsla_data.json"
	InputFile   = "gsla_input.png"
	OverlayFile = "gsla_overlay.png"
)

// dirLayout is the date directory name format, e.g. "25-04-25".
const dirLayout = "06-01-02"

// DirName names the output directory for a date.
func DirName(date time.Time) string {
	return date.Format(dirLayout)
}

// ParseDirName is the inverse of DirName.
func ParseDirName(name string) (time.Time, error) {
	return time.Parse(dirLayout, name)
}

// ArtifactSet describes the files written for one date.
type ArtifactSet struct {
	Date  time.Time    `json:"date"`
	Dir   string       `json:"dir"`
	Files []string     `json:"files"`
	Meta  MetaDocument `json:"meta"`
}

// DateWindow returns days consecutive dates, oldest first, ending lag days
// before today (UTC, truncated to midnight).
func DateWindow(days, lag int) []time.Time {
	end := Today().AddDate(0, 0, -lag)
	dates := make([]time.Time, 0, days)
	for i := days - 1; i >= 0; i-- {
		dates = append(dates, end.AddDate(0, 0, -i))
	}
	return dates
}
