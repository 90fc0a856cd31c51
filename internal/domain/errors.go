package domain

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrMissingSourceData is returned by a grid source when no snapshot exists
	// for the requested date.
	ErrMissingSourceData = errors.New("missing source data")

	// ErrInvalidGrid is returned when grid axes or fields are malformed.
	ErrInvalidGrid = errors.New("invalid grid")

	// ErrDegenerateRange marks a field whose filled min equals its max. It is
	// only ever logged; Normalize scales such a field to zero.
	ErrDegenerateRange = errors.New("degenerate range")
)

// ArtifactError reports a failure to produce one artifact for one date.
type ArtifactError struct {
	Date     time.Time
	Artifact string
	Err      error
}

func (e *ArtifactError) Error() string {
	return fmt.Sprintf("%s %s: %v", DirName(e.Date), e.Artifact, e.Err)
}

func (e *ArtifactError) Unwrap() error { return e.Err }
