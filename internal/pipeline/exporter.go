package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"sync"
	"time"

	"github.com/couchcryptid/ocean-current-etl/internal/domain"
	"github.com/couchcryptid/ocean-current-etl/internal/observability"
)

// ArtifactSink stores encoded artifact files in date directories.
type ArtifactSink interface {
	Prepare(ctx context.Context, dir string) error
	Put(ctx context.Context, dir, name string, data []byte) error
}

// OverlayRenderer draws the styled preview image for a grid.
type OverlayRenderer interface {
	Render(g *domain.Grid) ([]byte, error)
}

// Exporter turns one grid into its artifact set.
type Exporter struct {
	sink    ArtifactSink
	overlay OverlayRenderer
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewExporter creates an Exporter. Pass a nil overlay renderer to skip the
// overlay artifact.
func NewExporter(sink ArtifactSink, overlay OverlayRenderer, logger *slog.Logger, metrics *observability.Metrics) *Exporter {
	return &Exporter{
		sink:    sink,
		overlay: overlay,
		logger:  logger,
		metrics: metrics,
	}
}

type artifactJob struct {
	name   string
	encode func() ([]byte, error)
}

// Export normalizes g once and writes every artifact into dir. Artifacts are
// encoded and written concurrently; a failing artifact does not stop the
// others. Each failure is returned as a *domain.ArtifactError, joined with
// errors.Join. The returned set lists the files that were written.
func (e *Exporter) Export(ctx context.Context, g *domain.Grid, dir string) (domain.ArtifactSet, error) {
	start := time.Now()
	set := domain.ArtifactSet{Date: g.Date(), Dir: dir}

	if err := e.sink.Prepare(ctx, dir); err != nil {
		return set, &domain.ArtifactError{Date: g.Date(), Artifact: dir, Err: err}
	}

	n := domain.Normalize(g)
	e.reportDegenerate(g, n)
	set.Meta = domain.BuildMeta(g)

	jobs := []artifactJob{
		{name: domain.MetaFile, encode: func() ([]byte, error) { return json.MarshalIndent(set.Meta, "", "    ") }},
		{name: domain.DataFile, encode: func() ([]byte, error) { return json.Marshal(domain.BuildValues(g, n)) }},
		{name: domain.InputFile, encode: func() ([]byte, error) { return encodePNG(domain.EncodeRaster(g, n)) }},
	}
	if e.overlay != nil {
		jobs = append(jobs, artifactJob{name: domain.OverlayFile, encode: func() ([]byte, error) { return e.overlay.Render(g) }})
	}

	errs := make([]error, len(jobs))
	var wg sync.WaitGroup
	for i, job := range jobs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs[i] = e.write(ctx, dir, job)
		}()
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			errs[i] = &domain.ArtifactError{Date: g.Date(), Artifact: jobs[i].name, Err: err}
			e.metrics.ArtifactFailures.WithLabelValues(jobs[i].name).Inc()
			e.logger.Error("artifact failed", "date", dir, "artifact", jobs[i].name, "error", err)
			continue
		}
		set.Files = append(set.Files, jobs[i].name)
	}

	e.metrics.ExportDuration.Observe(time.Since(start).Seconds())
	return set, errors.Join(errs...)
}

func (e *Exporter) write(ctx context.Context, dir string, job artifactJob) error {
	data, err := job.encode()
	if err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	if err := e.sink.Put(ctx, dir, job.name, data); err != nil {
		return err
	}
	e.metrics.ArtifactsWritten.WithLabelValues(job.name).Inc()
	e.metrics.ArtifactBytes.WithLabelValues(job.name).Observe(float64(len(data)))
	return nil
}

func (e *Exporter) reportDegenerate(g *domain.Grid, n *domain.Normalized) {
	fields := []struct {
		name       string
		degenerate bool
	}{{"u", n.UDegenerate}, {"v", n.VDegenerate}}
	for _, f := range fields {
		if !f.degenerate {
			continue
		}
		e.metrics.DegenerateRanges.WithLabelValues(f.name).Inc()
		e.logger.Warn("velocity component scaled to zero",
			"date", domain.DirName(g.Date()),
			"field", f.name,
			"error", domain.ErrDegenerateRange,
		)
	}
}

func encodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
