package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/ocean-current-etl/internal/domain"
	"github.com/couchcryptid/ocean-current-etl/internal/observability"
	"github.com/jonboulle/clockwork"
)

// GridSource supplies the grid snapshot for a calendar date. It returns an
// error wrapping domain.ErrMissingSourceData when the date has no snapshot.
type GridSource interface {
	Load(ctx context.Context, date time.Time) (*domain.Grid, error)
}

// Notifier announces a completed artifact set to downstream consumers.
type Notifier interface {
	Notify(ctx context.Context, set domain.ArtifactSet) error
}

// Options tunes the date loop.
type Options struct {
	// Workers is the number of dates processed in parallel.
	Workers int

	// WindowDays dates ending WindowLagDays before today are processed per run.
	WindowDays    int
	WindowLagDays int

	// RunInterval repeats the window on this period. Zero runs once.
	RunInterval time.Duration

	// Clock drives the repeat timer. Defaults to the real clock.
	Clock clockwork.Clock
}

// Pipeline orchestrates the load-export-notify cycle over a window of dates.
type Pipeline struct {
	source   GridSource
	exporter *Exporter
	notifier Notifier
	logger   *slog.Logger
	metrics  *observability.Metrics
	opts     Options
	ready    atomic.Bool
}

// New creates a Pipeline. Pass a nil notifier to disable notifications.
func New(source GridSource, exporter *Exporter, notifier Notifier, logger *slog.Logger, metrics *observability.Metrics, opts Options) *Pipeline {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	return &Pipeline{
		source:   source,
		exporter: exporter,
		notifier: notifier,
		logger:   logger,
		metrics:  metrics,
		opts:     opts,
	}
}

// CheckReadiness returns nil once the pipeline has completed a run,
// or an error describing why the service is not yet ready.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("pipeline has not completed a run yet")
	}
	return nil
}

// Run processes the configured date window, then repeats every RunInterval
// until the context is cancelled. With no interval it returns the result of
// the single run.
func (p *Pipeline) Run(ctx context.Context) error {
	p.logger.Info("pipeline started",
		"window_days", p.opts.WindowDays,
		"window_lag_days", p.opts.WindowLagDays,
		"workers", p.opts.Workers,
		"run_interval", p.opts.RunInterval,
	)

	for {
		err := p.RunDates(ctx, domain.DateWindow(p.opts.WindowDays, p.opts.WindowLagDays))
		if p.opts.RunInterval <= 0 {
			return err
		}
		if err != nil {
			p.logger.Error("run finished with failures", "error", err)
		}

		timer := p.opts.Clock.NewTimer(p.opts.RunInterval)
		select {
		case <-ctx.Done():
			timer.Stop()
			p.logger.Info("pipeline stopping", "reason", ctx.Err())
			return nil
		case <-timer.Chan():
		}
	}
}

// RunDates processes dates with a bounded worker pool. Dates without source
// data are logged and skipped; every other failure is returned, joined.
func (p *Pipeline) RunDates(ctx context.Context, dates []time.Time) error {
	p.metrics.PipelineRunning.Set(1)
	defer p.metrics.PipelineRunning.Set(0)

	datesCh := make(chan time.Time)
	var (
		mu   sync.Mutex
		errs []error
		wg   sync.WaitGroup
	)
	for range p.opts.Workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for date := range datesCh {
				err := p.ProcessDate(ctx, date)
				switch {
				case err == nil:
				case errors.Is(err, domain.ErrMissingSourceData):
					p.logger.Warn("no source data, skipping date", "date", domain.DirName(date), "error", err)
				default:
					mu.Lock()
					errs = append(errs, err)
					mu.Unlock()
				}
			}
		}()
	}

feed:
	for _, date := range dates {
		select {
		case <-ctx.Done():
			break feed
		case datesCh <- date:
		}
	}
	close(datesCh)
	wg.Wait()

	if ctx.Err() == nil {
		p.ready.Store(true)
	}
	return errors.Join(errs...)
}

// ProcessDate loads, exports and announces the artifact set for one date.
func (p *Pipeline) ProcessDate(ctx context.Context, date time.Time) error {
	dir := domain.DirName(date)

	g, err := p.source.Load(ctx, date)
	if err != nil {
		if errors.Is(err, domain.ErrMissingSourceData) {
			p.metrics.DatesProcessed.WithLabelValues("missing").Inc()
		} else {
			p.metrics.DatesProcessed.WithLabelValues("failed").Inc()
		}
		return fmt.Errorf("load %s: %w", dir, err)
	}

	set, err := p.exporter.Export(ctx, g, dir)
	if err != nil {
		p.metrics.DatesProcessed.WithLabelValues("failed").Inc()
		return fmt.Errorf("export %s: %w", dir, err)
	}

	p.metrics.DatesProcessed.WithLabelValues("success").Inc()
	p.logger.Info("artifact set written", "date", dir, "files", set.Files)
	p.notify(ctx, set)
	return nil
}

// notify publishes the artifact set if a notifier is configured. Failures are
// logged and counted but do not fail the date; the artifacts are already on disk.
func (p *Pipeline) notify(ctx context.Context, set domain.ArtifactSet) {
	if p.notifier == nil {
		return
	}
	if err := p.notifier.Notify(ctx, set); err != nil {
		p.metrics.Notifications.WithLabelValues("error").Inc()
		p.logger.Warn("artifact notification failed", "date", set.Dir, "error", err)
		return
	}
	p.metrics.Notifications.WithLabelValues("success").Inc()
}
