// Command gsla encodes daily gridded sea level anomaly snapshots into the
// artifact sets consumed by the ocean current map client.
//
// With no arguments it processes the configured date window, repeating every
// RUN_INTERVAL when set, and serves health, metrics and artifacts over HTTP.
// Dates given as YYYY-MM-DD arguments are processed once and the command exits.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/couchcryptid/ocean-current-etl/internal/adapter/filesystem"
	httpadapter "github.com/couchcryptid/ocean-current-etl/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/ocean-current-etl/internal/adapter/kafka"
	"github.com/couchcryptid/ocean-current-etl/internal/adapter/netcdf"
	"github.com/couchcryptid/ocean-current-etl/internal/adapter/overlay"
	"github.com/couchcryptid/ocean-current-etl/internal/config"
	"github.com/couchcryptid/ocean-current-etl/internal/observability"
	"github.com/couchcryptid/ocean-current-etl/internal/pipeline"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	dates, err := parseDates(os.Args[1:])
	if err != nil {
		logger.Error("invalid arguments", "error", err)
		os.Exit(2)
	}

	source := netcdf.NewSource(cfg.SourceDir, netcdf.Box{
		LatMin: cfg.LatMin, LatMax: cfg.LatMax,
		LonMin: cfg.LonMin, LonMax: cfg.LonMax,
	}, logger)
	store := filesystem.NewStore(cfg.OutputDir, logger)

	// Overlay rendering (feature-flagged via OVERLAY_ENABLED).
	var renderer pipeline.OverlayRenderer
	if cfg.OverlayEnabled {
		renderer = overlay.NewRenderer(cfg.OverlayScale)
		logger.Info("overlay rendering enabled", "scale", cfg.OverlayScale)
	}

	// Artifact notifications (enabled when KAFKA_BROKERS is set).
	var notifier pipeline.Notifier
	var kafkaNotifier *kafkaadapter.Notifier
	if cfg.KafkaEnabled() {
		kafkaNotifier = kafkaadapter.NewNotifier(cfg, logger)
		notifier = kafkaNotifier
		logger.Info("kafka notifications enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)
	}

	exporter := pipeline.NewExporter(store, renderer, logger, metrics)
	p := pipeline.New(source, exporter, notifier, logger, metrics, pipeline.Options{
		Workers:       cfg.Workers,
		WindowDays:    cfg.WindowDays,
		WindowLagDays: cfg.WindowLagDays,
		RunInterval:   cfg.RunInterval,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var code int
	if len(dates) > 0 {
		code = runOnce(ctx, p, dates, logger)
	} else {
		code = serve(ctx, cfg, p, logger)
	}

	if kafkaNotifier != nil {
		if err := kafkaNotifier.Close(); err != nil {
			logger.Error("kafka notifier close error", "error", err)
		}
	}
	logger.Info("shutdown complete")
	if code != 0 {
		os.Exit(code)
	}
}

// runOnce processes explicitly requested dates in order. A date without
// source data is an error here, unlike in the rolling window.
func runOnce(ctx context.Context, p *pipeline.Pipeline, dates []time.Time, logger *slog.Logger) int {
	code := 0
	for _, date := range dates {
		if err := p.ProcessDate(ctx, date); err != nil {
			logger.Error("date failed", "date", date.Format(time.DateOnly), "error", err)
			code = 1
		}
		if ctx.Err() != nil {
			return 1
		}
	}
	return code
}

// serve runs the HTTP server alongside the windowed pipeline until the
// pipeline finishes or a signal arrives.
func serve(ctx context.Context, cfg *config.Config, p *pipeline.Pipeline, logger *slog.Logger) int {
	srv := httpadapter.NewServer(cfg.HTTPAddr, p, cfg.OutputDir, logger)

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Start pipeline.
	done := make(chan error, 1)
	go func() {
		done <- p.Run(ctx)
	}()

	code := 0
	select {
	case err := <-done:
		if err != nil {
			logger.Error("pipeline error", "error", err)
			code = 1
		}
	case <-ctx.Done():
		<-done
	}
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	return code
}

func parseDates(args []string) ([]time.Time, error) {
	dates := make([]time.Time, 0, len(args))
	for _, arg := range args {
		d, err := time.Parse(time.DateOnly, arg)
		if err != nil {
			return nil, fmt.Errorf("date %q: want YYYY-MM-DD", arg)
		}
		dates = append(dates, d)
	}
	return dates, nil
}
