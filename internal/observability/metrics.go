package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "gsla_etl"

// Metrics holds the Prometheus counters, histograms, and gauges for the artifact pipeline.
type Metrics struct {
	DatesProcessed  *prometheus.CounterVec // labels: outcome={success,missing,failed}
	PipelineRunning prometheus.Gauge

	// Per-artifact metrics.
	ArtifactsWritten *prometheus.CounterVec   // labels: artifact
	ArtifactFailures *prometheus.CounterVec   // labels: artifact
	ArtifactBytes    *prometheus.HistogramVec // labels: artifact
	ExportDuration   prometheus.Histogram

	DegenerateRanges *prometheus.CounterVec // labels: field={u,v}
	Notifications    *prometheus.CounterVec // labels: outcome={success,error}
}

// NewMetrics creates and registers all pipeline metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()

	prometheus.MustRegister(
		m.DatesProcessed,
		m.PipelineRunning,
		m.ArtifactsWritten,
		m.ArtifactFailures,
		m.ArtifactBytes,
		m.ExportDuration,
		m.DegenerateRanges,
		m.Notifications,
	)

	return m
}

// NewMetricsForTesting creates Metrics without registering them to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		DatesProcessed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dates_processed_total",
			Help:      "Dates processed by outcome.",
		}, []string{"outcome"}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pipeline_running",
			Help:      "1 while a date window is being processed, 0 otherwise.",
		}),
		ArtifactsWritten: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "artifacts_written_total",
			Help:      "Artifact files written by artifact name.",
		}, []string{"artifact"}),
		ArtifactFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "artifact_failures_total",
			Help:      "Artifact encode or write failures by artifact name.",
		}, []string{"artifact"}),
		ArtifactBytes: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "artifact_bytes",
			Help:      "Size of written artifact files in bytes.",
			Buckets:   prometheus.ExponentialBuckets(1024, 4, 8),
		}, []string{"artifact"}),
		ExportDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "export_duration_seconds",
			Help:      "Duration of normalizing one grid and writing its artifact set.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
		DegenerateRanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "degenerate_ranges_total",
			Help:      "Velocity components whose filled min equalled their max.",
		}, []string{"field"}),
		Notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_total",
			Help:      "Artifact set notifications by outcome.",
		}, []string{"outcome"}),
	}
}
