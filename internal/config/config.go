package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	SourceDir string
	OutputDir string

	// Spatial subset applied to every source grid, inclusive.
	LatMin, LatMax float64
	LonMin, LonMax float64

	// Date window: WindowDays dates ending WindowLagDays before today.
	WindowDays    int
	WindowLagDays int
	Workers       int
	RunInterval   time.Duration

	OverlayEnabled bool
	OverlayScale   int

	// Kafka notifications are enabled when brokers are set.
	KafkaBrokers []string
	KafkaTopic   string

	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		SourceDir:       sharedcfg.EnvOrDefault("SOURCE_DIR", "data/source"),
		OutputDir:       sharedcfg.EnvOrDefault("OUTPUT_DIR", "data/GSLA"),
		KafkaTopic:      sharedcfg.EnvOrDefault("KAFKA_TOPIC", "gsla-artifacts"),
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,
		OverlayEnabled:  sharedcfg.EnvOrDefault("OVERLAY_ENABLED", "true") == "true",
	}
	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		cfg.KafkaBrokers = sharedcfg.ParseBrokers(brokers)
	}

	floats := []struct {
		key  string
		def  float64
		dest *float64
	}{
		{"LAT_MIN", -50, &cfg.LatMin},
		{"LAT_MAX", 0, &cfg.LatMax},
		{"LON_MIN", 110, &cfg.LonMin},
		{"LON_MAX", 170, &cfg.LonMax},
	}
	for _, f := range floats {
		if *f.dest, err = parseFloat(f.key, f.def); err != nil {
			return nil, err
		}
	}

	if cfg.WindowDays, err = parseInt("WINDOW_DAYS", 7, 1, 366); err != nil {
		return nil, err
	}
	if cfg.WindowLagDays, err = parseInt("WINDOW_LAG_DAYS", 3, 0, 366); err != nil {
		return nil, err
	}
	if cfg.Workers, err = parseInt("WORKERS", 2, 1, 32); err != nil {
		return nil, err
	}
	if cfg.OverlayScale, err = parseInt("OVERLAY_SCALE", 4, 1, 64); err != nil {
		return nil, err
	}

	runInterval, err := time.ParseDuration(sharedcfg.EnvOrDefault("RUN_INTERVAL", "0s"))
	if err != nil || runInterval < 0 {
		return nil, errors.New("invalid RUN_INTERVAL")
	}
	cfg.RunInterval = runInterval

	if cfg.LatMin >= cfg.LatMax {
		return nil, errors.New("LAT_MIN must be less than LAT_MAX")
	}
	if cfg.LonMin >= cfg.LonMax {
		return nil, errors.New("LON_MIN must be less than LON_MAX")
	}
	if cfg.OutputDir == "" {
		return nil, errors.New("OUTPUT_DIR is required")
	}

	return cfg, nil
}

// KafkaEnabled reports whether artifact notifications should be published.
func (c *Config) KafkaEnabled() bool {
	return len(c.KafkaBrokers) > 0
}

func parseFloat(key string, def float64) (float64, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}

func parseInt(key string, def, lo, hi int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < lo || n > hi {
		return 0, fmt.Errorf("invalid %s: must be an integer in [%d, %d]", key, lo, hi)
	}
	return n, nil
}
