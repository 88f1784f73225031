package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix prefixes every runtime environment variable, e.g. STATIONQA_LOG_LEVEL.
const EnvPrefix = "STATIONQA"

// Config holds process-level settings, populated from environment variables.
// Per-run settings (date range, QA limits, paths) live in Settings.
type Config struct {
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"json"`

	// MetricsAddr serves /healthz, /readyz, /status and /metrics for the duration of a
	// run when set, e.g. ":9102".
	MetricsAddr string `envconfig:"METRICS_ADDR"`
	// MetricsTextfile writes the final metrics in Prometheus text format when
	// set, for node_exporter's textfile collector.
	MetricsTextfile string `envconfig:"METRICS_TEXTFILE"`

	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"5s"`
}

// Load reads configuration from the environment, applying defaults where
// unset. Variables in the given dotenv files are loaded first without
// overriding the real environment; missing files are skipped.
func Load(dotenv ...string) (*Config, error) {
	for _, f := range dotenv {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", f, err)
		}
	}

	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("load config from env: %w", err)
	}

	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return nil, fmt.Errorf("invalid %s_LOG_LEVEL %q", EnvPrefix, cfg.LogLevel)
	}
	switch cfg.LogFormat {
	case "json", "text":
	default:
		return nil, fmt.Errorf("invalid %s_LOG_FORMAT %q", EnvPrefix, cfg.LogFormat)
	}
	if cfg.ShutdownTimeout <= 0 {
		return nil, errors.New("invalid " + EnvPrefix + "_SHUTDOWN_TIMEOUT: must be positive")
	}

	return &cfg, nil
}
