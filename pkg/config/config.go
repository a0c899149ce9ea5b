package config

import (
	"fmt"
	"time"
)

// Config is the root configuration for the Callisto runtime.
type Config struct {
	Policy  PolicyConfig  `yaml:"policy"`
	Archive ArchiveConfig `yaml:"archive"`
	Metrics MetricsConfig `yaml:"metrics"`
	Logging LoggingConfig `yaml:"logging"`
}

// PolicyConfig controls where policy documents are loaded from and how they
// are refreshed.
type PolicyConfig struct {
	// Dir is the directory containing policy documents (.yaml/.yml).
	Dir string `yaml:"dir"`

	// Watch enables hot reload on file changes.
	Watch bool `yaml:"watch"`

	// DebounceInterval is how long to wait after a file event before
	// reloading, to absorb editor write bursts.
	DebounceInterval time.Duration `yaml:"debounce_interval"`

	// ReloadSchedule is an optional cron expression for periodic reloads
	// (e.g. "0 * * * *" for hourly). Empty disables scheduled reloads.
	ReloadSchedule string `yaml:"reload_schedule"`
}

// ArchiveConfig controls the snapshot archive.
type ArchiveConfig struct {
	// Enabled turns on archiving of loaded policy sets.
	Enabled bool `yaml:"enabled"`

	// Path is the SQLite database file path.
	Path string `yaml:"path"`
}

// MetricsConfig controls Prometheus metrics.
type MetricsConfig struct {
	// Enabled turns on metric collection.
	Enabled bool `yaml:"enabled"`

	// ListenAddress is where the /metrics endpoint is served.
	ListenAddress string `yaml:"listen_address"`

	// Namespace is the metric name prefix.
	Namespace string `yaml:"namespace"`

	// Subsystem is the metric subsystem label.
	Subsystem string `yaml:"subsystem"`
}

// LoggingConfig controls the root logger.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `yaml:"level"`

	// Format is the output format: "json" or "text".
	Format string `yaml:"format"`
}

// ApplyDefaults fills in default values for unset fields.
func ApplyDefaults(cfg *Config) {
	if cfg.Policy.Dir == "" {
		cfg.Policy.Dir = "policies"
	}
	if cfg.Policy.DebounceInterval == 0 {
		cfg.Policy.DebounceInterval = 100 * time.Millisecond
	}
	if cfg.Archive.Path == "" {
		cfg.Archive.Path = "data/archive.db"
	}
	if cfg.Metrics.ListenAddress == "" {
		cfg.Metrics.ListenAddress = ":9464"
	}
	if cfg.Metrics.Namespace == "" {
		cfg.Metrics.Namespace = "callisto"
	}
	if cfg.Metrics.Subsystem == "" {
		cfg.Metrics.Subsystem = "policy"
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "text"
	}
}

// Validate checks the configuration for invalid values.
func Validate(cfg *Config) error {
	switch cfg.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error; got %q", cfg.Logging.Level)
	}
	switch cfg.Logging.Format {
	case "json", "text":
	default:
		return fmt.Errorf("logging.format must be json or text; got %q", cfg.Logging.Format)
	}
	if cfg.Policy.DebounceInterval < 0 {
		return fmt.Errorf("policy.debounce_interval must not be negative")
	}
	return nil
}
