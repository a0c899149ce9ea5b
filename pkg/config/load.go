package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Default returns the default configuration without reading any file.
func Default() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}

// Load loads configuration from a YAML file, applies defaults and environment
// variable overrides, and validates the result. Environment variables follow
// the naming convention CALLISTO_SECTION_FIELD (e.g. CALLISTO_POLICY_DIR) and
// always take precedence over file values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	ApplyDefaults(&cfg)
	applyEnvOverrides(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	overrideString("CALLISTO_POLICY_DIR", &cfg.Policy.Dir)
	overrideBool("CALLISTO_POLICY_WATCH", &cfg.Policy.Watch)
	overrideDuration("CALLISTO_POLICY_DEBOUNCE_INTERVAL", &cfg.Policy.DebounceInterval)
	overrideString("CALLISTO_POLICY_RELOAD_SCHEDULE", &cfg.Policy.ReloadSchedule)

	overrideBool("CALLISTO_ARCHIVE_ENABLED", &cfg.Archive.Enabled)
	overrideString("CALLISTO_ARCHIVE_PATH", &cfg.Archive.Path)

	overrideBool("CALLISTO_METRICS_ENABLED", &cfg.Metrics.Enabled)
	overrideString("CALLISTO_METRICS_LISTEN_ADDRESS", &cfg.Metrics.ListenAddress)
	overrideString("CALLISTO_METRICS_NAMESPACE", &cfg.Metrics.Namespace)
	overrideString("CALLISTO_METRICS_SUBSYSTEM", &cfg.Metrics.Subsystem)

	overrideString("CALLISTO_LOGGING_LEVEL", &cfg.Logging.Level)
	overrideString("CALLISTO_LOGGING_FORMAT", &cfg.Logging.Format)
}

func overrideString(key string, dst *string) {
	if v, ok := os.LookupEnv(key); ok {
		*dst = v
	}
}

func overrideBool(key string, dst *bool) {
	if v, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.ParseBool(v); err == nil {
			*dst = parsed
		}
	}
}

func overrideDuration(key string, dst *time.Duration) {
	if v, ok := os.LookupEnv(key); ok {
		if parsed, err := time.ParseDuration(v); err == nil {
			*dst = parsed
		}
	}
}
