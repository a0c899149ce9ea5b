// Package telemetry provides observability for the callisto runtime.
//
// It contains two subpackages:
//
//   - logging: structured slog-based logging configured from LoggingConfig
//   - metrics: Prometheus collectors for the policy store and reload pipeline
package telemetry
