// Package logging builds the root slog logger from configuration.
//
// Components tag their log lines with a component attribute:
//
//	logger := logging.New(cfg.Logging).With("component", "policy.manager")
package logging
