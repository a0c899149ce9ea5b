// Package cli provides shared helpers for the callisto command line tool.
//
// It contains the error types commands return to the root command and the
// signal plumbing used by long-running commands to shut down cleanly.
package cli
