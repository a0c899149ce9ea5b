package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"stellar-hq/callisto/pkg/config"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "callisto",
	Short: "Callisto - authorization policy set and template linking service",
	Long: `Callisto manages an in-memory set of authorization policies and
policy templates with slot-based linking.

It provides:
  - Static policies and reusable templates with ?principal/?resource slots
  - Atomic template linking with slot environment validation
  - Hot reload of policy directories with consistent snapshots
  - SQLite snapshot archiving for audit and rollback`,
	Version: Version,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Global persistent flags (available to all subcommands)
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "config.yaml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// loadConfig reads the configured file. When the user did not pass --config
// and the default path does not exist, built-in defaults are used instead.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil && !rootCmd.PersistentFlags().Changed("config") && errors.Is(err, fs.ErrNotExist) {
		return config.Default(), nil
	}
	return cfg, err
}
