package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"stellar-hq/callisto/pkg/cli"
	"stellar-hq/callisto/pkg/policy/archive"
	"stellar-hq/callisto/pkg/policy/manager"
	"stellar-hq/callisto/pkg/telemetry/logging"
	"stellar-hq/callisto/pkg/telemetry/metrics"
)

var runFlags struct {
	dir      string
	logLevel string
	dryRun   bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the policy service",
	Long: `Start the policy service with the specified configuration.

The service loads the policy directory, keeps the in-memory policy set up to
date (file watching and/or scheduled reloads), serves Prometheus metrics when
enabled, and archives each loaded generation to SQLite when archiving is
enabled.

Examples:
  # Start with default config
  callisto run

  # Start with custom config
  callisto run --config /etc/callisto/config.yaml

  # Override the policy directory
  callisto run --dir ./policies

  # Validate config without starting
  callisto run --dry-run`,
	RunE: runService,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runFlags.dir, "dir", "d", "", "override policy directory")
	runCmd.Flags().StringVar(&runFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	runCmd.Flags().BoolVar(&runFlags.dryRun, "dry-run", false, "validate config without starting")
}

func runService(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return cli.NewConfigError("", err.Error())
	}

	// Apply flag overrides
	if runFlags.dir != "" {
		cfg.Policy.Dir = runFlags.dir
	}
	if runFlags.logLevel != "" {
		cfg.Logging.Level = runFlags.logLevel
	}

	logger := logging.New(cfg.Logging)
	slog.SetDefault(logger)

	if runFlags.dryRun {
		fmt.Println("✓ Configuration valid")
		return nil
	}

	fmt.Printf("Callisto v%s\n", Version)
	fmt.Printf("Loading policies from: %s\n", cfg.Policy.Dir)

	opts := []manager.Option{manager.WithLogger(logger)}

	var pm *metrics.PolicyStoreMetrics
	var registry *prometheus.Registry
	if cfg.Metrics.Enabled {
		registry = prometheus.NewRegistry()
		pm = metrics.NewPolicyStoreMetrics(cfg.Metrics, registry)
		opts = append(opts, manager.WithMetrics(pm))
	}

	mgr := manager.New(cfg.Policy, opts...)
	if err := mgr.Load(); err != nil {
		return cli.NewCommandError("run", err)
	}
	gen := mgr.Generation()
	fmt.Printf("✓ Policy set loaded (%d templates, %d policies)\n", gen.Templates, gen.Links)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := mgr.Start(ctx); err != nil {
		return cli.NewCommandError("run", err)
	}
	defer mgr.Stop()

	var arch *archive.Archive
	if cfg.Archive.Enabled {
		arch, err = archive.Open(cfg.Archive)
		if err != nil {
			return cli.NewCommandError("run", err)
		}
		defer arch.Close()

		snapshotID, err := arch.Save(ctx, gen.ID, mgr.Snapshot())
		if err != nil {
			return cli.NewCommandError("run", err)
		}
		fmt.Printf("✓ Archive open (%s), initial snapshot %s\n", cfg.Archive.Path, snapshotID)
	}

	var metricsSrv *http.Server
	errChan := make(chan error, 1)
	if cfg.Metrics.Enabled {
		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.Handler(registry))
		metricsSrv = &http.Server{Addr: cfg.Metrics.ListenAddress, Handler: mux}
		go func() {
			if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				errChan <- fmt.Errorf("metrics server error: %w", err)
			}
		}()
		fmt.Printf("✓ Metrics endpoint: http://%s/metrics\n", cfg.Metrics.ListenAddress)
	}

	if cfg.Policy.Watch {
		fmt.Println("✓ Watching for policy changes")
	}
	fmt.Println("\nPress Ctrl+C to stop")

	sigChan := cli.WaitForShutdown()
	select {
	case err := <-errChan:
		return cli.NewCommandError("run", err)
	case sig := <-sigChan:
		fmt.Printf("\nReceived signal %s, shutting down...\n", sig)
		cancel()

		if metricsSrv != nil {
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer shutdownCancel()
			if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
				logger.Error("metrics server shutdown failed", "error", err)
			}
		}
		fmt.Println("✓ Stopped")
		return nil
	}
}
