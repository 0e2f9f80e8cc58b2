package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"macrolog-hq/ceres/pkg/audit"
	"macrolog-hq/ceres/pkg/cli"
	"macrolog-hq/ceres/pkg/config"
	"macrolog-hq/ceres/pkg/fatsecret"
	"macrolog-hq/ceres/pkg/server"
	"macrolog-hq/ceres/pkg/telemetry/logging"
	"macrolog-hq/ceres/pkg/telemetry/metrics"
)

var runFlags struct {
	listenAddress string
	logLevel      string
	dryRun        bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the Ceres gateway server",
	Long: `Start the Ceres gateway server with the specified configuration.

The server listens on the configured address and proxies nutrition lookups
to the FatSecret API, handling OAuth2 token exchange and serving
normalization on behalf of browser clients.

Examples:
  # Start with default config
  ceres run

  # Start with custom config
  ceres run --config /etc/ceres/config.yaml

  # Override listen address
  ceres run --listen 0.0.0.0:8080

  # Validate config without starting server
  ceres run --dry-run`,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runFlags.listenAddress, "listen", "l", "", "override listen address")
	runCmd.Flags().StringVar(&runFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	runCmd.Flags().BoolVar(&runFlags.dryRun, "dry-run", false, "validate config without starting server")
}

func runServer(cmd *cobra.Command, args []string) error {
	// Load configuration
	if err := config.Initialize(cfgFile); err != nil {
		return cli.NewConfigError("", fmt.Sprintf("failed to load config: %v", err))
	}
	cfg, err := config.GetConfig()
	if err != nil {
		return cli.NewConfigError("", err.Error())
	}

	// Apply flag overrides
	if runFlags.listenAddress != "" {
		cfg.Gateway.ListenAddress = runFlags.listenAddress
	}
	if runFlags.logLevel != "" {
		cfg.Telemetry.Logging.Level = runFlags.logLevel
	}
	if verbose {
		cfg.Telemetry.Logging.Level = "debug"
	}

	// Initialize logging based on config
	logger, err := logging.New(cfg.Telemetry.Logging, os.Stdout)
	if err != nil {
		return cli.NewConfigError("telemetry.logging", err.Error())
	}
	slog.SetDefault(logger.Slog())

	if runFlags.dryRun {
		fmt.Println("✓ Configuration valid")
		return nil
	}

	fmt.Printf("Ceres v%s\n", Version)
	fmt.Printf("Loading configuration from: %s\n", cfgFile)
	fmt.Println("✓ Configuration loaded")

	// Metrics collector
	var collector *metrics.Collector
	if cfg.Telemetry.Metrics.Enabled == nil || *cfg.Telemetry.Metrics.Enabled {
		collector = metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
	}

	// Upstream client
	client := newFatSecretClient(cfg, collector)
	defer client.Close()
	if client.Configured() {
		fmt.Println("✓ FatSecret client configured")
	} else {
		slog.Warn("fatsecret credentials not configured, upstream lookups will fail")
		fmt.Println("! FatSecret credentials missing (health endpoint will report unconfigured)")
	}

	// Audit trail (if enabled)
	var recorder *audit.Recorder
	var pruner *audit.Pruner
	if cfg.Audit.Enabled {
		slog.Info("initializing audit trail", "path", cfg.Audit.SQLitePath)

		sqliteConfig := audit.DefaultSQLiteConfig()
		sqliteConfig.Path = cfg.Audit.SQLitePath
		store, err := audit.NewSQLiteStorage(sqliteConfig)
		if err != nil {
			return fmt.Errorf("failed to create audit storage: %w", err)
		}
		defer store.Close()

		recorder = audit.NewRecorder(store, &audit.RecorderConfig{
			Enabled: true,
			Buffer:  cfg.Audit.Buffer,
		})
		defer recorder.Close()

		pruner = audit.NewPruner(store, &audit.RetentionConfig{
			RetentionDays: cfg.Audit.RetentionDays,
			PruneSchedule: cfg.Audit.PruneSchedule,
		})
		if err := pruner.Start(context.Background()); err != nil {
			slog.Warn("failed to start retention scheduler", "error", err)
		} else {
			defer pruner.Stop()
		}

		fmt.Println("✓ Audit trail initialized")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Watch the config file so credential rotation does not require a
	// restart. Only credentials are applied live; other settings need a
	// restart.
	watcher, err := config.NewFileWatcher(cfgFile, slog.Default())
	if err != nil {
		slog.Warn("config watcher unavailable", "error", err)
	} else {
		go func() {
			watchErr := watcher.Watch(ctx, func() error {
				reloaded, err := config.ReloadConfig(cfgFile)
				if err != nil {
					return err
				}
				client.SetCredentials(reloaded.FatSecret.ClientID, reloaded.FatSecret.ClientSecret)
				slog.Info("credentials reloaded", "configured", client.Configured())
				return nil
			})
			if watchErr != nil {
				slog.Warn("config watcher stopped", "error", watchErr)
			}
		}()
		defer watcher.Stop()
	}

	// Create HTTP server
	srv := server.NewServer(cfg, client, collector, recorder)

	errChan := make(chan error, 1)
	go func() {
		if err := srv.Start(ctx); err != nil {
			errChan <- fmt.Errorf("server error: %w", err)
		}
		close(errChan)
	}()

	fmt.Println()
	fmt.Printf("✓ Server listening on %s\n", cfg.Gateway.ListenAddress)
	fmt.Printf("✓ Health endpoint: http://%s/health\n", cfg.Gateway.ListenAddress)
	if collector != nil {
		fmt.Printf("✓ Metrics endpoint: http://%s%s\n", cfg.Gateway.ListenAddress, cfg.Telemetry.Metrics.Path)
	}
	fmt.Println("\nPress Ctrl+C to stop")

	// The server handles SIGINT/SIGTERM itself; block until it exits.
	if err := <-errChan; err != nil {
		return cli.NewCommandError("run", err)
	}

	fmt.Println("✓ Server stopped")
	return nil
}

// newFatSecretClient builds the upstream client from the loaded
// configuration, using the collector as the metrics sink when present.
func newFatSecretClient(cfg *config.Config, collector *metrics.Collector) *fatsecret.Client {
	clientCfg := fatsecret.DefaultConfig()
	clientCfg.ClientID = cfg.FatSecret.ClientID
	clientCfg.ClientSecret = cfg.FatSecret.ClientSecret
	if cfg.FatSecret.OAuthURL != "" {
		clientCfg.OAuthURL = cfg.FatSecret.OAuthURL
	}
	if cfg.FatSecret.APIURL != "" {
		clientCfg.APIURL = cfg.FatSecret.APIURL
	}
	if cfg.FatSecret.Timeout > 0 {
		clientCfg.Timeout = cfg.FatSecret.Timeout
	}
	if cfg.FatSecret.TokenCache.Enabled != nil {
		clientCfg.TokenCache.Enabled = *cfg.FatSecret.TokenCache.Enabled
	}
	if cfg.FatSecret.TokenCache.ExpiryMargin > 0 {
		clientCfg.TokenCache.ExpiryMargin = cfg.FatSecret.TokenCache.ExpiryMargin
	}

	var sink fatsecret.Metrics
	if collector != nil {
		sink = collector
	}
	return fatsecret.NewClient(clientCfg, sink)
}
