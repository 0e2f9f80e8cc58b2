package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"macrolog-hq/ceres/pkg/cli"
	"macrolog-hq/ceres/pkg/config"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration file",
	Long: `Load and validate the configuration file without starting the server.

Validation checks the listen address, timeout values, upstream endpoint
URLs, logging and metrics settings, and the audit section including the
prune cron schedule. Missing FatSecret credentials are reported as a
warning, not an error: the gateway starts without them and reports
fatSecretConfigured=false on /health.

Examples:
  # Validate the default config file
  ceres validate

  # Validate a specific file
  ceres validate --config /etc/ceres/config.yaml`,
	RunE: validateConfig,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func validateConfig(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		var verr config.ValidationError
		if errors.As(err, &verr) {
			fmt.Printf("✗ Configuration invalid (%d problems)\n\n", len(verr.Errors))
			for _, fieldErr := range verr.Errors {
				fmt.Printf("  %s: %s\n", fieldErr.Field, fieldErr.Message)
			}
			return cli.NewCommandError("validate", fmt.Errorf("%d validation errors", len(verr.Errors)))
		}
		return cli.NewConfigError("", fmt.Sprintf("failed to load config: %v", err))
	}

	fmt.Println("✓ Configuration valid")
	fmt.Printf("  Listen address: %s\n", cfg.Gateway.ListenAddress)
	fmt.Printf("  Log level: %s (%s)\n", cfg.Telemetry.Logging.Level, cfg.Telemetry.Logging.Format)

	if cfg.FatSecret.ClientID != "" && cfg.FatSecret.ClientSecret != "" {
		fmt.Println("  FatSecret credentials: configured")
	} else {
		fmt.Println("  FatSecret credentials: MISSING (upstream lookups will fail)")
	}

	if cfg.Audit.Enabled {
		fmt.Printf("  Audit trail: enabled (%s, retention %d days)\n",
			cfg.Audit.SQLitePath, cfg.Audit.RetentionDays)
	} else {
		fmt.Println("  Audit trail: disabled")
	}

	return nil
}
