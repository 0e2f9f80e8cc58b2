package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "ceres",
	Short: "Ceres - nutrition API gateway",
	Long: `Ceres is a nutrition API gateway that fronts the FatSecret platform
for browser-based clients.

It keeps upstream credentials server-side and provides:
  - Food search with verbatim upstream payloads
  - Food detail lookups with derived per-gram and per-ml servings
  - Barcode-to-food resolution
  - Optional request audit trail with retention pruning`,
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
