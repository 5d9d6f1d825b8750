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
	Use:   "quorum",
	Short: "Quorum - constitutional governance synthesis core",
	Long: `Quorum is the synthesis core of a constitutional governance platform.

It turns natural-language constitutional principles into executable policy
rules, providing:
  - Adaptive template selection via Thompson sampling over Beta posteriors
  - Weighted multi-validator consensus with conservative agreement gating
  - Synthesis evidence records for audit trails
  - Durable bandit state across restarts`,
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
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "config.yaml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
