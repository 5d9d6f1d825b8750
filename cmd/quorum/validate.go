package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"acgs-hq/quorum/pkg/catalog"
	"acgs-hq/quorum/pkg/config"
)

var validateFlags struct {
	catalogOnly bool
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration and template catalog",
	Long: `Validate the configuration file and the template catalog it references.

Checks performed:
  - Configuration structure, strategy names, and backend names
  - Consensus weights cover every validator and sum to 1.0
  - Retention cron expression parses
  - Every catalog template has an id, a category, and a body that parses

Examples:
  # Validate config and catalog
  quorum validate --config config.yaml

  # Validate only the catalog referenced by the config
  quorum validate --catalog-only`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().BoolVar(&validateFlags.catalogOnly, "catalog-only", false, "skip config checks beyond loading, validate only the catalog")
}

func runValidate(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadWithEnvOverrides(cfgFile)
	if err != nil {
		return fmt.Errorf("configuration invalid: %w", err)
	}

	if !validateFlags.catalogOnly {
		fmt.Printf("configuration OK: %s\n", cfgFile)
		fmt.Printf("  strategy:  %s\n", cfg.Selection.Strategy)
		fmt.Printf("  threshold: %g\n", cfg.Consensus.Threshold)
		fmt.Printf("  backend:   %s\n", cfg.Evidence.Backend)
	}

	c, err := catalog.Load(cfg.Catalog.Path)
	if err != nil {
		return fmt.Errorf("catalog invalid: %w", err)
	}

	fmt.Printf("catalog OK: %s (%d templates)\n", cfg.Catalog.Path, c.Len())
	if verbose {
		for _, tmpl := range c.Templates() {
			fmt.Printf("  %s  [%s]  %s\n", tmpl.ID, tmpl.Category, tmpl.Name)
		}
	}

	return nil
}
