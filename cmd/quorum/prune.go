package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"acgs-hq/quorum/pkg/cli"
	"acgs-hq/quorum/pkg/config"
	"acgs-hq/quorum/pkg/evidence/retention"
)

var pruneFlags struct {
	backend    string
	days       int
	maxRecords int64
	format     string
}

var pruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete evidence records past the retention policy",
	Long: `Run a one-shot retention pass over the evidence database.

The long-running service prunes on a cron schedule; this command runs the
same two-phase pass (age-based, then count-based) once and exits. Flags
override the configured retention policy.

Examples:
  # Apply the configured policy
  quorum prune

  # Keep only the last 30 days
  quorum prune --days 30

  # Cap the database at 100k records
  quorum prune --max-records 100000`,
	RunE: runPrune,
}

func init() {
	rootCmd.AddCommand(pruneCmd)

	pruneCmd.Flags().StringVar(&pruneFlags.backend, "backend", "", "backend: sqlite, memory (uses config if not specified)")
	pruneCmd.Flags().IntVar(&pruneFlags.days, "days", -1, "retention window in days (0 disables age pruning)")
	pruneCmd.Flags().Int64Var(&pruneFlags.maxRecords, "max-records", -1, "maximum records to keep (0 disables count pruning)")
	pruneCmd.Flags().StringVar(&pruneFlags.format, "format", "text", "output format: text, json")
}

type pruneResult struct {
	Deleted       int64 `json:"deleted"`
	RetentionDays int   `json:"retention_days"`
	MaxRecords    int64 `json:"max_records"`
}

func (r pruneResult) String() string {
	return fmt.Sprintf("deleted %d records (retention %d days, max %d records)\n",
		r.Deleted, r.RetentionDays, r.MaxRecords)
}

func runPrune(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseOutputFormat(pruneFlags.format)
	if err != nil {
		return cli.NewCommandError("prune", err)
	}

	cfg, err := config.LoadWithEnvOverrides(cfgFile)
	if err != nil {
		return cli.NewCommandError("prune", err)
	}

	retCfg := &retention.Config{
		RetentionDays: cfg.Evidence.Retention.Days,
		MaxRecords:    cfg.Evidence.Retention.MaxRecords,
	}
	if pruneFlags.days >= 0 {
		retCfg.RetentionDays = pruneFlags.days
	}
	if pruneFlags.maxRecords >= 0 {
		retCfg.MaxRecords = pruneFlags.maxRecords
	}

	store, err := openEvidenceStorage(cfg, pruneFlags.backend)
	if err != nil {
		return cli.NewCommandError("prune", err)
	}
	defer store.Close()

	ctx := cli.SignalContext(cmd.Context())

	pruner := retention.NewPruner(store, retCfg)
	deleted, err := pruner.Prune(ctx)
	if err != nil {
		return cli.NewCommandError("prune", err)
	}

	return cli.NewFormatter(format).FormatTo(os.Stdout, pruneResult{
		Deleted:       deleted,
		RetentionDays: retCfg.RetentionDays,
		MaxRecords:    retCfg.MaxRecords,
	})
}
