package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"acgs-hq/quorum/pkg/cli"
	"acgs-hq/quorum/pkg/config"
	"acgs-hq/quorum/pkg/evidence"
	"acgs-hq/quorum/pkg/evidence/storage"
)

var evidenceFlags struct {
	backend   string
	template  string
	category  string
	consensus string
	timeRange string
	limit     int
	format    string
}

var evidenceCmd = &cobra.Command{
	Use:   "evidence",
	Short: "Query the synthesis evidence database",
	Long: `Query stored synthesis records.

Examples:
  # Last 20 records
  quorum evidence --limit 20

  # Rejected syntheses for one template
  quorum evidence --template constitutional_v2 --consensus false

  # Records in a time range, as JSON
  quorum evidence --time-range "2026-08-01T00:00:00Z/2026-08-26T00:00:00Z" --format json`,
	RunE: runEvidenceQuery,
}

func init() {
	rootCmd.AddCommand(evidenceCmd)

	evidenceCmd.Flags().StringVar(&evidenceFlags.backend, "backend", "", "backend: sqlite, memory (uses config if not specified)")
	evidenceCmd.Flags().StringVar(&evidenceFlags.template, "template", "", "filter by template ID")
	evidenceCmd.Flags().StringVar(&evidenceFlags.category, "category", "", "filter by template category")
	evidenceCmd.Flags().StringVar(&evidenceFlags.consensus, "consensus", "", "filter by verdict: true, false")
	evidenceCmd.Flags().StringVar(&evidenceFlags.timeRange, "time-range", "", "RFC3339 interval: start/end")
	evidenceCmd.Flags().IntVar(&evidenceFlags.limit, "limit", 50, "maximum records to return")
	evidenceCmd.Flags().StringVar(&evidenceFlags.format, "format", "text", "output format: text, json")
}

// evidenceReport renders query results for the text formatter. The JSON
// formatter serializes the records directly.
type evidenceReport struct {
	Records []*evidence.SynthesisRecord `json:"records"`
}

func (r evidenceReport) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d records\n\n", len(r.Records))
	for _, rec := range r.Records {
		verdict := "REJECTED"
		if rec.Consensus {
			verdict = "ACCEPTED"
		}
		fmt.Fprintf(&b, "%s  %s  %-24s  %s  weighted=%.3f agreement=%.3f reward=%.3f\n",
			rec.RequestTime.Format(time.RFC3339), verdict, rec.TemplateID,
			rec.Strategy, rec.WeightedScore, rec.AgreementFactor, rec.Reward)
		if rec.Error != "" {
			fmt.Fprintf(&b, "    error (%s): %s\n", rec.ErrorType, rec.Error)
		}
	}
	return b.String()
}

func runEvidenceQuery(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseOutputFormat(evidenceFlags.format)
	if err != nil {
		return cli.NewCommandError("evidence", err)
	}

	cfg, err := config.LoadWithEnvOverrides(cfgFile)
	if err != nil {
		return cli.NewCommandError("evidence", err)
	}

	store, err := openEvidenceStorage(cfg, evidenceFlags.backend)
	if err != nil {
		return cli.NewCommandError("evidence", err)
	}
	defer store.Close()

	query := &evidence.Query{
		TemplateID: evidenceFlags.template,
		Category:   evidenceFlags.category,
		Limit:      evidenceFlags.limit,
	}

	if evidenceFlags.consensus != "" {
		v := evidenceFlags.consensus == "true"
		query.Consensus = &v
	}

	if evidenceFlags.timeRange != "" {
		parts := strings.Split(evidenceFlags.timeRange, "/")
		if len(parts) != 2 {
			return cli.NewCommandError("evidence", fmt.Errorf("invalid time range format (expected: start/end)"))
		}
		startTime, err := time.Parse(time.RFC3339, parts[0])
		if err != nil {
			return cli.NewCommandError("evidence", fmt.Errorf("invalid start time: %w", err))
		}
		endTime, err := time.Parse(time.RFC3339, parts[1])
		if err != nil {
			return cli.NewCommandError("evidence", fmt.Errorf("invalid end time: %w", err))
		}
		query.StartTime = &startTime
		query.EndTime = &endTime
	}

	records, err := store.Query(cmd.Context(), query)
	if err != nil {
		return cli.NewCommandError("evidence", fmt.Errorf("query failed: %w", err))
	}

	formatter := cli.NewFormatter(format)
	if format == cli.FormatJSON {
		return formatter.FormatTo(os.Stdout, records)
	}
	return formatter.FormatTo(os.Stdout, evidenceReport{Records: records})
}

// openEvidenceStorage opens the evidence backend named by flag, falling
// back to the configured backend.
func openEvidenceStorage(cfg *config.Config, backend string) (evidence.Storage, error) {
	if backend == "" {
		backend = cfg.Evidence.Backend
	}

	switch backend {
	case "sqlite":
		sqliteCfg := storage.DefaultSQLiteConfig()
		sqliteCfg.Path = cfg.Evidence.SQLitePath
		store, err := storage.NewSQLiteStorage(sqliteCfg)
		if err != nil {
			return nil, fmt.Errorf("failed to open evidence database: %w", err)
		}
		return store, nil
	case "memory":
		return storage.NewMemoryStorage(), nil
	default:
		return nil, fmt.Errorf("unsupported backend: %s", backend)
	}
}
