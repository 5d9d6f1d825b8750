package main

import (
	"fmt"
	"math/rand/v2"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"acgs-hq/quorum/pkg/catalog"
	"acgs-hq/quorum/pkg/cli"
	"acgs-hq/quorum/pkg/config"
	"acgs-hq/quorum/pkg/selection"
	"acgs-hq/quorum/pkg/selection/statestore"
	"acgs-hq/quorum/pkg/selection/strategies"
)

var simulateFlags struct {
	rounds   int
	seed     uint64
	category string
	rates    string
	quiet    bool
	state    string
}

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run an offline bandit convergence simulation",
	Long: `Simulate template selection against synthetic Bernoulli success rates.

Each template is assigned a true success probability; the simulation runs
the configured strategy for the requested number of rounds and prints the
learned posteriors. Useful for checking that a strategy converges on the
best template before deploying a catalog change.

Examples:
  # 5000 rounds with the configured strategy
  quorum simulate --rounds 5000

  # Explicit per-template success rates
  quorum simulate --rates "constitutional_v2=0.8,minimal_v1=0.4"

  # Deterministic run
  quorum simulate --seed 42`,
	RunE: runSimulate,
}

func init() {
	rootCmd.AddCommand(simulateCmd)

	simulateCmd.Flags().IntVar(&simulateFlags.rounds, "rounds", 1000, "number of simulated synthesis rounds")
	simulateCmd.Flags().Uint64Var(&simulateFlags.seed, "seed", 0, "random seed (0 = nondeterministic)")
	simulateCmd.Flags().StringVar(&simulateFlags.category, "category", "", "restrict selection to one category")
	simulateCmd.Flags().StringVar(&simulateFlags.rates, "rates", "", "per-template success rates, e.g. \"a=0.8,b=0.4\"")
	simulateCmd.Flags().BoolVar(&simulateFlags.quiet, "quiet", false, "suppress the progress bar")
	simulateCmd.Flags().StringVar(&simulateFlags.state, "state", "", "bandit state database; posteriors are restored before the run and saved after")
}

func runSimulate(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadWithEnvOverrides(cfgFile)
	if err != nil {
		return err
	}

	c, err := catalog.Load(cfg.Catalog.Path)
	if err != nil {
		return err
	}

	strategy, err := strategies.New(strategies.Config{
		Name:                cfg.Selection.Strategy,
		Seed:                simulateFlags.seed,
		Epsilon:             cfg.Selection.Epsilon,
		ExplorationConstant: cfg.Selection.ExplorationConstant,
	})
	if err != nil {
		return err
	}

	selector, err := selection.NewSelector(strategy, nil)
	if err != nil {
		return err
	}
	if err := selector.RegisterCatalog(c); err != nil {
		return err
	}

	rates, err := successRates(c, simulateFlags.rates)
	if err != nil {
		return err
	}

	var armStore statestore.Store
	if simulateFlags.state != "" {
		armStore, err = statestore.NewSQLiteStore(simulateFlags.state)
		if err != nil {
			return fmt.Errorf("failed to open state database: %w", err)
		}
		defer armStore.Close()

		states, err := armStore.Load(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to load arm states: %w", err)
		}
		if len(states) > 0 {
			if err := selector.RestoreArmStates(states); err != nil {
				return fmt.Errorf("failed to restore arm states: %w", err)
			}
		}
	}

	var rng *rand.Rand
	if simulateFlags.seed == 0 {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	} else {
		rng = rand.New(rand.NewPCG(simulateFlags.seed, simulateFlags.seed))
	}

	var progress cli.ProgressReporter = cli.NopProgress{}
	if !simulateFlags.quiet {
		progress = cli.NewProgressReporter(os.Stderr)
	}
	progress.Start(int64(simulateFlags.rounds))

	ctx := cli.SignalContext(cmd.Context())
	for i := 0; i < simulateFlags.rounds; i++ {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("simulation interrupted after %d rounds: %w", i, err)
		}

		result, err := selector.Select(ctx, &selection.Request{
			RequestID: fmt.Sprintf("sim-%d", i),
			Category:  simulateFlags.category,
		})
		if err != nil {
			return fmt.Errorf("round %d: %w", i, err)
		}

		success := rng.Float64() < rates[result.TemplateID]
		if err := selector.RecordSuccess(result.TemplateID, success); err != nil {
			return fmt.Errorf("round %d: %w", i, err)
		}

		if (i+1)%100 == 0 {
			progress.Update(int64(i + 1))
		}
	}
	progress.Finish()

	if armStore != nil {
		if err := armStore.Save(cmd.Context(), selector.ArmStates()); err != nil {
			return fmt.Errorf("failed to save arm states: %w", err)
		}
	}

	fmt.Printf("strategy: %s, rounds: %d\n\n", strategy.Name(), simulateFlags.rounds)
	fmt.Printf("%-24s %8s %10s %10s %10s %10s\n", "TEMPLATE", "PULLS", "ALPHA", "BETA", "MEAN", "TRUE")
	for _, st := range selector.ArmStates() {
		fmt.Printf("%-24s %8d %10.2f %10.2f %10.4f %10.4f\n",
			st.TemplateID, st.Pulls, st.Alpha, st.Beta, st.Mean(), rates[st.TemplateID])
	}

	return nil
}

// successRates builds the true success probability per template. Explicit
// --rates entries win; remaining templates get evenly spaced defaults so
// the simulation always has a best arm to converge on.
func successRates(c *catalog.Catalog, ratesFlag string) (map[string]float64, error) {
	rates := make(map[string]float64, c.Len())

	ids := c.IDs()
	for i, id := range ids {
		// Spread defaults over [0.3, 0.9]
		if len(ids) == 1 {
			rates[id] = 0.9
		} else {
			rates[id] = 0.9 - 0.6*float64(i)/float64(len(ids)-1)
		}
	}

	if ratesFlag == "" {
		return rates, nil
	}

	for _, pair := range strings.Split(ratesFlag, ",") {
		parts := strings.SplitN(strings.TrimSpace(pair), "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid rate %q (expected template=probability)", pair)
		}
		p, err := strconv.ParseFloat(parts[1], 64)
		if err != nil || p < 0 || p > 1 {
			return nil, fmt.Errorf("invalid probability %q for template %q", parts[1], parts[0])
		}
		if _, ok := rates[parts[0]]; !ok {
			return nil, fmt.Errorf("unknown template %q in --rates", parts[0])
		}
		rates[parts[0]] = p
	}

	return rates, nil
}
