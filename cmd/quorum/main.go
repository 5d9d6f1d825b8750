// Quorum is the constitutional governance synthesis core.
//
// It selects prompting templates with a multi-armed bandit, validates
// generated policy rules through a weighted panel of heterogeneous
// validators, and keeps a tamper-evident audit trail of every synthesis.
//
// Usage:
//
//	# Validate configuration and template catalog
//	quorum validate --config config.yaml
//
//	# Run an offline bandit convergence simulation
//	quorum simulate --rounds 5000
//
//	# Query the synthesis evidence database
//	quorum evidence --backend sqlite --limit 20
//
//	# Apply the retention policy once and exit
//	quorum prune --days 30
//
//	# Show version information
//	quorum version
package main

func main() {
	Execute()
}
