/*
Package cli provides command-line interface utilities for the quorum command.

The cli package includes output formatters, progress reporters, and common CLI
helpers used by the quorum subcommands.

Output Formatting:

The cli package supports text and JSON output for displaying command results:

	formatter := cli.NewFormatter(cli.FormatJSON)
	if err := formatter.FormatTo(os.Stdout, result); err != nil {
		return err
	}

Progress Reporting:

For long-running operations such as bandit simulations, use the progress
reporter:

	progress := cli.NewProgressReporter(os.Stderr)
	progress.Start(totalRounds)
	for i := int64(0); i < totalRounds; i++ {
		// Do work
		progress.Update(i + 1)
	}
	progress.Finish()

Signal Handling:

For graceful shutdown on SIGINT/SIGTERM:

	ctx := cli.SignalContext(context.Background())
	// Use ctx for operations that should be cancelled on shutdown
*/
package cli
