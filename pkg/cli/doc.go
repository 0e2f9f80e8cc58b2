/*
Package cli provides command-line interface utilities for Ceres.

The cli package includes output formatters and common CLI helpers used by
the ceres command.

Output Formatting:

The cli package supports multiple output formats (text, JSON, CSV) for
displaying command results:

	formatter := cli.NewFormatter(cli.FormatJSON)
	data := MyCommandResult{...}
	if err := formatter.FormatTo(os.Stdout, data); err != nil {
		return err
	}

CSV output works on values that implement the Tabular interface, such as
audit record listings.

Signal Handling:

For graceful shutdown on SIGINT/SIGTERM:

	ctx := cli.SetupSignalHandler()
	// Use ctx for operations that should be cancelled on shutdown
*/
package cli
