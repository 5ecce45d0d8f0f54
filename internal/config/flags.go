package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// newFlagCommand creates a cobra command with all flags configured.
func newFlagCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "pressr",
		Short:         "pressr is a closed-loop HTTP load testing tool",
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	cmd.SetOut(os.Stdout)
	configureFlags(cmd.Flags())
	return cmd
}

// configureFlags sets up all CLI flags on the provided flag set.
func configureFlags(flags *pflag.FlagSet) {
	// Core request flags
	flags.StringP("url", "u", "", "Target URL to load test")
	flags.StringP("method", "m", "GET", "HTTP method to use")
	flags.StringSliceP("header", "H", nil, "Additional request header in key=value form")
	flags.String("body", "", "Inline request body payload")
	flags.String("body-file", "", "Path to file containing the request body")
	flags.StringP("data-file", "d", "", "Path to JSON, YAML or CSV request data file")

	// Load control flags
	flags.IntP("requests", "n", 100, "Total number of requests to send")
	flags.IntP("concurrency", "c", 10, "Number of concurrent workers")
	flags.DurationP("timeout", "t", 30*time.Second, "Per-request timeout")

	// Output flags
	flags.Bool("json-output", false, "Emit JSON formatted output")
	flags.String("html-output", "", "Generate HTML report to the specified file path")
	flags.Bool("log-errors", false, "Log each failed request to stderr")

	// Assertion flags
	flags.StringSlice("threshold", nil, "Performance threshold, e.g. 'latency:p95 < 500'")

	flags.String("config", "", "Path to configuration file (JSON or YAML)")
}

// displayHelp prints usage information for the CLI.
func displayHelp(cmd *cobra.Command) {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, cmd.Short)
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Usage:")
	fmt.Fprintf(out, "  %s --url https://example.com [flags]\n", cmd.Use)
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Flags:")
	fmt.Fprintln(out, cmd.Flags().FlagUsages())
}
