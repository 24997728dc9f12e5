// Package cmd defines and implements the CLI commands for the wikicorpus
// executable.
package cmd

import (
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Katya0208/wikicorpus/internal/config"
	"github.com/Katya0208/wikicorpus/internal/id/uuid"
	"github.com/Katya0208/wikicorpus/internal/logging"
)

var cfgFile string

// newRootCmd creates and configures the root command.
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wikicorpus",
		Short: "Builds a deduplicated plaintext corpus from a category graph",
		Long: `wikicorpus walks an encyclopedia category graph breadth-first,
fetches page extracts through the query API, filters them by word count,
and writes one file per accepted document plus a JSONL manifest line
describing it. The estimate subcommand counts reachable categories and
pages without fetching any content.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file (defaults apply, overridable via WIKICORPUS_* env)")

	cmd.AddCommand(newBuildCmd())
	cmd.AddCommand(newEstimateCmd())

	return cmd
}

// Execute is the main entry point.
func Execute() {
	cmd := newRootCmd()
	if err := cmd.Execute(); err != nil {
		cmd.PrintErrln("Error:", err)
		os.Exit(1)
	}
}

// setup loads configuration and builds the run-scoped logger.
func setup() (config.Config, *zap.Logger, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return config.Config{}, nil, err
	}
	runID, err := uuid.NewGenerator().NewID()
	if err != nil {
		return config.Config{}, nil, err
	}
	logger, err := logging.New(cfg.Logging, runID)
	if err != nil {
		return config.Config{}, nil, err
	}
	return cfg, logger, nil
}
