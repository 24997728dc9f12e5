package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Katya0208/wikicorpus/internal/corpus"
	"github.com/Katya0208/wikicorpus/internal/metrics"
	"github.com/Katya0208/wikicorpus/internal/pacer"
	"github.com/Katya0208/wikicorpus/internal/wiki"
)

// newEstimateCmd creates the 'estimate' subcommand: a dry run that counts
// reachable categories and unique pages without fetching any content, for
// sizing a corpus before spending fetch quota.
func newEstimateCmd() *cobra.Command {
	var (
		rootCategory  string
		maxPages      int
		maxCategories int
	)

	cmd := &cobra.Command{
		Use:   "estimate",
		Short: "Counts reachable categories and pages without fetching content",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := setup()
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			if cmd.Flags().Changed("root-category") {
				cfg.Corpus.RootCategory = rootCategory
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			metrics.Init()

			client, err := wiki.New(wiki.Config{
				Endpoint:  cfg.API.Endpoint,
				UserAgent: cfg.API.UserAgent,
				Timeout:   cfg.API.Timeout(),
				BatchSize: cfg.API.BatchSize,
			}, logger)
			if err != nil {
				return err
			}

			p := pacer.New(pacer.Config{CategoryInterval: cfg.Pacing.CategoryInterval()})
			counter := corpus.NewCounter(client, p, logger)

			logger.Info("dry run starting",
				zap.String("root_category", cfg.Corpus.RootCategory),
				zap.Int("max_pages", maxPages),
				zap.Int("max_categories", maxCategories),
			)

			sum, err := counter.Run(ctx, cfg.Corpus.RootCategory, corpus.Limits{
				MaxPages:      maxPages,
				MaxCategories: maxCategories,
			})
			if err != nil {
				return err
			}

			payload, err := json.MarshalIndent(sum, "", "  ")
			if err != nil {
				return fmt.Errorf("marshal summary: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(payload))
			return nil
		},
	}

	cmd.Flags().StringVar(&rootCategory, "root-category", "", "seed category, e.g. 'Category:Applied mathematics'")
	cmd.Flags().IntVar(&maxPages, "max-pages", 0, "stop after this many unique pages (0 = unlimited)")
	cmd.Flags().IntVar(&maxCategories, "max-categories", 0, "stop after this many categories (0 = unlimited)")

	return cmd
}
