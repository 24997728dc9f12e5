package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Katya0208/wikicorpus/internal/config"
	"github.com/Katya0208/wikicorpus/internal/corpus"
	"github.com/Katya0208/wikicorpus/internal/metrics"
	"github.com/Katya0208/wikicorpus/internal/pacer"
	"github.com/Katya0208/wikicorpus/internal/wiki"
)

// newBuildCmd creates the 'build' subcommand, which runs the real corpus
// build: traversal, extract fetching, filtering and persistence.
func newBuildCmd() *cobra.Command {
	var (
		rootCategory string
		outputDir    string
		needDocs     int
		minWords     int
	)

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Builds the corpus",
		Long: `Walks the category graph from the configured root, fetches page
extracts, keeps pages meeting the word-count minimum, and writes the corpus
files and manifest under the output directory. Stops when the document
target is reached or the graph is exhausted. Interrupting the run leaves
whole document files and valid manifest lines only.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := setup()
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			if cmd.Flags().Changed("root-category") {
				cfg.Corpus.RootCategory = rootCategory
			}
			if cmd.Flags().Changed("output-dir") {
				cfg.Corpus.OutputDir = outputDir
			}
			if cmd.Flags().Changed("need-docs") {
				cfg.Corpus.NeedDocs = needDocs
			}
			if cmd.Flags().Changed("min-words") {
				cfg.Corpus.MinWords = minWords
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			metrics.Init()
			if cfg.Metrics.Addr != "" {
				shutdown := startMetricsServer(cfg.Metrics.Addr, logger)
				defer shutdown()
			}

			return runBuild(ctx, cfg, logger)
		},
	}

	cmd.Flags().StringVar(&rootCategory, "root-category", "", "seed category, e.g. 'Category:Applied mathematics'")
	cmd.Flags().StringVar(&outputDir, "output-dir", "", "directory for the corpus and manifest")
	cmd.Flags().IntVar(&needDocs, "need-docs", 0, "stop after this many documents are kept (0 = exhaust the graph)")
	cmd.Flags().IntVar(&minWords, "min-words", 0, "discard pages with fewer words")

	return cmd
}

func runBuild(ctx context.Context, cfg config.Config, logger *zap.Logger) error {
	client, err := wiki.New(wiki.Config{
		Endpoint:  cfg.API.Endpoint,
		UserAgent: cfg.API.UserAgent,
		Timeout:   cfg.API.Timeout(),
		BatchSize: cfg.API.BatchSize,
	}, logger)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(cfg.Corpus.OutputDir, 0o750); err != nil {
		return fmt.Errorf("create output directory %s: %w", cfg.Corpus.OutputDir, err)
	}
	store, err := corpus.NewDocumentStore(filepath.Join(cfg.Corpus.OutputDir, "corpus"))
	if err != nil {
		return err
	}
	manifest, err := corpus.OpenManifest(filepath.Join(cfg.Corpus.OutputDir, "manifest.jsonl"))
	if err != nil {
		return err
	}
	defer func() {
		if cerr := manifest.Close(); cerr != nil {
			logger.Warn("close manifest", zap.Error(cerr))
		}
	}()

	p := pacer.New(pacer.Config{
		CategoryInterval: cfg.Pacing.CategoryInterval(),
		DocumentInterval: cfg.Pacing.DocumentInterval(),
	})

	builder := corpus.NewBuilder(client, store, manifest, p, logger, corpus.Config{
		RootCategory: cfg.Corpus.RootCategory,
		NeedDocs:     cfg.Corpus.NeedDocs,
		MinWords:     cfg.Corpus.MinWords,
	})

	logger.Info("corpus build starting",
		zap.String("root_category", cfg.Corpus.RootCategory),
		zap.String("output_dir", cfg.Corpus.OutputDir),
		zap.Int("need_docs", cfg.Corpus.NeedDocs),
		zap.Int("min_words", cfg.Corpus.MinWords),
	)

	stats, err := builder.Run(ctx)
	if err != nil {
		logger.Error("corpus build aborted",
			zap.Error(err),
			zap.Int("kept", stats.Kept),
			zap.Int("categories_processed", stats.CategoriesProcessed),
		)
		return err
	}

	logger.Info("corpus build finished",
		zap.Int("kept", stats.Kept),
		zap.Int("filtered", stats.Filtered),
		zap.Int("missing", stats.Missing),
		zap.Int("categories_processed", stats.CategoriesProcessed),
		zap.Int("unique_pages", stats.UniquePages),
		zap.String("stop_reason", stats.StopReason),
	)
	return nil
}

// startMetricsServer runs the Prometheus listener until shutdown is called.
func startMetricsServer(addr string, logger *zap.Logger) func() {
	srv := metrics.NewServer(addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Warn("metrics server stopped", zap.Error(err))
		}
	}()
	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}
}
