package corpus

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/Katya0208/wikicorpus/internal/docid"
	"github.com/Katya0208/wikicorpus/internal/metrics"
	"github.com/Katya0208/wikicorpus/internal/pacer"
	"github.com/Katya0208/wikicorpus/internal/wiki"
	"github.com/Katya0208/wikicorpus/internal/wordcount"
)

// Config holds the settings for one corpus build.
type Config struct {
	// RootCategory seeds the traversal, e.g. "Category:Applied mathematics".
	RootCategory string
	// NeedDocs stops the run after this many documents are kept. Zero means
	// run until the graph is exhausted.
	NeedDocs int
	// MinWords discards pages whose extract counts fewer words.
	MinWords int
}

// Stats summarizes a finished (or aborted) build.
type Stats struct {
	Kept                int    `json:"kept"`
	Filtered            int    `json:"filtered"`
	Missing             int    `json:"missing"`
	CategoriesProcessed int    `json:"categories_processed"`
	CategoriesSeen      int    `json:"categories_seen"`
	UniquePages         int    `json:"unique_pages"`
	StopReason          string `json:"stop_reason"`
}

// Builder runs the traversal and the ingestion pipeline: fetch extract,
// filter by word count, store the document, append a manifest record.
type Builder struct {
	api      API
	store    *DocumentStore
	manifest *Manifest
	pacer    *pacer.Pacer
	logger   *zap.Logger
	cfg      Config
}

// NewBuilder constructs a Builder. A nil pacer disables pacing; a nil
// logger discards logs.
func NewBuilder(api API, store *DocumentStore, manifest *Manifest, p *pacer.Pacer, logger *zap.Logger, cfg Config) *Builder {
	if logger == nil {
		logger = zap.NewNop()
	}
	if p == nil {
		p = pacer.New(pacer.Config{})
	}
	return &Builder{
		api:      api,
		store:    store,
		manifest: manifest,
		pacer:    p,
		logger:   logger,
		cfg:      cfg,
	}
}

// Run walks the graph from the root category until it is exhausted, the
// document target is reached, or an error aborts the run. A transport or
// filesystem error is fatal; the manifest lines and document files written
// up to that point remain valid.
func (b *Builder) Run(ctx context.Context) (Stats, error) {
	if strings.TrimSpace(b.cfg.RootCategory) == "" {
		return Stats{}, fmt.Errorf("root category is required")
	}

	t := newTraversal(b.api, b.pacer, b.logger, 0)
	h := &ingestHandler{b: b, t: t}

	cause, err := t.run(ctx, b.cfg.RootCategory, h)

	stats := Stats{
		Kept:                h.kept,
		Filtered:            h.filtered,
		Missing:             h.missing,
		CategoriesProcessed: t.categoriesProcessed,
		CategoriesSeen:      len(t.seenCategories),
		UniquePages:         len(t.seenPages),
	}
	switch cause {
	case causeHandler:
		stats.StopReason = ReasonDocTarget
	case causeCategoryLimit:
		stats.StopReason = ReasonCategoryLimit
	default:
		stats.StopReason = ReasonExhausted
	}
	if err != nil {
		return stats, err
	}
	return stats, nil
}

type ingestHandler struct {
	b *Builder
	t *traversal

	kept     int
	filtered int
	missing  int
}

func (h *ingestHandler) handlePage(ctx context.Context, m wiki.Member) (bool, error) {
	title := normalizeTitle(m.Title)

	ext, err := h.b.api.FetchExtract(ctx, title)
	if err != nil {
		return false, fmt.Errorf("fetch extract for %q: %w", title, err)
	}
	if ext.Missing() {
		h.missing++
		metrics.IncPageMissing()
		h.b.logger.Debug("page missing, skipped", zap.String("title", title))
		return false, h.b.pacer.WaitDocument(ctx)
	}

	wc := wordcount.Count(ext.Text)
	if wc < h.b.cfg.MinWords {
		h.filtered++
		metrics.IncDocFiltered()
		h.b.logger.Debug("page below word threshold, skipped",
			zap.String("title", ext.Title),
			zap.Int("word_count", wc),
			zap.Int("min_words", h.b.cfg.MinWords),
		)
		return false, h.b.pacer.WaitDocument(ctx)
	}

	id := docid.Assign(ext.PageID, ext.Title)
	if _, err := h.b.store.Put(id, ext.Text); err != nil {
		return false, err
	}
	// Appended only after the document file is fully written, so every
	// manifest line points at a complete file even if the run is stopped.
	rec := Record{
		DocID:        id,
		PageID:       ext.PageID,
		Title:        ext.Title,
		CategorySeed: h.b.cfg.RootCategory,
		WordCount:    wc,
		URL:          h.b.api.PageURL(ext.Title),
		Source:       h.b.api.Source(),
	}
	if err := h.b.manifest.Append(rec); err != nil {
		return false, err
	}

	h.kept++
	metrics.IncDocKept()
	h.b.logger.Info("document kept",
		zap.String("doc_id", id),
		zap.String("title", ext.Title),
		zap.Int("word_count", wc),
		zap.Int("kept", h.kept),
	)

	if h.b.cfg.NeedDocs > 0 && h.kept >= h.b.cfg.NeedDocs {
		// Target reached: stop right here, remaining pages in this
		// category are never fetched and no trailing pacing applies.
		return true, nil
	}
	return false, h.b.pacer.WaitDocument(ctx)
}

// normalizeTitle maps underscore titles to their display form before the
// extract request. Category titles are deliberately left untouched.
func normalizeTitle(title string) string {
	return strings.TrimSpace(strings.ReplaceAll(title, "_", " "))
}
