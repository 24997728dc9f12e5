package corpus

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/Katya0208/wikicorpus/internal/pacer"
	"github.com/Katya0208/wikicorpus/internal/wiki"
)

// Limits caps a dry run. Zero means unlimited.
type Limits struct {
	MaxPages      int
	MaxCategories int
}

// Summary reports what a dry run saw.
type Summary struct {
	CategoriesProcessed int    `json:"categories_processed"`
	CategoriesSeen      int    `json:"categories_seen"`
	UniquePages         int    `json:"unique_pages"`
	StoppedReason       string `json:"stopped_reason"`
}

// Counter mirrors the builder's traversal without fetching any content. It
// estimates reachable corpus size before spending fetch quota: given the
// same root and no limits, its category and unique-page counts equal what a
// full build would produce.
type Counter struct {
	api    Lister
	pacer  *pacer.Pacer
	logger *zap.Logger
}

// NewCounter constructs a Counter.
func NewCounter(api Lister, p *pacer.Pacer, logger *zap.Logger) *Counter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Counter{api: api, pacer: p, logger: logger}
}

// Run walks the graph from root, tallying unique pageids and processed
// categories.
func (c *Counter) Run(ctx context.Context, root string, limits Limits) (Summary, error) {
	if strings.TrimSpace(root) == "" {
		return Summary{}, fmt.Errorf("root category is required")
	}

	t := newTraversal(c.api, c.pacer, c.logger, limits.MaxCategories)
	h := &tallyHandler{maxPages: limits.MaxPages}

	cause, err := t.run(ctx, root, h)

	sum := Summary{
		CategoriesProcessed: t.categoriesProcessed,
		CategoriesSeen:      len(t.seenCategories),
		UniquePages:         len(t.seenPages),
	}
	switch cause {
	case causeHandler:
		sum.StoppedReason = ReasonPageLimit
	case causeCategoryLimit:
		sum.StoppedReason = ReasonCategoryLimit
	default:
		sum.StoppedReason = ReasonExhausted
	}
	if err != nil {
		return sum, err
	}
	return sum, nil
}

type tallyHandler struct {
	maxPages int
	unique   int
}

func (h *tallyHandler) handlePage(_ context.Context, _ wiki.Member) (bool, error) {
	h.unique++
	if h.maxPages > 0 && h.unique >= h.maxPages {
		return true, nil
	}
	return false, nil
}
