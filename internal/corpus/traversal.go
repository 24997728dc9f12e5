package corpus

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/Katya0208/wikicorpus/internal/metrics"
	"github.com/Katya0208/wikicorpus/internal/pacer"
	"github.com/Katya0208/wikicorpus/internal/wiki"
)

// Stop reasons reported by traversal runs.
const (
	ReasonPageLimit     = "reached page limit"
	ReasonCategoryLimit = "reached category limit"
	ReasonExhausted     = "traversal exhausted"
	ReasonDocTarget     = "reached document target"
)

type stopCause int

const (
	causeExhausted stopCause = iota
	causeCategoryLimit
	causeHandler
)

// pageHandler consumes unique content-namespace page candidates. Returning
// stop=true ends the walk immediately, with no trailing pacing wait.
type pageHandler interface {
	handlePage(ctx context.Context, m wiki.Member) (stop bool, err error)
}

// traversal is the breadth-first walk over the category graph. Categories
// are visited exactly once, so cycles terminate; pageids are admitted to a
// handler at most once, so pages shared between categories are not
// reprocessed. All state is in-memory and discarded with the run.
type traversal struct {
	api    Lister
	pacer  *pacer.Pacer
	logger *zap.Logger

	// maxCategories caps how many categories are fully processed. Zero
	// means unlimited.
	maxCategories int

	seenCategories      map[string]struct{}
	seenPages           map[int64]struct{}
	frontier            []string
	categoriesProcessed int
}

func newTraversal(api Lister, p *pacer.Pacer, logger *zap.Logger, maxCategories int) *traversal {
	if p == nil {
		p = pacer.New(pacer.Config{})
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &traversal{
		api:            api,
		pacer:          p,
		logger:         logger,
		maxCategories:  maxCategories,
		seenCategories: make(map[string]struct{}),
		seenPages:      make(map[int64]struct{}),
	}
}

func (t *traversal) run(ctx context.Context, root string, h pageHandler) (stopCause, error) {
	t.frontier = append(t.frontier, root)

	for len(t.frontier) > 0 {
		if err := ctx.Err(); err != nil {
			return causeExhausted, fmt.Errorf("traversal canceled: %w", err)
		}

		category := t.frontier[0]
		t.frontier = t.frontier[1:]
		if _, ok := t.seenCategories[category]; ok {
			// Duplicates may be enqueued before being dequeued; this
			// dequeue check is the single deduplication point.
			continue
		}
		t.seenCategories[category] = struct{}{}
		t.categoriesProcessed++
		metrics.IncCategoryProcessed()
		t.logger.Debug("processing category",
			zap.String("category", category),
			zap.Int("frontier", len(t.frontier)),
		)

		if err := t.enqueueSubcategories(ctx, category); err != nil {
			return causeExhausted, err
		}

		stop, err := t.walkPages(ctx, category, h)
		if err != nil {
			return causeExhausted, err
		}
		if stop {
			return causeHandler, nil
		}

		if t.maxCategories > 0 && t.categoriesProcessed >= t.maxCategories {
			return causeCategoryLimit, nil
		}
		if err := t.pacer.WaitCategory(ctx); err != nil {
			return causeExhausted, err
		}
	}
	return causeExhausted, nil
}

func (t *traversal) enqueueSubcategories(ctx context.Context, category string) error {
	cur := t.api.CategoryMembers(ctx, category, wiki.Subcategories)
	for cur.Next() {
		sub := cur.Member().Title
		if _, ok := t.seenCategories[sub]; !ok {
			t.frontier = append(t.frontier, sub)
		}
	}
	if err := cur.Err(); err != nil {
		return fmt.Errorf("list subcategories of %s: %w", category, err)
	}
	return nil
}

func (t *traversal) walkPages(ctx context.Context, category string, h pageHandler) (bool, error) {
	cur := t.api.CategoryMembers(ctx, category, wiki.Pages)
	for cur.Next() {
		m := cur.Member()
		if m.Namespace != wiki.ContentNamespace {
			continue
		}
		if _, ok := t.seenPages[m.PageID]; ok {
			continue
		}
		// Mark before handling: a page that turns out missing or filtered
		// must not be retried when it reappears under another category.
		t.seenPages[m.PageID] = struct{}{}
		metrics.IncPageSeen()

		stop, err := h.handlePage(ctx, m)
		if err != nil {
			return false, err
		}
		if stop {
			return true, nil
		}
	}
	if err := cur.Err(); err != nil {
		return false, fmt.Errorf("list pages of %s: %w", category, err)
	}
	return false, nil
}
