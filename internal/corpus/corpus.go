// Package corpus builds a deduplicated plaintext corpus by breadth-first
// traversal of a category graph. The traversal core is shared by the real
// builder and the dry-run counter so both explore exactly the same graph.
package corpus

import (
	"context"

	"github.com/Katya0208/wikicorpus/internal/wiki"
)

// Lister enumerates the members of a category. The graph walk needs nothing
// else, so the dry-run counter depends only on this.
type Lister interface {
	CategoryMembers(ctx context.Context, category string, kind wiki.MemberKind) wiki.Cursor
}

// API is the remote capability the ingestion pipeline consumes.
type API interface {
	Lister
	FetchExtract(ctx context.Context, title string) (wiki.Extract, error)
	PageURL(title string) string
	Source() string
}
