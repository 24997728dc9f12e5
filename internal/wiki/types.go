// Package wiki implements a client for the MediaWiki query API, covering
// paginated category-member listing and plaintext extract retrieval.
package wiki

import "fmt"

// MemberKind selects what entity kind a category-member listing returns.
type MemberKind string

// Member kinds accepted by CategoryMembers.
const (
	Subcategories MemberKind = "subcat"
	Pages         MemberKind = "page"
)

// ContentNamespace is the namespace of regular content pages.
const ContentNamespace = 0

// Member is one entry of a category-member listing.
type Member struct {
	PageID    int64  `json:"pageid"`
	Namespace int    `json:"ns"`
	Title     string `json:"title"`
}

// Extract is the plaintext content of a page. A missing title yields
// PageID == MissingPageID and empty Text; that is a normal outcome the
// caller must handle, not an error.
type Extract struct {
	PageID int64
	Title  string
	Text   string
}

// MissingPageID marks an extract for a title that does not exist.
const MissingPageID = -1

// Missing reports whether the extract describes a nonexistent title.
func (e Extract) Missing() bool {
	return e.PageID == MissingPageID
}

// Cursor iterates a lazy, finite, forward-only sequence of category
// members, issuing one upstream request per page boundary. It is not
// restartable: a new listing starts pagination from the beginning.
//
// Usage follows the scanner pattern:
//
//	cur := client.CategoryMembers(ctx, cat, wiki.Pages)
//	for cur.Next() {
//		m := cur.Member()
//		...
//	}
//	if err := cur.Err(); err != nil { ... }
type Cursor interface {
	// Next advances to the next member, fetching the next API page when the
	// current batch is exhausted. It returns false at the end of the
	// sequence or on error.
	Next() bool
	// Member returns the current member. Valid only after Next returned true.
	Member() Member
	// Err returns the first error encountered, if any.
	Err() error
}

// TransportError reports a failed remote call: a non-2xx status or a
// request-level failure such as a timeout. It is fatal to the current run
// unless the caller wraps it with retry logic.
type TransportError struct {
	URL        string
	StatusCode int
	Err        error
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("wiki api request %s: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("wiki api request %s: unexpected status %d", e.URL, e.StatusCode)
}

// Unwrap exposes the underlying error for errors.Is/As.
func (e *TransportError) Unwrap() error {
	return e.Err
}
