// Package corpus_test exercises the traversal and ingestion pipeline
// against an in-memory category graph.
package corpus_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/Katya0208/wikicorpus/internal/corpus"
	"github.com/Katya0208/wikicorpus/internal/wiki"
)

// fakeAPI serves a fixed category graph and extract set.
type fakeAPI struct {
	subcats  map[string][]wiki.Member
	pages    map[string][]wiki.Member
	extracts map[string]wiki.Extract
	errs     map[string]error

	fetched []string // extract fetches, in order
}

func (f *fakeAPI) CategoryMembers(_ context.Context, category string, kind wiki.MemberKind) wiki.Cursor {
	items := f.pages[category]
	if kind == wiki.Subcategories {
		items = f.subcats[category]
	}
	return &sliceCursor{items: items}
}

func (f *fakeAPI) FetchExtract(_ context.Context, title string) (wiki.Extract, error) {
	f.fetched = append(f.fetched, title)
	if err := f.errs[title]; err != nil {
		return wiki.Extract{}, err
	}
	ext, ok := f.extracts[title]
	if !ok {
		return wiki.Extract{PageID: wiki.MissingPageID, Title: title}, nil
	}
	return ext, nil
}

func (f *fakeAPI) PageURL(title string) string {
	return "https://test.local/wiki/" + strings.ReplaceAll(title, " ", "_")
}

func (f *fakeAPI) Source() string {
	return "test.local"
}

type sliceCursor struct {
	items []wiki.Member
	i     int
	cur   wiki.Member
}

func (c *sliceCursor) Next() bool {
	if c.i >= len(c.items) {
		return false
	}
	c.cur = c.items[c.i]
	c.i++
	return true
}

func (c *sliceCursor) Member() wiki.Member { return c.cur }
func (c *sliceCursor) Err() error          { return nil }

func page(id int64, title string) wiki.Member {
	return wiki.Member{PageID: id, Namespace: wiki.ContentNamespace, Title: title}
}

func subcat(title string) wiki.Member {
	return wiki.Member{Namespace: 14, Title: title}
}

func extract(id int64, title string, words int) wiki.Extract {
	return wiki.Extract{PageID: id, Title: title, Text: textOfWords(words)}
}

func textOfWords(n int) string {
	return strings.TrimSpace(strings.Repeat("word ", n))
}

// newBuildEnv wires a Builder over temp storage and returns it with the
// output directory.
func newBuildEnv(t *testing.T, api *fakeAPI, cfg corpus.Config) (*corpus.Builder, string) {
	t.Helper()

	dir := t.TempDir()
	store, err := corpus.NewDocumentStore(filepath.Join(dir, "corpus"))
	require.NoError(t, err)

	manifest, err := corpus.OpenManifest(filepath.Join(dir, "manifest.jsonl"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = manifest.Close() })

	return corpus.NewBuilder(api, store, manifest, nil, zaptest.NewLogger(t), cfg), dir
}

func readManifest(t *testing.T, dir string) []corpus.Record {
	t.Helper()

	data, err := os.ReadFile(filepath.Join(dir, "manifest.jsonl"))
	require.NoError(t, err)

	var records []corpus.Record
	for _, line := range strings.Split(strings.TrimSpace(string(data)), "\n") {
		if line == "" {
			continue
		}
		var rec corpus.Record
		require.NoError(t, json.Unmarshal([]byte(line), &rec))
		records = append(records, rec)
	}
	return records
}
