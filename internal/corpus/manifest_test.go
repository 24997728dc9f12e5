package corpus_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Katya0208/wikicorpus/internal/corpus"
)

func TestManifestAppendProducesOneLinePerRecord(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "manifest.jsonl")
	m, err := corpus.OpenManifest(path)
	require.NoError(t, err)

	require.NoError(t, m.Append(corpus.Record{DocID: "aaaa", PageID: 1, Title: "One", WordCount: 10}))
	require.NoError(t, m.Append(corpus.Record{DocID: "bbbb", PageID: 2, Title: "Δύο — юникод", WordCount: 20}))
	require.NoError(t, m.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], `"doc_id":"aaaa"`)
	assert.Contains(t, lines[1], "юникод")
}

func TestOpenManifestTruncatesPreviousRun(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "manifest.jsonl")
	require.NoError(t, os.WriteFile(path, []byte("stale line\n"), 0o600))

	m, err := corpus.OpenManifest(path)
	require.NoError(t, err)
	require.NoError(t, m.Append(corpus.Record{DocID: "cccc"}))
	require.NoError(t, m.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "stale")
}

func TestOpenManifestBadPath(t *testing.T) {
	t.Parallel()

	_, err := corpus.OpenManifest(filepath.Join(t.TempDir(), "no", "such", "dir", "m.jsonl"))
	require.Error(t, err)
}
