package wiki_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Katya0208/wikicorpus/internal/metrics"
	"github.com/Katya0208/wikicorpus/internal/wiki"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *wiki.Client {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)

	client, err := wiki.New(wiki.Config{Endpoint: ts.URL + "/w/api.php"}, nil)
	require.NoError(t, err)
	return client
}

func TestCategoryMembersPagination(t *testing.T) {
	t.Parallel()

	var requests int
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		requests++
		require.Equal(t, "categorymembers", r.URL.Query().Get("list"))
		require.Equal(t, "Category:Physics", r.URL.Query().Get("cmtitle"))
		require.Equal(t, "page", r.URL.Query().Get("cmtype"))

		switch r.URL.Query().Get("cmcontinue") {
		case "":
			fmt.Fprint(w, `{
				"continue": {"cmcontinue": "page|42"},
				"query": {"categorymembers": [
					{"pageid": 1, "ns": 0, "title": "Alpha"},
					{"pageid": 2, "ns": 0, "title": "Beta"}
				]}
			}`)
		case "page|42":
			fmt.Fprint(w, `{
				"query": {"categorymembers": [
					{"pageid": 3, "ns": 14, "title": "Category:Gamma"}
				]}
			}`)
		default:
			t.Errorf("unexpected continuation %q", r.URL.Query().Get("cmcontinue"))
		}
	})

	cur := client.CategoryMembers(context.Background(), "Category:Physics", wiki.Pages)

	var got []wiki.Member
	for cur.Next() {
		got = append(got, cur.Member())
	}
	require.NoError(t, cur.Err())
	require.Len(t, got, 3)
	assert.Equal(t, int64(1), got[0].PageID)
	assert.Equal(t, "Beta", got[1].Title)
	assert.Equal(t, 14, got[2].Namespace)
	assert.Equal(t, 2, requests)
}

func TestCategoryMembersLazy(t *testing.T) {
	t.Parallel()

	var requests int
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		requests++
		if r.URL.Query().Get("cmcontinue") == "" {
			fmt.Fprint(w, `{
				"continue": {"cmcontinue": "next"},
				"query": {"categorymembers": [{"pageid": 1, "ns": 0, "title": "Alpha"}]}
			}`)
			return
		}
		fmt.Fprint(w, `{"query": {"categorymembers": [{"pageid": 2, "ns": 0, "title": "Beta"}]}}`)
	})

	cur := client.CategoryMembers(context.Background(), "Category:Physics", wiki.Pages)
	require.True(t, cur.Next())
	// Only the first batch should have been fetched so far.
	assert.Equal(t, 1, requests)
	require.True(t, cur.Next())
	assert.Equal(t, 2, requests)
	require.False(t, cur.Next())
	require.NoError(t, cur.Err())
}

func TestCategoryMembersTransportError(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "upstream broke", http.StatusBadGateway)
	})

	cur := client.CategoryMembers(context.Background(), "Category:Physics", wiki.Subcategories)
	require.False(t, cur.Next())

	var terr *wiki.TransportError
	require.ErrorAs(t, cur.Err(), &terr)
	assert.Equal(t, http.StatusBadGateway, terr.StatusCode)

	// The error is sticky.
	require.False(t, cur.Next())
}

func TestFetchExtract(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "extracts", r.URL.Query().Get("prop"))
		require.Equal(t, "1", r.URL.Query().Get("redirects"))
		fmt.Fprint(w, `{
			"query": {"pages": {"736": {
				"pageid": 736, "ns": 0, "title": "Albert Einstein",
				"extract": "Albert Einstein was a theoretical physicist."
			}}}
		}`)
	})

	ext, err := client.FetchExtract(context.Background(), "Einstein")
	require.NoError(t, err)
	assert.Equal(t, int64(736), ext.PageID)
	assert.Equal(t, "Albert Einstein", ext.Title)
	assert.False(t, ext.Missing())
	assert.Contains(t, ext.Text, "theoretical physicist")
}

func TestFetchExtractMissing(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"query": {"pages": {"-1": {"ns": 0, "title": "No Such Page", "missing": ""}}}}`)
	})

	ext, err := client.FetchExtract(context.Background(), "No Such Page")
	require.NoError(t, err)
	assert.True(t, ext.Missing())
	assert.Equal(t, int64(wiki.MissingPageID), ext.PageID)
	assert.Empty(t, ext.Text)
}

func TestFetchExtractCancellation(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"query": {"pages": {}}}`)
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.FetchExtract(ctx, "Anything")
	var terr *wiki.TransportError
	require.ErrorAs(t, err, &terr)
	require.True(t, errors.Is(err, context.Canceled))
}

func TestPageURLAndSource(t *testing.T) {
	t.Parallel()

	client, err := wiki.New(wiki.Config{Endpoint: "https://en.wikipedia.org/w/api.php"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "en.wikipedia.org", client.Source())
	assert.Equal(t, "https://en.wikipedia.org/wiki/Applied_mathematics", client.PageURL("Applied mathematics"))
}

// apiRequestCount reads the request counter for one operation/outcome pair
// from the default registry. Zero means the series does not exist yet.
func apiRequestCount(t *testing.T, operation, outcome string) float64 {
	t.Helper()

	families, err := prometheus.DefaultGatherer.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() != "corpus_api_requests_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			var op, out string
			for _, label := range m.GetLabel() {
				switch label.GetName() {
				case "operation":
					op = label.GetValue()
				case "outcome":
					out = label.GetValue()
				}
			}
			if op == operation && out == outcome {
				return m.GetCounter().GetValue()
			}
		}
	}
	return 0
}

func TestNonOKStatusCountsAsErrorOutcome(t *testing.T) {
	metrics.Init()

	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "upstream broke", http.StatusBadGateway)
	})

	beforeErr := apiRequestCount(t, "categorymembers", "error")
	beforeOK := apiRequestCount(t, "categorymembers", "ok")

	cur := client.CategoryMembers(context.Background(), "Category:Physics", wiki.Pages)
	require.False(t, cur.Next())
	var terr *wiki.TransportError
	require.ErrorAs(t, cur.Err(), &terr)

	assert.Equal(t, beforeErr+1, apiRequestCount(t, "categorymembers", "error"))
	assert.Equal(t, beforeOK, apiRequestCount(t, "categorymembers", "ok"))
}

func TestNewValidation(t *testing.T) {
	t.Parallel()

	_, err := wiki.New(wiki.Config{}, nil)
	require.Error(t, err)

	_, err = wiki.New(wiki.Config{Endpoint: "/w/api.php"}, nil)
	require.Error(t, err)
}
