// Package metrics exposes Prometheus collectors for the corpus builder.
package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	categoriesProcessedTotal prometheus.Counter
	pagesSeenTotal           prometheus.Counter
	docsKeptTotal            prometheus.Counter
	docsFilteredTotal        prometheus.Counter
	pagesMissingTotal        prometheus.Counter
	apiRequestsTotal         *prometheus.CounterVec
	apiRequestDuration       *prometheus.HistogramVec

	once sync.Once
)

// Init initializes the Prometheus collectors. It is safe to call multiple
// times.
func Init() {
	once.Do(func() {
		categoriesProcessedTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "corpus_categories_processed_total",
				Help: "Total number of categories dequeued and enumerated.",
			},
		)

		pagesSeenTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "corpus_pages_seen_total",
				Help: "Total number of unique content-namespace pages discovered.",
			},
		)

		docsKeptTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "corpus_docs_kept_total",
				Help: "Total number of documents written to the corpus.",
			},
		)

		docsFilteredTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "corpus_docs_filtered_total",
				Help: "Total number of pages discarded by the word-count filter.",
			},
		)

		pagesMissingTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "corpus_pages_missing_total",
				Help: "Total number of titles the API reported as missing.",
			},
		)

		apiRequestsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "corpus_api_requests_total",
				Help: "Total number of remote API requests, labeled by operation and outcome.",
			},
			[]string{"operation", "outcome"},
		)

		apiRequestDuration = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "corpus_api_request_duration_seconds",
				Help:    "Histogram of remote API request latencies, labeled by operation.",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
			},
			[]string{"operation"},
		)
	})
}

// IncCategoryProcessed records one fully enumerated category.
func IncCategoryProcessed() {
	if categoriesProcessedTotal != nil {
		categoriesProcessedTotal.Inc()
	}
}

// IncPageSeen records one unique candidate page.
func IncPageSeen() {
	if pagesSeenTotal != nil {
		pagesSeenTotal.Inc()
	}
}

// IncDocKept records one document accepted into the corpus.
func IncDocKept() {
	if docsKeptTotal != nil {
		docsKeptTotal.Inc()
	}
}

// IncDocFiltered records one page rejected by the word-count filter.
func IncDocFiltered() {
	if docsFilteredTotal != nil {
		docsFilteredTotal.Inc()
	}
}

// IncPageMissing records one missing-title response.
func IncPageMissing() {
	if pagesMissingTotal != nil {
		pagesMissingTotal.Inc()
	}
}

// ObserveAPIRequest records one remote API call.
func ObserveAPIRequest(operation string, duration time.Duration, err error) {
	if apiRequestsTotal == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	apiRequestsTotal.WithLabelValues(operation, outcome).Inc()
	apiRequestDuration.WithLabelValues(operation).Observe(duration.Seconds())
}
