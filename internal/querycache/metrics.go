package querycache

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	cacheHits = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "refetch_query_cache_hits_total",
		Help: "The total number of resolves served from cached pages",
	})

	cacheMisses = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "refetch_query_cache_misses_total",
		Help: "The total number of resolves that created a new query entry",
	})

	fetchesIssued = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "refetch_fetches_issued_total",
		Help: "The total number of page fetches handed to the fetch primitive",
	}, []string{"direction"})

	fetchErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "refetch_fetch_errors_total",
		Help: "The total number of page fetches that settled with an error",
	})

	fetchesDeduplicated = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "refetch_fetches_deduplicated_total",
		Help: "The total number of fetch requests that attached to an in-flight fetch",
	})

	staleResultsDiscarded = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "refetch_stale_results_discarded_total",
		Help: "The total number of fetch results discarded because their query was superseded",
	})

	recordsPromoted = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "refetch_records_promoted_total",
		Help: "The total number of records seeded into the record cache",
	})

	promotionsSkipped = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "refetch_promotions_skipped_total",
		Help: "The total number of settles whose promotion was skipped over the size ceiling",
	})

	activeQueries = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "refetch_active_queries",
		Help: "The current number of query entries held by the store",
	})
)

func init() {
	prometheus.MustRegister(cacheHits)
	prometheus.MustRegister(cacheMisses)
	prometheus.MustRegister(fetchesIssued)
	prometheus.MustRegister(fetchErrors)
	prometheus.MustRegister(fetchesDeduplicated)
	prometheus.MustRegister(staleResultsDiscarded)
	prometheus.MustRegister(recordsPromoted)
	prometheus.MustRegister(promotionsSkipped)
	prometheus.MustRegister(activeQueries)
}
