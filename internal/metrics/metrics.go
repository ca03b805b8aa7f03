// Package metrics exposes Prometheus collectors for the crawler service.
package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	crawlerPagesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sons_crawler_pages_total",
			Help: "Total number of search pages requested, labeled by term and status.",
		},
		[]string{"term", "status"},
	)

	crawlerRecordsAddedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sons_crawler_records_added_total",
			Help: "Total number of new records persisted, labeled by term.",
		},
		[]string{"term"},
	)

	crawlerTermStopsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sons_crawler_term_stops_total",
			Help: "Total number of term loops ended, labeled by stop reason.",
		},
		[]string{"reason"},
	)

	crawlerRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sons_crawler_runs_total",
			Help: "Total number of crawl runs, labeled by outcome.",
		},
		[]string{"status"},
	)

	storeRecords = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "sons_crawler_store_records",
			Help: "Number of records held by the record store after the last write.",
		},
	)

	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests, labeled by method and code.",
		},
		[]string{"method", "code"},
	)

	httpRequestDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Histogram of HTTP request latencies, labeled by method and route.",
			Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1},
		},
		[]string{"method", "route"},
	)

	once sync.Once
)

// Init registers the collectors with the default Prometheus registry.
// It is safe to call this function multiple times.
func Init() {
	once.Do(func() {
		prometheus.MustRegister(
			crawlerPagesTotal,
			crawlerRecordsAddedTotal,
			crawlerTermStopsTotal,
			crawlerRunsTotal,
			storeRecords,
			httpRequestsTotal,
			httpRequestDurationSeconds,
		)
	})
}

// Handler returns an http.Handler for exposing Prometheus metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObservePage counts one page request for term with the given status ("ok", "fetch_error", "extract_error").
func ObservePage(term, status string) {
	crawlerPagesTotal.WithLabelValues(term, status).Inc()
}

// ObserveRecordsAdded counts records persisted for term.
func ObserveRecordsAdded(term string, n int) {
	if n <= 0 {
		return
	}
	crawlerRecordsAddedTotal.WithLabelValues(term).Add(float64(n))
}

// ObserveTermStop counts a term loop ending for reason.
func ObserveTermStop(reason string) {
	crawlerTermStopsTotal.WithLabelValues(reason).Inc()
}

// ObserveRun counts a finished crawl run.
func ObserveRun(status string) {
	crawlerRunsTotal.WithLabelValues(status).Inc()
}

// SetStoreRecords records the store size after a write.
func SetStoreRecords(n int) {
	storeRecords.Set(float64(n))
}

// ObserveHTTPRequest increments the HTTP request metrics.
func ObserveHTTPRequest(method, route string, code int, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, strconv.Itoa(code)).Inc()
	httpRequestDurationSeconds.WithLabelValues(method, route).Observe(duration.Seconds())
}
