// Package metrics defines the Prometheus collectors for ingestion, indexing
// and search. A nil *Metrics is valid and records nothing.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus collectors for the tool.
type Metrics struct {
	IngestRecordsTotal  *prometheus.CounterVec
	StoreBatchesTotal   *prometheus.CounterVec
	DocsIndexedTotal    prometheus.Counter
	IndexCommitsTotal   *prometheus.CounterVec
	SearchQueriesTotal  *prometheus.CounterVec
	SearchLatency       *prometheus.HistogramVec
	CacheHitsTotal      prometheus.Counter
	CacheMissesTotal    prometheus.Counter
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	gatherer prometheus.Gatherer
}

// New creates the collectors and registers them with reg. A nil reg uses a
// fresh private registry.
func New(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	m := &Metrics{
		IngestRecordsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "caselaw_ingest_records_total",
				Help: "Corpus rows seen during ingestion by outcome (inserted, skipped, malformed).",
			},
			[]string{"outcome"},
		),
		StoreBatchesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "caselaw_store_batches_total",
				Help: "Document store batch writes by status.",
			},
			[]string{"status"},
		),
		DocsIndexedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "caselaw_docs_indexed_total",
				Help: "Total documents added to the search index.",
			},
		),
		IndexCommitsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "caselaw_index_commits_total",
				Help: "Index commits by status.",
			},
			[]string{"status"},
		),
		SearchQueriesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "caselaw_search_queries_total",
				Help: "Search queries by mode and result type (hit, zero_result, error).",
			},
			[]string{"mode", "result_type"},
		),
		SearchLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "caselaw_search_latency_seconds",
				Help:    "Search latency in seconds.",
				Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
			},
			[]string{"cache_status"},
		),
		CacheHitsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "caselaw_cache_hits_total",
				Help: "Total number of query cache hits.",
			},
		),
		CacheMissesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "caselaw_cache_misses_total",
				Help: "Total number of query cache misses.",
			},
		),
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "caselaw_http_requests_total",
				Help: "HTTP requests by method, route and status.",
			},
			[]string{"method", "route", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "caselaw_http_request_duration_seconds",
				Help:    "HTTP request latency in seconds.",
				Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
			},
			[]string{"method", "route"},
		),
		gatherer: reg,
	}

	reg.MustRegister(
		m.IngestRecordsTotal,
		m.StoreBatchesTotal,
		m.DocsIndexedTotal,
		m.IndexCommitsTotal,
		m.SearchQueriesTotal,
		m.SearchLatency,
		m.CacheHitsTotal,
		m.CacheMissesTotal,
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

func (m *Metrics) RecordIngest(outcome string, n int) {
	if m == nil || n == 0 {
		return
	}
	m.IngestRecordsTotal.WithLabelValues(outcome).Add(float64(n))
}

func (m *Metrics) RecordBatch(err error) {
	if m == nil {
		return
	}
	m.StoreBatchesTotal.WithLabelValues(status(err)).Inc()
}

func (m *Metrics) RecordCommit(docs int, err error) {
	if m == nil {
		return
	}
	m.IndexCommitsTotal.WithLabelValues(status(err)).Inc()
	if err == nil {
		m.DocsIndexedTotal.Add(float64(docs))
	}
}

func (m *Metrics) RecordSearch(mode string, total uint64, cacheHit bool, elapsed time.Duration, err error) {
	if m == nil {
		return
	}
	resultType := "hit"
	switch {
	case err != nil:
		resultType = "error"
	case total == 0:
		resultType = "zero_result"
	}
	m.SearchQueriesTotal.WithLabelValues(mode, resultType).Inc()

	cacheStatus := "miss"
	if cacheHit {
		cacheStatus = "hit"
		m.CacheHitsTotal.Inc()
	} else {
		m.CacheMissesTotal.Inc()
	}
	m.SearchLatency.WithLabelValues(cacheStatus).Observe(elapsed.Seconds())
}

func (m *Metrics) RecordHTTP(method, route string, code int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(code)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
