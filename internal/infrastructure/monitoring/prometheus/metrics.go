// Package prometheus defines the docrisk metrics collector.  A single
// Collector owns its own registry so tests can construct isolated instances
// without global-state collisions.
package prometheus

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "docrisk"

// Collector aggregates every metric the platform emits.  All record methods
// are nil-safe so components can hold an optional *Collector without guards.
type Collector struct {
	registry *prometheus.Registry

	// Retrieval.
	cacheHits      prometheus.Counter
	cacheMisses    prometheus.Counter
	dedupCoalesced prometheus.Counter
	retryAttempts  prometheus.Counter
	fallbackServes prometheus.Counter
	queryDuration  prometheus.Histogram
	prefetchIssued prometheus.Counter

	// Scoring.
	batchRuns       prometheus.Counter
	entitiesScored  prometheus.Counter
	entitiesSkipped prometheus.Counter
	batchDuration   prometheus.Histogram

	// HTTP.
	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
}

// NewCollector constructs a Collector backed by a fresh registry that also
// exposes the standard Go runtime and process collectors.
func NewCollector() *Collector {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	c := &Collector{registry: reg}

	c.cacheHits = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace, Subsystem: "retrieval", Name: "cache_hits_total",
		Help: "Queries served from the result cache.",
	})
	c.cacheMisses = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace, Subsystem: "retrieval", Name: "cache_misses_total",
		Help: "Queries that required a backing-source fetch.",
	})
	c.dedupCoalesced = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace, Subsystem: "retrieval", Name: "dedup_coalesced_total",
		Help: "Concurrent identical queries collapsed onto an in-flight fetch.",
	})
	c.retryAttempts = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace, Subsystem: "retrieval", Name: "retry_attempts_total",
		Help: "Backing-source fetch retries after transient failures.",
	})
	c.fallbackServes = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace, Subsystem: "retrieval", Name: "fallback_serves_total",
		Help: "Queries answered from the stale snapshot after primary exhaustion.",
	})
	c.queryDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace, Subsystem: "retrieval", Name: "query_duration_seconds",
		Help:    "End-to-end query latency including retries.",
		Buckets: prometheus.DefBuckets,
	})
	c.prefetchIssued = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace, Subsystem: "retrieval", Name: "prefetch_issued_total",
		Help: "Next-page prefetches dispatched after a served query.",
	})

	c.batchRuns = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace, Subsystem: "scoring", Name: "batch_runs_total",
		Help: "Completed batch scoring runs.",
	})
	c.entitiesScored = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace, Subsystem: "scoring", Name: "entities_scored_total",
		Help: "Entities scored successfully across all runs.",
	})
	c.entitiesSkipped = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace, Subsystem: "scoring", Name: "entities_skipped_total",
		Help: "Entities skipped due to malformed input or per-entity failure.",
	})
	c.batchDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace, Subsystem: "scoring", Name: "batch_duration_seconds",
		Help:    "Wall-clock duration of a batch scoring run.",
		Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600},
	})

	c.httpRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace, Subsystem: "http", Name: "requests_total",
		Help: "HTTP requests by method, route, and status.",
	}, []string{"method", "route", "status"})
	c.httpDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace, Subsystem: "http", Name: "request_duration_seconds",
		Help:    "HTTP request latency by method and route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	reg.MustRegister(
		c.cacheHits, c.cacheMisses, c.dedupCoalesced, c.retryAttempts,
		c.fallbackServes, c.queryDuration, c.prefetchIssued,
		c.batchRuns, c.entitiesScored, c.entitiesSkipped, c.batchDuration,
		c.httpRequests, c.httpDuration,
	)
	return c
}

// Handler returns the HTTP handler serving this collector's registry.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry for test assertions.
func (c *Collector) Registry() *prometheus.Registry { return c.registry }

func (c *Collector) RecordCacheHit() {
	if c != nil {
		c.cacheHits.Inc()
	}
}

func (c *Collector) RecordCacheMiss() {
	if c != nil {
		c.cacheMisses.Inc()
	}
}

func (c *Collector) RecordDedupCoalesced() {
	if c != nil {
		c.dedupCoalesced.Inc()
	}
}

func (c *Collector) RecordRetryAttempt() {
	if c != nil {
		c.retryAttempts.Inc()
	}
}

func (c *Collector) RecordFallbackServe() {
	if c != nil {
		c.fallbackServes.Inc()
	}
}

func (c *Collector) RecordQueryDuration(d time.Duration) {
	if c != nil {
		c.queryDuration.Observe(d.Seconds())
	}
}

func (c *Collector) RecordPrefetch() {
	if c != nil {
		c.prefetchIssued.Inc()
	}
}

func (c *Collector) RecordBatchRun(scored, skipped int, d time.Duration) {
	if c == nil {
		return
	}
	c.batchRuns.Inc()
	c.entitiesScored.Add(float64(scored))
	c.entitiesSkipped.Add(float64(skipped))
	c.batchDuration.Observe(d.Seconds())
}

func (c *Collector) RecordHTTPRequest(method, route, status string, d time.Duration) {
	if c == nil {
		return
	}
	c.httpRequests.WithLabelValues(method, route, status).Inc()
	c.httpDuration.WithLabelValues(method, route).Observe(d.Seconds())
}
