// Package metrics provides Prometheus metrics for the trail registration service.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Manager manages all Prometheus metrics for the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer
	gatherer         prometheus.Gatherer

	// Cache metrics
	cacheHits          prometheus.Counter
	cacheMisses        prometheus.Counter
	cacheEvictions     prometheus.Counter
	cacheInvalidations prometheus.Counter
	cacheSize          prometheus.Gauge

	// Fan-out metrics
	fanoutBatches      prometheus.Counter
	fanoutCalls        prometheus.Counter
	fanoutCallFailures prometheus.Counter

	// Aggregation metrics
	aggregationRuns       prometheus.Counter
	aggregationErrors     prometheus.Counter
	aggregationDurationMS prometheus.Histogram
	aggregationLastUnix   prometheus.Gauge

	// Debounce metrics
	debounceScheduled prometheus.Counter
	debounceCollapsed prometheus.Counter
	debounceFired     prometheus.Counter

	// Entity operation metrics
	entityOps       *prometheus.CounterVec
	entityOpErrors  *prometheus.CounterVec
	entitiesTracked *prometheus.GaugeVec

	// HTTP metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

// Initialize global metrics.
func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry, customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "hoofprint",
		subsystem:        "core",
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.DefaultRegisterer,
		gatherer:         prometheus.DefaultGatherer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.cacheHits = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "cache_hits_total",
		Help:      "Total number of cache hits",
	})
	m.cacheMisses = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "cache_misses_total",
		Help:      "Total number of cache misses",
	})
	m.cacheEvictions = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "cache_evictions_total",
		Help:      "Total number of entries removed by expiry (lazy or sweep)",
	})
	m.cacheInvalidations = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "cache_invalidations_total",
		Help:      "Total number of entries removed by prefix invalidation",
	})
	m.cacheSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "cache_size",
		Help:      "Current number of live cache entries",
	})

	m.fanoutBatches = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "fanout_batches_total",
		Help:      "Total number of fan-out batches issued",
	})
	m.fanoutCalls = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "fanout_calls_total",
		Help:      "Total number of individual actor calls inside batches",
	})
	m.fanoutCallFailures = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "fanout_call_failures_total",
		Help:      "Total number of actor calls that failed and were excluded",
	})

	m.aggregationRuns = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "aggregation_runs_total",
		Help:      "Total number of analytics aggregation runs",
	})
	m.aggregationErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "aggregation_errors_total",
		Help:      "Total number of aggregation runs that failed",
	})
	m.aggregationDurationMS = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "aggregation_duration_milliseconds",
		Help:      "Histogram of analytics aggregation duration in milliseconds",
		Buckets:   m.histogramBuckets,
	})
	m.aggregationLastUnix = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "aggregation_last_unix_seconds",
		Help:      "Unix timestamp of the last successful aggregation",
	})

	m.debounceScheduled = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "debounce_scheduled_total",
		Help:      "Total number of re-aggregation schedules requested",
	})
	m.debounceCollapsed = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "debounce_collapsed_total",
		Help:      "Total number of pending timers superseded by a newer schedule",
	})
	m.debounceFired = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "debounce_fired_total",
		Help:      "Total number of debounced re-aggregations that actually ran",
	})

	m.entityOps = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "entity_operations_total",
		Help:      "Total entity operations by kind and verb",
	}, []string{"kind", "verb"})
	m.entityOpErrors = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "entity_operation_errors_total",
		Help:      "Total failed entity operations by kind and verb",
	}, []string{"kind", "verb"})
	m.entitiesTracked = auto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "entities_tracked",
		Help:      "Current number of index mappings by kind",
	}, []string{"kind"})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_requests_total",
		Help:      "Total HTTP requests by endpoint, method and status",
	}, []string{"endpoint", "method", "status"})
	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_request_duration_milliseconds",
		Help:      "Histogram of HTTP request duration in milliseconds",
		Buckets:   m.histogramBuckets,
	}, []string{"endpoint", "method", "status"})
}

// Handler returns an HTTP handler serving the custom registry.
func Handler() http.Handler {
	return promhttp.HandlerFor(customRegistry, promhttp.HandlerOpts{})
}

// Package-level helpers on the global manager.

func RecordCacheHit()              { globalManager.cacheHits.Inc() }
func RecordCacheMiss()             { globalManager.cacheMisses.Inc() }
func RecordCacheEviction(n int)    { globalManager.cacheEvictions.Add(float64(n)) }
func RecordCacheInvalidated(n int) { globalManager.cacheInvalidations.Add(float64(n)) }
func UpdateCacheSize(n int)        { globalManager.cacheSize.Set(float64(n)) }

func RecordFanoutBatch()       { globalManager.fanoutBatches.Inc() }
func RecordFanoutCall()        { globalManager.fanoutCalls.Inc() }
func RecordFanoutCallFailure() { globalManager.fanoutCallFailures.Inc() }

func RecordAggregationRun()                  { globalManager.aggregationRuns.Inc() }
func RecordAggregationError()                { globalManager.aggregationErrors.Inc() }
func RecordAggregationDuration(ms float64)   { globalManager.aggregationDurationMS.Observe(ms) }
func UpdateAggregationLastUnix(unix float64) { globalManager.aggregationLastUnix.Set(unix) }

func RecordDebounceScheduled() { globalManager.debounceScheduled.Inc() }
func RecordDebounceCollapsed() { globalManager.debounceCollapsed.Inc() }
func RecordDebounceFired()     { globalManager.debounceFired.Inc() }

func RecordEntityOp(kind, verb string) { globalManager.entityOps.WithLabelValues(kind, verb).Inc() }
func RecordEntityOpError(kind, verb string) {
	globalManager.entityOpErrors.WithLabelValues(kind, verb).Inc()
}
func UpdateEntitiesTracked(kind string, n int) {
	globalManager.entitiesTracked.WithLabelValues(kind).Set(float64(n))
}

func RecordHTTPRequest(endpoint, method, status string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, status).Inc()
}

func RecordHTTPRequestDuration(endpoint, method, status string, ms float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, status).Observe(ms)
}
