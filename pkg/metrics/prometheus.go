// Package metrics provides Prometheus metrics for the datastrike KPI service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	registry         prometheus.Registerer

	// Core business metrics
	uploadsTotal       *prometheus.CounterVec
	uploadBytes        prometheus.Histogram
	computationsTotal  *prometheus.CounterVec
	computationLatency *prometheus.HistogramVec
	eventsClassified   prometheus.Counter
	eventsByCategory   *prometheus.CounterVec

	// Roster
	rosterTeams            prometheus.Gauge
	rosterPlayers          prometheus.Gauge
	repositoryQueryLatency *prometheus.HistogramVec

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Errors
	errorRateByComponent *prometheus.CounterVec
	errorRateByEndpoint  *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// latencyBuckets covers 1ms to roughly 16s.
var latencyBuckets = prometheus.ExponentialBuckets(1, 2, 15) //nolint:gochecknoglobals // shared bucket layout

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "datastrike",
		subsystem:        "kpi",
		histogramBuckets: latencyBuckets,
		enabled:          true,
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every metric definition
	auto := promauto.With(m.registry)

	m.uploadsTotal = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "uploads_total",
		Help:      "Uploaded match files by outcome",
	}, []string{"outcome"})

	m.uploadBytes = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "upload_bytes",
		Help:      "Size of accepted uploads in bytes",
		Buckets:   prometheus.ExponentialBuckets(1024, 4, 10),
	})

	m.computationsTotal = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "computations_total",
		Help:      "KPI computations by report kind and outcome",
	}, []string{"kind", "outcome"})

	m.computationLatency = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "computation_latency_milliseconds",
		Help:      "End-to-end KPI computation latency in milliseconds",
		Buckets:   m.histogramBuckets,
	}, []string{"kind"})

	m.eventsClassified = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "events_classified_total",
		Help:      "Event rows passed through the classifier",
	})

	m.eventsByCategory = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "events_by_category_total",
		Help:      "Classified event rows by category",
	}, []string{"category"})

	m.rosterTeams = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "roster_teams",
		Help:      "Teams stored in the roster",
	})

	m.rosterPlayers = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "roster_players",
		Help:      "Players stored in the roster",
	})

	m.repositoryQueryLatency = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "repository_query_latency_milliseconds",
		Help:      "Roster repository query latency in milliseconds",
		Buckets:   m.histogramBuckets,
	}, []string{"op"})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests by endpoint and method",
	}, []string{"endpoint", "method", "status_code"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_request_duration_milliseconds",
		Help:      "HTTP request duration in milliseconds",
		Buckets:   m.histogramBuckets,
	}, []string{"endpoint", "method", "status_code"})

	m.errorRateByComponent = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "errors_by_component_total",
		Help:      "Errors by component and error type",
	}, []string{"component", "error_type"})

	m.errorRateByEndpoint = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "errors_by_endpoint_total",
		Help:      "Errors by endpoint, method and error type",
	}, []string{"endpoint", "method", "error_type"})

	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_memory_bytes",
		Help:      "Heap memory in use",
	})

	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_goroutines",
		Help:      "Number of goroutines",
	})
}

func active() bool { return globalManager != nil && globalManager.enabled }

// RecordUpload counts an upload with its outcome ("ok", "too_large", ...).
func RecordUpload(outcome string) {
	if active() {
		globalManager.uploadsTotal.WithLabelValues(outcome).Inc()
	}
}

// RecordUploadBytes observes the size of an accepted upload.
func RecordUploadBytes(n int64) {
	if active() {
		globalManager.uploadBytes.Observe(float64(n))
	}
}

// RecordComputation counts a KPI computation of kind ("team", "period").
func RecordComputation(kind, outcome string) {
	if active() {
		globalManager.computationsTotal.WithLabelValues(kind, outcome).Inc()
	}
}

// RecordComputationLatency records end-to-end computation latency.
func RecordComputationLatency(kind string, latencyMs float64) {
	if active() {
		globalManager.computationLatency.WithLabelValues(kind).Observe(latencyMs)
	}
}

// AddEventsClassified adds n rows to the classified counter.
func AddEventsClassified(n int) {
	if active() && n > 0 {
		globalManager.eventsClassified.Add(float64(n))
	}
}

// AddEventsByCategory adds n rows to the counter of category.
func AddEventsByCategory(category string, n int) {
	if active() && n > 0 {
		globalManager.eventsByCategory.WithLabelValues(category).Add(float64(n))
	}
}

// UpdateRosterSize sets the roster gauges.
func UpdateRosterSize(teams, players int) {
	if active() {
		globalManager.rosterTeams.Set(float64(teams))
		globalManager.rosterPlayers.Set(float64(players))
	}
}

// RecordRepositoryQueryLatency records roster query latency by operation.
func RecordRepositoryQueryLatency(op string, latencyMs float64) {
	if active() {
		globalManager.repositoryQueryLatency.WithLabelValues(op).Observe(latencyMs)
	}
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	if active() {
		globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
	}
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	if active() {
		globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
	}
}

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	if active() {
		globalManager.errorRateByComponent.WithLabelValues(component, errorType).Inc()
	}
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	if active() {
		globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
	}
}

// UpdateSystemMemoryUsage sets the heap memory in use.
func UpdateSystemMemoryUsage(bytes uint64) {
	if active() {
		globalManager.systemMemoryUsage.Set(float64(bytes))
	}
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	if active() {
		globalManager.systemGoroutineCount.Set(float64(count))
	}
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
