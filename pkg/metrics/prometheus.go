// Package metrics provides Prometheus metrics for the recrai matcher.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every collector the service exports.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      prometheus.Labels
	registry         prometheus.Registerer

	// Matching
	fitComputations *prometheus.CounterVec
	fitScores       prometheus.Histogram
	rankingLatency  *prometheus.HistogramVec

	// Catalogue
	jobsLoaded       prometheus.Gauge
	candidatesLoaded prometheus.Gauge
	hiddenCandidates prometheus.Gauge

	// Upstream recruiting backend
	upstreamRequests *prometheus.CounterVec
	upstreamLatency  *prometheus.HistogramVec
	upstreamRetries  prometheus.Counter

	// Queue and worker pool
	queueSize       prometheus.Gauge
	queueCapacity   prometheus.Gauge
	queueRejected   *prometheus.CounterVec
	workerCount     prometheus.Gauge
	workerActive    prometheus.Gauge
	workerProcessed prometheus.Counter

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	errorsByComponent *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // metrics registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "recrai",
		subsystem:        "matcher",
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) counter(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels}
}

func (m *Manager) gauge(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts{Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels}
}

func (m *Manager) histogram(name, help string, buckets []float64) prometheus.HistogramOpts {
	return prometheus.HistogramOpts{Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, Buckets: buckets, ConstLabels: m.constLabels}
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every collector
	auto := promauto.With(m.registry)

	m.fitComputations = auto.NewCounterVec(m.counter("fit_computations_total",
		"Total number of requirement fit computations by match mode"), []string{"mode"})
	m.fitScores = auto.NewHistogram(m.histogram("fit_score",
		"Distribution of computed fit scores (0-100)", prometheus.LinearBuckets(0, 10, 11)))
	m.rankingLatency = auto.NewHistogramVec(m.histogram("ranking_duration_milliseconds",
		"Time spent ranking, by direction (job or candidate)", m.histogramBuckets), []string{"direction"})

	m.jobsLoaded = auto.NewGauge(m.gauge("jobs_loaded", "Jobs returned by the last catalogue fetch"))
	m.candidatesLoaded = auto.NewGauge(m.gauge("candidates_loaded", "Candidates returned by the last catalogue fetch"))
	m.hiddenCandidates = auto.NewGauge(m.gauge("hidden_candidates", "Candidates hidden locally after a failed delete"))

	m.upstreamRequests = auto.NewCounterVec(m.counter("upstream_requests_total",
		"Requests sent to the recruiting backend by endpoint and outcome"), []string{"endpoint", "outcome"})
	m.upstreamLatency = auto.NewHistogramVec(m.histogram("upstream_request_duration_milliseconds",
		"Recruiting backend request duration in milliseconds", m.histogramBuckets), []string{"endpoint"})
	m.upstreamRetries = auto.NewCounter(m.counter("upstream_retries_total", "Retried backend requests"))

	m.queueSize = auto.NewGauge(m.gauge("queue_size", "Scoring tasks waiting in the queue"))
	m.queueCapacity = auto.NewGauge(m.gauge("queue_capacity", "Scoring queue capacity"))
	m.queueRejected = auto.NewCounterVec(m.counter("queue_rejected_total",
		"Tasks the queue refused, by reason"), []string{"reason"})
	m.workerCount = auto.NewGauge(m.gauge("worker_count", "Configured scoring workers"))
	m.workerActive = auto.NewGauge(m.gauge("worker_active", "Scoring workers currently busy"))
	m.workerProcessed = auto.NewCounter(m.counter("worker_tasks_total", "Scoring tasks completed by the pool"))

	m.httpRequests = auto.NewCounterVec(m.counter("http_requests_total",
		"Total number of HTTP requests by endpoint and method"), []string{"endpoint", "method", "status_code"})
	m.httpRequestDuration = auto.NewHistogramVec(m.histogram("http_request_duration_milliseconds",
		"HTTP request duration in milliseconds", m.histogramBuckets), []string{"endpoint", "method", "status_code"})

	m.errorsByComponent = auto.NewCounterVec(m.counter("errors_total",
		"Errors by component and type"), []string{"component", "error_type"})

	m.systemMemoryUsage = auto.NewGauge(m.gauge("system_memory_bytes", "Heap memory in use"))
	m.systemGoroutineCount = auto.NewGauge(m.gauge("system_goroutines", "Number of goroutines"))
}

// RecordFitComputation counts one fit computation and observes its score.
func RecordFitComputation(mode string, fit int) {
	globalManager.fitComputations.WithLabelValues(mode).Inc()
	globalManager.fitScores.Observe(float64(fit))
}

// RecordRankingLatency records how long a ranking pass took.
func RecordRankingLatency(direction string, latencyMs float64) {
	globalManager.rankingLatency.WithLabelValues(direction).Observe(latencyMs)
}

// UpdateCatalogue sets the sizes of the last fetched job and candidate lists.
func UpdateCatalogue(jobs, candidates int) {
	globalManager.jobsLoaded.Set(float64(jobs))
	globalManager.candidatesLoaded.Set(float64(candidates))
}

func UpdateHiddenCandidates(count int) {
	globalManager.hiddenCandidates.Set(float64(count))
}

// RecordUpstreamRequest records one backend call with its outcome.
func RecordUpstreamRequest(endpoint, outcome string, latencyMs float64) {
	globalManager.upstreamRequests.WithLabelValues(endpoint, outcome).Inc()
	globalManager.upstreamLatency.WithLabelValues(endpoint).Observe(latencyMs)
}

func RecordUpstreamRetry() {
	globalManager.upstreamRetries.Inc()
}

// UpdateQueueSize sets the queue depth and capacity gauges.
func UpdateQueueSize(size, capacity int) {
	globalManager.queueSize.Set(float64(size))
	globalManager.queueCapacity.Set(float64(capacity))
}

// RecordQueueRejected counts a refused enqueue.
func RecordQueueRejected(reason string) {
	globalManager.queueRejected.WithLabelValues(reason).Inc()
}

// UpdateWorkerCount sets the configured pool size.
func UpdateWorkerCount(count int) {
	globalManager.workerCount.Set(float64(count))
}

// AddWorkerActive moves the busy-worker gauge by delta.
func AddWorkerActive(delta int) {
	globalManager.workerActive.Add(float64(delta))
}

func RecordWorkerTask() {
	globalManager.workerProcessed.Inc()
}

// RecordHTTPRequest increments the HTTP requests counter.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorsByComponent.WithLabelValues(component, errorType).Inc()
}

// UpdateSystemMemoryUsage sets the system memory usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
