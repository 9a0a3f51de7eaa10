package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every Prometheus collector of the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      map[string]string
	registry         prometheus.Registerer

	// Pipeline
	projections          *prometheus.CounterVec
	projectionErrors     prometheus.Counter
	projectionLatency    prometheus.Histogram
	sparseRankings       prometheus.Counter
	noCompProjections    prometheus.Counter
	skippedRules         *prometheus.CounterVec
	determinismViolation prometheus.Counter
	batchSize            prometheus.Histogram

	// Corpus snapshot
	corpusEntries          prometheus.Gauge
	snapshotPublishes      prometheus.Counter
	snapshotPublishLatency prometheus.Histogram
	snapshotLastUnix       prometheus.Gauge

	// Workers
	workerActive prometheus.Gauge

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Errors
	errorsByComponent *prometheus.CounterVec
}

var (
	globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager
	globalOnce    sync.Once

	// Custom registry to avoid default Go metrics.
	customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // metrics registry
)

func global() *Manager {
	globalOnce.Do(func() {
		globalManager = NewManager(WithPrometheusRegistry(customRegistry))
	})
	return globalManager
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "draftrange",
		subsystem:        "pipeline",
		histogramBuckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 25, 50, 100, 250},
		constLabels:      map[string]string{},
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) counterOpts(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
	}
}

func (m *Manager) gaugeOpts(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
	}
}

func (m *Manager) histogramOpts(name, help string, buckets []float64) prometheus.HistogramOpts {
	return prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels, Buckets: buckets,
	}
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.projections = auto.NewCounterVec(
		m.counterOpts("projections_total", "Projections produced, by archetype assignment method"),
		[]string{"method"},
	)
	m.projectionErrors = auto.NewCounter(m.counterOpts("projection_errors_total", "Projections that failed"))
	m.projectionLatency = auto.NewHistogram(m.histogramOpts(
		"projection_latency_milliseconds", "Time to classify, rank, score and aggregate one prospect", m.histogramBuckets))
	m.sparseRankings = auto.NewCounter(m.counterOpts("sparse_rankings_total", "Rankings with fewer eligible comps than requested"))
	m.noCompProjections = auto.NewCounter(m.counterOpts("no_comp_projections_total", "Projections without any eligible comp"))
	m.skippedRules = auto.NewCounterVec(
		m.counterOpts("skipped_rules_total", "Tier rules skipped for missing inputs"),
		[]string{"rule"},
	)
	m.determinismViolation = auto.NewCounter(m.counterOpts("determinism_violations_total", "Projections that were not reproducible"))
	m.batchSize = auto.NewHistogram(m.histogramOpts(
		"batch_size", "Prospects per batch request", prometheus.ExponentialBuckets(1, 2, 10)))

	m.corpusEntries = auto.NewGauge(m.gaugeOpts("corpus_entries", "Profiles in the current corpus snapshot"))
	m.snapshotPublishes = auto.NewCounter(m.counterOpts("snapshot_publishes_total", "Corpus snapshots published"))
	m.snapshotPublishLatency = auto.NewHistogram(m.histogramOpts(
		"snapshot_publish_duration_milliseconds", "Time to build and publish a corpus snapshot", m.histogramBuckets))
	m.snapshotLastUnix = auto.NewGauge(m.gaugeOpts("snapshot_last_unix", "Unix time of the last snapshot publish"))

	m.workerActive = auto.NewGauge(m.gaugeOpts("worker_active", "Workers currently projecting a prospect"))

	m.httpRequests = auto.NewCounterVec(
		m.counterOpts("http_requests_total", "HTTP requests by endpoint, method and status"),
		[]string{"endpoint", "method", "status_code"},
	)
	m.httpRequestDuration = auto.NewHistogramVec(
		m.histogramOpts("http_request_duration_milliseconds", "HTTP request duration in milliseconds", m.histogramBuckets),
		[]string{"endpoint", "method", "status_code"},
	)

	m.errorsByComponent = auto.NewCounterVec(
		m.counterOpts("errors_total", "Errors by component and type"),
		[]string{"component", "type"},
	)
}

// RecordProjection counts a projection by assignment method and its latency.
func RecordProjection(method string, latencyMs float64) {
	g := global()
	g.projections.WithLabelValues(method).Inc()
	g.projectionLatency.Observe(latencyMs)
}

// RecordProjectionError counts a failed projection.
func RecordProjectionError() {
	global().projectionErrors.Inc()
}

// RecordSparseRanking counts a ranking that returned fewer comps than requested.
func RecordSparseRanking() {
	global().sparseRankings.Inc()
}

// RecordNoComps counts a projection that had no comps at all.
func RecordNoComps() {
	global().noCompProjections.Inc()
}

// RecordSkippedRule counts a tier rule skipped for missing inputs.
func RecordSkippedRule(rule string) {
	global().skippedRules.WithLabelValues(rule).Inc()
}

// RecordDeterminismViolation counts a non-reproducible projection.
func RecordDeterminismViolation() {
	global().determinismViolation.Inc()
}

// RecordBatchSize observes the size of a batch request.
func RecordBatchSize(n int) {
	global().batchSize.Observe(float64(n))
}

// RecordSnapshotPublish records a snapshot publish of the given size.
func RecordSnapshotPublish(entries int, duration time.Duration) {
	g := global()
	g.corpusEntries.Set(float64(entries))
	g.snapshotPublishes.Inc()
	g.snapshotPublishLatency.Observe(float64(duration.Microseconds()) / 1000)
	g.snapshotLastUnix.Set(float64(time.Now().Unix()))
}

// AddWorkerActive adjusts the active worker gauge by delta.
func AddWorkerActive(delta int) {
	global().workerActive.Add(float64(delta))
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	global().httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	global().httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	global().errorsByComponent.WithLabelValues(component, errorType).Inc()
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	global()
	return customRegistry
}
