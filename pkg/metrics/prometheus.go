package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Latencies are recorded in milliseconds; a single-row prediction is expected
// to finish well under one.
var defaultLatencyBuckets = []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 25, 50, 100, 250}

// Manager owns all Prometheus collectors for the dashboard.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	customLabels     map[string]string
	registry         prometheus.Registerer

	// Prediction pipeline
	predictions      *prometheus.CounterVec
	requestErrors    *prometheus.CounterVec
	defaultedColumns *prometheus.CounterVec
	encodeLatency    prometheus.Histogram
	inferenceLatency prometheus.Histogram
	renderLatency    prometheus.Histogram

	// Dataset
	datasetRows *prometheus.GaugeVec

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

var globalManager *Manager //nolint:gochecknoglobals // process-wide metrics singleton

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // process-wide registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "churn",
		subsystem:        "dashboard",
		histogramBuckets: defaultLatencyBuckets,
		customLabels:     make(map[string]string),
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
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.customLabels,
	}
}

func (m *Manager) gaugeOpts(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.customLabels,
	}
}

func (m *Manager) histogramOpts(name, help string, buckets []float64) prometheus.HistogramOpts {
	return prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		Buckets:     buckets,
		ConstLabels: m.customLabels,
	}
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.predictions = auto.NewCounterVec(
		m.counterOpts("predictions_total", "Predictions served by outcome label"),
		[]string{"label"},
	)
	m.requestErrors = auto.NewCounterVec(
		m.counterOpts("request_errors_total", "Prediction requests aborted, by error kind"),
		[]string{"kind"},
	)
	m.defaultedColumns = auto.NewCounterVec(
		m.counterOpts("defaulted_columns_total", "Feature columns filled with 0 because the encoder did not produce them"),
		[]string{"column"},
	)
	m.encodeLatency = auto.NewHistogram(
		m.histogramOpts("encode_latency_milliseconds", "Feature encoding latency in milliseconds", m.histogramBuckets),
	)
	m.inferenceLatency = auto.NewHistogram(
		m.histogramOpts("inference_latency_milliseconds", "Classifier inference latency in milliseconds", m.histogramBuckets),
	)
	m.renderLatency = auto.NewHistogram(
		m.histogramOpts("render_latency_milliseconds", "Insight rendering latency in milliseconds", m.histogramBuckets),
	)

	m.datasetRows = auto.NewGaugeVec(
		m.gaugeOpts("dataset_rows", "Historical records loaded, by outcome"),
		[]string{"left"},
	)

	m.httpRequests = auto.NewCounterVec(
		m.counterOpts("http_requests_total", "Total number of HTTP requests by endpoint and method"),
		[]string{"endpoint", "method", "status_code"},
	)
	m.httpRequestDuration = auto.NewHistogramVec(
		m.histogramOpts("http_request_duration_milliseconds", "HTTP request duration in milliseconds", m.histogramBuckets),
		[]string{"endpoint", "method", "status_code"},
	)

	m.systemMemoryUsage = auto.NewGauge(m.gaugeOpts("system_memory_usage_bytes", "System memory usage in bytes"))
	m.systemGoroutineCount = auto.NewGauge(m.gaugeOpts("system_goroutine_count", "Number of goroutines"))
	m.systemGCPauseTime = auto.NewHistogram(
		m.histogramOpts("system_gc_pause_time_milliseconds", "GC pause time in milliseconds",
			[]float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000}),
	)
}

// RecordPrediction counts a served prediction. Labels outside {0,1} are
// rejected so a broken classifier cannot create unbounded series.
func (m *Manager) RecordPrediction(label int) error {
	if label != 0 && label != 1 {
		return ErrUnknownLabel
	}
	m.predictions.WithLabelValues(strconv.Itoa(label)).Inc()
	return nil
}

// RecordPrediction counts a served prediction on the global manager.
func RecordPrediction(label int) error {
	return globalManager.RecordPrediction(label)
}

// RecordRequestError counts an aborted prediction request by kind.
func RecordRequestError(kind string) {
	globalManager.requestErrors.WithLabelValues(kind).Inc()
}

// RecordDefaultedColumn counts a feature column that was zero-filled.
func RecordDefaultedColumn(column string) {
	globalManager.defaultedColumns.WithLabelValues(column).Inc()
}

// RecordEncodeLatency records feature encoding latency in milliseconds.
func RecordEncodeLatency(latencyMs float64) {
	globalManager.encodeLatency.Observe(latencyMs)
}

// RecordInferenceLatency records classifier latency in milliseconds.
func RecordInferenceLatency(latencyMs float64) {
	globalManager.inferenceLatency.Observe(latencyMs)
}

// RecordRenderLatency records insight rendering latency in milliseconds.
func RecordRenderLatency(latencyMs float64) {
	globalManager.renderLatency.Observe(latencyMs)
}

// UpdateDatasetRows sets the loaded record counts per outcome.
func UpdateDatasetRows(retained, churned int) {
	globalManager.datasetRows.WithLabelValues("0").Set(float64(retained))
	globalManager.datasetRows.WithLabelValues("1").Set(float64(churned))
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration in milliseconds.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// UpdateSystemMemoryUsage sets the system memory usage.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the goroutine count.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime records GC pause time in milliseconds.
func RecordSystemGCPauseTime(pauseMs float64) {
	globalManager.systemGCPauseTime.Observe(pauseMs)
}

// GetRegistry returns the custom registry served on /healthz.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
