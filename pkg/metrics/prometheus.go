// Package metrics provides Prometheus metrics for the Sportsworld service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every collector exported by the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Live feed
	deltasPublished prometheus.Counter
	deltasMerged    *prometheus.CounterVec
	liveSubscribers prometheus.Gauge
	wsClients       prometheus.Gauge

	// Synchronizer
	snapshotSize  *prometheus.GaugeVec
	pendingWrites *prometheus.GaugeVec
	optimistic    *prometheus.CounterVec
	validation    *prometheus.CounterVec

	// Durable store
	storeWrites       *prometheus.CounterVec
	storeWriteLatency *prometheus.HistogramVec
	storeReads        *prometheus.CounterVec

	// Write-behind queue
	queueSize          prometheus.Gauge
	queueCapacity      prometheus.Gauge
	queueEnqueueErrors *prometheus.CounterVec
	writerCount        prometheus.Gauge

	// Text generation
	textgenRequests *prometheus.CounterVec

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
}

var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // avoids default Go collectors

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "sportsworld",
		subsystem:        "storefront",
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return promauto.With(m.registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      name,
		Help:      help,
	}, labels)
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      name,
		Help:      help,
	})
}

func (m *Manager) gaugeVec(name, help string, labels ...string) *prometheus.GaugeVec {
	return promauto.With(m.registry).NewGaugeVec(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      name,
		Help:      help,
	}, labels)
}

func (m *Manager) histogramVec(name, help string, labels ...string) *prometheus.HistogramVec {
	return promauto.With(m.registry).NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      name,
		Help:      help,
		Buckets:   m.histogramBuckets,
	}, labels)
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.deltasPublished = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "live_deltas_published_total",
		Help:      "Delta events emitted by the live publisher",
	})
	m.deltasMerged = m.counterVec("live_deltas_merged_total", "Delta events folded into the scores snapshot by outcome", "outcome")
	m.liveSubscribers = m.gauge("live_subscribers", "Registered live feed listeners")
	m.wsClients = m.gauge("websocket_clients", "Connected websocket score clients")

	m.snapshotSize = m.gaugeVec("snapshot_records", "Records held in each in-memory snapshot", "collection")
	m.pendingWrites = m.gaugeVec("pending_writes", "Durable writes still in flight per collection", "collection")
	m.optimistic = m.counterVec("optimistic_updates_total", "In-memory updates applied ahead of durable writes", "collection", "kind")
	m.validation = m.counterVec("validation_rejections_total", "Mutations rejected before touching state", "collection")

	m.storeWrites = m.counterVec("store_writes_total", "Durable store writes by collection and result", "collection", "op", "result")
	m.storeWriteLatency = m.histogramVec("store_write_latency_milliseconds", "Durable store write latency in milliseconds", "collection", "op")
	m.storeReads = m.counterVec("store_reads_total", "Durable store reads by collection and result", "collection", "result")

	m.queueSize = m.gauge("write_queue_size", "Queued durable writes")
	m.queueCapacity = m.gauge("write_queue_capacity", "Capacity of the durable write queue")
	m.queueEnqueueErrors = m.counterVec("write_queue_enqueue_errors_total", "Rejected durable write enqueues by reason", "reason")
	m.writerCount = m.gauge("writer_count", "Durable write workers")

	m.textgenRequests = m.counterVec("textgen_requests_total", "Text generation requests by result", "kind", "result")

	m.httpRequests = m.counterVec("http_requests_total", "HTTP requests by endpoint, method and status", "endpoint", "method", "status_code")
	m.httpRequestDuration = m.histogramVec("http_request_duration_milliseconds", "HTTP request duration in milliseconds", "endpoint", "method", "status_code")

	m.systemMemoryUsage = m.gauge("system_memory_usage_bytes", "Heap bytes allocated")
	m.systemGoroutineCount = m.gauge("system_goroutine_count", "Number of goroutines")
}

// RecordDeltaPublished counts one emitted delta.
func RecordDeltaPublished() { globalManager.deltasPublished.Inc() }

// RecordDeltaMerged counts a delta by merge outcome (applied, not_found, frozen, noop).
func RecordDeltaMerged(outcome string) { globalManager.deltasMerged.WithLabelValues(outcome).Inc() }

// UpdateLiveSubscribers sets the number of live feed listeners.
func UpdateLiveSubscribers(n int) { globalManager.liveSubscribers.Set(float64(n)) }

// UpdateWebsocketClients sets the number of connected websocket clients.
func UpdateWebsocketClients(n int) { globalManager.wsClients.Set(float64(n)) }

// UpdateSnapshotSize sets the record count of one snapshot.
func UpdateSnapshotSize(collection string, n int) {
	globalManager.snapshotSize.WithLabelValues(collection).Set(float64(n))
}

// UpdatePendingWrites sets the in-flight durable writes of a collection.
func UpdatePendingWrites(collection string, n int) {
	globalManager.pendingWrites.WithLabelValues(collection).Set(float64(n))
}

// RecordOptimisticUpdate counts a memory-first mutation (replace, append, merge...).
func RecordOptimisticUpdate(collection, kind string) {
	globalManager.optimistic.WithLabelValues(collection, kind).Inc()
}

// RecordValidationRejection counts a mutation refused by validation.
func RecordValidationRejection(collection string) {
	globalManager.validation.WithLabelValues(collection).Inc()
}

// RecordStoreWrite records one durable write and its latency.
func RecordStoreWrite(collection, op string, err error, latencyMs float64) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	globalManager.storeWrites.WithLabelValues(collection, op, result).Inc()
	globalManager.storeWriteLatency.WithLabelValues(collection, op).Observe(latencyMs)
}

// RecordStoreRead records one durable read.
func RecordStoreRead(collection string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	globalManager.storeReads.WithLabelValues(collection, result).Inc()
}

// UpdateQueueSize sets the current write queue length.
func UpdateQueueSize(size int) { globalManager.queueSize.Set(float64(size)) }

// UpdateQueueCapacity sets the write queue capacity.
func UpdateQueueCapacity(capacity int) { globalManager.queueCapacity.Set(float64(capacity)) }

// RecordQueueEnqueueError counts a rejected enqueue.
func RecordQueueEnqueueError(reason string) {
	globalManager.queueEnqueueErrors.WithLabelValues(reason).Inc()
}

// UpdateWriterCount sets the number of durable write workers.
func UpdateWriterCount(n int) { globalManager.writerCount.Set(float64(n)) }

// RecordTextgen counts a text generation call; result is "ok" or "fallback".
func RecordTextgen(kind, result string) {
	globalManager.textgenRequests.WithLabelValues(kind, result).Inc()
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, durationMs float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
}

// UpdateSystemMemoryUsage sets the heap usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) { globalManager.systemMemoryUsage.Set(float64(bytes)) }

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) { globalManager.systemGoroutineCount.Set(float64(count)) }

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
