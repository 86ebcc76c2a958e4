package httpstats

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors exposed on GET /metrics. Gauges
// track the cache's current contents; counters track operation outcomes
// since process start, broken down by result the way dittofs's
// pkg/metrics/prometheus package breaks cache operations down by
// cache_type.
type Metrics struct {
	registry *prometheus.Registry

	blocksTotal   prometheus.Gauge
	filesTotal    prometheus.Gauge
	physicalBytes prometheus.Gauge
	logicalBytes  prometheus.Gauge

	storeOps    *prometheus.CounterVec
	retrieveOps *prometheus.CounterVec
}

// NewMetrics creates a fresh, process-local Prometheus registry and
// registers the unicache collectors against it. Using a dedicated
// registry rather than the global default keeps repeated test runs
// (which each construct their own Metrics) from panicking on duplicate
// registration.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		registry: reg,
		blocksTotal: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "unicache_blocks_total",
			Help: "Number of distinct content blocks currently stored.",
		}),
		filesTotal: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "unicache_files_total",
			Help: "Number of files currently registered in the cache.",
		}),
		physicalBytes: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "unicache_physical_bytes",
			Help: "Total bytes occupied by distinct blocks on disk.",
		}),
		logicalBytes: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "unicache_logical_bytes",
			Help: "Sum of the logical size of every registered file, before deduplication.",
		}),
		storeOps: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "unicache_store_operations_total",
			Help: "Total store operations by result.",
		}, []string{"result"}),
		retrieveOps: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "unicache_retrieve_operations_total",
			Help: "Total retrieve operations by result.",
		}, []string{"result"}),
	}

	// Pre-create the known label values so they read 0 instead of being
	// absent from /metrics before the first occurrence of each result.
	for _, result := range []string{"ok", "already_exists", "error"} {
		m.storeOps.WithLabelValues(result)
	}
	for _, result := range []string{"ok", "not_found", "corrupt", "error"} {
		m.retrieveOps.WithLabelValues(result)
	}

	return m
}

// Registry returns the collector registry for wiring into promhttp.Handler.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// RecordStore increments the store-operation counter for the given result
// ("ok", "already_exists", or "error").
func (m *Metrics) RecordStore(result string) {
	m.storeOps.WithLabelValues(result).Inc()
}

// RecordRetrieve increments the retrieve-operation counter for the given
// result ("ok", "not_found", "corrupt", or "error").
func (m *Metrics) RecordRetrieve(result string) {
	m.retrieveOps.WithLabelValues(result).Inc()
}

// SetFromStats updates the gauges from a cache stats snapshot.
func (m *Metrics) SetFromStats(blocks, files int, physicalBytes, logicalBytes uint64) {
	m.blocksTotal.Set(float64(blocks))
	m.filesTotal.Set(float64(files))
	m.physicalBytes.Set(float64(physicalBytes))
	m.logicalBytes.Set(float64(logicalBytes))
}
