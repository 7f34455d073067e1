// Package metrics provides performance tracking and observability for Quasar
// using Prometheus metrics. It offers collectors for the engine's operational
// counters including table lifecycle, row folding, filter application, and
// serialization latency.
//
// # Overview
//
// The metrics package provides:
//   - Prometheus-compatible metrics collection
//   - Pre-defined metrics for engine operations
//   - Latency tracking utilities
//   - Thread-safe metric recording
//   - Automatic metric registration
//
// # Basic Usage
//
//	// Record table registrations
//	metrics.TablesRegistered.Inc()
//
//	// Track filter application
//	metrics.FiltersApplied.WithLabelValues("Sort", "success").Inc()
//
//	// Track serialization latency
//	timer := metrics.NewTimer("serialize")
//	blobs, err := table.Serialize(opts)
//	metrics.SerializationLatency.Observe(float64(timer.Stop().Nanoseconds()))
//
// # Metric Types
//
// Counter: Monotonically increasing values (e.g., total rows added)
// Gauge: Values that can go up or down (e.g., live tables)
// Histogram: Distribution of values (e.g., latency percentiles)
//
// # Performance Considerations
//
// Metrics are designed to have minimal overhead:
//   - Lock-free atomic operations where possible
//   - Efficient histogram buckets
//   - No per-row instrumentation on hot paths
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// TablesRegistered tracks the total number of tables registered with a manager.
	//
	// Example:
	//	metrics.TablesRegistered.Inc()
	TablesRegistered = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "quasar_tables_registered_total",
			Help: "Total number of tables registered",
		},
	)

	// TablesReleased tracks the total number of tables released from a manager.
	TablesReleased = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "quasar_tables_released_total",
			Help: "Total number of tables released",
		},
	)

	// LiveTables tracks the number of tables currently registered and not released.
	LiveTables = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "quasar_live_tables",
			Help: "Number of tables currently registered",
		},
	)

	// RowsAdded tracks rows added to tables.
	// Labels: outcome (appended/folded) — folded rows were summed into a
	// summary row because the table reached its row cap.
	RowsAdded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quasar_rows_added_total",
			Help: "Total number of rows added to tables",
		},
		[]string{"outcome"},
	)

	// FiltersApplied tracks filter applications by filter name and status.
	// Labels: filter (registered filter name), status (success/failure)
	//
	// Example:
	//	metrics.FiltersApplied.WithLabelValues("Truncate", "success").Inc()
	FiltersApplied = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quasar_filters_applied_total",
			Help: "Total number of filters applied to tables",
		},
		[]string{"filter", "status"},
	)

	// Serializations tracks completed table forest serializations.
	Serializations = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "quasar_serializations_total",
			Help: "Total number of table forest serializations",
		},
	)

	// SerializationLatency tracks the distribution of serialization latencies
	// in nanoseconds. The histogram buckets are optimized for in-memory
	// encode paths.
	//
	// Example:
	//	timer := metrics.NewTimer("serialize")
	//	table.Serialize(opts)
	//	metrics.SerializationLatency.Observe(float64(timer.Stop().Nanoseconds()))
	SerializationLatency = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name: "quasar_serialization_latency_nanoseconds",
			Help: "Serialization latency in nanoseconds",
			Buckets: []float64{
				1000,   // 1μs - Tiny tables
				10000,  // 10μs - Small tables
				100000, // 100μs - Typical reports
				1e6,    // 1ms - Large reports
				1e7,    // 10ms - Deep forests
				1e8,    // 100ms - Very large forests
				1e9,    // 1s - Pathological cases
			},
		},
	)

	// ArchiveEncodeDuration tracks archive encode durations in nanoseconds.
	// Labels: algorithm (compression algorithm name)
	ArchiveEncodeDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "quasar_archive_encode_duration_nanoseconds",
			Help: "Archive encode duration in nanoseconds",
			Buckets: []float64{
				1e5, // 100μs
				1e6, // 1ms
				1e7, // 10ms
				1e8, // 100ms
				1e9, // 1s
			},
		},
		[]string{"algorithm"},
	)

	// ArchiveDecodeDuration tracks archive decode durations in nanoseconds.
	// Labels: algorithm (compression algorithm name)
	ArchiveDecodeDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "quasar_archive_decode_duration_nanoseconds",
			Help: "Archive decode duration in nanoseconds",
			Buckets: []float64{
				1e5, // 100μs
				1e6, // 1ms
				1e7, // 10ms
				1e8, // 100ms
				1e9, // 1s
			},
		},
		[]string{"algorithm"},
	)
)

// Timer provides a simple timing mechanism for measuring operation durations.
// It captures the start time on creation and calculates elapsed time on stop.
type Timer struct {
	start time.Time
	name  string
}

// NewTimer creates a new timer and starts timing immediately.
// The name parameter is for identification in logs or metrics.
//
// Example:
//
//	timer := metrics.NewTimer("merge")
//	dest.AddDataTable(src)
//	duration := timer.Stop()
//	logger.Info("tables merged", zap.Duration("duration", duration))
func NewTimer(name string) *Timer {
	return &Timer{
		start: time.Now(),
		name:  name,
	}
}

// Stop stops the timer and returns the elapsed duration since creation.
// The timer can be stopped multiple times, each returning the total
// elapsed time since creation.
func (t *Timer) Stop() time.Duration {
	duration := time.Since(t.start)
	return duration
}
