package instrumentation

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics contains the Prometheus metrics for the engine pipeline.
type Metrics struct {
	BatchesConsumed prometheus.Counter
	OrdersProcessed prometheus.Counter
	RecordsDropped  prometheus.Counter
	ComputeLatency  prometheus.Histogram
	BatchLag        prometheus.Histogram
	SnapshotAgeSec  prometheus.Gauge
	ErrorsTotal     *prometheus.CounterVec
}

// NewMetrics creates and registers all Prometheus metrics.
func NewMetrics() *Metrics {
	return &Metrics{
		BatchesConsumed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "royaltyflow_batches_consumed_total",
			Help: "Total number of order batches consumed from the stream",
		}),

		OrdersProcessed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "royaltyflow_orders_processed_total",
			Help: "Total number of orders enriched by the metrics engine",
		}),

		RecordsDropped: promauto.NewCounter(prometheus.CounterOpts{
			Name: "royaltyflow_records_dropped_total",
			Help: "Total number of raw feed records rejected at the boundary",
		}),

		ComputeLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "royaltyflow_compute_latency_ms",
			Help:    "Time to compute one full metrics batch in milliseconds",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000},
		}),

		BatchLag: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "royaltyflow_batch_lag_ms",
			Help:    "Time between feed fetch and batch processing in milliseconds",
			Buckets: []float64{10, 50, 100, 250, 500, 1000, 2000, 5000},
		}),

		SnapshotAgeSec: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "royaltyflow_snapshot_age_seconds",
			Help: "Age of the most recently published snapshot in seconds",
		}),

		ErrorsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "royaltyflow_errors_total",
			Help: "Total number of errors by component and type",
		}, []string{"component", "error_type"}),
	}
}

// RecordBatch records one consumed batch of n orders.
func (m *Metrics) RecordBatch(orders int) {
	m.BatchesConsumed.Inc()
	m.OrdersProcessed.Add(float64(orders))
}

// RecordDropped counts records rejected at the feed boundary.
func (m *Metrics) RecordDropped(n int) {
	m.RecordsDropped.Add(float64(n))
}

// RecordComputeLatency records the time one batch computation took.
func (m *Metrics) RecordComputeLatency(latencyMs float64) {
	m.ComputeLatency.Observe(latencyMs)
}

// RecordBatchLag records the delay between fetch and processing.
func (m *Metrics) RecordBatchLag(lagMs float64) {
	m.BatchLag.Observe(lagMs)
}

// RecordSnapshotAge updates the published snapshot age gauge.
func (m *Metrics) RecordSnapshotAge(ageSec float64) {
	m.SnapshotAgeSec.Set(ageSec)
}

// RecordError increments the error counter.
func (m *Metrics) RecordError(component, errorType string) {
	m.ErrorsTotal.WithLabelValues(component, errorType).Inc()
}
