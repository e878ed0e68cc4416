// Package observability holds the Prometheus metrics and OpenTelemetry tracer used
// by the scanning pipeline.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const namespace = "ribapurify"

// Metrics groups the pipeline collectors.
type Metrics struct {
	FilesAccepted       prometheus.Counter
	FilesRejected       *prometheus.CounterVec
	FilesFailed         *prometheus.CounterVec
	LinesExtracted      prometheus.Counter
	TransactionsEmitted *prometheus.CounterVec
	Batches             *prometheus.CounterVec
	BatchDuration       prometheus.Histogram
	JobsQueued          prometheus.Gauge
}

// NewMetrics registers the collectors on reg. Pass prometheus.NewRegistry() in
// tests to keep registrations isolated.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		FilesAccepted: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "files_accepted_total",
			Help:      "Files that passed validation.",
		}),
		FilesRejected: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "files_rejected_total",
			Help:      "Files rejected by validation, by reason.",
		}, []string{"reason"}),
		FilesFailed: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "files_failed_total",
			Help:      "Admitted files that produced no lines, by kind.",
		}, []string{"kind"}),
		LinesExtracted: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lines_extracted_total",
			Help:      "Raw lines extracted from all sources.",
		}),
		TransactionsEmitted: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transactions_total",
			Help:      "Transactions produced, by category.",
		}, []string{"category"}),
		Batches: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "batches_total",
			Help:      "Processed batches, by outcome.",
		}, []string{"outcome"}),
		BatchDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_duration_seconds",
			Help:      "Wall-clock time spent on a batch.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}),
		JobsQueued: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "jobs_queued",
			Help:      "Scan jobs waiting for a worker.",
		}),
	}
}

// ObserveBatch records one finished batch.
func (m *Metrics) ObserveBatch(outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.Batches.WithLabelValues(outcome).Inc()
	m.BatchDuration.Observe(elapsed.Seconds())
}

// Tracer returns the pipeline tracer from the global provider. Without an SDK
// configured the global provider is a no-op.
func Tracer() trace.Tracer {
	return otel.Tracer("github.com/FACorreiaa/ribapurify")
}
