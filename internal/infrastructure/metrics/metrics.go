package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the engine's Prometheus metrics and satisfies the pipeline's
// counter interface.
type Metrics struct {
	EntriesProcessed prometheus.Counter
	EntriesSkipped   prometheus.Counter
	RowsEmitted      *prometheus.CounterVec
	Warnings         prometheus.Counter
	JobsTotal        *prometheus.CounterVec
	JobDuration      prometheus.Histogram

	// Backing store metrics
	DBConnections prometheus.Gauge
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		EntriesProcessed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ledgerviews_entries_processed_total",
			Help: "Total number of ledger entries aggregated",
		}),
		EntriesSkipped: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ledgerviews_entries_skipped_total",
			Help: "Total number of incomplete or below-tolerance entries dropped",
		}),
		RowsEmitted: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ledgerviews_rows_emitted_total",
				Help: "Total number of derived rows published by output stream",
			},
			[]string{"stream"},
		),
		Warnings: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ledgerviews_warnings_total",
			Help: "Total number of advisories raised by aggregation jobs",
		}),
		JobsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ledgerviews_jobs_total",
				Help: "Total number of finished aggregation jobs by status",
			},
			[]string{"status"},
		),
		JobDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "ledgerviews_job_duration_seconds",
			Help:    "Duration of aggregation jobs",
			Buckets: []float64{.1, .5, 1, 5, 15, 60, 300, 900},
		}),

		DBConnections: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "ledgerviews_db_connections",
			Help: "Current number of database connections",
		}),
	}
}

// EntryProcessed counts one aggregated entry.
func (m *Metrics) EntryProcessed() {
	m.EntriesProcessed.Inc()
}

// EntrySkipped counts one dropped entry.
func (m *Metrics) EntrySkipped() {
	m.EntriesSkipped.Inc()
}

// RowEmitted counts one published row on a stream.
func (m *Metrics) RowEmitted(stream string) {
	m.RowsEmitted.WithLabelValues(stream).Inc()
}

// WarningIssued counts one advisory.
func (m *Metrics) WarningIssued() {
	m.Warnings.Inc()
}

// JobFinished records a completed job and its duration.
func (m *Metrics) JobFinished(status string, seconds float64) {
	m.JobsTotal.WithLabelValues(status).Inc()
	m.JobDuration.Observe(seconds)
}
