package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for dataset ingestion and the record cache.
type Metrics struct {
	// Ingestion runs by outcome: "complete", "failed"
	IngestRuns *prometheus.CounterVec

	// Rows written by successful insert batches
	RowsIngested prometheus.Counter

	// Insert batches by result: "ok", "error"
	Batches *prometheus.CounterVec

	// End-to-end replacement latency
	IngestDuration prometheus.Histogram

	// Record cache lookups by result: "hit", "miss", "error"
	CacheLookups *prometheus.CounterVec

	// Records served to the dashboard by source: "database", "mock"
	RecordsServed *prometheus.CounterVec
}

// New creates a new Metrics instance with all dataset metrics registered.
func New() *Metrics {
	return &Metrics{
		IngestRuns: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "afi_ingest_runs_total",
			Help: "Total bulk replacement runs by outcome",
		}, []string{"outcome"}),

		RowsIngested: promauto.NewCounter(prometheus.CounterOpts{
			Name: "afi_ingest_rows_total",
			Help: "Total rows written by successful insert batches",
		}),

		Batches: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "afi_ingest_batches_total",
			Help: "Total insert batches by result",
		}, []string{"result"}),

		IngestDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "afi_ingest_duration_seconds",
			Help:    "Duration of a full bulk replacement including the delete phase",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}),

		CacheLookups: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "afi_record_cache_lookups_total",
			Help: "Record cache lookups by result",
		}, []string{"result"}),

		RecordsServed: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "afi_dashboard_records_served_total",
			Help: "Records aggregated for dashboard views by data source",
		}, []string{"source"}),
	}
}

// IncrementRun records a finished replacement.
func (m *Metrics) IncrementRun(outcome string) {
	if m != nil {
		m.IngestRuns.WithLabelValues(outcome).Inc()
	}
}

// ObserveBatch records one insert batch.
func (m *Metrics) ObserveBatch(rows int, err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.Batches.WithLabelValues("error").Inc()
		return
	}
	m.Batches.WithLabelValues("ok").Inc()
	m.RowsIngested.Add(float64(rows))
}

// ObserveIngest records the total replacement duration.
func (m *Metrics) ObserveIngest(d time.Duration) {
	if m != nil {
		m.IngestDuration.Observe(d.Seconds())
	}
}

// IncrementCacheLookup records a cache lookup result.
func (m *Metrics) IncrementCacheLookup(result string) {
	if m != nil {
		m.CacheLookups.WithLabelValues(result).Inc()
	}
}

// AddRecordsServed records how many records backed a snapshot.
func (m *Metrics) AddRecordsServed(source string, n int) {
	if m != nil {
		m.RecordsServed.WithLabelValues(source).Add(float64(n))
	}
}
