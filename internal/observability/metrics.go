package observability

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters and histograms for the import
// pipeline, together with the registry they live in so a finished run can
// read the final values back out.
type Metrics struct {
	RowsProcessed  prometheus.Counter
	RecordsEmitted prometheus.Counter
	RowsSkipped    prometheus.Counter
	DataNotes      prometheus.Counter
	RowsUpserted   prometheus.Counter

	// Sample reconciliation outcomes, labels: outcome={resolved,unknown,unresolved}.
	ReconcileOutcomes *prometheus.CounterVec

	ImportDuration prometheus.Histogram

	registry *prometheus.Registry
}

// NewMetrics creates all import metrics in their own registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		RowsProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "fireveg_etl",
			Name:      "rows_processed_total",
			Help:      "Total worksheet rows read from source workbooks.",
		}),
		RecordsEmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "fireveg_etl",
			Name:      "records_emitted_total",
			Help:      "Total normalised records produced by the extractors.",
		}),
		RowsSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "fireveg_etl",
			Name:      "rows_skipped_total",
			Help:      "Worksheet rows skipped as empty, sentinel or data-free.",
		}),
		DataNotes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "fireveg_etl",
			Name:      "data_notes_total",
			Help:      "Data quality notes attached to records during import.",
		}),
		RowsUpserted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "fireveg_etl",
			Name:      "rows_upserted_total",
			Help:      "Database rows affected by upsert statements.",
		}),
		ReconcileOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fireveg_etl",
			Name:      "reconcile_outcomes_total",
			Help:      "Sample records by visit reconciliation outcome.",
		}, []string{"outcome"}),
		ImportDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "fireveg_etl",
			Name:      "import_duration_seconds",
			Help:      "Duration of a complete workbook import run.",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}),
	}

	m.registry.MustRegister(
		m.RowsProcessed,
		m.RecordsEmitted,
		m.RowsSkipped,
		m.DataNotes,
		m.RowsUpserted,
		m.ReconcileOutcomes,
		m.ImportDuration,
	)

	return m
}

// NewMetricsForTesting creates Metrics with a fresh registry so concurrent
// tests never collide.
func NewMetricsForTesting() *Metrics {
	return NewMetrics()
}

// Log writes the final metric values to the logger, one line per sample.
// A finite CLI run has nothing listening long enough to scrape, so the
// counters are reported here at the end of the run.
func (m *Metrics) Log(logger *slog.Logger) {
	families, err := m.registry.Gather()
	if err != nil {
		logger.Warn("gather metrics", "error", err)
		return
	}
	for _, mf := range families {
		for _, metric := range mf.GetMetric() {
			attrs := make([]any, 0, 8)
			for _, label := range metric.GetLabel() {
				attrs = append(attrs, label.GetName(), label.GetValue())
			}
			switch {
			case metric.GetCounter() != nil:
				attrs = append(attrs, "value", metric.GetCounter().GetValue())
			case metric.GetHistogram() != nil:
				attrs = append(attrs,
					"count", metric.GetHistogram().GetSampleCount(),
					"sum", metric.GetHistogram().GetSampleSum())
			default:
				continue
			}
			logger.Info(mf.GetName(), attrs...)
		}
	}
}
