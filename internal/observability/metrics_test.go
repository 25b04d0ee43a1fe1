package observability

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMetricsLog(t *testing.T) {
	m := NewMetricsForTesting()
	m.RowsProcessed.Inc()
	m.RowsProcessed.Inc()
	m.RecordsEmitted.Add(3)
	m.ReconcileOutcomes.WithLabelValues("unknown").Inc()
	m.ImportDuration.Observe(0.2)

	var buf bytes.Buffer
	m.Log(slog.New(slog.NewTextHandler(&buf, nil)))
	out := buf.String()

	assert.Contains(t, out, "fireveg_etl_rows_processed_total")
	assert.Contains(t, out, "value=2")
	assert.Contains(t, out, "fireveg_etl_records_emitted_total")
	assert.Contains(t, out, "value=3")
	assert.Contains(t, out, "fireveg_etl_reconcile_outcomes_total")
	assert.Contains(t, out, "outcome=unknown")
	assert.Contains(t, out, "fireveg_etl_import_duration_seconds")
	assert.Contains(t, out, "count=1")
	assert.Contains(t, out, "sum=0.2")
}

func TestMetricsLog_NothingRecorded(t *testing.T) {
	m := NewMetricsForTesting()

	var buf bytes.Buffer
	m.Log(slog.New(slog.NewTextHandler(&buf, nil)))

	// Unincremented counters still report their zero value.
	assert.Contains(t, buf.String(), "fireveg_etl_rows_upserted_total")
	assert.Contains(t, buf.String(), "value=0")
}
