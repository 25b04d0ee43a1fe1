package pipeline_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fireveg/fireveg-etl/internal/domain"
	"github.com/fireveg/fireveg-etl/internal/observability"
	"github.com/fireveg/fireveg-etl/internal/pipeline"
)

// --- mocks ---

// mockSource serves fixed rows; row 1 is the implicit header.
type mockSource struct {
	rows []domain.SheetRow
}

func (m *mockSource) RowCount() int { return len(m.rows) + 1 }

func (m *mockSource) Row(nr int, cols []string) (domain.SheetRow, error) {
	full := m.rows[nr-2]
	row := make(domain.SheetRow, len(cols))
	for _, col := range cols {
		row[col] = full[col]
	}
	return row, nil
}

type upsertCall struct {
	table      string
	rows       []domain.Row
	keyCols    []string
	constraint string
}

type mockLoader struct {
	calls []upsertCall
}

func (m *mockLoader) Upsert(_ context.Context, table string, rows []domain.Row, keyCols []string, constraint string) (int64, error) {
	m.calls = append(m.calls, upsertCall{table, rows, keyCols, constraint})
	return int64(len(rows)), nil
}

type mockVisitReader struct {
	snapshot []domain.VisitKey
	queried  []string
}

func (m *mockVisitReader) VisitSnapshot(_ context.Context, visitIDs []string) ([]domain.VisitKey, error) {
	m.queried = visitIDs
	return m.snapshot, nil
}

type mockSampleWriter struct {
	inserted []domain.SampleRecord
}

func (m *mockSampleWriter) InsertResolvedSamples(_ context.Context, samples []domain.SampleRecord) (int64, error) {
	m.inserted = samples
	return int64(len(samples)), nil
}

// mockResolver resolves hyperlinks to a fixed reference, or fails outright.
type mockResolver struct {
	ref *domain.ResolvedReference
	err error
}

func (m *mockResolver) ResolveCodes(string) []string { return nil }

func (m *mockResolver) ResolveHyperlink(domain.Cell) (*domain.ResolvedReference, error) {
	return m.ref, m.err
}

func newImporter(ldr pipeline.Loader) *pipeline.Importer {
	return pipeline.New(ldr, slog.Default(), observability.NewMetricsForTesting())
}

func cell(v any) domain.Cell { return domain.Cell{Value: v} }

// --- tests ---

func TestImportSites(t *testing.T) {
	src := &mockSource{rows: []domain.SheetRow{
		{"A": cell("Site"), "B": cell(151.2), "C": cell(-33.8)},
		{"A": cell("CC01"), "B": cell(151.2), "C": cell(-33.8)},
		{"A": cell(""), "B": cell(nil), "C": cell(nil)},
	}}
	ldr := &mockLoader{}
	im := newImporter(ldr)

	cols := domain.SiteColumns{SiteLabel: "A", Lons: []string{"B"}, Lats: []string{"C"}}
	target := pipeline.Target{Table: "form.field_site", KeyCols: []string{"site_label"}, Constraint: "field_site_pkey"}

	report, err := im.ImportSites(context.Background(), src, cols, target)
	require.NoError(t, err)

	assert.Equal(t, 3, report.RowsProcessed)
	assert.Equal(t, 1, report.RecordsEmitted)
	assert.Equal(t, 2, report.RowsSkipped)
	assert.Equal(t, int64(1), report.RowsUpserted)

	require.Len(t, ldr.calls, 1)
	call := ldr.calls[0]
	assert.Equal(t, "form.field_site", call.table)
	assert.Equal(t, []string{"site_label"}, call.keyCols)
	assert.Equal(t, "field_site_pkey", call.constraint)
	require.Len(t, call.rows, 1)
	label, _ := call.rows[0].Get("site_label")
	assert.Equal(t, "CC01", label)
}

func TestImportSites_ReportTimestamps(t *testing.T) {
	fake := clockwork.NewFakeClockAt(time.Date(2022, 2, 8, 10, 0, 0, 0, time.UTC))
	pipeline.SetClock(fake)
	t.Cleanup(func() { pipeline.SetClock(clockwork.NewRealClock()) })

	src := &mockSource{rows: []domain.SheetRow{{"A": cell("CC01")}}}
	im := newImporter(&mockLoader{})

	report, err := im.ImportSites(context.Background(), src, domain.SiteColumns{SiteLabel: "A"}, pipeline.Target{Table: "form.field_site"})
	require.NoError(t, err)
	assert.Equal(t, fake.Now(), report.StartedAt)
	assert.Equal(t, fake.Now(), report.FinishedAt)
}

func TestImportVisits_SentinelRowsSkipped(t *testing.T) {
	src := &mockSource{rows: []domain.SheetRow{
		{"A": cell("Site Number"), "B": cell("08/02/2022")},
		{"A": cell("CC01"), "B": cell("08/02/2022")},
	}}
	ldr := &mockLoader{}
	im := newImporter(ldr)

	cols := domain.VisitColumns{SiteLabel: "A", VisitDates: []string{"B"}, Survey: "fire-survey"}
	report, err := im.ImportVisits(context.Background(), src, cols, pipeline.Target{Table: "form.field_visit"})
	require.NoError(t, err)

	assert.Equal(t, 1, report.RecordsEmitted)
	assert.Equal(t, 1, report.RowsSkipped)
	require.Len(t, ldr.calls[0].rows, 1)
	survey, _ := ldr.calls[0].rows[0].Get("survey_name")
	assert.Equal(t, "fire-survey", survey)
}

func TestImportQuadrats_InfersDateFromSnapshot(t *testing.T) {
	one := 1
	visitDate := time.Date(2022, 2, 8, 0, 0, 0, 0, time.UTC)
	vr := &mockVisitReader{snapshot: []domain.VisitKey{
		{VisitID: "CC01", VisitDate: visitDate, ReplicateNr: &one},
	}}
	src := &mockSource{rows: []domain.SheetRow{
		{"A": cell("CC01"), "B": cell("Acacia terminalis"), "C": cell(1)},
	}}
	ldr := &mockLoader{}
	im := newImporter(ldr)

	cols := domain.QuadratColumns{VisitID: "A", Species: "B", ReplicateNr: "C"}
	report, err := im.ImportQuadrats(context.Background(), src, cols, vr, pipeline.Target{Table: "form.quadrat_samples"})
	require.NoError(t, err)

	assert.Equal(t, []string{"CC01"}, vr.queried)
	assert.Equal(t, 1, report.RecordsEmitted)
	require.Len(t, ldr.calls[0].rows, 1)
	date, ok := ldr.calls[0].rows[0].Get("visit_date")
	require.True(t, ok)
	assert.Equal(t, visitDate, date)
}

func TestImportQuadrats_NilReaderLeavesDateUnset(t *testing.T) {
	src := &mockSource{rows: []domain.SheetRow{
		{"A": cell("CC01"), "B": cell("Acacia terminalis")},
	}}
	ldr := &mockLoader{}
	im := newImporter(ldr)

	cols := domain.QuadratColumns{VisitID: "A", Species: "B"}
	_, err := im.ImportQuadrats(context.Background(), src, cols, nil, pipeline.Target{Table: "form.quadrat_samples"})
	require.NoError(t, err)

	_, ok := ldr.calls[0].rows[0].Get("visit_date")
	assert.False(t, ok)
}

func TestImportSamples_ReconcilesAgainstSnapshot(t *testing.T) {
	visitDate := time.Date(2022, 2, 8, 0, 0, 0, 0, time.UTC)
	one := 1
	vr := &mockVisitReader{snapshot: []domain.VisitKey{
		{VisitID: "CC01", VisitDate: visitDate, ReplicateNr: &one},
	}}
	sw := &mockSampleWriter{}
	src := &mockSource{rows: []domain.SheetRow{
		{"A": cell("CC01"), "B": cell(1), "C": cell(3)}, // resolves by replicate
		{"A": cell("CC01"), "B": cell(1), "C": cell(3)}, // duplicate, deduped
		{"A": cell("ZZ99"), "B": cell(1), "C": cell(1)}, // unknown visit
	}}
	im := newImporter(&mockLoader{})

	cols := domain.SampleColumns{VisitID: "A", ReplicateNr: "B", SampleNr: "C"}
	report, err := im.ImportSamples(context.Background(), src, cols, vr, sw)
	require.NoError(t, err)

	assert.Equal(t, 3, report.RowsProcessed)
	assert.Equal(t, 1, report.Unknown)
	assert.Equal(t, 0, report.Unresolved)
	assert.Equal(t, int64(1), report.RowsUpserted)
	require.Len(t, sw.inserted, 1)
	assert.Equal(t, "CC01", sw.inserted[0].VisitID)
	require.NotNil(t, sw.inserted[0].VisitDate)
	assert.Equal(t, visitDate, *sw.inserted[0].VisitDate)
}

func TestImportTraits_OneTablePerTrait(t *testing.T) {
	src := &mockSource{rows: []domain.SheetRow{
		{"A": cell("Acacia terminalis"), "B": cell(712), "C": cell("epicormic"), "D": cell("2.5")},
	}}
	ldr := &mockLoader{}
	im := newImporter(ldr)

	traits := []domain.TraitColumns{
		{Name: "resprouting_class", Column: "C", Type: "categorical",
			Vocabulary: map[string]string{"epicormic": "Epicormic"}, Species: "A", SpeciesCode: "B"},
		{Name: "max_height", Column: "D", Type: "numerical", Species: "A", SpeciesCode: "B"},
	}

	report, err := im.ImportTraits(context.Background(), src, traits, nil, "NSWFFRDv2.1", nil)
	require.NoError(t, err)

	assert.Equal(t, 2, report.RecordsEmitted)
	require.Len(t, ldr.calls, 2)
	assert.Equal(t, "litrev.resprouting_class", ldr.calls[0].table)
	assert.Equal(t, "litrev.max_height", ldr.calls[1].table)

	norm, _ := ldr.calls[0].rows[0].Get("norm_value")
	assert.Equal(t, "Epicormic", norm)
	best, _ := ldr.calls[1].rows[0].Get("best")
	assert.Equal(t, 2.5, best)
}

func TestImportTraits_HyperlinkErrorIsLoggedNotFatal(t *testing.T) {
	src := &mockSource{rows: []domain.SheetRow{
		{"A": cell("Acacia terminalis"), "B": cell(712),
			"C": {Value: "epicormic", Hyperlink: "References!C84"}},
	}}
	ldr := &mockLoader{}
	var buf bytes.Buffer
	im := pipeline.New(ldr, slog.New(slog.NewTextHandler(&buf, nil)), observability.NewMetricsForTesting())

	traits := []domain.TraitColumns{
		{Name: "resprouting_class", Column: "C", Type: "categorical",
			Vocabulary: map[string]string{"epicormic": "Epicormic"}, Species: "A", SpeciesCode: "B"},
	}
	resolver := &mockResolver{err: errors.New("sheet References not found")}

	report, err := im.ImportTraits(context.Background(), src, traits, resolver, "NSWFFRDv2.1", nil)
	require.NoError(t, err)

	assert.Equal(t, 1, report.RecordsEmitted)
	assert.Contains(t, buf.String(), "resolve trait hyperlink")
	assert.Contains(t, buf.String(), "References!C84")
}

func TestImportResprouting_SummaryAndTokens(t *testing.T) {
	src := &mockSource{rows: []domain.SheetRow{
		{"A": cell("Acacia terminalis"), "B": cell(712), "C": cell("R"), "D": cell("4F 8M")},
	}}
	ldr := &mockLoader{}
	im := newImporter(ldr)

	cols := domain.ResproutingColumns{Species: "A", SpeciesCode: "B", FireResponse: "C", NFRR: "D", VariableName: "fireresponse"}
	cats := []domain.NFRRCategory{{Code: 4, OtherCode: "IV", Category: "Shrubland"}}

	report, err := im.ImportResprouting(context.Background(), src, cols, cats, nil, nil, "NSWFFRDv2.1",
		pipeline.Target{Table: "litrev.resprouting_class"})
	require.NoError(t, err)

	// Summary record plus one record per NFRR token.
	assert.Equal(t, 3, report.RecordsEmitted)
	weight, _ := ldr.calls[0].rows[0].Get("weight")
	assert.Equal(t, 10, weight)
}
