// Package pipeline orchestrates a workbook import: the row loop, record
// building, reconciliation and the hand-off to the store.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/fireveg/fireveg-etl/internal/domain"
	"github.com/fireveg/fireveg-etl/internal/observability"
	"github.com/fireveg/fireveg-etl/internal/reconcile"
)

// clock supplies report timestamps; swappable so tests control time.
var clock clockwork.Clock = clockwork.NewRealClock()

// SetClock replaces the package clock. Tests use a fake clock and restore
// the real one when done.
func SetClock(c clockwork.Clock) {
	clock = c
}

// RowSource reads worksheet rows by number. Data rows start at row 2.
type RowSource interface {
	RowCount() int
	Row(nr int, cols []string) (domain.SheetRow, error)
}

// Loader persists candidate table rows idempotently.
type Loader interface {
	Upsert(ctx context.Context, table string, rows []domain.Row, keyCols []string, constraint string) (int64, error)
}

// VisitReader supplies the persisted visit snapshot used for sample
// reconciliation and quadrat date inference.
type VisitReader interface {
	VisitSnapshot(ctx context.Context, visitIDs []string) ([]domain.VisitKey, error)
}

// SampleWriter inserts reconciled visit and sample rows.
type SampleWriter interface {
	InsertResolvedSamples(ctx context.Context, samples []domain.SampleRecord) (int64, error)
}

// HyperlinkResolver resolves reference codes and trait-cell hyperlinks into
// citation strings.
type HyperlinkResolver interface {
	domain.ReferenceResolver
	ResolveHyperlink(cell domain.Cell) (*domain.ResolvedReference, error)
}

// Target names the destination table of an import run.
type Target struct {
	Table      string
	KeyCols    []string
	Constraint string
}

// Report summarizes one import run.
type Report struct {
	RowsProcessed  int
	RecordsEmitted int
	RowsSkipped    int
	RowsUpserted   int64

	// Sample reconciliation outcomes; zero unless samples were imported.
	Unknown    int
	Unresolved int

	StartedAt  time.Time
	FinishedAt time.Time
}

// merge folds another report's counts into r.
func (r *Report) merge(other *Report) {
	r.RowsProcessed += other.RowsProcessed
	r.RecordsEmitted += other.RecordsEmitted
	r.RowsSkipped += other.RowsSkipped
	r.RowsUpserted += other.RowsUpserted
	r.Unknown += other.Unknown
	r.Unresolved += other.Unresolved
}

// Importer runs the single-threaded row loop for one worksheet and loads
// the results in one batch.
type Importer struct {
	loader  Loader
	logger  *slog.Logger
	metrics *observability.Metrics
}

// New creates an Importer.
func New(loader Loader, logger *slog.Logger, metrics *observability.Metrics) *Importer {
	return &Importer{loader: loader, logger: logger, metrics: metrics}
}

// run reads every data row, builds its records and upserts them as one batch.
func (im *Importer) run(ctx context.Context, src RowSource, cols []string, target Target, build func(domain.SheetRow) []domain.Row) (*Report, error) {
	report := &Report{StartedAt: clock.Now()}
	start := report.StartedAt

	var batch []domain.Row
	for nr := 2; nr <= src.RowCount(); nr++ {
		row, err := src.Row(nr, cols)
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", nr, err)
		}
		report.RowsProcessed++
		im.metrics.RowsProcessed.Inc()

		records := build(row)
		if len(records) == 0 {
			report.RowsSkipped++
			im.metrics.RowsSkipped.Inc()
			continue
		}
		report.RecordsEmitted += len(records)
		im.metrics.RecordsEmitted.Add(float64(len(records)))
		im.metrics.DataNotes.Add(float64(countNotes(records)))
		batch = append(batch, records...)
	}

	updated, err := im.loader.Upsert(ctx, target.Table, batch, target.KeyCols, target.Constraint)
	if err != nil {
		return nil, fmt.Errorf("upsert into %s: %w", target.Table, err)
	}
	report.RowsUpserted = updated
	im.metrics.RowsUpserted.Add(float64(updated))

	report.FinishedAt = clock.Now()
	im.metrics.ImportDuration.Observe(report.FinishedAt.Sub(start).Seconds())
	im.logger.Info("import finished",
		"table", target.Table,
		"rows_processed", report.RowsProcessed,
		"records_emitted", report.RecordsEmitted,
		"rows_skipped", report.RowsSkipped,
		"rows_upserted", report.RowsUpserted,
	)
	return report, nil
}

// ImportSites imports a site worksheet.
func (im *Importer) ImportSites(ctx context.Context, src RowSource, cols domain.SiteColumns, target Target) (*Report, error) {
	return im.run(ctx, src, cols.Columns(), target, func(row domain.SheetRow) []domain.Row {
		return recordRows(domain.BuildSiteRecords(row, cols))
	})
}

// ImportVisits imports a field-visit worksheet.
func (im *Importer) ImportVisits(ctx context.Context, src RowSource, cols domain.VisitColumns, target Target) (*Report, error) {
	return im.run(ctx, src, cols.Columns(), target, func(row domain.SheetRow) []domain.Row {
		return recordRows(domain.BuildVisitRecords(row, cols))
	})
}

// ImportFireHistory imports a fire-history worksheet.
func (im *Importer) ImportFireHistory(ctx context.Context, src RowSource, events []domain.FireEventColumns, target Target) (*Report, error) {
	return im.run(ctx, src, domain.FireEventColumnSet(events), target, func(row domain.SheetRow) []domain.Row {
		return recordRows(domain.BuildFireHistoryRecords(row, events))
	})
}

// ImportFireIntensity imports a fire intensity / structure worksheet.
func (im *Importer) ImportFireIntensity(ctx context.Context, src RowSource, cols domain.FireIntensityColumns, target Target) (*Report, error) {
	return im.run(ctx, src, cols.Columns(), target, func(row domain.SheetRow) []domain.Row {
		return recordRows(domain.BuildFireIntensityRecords(row, cols))
	})
}

// ImportQuadrats imports a quadrat-sample worksheet. Visit dates missing from
// the sheet are inferred from the persisted visit snapshot; a nil reader
// leaves them unresolved with a note.
func (im *Importer) ImportQuadrats(ctx context.Context, src RowSource, cols domain.QuadratColumns, vr VisitReader, target Target) (*Report, error) {
	visits, err := im.visitIndex(ctx, src, vr, cols.VisitID)
	if err != nil {
		return nil, err
	}
	return im.run(ctx, src, cols.Columns(), target, func(row domain.SheetRow) []domain.Row {
		return recordRows(domain.BuildQuadratRecords(row, cols, visits))
	})
}

// ImportSamples imports a field-sample worksheet: records are deduplicated,
// matched against the persisted visit snapshot, and only date-resolved
// candidates are inserted. Unknown visits and ambiguous dates are reported
// for operator review, never written.
func (im *Importer) ImportSamples(ctx context.Context, src RowSource, cols domain.SampleColumns, vr VisitReader, sw SampleWriter) (*Report, error) {
	report := &Report{StartedAt: clock.Now()}
	start := report.StartedAt

	var records []domain.SampleRecord
	for nr := 2; nr <= src.RowCount(); nr++ {
		row, err := src.Row(nr, cols.Columns())
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", nr, err)
		}
		report.RowsProcessed++
		im.metrics.RowsProcessed.Inc()

		recs := domain.BuildSampleRecords(row, cols)
		if len(recs) == 0 {
			report.RowsSkipped++
			im.metrics.RowsSkipped.Inc()
			continue
		}
		report.RecordsEmitted += len(recs)
		im.metrics.RecordsEmitted.Add(float64(len(recs)))
		records = append(records, recs...)
	}

	snapshot, err := vr.VisitSnapshot(ctx, reconcile.VisitIDs(records))
	if err != nil {
		return nil, fmt.Errorf("load visit snapshot: %w", err)
	}
	result := reconcile.Reconcile(records, domain.NewVisitIndex(snapshot))

	report.Unknown = len(result.Unknown)
	report.Unresolved = len(result.Unresolved)
	im.metrics.ReconcileOutcomes.WithLabelValues("resolved").Add(float64(len(result.Resolved)))
	im.metrics.ReconcileOutcomes.WithLabelValues("unknown").Add(float64(len(result.Unknown)))
	im.metrics.ReconcileOutcomes.WithLabelValues("unresolved").Add(float64(len(result.Unresolved)))
	for _, c := range result.Unknown {
		im.logger.Warn("sample visit not found, needs review", "visit_id", c.VisitID)
	}
	for _, c := range result.Unresolved {
		im.logger.Warn("sample visit date unresolved", "visit_id", c.VisitID, "matches", c.Found)
	}

	inserted, err := sw.InsertResolvedSamples(ctx, result.Resolved)
	if err != nil {
		return nil, fmt.Errorf("insert samples: %w", err)
	}
	report.RowsUpserted = inserted
	im.metrics.RowsUpserted.Add(float64(inserted))

	report.FinishedAt = clock.Now()
	im.metrics.ImportDuration.Observe(report.FinishedAt.Sub(start).Seconds())
	im.logger.Info("sample import finished",
		"rows_processed", report.RowsProcessed,
		"resolved", len(result.Resolved),
		"unknown", report.Unknown,
		"unresolved", report.Unresolved,
		"rows_inserted", report.RowsUpserted,
	)
	return report, nil
}

// ImportTraits imports every configured trait column of a literature trait
// worksheet. Each trait loads into its own table, litrev.<name>, with
// insert-or-skip semantics.
func (im *Importer) ImportTraits(ctx context.Context, src RowSource, traits []domain.TraitColumns, resolver HyperlinkResolver, mainSource string, redundant []string) (*Report, error) {
	total := &Report{StartedAt: clock.Now()}
	for _, trait := range traits {
		trait := trait
		target := Target{Table: "litrev." + trait.Name}
		report, err := im.run(ctx, src, trait.Columns(), target, func(row domain.SheetRow) []domain.Row {
			cell := row.Cell(trait.Column)
			var link *domain.ResolvedReference
			if resolver != nil && cell.Hyperlink != "" {
				var err error
				link, err = resolver.ResolveHyperlink(cell)
				if err != nil {
					im.logger.Warn("resolve trait hyperlink",
						"trait", trait.Name, "target", cell.Hyperlink, "error", err)
				}
			}
			records := domain.BuildTraitRecords(row, trait, link, resolver, mainSource)
			domain.DemoteRedundantSources(records, redundant)
			return recordRows(records)
		})
		if err != nil {
			return nil, err
		}
		total.merge(report)
	}
	total.FinishedAt = clock.Now()
	return total, nil
}

// ImportResprouting imports the resprouting summary worksheet into the
// resprouting trait table.
func (im *Importer) ImportResprouting(ctx context.Context, src RowSource, cols domain.ResproutingColumns, cats []domain.NFRRCategory, nfrrRefs map[string]string, otherRefs map[int]string, mainSource string, target Target) (*Report, error) {
	return im.run(ctx, src, cols.Columns(), target, func(row domain.SheetRow) []domain.Row {
		return recordRows(domain.BuildResproutingRecords(row, cols, cats, nfrrRefs, otherRefs, mainSource))
	})
}

// visitIndex builds the date-inference index from the visit ids a worksheet
// references. With no reader the index is empty and every inference misses.
func (im *Importer) visitIndex(ctx context.Context, src RowSource, vr VisitReader, visitCol string) (*domain.VisitIndex, error) {
	if vr == nil || visitCol == "" {
		return domain.NewVisitIndex(nil), nil
	}

	seen := make(map[string]struct{})
	var ids []string
	for nr := 2; nr <= src.RowCount(); nr++ {
		row, err := src.Row(nr, []string{visitCol})
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", nr, err)
		}
		id := row.Cell(visitCol).Text()
		if id == "" || domain.IsSentinelLabel(id) {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return domain.NewVisitIndex(nil), nil
	}

	snapshot, err := vr.VisitSnapshot(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load visit snapshot: %w", err)
	}
	return domain.NewVisitIndex(snapshot), nil
}

// noteColumns are the store columns carrying data quality notes.
var noteColumns = map[string]struct{}{
	"comments":         {},
	"notes":            {},
	"original_notes":   {},
	"additional_notes": {},
	"weight_notes":     {},
}

// countNotes counts the data quality notes attached to a batch of rows.
func countNotes(rows []domain.Row) int {
	n := 0
	for _, row := range rows {
		for _, f := range row {
			if _, ok := noteColumns[f.Column]; !ok {
				continue
			}
			if notes, ok := f.Value.([]string); ok {
				n += len(notes)
			}
		}
	}
	return n
}

// recordRows renders a slice of records as candidate table rows.
func recordRows[T interface{ Row() domain.Row }](records []T) []domain.Row {
	rows := make([]domain.Row, 0, len(records))
	for _, rec := range records {
		rows = append(rows, rec.Row())
	}
	return rows
}
