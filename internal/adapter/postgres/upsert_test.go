package postgres

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fireveg/fireveg-etl/internal/domain"
)

func TestBuildInsert(t *testing.T) {
	t.Run("upsert overwrites non-key columns on conflict", func(t *testing.T) {
		row := domain.Row{
			{Column: "site_label", Value: "CC01"},
			{Column: "elevation", Value: 120},
		}
		sql, args := buildInsert("form.field_site", row, []string{"site_label"}, "field_site_pkey")
		assert.Equal(t,
			"INSERT INTO form.field_site (site_label,elevation) VALUES ($1,$2)"+
				" ON CONFLICT ON CONSTRAINT field_site_pkey DO UPDATE SET elevation=EXCLUDED.elevation",
			sql)
		assert.Equal(t, []any{"CC01", 120}, args)
	})

	t.Run("no constraint means insert-if-absent", func(t *testing.T) {
		row := domain.Row{
			{Column: "species", Value: "Acacia terminalis"},
			{Column: "norm_value", Value: "Epicormic"},
		}
		sql, _ := buildInsert("litrev.resprouting_class", row, nil, "")
		assert.Contains(t, sql, "ON CONFLICT DO NOTHING")
		assert.NotContains(t, sql, "EXCLUDED")
	})

	t.Run("geometry spliced verbatim, not bound", func(t *testing.T) {
		row := domain.Row{
			{Column: "site_label", Value: "CC01"},
			{Column: "geom", Value: "ST_GeomFromText('POINT(151.21 -33.85)', 4326)", Geom: true},
			{Column: "elevation", Value: 120},
		}
		sql, args := buildInsert("form.field_site", row, []string{"site_label"}, "field_site_pkey")
		assert.Contains(t, sql, "VALUES ($1,ST_GeomFromText('POINT(151.21 -33.85)', 4326),$2)")
		assert.Equal(t, []any{"CC01", 120}, args)
	})
}

func TestRenderStatement(t *testing.T) {
	t.Run("literal substitution", func(t *testing.T) {
		got := RenderStatement("INSERT INTO t (a,b,c) VALUES ($1,$2,$3)",
			[]any{"CC01", 7, nil})
		assert.Equal(t, "INSERT INTO t (a,b,c) VALUES ('CC01',7,NULL)", got)
	})

	t.Run("high placeholder numbers replaced first", func(t *testing.T) {
		args := make([]any, 11)
		for i := range args {
			args[i] = i
		}
		got := RenderStatement("VALUES ($1,$10,$11)", args)
		assert.Equal(t, "VALUES (0,9,10)", got)
	})

	t.Run("strings quoted and escaped", func(t *testing.T) {
		got := RenderStatement("VALUES ($1)", []any{"O'Brien"})
		assert.Equal(t, "VALUES ('O''Brien')", got)
	})

	t.Run("dates rendered as ISO literals", func(t *testing.T) {
		d := time.Date(2019, time.November, 4, 0, 0, 0, 0, time.UTC)
		got := RenderStatement("VALUES ($1,$2,$3)", []any{
			d,
			pgtype.Date{Time: d, Valid: true},
			pgtype.Date{},
		})
		assert.Equal(t, "VALUES ('2019-11-04','2019-11-04',NULL)", got)
	})

	t.Run("string slices become arrays", func(t *testing.T) {
		got := RenderStatement("VALUES ($1)", []any{[]string{"JRF", "DSK"}})
		assert.Equal(t, "VALUES (ARRAY['JRF','DSK'])", got)
	})
}

func newDryRunStore(out io.Writer) *Store {
	s := NewStore(nil, slog.New(slog.NewTextHandler(io.Discard, nil)), false, 1000)
	s.SetOutput(out)
	return s
}

func TestUpsert_DryRun(t *testing.T) {
	var out bytes.Buffer
	s := newDryRunStore(&out)

	rows := []domain.Row{
		{
			{Column: "site_label", Value: "CC01"},
			{Column: "elevation", Value: 120},
		},
		// key-only rows carry no data and are skipped
		{
			{Column: "site_label", Value: "CC02"},
		},
	}
	n, err := s.Upsert(context.Background(), "form.field_site", rows, []string{"site_label"}, "field_site_pkey")
	require.NoError(t, err)
	assert.Zero(t, n)

	rendered := out.String()
	assert.Contains(t, rendered, "INSERT INTO form.field_site (site_label,elevation) VALUES ('CC01',120)")
	assert.NotContains(t, rendered, "CC02")
}

func TestInsertResolvedSamples_DryRun(t *testing.T) {
	var out bytes.Buffer
	s := newDryRunStore(&out)

	date := time.Date(2019, time.November, 4, 0, 0, 0, 0, time.UTC)
	five := 5
	samples := []domain.SampleRecord{
		{VisitID: "CC01", VisitDate: &date, SampleNr: &five},
		{VisitID: "UL02"}, // undated, never inserted
	}
	n, err := s.InsertResolvedSamples(context.Background(), samples)
	require.NoError(t, err)
	assert.Zero(t, n)

	rendered := out.String()
	assert.Contains(t, rendered, "INSERT INTO form.field_visit (visit_id, visit_date) VALUES ('CC01','2019-11-04')")
	assert.Contains(t, rendered, "INSERT INTO form.field_samples (visit_id, visit_date, sample_nr) VALUES ('CC01','2019-11-04',5)")
	assert.NotContains(t, rendered, "UL02")
}

func TestTraitSummaryQueries_RejectBadNames(t *testing.T) {
	s := newDryRunStore(io.Discard)

	_, _, err := s.CategoricalTraitSummary(context.Background(), "litrev; DROP TABLE")
	assert.ErrorContains(t, err, "invalid trait name")

	_, _, _, err = s.NumericTraitSummary(context.Background(), "Resprouting")
	assert.ErrorContains(t, err, "invalid trait name")
}
