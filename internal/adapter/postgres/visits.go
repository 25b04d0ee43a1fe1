package postgres

import (
	"context"
	"fmt"
	"regexp"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/fireveg/fireveg-etl/internal/domain"
)

// VisitSnapshot reads the persisted visit identities for the given visit
// ids: the read-only snapshot the reconciler matches candidates against.
func (s *Store) VisitSnapshot(ctx context.Context, visitIDs []string) ([]domain.VisitKey, error) {
	if len(visitIDs) == 0 {
		return nil, nil
	}
	rows, err := s.db.Query(ctx,
		`SELECT DISTINCT visit_id, visit_date, replicate_nr
		 FROM form.field_visit
		 WHERE visit_id = ANY($1)
		 ORDER BY visit_id, visit_date`, visitIDs)
	if err != nil {
		return nil, fmt.Errorf("query visit snapshot: %w", err)
	}
	defer rows.Close()

	var keys []domain.VisitKey
	for rows.Next() {
		var (
			key       domain.VisitKey
			date      pgtype.Date
			replicate *int
		)
		if err := rows.Scan(&key.VisitID, &date, &replicate); err != nil {
			return nil, fmt.Errorf("scan visit snapshot row: %w", err)
		}
		key.VisitDate = date.Time
		key.ReplicateNr = replicate
		keys = append(keys, key)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read visit snapshot: %w", err)
	}
	return keys, nil
}

// InsertResolvedSamples inserts the reconciled visits and their linked
// samples, insert-if-absent on both tables, in one transaction.
func (s *Store) InsertResolvedSamples(ctx context.Context, samples []domain.SampleRecord) (int64, error) {
	var stmts []statement
	for _, rec := range samples {
		if rec.VisitDate == nil {
			continue
		}
		date := pgtype.Date{Time: *rec.VisitDate, Valid: true}
		stmts = append(stmts, statement{
			sql:  `INSERT INTO form.field_visit (visit_id, visit_date) VALUES ($1,$2) ON CONFLICT DO NOTHING`,
			args: []any{rec.VisitID, date},
		})
		if rec.SampleNr != nil {
			stmts = append(stmts, statement{
				sql:  `INSERT INTO form.field_samples (visit_id, visit_date, sample_nr) VALUES ($1,$2,$3) ON CONFLICT DO NOTHING`,
				args: []any{rec.VisitID, date, *rec.SampleNr},
			})
		}
	}
	if len(stmts) == 0 {
		return 0, nil
	}
	return s.run(ctx, stmts)
}

// traitNameRe restricts trait table names to plain identifiers; trait names
// come from operator input and are interpolated into the query text.
var traitNameRe = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// CategoricalTraitSummary reads the normalized values and weights of one
// categorical trait table in the literature-review schema.
func (s *Store) CategoricalTraitSummary(ctx context.Context, trait string) ([]string, []float64, error) {
	if !traitNameRe.MatchString(trait) {
		return nil, nil, fmt.Errorf("invalid trait name %q", trait)
	}
	rows, err := s.db.Query(ctx,
		fmt.Sprintf(`SELECT COALESCE(norm_value, ''), COALESCE(weight, 1) FROM litrev.%s`, trait))
	if err != nil {
		return nil, nil, fmt.Errorf("query trait %s: %w", trait, err)
	}
	defer rows.Close()

	var values []string
	var weights []float64
	for rows.Next() {
		var v string
		var w float64
		if err := rows.Scan(&v, &w); err != nil {
			return nil, nil, fmt.Errorf("scan trait %s row: %w", trait, err)
		}
		values = append(values, v)
		weights = append(weights, w)
	}
	return values, weights, rows.Err()
}

// NumericTraitSummary reads the best/lower/upper triplets of one numeric
// trait table in the literature-review schema.
func (s *Store) NumericTraitSummary(ctx context.Context, trait string) (best, lower, upper []*float64, err error) {
	if !traitNameRe.MatchString(trait) {
		return nil, nil, nil, fmt.Errorf("invalid trait name %q", trait)
	}
	rows, err := s.db.Query(ctx,
		fmt.Sprintf(`SELECT best, lower, upper FROM litrev.%s`, trait))
	if err != nil {
		return nil, nil, nil, fmt.Errorf("query trait %s: %w", trait, err)
	}
	defer rows.Close()

	for rows.Next() {
		var b, l, u *float64
		if err := rows.Scan(&b, &l, &u); err != nil {
			return nil, nil, nil, fmt.Errorf("scan trait %s row: %w", trait, err)
		}
		best = append(best, b)
		lower = append(lower, l)
		upper = append(upper, u)
	}
	return best, lower, upper, rows.Err()
}
