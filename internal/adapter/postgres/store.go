// Package postgres loads normalized records into the relational store with
// idempotent insert-or-update semantics, and reads back the visit snapshot
// the reconciler matches against.
package postgres

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/jackc/pgx/v5"
)

// DB is the subset of pgxpool.Pool the store uses.
type DB interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Store issues batched inserts and upserts. When apply is false the store
// runs in dry-run mode: every statement is rendered to out instead of
// executed, so an operator can audit a run before committing to it.
type Store struct {
	db        DB
	logger    *slog.Logger
	apply     bool
	batchSize int
	out       io.Writer
}

// NewStore creates a store. db may be nil in dry-run mode. batchSize caps
// the statements committed per transaction; zero or less means one
// transaction for the whole batch.
func NewStore(db DB, logger *slog.Logger, apply bool, batchSize int) *Store {
	return &Store{db: db, logger: logger, apply: apply, batchSize: batchSize, out: os.Stdout}
}

// SetOutput redirects dry-run statement rendering.
func (s *Store) SetOutput(w io.Writer) {
	s.out = w
}

// statement is one pending SQL statement with its bind arguments.
type statement struct {
	sql  string
	args []any
}

// run executes the statements transactionally, committing in chunks of
// batchSize, or renders them in dry-run mode. A failure between chunks
// leaves earlier chunks committed; re-running is safe, every statement is
// idempotent. Returns the number of rows actually changed.
func (s *Store) run(ctx context.Context, stmts []statement) (int64, error) {
	if !s.apply {
		for _, st := range stmts {
			fmt.Fprintln(s.out, RenderStatement(st.sql, st.args))
		}
		return 0, nil
	}

	chunk := s.batchSize
	if chunk <= 0 {
		chunk = len(stmts)
	}

	var updated int64
	for start := 0; start < len(stmts); start += chunk {
		end := min(start+chunk, len(stmts))
		n, err := s.runTx(ctx, stmts[start:end])
		if err != nil {
			return updated, err
		}
		updated += n
	}
	return updated, nil
}

func (s *Store) runTx(ctx context.Context, stmts []statement) (int64, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback after commit is a no-op

	var updated int64
	for _, st := range stmts {
		tag, err := tx.Exec(ctx, st.sql, st.args...)
		if err != nil {
			return 0, fmt.Errorf("execute batch statement: %w", err)
		}
		updated += tag.RowsAffected()
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit batch: %w", err)
	}
	return updated, nil
}
