// Package store reads the caregiving projection tables for the statistics engine.
package store

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"babyai/apps/stats/internal/stats"
)

type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

type TxBeginner interface {
	BeginTx(ctx context.Context, opts pgx.TxOptions) (pgx.Tx, error)
}

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

type Store struct {
	q Querier
}

var _ stats.EventSource = (*Store)(nil)

func New(q Querier) *Store {
	return &Store{q: q}
}

// ReadSnapshot runs fn against a read-only REPEATABLE READ transaction so that
// every window queried for one request sees the same point-in-time data.
func ReadSnapshot(ctx context.Context, db TxBeginner, fn func(*Store) error) error {
	tx, err := db.BeginTx(ctx, pgx.TxOptions{
		IsoLevel:   pgx.RepeatableRead,
		AccessMode: pgx.ReadOnly,
	})
	if err != nil {
		return fmt.Errorf("begin read snapshot: %w", err)
	}
	if err := fn(New(tx)); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("close read snapshot: %w", err)
	}
	return nil
}

func windowQuery(table, timeColumn, childID string, w stats.Window, columns ...string) squirrel.SelectBuilder {
	return psql.Select(columns...).
		From(table).
		Where(squirrel.Eq{`"childId"`: childID}).
		Where(squirrel.GtOrEq{timeColumn: w.Start.UTC()}).
		Where(squirrel.Lt{timeColumn: w.End.UTC()}).
		OrderBy(timeColumn + " ASC")
}

func (s *Store) query(ctx context.Context, builder squirrel.SelectBuilder) (pgx.Rows, error) {
	sql, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	return s.q.Query(ctx, sql, args...)
}
