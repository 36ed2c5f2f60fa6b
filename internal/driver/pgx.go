package driver

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgxPoolAdapter serves PostgreSQL through pgxpool. Values come back as
// pgx decodes them (int32, pgtype.Numeric, time.Time...).
type PgxPoolAdapter struct {
	pool *pgxpool.Pool
}

func NewPgxPool(pool *pgxpool.Pool) DB {
	return &PgxPoolAdapter{pool: pool}
}

func (a *PgxPoolAdapter) Exec(ctx context.Context, query string, args ...interface{}) (Result, error) {
	tag, err := a.pool.Exec(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return pgxResult(tag), nil
}

func (a *PgxPoolAdapter) Query(ctx context.Context, query string, args ...interface{}) (Rows, error) {
	rows, err := a.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return &PgxRows{rows: rows}, nil
}

// pgx.Row already satisfies Row.
func (a *PgxPoolAdapter) QueryRow(ctx context.Context, query string, args ...interface{}) Row {
	return a.pool.QueryRow(ctx, query, args...)
}

func (a *PgxPoolAdapter) Ping(ctx context.Context) error {
	return a.pool.Ping(ctx)
}

func (a *PgxPoolAdapter) Close() error {
	a.pool.Close()
	return nil
}

type pgxResult pgconn.CommandTag

func (r pgxResult) RowsAffected() int64 {
	return pgconn.CommandTag(r).RowsAffected()
}

type PgxRows struct {
	rows pgx.Rows
}

func (r *PgxRows) Close()                         { r.rows.Close() }
func (r *PgxRows) Err() error                     { return r.rows.Err() }
func (r *PgxRows) Next() bool                     { return r.rows.Next() }
func (r *PgxRows) Scan(dest ...interface{}) error { return r.rows.Scan(dest...) }
func (r *PgxRows) Values() ([]interface{}, error) { return r.rows.Values() }

func (r *PgxRows) Columns() ([]string, error) {
	fields := r.rows.FieldDescriptions()
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.Name
	}
	return names, nil
}
