package driver

import (
	"context"
	"database/sql"
)

// SQLDBAdapter serves ClickHouse, MySQL and SQLite through database/sql.
type SQLDBAdapter struct {
	db *sql.DB
}

func NewSQLDB(db *sql.DB) DB {
	return &SQLDBAdapter{db: db}
}

func (a *SQLDBAdapter) Exec(ctx context.Context, query string, args ...interface{}) (Result, error) {
	result, err := a.db.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return &SQLResult{result: result}, nil
}

func (a *SQLDBAdapter) Query(ctx context.Context, query string, args ...interface{}) (Rows, error) {
	rows, err := a.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return &SQLRows{rows: rows}, nil
}

func (a *SQLDBAdapter) QueryRow(ctx context.Context, query string, args ...interface{}) Row {
	return a.db.QueryRowContext(ctx, query, args...)
}

func (a *SQLDBAdapter) Ping(ctx context.Context) error {
	return a.db.PingContext(ctx)
}

func (a *SQLDBAdapter) Close() error {
	return a.db.Close()
}

type SQLResult struct {
	result sql.Result
}

// RowsAffected yields 0 for drivers that cannot report it (ClickHouse over HTTP).
func (r *SQLResult) RowsAffected() int64 {
	n, err := r.result.RowsAffected()
	if err != nil {
		return 0
	}
	return n
}

type SQLRows struct {
	rows *sql.Rows
}

func (r *SQLRows) Close()                         { _ = r.rows.Close() }
func (r *SQLRows) Err() error                     { return r.rows.Err() }
func (r *SQLRows) Next() bool                     { return r.rows.Next() }
func (r *SQLRows) Scan(dest ...interface{}) error { return r.rows.Scan(dest...) }
func (r *SQLRows) Columns() ([]string, error)     { return r.rows.Columns() }

// Values scans the current row into interface{} slots.
func (r *SQLRows) Values() ([]interface{}, error) {
	cols, err := r.rows.Columns()
	if err != nil {
		return nil, err
	}

	values := make([]interface{}, len(cols))
	ptrs := make([]interface{}, len(cols))
	for i := range values {
		ptrs[i] = &values[i]
	}
	if err := r.rows.Scan(ptrs...); err != nil {
		return nil, err
	}
	return values, nil
}
