// Package driver abstracts the database connections used by the source, so the
// same read and discovery code runs over database/sql and pgx pools.
package driver

import (
	"context"
)

// DB is a live connection pool. Implementations must be safe for concurrent use.
type DB interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (Result, error)
	Query(ctx context.Context, sql string, args ...interface{}) (Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) Row

	// Ping verifies the server answers.
	Ping(ctx context.Context) error

	// Close releases the underlying connections.
	Close() error
}

type Result interface {
	// RowsAffected returns 0 when the driver cannot tell.
	RowsAffected() int64
}

// Rows is a forward-only cursor over a result set. Callers either Scan into
// typed destinations or take Values when the column types are only known at
// run time.
type Rows interface {
	Close()
	Err() error
	Next() bool
	Scan(dest ...interface{}) error
	Columns() ([]string, error)

	// Values returns the current row decoded into driver-native Go values.
	Values() ([]interface{}, error)
}

type Row interface {
	Scan(dest ...interface{}) error
}
