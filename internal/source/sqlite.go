package source

import (
	"context"
	"database/sql"
	"fmt"
	"sort"

	_ "github.com/mattn/go-sqlite3" // SQLite driver

	"github.com/carlosnayan/source-clickhouse/internal/config"
	"github.com/carlosnayan/source-clickhouse/internal/dialect"
	"github.com/carlosnayan/source-clickhouse/internal/driver"
)

// SQLite treats cfg.Database as the database file path. It needs no server,
// which makes it the engine the acceptance suite runs against by default.
type SQLite struct {
	dialect dialect.Dialect
}

func NewSQLite() *SQLite {
	return &SQLite{dialect: dialect.GetDialect("sqlite")}
}

func (e *SQLite) Name() string             { return "sqlite" }
func (e *SQLite) DriverName() string       { return e.dialect.DriverName() }
func (e *SQLite) Dialect() dialect.Dialect { return e.dialect }

func (e *SQLite) DefaultNamespace(cfg *config.Config) string {
	return "main"
}

func (e *SQLite) ExcludedNamespaces() []string {
	return []string{"temp"}
}

func (e *SQLite) Open(ctx context.Context, cfg *config.Config) (driver.DB, error) {
	db, err := sql.Open(e.DriverName(), "file:"+cfg.Database+"?_busy_timeout=5000")
	if err != nil {
		return nil, err
	}
	// One writer avoids SQLITE_BUSY between pooled connections.
	db.SetMaxOpenConns(1)
	return driver.NewSQLDB(db), nil
}

func (e *SQLite) Introspect(ctx context.Context, db driver.DB, cfg *config.Config) ([]Table, error) {
	rows, err := db.Query(ctx, `
		SELECT name FROM sqlite_master
		WHERE type IN ('table', 'view') AND name NOT LIKE 'sqlite_%'
		ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan table name: %w", err)
		}
		names = append(names, name)
	}
	err = rows.Err()
	rows.Close()
	if err != nil {
		return nil, err
	}

	namespace := e.DefaultNamespace(cfg)
	collector := newTableCollector(e.dialect)
	for _, name := range names {
		if err := e.introspectTable(ctx, db, collector, namespace, name); err != nil {
			return nil, err
		}
	}
	return collector.result(), nil
}

func (e *SQLite) introspectTable(ctx context.Context, db driver.DB, collector *tableCollector, namespace, name string) error {
	rows, err := db.Query(ctx, fmt.Sprintf("PRAGMA table_info(%s)", e.dialect.QuoteIdentifier(name)))
	if err != nil {
		return fmt.Errorf("failed to read columns of %s: %w", name, err)
	}
	defer rows.Close()

	type keyPart struct {
		column string
		seq    int
	}
	var keys []keyPart

	for rows.Next() {
		var (
			cid       int
			column    string
			typ       string
			notNull   int
			dfltValue sql.NullString
			pk        int
		)
		if err := rows.Scan(&cid, &column, &typ, &notNull, &dfltValue, &pk); err != nil {
			return fmt.Errorf("failed to scan column of %s: %w", name, err)
		}
		collector.addColumn(namespace, name, column, typ)
		if pk > 0 {
			keys = append(keys, keyPart{column: column, seq: pk})
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}

	sort.Slice(keys, func(i, j int) bool { return keys[i].seq < keys[j].seq })
	for _, k := range keys {
		collector.addPrimaryKey(namespace, name, k.column)
	}
	return nil
}
