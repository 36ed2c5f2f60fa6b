package source

import (
	"context"
	"crypto/tls"
	"fmt"
	"strings"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"

	"github.com/carlosnayan/source-clickhouse/internal/config"
	"github.com/carlosnayan/source-clickhouse/internal/dialect"
	"github.com/carlosnayan/source-clickhouse/internal/driver"
)

// ClickHouse talks to the server over its HTTP interface, the same port the
// JDBC driver uses.
type ClickHouse struct {
	dialect dialect.Dialect
	pool    *driver.PoolConfig
}

func NewClickHouse() *ClickHouse {
	return &ClickHouse{dialect: dialect.GetDialect("clickhouse"), pool: driver.DefaultPoolConfig()}
}

func (e *ClickHouse) Name() string             { return "clickhouse" }
func (e *ClickHouse) DriverName() string       { return e.dialect.DriverName() }
func (e *ClickHouse) Dialect() dialect.Dialect { return e.dialect }

func (e *ClickHouse) ExcludedNamespaces() []string {
	return []string{"system", "information_schema", "INFORMATION_SCHEMA"}
}

// DefaultNamespace is the configured database.
func (e *ClickHouse) DefaultNamespace(cfg *config.Config) string {
	return cfg.Database
}

// Options builds the clickhouse-go options for cfg. jdbc_url_params become
// server settings.
func (e *ClickHouse) Options(cfg *config.Config) (*clickhouse.Options, error) {
	params, err := cfg.URLParams()
	if err != nil {
		return nil, err
	}

	settings := clickhouse.Settings{}
	for k, v := range params {
		settings[k] = v
	}

	opts := &clickhouse.Options{
		Addr: []string{cfg.Address()},
		Auth: clickhouse.Auth{
			Database: cfg.Database,
			Username: cfg.Username,
			Password: cfg.Password,
		},
		Protocol:    clickhouse.HTTP,
		Settings:    settings,
		DialTimeout: 10 * time.Second,
	}
	if cfg.SSL {
		opts.TLS = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	return opts, nil
}

func (e *ClickHouse) Open(ctx context.Context, cfg *config.Config) (driver.DB, error) {
	opts, err := e.Options(cfg)
	if err != nil {
		return nil, err
	}
	db := clickhouse.OpenDB(opts)
	driver.ConfigurePool(db, e.pool)
	return driver.NewSQLDB(db), nil
}

func (e *ClickHouse) Introspect(ctx context.Context, db driver.DB, cfg *config.Config) ([]Table, error) {
	excluded := make([]string, 0, len(e.ExcludedNamespaces()))
	for _, ns := range e.ExcludedNamespaces() {
		excluded = append(excluded, e.dialect.QuoteString(ns))
	}
	notIn := strings.Join(excluded, ", ")

	collector := newTableCollector(e.dialect)

	colsQuery := fmt.Sprintf(`
		SELECT database, table, name, type
		FROM system.columns
		WHERE database NOT IN (%s)
		ORDER BY database, table, position
	`, notIn)

	rows, err := db.Query(ctx, colsQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to list columns: %w", err)
	}
	for rows.Next() {
		var database, table, name, typ string
		if err := rows.Scan(&database, &table, &name, &typ); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan column: %w", err)
		}
		collector.addColumn(database, table, name, typ)
	}
	err = rows.Err()
	rows.Close()
	if err != nil {
		return nil, err
	}

	// primary_key keeps key order; system.columns only flags membership.
	keyQuery := fmt.Sprintf(`
		SELECT database, name, primary_key
		FROM system.tables
		WHERE database NOT IN (%s) AND primary_key != ''
	`, notIn)

	keyRows, err := db.Query(ctx, keyQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to list primary keys: %w", err)
	}
	defer keyRows.Close()
	for keyRows.Next() {
		var database, table, key string
		if err := keyRows.Scan(&database, &table, &key); err != nil {
			return nil, fmt.Errorf("failed to scan primary key: %w", err)
		}
		collector.addPrimaryKey(database, table, splitKeyExpression(key)...)
	}
	if err := keyRows.Err(); err != nil {
		return nil, err
	}

	return collector.result(), nil
}
