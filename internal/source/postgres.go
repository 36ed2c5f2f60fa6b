package source

import (
	"context"
	"fmt"
	"net/url"

	"github.com/carlosnayan/source-clickhouse/internal/config"
	"github.com/carlosnayan/source-clickhouse/internal/dialect"
	"github.com/carlosnayan/source-clickhouse/internal/driver"
)

// PostgreSQL reads through a pgx pool.
type PostgreSQL struct {
	dialect dialect.Dialect
	pool    *driver.PoolConfig
}

func NewPostgreSQL() *PostgreSQL {
	return &PostgreSQL{dialect: dialect.GetDialect("postgresql"), pool: driver.DefaultPoolConfig()}
}

func (e *PostgreSQL) Name() string             { return "postgresql" }
func (e *PostgreSQL) DriverName() string       { return e.dialect.DriverName() }
func (e *PostgreSQL) Dialect() dialect.Dialect { return e.dialect }

func (e *PostgreSQL) DefaultNamespace(cfg *config.Config) string {
	return "public"
}

func (e *PostgreSQL) ExcludedNamespaces() []string {
	return []string{"information_schema", "pg_catalog", "pg_internal", "catalog_history", "pg_toast"}
}

// ConnectionString renders cfg as a postgres:// URL.
func (e *PostgreSQL) ConnectionString(cfg *config.Config) (string, error) {
	params, err := cfg.URLParams()
	if err != nil {
		return "", err
	}

	query := url.Values{}
	for k, v := range params {
		query.Set(k, v)
	}
	if cfg.SSL {
		query.Set("sslmode", "require")
	} else {
		query.Set("sslmode", "disable")
	}

	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(cfg.Username, cfg.Password),
		Host:     cfg.Address(),
		Path:     "/" + cfg.Database,
		RawQuery: query.Encode(),
	}
	return u.String(), nil
}

func (e *PostgreSQL) Open(ctx context.Context, cfg *config.Config) (driver.DB, error) {
	dsn, err := e.ConnectionString(cfg)
	if err != nil {
		return nil, err
	}
	pool, err := driver.NewPgxPoolWithConfig(ctx, dsn, e.pool)
	if err != nil {
		return nil, err
	}
	return driver.NewPgxPool(pool), nil
}

func (e *PostgreSQL) Introspect(ctx context.Context, db driver.DB, cfg *config.Config) ([]Table, error) {
	collector := newTableCollector(e.dialect)

	colsQuery := `
		SELECT c.table_schema, c.table_name, c.column_name, c.data_type
		FROM information_schema.columns c
		JOIN information_schema.tables t
			ON t.table_schema = c.table_schema AND t.table_name = c.table_name
		WHERE t.table_type IN ('BASE TABLE', 'VIEW')
		ORDER BY c.table_schema, c.table_name, c.ordinal_position
	`
	rows, err := db.Query(ctx, colsQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to list columns: %w", err)
	}
	for rows.Next() {
		var schema, table, column, dataType string
		if err := rows.Scan(&schema, &table, &column, &dataType); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan column: %w", err)
		}
		if isExcluded(e, schema) {
			continue
		}
		collector.addColumn(schema, table, column, dataType)
	}
	err = rows.Err()
	rows.Close()
	if err != nil {
		return nil, err
	}

	keyQuery := `
		SELECT ku.table_schema, ku.table_name, ku.column_name
		FROM information_schema.table_constraints tc
		JOIN information_schema.key_column_usage ku
			ON tc.constraint_name = ku.constraint_name
			AND tc.table_schema = ku.table_schema
			AND tc.table_name = ku.table_name
		WHERE tc.constraint_type = 'PRIMARY KEY'
		ORDER BY ku.table_schema, ku.table_name, ku.ordinal_position
	`
	keyRows, err := db.Query(ctx, keyQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to list primary keys: %w", err)
	}
	defer keyRows.Close()
	for keyRows.Next() {
		var schema, table, column string
		if err := keyRows.Scan(&schema, &table, &column); err != nil {
			return nil, fmt.Errorf("failed to scan primary key: %w", err)
		}
		collector.addPrimaryKey(schema, table, column)
	}
	if err := keyRows.Err(); err != nil {
		return nil, err
	}

	return collector.result(), nil
}
