package source

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/carlosnayan/source-clickhouse/internal/config"
	"github.com/carlosnayan/source-clickhouse/internal/dialect"
	"github.com/carlosnayan/source-clickhouse/internal/driver"
)

// MySQL uses the database as namespace.
type MySQL struct {
	dialect dialect.Dialect
	pool    *driver.PoolConfig
}

func NewMySQL() *MySQL {
	return &MySQL{dialect: dialect.GetDialect("mysql"), pool: driver.DefaultPoolConfig()}
}

func (e *MySQL) Name() string             { return "mysql" }
func (e *MySQL) DriverName() string       { return e.dialect.DriverName() }
func (e *MySQL) Dialect() dialect.Dialect { return e.dialect }

func (e *MySQL) DefaultNamespace(cfg *config.Config) string {
	return cfg.Database
}

func (e *MySQL) ExcludedNamespaces() []string {
	return []string{"information_schema", "mysql", "performance_schema", "sys"}
}

// DSN renders cfg in go-sql-driver format. DATE and DATETIME are parsed
// into time.Time.
func (e *MySQL) DSN(cfg *config.Config) (string, error) {
	params, err := cfg.URLParams()
	if err != nil {
		return "", err
	}

	mc := mysql.NewConfig()
	mc.User = cfg.Username
	mc.Passwd = cfg.Password
	mc.Net = "tcp"
	mc.Addr = cfg.Address()
	mc.DBName = cfg.Database
	mc.ParseTime = true
	mc.Timeout = 10 * time.Second
	if cfg.SSL {
		mc.TLSConfig = "skip-verify"
	}
	if len(params) > 0 {
		mc.Params = params
	}
	return mc.FormatDSN(), nil
}

func (e *MySQL) Open(ctx context.Context, cfg *config.Config) (driver.DB, error) {
	dsn, err := e.DSN(cfg)
	if err != nil {
		return nil, err
	}
	db, err := sql.Open(e.DriverName(), dsn)
	if err != nil {
		return nil, err
	}
	driver.ConfigurePool(db, e.pool)
	return driver.NewSQLDB(db), nil
}

func (e *MySQL) Introspect(ctx context.Context, db driver.DB, cfg *config.Config) ([]Table, error) {
	collector := newTableCollector(e.dialect)

	colsQuery := `
		SELECT TABLE_SCHEMA, TABLE_NAME, COLUMN_NAME, COLUMN_TYPE
		FROM information_schema.COLUMNS
		WHERE TABLE_SCHEMA = ?
		ORDER BY TABLE_SCHEMA, TABLE_NAME, ORDINAL_POSITION
	`
	rows, err := db.Query(ctx, colsQuery, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to list columns: %w", err)
	}
	for rows.Next() {
		var schema, table, column, columnType string
		if err := rows.Scan(&schema, &table, &column, &columnType); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan column: %w", err)
		}
		if isExcluded(e, schema) {
			continue
		}
		collector.addColumn(schema, table, column, columnType)
	}
	err = rows.Err()
	rows.Close()
	if err != nil {
		return nil, err
	}

	keyQuery := `
		SELECT TABLE_SCHEMA, TABLE_NAME, COLUMN_NAME
		FROM information_schema.KEY_COLUMN_USAGE
		WHERE TABLE_SCHEMA = ? AND CONSTRAINT_NAME = 'PRIMARY'
		ORDER BY TABLE_SCHEMA, TABLE_NAME, ORDINAL_POSITION
	`
	keyRows, err := db.Query(ctx, keyQuery, cfg.Database)
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
