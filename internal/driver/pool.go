package driver

import (
	"context"
	"database/sql"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PoolConfig holds connection pool limits.
type PoolConfig struct {
	MaxOpenConns    int           // open connections
	MaxIdleConns    int           // idle connections
	ConnMaxLifetime time.Duration // lifetime of one connection
	ConnMaxIdleTime time.Duration // idle time before a connection is closed
}

// DefaultPoolConfig returns the limits used when none are given.
// A sync reads one stream at a time, so a handful of connections is enough.
func DefaultPoolConfig() *PoolConfig {
	return &PoolConfig{
		MaxOpenConns:    4,
		MaxIdleConns:    2,
		ConnMaxLifetime: 30 * time.Minute,
		ConnMaxIdleTime: 5 * time.Minute,
	}
}

// ConfigurePool applies config to a database/sql pool.
func ConfigurePool(db *sql.DB, config *PoolConfig) {
	if config == nil {
		config = DefaultPoolConfig()
	}

	db.SetMaxOpenConns(config.MaxOpenConns)
	db.SetMaxIdleConns(config.MaxIdleConns)
	db.SetConnMaxLifetime(config.ConnMaxLifetime)
	db.SetConnMaxIdleTime(config.ConnMaxIdleTime)
}

// ConfigurePgxPool applies the same limits to a pgx pool config.
func ConfigurePgxPool(config *pgxpool.Config, poolConfig *PoolConfig) {
	if poolConfig == nil {
		poolConfig = DefaultPoolConfig()
	}

	config.MaxConns = int32(poolConfig.MaxOpenConns)
	config.MinConns = 0
	config.MaxConnLifetime = poolConfig.ConnMaxLifetime
	config.MaxConnIdleTime = poolConfig.ConnMaxIdleTime
}

// NewPgxPoolWithConfig opens a pgx pool with the given limits.
func NewPgxPoolWithConfig(ctx context.Context, databaseURL string, poolConfig *PoolConfig) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, err
	}

	ConfigurePgxPool(config, poolConfig)

	return pgxpool.NewWithConfig(ctx, config)
}
