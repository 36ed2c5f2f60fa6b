package source

import (
	"context"
	"strings"

	"github.com/carlosnayan/source-clickhouse/internal/config"
	"github.com/carlosnayan/source-clickhouse/internal/dialect"
	"github.com/carlosnayan/source-clickhouse/internal/driver"
	srcerrors "github.com/carlosnayan/source-clickhouse/internal/errors"
)

// Engine is what a database contributes to the generic source: how to
// connect, which namespaces to skip and how to list tables.
type Engine interface {
	Name() string
	DriverName() string
	Dialect() dialect.Dialect

	// Open connects using cfg. The returned DB is owned by the caller.
	Open(ctx context.Context, cfg *config.Config) (driver.DB, error)

	// DefaultNamespace is the namespace tables land in when the caller
	// does not name one.
	DefaultNamespace(cfg *config.Config) string

	// ExcludedNamespaces are internal namespaces never offered as streams.
	ExcludedNamespaces() []string

	// Introspect lists tables with their columns and primary keys.
	Introspect(ctx context.Context, db driver.DB, cfg *config.Config) ([]Table, error)
}

// GetEngine resolves an engine by name or alias.
func GetEngine(name string) (Engine, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "clickhouse", "ch", "":
		return NewClickHouse(), nil
	case "postgresql", "postgres":
		return NewPostgreSQL(), nil
	case "mysql", "mariadb":
		return NewMySQL(), nil
	case "sqlite", "sqlite3":
		return NewSQLite(), nil
	default:
		return nil, srcerrors.Wrapf(srcerrors.ErrUnsupported, nil, "%q", name)
	}
}

func isExcluded(e Engine, namespace string) bool {
	for _, ns := range e.ExcludedNamespaces() {
		if ns == namespace {
			return true
		}
	}
	return false
}
