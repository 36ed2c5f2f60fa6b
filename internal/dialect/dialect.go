package dialect

import (
	"strings"
)

// Dialect hides the SQL differences between ClickHouse, PostgreSQL, MySQL
// and SQLite.
type Dialect interface {
	// Name is the canonical engine name, e.g. "clickhouse" or "sqlite".
	Name() string

	// QuoteIdentifier quotes a table or column name.
	// ClickHouse/MySQL: `table_name`, PostgreSQL/SQLite: "table_name"
	QuoteIdentifier(name string) string

	// QuoteString quotes a string literal.
	QuoteString(value string) string

	// QualifiedName returns the quoted table name, prefixed with the quoted
	// namespace when one is given.
	QualifiedName(namespace, table string) string

	// Placeholder returns the bind parameter for a 1-based index.
	// PostgreSQL: $1, $2, everything else: ?, ?
	Placeholder(index int) string

	// DriverName is the database/sql driver name.
	// ClickHouse: "clickhouse", PostgreSQL: "pgx", MySQL: "mysql", SQLite: "sqlite3"
	DriverName() string

	// SupportsSchemas reports whether the engine has namespaces below the database.
	SupportsSchemas() bool

	// CreateSchemaQuery returns the DDL creating namespace, or "" when the
	// engine has no schemas.
	CreateSchemaQuery(namespace string) string

	// PrimaryKeyClause renders the primary key part of CREATE TABLE for the
	// given columns. An empty list yields "".
	PrimaryKeyClause(columns []string) string

	// CreateTableQuery builds CREATE TABLE from a column clause and the
	// output of PrimaryKeyClause.
	CreateTableQuery(table, columns, primaryKey string) string

	// MapType maps an engine column type to a JSON Schema type, e.g. "Nullable(Int32)" -> integer, "DATE" -> string/date
	MapType(sqlType string) JSONType
}

// JSON Schema primitive types emitted in discovered catalogs.
const (
	TypeString  = "string"
	TypeInteger = "integer"
	TypeNumber  = "number"
	TypeBoolean = "boolean"

	FormatDate     = "date"
	FormatDateTime = "date-time"
)

// JSONType is the JSON Schema rendition of a column type.
type JSONType struct {
	Type   string
	Format string
}

// GetDialect returns the dialect for provider, or nil when unknown.
func GetDialect(provider string) Dialect {
	provider = strings.ToLower(strings.TrimSpace(provider))

	switch provider {
	case "clickhouse", "ch":
		return &ClickHouseDialect{}
	case "postgresql", "postgres", "pgx":
		return &PostgreSQLDialect{}
	case "mysql", "mariadb":
		return &MySQLDialect{}
	case "sqlite", "sqlite3":
		return &SQLiteDialect{}
	default:
		return nil
	}
}
