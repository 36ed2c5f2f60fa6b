package dialect

import (
	"fmt"
	"strings"
)

// SQLiteDialect implements the SQLite dialect
type SQLiteDialect struct{}

func (d *SQLiteDialect) Name() string {
	return "sqlite"
}

func (d *SQLiteDialect) QuoteIdentifier(name string) string {
	return quoteWith(`"`, name)
}

func (d *SQLiteDialect) QuoteString(value string) string {
	escaped := strings.ReplaceAll(value, "'", "''")
	return fmt.Sprintf("'%s'", escaped)
}

func (d *SQLiteDialect) QualifiedName(namespace, table string) string {
	return qualifiedName(d, namespace, table)
}

func (d *SQLiteDialect) Placeholder(index int) string {
	return "?"
}

func (d *SQLiteDialect) DriverName() string {
	return "sqlite3"
}

func (d *SQLiteDialect) SupportsSchemas() bool {
	return false
}

func (d *SQLiteDialect) CreateSchemaQuery(namespace string) string {
	return ""
}

func (d *SQLiteDialect) PrimaryKeyClause(columns []string) string {
	return ANSIPrimaryKeyClause(columns)
}

func (d *SQLiteDialect) CreateTableQuery(table, columns, primaryKey string) string {
	return ANSICreateTableQuery(table, columns, primaryKey)
}

// MapType follows the declared type; SQLite itself only has affinities.
func (d *SQLiteDialect) MapType(sqlType string) JSONType {
	return mapANSIType(sqlType)
}
