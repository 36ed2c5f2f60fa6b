package dialect

import (
	"fmt"
	"strings"
)

// MySQLDialect implements the MySQL dialect
type MySQLDialect struct{}

func (d *MySQLDialect) Name() string {
	return "mysql"
}

func (d *MySQLDialect) QuoteIdentifier(name string) string {
	return quoteWith("`", name)
}

func (d *MySQLDialect) QuoteString(value string) string {
	// Backslashes first, then single quotes.
	escaped := strings.ReplaceAll(value, "\\", "\\\\")
	escaped = strings.ReplaceAll(escaped, "'", "''")
	return fmt.Sprintf("'%s'", escaped)
}

func (d *MySQLDialect) QualifiedName(namespace, table string) string {
	return qualifiedName(d, namespace, table)
}

func (d *MySQLDialect) Placeholder(index int) string {
	return "?"
}

func (d *MySQLDialect) DriverName() string {
	return "mysql"
}

// SupportsSchemas: in MySQL a schema and a database are the same thing.
func (d *MySQLDialect) SupportsSchemas() bool {
	return false
}

func (d *MySQLDialect) CreateSchemaQuery(namespace string) string {
	return ""
}

func (d *MySQLDialect) PrimaryKeyClause(columns []string) string {
	return ANSIPrimaryKeyClause(columns)
}

func (d *MySQLDialect) CreateTableQuery(table, columns, primaryKey string) string {
	return ANSICreateTableQuery(table, columns, primaryKey)
}

func (d *MySQLDialect) MapType(sqlType string) JSONType {
	t := strings.ToLower(strings.TrimSpace(sqlType))
	// TINYINT(1) is how MySQL spells BOOLEAN.
	if t == "tinyint(1)" {
		return JSONType{Type: TypeBoolean}
	}
	return mapANSIType(sqlType)
}
