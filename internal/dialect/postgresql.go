package dialect

import (
	"fmt"
	"strings"
)

// PostgreSQLDialect implements the PostgreSQL dialect
type PostgreSQLDialect struct{}

func (d *PostgreSQLDialect) Name() string {
	return "postgresql"
}

func (d *PostgreSQLDialect) QuoteIdentifier(name string) string {
	return quoteWith(`"`, name)
}

func (d *PostgreSQLDialect) QuoteString(value string) string {
	// Double single quotes.
	escaped := strings.ReplaceAll(value, "'", "''")
	return fmt.Sprintf("'%s'", escaped)
}

func (d *PostgreSQLDialect) QualifiedName(namespace, table string) string {
	return qualifiedName(d, namespace, table)
}

func (d *PostgreSQLDialect) Placeholder(index int) string {
	return fmt.Sprintf("$%d", index)
}

func (d *PostgreSQLDialect) DriverName() string {
	return "pgx"
}

func (d *PostgreSQLDialect) SupportsSchemas() bool {
	return true
}

func (d *PostgreSQLDialect) CreateSchemaQuery(namespace string) string {
	return fmt.Sprintf("CREATE SCHEMA IF NOT EXISTS %s", d.QuoteIdentifier(namespace))
}

func (d *PostgreSQLDialect) PrimaryKeyClause(columns []string) string {
	return ANSIPrimaryKeyClause(columns)
}

func (d *PostgreSQLDialect) CreateTableQuery(table, columns, primaryKey string) string {
	return ANSICreateTableQuery(table, columns, primaryKey)
}

func (d *PostgreSQLDialect) MapType(sqlType string) JSONType {
	t := strings.ToLower(strings.TrimSpace(sqlType))
	switch {
	case t == "json" || t == "jsonb" || t == "uuid" || t == "bytea":
		return JSONType{Type: TypeString}
	case strings.HasPrefix(t, "timestamp"):
		return JSONType{Type: TypeString, Format: FormatDateTime}
	case strings.HasPrefix(t, "character varying") || strings.HasPrefix(t, "character"):
		return JSONType{Type: TypeString}
	}
	return mapANSIType(sqlType)
}
