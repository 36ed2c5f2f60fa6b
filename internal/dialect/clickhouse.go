package dialect

import (
	"fmt"
	"strings"
)

// ClickHouseDialect implements the ClickHouse dialect
type ClickHouseDialect struct{}

func (d *ClickHouseDialect) Name() string {
	return "clickhouse"
}

func (d *ClickHouseDialect) QuoteIdentifier(name string) string {
	return quoteWith("`", name)
}

func (d *ClickHouseDialect) QuoteString(value string) string {
	// Backslashes first, then single quotes.
	escaped := strings.ReplaceAll(value, `\`, `\\`)
	escaped = strings.ReplaceAll(escaped, "'", `\'`)
	return fmt.Sprintf("'%s'", escaped)
}

func (d *ClickHouseDialect) QualifiedName(namespace, table string) string {
	return qualifiedName(d, namespace, table)
}

func (d *ClickHouseDialect) Placeholder(index int) string {
	return "?"
}

func (d *ClickHouseDialect) DriverName() string {
	return "clickhouse"
}

// SupportsSchemas: a ClickHouse database is already the namespace.
func (d *ClickHouseDialect) SupportsSchemas() bool {
	return false
}

func (d *ClickHouseDialect) CreateSchemaQuery(namespace string) string {
	return ""
}

// PrimaryKeyClause returns "(a,b)": ClickHouse takes the key as an ORDER BY
// expression, not as a column constraint.
func (d *ClickHouseDialect) PrimaryKeyClause(columns []string) string {
	if len(columns) == 0 {
		return ""
	}
	return "(" + strings.Join(columns, ",") + ")"
}

// CreateTableQuery uses TinyLog for keyless tables. MergeTree requires an
// ORDER BY, so it is only chosen when a key exists.
func (d *ClickHouseDialect) CreateTableQuery(table, columns, primaryKey string) string {
	if primaryKey == "" {
		return fmt.Sprintf("CREATE TABLE %s(%s) Engine = TinyLog", table, columns)
	}
	return fmt.Sprintf("CREATE TABLE %s(%s) ENGINE = MergeTree() ORDER BY %s PRIMARY KEY %s",
		table, columns, primaryKey, primaryKey)
}

// MapType unwraps Nullable(...) and LowCardinality(...) before mapping.
func (d *ClickHouseDialect) MapType(sqlType string) JSONType {
	t := unwrapClickHouseType(strings.TrimSpace(sqlType))

	switch {
	case t == "Bool" || t == "Boolean":
		return JSONType{Type: TypeBoolean}
	case strings.HasPrefix(t, "Int") || strings.HasPrefix(t, "UInt"):
		return JSONType{Type: TypeInteger}
	case strings.HasPrefix(t, "Float") || strings.HasPrefix(t, "Decimal"):
		return JSONType{Type: TypeNumber}
	case t == "Date" || t == "Date32":
		return JSONType{Type: TypeString, Format: FormatDate}
	case strings.HasPrefix(t, "DateTime"):
		return JSONType{Type: TypeString, Format: FormatDateTime}
	case t == "":
		return JSONType{Type: TypeString}
	}

	// Generic SQL names are accepted too (INTEGER, VARCHAR(200), DATE).
	return mapANSIType(t)
}

func unwrapClickHouseType(t string) string {
	for {
		switch {
		case strings.HasPrefix(t, "Nullable(") && strings.HasSuffix(t, ")"):
			t = t[len("Nullable(") : len(t)-1]
		case strings.HasPrefix(t, "LowCardinality(") && strings.HasSuffix(t, ")"):
			t = t[len("LowCardinality(") : len(t)-1]
		default:
			return t
		}
	}
}
