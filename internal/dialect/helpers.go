package dialect

import (
	"fmt"
	"strings"
)

// ANSIPrimaryKeyClause is the portable form: PRIMARY KEY (a,b).
func ANSIPrimaryKeyClause(columns []string) string {
	if len(columns) == 0 {
		return ""
	}
	return fmt.Sprintf("PRIMARY KEY (%s)", strings.Join(columns, ","))
}

// ANSICreateTableQuery appends the key clause inside the column list:
// CREATE TABLE t(cols, PRIMARY KEY (a,b)).
func ANSICreateTableQuery(table, columns, primaryKey string) string {
	if primaryKey == "" {
		return fmt.Sprintf("CREATE TABLE %s(%s)", table, columns)
	}
	return fmt.Sprintf("CREATE TABLE %s(%s, %s)", table, columns, primaryKey)
}

func qualifiedName(d Dialect, namespace, table string) string {
	if namespace == "" {
		return d.QuoteIdentifier(table)
	}
	return d.QuoteIdentifier(namespace) + "." + d.QuoteIdentifier(table)
}

func quoteWith(quote, name string) string {
	return quote + strings.ReplaceAll(name, quote, quote+quote) + quote
}

// baseType strips length/precision arguments and upper-cases the name:
// "varchar(200)" -> "VARCHAR", "DOUBLE PRECISION" -> "DOUBLE PRECISION".
func baseType(sqlType string) string {
	t := strings.ToUpper(strings.TrimSpace(sqlType))
	if idx := strings.Index(t, "("); idx != -1 {
		t = strings.TrimSpace(t[:idx])
	}
	return strings.TrimSuffix(t, " UNSIGNED")
}

// mapANSIType covers the type names shared by the row-oriented engines.
func mapANSIType(sqlType string) JSONType {
	t := baseType(sqlType)
	switch {
	case t == "BOOLEAN" || t == "BOOL" || t == "BIT":
		return JSONType{Type: TypeBoolean}
	case strings.HasSuffix(t, "INT") || strings.HasSuffix(t, "INTEGER") ||
		t == "SERIAL" || t == "BIGSERIAL" || t == "SMALLSERIAL" || t == "INT2" || t == "INT4" || t == "INT8":
		return JSONType{Type: TypeInteger}
	case t == "REAL" || t == "FLOAT" || t == "FLOAT4" || t == "FLOAT8" || t == "DOUBLE" ||
		t == "DOUBLE PRECISION" || t == "DECIMAL" || t == "NUMERIC":
		return JSONType{Type: TypeNumber}
	case t == "DATE":
		return JSONType{Type: TypeString, Format: FormatDate}
	case strings.HasPrefix(t, "TIMESTAMP") || t == "DATETIME":
		return JSONType{Type: TypeString, Format: FormatDateTime}
	default:
		return JSONType{Type: TypeString}
	}
}
