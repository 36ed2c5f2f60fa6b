package source

import (
	"sort"
	"strings"

	"github.com/carlosnayan/source-clickhouse/internal/dialect"
)

// tableCollector accumulates catalog rows into tables, preserving the order
// in which columns are reported.
type tableCollector struct {
	dialect dialect.Dialect
	tables  map[string]*Table
	order   []string
}

func newTableCollector(d dialect.Dialect) *tableCollector {
	return &tableCollector{dialect: d, tables: make(map[string]*Table)}
}

func collectorKey(namespace, table string) string {
	return namespace + "\x00" + table
}

func (c *tableCollector) table(namespace, name string) *Table {
	key := collectorKey(namespace, name)
	t, ok := c.tables[key]
	if !ok {
		t = &Table{Namespace: namespace, Name: name}
		c.tables[key] = t
		c.order = append(c.order, key)
	}
	return t
}

func (c *tableCollector) addColumn(namespace, table, column, sqlType string) {
	t := c.table(namespace, table)
	t.Columns = append(t.Columns, Column{
		Name:    column,
		SQLType: sqlType,
		Type:    c.dialect.MapType(sqlType),
	})
}

// addPrimaryKey appends key columns in key order. Unknown tables are ignored.
func (c *tableCollector) addPrimaryKey(namespace, table string, columns ...string) {
	t, ok := c.tables[collectorKey(namespace, table)]
	if !ok {
		return
	}
	for _, col := range columns {
		if _, exists := t.Column(col); exists {
			t.PrimaryKey = append(t.PrimaryKey, col)
		}
	}
}

// result returns tables sorted by namespace then name.
func (c *tableCollector) result() []Table {
	out := make([]Table, 0, len(c.order))
	for _, key := range c.order {
		out = append(out, *c.tables[key])
	}
	sortTables(out)
	return out
}

func sortTables(tables []Table) {
	sort.SliceStable(tables, func(i, j int) bool {
		if tables[i].Namespace != tables[j].Namespace {
			return tables[i].Namespace < tables[j].Namespace
		}
		return tables[i].Name < tables[j].Name
	})
}

// splitKeyExpression turns "a, b" or "(a, b)" into [a b].
func splitKeyExpression(expr string) []string {
	expr = strings.TrimSpace(expr)
	expr = strings.TrimPrefix(expr, "(")
	expr = strings.TrimSuffix(expr, ")")
	if expr == "" {
		return nil
	}
	var cols []string
	for _, part := range strings.Split(expr, ",") {
		part = strings.Trim(strings.TrimSpace(part), "`\"")
		if part != "" {
			cols = append(cols, part)
		}
	}
	return cols
}
