package source

import (
	"github.com/carlosnayan/source-clickhouse/internal/dialect"
	"github.com/carlosnayan/source-clickhouse/internal/protocol"
)

// Column is a table column as reported by the engine's catalog.
type Column struct {
	Name    string
	SQLType string
	Type    dialect.JSONType
}

// Table is one introspected table. PrimaryKey lists column names in key order.
type Table struct {
	Namespace  string
	Name       string
	Columns    []Column
	PrimaryKey []string
}

func (t Table) Key() protocol.StreamKey {
	return protocol.StreamKey{Namespace: t.Namespace, Name: t.Name}
}

// Column returns the named column.
func (t Table) Column(name string) (Column, bool) {
	for _, c := range t.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}
