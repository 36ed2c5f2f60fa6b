// Package testing holds the shared acceptance suite for SQL sources and the
// per-database fixtures it runs against.
package testing

import (
	"context"

	"github.com/carlosnayan/source-clickhouse/internal/config"
	"github.com/carlosnayan/source-clickhouse/internal/dialect"
	"github.com/carlosnayan/source-clickhouse/internal/source"
)

// Fixture is the database-specific half of an acceptance run. The suite calls
// Setup before each test and TearDown after its own cleanup.
type Fixture interface {
	// Setup brings the database up and records its connection config.
	Setup(ctx context.Context) error

	// TearDown releases whatever Setup acquired.
	TearDown(ctx context.Context) error

	// Config returns a copy of the connection config built by Setup.
	Config() *config.Config

	// Source returns a new source for the database under test.
	Source() *source.Source

	DriverName() string

	// SupportsSchemas reports whether tables live in a schema below the
	// database. When true the suite creates its own schema.
	SupportsSchemas() bool

	// CreateTableQuery builds CREATE TABLE from a column clause and the
	// result of PrimaryKeyClause.
	CreateTableQuery(table, columns, primaryKey string) string

	// PrimaryKeyClause renders the key part of CREATE TABLE; "" for no key.
	PrimaryKeyClause(columns []string) string
}

// BaseFixture carries the defaults shared by fixtures: ANSI DDL, no schema
// support and no-op lifecycle. Fixtures embed it and override what differs.
type BaseFixture struct {
	engine source.Engine
}

func NewBaseFixture(engine source.Engine) BaseFixture {
	return BaseFixture{engine: engine}
}

func (b BaseFixture) Setup(ctx context.Context) error { return nil }

func (b BaseFixture) TearDown(ctx context.Context) error { return nil }

func (b BaseFixture) Source() *source.Source {
	return source.New(b.engine)
}

func (b BaseFixture) DriverName() string {
	return b.engine.DriverName()
}

func (b BaseFixture) SupportsSchemas() bool {
	return false
}

func (b BaseFixture) CreateTableQuery(table, columns, primaryKey string) string {
	return dialect.ANSICreateTableQuery(table, columns, primaryKey)
}

func (b BaseFixture) PrimaryKeyClause(columns []string) string {
	return dialect.ANSIPrimaryKeyClause(columns)
}
