package testing

import (
	"context"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/carlosnayan/source-clickhouse/internal/config"
	"github.com/carlosnayan/source-clickhouse/internal/source"
)

// SQLiteFixture runs the suite against a fresh database file per test. It
// needs neither Docker nor network, so it backs the suite in plain go test.
type SQLiteFixture struct {
	BaseFixture

	dir    string
	config *config.Config
}

func NewSQLiteFixture() *SQLiteFixture {
	return &SQLiteFixture{BaseFixture: NewBaseFixture(source.NewSQLite())}
}

func (f *SQLiteFixture) Setup(ctx context.Context) error {
	dir, err := os.MkdirTemp("", "source_acceptance_*")
	if err != nil {
		return err
	}
	f.dir = dir

	// Host and port only satisfy validation; the file path is the database.
	f.config = &config.Config{
		Host:     "localhost",
		Port:     8123,
		Database: filepath.Join(dir, uuid.NewString()+".db"),
		Username: "default",
	}
	return nil
}

func (f *SQLiteFixture) TearDown(ctx context.Context) error {
	if f.dir == "" {
		return nil
	}
	err := os.RemoveAll(f.dir)
	f.dir = ""
	return err
}

func (f *SQLiteFixture) Config() *config.Config {
	return f.config.Clone()
}

// MissingDatabaseConfig points at a file below a directory that does not
// exist, since opening a plain missing path would create it.
func (f *SQLiteFixture) MissingDatabaseConfig() *config.Config {
	bad := f.config.Clone()
	bad.Database = filepath.Join(f.dir, "missing", MissingDatabaseDefault+".db")
	return bad
}
