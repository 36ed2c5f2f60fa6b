package driver

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// setupSQLiteTestDB is a helper function to setup SQLite test database
func setupSQLiteTestDB(t *testing.T) DB {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "driver_test.db")
	db, err := sql.Open("sqlite3", "file:"+dbPath)
	if err != nil {
		t.Fatalf("failed to connect to SQLite: %v", err)
	}
	ConfigurePool(db, nil)

	adapter := NewSQLDB(db)
	t.Cleanup(func() { _ = adapter.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := adapter.Ping(ctx); err != nil {
		t.Fatalf("failed to ping SQLite database: %v", err)
	}
	return adapter
}

func TestSQLDBAdapter_SQLite(t *testing.T) {
	db := setupSQLiteTestDB(t)
	ctx := context.Background()

	if _, err := db.Exec(ctx, "CREATE TABLE id_and_name(id INTEGER, name VARCHAR(200))"); err != nil {
		t.Fatalf("create table: %v", err)
	}

	result, err := db.Exec(ctx, "INSERT INTO id_and_name(id, name) VALUES (?, ?), (?, ?)", 1, "picard", 2, "crusher")
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if result.RowsAffected() != 2 {
		t.Errorf("RowsAffected() = %d, want 2", result.RowsAffected())
	}

	var count int
	if err := db.QueryRow(ctx, "SELECT COUNT(*) FROM id_and_name").Scan(&count); err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 2 {
		t.Errorf("count = %d, want 2", count)
	}

	rows, err := db.Query(ctx, "SELECT id, name FROM id_and_name ORDER BY id")
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		t.Fatalf("columns: %v", err)
	}
	if len(cols) != 2 || cols[0] != "id" || cols[1] != "name" {
		t.Errorf("Columns() = %v", cols)
	}

	var got []string
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			t.Fatalf("values: %v", err)
		}
		if _, ok := values[0].(int64); !ok {
			t.Errorf("id scanned as %T, want int64", values[0])
		}
		switch name := values[1].(type) {
		case string:
			got = append(got, name)
		case []byte:
			got = append(got, string(name))
		default:
			t.Errorf("name scanned as %T", values[1])
		}
	}
	if err := rows.Err(); err != nil {
		t.Fatalf("rows: %v", err)
	}
	if len(got) != 2 || got[0] != "picard" || got[1] != "crusher" {
		t.Errorf("names = %v", got)
	}
}

func TestSQLDBAdapter_QueryError(t *testing.T) {
	db := setupSQLiteTestDB(t)
	ctx := context.Background()

	if _, err := db.Query(ctx, "SELECT id FROM missing_table"); err == nil {
		t.Error("expected error querying a missing table")
	}
	if _, err := db.Exec(ctx, "NOT SQL"); err == nil {
		t.Error("expected error executing invalid SQL")
	}

	var n int
	if err := db.QueryRow(ctx, "SELECT 1 WHERE 1 = 0").Scan(&n); err != sql.ErrNoRows {
		t.Errorf("Scan() error = %v, want sql.ErrNoRows", err)
	}
}

func TestConfigurePool(t *testing.T) {
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	ConfigurePool(db, &PoolConfig{MaxOpenConns: 3, MaxIdleConns: 1, ConnMaxLifetime: time.Minute})
	if got := db.Stats().MaxOpenConnections; got != 3 {
		t.Errorf("MaxOpenConnections = %d, want 3", got)
	}

	ConfigurePool(db, nil)
	if got := db.Stats().MaxOpenConnections; got != DefaultPoolConfig().MaxOpenConns {
		t.Errorf("MaxOpenConnections = %d, want default %d", got, DefaultPoolConfig().MaxOpenConns)
	}
}
