package sqlitemigrate

import (
	"database/sql"
	"path/filepath"
	"testing"
	"testing/fstest"

	_ "modernc.org/sqlite"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	sqlDB, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "migrate.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })
	return sqlDB
}

func TestApplyMigrationsRunsInOrderOnce(t *testing.T) {
	fsys := fstest.MapFS{
		"0001_init.sql":  &fstest.MapFile{Data: []byte("CREATE TABLE things (id INTEGER PRIMARY KEY, name TEXT);")},
		"0002_index.sql": &fstest.MapFile{Data: []byte("CREATE INDEX idx_things_name ON things (name);")},
		"notes.txt":      &fstest.MapFile{Data: []byte("ignored")},
	}
	sqlDB := openTestDB(t)

	if err := ApplyMigrations(sqlDB, fsys, "."); err != nil {
		t.Fatalf("apply: %v", err)
	}
	// A second pass must be a no-op, not a duplicate-table failure.
	if err := ApplyMigrations(sqlDB, fsys, "."); err != nil {
		t.Fatalf("re-apply: %v", err)
	}

	var count int
	if err := sqlDB.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count); err != nil {
		t.Fatalf("count migrations: %v", err)
	}
	if count != 2 {
		t.Fatalf("applied = %d, want 2", count)
	}

	if _, err := sqlDB.Exec("INSERT INTO things (name) VALUES ('x')"); err != nil {
		t.Fatalf("schema missing after migrate: %v", err)
	}
}

func TestApplyMigrationsFailureRollsBack(t *testing.T) {
	fsys := fstest.MapFS{
		"0001_bad.sql": &fstest.MapFile{Data: []byte("CREATE TABLE broken (;")},
	}
	sqlDB := openTestDB(t)

	if err := ApplyMigrations(sqlDB, fsys, "."); err == nil {
		t.Fatal("expected migration failure")
	}

	var count int
	if err := sqlDB.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count); err != nil {
		t.Fatalf("count migrations: %v", err)
	}
	if count != 0 {
		t.Fatalf("failed migration recorded, count = %d", count)
	}
}
