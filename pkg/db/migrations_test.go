package db

import (
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("opening database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestEmbeddedMigrationsOrdered(t *testing.T) {
	migrations, err := NewMigrationManager(nil).AvailableMigrations()
	if err != nil {
		t.Fatalf("AvailableMigrations: %v", err)
	}
	if len(migrations) < 2 {
		t.Fatalf("expected at least 2 migrations, got %d", len(migrations))
	}
	for i, m := range migrations {
		if m.Version != i+1 {
			t.Errorf("migration %d has version %d", i, m.Version)
		}
		if m.SQL == "" {
			t.Errorf("migration %d (%s) is empty", m.Version, m.Name)
		}
	}
	if migrations[0].Name != "entries" {
		t.Errorf("first migration name = %q", migrations[0].Name)
	}
}

func TestInitializeDatabaseIdempotent(t *testing.T) {
	db := openTestDB(t)

	if err := InitializeDatabase(db); err != nil {
		t.Fatalf("first InitializeDatabase: %v", err)
	}
	if err := InitializeDatabase(db); err != nil {
		t.Fatalf("second InitializeDatabase: %v", err)
	}

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM migrations").Scan(&count); err != nil {
		t.Fatal(err)
	}
	if count != 2 {
		t.Errorf("migrations recorded = %d, want 2", count)
	}

	if _, err := db.Exec("INSERT INTO entries_fts (rowid, title, content) VALUES (1, 'a', 'b')"); err != nil {
		t.Errorf("FTS table missing: %v", err)
	}
}

func TestMigrationsFromPath(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"001_first.sql":  "CREATE TABLE first (id INTEGER);",
		"002_second.sql": "CREATE TABLE second (id INTEGER);",
		"notes.txt":      "ignored",
		"bad_name.sql":   "ignored",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}

	db := openTestDB(t)
	m := NewMigrationManagerFromPath(db, dir)
	n, err := m.ApplyPendingMigrations()
	if err != nil {
		t.Fatalf("ApplyPendingMigrations: %v", err)
	}
	if n != 2 {
		t.Errorf("applied %d migrations, want 2", n)
	}

	pending, err := m.PendingMigrations()
	if err != nil {
		t.Fatal(err)
	}
	if len(pending) != 0 {
		t.Errorf("pending = %d, want 0", len(pending))
	}
}

func TestFailedMigrationRollsBack(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "001_broken.sql"), []byte("CREATE TABLE ok (id INTEGER); NOT SQL"), 0644); err != nil {
		t.Fatal(err)
	}

	db := openTestDB(t)
	if _, err := NewMigrationManagerFromPath(db, dir).ApplyPendingMigrations(); err == nil {
		t.Fatal("expected error")
	}

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM migrations").Scan(&count); err != nil {
		t.Fatal(err)
	}
	if count != 0 {
		t.Errorf("broken migration was recorded")
	}
}
