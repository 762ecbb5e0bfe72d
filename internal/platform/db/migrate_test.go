package db

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func TestLoadMigrations_ParsesAndSorts(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "002_scheduling.sql", "CREATE TABLE appointments ();")
	writeFile(t, dir, "001_identity.sql", "CREATE TABLE patients ();")
	writeFile(t, dir, "010_reports.sql", "CREATE TABLE medical_reports ();")

	m := NewMigrator(nil, dir)
	migrations, err := m.LoadMigrations()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(migrations) != 3 {
		t.Fatalf("expected 3 migrations, got %d", len(migrations))
	}
	want := []int{1, 2, 10}
	for i, mig := range migrations {
		if mig.Version != want[i] {
			t.Errorf("position %d: expected version %d, got %d", i, want[i], mig.Version)
		}
	}
	if migrations[0].Name != "001_identity.sql" {
		t.Errorf("expected 001_identity.sql first, got %s", migrations[0].Name)
	}
	if migrations[0].SQL == "" {
		t.Error("expected SQL content to be loaded")
	}
}

func TestLoadMigrations_SkipsNonNumericAndNonSQL(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "001_identity.sql", "CREATE TABLE patients ();")
	writeFile(t, dir, "README.md", "notes")
	writeFile(t, dir, "seed_data.sql", "INSERT INTO patients VALUES ();")
	writeFile(t, dir, "notes.sql", "-- no prefix")

	m := NewMigrator(nil, dir)
	migrations, err := m.LoadMigrations()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(migrations) != 1 {
		t.Fatalf("expected 1 migration, got %d", len(migrations))
	}
}

func TestLoadMigrations_MissingDir(t *testing.T) {
	m := NewMigrator(nil, "/nonexistent/migrations")
	if _, err := m.LoadMigrations(); err == nil {
		t.Error("expected error for missing directory")
	}
}
