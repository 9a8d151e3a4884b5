package store

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNew_CreatesSchema(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "headshaker.db")

	if _, err := os.Stat(dbPath); !os.IsNotExist(err) {
		t.Fatal("database file should not exist before New")
	}

	s, err := New(dbPath)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	defer s.Close()

	if _, err := os.Stat(dbPath); err != nil {
		t.Fatalf("database file should exist after New: %v", err)
	}

	objects := []struct {
		kind string
		name string
	}{
		{"table", "settings"},
		{"table", "sessions"},
		{"index", "idx_sessions_ended_at"},
	}
	for _, obj := range objects {
		var name string
		err := s.DB().QueryRow(
			"SELECT name FROM sqlite_master WHERE type=? AND name=?",
			obj.kind, obj.name,
		).Scan(&name)
		if err != nil {
			t.Errorf("%s %q should exist after migrations: %v", obj.kind, obj.name, err)
		}
	}

	var fkEnabled int
	if err := s.DB().QueryRow("PRAGMA foreign_keys").Scan(&fkEnabled); err != nil {
		t.Fatalf("failed to read foreign_keys pragma: %v", err)
	}
	if fkEnabled != 1 {
		t.Error("foreign keys should be enabled")
	}
}

func TestStore_RejectsNegativeScores(t *testing.T) {
	s := newTestStore(t)

	_, err := s.DB().Exec(
		`INSERT INTO sessions (id, score, new_record, cause, started_at, ended_at)
		 VALUES ('x', -1, 0, 'missed', CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)`,
	)
	if err == nil {
		t.Error("a negative session score should violate the schema")
	}
}

func TestStore_Close(t *testing.T) {
	s, err := New(filepath.Join(t.TempDir(), "headshaker.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}

	if err := s.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
	if _, err := s.DB().Exec("SELECT 1"); err == nil {
		t.Error("queries should fail after Close")
	}
}

func TestStore_ReopenKeepsData(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "headshaker.db")

	s, err := New(dbPath)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	if err := s.Settings().Set(KeyHighScore, "12"); err != nil {
		t.Fatalf("failed to set high score: %v", err)
	}
	s.Close()

	// Migrations must be idempotent
	s, err = New(dbPath)
	if err != nil {
		t.Fatalf("failed to reopen store: %v", err)
	}
	defer s.Close()

	if s.Path() != dbPath {
		t.Errorf("Path() = %q, want %q", s.Path(), dbPath)
	}
	score, err := s.Settings().HighScore()
	if err != nil {
		t.Fatalf("HighScore() error = %v", err)
	}
	if score != 12 {
		t.Errorf("HighScore() = %d after reopen, want 12", score)
	}
}
