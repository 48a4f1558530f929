package storage

import (
	"database/sql"
	"testing"
)

// newTestDB opens a migrated database in a temp directory.
func newTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := New(t.TempDir() + "/test.db")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() {
		_ = db.Close()
	})

	if err := Migrate(db); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}

	return db
}

func TestNew(t *testing.T) {
	db := newTestDB(t)
	if err := db.Ping(); err != nil {
		t.Errorf("Ping() error = %v", err)
	}
}

func TestMigrate_Idempotent(t *testing.T) {
	db := newTestDB(t)

	// Running migrations again must not fail.
	if err := Migrate(db); err != nil {
		t.Errorf("Migrate() second run error = %v", err)
	}
}

func TestNew_InvalidPath(t *testing.T) {
	_, err := New("/nonexistent-dir/sub/test.db")
	if err == nil {
		t.Error("New() expected error for invalid path, got nil")
	}
}
