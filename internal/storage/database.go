package storage

import (
	"database/sql"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// New opens a SQLite database connection at the given path.
// It enables foreign keys and sets connection pool settings.
func New(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	// Enable foreign keys (disabled by default in SQLite)
	if _, err := db.Exec("PRAGMA foreign_keys = ON;"); err != nil {
		_ = db.Close()
		return nil, err
	}

	// Set connection pool settings
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	// Verify connection
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

// Migrate runs database migrations to create the required tables.
// It is idempotent and can be run multiple times safely.
func Migrate(db *sql.DB) error {
	schema := []string{
		`CREATE TABLE IF NOT EXISTS chunks (
			id TEXT PRIMARY KEY,
			text TEXT NOT NULL,
			session_scope TEXT NOT NULL DEFAULT 'GLOBAL',
			embedding_json TEXT NOT NULL,
			metadata_json TEXT NOT NULL DEFAULT '{}'
		);`,
		`CREATE INDEX IF NOT EXISTS idx_chunks_scope ON chunks(session_scope);`,
		`CREATE TABLE IF NOT EXISTS postings (
			term TEXT NOT NULL,
			chunk_id TEXT NOT NULL,
			PRIMARY KEY (term, chunk_id)
		);`,
		`CREATE TABLE IF NOT EXISTS messages (
			id TEXT PRIMARY KEY,
			session_id TEXT NOT NULL,
			role TEXT NOT NULL,
			content TEXT NOT NULL,
			ts_millis INTEGER NOT NULL,
			message_type TEXT NOT NULL DEFAULT '',
			intent TEXT NOT NULL DEFAULT '',
			source TEXT NOT NULL DEFAULT '',
			confidence REAL NOT NULL DEFAULT 0,
			ticket_id TEXT NOT NULL DEFAULT '',
			expires_at INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_messages_session_ts ON messages(session_id, ts_millis);`,
		`CREATE TABLE IF NOT EXISTS sync_state (
			path TEXT PRIMARY KEY,
			last_modified INTEGER NOT NULL,
			synced_at INTEGER NOT NULL
		);`,
	}

	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}

	return nil
}
