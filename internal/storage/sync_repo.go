package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// SyncStore tracks which source files have already been ingested.
type SyncStore interface {
	// Get returns the sync record for a path. Returns ErrNotFound if the
	// path was never ingested.
	Get(ctx context.Context, path string) (*SyncRecord, error)
	// Upsert records a completed ingest of a path.
	Upsert(ctx context.Context, rec *SyncRecord) error
	// DeleteAll wipes the sync state, forcing a full re-ingest.
	DeleteAll(ctx context.Context) error
}

// SyncRepo provides sync state storage backed by SQLite.
type SyncRepo struct {
	db *sql.DB
}

// NewSyncRepo creates a new SyncRepo.
func NewSyncRepo(db *sql.DB) *SyncRepo {
	return &SyncRepo{db: db}
}

// Get returns the sync record for a path.
func (r *SyncRepo) Get(ctx context.Context, path string) (*SyncRecord, error) {
	var rec SyncRecord
	err := r.db.QueryRowContext(ctx,
		"SELECT path, last_modified, synced_at FROM sync_state WHERE path = ?",
		path,
	).Scan(&rec.Path, &rec.LastModified, &rec.SyncedAt)

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query sync state: %w", err)
	}

	return &rec, nil
}

// Upsert records a completed ingest of a path.
func (r *SyncRepo) Upsert(ctx context.Context, rec *SyncRecord) error {
	syncedAt := rec.SyncedAt
	if syncedAt == 0 {
		syncedAt = time.Now().Unix()
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO sync_state (path, last_modified, synced_at)
		 VALUES (?, ?, ?)
		 ON CONFLICT(path) DO UPDATE SET
		   last_modified = excluded.last_modified,
		   synced_at = excluded.synced_at`,
		rec.Path, rec.LastModified, syncedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert sync state: %w", err)
	}
	return nil
}

// DeleteAll wipes the sync state.
func (r *SyncRepo) DeleteAll(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM sync_state"); err != nil {
		return fmt.Errorf("failed to delete sync state: %w", err)
	}
	return nil
}
