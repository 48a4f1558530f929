package storage

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_vector_store.go -package=mocks carebot/internal/storage VectorStore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
)

// VectorStore defines the durable chunk/embedding storage operations.
type VectorStore interface {
	// Save upserts chunks keyed by id. The operation is idempotent and
	// per-chunk atomic, so an interrupted batch leaves no corrupt records.
	Save(ctx context.Context, chunks []*ChunkRecord) error
	// GetByIDs fetches chunks by id. Missing ids are silently omitted.
	GetByIDs(ctx context.Context, ids []string) ([]*ChunkRecord, error)
	// GetAll returns every chunk in the store.
	GetAll(ctx context.Context) ([]*ChunkRecord, error)
	// GetByScope returns chunks whose scope matches, plus global-scope chunks.
	GetByScope(ctx context.Context, scope string) ([]*ChunkRecord, error)
	// DeleteAll wipes the store. Used before a full re-ingest.
	DeleteAll(ctx context.Context) error
	// Count returns the number of stored chunks.
	Count(ctx context.Context) (int, error)
}

// VectorRepo provides chunk storage backed by SQLite.
// It implements the VectorStore interface.
type VectorRepo struct {
	db *sql.DB
}

// NewVectorRepo creates a new VectorRepo.
func NewVectorRepo(db *sql.DB) *VectorRepo {
	return &VectorRepo{db: db}
}

// Save upserts chunks keyed by id.
func (r *VectorRepo) Save(ctx context.Context, chunks []*ChunkRecord) error {
	for _, chunk := range chunks {
		embJSON, err := json.Marshal(chunk.Embedding)
		if err != nil {
			return fmt.Errorf("failed to marshal embedding: %w", err)
		}
		metaJSON, err := json.Marshal(chunk.Metadata)
		if err != nil {
			return fmt.Errorf("failed to marshal metadata: %w", err)
		}

		scope := chunk.SessionScope
		if scope == "" {
			scope = GlobalScope
		}

		_, err = r.db.ExecContext(ctx,
			`INSERT INTO chunks (id, text, session_scope, embedding_json, metadata_json)
			 VALUES (?, ?, ?, ?, ?)
			 ON CONFLICT(id) DO UPDATE SET
			   text = excluded.text,
			   session_scope = excluded.session_scope,
			   embedding_json = excluded.embedding_json,
			   metadata_json = excluded.metadata_json`,
			chunk.ID, chunk.Text, scope, string(embJSON), string(metaJSON),
		)
		if err != nil {
			return fmt.Errorf("failed to save chunk %s: %w", chunk.ID, err)
		}
	}
	return nil
}

// GetByIDs fetches chunks by id in a single query.
// Ids not present in the store are silently omitted from the result.
func (r *VectorRepo) GetByIDs(ctx context.Context, ids []string) ([]*ChunkRecord, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	placeholders := strings.Repeat("?,", len(ids))
	placeholders = placeholders[:len(placeholders)-1]
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := r.db.QueryContext(ctx,
		"SELECT id, text, session_scope, embedding_json, metadata_json FROM chunks WHERE id IN ("+placeholders+")",
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query chunks: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	return scanChunks(rows)
}

// GetAll returns every stored chunk. Used for diagnostics.
func (r *VectorRepo) GetAll(ctx context.Context) ([]*ChunkRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, text, session_scope, embedding_json, metadata_json FROM chunks",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query chunks: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	return scanChunks(rows)
}

// GetByScope returns chunks in the given scope together with globally scoped
// chunks, including records written under the legacy global scope name.
func (r *VectorRepo) GetByScope(ctx context.Context, scope string) ([]*ChunkRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, text, session_scope, embedding_json, metadata_json FROM chunks WHERE session_scope IN (?, ?, ?)",
		scope, GlobalScope, GlobalScopeLegacy,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query chunks by scope: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	return scanChunks(rows)
}

// DeleteAll wipes all chunks.
func (r *VectorRepo) DeleteAll(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM chunks"); err != nil {
		return fmt.Errorf("failed to delete chunks: %w", err)
	}
	return nil
}

// Count returns the number of stored chunks.
func (r *VectorRepo) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM chunks").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count chunks: %w", err)
	}
	return n, nil
}

func scanChunks(rows *sql.Rows) ([]*ChunkRecord, error) {
	var chunks []*ChunkRecord
	for rows.Next() {
		var chunk ChunkRecord
		var embJSON, metaJSON string
		if err := rows.Scan(&chunk.ID, &chunk.Text, &chunk.SessionScope, &embJSON, &metaJSON); err != nil {
			return nil, fmt.Errorf("failed to scan chunk: %w", err)
		}
		if err := json.Unmarshal([]byte(embJSON), &chunk.Embedding); err != nil {
			return nil, fmt.Errorf("failed to unmarshal embedding for chunk %s: %w", chunk.ID, err)
		}
		if err := json.Unmarshal([]byte(metaJSON), &chunk.Metadata); err != nil {
			return nil, fmt.Errorf("failed to unmarshal metadata for chunk %s: %w", chunk.ID, err)
		}
		chunks = append(chunks, &chunk)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return chunks, nil
}
