package storage

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_metadata_index.go -package=mocks carebot/internal/storage MetadataIndex

import (
	"context"
	"database/sql"
	"fmt"
)

// MetadataIndex is an inverted index from a metadata term ("key:value") to
// the set of chunk ids carrying that term.
type MetadataIndex interface {
	// AddBatch unions chunk ids into the posting set of each term.
	// The union is commutative and associative: concurrent ingestions of
	// different documents never clobber each other's postings.
	AddBatch(ctx context.Context, termToIDs map[string][]string) error
	// GetIDs returns the posting set for a term. Unknown terms yield an
	// empty set, not an error.
	GetIDs(ctx context.Context, term string) (map[string]struct{}, error)
	// DeleteAll wipes the index.
	DeleteAll(ctx context.Context) error
	// TermCount returns the number of distinct indexed terms.
	TermCount(ctx context.Context) (int, error)
}

// IndexRepo provides the inverted metadata index backed by SQLite.
// It implements the MetadataIndex interface.
type IndexRepo struct {
	db *sql.DB
}

// NewIndexRepo creates a new IndexRepo.
func NewIndexRepo(db *sql.DB) *IndexRepo {
	return &IndexRepo{db: db}
}

// AddBatch unions chunk ids into posting sets. INSERT OR IGNORE against the
// (term, chunk_id) primary key makes each add a set-union, never an overwrite.
func (r *IndexRepo) AddBatch(ctx context.Context, termToIDs map[string][]string) error {
	for term, ids := range termToIDs {
		if len(ids) == 0 {
			continue
		}
		for _, id := range ids {
			_, err := r.db.ExecContext(ctx,
				"INSERT OR IGNORE INTO postings (term, chunk_id) VALUES (?, ?)",
				term, id,
			)
			if err != nil {
				return fmt.Errorf("failed to index term %q: %w", term, err)
			}
		}
	}
	return nil
}

// GetIDs returns the posting set for a term.
func (r *IndexRepo) GetIDs(ctx context.Context, term string) (map[string]struct{}, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT chunk_id FROM postings WHERE term = ?",
		term,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query postings: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	ids := make(map[string]struct{})
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan posting: %w", err)
		}
		ids[id] = struct{}{}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return ids, nil
}

// DeleteAll wipes all postings.
func (r *IndexRepo) DeleteAll(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM postings"); err != nil {
		return fmt.Errorf("failed to delete postings: %w", err)
	}
	return nil
}

// TermCount returns the number of distinct indexed terms.
func (r *IndexRepo) TermCount(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(DISTINCT term) FROM postings").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count terms: %w", err)
	}
	return n, nil
}
