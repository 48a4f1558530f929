package storage

import (
	"context"
	"testing"
)

func TestIndexRepo_AddBatch_Union(t *testing.T) {
	db := newTestDB(t)
	repo := NewIndexRepo(db)
	ctx := context.Background()

	// Two separate adds for the same term must union, never overwrite.
	if err := repo.AddBatch(ctx, map[string][]string{"user:global": {"x"}}); err != nil {
		t.Fatalf("AddBatch() error = %v", err)
	}
	if err := repo.AddBatch(ctx, map[string][]string{"user:global": {"y"}}); err != nil {
		t.Fatalf("AddBatch() second call error = %v", err)
	}

	ids, err := repo.GetIDs(ctx, "user:global")
	if err != nil {
		t.Fatalf("GetIDs() error = %v", err)
	}
	if len(ids) != 2 {
		t.Fatalf("GetIDs() returned %d ids, want 2", len(ids))
	}
	for _, want := range []string{"x", "y"} {
		if _, ok := ids[want]; !ok {
			t.Errorf("GetIDs() missing id %q", want)
		}
	}
}

func TestIndexRepo_AddBatch_DuplicateIDs(t *testing.T) {
	db := newTestDB(t)
	repo := NewIndexRepo(db)
	ctx := context.Background()

	if err := repo.AddBatch(ctx, map[string][]string{"role:customer": {"x", "x"}}); err != nil {
		t.Fatalf("AddBatch() error = %v", err)
	}
	if err := repo.AddBatch(ctx, map[string][]string{"role:customer": {"x"}}); err != nil {
		t.Fatalf("AddBatch() second call error = %v", err)
	}

	ids, err := repo.GetIDs(ctx, "role:customer")
	if err != nil {
		t.Fatalf("GetIDs() error = %v", err)
	}
	if len(ids) != 1 {
		t.Errorf("GetIDs() returned %d ids, want 1 (set semantics)", len(ids))
	}
}

func TestIndexRepo_GetIDs_UnknownTerm(t *testing.T) {
	db := newTestDB(t)
	repo := NewIndexRepo(db)

	ids, err := repo.GetIDs(context.Background(), "user:nobody")
	if err != nil {
		t.Fatalf("GetIDs() error = %v for unknown term, want empty set", err)
	}
	if len(ids) != 0 {
		t.Errorf("GetIDs() returned %d ids for unknown term, want 0", len(ids))
	}
}

func TestIndexRepo_DeleteAll(t *testing.T) {
	db := newTestDB(t)
	repo := NewIndexRepo(db)
	ctx := context.Background()

	if err := repo.AddBatch(ctx, map[string][]string{
		"user:U101":   {"a"},
		"user:global": {"b"},
	}); err != nil {
		t.Fatalf("AddBatch() error = %v", err)
	}

	count, err := repo.TermCount(ctx)
	if err != nil {
		t.Fatalf("TermCount() error = %v", err)
	}
	if count != 2 {
		t.Errorf("TermCount() = %d, want 2", count)
	}

	if err := repo.DeleteAll(ctx); err != nil {
		t.Fatalf("DeleteAll() error = %v", err)
	}

	ids, err := repo.GetIDs(ctx, "user:U101")
	if err != nil {
		t.Fatalf("GetIDs() error = %v", err)
	}
	if len(ids) != 0 {
		t.Errorf("GetIDs() returned %d ids after DeleteAll, want 0", len(ids))
	}
}
