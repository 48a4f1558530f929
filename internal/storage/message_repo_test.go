package storage

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
)

func testMessage(sessionID, role, content string, ts int64) *MessageRecord {
	return &MessageRecord{
		ID:              uuid.New().String(),
		SessionID:       sessionID,
		Role:            role,
		Content:         content,
		TimestampMillis: ts,
		ExpiresAt:       time.Now().Add(time.Hour).Unix(),
	}
}

func TestMessageRepo_AppendAndGetLast(t *testing.T) {
	db := newTestDB(t)
	repo := NewMessageRepo(db)
	ctx := context.Background()

	msgs := []*MessageRecord{
		testMessage("s1", "user", "first", 1000),
		testMessage("s1", "assistant", "second", 1001),
		testMessage("s1", "user", "third", 1002),
		testMessage("other", "user", "unrelated", 1003),
	}
	for _, msg := range msgs {
		if err := repo.Append(ctx, msg); err != nil {
			t.Fatalf("Append() error = %v", err)
		}
	}

	got, err := repo.GetLast(ctx, "s1", 10)
	if err != nil {
		t.Fatalf("GetLast() error = %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("GetLast() returned %d messages, want 3", len(got))
	}

	// Oldest first.
	wantOrder := []string{"first", "second", "third"}
	for i, msg := range got {
		if msg.Content != wantOrder[i] {
			t.Errorf("GetLast()[%d].Content = %q, want %q", i, msg.Content, wantOrder[i])
		}
	}
}

func TestMessageRepo_GetLast_Limit(t *testing.T) {
	db := newTestDB(t)
	repo := NewMessageRepo(db)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		msg := testMessage("s1", "user", "m", int64(1000+i))
		if err := repo.Append(ctx, msg); err != nil {
			t.Fatalf("Append() error = %v", err)
		}
	}

	got, err := repo.GetLast(ctx, "s1", 2)
	if err != nil {
		t.Fatalf("GetLast() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("GetLast() returned %d messages, want 2", len(got))
	}

	// Limit keeps the most recent messages, still oldest first.
	if got[0].TimestampMillis != 1003 || got[1].TimestampMillis != 1004 {
		t.Errorf("GetLast() timestamps = %d, %d; want 1003, 1004", got[0].TimestampMillis, got[1].TimestampMillis)
	}
}

func TestMessageRepo_GetLast_SkipsExpired(t *testing.T) {
	db := newTestDB(t)
	repo := NewMessageRepo(db)
	ctx := context.Background()

	expired := testMessage("s1", "user", "old", 1000)
	expired.ExpiresAt = time.Now().Add(-time.Minute).Unix()
	if err := repo.Append(ctx, expired); err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	if err := repo.Append(ctx, testMessage("s1", "user", "fresh", 1001)); err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	got, err := repo.GetLast(ctx, "s1", 10)
	if err != nil {
		t.Fatalf("GetLast() error = %v", err)
	}
	if len(got) != 1 || got[0].Content != "fresh" {
		t.Errorf("GetLast() = %d messages, want only the unexpired one", len(got))
	}
}

func TestMessageRepo_Clear(t *testing.T) {
	db := newTestDB(t)
	repo := NewMessageRepo(db)
	ctx := context.Background()

	if err := repo.Append(ctx, testMessage("s1", "user", "hello", 1000)); err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	if err := repo.Append(ctx, testMessage("s2", "user", "kept", 1001)); err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	if err := repo.Clear(ctx, "s1"); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}

	got, err := repo.GetLast(ctx, "s1", 10)
	if err != nil {
		t.Fatalf("GetLast() error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("GetLast() returned %d messages after Clear, want 0", len(got))
	}

	kept, err := repo.GetLast(ctx, "s2", 10)
	if err != nil {
		t.Fatalf("GetLast() error = %v", err)
	}
	if len(kept) != 1 {
		t.Errorf("Clear() removed messages of another session")
	}
}

func TestMessageRepo_PurgeExpired(t *testing.T) {
	db := newTestDB(t)
	repo := NewMessageRepo(db)
	ctx := context.Background()

	expired := testMessage("s1", "user", "old", 1000)
	expired.ExpiresAt = time.Now().Add(-time.Minute).Unix()
	if err := repo.Append(ctx, expired); err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	if err := repo.Append(ctx, testMessage("s1", "user", "fresh", 1001)); err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	n, err := repo.PurgeExpired(ctx)
	if err != nil {
		t.Fatalf("PurgeExpired() error = %v", err)
	}
	if n != 1 {
		t.Errorf("PurgeExpired() removed %d messages, want 1", n)
	}
}
