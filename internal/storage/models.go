package storage

import "errors"

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// GlobalScope is the shared session scope for knowledge visible to everyone.
// GlobalScopeLegacy is an alias written by an earlier version of the ingester
// and is still honored on reads.
const (
	GlobalScope       = "GLOBAL"
	GlobalScopeLegacy = "GLOBAL_POLICY"
)

// ChunkRecord is a chunk of a source document together with its embedding.
// The id is immutable once assigned and is the sole join key between the
// chunk store and the metadata postings. Embedding length is constant across
// the store.
type ChunkRecord struct {
	ID           string
	Text         string
	SessionScope string // GlobalScope or a user id
	Embedding    []float32
	Metadata     map[string]string
}

// MessageRecord is one turn of a conversation. Records are append-only and
// ordered by (SessionID, TimestampMillis); they expire via ExpiresAt.
type MessageRecord struct {
	ID              string
	SessionID       string
	Role            string // "user" or "assistant"
	Content         string
	TimestampMillis int64
	MessageType     string // "QUESTION", "ANSWER" or ""
	Intent          string
	Source          string // "VECTOR_RAG", "LLM", "USER", "BOT"
	Confidence      float64
	TicketID        string
	ExpiresAt       int64 // unix seconds
}

// SyncRecord tracks the last ingested version of a source file.
type SyncRecord struct {
	Path         string
	LastModified int64 // unix seconds
	SyncedAt     int64 // unix seconds
}
