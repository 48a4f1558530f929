// Package memory provides conversation history with a durable backend,
// an in-process fallback for backend outages, and a short-lived read cache.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"carebot/internal/contextutil"
	"carebot/internal/storage"
)

const (
	// fallbackCap bounds the per-session in-memory ring used when the
	// durable backend is unavailable.
	fallbackCap = 50

	// DefaultCacheTTL is how long a GetLast result may be served from cache.
	DefaultCacheTTL = 2 * time.Minute
)

type cacheEntry struct {
	messages  []*storage.MessageRecord
	expiresAt time.Time
}

// ConversationMemory records and replays conversation turns. Reads are
// fronted by a TTL cache; writes that fail against the backend degrade to
// an in-process ring buffer so a chat turn never fails on history.
type ConversationMemory struct {
	store    storage.MessageStore
	cacheTTL time.Duration

	mu        sync.Mutex
	cache     map[string]map[int]cacheEntry // session -> limit -> entry
	fallback  map[string][]*storage.MessageRecord
	lastStamp map[string]int64 // session -> last issued ts_millis
}

// New creates a ConversationMemory over the given message store.
func New(store storage.MessageStore, cacheTTL time.Duration) *ConversationMemory {
	if cacheTTL <= 0 {
		cacheTTL = DefaultCacheTTL
	}
	return &ConversationMemory{
		store:     store,
		cacheTTL:  cacheTTL,
		cache:     make(map[string]map[int]cacheEntry),
		fallback:  make(map[string][]*storage.MessageRecord),
		lastStamp: make(map[string]int64),
	}
}

// Append records one turn. The message receives an id and a per-session
// strictly increasing millisecond timestamp. The session's read cache is
// invalidated before Append returns, so a subsequent GetLast on the same
// goroutine always observes the new message. A backend failure falls back
// to the in-memory ring and is not surfaced as an error.
func (m *ConversationMemory) Append(ctx context.Context, msg *storage.MessageRecord) error {
	logger := contextutil.LoggerFromContext(ctx)

	if msg.ID == "" {
		msg.ID = uuid.New().String()
	}
	msg.TimestampMillis = m.nextTimestamp(msg.SessionID)
	if msg.ExpiresAt == 0 {
		msg.ExpiresAt = time.Now().Add(storage.DefaultMessageTTL).Unix()
	}

	err := m.store.Append(ctx, msg)
	if err != nil {
		logger.WarnContext(ctx, "message store unavailable, using in-memory fallback",
			"session_id", msg.SessionID, "error", err)
		m.appendFallback(msg)
	}

	m.invalidate(msg.SessionID)
	return nil
}

// GetLast returns up to limit most recent turns of a session, oldest first.
// Results are served from cache within the TTL. When the backend fails, the
// in-memory fallback ring answers instead.
func (m *ConversationMemory) GetLast(ctx context.Context, sessionID string, limit int) ([]*storage.MessageRecord, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if cached, ok := m.getCached(sessionID, limit); ok {
		return cached, nil
	}

	messages, err := m.store.GetLast(ctx, sessionID, limit)
	if err != nil {
		logger.WarnContext(ctx, "message store read failed, using in-memory fallback",
			"session_id", sessionID, "error", err)
		return m.fallbackLast(sessionID, limit), nil
	}

	m.putCached(sessionID, limit, messages)
	return messages, nil
}

// Clear removes a session's history from the backend, the fallback ring,
// and the cache.
func (m *ConversationMemory) Clear(ctx context.Context, sessionID string) error {
	m.mu.Lock()
	delete(m.fallback, sessionID)
	delete(m.cache, sessionID)
	delete(m.lastStamp, sessionID)
	m.mu.Unlock()

	return m.store.Clear(ctx, sessionID)
}

// PurgeExpired removes expired messages from the backend. Intended to run
// on a background janitor ticker.
func (m *ConversationMemory) PurgeExpired(ctx context.Context) (int64, error) {
	return m.store.PurgeExpired(ctx)
}

// nextTimestamp issues a strictly increasing millisecond timestamp for the
// session. Bursts faster than the clock advance by one millisecond each.
func (m *ConversationMemory) nextTimestamp(sessionID string) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now().UnixMilli()
	if last := m.lastStamp[sessionID]; now <= last {
		now = last + 1
	}
	m.lastStamp[sessionID] = now
	return now
}

func (m *ConversationMemory) appendFallback(msg *storage.MessageRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ring := append(m.fallback[msg.SessionID], msg)
	if len(ring) > fallbackCap {
		ring = ring[len(ring)-fallbackCap:]
	}
	m.fallback[msg.SessionID] = ring
}

func (m *ConversationMemory) fallbackLast(sessionID string, limit int) []*storage.MessageRecord {
	m.mu.Lock()
	defer m.mu.Unlock()

	ring := m.fallback[sessionID]
	if limit > 0 && len(ring) > limit {
		ring = ring[len(ring)-limit:]
	}
	out := make([]*storage.MessageRecord, len(ring))
	copy(out, ring)
	return out
}

func (m *ConversationMemory) getCached(sessionID string, limit int) ([]*storage.MessageRecord, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.cache[sessionID][limit]
	if !ok || time.Now().After(entry.expiresAt) {
		return nil, false
	}
	return entry.messages, true
}

func (m *ConversationMemory) putCached(sessionID string, limit int, messages []*storage.MessageRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()

	byLimit, ok := m.cache[sessionID]
	if !ok {
		byLimit = make(map[int]cacheEntry)
		m.cache[sessionID] = byLimit
	}
	byLimit[limit] = cacheEntry{
		messages:  messages,
		expiresAt: time.Now().Add(m.cacheTTL),
	}
}

// invalidate drops every cached limit variant for the session.
func (m *ConversationMemory) invalidate(sessionID string) {
	m.mu.Lock()
	delete(m.cache, sessionID)
	m.mu.Unlock()
}
