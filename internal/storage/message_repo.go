package storage

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_message_store.go -package=mocks carebot/internal/storage MessageStore

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// DefaultMessageTTL is how long conversation messages live before the store
// may purge them.
const DefaultMessageTTL = 24 * time.Hour

// MessageStore defines the durable conversation log operations.
type MessageStore interface {
	// Append writes one message. Messages are append-only and never updated.
	Append(ctx context.Context, msg *MessageRecord) error
	// GetLast returns up to limit most recent unexpired messages of a
	// session, ordered oldest first.
	GetLast(ctx context.Context, sessionID string, limit int) ([]*MessageRecord, error)
	// Clear removes all messages of a session.
	Clear(ctx context.Context, sessionID string) error
	// PurgeExpired removes expired messages across all sessions.
	PurgeExpired(ctx context.Context) (int64, error)
}

// MessageRepo provides conversation message storage backed by SQLite.
// It implements the MessageStore interface.
type MessageRepo struct {
	db *sql.DB
}

// NewMessageRepo creates a new MessageRepo.
func NewMessageRepo(db *sql.DB) *MessageRepo {
	return &MessageRepo{db: db}
}

// Append writes one message.
func (r *MessageRepo) Append(ctx context.Context, msg *MessageRecord) error {
	expiresAt := msg.ExpiresAt
	if expiresAt == 0 {
		expiresAt = time.Now().Add(DefaultMessageTTL).Unix()
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO messages (id, session_id, role, content, ts_millis, message_type, intent, source, confidence, ticket_id, expires_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		msg.ID, msg.SessionID, msg.Role, msg.Content, msg.TimestampMillis,
		msg.MessageType, msg.Intent, msg.Source, msg.Confidence, msg.TicketID, expiresAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert message: %w", err)
	}
	return nil
}

// GetLast returns up to limit most recent unexpired messages, oldest first.
func (r *MessageRepo) GetLast(ctx context.Context, sessionID string, limit int) ([]*MessageRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, session_id, role, content, ts_millis, message_type, intent, source, confidence, ticket_id, expires_at
		 FROM messages
		 WHERE session_id = ? AND expires_at > ?
		 ORDER BY ts_millis DESC
		 LIMIT ?`,
		sessionID, time.Now().Unix(), limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query messages: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var messages []*MessageRecord
	for rows.Next() {
		var msg MessageRecord
		if err := rows.Scan(&msg.ID, &msg.SessionID, &msg.Role, &msg.Content, &msg.TimestampMillis,
			&msg.MessageType, &msg.Intent, &msg.Source, &msg.Confidence, &msg.TicketID, &msg.ExpiresAt); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		messages = append(messages, &msg)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	// Query returns newest first; reverse to chat order.
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}

	return messages, nil
}

// Clear removes all messages of a session.
func (r *MessageRepo) Clear(ctx context.Context, sessionID string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM messages WHERE session_id = ?", sessionID); err != nil {
		return fmt.Errorf("failed to clear session messages: %w", err)
	}
	return nil
}

// PurgeExpired removes expired messages and returns the number removed.
func (r *MessageRepo) PurgeExpired(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx, "DELETE FROM messages WHERE expires_at <= ?", time.Now().Unix())
	if err != nil {
		return 0, fmt.Errorf("failed to purge expired messages: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return n, nil
}
