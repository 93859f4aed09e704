package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// MessageRepository records which inbound chat messages have already been
// applied, so webhook redeliveries do not double-book entries.
type MessageRepository struct {
	db *sql.DB
}

func NewMessageRepository(db *sql.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

// MarkProcessed claims a (chat, message) pair inside the caller's
// transaction. It returns false when the pair was already claimed; the
// claim rolls back with the transaction if the mutation fails.
func (r *MessageRepository) MarkProcessed(ctx context.Context, tx *sql.Tx, chatID, messageID int64) (bool, error) {
	res, err := tx.ExecContext(ctx,
		`INSERT INTO processed_messages (chat_id, message_id, processed_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (chat_id, message_id) DO NOTHING`,
		chatID, messageID, time.Now().UTC(),
	)
	if err != nil {
		return false, fmt.Errorf("MarkProcessed: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("MarkProcessed: rows affected: %w", err)
	}
	return n == 1, nil
}
