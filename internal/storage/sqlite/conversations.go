package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/sandevgo/vidquery/internal/core"
)

// ConversationsRepo stores each conversation as a full document: the
// message list is one JSON array column, written back whole on every
// upsert. Callers that need append semantics must serialize their own
// read-modify-write cycles.
type ConversationsRepo struct {
	db *sql.DB
}

func NewConversationsRepo(db *sql.DB) *ConversationsRepo {
	return &ConversationsRepo{db: db}
}

func (r *ConversationsRepo) Get(ctx context.Context, id string) (*core.Conversation, error) {
	var (
		conv     core.Conversation
		messages string
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT id, title, messages, created_at FROM conversations WHERE id = ?`, id,
	).Scan(&conv.ID, &conv.Title, &messages, &conv.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query conversation: %w", err)
	}

	if messages != "" && messages != "[]" {
		if err := json.Unmarshal([]byte(messages), &conv.Messages); err != nil {
			return nil, fmt.Errorf("failed to unmarshal messages: %w", err)
		}
	}
	return &conv, nil
}

func (r *ConversationsRepo) Upsert(ctx context.Context, c core.Conversation) error {
	messages, err := json.Marshal(c.Messages)
	if err != nil {
		return fmt.Errorf("failed to marshal messages: %w", err)
	}

	// Title and creation time are fixed at first write; later upserts only
	// replace the message list.
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO conversations (id, title, messages, created_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET messages = excluded.messages`,
		c.ID, c.Title, string(messages), c.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert conversation: %w", err)
	}
	return nil
}
