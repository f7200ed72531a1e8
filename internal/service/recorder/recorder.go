// Package recorder appends finished exchanges to conversation records.
package recorder

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/sandevgo/vidquery/internal/core"
)

const titleMaxRunes = 50

// Recorder performs a read-modify-write of the full message list. Writes to
// the same conversation id are serialized through a per-id mutex so that
// concurrent exchanges cannot silently drop each other's appends.
type Recorder struct {
	store core.ConversationRepository

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func New(store core.ConversationRepository) *Recorder {
	return &Recorder{
		store: store,
		locks: make(map[string]*sync.Mutex),
	}
}

func (r *Recorder) lockFor(id string) *sync.Mutex {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.locks[id]
	if !ok {
		l = &sync.Mutex{}
		r.locks[id] = l
	}
	return l
}

// Record appends a user message and the assistant response to the
// conversation, creating the record on first use. The full message list is
// written back in one upsert.
func (r *Recorder) Record(ctx context.Context, conversationID, question string, ans core.Answer, titleHint string) error {
	if conversationID == "" {
		return fmt.Errorf("empty conversation id")
	}

	l := r.lockFor(conversationID)
	l.Lock()
	defer l.Unlock()

	conv, err := r.store.Get(ctx, conversationID)
	if err != nil {
		return fmt.Errorf("load conversation: %w", err)
	}

	now := time.Now().UTC()
	if conv == nil {
		conv = &core.Conversation{
			ID:        conversationID,
			Title:     deriveTitle(titleHint, question),
			CreatedAt: now,
		}
	}

	confidence := ans.Confidence
	conv.Messages = append(conv.Messages,
		core.ChatMessage{
			Role:      core.RoleUser,
			Content:   question,
			Timestamp: now,
		},
		core.ChatMessage{
			Role:       core.RoleAssistant,
			Content:    ans.Text,
			Timestamp:  now,
			References: ans.References,
			Source:     ans.Source.String(),
			Confidence: &confidence,
		},
	)

	if err := r.store.Upsert(ctx, *conv); err != nil {
		return fmt.Errorf("save conversation: %w", err)
	}
	return nil
}

func deriveTitle(hint, question string) string {
	title := strings.TrimSpace(hint)
	if title == "" {
		title = strings.TrimSpace(question)
	}
	if title == "" {
		return "New conversation"
	}
	runes := []rune(title)
	if len(runes) > titleMaxRunes {
		return strings.TrimSpace(string(runes[:titleMaxRunes])) + "…"
	}
	return title
}
