package core

import "context"

// VideoRepository is the read side of the corpus plus the ingest insert.
// Lookup methods that match by name use case-insensitive substring matching.
type VideoRepository interface {
	ListChannels(ctx context.Context) ([]string, error)
	// FindByTitle returns (nil, nil) when no record matches.
	FindByTitle(ctx context.Context, title string) (*Video, error)
	CountChannel(ctx context.Context, name string) (int, error)
	RecentByChannel(ctx context.Context, name string, limit int) ([]Video, error)
	RecentByTitle(ctx context.Context, title string, limit int) ([]Video, error)
	SearchSimilar(ctx context.Context, vector []float32, topK int) ([]ScoredVideo, error)
	Insert(ctx context.Context, v Video) error
}

// ConversationRepository stores whole conversation documents. Upsert writes
// the full message list back; there is no native append operation.
type ConversationRepository interface {
	// Get returns (nil, nil) when the conversation does not exist.
	Get(ctx context.Context, id string) (*Conversation, error)
	Upsert(ctx context.Context, c Conversation) error
}
