package core

import "context"

// Embedder turns text into a vector. Embedding generation itself is an
// opaque external capability.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// ProviderAnswer is what an external answer provider returns on success.
type ProviderAnswer struct {
	Text       string
	References []Reference
}

// AnswerProvider is one tier of the external search cascade.
type AnswerProvider interface {
	Name() string
	Answer(ctx context.Context, question string) (ProviderAnswer, error)
}
