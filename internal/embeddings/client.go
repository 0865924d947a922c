// Package embeddings generates embedding vectors for anonymized clinical
// text via injected model clients (OpenAI, Gemini, mock).
package embeddings

import "context"

// Client generates embedding vectors for text.
// Implemented by provider-specific clients (e.g. OpenAI, Google Gemini) and
// by the deterministic mock used in tests.
type Client interface {
	CreateEmbedding(ctx context.Context, input string) ([]float32, error)
}
