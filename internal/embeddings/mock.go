package embeddings

import (
	"context"
	"crypto/sha256"

	"github.com/Chitralekhayaduvanshi/Cyborg-care/pkg/vectormath"
)

// MockClient implements Client for tests. It generates deterministic unit
// vectors from the input text hash, so identical text always embeds
// identically and distinct texts almost never collide.
type MockClient struct {
	dimensions int
}

// NewMockClient creates a mock embedding client with the default dimensions.
func NewMockClient() *MockClient {
	return &MockClient{dimensions: DefaultDimension}
}

// NewMockClientWithDimensions creates a mock client with custom dimensions.
func NewMockClientWithDimensions(dimensions int) *MockClient {
	return &MockClient{dimensions: dimensions}
}

var _ Client = (*MockClient)(nil)

// CreateEmbedding generates a deterministic embedding based on the text hash.
func (c *MockClient) CreateEmbedding(_ context.Context, input string) ([]float32, error) {
	if input == "" {
		return nil, ErrEmptyInput
	}

	hash := sha256.Sum256([]byte(input))
	embedding := make([]float32, c.dimensions)

	for i := 0; i < c.dimensions; i++ {
		byteIdx := i % len(hash)
		// Spread hash bytes cyclically into [-1, 1].
		embedding[i] = (float32(hash[byteIdx]) / 127.5) - 1.0
	}

	vectormath.NormalizeL2(embedding)

	return embedding, nil
}
