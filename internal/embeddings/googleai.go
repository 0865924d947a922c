package embeddings

import (
	"context"
	"fmt"
	"math"
	"strings"

	"google.golang.org/genai"
)

const defaultGeminiModel = "gemini-embedding-001"

// GoogleAIClient calls the Gemini embeddings API via the Google Gen AI SDK.
type GoogleAIClient struct {
	client     *genai.Client
	model      string
	dimensions int
}

// GoogleAIOption configures the GoogleAIClient.
type GoogleAIOption func(*GoogleAIClient)

// WithGoogleAIDimensions sets the requested embedding dimension (must match the vector column).
func WithGoogleAIDimensions(dim int) GoogleAIOption {
	return func(c *GoogleAIClient) {
		c.dimensions = dim
	}
}

// WithGoogleAIModel sets the embedding model name (e.g. gemini-embedding-001). Empty uses default.
func WithGoogleAIModel(model string) GoogleAIOption {
	return func(c *GoogleAIClient) {
		c.model = model
	}
}

// NewGoogleAIClient creates a Gemini embeddings client.
func NewGoogleAIClient(ctx context.Context, apiKey string, opts ...GoogleAIOption) (*GoogleAIClient, error) {
	genaiClient, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("googleai client: %w", err)
	}

	client := &GoogleAIClient{
		client:     genaiClient,
		model:      defaultGeminiModel,
		dimensions: DefaultDimension,
	}
	for _, opt := range opts {
		opt(client)
	}

	return client, nil
}

var _ Client = (*GoogleAIClient)(nil)

// CreateEmbedding returns the embedding vector for the given text using the configured model.
// The returned slice length equals the configured dimensions when OutputDimensionality is supported.
func (c *GoogleAIClient) CreateEmbedding(ctx context.Context, input string) ([]float32, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, ErrEmptyInput
	}

	if c.dimensions <= 0 || c.dimensions > math.MaxInt32 {
		return nil, ErrInvalidDims
	}

	model := c.model
	if model == "" {
		model = defaultGeminiModel
	}

	contents := []*genai.Content{genai.NewContentFromText(input, genai.RoleUser)}
	//nolint:gosec // G115: c.dimensions is bounded above by math.MaxInt32
	dimInt32 := int32(c.dimensions)

	resp, err := c.client.Models.EmbedContent(ctx, model, contents, &genai.EmbedContentConfig{
		OutputDimensionality: &dimInt32,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini embedding: %w", err)
	}

	if len(resp.Embeddings) == 0 {
		return nil, ErrNoEmbeddingInResponse
	}

	emb := resp.Embeddings[0].Values
	if len(emb) != c.dimensions {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrDimensionMismatch, len(emb), c.dimensions)
	}

	out := make([]float32, len(emb))
	copy(out, emb)

	return out, nil
}
