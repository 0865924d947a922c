package embeddings

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"
)

// RateLimitedClient wraps a Client with a token-bucket limiter so bursts of
// batch ingestion cannot exhaust the provider's request quota. Wait respects
// the caller's context, so a request-scoped timeout aborts the wait rather
// than queueing indefinitely.
type RateLimitedClient struct {
	inner   Client
	limiter *rate.Limiter
}

// NewRateLimitedClient wraps inner with the given requests-per-second limit
// and burst size.
func NewRateLimitedClient(inner Client, rps float64, burst int) *RateLimitedClient {
	return &RateLimitedClient{
		inner:   inner,
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
	}
}

var _ Client = (*RateLimitedClient)(nil)

// CreateEmbedding waits for limiter admission, then delegates to the inner client.
func (c *RateLimitedClient) CreateEmbedding(ctx context.Context, input string) ([]float32, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("embedding rate limit: %w", err)
	}

	return c.inner.CreateEmbedding(ctx, input)
}
