package observability

import (
	"fmt"

	"go.opentelemetry.io/otel/metric"
)

// Metrics holds all pipeline metric collectors. When metrics are disabled,
// all fields are nil. Components that accept an interface (PipelineMetrics,
// EmbeddingMetrics, CacheMetrics) receive the corresponding field; they
// already handle nil.
type Metrics struct {
	Pipeline   PipelineMetrics
	Embeddings EmbeddingMetrics
	Cache      CacheMetrics
}

// NewMetrics creates all metric collectors from the given meter.
// Returns (nil, nil) when meter is nil (metrics disabled).
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	if meter == nil {
		//nolint:nilnil // intentional: callers use "if metrics != nil" when metrics disabled
		return nil, nil
	}

	pipeline, err := NewPipelineMetrics(meter)
	if err != nil {
		return nil, fmt.Errorf("pipeline metrics: %w", err)
	}

	embeddings, err := NewEmbeddingMetrics(meter)
	if err != nil {
		return nil, fmt.Errorf("embedding metrics: %w", err)
	}

	cache, err := NewCacheMetrics(meter)
	if err != nil {
		return nil, fmt.Errorf("cache metrics: %w", err)
	}

	return &Metrics{Pipeline: pipeline, Embeddings: embeddings, Cache: cache}, nil
}
