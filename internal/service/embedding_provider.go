package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/riverqueue/river"

	"github.com/Chitralekhayaduvanshi/Cyborg-care/internal/observability"
)

// EmbeddingProvider enqueues one River job per clinical record that needs an
// embedding (ingest-time async path and backfill). Uniqueness is ByArgs so
// repeated enqueues for the same record within the window collapse into one
// job.
type EmbeddingProvider struct {
	inserter    RecordEmbeddingInserter
	queueName   string
	maxAttempts int
	metrics     observability.EmbeddingMetrics
}

// NewEmbeddingProvider creates a provider that enqueues record_embedding jobs.
// metrics may be nil when metrics are disabled.
func NewEmbeddingProvider(
	inserter RecordEmbeddingInserter,
	queueName string,
	maxAttempts int,
	metrics observability.EmbeddingMetrics,
) *EmbeddingProvider {
	return &EmbeddingProvider{
		inserter:    inserter,
		queueName:   queueName,
		maxAttempts: maxAttempts,
		metrics:     metrics,
	}
}

// Enqueue inserts an embedding job for the given record.
func (p *EmbeddingProvider) Enqueue(ctx context.Context, ownerID string, recordID uuid.UUID) error {
	opts := &river.InsertOpts{
		Queue:       p.queueName,
		MaxAttempts: p.maxAttempts,
		UniqueOpts:  river.UniqueOpts{ByArgs: true, ByPeriod: uniqueByPeriodEmbedding},
	}

	_, err := p.inserter.Insert(ctx, RecordEmbeddingArgs{OwnerID: ownerID, RecordID: recordID}, opts)
	if err != nil {
		if p.metrics != nil {
			p.metrics.RecordProviderError(ctx, "enqueue_failed")
		}

		slog.Error("embedding: enqueue failed",
			"record_id", recordID,
			"error", err,
		)

		return fmt.Errorf("insert embedding job: %w", err)
	}

	slog.Info("embedding: job enqueued", "record_id", recordID)

	if p.metrics != nil {
		p.metrics.RecordJobsEnqueued(ctx, 1)
	}

	return nil
}

// EnqueueMany inserts embedding jobs for the given records, continuing past
// per-record failures. Returns the number enqueued.
func (p *EmbeddingProvider) EnqueueMany(ctx context.Context, ownerID string, recordIDs []uuid.UUID) int {
	enqueued := 0

	for _, id := range recordIDs {
		if err := p.Enqueue(ctx, ownerID, id); err != nil {
			continue
		}

		enqueued++
	}

	return enqueued
}
