// Package workers provides River job workers for the embedding pipeline.
package workers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/riverqueue/river"

	"github.com/Chitralekhayaduvanshi/Cyborg-care/internal/carerrors"
	"github.com/Chitralekhayaduvanshi/Cyborg-care/internal/embeddings"
	"github.com/Chitralekhayaduvanshi/Cyborg-care/internal/models"
	"github.com/Chitralekhayaduvanshi/Cyborg-care/internal/observability"
	"github.com/Chitralekhayaduvanshi/Cyborg-care/internal/service"
)

// recordLoader loads the originating clinical record.
type recordLoader interface {
	GetRecord(ctx context.Context, ownerID string, id uuid.UUID) (*models.ClinicalRecord, error)
}

// anonymizer produces the PHI-scrubbed form of a record.
type anonymizer interface {
	Anonymize(record *models.ClinicalRecord) (models.AnonymizedRecord, error)
}

// embeddingWriter replaces the stored embedding for a record.
type embeddingWriter interface {
	Store(ctx context.Context, ownerID string, vec models.EmbeddingVector) (models.StoredEmbedding, error)
	DeleteByRecordAndModel(ctx context.Context, ownerID string, recordID uuid.UUID, model string) error
}

// RecordEmbeddingWorker re-embeds one clinical record: load, anonymize,
// generate, replace the stored vector for the current model.
type RecordEmbeddingWorker struct {
	river.WorkerDefaults[service.RecordEmbeddingArgs]

	records    recordLoader
	anonymizer anonymizer
	generator  *embeddings.Generator
	writer     embeddingWriter
	metrics    observability.EmbeddingMetrics
}

// NewRecordEmbeddingWorker creates the worker. metrics may be nil when
// metrics are disabled.
func NewRecordEmbeddingWorker(
	records recordLoader,
	anon anonymizer,
	generator *embeddings.Generator,
	writer embeddingWriter,
	metrics observability.EmbeddingMetrics,
) *RecordEmbeddingWorker {
	return &RecordEmbeddingWorker{
		records:    records,
		anonymizer: anon,
		generator:  generator,
		writer:     writer,
		metrics:    metrics,
	}
}

const recordEmbeddingTimeout = 30 * time.Second

// Timeout limits how long a single embedding job can run.
func (w *RecordEmbeddingWorker) Timeout(*river.Job[service.RecordEmbeddingArgs]) time.Duration {
	return recordEmbeddingTimeout
}

// Work loads the record, anonymizes it, generates the embedding, and replaces
// the stored vector. A missing record is terminal; generation failures retry
// until the job's last attempt.
func (w *RecordEmbeddingWorker) Work(ctx context.Context, job *river.Job[service.RecordEmbeddingArgs]) error {
	args := job.Args
	start := time.Now()

	record, err := w.records.GetRecord(ctx, args.OwnerID, args.RecordID)
	if err != nil {
		slog.Error("embedding: get record failed",
			"record_id", args.RecordID,
			"error", err,
		)

		if errors.Is(err, carerrors.ErrNotFound) {
			w.recordOutcome(ctx, start, "failed_final", "get_record_failed")

			return nil // record is gone, retrying cannot help
		}

		w.recordOutcome(ctx, start, "retry", "get_record_failed")

		return fmt.Errorf("get record: %w", err)
	}

	anon, err := w.anonymizer.Anonymize(record)
	if err != nil {
		if errors.Is(err, service.ErrEmptyResource) {
			w.recordOutcome(ctx, start, "skipped", "")

			slog.Info("embedding: skipped (no extractable content)", "record_id", args.RecordID)

			return nil
		}

		w.recordOutcome(ctx, start, "failed_final", "anonymize_failed")

		slog.Error("embedding: anonymize failed", "record_id", args.RecordID, "error", err)

		return nil // deterministic failure, retrying cannot help
	}

	vec, err := w.generator.Generate(ctx, record.ID, anon.RedactedText, anon.Facts)
	if err != nil {
		isLastAttempt := job.Attempt >= job.MaxAttempts

		if isLastAttempt {
			w.recordOutcome(ctx, start, "failed_final", "generate_failed")

			slog.Error("embedding: generate failed (final attempt)",
				"record_id", args.RecordID,
				"error", err,
			)

			return nil
		}

		w.recordOutcome(ctx, start, "retry", "generate_failed")

		return fmt.Errorf("generate embedding: %w", err)
	}

	if err := w.writer.DeleteByRecordAndModel(ctx, args.OwnerID, args.RecordID, w.generator.Model()); err != nil {
		w.recordOutcome(ctx, start, "retry", "store_failed")

		return fmt.Errorf("delete previous embedding: %w", err)
	}

	if _, err := w.writer.Store(ctx, args.OwnerID, vec); err != nil {
		w.recordOutcome(ctx, start, "retry", "store_failed")

		slog.Error("embedding: store failed", "record_id", args.RecordID, "error", err)

		return fmt.Errorf("store embedding: %w", err)
	}

	slog.Info("embedding: stored", "record_id", args.RecordID, "model", w.generator.Model())

	w.recordOutcome(ctx, start, "success", "")

	return nil
}

func (w *RecordEmbeddingWorker) recordOutcome(ctx context.Context, start time.Time, status, workerError string) {
	if w.metrics == nil {
		return
	}

	if workerError != "" {
		w.metrics.RecordWorkerError(ctx, workerError)
	}

	w.metrics.RecordEmbeddingOutcome(ctx, status)
	w.metrics.RecordEmbeddingDuration(ctx, time.Since(start), status)
}
