// Command backfill enqueues an embedding job for every clinical record that
// has no stored embedding for the configured model. The cyborgcared daemon
// works the jobs; this command only inserts them.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"

	"github.com/Chitralekhayaduvanshi/Cyborg-care/internal/app"
	"github.com/Chitralekhayaduvanshi/Cyborg-care/internal/service"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "backfill: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	deps, err := app.New(ctx)
	if err != nil {
		return err
	}

	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		deps.Close(closeCtx)
	}()

	// Insert-only client: no queues, no workers.
	riverClient, err := river.NewClient(riverpgxv5.New(deps.DB), &river.Config{})
	if err != nil {
		return fmt.Errorf("river client: %w", err)
	}

	model := deps.Generator.Model()

	candidates, err := deps.Embeddings.ListBackfillCandidates(ctx, model)
	if err != nil {
		return err
	}

	if len(candidates) == 0 {
		slog.Info("backfill: nothing to do", "model", model)

		return nil
	}

	provider := service.NewEmbeddingProvider(
		riverClient,
		service.EmbeddingsQueueName,
		deps.Config.EmbeddingMaxAttempts,
		deps.EmbeddingMetrics(),
	)

	byOwner := make(map[string][]uuid.UUID)
	for _, candidate := range candidates {
		byOwner[candidate.OwnerID] = append(byOwner[candidate.OwnerID], candidate.RecordID)
	}

	enqueued := 0
	for ownerID, recordIDs := range byOwner {
		enqueued += provider.EnqueueMany(ctx, ownerID, recordIDs)
	}

	slog.Info("backfill: done",
		"model", model,
		"candidates", len(candidates),
		"enqueued", enqueued,
	)

	if enqueued < len(candidates) {
		return fmt.Errorf("enqueued %d of %d candidates", enqueued, len(candidates))
	}

	return nil
}
