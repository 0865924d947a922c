// Command cyborgcared runs the embedding worker daemon: it consumes queued
// record-embedding jobs from River and keeps the encrypted vector store in
// sync with the clinical records table.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"

	"github.com/Chitralekhayaduvanshi/Cyborg-care/internal/app"
	"github.com/Chitralekhayaduvanshi/Cyborg-care/internal/service"
	"github.com/Chitralekhayaduvanshi/Cyborg-care/internal/workers"
)

const shutdownTimeout = 30 * time.Second

func main() {
	if err := run(); err != nil {
		slog.Error("daemon failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps, err := app.New(ctx)
	if err != nil {
		return err
	}

	riverClient, err := newRiverClient(deps)
	if err != nil {
		return err
	}

	if err := riverClient.Start(ctx); err != nil {
		return err
	}

	slog.Info("embedding worker started",
		"queue", service.EmbeddingsQueueName,
		"max_workers", deps.Config.EmbeddingMaxConcurrent,
		"model", deps.Generator.Model(),
	)

	<-ctx.Done()

	slog.Info("shutting down")

	stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := riverClient.Stop(stopCtx); err != nil {
		slog.Error("river stop failed", "error", err)
	}

	deps.Close(stopCtx)

	return nil
}

func newRiverClient(deps *app.Deps) (*river.Client[pgx.Tx], error) {
	registry := river.NewWorkers()

	worker := workers.NewRecordEmbeddingWorker(
		deps.Records,
		deps.NewIngestService(),
		deps.Generator,
		deps.Embeddings,
		deps.EmbeddingMetrics(),
	)
	river.AddWorker(registry, worker)

	return river.NewClient(riverpgxv5.New(deps.DB), &river.Config{
		Queues: map[string]river.QueueConfig{
			service.EmbeddingsQueueName: {MaxWorkers: deps.Config.EmbeddingMaxConcurrent},
		},
		Workers: registry,
	})
}
