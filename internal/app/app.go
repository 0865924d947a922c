// Package app wires configuration into the shared pipeline dependencies the
// cmds build on: database pool, cipher, embedding client, repositories,
// metrics, audit sink.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	pgxvec "github.com/pgvector/pgvector-go/pgx"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/Chitralekhayaduvanshi/Cyborg-care/internal/audit"
	"github.com/Chitralekhayaduvanshi/Cyborg-care/internal/config"
	"github.com/Chitralekhayaduvanshi/Cyborg-care/internal/embeddings"
	"github.com/Chitralekhayaduvanshi/Cyborg-care/internal/generation"
	"github.com/Chitralekhayaduvanshi/Cyborg-care/internal/observability"
	"github.com/Chitralekhayaduvanshi/Cyborg-care/internal/phi"
	"github.com/Chitralekhayaduvanshi/Cyborg-care/internal/repository"
	"github.com/Chitralekhayaduvanshi/Cyborg-care/internal/service"
	"github.com/Chitralekhayaduvanshi/Cyborg-care/internal/vaultcipher"
	"github.com/Chitralekhayaduvanshi/Cyborg-care/pkg/database"
)

// meterScope names the instrumentation scope for pipeline metrics.
const meterScope = "github.com/Chitralekhayaduvanshi/Cyborg-care/internal/observability"

// Deps holds the shared wiring built from config. Metrics is nil when
// metrics are disabled.
type Deps struct {
	Config   *config.Config
	DB       *pgxpool.Pool
	Cipher   *vaultcipher.Cipher
	Detector *phi.Detector

	EmbeddingClient embeddings.Client
	Generator       *embeddings.Generator

	Embeddings *repository.StoredEmbeddingsRepository
	Records    *repository.ClinicalRecordsRepository
	Audit      audit.Sink

	Metrics        *observability.Metrics
	meterProvider  *sdkmetric.MeterProvider
	tracerProvider *sdktrace.TracerProvider
}

// New builds the shared dependencies: loads config, configures logging,
// connects the pool (with pgvector type registration), and constructs the
// cipher, embedding client, repositories, and providers.
func New(ctx context.Context) (*Deps, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	observability.SetupLogging(cfg.LogLevel)

	tracerProvider, err := observability.NewTracerProvider(cfg)
	if err != nil {
		return nil, fmt.Errorf("tracer provider: %w", err)
	}

	meterProvider, err := observability.NewMeterProvider(cfg)
	if err != nil {
		return nil, fmt.Errorf("meter provider: %w", err)
	}

	var metrics *observability.Metrics

	if meterProvider != nil {
		metrics, err = observability.NewMetrics(meterProvider.Meter(meterScope))
		if err != nil {
			return nil, fmt.Errorf("metrics: %w", err)
		}
	}

	db, err := database.NewPostgresPool(ctx, cfg.DatabaseURL, database.WithAfterConnect(pgxvec.RegisterTypes))
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	cipher, err := vaultcipher.NewFromHex(cfg.VectorEncryptionKey)
	if err != nil {
		db.Close()

		return nil, fmt.Errorf("vector cipher: %w", err)
	}

	client, err := newEmbeddingClient(ctx, cfg)
	if err != nil {
		db.Close()

		return nil, err
	}

	deps := &Deps{
		Config:          cfg,
		DB:              db,
		Cipher:          cipher,
		Detector:        phi.NewDetector(),
		EmbeddingClient: client,
		Generator:       embeddings.NewGenerator(client, cfg.EmbeddingModel, cfg.EmbeddingDimensions),
		Embeddings:      repository.NewStoredEmbeddingsRepository(db, cipher),
		Records:         repository.NewClinicalRecordsRepository(db),
		Audit:           audit.NewPostgresSink(db, nil),
		Metrics:         metrics,
		meterProvider:   meterProvider,
		tracerProvider:  tracerProvider,
	}

	return deps, nil
}

// Close releases the pool and flushes the telemetry providers.
func (d *Deps) Close(ctx context.Context) {
	if err := observability.ShutdownMeterProvider(ctx, d.meterProvider); err != nil {
		slog.Error("meter provider shutdown failed", "error", err)
	}

	if err := observability.ShutdownTracerProvider(ctx, d.tracerProvider); err != nil {
		slog.Error("tracer provider shutdown failed", "error", err)
	}

	d.DB.Close()
}

// PipelineMetrics returns the pipeline collector or nil when disabled.
func (d *Deps) PipelineMetrics() observability.PipelineMetrics {
	if d.Metrics == nil {
		return nil
	}

	return d.Metrics.Pipeline
}

// EmbeddingMetrics returns the embedding collector or nil when disabled.
func (d *Deps) EmbeddingMetrics() observability.EmbeddingMetrics {
	if d.Metrics == nil {
		return nil
	}

	return d.Metrics.Embeddings
}

// CacheMetrics returns the cache collector or nil when disabled.
func (d *Deps) CacheMetrics() observability.CacheMetrics {
	if d.Metrics == nil {
		return nil
	}

	return d.Metrics.Cache
}

// NewIngestService builds the ingest service on the shared wiring.
func (d *Deps) NewIngestService() *service.IngestService {
	return service.NewIngestService(service.IngestServiceParams{
		Detector:   d.Detector,
		Records:    d.Records,
		Embeddings: d.Embeddings,
		Generator:  d.Generator,
		AuditSink:  d.Audit,
		Metrics:    d.PipelineMetrics(),
	})
}

// NewGenerationClient builds the chat client for response generation.
func (d *Deps) NewGenerationClient() (generation.Client, error) {
	if d.Config.OpenAIAPIKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is required for response generation")
	}

	return generation.NewOpenAIClient(d.Config.OpenAIAPIKey, generation.WithModel(d.Config.GenerationModel)), nil
}

// newEmbeddingClient builds the configured provider client, wrapped with the
// token-bucket rate limiter.
func newEmbeddingClient(ctx context.Context, cfg *config.Config) (embeddings.Client, error) {
	var (
		client embeddings.Client
		err    error
	)

	switch cfg.EmbeddingProvider {
	case config.EmbeddingProviderOpenAI:
		if cfg.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY is required when EMBEDDING_PROVIDER=openai")
		}

		client = embeddings.NewOpenAIClient(cfg.OpenAIAPIKey,
			embeddings.WithOpenAIDimensions(cfg.EmbeddingDimensions))
	case config.EmbeddingProviderGoogleAI:
		if cfg.GoogleAIAPIKey == "" {
			return nil, fmt.Errorf("GOOGLE_AI_API_KEY is required when EMBEDDING_PROVIDER=googleai")
		}

		client, err = embeddings.NewGoogleAIClient(ctx, cfg.GoogleAIAPIKey,
			embeddings.WithGoogleAIModel(cfg.EmbeddingModel),
			embeddings.WithGoogleAIDimensions(cfg.EmbeddingDimensions))
		if err != nil {
			return nil, fmt.Errorf("googleai embedding client: %w", err)
		}
	case config.EmbeddingProviderMock:
		client = embeddings.NewMockClientWithDimensions(cfg.EmbeddingDimensions)
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", cfg.EmbeddingProvider)
	}

	return embeddings.NewRateLimitedClient(client, cfg.EmbeddingRateLimit, cfg.EmbeddingRateBurst), nil
}
