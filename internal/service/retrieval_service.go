package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Chitralekhayaduvanshi/Cyborg-care/internal/audit"
	"github.com/Chitralekhayaduvanshi/Cyborg-care/internal/carerrors"
	"github.com/Chitralekhayaduvanshi/Cyborg-care/internal/clinical"
	"github.com/Chitralekhayaduvanshi/Cyborg-care/internal/datatypes"
	"github.com/Chitralekhayaduvanshi/Cyborg-care/internal/embeddings"
	"github.com/Chitralekhayaduvanshi/Cyborg-care/internal/generation"
	"github.com/Chitralekhayaduvanshi/Cyborg-care/internal/models"
	"github.com/Chitralekhayaduvanshi/Cyborg-care/internal/observability"
	"github.com/Chitralekhayaduvanshi/Cyborg-care/internal/phi"
	"github.com/Chitralekhayaduvanshi/Cyborg-care/internal/store"
	"github.com/Chitralekhayaduvanshi/Cyborg-care/pkg/cache"
)

const queryEmbeddingCacheName = "query_embedding"

// Sentinel errors for queries (the only errors Query returns; everything
// downstream degrades to a fallback response instead).
var (
	ErrEmptyQuery = errors.New("query is required and must be non-empty")
)

// errEmptyCompletion marks a generation call that returned no text.
var errEmptyCompletion = errors.New("empty completion")

// Pipeline stages, in order. Failed responses carry "failed:<stage>".
const (
	StageReceived         = "received"
	StagePHIChecked       = "phi_checked"
	StageEmbedded         = "embedded"
	StageSearched         = "searched"
	StageContextAssembled = "context_assembled"
	StageGenerated        = "generated"
	StageValidated        = "validated"
	StageDone             = "done"
)

// Disclaimer attached to every response.
const ResponseDisclaimer = "This information is drawn from stored clinical records and is not medical advice. " +
	"Consult a qualified clinician before acting on it."

// fallbackText is returned when the pipeline cannot produce validated
// generated content.
const fallbackText = "I could not generate a reliable answer from the available clinical records. " +
	"Please refine the question or consult the source records directly."

// noMatchText is returned when no stored record scores above the threshold.
const noMatchText = "No stored clinical records matched the question closely enough to answer it."

// systemPromptTemplate constrains generation to the supplied context. The
// %s slot receives the assembled context block.
const systemPromptTemplate = `You are a clinical information assistant. Answer strictly from the context below.
Rules:
- Use only the provided context; say so when it does not contain the answer.
- Never invent patient identifiers, dates of birth, or contact details.
- Preserve masked tokens (e.g. [SSN_MASKED]) exactly; never guess their values.
- End with a reminder that this is not medical advice.

Context:
%s`

const (
	generationTemperature = 0.2
	generationMaxTokens   = 1024
	lowConfidenceFloor    = 0.4
)

// RetrievalService runs the query pipeline: PHI check, query embedding,
// owner-scoped similarity search, context assembly, generation, validation.
// A well-formed query always yields a response; downstream failures produce
// a fallback with confidence 0, never an error.
type RetrievalService struct {
	detector        *phi.Detector
	embeddingClient embeddings.Client
	dimensions      int
	embeddingStore  store.EmbeddingStore
	recordStore     store.RecordStore
	generation      generation.Client
	generationModel string

	topK         int
	minThreshold float64

	queryCache *cache.LoaderCache[string, []float32]

	auditSink    audit.Sink
	metrics      observability.PipelineMetrics
	cacheMetrics observability.CacheMetrics
	logger       *slog.Logger
}

// RetrievalServiceParams configures RetrievalService. QueryCache, Metrics,
// and CacheMetrics may be nil (no caching / metrics disabled); AuditSink and
// Logger may be nil.
type RetrievalServiceParams struct {
	Detector        *phi.Detector
	EmbeddingClient embeddings.Client
	Dimensions      int
	EmbeddingStore  store.EmbeddingStore
	RecordStore     store.RecordStore
	Generation      generation.Client
	TopK            int
	MinThreshold    float64
	QueryCache      *cache.LoaderCache[string, []float32]
	AuditSink       audit.Sink
	Metrics         observability.PipelineMetrics
	CacheMetrics    observability.CacheMetrics
	Logger          *slog.Logger
}

// NewRetrievalService creates a RetrievalService.
func NewRetrievalService(p RetrievalServiceParams) *RetrievalService {
	logger := p.Logger
	if logger == nil {
		logger = slog.Default()
	}

	auditSink := p.AuditSink
	if auditSink == nil {
		auditSink = audit.NewSlogSink(logger)
	}

	return &RetrievalService{
		detector:        p.Detector,
		embeddingClient: p.EmbeddingClient,
		dimensions:      p.Dimensions,
		embeddingStore:  p.EmbeddingStore,
		recordStore:     p.RecordStore,
		generation:      p.Generation,
		topK:            p.TopK,
		minThreshold:    p.MinThreshold,
		queryCache:      p.QueryCache,
		auditSink:       auditSink,
		metrics:         p.Metrics,
		cacheMetrics:    p.CacheMetrics,
		logger:          logger,
	}
}

// Query answers a clinical question from the owner's stored records. The only
// error returns are input rejections (empty owner or query); every pipeline
// failure past that point degrades to a fallback response with confidence 0
// and an explanatory disclaimer.
func (s *RetrievalService) Query(ctx context.Context, ownerID, query string) (models.ClinicalResponse, error) {
	start := time.Now()

	if ownerID == "" {
		return models.ClinicalResponse{}, ErrMissingOwnerID
	}

	query = strings.TrimSpace(query)
	if query == "" {
		return models.ClinicalResponse{}, ErrEmptyQuery
	}

	// PHI in a query is advisory, not blocking: redact, audit kind counts,
	// continue with the redacted form.
	redactedQuery, matches := s.detector.Redact(query)
	if len(matches) > 0 {
		s.auditSink.Record(ctx, audit.NewEvent(
			datatypes.QueryPHIDetected, ownerID, "query", audit.StatusOK,
			map[string]any{"phi_counts": phi.CountByKind(matches)}))

		s.logger.Warn("query: PHI redacted from query",
			"kinds", phi.RedactedKinds(matches),
		)
	}

	vector, err := s.queryEmbedding(ctx, redactedQuery)
	if err != nil {
		s.logger.Error("query: embedding failed", "error", err)

		return s.finishFallback(ctx, start, ownerID, redactedQuery, StageEmbedded, "fallback"), nil
	}

	if s.dimensions > 0 && len(vector) != s.dimensions {
		s.logger.Error("query: embedding dimensionality mismatch",
			"error", carerrors.NewDimensionMismatchError(len(vector), s.dimensions))

		return s.finishFallback(ctx, start, ownerID, redactedQuery, StageEmbedded, "fallback"), nil
	}

	hits, err := s.embeddingStore.SearchByOwner(ctx, ownerID, vector, s.topK, s.minThreshold)
	if err != nil {
		s.logger.Error("query: search failed", "error", err)

		return s.finishFallback(ctx, start, ownerID, redactedQuery, StageSearched, "fallback"), nil
	}

	retrievalCtx := s.assembleContext(ctx, ownerID, redactedQuery, hits)

	if len(retrievalCtx.Entries) == 0 {
		resp := models.ClinicalResponse{
			GeneratedText: noMatchText,
			Context:       retrievalCtx,
			Confidence:    0,
			Disclaimer:    ResponseDisclaimer,
			GeneratedAt:   time.Now().UTC(),
			Stage:         StageDone,
		}

		s.finish(ctx, start, ownerID, redactedQuery, "no_match", resp)

		return resp, nil
	}

	generated, err := s.generate(ctx, redactedQuery, retrievalCtx)
	if err != nil {
		reason := "client_error"
		if errors.Is(err, errEmptyCompletion) {
			reason = "empty_completion"
		}

		s.recordGenerationFailure(ctx, ownerID, reason, err)

		resp := s.fallbackResponse(retrievalCtx, StageGenerated)
		s.finish(ctx, start, ownerID, redactedQuery, "fallback", resp)

		return resp, nil
	}

	resp := s.validate(ctx, ownerID, generated, retrievalCtx)

	s.finish(ctx, start, ownerID, redactedQuery, "answered", resp)

	return resp, nil
}

// queryEmbedding returns the embedding for the redacted query, via the
// loader cache when caching is enabled. Concurrent misses for the same query
// coalesce into one provider call.
func (s *RetrievalService) queryEmbedding(ctx context.Context, query string) ([]float32, error) {
	load := func(ctx context.Context, q string) ([]float32, error) {
		vec, err := s.embeddingClient.CreateEmbedding(ctx, q)
		if err != nil {
			return nil, fmt.Errorf("create embedding: %w", err)
		}

		return vec, nil
	}

	if s.queryCache == nil {
		return load(ctx, query)
	}

	vec, hit, err := s.queryCache.GetWithStats(ctx, query, load)
	if err != nil {
		return nil, err
	}

	if s.cacheMetrics != nil {
		if hit {
			s.cacheMetrics.RecordHit(ctx, queryEmbeddingCacheName)
		} else {
			s.cacheMetrics.RecordMiss(ctx, queryEmbeddingCacheName)
		}
	}

	return vec, nil
}

// assembleContext joins search hits with their originating records. A hit
// whose record is missing is skipped, not fatal. Entry content is
// re-extracted and redacted so raw source text never crosses into a prompt.
func (s *RetrievalService) assembleContext(
	ctx context.Context, ownerID, query string, hits []models.ScoredEmbedding,
) models.RetrievalContext {
	out := models.RetrievalContext{Query: query}

	for _, hit := range hits {
		record, err := s.recordStore.GetRecord(ctx, ownerID, hit.RecordID)
		if err != nil {
			if errors.Is(err, carerrors.ErrNotFound) {
				s.logger.Warn("query: hit without originating record, skipped",
					"record_id", hit.RecordID,
				)
			} else {
				s.logger.Error("query: get record failed, hit skipped",
					"record_id", hit.RecordID,
					"error", err,
				)
			}

			continue
		}

		content, _ := s.detector.Redact(clinical.ExtractText(record))

		out.Entries = append(out.Entries, models.ContextEntry{
			SourceID:        record.ID,
			Score:           hit.Score,
			ClinicalContext: hit.ClinicalContext,
			Content:         content,
		})
	}

	return out
}

func (s *RetrievalService) generate(
	ctx context.Context, query string, retrievalCtx models.RetrievalContext,
) (string, error) {
	var b strings.Builder

	for i, entry := range retrievalCtx.Entries {
		fmt.Fprintf(&b, "[%d] (%s, similarity %.2f) %s\n", i+1, entry.ClinicalContext, entry.Score, entry.Content)
	}

	text, err := s.generation.Generate(ctx, generation.Request{
		SystemPrompt: fmt.Sprintf(systemPromptTemplate, b.String()),
		UserPrompt:   query,
		Temperature:  generationTemperature,
		MaxTokens:    generationMaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("generate response: %w", err)
	}

	if strings.TrimSpace(text) == "" {
		return "", errEmptyCompletion
	}

	return text, nil
}

// validate applies the response checks: PHI re-scan (failure replaces the
// generated text with the fallback), confidence floor, disclaimer cue.
// Warnings are attached; delivery is never blocked.
func (s *RetrievalService) validate(
	ctx context.Context, ownerID, generated string, retrievalCtx models.RetrievalContext,
) models.ClinicalResponse {
	resp := models.ClinicalResponse{
		GeneratedText: generated,
		Context:       retrievalCtx,
		Confidence:    Confidence(retrievalCtx),
		Disclaimer:    ResponseDisclaimer,
		GeneratedAt:   time.Now().UTC(),
		Stage:         StageDone,
	}

	if s.detector.ContainsPHI(generated) {
		s.recordGenerationFailure(ctx, ownerID, "phi_in_output", nil)

		resp.GeneratedText = fallbackText
		resp.Warnings = append(resp.Warnings,
			"generated text matched a protected-information pattern and was replaced")
	}

	if resp.Confidence < lowConfidenceFloor {
		resp.Warnings = append(resp.Warnings, "low confidence: retrieved context similarity is weak")
	}

	if !strings.Contains(strings.ToLower(resp.GeneratedText), "medical advice") {
		resp.Warnings = append(resp.Warnings, "generated text is missing the advice disclaimer cue")
	}

	return resp
}

// Confidence is the mean of context similarity scores clamped to [0,1];
// 0 when the context is empty.
func Confidence(retrievalCtx models.RetrievalContext) float64 {
	if len(retrievalCtx.Entries) == 0 {
		return 0
	}

	var sum float64
	for _, entry := range retrievalCtx.Entries {
		sum += entry.Score
	}

	mean := sum / float64(len(retrievalCtx.Entries))

	switch {
	case mean < 0:
		return 0
	case mean > 1:
		return 1
	default:
		return mean
	}
}

func (s *RetrievalService) fallbackResponse(retrievalCtx models.RetrievalContext, failedStage string) models.ClinicalResponse {
	return models.ClinicalResponse{
		GeneratedText: fallbackText,
		Context:       retrievalCtx,
		Confidence:    0,
		Disclaimer:    ResponseDisclaimer,
		GeneratedAt:   time.Now().UTC(),
		Stage:         "failed:" + failedStage,
	}
}

func (s *RetrievalService) finishFallback(
	ctx context.Context, start time.Time, ownerID, query, failedStage, status string,
) models.ClinicalResponse {
	resp := s.fallbackResponse(models.RetrievalContext{Query: query}, failedStage)
	s.finish(ctx, start, ownerID, query, status, resp)

	return resp
}

func (s *RetrievalService) finish(
	ctx context.Context, start time.Time, ownerID, query, status string, resp models.ClinicalResponse,
) {
	s.auditSink.Record(ctx, audit.NewEvent(
		datatypes.QueryProcessed, ownerID, "query", audit.StatusOK,
		map[string]any{
			"status":     status,
			"stage":      resp.Stage,
			"hits":       len(resp.Context.Entries),
			"confidence": resp.Confidence,
		}))

	if s.metrics != nil {
		s.metrics.RecordQuery(ctx, status)
		s.metrics.RecordQueryDuration(ctx, time.Since(start), status)
	}

	s.logger.Info("query: finished",
		"status", status,
		"stage", resp.Stage,
		"hits", len(resp.Context.Entries),
		"confidence", resp.Confidence,
		"duration_ms", time.Since(start).Milliseconds(),
	)
}

func (s *RetrievalService) recordGenerationFailure(ctx context.Context, ownerID, reason string, err error) {
	if s.metrics != nil {
		s.metrics.RecordGenerationFailure(ctx, reason)
	}

	detail := map[string]any{"reason": reason}

	s.auditSink.Record(ctx, audit.NewEvent(
		datatypes.GenerationFailed, ownerID, "query", audit.StatusFailed, detail))

	if err != nil {
		s.logger.Error("query: generation failed", "reason", reason, "error", err)
	} else {
		s.logger.Warn("query: generated text rejected", "reason", reason)
	}
}
