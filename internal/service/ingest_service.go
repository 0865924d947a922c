// Package service holds the pipeline orchestration: batch ingestion, the
// retrieval/response flow, and the async embedding enqueue provider.
package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Chitralekhayaduvanshi/Cyborg-care/internal/audit"
	"github.com/Chitralekhayaduvanshi/Cyborg-care/internal/carerrors"
	"github.com/Chitralekhayaduvanshi/Cyborg-care/internal/clinical"
	"github.com/Chitralekhayaduvanshi/Cyborg-care/internal/datatypes"
	"github.com/Chitralekhayaduvanshi/Cyborg-care/internal/embeddings"
	"github.com/Chitralekhayaduvanshi/Cyborg-care/internal/models"
	"github.com/Chitralekhayaduvanshi/Cyborg-care/internal/observability"
	"github.com/Chitralekhayaduvanshi/Cyborg-care/internal/phi"
	"github.com/Chitralekhayaduvanshi/Cyborg-care/internal/store"
)

// Sentinel errors for ingestion (callers map these to input rejection).
var (
	ErrMissingOwnerID = errors.New("owner_id is required")
	ErrEmptyResource  = errors.New("resource has no extractable content")
)

// IngestResult is the outcome of one successfully ingested record.
type IngestResult struct {
	Record     *models.ClinicalRecord
	Anonymized models.AnonymizedRecord
	Stored     models.StoredEmbedding
}

// BatchItemError pairs a failed batch item's position with its error.
type BatchItemError struct {
	Index int
	Err   error
}

// BatchResult collects per-item outcomes of a batch ingestion. A failed item
// never aborts the batch; callers inspect Errors for partial failure.
type BatchResult struct {
	Results []IngestResult
	Errors  []BatchItemError
}

// IngestService anonymizes, persists, embeds, and stores clinical records.
// Extracted text always passes through the PHI detector before it reaches the
// embedding client; a record whose redacted text still matches a detector
// rule is rejected rather than embedded.
type IngestService struct {
	detector   *phi.Detector
	records    store.RecordStore
	embeddings store.EmbeddingStore
	generator  *embeddings.Generator
	auditSink  audit.Sink
	metrics    observability.PipelineMetrics
	logger     *slog.Logger
}

// IngestServiceParams configures IngestService. Metrics may be nil (disabled);
// AuditSink and Logger may be nil (slog sink / default logger).
type IngestServiceParams struct {
	Detector   *phi.Detector
	Records    store.RecordStore
	Embeddings store.EmbeddingStore
	Generator  *embeddings.Generator
	AuditSink  audit.Sink
	Metrics    observability.PipelineMetrics
	Logger     *slog.Logger
}

// NewIngestService creates an IngestService.
func NewIngestService(p IngestServiceParams) *IngestService {
	logger := p.Logger
	if logger == nil {
		logger = slog.Default()
	}

	auditSink := p.AuditSink
	if auditSink == nil {
		auditSink = audit.NewSlogSink(logger)
	}

	return &IngestService{
		detector:   p.Detector,
		records:    p.Records,
		embeddings: p.Embeddings,
		generator:  p.Generator,
		auditSink:  auditSink,
		metrics:    p.Metrics,
		logger:     logger,
	}
}

// Anonymize extracts text and facts from the record and redacts both. The
// returned record carries only mask tokens, PHI kind names, and a content
// fingerprint; no matched value survives.
func (s *IngestService) Anonymize(record *models.ClinicalRecord) (models.AnonymizedRecord, error) {
	anon, _, err := s.anonymize(record)

	return anon, err
}

func (s *IngestService) anonymize(record *models.ClinicalRecord) (models.AnonymizedRecord, map[string]int, error) {
	text := clinical.ExtractText(record)
	if strings.TrimSpace(text) == "" {
		return models.AnonymizedRecord{}, nil, ErrEmptyResource
	}

	redacted, matches := s.detector.Redact(text)

	// Mask tokens are outside every rule's alphabet, so a residual match
	// means a rule regression, not expected input. Refuse to let the text
	// continue.
	if s.detector.ContainsPHI(redacted) {
		return models.AnonymizedRecord{}, nil, carerrors.NewValidationError(
			"source_text", "redacted text still matches a detection rule")
	}

	facts := clinical.ExtractFacts(record)
	facts = s.redactFacts(facts)

	hash := sha256.Sum256([]byte(text))

	anon := models.AnonymizedRecord{
		SourceID:      record.ID,
		RedactedText:  redacted,
		Facts:         facts,
		ContentHash:   hex.EncodeToString(hash[:]),
		PHIDetected:   len(matches) > 0,
		RedactedKinds: phi.RedactedKinds(matches),
	}

	return anon, phi.CountByKind(matches), nil
}

// IngestRecord anonymizes, persists, embeds, and stores one record. The
// stored embedding is derived from the redacted text only.
func (s *IngestService) IngestRecord(ctx context.Context, record *models.ClinicalRecord) (IngestResult, error) {
	if record == nil || record.OwnerID == "" {
		s.recordIngestFailure(ctx, "validation_failed")

		return IngestResult{}, ErrMissingOwnerID
	}

	if record.ID == uuid.Nil {
		record.ID = uuid.Must(uuid.NewV7())
	}

	if record.CollectedAt.IsZero() {
		record.CollectedAt = time.Now().UTC()
	}

	anon, phiCounts, err := s.anonymize(record)
	if err != nil {
		s.recordIngestFailure(ctx, "validation_failed")

		return IngestResult{}, fmt.Errorf("anonymize record: %w", err)
	}

	if s.metrics != nil {
		for kind, count := range phiCounts {
			s.metrics.RecordPHIDetections(ctx, kind, int64(count))
		}
	}

	if err := s.records.SaveRecord(ctx, record); err != nil {
		s.recordIngestFailure(ctx, "store_failed")

		return IngestResult{}, fmt.Errorf("save record: %w", err)
	}

	vec, err := s.generator.Generate(ctx, record.ID, anon.RedactedText, anon.Facts)
	if err != nil {
		s.recordIngestFailure(ctx, "embedding_failed")

		return IngestResult{}, fmt.Errorf("generate embedding: %w", err)
	}

	stored, err := s.embeddings.Store(ctx, record.OwnerID, vec)
	if err != nil {
		s.recordIngestFailure(ctx, "store_failed")

		return IngestResult{}, fmt.Errorf("store embedding: %w", err)
	}

	s.auditIngested(ctx, record, anon)

	if s.metrics != nil {
		s.metrics.RecordIngested(ctx, string(record.ResourceType))
	}

	s.logger.Info("ingest: record stored",
		"record_id", record.ID,
		"resource_type", record.ResourceType,
		"phi_detected", anon.PHIDetected,
	)

	return IngestResult{Record: record, Anonymized: anon, Stored: stored}, nil
}

// IngestBatch ingests each record independently, collecting per-item errors.
// Item order is preserved in Results and error indices refer to the input
// slice.
func (s *IngestService) IngestBatch(ctx context.Context, records []*models.ClinicalRecord) BatchResult {
	var out BatchResult

	for i, record := range records {
		result, err := s.IngestRecord(ctx, record)
		if err != nil {
			out.Errors = append(out.Errors, BatchItemError{Index: i, Err: err})

			s.logger.Warn("ingest: batch item failed", "index", i, "error", err)

			continue
		}

		out.Results = append(out.Results, result)
	}

	return out
}

// redactFacts runs every fact string through the detector. Structured fields
// can carry the same identifiers free text does.
func (s *IngestService) redactFacts(facts models.ExtractedFacts) models.ExtractedFacts {
	redactList := func(items []string) []string {
		for i, item := range items {
			items[i], _ = s.detector.Redact(item)
		}

		return items
	}

	facts.Conditions = redactList(facts.Conditions)
	facts.Medications = redactList(facts.Medications)
	facts.Observations = redactList(facts.Observations)
	facts.LabResults = redactList(facts.LabResults)
	facts.Notes = redactList(facts.Notes)

	return facts
}

func (s *IngestService) auditIngested(ctx context.Context, record *models.ClinicalRecord, anon models.AnonymizedRecord) {
	detail := map[string]any{
		"record_id":     record.ID.String(),
		"resource_type": string(record.ResourceType),
		"content_hash":  anon.ContentHash,
		"phi_detected":  anon.PHIDetected,
	}
	if len(anon.RedactedKinds) > 0 {
		detail["phi_kinds"] = anon.RedactedKinds
	}

	s.auditSink.Record(ctx, audit.NewEvent(
		datatypes.ResourceIngested, record.OwnerID, "ingest_record", audit.StatusOK, detail))
}

func (s *IngestService) recordIngestFailure(ctx context.Context, reason string) {
	if s.metrics != nil {
		s.metrics.RecordIngestFailure(ctx, reason)
	}
}
