package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Chitralekhayaduvanshi/Cyborg-care/internal/audit"
	"github.com/Chitralekhayaduvanshi/Cyborg-care/internal/datatypes"
	"github.com/Chitralekhayaduvanshi/Cyborg-care/internal/embeddings"
	"github.com/Chitralekhayaduvanshi/Cyborg-care/internal/generation"
	"github.com/Chitralekhayaduvanshi/Cyborg-care/internal/models"
	"github.com/Chitralekhayaduvanshi/Cyborg-care/internal/phi"
	"github.com/Chitralekhayaduvanshi/Cyborg-care/internal/store"
	"github.com/Chitralekhayaduvanshi/Cyborg-care/pkg/cache"
)

const testReply = "Based on the stored records, the patient has type 2 diabetes managed with metformin. " +
	"This is not medical advice."

type retrievalFixture struct {
	ingest    *IngestService
	retrieval *RetrievalService
	genClient *generation.MockClient
	store     *store.Memory
	audit     *audit.MemorySink
}

func newRetrievalFixture(t *testing.T, minThreshold float64) *retrievalFixture {
	t.Helper()

	memory := store.NewMemory(nil, nil)
	sink := audit.NewMemorySink()

	client := embeddings.NewMockClientWithDimensions(testDims)
	generator := embeddings.NewGenerator(client, "mock-model", testDims)
	genClient := &generation.MockClient{Reply: testReply}

	queryCache, err := cache.NewLoaderCache[string, []float32](16, func(k string) string { return k })
	require.NoError(t, err)

	retrieval := NewRetrievalService(RetrievalServiceParams{
		Detector:        phi.NewDetector(),
		EmbeddingClient: client,
		Dimensions:      testDims,
		EmbeddingStore:  memory,
		RecordStore:     memory,
		Generation:      genClient,
		TopK:            5,
		MinThreshold:    minThreshold,
		QueryCache:      queryCache,
		AuditSink:       sink,
	})

	ingest := NewIngestService(IngestServiceParams{
		Detector:   phi.NewDetector(),
		Records:    memory,
		Embeddings: memory,
		Generator:  generator,
		AuditSink:  audit.NewMemorySink(),
	})

	return &retrievalFixture{
		ingest:    ingest,
		retrieval: retrieval,
		genClient: genClient,
		store:     memory,
		audit:     sink,
	}
}

func TestQuery_InputValidation(t *testing.T) {
	f := newRetrievalFixture(t, 0.5)

	_, err := f.retrieval.Query(context.Background(), "", "diabetes status")
	assert.ErrorIs(t, err, ErrMissingOwnerID)

	_, err = f.retrieval.Query(context.Background(), "owner-1", "   ")
	assert.ErrorIs(t, err, ErrEmptyQuery)
}

func TestQuery_EmptyStore(t *testing.T) {
	f := newRetrievalFixture(t, 0.5)

	resp, err := f.retrieval.Query(context.Background(), "owner-1", "does the patient have diabetes")
	require.NoError(t, err)

	assert.Empty(t, resp.Context.Entries)
	assert.Zero(t, resp.Confidence)
	assert.NotEmpty(t, resp.Disclaimer)
	assert.Equal(t, noMatchText, resp.GeneratedText)
	assert.Equal(t, StageDone, resp.Stage)
}

func TestQuery_AnswersFromMatchingRecord(t *testing.T) {
	f := newRetrievalFixture(t, 0.5)
	ctx := context.Background()

	result, err := f.ingest.IngestRecord(ctx, conditionRecord("owner-1", "managed with metformin"))
	require.NoError(t, err)

	// The stored vector embeds the enhanced text; querying with the same
	// text yields cosine similarity ~1 under the deterministic mock client.
	query := embeddings.EnhanceText(result.Anonymized.RedactedText, result.Anonymized.Facts)

	resp, err := f.retrieval.Query(ctx, "owner-1", query)
	require.NoError(t, err)

	assert.Equal(t, testReply, resp.GeneratedText)
	assert.Equal(t, StageDone, resp.Stage)
	require.Len(t, resp.Context.Entries, 1)
	assert.Equal(t, result.Record.ID, resp.Context.Entries[0].SourceID)
	assert.InDelta(t, 1.0, resp.Context.Entries[0].Score, 1e-5)
	assert.InDelta(t, 1.0, resp.Confidence, 1e-5)
	assert.NotEmpty(t, resp.Disclaimer)

	// Generation saw redacted context, never raw source text.
	require.Len(t, f.genClient.Requests, 1)
	assert.Contains(t, f.genClient.Requests[0].SystemPrompt, "Condition:")
}

func TestQuery_OwnerScoping(t *testing.T) {
	f := newRetrievalFixture(t, 0.5)
	ctx := context.Background()

	result, err := f.ingest.IngestRecord(ctx, conditionRecord("owner-1", "managed with metformin"))
	require.NoError(t, err)

	query := embeddings.EnhanceText(result.Anonymized.RedactedText, result.Anonymized.Facts)

	// Same query as another owner sees nothing.
	resp, err := f.retrieval.Query(ctx, "owner-2", query)
	require.NoError(t, err)
	assert.Empty(t, resp.Context.Entries)
	assert.Zero(t, resp.Confidence)
}

func TestQuery_PHIInQueryRedactedAndAudited(t *testing.T) {
	f := newRetrievalFixture(t, 0.5)

	_, err := f.retrieval.Query(context.Background(), "owner-1", "records for SSN 123-45-6789 please")
	require.NoError(t, err)

	var phiEvents []audit.Event
	for _, e := range f.audit.Events() {
		if e.Kind == datatypes.QueryPHIDetected {
			phiEvents = append(phiEvents, e)
		}
	}

	require.Len(t, phiEvents, 1)
	counts, ok := phiEvents[0].Detail["phi_counts"].(map[string]int)
	require.True(t, ok)
	assert.Equal(t, 1, counts["ssn"])
}

func TestQuery_GenerationFailureFallsBack(t *testing.T) {
	f := newRetrievalFixture(t, -1)
	ctx := context.Background()

	_, err := f.ingest.IngestRecord(ctx, conditionRecord("owner-1", "chronic kidney disease stage 2"))
	require.NoError(t, err)

	f.genClient.Err = errors.New("model unavailable")

	resp, err := f.retrieval.Query(ctx, "owner-1", "kidney function")
	require.NoError(t, err)

	assert.Equal(t, fallbackText, resp.GeneratedText)
	assert.Zero(t, resp.Confidence)
	assert.Equal(t, "failed:"+StageGenerated, resp.Stage)
	assert.NotEmpty(t, resp.Disclaimer)
}

func TestQuery_PHIInGeneratedOutputReplaced(t *testing.T) {
	f := newRetrievalFixture(t, -1)
	ctx := context.Background()

	_, err := f.ingest.IngestRecord(ctx, conditionRecord("owner-1", "hypertension, on lisinopril"))
	require.NoError(t, err)

	f.genClient.Reply = "The patient with SSN 987-65-4321 has hypertension. This is not medical advice."

	resp, err := f.retrieval.Query(ctx, "owner-1", "blood pressure")
	require.NoError(t, err)

	assert.Equal(t, fallbackText, resp.GeneratedText)
	assert.NotContains(t, resp.GeneratedText, "987-65-4321")

	found := false
	for _, w := range resp.Warnings {
		if strings.Contains(w, "replaced") {
			found = true
		}
	}
	assert.True(t, found, "expected a replacement warning, got %v", resp.Warnings)
}

func TestQuery_LowConfidenceWarning(t *testing.T) {
	f := newRetrievalFixture(t, -1)
	ctx := context.Background()

	_, err := f.ingest.IngestRecord(ctx, conditionRecord("owner-1", "seasonal allergies"))
	require.NoError(t, err)

	// An unrelated query admits the record under the permissive threshold
	// but with weak similarity.
	resp, err := f.retrieval.Query(ctx, "owner-1", "entirely unrelated question about scheduling")
	require.NoError(t, err)

	if resp.Confidence < lowConfidenceFloor {
		found := false
		for _, w := range resp.Warnings {
			if strings.Contains(w, "low confidence") {
				found = true
			}
		}
		assert.True(t, found, "expected low-confidence warning, got %v", resp.Warnings)
	}
}

func TestQuery_CachesQueryEmbedding(t *testing.T) {
	f := newRetrievalFixture(t, 0.5)
	ctx := context.Background()

	_, err := f.retrieval.Query(ctx, "owner-1", "does the patient smoke")
	require.NoError(t, err)

	_, err = f.retrieval.Query(ctx, "owner-1", "does the patient smoke")
	require.NoError(t, err)

	// Two identical queries load once and share the cached vector.
	assert.Equal(t, 1, f.retrieval.queryCache.Len())
}

func modelsContext(scores ...float64) models.RetrievalContext {
	var ctx models.RetrievalContext
	for _, score := range scores {
		ctx.Entries = append(ctx.Entries, models.ContextEntry{Score: score})
	}

	return ctx
}

func TestConfidence(t *testing.T) {
	assert.Zero(t, Confidence(modelsContext()))
	assert.InDelta(t, 0.6, Confidence(modelsContext(0.4, 0.8)), 1e-9)
	assert.Equal(t, 0.0, Confidence(modelsContext(-0.5, -0.1)))
	assert.Equal(t, 1.0, Confidence(modelsContext(1.5)))
}
