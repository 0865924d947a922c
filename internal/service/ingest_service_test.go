package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Chitralekhayaduvanshi/Cyborg-care/internal/audit"
	"github.com/Chitralekhayaduvanshi/Cyborg-care/internal/datatypes"
	"github.com/Chitralekhayaduvanshi/Cyborg-care/internal/embeddings"
	"github.com/Chitralekhayaduvanshi/Cyborg-care/internal/models"
	"github.com/Chitralekhayaduvanshi/Cyborg-care/internal/phi"
	"github.com/Chitralekhayaduvanshi/Cyborg-care/internal/store"
)

const testDims = 64

type ingestFixture struct {
	service *IngestService
	store   *store.Memory
	audit   *audit.MemorySink
}

func newIngestFixture(t *testing.T) ingestFixture {
	t.Helper()

	memory := store.NewMemory(nil, nil)
	sink := audit.NewMemorySink()

	client := embeddings.NewMockClientWithDimensions(testDims)
	generator := embeddings.NewGenerator(client, "mock-model", testDims)

	svc := NewIngestService(IngestServiceParams{
		Detector:   phi.NewDetector(),
		Records:    memory,
		Embeddings: memory,
		Generator:  generator,
		AuditSink:  sink,
	})

	return ingestFixture{service: svc, store: memory, audit: sink}
}

func conditionRecord(ownerID, sourceText string) *models.ClinicalRecord {
	return &models.ClinicalRecord{
		OwnerID:      ownerID,
		ResourceType: models.ResourceCondition,
		Display:      "Diabetes mellitus type 2",
		Status:       "active",
		SourceText:   sourceText,
	}
}

func TestIngestRecord_AnonymizesAndStores(t *testing.T) {
	f := newIngestFixture(t)
	ctx := context.Background()

	record := conditionRecord("owner-1", "Patient: John Smith, DOB: 01/02/1980, diagnosed with diabetes")

	result, err := f.service.IngestRecord(ctx, record)
	require.NoError(t, err)

	assert.True(t, result.Anonymized.PHIDetected)
	assert.Contains(t, result.Anonymized.RedactedKinds, "patient_name")
	assert.Contains(t, result.Anonymized.RedactedKinds, "dob")
	assert.Contains(t, result.Anonymized.RedactedText, "[PATIENTNAME_MASKED]")
	assert.Contains(t, result.Anonymized.RedactedText, "[DOB_MASKED]")
	assert.NotContains(t, result.Anonymized.RedactedText, "John Smith")
	assert.NotContains(t, result.Anonymized.RedactedText, "01/02/1980")
	assert.Len(t, result.Anonymized.ContentHash, 64)

	// The record and its embedding both landed in the store.
	saved, err := f.store.GetRecord(ctx, "owner-1", record.ID)
	require.NoError(t, err)
	assert.Equal(t, record.ID, saved.ID)

	stored, err := f.store.ListByOwner(ctx, "owner-1", 10)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, record.ID, stored[0].RecordID)
	assert.Len(t, stored[0].Vector, testDims)
	assert.Equal(t, "mock-model", stored[0].Model)
}

func TestIngestRecord_AuditCarriesKindsNotValues(t *testing.T) {
	f := newIngestFixture(t)

	record := conditionRecord("owner-1", "Pt SSN 123-45-6789 on file")

	_, err := f.service.IngestRecord(context.Background(), record)
	require.NoError(t, err)

	events := f.audit.Events()
	require.Len(t, events, 1)
	assert.Equal(t, datatypes.ResourceIngested, events[0].Kind)
	assert.Equal(t, "owner-1", events[0].OwnerID)

	kinds, ok := events[0].Detail["phi_kinds"].([]string)
	require.True(t, ok)
	assert.Contains(t, kinds, "ssn")

	for _, v := range events[0].Detail {
		if s, isString := v.(string); isString {
			assert.NotContains(t, s, "123-45-6789")
		}
	}
}

func TestIngestRecord_MissingOwner(t *testing.T) {
	f := newIngestFixture(t)

	_, err := f.service.IngestRecord(context.Background(), conditionRecord("", "some text"))
	assert.ErrorIs(t, err, ErrMissingOwnerID)
}

func TestAnonymize_EmptyResource(t *testing.T) {
	f := newIngestFixture(t)

	_, err := f.service.Anonymize(&models.ClinicalRecord{
		OwnerID:      "owner-1",
		ResourceType: models.ResourceCondition,
	})
	assert.ErrorIs(t, err, ErrEmptyResource)
}

func TestAnonymize_IsIdempotent(t *testing.T) {
	f := newIngestFixture(t)

	record := conditionRecord("owner-1", "Patient: Jane Roe, phone 555-867-5309")

	first, err := f.service.Anonymize(record)
	require.NoError(t, err)

	// Redacting already-redacted text must change nothing.
	again, matches := phi.NewDetector().Redact(first.RedactedText)
	assert.Equal(t, first.RedactedText, again)
	assert.Empty(t, matches)
}

func TestIngestBatch_CollectsPerItemErrors(t *testing.T) {
	f := newIngestFixture(t)

	records := []*models.ClinicalRecord{
		conditionRecord("owner-1", "diagnosed with hypertension"),
		conditionRecord("", "missing owner"),
		conditionRecord("owner-1", "metformin 500mg daily"),
	}

	result := f.service.IngestBatch(context.Background(), records)

	assert.Len(t, result.Results, 2)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, 1, result.Errors[0].Index)
	assert.ErrorIs(t, result.Errors[0].Err, ErrMissingOwnerID)

	stored, err := f.store.ListByOwner(context.Background(), "owner-1", 10)
	require.NoError(t, err)
	assert.Len(t, stored, 2)
}
