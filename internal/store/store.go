// Package store defines the storage capability consumed by the pipeline and
// provides the in-memory implementation used in tests.
package store

import (
	"context"

	"github.com/google/uuid"

	"github.com/Chitralekhayaduvanshi/Cyborg-care/internal/models"
)

// EmbeddingStore is the persistence capability for stored embeddings. All
// operations are scoped by owner identifier; cross-owner access is rejected
// at this layer regardless of any caller-level check.
type EmbeddingStore interface {
	// Store encrypts and persists the vector for the given owner.
	// Encryption failure aborts the write; a plaintext-only row is never
	// persisted.
	Store(ctx context.Context, ownerID string, vec models.EmbeddingVector) (models.StoredEmbedding, error)

	// Get returns the stored embedding, or carerrors.ErrNotFound when it
	// does not exist for this owner.
	Get(ctx context.Context, ownerID string, id uuid.UUID) (*models.StoredEmbedding, error)

	// Delete removes the embedding and reports whether a row existed.
	Delete(ctx context.Context, ownerID string, id uuid.UUID) (bool, error)

	// ListByOwner returns up to limit embeddings in insertion order.
	ListByOwner(ctx context.Context, ownerID string, limit int) ([]models.StoredEmbedding, error)

	// SearchByOwner returns embeddings scoring strictly above minThreshold
	// against the query vector, descending, ties in insertion order, at
	// most topK results.
	SearchByOwner(ctx context.Context, ownerID string, query []float32, topK int, minThreshold float64) ([]models.ScoredEmbedding, error)
}

// RecordStore is the persistence capability for the originating structured
// clinical records, scoped by owner like EmbeddingStore.
type RecordStore interface {
	SaveRecord(ctx context.Context, record *models.ClinicalRecord) error

	// GetRecord returns the record, or carerrors.ErrNotFound when it does
	// not exist for this owner.
	GetRecord(ctx context.Context, ownerID string, id uuid.UUID) (*models.ClinicalRecord, error)
}
