package models

import (
	"time"

	"github.com/google/uuid"
)

// EmbeddingVector is one embedding for an anonymized clinical record.
// Dimensionality is fixed per model and must match on both store and query
// paths; a mismatch is a hard error, never a silent truncation.
type EmbeddingVector struct {
	ID               uuid.UUID `json:"id"`
	RecordID         uuid.UUID `json:"record_id"`
	Vector           []float32 `json:"vector"`
	SourceTextPrefix string    `json:"source_text_prefix"` // bounded length, redacted text only
	MedicalTerms     []string  `json:"medical_terms,omitempty"`
	ClinicalContext  string    `json:"clinical_context"`
	Model            string    `json:"model"`
	GeneratedAt      time.Time `json:"generated_at"`
}

// StoredEmbedding is an EmbeddingVector at rest: the plaintext vector backs
// index-based similarity search and never leaves the retrieval boundary; the
// ciphertext is what crosses storage/backup boundaries.
type StoredEmbedding struct {
	EmbeddingVector

	OwnerID    string    `json:"owner_id"`
	Ciphertext []byte    `json:"-"`
	CreatedAt  time.Time `json:"created_at"`
}

// ScoredEmbedding is a stored embedding with its similarity score against a
// query vector, 0..1 after threshold filtering.
type ScoredEmbedding struct {
	StoredEmbedding

	Score float64 `json:"score"`
}
