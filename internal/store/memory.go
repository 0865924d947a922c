package store

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Chitralekhayaduvanshi/Cyborg-care/internal/carerrors"
	"github.com/Chitralekhayaduvanshi/Cyborg-care/internal/models"
	"github.com/Chitralekhayaduvanshi/Cyborg-care/internal/search"
	"github.com/Chitralekhayaduvanshi/Cyborg-care/internal/vaultcipher"
)

// Memory is an in-memory EmbeddingStore and RecordStore for tests and local
// development. It keeps per-owner insertion order so tie-breaking and
// listing are deterministic, and goes through the same cipher as the
// Postgres store so encryption behavior is exercised end to end.
// Never wire it as process-wide state in production.
type Memory struct {
	mu sync.RWMutex

	cipher *vaultcipher.Cipher
	engine *search.Engine

	// insertion-ordered per owner
	embeddings map[string][]models.StoredEmbedding
	records    map[string][]*models.ClinicalRecord
}

// NewMemory creates an empty in-memory store. cipher may be nil to skip
// encryption (pure search tests); engine may be nil (default engine).
func NewMemory(cipher *vaultcipher.Cipher, engine *search.Engine) *Memory {
	if engine == nil {
		engine = search.NewEngine(nil)
	}

	return &Memory{
		cipher:     cipher,
		engine:     engine,
		embeddings: make(map[string][]models.StoredEmbedding),
		records:    make(map[string][]*models.ClinicalRecord),
	}
}

var (
	_ EmbeddingStore = (*Memory)(nil)
	_ RecordStore    = (*Memory)(nil)
)

// Store encrypts and appends the vector under the owner.
func (m *Memory) Store(_ context.Context, ownerID string, vec models.EmbeddingVector) (models.StoredEmbedding, error) {
	if ownerID == "" {
		return models.StoredEmbedding{}, carerrors.NewValidationError("owner_id", "owner id is required")
	}

	if len(vec.Vector) == 0 {
		return models.StoredEmbedding{}, carerrors.NewValidationError("vector", "vector is required")
	}

	stored := models.StoredEmbedding{
		EmbeddingVector: vec,
		OwnerID:         ownerID,
		CreatedAt:       time.Now().UTC(),
	}

	if m.cipher != nil {
		ciphertext, err := m.cipher.Encrypt(vec.Vector)
		if err != nil {
			return models.StoredEmbedding{}, err
		}

		stored.Ciphertext = ciphertext
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.embeddings[ownerID] = append(m.embeddings[ownerID], stored)

	return stored, nil
}

// Get returns the embedding for this owner, or ErrNotFound.
func (m *Memory) Get(_ context.Context, ownerID string, id uuid.UUID) (*models.StoredEmbedding, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for i := range m.embeddings[ownerID] {
		if m.embeddings[ownerID][i].ID == id {
			out := m.embeddings[ownerID][i]

			return &out, nil
		}
	}

	return nil, carerrors.NewNotFoundError("embedding", "")
}

// Delete removes the embedding and reports whether it existed.
func (m *Memory) Delete(_ context.Context, ownerID string, id uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	list := m.embeddings[ownerID]
	for i := range list {
		if list[i].ID == id {
			m.embeddings[ownerID] = append(list[:i], list[i+1:]...)

			return true, nil
		}
	}

	return false, nil
}

// ListByOwner returns up to limit embeddings in insertion order.
func (m *Memory) ListByOwner(_ context.Context, ownerID string, limit int) ([]models.StoredEmbedding, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	list := m.embeddings[ownerID]
	if limit > 0 && len(list) > limit {
		list = list[:limit]
	}

	out := make([]models.StoredEmbedding, len(list))
	copy(out, list)

	return out, nil
}

// SearchByOwner ranks this owner's embeddings against the query vector.
func (m *Memory) SearchByOwner(
	_ context.Context, ownerID string, query []float32, topK int, minThreshold float64,
) ([]models.ScoredEmbedding, error) {
	m.mu.RLock()
	candidates := make([]models.StoredEmbedding, len(m.embeddings[ownerID]))
	copy(candidates, m.embeddings[ownerID])
	m.mu.RUnlock()

	return m.engine.Rank(candidates, query, topK, minThreshold), nil
}

// SaveRecord stores the clinical record under its owner.
func (m *Memory) SaveRecord(_ context.Context, record *models.ClinicalRecord) error {
	if record.OwnerID == "" {
		return carerrors.NewValidationError("owner_id", "owner id is required")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	clone := *record
	m.records[record.OwnerID] = append(m.records[record.OwnerID], &clone)

	return nil
}

// GetRecord returns the record for this owner, or ErrNotFound.
func (m *Memory) GetRecord(_ context.Context, ownerID string, id uuid.UUID) (*models.ClinicalRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, r := range m.records[ownerID] {
		if r.ID == id {
			clone := *r

			return &clone, nil
		}
	}

	return nil, carerrors.NewNotFoundError("clinical record", "")
}
