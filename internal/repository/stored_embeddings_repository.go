// Package repository provides Postgres data access for stored embeddings,
// clinical records, and the audit trail.
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"github.com/Chitralekhayaduvanshi/Cyborg-care/internal/carerrors"
	"github.com/Chitralekhayaduvanshi/Cyborg-care/internal/models"
	"github.com/Chitralekhayaduvanshi/Cyborg-care/internal/store"
	"github.com/Chitralekhayaduvanshi/Cyborg-care/internal/vaultcipher"
)

// StoredEmbeddingsRepository persists embeddings in Postgres with a dual
// representation: a plaintext pgvector column for index-based cosine search
// and an authenticated ciphertext column for at-rest confidentiality. The
// plaintext column never leaves the retrieval boundary; the ciphertext is
// what crosses storage/backup boundaries.
type StoredEmbeddingsRepository struct {
	db     *pgxpool.Pool
	cipher *vaultcipher.Cipher
}

// NewStoredEmbeddingsRepository creates a stored embeddings repository.
func NewStoredEmbeddingsRepository(db *pgxpool.Pool, cipher *vaultcipher.Cipher) *StoredEmbeddingsRepository {
	return &StoredEmbeddingsRepository{db: db, cipher: cipher}
}

var _ store.EmbeddingStore = (*StoredEmbeddingsRepository)(nil)

// Store encrypts the vector and inserts the row. Encryption failure aborts
// the write; the repository never persists a plaintext-only row.
func (r *StoredEmbeddingsRepository) Store(
	ctx context.Context, ownerID string, vec models.EmbeddingVector,
) (models.StoredEmbedding, error) {
	if ownerID == "" {
		return models.StoredEmbedding{}, carerrors.NewValidationError("owner_id", "owner id is required")
	}

	ciphertext, err := r.cipher.Encrypt(vec.Vector)
	if err != nil {
		return models.StoredEmbedding{}, fmt.Errorf("encrypt vector: %w", err)
	}

	now := time.Now().UTC()

	_, err = r.db.Exec(ctx, `
		INSERT INTO stored_embeddings (
			id, owner_id, record_id, embedding, ciphertext,
			source_text_prefix, medical_terms, clinical_context, model,
			generated_at, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		vec.ID, ownerID, vec.RecordID, pgvector.NewVector(vec.Vector), ciphertext,
		vec.SourceTextPrefix, vec.MedicalTerms, vec.ClinicalContext, vec.Model,
		vec.GeneratedAt, now,
	)
	if err != nil {
		return models.StoredEmbedding{}, fmt.Errorf("stored embeddings insert: %w", err)
	}

	return models.StoredEmbedding{
		EmbeddingVector: vec,
		OwnerID:         ownerID,
		Ciphertext:      ciphertext,
		CreatedAt:       now,
	}, nil
}

const storedEmbeddingColumns = `
	id, owner_id, record_id, embedding, ciphertext,
	source_text_prefix, medical_terms, clinical_context, model,
	generated_at, created_at`

// Get returns the embedding for the given owner and id, or
// carerrors.ErrNotFound. Owner scoping is in the SQL, not the caller.
func (r *StoredEmbeddingsRepository) Get(
	ctx context.Context, ownerID string, id uuid.UUID,
) (*models.StoredEmbedding, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+storedEmbeddingColumns+`
		FROM stored_embeddings
		WHERE owner_id = $1 AND id = $2`,
		ownerID, id,
	)

	se, err := scanStoredEmbedding(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, carerrors.NewNotFoundError("embedding", "")
		}

		return nil, fmt.Errorf("get stored embedding: %w", err)
	}

	return se, nil
}

// Delete removes the embedding for the given owner and reports whether a
// row existed.
func (r *StoredEmbeddingsRepository) Delete(ctx context.Context, ownerID string, id uuid.UUID) (bool, error) {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM stored_embeddings WHERE owner_id = $1 AND id = $2`,
		ownerID, id,
	)
	if err != nil {
		return false, fmt.Errorf("delete stored embedding: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

// ListByOwner returns up to limit embeddings in insertion order.
func (r *StoredEmbeddingsRepository) ListByOwner(
	ctx context.Context, ownerID string, limit int,
) ([]models.StoredEmbedding, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+storedEmbeddingColumns+`
		FROM stored_embeddings
		WHERE owner_id = $1
		ORDER BY created_at, id
		LIMIT $2`,
		ownerID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list stored embeddings: %w", err)
	}

	defer rows.Close()

	var out []models.StoredEmbedding

	for rows.Next() {
		se, err := scanStoredEmbedding(rows)
		if err != nil {
			return nil, fmt.Errorf("scan stored embedding: %w", err)
		}

		out = append(out, *se)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating stored embeddings: %w", err)
	}

	return out, nil
}

// SearchByOwner returns the owner's embeddings scoring strictly above
// minThreshold against the query vector, by descending cosine similarity
// (<=> is cosine distance; score = 1 - distance). Exact distance ties keep
// insertion order via the created_at, id tiebreak, so repeated runs on an
// unchanged store are deterministic. Result length never exceeds topK.
func (r *StoredEmbeddingsRepository) SearchByOwner(
	ctx context.Context, ownerID string, query []float32, topK int, minThreshold float64,
) ([]models.ScoredEmbedding, error) {
	if topK <= 0 || len(query) == 0 {
		return nil, nil
	}

	queryVec := pgvector.NewVector(query)

	rows, err := r.db.Query(ctx, `
		SELECT `+storedEmbeddingColumns+`, (1 - (embedding <=> $1)) AS score
		FROM stored_embeddings
		WHERE owner_id = $2 AND (1 - (embedding <=> $1)) > $3
		ORDER BY embedding <=> $1, created_at, id
		LIMIT $4`,
		queryVec, ownerID, minThreshold, topK,
	)
	if err != nil {
		return nil, fmt.Errorf("nearest stored embeddings: %w", err)
	}

	defer rows.Close()

	var out []models.ScoredEmbedding

	for rows.Next() {
		var (
			se    models.StoredEmbedding
			vec   pgvector.Vector
			score float64
		)

		err := rows.Scan(
			&se.ID, &se.OwnerID, &se.RecordID, &vec, &se.Ciphertext,
			&se.SourceTextPrefix, &se.MedicalTerms, &se.ClinicalContext, &se.Model,
			&se.GeneratedAt, &se.CreatedAt, &score,
		)
		if err != nil {
			return nil, fmt.Errorf("scan scored embedding: %w", err)
		}

		se.Vector = vec.Slice()

		out = append(out, models.ScoredEmbedding{StoredEmbedding: se, Score: score})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating nearest: %w", err)
	}

	return out, nil
}

// BackfillCandidate identifies a clinical record with no stored embedding
// for some model.
type BackfillCandidate struct {
	OwnerID  string
	RecordID uuid.UUID
}

// ListBackfillCandidates returns clinical records that have no stored
// embedding for the given model (so they need one).
func (r *StoredEmbeddingsRepository) ListBackfillCandidates(ctx context.Context, model string) ([]BackfillCandidate, error) {
	rows, err := r.db.Query(ctx, `
		SELECT cr.owner_id, cr.id FROM clinical_records cr
		WHERE NOT EXISTS (
			SELECT 1 FROM stored_embeddings se
			WHERE se.record_id = cr.id AND se.model = $1
		)`, model)
	if err != nil {
		return nil, fmt.Errorf("list backfill candidates: %w", err)
	}

	defer rows.Close()

	var out []BackfillCandidate

	for rows.Next() {
		var c BackfillCandidate
		if err := rows.Scan(&c.OwnerID, &c.RecordID); err != nil {
			return nil, fmt.Errorf("scan backfill candidate: %w", err)
		}

		out = append(out, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating backfill candidates: %w", err)
	}

	return out, nil
}

// DeleteByRecordAndModel removes the embedding row for the given record and
// model (used when a record's redacted text is cleared).
func (r *StoredEmbeddingsRepository) DeleteByRecordAndModel(
	ctx context.Context, ownerID string, recordID uuid.UUID, model string,
) error {
	_, err := r.db.Exec(ctx,
		`DELETE FROM stored_embeddings WHERE owner_id = $1 AND record_id = $2 AND model = $3`,
		ownerID, recordID, model,
	)
	if err != nil {
		return fmt.Errorf("delete embedding by record: %w", err)
	}

	return nil
}

func scanStoredEmbedding(row pgx.Row) (*models.StoredEmbedding, error) {
	var (
		se  models.StoredEmbedding
		vec pgvector.Vector
	)

	err := row.Scan(
		&se.ID, &se.OwnerID, &se.RecordID, &vec, &se.Ciphertext,
		&se.SourceTextPrefix, &se.MedicalTerms, &se.ClinicalContext, &se.Model,
		&se.GeneratedAt, &se.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	se.Vector = vec.Slice()

	return &se, nil
}
