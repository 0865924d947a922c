package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Chitralekhayaduvanshi/Cyborg-care/internal/carerrors"
	"github.com/Chitralekhayaduvanshi/Cyborg-care/internal/models"
	"github.com/Chitralekhayaduvanshi/Cyborg-care/internal/store"
)

// ClinicalRecordsRepository handles data access for originating clinical
// records. Like the embeddings repository, every operation is owner-scoped
// in SQL.
type ClinicalRecordsRepository struct {
	db *pgxpool.Pool
}

// NewClinicalRecordsRepository creates a clinical records repository.
func NewClinicalRecordsRepository(db *pgxpool.Pool) *ClinicalRecordsRepository {
	return &ClinicalRecordsRepository{db: db}
}

var _ store.RecordStore = (*ClinicalRecordsRepository)(nil)

// SaveRecord inserts the record. Records are immutable once ingested;
// re-ingestion creates a new row, not an update.
func (r *ClinicalRecordsRepository) SaveRecord(ctx context.Context, record *models.ClinicalRecord) error {
	if record.OwnerID == "" {
		return carerrors.NewValidationError("owner_id", "owner id is required")
	}

	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}

	_, err := r.db.Exec(ctx, `
		INSERT INTO clinical_records (
			id, owner_id, resource_type, source_text,
			code, display, value, unit, dosage, status, conclusion,
			effective_at, collected_at, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		record.ID, record.OwnerID, record.ResourceType, record.SourceText,
		record.Code, record.Display, record.Value, record.Unit, record.Dosage,
		record.Status, record.Conclusion,
		record.EffectiveAt, record.CollectedAt, record.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("clinical records insert: %w", err)
	}

	return nil
}

// GetRecord returns the record for the given owner and id, or
// carerrors.ErrNotFound.
func (r *ClinicalRecordsRepository) GetRecord(
	ctx context.Context, ownerID string, id uuid.UUID,
) (*models.ClinicalRecord, error) {
	var record models.ClinicalRecord

	err := r.db.QueryRow(ctx, `
		SELECT id, owner_id, resource_type, source_text,
			code, display, value, unit, dosage, status, conclusion,
			effective_at, collected_at, created_at
		FROM clinical_records
		WHERE owner_id = $1 AND id = $2`,
		ownerID, id,
	).Scan(
		&record.ID, &record.OwnerID, &record.ResourceType, &record.SourceText,
		&record.Code, &record.Display, &record.Value, &record.Unit, &record.Dosage,
		&record.Status, &record.Conclusion,
		&record.EffectiveAt, &record.CollectedAt, &record.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, carerrors.NewNotFoundError("clinical record", "")
		}

		return nil, fmt.Errorf("get clinical record: %w", err)
	}

	return &record, nil
}
