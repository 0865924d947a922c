package audit

import (
	"context"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresSink appends audit events to the audit_events table. Insert
// failures are logged, never surfaced: the audit trail must not be able to
// fail the operation it records.
type PostgresSink struct {
	db     *pgxpool.Pool
	logger *slog.Logger
}

// NewPostgresSink creates a PostgresSink. logger may be nil (slog default).
func NewPostgresSink(db *pgxpool.Pool, logger *slog.Logger) *PostgresSink {
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresSink{db: db, logger: logger}
}

var _ Sink = (*PostgresSink)(nil)

// Record appends the event.
func (s *PostgresSink) Record(ctx context.Context, event Event) {
	_, err := s.db.Exec(ctx, `
		INSERT INTO audit_events (id, kind, owner_id, action, detail, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		event.ID, event.Kind.String(), event.OwnerID, event.Action, event.Detail,
		event.Status, event.CreatedAt,
	)
	if err != nil {
		s.logger.Error("audit: insert failed",
			"event_id", event.ID,
			"kind", event.Kind.String(),
			"error", err,
		)
	}
}
