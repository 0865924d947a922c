// Package audit provides the append-only audit trail for the pipeline.
//
// Events never reference raw PHI values — only kinds, counts, and hashed
// content identifiers. A sink must never reject a well-formed event: failure
// to persist is logged and swallowed, it cannot fail the operation that
// emitted the event.
package audit

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/Chitralekhayaduvanshi/Cyborg-care/internal/datatypes"
)

// Event is one audit record, immutable once written.
type Event struct {
	ID        uuid.UUID           `json:"id"`
	Kind      datatypes.EventType `json:"kind"`
	OwnerID   string              `json:"owner_id"`
	Action    string              `json:"action"`
	Detail    map[string]any      `json:"detail,omitempty"`
	Status    string              `json:"status"`
	CreatedAt time.Time           `json:"created_at"`
}

// Statuses for Event.Status.
const (
	StatusOK     = "ok"
	StatusFailed = "failed"
)

// Sink receives audit events. Implementations are append-only.
type Sink interface {
	Record(ctx context.Context, event Event)
}

// NewEvent builds an event with a fresh UUIDv7 id and timestamp.
func NewEvent(kind datatypes.EventType, ownerID, action, status string, detail map[string]any) Event {
	return Event{
		ID:        uuid.Must(uuid.NewV7()),
		Kind:      kind,
		OwnerID:   ownerID,
		Action:    action,
		Detail:    detail,
		Status:    status,
		CreatedAt: time.Now().UTC(),
	}
}
