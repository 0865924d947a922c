package audit

import (
	"context"
	"log/slog"
	"sync"
)

// SlogSink writes audit events to structured logs. Used in development and
// as a fallback when no database is wired.
type SlogSink struct {
	logger *slog.Logger
}

// NewSlogSink creates a SlogSink. logger may be nil (slog default).
func NewSlogSink(logger *slog.Logger) *SlogSink {
	if logger == nil {
		logger = slog.Default()
	}

	return &SlogSink{logger: logger}
}

var _ Sink = (*SlogSink)(nil)

// Record logs the event.
func (s *SlogSink) Record(ctx context.Context, event Event) {
	s.logger.InfoContext(ctx, "audit event",
		"event_id", event.ID,
		"kind", event.Kind.String(),
		"owner_id", event.OwnerID,
		"action", event.Action,
		"status", event.Status,
		"detail", event.Detail,
	)
}

// MemorySink collects events for tests.
type MemorySink struct {
	mu     sync.Mutex
	events []Event
}

// NewMemorySink creates an empty MemorySink.
func NewMemorySink() *MemorySink {
	return &MemorySink{}
}

var _ Sink = (*MemorySink)(nil)

// Record appends the event.
func (s *MemorySink) Record(_ context.Context, event Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.events = append(s.events, event)
}

// Events returns a copy of all recorded events in order.
func (s *MemorySink) Events() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Event, len(s.events))
	copy(out, s.events)

	return out
}
