// Package datatypes defines shared types for audit events.
package datatypes

import "errors"

// Event type validation errors.
var ErrInvalidEventType = errors.New("invalid event type")

// EventType represents an audit event kind as an enum.
// Use String() to get the string representation for the audit trail.
type EventType uint16

// Event type constants; string form is given in eventTypeMap.
const (
	QueryPHIDetected EventType = iota
	ResourceIngested
	QueryProcessed
	GenerationFailed
	EmbeddingStored
	EmbeddingDeleted
)

// eventTypeMap maps string representations to EventType enums.
// This is the single source of truth for valid event type strings.
var eventTypeMap = map[string]EventType{
	"query.phi_detected": QueryPHIDetected,
	"resource.ingested":  ResourceIngested,
	"query.processed":    QueryProcessed,
	"generation.failed":  GenerationFailed,
	"embedding.stored":   EmbeddingStored,
	"embedding.deleted":  EmbeddingDeleted,
}

// reverseEventTypeMap maps EventType enums to string representations.
// Built at init time from eventTypeMap for O(1) lookups.
var reverseEventTypeMap map[EventType]string

func init() {
	reverseEventTypeMap = make(map[EventType]string, len(eventTypeMap))
	for str, eventType := range eventTypeMap {
		reverseEventTypeMap[eventType] = str
	}
}

// String returns the string representation of an EventType.
// Implements fmt.Stringer interface.
// Returns empty string for invalid event types.
func (et EventType) String() string {
	str, ok := reverseEventTypeMap[et]
	if !ok {
		return ""
	}

	return str
}

// ParseEventType converts a string to an EventType enum.
// Returns the EventType and true if valid, or 0 and false if invalid.
func ParseEventType(s string) (EventType, bool) {
	et, ok := eventTypeMap[s]

	return et, ok
}

// GetAllEventTypes returns all valid event type strings (for validation).
// The order is not guaranteed (map iteration order).
func GetAllEventTypes() []string {
	types := make([]string, 0, len(eventTypeMap))
	for k := range eventTypeMap {
		types = append(types, k)
	}

	return types
}

// IsValidEventType checks if an event type string is valid.
func IsValidEventType(eventType string) bool {
	_, ok := eventTypeMap[eventType]

	return ok
}
