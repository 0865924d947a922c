// Package models defines the domain types shared across the pipeline.
package models

import (
	"time"

	"github.com/google/uuid"
)

// ResourceType tags a clinical record with its structured-resource kind.
// Extraction dispatches on this tag; unknown values degrade to the generic
// summary branch, they never fail.
type ResourceType string

// Resource type constants.
const (
	ResourceCondition           ResourceType = "condition"
	ResourceMedicationStatement ResourceType = "medication-statement"
	ResourceObservation         ResourceType = "observation"
	ResourceDiagnosticReport    ResourceType = "diagnostic-report"
	ResourceOther               ResourceType = "other"
)

// ClinicalRecord is one ingested clinical resource: opaque source text plus
// optional structured fields. Immutable once ingested; re-ingestion creates
// a new record, not a mutation.
type ClinicalRecord struct {
	ID           uuid.UUID    `json:"id"`
	OwnerID      string       `json:"owner_id"`
	ResourceType ResourceType `json:"resource_type"`
	SourceText   string       `json:"source_text"`

	// Structured fields; all optional, consumed by the fact extractor.
	Code        string     `json:"code,omitempty"`         // condition/medication/observation code
	Display     string     `json:"display,omitempty"`      // human-readable label for Code
	Value       string     `json:"value,omitempty"`        // observation value
	Unit        string     `json:"unit,omitempty"`         // observation unit
	Dosage      string     `json:"dosage,omitempty"`       // medication dosage text
	Status      string     `json:"status,omitempty"`       // resource status (active, final, ...)
	Conclusion  string     `json:"conclusion,omitempty"`   // diagnostic report conclusion
	EffectiveAt *time.Time `json:"effective_at,omitempty"` // clinical effective time

	CollectedAt time.Time `json:"collected_at"`
	CreatedAt   time.Time `json:"created_at"`
}

// ExtractedFacts are the structured clinical facts projected out of a record.
// Each list holds short human-readable summaries, never raw identifiers.
type ExtractedFacts struct {
	Conditions   []string `json:"conditions,omitempty"`
	Medications  []string `json:"medications,omitempty"`
	Observations []string `json:"observations,omitempty"`
	LabResults   []string `json:"lab_results,omitempty"`
	Notes        []string `json:"notes,omitempty"`
}

// AnonymizedRecord is the PHI-scrubbed form of a clinical record. Invariant:
// RedactedText contains no substring the detector's own pattern set matches;
// the ingest path verifies this before the record leaves the pipeline.
type AnonymizedRecord struct {
	SourceID      uuid.UUID      `json:"source_id"`
	RedactedText  string         `json:"redacted_text"`
	Facts         ExtractedFacts `json:"facts"`
	ContentHash   string         `json:"content_hash"` // sha256 hex of the original text, audit correlation only
	PHIDetected   bool           `json:"phi_detected"`
	RedactedKinds []string       `json:"redacted_kinds,omitempty"` // PHI kinds only, never matched values
}
