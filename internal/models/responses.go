package models

import (
	"time"

	"github.com/google/uuid"
)

// ContextEntry is one retrieved item joined with its originating record.
type ContextEntry struct {
	SourceID        uuid.UUID `json:"source_id"`
	Score           float64   `json:"score"`
	ClinicalContext string    `json:"clinical_context"`
	Content         string    `json:"content"`
}

// RetrievalContext is the ordered evidence set assembled for a query.
// Entries are sorted by descending similarity; ties keep insertion order so
// results are deterministic for a fixed vector set.
type RetrievalContext struct {
	Query   string         `json:"query"`
	Entries []ContextEntry `json:"entries"`
}

// ClinicalResponse is the caller-visible result of one query.
// Confidence is the mean of context similarity scores clamped to [0,1],
// defined as 0 when the context is empty. Warnings carry validation issues;
// they surface policy signals but never block delivery.
type ClinicalResponse struct {
	GeneratedText string           `json:"generated_text"`
	Context       RetrievalContext `json:"context"`
	Confidence    float64          `json:"confidence"`
	Disclaimer    string           `json:"disclaimer"`
	Warnings      []string         `json:"warnings,omitempty"`
	GeneratedAt   time.Time        `json:"generated_at"`

	// Stage is the last pipeline stage reached ("done", or the stage that
	// failed when the response is a fallback).
	Stage string `json:"stage"`
}
