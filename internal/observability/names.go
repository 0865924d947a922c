// Package observability provides OpenTelemetry metrics and tracing for the
// retrieval pipeline, plus the trace-aware slog handler.
package observability

import (
	"github.com/Chitralekhayaduvanshi/Cyborg-care/internal/datatypes"
)

// Metric names (Prometheus / OpenTelemetry).
const (
	MetricNameRecordsIngested         = "care_records_ingested_total"
	MetricNameIngestFailures          = "care_ingest_failures_total"
	MetricNamePHIDetections           = "care_phi_detections_total"
	MetricNameQueries                 = "care_queries_total"
	MetricNameQueryDuration           = "care_query_duration_seconds"
	MetricNameGenerationFailures      = "care_generation_failures_total"
	MetricNameEmbeddingJobsEnqueued   = "care_embedding_jobs_enqueued_total"
	MetricNameEmbeddingProviderErrors = "care_embedding_provider_errors_total"
	MetricNameEmbeddingOutcomes       = "care_embedding_outcomes_total"
	MetricNameEmbeddingWorkerErrors   = "care_embedding_worker_errors_total"
	MetricNameEmbeddingDuration       = "care_embedding_duration_seconds"
	MetricNameCacheHits               = "care_cache_hits_total"
	MetricNameCacheMisses             = "care_cache_misses_total"
)

// Attribute keys.
const (
	AttrEventType    = "event_type"
	AttrReason       = "reason"
	AttrStatus       = "status"
	AttrResourceType = "resource_type"
	AttrPHIKind      = "phi_kind"
	AttrCacheName    = "cache_name"
)

// AllowedEventTypes returns event type strings allowed for metric attributes (bounded cardinality).
func AllowedEventTypes() []string {
	return datatypes.GetAllEventTypes()
}

// AllowedIngestFailureReasons for care_ingest_failures_total.
var AllowedIngestFailureReasons = map[string]bool{
	"validation_failed": true,
	"redaction_failed":  true,
	"embedding_failed":  true,
	"store_failed":      true,
}

// AllowedQueryStatuses for care_queries_total and care_query_duration_seconds.
var AllowedQueryStatuses = map[string]bool{
	"answered": true,
	"fallback": true,
	"no_match": true,
	"rejected": true,
}

// AllowedGenerationFailureReasons for care_generation_failures_total.
var AllowedGenerationFailureReasons = map[string]bool{
	"client_error":     true,
	"phi_in_output":    true,
	"empty_completion": true,
}

// AllowedEmbeddingProviderReason for care_embedding_provider_errors_total.
var AllowedEmbeddingProviderReason = map[string]bool{
	"enqueue_failed": true,
}

// AllowedEmbeddingWorkerReason for care_embedding_worker_errors_total.
var AllowedEmbeddingWorkerReason = map[string]bool{
	"get_record_failed": true,
	"anonymize_failed":  true,
	"generate_failed":   true,
	"store_failed":      true,
}

// allowedEmbeddingOutcomeStatuses for care_embedding_outcomes_total and
// care_embedding_duration_seconds.
var allowedEmbeddingOutcomeStatuses = map[string]bool{
	"success":      true,
	"skipped":      true,
	"retry":        true,
	"failed_final": true,
}

// AllowedEmbeddingOutcomeStatus reports whether status is an allowed embedding outcome.
func AllowedEmbeddingOutcomeStatus(status string) bool {
	return allowedEmbeddingOutcomeStatuses[status]
}

// NormalizeEventType returns eventType if allowed, otherwise "unknown".
func NormalizeEventType(eventType string) string {
	if datatypes.IsValidEventType(eventType) {
		return eventType
	}

	return "unknown"
}

// NormalizeReason returns reason if in allowed, otherwise "other".
func NormalizeReason(reason string, allowed map[string]bool) string {
	if allowed[reason] {
		return reason
	}

	return "other"
}

// NormalizeQueryStatus returns status if in AllowedQueryStatuses, otherwise "other".
func NormalizeQueryStatus(status string) string {
	if AllowedQueryStatuses[status] {
		return status
	}

	return "other"
}
