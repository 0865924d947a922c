package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// PipelineMetrics records ingestion and query metrics.
// Methods accept ctx for future exemplar support.
type PipelineMetrics interface {
	RecordIngested(ctx context.Context, resourceType string)
	RecordIngestFailure(ctx context.Context, reason string)
	RecordPHIDetections(ctx context.Context, kind string, count int64)
	RecordQuery(ctx context.Context, status string)
	RecordQueryDuration(ctx context.Context, duration time.Duration, status string)
	RecordGenerationFailure(ctx context.Context, reason string)
}

// pipelineMetrics implements PipelineMetrics.
type pipelineMetrics struct {
	ingested           metric.Int64Counter
	ingestFailures     metric.Int64Counter
	phiDetections      metric.Int64Counter
	queries            metric.Int64Counter
	queryDuration      metric.Float64Histogram
	generationFailures metric.Int64Counter
}

// NewPipelineMetrics creates PipelineMetrics. Returns (nil, nil) when meter is nil (metrics disabled).
func NewPipelineMetrics(meter metric.Meter) (PipelineMetrics, error) {
	if meter == nil {
		//nolint:nilnil // intentional: callers use "if metrics != nil" when metrics disabled
		return nil, nil
	}

	ingested, err := meter.Int64Counter(
		MetricNameRecordsIngested,
		metric.WithDescription("Total clinical records ingested, by resource type"),
	)
	if err != nil {
		return nil, fmt.Errorf("create records ingested counter: %w", err)
	}

	ingestFailures, err := meter.Int64Counter(
		MetricNameIngestFailures,
		metric.WithDescription("Total records rejected during ingestion, by reason"),
	)
	if err != nil {
		return nil, fmt.Errorf("create ingest failures counter: %w", err)
	}

	phiDetections, err := meter.Int64Counter(
		MetricNamePHIDetections,
		metric.WithDescription("Total PHI matches redacted, by kind (counts only, never values)"),
	)
	if err != nil {
		return nil, fmt.Errorf("create phi detections counter: %w", err)
	}

	queries, err := meter.Int64Counter(
		MetricNameQueries,
		metric.WithDescription("Total retrieval queries, by outcome status"),
	)
	if err != nil {
		return nil, fmt.Errorf("create queries counter: %w", err)
	}

	queryDuration, err := meter.Float64Histogram(
		MetricNameQueryDuration,
		metric.WithDescription("End-to-end retrieval query duration (seconds)"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("create query duration histogram: %w", err)
	}

	generationFailures, err := meter.Int64Counter(
		MetricNameGenerationFailures,
		metric.WithDescription("Total response generation failures, by reason"),
	)
	if err != nil {
		return nil, fmt.Errorf("create generation failures counter: %w", err)
	}

	return &pipelineMetrics{
		ingested:           ingested,
		ingestFailures:     ingestFailures,
		phiDetections:      phiDetections,
		queries:            queries,
		queryDuration:      queryDuration,
		generationFailures: generationFailures,
	}, nil
}

func (p *pipelineMetrics) RecordIngested(ctx context.Context, resourceType string) {
	p.ingested.Add(ctx, 1, metric.WithAttributes(attribute.String(AttrResourceType, resourceType)))
}

func (p *pipelineMetrics) RecordIngestFailure(ctx context.Context, reason string) {
	reason = NormalizeReason(reason, AllowedIngestFailureReasons)
	p.ingestFailures.Add(ctx, 1, metric.WithAttributes(attribute.String(AttrReason, reason)))
}

func (p *pipelineMetrics) RecordPHIDetections(ctx context.Context, kind string, count int64) {
	p.phiDetections.Add(ctx, count, metric.WithAttributes(attribute.String(AttrPHIKind, kind)))
}

func (p *pipelineMetrics) RecordQuery(ctx context.Context, status string) {
	status = NormalizeQueryStatus(status)
	p.queries.Add(ctx, 1, metric.WithAttributes(attribute.String(AttrStatus, status)))
}

func (p *pipelineMetrics) RecordQueryDuration(ctx context.Context, duration time.Duration, status string) {
	status = NormalizeQueryStatus(status)
	p.queryDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attribute.String(AttrStatus, status)))
}

func (p *pipelineMetrics) RecordGenerationFailure(ctx context.Context, reason string) {
	reason = NormalizeReason(reason, AllowedGenerationFailureReasons)
	p.generationFailures.Add(ctx, 1, metric.WithAttributes(attribute.String(AttrReason, reason)))
}
