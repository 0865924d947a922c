package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/rivertype"
)

const (
	recordEmbeddingKind = "record_embedding"
	// EmbeddingsQueueName is the River queue used for record embedding jobs.
	EmbeddingsQueueName = "embeddings"
)

// uniqueByPeriodEmbedding deduplicates identical embedding jobs enqueued
// within the same window.
const uniqueByPeriodEmbedding = 15 * time.Minute

// RecordEmbeddingInserter inserts embedding jobs (e.g. River client). Used by
// EmbeddingProvider and the backfill flow.
type RecordEmbeddingInserter interface {
	Insert(ctx context.Context, args river.JobArgs, opts *river.InsertOpts) (*rivertype.JobInsertResult, error)
}

// RecordEmbeddingArgs is the job payload for generating and storing an
// embedding for one clinical record. Uniqueness is by OwnerID+RecordID so
// duplicate events for the same record do not create duplicate jobs.
type RecordEmbeddingArgs struct {
	OwnerID  string    `json:"owner_id" river:"unique"`
	RecordID uuid.UUID `json:"record_id" river:"unique"`
}

// Kind returns the River job kind.
func (RecordEmbeddingArgs) Kind() string { return recordEmbeddingKind }

var _ river.JobArgs = RecordEmbeddingArgs{}
