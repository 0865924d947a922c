package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/rivertype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeInserter struct {
	args []river.JobArgs
	opts []*river.InsertOpts
	err  error
}

func (f *fakeInserter) Insert(
	_ context.Context, args river.JobArgs, opts *river.InsertOpts,
) (*rivertype.JobInsertResult, error) {
	f.args = append(f.args, args)
	f.opts = append(f.opts, opts)

	if f.err != nil {
		return nil, f.err
	}

	return &rivertype.JobInsertResult{}, nil
}

func TestEmbeddingProvider_Enqueue(t *testing.T) {
	inserter := &fakeInserter{}
	provider := NewEmbeddingProvider(inserter, EmbeddingsQueueName, 3, nil)

	recordID := uuid.Must(uuid.NewV7())

	err := provider.Enqueue(context.Background(), "owner-1", recordID)
	require.NoError(t, err)

	require.Len(t, inserter.args, 1)
	args, ok := inserter.args[0].(RecordEmbeddingArgs)
	require.True(t, ok)
	assert.Equal(t, "owner-1", args.OwnerID)
	assert.Equal(t, recordID, args.RecordID)

	require.Len(t, inserter.opts, 1)
	assert.Equal(t, EmbeddingsQueueName, inserter.opts[0].Queue)
	assert.Equal(t, 3, inserter.opts[0].MaxAttempts)
	assert.True(t, inserter.opts[0].UniqueOpts.ByArgs)
}

func TestEmbeddingProvider_EnqueueManyContinuesPastFailures(t *testing.T) {
	inserter := &fakeInserter{err: errors.New("insert failed")}
	provider := NewEmbeddingProvider(inserter, EmbeddingsQueueName, 3, nil)

	enqueued := provider.EnqueueMany(context.Background(), "owner-1", []uuid.UUID{
		uuid.Must(uuid.NewV7()),
		uuid.Must(uuid.NewV7()),
	})

	assert.Zero(t, enqueued)
	assert.Len(t, inserter.args, 2)
}
