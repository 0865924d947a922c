package search

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Chitralekhayaduvanshi/Cyborg-care/internal/models"
)

func stored(vec []float32) models.StoredEmbedding {
	return models.StoredEmbedding{
		EmbeddingVector: models.EmbeddingVector{
			ID:     uuid.Must(uuid.NewV7()),
			Vector: vec,
		},
	}
}

func TestEngine_Rank_descendingWithThresholdAndTopK(t *testing.T) {
	e := NewEngine(nil)

	candidates := []models.StoredEmbedding{
		stored([]float32{1, 0}),      // score 1.0 vs query
		stored([]float32{0, 1}),      // score 0.0, below threshold
		stored([]float32{0.7, 0.7}),  // ~0.707
		stored([]float32{0.9, 0.1}),  // ~0.994
		stored([]float32{-1, 0}),     // -1.0
	}

	results := e.Rank(candidates, []float32{1, 0}, 3, 0.1)

	require.Len(t, results, 3)
	assert.Equal(t, candidates[0].ID, results[0].ID)
	assert.Equal(t, candidates[3].ID, results[1].ID)
	assert.Equal(t, candidates[2].ID, results[2].ID)

	for _, r := range results {
		assert.Greater(t, r.Score, 0.1)
	}
}

func TestEngine_Rank_thresholdIsStrict(t *testing.T) {
	e := NewEngine(nil)

	candidates := []models.StoredEmbedding{stored([]float32{0, 1})} // score exactly 0

	results := e.Rank(candidates, []float32{1, 0}, 10, 0)

	assert.Empty(t, results, "score equal to minThreshold must not be admitted")
}

func TestEngine_Rank_tiesPreserveInsertionOrder(t *testing.T) {
	e := NewEngine(nil)

	// Identical vectors score identically bit-for-bit; parallel vectors of
	// different magnitudes do not (normalization rounds per magnitude), so
	// only exact ties exercise the stable-order guarantee.
	first := stored([]float32{1, 1})
	second := stored([]float32{1, 1})
	third := stored([]float32{1, 1})

	candidates := []models.StoredEmbedding{first, second, third}

	for range 5 {
		results := e.Rank(candidates, []float32{1, 1}, 10, 0.5)

		require.Len(t, results, 3)
		assert.Equal(t, first.ID, results[0].ID)
		assert.Equal(t, second.ID, results[1].ID)
		assert.Equal(t, third.ID, results[2].ID)
	}
}

func TestEngine_Rank_skipsMismatchedDimensionality(t *testing.T) {
	e := NewEngine(nil)

	good := stored([]float32{1, 0, 0})
	bad := stored(make([]float32, 384))

	results := e.Rank([]models.StoredEmbedding{bad, good}, []float32{1, 0, 0}, 10, 0.1)

	require.Len(t, results, 1)
	assert.Equal(t, good.ID, results[0].ID)
}

func TestEngine_Rank_emptyInputs(t *testing.T) {
	e := NewEngine(nil)

	assert.Empty(t, e.Rank(nil, []float32{1}, 5, 0))
	assert.Empty(t, e.Rank([]models.StoredEmbedding{stored([]float32{1})}, nil, 5, 0))
	assert.Empty(t, e.Rank([]models.StoredEmbedding{stored([]float32{1})}, []float32{1}, 0, 0))
}

func TestEngine_Rank_neverExceedsTopK(t *testing.T) {
	e := NewEngine(nil)

	var candidates []models.StoredEmbedding
	for range 20 {
		candidates = append(candidates, stored([]float32{1, 0}))
	}

	results := e.Rank(candidates, []float32{1, 0}, 7, 0.5)

	assert.Len(t, results, 7)
}
