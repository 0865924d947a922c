// Package search ranks stored embeddings against a query vector by cosine
// similarity.
package search

import (
	"log/slog"
	"sort"

	"github.com/Chitralekhayaduvanshi/Cyborg-care/internal/models"
	"github.com/Chitralekhayaduvanshi/Cyborg-care/pkg/vectormath"
)

// Engine scores and ranks candidate embeddings in process. The Postgres
// store pushes the same ranking into pgvector; this engine backs the
// in-memory store and any candidate set already in hand.
type Engine struct {
	logger *slog.Logger
}

// NewEngine creates an Engine. logger may be nil (slog default).
func NewEngine(logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}

	return &Engine{logger: logger}
}

// Rank returns the candidates scoring strictly above minThreshold against
// the query vector, sorted by descending score. Exact ties keep candidate
// order (stable sort), so results are deterministic for a fixed store.
// Result length never exceeds topK. Candidates of mismatched dimensionality
// are skipped with a warning, not a fatal error; mixed-model data per owner
// is a tolerated degraded state, not the expected one.
func (e *Engine) Rank(
	candidates []models.StoredEmbedding, query []float32, topK int, minThreshold float64,
) []models.ScoredEmbedding {
	if topK <= 0 || len(query) == 0 {
		return nil
	}

	eligible := make([]models.ScoredEmbedding, 0, len(candidates))

	for _, c := range candidates {
		if len(c.Vector) != len(query) {
			e.logger.Warn("search: skipping candidate with mismatched dimensionality",
				"embedding_id", c.ID,
				"got", len(c.Vector),
				"want", len(query),
			)

			continue
		}

		score := vectormath.Cosine(query, c.Vector)
		if score <= minThreshold {
			continue
		}

		eligible = append(eligible, models.ScoredEmbedding{StoredEmbedding: c, Score: score})
	}

	sort.SliceStable(eligible, func(i, j int) bool {
		return eligible[i].Score > eligible[j].Score
	})

	if len(eligible) > topK {
		eligible = eligible[:topK]
	}

	return eligible
}
