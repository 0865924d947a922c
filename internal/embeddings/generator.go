package embeddings

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Chitralekhayaduvanshi/Cyborg-care/internal/carerrors"
	"github.com/Chitralekhayaduvanshi/Cyborg-care/internal/models"
)

// maxSourceTextPrefixLen bounds the redacted-text prefix stored alongside
// the vector.
const maxSourceTextPrefixLen = 200

// Generator turns redacted clinical text plus extracted facts into an
// EmbeddingVector: it builds the enhanced text, tags medical terms and a
// clinical-context label, and delegates the text-to-vector mapping to the
// injected Client.
type Generator struct {
	client     Client
	model      string
	dimensions int
}

// NewGenerator creates a Generator for the given client and model identity.
func NewGenerator(client Client, model string, dimensions int) *Generator {
	return &Generator{
		client:     client,
		model:      model,
		dimensions: dimensions,
	}
}

// Model returns the model identifier stamped on generated vectors.
func (g *Generator) Model() string { return g.model }

// Dimensions returns the expected vector dimensionality.
func (g *Generator) Dimensions() int { return g.dimensions }

// Generate embeds the given redacted text, enhanced with the supplied facts.
// A failed model call or a vector of unexpected dimensionality fails with an
// ExternalCapabilityError / DimensionMismatchError; batch callers collect
// these per item and keep going.
func (g *Generator) Generate(
	ctx context.Context, recordID uuid.UUID, redactedText string, facts models.ExtractedFacts,
) (models.EmbeddingVector, error) {
	enhanced := EnhanceText(redactedText, facts)

	vector, err := g.client.CreateEmbedding(ctx, enhanced)
	if err != nil {
		return models.EmbeddingVector{}, fmt.Errorf("%w: %w",
			carerrors.NewExternalCapabilityError("embedding", "create embedding failed"), err)
	}

	if len(vector) != g.dimensions {
		return models.EmbeddingVector{}, carerrors.NewDimensionMismatchError(len(vector), g.dimensions)
	}

	return models.EmbeddingVector{
		ID:               uuid.Must(uuid.NewV7()),
		RecordID:         recordID,
		Vector:           vector,
		SourceTextPrefix: truncate(redactedText, maxSourceTextPrefixLen),
		MedicalTerms:     ExtractMedicalTerms(enhanced),
		ClinicalContext:  ClassifyClinicalContext(enhanced),
		Model:            g.model,
		GeneratedAt:      time.Now().UTC(),
	}, nil
}

// EnhanceText appends the structured facts to the base text in a fixed
// order (conditions, medications, observations, lab results), each category
// rendered as a labeled comma-joined list and omitted when empty.
func EnhanceText(text string, facts models.ExtractedFacts) string {
	var b strings.Builder

	b.WriteString(strings.TrimSpace(text))

	appendFactList(&b, "Conditions", facts.Conditions)
	appendFactList(&b, "Medications", facts.Medications)
	appendFactList(&b, "Observations", facts.Observations)
	appendFactList(&b, "Lab results", facts.LabResults)

	return b.String()
}

func appendFactList(b *strings.Builder, label string, items []string) {
	if len(items) == 0 {
		return
	}

	if b.Len() > 0 {
		b.WriteString(" ")
	}

	b.WriteString(label)
	b.WriteString(": ")
	b.WriteString(strings.Join(items, ", "))
	b.WriteString(".")
}

// ExtractMedicalTerms returns the dictionary terms present in the text,
// in dictionary order, capped at maxMedicalTerms.
func ExtractMedicalTerms(text string) []string {
	lower := strings.ToLower(text)

	var terms []string

	for _, term := range medicalTermDictionary {
		if strings.Contains(lower, term) {
			terms = append(terms, term)
			if len(terms) == maxMedicalTerms {
				break
			}
		}
	}

	return terms
}

// ClassifyClinicalContext returns the specialty tag of the first cluster
// (in priority order) with a term present in the text, or
// DefaultClinicalContext when none matches.
func ClassifyClinicalContext(text string) string {
	lower := strings.ToLower(text)

	for _, cluster := range contextClusters {
		for _, term := range cluster.terms {
			if strings.Contains(lower, term) {
				return cluster.tag
			}
		}
	}

	return DefaultClinicalContext
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}

	return s[:max]
}
