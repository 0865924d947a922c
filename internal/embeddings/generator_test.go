package embeddings

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Chitralekhayaduvanshi/Cyborg-care/internal/carerrors"
	"github.com/Chitralekhayaduvanshi/Cyborg-care/internal/models"
)

type failingClient struct{ err error }

func (f *failingClient) CreateEmbedding(context.Context, string) ([]float32, error) {
	return nil, f.err
}

type fixedDimClient struct{ dim int }

func (f *fixedDimClient) CreateEmbedding(context.Context, string) ([]float32, error) {
	return make([]float32, f.dim), nil
}

func TestEnhanceText_fixedOrderAndOmission(t *testing.T) {
	facts := models.ExtractedFacts{
		Conditions:  []string{"Type 2 diabetes", "Hypertension"},
		LabResults:  []string{"HbA1c 7.2%"},
		Medications: []string{"Metformin 500mg"},
	}

	got := EnhanceText("Patient summary.", facts)

	assert.Equal(t,
		"Patient summary. Conditions: Type 2 diabetes, Hypertension. Medications: Metformin 500mg. Lab results: HbA1c 7.2%.",
		got)
}

func TestEnhanceText_emptyFactsLeaveTextUnchanged(t *testing.T) {
	assert.Equal(t, "Just text.", EnhanceText("Just text.", models.ExtractedFacts{}))
}

func TestExtractMedicalTerms_boundedDictionaryOverlap(t *testing.T) {
	text := "Diabetes with hypertension; metformin started, HbA1c pending."

	terms := ExtractMedicalTerms(text)

	assert.Contains(t, terms, "diabetes")
	assert.Contains(t, terms, "hypertension")
	assert.Contains(t, terms, "metformin")
	assert.Contains(t, terms, "hba1c")
	assert.LessOrEqual(t, len(terms), maxMedicalTerms)
}

func TestClassifyClinicalContext_firstMatchPriority(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"endocrinology before cardiology", "diabetes with hypertension", "endocrinology"},
		{"cardiology", "hypertension, elevated cholesterol", "cardiology"},
		{"oncology", "metastatic tumor found", "oncology"},
		{"no cluster match", "sprained ankle", DefaultClinicalContext},
		{"empty", "", DefaultClinicalContext},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyClinicalContext(tt.text))
		})
	}
}

func TestGenerator_Generate(t *testing.T) {
	const dims = 64

	g := NewGenerator(NewMockClientWithDimensions(dims), "text-embedding-3-small", dims)
	recordID := uuid.Must(uuid.NewV7())

	vec, err := g.Generate(context.Background(), recordID, "Condition: diabetes", models.ExtractedFacts{})
	require.NoError(t, err)

	assert.Equal(t, recordID, vec.RecordID)
	assert.Len(t, vec.Vector, dims)
	assert.Equal(t, "text-embedding-3-small", vec.Model)
	assert.Equal(t, "endocrinology", vec.ClinicalContext)
	assert.Contains(t, vec.MedicalTerms, "diabetes")
	assert.Equal(t, "Condition: diabetes", vec.SourceTextPrefix)
	assert.False(t, vec.GeneratedAt.IsZero())
}

func TestGenerator_Generate_prefixIsBounded(t *testing.T) {
	const dims = 8

	g := NewGenerator(NewMockClientWithDimensions(dims), "m", dims)

	long := make([]byte, 1000)
	for i := range long {
		long[i] = 'a'
	}

	vec, err := g.Generate(context.Background(), uuid.Must(uuid.NewV7()), string(long), models.ExtractedFacts{})
	require.NoError(t, err)
	assert.Len(t, vec.SourceTextPrefix, maxSourceTextPrefixLen)
}

func TestGenerator_Generate_clientFailureIsExternalCapabilityError(t *testing.T) {
	g := NewGenerator(&failingClient{err: errors.New("model down")}, "m", 8)

	_, err := g.Generate(context.Background(), uuid.Must(uuid.NewV7()), "text", models.ExtractedFacts{})
	require.Error(t, err)
	assert.ErrorIs(t, err, carerrors.ErrExternalCapability)
}

func TestGenerator_Generate_dimensionMismatchIsHardError(t *testing.T) {
	g := NewGenerator(&fixedDimClient{dim: 384}, "m", 1536)

	_, err := g.Generate(context.Background(), uuid.Must(uuid.NewV7()), "text", models.ExtractedFacts{})
	require.Error(t, err)
	assert.ErrorIs(t, err, carerrors.ErrDimensionMismatch)
}

func TestMockClient_deterministicUnitVectors(t *testing.T) {
	c := NewMockClientWithDimensions(32)

	a, err := c.CreateEmbedding(context.Background(), "same input")
	require.NoError(t, err)

	b, err := c.CreateEmbedding(context.Background(), "same input")
	require.NoError(t, err)

	assert.Equal(t, a, b)

	_, err = c.CreateEmbedding(context.Background(), "")
	assert.ErrorIs(t, err, ErrEmptyInput)
}
