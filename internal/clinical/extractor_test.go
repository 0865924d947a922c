package clinical

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Chitralekhayaduvanshi/Cyborg-care/internal/models"
)

func TestExtractText_condition(t *testing.T) {
	record := &models.ClinicalRecord{
		ResourceType: models.ResourceCondition,
		Code:         "E11.9",
		Display:      "Type 2 diabetes mellitus",
		Status:       "active",
	}

	text := ExtractText(record)

	assert.Equal(t, "Condition: Type 2 diabetes mellitus (active)", text)
}

func TestExtractText_medicationWithDosage(t *testing.T) {
	record := &models.ClinicalRecord{
		ResourceType: models.ResourceMedicationStatement,
		Display:      "Metformin",
		Dosage:       "500mg twice daily",
	}

	assert.Equal(t, "Medication: Metformin, 500mg twice daily", ExtractText(record))
}

func TestExtractText_observationWithValueAndUnit(t *testing.T) {
	record := &models.ClinicalRecord{
		ResourceType: models.ResourceObservation,
		Display:      "HbA1c",
		Value:        "7.2",
		Unit:         "%",
	}

	assert.Equal(t, "Observation: HbA1c 7.2 %", ExtractText(record))
}

func TestExtractText_diagnosticReport(t *testing.T) {
	record := &models.ClinicalRecord{
		ResourceType: models.ResourceDiagnosticReport,
		Display:      "Lipid panel",
		Conclusion:   "LDL elevated",
	}

	assert.Equal(t, "Diagnostic report: Lipid panel. Conclusion: LDL elevated", ExtractText(record))
}

func TestExtractText_unknownTypeFallsBackToGenericSummary(t *testing.T) {
	record := &models.ClinicalRecord{
		ResourceType: models.ResourceType("care-plan"),
		SourceText:   "Follow-up in 3 months.",
	}

	assert.Equal(t, "Follow-up in 3 months.", ExtractText(record))
}

func TestExtractText_genericSummaryIsBounded(t *testing.T) {
	record := &models.ClinicalRecord{
		ResourceType: models.ResourceOther,
		SourceText:   strings.Repeat("x", 2000),
	}

	text := ExtractText(record)

	assert.LessOrEqual(t, len(text), maxGenericSummaryLen)
}

func TestExtractText_unknownTypeWithStructuredFields(t *testing.T) {
	record := &models.ClinicalRecord{
		ResourceType: models.ResourceType("allergy"),
		Display:      "Penicillin",
		Status:       "confirmed",
	}

	assert.Equal(t, "allergy resource: Penicillin, (confirmed)", ExtractText(record))
}

func TestExtractText_contentlessRecordIsEmpty(t *testing.T) {
	// Identifiers, timestamps, and a bare status are not clinical content;
	// the summary must stay empty so ingestion rejects the record.
	records := []*models.ClinicalRecord{
		{ResourceType: models.ResourceType("unmapped")},
		{ResourceType: models.ResourceCondition, OwnerID: "owner-1"},
		{ResourceType: models.ResourceObservation, Status: "final"},
	}

	for _, record := range records {
		assert.Empty(t, ExtractText(record))
	}
}

func TestExtractFacts_byResourceType(t *testing.T) {
	tests := []struct {
		name   string
		record *models.ClinicalRecord
		check  func(t *testing.T, facts models.ExtractedFacts)
	}{
		{
			name: "condition",
			record: &models.ClinicalRecord{
				ResourceType: models.ResourceCondition,
				Display:      "Hypertension",
			},
			check: func(t *testing.T, facts models.ExtractedFacts) {
				assert.Equal(t, []string{"Hypertension"}, facts.Conditions)
			},
		},
		{
			name: "medication with dosage",
			record: &models.ClinicalRecord{
				ResourceType: models.ResourceMedicationStatement,
				Display:      "Lisinopril",
				Dosage:       "10mg daily",
			},
			check: func(t *testing.T, facts models.ExtractedFacts) {
				assert.Equal(t, []string{"Lisinopril 10mg daily"}, facts.Medications)
			},
		},
		{
			name: "observation",
			record: &models.ClinicalRecord{
				ResourceType: models.ResourceObservation,
				Display:      "Blood pressure",
				Value:        "140/90",
				Unit:         "mmHg",
			},
			check: func(t *testing.T, facts models.ExtractedFacts) {
				assert.Equal(t, []string{"Blood pressure 140/90 mmHg"}, facts.Observations)
			},
		},
		{
			name: "diagnostic report conclusion",
			record: &models.ClinicalRecord{
				ResourceType: models.ResourceDiagnosticReport,
				Conclusion:   "Normal sinus rhythm",
			},
			check: func(t *testing.T, facts models.ExtractedFacts) {
				assert.Equal(t, []string{"Normal sinus rhythm"}, facts.LabResults)
			},
		},
		{
			name: "unknown type lands in notes",
			record: &models.ClinicalRecord{
				ResourceType: models.ResourceType("allergy"),
				SourceText:   "Penicillin allergy",
			},
			check: func(t *testing.T, facts models.ExtractedFacts) {
				assert.Equal(t, []string{"Penicillin allergy"}, facts.Notes)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, ExtractFacts(tt.record))
		})
	}
}
