package phi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetector_Redact_patientNameAndDOB(t *testing.T) {
	d := NewDetector()

	input := "Patient: John Smith, DOB: 01/02/1980, diagnosed with diabetes"

	redacted, matches := d.Redact(input)

	assert.Equal(t, "Patient: [PATIENTNAME_MASKED], DOB: [DOB_MASKED], diagnosed with diabetes", redacted)

	kinds := RedactedKinds(matches)
	assert.Equal(t, []string{"dob", "patient_name"}, kinds)

	assert.False(t, d.ContainsPHI(redacted), "redacted text must not re-match the detector's own patterns")
}

func TestDetector_Redact_emptyInput(t *testing.T) {
	d := NewDetector()

	redacted, matches := d.Redact("")

	assert.Equal(t, "", redacted)
	assert.Empty(t, matches)
	assert.False(t, d.ContainsPHI(""))
}

func TestDetector_Redact_noPHIUnchanged(t *testing.T) {
	d := NewDetector()

	input := "Type 2 diabetes mellitus, well controlled on metformin 500mg."

	redacted, matches := d.Redact(input)

	assert.Equal(t, input, redacted)
	assert.Empty(t, matches)
}

func TestDetector_Redact_selfConsistentForAllKinds(t *testing.T) {
	d := NewDetector()

	inputs := map[Kind]string{
		KindSSN:             "SSN 123-45-6789 on file",
		KindMRN:             "MRN: 88421733 per chart",
		KindPatientName:     "Patient: Jane Doe presented today",
		KindDOB:             "date of birth 12/31/1975 confirmed",
		KindPhone:           "callback at (555) 867-5309 tomorrow",
		KindEmail:           "contact jane.doe@example.org for records",
		KindAccountNumber:   "policy number 4455667788 active",
		KindFacilityContext: "admitted to Mercy General Hospital overnight",
	}

	for kind, input := range inputs {
		redacted, matches := d.Redact(input)

		require.NotEmpty(t, matches, "kind %s: expected a match in %q", kind, input)
		assert.False(t, d.ContainsPHI(redacted), "kind %s: residual PHI in %q", kind, redacted)

		// Redaction is idempotent: a second pass is a no-op.
		again, more := d.Redact(redacted)
		assert.Equal(t, redacted, again, "kind %s", kind)
		assert.Empty(t, more, "kind %s", kind)
	}
}

func TestDetector_Detect_reportsEveryRulesMatches(t *testing.T) {
	d := NewDetector()

	input := "Patient: John Smith, SSN 123-45-6789, email john@clinic.example.com"

	matches := d.Detect(input)

	counts := CountByKind(matches)
	assert.Equal(t, 1, counts["patient_name"])
	assert.Equal(t, 1, counts["ssn"])
	assert.Equal(t, 1, counts["email"])
}

func TestDetector_Detect_deterministic(t *testing.T) {
	d := NewDetector()

	input := "Pt: Mary Major, DOB: 3/4/1990, phone 555-123-4567"

	first := d.Detect(input)
	second := d.Detect(input)

	require.Equal(t, first, second)
}

func TestDetector_Detect_offsetsPointAtValues(t *testing.T) {
	d := NewDetector()

	input := "DOB: 01/02/1980"

	matches := d.Detect(input)

	require.Len(t, matches, 1)
	assert.Equal(t, KindDOB, matches[0].Kind)
	assert.Equal(t, "01/02/1980", matches[0].MatchedText)
	assert.Equal(t, len("DOB: "), matches[0].ByteOffset)
}

func TestDetector_Redact_overlappingRulesLeftmostWins(t *testing.T) {
	d := NewDetector()

	// Account digits sit inside text a second rule could also reach; every
	// match is reported but the output contains exactly one token per span.
	input := "account number 1234567890 and account number 1234567890"

	redacted, matches := d.Redact(input)

	assert.Equal(t, "account number [ACCOUNTNUMBER_MASKED] and account number [ACCOUNTNUMBER_MASKED]", redacted)
	assert.Len(t, matches, 2)
}

func TestRedactedKinds_dedupesAndSorts(t *testing.T) {
	matches := []Match{
		{Kind: KindPhone},
		{Kind: KindDOB},
		{Kind: KindPhone},
	}

	assert.Equal(t, []string{"dob", "phone"}, RedactedKinds(matches))
	assert.Nil(t, RedactedKinds(nil))
}
