// Package clinical projects structured clinical resources into embeddable
// text and extracted facts.
package clinical

import (
	"fmt"
	"strings"

	"github.com/Chitralekhayaduvanshi/Cyborg-care/internal/models"
)

// maxGenericSummaryLen bounds the fallback summary for unrecognized
// resource types.
const maxGenericSummaryLen = 500

// ExtractText returns a human-readable summary of the resource, dispatched
// by resource-type tag. Unknown types degrade to a bounded generic summary;
// extraction never fails, but a record with no clinical content yields ""
// so callers can reject it. Output text must be redacted (internal/phi)
// before any further processing.
func ExtractText(record *models.ClinicalRecord) string {
	switch record.ResourceType {
	case models.ResourceCondition:
		return conditionText(record)
	case models.ResourceMedicationStatement:
		return medicationText(record)
	case models.ResourceObservation:
		return observationText(record)
	case models.ResourceDiagnosticReport:
		return diagnosticReportText(record)
	default:
		return genericText(record)
	}
}

// ExtractFacts projects the structured clinical facts out of the resource.
// The same dispatch as ExtractText; unknown types land in Notes.
func ExtractFacts(record *models.ClinicalRecord) models.ExtractedFacts {
	var facts models.ExtractedFacts

	switch record.ResourceType {
	case models.ResourceCondition:
		facts.Conditions = appendNonEmpty(facts.Conditions, displayOrCode(record))
	case models.ResourceMedicationStatement:
		med := displayOrCode(record)
		if med != "" && record.Dosage != "" {
			med += " " + record.Dosage
		}

		facts.Medications = appendNonEmpty(facts.Medications, med)
	case models.ResourceObservation:
		facts.Observations = appendNonEmpty(facts.Observations, observationSummary(record))
	case models.ResourceDiagnosticReport:
		if record.Conclusion != "" {
			facts.LabResults = append(facts.LabResults, record.Conclusion)
		} else {
			facts.LabResults = appendNonEmpty(facts.LabResults, displayOrCode(record))
		}
	default:
		facts.Notes = appendNonEmpty(facts.Notes, genericText(record))
	}

	return facts
}

func conditionText(record *models.ClinicalRecord) string {
	name := displayOrCode(record)
	if name == "" {
		return genericText(record)
	}

	var b strings.Builder

	b.WriteString("Condition: ")
	b.WriteString(name)

	if record.Status != "" {
		b.WriteString(" (")
		b.WriteString(record.Status)
		b.WriteString(")")
	}

	if record.SourceText != "" {
		b.WriteString(". ")
		b.WriteString(record.SourceText)
	}

	return b.String()
}

func medicationText(record *models.ClinicalRecord) string {
	name := displayOrCode(record)
	if name == "" {
		return genericText(record)
	}

	var b strings.Builder

	b.WriteString("Medication: ")
	b.WriteString(name)

	if record.Dosage != "" {
		b.WriteString(", ")
		b.WriteString(record.Dosage)
	}

	if record.Status != "" {
		b.WriteString(" (")
		b.WriteString(record.Status)
		b.WriteString(")")
	}

	return b.String()
}

func observationText(record *models.ClinicalRecord) string {
	summary := observationSummary(record)
	if summary == "" {
		return genericText(record)
	}

	return "Observation: " + summary
}

func observationSummary(record *models.ClinicalRecord) string {
	name := displayOrCode(record)
	if name == "" {
		return ""
	}

	if record.Value == "" {
		return name
	}

	summary := name + " " + record.Value
	if record.Unit != "" {
		summary += " " + record.Unit
	}

	return summary
}

func diagnosticReportText(record *models.ClinicalRecord) string {
	name := displayOrCode(record)

	switch {
	case name != "" && record.Conclusion != "":
		return fmt.Sprintf("Diagnostic report: %s. Conclusion: %s", name, record.Conclusion)
	case record.Conclusion != "":
		return "Diagnostic report conclusion: " + record.Conclusion
	case name != "":
		return "Diagnostic report: " + name
	default:
		return genericText(record)
	}
}

// genericText is the closed fallback branch: source text when present,
// otherwise a bounded summary of the record's clinical content fields.
// A record carrying none of them yields "", so contentless records are
// rejected upstream instead of being embedded as identifier noise.
func genericText(record *models.ClinicalRecord) string {
	if record.SourceText != "" {
		return truncate(record.SourceText, maxGenericSummaryLen)
	}

	var parts []string

	if name := displayOrCode(record); name != "" {
		parts = append(parts, name)
	}

	if record.Value != "" {
		value := record.Value
		if record.Unit != "" {
			value += " " + record.Unit
		}

		parts = append(parts, value)
	}

	if record.Dosage != "" {
		parts = append(parts, record.Dosage)
	}

	if record.Conclusion != "" {
		parts = append(parts, record.Conclusion)
	}

	if len(parts) == 0 {
		return ""
	}

	if record.Status != "" {
		parts = append(parts, "("+record.Status+")")
	}

	label := string(record.ResourceType)
	if label == "" {
		label = "clinical"
	}

	return truncate(label+" resource: "+strings.Join(parts, ", "), maxGenericSummaryLen)
}

func displayOrCode(record *models.ClinicalRecord) string {
	if record.Display != "" {
		return record.Display
	}

	return record.Code
}

func appendNonEmpty(dst []string, s string) []string {
	if s == "" {
		return dst
	}

	return append(dst, s)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}

	return s[:max]
}
