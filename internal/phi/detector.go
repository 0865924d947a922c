// Package phi provides pattern-based detection and redaction of Protected
// Health Information in free text.
//
// Detection is structural, not NLP: a fixed ordered set of independent rules,
// each recognizing one PHI class. It is explicitly best-effort — the absence
// of a rule for some real-world identifier is an accepted false negative,
// never an error. Integrators must not treat this as a certified
// de-identification engine.
package phi

import (
	"regexp"
	"sort"
)

// Kind identifies one PHI class recognized by the detector.
type Kind string

// PHI kinds recognized by the default rule set.
const (
	KindSSN             Kind = "ssn"
	KindMRN             Kind = "mrn"
	KindPatientName     Kind = "patient_name"
	KindDOB             Kind = "dob"
	KindPhone           Kind = "phone"
	KindEmail           Kind = "email"
	KindAccountNumber   Kind = "account_number"
	KindFacilityContext Kind = "facility_context"
)

// Match is one detected PHI span. MatchedText is transient: only Kind and
// ByteOffset may be retained for audit, never the matched value.
type Match struct {
	Kind        Kind
	MatchedText string
	ByteOffset  int
}

// Rule recognizes one PHI class. When Pattern has a capture group, the group
// is the PHI value and the surrounding label (e.g. "DOB:") is left intact on
// redaction; otherwise the whole match is the value. Replacement tokens use
// only uppercase letters, brackets and underscore, an alphabet no rule
// pattern can match, which keeps redaction idempotent.
type Rule struct {
	Kind        Kind
	Pattern     *regexp.Regexp
	Replacement string
}

// DefaultRules returns the fixed, ordered default rule registry. New PHI
// classes are added by registering new entries, no other dispatch exists.
func DefaultRules() []Rule {
	return []Rule{
		{
			Kind:        KindSSN,
			Pattern:     regexp.MustCompile(`\b\d{3}-\d{2}-\d{4}\b`),
			Replacement: "[SSN_MASKED]",
		},
		{
			Kind:        KindMRN,
			Pattern:     regexp.MustCompile(`(?i)\b(?:MRN|medical record (?:number|no\.?))\s*[:#]?\s*(\d{5,12})\b`),
			Replacement: "[MRN_MASKED]",
		},
		{
			Kind:        KindPatientName,
			Pattern:     regexp.MustCompile(`\b(?:Patient|Pt|Name)\s*:\s*([A-Z][a-z]+(?:\s+[A-Z][a-z]+)+)`),
			Replacement: "[PATIENTNAME_MASKED]",
		},
		{
			Kind:        KindDOB,
			Pattern:     regexp.MustCompile(`(?i)\b(?:DOB|date of birth|born(?: on)?)\s*:?\s*(\d{1,2}[/-]\d{1,2}[/-]\d{2,4})`),
			Replacement: "[DOB_MASKED]",
		},
		{
			Kind:        KindPhone,
			Pattern:     regexp.MustCompile(`\b(?:\+?1[-.\s])?\(?\d{3}\)?[-.\s]\d{3}[-.\s]?\d{4}\b`),
			Replacement: "[PHONE_MASKED]",
		},
		{
			Kind:        KindEmail,
			Pattern:     regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`),
			Replacement: "[EMAIL_MASKED]",
		},
		{
			Kind:        KindAccountNumber,
			Pattern:     regexp.MustCompile(`(?i)\b(?:account|acct|policy)\s*(?:number|no\.?)?\s*[:#]?\s*(\d{6,16})\b`),
			Replacement: "[ACCOUNTNUMBER_MASKED]",
		},
		{
			Kind:        KindFacilityContext,
			Pattern:     regexp.MustCompile(`\b(?:admitted to|transferred to|discharged from|treated at|seen at)\s+([A-Z][A-Za-z'&.-]*(?:\s+[A-Z][A-Za-z'&.-]*){0,5})`),
			Replacement: "[FACILITY_MASKED]",
		},
	}
}

// Detector applies an ordered, independent rule set over raw text. It holds
// no external state and is deterministic for identical input; Detect and
// Redact never fail, whatever the input.
type Detector struct {
	rules []Rule
}

// NewDetector creates a detector with the default rule registry.
func NewDetector() *Detector {
	return &Detector{rules: DefaultRules()}
}

// NewDetectorWithRules creates a detector with a custom rule registry.
// Rules run in the given order; order matters only for match reporting and
// overlap resolution, rules never compose.
func NewDetectorWithRules(rules []Rule) *Detector {
	return &Detector{rules: rules}
}

// span is one resolved PHI value span with its originating rule.
type span struct {
	start, end int
	ruleIdx    int
}

// valueSpans runs every rule over the original text independently and
// returns all value spans (capture group when present, full match
// otherwise). Overlaps across rules are all reported.
func (d *Detector) valueSpans(text string) []span {
	var spans []span

	for i, rule := range d.rules {
		for _, loc := range rule.Pattern.FindAllStringSubmatchIndex(text, -1) {
			start, end := loc[0], loc[1]
			if len(loc) >= 4 && loc[2] >= 0 {
				start, end = loc[2], loc[3]
			}

			if end > start {
				spans = append(spans, span{start: start, end: end, ruleIdx: i})
			}
		}
	}

	return spans
}

// Detect returns every PHI match found by every rule over the original text.
// Matches are ordered by rule, then position. Empty input returns nil.
func (d *Detector) Detect(text string) []Match {
	if text == "" {
		return nil
	}

	spans := d.valueSpans(text)

	matches := make([]Match, 0, len(spans))
	for _, s := range spans {
		matches = append(matches, Match{
			Kind:        d.rules[s.ruleIdx].Kind,
			MatchedText: text[s.start:s.end],
			ByteOffset:  s.start,
		})
	}

	return matches
}

// ContainsPHI reports whether any rule matches the text.
func (d *Detector) ContainsPHI(text string) bool {
	if text == "" {
		return false
	}

	for _, rule := range d.rules {
		if rule.Pattern.MatchString(text) {
			return true
		}
	}

	return false
}

// Redact replaces each matched PHI span with its kind's mask token, in
// position order, and returns the redacted text with all matches found.
// When spans from different rules overlap, the leftmost (then
// earliest-registered rule) wins for replacement; all matches are still
// reported. Empty input returns ("", nil).
func (d *Detector) Redact(text string) (string, []Match) {
	if text == "" {
		return "", nil
	}

	spans := d.valueSpans(text)
	if len(spans) == 0 {
		return text, nil
	}

	matches := make([]Match, 0, len(spans))
	for _, s := range spans {
		matches = append(matches, Match{
			Kind:        d.rules[s.ruleIdx].Kind,
			MatchedText: text[s.start:s.end],
			ByteOffset:  s.start,
		})
	}

	// Position order for splicing; earlier rule wins exact-offset ties.
	sort.SliceStable(spans, func(i, j int) bool {
		if spans[i].start != spans[j].start {
			return spans[i].start < spans[j].start
		}

		return spans[i].ruleIdx < spans[j].ruleIdx
	})

	var out []byte

	last := 0

	for _, s := range spans {
		if s.start < last {
			continue // overlapped by an already-replaced span
		}

		out = append(out, text[last:s.start]...)
		out = append(out, d.rules[s.ruleIdx].Replacement...)
		last = s.end
	}

	out = append(out, text[last:]...)

	return string(out), matches
}

// RedactedKinds returns the sorted, de-duplicated kind names of the given
// matches. Safe to persist: kinds carry no matched values.
func RedactedKinds(matches []Match) []string {
	if len(matches) == 0 {
		return nil
	}

	seen := make(map[string]bool, len(matches))
	for _, m := range matches {
		seen[string(m.Kind)] = true
	}

	kinds := make([]string, 0, len(seen))
	for k := range seen {
		kinds = append(kinds, k)
	}

	sort.Strings(kinds)

	return kinds
}

// CountByKind returns match counts per kind name, the only match-derived
// detail the audit trail is allowed to carry.
func CountByKind(matches []Match) map[string]int {
	if len(matches) == 0 {
		return nil
	}

	counts := make(map[string]int, len(matches))
	for _, m := range matches {
		counts[string(m.Kind)]++
	}

	return counts
}
