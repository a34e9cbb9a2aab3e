// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "strings"

// DepletionKind is the fixed Kind of every Depletion record.
const DepletionKind = "depletion"

// Monitor lists what to watch for while a depletion is suspected.
type Monitor struct {
	LabTests []string `json:"labTests" yaml:"lab_tests"`
	Symptoms []string `json:"symptoms" yaml:"symptoms"`
}

// Depletion is a nutrient-loss side effect attributed to one or more
// selected agents.
type Depletion struct {
	ID string `json:"id" yaml:"id"`

	// NutrientName is the depleted nutrient (e.g. "Coenzyme Q10").
	NutrientName string `json:"labelName" yaml:"nutrient_name"`

	// SourceAgents lists the selected items that cause the depletion, in
	// the order the server reported them.
	SourceAgents []string `json:"sourceAgents" yaml:"source_agents"`

	Monitor Monitor `json:"monitor" yaml:"monitor"`

	// Kind is always DepletionKind.
	Kind string `json:"kind" yaml:"kind"`

	// ConfidenceFlag marks depletions the source flags as well established.
	ConfidenceFlag bool `json:"confidenceFlag" yaml:"confidence_flag"`
}

// EvidenceGrade rates the strength of evidence behind an optimization.
// The empty grade means the source did not say.
type EvidenceGrade string

const (
	GradeA       EvidenceGrade = "A"
	GradeB       EvidenceGrade = "B"
	GradeC       EvidenceGrade = "C"
	GradeD       EvidenceGrade = "D"
	GradeUnknown EvidenceGrade = ""
)

// ParseEvidenceGrade accepts "A", "b", "Grade C" and similar spellings.
func ParseEvidenceGrade(s string) EvidenceGrade {
	s = strings.ToUpper(strings.TrimSpace(s))
	s = strings.TrimSpace(strings.TrimPrefix(s, "GRADE"))
	switch s {
	case "A":
		return GradeA
	case "B":
		return GradeB
	case "C":
		return GradeC
	case "D":
		return GradeD
	default:
		return GradeUnknown
	}
}

// Optimization is an actionable timing or dosage recommendation attributed
// to one or more selected agents.
type Optimization struct {
	ID           string   `json:"id" yaml:"id"`
	Name         string   `json:"name" yaml:"name"`
	SourceAgents []string `json:"sourceAgents" yaml:"source_agents"`
	Advice       string   `json:"advice" yaml:"advice"`

	AlertSymptoms []string      `json:"alertSymptoms" yaml:"alert_symptoms"`
	EvidenceGrade EvidenceGrade `json:"evidenceGrade" yaml:"evidence_grade"`

	// Slug is the dedup key; unique within one normalized result.
	Slug string `json:"slug" yaml:"slug"`

	DosageHint *string `json:"dosageHint,omitempty" yaml:"dosage_hint,omitempty"`
}
