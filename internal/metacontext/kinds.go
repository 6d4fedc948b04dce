// Package metacontext implements the Active Meta-Context engine: a curated,
// budgeted working set of knowledge objects that a large language model is
// allowed to see for a single task. See SPEC_FULL.md for the full design.
package metacontext

import "time"

// Kind identifies one of the six first-class knowledge object types.
type Kind string

const (
	KindGoal       Kind = "goal"
	KindConstraint Kind = "constraint"
	KindAssumption Kind = "assumption"
	KindEvidence   Kind = "evidence"
	KindQuestion   Kind = "question"
	KindDecision   Kind = "decision"
)

var allKinds = [...]Kind{KindGoal, KindConstraint, KindAssumption, KindEvidence, KindQuestion, KindDecision}

// Priority ranks goals, constraints, and questions. p0 is the highest.
type Priority string

const (
	PriorityP0 Priority = "p0"
	PriorityP1 Priority = "p1"
	PriorityP2 Priority = "p2"
	PriorityP3 Priority = "p3"

	defaultPriority = PriorityP2
)

// priorityValue maps a priority to its numeric weight: p0=3 .. p3=0.
func priorityValue(p Priority) float64 {
	switch p {
	case PriorityP0:
		return 3
	case PriorityP1:
		return 2
	case PriorityP2:
		return 1
	case PriorityP3:
		return 0
	default:
		return priorityValue(defaultPriority)
	}
}

// Severity ranks evidence impact.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"

	defaultSeverity = SeverityMedium
)

func severityValue(s Severity) float64 {
	switch s {
	case SeverityLow:
		return 1
	case SeverityMedium:
		return 2
	case SeverityHigh:
		return 3
	case SeverityCritical:
		return 4
	default:
		return severityValue(defaultSeverity)
	}
}

// severityWeight feeds evidence.weight. It uses the same 1..4 values as
// severityValue, kept as a separate function from the scoring lookup.
func severityWeight(s Severity) float64 {
	switch s {
	case SeverityLow:
		return 1
	case SeverityMedium:
		return 2
	case SeverityHigh:
		return 3
	case SeverityCritical:
		return 4
	default:
		return severityWeight(defaultSeverity)
	}
}

// Confidence ranks how sure the engine should be about an assumption or piece of evidence.
type Confidence string

const (
	ConfidenceLow    Confidence = "low"
	ConfidenceMedium Confidence = "medium"
	ConfidenceHigh   Confidence = "high"

	defaultConfidence = ConfidenceMedium
)

func confidenceValue(c Confidence) float64 {
	switch c {
	case ConfidenceLow:
		return 1
	case ConfidenceMedium:
		return 2
	case ConfidenceHigh:
		return 3
	default:
		return confidenceValue(defaultConfidence)
	}
}

// confidenceFactor feeds evidence.weight (distinct scale from confidenceValue).
func confidenceFactor(c Confidence) float64 {
	switch c {
	case ConfidenceLow:
		return 0.7
	case ConfidenceMedium:
		return 1.0
	case ConfidenceHigh:
		return 1.3
	default:
		return confidenceFactor(defaultConfidence)
	}
}

// Status is the lifecycle state of a kind that has one. Evidence and
// assumption have no status field and are always active.
type Status string

const (
	StatusActive   Status = "active"
	StatusOpen     Status = "open" // question's synonym for active
	StatusDone     Status = "done"
	StatusArchived Status = "archived"
)

// isActiveStatus reports whether status keeps an object in the active set:
// active iff not done/archived.
func isActiveStatus(s Status) bool {
	switch s {
	case StatusDone, StatusArchived:
		return false
	default:
		return true
	}
}

// Source identifies who or what asserted a knowledge object.
type Source string

const (
	SourceUser      Source = "user"
	SourceSystem    Source = "system"
	SourceInference Source = "inference"
	SourceWeb       Source = "web"
	SourceTool      Source = "tool"
)

// Ref is the (kind, id) pair that uniquely identifies a knowledge object.
type Ref struct {
	Kind Kind
	ID   string
}

// Tag is a structural key/optional-value label attached to a knowledge object.
// HasValue distinguishes a key-only tag from one with an explicit (possibly
// empty-string) value.
type Tag struct {
	Key      string
	Value    string
	HasValue bool
}

// NewTag builds a tag with an explicit value.
func NewTag(key, value string) Tag { return Tag{Key: key, Value: value, HasValue: true} }

// NewKeyTag builds a key-only tag (matches any value of that key).
func NewKeyTag(key string) Tag { return Tag{Key: key} }

func cloneTags(in []Tag) []Tag {
	if in == nil {
		return nil
	}
	out := make([]Tag, len(in))
	copy(out, in)
	return out
}

// Provenance records who asserted a knowledge object and, optionally, the
// upstream ref it was derived from.
type Provenance struct {
	Source    Source
	Ref       *Ref
	CreatedAt time.Time
}

func clonedProvenance(p Provenance) Provenance {
	if p.Ref != nil {
		r := *p.Ref
		p.Ref = &r
	}
	return p
}

func defaultSourceFor(k Kind) Source {
	if k == KindAssumption {
		return SourceInference
	}
	return SourceUser
}

// Common holds the fields shared by every knowledge object kind.
type Common struct {
	ID         string
	CreatedAt  time.Time
	UpdatedAt  time.Time
	Tags       []Tag
	Provenance Provenance
}
