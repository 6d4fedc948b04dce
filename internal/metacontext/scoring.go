package metacontext

import (
	"math"
	"time"
)

// recencyHalfLife is tau in recencyValue's e^{-delta/tau} decay, fixed at 1
// hour. It is a package constant: WindowPolicy has no field for it, so
// callers cannot change it per lane.
const recencyHalfLife = time.Hour

// recencyValue maps an update timestamp to a monotonically decreasing value
// in [0, 1]: newer objects score at least as high as older ones, and two
// objects with the same UpdatedAt score identically.
func recencyValue(updatedAt time.Time, now time.Time) float64 {
	if updatedAt.IsZero() {
		return 0
	}
	age := now.Sub(updatedAt)
	if age < 0 {
		age = 0
	}
	return math.Exp(-age.Seconds() / recencyHalfLife.Seconds())
}

// scoreInput is the pure data scoring needs, extracted once from a record so
// the scoring function itself has no store dependency.
type scoreInput struct {
	Active        bool
	Priority      Priority
	HasPriority   bool
	Severity      Severity
	HasSeverity   bool
	Confidence    Confidence
	HasConfidence bool
	UpdatedAt     time.Time
}

func scoreInputFromRecord(r record) scoreInput {
	priority, hasPriority := r.priorityOf()
	severity, hasSeverity := r.severityOf()
	confidence, hasConfidence := r.confidenceOf()
	return scoreInput{
		Active:        r.isActiveRecord(),
		Priority:      priority,
		HasPriority:   hasPriority,
		Severity:      severity,
		HasSeverity:   hasSeverity,
		Confidence:    confidence,
		HasConfidence: hasConfidence,
		UpdatedAt:     r.updatedAtOf(),
	}
}

// score is the pure scoring function:
//
//	if pinned:           return policy.WPinnedBoost
//	if not active:       return -Inf
//	else:                P*WPriority + S*WSeverity + C*WConfidence + R*WRecency
//
// Objects whose kind has no priority/severity/confidence field contribute 0
// for that term instead of a defaulted value.
func score(policy WindowPolicy, in scoreInput, pinned bool, now time.Time) float64 {
	if pinned {
		return policy.WPinnedBoost
	}
	if !in.Active {
		return math.Inf(-1)
	}
	var total float64
	if in.HasPriority {
		total += priorityValue(in.Priority) * policy.WPriority
	}
	if in.HasSeverity {
		total += severityValue(in.Severity) * policy.WSeverity
	}
	if in.HasConfidence {
		total += confidenceValue(in.Confidence) * policy.WConfidence
	}
	total += recencyValue(in.UpdatedAt, now) * policy.WRecency
	return total
}
