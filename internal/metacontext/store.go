package metacontext

import (
	"sync"
	"time"
)

// record is the uniform view over a knowledge object used by generic engine
// code (scoring, tag matching, summarizing, lane refresh). Each kind's
// concrete item type implements it; this is the "tagged variants" dispatch
// point instead of a type hierarchy.
type record interface {
	ref() Ref
	tagsOf() []Tag
	provenanceOf() Provenance
	createdAtOf() time.Time
	updatedAtOf() time.Time
	isActiveRecord() bool
	summaryOf() string
	weightOf() float64
	priorityOf() (Priority, bool)
	severityOf() (Severity, bool)
	confidenceOf() (Confidence, bool)
	statusOf() (Status, bool)
	setStatusOf(Status, time.Time) bool
}

// Store is the knowledge store: typed maps from id -> object for each of
// the six kinds.
type Store struct {
	mu sync.RWMutex

	goals       map[string]*goalItem
	constraints map[string]*constraintItem
	assumptions map[string]*assumptionItem
	evidence    map[string]*evidenceItem
	questions   map[string]*questionItem
	decisions   map[string]*decisionItem

	now clock
}

func newStore(now clock) *Store {
	return &Store{
		goals:       make(map[string]*goalItem),
		constraints: make(map[string]*constraintItem),
		assumptions: make(map[string]*assumptionItem),
		evidence:    make(map[string]*evidenceItem),
		questions:   make(map[string]*questionItem),
		decisions:   make(map[string]*decisionItem),
		now:         now,
	}
}

// recordLocked looks up a ref's record. Caller must hold s.mu (read or write).
func (s *Store) recordLocked(ref Ref) (record, bool) {
	switch ref.Kind {
	case KindGoal:
		it, ok := s.goals[ref.ID]
		if !ok {
			return nil, false
		}
		return it, true
	case KindConstraint:
		it, ok := s.constraints[ref.ID]
		if !ok {
			return nil, false
		}
		return it, true
	case KindAssumption:
		it, ok := s.assumptions[ref.ID]
		if !ok {
			return nil, false
		}
		return it, true
	case KindEvidence:
		it, ok := s.evidence[ref.ID]
		if !ok {
			return nil, false
		}
		return it, true
	case KindQuestion:
		it, ok := s.questions[ref.ID]
		if !ok {
			return nil, false
		}
		return it, true
	case KindDecision:
		it, ok := s.decisions[ref.ID]
		if !ok {
			return nil, false
		}
		return it, true
	default:
		return nil, false
	}
}

// recordFor is the public-to-package lookup used by lanes, scoring, and the
// synthesizer. It returns a snapshot-safe record is NOT guaranteed; callers
// that retain fields must clone them (tags/provenance) themselves.
func (s *Store) recordFor(ref Ref) (record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.recordLocked(ref)
}

// Exists reports whether ref resolves to any object, active or not.
func (s *Store) Exists(ref Ref) bool {
	_, ok := s.recordFor(ref)
	return ok
}

// IsActive reports true iff ref exists and satisfies the activeness rule.
func (s *Store) IsActive(ref Ref) bool {
	r, ok := s.recordFor(ref)
	if !ok {
		return false
	}
	return r.isActiveRecord()
}

// Tags returns a clone of the tags attached to ref.
func (s *Store) Tags(ref Ref) ([]Tag, bool) {
	r, ok := s.recordFor(ref)
	if !ok {
		return nil, false
	}
	return cloneTags(r.tagsOf()), true
}

// Summarize returns the primary human-readable field of ref, or "" if it does not exist.
func (s *Store) Summarize(ref Ref) string {
	r, ok := s.recordFor(ref)
	if !ok {
		return ""
	}
	return r.summaryOf()
}

// Weight returns evidence.weight for ref; ok is false for non-evidence refs or missing refs.
func (s *Store) Weight(ref Ref) (float64, bool) {
	r, ok := s.recordFor(ref)
	if !ok || ref.Kind != KindEvidence {
		return 0, false
	}
	return r.weightOf(), true
}

// AllIDs returns every id registered for kind, active or not, in no particular order.
func (s *Store) AllIDs(kind Kind) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	switch kind {
	case KindGoal:
		return idsOf(s.goals)
	case KindConstraint:
		return idsOf(s.constraints)
	case KindAssumption:
		return idsOf(s.assumptions)
	case KindEvidence:
		return idsOf(s.evidence)
	case KindQuestion:
		return idsOf(s.questions)
	case KindDecision:
		return idsOf(s.decisions)
	default:
		return nil
	}
}

func idsOf[T any](m map[string]T) []string {
	out := make([]string, 0, len(m))
	for id := range m {
		out = append(out, id)
	}
	return out
}

// activeRefs returns every active ref across all kinds, used by lane candidate enumeration.
func (s *Store) activeRefs() []Ref {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Ref
	for id, it := range s.goals {
		if it.isActiveRecord() {
			out = append(out, Ref{KindGoal, id})
		}
	}
	for id, it := range s.constraints {
		if it.isActiveRecord() {
			out = append(out, Ref{KindConstraint, id})
		}
	}
	for id, it := range s.assumptions {
		if it.isActiveRecord() {
			out = append(out, Ref{KindAssumption, id})
		}
	}
	for id, it := range s.evidence {
		if it.isActiveRecord() {
			out = append(out, Ref{KindEvidence, id})
		}
	}
	for id, it := range s.questions {
		if it.isActiveRecord() {
			out = append(out, Ref{KindQuestion, id})
		}
	}
	for id, it := range s.decisions {
		if it.isActiveRecord() {
			out = append(out, Ref{KindDecision, id})
		}
	}
	return out
}

// SetStatus transitions ref to newStatus. No-op (and no event) if unchanged.
// Returns ErrUnknownRef if ref does not exist, or ErrInvalidPayload for a kind with no status field.
func (s *Store) SetStatus(ref Ref, newStatus Status) (changed bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.recordLocked(ref)
	if !ok {
		return false, newUnknownRef(ref)
	}
	if _, hasStatus := r.statusOf(); !hasStatus {
		return false, newInvalidPayload("%s has no status field", ref.Kind)
	}
	return r.setStatusOf(newStatus, s.now()), nil
}

func touchProvenance(p *Provenance, kind Kind, now time.Time) {
	if p.Source == "" {
		p.Source = defaultSourceFor(kind)
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
}

func normalizePriority(p Priority) Priority {
	if p == "" {
		return defaultPriority
	}
	return p
}

func normalizeSeverity(s Severity) Severity {
	if s == "" {
		return defaultSeverity
	}
	return s
}

func normalizeConfidence(c Confidence) Confidence {
	if c == "" {
		return defaultConfidence
	}
	return c
}
