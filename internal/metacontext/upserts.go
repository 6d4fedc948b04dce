package metacontext

// This file holds the per-kind payload/snapshot shapes and the Store's
// Upsert/Get methods. Payloads represent the full desired state of an
// object: upsert overwrites every field with the payload's value, supplied
// or not. An empty optional field or a nil Tags clears the stored value, and
// an empty enum field (priority, status, severity, confidence) takes its
// default, so fields left out of an update are not kept from the previous
// version. CreatedAt is preserved across updates.

// GoalPayload is the input shape for UpsertGoal.
type GoalPayload struct {
	ID          string
	Title       string
	Description string
	Priority    Priority
	Status      Status
	Tags        []Tag
	Provenance  Provenance
}

// GoalSnapshot is a caller-safe, cloned view of a goal.
type GoalSnapshot struct {
	Common
	Title       string
	Description string
	Priority    Priority
	Status      Status
}

func snapshotGoal(g *goalItem) GoalSnapshot {
	return GoalSnapshot{
		Common:      Common{ID: g.ID, CreatedAt: g.CreatedAt, UpdatedAt: g.UpdatedAt, Tags: cloneTags(g.Tags), Provenance: clonedProvenance(g.Provenance)},
		Title:       g.Title,
		Description: g.Description,
		Priority:    g.Priority,
		Status:      g.Status,
	}
}

// UpsertGoal inserts or updates a goal. Returns ErrInvalidPayload if Title is empty.
func (s *Store) UpsertGoal(p GoalPayload) (GoalSnapshot, bool, error) {
	if p.ID == "" {
		return GoalSnapshot{}, false, newInvalidPayload("goal id is required")
	}
	if p.Title == "" {
		return GoalSnapshot{}, false, newInvalidPayload("goal.title is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	prov := p.Provenance
	touchProvenance(&prov, KindGoal, now)
	it, isNew := s.goals[p.ID]
	if !isNew {
		it = &goalItem{Common: Common{ID: p.ID, CreatedAt: now}}
		s.goals[p.ID] = it
	}
	it.Title = p.Title
	it.Description = p.Description
	it.Priority = normalizePriority(p.Priority)
	if p.Status == "" {
		it.Status = StatusActive
	} else {
		it.Status = p.Status
	}
	it.Tags = cloneTags(p.Tags)
	it.Provenance = prov
	it.UpdatedAt = now
	return snapshotGoal(it), !isNew, nil
}

// GetGoal returns a snapshot of a goal by id.
func (s *Store) GetGoal(id string) (GoalSnapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	it, ok := s.goals[id]
	if !ok {
		return GoalSnapshot{}, false
	}
	return snapshotGoal(it), true
}

// ConstraintPayload is the input shape for UpsertConstraint.
type ConstraintPayload struct {
	ID         string
	Statement  string
	Priority   Priority
	Status     Status
	Tags       []Tag
	Provenance Provenance
}

// ConstraintSnapshot is a caller-safe, cloned view of a constraint.
type ConstraintSnapshot struct {
	Common
	Statement string
	Priority  Priority
	Status    Status
}

func snapshotConstraint(c *constraintItem) ConstraintSnapshot {
	return ConstraintSnapshot{
		Common:    Common{ID: c.ID, CreatedAt: c.CreatedAt, UpdatedAt: c.UpdatedAt, Tags: cloneTags(c.Tags), Provenance: clonedProvenance(c.Provenance)},
		Statement: c.Statement,
		Priority:  c.Priority,
		Status:    c.Status,
	}
}

// UpsertConstraint inserts or updates a constraint. Returns ErrInvalidPayload if Statement is empty.
func (s *Store) UpsertConstraint(p ConstraintPayload) (ConstraintSnapshot, bool, error) {
	if p.ID == "" {
		return ConstraintSnapshot{}, false, newInvalidPayload("constraint id is required")
	}
	if p.Statement == "" {
		return ConstraintSnapshot{}, false, newInvalidPayload("constraint.statement is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	prov := p.Provenance
	touchProvenance(&prov, KindConstraint, now)
	it, isNew := s.constraints[p.ID]
	if !isNew {
		it = &constraintItem{Common: Common{ID: p.ID, CreatedAt: now}}
		s.constraints[p.ID] = it
	}
	it.Statement = p.Statement
	it.Priority = normalizePriority(p.Priority)
	if p.Status == "" {
		it.Status = StatusActive
	} else {
		it.Status = p.Status
	}
	it.Tags = cloneTags(p.Tags)
	it.Provenance = prov
	it.UpdatedAt = now
	return snapshotConstraint(it), !isNew, nil
}

// GetConstraint returns a snapshot of a constraint by id.
func (s *Store) GetConstraint(id string) (ConstraintSnapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	it, ok := s.constraints[id]
	if !ok {
		return ConstraintSnapshot{}, false
	}
	return snapshotConstraint(it), true
}

// AssumptionPayload is the input shape for UpsertAssumption.
type AssumptionPayload struct {
	ID         string
	Statement  string
	Confidence Confidence
	Tags       []Tag
	Provenance Provenance
}

// AssumptionSnapshot is a caller-safe, cloned view of an assumption.
type AssumptionSnapshot struct {
	Common
	Statement  string
	Confidence Confidence
}

func snapshotAssumption(a *assumptionItem) AssumptionSnapshot {
	return AssumptionSnapshot{
		Common:     Common{ID: a.ID, CreatedAt: a.CreatedAt, UpdatedAt: a.UpdatedAt, Tags: cloneTags(a.Tags), Provenance: clonedProvenance(a.Provenance)},
		Statement:  a.Statement,
		Confidence: a.Confidence,
	}
}

// UpsertAssumption inserts or updates an assumption. Returns ErrInvalidPayload if Statement is empty.
func (s *Store) UpsertAssumption(p AssumptionPayload) (AssumptionSnapshot, bool, error) {
	if p.ID == "" {
		return AssumptionSnapshot{}, false, newInvalidPayload("assumption id is required")
	}
	if p.Statement == "" {
		return AssumptionSnapshot{}, false, newInvalidPayload("assumption.statement is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	prov := p.Provenance
	touchProvenance(&prov, KindAssumption, now)
	it, isNew := s.assumptions[p.ID]
	if !isNew {
		it = &assumptionItem{Common: Common{ID: p.ID, CreatedAt: now}}
		s.assumptions[p.ID] = it
	}
	it.Statement = p.Statement
	it.Confidence = normalizeConfidence(p.Confidence)
	it.Tags = cloneTags(p.Tags)
	it.Provenance = prov
	it.UpdatedAt = now
	return snapshotAssumption(it), !isNew, nil
}

// GetAssumption returns a snapshot of an assumption by id.
func (s *Store) GetAssumption(id string) (AssumptionSnapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	it, ok := s.assumptions[id]
	if !ok {
		return AssumptionSnapshot{}, false
	}
	return snapshotAssumption(it), true
}

// EvidencePayload is the input shape for UpsertEvidence.
type EvidencePayload struct {
	ID         string
	Summary    string
	Detail     string
	Severity   Severity
	Confidence Confidence
	Tags       []Tag
	Provenance Provenance
}

// EvidenceSnapshot is a caller-safe, cloned view of evidence, including the derived Weight.
type EvidenceSnapshot struct {
	Common
	Summary    string
	Detail     string
	Severity   Severity
	Confidence Confidence
	Weight     float64
}

func snapshotEvidence(e *evidenceItem) EvidenceSnapshot {
	return EvidenceSnapshot{
		Common:     Common{ID: e.ID, CreatedAt: e.CreatedAt, UpdatedAt: e.UpdatedAt, Tags: cloneTags(e.Tags), Provenance: clonedProvenance(e.Provenance)},
		Summary:    e.Summary,
		Detail:     e.Detail,
		Severity:   e.Severity,
		Confidence: e.Confidence,
		Weight:     e.weightOf(),
	}
}

// UpsertEvidence inserts or updates evidence. Returns ErrInvalidPayload if Summary is empty.
func (s *Store) UpsertEvidence(p EvidencePayload) (EvidenceSnapshot, bool, error) {
	if p.ID == "" {
		return EvidenceSnapshot{}, false, newInvalidPayload("evidence id is required")
	}
	if p.Summary == "" {
		return EvidenceSnapshot{}, false, newInvalidPayload("evidence.summary is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	prov := p.Provenance
	touchProvenance(&prov, KindEvidence, now)
	it, isNew := s.evidence[p.ID]
	if !isNew {
		it = &evidenceItem{Common: Common{ID: p.ID, CreatedAt: now}}
		s.evidence[p.ID] = it
	}
	it.Summary = p.Summary
	it.Detail = p.Detail
	it.Severity = normalizeSeverity(p.Severity)
	it.Confidence = normalizeConfidence(p.Confidence)
	it.Tags = cloneTags(p.Tags)
	it.Provenance = prov
	it.UpdatedAt = now
	return snapshotEvidence(it), !isNew, nil
}

// GetEvidence returns a snapshot of evidence by id.
func (s *Store) GetEvidence(id string) (EvidenceSnapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	it, ok := s.evidence[id]
	if !ok {
		return EvidenceSnapshot{}, false
	}
	return snapshotEvidence(it), true
}

// QuestionPayload is the input shape for UpsertQuestion.
type QuestionPayload struct {
	ID         string
	Question   string
	Priority   Priority
	Status     Status
	Tags       []Tag
	Provenance Provenance
}

// QuestionSnapshot is a caller-safe, cloned view of a question.
type QuestionSnapshot struct {
	Common
	Question string
	Priority Priority
	Status   Status
}

func snapshotQuestion(q *questionItem) QuestionSnapshot {
	return QuestionSnapshot{
		Common:   Common{ID: q.ID, CreatedAt: q.CreatedAt, UpdatedAt: q.UpdatedAt, Tags: cloneTags(q.Tags), Provenance: clonedProvenance(q.Provenance)},
		Question: q.Question,
		Priority: q.Priority,
		Status:   q.Status,
	}
}

// UpsertQuestion inserts or updates a question. Returns ErrInvalidPayload if Question is empty.
func (s *Store) UpsertQuestion(p QuestionPayload) (QuestionSnapshot, bool, error) {
	if p.ID == "" {
		return QuestionSnapshot{}, false, newInvalidPayload("question id is required")
	}
	if p.Question == "" {
		return QuestionSnapshot{}, false, newInvalidPayload("question.question is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	prov := p.Provenance
	touchProvenance(&prov, KindQuestion, now)
	it, isNew := s.questions[p.ID]
	if !isNew {
		it = &questionItem{Common: Common{ID: p.ID, CreatedAt: now}}
		s.questions[p.ID] = it
	}
	it.Question = p.Question
	it.Priority = normalizePriority(p.Priority)
	if p.Status == "" {
		it.Status = StatusOpen
	} else {
		it.Status = p.Status
	}
	it.Tags = cloneTags(p.Tags)
	it.Provenance = prov
	it.UpdatedAt = now
	return snapshotQuestion(it), !isNew, nil
}

// GetQuestion returns a snapshot of a question by id.
func (s *Store) GetQuestion(id string) (QuestionSnapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	it, ok := s.questions[id]
	if !ok {
		return QuestionSnapshot{}, false
	}
	return snapshotQuestion(it), true
}

// DecisionPayload is the input shape for UpsertDecision.
type DecisionPayload struct {
	ID         string
	Statement  string
	Rationale  string
	Status     Status
	Tags       []Tag
	Provenance Provenance
}

// DecisionSnapshot is a caller-safe, cloned view of a decision.
type DecisionSnapshot struct {
	Common
	Statement string
	Rationale string
	Status    Status
}

func snapshotDecision(d *decisionItem) DecisionSnapshot {
	return DecisionSnapshot{
		Common:    Common{ID: d.ID, CreatedAt: d.CreatedAt, UpdatedAt: d.UpdatedAt, Tags: cloneTags(d.Tags), Provenance: clonedProvenance(d.Provenance)},
		Statement: d.Statement,
		Rationale: d.Rationale,
		Status:    d.Status,
	}
}

// UpsertDecision inserts or updates a decision. Returns ErrInvalidPayload if Statement is empty.
func (s *Store) UpsertDecision(p DecisionPayload) (DecisionSnapshot, bool, error) {
	if p.ID == "" {
		return DecisionSnapshot{}, false, newInvalidPayload("decision id is required")
	}
	if p.Statement == "" {
		return DecisionSnapshot{}, false, newInvalidPayload("decision.statement is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	prov := p.Provenance
	touchProvenance(&prov, KindDecision, now)
	it, isNew := s.decisions[p.ID]
	if !isNew {
		it = &decisionItem{Common: Common{ID: p.ID, CreatedAt: now}}
		s.decisions[p.ID] = it
	}
	it.Statement = p.Statement
	it.Rationale = p.Rationale
	if p.Status == "" {
		it.Status = StatusActive
	} else {
		it.Status = p.Status
	}
	it.Tags = cloneTags(p.Tags)
	it.Provenance = prov
	it.UpdatedAt = now
	return snapshotDecision(it), !isNew, nil
}

// GetDecision returns a snapshot of a decision by id.
func (s *Store) GetDecision(id string) (DecisionSnapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	it, ok := s.decisions[id]
	if !ok {
		return DecisionSnapshot{}, false
	}
	return snapshotDecision(it), true
}
