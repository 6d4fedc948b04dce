package metacontext

import "time"

// goalItem is the store's internal record for a KindGoal object.
type goalItem struct {
	Common
	Title       string
	Description string
	Priority    Priority
	Status      Status
}

func (g *goalItem) ref() Ref                           { return Ref{KindGoal, g.ID} }
func (g *goalItem) tagsOf() []Tag                       { return g.Tags }
func (g *goalItem) provenanceOf() Provenance            { return g.Provenance }
func (g *goalItem) createdAtOf() time.Time              { return g.CreatedAt }
func (g *goalItem) updatedAtOf() time.Time              { return g.UpdatedAt }
func (g *goalItem) isActiveRecord() bool                { return isActiveStatus(g.Status) }
func (g *goalItem) summaryOf() string                   { return g.Title }
func (g *goalItem) weightOf() float64                   { return 0 }
func (g *goalItem) priorityOf() (Priority, bool)        { return g.Priority, true }
func (g *goalItem) severityOf() (Severity, bool)        { return "", false }
func (g *goalItem) confidenceOf() (Confidence, bool)    { return "", false }
func (g *goalItem) statusOf() (Status, bool)            { return g.Status, true }
func (g *goalItem) setStatusOf(s Status, now time.Time) bool {
	if g.Status == s {
		return false
	}
	g.Status = s
	g.UpdatedAt = now
	return true
}

// constraintItem is the store's internal record for a KindConstraint object.
type constraintItem struct {
	Common
	Statement string
	Priority  Priority
	Status    Status
}

func (c *constraintItem) ref() Ref                        { return Ref{KindConstraint, c.ID} }
func (c *constraintItem) tagsOf() []Tag                    { return c.Tags }
func (c *constraintItem) provenanceOf() Provenance         { return c.Provenance }
func (c *constraintItem) createdAtOf() time.Time           { return c.CreatedAt }
func (c *constraintItem) updatedAtOf() time.Time           { return c.UpdatedAt }
func (c *constraintItem) isActiveRecord() bool             { return isActiveStatus(c.Status) }
func (c *constraintItem) summaryOf() string                { return c.Statement }
func (c *constraintItem) weightOf() float64                { return 0 }
func (c *constraintItem) priorityOf() (Priority, bool)     { return c.Priority, true }
func (c *constraintItem) severityOf() (Severity, bool)     { return "", false }
func (c *constraintItem) confidenceOf() (Confidence, bool) { return "", false }
func (c *constraintItem) statusOf() (Status, bool)         { return c.Status, true }
func (c *constraintItem) setStatusOf(s Status, now time.Time) bool {
	if c.Status == s {
		return false
	}
	c.Status = s
	c.UpdatedAt = now
	return true
}

// assumptionItem is the store's internal record for a KindAssumption object.
// Assumptions have no status field and are always active.
type assumptionItem struct {
	Common
	Statement  string
	Confidence Confidence
}

func (a *assumptionItem) ref() Ref                        { return Ref{KindAssumption, a.ID} }
func (a *assumptionItem) tagsOf() []Tag                    { return a.Tags }
func (a *assumptionItem) provenanceOf() Provenance         { return a.Provenance }
func (a *assumptionItem) createdAtOf() time.Time           { return a.CreatedAt }
func (a *assumptionItem) updatedAtOf() time.Time           { return a.UpdatedAt }
func (a *assumptionItem) isActiveRecord() bool             { return true }
func (a *assumptionItem) summaryOf() string                { return a.Statement }
func (a *assumptionItem) weightOf() float64                { return 0 }
func (a *assumptionItem) priorityOf() (Priority, bool)     { return "", false }
func (a *assumptionItem) severityOf() (Severity, bool)     { return "", false }
func (a *assumptionItem) confidenceOf() (Confidence, bool) { return a.Confidence, true }
func (a *assumptionItem) statusOf() (Status, bool)         { return "", false }
func (a *assumptionItem) setStatusOf(Status, time.Time) bool {
	return false
}

// evidenceItem is the store's internal record for a KindEvidence object.
// Evidence has no status field and is always active.
type evidenceItem struct {
	Common
	Summary    string
	Detail     string
	Severity   Severity
	Confidence Confidence
}

func (e *evidenceItem) ref() Ref                        { return Ref{KindEvidence, e.ID} }
func (e *evidenceItem) tagsOf() []Tag                    { return e.Tags }
func (e *evidenceItem) provenanceOf() Provenance         { return e.Provenance }
func (e *evidenceItem) createdAtOf() time.Time           { return e.CreatedAt }
func (e *evidenceItem) updatedAtOf() time.Time           { return e.UpdatedAt }
func (e *evidenceItem) isActiveRecord() bool             { return true }
func (e *evidenceItem) summaryOf() string                { return e.Summary }
func (e *evidenceItem) weightOf() float64                { return severityWeight(e.Severity) * confidenceFactor(e.Confidence) }
func (e *evidenceItem) priorityOf() (Priority, bool)     { return "", false }
func (e *evidenceItem) severityOf() (Severity, bool)     { return e.Severity, true }
func (e *evidenceItem) confidenceOf() (Confidence, bool) { return e.Confidence, true }
func (e *evidenceItem) statusOf() (Status, bool)         { return "", false }
func (e *evidenceItem) setStatusOf(Status, time.Time) bool {
	return false
}

// questionItem is the store's internal record for a KindQuestion object.
// Its status defaults to "open", treated identically to "active" by isActiveStatus.
type questionItem struct {
	Common
	Question string
	Priority Priority
	Status   Status
}

func (q *questionItem) ref() Ref                        { return Ref{KindQuestion, q.ID} }
func (q *questionItem) tagsOf() []Tag                    { return q.Tags }
func (q *questionItem) provenanceOf() Provenance         { return q.Provenance }
func (q *questionItem) createdAtOf() time.Time           { return q.CreatedAt }
func (q *questionItem) updatedAtOf() time.Time           { return q.UpdatedAt }
func (q *questionItem) isActiveRecord() bool             { return isActiveStatus(q.Status) }
func (q *questionItem) summaryOf() string                { return q.Question }
func (q *questionItem) weightOf() float64                { return 0 }
func (q *questionItem) priorityOf() (Priority, bool)     { return q.Priority, true }
func (q *questionItem) severityOf() (Severity, bool)     { return "", false }
func (q *questionItem) confidenceOf() (Confidence, bool) { return "", false }
func (q *questionItem) statusOf() (Status, bool)         { return q.Status, true }
func (q *questionItem) setStatusOf(s Status, now time.Time) bool {
	if q.Status == s {
		return false
	}
	q.Status = s
	q.UpdatedAt = now
	return true
}

// decisionItem is the store's internal record for a KindDecision object.
type decisionItem struct {
	Common
	Statement string
	Rationale string
	Status    Status
}

func (d *decisionItem) ref() Ref                        { return Ref{KindDecision, d.ID} }
func (d *decisionItem) tagsOf() []Tag                    { return d.Tags }
func (d *decisionItem) provenanceOf() Provenance         { return d.Provenance }
func (d *decisionItem) createdAtOf() time.Time           { return d.CreatedAt }
func (d *decisionItem) updatedAtOf() time.Time           { return d.UpdatedAt }
func (d *decisionItem) isActiveRecord() bool             { return isActiveStatus(d.Status) }
func (d *decisionItem) summaryOf() string                { return d.Statement }
func (d *decisionItem) weightOf() float64                { return 0 }
func (d *decisionItem) priorityOf() (Priority, bool)     { return "", false }
func (d *decisionItem) severityOf() (Severity, bool)     { return "", false }
func (d *decisionItem) confidenceOf() (Confidence, bool) { return "", false }
func (d *decisionItem) statusOf() (Status, bool)         { return d.Status, true }
func (d *decisionItem) setStatusOf(s Status, now time.Time) bool {
	if d.Status == s {
		return false
	}
	d.Status = s
	d.UpdatedAt = now
	return true
}
