package metacontext

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func frozenClock(t time.Time) clock {
	return func() time.Time { return t }
}

func TestUpsertGoal_CreatesThenUpdatesPreservingCreatedAt(t *testing.T) {
	t.Parallel()
	created := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	s := newStore(frozenClock(created))

	snap, isNew, err := s.UpsertGoal(GoalPayload{ID: "g1", Title: "Ship v1", Priority: PriorityP0})
	require.NoError(t, err)
	assert.True(t, isNew)
	assert.Equal(t, created, snap.CreatedAt)
	assert.Equal(t, created, snap.UpdatedAt)
	assert.Equal(t, StatusActive, snap.Status)

	updated := created.Add(time.Hour)
	s.now = frozenClock(updated)
	snap2, isNew2, err := s.UpsertGoal(GoalPayload{ID: "g1", Title: "Ship v1.1", Priority: PriorityP1})
	require.NoError(t, err)
	assert.False(t, isNew2)
	assert.Equal(t, created, snap2.CreatedAt, "CreatedAt must survive an update")
	assert.Equal(t, updated, snap2.UpdatedAt)
	assert.Equal(t, "Ship v1.1", snap2.Title)
	assert.Equal(t, PriorityP1, snap2.Priority)
}

func TestUpsertGoal_RequiresIDAndTitle(t *testing.T) {
	t.Parallel()
	s := newStore(systemClock)

	_, _, err := s.UpsertGoal(GoalPayload{Title: "no id"})
	assert.ErrorIs(t, err, ErrInvalidPayload)

	_, _, err = s.UpsertGoal(GoalPayload{ID: "g1"})
	assert.ErrorIs(t, err, ErrInvalidPayload)
}

func TestUpsertGoal_DefaultsMissingEnumFields(t *testing.T) {
	t.Parallel()
	s := newStore(systemClock)

	snap, _, err := s.UpsertGoal(GoalPayload{ID: "g1", Title: "Ship v1"})
	require.NoError(t, err)
	assert.Equal(t, defaultPriority, snap.Priority)
	assert.Equal(t, StatusActive, snap.Status)
}

func TestUpsertQuestion_DefaultsToOpenStatus(t *testing.T) {
	t.Parallel()
	s := newStore(systemClock)

	snap, _, err := s.UpsertQuestion(QuestionPayload{ID: "q1", Question: "Is this safe?"})
	require.NoError(t, err)
	assert.Equal(t, StatusOpen, snap.Status)
	assert.True(t, s.IsActive(Ref{Kind: KindQuestion, ID: "q1"}))
}

func TestUpsertQuestion_DoneIsNotActive(t *testing.T) {
	t.Parallel()
	s := newStore(systemClock)

	_, _, err := s.UpsertQuestion(QuestionPayload{ID: "q1", Question: "Is this safe?", Status: StatusDone})
	require.NoError(t, err)
	assert.False(t, s.IsActive(Ref{Kind: KindQuestion, ID: "q1"}))
}

func TestEvidenceWeight_IsSeverityTimesConfidenceFactor(t *testing.T) {
	t.Parallel()
	s := newStore(systemClock)

	snap, _, err := s.UpsertEvidence(EvidencePayload{
		ID:         "e1",
		Summary:    "logs show a spike",
		Severity:   SeverityHigh,
		Confidence: ConfidenceHigh,
	})
	require.NoError(t, err)
	// severityWeight(high)=3, confidenceFactor(high)=1.3 -> 3.9: weightOf is a
	// pure product.
	assert.InDelta(t, 3*1.3, snap.Weight, 1e-9)

	w, ok := s.Weight(Ref{Kind: KindEvidence, ID: "e1"})
	require.True(t, ok)
	assert.InDelta(t, 3.9, w, 1e-9)
}

func TestEvidenceWeight_CriticalHighIsFourTimesOnePointThree(t *testing.T) {
	t.Parallel()
	s := newStore(systemClock)

	snap, _, err := s.UpsertEvidence(EvidencePayload{
		ID:         "e1",
		Summary:    "critical finding",
		Severity:   SeverityCritical,
		Confidence: ConfidenceHigh,
	})
	require.NoError(t, err)
	assert.InDelta(t, 4*1.3, snap.Weight, 1e-9)
}

func TestAssumptionAndEvidence_AreAlwaysActive(t *testing.T) {
	t.Parallel()
	s := newStore(systemClock)

	_, _, err := s.UpsertAssumption(AssumptionPayload{ID: "a1", Statement: "users are authenticated"})
	require.NoError(t, err)
	_, _, err = s.UpsertEvidence(EvidencePayload{ID: "e1", Summary: "observed in prod"})
	require.NoError(t, err)

	assert.True(t, s.IsActive(Ref{Kind: KindAssumption, ID: "a1"}))
	assert.True(t, s.IsActive(Ref{Kind: KindEvidence, ID: "e1"}))

	_, err = s.SetStatus(Ref{Kind: KindAssumption, ID: "a1"}, StatusDone)
	assert.ErrorIs(t, err, ErrInvalidPayload, "assumptions have no status field")
}

func TestSetStatus_NoOpWhenUnchanged(t *testing.T) {
	t.Parallel()
	s := newStore(systemClock)
	_, _, err := s.UpsertGoal(GoalPayload{ID: "g1", Title: "Ship v1"})
	require.NoError(t, err)

	changed, err := s.SetStatus(Ref{Kind: KindGoal, ID: "g1"}, StatusActive)
	require.NoError(t, err)
	assert.False(t, changed)

	changed, err = s.SetStatus(Ref{Kind: KindGoal, ID: "g1"}, StatusDone)
	require.NoError(t, err)
	assert.True(t, changed)
}

func TestSetStatus_UnknownRef(t *testing.T) {
	t.Parallel()
	s := newStore(systemClock)
	_, err := s.SetStatus(Ref{Kind: KindGoal, ID: "missing"}, StatusDone)
	assert.ErrorIs(t, err, ErrUnknownRef)
}

func TestTagsAreClonedOnTheWayOut(t *testing.T) {
	t.Parallel()
	s := newStore(systemClock)
	_, _, err := s.UpsertGoal(GoalPayload{ID: "g1", Title: "Ship v1", Tags: []Tag{NewTag("team", "payments")}})
	require.NoError(t, err)

	tags, ok := s.Tags(Ref{Kind: KindGoal, ID: "g1"})
	require.True(t, ok)
	tags[0] = NewTag("team", "mutated")

	tags2, ok := s.Tags(Ref{Kind: KindGoal, ID: "g1"})
	require.True(t, ok)
	assert.Equal(t, "payments", tags2[0].Value, "mutating a returned tag slice must not affect the store")
}
