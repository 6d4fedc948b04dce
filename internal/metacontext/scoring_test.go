package metacontext

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestScore_PinnedAlwaysWins(t *testing.T) {
	t.Parallel()
	policy := DefaultLaneWindowPolicy()
	in := scoreInput{Active: false}
	got := score(policy, in, true, time.Now())
	assert.Equal(t, policy.WPinnedBoost, got)
}

func TestScore_InactiveScoresNegativeInfinity(t *testing.T) {
	t.Parallel()
	policy := DefaultLaneWindowPolicy()
	in := scoreInput{Active: false}
	got := score(policy, in, false, time.Now())
	assert.True(t, got < 0 && !(got > -1e300), "expected -Inf, got %v", got)
}

func TestScore_FieldAbsentContributesZero(t *testing.T) {
	t.Parallel()
	policy := DefaultLaneWindowPolicy()
	now := time.Now()

	withField := scoreInput{Active: true, HasPriority: true, Priority: PriorityP0, UpdatedAt: now}
	withoutField := scoreInput{Active: true, HasPriority: false, UpdatedAt: now}

	scoredWith := score(policy, withField, false, now)
	scoredWithout := score(policy, withoutField, false, now)
	assert.Greater(t, scoredWith, scoredWithout)
}

func TestScore_NewerObjectsScoreHigherAllElseEqual(t *testing.T) {
	t.Parallel()
	policy := DefaultLaneWindowPolicy()
	now := time.Now()

	newer := scoreInput{Active: true, UpdatedAt: now}
	older := scoreInput{Active: true, UpdatedAt: now.Add(-2 * time.Hour)}

	assert.Greater(t, score(policy, newer, false, now), score(policy, older, false, now))
}

func TestScore_SameUpdatedAtScoresIdentically(t *testing.T) {
	t.Parallel()
	policy := DefaultLaneWindowPolicy()
	now := time.Now()
	at := now.Add(-30 * time.Minute)

	a := scoreInput{Active: true, HasSeverity: true, Severity: SeverityHigh, UpdatedAt: at}
	b := scoreInput{Active: true, HasSeverity: true, Severity: SeverityHigh, UpdatedAt: at}
	assert.Equal(t, score(policy, a, false, now), score(policy, b, false, now))
}

func TestRecencyValue_DecaysTowardsZero(t *testing.T) {
	t.Parallel()
	now := time.Now()
	fresh := recencyValue(now, now)
	assert.InDelta(t, 1.0, fresh, 1e-9)

	old := recencyValue(now.Add(-24*time.Hour), now)
	assert.Less(t, old, 0.01)
}

func TestRecencyValue_ZeroTimeScoresZero(t *testing.T) {
	t.Parallel()
	assert.Equal(t, 0.0, recencyValue(time.Time{}, time.Now()))
}
