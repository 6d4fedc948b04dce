package metacontext

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateDefaultContext_RegistersFiveStandardLanes(t *testing.T) {
	t.Parallel()
	c := CreateDefaultContext("ctx-default")
	lanes := c.LaneList()
	require.Len(t, lanes, 5)

	byID := make(map[string]LaneSnapshot)
	for _, l := range lanes {
		byID[l.ID] = l
	}
	assert.Equal(t, 20, byID["task"].Policy.MaxItems)
	assert.Equal(t, 20, byID["legal"].Policy.MaxItems)
	assert.Equal(t, 10, byID["personal"].Policy.MaxItems)
	assert.Equal(t, 15, byID["threat-model"].Policy.MaxItems)
	assert.Equal(t, 25, byID["implementation"].Policy.MaxItems)
}

func TestEnsureLane_IsIdempotent(t *testing.T) {
	t.Parallel()
	c := NewContext("ctx-test")
	snap1, err := c.EnsureLane("l1", "Lane 1", DefaultLaneWindowPolicy())
	require.NoError(t, err)

	snap2, err := c.EnsureLane("l1", "different name ignored", DefaultLaneWindowPolicy())
	require.NoError(t, err)
	assert.Equal(t, snap1.Name, snap2.Name)
	assert.Len(t, c.LaneList(), 1)
}

func TestRemoveLane_UnknownLaneErrors(t *testing.T) {
	t.Parallel()
	c := NewContext("ctx-test")
	err := c.RemoveLane("missing")
	assert.ErrorIs(t, err, ErrUnknownLane)
}

func TestPinInLane_UnknownRefErrors(t *testing.T) {
	t.Parallel()
	c := NewContext("ctx-test")
	_, err := c.EnsureLane("l1", "Lane 1", DefaultLaneWindowPolicy())
	require.NoError(t, err)

	_, err = c.PinInLane("l1", Ref{Kind: KindGoal, ID: "missing"})
	assert.ErrorIs(t, err, ErrUnknownRef)
}

func TestPinInLane_UnknownLaneErrors(t *testing.T) {
	t.Parallel()
	c := NewContext("ctx-test")
	_, err := c.UpsertGoal(GoalPayload{ID: "g1", Title: "goal"})
	require.NoError(t, err)

	_, err = c.PinInLane("missing", Ref{Kind: KindGoal, ID: "g1"})
	assert.ErrorIs(t, err, ErrUnknownLane)
}

func TestIngestEvidence_EmitsBothUpsertedAndIngestedEvents(t *testing.T) {
	t.Parallel()
	c := NewContext("ctx-test")
	var names []EventName
	c.Hooks().OnAny(func(e Event) { names = append(names, e.Name) })

	_, err := c.IngestEvidence(EvidencePayload{ID: "e1", Summary: "observed spike"})
	require.NoError(t, err)

	assert.Contains(t, names, EventKnowledgeObjectUpserted)
	assert.Contains(t, names, EventEvidenceIngested)
}

func TestRefreshAllLanes_EmitsPerLaneThenOneAggregateEvent(t *testing.T) {
	t.Parallel()
	c := NewContext("ctx-test")
	_, err := c.EnsureLane("l1", "L1", DefaultLaneWindowPolicy())
	require.NoError(t, err)
	_, err = c.EnsureLane("l2", "L2", DefaultLaneWindowPolicy())
	require.NoError(t, err)

	var names []EventName
	c.Hooks().OnAny(func(e Event) { names = append(names, e.Name) })

	_, err = c.RefreshAllLanes()
	require.NoError(t, err)

	require.Len(t, names, 3)
	assert.Equal(t, EventLaneRefreshed, names[0])
	assert.Equal(t, EventLaneRefreshed, names[1])
	assert.Equal(t, EventLanesRefreshedAll, names[2])
}

func TestMergeLanesToActiveWindow_OnlyEnabledLanesContribute(t *testing.T) {
	t.Parallel()
	now := time.Now()
	c := NewContext("ctx-test", WithClock(func() time.Time { return now }))

	_, err := c.UpsertGoal(GoalPayload{ID: "g1", Title: "goal", Tags: []Tag{NewKeyTag("x")}})
	require.NoError(t, err)

	_, err = c.EnsureLane("enabled", "Enabled", DefaultLaneWindowPolicy())
	require.NoError(t, err)
	_, err = c.SetLaneIncludeTagsAny("enabled", []Tag{NewKeyTag("x")})
	require.NoError(t, err)

	_, err = c.EnsureLane("muted", "Muted", DefaultLaneWindowPolicy())
	require.NoError(t, err)
	_, err = c.SetLaneIncludeTagsAny("muted", []Tag{NewKeyTag("x")})
	require.NoError(t, err)
	_, err = c.SetLaneStatus("muted", LaneMuted)
	require.NoError(t, err)

	_, err = c.RefreshAllLanes()
	require.NoError(t, err)
	selected, err := c.MergeLanesToActiveWindow()
	require.NoError(t, err)

	require.Len(t, selected, 1)
	assert.Equal(t, "g1", selected[0].ID)
}

func TestBuildLLMContextPayload_ReturnsStableShapeWithIdentityAndPerKindSummaries(t *testing.T) {
	t.Parallel()
	c := NewContext("ctx-test", WithName("demo"))
	_, err := c.UpsertGoal(GoalPayload{ID: "g1", Title: "ship it", Tags: []Tag{NewKeyTag("x")}})
	require.NoError(t, err)
	_, err = c.EnsureLane("l1", "L1", DefaultLaneWindowPolicy())
	require.NoError(t, err)
	_, err = c.SetLaneIncludeTagsAny("l1", []Tag{NewKeyTag("x")})
	require.NoError(t, err)
	_, err = c.RefreshAllLanes()
	require.NoError(t, err)

	payload, err := c.BuildLLMContextPayload(context.Background(), SynthesisOptions{})
	require.NoError(t, err)
	assert.Equal(t, "ctx-test", payload.MetaContextID)
	assert.Equal(t, "demo", payload.Name)
	assert.Equal(t, 1, payload.SelectedCount)
	require.Len(t, payload.Goals, 1)
	assert.Equal(t, "ship it", payload.Goals[0])
	assert.Empty(t, payload.Constraints)
	assert.Contains(t, payload.WorkingMemory.Text, "ship it")
}

func TestBuildLLMContextPayload_PerKindArraysIncludeItemsDroppedByTruncation(t *testing.T) {
	t.Parallel()
	c := NewContext("ctx-test", WithTokenizer(charCountTokenizer{}))
	_, err := c.UpsertGoal(GoalPayload{ID: "g1", Title: "short", Tags: []Tag{NewKeyTag("x")}})
	require.NoError(t, err)
	_, err = c.UpsertGoal(GoalPayload{ID: "g2", Title: "a very long goal title that will not fit the budget", Tags: []Tag{NewKeyTag("x")}})
	require.NoError(t, err)
	_, err = c.EnsureLane("l1", "L1", DefaultLaneWindowPolicy())
	require.NoError(t, err)
	_, err = c.SetLaneIncludeTagsAny("l1", []Tag{NewKeyTag("x")})
	require.NoError(t, err)
	_, err = c.RefreshAllLanes()
	require.NoError(t, err)

	payload, err := c.BuildLLMContextPayload(context.Background(), SynthesisOptions{TokenBudget: 20})
	require.NoError(t, err)
	assert.Equal(t, 2, payload.SelectedCount)
	require.Len(t, payload.Goals, 2, "both selected goals must appear regardless of whether synthesis truncated the text")
}
