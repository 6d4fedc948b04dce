package metacontext

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArchive_AppendSynthesisAssignsSequentialSeq(t *testing.T) {
	t.Parallel()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	a := newArchive(func() time.Time { return now })

	e0 := a.appendSynthesis("first", 100, []Ref{{Kind: KindGoal, ID: "g1"}})
	e1 := a.appendSynthesis("second", 200, nil)

	assert.Equal(t, 0, e0.Seq)
	assert.Equal(t, 1, e1.Seq)
	assert.Equal(t, ArchiveEntrySynthesis, e0.Kind)
	assert.Equal(t, 2, a.Len())
}

func TestArchive_AppendRawItemRecordsRefAndSummary(t *testing.T) {
	t.Parallel()
	a := newArchive(func() time.Time { return time.Unix(0, 0) })

	entry := a.appendRawItem(Ref{Kind: KindConstraint, ID: "c1"}, "must not exceed budget")

	require.Equal(t, 1, a.Len())
	assert.Equal(t, ArchiveEntryRawItem, entry.Kind)
	assert.Equal(t, "c1", entry.Ref.ID)
	assert.Equal(t, "must not exceed budget", entry.Summary)
}

func TestArchive_EntriesReturnsACopyNotTheBackingSlice(t *testing.T) {
	t.Parallel()
	a := newArchive(func() time.Time { return time.Unix(0, 0) })
	a.appendSynthesis("text", 10, nil)

	entries := a.Entries()
	entries[0].Text = "mutated"

	assert.Equal(t, "text", a.Entries()[0].Text)
}
