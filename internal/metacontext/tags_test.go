package metacontext

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTagsMatchAny_KeyOnlyPatternMatchesAnyValue(t *testing.T) {
	t.Parallel()
	itemTags := []Tag{NewTag("team", "payments")}
	patterns := []Tag{NewKeyTag("team")}
	assert.True(t, tagsMatchAny(itemTags, patterns))
}

func TestTagsMatchAny_ValuePatternRequiresExactMatch(t *testing.T) {
	t.Parallel()
	itemTags := []Tag{NewTag("team", "payments")}
	assert.True(t, tagsMatchAny(itemTags, []Tag{NewTag("team", "payments")}))
	assert.False(t, tagsMatchAny(itemTags, []Tag{NewTag("team", "growth")}))
}

func TestTagsMatchAny_NoPatternsNeverMatches(t *testing.T) {
	t.Parallel()
	itemTags := []Tag{NewTag("team", "payments")}
	assert.False(t, tagsMatchAny(itemTags, nil))
}

func TestTagsMatchAny_AnyPatternSufficesAcrossMultiple(t *testing.T) {
	t.Parallel()
	itemTags := []Tag{NewTag("team", "payments"), NewKeyTag("urgent")}
	patterns := []Tag{NewTag("team", "growth"), NewKeyTag("urgent")}
	assert.True(t, tagsMatchAny(itemTags, patterns))
}
