package metacontext

import (
	"sort"
	"sync"
	"time"
)

// LaneStatus controls how a lane participates in selection and merge.
type LaneStatus string

const (
	// LaneEnabled lanes participate in both selection and merge.
	LaneEnabled LaneStatus = "enabled"
	// LaneMuted lanes still refresh their own selection (for UI display) but
	// contribute nothing to the merge.
	LaneMuted LaneStatus = "muted"
	// LaneDisabled lanes clear their own selection and contribute nothing.
	LaneDisabled LaneStatus = "disabled"
)

// PinEntry records a caller override for a single ref within a lane. A
// tombstone (Pinned: false) disables implicit pinning for that ref without
// erasing the configuration entry, so it can be un-pinned without being
// forgotten.
type PinEntry struct {
	Kind   Kind
	ID     string
	Pinned bool
}

// Lane is a named scope: a tag filter, pin set, and scoring/selection
// window over the knowledge store, plus the cached result of its last
// refresh.
type Lane struct {
	mu sync.RWMutex

	id             string
	name           string
	status         LaneStatus
	includeTagsAny []Tag
	pinned         []PinEntry
	policy         WindowPolicy
	selected       []Selected
}

func newLane(id, name string, policy WindowPolicy) *Lane {
	return &Lane{
		id:     id,
		name:   name,
		status: LaneEnabled,
		policy: policy,
	}
}

func (l *Lane) ID() string { return l.id }

// LaneSnapshot is a caller-safe copy of a lane's current configuration and selection.
type LaneSnapshot struct {
	ID             string
	Name           string
	Status         LaneStatus
	IncludeTagsAny []Tag
	Pinned         []PinEntry
	Policy         WindowPolicy
	Selected       []Selected
}

func (l *Lane) snapshot() LaneSnapshot {
	l.mu.RLock()
	defer l.mu.RUnlock()
	pinned := make([]PinEntry, len(l.pinned))
	copy(pinned, l.pinned)
	return LaneSnapshot{
		ID:             l.id,
		Name:           l.name,
		Status:         l.status,
		IncludeTagsAny: cloneTags(l.includeTagsAny),
		Pinned:         pinned,
		Policy:         l.policy,
		Selected:       cloneSelected(l.selected),
	}
}

// setStatus returns (oldStatus, changed).
func (l *Lane) setStatus(status LaneStatus) (LaneStatus, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	old := l.status
	if old == status {
		return old, false
	}
	l.status = status
	return old, true
}

func (l *Lane) setName(name string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.name = name
}

func (l *Lane) setIncludeTagsAny(patterns []Tag) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.includeTagsAny = cloneTags(patterns)
}

func (l *Lane) setWindowPolicy(policy WindowPolicy) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.policy = policy
}

// pin sets ref's pinned flag to true, appending a new entry if absent.
// Returns true iff the flag actually changed.
func (l *Lane) pin(ref Ref) bool {
	return l.setPinned(ref, true)
}

// unpin records a tombstone (pinned: false) for ref, appending a new entry
// if absent. Returns true iff the flag actually changed.
func (l *Lane) unpin(ref Ref) bool {
	return l.setPinned(ref, false)
}

func (l *Lane) setPinned(ref Ref, pinned bool) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i := range l.pinned {
		if l.pinned[i].Kind == ref.Kind && l.pinned[i].ID == ref.ID {
			if l.pinned[i].Pinned == pinned {
				return false
			}
			l.pinned[i].Pinned = pinned
			return true
		}
	}
	l.pinned = append(l.pinned, PinEntry{Kind: ref.Kind, ID: ref.ID, Pinned: pinned})
	return true
}

// pinnedTrueSet returns the set of refs explicitly pinned (not tombstoned).
func (l *Lane) pinnedTrueSet() map[Ref]bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make(map[Ref]bool, len(l.pinned))
	for _, p := range l.pinned {
		if p.Pinned {
			out[Ref{Kind: p.Kind, ID: p.ID}] = true
		}
	}
	return out
}

type scoredRef struct {
	ref       Ref
	score     float64
	pinned    bool
	updatedAt time.Time
}

// refresh recomputes the lane's selection from the store.
func (l *Lane) refresh(store *Store, now time.Time) {
	l.mu.Lock()
	status := l.status
	if status == LaneDisabled {
		l.selected = nil
		l.mu.Unlock()
		return
	}
	includeTagsAny := cloneTags(l.includeTagsAny)
	policy := l.policy
	l.mu.Unlock()

	pinnedTrue := l.pinnedTrueSet()

	var candidates []scoredRef
	for _, ref := range store.activeRefs() {
		tags, ok := store.Tags(ref)
		if !ok {
			continue
		}
		isPinned := pinnedTrue[ref]
		if !isPinned && !tagsMatchAny(tags, includeTagsAny) {
			continue
		}
		r, ok := store.recordFor(ref)
		if !ok {
			continue
		}
		in := scoreInputFromRecord(r)
		candidates = append(candidates, scoredRef{
			ref:       ref,
			score:     score(policy, in, isPinned, now),
			pinned:    isPinned,
			updatedAt: r.updatedAtOf(),
		})
	}

	sortScoredRefs(candidates)

	if policy.MaxItems > 0 && len(candidates) > policy.MaxItems {
		candidates = candidates[:policy.MaxItems]
	}

	selected := make([]Selected, 0, len(candidates))
	for _, c := range candidates {
		selected = append(selected, Selected{Kind: c.ref.Kind, ID: c.ref.ID, Score: c.score, Pinned: c.pinned})
	}

	l.mu.Lock()
	l.selected = selected
	l.mu.Unlock()
}

// sortScoredRefs orders pinned-first, then score desc, then updatedAt desc,
// then id asc — a total order so tests can compare selections.
func sortScoredRefs(refs []scoredRef) {
	sort.SliceStable(refs, func(i, j int) bool {
		a, b := refs[i], refs[j]
		if a.pinned != b.pinned {
			return a.pinned
		}
		if a.score != b.score {
			return a.score > b.score
		}
		if !a.updatedAt.Equal(b.updatedAt) {
			return a.updatedAt.After(b.updatedAt)
		}
		if a.ref.ID != b.ref.ID {
			return a.ref.ID < b.ref.ID
		}
		return a.ref.Kind < b.ref.Kind
	})
}
