package metacontext

import "sync"

// ActiveWindow is the merged view across every enabled lane: a
// deduplicated, re-ranked selection used for synthesis.
type ActiveWindow struct {
	mu       sync.RWMutex
	policy   WindowPolicy
	selected []Selected
}

func newActiveWindow(policy WindowPolicy) *ActiveWindow {
	return &ActiveWindow{policy: policy}
}

func (w *ActiveWindow) setWindowPolicy(policy WindowPolicy) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.policy = policy
}

func (w *ActiveWindow) snapshot() []Selected {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return cloneSelected(w.selected)
}

// merge recomputes the active window from the current selection of every
// lane whose status is enabled (muted and disabled lanes contribute nothing).
// Entries are deduplicated by (kind, id): the merged entry is pinned if any
// contributing lane pinned it, and its score is the max across contributing
// lanes. The merged set is sorted with the same comparator as a lane's own
// selection and truncated to MaxItems. Merged entries carry no update time,
// so the updatedAt tie-break does not apply here: equal scores are ordered
// by id.
func (w *ActiveWindow) merge(lanes []*Lane) {
	byRef := make(map[Ref]*scoredRef)
	order := make([]Ref, 0)

	for _, l := range lanes {
		snap := l.snapshot()
		if snap.Status != LaneEnabled {
			continue
		}
		for _, sel := range snap.Selected {
			ref := sel.ref()
			existing, ok := byRef[ref]
			if !ok {
				entry := &scoredRef{ref: ref, score: sel.Score, pinned: sel.Pinned}
				byRef[ref] = entry
				order = append(order, ref)
				continue
			}
			if sel.Pinned {
				existing.pinned = true
			}
			if sel.Score > existing.score {
				existing.score = sel.Score
			}
		}
	}

	merged := make([]scoredRef, 0, len(order))
	for _, ref := range order {
		merged = append(merged, *byRef[ref])
	}

	sortScoredRefs(merged)

	w.mu.Lock()
	policy := w.policy
	w.mu.Unlock()

	if policy.MaxItems > 0 && len(merged) > policy.MaxItems {
		merged = merged[:policy.MaxItems]
	}

	selected := make([]Selected, 0, len(merged))
	for _, m := range merged {
		selected = append(selected, Selected{Kind: m.ref.Kind, ID: m.ref.ID, Score: m.score, Pinned: m.pinned})
	}

	w.mu.Lock()
	w.selected = selected
	w.mu.Unlock()
}
