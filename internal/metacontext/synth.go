package metacontext

import (
	"context"
	"strings"
)

// sectionOrder fixes the order in which kinds appear in synthesized working
// memory text, independent of lane or merge order.
var sectionOrder = []struct {
	kind  Kind
	title string
}{
	{KindGoal, "Goals"},
	{KindConstraint, "Constraints"},
	{KindAssumption, "Assumptions"},
	{KindEvidence, "Evidence"},
	{KindQuestion, "Questions"},
	{KindDecision, "Decisions"},
}

// SynthesisOptions configures a single synthesizeWorkingMemory call.
type SynthesisOptions struct {
	// TokenBudget caps the synthesized text; 0 means unlimited.
	TokenBudget int
	// ArchiveRawItems additionally appends one raw-item archive entry per
	// emitted item whose kind carries a status field.
	ArchiveRawItems bool
}

// SynthesisResult is what synthesizeWorkingMemory returns to the caller.
type SynthesisResult struct {
	Text        string
	IncludedRef []Ref
	TokenCount  int
	Truncated   bool
	ArchiveID   int
}

// synthesizeWorkingMemory renders the supplied selection into budgeted
// section-organized text, in a fixed kind order, one line per item. Items
// are added whole; the synthesizer never emits a partial item to fit a
// budget. Every call appends one synthesis entry to the archive, and one
// raw-item entry per included item whose kind has a status field when
// opts.ArchiveRawItems is set.
func (c *Context) synthesizeWorkingMemory(ctx context.Context, selection []Selected, opts SynthesisOptions) (SynthesisResult, error) {
	byKind := make(map[Kind][]Selected)
	for _, sel := range selection {
		byKind[sel.Kind] = append(byKind[sel.Kind], sel)
	}

	var (
		b         strings.Builder
		included  []Ref
		truncated bool
	)

	for _, section := range sectionOrder {
		items := byKind[section.kind]
		if len(items) == 0 {
			continue
		}

		var lines []string
		for _, sel := range items {
			ref := sel.ref()
			summary := c.store.Summarize(ref)
			if summary == "" {
				continue
			}
			lines = append(lines, "- "+summary)
		}
		if len(lines) == 0 {
			continue
		}

		sectionText := section.title + ":\n" + strings.Join(lines, "\n") + "\n"

		if opts.TokenBudget > 0 {
			candidate := b.String() + sectionText
			n, err := c.tokenizer.CountTokens(ctx, candidate)
			if err != nil {
				return SynthesisResult{}, err
			}
			if n > opts.TokenBudget {
				truncated = true
				// fall back to adding items one at a time so a section that
				// partially fits still contributes its leading items.
				partial, partialRefs, fits := c.fitItems(ctx, b.String(), section.title, items, opts.TokenBudget)
				if fits {
					b.WriteString(partial)
					included = append(included, partialRefs...)
				}
				break
			}
		}

		b.WriteString(sectionText)
		for _, sel := range items {
			ref := sel.ref()
			if c.store.Summarize(ref) == "" {
				continue
			}
			included = append(included, ref)
		}
	}

	text := b.String()
	tokenCount, err := c.tokenizer.CountTokens(ctx, text)
	if err != nil {
		return SynthesisResult{}, err
	}

	// The archive's mergedSelected snapshot records what the active window
	// actually held, independent of whether every item fit inside the
	// synthesized text's token budget.
	mergedSelected := make([]Ref, len(selection))
	for i, sel := range selection {
		mergedSelected[i] = sel.ref()
	}
	archiveEntry := c.archive.appendSynthesis(text, opts.TokenBudget, mergedSelected)
	c.hooks.Emit(ctx, EventArchiveCreated, ArchiveCreatedPayload{Kind: ArchiveEntrySynthesis, Seq: archiveEntry.Seq})

	if opts.ArchiveRawItems {
		for _, ref := range included {
			r, ok := c.store.recordFor(ref)
			if !ok {
				continue
			}
			if _, hasStatus := r.statusOf(); !hasStatus {
				continue
			}
			c.archive.appendRawItem(ref, r.summaryOf())
			c.hooks.Emit(ctx, EventArchiveCreated, ArchiveCreatedPayload{Kind: ArchiveEntryRawItem, Seq: c.archive.Len() - 1})
		}
	}

	result := SynthesisResult{Text: text, IncludedRef: included, TokenCount: tokenCount, Truncated: truncated, ArchiveID: archiveEntry.Seq}
	c.hooks.Emit(ctx, EventWorkingMemorySynthesized, WorkingMemorySynthesizedPayload{
		TokenCount: tokenCount,
		ItemCount:  len(included),
		Truncated:  truncated,
	})
	return result, nil
}

// fitItems greedily adds items (each rendered as a whole line) to prefix
// until the next item would exceed budget. Never splits a single item.
func (c *Context) fitItems(ctx context.Context, prefix, title string, items []Selected, budget int) (string, []Ref, bool) {
	var b strings.Builder
	var refs []Ref
	b.WriteString(title + ":\n")
	any := false
	for _, sel := range items {
		ref := sel.ref()
		summary := c.store.Summarize(ref)
		if summary == "" {
			continue
		}
		candidateBody := b.String() + "- " + summary + "\n"
		n, err := c.tokenizer.CountTokens(ctx, prefix+candidateBody)
		if err != nil || n > budget {
			break
		}
		b.Reset()
		b.WriteString(candidateBody)
		refs = append(refs, ref)
		any = true
	}
	if !any {
		return "", nil, false
	}
	return b.String(), refs, true
}
