package metacontext

import (
	"context"
	"sync"
	"time"
)

// Option configures a Context at construction time.
type Option func(*Context)

// WithClock overrides the time source used for CreatedAt/UpdatedAt stamping,
// recency scoring, and archive timestamps. Intended for deterministic tests.
func WithClock(now func() time.Time) Option {
	return func(c *Context) { c.now = now }
}

// WithTokenizer overrides the Tokenizer used to budget synthesized text.
func WithTokenizer(t Tokenizer) Option {
	return func(c *Context) { c.tokenizer = t }
}

// WithName sets the Context's human-readable name, returned verbatim in
// BuildLLMContextPayload. Defaults to the empty string.
func WithName(name string) Option {
	return func(c *Context) { c.name = name }
}

// Context is the single entry point combining the knowledge store, lanes,
// active window, archive, and hook bus into one engine instance. All
// exported methods are safe for concurrent use.
type Context struct {
	mu        sync.RWMutex
	lanes     map[string]*Lane
	laneOrder []string

	id   string
	name string

	store        *Store
	activeWindow *ActiveWindow
	archive      *Archive
	hooks        *HookBus
	tokenizer    Tokenizer
	now          clock
}

// NewContext builds an empty engine instance identified by id: no lanes,
// empty store, a zero-entry archive, and a fresh hook bus. id is caller
// supplied and is echoed back in every emitted Event and in
// BuildLLMContextPayload's metaContextId field.
func NewContext(id string, opts ...Option) *Context {
	c := &Context{
		id:        id,
		lanes:     make(map[string]*Lane),
		tokenizer: defaultTokenizer(),
		now:       systemClock,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.store = newStore(c.now)
	c.archive = newArchive(c.now)
	c.hooks = newHookBus(c.id)
	c.activeWindow = newActiveWindow(defaultActiveWindowPolicy())
	return c
}

func defaultActiveWindowPolicy() WindowPolicy {
	p := DefaultLaneWindowPolicy()
	p.MaxItems = 35
	return p
}

type defaultLaneSpec struct {
	id       string
	name     string
	maxItems int
}

var defaultLaneSpecs = []defaultLaneSpec{
	{"task", "Task", 20},
	{"legal", "Legal", 20},
	{"personal", "Personal", 10},
	{"threat-model", "Threat Model", 15},
	{"implementation", "Implementation", 25},
}

// CreateDefaultContext builds an engine identified by id, pre-populated
// with the five standard lanes (task, legal, personal, threat-model,
// implementation), each with its own selection cap and the default
// scoring weights.
func CreateDefaultContext(id string, opts ...Option) *Context {
	c := NewContext(id, opts...)
	for _, spec := range defaultLaneSpecs {
		policy := DefaultLaneWindowPolicy()
		policy.MaxItems = spec.maxItems
		_, _ = c.EnsureLane(spec.id, spec.name, policy)
	}
	return c
}

// Hooks returns the engine's event bus for registering listeners.
func (c *Context) Hooks() *HookBus { return c.hooks }

// ArchiveLog returns the engine's append-only archive.
func (c *Context) ArchiveLog() *Archive { return c.archive }

// ID returns the Context's identity, as supplied to NewContext/CreateDefaultContext.
func (c *Context) ID() string { return c.id }

// Name returns the Context's human-readable name, set via WithName.
func (c *Context) Name() string { return c.name }

// --- knowledge object upserts ---

func (c *Context) UpsertGoal(p GoalPayload) (GoalSnapshot, error) {
	snap, isNew, err := c.store.UpsertGoal(p)
	if err != nil {
		return GoalSnapshot{}, err
	}
	c.hooks.Emit(context.Background(), EventKnowledgeObjectUpserted, KnowledgeObjectUpsertedPayload{Ref: snap.ref(), IsNew: isNew})
	return snap, nil
}

func (s GoalSnapshot) ref() Ref { return Ref{Kind: KindGoal, ID: s.ID} }

func (c *Context) UpsertConstraint(p ConstraintPayload) (ConstraintSnapshot, error) {
	snap, isNew, err := c.store.UpsertConstraint(p)
	if err != nil {
		return ConstraintSnapshot{}, err
	}
	c.hooks.Emit(context.Background(), EventKnowledgeObjectUpserted, KnowledgeObjectUpsertedPayload{Ref: snap.ref(), IsNew: isNew})
	return snap, nil
}

func (s ConstraintSnapshot) ref() Ref { return Ref{Kind: KindConstraint, ID: s.ID} }

func (c *Context) UpsertAssumption(p AssumptionPayload) (AssumptionSnapshot, error) {
	snap, isNew, err := c.store.UpsertAssumption(p)
	if err != nil {
		return AssumptionSnapshot{}, err
	}
	c.hooks.Emit(context.Background(), EventKnowledgeObjectUpserted, KnowledgeObjectUpsertedPayload{Ref: snap.ref(), IsNew: isNew})
	return snap, nil
}

func (s AssumptionSnapshot) ref() Ref { return Ref{Kind: KindAssumption, ID: s.ID} }

func (c *Context) UpsertQuestion(p QuestionPayload) (QuestionSnapshot, error) {
	snap, isNew, err := c.store.UpsertQuestion(p)
	if err != nil {
		return QuestionSnapshot{}, err
	}
	c.hooks.Emit(context.Background(), EventKnowledgeObjectUpserted, KnowledgeObjectUpsertedPayload{Ref: snap.ref(), IsNew: isNew})
	return snap, nil
}

func (s QuestionSnapshot) ref() Ref { return Ref{Kind: KindQuestion, ID: s.ID} }

func (c *Context) UpsertDecision(p DecisionPayload) (DecisionSnapshot, error) {
	snap, isNew, err := c.store.UpsertDecision(p)
	if err != nil {
		return DecisionSnapshot{}, err
	}
	c.hooks.Emit(context.Background(), EventKnowledgeObjectUpserted, KnowledgeObjectUpsertedPayload{Ref: snap.ref(), IsNew: isNew})
	return snap, nil
}

func (s DecisionSnapshot) ref() Ref { return Ref{Kind: KindDecision, ID: s.ID} }

// IngestEvidence upserts a piece of evidence and emits both the generic
// knowledgeObject:upserted event and the evidence-specific evidence:ingested
// event, since evidence is treated as a distinct inbound signal rather than a
// caller-edited fact.
func (c *Context) IngestEvidence(p EvidencePayload) (EvidenceSnapshot, error) {
	snap, isNew, err := c.store.UpsertEvidence(p)
	if err != nil {
		return EvidenceSnapshot{}, err
	}
	ref := Ref{Kind: KindEvidence, ID: snap.ID}
	ctx := context.Background()
	c.hooks.Emit(ctx, EventKnowledgeObjectUpserted, KnowledgeObjectUpsertedPayload{Ref: ref, IsNew: isNew})
	c.hooks.Emit(ctx, EventEvidenceIngested, EvidenceIngestedPayload{Ref: ref, Weight: snap.Weight})
	return snap, nil
}

// --- lane management ---

// EnsureLane returns the lane registered under id, creating it with name and
// policy if it does not already exist. Existing lanes are returned unchanged.
func (c *Context) EnsureLane(id, name string, policy WindowPolicy) (LaneSnapshot, error) {
	c.mu.Lock()
	l, exists := c.lanes[id]
	if exists {
		c.mu.Unlock()
		return l.snapshot(), nil
	}
	l = newLane(id, name, policy)
	c.lanes[id] = l
	c.laneOrder = append(c.laneOrder, id)
	c.mu.Unlock()

	c.hooks.Emit(context.Background(), EventLaneCreated, LaneCreatedPayload{LaneID: id})
	return l.snapshot(), nil
}

func (c *Context) laneByID(id string) (*Lane, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	l, ok := c.lanes[id]
	if !ok {
		return nil, newUnknownLane(id)
	}
	return l, nil
}

// RemoveLane deletes a lane entirely. Returns ErrUnknownLane if it was never
// created via EnsureLane.
func (c *Context) RemoveLane(id string) error {
	c.mu.Lock()
	if _, ok := c.lanes[id]; !ok {
		c.mu.Unlock()
		return newUnknownLane(id)
	}
	delete(c.lanes, id)
	for i, laneID := range c.laneOrder {
		if laneID == id {
			c.laneOrder = append(c.laneOrder[:i], c.laneOrder[i+1:]...)
			break
		}
	}
	c.mu.Unlock()

	c.hooks.Emit(context.Background(), EventLaneRemoved, LaneRemovedPayload{LaneID: id})
	return nil
}

func (c *Context) SetLaneStatus(id string, status LaneStatus) (LaneSnapshot, error) {
	l, err := c.laneByID(id)
	if err != nil {
		return LaneSnapshot{}, err
	}
	old, changed := l.setStatus(status)
	if changed {
		c.hooks.Emit(context.Background(), EventLaneStatusChanged, LaneStatusChangedPayload{LaneID: id, Old: old, New: status})
	}
	return l.snapshot(), nil
}

func (c *Context) SetLaneName(id, name string) (LaneSnapshot, error) {
	l, err := c.laneByID(id)
	if err != nil {
		return LaneSnapshot{}, err
	}
	l.setName(name)
	return l.snapshot(), nil
}

func (c *Context) SetLaneIncludeTagsAny(id string, tags []Tag) (LaneSnapshot, error) {
	l, err := c.laneByID(id)
	if err != nil {
		return LaneSnapshot{}, err
	}
	l.setIncludeTagsAny(tags)
	return l.snapshot(), nil
}

func (c *Context) SetLaneWindowPolicy(id string, policy WindowPolicy) (LaneSnapshot, error) {
	l, err := c.laneByID(id)
	if err != nil {
		return LaneSnapshot{}, err
	}
	l.setWindowPolicy(policy)
	return l.snapshot(), nil
}

// PinInLane marks ref as pinned within lane id. Returns ErrUnknownLane or
// ErrUnknownRef if either does not exist.
func (c *Context) PinInLane(id string, ref Ref) (LaneSnapshot, error) {
	return c.setPin(id, ref, true)
}

// UnpinInLane records a tombstone for ref within lane id, so it competes on
// score alone again.
func (c *Context) UnpinInLane(id string, ref Ref) (LaneSnapshot, error) {
	return c.setPin(id, ref, false)
}

func (c *Context) setPin(id string, ref Ref, pinned bool) (LaneSnapshot, error) {
	l, err := c.laneByID(id)
	if err != nil {
		return LaneSnapshot{}, err
	}
	if !c.store.Exists(ref) {
		return LaneSnapshot{}, newUnknownRef(ref)
	}
	var changed bool
	if pinned {
		changed = l.pin(ref)
	} else {
		changed = l.unpin(ref)
	}
	if changed {
		c.hooks.Emit(context.Background(), EventLanePinChanged, LanePinChangedPayload{LaneID: id, Ref: ref, Pinned: pinned})
	}
	return l.snapshot(), nil
}

// RefreshLaneSelection recomputes lane id's cached selection against the
// current store contents.
func (c *Context) RefreshLaneSelection(id string) (LaneSnapshot, error) {
	l, err := c.laneByID(id)
	if err != nil {
		return LaneSnapshot{}, err
	}
	l.refresh(c.store, c.now())
	snap := l.snapshot()
	c.hooks.Emit(context.Background(), EventLaneRefreshed, LaneRefreshedPayload{
		LaneID:        id,
		SelectedCount: len(snap.Selected),
		Selected:      snap.Selected,
	})
	return snap, nil
}

// RefreshAllLanes recomputes every lane's selection, in the order lanes were
// created, and emits one lanes:refreshedAll event naming every lane id.
func (c *Context) RefreshAllLanes() ([]LaneSnapshot, error) {
	c.mu.RLock()
	ids := append([]string(nil), c.laneOrder...)
	c.mu.RUnlock()

	out := make([]LaneSnapshot, 0, len(ids))
	for _, id := range ids {
		snap, err := c.RefreshLaneSelection(id)
		if err != nil {
			return nil, err
		}
		out = append(out, snap)
	}
	c.hooks.Emit(context.Background(), EventLanesRefreshedAll, LanesRefreshedAllPayload{LaneIDs: ids})
	return out, nil
}

// MergeLanesToActiveWindow recomputes the active window from every lane
// whose status is enabled, deduplicating by (kind, id).
func (c *Context) MergeLanesToActiveWindow() ([]Selected, error) {
	c.mu.RLock()
	lanes := make([]*Lane, 0, len(c.laneOrder))
	for _, id := range c.laneOrder {
		lanes = append(lanes, c.lanes[id])
	}
	c.mu.RUnlock()

	c.activeWindow.merge(lanes)
	selected := c.activeWindow.snapshot()
	c.hooks.Emit(context.Background(), EventActiveWindowMerged, ActiveWindowMergedPayload{
		SelectedCount: len(selected),
		Selected:      selected,
	})
	return selected, nil
}

// SetActiveWindowPolicy overrides the active window's selection cap.
func (c *Context) SetActiveWindowPolicy(policy WindowPolicy) {
	c.activeWindow.setWindowPolicy(policy)
}

// --- synthesis ---

// SynthesizeWorkingMemory renders the current active window into budgeted text.
func (c *Context) SynthesizeWorkingMemory(ctx context.Context, opts SynthesisOptions) (SynthesisResult, error) {
	return c.synthesizeWorkingMemory(ctx, c.activeWindow.snapshot(), opts)
}

// SynthesizeFromLanes is the preferred caller entry point: the composition
// refreshAllLanes -> mergeLanesToActiveWindow -> synthesizeWorkingMemory,
// run in that order against every lane the engine currently holds. Events
// are emitted in this order: one lane:refreshed per lane, lanes:refreshedAll,
// activeWindow:merged, archive:created (followed by one more archive:created
// per raw-item entry when opts.ArchiveRawItems is set), then
// workingMemory:synthesized.
func (c *Context) SynthesizeFromLanes(ctx context.Context, opts SynthesisOptions) (SynthesisResult, error) {
	if _, err := c.RefreshAllLanes(); err != nil {
		return SynthesisResult{}, err
	}
	if _, err := c.MergeLanesToActiveWindow(); err != nil {
		return SynthesisResult{}, err
	}
	return c.SynthesizeWorkingMemory(ctx, opts)
}

// --- views ---

func (c *Context) GetAllIDsByKind(kind Kind) []string { return c.store.AllIDs(kind) }

func (c *Context) GetGoal(id string) (GoalSnapshot, bool)             { return c.store.GetGoal(id) }
func (c *Context) GetConstraint(id string) (ConstraintSnapshot, bool) { return c.store.GetConstraint(id) }
func (c *Context) GetAssumption(id string) (AssumptionSnapshot, bool) { return c.store.GetAssumption(id) }
func (c *Context) GetEvidence(id string) (EvidenceSnapshot, bool)     { return c.store.GetEvidence(id) }
func (c *Context) GetQuestion(id string) (QuestionSnapshot, bool)     { return c.store.GetQuestion(id) }
func (c *Context) GetDecision(id string) (DecisionSnapshot, bool)     { return c.store.GetDecision(id) }

func (c *Context) SummarizeRef(ref Ref) string { return c.store.Summarize(ref) }

func (c *Context) IsActive(ref Ref) bool { return c.store.IsActive(ref) }

func (c *Context) GetItemTags(ref Ref) ([]Tag, bool) { return c.store.Tags(ref) }

func (c *Context) LaneList() []LaneSnapshot {
	c.mu.RLock()
	ids := append([]string(nil), c.laneOrder...)
	lanes := make([]*Lane, 0, len(ids))
	for _, id := range ids {
		lanes = append(lanes, c.lanes[id])
	}
	c.mu.RUnlock()

	out := make([]LaneSnapshot, 0, len(lanes))
	for _, l := range lanes {
		out = append(out, l.snapshot())
	}
	return out
}

// ActiveSelectionSummary pairs a merged selection entry with its
// human-readable summary, for display or for handing to a model.
type ActiveSelectionSummary struct {
	Ref     Ref
	Summary string
	Score   float64
	Pinned  bool
}

func (c *Context) ActiveSelectedSummaries() []ActiveSelectionSummary {
	selected := c.activeWindow.snapshot()
	out := make([]ActiveSelectionSummary, 0, len(selected))
	for _, sel := range selected {
		ref := sel.ref()
		out = append(out, ActiveSelectionSummary{
			Ref:     ref,
			Summary: c.store.Summarize(ref),
			Score:   sel.Score,
			Pinned:  sel.Pinned,
		})
	}
	return out
}

// WorkingMemoryView is the working-memory component of an
// LLMContextPayload.
type WorkingMemoryView struct {
	Text          string    `json:"text"`
	UpdatedAt     time.Time `json:"updatedAt"`
	LastArchiveID int       `json:"lastArchiveId"`
}

// LLMContextPayload is BuildLLMContextPayload's stable shape; other
// systems consume this directly. Each per-kind field contains the
// rendered summaries for the refs in activeWindow.selected, in selection
// order, whether or not they made it into the budgeted working-memory
// text.
type LLMContextPayload struct {
	MetaContextID string            `json:"metaContextId"`
	Name          string            `json:"name"`
	SelectedCount int               `json:"selectedCount"`
	Goals         []string          `json:"goals"`
	Constraints   []string          `json:"constraints"`
	Assumptions   []string          `json:"assumptions"`
	Evidence      []string          `json:"evidence"`
	Questions     []string          `json:"questions"`
	Decisions     []string          `json:"decisions"`
	WorkingMemory WorkingMemoryView `json:"workingMemory"`
	GeneratedAt   time.Time         `json:"generatedAt"`
}

// BuildLLMContextPayload merges lanes, synthesizes working memory under
// opts, and packages the result into the stable cross-system payload
// shape described by the engine's external interface. selectedCount and
// the per-kind arrays reflect activeWindow.selected as merged, not the
// (possibly truncated) set of items that fit into the synthesized text.
func (c *Context) BuildLLMContextPayload(ctx context.Context, opts SynthesisOptions) (LLMContextPayload, error) {
	if _, err := c.MergeLanesToActiveWindow(); err != nil {
		return LLMContextPayload{}, err
	}
	selected := c.activeWindow.snapshot()

	result, err := c.SynthesizeWorkingMemory(ctx, opts)
	if err != nil {
		return LLMContextPayload{}, err
	}

	byKind := make(map[Kind][]string)
	for _, sel := range selected {
		summary := c.store.Summarize(sel.ref())
		if summary == "" {
			continue
		}
		byKind[sel.Kind] = append(byKind[sel.Kind], summary)
	}

	generatedAt := c.now()
	return LLMContextPayload{
		MetaContextID: c.id,
		Name:          c.name,
		SelectedCount: len(selected),
		Goals:         byKind[KindGoal],
		Constraints:   byKind[KindConstraint],
		Assumptions:   byKind[KindAssumption],
		Evidence:      byKind[KindEvidence],
		Questions:     byKind[KindQuestion],
		Decisions:     byKind[KindDecision],
		WorkingMemory: WorkingMemoryView{
			Text:          result.Text,
			UpdatedAt:     generatedAt,
			LastArchiveID: result.ArchiveID,
		},
		GeneratedAt: generatedAt,
	}, nil
}

// --- event payloads ---

type KnowledgeObjectUpsertedPayload struct {
	Ref   Ref
	IsNew bool
}

type EvidenceIngestedPayload struct {
	Ref    Ref
	Weight float64
}

type LaneCreatedPayload struct{ LaneID string }
type LaneRemovedPayload struct{ LaneID string }

type LaneStatusChangedPayload struct {
	LaneID   string
	Old, New LaneStatus
}

type LanePinChangedPayload struct {
	LaneID string
	Ref    Ref
	Pinned bool
}

type LaneRefreshedPayload struct {
	LaneID        string
	SelectedCount int
	Selected      []Selected
}

type LanesRefreshedAllPayload struct {
	LaneIDs []string
}

type ActiveWindowMergedPayload struct {
	SelectedCount int
	Selected      []Selected
}

type ArchiveCreatedPayload struct {
	Kind ArchiveEntryKind
	Seq  int
}

type WorkingMemorySynthesizedPayload struct {
	TokenCount int
	ItemCount  int
	Truncated  bool
}
