// Package durability provides caller-side persistence for a metacontext
// engine instance. The engine itself holds everything in memory; this
// package lets a caller periodically snapshot that state to Redis and
// restore it into a fresh engine after a restart.
package durability

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"metacontext/internal/metacontext"
)

// Config configures the Redis connection used for snapshotting.
type Config struct {
	Addr                  string
	Password              string
	DB                    int
	TLSInsecureSkipVerify bool
}

// Snapshot is the serialized form of a Context's knowledge objects and lane
// configuration. It intentionally omits the archive and hook listeners:
// archives are append-only history, not working state, and listeners are
// process-local closures that cannot be serialized.
type Snapshot struct {
	Goals       []metacontext.GoalSnapshot       `json:"goals"`
	Constraints []metacontext.ConstraintSnapshot `json:"constraints"`
	Assumptions []metacontext.AssumptionSnapshot `json:"assumptions"`
	Evidence    []metacontext.EvidenceSnapshot    `json:"evidence"`
	Questions   []metacontext.QuestionSnapshot    `json:"questions"`
	Decisions   []metacontext.DecisionSnapshot    `json:"decisions"`
	Lanes       []metacontext.LaneSnapshot        `json:"lanes"`
	TakenAt     time.Time                         `json:"takenAt"`
}

// RedisSnapshotStore persists Context snapshots to Redis under a single key
// per logical session.
type RedisSnapshotStore struct {
	client redis.UniversalClient
	ttl    time.Duration
}

// NewRedisSnapshotStore builds a store. ttl <= 0 means snapshots never expire.
func NewRedisSnapshotStore(cfg Config, ttl time.Duration) (*RedisSnapshotStore, error) {
	opts := &redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	}
	if cfg.TLSInsecureSkipVerify {
		opts.TLSConfig = &tls.Config{InsecureSkipVerify: true}
	}
	client := redis.NewClient(opts)
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("durability: redis snapshot store ping: %w", err)
	}
	return &RedisSnapshotStore{client: client, ttl: ttl}, nil
}

func (s *RedisSnapshotStore) key(sessionID string) string {
	return fmt.Sprintf("metacontext:snapshot:%s", sessionID)
}

// Save captures every knowledge object and lane in c and writes it to Redis
// under sessionID.
func (s *RedisSnapshotStore) Save(ctx context.Context, sessionID string, c *metacontext.Context, now time.Time) error {
	snap := Snapshot{Lanes: c.LaneList(), TakenAt: now}

	for _, id := range c.GetAllIDsByKind(metacontext.KindGoal) {
		if g, ok := c.GetGoal(id); ok {
			snap.Goals = append(snap.Goals, g)
		}
	}
	for _, id := range c.GetAllIDsByKind(metacontext.KindConstraint) {
		if v, ok := c.GetConstraint(id); ok {
			snap.Constraints = append(snap.Constraints, v)
		}
	}
	for _, id := range c.GetAllIDsByKind(metacontext.KindAssumption) {
		if v, ok := c.GetAssumption(id); ok {
			snap.Assumptions = append(snap.Assumptions, v)
		}
	}
	for _, id := range c.GetAllIDsByKind(metacontext.KindEvidence) {
		if v, ok := c.GetEvidence(id); ok {
			snap.Evidence = append(snap.Evidence, v)
		}
	}
	for _, id := range c.GetAllIDsByKind(metacontext.KindQuestion) {
		if v, ok := c.GetQuestion(id); ok {
			snap.Questions = append(snap.Questions, v)
		}
	}
	for _, id := range c.GetAllIDsByKind(metacontext.KindDecision) {
		if v, ok := c.GetDecision(id); ok {
			snap.Decisions = append(snap.Decisions, v)
		}
	}

	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("durability: marshal snapshot: %w", err)
	}
	if err := s.client.Set(ctx, s.key(sessionID), data, s.ttl).Err(); err != nil {
		log.Warn().Err(err).Str("session_id", sessionID).Msg("metacontext: redis snapshot save failed")
		return err
	}
	return nil
}

// Load retrieves the most recent snapshot for sessionID. ok is false if none exists.
func (s *RedisSnapshotStore) Load(ctx context.Context, sessionID string) (Snapshot, bool, error) {
	val, err := s.client.Get(ctx, s.key(sessionID)).Result()
	if err != nil {
		if err == redis.Nil {
			return Snapshot{}, false, nil
		}
		return Snapshot{}, false, err
	}
	var snap Snapshot
	if err := json.Unmarshal([]byte(val), &snap); err != nil {
		return Snapshot{}, false, fmt.Errorf("durability: unmarshal snapshot: %w", err)
	}
	return snap, true, nil
}

// Restore rebuilds lanes and knowledge objects from snap into c. An existing
// lane with the same id keeps its name and policy (EnsureLane is
// idempotent), but its tag filter, status and pins are set from snap; object
// upserts overwrite whatever is already present.
func Restore(c *metacontext.Context, snap Snapshot) error {
	for _, l := range snap.Lanes {
		if _, err := c.EnsureLane(l.ID, l.Name, l.Policy); err != nil {
			return err
		}
		if _, err := c.SetLaneIncludeTagsAny(l.ID, l.IncludeTagsAny); err != nil {
			return err
		}
		if _, err := c.SetLaneStatus(l.ID, l.Status); err != nil {
			return err
		}
		for _, p := range l.Pinned {
			ref := metacontext.Ref{Kind: p.Kind, ID: p.ID}
			var err error
			if p.Pinned {
				_, err = c.PinInLane(l.ID, ref)
			} else {
				_, err = c.UnpinInLane(l.ID, ref)
			}
			if err != nil {
				return err
			}
		}
	}

	for _, g := range snap.Goals {
		if _, err := c.UpsertGoal(metacontext.GoalPayload{
			ID: g.ID, Title: g.Title, Description: g.Description,
			Priority: g.Priority, Status: g.Status, Tags: g.Tags, Provenance: g.Provenance,
		}); err != nil {
			return err
		}
	}
	for _, v := range snap.Constraints {
		if _, err := c.UpsertConstraint(metacontext.ConstraintPayload{
			ID: v.ID, Statement: v.Statement, Priority: v.Priority, Status: v.Status, Tags: v.Tags, Provenance: v.Provenance,
		}); err != nil {
			return err
		}
	}
	for _, v := range snap.Assumptions {
		if _, err := c.UpsertAssumption(metacontext.AssumptionPayload{
			ID: v.ID, Statement: v.Statement, Confidence: v.Confidence, Tags: v.Tags, Provenance: v.Provenance,
		}); err != nil {
			return err
		}
	}
	for _, v := range snap.Evidence {
		if _, err := c.IngestEvidence(metacontext.EvidencePayload{
			ID: v.ID, Summary: v.Summary, Detail: v.Detail, Severity: v.Severity, Confidence: v.Confidence, Tags: v.Tags, Provenance: v.Provenance,
		}); err != nil {
			return err
		}
	}
	for _, v := range snap.Questions {
		if _, err := c.UpsertQuestion(metacontext.QuestionPayload{
			ID: v.ID, Question: v.Question, Priority: v.Priority, Status: v.Status, Tags: v.Tags, Provenance: v.Provenance,
		}); err != nil {
			return err
		}
	}
	for _, v := range snap.Decisions {
		if _, err := c.UpsertDecision(metacontext.DecisionPayload{
			ID: v.ID, Statement: v.Statement, Rationale: v.Rationale, Status: v.Status, Tags: v.Tags, Provenance: v.Provenance,
		}); err != nil {
			return err
		}
	}
	return nil
}

// Close closes the underlying Redis client.
func (s *RedisSnapshotStore) Close() error {
	if s == nil || s.client == nil {
		return nil
	}
	return s.client.Close()
}
