// Package clinical adapts patient-record fixtures into the meta-context
// engine's knowledge objects: each record becomes a goal (the care
// objective), zero or more constraints (allergies, conditions), and
// evidence (lab results, observations). This is a demo integration, not part
// of the engine itself.
package clinical

import (
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"metacontext/internal/metacontext"
)

// PatientRecord is the on-disk fixture shape for one patient.
type PatientRecord struct {
	PatientID    string               `yaml:"patient_id"`
	CareGoal     string               `yaml:"care_goal"`
	Priority     string               `yaml:"priority"`
	Allergies    []string             `yaml:"allergies"`
	Conditions   []string             `yaml:"conditions"`
	Observations []ObservationFixture `yaml:"observations"`
}

// ObservationFixture is one lab result or clinical observation.
type ObservationFixture struct {
	Summary    string `yaml:"summary"`
	Detail     string `yaml:"detail"`
	Severity   string `yaml:"severity"`
	Confidence string `yaml:"confidence"`
}

// Fixture is the top-level shape of a patient-records YAML file.
type Fixture struct {
	Patients []PatientRecord `yaml:"patients"`
}

// LoadFixture reads and parses a patient-records YAML file from path.
func LoadFixture(path string) (Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Fixture{}, fmt.Errorf("clinical: read fixture: %w", err)
	}
	var fx Fixture
	if err := yaml.Unmarshal(data, &fx); err != nil {
		return Fixture{}, fmt.Errorf("clinical: parse fixture: %w", err)
	}
	return fx, nil
}

// Adapter upserts patient records into an engine Context, tagging every
// knowledge object with the owning patient so a per-patient lane can filter
// on it.
type Adapter struct {
	ctx *metacontext.Context
}

// New builds an adapter writing into ctx.
func New(ctx *metacontext.Context) *Adapter {
	return &Adapter{ctx: ctx}
}

func patientTag(patientID string) metacontext.Tag {
	return metacontext.NewTag("patient", patientID)
}

func domainTag() metacontext.Tag {
	return metacontext.NewTag("domain", "clinical")
}

// IngestPatient upserts one patient record's care goal, allergy/condition
// constraints, and observations as evidence. Returns the refs created so a
// caller can pin any of them.
func (a *Adapter) IngestPatient(p PatientRecord) ([]metacontext.Ref, error) {
	if p.PatientID == "" {
		return nil, fmt.Errorf("clinical: patient_id is required")
	}
	var refs []metacontext.Ref
	tag := patientTag(p.PatientID)

	if p.CareGoal != "" {
		goalID := p.PatientID + ":care-goal"
		snap, err := a.ctx.UpsertGoal(metacontext.GoalPayload{
			ID:       goalID,
			Title:    p.CareGoal,
			Priority: priorityOrDefault(p.Priority),
			Tags:     []metacontext.Tag{tag, domainTag()},
		})
		if err != nil {
			return nil, fmt.Errorf("clinical: upsert care goal for %s: %w", p.PatientID, err)
		}
		refs = append(refs, metacontext.Ref{Kind: metacontext.KindGoal, ID: snap.ID})
	}

	for i, allergy := range p.Allergies {
		constraintID := fmt.Sprintf("%s:allergy:%d", p.PatientID, i)
		snap, err := a.ctx.UpsertConstraint(metacontext.ConstraintPayload{
			ID:        constraintID,
			Statement: "allergic to " + allergy,
			Priority:  metacontext.PriorityP0,
			Tags:      []metacontext.Tag{tag, domainTag(), metacontext.NewKeyTag("allergy")},
		})
		if err != nil {
			return nil, fmt.Errorf("clinical: upsert allergy constraint for %s: %w", p.PatientID, err)
		}
		refs = append(refs, metacontext.Ref{Kind: metacontext.KindConstraint, ID: snap.ID})
	}

	for i, cond := range p.Conditions {
		constraintID := fmt.Sprintf("%s:condition:%d", p.PatientID, i)
		snap, err := a.ctx.UpsertConstraint(metacontext.ConstraintPayload{
			ID:        constraintID,
			Statement: cond,
			Priority:  metacontext.PriorityP1,
			Tags:      []metacontext.Tag{tag, domainTag(), metacontext.NewKeyTag("condition")},
		})
		if err != nil {
			return nil, fmt.Errorf("clinical: upsert condition constraint for %s: %w", p.PatientID, err)
		}
		refs = append(refs, metacontext.Ref{Kind: metacontext.KindConstraint, ID: snap.ID})
	}

	for i, obs := range p.Observations {
		evidenceID := fmt.Sprintf("%s:observation:%d", p.PatientID, i)
		snap, err := a.ctx.IngestEvidence(metacontext.EvidencePayload{
			ID:         evidenceID,
			Summary:    obs.Summary,
			Detail:     obs.Detail,
			Severity:   metacontext.Severity(obs.Severity),
			Confidence: metacontext.Confidence(obs.Confidence),
			Tags:       []metacontext.Tag{tag, domainTag()},
		})
		if err != nil {
			return nil, fmt.Errorf("clinical: ingest observation for %s: %w", p.PatientID, err)
		}
		refs = append(refs, metacontext.Ref{Kind: metacontext.KindEvidence, ID: snap.ID})
	}

	log.Debug().Str("patient_id", p.PatientID).Int("object_count", len(refs)).Msg("clinical: patient ingested")
	return refs, nil
}

// IngestFixture ingests every patient in fx, continuing past per-patient
// errors and returning them all together.
func (a *Adapter) IngestFixture(fx Fixture) ([]metacontext.Ref, []error) {
	var refs []metacontext.Ref
	var errs []error
	for _, p := range fx.Patients {
		patientRefs, err := a.IngestPatient(p)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		refs = append(refs, patientRefs...)
	}
	return refs, errs
}

// EnsurePatientLane creates (or returns) a lane scoped to one patient's
// objects via the "patient" tag.
func (a *Adapter) EnsurePatientLane(patientID string, maxItems int) (metacontext.LaneSnapshot, error) {
	laneID := "patient:" + patientID
	policy := metacontext.DefaultLaneWindowPolicy()
	policy.MaxItems = maxItems
	snap, err := a.ctx.EnsureLane(laneID, "Patient "+patientID, policy)
	if err != nil {
		return metacontext.LaneSnapshot{}, err
	}
	if _, err := a.ctx.SetLaneIncludeTagsAny(laneID, []metacontext.Tag{patientTag(patientID)}); err != nil {
		return metacontext.LaneSnapshot{}, err
	}
	return snap, nil
}

func priorityOrDefault(p string) metacontext.Priority {
	if p == "" {
		return metacontext.PriorityP2
	}
	return metacontext.Priority(p)
}
