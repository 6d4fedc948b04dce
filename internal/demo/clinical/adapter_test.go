package clinical

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"metacontext/internal/metacontext"
)

func TestIngestPatient_CreatesGoalConstraintsAndEvidence(t *testing.T) {
	t.Parallel()
	ctx := metacontext.NewContext("ctx-test")
	a := New(ctx)

	refs, err := a.IngestPatient(PatientRecord{
		PatientID:  "p1",
		CareGoal:   "stabilize blood pressure",
		Allergies:  []string{"penicillin"},
		Conditions: []string{"hypertension"},
		Observations: []ObservationFixture{
			{Summary: "BP reading 150/95", Severity: "high", Confidence: "high"},
		},
	})
	require.NoError(t, err)
	require.Len(t, refs, 4)

	goal, ok := ctx.GetGoal("p1:care-goal")
	require.True(t, ok)
	assert.Equal(t, "stabilize blood pressure", goal.Title)

	constraint, ok := ctx.GetConstraint("p1:allergy:0")
	require.True(t, ok)
	assert.Contains(t, constraint.Statement, "penicillin")

	evidence, ok := ctx.GetEvidence("p1:observation:0")
	require.True(t, ok)
	assert.Equal(t, metacontext.SeverityHigh, evidence.Severity)
}

func TestIngestPatient_MissingPatientIDErrors(t *testing.T) {
	t.Parallel()
	ctx := metacontext.NewContext("ctx-test")
	a := New(ctx)
	_, err := a.IngestPatient(PatientRecord{CareGoal: "no id"})
	assert.Error(t, err)
}

func TestIngestFixture_ContinuesPastPerPatientErrors(t *testing.T) {
	t.Parallel()
	ctx := metacontext.NewContext("ctx-test")
	a := New(ctx)

	refs, errs := a.IngestFixture(Fixture{Patients: []PatientRecord{
		{PatientID: "", CareGoal: "bad record"},
		{PatientID: "p2", CareGoal: "good record"},
	}})
	assert.Len(t, errs, 1)
	require.Len(t, refs, 1)
	assert.Equal(t, "p2:care-goal", refs[0].ID)
}

func TestEnsurePatientLane_FiltersByPatientTag(t *testing.T) {
	t.Parallel()
	ctx := metacontext.NewContext("ctx-test")
	a := New(ctx)

	_, err := a.IngestPatient(PatientRecord{PatientID: "p1", CareGoal: "goal one"})
	require.NoError(t, err)
	_, err = a.IngestPatient(PatientRecord{PatientID: "p2", CareGoal: "goal two"})
	require.NoError(t, err)

	_, err = a.EnsurePatientLane("p1", 10)
	require.NoError(t, err)

	snap, err := ctx.RefreshLaneSelection("patient:p1")
	require.NoError(t, err)
	require.Len(t, snap.Selected, 1)
	assert.Equal(t, "p1:care-goal", snap.Selected[0].ID)
}
