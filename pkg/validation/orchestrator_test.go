package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidygrid/tidygrid/pkg/models"
)

func sampleDataSet() *models.DataSet {
	return &models.DataSet{
		ID: "session-1",
		Clients: []models.Client{
			{ClientID: "C1", PriorityLevel: 9, RequestedTaskIDs: []string{"T1"}},
			{ClientID: "C1", PriorityLevel: 2},
		},
		Workers: []models.Worker{
			{WorkerID: "W1", WorkerName: "Ada", Skills: []string{"plumbing"}},
		},
		Tasks: []models.Task{
			{TaskID: "T1", Duration: 0, RequiredSkills: []string{"welding"}, PreferredPhases: []int{1}},
		},
		Rules: []models.Rule{
			{ID: "r1", Type: models.RuleTypePhaseWindow, TaskID: "T1", AllowedPhases: []int{4}},
			{ID: "r2", Type: models.RuleTypeCoRun, TaskIDs: []string{"T1", "T2"}},
		},
	}
}

func TestAll_FixedOrder(t *testing.T) {
	issues := All(sampleDataSet())

	require.Len(t, issues, 6)

	// Entity validators first: client range error, then its duplicate row is
	// clean, then worker and task checks.
	assert.Equal(t, "PriorityLevel", issues[0].Field)
	assert.Equal(t, "Duration", issues[1].Field)

	// Cross-entity validators: skill coverage, then duplicate IDs.
	assert.Equal(t, "RequiredSkills", issues[2].Field)
	assert.Equal(t, "ClientID", issues[3].Field)

	// Rules in list order: phase window conflict, then partial co-run.
	assert.Equal(t, "PreferredPhases", issues[4].Field)
	assert.Equal(t, models.SeverityError, issues[4].Severity)
	assert.Equal(t, "RequestedTaskIDs", issues[5].Field)
	assert.Equal(t, models.SeverityWarning, issues[5].Severity)
}

func TestAll_Deterministic(t *testing.T) {
	dataset := sampleDataSet()

	first := All(dataset)
	second := All(dataset)

	assert.Equal(t, first, second)
}

func TestAll_DoesNotMutateInput(t *testing.T) {
	dataset := sampleDataSet()
	reference := dataset.Clone()

	_ = All(dataset)

	assert.Equal(t, reference, dataset.Clone())
}

func TestAll_CleanDataSet(t *testing.T) {
	dataset := &models.DataSet{
		Clients: []models.Client{
			{ClientID: "C1", PriorityLevel: 3, RequestedTaskIDs: []string{"T1"}},
		},
		Workers: []models.Worker{
			{WorkerID: "W1", WorkerName: "Ada", Skills: []string{"welding"}, AvailableSlots: []int{1}},
		},
		Tasks: []models.Task{
			{TaskID: "T1", TaskName: "Weld", Duration: 2, RequiredSkills: []string{"welding"}},
		},
	}

	assert.Empty(t, All(dataset))
}

func TestAll_SameCellCanCarryMultipleIssues(t *testing.T) {
	dataset := &models.DataSet{
		Clients: []models.Client{
			{ClientID: "C1", PriorityLevel: 3, RequestedTaskIDs: []string{"T1", "T9"}},
		},
		Tasks: []models.Task{
			{TaskID: "T1", Duration: 1},
		},
		Rules: []models.Rule{
			{Type: models.RuleTypeCoRun, TaskIDs: []string{"T1", "T2"}},
		},
	}

	issues := All(dataset)

	var onRequested []models.Issue

	for _, issue := range issues {
		if issue.RowID == "C1" && issue.Field == "RequestedTaskIDs" {
			onRequested = append(onRequested, issue)
		}
	}

	// Dangling reference warning plus partial co-run warning, no dedup.
	assert.Len(t, onRequested, 2)
}
