package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidygrid/tidygrid/pkg/models"
)

func TestCheckSkillCoverage_MissingSkill(t *testing.T) {
	tasks := []models.Task{
		{TaskID: "T1", Duration: 1, RequiredSkills: []string{"welding"}},
	}
	workers := []models.Worker{
		{WorkerID: "W1", WorkerName: "Ada", Skills: []string{"plumbing"}},
	}

	issues := CheckSkillCoverage(tasks, workers)

	require.Len(t, issues, 1)
	assert.Equal(t, "T1", issues[0].RowID)
	assert.Equal(t, "RequiredSkills", issues[0].Field)
	assert.Equal(t, models.SeverityError, issues[0].Severity)
	assert.Contains(t, issues[0].Message, "welding")
}

func TestCheckSkillCoverage_CoveredAfterHire(t *testing.T) {
	tasks := []models.Task{
		{TaskID: "T1", Duration: 1, RequiredSkills: []string{"welding"}},
	}
	workers := []models.Worker{
		{WorkerID: "W1", WorkerName: "Ada", Skills: []string{"plumbing"}},
		{WorkerID: "W2", WorkerName: "Lin", Skills: []string{"welding"}},
	}

	assert.Empty(t, CheckSkillCoverage(tasks, workers))
}

func TestCheckSkillCoverage_ShortCircuitsOnEmptyTable(t *testing.T) {
	tasks := []models.Task{
		{TaskID: "T1", RequiredSkills: []string{"welding"}},
	}

	assert.Empty(t, CheckSkillCoverage(tasks, nil))
	assert.Empty(t, CheckSkillCoverage(nil, []models.Worker{{WorkerID: "W1"}}))
}

func TestCheckSkillCoverage_DuplicateSkillTagsActAsSet(t *testing.T) {
	tasks := []models.Task{
		{TaskID: "T1", RequiredSkills: []string{"welding", "welding"}},
	}
	workers := []models.Worker{
		{WorkerID: "W1", Skills: []string{"welding", "welding"}},
	}

	assert.Empty(t, CheckSkillCoverage(tasks, workers))
}

func TestCheckDuplicateIDs(t *testing.T) {
	dataset := &models.DataSet{
		Clients: []models.Client{
			{ClientID: "C1"},
			{ClientID: "C1"},
			{ClientID: "C2"},
		},
		Workers: []models.Worker{
			{WorkerID: "W1"},
			{WorkerID: "W2"},
		},
		Tasks: []models.Task{
			{TaskID: "T1"},
			{TaskID: "T1"},
			{TaskID: "T1"},
		},
	}

	issues := CheckDuplicateIDs(dataset)

	// Second client occurrence, plus second and third task occurrences.
	require.Len(t, issues, 3)

	assert.Equal(t, "C1", issues[0].RowID)
	assert.Equal(t, "ClientID", issues[0].Field)
	assert.Equal(t, "Duplicate ClientID found", issues[0].Message)

	assert.Equal(t, "T1", issues[1].RowID)
	assert.Equal(t, "Duplicate TaskID found", issues[1].Message)
	assert.Equal(t, "T1", issues[2].RowID)

	for _, issue := range issues {
		assert.Equal(t, models.SeverityError, issue.Severity)
	}
}

func TestCheckDuplicateIDs_AllUnique(t *testing.T) {
	dataset := &models.DataSet{
		Clients: []models.Client{{ClientID: "C1"}, {ClientID: "C2"}},
		Workers: []models.Worker{{WorkerID: "W1"}},
		Tasks:   []models.Task{{TaskID: "T1"}},
	}

	assert.Empty(t, CheckDuplicateIDs(dataset))
}

func TestCheckDuplicateIDs_TablesTrackedIndependently(t *testing.T) {
	// The same identifier in different tables is not a duplicate.
	dataset := &models.DataSet{
		Clients: []models.Client{{ClientID: "X1"}},
		Workers: []models.Worker{{WorkerID: "X1"}},
		Tasks:   []models.Task{{TaskID: "X1"}},
	}

	assert.Empty(t, CheckDuplicateIDs(dataset))
}
