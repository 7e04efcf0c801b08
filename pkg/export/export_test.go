package export

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidygrid/tidygrid/pkg/models"
)

func exportDataSet() *models.DataSet {
	return &models.DataSet{
		Clients: []models.Client{
			{
				ClientID:         "C1",
				ClientName:       "Acme",
				PriorityLevel:    3,
				RequestedTaskIDs: []string{"T1", "T2"},
				GroupTag:         "vip",
				AttributesJSON:   models.Attributes{"budget": float64(10000)},
			},
		},
		Workers: []models.Worker{
			{WorkerID: "W1", WorkerName: "Ada", Skills: []string{"welding"}, AvailableSlots: []int{1, 2}},
		},
		Tasks: []models.Task{
			{TaskID: "T1", TaskName: "Weld", Duration: 2, RequiredSkills: []string{"welding"}, PreferredPhases: []int{1, 2}},
		},
		Rules: []models.Rule{
			{ID: "r1", Type: models.RuleTypeCoRun, TaskIDs: []string{"T1", "T2"}},
		},
	}
}

func TestWriteClientsCSV(t *testing.T) {
	var buf bytes.Buffer

	require.NoError(t, WriteClientsCSV(&buf, exportDataSet().Clients))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "ClientID,ClientName,PriorityLevel,RequestedTaskIDs,GroupTag,AttributesJSON", lines[0])
	assert.Contains(t, lines[1], "C1,Acme,3,")
	assert.Contains(t, lines[1], `T1,T2`)
	assert.Contains(t, lines[1], "budget")
}

func TestWriteWorkersCSV(t *testing.T) {
	var buf bytes.Buffer

	require.NoError(t, WriteWorkersCSV(&buf, exportDataSet().Workers))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[1], "W1,Ada,welding")
	assert.Contains(t, lines[1], `1,2`)
}

func TestWriteRuleConfig(t *testing.T) {
	var buf bytes.Buffer

	require.NoError(t, WriteRuleConfig(&buf, exportDataSet().Rules))

	var config RuleConfig

	require.NoError(t, json.Unmarshal(buf.Bytes(), &config))
	require.Len(t, config.Rules, 1)
	assert.Equal(t, models.RuleTypeCoRun, config.Rules[0].Type)
	assert.False(t, config.GeneratedAt.IsZero())
}

func TestWriteRuleConfig_EmptyRules(t *testing.T) {
	var buf bytes.Buffer

	require.NoError(t, WriteRuleConfig(&buf, nil))
	assert.Contains(t, buf.String(), `"rules": []`)
}

func TestBuild_RefusesWithErrors(t *testing.T) {
	issues := []models.Issue{
		{RowID: "C1", Field: "PriorityLevel", Severity: models.SeverityError},
	}

	_, err := Build(exportDataSet(), issues, false)
	assert.ErrorIs(t, err, ErrUnresolvedErrors)
}

func TestBuild_ForceOverridesGate(t *testing.T) {
	issues := []models.Issue{
		{RowID: "C1", Field: "PriorityLevel", Severity: models.SeverityError},
	}

	bundle, err := Build(exportDataSet(), issues, true)
	require.NoError(t, err)
	assert.NotEmpty(t, bundle.ClientsCSV)
}

func TestBuild_WarningsDoNotBlock(t *testing.T) {
	issues := []models.Issue{
		{RowID: "C1", Field: "RequestedTaskIDs", Severity: models.SeverityWarning},
	}

	bundle, err := Build(exportDataSet(), issues, false)
	require.NoError(t, err)

	assert.NotEmpty(t, bundle.ClientsCSV)
	assert.NotEmpty(t, bundle.WorkersCSV)
	assert.NotEmpty(t, bundle.TasksCSV)
	assert.NotEmpty(t, bundle.RulesJSON)
}
