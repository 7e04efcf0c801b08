package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidygrid/tidygrid/pkg/models"
)

func TestCheckClients_PriorityRange(t *testing.T) {
	tasks := []models.Task{{TaskID: "T1"}}

	tests := []struct {
		name      string
		priority  int
		wantError bool
	}{
		{"below range", 0, true},
		{"lower bound", 1, false},
		{"middle", 3, false},
		{"upper bound", 5, false},
		{"above range", 6, true},
		{"negative", -2, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clients := []models.Client{{ClientID: "C1", PriorityLevel: tt.priority}}

			issues := CheckClients(clients, tasks)

			var priorityErrors []models.Issue

			for _, issue := range issues {
				if issue.Field == "PriorityLevel" && issue.Severity == models.SeverityError {
					priorityErrors = append(priorityErrors, issue)
				}
			}

			if tt.wantError {
				require.Len(t, priorityErrors, 1)
				assert.Equal(t, "C1", priorityErrors[0].RowID)
			} else {
				assert.Empty(t, priorityErrors)
			}
		})
	}
}

func TestCheckClients_InvalidAttributes(t *testing.T) {
	clients := []models.Client{
		{ClientID: "C1", PriorityLevel: 2, AttributesJSON: models.InvalidAttributes("{not json")},
		{ClientID: "C2", PriorityLevel: 2, AttributesJSON: models.Attributes{"vip": true}},
		{ClientID: "C3", PriorityLevel: 2},
	}

	issues := CheckClients(clients, nil)

	require.Len(t, issues, 1)
	assert.Equal(t, "C1", issues[0].RowID)
	assert.Equal(t, "AttributesJSON", issues[0].Field)
	assert.Equal(t, models.SeverityError, issues[0].Severity)
}

func TestCheckClients_DanglingTaskReference(t *testing.T) {
	tasks := []models.Task{{TaskID: "T1"}, {TaskID: "T2"}}
	clients := []models.Client{
		{ClientID: "C1", PriorityLevel: 3, RequestedTaskIDs: []string{"T1", "T9", "", "T2"}},
	}

	issues := CheckClients(clients, tasks)

	require.Len(t, issues, 1)
	assert.Equal(t, "C1", issues[0].RowID)
	assert.Equal(t, "RequestedTaskIDs", issues[0].Field)
	assert.Equal(t, models.SeverityWarning, issues[0].Severity)
	assert.Contains(t, issues[0].Message, "T9")
}

func TestCheckWorkers(t *testing.T) {
	workers := []models.Worker{
		{WorkerID: "W1", WorkerName: "Ada", Skills: []string{"welding"}},
		{WorkerID: "W2", WorkerName: "", Skills: []string{"plumbing"}},
		{WorkerID: "W3", WorkerName: "Grace", Skills: nil},
	}

	issues := CheckWorkers(workers)

	require.Len(t, issues, 2)

	assert.Equal(t, "W2", issues[0].RowID)
	assert.Equal(t, "WorkerName", issues[0].Field)
	assert.Equal(t, models.SeverityError, issues[0].Severity)

	assert.Equal(t, "W3", issues[1].RowID)
	assert.Equal(t, "Skills", issues[1].Field)
	assert.Equal(t, models.SeverityWarning, issues[1].Severity)
}

func TestCheckWorkers_UnnamedAndUnskilled(t *testing.T) {
	workers := []models.Worker{{WorkerID: "W1"}}

	issues := CheckWorkers(workers)

	// Both checks fire for the same row, in check order.
	require.Len(t, issues, 2)
	assert.Equal(t, "WorkerName", issues[0].Field)
	assert.Equal(t, "Skills", issues[1].Field)
}

func TestCheckTasks(t *testing.T) {
	tasks := []models.Task{
		{TaskID: "T1", Duration: 1},
		{TaskID: "T2", Duration: 0},
		{TaskID: "T3", Duration: -1},
		{TaskID: "T4", Duration: 4},
	}

	issues := CheckTasks(tasks)

	require.Len(t, issues, 2)
	assert.Equal(t, "T2", issues[0].RowID)
	assert.Equal(t, "T3", issues[1].RowID)

	for _, issue := range issues {
		assert.Equal(t, "Duration", issue.Field)
		assert.Equal(t, models.SeverityError, issue.Severity)
	}
}

func TestCheckTasks_Empty(t *testing.T) {
	assert.Empty(t, CheckTasks(nil))
}
