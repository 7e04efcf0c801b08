package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidygrid/tidygrid/pkg/models"
)

func corunRule(taskIDs ...string) models.Rule {
	return models.Rule{ID: "r-corun", Type: models.RuleTypeCoRun, TaskIDs: taskIDs}
}

func TestEvaluateRules_CoRunPartialCommitment(t *testing.T) {
	tests := []struct {
		name        string
		requested   []string
		wantWarning bool
	}{
		{"requests none of the group", nil, false},
		{"requests one of two", []string{"T1"}, true},
		{"requests all of the group", []string{"T1", "T2"}, false},
		{"requests all plus unrelated", []string{"T1", "T2", "T5"}, false},
		{"duplicate entries count once", []string{"T1", "T1"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dataset := &models.DataSet{
				Clients: []models.Client{
					{ClientID: "C1", RequestedTaskIDs: tt.requested},
				},
			}

			issues := EvaluateRules(dataset, []models.Rule{corunRule("T1", "T2")})

			if tt.wantWarning {
				require.Len(t, issues, 1)
				assert.Equal(t, "C1", issues[0].RowID)
				assert.Equal(t, "RequestedTaskIDs", issues[0].Field)
				assert.Equal(t, models.SeverityWarning, issues[0].Severity)
			} else {
				assert.Empty(t, issues)
			}
		})
	}
}

func TestEvaluateRules_CoRunMalformedRuleIsInert(t *testing.T) {
	dataset := &models.DataSet{
		Clients: []models.Client{{ClientID: "C1", RequestedTaskIDs: []string{"T1"}}},
	}

	// A co-run group needs at least two tasks to mean anything.
	issues := EvaluateRules(dataset, []models.Rule{corunRule("T1")})
	assert.Empty(t, issues)

	issues = EvaluateRules(dataset, []models.Rule{corunRule()})
	assert.Empty(t, issues)
}

func TestEvaluateRules_SlotRestrictionWorkerGroup(t *testing.T) {
	dataset := &models.DataSet{
		Workers: []models.Worker{
			{WorkerID: "W1", WorkerGroup: "field", AvailableSlots: []int{1, 2, 3}},
			{WorkerID: "W2", WorkerGroup: "field", AvailableSlots: []int{2, 3, 4}},
			{WorkerID: "W3", WorkerGroup: "office", AvailableSlots: []int{9}},
		},
	}

	rule := models.Rule{
		ID:             "r-slots",
		Type:           models.RuleTypeSlotRestriction,
		TargetGroup:    models.GroupTargetWorker,
		GroupTag:       "field",
		MinCommonSlots: 3,
	}

	issues := EvaluateRules(dataset, []models.Rule{rule})

	// Common slots are {2,3}; every member of the group gets the warning.
	require.Len(t, issues, 2)

	for i, workerID := range []string{"W1", "W2"} {
		assert.Equal(t, workerID, issues[i].RowID)
		assert.Equal(t, "AvailableSlots", issues[i].Field)
		assert.Equal(t, models.SeverityWarning, issues[i].Severity)
		assert.Contains(t, issues[i].Message, "shares 2 common slots")
		assert.Contains(t, issues[i].Message, "requires 3")
	}
}

func TestEvaluateRules_SlotRestrictionSatisfied(t *testing.T) {
	dataset := &models.DataSet{
		Workers: []models.Worker{
			{WorkerID: "W1", WorkerGroup: "field", AvailableSlots: []int{1, 2}},
			{WorkerID: "W2", WorkerGroup: "field", AvailableSlots: []int{1, 2}},
		},
	}

	rule := models.Rule{
		Type:           models.RuleTypeSlotRestriction,
		TargetGroup:    models.GroupTargetWorker,
		GroupTag:       "field",
		MinCommonSlots: 2,
	}

	assert.Empty(t, EvaluateRules(dataset, []models.Rule{rule}))
}

func TestEvaluateRules_SlotRestrictionSingletonGroupExempt(t *testing.T) {
	dataset := &models.DataSet{
		Workers: []models.Worker{
			{WorkerID: "W1", WorkerGroup: "solo", AvailableSlots: nil},
		},
	}

	rule := models.Rule{
		Type:           models.RuleTypeSlotRestriction,
		TargetGroup:    models.GroupTargetWorker,
		GroupTag:       "solo",
		MinCommonSlots: 99,
	}

	assert.Empty(t, EvaluateRules(dataset, []models.Rule{rule}))
}

func TestEvaluateRules_SlotRestrictionClientGroup(t *testing.T) {
	// Clients declare no availability, so any client group of two or more
	// members fails a minimum of one common slot.
	dataset := &models.DataSet{
		Clients: []models.Client{
			{ClientID: "C1", GroupTag: "vip"},
			{ClientID: "C2", GroupTag: "vip"},
			{ClientID: "C3", GroupTag: "standard"},
		},
	}

	rule := models.Rule{
		Type:           models.RuleTypeSlotRestriction,
		TargetGroup:    models.GroupTargetClient,
		GroupTag:       "vip",
		MinCommonSlots: 1,
	}

	issues := EvaluateRules(dataset, []models.Rule{rule})

	require.Len(t, issues, 2)
	assert.Equal(t, "C1", issues[0].RowID)
	assert.Equal(t, "C2", issues[1].RowID)
}

func TestEvaluateRules_SlotRestrictionMalformedRuleIsInert(t *testing.T) {
	dataset := &models.DataSet{
		Workers: []models.Worker{
			{WorkerID: "W1", WorkerGroup: "field"},
			{WorkerID: "W2", WorkerGroup: "field"},
		},
	}

	rules := []models.Rule{
		{Type: models.RuleTypeSlotRestriction, TargetGroup: models.GroupTargetWorker, MinCommonSlots: 1},   // no group tag
		{Type: models.RuleTypeSlotRestriction, TargetGroup: models.GroupTargetWorker, GroupTag: "field"},   // no minimum
		{Type: models.RuleTypeSlotRestriction, GroupTag: "field", MinCommonSlots: 1},                       // no target
		{Type: models.RuleTypeSlotRestriction, TargetGroup: "team", GroupTag: "field", MinCommonSlots: 1},  // unknown target
	}

	assert.Empty(t, EvaluateRules(dataset, rules))
}

func TestEvaluateRules_PhaseWindowConflict(t *testing.T) {
	dataset := &models.DataSet{
		Tasks: []models.Task{
			{TaskID: "T5", Duration: 1, PreferredPhases: []int{1, 2}},
		},
	}

	rule := models.Rule{
		ID:            "r-window",
		Type:          models.RuleTypePhaseWindow,
		TaskID:        "T5",
		AllowedPhases: []int{3, 4},
	}

	issues := EvaluateRules(dataset, []models.Rule{rule})

	require.Len(t, issues, 1)
	assert.Equal(t, "T5", issues[0].RowID)
	assert.Equal(t, "PreferredPhases", issues[0].Field)
	assert.Equal(t, models.SeverityError, issues[0].Severity)
}

func TestEvaluateRules_PhaseWindowOverlapIsCompliant(t *testing.T) {
	dataset := &models.DataSet{
		Tasks: []models.Task{
			{TaskID: "T5", Duration: 1, PreferredPhases: []int{1, 2}},
		},
	}

	rule := models.Rule{
		Type:          models.RuleTypePhaseWindow,
		TaskID:        "T5",
		AllowedPhases: []int{2, 3},
	}

	assert.Empty(t, EvaluateRules(dataset, []models.Rule{rule}))
}

func TestEvaluateRules_PhaseWindowSkips(t *testing.T) {
	dataset := &models.DataSet{
		Tasks: []models.Task{
			{TaskID: "T1", Duration: 1}, // no preferred phases
		},
	}

	rules := []models.Rule{
		{Type: models.RuleTypePhaseWindow, TaskID: "T9", AllowedPhases: []int{1}}, // unknown task
		{Type: models.RuleTypePhaseWindow, TaskID: "T1", AllowedPhases: []int{1}}, // no stated preference
		{Type: models.RuleTypePhaseWindow, TaskID: "T1"},                          // no window
	}

	assert.Empty(t, EvaluateRules(dataset, rules))
}

func TestEvaluateRules_LoadLimitEmitsNothing(t *testing.T) {
	dataset := &models.DataSet{
		Workers: []models.Worker{
			{WorkerID: "W1", WorkerGroup: "field", MaxLoadPerPhase: 1},
		},
	}

	rules := []models.Rule{
		{Type: models.RuleTypeLoadLimit, WorkerGroup: "field", MaxSlotsPerPhase: 1},
		{Type: models.RuleTypeLoadLimit, WorkerGroup: "ghost", MaxSlotsPerPhase: 1},
	}

	assert.Empty(t, EvaluateRules(dataset, rules))
}

func TestEvaluateRules_PatternMatchAndUnknownTypesTolerated(t *testing.T) {
	dataset := &models.DataSet{
		Clients: []models.Client{{ClientID: "C1"}},
	}

	rules := []models.Rule{
		{Type: models.RuleTypePatternMatch, Pattern: "^T[0-9]+$", RuleTemplate: "tag"},
		{Type: "futureRule"},
	}

	assert.Empty(t, EvaluateRules(dataset, rules))
}

func TestEvaluateRules_RuleOrderPreserved(t *testing.T) {
	dataset := &models.DataSet{
		Clients: []models.Client{
			{ClientID: "C1", RequestedTaskIDs: []string{"T1"}},
		},
		Tasks: []models.Task{
			{TaskID: "T5", Duration: 1, PreferredPhases: []int{1}},
		},
	}

	rules := []models.Rule{
		{Type: models.RuleTypePhaseWindow, TaskID: "T5", AllowedPhases: []int{9}},
		corunRule("T1", "T2"),
	}

	issues := EvaluateRules(dataset, rules)

	require.Len(t, issues, 2)
	assert.Equal(t, "T5", issues[0].RowID)
	assert.Equal(t, "C1", issues[1].RowID)
}
