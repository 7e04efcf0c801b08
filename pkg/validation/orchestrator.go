package validation

import (
	"github.com/tidygrid/tidygrid/pkg/models"
)

// All is the single entry point for a full validation pass. Issues are
// concatenated in a fixed order: entity validators, cross-entity validators,
// then rules in list order. No deduplication is performed; one (row, field)
// pair may legitimately carry several issues. Consumers that do not care
// about presentation order should treat the result as a multiset keyed by
// (rowId, field, severity).
func All(dataset *models.DataSet) []models.Issue {
	issues := make([]models.Issue, 0)

	issues = append(issues, CheckClients(dataset.Clients, dataset.Tasks)...)
	issues = append(issues, CheckWorkers(dataset.Workers)...)
	issues = append(issues, CheckTasks(dataset.Tasks)...)
	issues = append(issues, CheckSkillCoverage(dataset.Tasks, dataset.Workers)...)
	issues = append(issues, CheckDuplicateIDs(dataset)...)
	issues = append(issues, EvaluateRules(dataset, dataset.Rules)...)

	return issues
}
