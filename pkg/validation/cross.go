package validation

import (
	"fmt"

	"github.com/tidygrid/tidygrid/pkg/models"
)

// CheckSkillCoverage verifies that every skill required by any task is offered
// by at least one worker. Coverage is meaningless until both tables are
// present, so an empty table on either side yields no issues.
func CheckSkillCoverage(tasks []models.Task, workers []models.Worker) []models.Issue {
	issues := make([]models.Issue, 0)

	if len(tasks) == 0 || len(workers) == 0 {
		return issues
	}

	offered := make(map[string]struct{})

	for _, worker := range workers {
		for _, skill := range worker.Skills {
			offered[skill] = struct{}{}
		}
	}

	for _, task := range tasks {
		for _, skill := range task.RequiredSkills {
			if _, ok := offered[skill]; !ok {
				issues = append(issues, models.Issue{
					RowID:    task.TaskID,
					Field:    "RequiredSkills",
					Message:  fmt.Sprintf("No worker has required skill %q", skill),
					Severity: models.SeverityError,
				})
			}
		}
	}

	return issues
}

// CheckDuplicateIDs flags repeated identifiers within each table. The first
// occurrence of an identifier is never flagged; every later occurrence is.
func CheckDuplicateIDs(dataset *models.DataSet) []models.Issue {
	issues := make([]models.Issue, 0)

	seenClients := make(map[string]struct{}, len(dataset.Clients))
	for _, client := range dataset.Clients {
		if _, ok := seenClients[client.ClientID]; ok {
			issues = append(issues, models.Issue{
				RowID:    client.ClientID,
				Field:    "ClientID",
				Message:  "Duplicate ClientID found",
				Severity: models.SeverityError,
			})

			continue
		}

		seenClients[client.ClientID] = struct{}{}
	}

	seenWorkers := make(map[string]struct{}, len(dataset.Workers))
	for _, worker := range dataset.Workers {
		if _, ok := seenWorkers[worker.WorkerID]; ok {
			issues = append(issues, models.Issue{
				RowID:    worker.WorkerID,
				Field:    "WorkerID",
				Message:  "Duplicate WorkerID found",
				Severity: models.SeverityError,
			})

			continue
		}

		seenWorkers[worker.WorkerID] = struct{}{}
	}

	seenTasks := make(map[string]struct{}, len(dataset.Tasks))
	for _, task := range dataset.Tasks {
		if _, ok := seenTasks[task.TaskID]; ok {
			issues = append(issues, models.Issue{
				RowID:    task.TaskID,
				Field:    "TaskID",
				Message:  "Duplicate TaskID found",
				Severity: models.SeverityError,
			})

			continue
		}

		seenTasks[task.TaskID] = struct{}{}
	}

	return issues
}
