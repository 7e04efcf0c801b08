// Package validation implements the deterministic consistency pass over a
// planning dataset and its business rules. Every check is a pure function of
// its arguments: no retained state, no mutation of inputs, identical output
// for identical input. The engine is re-run from scratch after every edit.
package validation

import (
	"fmt"

	"github.com/tidygrid/tidygrid/pkg/models"
)

// CheckClients validates each client row in table order. Task identifiers are
// needed to flag dangling RequestedTaskIDs entries, which are warnings rather
// than errors: a request for a task that does not exist yet is incomplete, not
// impossible.
func CheckClients(clients []models.Client, tasks []models.Task) []models.Issue {
	issues := make([]models.Issue, 0)

	taskIDs := make(map[string]struct{}, len(tasks))
	for _, task := range tasks {
		taskIDs[task.TaskID] = struct{}{}
	}

	for _, client := range clients {
		if client.PriorityLevel < 1 || client.PriorityLevel > 5 {
			issues = append(issues, models.Issue{
				RowID:    client.ClientID,
				Field:    "PriorityLevel",
				Message:  fmt.Sprintf("PriorityLevel must be between 1 and 5, got %d", client.PriorityLevel),
				Severity: models.SeverityError,
			})
		}

		if client.AttributesJSON.Invalid() {
			issues = append(issues, models.Issue{
				RowID:    client.ClientID,
				Field:    "AttributesJSON",
				Message:  "AttributesJSON is not valid JSON",
				Severity: models.SeverityError,
			})
		}

		for _, taskID := range client.RequestedTaskIDs {
			if taskID == "" {
				continue
			}

			if _, ok := taskIDs[taskID]; !ok {
				issues = append(issues, models.Issue{
					RowID:    client.ClientID,
					Field:    "RequestedTaskIDs",
					Message:  fmt.Sprintf("Requested task %q does not exist", taskID),
					Severity: models.SeverityWarning,
				})
			}
		}
	}

	return issues
}

// CheckWorkers validates each worker row in table order.
func CheckWorkers(workers []models.Worker) []models.Issue {
	issues := make([]models.Issue, 0)

	for _, worker := range workers {
		if worker.WorkerName == "" {
			issues = append(issues, models.Issue{
				RowID:    worker.WorkerID,
				Field:    "WorkerName",
				Message:  "WorkerName is required",
				Severity: models.SeverityError,
			})
		}

		if len(worker.Skills) == 0 {
			issues = append(issues, models.Issue{
				RowID:    worker.WorkerID,
				Field:    "Skills",
				Message:  "Worker has no skills listed",
				Severity: models.SeverityWarning,
			})
		}
	}

	return issues
}

// CheckTasks validates each task row in table order.
func CheckTasks(tasks []models.Task) []models.Issue {
	issues := make([]models.Issue, 0)

	for _, task := range tasks {
		if task.Duration < 1 {
			issues = append(issues, models.Issue{
				RowID:    task.TaskID,
				Field:    "Duration",
				Message:  fmt.Sprintf("Duration must be at least 1 phase, got %d", task.Duration),
				Severity: models.SeverityError,
			})
		}
	}

	return issues
}
