// Package web provides HTTP request and response types for the session API.
package web

import "github.com/tidygrid/tidygrid/pkg/models"

// EditCellRequest represents the request body for overwriting one cell.
type EditCellRequest struct {
	EntityType string `json:"entityType" validate:"required,oneof=client worker task"`
	RowID      string `json:"rowId"      validate:"required"`
	Field      string `json:"field"      validate:"required"`
	Value      any    `json:"value"`
}

// SuggestRuleRequest represents the request body for converting a natural
// language description into a rule.
type SuggestRuleRequest struct {
	Description string `json:"description" validate:"required,min=3"`
}

// ApplyCorrectionsRequest represents the request body for applying reviewed
// correction proposals.
type ApplyCorrectionsRequest struct {
	Corrections []models.Correction `json:"corrections" validate:"required,min=1,dive"`
}

// SessionSummary is the list view of a stored session.
type SessionSummary struct {
	ID          string `json:"id"`
	ClientCount int    `json:"client_count"`
	WorkerCount int    `json:"worker_count"`
	TaskCount   int    `json:"task_count"`
	RuleCount   int    `json:"rule_count"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

// ExportResponse carries the export bundle as inline documents.
type ExportResponse struct {
	ClientsCSV string `json:"clients_csv"`
	WorkersCSV string `json:"workers_csv"`
	TasksCSV   string `json:"tasks_csv"`
	RulesJSON  string `json:"rules_json"`
}
