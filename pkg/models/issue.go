package models

// Severity classifies a validation issue. Errors gate export readiness,
// warnings do not.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Issue is the validation engine's unit of output. Issues are recomputed on
// every pass and never persisted; the presentation layer joins them back to
// rows by (RowID, Field).
type Issue struct {
	RowID    string   `json:"rowId"`
	Field    string   `json:"field"`
	Message  string   `json:"message"`
	Severity Severity `json:"severity"`
}

// CountBySeverity tallies errors and warnings in one walk.
func CountBySeverity(issues []Issue) (errorCount, warningCount int) {
	for _, issue := range issues {
		switch issue.Severity {
		case SeverityError:
			errorCount++
		case SeverityWarning:
			warningCount++
		}
	}

	return errorCount, warningCount
}
