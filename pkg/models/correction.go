package models

// EntityType names one of the three entity tables.
type EntityType string

const (
	EntityTypeClient EntityType = "client"
	EntityTypeWorker EntityType = "worker"
	EntityTypeTask   EntityType = "task"
)

// CorrectionType selects how a correction writes its field.
type CorrectionType string

const (
	// CorrectionReplace overwrites the field outright.
	CorrectionReplace CorrectionType = "replace"
	// CorrectionAppend unions the new value(s) into a set-valued field.
	CorrectionAppend CorrectionType = "append"
)

// Correction is an externally generated proposal to mutate one field of one
// row. Applying it is unconditional; the next validation pass decides whether
// the original issue is actually gone.
type Correction struct {
	ID             string         `json:"id,omitempty"`
	RowID          string         `json:"rowId"          validate:"required"`
	EntityType     EntityType     `json:"entityType"     validate:"required,oneof=client worker task"`
	Field          string         `json:"field"          validate:"required"`
	NewValue       any            `json:"newValue"`
	Reason         string         `json:"reason,omitempty"`
	CorrectionType CorrectionType `json:"correctionType" validate:"required,oneof=replace append"`
}
