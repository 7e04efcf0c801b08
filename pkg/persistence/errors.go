package persistence

import (
	"errors"
	"fmt"
)

// ErrDataSetNotFound indicates no session exists for the given identifier.
// Save is an upsert, so backends have no already-exists condition to report.
var ErrDataSetNotFound = errors.New("dataset not found")

// DataSetError wraps dataset storage errors with operation context.
type DataSetError struct {
	Op        string // Operation being performed (e.g., "GetByID", "Save", "Delete")
	DataSetID string
	Err       error
}

func (e *DataSetError) Error() string {
	return fmt.Sprintf("%s operation failed for dataset %s: %v", e.Op, e.DataSetID, e.Err)
}

func (e *DataSetError) Unwrap() error {
	return e.Err
}

// NewDataSetError creates a wrapped dataset storage error.
func NewDataSetError(op, datasetID string, err error) *DataSetError {
	return &DataSetError{Op: op, DataSetID: datasetID, Err: err}
}

// IsDataSetNotFound checks if an error indicates a missing session.
func IsDataSetNotFound(err error) bool {
	return errors.Is(err, ErrDataSetNotFound)
}
