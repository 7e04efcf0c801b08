package models

// Worker is a row of the Workers table.
type Worker struct {
	WorkerID           string   `json:"WorkerID"           validate:"required"`
	WorkerName         string   `json:"WorkerName"`
	Skills             []string `json:"Skills"`
	AvailableSlots     []int    `json:"AvailableSlots"`
	MaxLoadPerPhase    int      `json:"MaxLoadPerPhase"    validate:"min=0"`
	WorkerGroup        string   `json:"WorkerGroup"`
	QualificationLevel int      `json:"QualificationLevel"`
}
