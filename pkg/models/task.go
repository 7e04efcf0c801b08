package models

// Task is a row of the Tasks table.
type Task struct {
	TaskID          string   `json:"TaskID"          validate:"required"`
	TaskName        string   `json:"TaskName"`
	Category        string   `json:"Category"`
	Duration        int      `json:"Duration"` // phases, must be >= 1
	RequiredSkills  []string `json:"RequiredSkills"`
	PreferredPhases []int    `json:"PreferredPhases"`
	MaxConcurrent   int      `json:"MaxConcurrent"`
}
