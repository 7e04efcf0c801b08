package models

import (
	"maps"
	"slices"
	"time"
)

// DataSet is one editing session's worth of state: the three entity tables
// plus the active rule list. Tables are replaced wholesale on upload and
// mutated field by field on inline edits or correction application.
type DataSet struct {
	ID        string    `json:"id"`
	Clients   []Client  `json:"clients"`
	Workers   []Worker  `json:"workers"`
	Tasks     []Task    `json:"tasks"`
	Rules     []Rule    `json:"rules"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TaskByID finds a task by identifier. Returns nil when absent.
func (d *DataSet) TaskByID(id string) *Task {
	for i := range d.Tasks {
		if d.Tasks[i].TaskID == id {
			return &d.Tasks[i]
		}
	}

	return nil
}

// Clone returns a deep copy so callers can stage mutations without aliasing
// the stored dataset.
func (d *DataSet) Clone() *DataSet {
	if d == nil {
		return nil
	}

	clone := *d

	clone.Clients = make([]Client, len(d.Clients))
	for i, client := range d.Clients {
		client.RequestedTaskIDs = slices.Clone(client.RequestedTaskIDs)
		if client.AttributesJSON != nil {
			client.AttributesJSON = maps.Clone(client.AttributesJSON)
		}

		clone.Clients[i] = client
	}

	clone.Workers = make([]Worker, len(d.Workers))
	for i, worker := range d.Workers {
		worker.Skills = slices.Clone(worker.Skills)
		worker.AvailableSlots = slices.Clone(worker.AvailableSlots)
		clone.Workers[i] = worker
	}

	clone.Tasks = make([]Task, len(d.Tasks))
	for i, task := range d.Tasks {
		task.RequiredSkills = slices.Clone(task.RequiredSkills)
		task.PreferredPhases = slices.Clone(task.PreferredPhases)
		clone.Tasks[i] = task
	}

	clone.Rules = make([]Rule, len(d.Rules))
	for i, rule := range d.Rules {
		rule.TaskIDs = slices.Clone(rule.TaskIDs)
		rule.AllowedPhases = slices.Clone(rule.AllowedPhases)
		if rule.Parameters != nil {
			rule.Parameters = maps.Clone(rule.Parameters)
		}

		clone.Rules[i] = rule
	}

	return &clone
}
