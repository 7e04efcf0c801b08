// Package events defines event types for dataset lifecycle notifications.
package events

import (
	"time"
)

type EventType string

// Topic carries every dataset lifecycle event.
const Topic = "tidygrid.events"

const EventMetadataKey = "key"
const EventTypeMetadataKey = "event_type"

const (
	DataSetUploadedEvent   EventType = "dataset.uploaded"
	DataSetValidatedEvent  EventType = "dataset.validated"
	DataSetExportedEvent   EventType = "dataset.exported"
	RuleAddedEvent         EventType = "rule.added"
	RuleRemovedEvent       EventType = "rule.removed"
	CorrectionAppliedEvent EventType = "correction.applied"
)

type BaseEvent struct {
	ID        string         `json:"id"`
	Type      EventType      `json:"type"`
	Timestamp time.Time      `json:"timestamp"`
	SessionID string         `json:"session_id"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

type DataSetUploaded struct {
	BaseEvent

	ClientCount int `json:"client_count"`
	WorkerCount int `json:"worker_count"`
	TaskCount   int `json:"task_count"`
}

func (e DataSetUploaded) GetType() EventType {
	return DataSetUploadedEvent
}

type DataSetValidated struct {
	BaseEvent

	ErrorCount   int `json:"error_count"`
	WarningCount int `json:"warning_count"`
}

func (e DataSetValidated) GetType() EventType {
	return DataSetValidatedEvent
}

type DataSetExported struct {
	BaseEvent

	Forced       bool `json:"forced"`
	ErrorCount   int  `json:"error_count"`
	WarningCount int  `json:"warning_count"`
}

func (e DataSetExported) GetType() EventType {
	return DataSetExportedEvent
}

type RuleAdded struct {
	BaseEvent

	RuleID   string `json:"rule_id"`
	RuleType string `json:"rule_type"`
}

func (e RuleAdded) GetType() EventType {
	return RuleAddedEvent
}

type RuleRemoved struct {
	BaseEvent

	RuleID string `json:"rule_id"`
}

func (e RuleRemoved) GetType() EventType {
	return RuleRemovedEvent
}

type CorrectionApplied struct {
	BaseEvent

	RowID          string `json:"row_id"`
	EntityType     string `json:"entity_type"`
	Field          string `json:"field"`
	CorrectionType string `json:"correction_type"`
}

func (e CorrectionApplied) GetType() EventType {
	return CorrectionAppliedEvent
}
