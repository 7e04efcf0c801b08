package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/tidygrid/tidygrid/pkg/corrections"
	"github.com/tidygrid/tidygrid/pkg/eventbus"
	"github.com/tidygrid/tidygrid/pkg/events"
	"github.com/tidygrid/tidygrid/pkg/ingestion"
	"github.com/tidygrid/tidygrid/pkg/models"
	"github.com/tidygrid/tidygrid/pkg/persistence"
)

// ErrSessionNotFound is returned when an editing session is not found.
var ErrSessionNotFound = persistence.ErrDataSetNotFound

// Session manages editing session lifecycles: uploads, lookups, cell edits.
type Session struct {
	persistence persistence.Persistence
	eventBus    eventbus.EventPublisher
	logger      *slog.Logger
}

// NewSession creates a new session service.
func NewSession(persistence persistence.Persistence, eventBus eventbus.EventPublisher, logger *slog.Logger) *Session {
	return &Session{
		persistence: persistence,
		eventBus:    eventBus,
		logger:      logger.With("service", "session"),
	}
}

// HealthCheck checks the health of the persistence layer.
func (s *Session) HealthCheck(ctx context.Context) (string, bool) {
	if s.persistence == nil {
		return "Persistence layer not initialized", false
	}

	err := s.persistence.HealthCheck(ctx)
	if err != nil {
		return "Persistence layer is unhealthy: " + err.Error(), false
	}

	return "Persistence layer is healthy", true
}

// Upload parses the submitted CSV tables into a new editing session. Any
// reader may be nil; at least one table must be present.
func (s *Session) Upload(ctx context.Context, clients, workers, tasks io.Reader) (*models.DataSet, error) {
	if clients == nil && workers == nil && tasks == nil {
		return nil, ErrEmptyUpload
	}

	dataset, err := ingestion.LoadDataSet(clients, workers, tasks)
	if err != nil {
		return nil, NewValidationError("Upload", "MALFORMED_UPLOAD", err.Error(), ErrInvalidRequest)
	}

	now := time.Now().UTC()
	dataset.ID = uuid.New().String()
	dataset.CreatedAt = now
	dataset.UpdatedAt = now

	if err := s.persistence.DataSetRepository().Save(ctx, dataset); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	s.publishUploaded(ctx, dataset)

	return dataset, nil
}

// ReplaceTables re-ingests the submitted tables into an existing session.
// Only the tables present in the upload are replaced; rules are kept.
func (s *Session) ReplaceTables(ctx context.Context, sessionID string, clients, workers, tasks io.Reader) (*models.DataSet, error) {
	if clients == nil && workers == nil && tasks == nil {
		return nil, ErrEmptyUpload
	}

	dataset, err := s.FetchByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	replacement, err := ingestion.LoadDataSet(clients, workers, tasks)
	if err != nil {
		return nil, NewValidationError("ReplaceTables", "MALFORMED_UPLOAD", err.Error(), ErrInvalidRequest)
	}

	if clients != nil {
		dataset.Clients = replacement.Clients
	}

	if workers != nil {
		dataset.Workers = replacement.Workers
	}

	if tasks != nil {
		dataset.Tasks = replacement.Tasks
	}

	dataset.UpdatedAt = time.Now().UTC()

	if err := s.persistence.DataSetRepository().Save(ctx, dataset); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	s.publishUploaded(ctx, dataset)

	return dataset, nil
}

// FetchByID retrieves a session by its ID.
func (s *Session) FetchByID(ctx context.Context, sessionID string) (*models.DataSet, error) {
	dataset, err := s.persistence.DataSetRepository().GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if dataset == nil {
		return nil, ErrSessionNotFound
	}

	return dataset, nil
}

// List returns all stored sessions.
func (s *Session) List(ctx context.Context) ([]*models.DataSet, error) {
	return s.persistence.DataSetRepository().List(ctx)
}

// Delete removes a session by its ID.
func (s *Session) Delete(ctx context.Context, sessionID string) error {
	if _, err := s.FetchByID(ctx, sessionID); err != nil {
		return err
	}

	if err := s.persistence.DataSetRepository().Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	return nil
}

// EditCell overwrites a single cell in one of the session's tables. List
// fields accept either a scalar or an array value.
func (s *Session) EditCell(ctx context.Context, sessionID string, entityType models.EntityType, rowID, field string, value any) (*models.DataSet, error) {
	dataset, err := s.FetchByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	err = corrections.Apply(dataset, models.Correction{
		RowID:          rowID,
		EntityType:     entityType,
		Field:          field,
		NewValue:       value,
		CorrectionType: models.CorrectionReplace,
	})
	if err != nil {
		return nil, mapCorrectionError("EditCell", err)
	}

	dataset.UpdatedAt = time.Now().UTC()

	if err := s.persistence.DataSetRepository().Save(ctx, dataset); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	return dataset, nil
}

// SweepExpired deletes sessions not touched for the given retention period
// and returns how many were removed.
func (s *Session) SweepExpired(ctx context.Context, retention time.Duration) (int, error) {
	cutoff := time.Now().UTC().Add(-retention)

	return s.persistence.DataSetRepository().DeleteOlderThan(ctx, cutoff)
}

func (s *Session) publishUploaded(ctx context.Context, dataset *models.DataSet) {
	if s.eventBus == nil {
		return
	}

	event := events.DataSetUploaded{
		BaseEvent:   baseEvent(events.DataSetUploadedEvent, dataset.ID),
		ClientCount: len(dataset.Clients),
		WorkerCount: len(dataset.Workers),
		TaskCount:   len(dataset.Tasks),
	}

	if err := s.eventBus.Publish(ctx, dataset.ID, event); err != nil {
		s.logger.Warn("Failed to publish dataset uploaded event", "session_id", dataset.ID, "error", err)
	}
}

// mapCorrectionError turns corrections package sentinels into service-level
// validation errors so the web layer maps them to 400s.
func mapCorrectionError(op string, err error) error {
	switch {
	case errors.Is(err, corrections.ErrRowNotFound):
		return NewValidationError(op, "ROW_NOT_FOUND", err.Error(), ErrRowNotFound)
	case errors.Is(err, corrections.ErrUnknownEntityType):
		return NewValidationError(op, "UNKNOWN_ENTITY_TYPE", err.Error(), ErrUnknownEntityType)
	case errors.Is(err, corrections.ErrUnknownField),
		errors.Is(err, corrections.ErrInvalidValue),
		errors.Is(err, corrections.ErrNotAppendable):
		return NewValidationError(op, "INVALID_CELL_VALUE", err.Error(), ErrInvalidCellValue)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}
