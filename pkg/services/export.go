package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/tidygrid/tidygrid/pkg/eventbus"
	"github.com/tidygrid/tidygrid/pkg/events"
	"github.com/tidygrid/tidygrid/pkg/export"
	"github.com/tidygrid/tidygrid/pkg/models"
	"github.com/tidygrid/tidygrid/pkg/persistence"
	"github.com/tidygrid/tidygrid/pkg/validation"
)

// Export produces the cleaned CSV tables and rule config for a session.
type Export struct {
	persistence persistence.Persistence
	eventBus    eventbus.EventPublisher
	logger      *slog.Logger
}

// NewExport creates a new export service.
func NewExport(persistence persistence.Persistence, eventBus eventbus.EventPublisher, logger *slog.Logger) *Export {
	return &Export{
		persistence: persistence,
		eventBus:    eventBus,
		logger:      logger.With("service", "export"),
	}
}

// Run re-validates the session and builds the export bundle. Unresolved
// errors block the export unless force is set; warnings never block.
func (e *Export) Run(ctx context.Context, sessionID string, force bool) (*export.Bundle, error) {
	dataset, err := e.persistence.DataSetRepository().GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if dataset == nil {
		return nil, ErrSessionNotFound
	}

	issues := validation.All(dataset)

	bundle, err := export.Build(dataset, issues, force)
	if err != nil {
		if errors.Is(err, export.ErrUnresolvedErrors) {
			errorCount, _ := models.CountBySeverity(issues)

			return nil, &ServiceError{
				Op:      "Run",
				Code:    "EXPORT_BLOCKED",
				Message: fmt.Sprintf("session has %d unresolved errors", errorCount),
				Err:     ErrExportBlocked,
			}
		}

		return nil, fmt.Errorf("failed to build export: %w", err)
	}

	e.publishExported(ctx, sessionID, issues, force)

	return bundle, nil
}

func (e *Export) publishExported(ctx context.Context, sessionID string, issues []models.Issue, force bool) {
	if e.eventBus == nil {
		return
	}

	errorCount, warningCount := models.CountBySeverity(issues)

	event := events.DataSetExported{
		BaseEvent:    baseEvent(events.DataSetExportedEvent, sessionID),
		Forced:       force,
		ErrorCount:   errorCount,
		WarningCount: warningCount,
	}

	if err := e.eventBus.Publish(ctx, sessionID, event); err != nil {
		e.logger.Warn("Failed to publish export event", "session_id", sessionID, "error", err)
	}
}
