package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/tidygrid/tidygrid/pkg/corrections"
	"github.com/tidygrid/tidygrid/pkg/eventbus"
	"github.com/tidygrid/tidygrid/pkg/events"
	"github.com/tidygrid/tidygrid/pkg/models"
	"github.com/tidygrid/tidygrid/pkg/persistence"
)

// Corrections applies proposed fixes to a session's tables.
type Corrections struct {
	persistence persistence.Persistence
	eventBus    eventbus.EventPublisher
	logger      *slog.Logger
}

// NewCorrections creates a new corrections service.
func NewCorrections(persistence persistence.Persistence, eventBus eventbus.EventPublisher, logger *slog.Logger) *Corrections {
	return &Corrections{
		persistence: persistence,
		eventBus:    eventBus,
		logger:      logger.With("service", "corrections"),
	}
}

// Apply applies a single correction to the session and persists the result.
func (c *Corrections) Apply(ctx context.Context, sessionID string, correction models.Correction) (*models.DataSet, error) {
	dataset, err := c.persistence.DataSetRepository().GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if dataset == nil {
		return nil, ErrSessionNotFound
	}

	if err := corrections.Apply(dataset, correction); err != nil {
		return nil, mapCorrectionError("Apply", err)
	}

	dataset.UpdatedAt = time.Now().UTC()

	if err := c.persistence.DataSetRepository().Save(ctx, dataset); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	c.publishApplied(ctx, sessionID, correction)

	return dataset, nil
}

// ApplyBatch applies corrections in list order, stopping at the first
// failure. The dataset is only persisted when every correction succeeds.
func (c *Corrections) ApplyBatch(ctx context.Context, sessionID string, batch []models.Correction) (*models.DataSet, error) {
	dataset, err := c.persistence.DataSetRepository().GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if dataset == nil {
		return nil, ErrSessionNotFound
	}

	for i, correction := range batch {
		if err := corrections.Apply(dataset, correction); err != nil {
			return nil, mapCorrectionError(fmt.Sprintf("ApplyBatch[%d]", i), err)
		}
	}

	dataset.UpdatedAt = time.Now().UTC()

	if err := c.persistence.DataSetRepository().Save(ctx, dataset); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	for _, correction := range batch {
		c.publishApplied(ctx, sessionID, correction)
	}

	return dataset, nil
}

func (c *Corrections) publishApplied(ctx context.Context, sessionID string, correction models.Correction) {
	if c.eventBus == nil {
		return
	}

	event := events.CorrectionApplied{
		BaseEvent:      baseEvent(events.CorrectionAppliedEvent, sessionID),
		RowID:          correction.RowID,
		EntityType:     string(correction.EntityType),
		Field:          correction.Field,
		CorrectionType: string(correction.CorrectionType),
	}

	if err := c.eventBus.Publish(ctx, sessionID, event); err != nil {
		c.logger.Warn("Failed to publish correction event", "session_id", sessionID, "error", err)
	}
}
