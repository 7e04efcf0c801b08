package services

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/tidygrid/tidygrid/pkg/eventbus"
	"github.com/tidygrid/tidygrid/pkg/events"
	"github.com/tidygrid/tidygrid/pkg/models"
	"github.com/tidygrid/tidygrid/pkg/persistence"
	"github.com/tidygrid/tidygrid/pkg/rules"
)

// Rules manages the business rules attached to an editing session.
type Rules struct {
	persistence persistence.Persistence
	eventBus    eventbus.EventPublisher
	logger      *slog.Logger
}

// NewRules creates a new rules service.
func NewRules(persistence persistence.Persistence, eventBus eventbus.EventPublisher, logger *slog.Logger) *Rules {
	return &Rules{
		persistence: persistence,
		eventBus:    eventBus,
		logger:      logger.With("service", "rules"),
	}
}

// Add normalizes a raw rule document, validates its shape and appends it to
// the session's rule list. Rules are kept in insertion order.
func (r *Rules) Add(ctx context.Context, sessionID string, raw map[string]any) (models.Rule, error) {
	dataset, err := r.fetch(ctx, sessionID)
	if err != nil {
		return models.Rule{}, err
	}

	rule, err := rules.Normalize(raw)
	if err != nil {
		return models.Rule{}, NewValidationError("Add", "MALFORMED_RULE", err.Error(), ErrMalformedRule)
	}

	if err := rules.CheckShape(rule); err != nil {
		return models.Rule{}, NewValidationError("Add", "MALFORMED_RULE", err.Error(), ErrMalformedRule)
	}

	dataset.Rules = append(dataset.Rules, rule)
	dataset.UpdatedAt = time.Now().UTC()

	if err := r.persistence.DataSetRepository().Save(ctx, dataset); err != nil {
		return models.Rule{}, fmt.Errorf("failed to save session: %w", err)
	}

	r.publish(ctx, sessionID, events.RuleAdded{
		BaseEvent: baseEvent(events.RuleAddedEvent, sessionID),
		RuleID:    rule.ID,
		RuleType:  string(rule.Type),
	})

	return rule, nil
}

// Remove deletes a rule from the session by its ID.
func (r *Rules) Remove(ctx context.Context, sessionID, ruleID string) error {
	dataset, err := r.fetch(ctx, sessionID)
	if err != nil {
		return err
	}

	idx := slices.IndexFunc(dataset.Rules, func(rule models.Rule) bool {
		return rule.ID == ruleID
	})
	if idx < 0 {
		return NewValidationError("Remove", "RULE_NOT_FOUND",
			fmt.Sprintf("rule %q not found", ruleID), ErrRuleNotFound)
	}

	dataset.Rules = slices.Delete(dataset.Rules, idx, idx+1)
	dataset.UpdatedAt = time.Now().UTC()

	if err := r.persistence.DataSetRepository().Save(ctx, dataset); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	r.publish(ctx, sessionID, events.RuleRemoved{
		BaseEvent: baseEvent(events.RuleRemovedEvent, sessionID),
		RuleID:    ruleID,
	})

	return nil
}

// List returns the session's rules in insertion order.
func (r *Rules) List(ctx context.Context, sessionID string) ([]models.Rule, error) {
	dataset, err := r.fetch(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	return dataset.Rules, nil
}

func (r *Rules) fetch(ctx context.Context, sessionID string) (*models.DataSet, error) {
	dataset, err := r.persistence.DataSetRepository().GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if dataset == nil {
		return nil, ErrSessionNotFound
	}

	return dataset, nil
}

func (r *Rules) publish(ctx context.Context, sessionID string, event eventbus.Event) {
	if r.eventBus == nil {
		return
	}

	if err := r.eventBus.Publish(ctx, sessionID, event); err != nil {
		r.logger.Warn("Failed to publish rule event", "session_id", sessionID, "error", err)
	}
}

func baseEvent(eventType events.EventType, sessionID string) events.BaseEvent {
	return events.BaseEvent{
		ID:        uuid.New().String(),
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		SessionID: sessionID,
	}
}
