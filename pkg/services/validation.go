package services

import (
	"context"
	"log/slog"

	"github.com/tidygrid/tidygrid/pkg/eventbus"
	"github.com/tidygrid/tidygrid/pkg/events"
	"github.com/tidygrid/tidygrid/pkg/models"
	"github.com/tidygrid/tidygrid/pkg/otelhelper"
	"github.com/tidygrid/tidygrid/pkg/persistence"
	"github.com/tidygrid/tidygrid/pkg/validation"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// ValidationResult bundles one full validation pass over a session.
type ValidationResult struct {
	SessionID    string         `json:"session_id"`
	Issues       []models.Issue `json:"issues"`
	ErrorCount   int            `json:"error_count"`
	WarningCount int            `json:"warning_count"`
}

// Validation runs the deterministic validation pass over stored sessions.
type Validation struct {
	persistence persistence.Persistence
	eventBus    eventbus.EventPublisher
	logger      *slog.Logger
	tracer      trace.Tracer
}

// NewValidation creates a new validation service. The tracer may be nil.
func NewValidation(persistence persistence.Persistence, eventBus eventbus.EventPublisher, logger *slog.Logger, tracer trace.Tracer) *Validation {
	return &Validation{
		persistence: persistence,
		eventBus:    eventBus,
		logger:      logger.With("service", "validation"),
		tracer:      tracer,
	}
}

// Run executes a full validation pass over the session and returns every
// issue found. The pass never mutates the stored dataset.
func (v *Validation) Run(ctx context.Context, sessionID string) (*ValidationResult, error) {
	if v.tracer != nil {
		var span trace.Span

		ctx, span = otelhelper.StartSpan(ctx, v.tracer, "validation.run",
			attribute.String(otelhelper.SessionIDKey, sessionID),
		)
		defer span.End()
	}

	dataset, err := v.persistence.DataSetRepository().GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if dataset == nil {
		return nil, ErrSessionNotFound
	}

	result := v.evaluate(dataset)

	if v.tracer != nil {
		trace.SpanFromContext(ctx).SetAttributes(
			attribute.Int(otelhelper.IssueCountKey, len(result.Issues)),
		)
	}

	v.publishValidated(ctx, result)

	return result, nil
}

// Evaluate runs the validation pass over an in-memory dataset without
// touching storage. Used by the offline CLI.
func (v *Validation) Evaluate(dataset *models.DataSet) *ValidationResult {
	return v.evaluate(dataset)
}

func (v *Validation) evaluate(dataset *models.DataSet) *ValidationResult {
	issues := validation.All(dataset)
	errorCount, warningCount := models.CountBySeverity(issues)

	return &ValidationResult{
		SessionID:    dataset.ID,
		Issues:       issues,
		ErrorCount:   errorCount,
		WarningCount: warningCount,
	}
}

func (v *Validation) publishValidated(ctx context.Context, result *ValidationResult) {
	if v.eventBus == nil {
		return
	}

	event := events.DataSetValidated{
		BaseEvent:    baseEvent(events.DataSetValidatedEvent, result.SessionID),
		ErrorCount:   result.ErrorCount,
		WarningCount: result.WarningCount,
	}

	if err := v.eventBus.Publish(ctx, result.SessionID, event); err != nil {
		v.logger.Warn("Failed to publish validation event",
			"session_id", result.SessionID, "error", err)
	}
}
