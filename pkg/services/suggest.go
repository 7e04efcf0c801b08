package services

import (
	"context"
	"log/slog"
	"strings"

	"github.com/tidygrid/tidygrid/pkg/ai"
	"github.com/tidygrid/tidygrid/pkg/models"
	"github.com/tidygrid/tidygrid/pkg/persistence"
	"github.com/tidygrid/tidygrid/pkg/validation"
)

// Suggest bridges the AI collaborator to stored sessions. Proposals are
// returned to the caller for review, never applied automatically.
type Suggest struct {
	persistence persistence.Persistence
	client      *ai.Client
	logger      *slog.Logger
}

// NewSuggest creates a new suggestion service. The client may be nil when no
// AI endpoint is configured; every call then fails with ErrAINotConfigured.
func NewSuggest(persistence persistence.Persistence, client *ai.Client, logger *slog.Logger) *Suggest {
	return &Suggest{
		persistence: persistence,
		client:      client,
		logger:      logger.With("service", "suggest"),
	}
}

// Rule converts a natural language description into a validated rule. The
// rule is not attached to the session; callers add it explicitly.
func (s *Suggest) Rule(ctx context.Context, sessionID, description string) (models.Rule, error) {
	if s.client == nil {
		return models.Rule{}, ErrAINotConfigured
	}

	if strings.TrimSpace(description) == "" {
		return models.Rule{}, ErrDescriptionMissing
	}

	dataset, err := s.fetch(ctx, sessionID)
	if err != nil {
		return models.Rule{}, err
	}

	return s.client.SuggestRule(ctx, description, dataset)
}

// Corrections runs a validation pass and asks the collaborator for fix
// proposals against the issues found.
func (s *Suggest) Corrections(ctx context.Context, sessionID string) ([]models.Correction, error) {
	if s.client == nil {
		return nil, ErrAINotConfigured
	}

	dataset, err := s.fetch(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	issues := validation.All(dataset)
	if len(issues) == 0 {
		return []models.Correction{}, nil
	}

	return s.client.SuggestCorrections(ctx, dataset, issues)
}

func (s *Suggest) fetch(ctx context.Context, sessionID string) (*models.DataSet, error) {
	dataset, err := s.persistence.DataSetRepository().GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if dataset == nil {
		return nil, ErrSessionNotFound
	}

	return dataset, nil
}
