package services

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidygrid/tidygrid/pkg/ai"
	"github.com/tidygrid/tidygrid/pkg/models"
)

func suggestServer(t *testing.T, content string) *httptest.Server {
	t.Helper()

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		response := map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"role": "assistant", "content": content}},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		assert.NoError(t, json.NewEncoder(w).Encode(response))
	}))
}

func TestSuggest_Rule(t *testing.T) {
	store, sessionID := seedSession(t)

	server := suggestServer(t, `{"type":"corun","taskIds":["T1","T2"]}`)
	defer server.Close()

	client := ai.NewClient(ai.Config{Endpoint: server.URL, Model: "test"}, slog.Default(), nil)
	service := NewSuggest(store, client, slog.Default())

	rule, err := service.Rule(t.Context(), sessionID, "T1 and T2 belong together")
	require.NoError(t, err)
	assert.Equal(t, models.RuleTypeCoRun, rule.Type)

	stored, err := store.DataSetRepository().GetByID(t.Context(), sessionID)
	require.NoError(t, err)
	assert.Empty(t, stored.Rules, "suggestions are never auto-attached")
}

func TestSuggest_Rule_NotConfigured(t *testing.T) {
	store, sessionID := seedSession(t)
	service := NewSuggest(store, nil, slog.Default())

	_, err := service.Rule(t.Context(), sessionID, "anything")
	assert.ErrorIs(t, err, ErrAINotConfigured)
}

func TestSuggest_Rule_EmptyDescription(t *testing.T) {
	store, sessionID := seedSession(t)

	client := ai.NewClient(ai.Config{Endpoint: "http://localhost:0", Model: "test"}, slog.Default(), nil)
	service := NewSuggest(store, client, slog.Default())

	_, err := service.Rule(t.Context(), sessionID, "   ")
	assert.ErrorIs(t, err, ErrDescriptionMissing)
}

func TestSuggest_Corrections_CleanSessionSkipsCall(t *testing.T) {
	store, sessionID := seedSession(t)

	// No server needed: a clean session returns before any HTTP call.
	client := ai.NewClient(ai.Config{Endpoint: "http://localhost:0", Model: "test"}, slog.Default(), nil)
	service := NewSuggest(store, client, slog.Default())

	corrections, err := service.Corrections(t.Context(), sessionID)
	require.NoError(t, err)
	assert.Empty(t, corrections)
}
