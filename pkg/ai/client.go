// Package ai calls a hosted chat-completions endpoint to draft candidate
// business rules and correction proposals. Everything that comes back is
// untrusted: responses pass through the rule normalization boundary or the
// correction validator before anything reaches a dataset.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/tidygrid/tidygrid/pkg/otelhelper"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const defaultTimeout = 30 * time.Second

// ErrEmptyCompletion is returned when the endpoint answers with no choices.
var ErrEmptyCompletion = errors.New("completion response has no choices")

// Config holds connection settings for the completion endpoint.
type Config struct {
	Endpoint string // full chat-completions URL
	APIKey   string
	Model    string
	Timeout  time.Duration
	Retries  int // attempts beyond the first
}

// Client is a thin JSON client over the chat-completions API.
type Client struct {
	config     Config
	httpClient *http.Client
	logger     *slog.Logger
	tracer     trace.Tracer
}

// NewClient creates a completion client. The tracer may be nil.
func NewClient(config Config, logger *slog.Logger, tracer trace.Tracer) *Client {
	if config.Timeout <= 0 {
		config.Timeout = defaultTimeout
	}

	return &Client{
		config:     config,
		httpClient: &http.Client{},
		logger:     logger,
		tracer:     tracer,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// complete sends one system+user exchange and returns the assistant text.
// Transient failures are retried with a short backoff, mirroring the rest of
// the platform's outbound HTTP behavior.
func (c *Client) complete(ctx context.Context, promptKind, system, user string) (string, error) {
	if c.tracer != nil {
		var span trace.Span

		ctx, span = otelhelper.StartSpan(ctx, c.tracer, "ai.complete",
			attribute.String(otelhelper.AIPromptKindKey, promptKind),
			attribute.String(otelhelper.AIModelKey, c.config.Model),
		)
		defer span.End()
	}

	payload, err := json.Marshal(chatRequest{
		Model: c.config.Model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode completion request: %w", err)
	}

	var lastErr error

	for attempt := 0; attempt <= c.config.Retries; attempt++ {
		if attempt > 0 {
			c.logger.Warn("Retrying completion request", "attempt", attempt, "error", lastErr)

			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(time.Duration(attempt) * time.Second):
			}
		}

		text, err := c.doRequest(ctx, payload)
		if err == nil {
			return text, nil
		}

		lastErr = err
	}

	if c.tracer != nil {
		otelhelper.SetError(trace.SpanFromContext(ctx), lastErr)
	}

	return "", lastErr
}

func (c *Client) doRequest(ctx context.Context, payload []byte) (string, error) {
	reqCtx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, c.config.Endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create completion request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	if c.config.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.config.APIKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("completion request failed: %w", err)
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read completion response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("completion endpoint returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("failed to decode completion response: %w", err)
	}

	if len(parsed.Choices) == 0 {
		return "", ErrEmptyCompletion
	}

	return parsed.Choices[0].Message.Content, nil
}

// extractJSON pulls the first JSON object or array out of a completion,
// tolerating markdown fences and surrounding prose.
func extractJSON(text string) string {
	text = strings.TrimSpace(text)

	if fenced, ok := strings.CutPrefix(text, "```json"); ok {
		text = fenced
	} else if fenced, ok := strings.CutPrefix(text, "```"); ok {
		text = fenced
	}

	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	text = strings.TrimSpace(text)

	objStart := strings.IndexAny(text, "{[")
	if objStart < 0 {
		return text
	}

	var objEnd int
	if text[objStart] == '{' {
		objEnd = strings.LastIndex(text, "}")
	} else {
		objEnd = strings.LastIndex(text, "]")
	}

	if objEnd <= objStart {
		return text
	}

	return text[objStart : objEnd+1]
}
