package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tidygrid/tidygrid/pkg/models"
	"github.com/tidygrid/tidygrid/pkg/rules"
)

// maxIssueContext bounds how many issues are forwarded as context for
// correction proposals.
const maxIssueContext = 5

const ruleSystemPrompt = `You translate natural-language planning constraints into JSON business rules.
Respond with a single JSON object and nothing else. Known rule shapes:
{"type":"corun","taskIds":["T1","T2"]}
{"type":"slotRestriction","targetGroup":"client|worker","groupTag":"...","minCommonSlots":1}
{"type":"loadLimit","workerGroup":"...","maxSlotsPerPhase":1}
{"type":"phaseWindow","taskId":"T1","allowedPhases":[1,2]}
{"type":"patternMatch","pattern":"...","ruleTemplate":"...","parameters":{}}`

const correctionSystemPrompt = `You propose fixes for validation issues in a planning dataset.
Respond with a JSON array of corrections and nothing else. Each correction:
{"rowId":"...","entityType":"client|worker|task","field":"...","newValue":...,"reason":"...","correctionType":"replace|append"}`

// SuggestRule turns a natural-language constraint into a normalized,
// shape-checked business rule. The completion is untrusted; anything that
// fails normalization or the shape schema is rejected here.
func (c *Client) SuggestRule(ctx context.Context, prompt string, dataset *models.DataSet) (models.Rule, error) {
	user := fmt.Sprintf("Dataset:\n%s\nConstraint: %s", summarize(dataset), prompt)

	completion, err := c.complete(ctx, "rule", ruleSystemPrompt, user)
	if err != nil {
		return models.Rule{}, err
	}

	var raw map[string]any
	if err := json.Unmarshal([]byte(extractJSON(completion)), &raw); err != nil {
		return models.Rule{}, fmt.Errorf("completion is not a JSON object: %w", err)
	}

	rule, err := rules.Normalize(raw)
	if err != nil {
		return models.Rule{}, fmt.Errorf("completion is not a usable rule: %w", err)
	}

	if err := rules.CheckShape(rule); err != nil {
		return models.Rule{}, err
	}

	return rule, nil
}

// SuggestCorrections proposes fixes for the first issues in the list. Entries
// missing required fields are dropped rather than failing the whole batch.
func (c *Client) SuggestCorrections(ctx context.Context, dataset *models.DataSet, issues []models.Issue) ([]models.Correction, error) {
	if len(issues) == 0 {
		return []models.Correction{}, nil
	}

	if len(issues) > maxIssueContext {
		issues = issues[:maxIssueContext]
	}

	issueContext, err := json.Marshal(issues)
	if err != nil {
		return nil, fmt.Errorf("failed to encode issues: %w", err)
	}

	user := fmt.Sprintf("Dataset:\n%s\nIssues:\n%s", summarize(dataset), issueContext)

	completion, err := c.complete(ctx, "correction", correctionSystemPrompt, user)
	if err != nil {
		return nil, err
	}

	var candidates []models.Correction
	if err := json.Unmarshal([]byte(extractJSON(completion)), &candidates); err != nil {
		return nil, fmt.Errorf("completion is not a JSON array of corrections: %w", err)
	}

	corrections := make([]models.Correction, 0, len(candidates))

	for _, candidate := range candidates {
		if candidate.RowID == "" || candidate.Field == "" || candidate.EntityType == "" {
			c.logger.Warn("Dropping incomplete correction proposal",
				"row_id", candidate.RowID, "field", candidate.Field)

			continue
		}

		if candidate.CorrectionType == "" {
			candidate.CorrectionType = models.CorrectionReplace
		}

		corrections = append(corrections, candidate)
	}

	return corrections, nil
}

// summarize renders a compact dataset context so prompts stay small even for
// full tables.
func summarize(dataset *models.DataSet) string {
	if dataset == nil {
		return "(empty dataset)"
	}

	var b strings.Builder

	fmt.Fprintf(&b, "clients=%d workers=%d tasks=%d rules=%d\n",
		len(dataset.Clients), len(dataset.Workers), len(dataset.Tasks), len(dataset.Rules))

	b.WriteString("task ids:")

	for _, task := range dataset.Tasks {
		b.WriteString(" " + task.TaskID)
	}

	b.WriteString("\nworker groups:")

	seen := map[string]struct{}{}

	for _, worker := range dataset.Workers {
		if worker.WorkerGroup == "" {
			continue
		}

		if _, ok := seen[worker.WorkerGroup]; !ok {
			seen[worker.WorkerGroup] = struct{}{}

			b.WriteString(" " + worker.WorkerGroup)
		}
	}

	b.WriteString("\nclient groups:")

	seen = map[string]struct{}{}

	for _, client := range dataset.Clients {
		if client.GroupTag == "" {
			continue
		}

		if _, ok := seen[client.GroupTag]; !ok {
			seen[client.GroupTag] = struct{}{}

			b.WriteString(" " + client.GroupTag)
		}
	}

	return b.String()
}
