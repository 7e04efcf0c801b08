// Package rules is the ingestion boundary for business rules. AI-authored and
// manually built rules pass through one normalization step that maps known
// alternate property spellings onto the canonical schema, so the validation
// engine's checkers never have to guess at shapes.
package rules

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/tidygrid/tidygrid/pkg/models"
)

// ErrUnknownRuleType is returned when the type tag matches no known variant.
var ErrUnknownRuleType = errors.New("unknown rule type")

// typeAliases maps the spellings observed in AI completions onto canonical
// rule types.
var typeAliases = map[string]models.RuleType{
	"corun":           models.RuleTypeCoRun,
	"corun_group":     models.RuleTypeCoRun,
	"co-run":          models.RuleTypeCoRun,
	"coRun":           models.RuleTypeCoRun,
	"slotRestriction": models.RuleTypeSlotRestriction,
	"slot-restriction": models.RuleTypeSlotRestriction,
	"slot_restriction": models.RuleTypeSlotRestriction,
	"loadLimit":       models.RuleTypeLoadLimit,
	"load-limit":      models.RuleTypeLoadLimit,
	"load_limit":      models.RuleTypeLoadLimit,
	"phaseWindow":     models.RuleTypePhaseWindow,
	"phase-window":    models.RuleTypePhaseWindow,
	"phase_window":    models.RuleTypePhaseWindow,
	"patternMatch":    models.RuleTypePatternMatch,
	"pattern-match":   models.RuleTypePatternMatch,
	"pattern_match":   models.RuleTypePatternMatch,
}

// groupTargetAliases tolerates the ClientGroup/WorkerGroup names used by the
// rule builder UI alongside the canonical short forms.
var groupTargetAliases = map[string]models.GroupTarget{
	"client":      models.GroupTargetClient,
	"clients":     models.GroupTargetClient,
	"clientGroup": models.GroupTargetClient,
	"ClientGroup": models.GroupTargetClient,
	"worker":      models.GroupTargetWorker,
	"workers":     models.GroupTargetWorker,
	"workerGroup": models.GroupTargetWorker,
	"WorkerGroup": models.GroupTargetWorker,
}

// Normalize coerces a decoded rule object onto the canonical Rule shape and
// assigns an identifier when the caller did not provide one. It is the single
// place where alternate spellings are tolerated.
func Normalize(raw map[string]any) (models.Rule, error) {
	rawType := pickString(raw, "type", "ruleType", "rule_type")

	ruleType, ok := typeAliases[rawType]
	if !ok {
		return models.Rule{}, fmt.Errorf("%w: %q", ErrUnknownRuleType, rawType)
	}

	rule := models.Rule{
		ID:          pickString(raw, "id", "ruleId", "rule_id"),
		Type:        ruleType,
		Description: pickString(raw, "description", "desc"),
	}

	if rule.ID == "" {
		rule.ID = uuid.New().String()
	}

	switch ruleType {
	case models.RuleTypeCoRun:
		rule.TaskIDs = pickStringSlice(raw, "taskIds", "tasks", "task_ids", "taskIDs")
	case models.RuleTypeSlotRestriction:
		rule.TargetGroup = groupTargetAliases[pickString(raw, "targetGroup", "target_group", "target")]
		rule.GroupTag = pickString(raw, "groupTag", "group_tag", "group")
		rule.MinCommonSlots = pickInt(raw, "minCommonSlots", "min_common_slots", "minSlots")
	case models.RuleTypeLoadLimit:
		rule.WorkerGroup = pickString(raw, "workerGroup", "worker_group", "group")
		rule.MaxSlotsPerPhase = pickInt(raw, "maxSlotsPerPhase", "max_slots_per_phase", "maxLoad")
	case models.RuleTypePhaseWindow:
		rule.TaskID = pickString(raw, "taskId", "task_id", "task")
		rule.AllowedPhases = pickIntSlice(raw, "allowedPhases", "allowed_phases", "phases")
	case models.RuleTypePatternMatch:
		rule.Pattern = pickString(raw, "pattern", "regex")
		rule.RuleTemplate = pickString(raw, "ruleTemplate", "rule_template", "template")
		rule.Parameters = pickMap(raw, "parameters", "params")
	}

	return rule, nil
}

func pickString(raw map[string]any, keys ...string) string {
	for _, key := range keys {
		if value, ok := raw[key].(string); ok && value != "" {
			return value
		}
	}

	return ""
}

func pickInt(raw map[string]any, keys ...string) int {
	for _, key := range keys {
		switch value := raw[key].(type) {
		case float64:
			return int(value)
		case int:
			return value
		}
	}

	return 0
}

func pickStringSlice(raw map[string]any, keys ...string) []string {
	for _, key := range keys {
		switch value := raw[key].(type) {
		case []string:
			return value
		case []any:
			out := make([]string, 0, len(value))

			for _, item := range value {
				if s, ok := item.(string); ok {
					out = append(out, s)
				}
			}

			if len(out) > 0 {
				return out
			}
		}
	}

	return nil
}

func pickIntSlice(raw map[string]any, keys ...string) []int {
	for _, key := range keys {
		switch value := raw[key].(type) {
		case []int:
			return value
		case []any:
			out := make([]int, 0, len(value))

			for _, item := range value {
				switch n := item.(type) {
				case float64:
					out = append(out, int(n))
				case int:
					out = append(out, n)
				}
			}

			if len(out) > 0 {
				return out
			}
		}
	}

	return nil
}

func pickMap(raw map[string]any, keys ...string) map[string]any {
	for _, key := range keys {
		if value, ok := raw[key].(map[string]any); ok {
			return value
		}
	}

	return nil
}
