package rules

import (
	"fmt"
	"strings"

	"github.com/tidygrid/tidygrid/pkg/models"
	"github.com/xeipuuv/gojsonschema"
)

// shapeSchemas holds one JSON schema per rule variant. Shape checks run only
// at the acceptance boundary; the evaluator itself stays fail-open so a rule
// that slipped in malformed degrades to inert instead of crashing a pass.
var shapeSchemas = map[models.RuleType]map[string]any{
	models.RuleTypeCoRun: {
		"type":     "object",
		"required": []any{"taskIds"},
		"properties": map[string]any{
			"taskIds": map[string]any{
				"type":     "array",
				"items":    map[string]any{"type": "string", "minLength": 1},
				"minItems": 2,
			},
		},
	},
	models.RuleTypeSlotRestriction: {
		"type":     "object",
		"required": []any{"targetGroup", "groupTag", "minCommonSlots"},
		"properties": map[string]any{
			"targetGroup":    map[string]any{"type": "string", "enum": []any{"client", "worker"}},
			"groupTag":       map[string]any{"type": "string", "minLength": 1},
			"minCommonSlots": map[string]any{"type": "integer", "minimum": 1},
		},
	},
	models.RuleTypeLoadLimit: {
		"type":     "object",
		"required": []any{"workerGroup", "maxSlotsPerPhase"},
		"properties": map[string]any{
			"workerGroup":      map[string]any{"type": "string", "minLength": 1},
			"maxSlotsPerPhase": map[string]any{"type": "integer", "minimum": 1},
		},
	},
	models.RuleTypePhaseWindow: {
		"type":     "object",
		"required": []any{"taskId", "allowedPhases"},
		"properties": map[string]any{
			"taskId": map[string]any{"type": "string", "minLength": 1},
			"allowedPhases": map[string]any{
				"type":     "array",
				"items":    map[string]any{"type": "integer"},
				"minItems": 1,
			},
		},
	},
	models.RuleTypePatternMatch: {
		"type":     "object",
		"required": []any{"pattern", "ruleTemplate"},
		"properties": map[string]any{
			"pattern":      map[string]any{"type": "string", "minLength": 1},
			"ruleTemplate": map[string]any{"type": "string", "minLength": 1},
		},
	},
}

// CheckShape validates a normalized rule against the schema for its type.
func CheckShape(rule models.Rule) error {
	schema, ok := shapeSchemas[rule.Type]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownRuleType, rule.Type)
	}

	schemaLoader := gojsonschema.NewGoLoader(schema)
	documentLoader := gojsonschema.NewGoLoader(ruleDocument(rule))

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return fmt.Errorf("failed to validate rule shape: %w", err)
	}

	if !result.Valid() {
		details := make([]string, 0, len(result.Errors()))
		for _, resultError := range result.Errors() {
			details = append(details, resultError.String())
		}

		return fmt.Errorf("rule %s failed shape validation: %s", rule.ID, strings.Join(details, "; "))
	}

	return nil
}

// ruleDocument projects only the field group owned by the rule's type, so
// schemas can mark fields required without tripping over zero values from
// other variants.
func ruleDocument(rule models.Rule) map[string]any {
	doc := map[string]any{}

	switch rule.Type {
	case models.RuleTypeCoRun:
		if rule.TaskIDs != nil {
			doc["taskIds"] = rule.TaskIDs
		}
	case models.RuleTypeSlotRestriction:
		if rule.TargetGroup != "" {
			doc["targetGroup"] = string(rule.TargetGroup)
		}

		if rule.GroupTag != "" {
			doc["groupTag"] = rule.GroupTag
		}

		if rule.MinCommonSlots != 0 {
			doc["minCommonSlots"] = rule.MinCommonSlots
		}
	case models.RuleTypeLoadLimit:
		if rule.WorkerGroup != "" {
			doc["workerGroup"] = rule.WorkerGroup
		}

		if rule.MaxSlotsPerPhase != 0 {
			doc["maxSlotsPerPhase"] = rule.MaxSlotsPerPhase
		}
	case models.RuleTypePhaseWindow:
		if rule.TaskID != "" {
			doc["taskId"] = rule.TaskID
		}

		if rule.AllowedPhases != nil {
			doc["allowedPhases"] = rule.AllowedPhases
		}
	case models.RuleTypePatternMatch:
		if rule.Pattern != "" {
			doc["pattern"] = rule.Pattern
		}

		if rule.RuleTemplate != "" {
			doc["ruleTemplate"] = rule.RuleTemplate
		}
	}

	return doc
}
