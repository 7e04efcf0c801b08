package models

// RuleType discriminates the business rule union.
type RuleType string

const (
	RuleTypeCoRun           RuleType = "corun"
	RuleTypeSlotRestriction RuleType = "slotRestriction"
	RuleTypeLoadLimit       RuleType = "loadLimit"
	RuleTypePhaseWindow     RuleType = "phaseWindow"
	RuleTypePatternMatch    RuleType = "patternMatch"
)

// GroupTarget selects which entity table a slot restriction applies to.
type GroupTarget string

const (
	GroupTargetClient GroupTarget = "client"
	GroupTargetWorker GroupTarget = "worker"
)

// Rule is one business rule. The Type tag decides which field group is
// meaningful; the other groups stay at their zero values. Rules arrive from
// the manual rule builder or from the AI collaborator, so checkers must treat
// missing fields as "rule is inert", never as a reason to fail the pass.
type Rule struct {
	ID          string   `json:"id"`
	Type        RuleType `json:"type"                  validate:"required"`
	Description string   `json:"description,omitempty"`

	// corun
	TaskIDs []string `json:"taskIds,omitempty"`

	// slotRestriction
	TargetGroup    GroupTarget `json:"targetGroup,omitempty"`
	GroupTag       string      `json:"groupTag,omitempty"`
	MinCommonSlots int         `json:"minCommonSlots,omitempty"`

	// loadLimit
	WorkerGroup      string `json:"workerGroup,omitempty"`
	MaxSlotsPerPhase int    `json:"maxSlotsPerPhase,omitempty"`

	// phaseWindow
	TaskID        string `json:"taskId,omitempty"`
	AllowedPhases []int  `json:"allowedPhases,omitempty"`

	// patternMatch (accepted as data, not evaluated)
	Pattern      string         `json:"pattern,omitempty"`
	RuleTemplate string         `json:"ruleTemplate,omitempty"`
	Parameters   map[string]any `json:"parameters,omitempty"`
}

// KnownRuleTypes lists every type the model accepts, including the reserved
// patternMatch extension point.
var KnownRuleTypes = []RuleType{
	RuleTypeCoRun,
	RuleTypeSlotRestriction,
	RuleTypeLoadLimit,
	RuleTypePhaseWindow,
	RuleTypePatternMatch,
}
