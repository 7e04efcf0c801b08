package validation

import (
	"fmt"
	"log/slog"

	"github.com/tidygrid/tidygrid/pkg/models"
)

// EvaluateRules runs the checker matching each rule's type, in rule-list
// order, against the full dataset. Rules come from the manual builder or from
// an untrusted AI suggestion, so a rule missing the fields its checker needs
// is silently inert for this pass rather than an error.
func EvaluateRules(dataset *models.DataSet, rules []models.Rule) []models.Issue {
	issues := make([]models.Issue, 0)

	for _, rule := range rules {
		switch rule.Type {
		case models.RuleTypeCoRun:
			issues = append(issues, checkCoRun(rule, dataset)...)
		case models.RuleTypeSlotRestriction:
			issues = append(issues, checkSlotRestriction(rule, dataset)...)
		case models.RuleTypeLoadLimit:
			checkLoadLimit(rule, dataset)
		case models.RuleTypePhaseWindow:
			issues = append(issues, checkPhaseWindow(rule, dataset)...)
		case models.RuleTypePatternMatch:
			// Accepted as data, not evaluated. Reserved extension point.
		default:
			slog.Debug("Skipping rule with unknown type", "rule_id", rule.ID, "type", rule.Type)
		}
	}

	return issues
}

// checkCoRun flags clients that request part, but not all, of a task group
// declared co-dependent. Requesting none of the group or all of it is
// compliant.
func checkCoRun(rule models.Rule, dataset *models.DataSet) []models.Issue {
	if len(rule.TaskIDs) < 2 {
		return nil
	}

	group := make(map[string]struct{}, len(rule.TaskIDs))
	for _, taskID := range rule.TaskIDs {
		group[taskID] = struct{}{}
	}

	var issues []models.Issue

	for _, client := range dataset.Clients {
		matched := make(map[string]struct{})

		for _, taskID := range client.RequestedTaskIDs {
			if _, ok := group[taskID]; ok {
				matched[taskID] = struct{}{}
			}
		}

		if len(matched) > 0 && len(matched) < len(group) {
			issues = append(issues, models.Issue{
				RowID: client.ClientID,
				Field: "RequestedTaskIDs",
				Message: fmt.Sprintf("Client requests %d of %d tasks in co-run group %v",
					len(matched), len(group), rule.TaskIDs),
				Severity: models.SeverityWarning,
			})
		}
	}

	return issues
}

// slotMember pairs a group member's row identifier with its availability.
type slotMember struct {
	rowID string
	slots []int
}

// checkSlotRestriction warns every member of the target group when the
// intersection of their available slots falls short of the rule's minimum.
// A singleton group trivially shares all of its slots and is skipped.
func checkSlotRestriction(rule models.Rule, dataset *models.DataSet) []models.Issue {
	if rule.GroupTag == "" || rule.MinCommonSlots < 1 {
		return nil
	}

	var members []slotMember

	switch rule.TargetGroup {
	case models.GroupTargetClient:
		for _, client := range dataset.Clients {
			if client.GroupTag == rule.GroupTag {
				// Clients declare no availability of their own, so a
				// client group never shares slots.
				members = append(members, slotMember{rowID: client.ClientID})
			}
		}
	case models.GroupTargetWorker:
		for _, worker := range dataset.Workers {
			if worker.WorkerGroup == rule.GroupTag {
				members = append(members, slotMember{rowID: worker.WorkerID, slots: worker.AvailableSlots})
			}
		}
	default:
		return nil
	}

	if len(members) < 2 {
		return nil
	}

	common := make(map[int]struct{}, len(members[0].slots))
	for _, slot := range members[0].slots {
		common[slot] = struct{}{}
	}

	for _, member := range members[1:] {
		next := make(map[int]struct{}, len(member.slots))

		for _, slot := range member.slots {
			if _, ok := common[slot]; ok {
				next[slot] = struct{}{}
			}
		}

		common = next
	}

	if len(common) >= rule.MinCommonSlots {
		return nil
	}

	issues := make([]models.Issue, 0, len(members))

	for _, member := range members {
		issues = append(issues, models.Issue{
			RowID: member.rowID,
			Field: "AvailableSlots",
			Message: fmt.Sprintf("Group %q shares %d common slots, rule requires %d",
				rule.GroupTag, len(common), rule.MinCommonSlots),
			Severity: models.SeverityWarning,
		})
	}

	return issues
}

// checkLoadLimit is advisory only: without a computed schedule there is no
// per-phase load to measure, so the checker just reports an empty target
// group as a diagnostic. See the reserved-semantics note in DESIGN.md.
func checkLoadLimit(rule models.Rule, dataset *models.DataSet) {
	if rule.WorkerGroup == "" {
		return
	}

	for _, worker := range dataset.Workers {
		if worker.WorkerGroup == rule.WorkerGroup {
			return
		}
	}

	slog.Debug("Load limit rule targets no workers",
		"rule_id", rule.ID, "worker_group", rule.WorkerGroup)
}

// checkPhaseWindow treats an empty intersection between a task's own preferred
// phases and the rule's allowed window as a hard conflict: unlike partial
// co-run commitment, there is no phase that satisfies both sides.
func checkPhaseWindow(rule models.Rule, dataset *models.DataSet) []models.Issue {
	if rule.TaskID == "" || len(rule.AllowedPhases) == 0 {
		return nil
	}

	task := dataset.TaskByID(rule.TaskID)
	if task == nil || len(task.PreferredPhases) == 0 {
		return nil
	}

	allowed := make(map[int]struct{}, len(rule.AllowedPhases))
	for _, phase := range rule.AllowedPhases {
		allowed[phase] = struct{}{}
	}

	for _, phase := range task.PreferredPhases {
		if _, ok := allowed[phase]; ok {
			return nil
		}
	}

	return []models.Issue{{
		RowID: task.TaskID,
		Field: "PreferredPhases",
		Message: fmt.Sprintf("Preferred phases %v have no overlap with allowed phases %v",
			task.PreferredPhases, rule.AllowedPhases),
		Severity: models.SeverityError,
	}}
}
