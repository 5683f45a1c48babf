package core

import (
	"context"
	"fmt"

	"breedcore/pkg/domain"
)

// StageTransitionRule blocks illegal breeding plan state moves at commit
// time: unknown stages, exits from terminal stages, and backward movement
// along the forward progression. The service rejects these earlier with
// specific error codes; the rule backstops any mutation path that reaches
// the store directly.
func StageTransitionRule() Rule {
	return stageTransitionRule{}
}

type stageTransitionRule struct{}

var validPlanStages = toSet(
	string(StageDraft),
	string(StageAttempted),
	string(StageConfirmed),
	string(StageBirthed),
	string(StagePlacement),
	string(StageComplete),
	string(StageCancelled),
)

func (stageTransitionRule) Name() string { return "plan_stage_transition" }

func (stageTransitionRule) Evaluate(_ context.Context, _ domain.RuleView, changes []Change) (Result, error) {
	res := Result{}
	for _, change := range changes {
		if change.Entity != EntityBreedingPlan {
			continue
		}

		after, ok := change.After.(BreedingPlan)
		if ok {
			if _, valid := validPlanStages[string(after.Stage)]; !valid {
				res.Violations = append(res.Violations, Violation{
					Rule:     "plan_stage_transition",
					Severity: SeverityBlock,
					Message:  fmt.Sprintf("breeding plan %s is set to invalid stage %s", after.ID, after.Stage),
					Entity:   EntityBreedingPlan,
					EntityID: after.ID,
				})
				continue
			}
		}

		before, okBefore := change.Before.(BreedingPlan)
		if !okBefore || !ok {
			continue
		}
		if before.Stage.Terminal() && after.Stage != before.Stage {
			res.Violations = append(res.Violations, Violation{
				Rule:     "plan_stage_transition",
				Severity: SeverityBlock,
				Message:  fmt.Sprintf("cannot move breeding plan %s from terminal stage %s to %s", before.ID, before.Stage, after.Stage),
				Entity:   EntityBreedingPlan,
				EntityID: after.ID,
			})
			continue
		}
		if after.Stage.Before(before.Stage) && !clearedDateRegression(before, after) {
			res.Violations = append(res.Violations, Violation{
				Rule:     "plan_stage_transition",
				Severity: SeverityBlock,
				Message:  fmt.Sprintf("cannot move breeding plan %s backward from %s to %s", before.ID, before.Stage, after.Stage),
				Entity:   EntityBreedingPlan,
				EntityID: after.ID,
			})
		}
	}
	return res, nil
}

// clearedDateRegression reports whether a backward stage move is explained
// by the removal of recorded actual dates: the plan sits exactly on its
// highest remaining recorded stage, and at least one stage above it lost
// its actual date in this change. Bare stage edits stay blocked.
func clearedDateRegression(before, after BreedingPlan) bool {
	if after.Stage != latestRecordedStage(after) {
		return false
	}
	for _, stage := range domain.EventStages() {
		if !after.Stage.Before(stage) {
			continue
		}
		if before.StageDate(stage).Actual != nil && after.StageDate(stage).Actual == nil {
			return true
		}
	}
	return false
}

func toSet(values ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}
