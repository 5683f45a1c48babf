package core

import (
	"context"
	"fmt"

	"breedcore/pkg/domain"
)

// GestationWindowRule warns when the recorded interval between the breeding
// attempt and the birth falls outside the species gestation range. Warnings
// never roll back the transaction; callers that want hard enforcement pass
// strict mode to the service layer instead.
func GestationWindowRule() Rule {
	return gestationWindowRule{}
}

type gestationWindowRule struct{}

func (gestationWindowRule) Name() string { return "plan_gestation_window" }

func (gestationWindowRule) Evaluate(_ context.Context, _ domain.RuleView, changes []Change) (Result, error) {
	res := Result{}
	for _, change := range changes {
		if change.Entity != EntityBreedingPlan {
			continue
		}
		plan, ok := change.After.(BreedingPlan)
		if !ok {
			continue
		}
		attempted := plan.StageDate(StageAttempted).Actual
		birthed := plan.StageDate(StageBirthed).Actual
		if attempted == nil || birthed == nil {
			continue
		}
		prof := plan.Species.Profile()
		days := int(birthed.Sub(*attempted).Hours() / 24)
		if days >= prof.GestationMin && days <= prof.GestationMax {
			continue
		}
		res.Violations = append(res.Violations, Violation{
			Rule:     "plan_gestation_window",
			Severity: SeverityWarn,
			Message: fmt.Sprintf("breeding plan %s birth is %d days after the attempt, outside the %s gestation range of %d to %d days",
				plan.ID, days, plan.Species, prof.GestationMin, prof.GestationMax),
			Entity:   EntityBreedingPlan,
			EntityID: plan.ID,
		})
	}
	return res, nil
}
