package core

import (
	"context"
	"testing"
	"time"

	"breedcore/pkg/domain"
	"breedcore/pkg/species"
)

func planChange(before, after BreedingPlan) Change {
	return Change{Entity: EntityBreedingPlan, Action: domain.ActionUpdate, Before: before, After: after}
}

func stagedPlan(id string, stage PlanStage) BreedingPlan {
	return BreedingPlan{Base: domain.Base{ID: id}, Stage: stage}
}

func TestStageTransitionRuleAllowsForwardMoves(t *testing.T) {
	rule := StageTransitionRule()
	res, err := rule.Evaluate(context.Background(), nil, []Change{
		planChange(stagedPlan("p1", StageDraft), stagedPlan("p1", StageAttempted)),
		planChange(stagedPlan("p2", StageConfirmed), stagedPlan("p2", StageBirthed)),
		planChange(stagedPlan("p3", StageDraft), stagedPlan("p3", StageCancelled)),
	})
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if len(res.Violations) != 0 {
		t.Fatalf("forward moves must pass, got %+v", res.Violations)
	}
}

func TestStageTransitionRuleBlocksBackwardMove(t *testing.T) {
	rule := StageTransitionRule()
	res, err := rule.Evaluate(context.Background(), nil, []Change{
		planChange(stagedPlan("p1", StageBirthed), stagedPlan("p1", StageConfirmed)),
	})
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if !res.HasBlocking() {
		t.Fatalf("backward move must block, got %+v", res.Violations)
	}
}

func TestStageTransitionRuleAllowsRegressionFromClearedDate(t *testing.T) {
	rule := StageTransitionRule()
	attempt := time.Date(2026, 3, 7, 0, 0, 0, 0, time.UTC)
	birth := time.Date(2026, 5, 11, 0, 0, 0, 0, time.UTC)

	before := stagedPlan("p1", StageBirthed)
	before.SetStageDate(StageAttempted, StageDates{Actual: &attempt})
	before.SetStageDate(StageBirthed, StageDates{Actual: &birth})

	// Clearing the birth date drops the plan back to its highest remaining
	// recorded stage.
	after := stagedPlan("p1", StageAttempted)
	after.SetStageDate(StageAttempted, StageDates{Actual: &attempt})
	after.SetStageDate(StageBirthed, StageDates{Expected: &birth})

	res, err := rule.Evaluate(context.Background(), nil, []Change{planChange(before, after)})
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if len(res.Violations) != 0 {
		t.Fatalf("regression matching a cleared date must pass, got %+v", res.Violations)
	}

	// The same backward stage move without removing the actual stays blocked.
	edited := stagedPlan("p1", StageConfirmed)
	edited.SetStageDate(StageAttempted, StageDates{Actual: &attempt})
	edited.SetStageDate(StageConfirmed, StageDates{Actual: &birth})
	edited.SetStageDate(StageBirthed, StageDates{Actual: &birth})
	res, err = rule.Evaluate(context.Background(), nil, []Change{planChange(before, edited)})
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if !res.HasBlocking() {
		t.Fatalf("bare stage edit must block, got %+v", res.Violations)
	}
}

func TestStageTransitionRuleBlocksTerminalExit(t *testing.T) {
	rule := StageTransitionRule()
	for _, terminal := range []PlanStage{StageComplete, StageCancelled} {
		res, err := rule.Evaluate(context.Background(), nil, []Change{
			planChange(stagedPlan("p1", terminal), stagedPlan("p1", StageAttempted)),
		})
		if err != nil {
			t.Fatalf("%s: evaluate: %v", terminal, err)
		}
		if !res.HasBlocking() {
			t.Fatalf("%s: exit from terminal stage must block", terminal)
		}
	}
}

func TestStageTransitionRuleBlocksUnknownStage(t *testing.T) {
	rule := StageTransitionRule()
	res, err := rule.Evaluate(context.Background(), nil, []Change{
		planChange(stagedPlan("p1", StageDraft), stagedPlan("p1", PlanStage("paused"))),
	})
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if !res.HasBlocking() {
		t.Fatalf("unknown stage must block")
	}
}

func TestGestationWindowRuleWarnsOutsideRange(t *testing.T) {
	rule := GestationWindowRule()
	attempt := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	mkPlan := func(gestationDays int) BreedingPlan {
		birth := attempt.AddDate(0, 0, gestationDays)
		plan := stagedPlan("p1", StageBirthed)
		plan.Species = species.Cat
		plan.SetStageDate(StageAttempted, StageDates{Actual: &attempt})
		plan.SetStageDate(StageBirthed, StageDates{Actual: &birth})
		return plan
	}

	res, err := rule.Evaluate(context.Background(), nil, []Change{planChange(BreedingPlan{}, mkPlan(65))})
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if len(res.Violations) != 0 {
		t.Fatalf("typical gestation must not warn, got %+v", res.Violations)
	}

	res, err = rule.Evaluate(context.Background(), nil, []Change{planChange(BreedingPlan{}, mkPlan(20))})
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if len(res.Warnings()) != 1 {
		t.Fatalf("short gestation must warn once, got %+v", res.Violations)
	}
	if res.HasBlocking() {
		t.Fatalf("gestation warnings must never block")
	}
}

func TestDefaultRulesEngineBlocksBackwardCommit(t *testing.T) {
	engine := NewDefaultRulesEngine()
	res, err := engine.Evaluate(context.Background(), nil, []Change{
		planChange(stagedPlan("p1", StagePlacement), stagedPlan("p1", StageAttempted)),
	})
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if !res.HasBlocking() {
		t.Fatalf("engine must surface the transition block")
	}
}
