package core

import (
	"time"

	"breedcore/pkg/domain"
	"breedcore/pkg/species"
)

// Interval defaults that are not species-specific: how long after a breeding
// attempt the pregnancy confirmation check is scheduled, and how long the
// placement window runs from first placement to completion.
const (
	ConfirmationCheckDays = 28
	PlacementWindowDays   = 28
)

// stageOffsetDays returns the projected day offset of a stage relative to
// the breeding attempt, using the species profile intervals.
func stageOffsetDays(stage PlanStage, prof species.Profile) int {
	switch stage {
	case StageAttempted:
		return 0
	case StageConfirmed:
		return ConfirmationCheckDays
	case StageBirthed:
		return prof.GestationTypical
	case StagePlacement:
		return prof.GestationTypical + prof.PlacementAgeDays
	case StageComplete:
		return prof.GestationTypical + prof.PlacementAgeDays + PlacementWindowDays
	}
	return 0
}

// recomputeDownstream re-derives the expected date for every stage after
// anchor's stage from the anchor date plus species interval defaults. Stages
// with a recorded actual date are left alone; upstream stages are never
// touched.
func recomputeDownstream(plan *BreedingPlan, from PlanStage, anchor time.Time, prof species.Profile) {
	fromOffset := stageOffsetDays(from, prof)
	fromRank, ok := from.Rank()
	if !ok {
		return
	}
	for _, stage := range domain.EventStages() {
		rank, _ := stage.Rank()
		if rank <= fromRank {
			continue
		}
		d := plan.StageDate(stage)
		if d.Actual != nil {
			continue
		}
		expected := anchor.AddDate(0, 0, stageOffsetDays(stage, prof)-fromOffset)
		d.Expected = &expected
		plan.SetStageDate(stage, d)
	}
}

// seedExpectedDates projects the full expected schedule from the first
// attempt date (typically the female's projected next heat).
func seedExpectedDates(plan *BreedingPlan, firstAttempt time.Time, prof species.Profile) {
	d := plan.StageDate(StageAttempted)
	d.Expected = &firstAttempt
	plan.SetStageDate(StageAttempted, d)
	recomputeDownstream(plan, StageAttempted, firstAttempt, prof)
}

// effectiveStageDate resolves the best-known date for a stage: the actual
// when recorded, else the locked value, else the projection.
func effectiveStageDate(plan BreedingPlan, stage PlanStage) *time.Time {
	d := plan.StageDate(stage)
	if d.Actual != nil {
		return d.Actual
	}
	if d.Locked != nil {
		return d.Locked
	}
	return d.Expected
}

// previousEventStage returns the event stage immediately preceding the given
// one, ok=false for the first event stage.
func previousEventStage(stage PlanStage) (PlanStage, bool) {
	stages := domain.EventStages()
	for i, s := range stages {
		if s == stage {
			if i == 0 {
				return "", false
			}
			return stages[i-1], true
		}
	}
	return "", false
}

func isEventStage(stage PlanStage) bool {
	for _, s := range domain.EventStages() {
		if s == stage {
			return true
		}
	}
	return false
}
