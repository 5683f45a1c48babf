package core

import (
	"context"
	"fmt"
	"time"

	"breedcore/pkg/cycle"
	"breedcore/pkg/domain"
)

// PlanEventInput carries one plan lifecycle event: which stage actually
// happened, and when. ExpectedVersion enables optimistic concurrency; zero
// skips the check. Strict turns the gestation-window warning into a hard
// rejection for the birth event.
type PlanEventInput struct {
	PlanID          string
	Stage           PlanStage
	Date            time.Time
	ExpectedVersion int64
	Actor           string
	Strict          bool
}

// CreateBreedingPlan opens a new plan in draft for a female. The expected
// schedule is seeded from her projected next heat: actual cycle statistics
// when available, the override or species default otherwise.
func (s *Service) CreateBreedingPlan(ctx context.Context, name, femaleID, actor string) (BreedingPlan, Result, error) {
	start := s.opts.clock.Now()
	var created BreedingPlan
	var res Result
	var err error
	if name == "" {
		err = domain.NewValidationError("name", "is required")
	} else {
		res, err = s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
			female, ok := tx.FindFemale(femaleID)
			if !ok {
				return domain.NewNotFoundError(EntityFemale, femaleID)
			}
			plan := BreedingPlan{
				Name:       name,
				FemaleID:   femaleID,
				Species:    female.Species,
				Hemisphere: female.Hemisphere,
				Stage:      StageDraft,
				RecordedBy: actor,
			}
			prof := female.Species.Profile()
			seedExpectedDates(&plan, s.projectNextHeat(female), prof)
			var txErr error
			created, txErr = tx.CreateBreedingPlan(plan)
			return txErr
		})
	}
	s.finish(ctx, "create_breeding_plan", actor, EntityBreedingPlan, created.ID, start, res, err)
	return created, res, err
}

// projectNextHeat returns the anchor used to seed a new plan's schedule.
// With no heat history the projection starts one basis interval from today.
func (s *Service) projectNextHeat(female Female) time.Time {
	summary := s.summaryFor(female, cycle.Options{})
	if summary.Next != nil {
		return *summary.Next
	}
	basis := female.Species.Profile().CycleDays
	if female.Override != nil {
		basis = female.Override.Days
	}
	return cycle.DateOnly(s.opts.clock.Now()).AddDate(0, 0, basis)
}

// RecordPlanEvent records that a lifecycle stage actually happened on a date.
// The projection for that stage is frozen, every downstream projection is
// re-derived from the recorded date, and the plan advances. Recording the
// identical date for an already-recorded stage is a no-op; a different date
// must go through CorrectPlanDate.
func (s *Service) RecordPlanEvent(ctx context.Context, input PlanEventInput) (BreedingPlan, Result, error) {
	start := s.opts.clock.Now()
	var updated BreedingPlan
	var res Result
	var err error

	if !isEventStage(input.Stage) {
		err = domain.NewValidationError("stage", fmt.Sprintf("%s does not accept a recorded date", input.Stage))
		s.finish(ctx, "record_plan_event", input.Actor, EntityBreedingPlan, input.PlanID, start, res, err)
		return updated, res, err
	}
	day := cycle.DateOnly(input.Date)

	// Same-date re-submission short-circuits without a version bump.
	if current, ok := s.store.GetBreedingPlan(input.PlanID); ok {
		if actual := current.StageDate(input.Stage).Actual; actual != nil && actual.Equal(day) {
			s.opts.logger.Debug("plan event already recorded", "plan", input.PlanID, "stage", string(input.Stage))
			return current, Result{}, nil
		}
	}

	res, err = s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		var txErr error
		updated, txErr = tx.UpdateBreedingPlan(input.PlanID, input.ExpectedVersion, func(plan *BreedingPlan) error {
			if plan.Stage.Terminal() {
				return &domain.DomainError{
					Code:    domain.CodeInvalidTransition,
					Message: fmt.Sprintf("plan is %s and accepts no further events", plan.Stage),
				}
			}
			d := plan.StageDate(input.Stage)
			if d.Actual != nil {
				if d.Actual.Equal(day) {
					return nil
				}
				return domain.NewValidationError("date", "stage already has a recorded date; correct it instead of re-recording")
			}
			if input.Stage.Before(plan.Stage) {
				return &domain.DomainError{
					Code:    domain.CodeInvalidTransition,
					Message: fmt.Sprintf("cannot record %s after the plan reached %s", input.Stage, plan.Stage),
				}
			}
			if seqErr := checkDateSequence(*plan, input.Stage, day); seqErr != nil {
				return seqErr
			}
			if input.Strict && input.Stage == StageBirthed {
				if gestErr := checkGestationBounds(*plan, day); gestErr != nil {
					return gestErr
				}
			}
			if d.Locked == nil && d.Expected != nil {
				d.Locked = d.Expected
			}
			d.Actual = &day
			plan.SetStageDate(input.Stage, d)
			recomputeDownstream(plan, input.Stage, day, plan.Species.Profile())
			if plan.Stage.Before(input.Stage) {
				plan.Stage = input.Stage
			}
			if input.Actor != "" {
				plan.RecordedBy = input.Actor
			}
			return nil
		})
		if txErr != nil {
			return txErr
		}
		if input.Stage == StageBirthed {
			updated, txErr = s.cascadeBirth(tx, updated, day)
		}
		return txErr
	})
	s.finish(ctx, "record_plan_event", input.Actor, EntityBreedingPlan, input.PlanID, start, res, err)
	return updated, res, err
}

// cascadeBirth links the birth to an offspring group in the same
// transaction: the plan's recorded birth date is the only writer of the
// group's birth date.
func (s *Service) cascadeBirth(tx domain.Transaction, plan BreedingPlan, birthDate time.Time) (BreedingPlan, error) {
	if plan.OffspringGroupID != nil {
		_, err := tx.UpdateOffspringGroup(*plan.OffspringGroupID, func(g *OffspringGroup) error {
			g.BirthDate = &birthDate
			return nil
		})
		return plan, err
	}
	group, err := tx.CreateOffspringGroup(OffspringGroup{
		Name:      plan.Name + " offspring",
		PlanID:    &plan.ID,
		FemaleID:  plan.FemaleID,
		BirthDate: &birthDate,
	})
	if err != nil {
		return plan, err
	}
	return tx.UpdateBreedingPlan(plan.ID, 0, func(p *BreedingPlan) error {
		p.OffspringGroupID = &group.ID
		return nil
	})
}

// CorrectPlanDate replaces an already-recorded actual date. The frozen
// projection stays frozen so the original expectation remains visible;
// downstream projections are re-derived from the corrected date. A birth
// correction propagates to the linked offspring group.
func (s *Service) CorrectPlanDate(ctx context.Context, input PlanEventInput) (BreedingPlan, Result, error) {
	start := s.opts.clock.Now()
	var updated BreedingPlan
	var res Result
	var err error

	if !isEventStage(input.Stage) {
		err = domain.NewValidationError("stage", fmt.Sprintf("%s does not accept a recorded date", input.Stage))
		s.finish(ctx, "correct_plan_date", input.Actor, EntityBreedingPlan, input.PlanID, start, res, err)
		return updated, res, err
	}
	day := cycle.DateOnly(input.Date)

	res, err = s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		var txErr error
		updated, txErr = tx.UpdateBreedingPlan(input.PlanID, input.ExpectedVersion, func(plan *BreedingPlan) error {
			d := plan.StageDate(input.Stage)
			if d.Actual == nil {
				return domain.NewValidationError("date", "stage has no recorded date to correct")
			}
			if d.Actual.Equal(day) {
				return nil
			}
			if seqErr := checkDateSequence(*plan, input.Stage, day); seqErr != nil {
				return seqErr
			}
			if input.Strict && input.Stage == StageBirthed {
				if gestErr := checkGestationBounds(*plan, day); gestErr != nil {
					return gestErr
				}
			}
			d.Actual = &day
			plan.SetStageDate(input.Stage, d)
			recomputeDownstream(plan, input.Stage, day, plan.Species.Profile())
			if input.Actor != "" {
				plan.RecordedBy = input.Actor
			}
			return nil
		})
		if txErr != nil {
			return txErr
		}
		if input.Stage == StageBirthed && updated.OffspringGroupID != nil {
			_, txErr = tx.UpdateOffspringGroup(*updated.OffspringGroupID, func(g *OffspringGroup) error {
				g.BirthDate = &day
				return nil
			})
		}
		return txErr
	})
	s.finish(ctx, "correct_plan_date", input.Actor, EntityBreedingPlan, input.PlanID, start, res, err)
	return updated, res, err
}

// ClearPlanDate removes a recorded actual date, restoring the frozen
// projection and regressing the plan stage. Clearing the birth date is
// refused while the linked offspring group has members; an empty linked
// group is removed with it.
func (s *Service) ClearPlanDate(ctx context.Context, planID string, stage PlanStage, expectedVersion int64, actor string) (BreedingPlan, Result, error) {
	start := s.opts.clock.Now()
	var updated BreedingPlan
	var res Result
	var err error

	if !isEventStage(stage) {
		err = domain.NewValidationError("stage", fmt.Sprintf("%s does not accept a recorded date", stage))
		s.finish(ctx, "clear_plan_date", actor, EntityBreedingPlan, planID, start, res, err)
		return updated, res, err
	}

	res, err = s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		var groupToDelete string
		var txErr error
		updated, txErr = tx.UpdateBreedingPlan(planID, expectedVersion, func(plan *BreedingPlan) error {
			d := plan.StageDate(stage)
			if d.Actual == nil {
				return domain.NewValidationError("date", "stage has no recorded date to clear")
			}
			if stage == StageBirthed && plan.OffspringGroupID != nil {
				if members := tx.ListGroupMembers(*plan.OffspringGroupID); len(members) > 0 {
					return &domain.DomainError{
						Code:    domain.CodeBirthDateLocked,
						Message: "birth date is locked while offspring records exist",
					}
				}
				groupToDelete = *plan.OffspringGroupID
				plan.OffspringGroupID = nil
			}
			if d.Locked != nil {
				d.Expected = d.Locked
				d.Locked = nil
			}
			d.Actual = nil
			plan.SetStageDate(stage, d)
			plan.Stage = latestRecordedStage(*plan)
			if prev, ok := previousEventStage(stage); ok {
				if anchor := effectiveStageDate(*plan, prev); anchor != nil {
					recomputeDownstream(plan, prev, *anchor, plan.Species.Profile())
				}
			}
			if actor != "" {
				plan.RecordedBy = actor
			}
			return nil
		})
		if txErr != nil {
			return txErr
		}
		if groupToDelete != "" {
			return tx.DeleteOffspringGroup(groupToDelete)
		}
		return nil
	})
	s.finish(ctx, "clear_plan_date", actor, EntityBreedingPlan, planID, start, res, err)
	return updated, res, err
}

// CancelPlan moves a plan to the cancelled terminal stage.
func (s *Service) CancelPlan(ctx context.Context, planID string, expectedVersion int64, actor string) (BreedingPlan, Result, error) {
	start := s.opts.clock.Now()
	var updated BreedingPlan
	res, err := s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		var txErr error
		updated, txErr = tx.UpdateBreedingPlan(planID, expectedVersion, func(plan *BreedingPlan) error {
			if plan.Stage.Terminal() {
				return &domain.DomainError{
					Code:    domain.CodeInvalidTransition,
					Message: fmt.Sprintf("plan is already %s", plan.Stage),
				}
			}
			plan.Stage = StageCancelled
			if actor != "" {
				plan.RecordedBy = actor
			}
			return nil
		})
		return txErr
	})
	s.finish(ctx, "cancel_plan", actor, EntityBreedingPlan, planID, start, res, err)
	return updated, res, err
}

// checkDateSequence enforces chronological order against the effective date
// of the previous stage and the recorded dates of later stages.
func checkDateSequence(plan BreedingPlan, stage PlanStage, date time.Time) error {
	if prev, ok := previousEventStage(stage); ok {
		if prevDate := effectiveStageDate(plan, prev); prevDate != nil && date.Before(*prevDate) {
			return &domain.DomainError{
				Code:  domain.CodeDateOutOfSequence,
				Field: "date",
				Message: fmt.Sprintf("%s on %s would precede %s on %s",
					stage, date.Format("2006-01-02"), prev, prevDate.Format("2006-01-02")),
			}
		}
	}
	rank, _ := stage.Rank()
	for _, later := range domain.EventStages() {
		laterRank, _ := later.Rank()
		if laterRank <= rank {
			continue
		}
		if actual := plan.StageDate(later).Actual; actual != nil && actual.Before(date) {
			return &domain.DomainError{
				Code:  domain.CodeDateOutOfSequence,
				Field: "date",
				Message: fmt.Sprintf("%s on %s would follow %s recorded on %s",
					stage, date.Format("2006-01-02"), later, actual.Format("2006-01-02")),
			}
		}
	}
	return nil
}

// checkGestationBounds hard-rejects a birth date outside the species
// gestation range. Used only in strict mode; the default path reports the
// same condition as a rule warning.
func checkGestationBounds(plan BreedingPlan, birthDate time.Time) error {
	attempted := plan.StageDate(StageAttempted).Actual
	if attempted == nil {
		return nil
	}
	prof := plan.Species.Profile()
	days := int(birthDate.Sub(*attempted).Hours() / 24)
	if days >= prof.GestationMin && days <= prof.GestationMax {
		return nil
	}
	return domain.NewValidationError("date", fmt.Sprintf("birth %d days after the attempt is outside the %d to %d day gestation range",
		days, prof.GestationMin, prof.GestationMax))
}

// latestRecordedStage returns the highest-ranked stage with an actual date,
// or draft when none remain.
func latestRecordedStage(plan BreedingPlan) PlanStage {
	latest := StageDraft
	for _, stage := range domain.EventStages() {
		if plan.StageDate(stage).Actual != nil {
			latest = stage
		}
	}
	return latest
}
