package core

import "breedcore/pkg/domain"

type (
	EntityType          = domain.EntityType
	PlanStage           = domain.PlanStage
	Severity            = domain.Severity
	Base                = domain.Base
	Female              = domain.Female
	CycleOverride       = domain.CycleOverride
	BreedingPlan        = domain.BreedingPlan
	StageDates          = domain.StageDates
	OffspringGroup      = domain.OffspringGroup
	OffspringIndividual = domain.OffspringIndividual
	ActivityFlags       = domain.ActivityFlags
	DeletionDecision    = domain.DeletionDecision
	Change              = domain.Change
	Action              = domain.Action
	Violation           = domain.Violation
	Result              = domain.Result
	RulesEngine         = domain.RulesEngine
	Rule                = domain.Rule
	RuleViolationError  = domain.RuleViolationError
)

const (
	EntityFemale              = domain.EntityFemale
	EntityBreedingPlan        = domain.EntityBreedingPlan
	EntityOffspringGroup      = domain.EntityOffspringGroup
	EntityOffspringIndividual = domain.EntityOffspringIndividual
)

const (
	StageDraft     = domain.StageDraft
	StageAttempted = domain.StageAttempted
	StageConfirmed = domain.StageConfirmed
	StageBirthed   = domain.StageBirthed
	StagePlacement = domain.StagePlacement
	StageComplete  = domain.StageComplete
	StageCancelled = domain.StageCancelled
)

const (
	SeverityBlock = domain.SeverityBlock
	SeverityWarn  = domain.SeverityWarn
	SeverityLog   = domain.SeverityLog
)

const (
	ActionCreate = domain.ActionCreate
	ActionUpdate = domain.ActionUpdate
	ActionDelete = domain.ActionDelete
)

const (
	OutcomeDeletable = domain.OutcomeDeletable
	OutcomeBlocked   = domain.OutcomeBlocked
)
