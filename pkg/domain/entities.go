// Package domain defines the core persistent entities, value types, and
// rule evaluation primitives used by breedcore.
package domain

import (
	"time"

	"breedcore/pkg/species"
)

// EntityType identifies the type of record stored in the core domain.
type EntityType string

// Supported entity type identifiers used in Change records and persistence buckets.
const (
	// EntityFemale identifies a breeding female (dam) record.
	EntityFemale EntityType = "female"
	// EntityBreedingPlan identifies a breeding plan record.
	EntityBreedingPlan EntityType = "breeding_plan"
	// EntityOffspringGroup identifies an offspring group record.
	EntityOffspringGroup EntityType = "offspring_group"
	// EntityOffspringIndividual identifies an individual offspring record.
	EntityOffspringIndividual EntityType = "offspring_individual"
)

// PlanStage represents the canonical breeding plan lifecycle states.
type PlanStage string

// Canonical plan stages in order of forward progression. Cancelled is a
// parallel terminal stage reachable from any non-terminal stage.
const (
	StageDraft     PlanStage = "draft"
	StageAttempted PlanStage = "attempted"
	StageConfirmed PlanStage = "confirmed"
	StageBirthed   PlanStage = "birthed"
	StagePlacement PlanStage = "placement"
	StageComplete  PlanStage = "complete"
	StageCancelled PlanStage = "cancelled"
)

// stageRank orders the forward progression. Cancelled deliberately has no
// rank; it is reachable sideways, never by date recording.
var stageRank = map[PlanStage]int{
	StageDraft:     0,
	StageAttempted: 1,
	StageConfirmed: 2,
	StageBirthed:   3,
	StagePlacement: 4,
	StageComplete:  5,
}

// Rank returns the forward-progression position of the stage and whether the
// stage participates in forward ordering at all.
func (s PlanStage) Rank() (int, bool) {
	r, ok := stageRank[s]
	return r, ok
}

// Before reports whether s precedes other in forward progression. Stages
// outside the forward order (cancelled, unknown) never precede anything.
func (s PlanStage) Before(other PlanStage) bool {
	a, okA := stageRank[s]
	b, okB := stageRank[other]
	return okA && okB && a < b
}

// Terminal reports whether the stage admits no further transitions.
func (s PlanStage) Terminal() bool {
	return s == StageComplete || s == StageCancelled
}

// EventStages lists the stages that accept a recorded actual date, in order.
func EventStages() []PlanStage {
	return []PlanStage{StageAttempted, StageConfirmed, StageBirthed, StagePlacement, StageComplete}
}

// Severity captures rule outcomes.
type Severity string

// Rule evaluation severities determine commit behavior and logging.
const (
	// SeverityBlock blocks transaction commit.
	SeverityBlock Severity = "block"
	// SeverityWarn logs a warning but allows commit.
	SeverityWarn Severity = "warn"
	SeverityLog  Severity = "log"
)

// Base contains common fields for all domain records.
type Base struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	// Version increments on every committed update and backs the optimistic
	// concurrency check surfaced as a stale_write error.
	Version int64 `json:"version"`
}

// CycleOverride is an explicit per-female replacement of the statistical
// cycle-length basis. It supersedes the projection basis while present but
// never erases heat history.
type CycleOverride struct {
	Days  int       `json:"days"`
	SetAt time.Time `json:"set_at"`
}

// Female represents a breeding female (dam). It owns the append-only heat
// event history and the optional cycle-length override.
type Female struct {
	Base
	Name       string             `json:"name"`
	Species    species.Species    `json:"species"`
	Hemisphere species.Hemisphere `json:"hemisphere"`
	HeatDates  []time.Time        `json:"heat_dates"`
	Override   *CycleOverride     `json:"cycle_override,omitempty"`
}

// StageDates carries the three date fields attached to a single plan stage.
// Expected is the projection, Locked is the expected value frozen when the
// stage's actual date was first recorded, Actual is the recorded real-world
// occurrence.
type StageDates struct {
	Expected *time.Time `json:"expected,omitempty"`
	Locked   *time.Time `json:"locked,omitempty"`
	Actual   *time.Time `json:"actual,omitempty"`
}

// BreedingPlan is the top-level lifecycle entity of the date engine.
type BreedingPlan struct {
	Base
	Name             string                   `json:"name"`
	FemaleID         string                   `json:"female_id"`
	Species          species.Species          `json:"species"`
	Hemisphere       species.Hemisphere       `json:"hemisphere"`
	Stage            PlanStage                `json:"stage"`
	Dates            map[PlanStage]StageDates `json:"dates"`
	OffspringGroupID *string                  `json:"offspring_group_id,omitempty"`
	RecordedBy       string                   `json:"recorded_by,omitempty"`
}

// StageDate returns the date fields for the given stage, zero-valued when
// nothing has been projected or recorded yet.
func (p BreedingPlan) StageDate(stage PlanStage) StageDates {
	if p.Dates == nil {
		return StageDates{}
	}
	return p.Dates[stage]
}

// SetStageDate replaces the date fields for a stage, allocating the map on
// first write.
func (p *BreedingPlan) SetStageDate(stage PlanStage, d StageDates) {
	if p.Dates == nil {
		p.Dates = make(map[PlanStage]StageDates)
	}
	p.Dates[stage] = d
}

// OffspringGroup is the birth-linked litter/clutch record. It cannot exist
// without an actual birth date; the plan's birth actual is the single source
// that writes BirthDate (propagate-on-write, plan to group).
type OffspringGroup struct {
	Base
	Name      string     `json:"name"`
	PlanID    *string    `json:"plan_id,omitempty"`
	FemaleID  string     `json:"female_id"`
	BirthDate *time.Time `json:"birth_date"`
}

// ActivityFlags enumerates the business-activity markers consulted by the
// deletion guard. Field order matches the blocker reporting order.
type ActivityFlags struct {
	HasBuyer        bool `json:"has_buyer"`
	IsPlaced        bool `json:"is_placed"`
	HasFinance      bool `json:"has_finance"`
	HasPayments     bool `json:"has_payments"`
	HasContract     bool `json:"has_contract"`
	PromotedToAdult bool `json:"promoted_to_adult"`
	IsDeceased      bool `json:"is_deceased"`
	HasHealthEvents bool `json:"has_health_events"`
	HasDocuments    bool `json:"has_documents"`
	HasInvoices     bool `json:"has_invoices"`
}

// Any reports whether at least one activity flag is set.
func (f ActivityFlags) Any() bool {
	return f.HasBuyer || f.IsPlaced || f.HasFinance || f.HasPayments ||
		f.HasContract || f.PromotedToAdult || f.IsDeceased ||
		f.HasHealthEvents || f.HasDocuments || f.HasInvoices
}

// OffspringIndividual belongs to exactly one OffspringGroup and carries the
// activity flags used by the deletion guard plus archive bookkeeping.
type OffspringIndividual struct {
	Base
	GroupID       string        `json:"group_id"`
	Name          string        `json:"name"`
	Flags         ActivityFlags `json:"flags"`
	Archived      bool          `json:"archived"`
	ArchiveReason string        `json:"archive_reason,omitempty"`
	DocumentKeys  []string      `json:"document_keys,omitempty"`
}

// DeletionOutcome is the deletion guard verdict for a record.
type DeletionOutcome string

// Deletion guard outcomes.
const (
	// OutcomeDeletable permits hard deletion.
	OutcomeDeletable DeletionOutcome = "DELETABLE"
	// OutcomeBlocked forbids hard deletion; archiving remains available.
	OutcomeBlocked DeletionOutcome = "BLOCKED"
)

// DeletionDecision reports the guard outcome together with every triggered
// blocker so callers can surface the full list.
type DeletionDecision struct {
	Outcome  DeletionOutcome `json:"outcome"`
	Blockers []string        `json:"blockers"`
}

// Change describes a mutation applied to an entity during a transaction.
type Change struct {
	Entity EntityType
	Action Action
	Before any
	After  any
}

// Action indicates the type of modification performed.
type Action string

// Change actions enumerate supported CRUD operations captured in audit trail.
const (
	// ActionCreate indicates an entity was created.
	ActionCreate Action = "create"
	// ActionUpdate indicates an entity was updated.
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Violation reports a failed rule evaluation.
type Violation struct {
	Rule     string
	Severity Severity
	Message  string
	Entity   EntityType
	EntityID string
}

// Result aggregates violations from the rules engine.
type Result struct {
	Violations []Violation
}

// Merge appends violations from another result.
func (r *Result) Merge(other Result) {
	if len(other.Violations) == 0 {
		return
	}
	r.Violations = append(r.Violations, other.Violations...)
}

// HasBlocking returns true if the result contains blocking violations.
func (r Result) HasBlocking() bool {
	for _, v := range r.Violations {
		if v.Severity == SeverityBlock {
			return true
		}
	}
	return false
}

// Warnings returns the subset of violations with warn severity.
func (r Result) Warnings() []Violation {
	var out []Violation
	for _, v := range r.Violations {
		if v.Severity == SeverityWarn {
			out = append(out, v)
		}
	}
	return out
}

// RuleViolationError is returned when blocking violations are present.
type RuleViolationError struct {
	Result Result
}

func (e RuleViolationError) Error() string {
	return "transaction blocked by rules"
}
