package core

import "breedcore/pkg/domain"

// Blocker identifiers reported by the deletion guard, in evaluation order.
// These names are part of the caller-facing contract.
const (
	BlockerHasBuyer        = "hasBuyer"
	BlockerIsPlaced        = "isPlaced"
	BlockerHasFinance      = "hasFinance"
	BlockerHasPayments     = "hasPayments"
	BlockerHasContract     = "hasContract"
	BlockerPromotedToAdult = "promotedToAdult"
	BlockerIsDeceased      = "isDeceased"
	BlockerHasHealthEvents = "hasHealthEvents"
	BlockerHasDocuments    = "hasDocuments"
	BlockerHasInvoices     = "hasInvoices"
	// BlockerHasMembers is the group-level blocker raised while any member
	// offspring record exists.
	BlockerHasMembers = "hasMembers"
	// BlockerLinkedActivePlan is the group-level blocker raised while the
	// group is linked to a plan past draft.
	BlockerLinkedActivePlan = "linkedActivePlan"
)

// EvaluateIndividualDeletion decides whether an offspring record may be hard
// deleted. Any accumulated business activity blocks hard deletion; archiving
// stays available for blocked records. The full blocker list is returned so
// callers can present it — the guard never silently partial-deletes.
func EvaluateIndividualDeletion(ind OffspringIndividual) DeletionDecision {
	blockers := flagBlockers(ind.Flags)
	return decisionFor(blockers)
}

// EvaluateGroupDeletion decides whether an offspring group may be hard
// deleted or unlinked from its plan. A group with members is always blocked;
// the member blockers are aggregated so the caller sees everything standing
// in the way.
func EvaluateGroupDeletion(group OffspringGroup, members []OffspringIndividual, plan *BreedingPlan) DeletionDecision {
	var blockers []string
	if len(members) > 0 {
		blockers = append(blockers, BlockerHasMembers)
	}
	seen := make(map[string]struct{})
	for _, member := range members {
		for _, b := range flagBlockers(member.Flags) {
			if _, dup := seen[b]; dup {
				continue
			}
			seen[b] = struct{}{}
			blockers = append(blockers, b)
		}
	}
	if plan != nil && plan.Stage != domain.StageDraft {
		blockers = append(blockers, BlockerLinkedActivePlan)
	}
	return decisionFor(blockers)
}

func flagBlockers(f ActivityFlags) []string {
	var blockers []string
	add := func(set bool, name string) {
		if set {
			blockers = append(blockers, name)
		}
	}
	add(f.HasBuyer, BlockerHasBuyer)
	add(f.IsPlaced, BlockerIsPlaced)
	add(f.HasFinance, BlockerHasFinance)
	add(f.HasPayments, BlockerHasPayments)
	add(f.HasContract, BlockerHasContract)
	add(f.PromotedToAdult, BlockerPromotedToAdult)
	add(f.IsDeceased, BlockerIsDeceased)
	add(f.HasHealthEvents, BlockerHasHealthEvents)
	add(f.HasDocuments, BlockerHasDocuments)
	add(f.HasInvoices, BlockerHasInvoices)
	return blockers
}

func decisionFor(blockers []string) DeletionDecision {
	if len(blockers) > 0 {
		return DeletionDecision{Outcome: OutcomeBlocked, Blockers: blockers}
	}
	return DeletionDecision{Outcome: OutcomeDeletable, Blockers: []string{}}
}
