package domain

import "context"

// Transaction exposes the domain operations that a persistence implementation
// must support within an atomic scope. The propagate-on-write cascade (plan
// birth actual to group birth date) relies on every mutation in a single
// RunInTransaction call committing together or not at all.
type Transaction interface {
	Snapshot() TransactionView
	CreateFemale(Female) (Female, error)
	UpdateFemale(id string, mutator func(*Female) error) (Female, error)
	DeleteFemale(id string) error
	CreateBreedingPlan(BreedingPlan) (BreedingPlan, error)
	// UpdateBreedingPlan applies mutator to the plan. A positive
	// expectedVersion must match the stored version or the update fails with
	// a stale_write error; zero skips the check.
	UpdateBreedingPlan(id string, expectedVersion int64, mutator func(*BreedingPlan) error) (BreedingPlan, error)
	DeleteBreedingPlan(id string) error
	CreateOffspringGroup(OffspringGroup) (OffspringGroup, error)
	UpdateOffspringGroup(id string, mutator func(*OffspringGroup) error) (OffspringGroup, error)
	DeleteOffspringGroup(id string) error
	CreateOffspringIndividual(OffspringIndividual) (OffspringIndividual, error)
	UpdateOffspringIndividual(id string, mutator func(*OffspringIndividual) error) (OffspringIndividual, error)
	DeleteOffspringIndividual(id string) error
	FindFemale(id string) (Female, bool)
	FindBreedingPlan(id string) (BreedingPlan, bool)
	FindOffspringGroup(id string) (OffspringGroup, bool)
	FindOffspringIndividual(id string) (OffspringIndividual, bool)
	ListGroupMembers(groupID string) []OffspringIndividual
}

// TransactionView provides read-only access to snapshot data for rules.
type TransactionView interface {
	RuleView
	ListGroupMembers(groupID string) []OffspringIndividual
}

// PersistentStore is a minimal abstraction over durable backends. It mirrors
// the subset of store capabilities used directly by higher layers.
type PersistentStore interface {
	RunInTransaction(ctx context.Context, fn func(Transaction) error) (Result, error)
	View(ctx context.Context, fn func(TransactionView) error) error
	GetFemale(id string) (Female, bool)
	ListFemales() []Female
	GetBreedingPlan(id string) (BreedingPlan, bool)
	ListBreedingPlans() []BreedingPlan
	GetOffspringGroup(id string) (OffspringGroup, bool)
	ListOffspringGroups() []OffspringGroup
	GetOffspringIndividual(id string) (OffspringIndividual, bool)
	ListOffspringIndividuals() []OffspringIndividual
}
