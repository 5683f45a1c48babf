// Package memory provides an in-memory implementation of the core persistence
// store used for tests and ephemeral environments.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"breedcore/pkg/domain"
)

// Compile-time contract assertion ensuring memory.Store adheres to the domain persistence interfaces.
var _ domain.PersistentStore = (*Store)(nil)

type (
	// Female aliases domain.Female for in-memory persistence operations.
	Female = domain.Female
	// BreedingPlan aliases domain.BreedingPlan.
	BreedingPlan = domain.BreedingPlan
	// OffspringGroup aliases domain.OffspringGroup.
	OffspringGroup = domain.OffspringGroup
	// OffspringIndividual aliases domain.OffspringIndividual.
	OffspringIndividual = domain.OffspringIndividual
	// Change aliases domain.Change captured in transactions.
	Change = domain.Change
	// Result aliases domain.Result summarizing rule evaluation.
	Result = domain.Result
	// RulesEngine aliases domain.RulesEngine used to evaluate rules.
	RulesEngine = domain.RulesEngine
	// Transaction aliases domain.Transaction representing a mutable unit of work.
	Transaction = domain.Transaction
	// TransactionView aliases domain.TransactionView providing read-only state.
	TransactionView = domain.TransactionView
	// PersistentStore aliases domain.PersistentStore abstraction.
	PersistentStore = domain.PersistentStore
)

type memoryState struct {
	females   map[string]Female
	plans     map[string]BreedingPlan
	groups    map[string]OffspringGroup
	offspring map[string]OffspringIndividual
}

// Snapshot captures a point-in-time clone of the store state.
type Snapshot struct {
	Females   map[string]Female              `json:"females"`
	Plans     map[string]BreedingPlan        `json:"plans"`
	Groups    map[string]OffspringGroup      `json:"groups"`
	Offspring map[string]OffspringIndividual `json:"offspring"`
}

func newMemoryState() memoryState {
	return memoryState{
		females:   make(map[string]Female),
		plans:     make(map[string]BreedingPlan),
		groups:    make(map[string]OffspringGroup),
		offspring: make(map[string]OffspringIndividual),
	}
}

func snapshotFromMemoryState(state memoryState) Snapshot {
	s := Snapshot{
		Females:   make(map[string]Female, len(state.females)),
		Plans:     make(map[string]BreedingPlan, len(state.plans)),
		Groups:    make(map[string]OffspringGroup, len(state.groups)),
		Offspring: make(map[string]OffspringIndividual, len(state.offspring)),
	}
	for k, v := range state.females {
		s.Females[k] = cloneFemale(v)
	}
	for k, v := range state.plans {
		s.Plans[k] = clonePlan(v)
	}
	for k, v := range state.groups {
		s.Groups[k] = cloneGroup(v)
	}
	for k, v := range state.offspring {
		s.Offspring[k] = cloneOffspring(v)
	}
	return s
}

func memoryStateFromSnapshot(s Snapshot) memoryState {
	state := newMemoryState()
	for k, v := range s.Females {
		state.females[k] = cloneFemale(v)
	}
	for k, v := range s.Plans {
		state.plans[k] = clonePlan(v)
	}
	for k, v := range s.Groups {
		state.groups[k] = cloneGroup(v)
	}
	for k, v := range s.Offspring {
		state.offspring[k] = cloneOffspring(v)
	}
	return state
}

// migrateSnapshot repairs snapshots written by older deployments: nil maps
// become empty, dangling references are dropped, and groups without an actual
// birth date are removed along with their members.
func migrateSnapshot(snapshot Snapshot) Snapshot {
	if snapshot.Females == nil {
		snapshot.Females = map[string]Female{}
	}
	if snapshot.Plans == nil {
		snapshot.Plans = map[string]BreedingPlan{}
	}
	if snapshot.Groups == nil {
		snapshot.Groups = map[string]OffspringGroup{}
	}
	if snapshot.Offspring == nil {
		snapshot.Offspring = map[string]OffspringIndividual{}
	}

	femaleExists := func(id string) bool {
		_, ok := snapshot.Females[id]
		return ok
	}
	planExists := func(id string) bool {
		_, ok := snapshot.Plans[id]
		return ok
	}
	groupExists := func(id string) bool {
		_, ok := snapshot.Groups[id]
		return ok
	}

	for id, plan := range snapshot.Plans {
		if plan.FemaleID == "" || !femaleExists(plan.FemaleID) {
			delete(snapshot.Plans, id)
			continue
		}
		if plan.Stage == "" {
			plan.Stage = domain.StageDraft
		}
		snapshot.Plans[id] = plan
	}

	for id, group := range snapshot.Groups {
		if group.BirthDate == nil {
			delete(snapshot.Groups, id)
			continue
		}
		if group.PlanID != nil && !planExists(*group.PlanID) {
			group.PlanID = nil
		}
		snapshot.Groups[id] = group
	}

	for id, plan := range snapshot.Plans {
		if plan.OffspringGroupID != nil && !groupExists(*plan.OffspringGroupID) {
			plan.OffspringGroupID = nil
			snapshot.Plans[id] = plan
		}
	}

	for id, ind := range snapshot.Offspring {
		if ind.GroupID == "" || !groupExists(ind.GroupID) {
			delete(snapshot.Offspring, id)
		}
	}

	return snapshot
}

func (s memoryState) clone() memoryState {
	cloned := newMemoryState()
	for k, v := range s.females {
		cloned.females[k] = cloneFemale(v)
	}
	for k, v := range s.plans {
		cloned.plans[k] = clonePlan(v)
	}
	for k, v := range s.groups {
		cloned.groups[k] = cloneGroup(v)
	}
	for k, v := range s.offspring {
		cloned.offspring[k] = cloneOffspring(v)
	}
	return cloned
}

func cloneFemale(f Female) Female {
	cp := f
	cp.HeatDates = append([]time.Time(nil), f.HeatDates...)
	if f.Override != nil {
		o := *f.Override
		cp.Override = &o
	}
	return cp
}

func clonePlan(p BreedingPlan) BreedingPlan {
	cp := p
	if p.Dates != nil {
		cp.Dates = make(map[domain.PlanStage]domain.StageDates, len(p.Dates))
		for stage, d := range p.Dates {
			cp.Dates[stage] = cloneStageDates(d)
		}
	}
	if p.OffspringGroupID != nil {
		id := *p.OffspringGroupID
		cp.OffspringGroupID = &id
	}
	return cp
}

func cloneStageDates(d domain.StageDates) domain.StageDates {
	cp := d
	if d.Expected != nil {
		t := *d.Expected
		cp.Expected = &t
	}
	if d.Locked != nil {
		t := *d.Locked
		cp.Locked = &t
	}
	if d.Actual != nil {
		t := *d.Actual
		cp.Actual = &t
	}
	return cp
}

func cloneGroup(g OffspringGroup) OffspringGroup {
	cp := g
	if g.PlanID != nil {
		id := *g.PlanID
		cp.PlanID = &id
	}
	if g.BirthDate != nil {
		t := *g.BirthDate
		cp.BirthDate = &t
	}
	return cp
}

func cloneOffspring(o OffspringIndividual) OffspringIndividual {
	cp := o
	cp.DocumentKeys = append([]string(nil), o.DocumentKeys...)
	return cp
}

// Store provides an in-memory transactional store for the core domain.
type Store struct {
	mu     sync.RWMutex
	state  memoryState
	engine *RulesEngine
	nowFn  func() time.Time
}

// NewStore constructs an in-memory store backed by the provided rules engine.
func NewStore(engine *RulesEngine) *Store {
	if engine == nil {
		engine = domain.NewRulesEngine()
	}
	return &Store{
		state:  newMemoryState(),
		engine: engine,
		nowFn:  func() time.Time { return time.Now().UTC() },
	}
}

func (s *Store) newID() string {
	return uuid.NewString()
}

// ExportState clones the current store state for external persistence.
func (s *Store) ExportState() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return snapshotFromMemoryState(s.state)
}

// ImportState replaces the store state with the provided snapshot.
func (s *Store) ImportState(snapshot Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = memoryStateFromSnapshot(migrateSnapshot(snapshot))
}

// RulesEngine exposes the currently configured engine.
func (s *Store) RulesEngine() *RulesEngine {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.engine
}

// SetNowFunc overrides the time provider, for tests that need fixed clocks.
func (s *Store) SetNowFunc(fn func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if fn != nil {
		s.nowFn = fn
	}
}

// transaction represents a mutation set applied to the store state.
type transaction struct {
	store   *Store
	state   memoryState
	changes []Change
	now     time.Time
}

// transactionView exposes a read-only snapshot of the transactional state to rules.
type transactionView struct {
	state *memoryState
}

func newTransactionView(state *memoryState) TransactionView {
	return transactionView{state: state}
}

// ListFemales returns all females within the transaction snapshot.
func (v transactionView) ListFemales() []Female {
	out := make([]Female, 0, len(v.state.females))
	for _, f := range v.state.females {
		out = append(out, cloneFemale(f))
	}
	sortByID(out, func(f Female) string { return f.ID })
	return out
}

// ListBreedingPlans returns all plans in the snapshot.
func (v transactionView) ListBreedingPlans() []BreedingPlan {
	out := make([]BreedingPlan, 0, len(v.state.plans))
	for _, p := range v.state.plans {
		out = append(out, clonePlan(p))
	}
	sortByID(out, func(p BreedingPlan) string { return p.ID })
	return out
}

// ListOffspringGroups returns all groups in the snapshot.
func (v transactionView) ListOffspringGroups() []OffspringGroup {
	out := make([]OffspringGroup, 0, len(v.state.groups))
	for _, g := range v.state.groups {
		out = append(out, cloneGroup(g))
	}
	sortByID(out, func(g OffspringGroup) string { return g.ID })
	return out
}

// ListOffspringIndividuals returns all offspring in the snapshot.
func (v transactionView) ListOffspringIndividuals() []OffspringIndividual {
	out := make([]OffspringIndividual, 0, len(v.state.offspring))
	for _, o := range v.state.offspring {
		out = append(out, cloneOffspring(o))
	}
	sortByID(out, func(o OffspringIndividual) string { return o.ID })
	return out
}

// ListGroupMembers returns the offspring belonging to the given group.
func (v transactionView) ListGroupMembers(groupID string) []OffspringIndividual {
	return groupMembers(v.state, groupID)
}

// FindFemale retrieves a female by ID from the snapshot.
func (v transactionView) FindFemale(id string) (Female, bool) {
	f, ok := v.state.females[id]
	if !ok {
		return Female{}, false
	}
	return cloneFemale(f), true
}

// FindBreedingPlan retrieves a plan by ID from the snapshot.
func (v transactionView) FindBreedingPlan(id string) (BreedingPlan, bool) {
	p, ok := v.state.plans[id]
	if !ok {
		return BreedingPlan{}, false
	}
	return clonePlan(p), true
}

// FindOffspringGroup retrieves a group by ID from the snapshot.
func (v transactionView) FindOffspringGroup(id string) (OffspringGroup, bool) {
	g, ok := v.state.groups[id]
	if !ok {
		return OffspringGroup{}, false
	}
	return cloneGroup(g), true
}

// FindOffspringIndividual retrieves an offspring record by ID from the snapshot.
func (v transactionView) FindOffspringIndividual(id string) (OffspringIndividual, bool) {
	o, ok := v.state.offspring[id]
	if !ok {
		return OffspringIndividual{}, false
	}
	return cloneOffspring(o), true
}

func groupMembers(state *memoryState, groupID string) []OffspringIndividual {
	var out []OffspringIndividual
	for _, o := range state.offspring {
		if o.GroupID == groupID {
			out = append(out, cloneOffspring(o))
		}
	}
	sortByID(out, func(o OffspringIndividual) string { return o.ID })
	return out
}

func sortByID[T any](items []T, id func(T) string) {
	sort.Slice(items, func(i, j int) bool { return id(items[i]) < id(items[j]) })
}

// RunInTransaction executes fn within a transactional copy of the store state.
// Rules are evaluated against the mutated snapshot before commit; blocking
// violations roll the whole mutation set back.
func (s *Store) RunInTransaction(ctx context.Context, fn func(tx Transaction) error) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &transaction{
		store: s,
		state: s.state.clone(),
		now:   s.nowFn(),
	}

	if err := fn(tx); err != nil {
		return Result{}, err
	}

	var result Result
	if s.engine != nil {
		view := newTransactionView(&tx.state)
		res, err := s.engine.Evaluate(ctx, view, tx.changes)
		if err != nil {
			return Result{}, err
		}
		result = res
		if res.HasBlocking() {
			return res, domain.RuleViolationError{Result: res}
		}
	}

	s.state = tx.state
	return result, nil
}

// View executes fn against a read-only snapshot of the store state.
func (s *Store) View(ctx context.Context, fn func(TransactionView) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snapshot := s.state.clone()
	view := newTransactionView(&snapshot)
	return fn(view)
}

func (tx *transaction) recordChange(change Change) {
	tx.changes = append(tx.changes, change)
}

// Snapshot exposes the transactional state as a read-only view.
func (tx *transaction) Snapshot() TransactionView {
	return newTransactionView(&tx.state)
}

// CreateFemale stores a new female within the transaction.
func (tx *transaction) CreateFemale(f Female) (Female, error) {
	if f.ID == "" {
		f.ID = tx.store.newID()
	}
	if _, exists := tx.state.females[f.ID]; exists {
		return Female{}, fmt.Errorf("female %q already exists", f.ID)
	}
	f.CreatedAt = tx.now
	f.UpdatedAt = tx.now
	f.Version = 1
	tx.state.females[f.ID] = cloneFemale(f)
	tx.recordChange(Change{Entity: domain.EntityFemale, Action: domain.ActionCreate, After: cloneFemale(f)})
	return cloneFemale(f), nil
}

// UpdateFemale mutates a female using the provided mutator function.
func (tx *transaction) UpdateFemale(id string, mutator func(*Female) error) (Female, error) {
	current, ok := tx.state.females[id]
	if !ok {
		return Female{}, domain.NewNotFoundError(domain.EntityFemale, id)
	}
	before := cloneFemale(current)
	if err := mutator(&current); err != nil {
		return Female{}, err
	}
	current.ID = id
	current.UpdatedAt = tx.now
	current.Version = before.Version + 1
	tx.state.females[id] = cloneFemale(current)
	tx.recordChange(Change{Entity: domain.EntityFemale, Action: domain.ActionUpdate, Before: before, After: cloneFemale(current)})
	return cloneFemale(current), nil
}

// DeleteFemale removes a female. Females with breeding plans cannot be
// removed; the plans carry regulatory history.
func (tx *transaction) DeleteFemale(id string) error {
	current, ok := tx.state.females[id]
	if !ok {
		return domain.NewNotFoundError(domain.EntityFemale, id)
	}
	for _, plan := range tx.state.plans {
		if plan.FemaleID == id {
			return fmt.Errorf("female %q still referenced by plan %q", id, plan.ID)
		}
	}
	delete(tx.state.females, id)
	tx.recordChange(Change{Entity: domain.EntityFemale, Action: domain.ActionDelete, Before: cloneFemale(current)})
	return nil
}

// CreateBreedingPlan stores a new plan.
func (tx *transaction) CreateBreedingPlan(p BreedingPlan) (BreedingPlan, error) {
	if p.ID == "" {
		p.ID = tx.store.newID()
	}
	if _, exists := tx.state.plans[p.ID]; exists {
		return BreedingPlan{}, fmt.Errorf("breeding plan %q already exists", p.ID)
	}
	if _, ok := tx.state.females[p.FemaleID]; !ok {
		return BreedingPlan{}, domain.NewNotFoundError(domain.EntityFemale, p.FemaleID)
	}
	if p.Stage == "" {
		p.Stage = domain.StageDraft
	}
	p.CreatedAt = tx.now
	p.UpdatedAt = tx.now
	p.Version = 1
	tx.state.plans[p.ID] = clonePlan(p)
	tx.recordChange(Change{Entity: domain.EntityBreedingPlan, Action: domain.ActionCreate, After: clonePlan(p)})
	return clonePlan(p), nil
}

// UpdateBreedingPlan mutates a plan, enforcing the optimistic version check
// when expectedVersion is positive.
func (tx *transaction) UpdateBreedingPlan(id string, expectedVersion int64, mutator func(*BreedingPlan) error) (BreedingPlan, error) {
	current, ok := tx.state.plans[id]
	if !ok {
		return BreedingPlan{}, domain.NewNotFoundError(domain.EntityBreedingPlan, id)
	}
	if expectedVersion > 0 && current.Version != expectedVersion {
		return BreedingPlan{}, domain.NewStaleWriteError(domain.EntityBreedingPlan, id, expectedVersion, current.Version)
	}
	before := clonePlan(current)
	if err := mutator(&current); err != nil {
		return BreedingPlan{}, err
	}
	current.ID = id
	current.UpdatedAt = tx.now
	current.Version = before.Version + 1
	tx.state.plans[id] = clonePlan(current)
	tx.recordChange(Change{Entity: domain.EntityBreedingPlan, Action: domain.ActionUpdate, Before: before, After: clonePlan(current)})
	return clonePlan(current), nil
}

// DeleteBreedingPlan removes a plan. Plans with a linked offspring group
// cannot be removed.
func (tx *transaction) DeleteBreedingPlan(id string) error {
	current, ok := tx.state.plans[id]
	if !ok {
		return domain.NewNotFoundError(domain.EntityBreedingPlan, id)
	}
	if current.OffspringGroupID != nil {
		return fmt.Errorf("breeding plan %q still linked to offspring group %q", id, *current.OffspringGroupID)
	}
	delete(tx.state.plans, id)
	tx.recordChange(Change{Entity: domain.EntityBreedingPlan, Action: domain.ActionDelete, Before: clonePlan(current)})
	return nil
}

// CreateOffspringGroup stores a new group. A group cannot exist without an
// actual birth date.
func (tx *transaction) CreateOffspringGroup(g OffspringGroup) (OffspringGroup, error) {
	if g.ID == "" {
		g.ID = tx.store.newID()
	}
	if _, exists := tx.state.groups[g.ID]; exists {
		return OffspringGroup{}, fmt.Errorf("offspring group %q already exists", g.ID)
	}
	if g.BirthDate == nil {
		return OffspringGroup{}, fmt.Errorf("offspring group %q requires an actual birth date", g.ID)
	}
	g.CreatedAt = tx.now
	g.UpdatedAt = tx.now
	g.Version = 1
	tx.state.groups[g.ID] = cloneGroup(g)
	tx.recordChange(Change{Entity: domain.EntityOffspringGroup, Action: domain.ActionCreate, After: cloneGroup(g)})
	return cloneGroup(g), nil
}

// UpdateOffspringGroup mutates a group.
func (tx *transaction) UpdateOffspringGroup(id string, mutator func(*OffspringGroup) error) (OffspringGroup, error) {
	current, ok := tx.state.groups[id]
	if !ok {
		return OffspringGroup{}, domain.NewNotFoundError(domain.EntityOffspringGroup, id)
	}
	before := cloneGroup(current)
	if err := mutator(&current); err != nil {
		return OffspringGroup{}, err
	}
	if current.BirthDate == nil {
		return OffspringGroup{}, fmt.Errorf("offspring group %q requires an actual birth date", id)
	}
	current.ID = id
	current.UpdatedAt = tx.now
	current.Version = before.Version + 1
	tx.state.groups[id] = cloneGroup(current)
	tx.recordChange(Change{Entity: domain.EntityOffspringGroup, Action: domain.ActionUpdate, Before: before, After: cloneGroup(current)})
	return cloneGroup(current), nil
}

// DeleteOffspringGroup removes a group. Groups with members cannot be
// removed; the deletion guard in the service layer reports the blockers
// before a request ever reaches this point.
func (tx *transaction) DeleteOffspringGroup(id string) error {
	current, ok := tx.state.groups[id]
	if !ok {
		return domain.NewNotFoundError(domain.EntityOffspringGroup, id)
	}
	if members := groupMembers(&tx.state, id); len(members) > 0 {
		return fmt.Errorf("offspring group %q still has %d members", id, len(members))
	}
	for planID, plan := range tx.state.plans {
		if plan.OffspringGroupID != nil && *plan.OffspringGroupID == id {
			plan.OffspringGroupID = nil
			tx.state.plans[planID] = plan
		}
	}
	delete(tx.state.groups, id)
	tx.recordChange(Change{Entity: domain.EntityOffspringGroup, Action: domain.ActionDelete, Before: cloneGroup(current)})
	return nil
}

// CreateOffspringIndividual stores a new offspring record.
func (tx *transaction) CreateOffspringIndividual(o OffspringIndividual) (OffspringIndividual, error) {
	if o.ID == "" {
		o.ID = tx.store.newID()
	}
	if _, exists := tx.state.offspring[o.ID]; exists {
		return OffspringIndividual{}, fmt.Errorf("offspring %q already exists", o.ID)
	}
	if _, ok := tx.state.groups[o.GroupID]; !ok {
		return OffspringIndividual{}, domain.NewNotFoundError(domain.EntityOffspringGroup, o.GroupID)
	}
	o.CreatedAt = tx.now
	o.UpdatedAt = tx.now
	o.Version = 1
	tx.state.offspring[o.ID] = cloneOffspring(o)
	tx.recordChange(Change{Entity: domain.EntityOffspringIndividual, Action: domain.ActionCreate, After: cloneOffspring(o)})
	return cloneOffspring(o), nil
}

// UpdateOffspringIndividual mutates an offspring record.
func (tx *transaction) UpdateOffspringIndividual(id string, mutator func(*OffspringIndividual) error) (OffspringIndividual, error) {
	current, ok := tx.state.offspring[id]
	if !ok {
		return OffspringIndividual{}, domain.NewNotFoundError(domain.EntityOffspringIndividual, id)
	}
	before := cloneOffspring(current)
	if err := mutator(&current); err != nil {
		return OffspringIndividual{}, err
	}
	current.ID = id
	current.GroupID = before.GroupID
	current.UpdatedAt = tx.now
	current.Version = before.Version + 1
	tx.state.offspring[id] = cloneOffspring(current)
	tx.recordChange(Change{Entity: domain.EntityOffspringIndividual, Action: domain.ActionUpdate, Before: before, After: cloneOffspring(current)})
	return cloneOffspring(current), nil
}

// DeleteOffspringIndividual removes an offspring record.
func (tx *transaction) DeleteOffspringIndividual(id string) error {
	current, ok := tx.state.offspring[id]
	if !ok {
		return domain.NewNotFoundError(domain.EntityOffspringIndividual, id)
	}
	delete(tx.state.offspring, id)
	tx.recordChange(Change{Entity: domain.EntityOffspringIndividual, Action: domain.ActionDelete, Before: cloneOffspring(current)})
	return nil
}

// Finders on the transaction mirror the snapshot view.
func (tx *transaction) FindFemale(id string) (Female, bool) {
	f, ok := tx.state.females[id]
	if !ok {
		return Female{}, false
	}
	return cloneFemale(f), true
}

func (tx *transaction) FindBreedingPlan(id string) (BreedingPlan, bool) {
	p, ok := tx.state.plans[id]
	if !ok {
		return BreedingPlan{}, false
	}
	return clonePlan(p), true
}

func (tx *transaction) FindOffspringGroup(id string) (OffspringGroup, bool) {
	g, ok := tx.state.groups[id]
	if !ok {
		return OffspringGroup{}, false
	}
	return cloneGroup(g), true
}

func (tx *transaction) FindOffspringIndividual(id string) (OffspringIndividual, bool) {
	o, ok := tx.state.offspring[id]
	if !ok {
		return OffspringIndividual{}, false
	}
	return cloneOffspring(o), true
}

func (tx *transaction) ListGroupMembers(groupID string) []OffspringIndividual {
	return groupMembers(&tx.state, groupID)
}

// Read helpers over committed state ------------------------------------------

// GetFemale retrieves a female by ID from committed state.
func (s *Store) GetFemale(id string) (Female, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	f, ok := s.state.females[id]
	if !ok {
		return Female{}, false
	}
	return cloneFemale(f), true
}

// ListFemales returns all females from committed state.
func (s *Store) ListFemales() []Female {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Female, 0, len(s.state.females))
	for _, f := range s.state.females {
		out = append(out, cloneFemale(f))
	}
	sortByID(out, func(f Female) string { return f.ID })
	return out
}

// GetBreedingPlan retrieves a plan by ID.
func (s *Store) GetBreedingPlan(id string) (BreedingPlan, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.state.plans[id]
	if !ok {
		return BreedingPlan{}, false
	}
	return clonePlan(p), true
}

// ListBreedingPlans returns all plans.
func (s *Store) ListBreedingPlans() []BreedingPlan {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]BreedingPlan, 0, len(s.state.plans))
	for _, p := range s.state.plans {
		out = append(out, clonePlan(p))
	}
	sortByID(out, func(p BreedingPlan) string { return p.ID })
	return out
}

// GetOffspringGroup retrieves a group by ID.
func (s *Store) GetOffspringGroup(id string) (OffspringGroup, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	g, ok := s.state.groups[id]
	if !ok {
		return OffspringGroup{}, false
	}
	return cloneGroup(g), true
}

// ListOffspringGroups returns all groups.
func (s *Store) ListOffspringGroups() []OffspringGroup {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]OffspringGroup, 0, len(s.state.groups))
	for _, g := range s.state.groups {
		out = append(out, cloneGroup(g))
	}
	sortByID(out, func(g OffspringGroup) string { return g.ID })
	return out
}

// GetOffspringIndividual retrieves an offspring record by ID.
func (s *Store) GetOffspringIndividual(id string) (OffspringIndividual, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.state.offspring[id]
	if !ok {
		return OffspringIndividual{}, false
	}
	return cloneOffspring(o), true
}

// ListOffspringIndividuals returns all offspring records.
func (s *Store) ListOffspringIndividuals() []OffspringIndividual {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]OffspringIndividual, 0, len(s.state.offspring))
	for _, o := range s.state.offspring {
		out = append(out, cloneOffspring(o))
	}
	sortByID(out, func(o OffspringIndividual) string { return o.ID })
	return out
}
