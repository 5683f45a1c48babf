package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"breedcore/pkg/domain"
	"breedcore/pkg/species"
)

func newTestStore() *Store {
	store := NewStore(nil)
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store.SetNowFunc(func() time.Time { return at })
	return store
}

func mustCreateFemale(t *testing.T, store *Store) Female {
	t.Helper()
	var created Female
	_, err := store.RunInTransaction(context.Background(), func(tx Transaction) error {
		var err error
		created, err = tx.CreateFemale(Female{Name: "Dam", Species: species.Dog})
		return err
	})
	if err != nil {
		t.Fatalf("create female: %v", err)
	}
	return created
}

func TestCreateAssignsIDAndVersion(t *testing.T) {
	store := newTestStore()
	female := mustCreateFemale(t, store)
	if female.ID == "" {
		t.Fatalf("expected generated id")
	}
	if female.Version != 1 {
		t.Fatalf("new records start at version 1, got %d", female.Version)
	}
	if female.CreatedAt.IsZero() || female.UpdatedAt.IsZero() {
		t.Fatalf("timestamps not set: %+v", female)
	}
}

func TestUpdateBumpsVersion(t *testing.T) {
	store := newTestStore()
	female := mustCreateFemale(t, store)

	_, err := store.RunInTransaction(context.Background(), func(tx Transaction) error {
		_, err := tx.UpdateFemale(female.ID, func(f *Female) error {
			f.Name = "Renamed"
			return nil
		})
		return err
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	got, ok := store.GetFemale(female.ID)
	if !ok {
		t.Fatalf("female vanished")
	}
	if got.Version != 2 || got.Name != "Renamed" {
		t.Fatalf("unexpected state after update: %+v", got)
	}
}

func TestUpdatePlanStaleVersion(t *testing.T) {
	store := newTestStore()
	female := mustCreateFemale(t, store)

	var plan BreedingPlan
	_, err := store.RunInTransaction(context.Background(), func(tx Transaction) error {
		var err error
		plan, err = tx.CreateBreedingPlan(BreedingPlan{Name: "P", FemaleID: female.ID})
		return err
	})
	if err != nil {
		t.Fatalf("create plan: %v", err)
	}

	_, err = store.RunInTransaction(context.Background(), func(tx Transaction) error {
		_, err := tx.UpdateBreedingPlan(plan.ID, plan.Version+3, func(*BreedingPlan) error { return nil })
		return err
	})
	if !domain.IsCode(err, domain.CodeStaleWrite) {
		t.Fatalf("expected stale_write, got %v", err)
	}

	// Zero skips the optimistic check.
	_, err = store.RunInTransaction(context.Background(), func(tx Transaction) error {
		_, err := tx.UpdateBreedingPlan(plan.ID, 0, func(*BreedingPlan) error { return nil })
		return err
	})
	if err != nil {
		t.Fatalf("unchecked update: %v", err)
	}
}

func TestTransactionErrorRollsBack(t *testing.T) {
	store := newTestStore()
	boom := errors.New("boom")

	_, err := store.RunInTransaction(context.Background(), func(tx Transaction) error {
		if _, err := tx.CreateFemale(Female{Name: "Dam"}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected the callback error, got %v", err)
	}
	if got := store.ListFemales(); len(got) != 0 {
		t.Fatalf("failed transaction must not leak state, got %d females", len(got))
	}
}

func TestReferentialGuards(t *testing.T) {
	store := newTestStore()
	female := mustCreateFemale(t, store)
	birth := time.Date(2026, 5, 11, 0, 0, 0, 0, time.UTC)

	var plan BreedingPlan
	var group OffspringGroup
	_, err := store.RunInTransaction(context.Background(), func(tx Transaction) error {
		var err error
		plan, err = tx.CreateBreedingPlan(BreedingPlan{Name: "P", FemaleID: female.ID})
		if err != nil {
			return err
		}
		group, err = tx.CreateOffspringGroup(OffspringGroup{Name: "G", FemaleID: female.ID, PlanID: &plan.ID, BirthDate: &birth})
		if err != nil {
			return err
		}
		plan, err = tx.UpdateBreedingPlan(plan.ID, 0, func(p *BreedingPlan) error {
			p.OffspringGroupID = &group.ID
			return nil
		})
		if err != nil {
			return err
		}
		_, err = tx.CreateOffspringIndividual(OffspringIndividual{Name: "kit-1", GroupID: group.ID})
		return err
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	// Each guard fires with the dependent record still present.
	cases := []struct {
		name string
		do   func(tx Transaction) error
	}{
		{"female with plans", func(tx Transaction) error { return tx.DeleteFemale(female.ID) }},
		{"plan with linked group", func(tx Transaction) error { return tx.DeleteBreedingPlan(plan.ID) }},
		{"group with members", func(tx Transaction) error { return tx.DeleteOffspringGroup(group.ID) }},
	}
	for _, tc := range cases {
		if _, err := store.RunInTransaction(context.Background(), func(tx Transaction) error { return tc.do(tx) }); err == nil {
			t.Fatalf("%s: expected deletion to be rejected", tc.name)
		}
	}
}

func TestCreateGroupRequiresBirthDate(t *testing.T) {
	store := newTestStore()
	female := mustCreateFemale(t, store)

	_, err := store.RunInTransaction(context.Background(), func(tx Transaction) error {
		_, err := tx.CreateOffspringGroup(OffspringGroup{Name: "G", FemaleID: female.ID})
		return err
	})
	if err == nil {
		t.Fatalf("groups without a birth date must be rejected")
	}
}

func TestDeleteGroupUnlinksPlans(t *testing.T) {
	store := newTestStore()
	female := mustCreateFemale(t, store)
	birth := time.Date(2026, 5, 11, 0, 0, 0, 0, time.UTC)

	var plan BreedingPlan
	var group OffspringGroup
	_, err := store.RunInTransaction(context.Background(), func(tx Transaction) error {
		var err error
		plan, err = tx.CreateBreedingPlan(BreedingPlan{Name: "P", FemaleID: female.ID})
		if err != nil {
			return err
		}
		group, err = tx.CreateOffspringGroup(OffspringGroup{Name: "G", FemaleID: female.ID, BirthDate: &birth})
		if err != nil {
			return err
		}
		_, err = tx.UpdateBreedingPlan(plan.ID, 0, func(p *BreedingPlan) error {
			p.OffspringGroupID = &group.ID
			return nil
		})
		return err
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	_, err = store.RunInTransaction(context.Background(), func(tx Transaction) error {
		return tx.DeleteOffspringGroup(group.ID)
	})
	if err != nil {
		t.Fatalf("delete group: %v", err)
	}
	got, _ := store.GetBreedingPlan(plan.ID)
	if got.OffspringGroupID != nil {
		t.Fatalf("deleting a group must clear plan links, got %+v", got.OffspringGroupID)
	}
}

func TestBlockingRuleRollsBackCommit(t *testing.T) {
	engine := domain.NewRulesEngine()
	engine.Register(blockEverything{})
	store := NewStore(engine)

	_, err := store.RunInTransaction(context.Background(), func(tx Transaction) error {
		_, err := tx.CreateFemale(Female{Name: "Dam"})
		return err
	})
	var rve domain.RuleViolationError
	if !errors.As(err, &rve) {
		t.Fatalf("expected rule violation, got %v", err)
	}
	if got := store.ListFemales(); len(got) != 0 {
		t.Fatalf("blocked transaction must not commit")
	}
}

type blockEverything struct{}

func (blockEverything) Name() string { return "block_everything" }

func (blockEverything) Evaluate(_ context.Context, _ domain.RuleView, changes []Change) (Result, error) {
	res := Result{}
	for _, change := range changes {
		res.Violations = append(res.Violations, domain.Violation{
			Rule:     "block_everything",
			Severity: domain.SeverityBlock,
			Message:  "no writes allowed",
			Entity:   change.Entity,
		})
	}
	return res, nil
}

func TestExportImportRoundTrip(t *testing.T) {
	store := newTestStore()
	female := mustCreateFemale(t, store)

	restored := NewStore(nil)
	restored.ImportState(store.ExportState())

	got, ok := restored.GetFemale(female.ID)
	if !ok {
		t.Fatalf("imported state missing female")
	}
	if got.Name != female.Name || got.Version != female.Version {
		t.Fatalf("round trip mismatch: %+v vs %+v", got, female)
	}
}

func TestMigrateSnapshotRepairsDanglingRefs(t *testing.T) {
	birth := time.Date(2026, 5, 11, 0, 0, 0, 0, time.UTC)
	ghostGroup := "ghost-group"
	snapshot := Snapshot{
		Females: map[string]Female{
			"f1": {Base: domain.Base{ID: "f1", Version: 1}, Name: "Dam"},
		},
		Plans: map[string]BreedingPlan{
			"p1": {Base: domain.Base{ID: "p1", Version: 1}, FemaleID: "f1", OffspringGroupID: &ghostGroup},
			"p2": {Base: domain.Base{ID: "p2", Version: 1}, FemaleID: "missing"},
		},
		Groups: map[string]OffspringGroup{
			"g1": {Base: domain.Base{ID: "g1", Version: 1}, FemaleID: "f1", BirthDate: &birth},
			"g2": {Base: domain.Base{ID: "g2", Version: 1}, FemaleID: "f1"},
		},
		Offspring: map[string]OffspringIndividual{
			"o1": {Base: domain.Base{ID: "o1", Version: 1}, GroupID: "g1"},
			"o2": {Base: domain.Base{ID: "o2", Version: 1}, GroupID: "g2"},
		},
	}

	store := NewStore(nil)
	store.ImportState(snapshot)

	if _, ok := store.GetBreedingPlan("p2"); ok {
		t.Fatalf("plan with a missing female must be dropped")
	}
	p1, ok := store.GetBreedingPlan("p1")
	if !ok {
		t.Fatalf("valid plan must survive")
	}
	if p1.OffspringGroupID != nil {
		t.Fatalf("dangling group link must be cleared")
	}
	if p1.Stage != domain.StageDraft {
		t.Fatalf("missing stage must default to draft, got %s", p1.Stage)
	}
	if _, ok := store.GetOffspringGroup("g2"); ok {
		t.Fatalf("group without a birth date must be dropped")
	}
	if _, ok := store.GetOffspringIndividual("o2"); ok {
		t.Fatalf("members of a dropped group must be dropped")
	}
	if _, ok := store.GetOffspringIndividual("o1"); !ok {
		t.Fatalf("valid offspring must survive")
	}
}
