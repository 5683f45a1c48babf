package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"breedcore/pkg/domain"
	"breedcore/pkg/species"
)

func TestStateSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "breedcore.db")

	store, err := NewStore(path, nil)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	var female domain.Female
	var plan domain.BreedingPlan
	_, err = store.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		var err error
		female, err = tx.CreateFemale(domain.Female{Name: "Dam", Species: species.Cat})
		if err != nil {
			return err
		}
		plan, err = tx.CreateBreedingPlan(domain.BreedingPlan{Name: "Spring litter", FemaleID: female.ID})
		return err
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := store.DB().Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reopened, err := NewStore(path, nil)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer func() { _ = reopened.DB().Close() }()

	got, ok := reopened.GetFemale(female.ID)
	if !ok {
		t.Fatalf("female lost across reopen")
	}
	if got.Name != "Dam" || got.Species != species.Cat {
		t.Fatalf("unexpected female after reopen: %+v", got)
	}
	gotPlan, ok := reopened.GetBreedingPlan(plan.ID)
	if !ok {
		t.Fatalf("plan lost across reopen")
	}
	if gotPlan.Stage != domain.StageDraft || gotPlan.FemaleID != female.ID {
		t.Fatalf("unexpected plan after reopen: %+v", gotPlan)
	}
}

func TestSnapshotWrittenPerTransaction(t *testing.T) {
	path := filepath.Join(t.TempDir(), "breedcore.db")
	store, err := NewStore(path, nil)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer func() { _ = store.DB().Close() }()

	_, err = store.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		_, err := tx.CreateFemale(domain.Female{Name: "Dam"})
		return err
	})
	if err != nil {
		t.Fatalf("write: %v", err)
	}

	var buckets int
	if err := store.DB().QueryRow(`SELECT COUNT(*) FROM state`).Scan(&buckets); err != nil {
		t.Fatalf("count buckets: %v", err)
	}
	if buckets != 4 {
		t.Fatalf("expected all four buckets persisted, got %d", buckets)
	}
}

func TestStageDatesRoundTripThroughJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "breedcore.db")
	store, err := NewStore(path, nil)
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	attempted := time.Date(2026, 3, 7, 0, 0, 0, 0, time.UTC)
	var plan domain.BreedingPlan
	_, err = store.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		female, err := tx.CreateFemale(domain.Female{Name: "Dam", Species: species.Cat})
		if err != nil {
			return err
		}
		plan, err = tx.CreateBreedingPlan(domain.BreedingPlan{Name: "P", FemaleID: female.ID, Stage: domain.StageAttempted})
		if err != nil {
			return err
		}
		plan, err = tx.UpdateBreedingPlan(plan.ID, 0, func(p *domain.BreedingPlan) error {
			p.SetStageDate(domain.StageAttempted, domain.StageDates{Actual: &attempted, Locked: &attempted})
			return nil
		})
		return err
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := store.DB().Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reopened, err := NewStore(path, nil)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer func() { _ = reopened.DB().Close() }()

	got, ok := reopened.GetBreedingPlan(plan.ID)
	if !ok {
		t.Fatalf("plan lost across reopen")
	}
	d := got.StageDate(domain.StageAttempted)
	if d.Actual == nil || !d.Actual.Equal(attempted) {
		t.Fatalf("actual date lost: %+v", d)
	}
	if d.Locked == nil || !d.Locked.Equal(attempted) {
		t.Fatalf("locked date lost: %+v", d)
	}
}
