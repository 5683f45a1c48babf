package core

import (
	"context"
	"time"

	"breedcore/internal/blob"
	"breedcore/internal/infra/persistence/memory"
	"breedcore/pkg/cycle"
	"breedcore/pkg/domain"
)

// Service exposes the transactional breeding date engine operations on top
// of a persistent store.
type Service struct {
	store domain.PersistentStore
	blobs blob.Store
	opts  serviceOptions
}

// NewService constructs a service backed by the supplied store.
func NewService(store domain.PersistentStore, options ...ServiceOption) *Service {
	opts := defaultServiceOptions()
	for _, apply := range options {
		apply(&opts)
	}
	return &Service{store: store, opts: opts}
}

// NewInMemoryService creates a service and in-memory store with the default
// rules engine.
func NewInMemoryService(options ...ServiceOption) *Service {
	return NewService(memory.NewStore(NewDefaultRulesEngine()), options...)
}

// Store returns the underlying storage implementation.
func (s *Service) Store() domain.PersistentStore {
	return s.store
}

// UseBlobStore attaches a document store used by AttachOffspringDocument.
func (s *Service) UseBlobStore(store blob.Store) {
	s.blobs = store
}

// finish records the outcome of one service operation: metrics, audit, and a
// log line, plus one warning line per non-blocking rule violation.
func (s *Service) finish(ctx context.Context, op, actor string, entity EntityType, entityID string, start time.Time, res Result, err error) {
	duration := s.opts.clock.Now().Sub(start)
	s.opts.metrics.Observe(ctx, op, err == nil, duration)
	entry := AuditEntry{
		Operation:  op,
		Actor:      actor,
		EntityType: entity,
		EntityID:   entityID,
		Status:     AuditOK,
		Duration:   duration,
		At:         s.opts.clock.Now(),
	}
	if err != nil {
		entry.Status = AuditFailed
		entry.Error = err.Error()
	}
	s.opts.audit.Record(ctx, entry)
	if err != nil {
		s.opts.logger.Error("operation failed", "op", op, "entity", string(entity), "id", entityID, "error", err)
		return
	}
	s.opts.logger.Info("operation completed", "op", op, "entity", string(entity), "id", entityID, "duration_ms", duration.Milliseconds())
	for _, w := range res.Warnings() {
		s.opts.logger.Warn("rule warning", "op", op, "rule", w.Rule, "entity", string(w.Entity), "id", w.EntityID, "message", w.Message)
	}
}

// CreateFemale persists a new breeding female. Heat dates are normalised to
// UTC date granularity on the way in.
func (s *Service) CreateFemale(ctx context.Context, female Female) (Female, Result, error) {
	start := s.opts.clock.Now()
	var created Female
	var res Result
	var err error
	if female.Name == "" {
		err = domain.NewValidationError("name", "is required")
	} else {
		for i, d := range female.HeatDates {
			female.HeatDates[i] = cycle.DateOnly(d)
		}
		res, err = s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
			var txErr error
			created, txErr = tx.CreateFemale(female)
			return txErr
		})
	}
	s.finish(ctx, "create_female", "", EntityFemale, created.ID, start, res, err)
	return created, res, err
}

// RecordHeatEvent appends an observed heat date to the female's history.
// Recording the same calendar date twice is a no-op.
func (s *Service) RecordHeatEvent(ctx context.Context, femaleID string, date time.Time) (Female, Result, error) {
	start := s.opts.clock.Now()
	day := cycle.DateOnly(date)
	var updated Female
	res, err := s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		var txErr error
		updated, txErr = tx.UpdateFemale(femaleID, func(f *Female) error {
			for _, existing := range f.HeatDates {
				if existing.Equal(day) {
					return nil
				}
			}
			f.HeatDates = append(f.HeatDates, day)
			return nil
		})
		return txErr
	})
	s.finish(ctx, "record_heat_event", "", EntityFemale, femaleID, start, res, err)
	return updated, res, err
}

// CycleSummary recomputes the cycle statistics for a female from her current
// heat history. An active override supersedes the statistical basis for the
// next-heat projection; the averages themselves always reflect the history.
func (s *Service) CycleSummary(ctx context.Context, femaleID string, opts cycle.Options) (cycle.Summary, error) {
	var summary cycle.Summary
	err := s.store.View(ctx, func(view domain.TransactionView) error {
		female, ok := view.FindFemale(femaleID)
		if !ok {
			return domain.NewNotFoundError(EntityFemale, femaleID)
		}
		summary = s.summaryFor(female, opts)
		return nil
	})
	return summary, err
}

func (s *Service) summaryFor(female Female, opts cycle.Options) cycle.Summary {
	if opts.SpeciesDefaultDays == 0 {
		opts.SpeciesDefaultDays = female.Species.Profile().CycleDays
	}
	summary := cycle.ComputeFromDates(female.HeatDates, opts)
	if female.Override != nil && summary.Last != nil {
		next := summary.Last.AddDate(0, 0, female.Override.Days)
		summary.Next = &next
	}
	return summary
}

// EvaluateOverrideCandidate checks a candidate override value against the
// validation contract and the female's statistical average without saving
// anything.
func (s *Service) EvaluateOverrideCandidate(ctx context.Context, femaleID string, candidate float64) (cycle.OverrideEvaluation, error) {
	var eval cycle.OverrideEvaluation
	err := s.store.View(ctx, func(view domain.TransactionView) error {
		female, ok := view.FindFemale(femaleID)
		if !ok {
			return domain.NewNotFoundError(EntityFemale, femaleID)
		}
		summary := cycle.ComputeFromDates(female.HeatDates, cycle.Options{})
		eval = cycle.EvaluateOverride(summary.AvgAll, candidate)
		return nil
	})
	return eval, err
}

// ApplyCycleOverride validates and stores a cycle-length override.
func (s *Service) ApplyCycleOverride(ctx context.Context, femaleID string, candidate float64) (Female, Result, error) {
	start := s.opts.clock.Now()
	var updated Female
	var res Result
	days, err := cycle.ValidateOverrideDays(candidate)
	if err == nil {
		res, err = s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
			var txErr error
			updated, txErr = tx.UpdateFemale(femaleID, func(f *Female) error {
				f.Override = &CycleOverride{Days: days, SetAt: s.opts.clock.Now()}
				return nil
			})
			return txErr
		})
	}
	s.finish(ctx, "apply_cycle_override", "", EntityFemale, femaleID, start, res, err)
	return updated, res, err
}

// ClearCycleOverride removes the override; the statistical basis takes over
// again. Heat history is untouched.
func (s *Service) ClearCycleOverride(ctx context.Context, femaleID string) (Female, Result, error) {
	start := s.opts.clock.Now()
	var updated Female
	res, err := s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		var txErr error
		updated, txErr = tx.UpdateFemale(femaleID, func(f *Female) error {
			f.Override = nil
			return nil
		})
		return txErr
	})
	s.finish(ctx, "clear_cycle_override", "", EntityFemale, femaleID, start, res, err)
	return updated, res, err
}

// SetCycleOverrideField applies the update-payload semantics of the override
// field: a value sets the override, null clears it.
func (s *Service) SetCycleOverrideField(ctx context.Context, femaleID string, value *float64) (Female, Result, error) {
	if value == nil {
		return s.ClearCycleOverride(ctx, femaleID)
	}
	return s.ApplyCycleOverride(ctx, femaleID, *value)
}

// GetFemale fetches a female by ID.
func (s *Service) GetFemale(ctx context.Context, id string) (Female, error) {
	var female Female
	err := s.store.View(ctx, func(view domain.TransactionView) error {
		f, ok := view.FindFemale(id)
		if !ok {
			return domain.NewNotFoundError(EntityFemale, id)
		}
		female = f
		return nil
	})
	return female, err
}

// ListFemales returns all females ordered by ID.
func (s *Service) ListFemales(context.Context) []Female {
	return s.store.ListFemales()
}

// GetBreedingPlan fetches a plan by ID.
func (s *Service) GetBreedingPlan(ctx context.Context, id string) (BreedingPlan, error) {
	var plan BreedingPlan
	err := s.store.View(ctx, func(view domain.TransactionView) error {
		p, ok := view.FindBreedingPlan(id)
		if !ok {
			return domain.NewNotFoundError(EntityBreedingPlan, id)
		}
		plan = p
		return nil
	})
	return plan, err
}

// ListBreedingPlans returns all plans ordered by ID.
func (s *Service) ListBreedingPlans(context.Context) []BreedingPlan {
	return s.store.ListBreedingPlans()
}

// GetOffspringGroup fetches a group by ID.
func (s *Service) GetOffspringGroup(ctx context.Context, id string) (OffspringGroup, error) {
	var group OffspringGroup
	err := s.store.View(ctx, func(view domain.TransactionView) error {
		g, ok := view.FindOffspringGroup(id)
		if !ok {
			return domain.NewNotFoundError(EntityOffspringGroup, id)
		}
		group = g
		return nil
	})
	return group, err
}

// ListOffspringGroups returns all groups ordered by ID.
func (s *Service) ListOffspringGroups(context.Context) []OffspringGroup {
	return s.store.ListOffspringGroups()
}
