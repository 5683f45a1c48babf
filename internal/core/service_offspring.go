package core

import (
	"context"
	"fmt"
	"io"
	"strings"

	"breedcore/internal/blob"
	"breedcore/pkg/domain"
)

// AddOffspring registers a new offspring record in a group.
func (s *Service) AddOffspring(ctx context.Context, groupID, name string) (OffspringIndividual, Result, error) {
	start := s.opts.clock.Now()
	var created OffspringIndividual
	res, err := s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		var txErr error
		created, txErr = tx.CreateOffspringIndividual(OffspringIndividual{GroupID: groupID, Name: name})
		return txErr
	})
	s.finish(ctx, "add_offspring", "", EntityOffspringIndividual, created.ID, start, res, err)
	return created, res, err
}

// UpdateOffspringFlags mutates the business-activity flags consulted by the
// deletion guard.
func (s *Service) UpdateOffspringFlags(ctx context.Context, id string, mutator func(*ActivityFlags)) (OffspringIndividual, Result, error) {
	start := s.opts.clock.Now()
	var updated OffspringIndividual
	res, err := s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		var txErr error
		updated, txErr = tx.UpdateOffspringIndividual(id, func(o *OffspringIndividual) error {
			mutator(&o.Flags)
			return nil
		})
		return txErr
	})
	s.finish(ctx, "update_offspring_flags", "", EntityOffspringIndividual, id, start, res, err)
	return updated, res, err
}

// EvaluateOffspringDeletion runs the deletion guard for one offspring record
// without deleting anything.
func (s *Service) EvaluateOffspringDeletion(ctx context.Context, id string) (DeletionDecision, error) {
	var decision DeletionDecision
	err := s.store.View(ctx, func(view domain.TransactionView) error {
		ind, ok := view.FindOffspringIndividual(id)
		if !ok {
			return domain.NewNotFoundError(EntityOffspringIndividual, id)
		}
		decision = EvaluateIndividualDeletion(ind)
		return nil
	})
	return decision, err
}

// EvaluateGroupDeletion runs the deletion guard for a group, aggregating
// member blockers and the linked-plan check.
func (s *Service) EvaluateGroupDeletion(ctx context.Context, id string) (DeletionDecision, error) {
	var decision DeletionDecision
	err := s.store.View(ctx, func(view domain.TransactionView) error {
		group, ok := view.FindOffspringGroup(id)
		if !ok {
			return domain.NewNotFoundError(EntityOffspringGroup, id)
		}
		decision = EvaluateGroupDeletion(group, view.ListGroupMembers(id), linkedPlan(view, group))
		return nil
	})
	return decision, err
}

func linkedPlan(view domain.TransactionView, group OffspringGroup) *BreedingPlan {
	if group.PlanID == nil {
		return nil
	}
	plan, ok := view.FindBreedingPlan(*group.PlanID)
	if !ok {
		return nil
	}
	return &plan
}

// DeleteOffspring hard-deletes an offspring record when the guard permits.
// A blocked decision is returned with the full blocker list; archiving
// remains available for blocked records.
func (s *Service) DeleteOffspring(ctx context.Context, id string) (DeletionDecision, Result, error) {
	start := s.opts.clock.Now()
	var decision DeletionDecision
	res, err := s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		ind, ok := tx.FindOffspringIndividual(id)
		if !ok {
			return domain.NewNotFoundError(EntityOffspringIndividual, id)
		}
		decision = EvaluateIndividualDeletion(ind)
		if decision.Outcome == OutcomeBlocked {
			return domain.NewValidationError("", "deletion blocked by: "+strings.Join(decision.Blockers, ", "))
		}
		return tx.DeleteOffspringIndividual(id)
	})
	s.finish(ctx, "delete_offspring", "", EntityOffspringIndividual, id, start, res, err)
	return decision, res, err
}

// DeleteGroup hard-deletes an offspring group when the guard permits.
func (s *Service) DeleteGroup(ctx context.Context, id string) (DeletionDecision, Result, error) {
	start := s.opts.clock.Now()
	var decision DeletionDecision
	res, err := s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		group, ok := tx.FindOffspringGroup(id)
		if !ok {
			return domain.NewNotFoundError(EntityOffspringGroup, id)
		}
		decision = EvaluateGroupDeletion(group, tx.ListGroupMembers(id), linkedPlan(tx.Snapshot(), group))
		if decision.Outcome == OutcomeBlocked {
			return domain.NewValidationError("", "deletion blocked by: "+strings.Join(decision.Blockers, ", "))
		}
		return tx.DeleteOffspringGroup(id)
	})
	s.finish(ctx, "delete_group", "", EntityOffspringGroup, id, start, res, err)
	return decision, res, err
}

// ArchiveOffspring soft-hides a record that the guard refuses to delete.
func (s *Service) ArchiveOffspring(ctx context.Context, id, reason string) (OffspringIndividual, Result, error) {
	start := s.opts.clock.Now()
	var updated OffspringIndividual
	res, err := s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		var txErr error
		updated, txErr = tx.UpdateOffspringIndividual(id, func(o *OffspringIndividual) error {
			o.Archived = true
			o.ArchiveReason = reason
			return nil
		})
		return txErr
	})
	s.finish(ctx, "archive_offspring", "", EntityOffspringIndividual, id, start, res, err)
	return updated, res, err
}

// RestoreOffspring reverses an archive.
func (s *Service) RestoreOffspring(ctx context.Context, id string) (OffspringIndividual, Result, error) {
	start := s.opts.clock.Now()
	var updated OffspringIndividual
	res, err := s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		var txErr error
		updated, txErr = tx.UpdateOffspringIndividual(id, func(o *OffspringIndividual) error {
			o.Archived = false
			o.ArchiveReason = ""
			return nil
		})
		return txErr
	})
	s.finish(ctx, "restore_offspring", "", EntityOffspringIndividual, id, start, res, err)
	return updated, res, err
}

// UnlinkGroup detaches an offspring group from its plan. Refused while the
// group has members: unlinking would orphan their birth provenance.
func (s *Service) UnlinkGroup(ctx context.Context, planID string, actor string) (BreedingPlan, Result, error) {
	start := s.opts.clock.Now()
	var updated BreedingPlan
	res, err := s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		var groupID string
		var txErr error
		updated, txErr = tx.UpdateBreedingPlan(planID, 0, func(plan *BreedingPlan) error {
			if plan.OffspringGroupID == nil {
				return domain.NewValidationError("offspringGroupId", "plan has no linked offspring group")
			}
			if members := tx.ListGroupMembers(*plan.OffspringGroupID); len(members) > 0 {
				return &domain.DomainError{
					Code:    domain.CodeUnlinkBlocked,
					Message: fmt.Sprintf("offspring group has %d members and cannot be unlinked", len(members)),
				}
			}
			groupID = *plan.OffspringGroupID
			plan.OffspringGroupID = nil
			if actor != "" {
				plan.RecordedBy = actor
			}
			return nil
		})
		if txErr != nil {
			return txErr
		}
		_, txErr = tx.UpdateOffspringGroup(groupID, func(g *OffspringGroup) error {
			g.PlanID = nil
			return nil
		})
		return txErr
	})
	s.finish(ctx, "unlink_group", actor, EntityBreedingPlan, planID, start, res, err)
	return updated, res, err
}

// AttachOffspringDocument stores a document in the blob store and links it
// to the offspring record, which flips the hasDocuments deletion blocker.
func (s *Service) AttachOffspringDocument(ctx context.Context, id, filename, contentType string, r io.Reader) (OffspringIndividual, blob.Info, error) {
	start := s.opts.clock.Now()
	var updated OffspringIndividual
	var info blob.Info
	var res Result
	var err error

	switch {
	case s.blobs == nil:
		err = domain.NewInternalError(fmt.Errorf("no document store configured"))
	case filename == "" || strings.Contains(filename, "/"):
		err = domain.NewValidationError("filename", "must be a bare file name")
	default:
		if _, getErr := s.GetOffspringIndividual(ctx, id); getErr != nil {
			err = getErr
			break
		}
		key := fmt.Sprintf("offspring/%s/%s", id, filename)
		info, err = s.blobs.Put(ctx, key, r, blob.PutOptions{ContentType: contentType})
		if err != nil {
			break
		}
		res, err = s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
			var txErr error
			updated, txErr = tx.UpdateOffspringIndividual(id, func(o *OffspringIndividual) error {
				o.DocumentKeys = append(o.DocumentKeys, key)
				o.Flags.HasDocuments = true
				return nil
			})
			return txErr
		})
		if err != nil {
			// Roll the orphaned blob back so a retry can reuse the key.
			_, _ = s.blobs.Delete(ctx, key)
		}
	}
	s.finish(ctx, "attach_offspring_document", "", EntityOffspringIndividual, id, start, res, err)
	return updated, info, err
}

// GetOffspringIndividual fetches an offspring record by ID.
func (s *Service) GetOffspringIndividual(ctx context.Context, id string) (OffspringIndividual, error) {
	var ind OffspringIndividual
	err := s.store.View(ctx, func(view domain.TransactionView) error {
		o, ok := view.FindOffspringIndividual(id)
		if !ok {
			return domain.NewNotFoundError(EntityOffspringIndividual, id)
		}
		ind = o
		return nil
	})
	return ind, err
}

// ListGroupMembers returns the offspring records of a group ordered by ID.
func (s *Service) ListGroupMembers(ctx context.Context, groupID string) ([]OffspringIndividual, error) {
	var members []OffspringIndividual
	err := s.store.View(ctx, func(view domain.TransactionView) error {
		if _, ok := view.FindOffspringGroup(groupID); !ok {
			return domain.NewNotFoundError(EntityOffspringGroup, groupID)
		}
		members = view.ListGroupMembers(groupID)
		return nil
	})
	return members, err
}
