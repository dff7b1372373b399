package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"translation-market/internal/events"
	"translation-market/internal/models"
	"translation-market/internal/repository"

	"github.com/google/uuid"
)

// MilestoneService owns the payable-work lifecycle under a signed
// contract, including the strict ordinal sequence and the payment
// cascades up through contract and request completion.
type MilestoneService struct {
	engine
}

func NewMilestoneService(repo *repository.Repository, perms *PermissionEvaluator, gateway *events.Gateway) *MilestoneService {
	return &MilestoneService{engine{repo: repo, perms: perms, gateway: gateway}}
}

// Create defines a milestone on a signed contract at the next ordinal
func (s *MilestoneService) Create(ctx context.Context, actor *models.User, contractID uuid.UUID, req *models.CreateMilestoneRequest) (*models.Milestone, error) {
	var milestone *models.Milestone
	var pending []*models.DomainEvent

	err := s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		contract, err := tx.GetContractByID(ctx, contractID)
		if err != nil {
			return storeErr(err)
		}
		if !s.perms.Can(actor, ActionMilestoneCreate, contract) {
			return permissionDenied()
		}
		if contract.Status != models.ContractStatusSigned {
			return invalidTransition(fmt.Sprintf("milestones require a signed contract, status is %s", contract.Status))
		}
		if req.AmountCents <= 0 {
			return invalidTransition("milestone amount must be a positive amount of cents")
		}

		ordinal, err := tx.NextMilestoneOrdinal(ctx, contractID)
		if err != nil {
			return storeErr(err)
		}

		milestone = &models.Milestone{
			ID:          uuid.New(),
			ContractID:  contractID,
			Title:       req.Title,
			AmountCents: req.AmountCents,
			Ordinal:     ordinal,
			Status:      models.MilestoneStatusPending,
			Version:     1,
		}
		if err := tx.CreateMilestone(ctx, milestone); err != nil {
			return storeErr(err)
		}
		return s.record(ctx, tx, &pending, models.EntityTypeMilestone, milestone.ID,
			"", string(models.MilestoneStatusPending), actor.ID, contract.RequestID)
	})
	if err != nil {
		return nil, err
	}

	s.publish(pending)
	log.Printf("Milestone %s (ordinal %d) created on contract %s", milestone.ID, milestone.Ordinal, contractID)
	return milestone, nil
}

// Assign binds the contract's translator to a pending milestone
func (s *MilestoneService) Assign(ctx context.Context, actor *models.User, milestoneID uuid.UUID, translatorID uint) (*models.Milestone, error) {
	var milestone *models.Milestone
	var pending []*models.DomainEvent

	err := s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		var err error
		milestone, err = tx.GetMilestoneByID(ctx, milestoneID)
		if err != nil {
			return storeErr(err)
		}
		contract, err := tx.GetContractByID(ctx, milestone.ContractID)
		if err != nil {
			return storeErr(err)
		}
		if !s.perms.Can(actor, ActionMilestoneAssign, contract) {
			return permissionDenied()
		}

		next, ok := nextMilestoneStatus(milestone.Status, ActionMilestoneAssign)
		if !ok {
			return invalidTransition(fmt.Sprintf("milestone cannot be assigned from status %s", milestone.Status))
		}
		if milestone.TranslatorID != nil {
			return invalidTransition("milestone is already assigned")
		}
		if translatorID != contract.TranslatorID {
			return invalidTransition("milestones can only be assigned to the contract's translator")
		}

		from := milestone.Status
		milestone.TranslatorID = &translatorID
		milestone.Status = next
		if err := tx.UpdateMilestone(ctx, milestone); err != nil {
			return storeErr(err)
		}
		return s.record(ctx, tx, &pending, models.EntityTypeMilestone, milestone.ID,
			string(from), string(next), actor.ID, contract.RequestID)
	})
	if err != nil {
		return nil, err
	}

	s.publish(pending)
	return milestone, nil
}

// Start begins work on an assigned milestone. The ordinal predecessor, if
// any, must already be paid.
func (s *MilestoneService) Start(ctx context.Context, actor *models.User, milestoneID uuid.UUID) (*models.Milestone, error) {
	var milestone *models.Milestone
	var pending []*models.DomainEvent

	err := s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		var err error
		milestone, err = tx.GetMilestoneByID(ctx, milestoneID)
		if err != nil {
			return storeErr(err)
		}
		if !s.perms.Can(actor, ActionMilestoneStart, milestone) {
			return permissionDenied()
		}

		next, ok := nextMilestoneStatus(milestone.Status, ActionMilestoneStart)
		if !ok {
			return invalidTransition(fmt.Sprintf("milestone cannot be started from status %s", milestone.Status))
		}

		if milestone.Ordinal > 1 {
			predecessor, err := tx.GetMilestoneByOrdinal(ctx, milestone.ContractID, milestone.Ordinal-1)
			if err != nil && !errors.Is(err, repository.ErrNotFound) {
				return storeErr(err)
			}
			if predecessor != nil && predecessor.Status != models.MilestoneStatusPaid {
				return invalidTransition("previous milestone must be paid first")
			}
		}

		contract, err := tx.GetContractByID(ctx, milestone.ContractID)
		if err != nil {
			return storeErr(err)
		}

		from := milestone.Status
		now := time.Now()
		milestone.Status = next
		milestone.StartedAt = &now
		if err := tx.UpdateMilestone(ctx, milestone); err != nil {
			return storeErr(err)
		}
		return s.record(ctx, tx, &pending, models.EntityTypeMilestone, milestone.ID,
			string(from), string(next), actor.ID, contract.RequestID)
	})
	if err != nil {
		return nil, err
	}

	s.publish(pending)
	return milestone, nil
}

// Submit marks in-progress work as submitted for review
func (s *MilestoneService) Submit(ctx context.Context, actor *models.User, milestoneID uuid.UUID) (*models.Milestone, error) {
	var milestone *models.Milestone
	var pending []*models.DomainEvent

	err := s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		var err error
		milestone, err = tx.GetMilestoneByID(ctx, milestoneID)
		if err != nil {
			return storeErr(err)
		}
		if !s.perms.Can(actor, ActionMilestoneSubmit, milestone) {
			return permissionDenied()
		}

		next, ok := nextMilestoneStatus(milestone.Status, ActionMilestoneSubmit)
		if !ok {
			return invalidTransition(fmt.Sprintf("milestone cannot be submitted from status %s", milestone.Status))
		}

		contract, err := tx.GetContractByID(ctx, milestone.ContractID)
		if err != nil {
			return storeErr(err)
		}

		from := milestone.Status
		now := time.Now()
		milestone.Status = next
		milestone.SubmittedAt = &now
		if err := tx.UpdateMilestone(ctx, milestone); err != nil {
			return storeErr(err)
		}
		return s.record(ctx, tx, &pending, models.EntityTypeMilestone, milestone.ID,
			string(from), string(next), actor.ID, contract.RequestID)
	})
	if err != nil {
		return nil, err
	}

	s.publish(pending)
	return milestone, nil
}

// Approve accepts submitted work
func (s *MilestoneService) Approve(ctx context.Context, actor *models.User, milestoneID uuid.UUID) (*models.Milestone, error) {
	var milestone *models.Milestone
	var pending []*models.DomainEvent

	err := s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		var err error
		milestone, err = tx.GetMilestoneByID(ctx, milestoneID)
		if err != nil {
			return storeErr(err)
		}
		contract, err := tx.GetContractByID(ctx, milestone.ContractID)
		if err != nil {
			return storeErr(err)
		}
		if !s.perms.Can(actor, ActionMilestoneApprove, contract) {
			return permissionDenied()
		}

		next, ok := nextMilestoneStatus(milestone.Status, ActionMilestoneApprove)
		if !ok {
			return invalidTransition(fmt.Sprintf("milestone cannot be approved from status %s", milestone.Status))
		}

		from := milestone.Status
		now := time.Now()
		milestone.Status = next
		milestone.ApprovedAt = &now
		if err := tx.UpdateMilestone(ctx, milestone); err != nil {
			return storeErr(err)
		}
		return s.record(ctx, tx, &pending, models.EntityTypeMilestone, milestone.ID,
			string(from), string(next), actor.ID, contract.RequestID)
	})
	if err != nil {
		return nil, err
	}

	s.publish(pending)
	return milestone, nil
}

// MarkPaid finalizes payment for an approved milestone. Paying the last
// milestone completes the contract, releases its funded escrow, and
// completes the request once every contract under it is completed.
func (s *MilestoneService) MarkPaid(ctx context.Context, actor *models.User, milestoneID uuid.UUID) (*models.Milestone, error) {
	var milestone *models.Milestone
	var pending []*models.DomainEvent

	err := s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		var err error
		milestone, err = tx.GetMilestoneByID(ctx, milestoneID)
		if err != nil {
			return storeErr(err)
		}
		contract, err := tx.GetContractByID(ctx, milestone.ContractID)
		if err != nil {
			return storeErr(err)
		}
		if !s.perms.Can(actor, ActionMilestonePay, contract) {
			return permissionDenied()
		}

		next, ok := nextMilestoneStatus(milestone.Status, ActionMilestonePay)
		if !ok {
			return invalidTransition(fmt.Sprintf("milestone cannot be paid from status %s", milestone.Status))
		}

		from := milestone.Status
		now := time.Now()
		milestone.Status = next
		milestone.PaidAt = &now
		if err := tx.UpdateMilestone(ctx, milestone); err != nil {
			return storeErr(err)
		}
		if err := s.record(ctx, tx, &pending, models.EntityTypeMilestone, milestone.ID,
			string(from), string(next), actor.ID, contract.RequestID); err != nil {
			return err
		}

		unpaid, err := tx.CountUnpaidMilestones(ctx, contract.ID)
		if err != nil {
			return storeErr(err)
		}
		if unpaid > 0 {
			return nil
		}
		return s.completeContract(ctx, tx, contract, actor.ID, &pending)
	})
	if err != nil {
		return nil, err
	}

	s.publish(pending)
	log.Printf("Milestone %s paid by user %d", milestone.ID, actor.ID)
	return milestone, nil
}

// completeContract runs the payment cascade: contract COMPLETED, funded
// escrow auto-released, request COMPLETED once all its contracts are.
func (s *MilestoneService) completeContract(
	ctx context.Context,
	tx *repository.Repository,
	contract *models.Contract,
	actorID uint,
	pending *[]*models.DomainEvent,
) error {
	from := contract.Status
	contract.Status = models.ContractStatusCompleted
	if err := tx.UpdateContract(ctx, contract); err != nil {
		return storeErr(err)
	}
	if err := s.record(ctx, tx, pending, models.EntityTypeContract, contract.ID,
		string(from), string(models.ContractStatusCompleted), actorID, contract.RequestID); err != nil {
		return err
	}

	escrow, err := tx.GetEscrowByContract(ctx, contract.ID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return storeErr(err)
	}
	if escrow != nil && escrow.Status == models.EscrowStatusFunded {
		now := time.Now()
		escrow.Status = models.EscrowStatusReleased
		escrow.ReleasedAt = &now
		if err := tx.UpdateEscrow(ctx, escrow); err != nil {
			return storeErr(err)
		}
		if err := s.record(ctx, tx, pending, models.EntityTypeEscrow, escrow.ID,
			string(models.EscrowStatusFunded), string(models.EscrowStatusReleased), actorID, contract.RequestID); err != nil {
			return err
		}
	}

	request, err := tx.GetRequestByID(ctx, contract.RequestID)
	if err != nil {
		return storeErr(err)
	}
	if request.Terminal() {
		return nil
	}

	contracts, err := tx.ListContractsByRequest(ctx, request.ID)
	if err != nil {
		return storeErr(err)
	}
	for _, c := range contracts {
		if c.Status == models.ContractStatusTerminated {
			continue
		}
		if c.Status != models.ContractStatusCompleted {
			return nil
		}
	}

	fromReq := request.Status
	request.Status = models.RequestStatusCompleted
	if err := tx.UpdateRequest(ctx, request); err != nil {
		return storeErr(err)
	}
	return s.record(ctx, tx, pending, models.EntityTypeRequest, request.ID,
		string(fromReq), string(models.RequestStatusCompleted), actorID, request.ID)
}

// GetMilestone retrieves a milestone; only the contract parties see it
func (s *MilestoneService) GetMilestone(ctx context.Context, actor *models.User, milestoneID uuid.UUID) (*models.Milestone, []Action, error) {
	milestone, err := s.repo.GetMilestoneByID(ctx, milestoneID)
	if err != nil {
		return nil, nil, storeErr(err)
	}
	contract, err := s.repo.GetContractByID(ctx, milestone.ContractID)
	if err != nil {
		return nil, nil, storeErr(err)
	}
	if actor == nil || (actor.ID != contract.RequesterID && actor.ID != contract.TranslatorID) {
		return nil, nil, notFound()
	}
	return milestone, AvailableMilestoneActions(s.perms, actor, milestone, contract), nil
}

// ListByContract retrieves a contract's milestones in ordinal order
func (s *MilestoneService) ListByContract(ctx context.Context, actor *models.User, contractID uuid.UUID) ([]*models.Milestone, error) {
	contract, err := s.repo.GetContractByID(ctx, contractID)
	if err != nil {
		return nil, storeErr(err)
	}
	if actor == nil || (actor.ID != contract.RequesterID && actor.ID != contract.TranslatorID) {
		return nil, notFound()
	}
	milestones, err := s.repo.ListMilestonesByContract(ctx, contractID)
	if err != nil {
		return nil, storeErr(err)
	}
	return milestones, nil
}
