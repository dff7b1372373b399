package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"translation-market/internal/events"
	"translation-market/internal/models"
	"translation-market/internal/repository"

	"github.com/google/uuid"
)

// EscrowService owns funding and release of escrow accounts. Escrows tied
// to a contract are created automatically when the contract is signed and
// auto-released when its last milestone is paid; the operations here cover
// funding, manual release and standalone escrows.
type EscrowService struct {
	engine
}

func NewEscrowService(repo *repository.Repository, perms *PermissionEvaluator, gateway *events.Gateway) *EscrowService {
	return &EscrowService{engine{repo: repo, perms: perms, gateway: gateway}}
}

// CreateStandalone creates an escrow not yet bound to any contract
func (s *EscrowService) CreateStandalone(ctx context.Context, actor *models.User, amountCents int64) (*models.Escrow, error) {
	if actor == nil || actor.Role != models.RoleRequester {
		return nil, permissionDenied()
	}
	if amountCents <= 0 {
		return nil, invalidTransition("escrow amount must be a positive amount of cents")
	}

	escrow := &models.Escrow{
		ID:          uuid.New(),
		RequesterID: actor.ID,
		AmountCents: amountCents,
		Status:      models.EscrowStatusUnfunded,
		Version:     1,
	}
	if err := s.repo.CreateEscrow(ctx, escrow); err != nil {
		return nil, storeErr(err)
	}
	return escrow, nil
}

// Fund moves an unfunded escrow to FUNDED
func (s *EscrowService) Fund(ctx context.Context, actor *models.User, escrowID uuid.UUID) (*models.Escrow, error) {
	return s.transition(ctx, actor, escrowID, ActionEscrowFund)
}

// Release moves a funded escrow to RELEASED. Contract-bound escrows are
// also released automatically when the final milestone is paid.
func (s *EscrowService) Release(ctx context.Context, actor *models.User, escrowID uuid.UUID) (*models.Escrow, error) {
	return s.transition(ctx, actor, escrowID, ActionEscrowRelease)
}

func (s *EscrowService) transition(ctx context.Context, actor *models.User, escrowID uuid.UUID, action Action) (*models.Escrow, error) {
	var escrow *models.Escrow
	var pending []*models.DomainEvent

	err := s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		var err error
		escrow, err = tx.GetEscrowByID(ctx, escrowID)
		if err != nil {
			return storeErr(err)
		}
		if !s.perms.Can(actor, action, escrow) {
			return permissionDenied()
		}

		next, ok := nextEscrowStatus(escrow.Status, action)
		if !ok {
			return invalidTransition(fmt.Sprintf("escrow cannot move from status %s via %s", escrow.Status, action))
		}

		from := escrow.Status
		now := time.Now()
		escrow.Status = next
		switch next {
		case models.EscrowStatusFunded:
			escrow.FundedAt = &now
		case models.EscrowStatusReleased:
			escrow.ReleasedAt = &now
		}
		if err := tx.UpdateEscrow(ctx, escrow); err != nil {
			return storeErr(err)
		}

		requestID := uuid.Nil
		if escrow.ContractID != nil {
			contract, err := tx.GetContractByID(ctx, *escrow.ContractID)
			if err != nil {
				return storeErr(err)
			}
			requestID = contract.RequestID
		}
		return s.record(ctx, tx, &pending, models.EntityTypeEscrow, escrow.ID,
			string(from), string(next), actor.ID, requestID)
	})
	if err != nil {
		return nil, err
	}

	s.publish(pending)
	log.Printf("Escrow %s now %s (actor %d)", escrow.ID, escrow.Status, actor.ID)
	return escrow, nil
}

// GetEscrow retrieves an escrow; visible to the owning requester and,
// when contract-bound, the contract's translator.
func (s *EscrowService) GetEscrow(ctx context.Context, actor *models.User, escrowID uuid.UUID) (*models.Escrow, []Action, error) {
	escrow, err := s.repo.GetEscrowByID(ctx, escrowID)
	if err != nil {
		return nil, nil, storeErr(err)
	}

	visible := actor != nil && actor.ID == escrow.RequesterID
	if !visible && escrow.ContractID != nil && actor != nil {
		contract, err := s.repo.GetContractByID(ctx, *escrow.ContractID)
		if err == nil && contract.TranslatorID == actor.ID {
			visible = true
		}
	}
	if !visible {
		return nil, nil, notFound()
	}
	return escrow, AvailableEscrowActions(s.perms, actor, escrow), nil
}

// GetEscrowByContract retrieves the escrow securing a contract
func (s *EscrowService) GetEscrowByContract(ctx context.Context, actor *models.User, contractID uuid.UUID) (*models.Escrow, []Action, error) {
	escrow, err := s.repo.GetEscrowByContract(ctx, contractID)
	if err != nil {
		return nil, nil, storeErr(err)
	}
	return s.GetEscrow(ctx, actor, escrow.ID)
}
