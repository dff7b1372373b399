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

// ContractService owns signing and termination. Reaching SIGNED is the
// trigger that creates the escrow and unlocks milestone creation.
type ContractService struct {
	engine
}

func NewContractService(repo *repository.Repository, perms *PermissionEvaluator, gateway *events.Gateway) *ContractService {
	return &ContractService{engine{repo: repo, perms: perms, gateway: gateway}}
}

// Sign records the calling party's signature. The party is derived from
// the actor, never from the payload. Signing twice is rejected. When both
// signatures are present the contract becomes SIGNED, an unfunded escrow
// is created, and the parent request advances.
func (s *ContractService) Sign(ctx context.Context, actor *models.User, contractID uuid.UUID) (*models.Contract, error) {
	var contract *models.Contract
	var pending []*models.DomainEvent

	err := s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		var err error
		contract, err = tx.GetContractByID(ctx, contractID)
		if err != nil {
			return storeErr(err)
		}
		if !s.perms.Can(actor, ActionContractSign, contract) {
			return permissionDenied()
		}

		switch contract.Status {
		case models.ContractStatusDraft, models.ContractStatusPendingRequester, models.ContractStatusPendingTranslator:
		default:
			return invalidTransition(fmt.Sprintf("contract cannot be signed from status %s", contract.Status))
		}

		now := time.Now()
		switch {
		case actor.Role == models.RoleRequester && actor.ID == contract.RequesterID:
			if contract.RequesterSigned {
				return invalidTransition("requester has already signed this contract")
			}
			contract.RequesterSigned = true
			contract.RequesterSignedAt = &now
		case actor.Role == models.RoleTranslator && actor.ID == contract.TranslatorID:
			if contract.TranslatorSigned {
				return invalidTransition("translator has already signed this contract")
			}
			contract.TranslatorSigned = true
			contract.TranslatorSignedAt = &now
		default:
			return permissionDenied()
		}

		from := contract.Status
		contract.Status = recomputeContractStatus(contract)
		if err := tx.UpdateContract(ctx, contract); err != nil {
			return storeErr(err)
		}
		if err := s.record(ctx, tx, &pending, models.EntityTypeContract, contract.ID,
			string(from), string(contract.Status), actor.ID, contract.RequestID); err != nil {
			return err
		}

		if contract.Status != models.ContractStatusSigned {
			return nil
		}

		escrow := &models.Escrow{
			ID:          uuid.New(),
			ContractID:  &contract.ID,
			RequesterID: contract.RequesterID,
			AmountCents: contract.TotalAmountCents,
			Status:      models.EscrowStatusUnfunded,
			Version:     1,
		}
		if err := tx.CreateEscrow(ctx, escrow); err != nil {
			return storeErr(err)
		}
		if err := s.record(ctx, tx, &pending, models.EntityTypeEscrow, escrow.ID,
			"", string(models.EscrowStatusUnfunded), actor.ID, contract.RequestID); err != nil {
			return err
		}

		return s.advanceRequestOnSigned(ctx, tx, contract, actor.ID, &pending)
	})
	if err != nil {
		return nil, err
	}

	s.publish(pending)
	log.Printf("Contract %s signed by user %d, status now %s", contract.ID, actor.ID, contract.Status)
	return contract, nil
}

// advanceRequestOnSigned moves the parent request to CONTRACTED when its
// first contract is fully signed, and on to IN_PROGRESS once every
// non-terminated contract under it is signed.
func (s *ContractService) advanceRequestOnSigned(
	ctx context.Context,
	tx *repository.Repository,
	contract *models.Contract,
	actorID uint,
	pending *[]*models.DomainEvent,
) error {
	request, err := tx.GetRequestByID(ctx, contract.RequestID)
	if err != nil {
		return storeErr(err)
	}
	if request.Terminal() {
		return nil
	}

	if request.Status == models.RequestStatusOpen || request.Status == models.RequestStatusReviewing {
		from := request.Status
		request.Status = models.RequestStatusContracted
		if err := tx.UpdateRequest(ctx, request); err != nil {
			return storeErr(err)
		}
		if err := s.record(ctx, tx, pending, models.EntityTypeRequest, request.ID,
			string(from), string(models.RequestStatusContracted), actorID, request.ID); err != nil {
			return err
		}
	}

	return s.maybeBeginProgress(ctx, tx, request, actorID, pending)
}

// maybeBeginProgress moves a CONTRACTED request to IN_PROGRESS once every
// non-terminated contract under it is fully signed. Both signing and
// terminating a contract can be the step that satisfies the condition.
func (s *ContractService) maybeBeginProgress(
	ctx context.Context,
	tx *repository.Repository,
	request *models.Request,
	actorID uint,
	pending *[]*models.DomainEvent,
) error {
	if request.Status != models.RequestStatusContracted {
		return nil
	}

	contracts, err := tx.ListContractsByRequest(ctx, request.ID)
	if err != nil {
		return storeErr(err)
	}
	signed := 0
	for _, c := range contracts {
		if c.Status == models.ContractStatusTerminated {
			continue
		}
		if !c.FullySigned() {
			return nil
		}
		signed++
	}
	if signed == 0 {
		return nil
	}

	request.Status = models.RequestStatusInProgress
	if err := tx.UpdateRequest(ctx, request); err != nil {
		return storeErr(err)
	}
	return s.record(ctx, tx, pending, models.EntityTypeRequest, request.ID,
		string(models.RequestStatusContracted), string(models.RequestStatusInProgress), actorID, request.ID)
}

// Terminate is a requester override available only before the contract is
// fully signed.
func (s *ContractService) Terminate(ctx context.Context, actor *models.User, contractID uuid.UUID) (*models.Contract, error) {
	var contract *models.Contract
	var pending []*models.DomainEvent

	err := s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		var err error
		contract, err = tx.GetContractByID(ctx, contractID)
		if err != nil {
			return storeErr(err)
		}
		if !s.perms.Can(actor, ActionContractTerminate, contract) {
			return permissionDenied()
		}

		switch contract.Status {
		case models.ContractStatusDraft, models.ContractStatusPendingRequester, models.ContractStatusPendingTranslator:
		default:
			return invalidTransition(fmt.Sprintf("contract cannot be terminated from status %s", contract.Status))
		}

		from := contract.Status
		contract.Status = models.ContractStatusTerminated
		if err := tx.UpdateContract(ctx, contract); err != nil {
			return storeErr(err)
		}
		if err := s.record(ctx, tx, &pending, models.EntityTypeContract, contract.ID,
			string(from), string(models.ContractStatusTerminated), actor.ID, contract.RequestID); err != nil {
			return err
		}

		// Dropping the last unsigned contract can leave every remaining
		// contract fully signed, which advances the request.
		request, err := tx.GetRequestByID(ctx, contract.RequestID)
		if err != nil {
			return storeErr(err)
		}
		if request.Terminal() {
			return nil
		}
		return s.maybeBeginProgress(ctx, tx, request, actor.ID, &pending)
	})
	if err != nil {
		return nil, err
	}

	s.publish(pending)
	log.Printf("Contract %s terminated by requester %d", contract.ID, actor.ID)
	return contract, nil
}

// GetContract retrieves a contract. Only the two parties can see it;
// everyone else gets NotFound so foreign ids leak nothing.
func (s *ContractService) GetContract(ctx context.Context, actor *models.User, contractID uuid.UUID) (*models.Contract, []Action, error) {
	contract, err := s.repo.GetContractByID(ctx, contractID)
	if err != nil {
		return nil, nil, storeErr(err)
	}
	if actor == nil || (actor.ID != contract.RequesterID && actor.ID != contract.TranslatorID) {
		return nil, nil, notFound()
	}
	return contract, AvailableContractActions(s.perms, actor, contract), nil
}

// ListMine retrieves contracts where the caller is a party
func (s *ContractService) ListMine(ctx context.Context, actor *models.User) ([]*models.Contract, error) {
	contracts, err := s.repo.ListContractsByUser(ctx, actor.ID)
	if err != nil {
		return nil, storeErr(err)
	}
	return contracts, nil
}
