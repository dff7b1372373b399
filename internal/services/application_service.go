package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"translation-market/internal/events"
	"translation-market/internal/models"
	"translation-market/internal/repository"

	"github.com/google/uuid"
)

// ApplicationService owns translator bids and the accept side effect that
// creates a contract.
type ApplicationService struct {
	engine
}

func NewApplicationService(repo *repository.Repository, perms *PermissionEvaluator, gateway *events.Gateway) *ApplicationService {
	return &ApplicationService{engine{repo: repo, perms: perms, gateway: gateway}}
}

// Apply files a translator's bid against an open request
func (s *ApplicationService) Apply(ctx context.Context, actor *models.User, requestID uuid.UUID, req *models.ApplyRequest) (*models.Application, error) {
	var app *models.Application
	var pending []*models.DomainEvent

	err := s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		request, err := tx.GetRequestByID(ctx, requestID)
		if err != nil {
			return storeErr(err)
		}
		if !s.perms.Can(actor, ActionApplicationCreate, request) {
			return permissionDenied()
		}
		if request.Status != models.RequestStatusOpen && request.Status != models.RequestStatusReviewing {
			return invalidTransition(fmt.Sprintf("request is not accepting applications in status %s", request.Status))
		}

		app = &models.Application{
			ID:           uuid.New(),
			RequestID:    requestID,
			TranslatorID: actor.ID,
			CoverLetter:  req.CoverLetter,
			ProposedRate: req.ProposedRate,
			Status:       models.ApplicationStatusPending,
			Version:      1,
		}
		if err := tx.CreateApplication(ctx, app); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return conflict("you already have an application against this request")
			}
			return storeErr(err)
		}
		return s.record(ctx, tx, &pending, models.EntityTypeApplication, app.ID,
			"", string(models.ApplicationStatusPending), actor.ID, requestID)
	})
	if err != nil {
		return nil, err
	}

	s.publish(pending)
	log.Printf("Application %s filed by translator %d against request %s", app.ID, actor.ID, requestID)
	return app, nil
}

// Withdraw retracts a pending application; only the applying translator
// may do so.
func (s *ApplicationService) Withdraw(ctx context.Context, actor *models.User, appID uuid.UUID) (*models.Application, error) {
	var app *models.Application
	var pending []*models.DomainEvent

	err := s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		var err error
		app, err = tx.GetApplicationByID(ctx, appID)
		if err != nil {
			return storeErr(err)
		}
		if !s.perms.Can(actor, ActionApplicationWithdraw, app) {
			return permissionDenied()
		}

		next, ok := nextApplicationStatus(app.Status, ActionApplicationWithdraw)
		if !ok {
			return invalidTransition(fmt.Sprintf("application cannot be withdrawn from status %s", app.Status))
		}

		from := app.Status
		app.Status = next
		if err := tx.UpdateApplication(ctx, app); err != nil {
			return storeErr(err)
		}
		return s.record(ctx, tx, &pending, models.EntityTypeApplication, app.ID,
			string(from), string(next), actor.ID, app.RequestID)
	})
	if err != nil {
		return nil, err
	}

	s.publish(pending)
	return app, nil
}

// Accept accepts a pending application. Side effects: a DRAFT contract is
// created from the application and the request advances to REVIEWING.
// Sibling applications are left untouched; rejection is a separate
// explicit action.
func (s *ApplicationService) Accept(ctx context.Context, actor *models.User, appID uuid.UUID) (*models.Application, *models.Contract, error) {
	var app *models.Application
	var contract *models.Contract
	var pending []*models.DomainEvent

	err := s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		var err error
		app, err = tx.GetApplicationByID(ctx, appID)
		if err != nil {
			return storeErr(err)
		}
		request, err := tx.GetRequestByID(ctx, app.RequestID)
		if err != nil {
			return storeErr(err)
		}
		if !s.perms.Can(actor, ActionApplicationAccept, request) {
			return permissionDenied()
		}

		if request.Status != models.RequestStatusOpen && request.Status != models.RequestStatusReviewing {
			return invalidTransition(fmt.Sprintf("applications cannot be accepted while the request is %s", request.Status))
		}
		next, ok := nextApplicationStatus(app.Status, ActionApplicationAccept)
		if !ok {
			return invalidTransition(fmt.Sprintf("application cannot be accepted from status %s", app.Status))
		}

		from := app.Status
		app.Status = next
		if err := tx.UpdateApplication(ctx, app); err != nil {
			return storeErr(err)
		}
		if err := s.record(ctx, tx, &pending, models.EntityTypeApplication, app.ID,
			string(from), string(next), actor.ID, app.RequestID); err != nil {
			return err
		}

		contract = &models.Contract{
			ID:               uuid.New(),
			ApplicationID:    app.ID,
			RequestID:        request.ID,
			RequesterID:      request.RequesterID,
			TranslatorID:     app.TranslatorID,
			TotalAmountCents: request.BudgetCents,
			Status:           models.ContractStatusDraft,
			Version:          1,
		}
		if err := tx.CreateContract(ctx, contract); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return conflict("a contract already exists for this application")
			}
			return storeErr(err)
		}
		if err := s.record(ctx, tx, &pending, models.EntityTypeContract, contract.ID,
			"", string(models.ContractStatusDraft), actor.ID, request.ID); err != nil {
			return err
		}

		if request.Status == models.RequestStatusOpen {
			request.Status = models.RequestStatusReviewing
			if err := tx.UpdateRequest(ctx, request); err != nil {
				return storeErr(err)
			}
			if err := s.record(ctx, tx, &pending, models.EntityTypeRequest, request.ID,
				string(models.RequestStatusOpen), string(models.RequestStatusReviewing), actor.ID, request.ID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	s.publish(pending)
	log.Printf("Application %s accepted, contract %s created", app.ID, contract.ID)
	return app, contract, nil
}

// Reject rejects a pending application
func (s *ApplicationService) Reject(ctx context.Context, actor *models.User, appID uuid.UUID) (*models.Application, error) {
	var app *models.Application
	var pending []*models.DomainEvent

	err := s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		var err error
		app, err = tx.GetApplicationByID(ctx, appID)
		if err != nil {
			return storeErr(err)
		}
		request, err := tx.GetRequestByID(ctx, app.RequestID)
		if err != nil {
			return storeErr(err)
		}
		if !s.perms.Can(actor, ActionApplicationReject, request) {
			return permissionDenied()
		}

		next, ok := nextApplicationStatus(app.Status, ActionApplicationReject)
		if !ok {
			return invalidTransition(fmt.Sprintf("application cannot be rejected from status %s", app.Status))
		}

		from := app.Status
		app.Status = next
		if err := tx.UpdateApplication(ctx, app); err != nil {
			return storeErr(err)
		}
		return s.record(ctx, tx, &pending, models.EntityTypeApplication, app.ID,
			string(from), string(next), actor.ID, app.RequestID)
	})
	if err != nil {
		return nil, err
	}

	s.publish(pending)
	return app, nil
}

// GetApplication retrieves one application. Visible to the applying
// translator and the request owner only.
func (s *ApplicationService) GetApplication(ctx context.Context, actor *models.User, appID uuid.UUID) (*models.Application, []Action, error) {
	app, err := s.repo.GetApplicationByID(ctx, appID)
	if err != nil {
		return nil, nil, storeErr(err)
	}
	request, err := s.repo.GetRequestByID(ctx, app.RequestID)
	if err != nil {
		return nil, nil, storeErr(err)
	}
	if actor == nil || (actor.ID != app.TranslatorID && actor.ID != request.RequesterID) {
		return nil, nil, notFound()
	}
	return app, AvailableApplicationActions(s.perms, actor, app, request), nil
}

// ListByRequest retrieves a request's applications. The request owner
// sees all of them; a translator sees only their own.
func (s *ApplicationService) ListByRequest(ctx context.Context, actor *models.User, requestID uuid.UUID) ([]*models.Application, error) {
	request, err := s.repo.GetRequestByID(ctx, requestID)
	if err != nil {
		return nil, storeErr(err)
	}
	apps, err := s.repo.ListApplicationsByRequest(ctx, requestID)
	if err != nil {
		return nil, storeErr(err)
	}

	if actor != nil && actor.ID == request.RequesterID {
		return apps, nil
	}
	var own []*models.Application
	for _, app := range apps {
		if actor != nil && app.TranslatorID == actor.ID {
			own = append(own, app)
		}
	}
	return own, nil
}

// ListMine retrieves the calling translator's applications
func (s *ApplicationService) ListMine(ctx context.Context, actor *models.User) ([]*models.Application, error) {
	apps, err := s.repo.ListApplicationsByTranslator(ctx, actor.ID)
	if err != nil {
		return nil, storeErr(err)
	}
	return apps, nil
}
