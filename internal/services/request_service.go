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
	"translation-market/internal/utils"

	"github.com/google/uuid"
)

// RequestService owns the Request lifecycle and the book records backing
// it. Request status past OPEN is advanced only by cascades in the
// application, contract and milestone services.
type RequestService struct {
	engine
}

func NewRequestService(repo *repository.Repository, perms *PermissionEvaluator, gateway *events.Gateway) *RequestService {
	return &RequestService{engine{repo: repo, perms: perms, gateway: gateway}}
}

// CreateBook registers a book owned by the calling requester
func (s *RequestService) CreateBook(ctx context.Context, actor *models.User, req *models.CreateBookRequest) (*models.Book, error) {
	if actor == nil || actor.Role != models.RoleRequester {
		return nil, permissionDenied()
	}

	book := &models.Book{
		ID:       uuid.New(),
		OwnerID:  actor.ID,
		Title:    req.Title,
		Author:   req.Author,
		Language: req.Language,
	}
	if err := s.repo.CreateBook(ctx, book); err != nil {
		return nil, storeErr(err)
	}
	return book, nil
}

// ListBooks retrieves the calling user's books
func (s *RequestService) ListBooks(ctx context.Context, actor *models.User) ([]*models.Book, error) {
	books, err := s.repo.ListBooksByOwner(ctx, actor.ID)
	if err != nil {
		return nil, storeErr(err)
	}
	return books, nil
}

// CreateRequest creates a translation request in DRAFT
func (s *RequestService) CreateRequest(ctx context.Context, actor *models.User, req *models.CreateRequestRequest) (*models.Request, error) {
	if !s.perms.Can(actor, ActionRequestCreate, nil) {
		return nil, permissionDenied()
	}

	bookID, err := uuid.Parse(req.BookID)
	if err != nil {
		return nil, invalidTransition("book id is not a valid uuid")
	}
	book, err := s.repo.GetBookByID(ctx, bookID)
	if err != nil {
		return nil, storeErr(err)
	}
	if book.OwnerID != actor.ID {
		return nil, notFound()
	}
	if req.BudgetCents <= 0 {
		return nil, invalidTransition("budget must be a positive amount of cents")
	}

	code, err := utils.NewReferenceCode()
	if err != nil {
		return nil, fmt.Errorf("failed to generate reference code: %w", err)
	}

	request := &models.Request{
		ID:             uuid.New(),
		ReferenceCode:  code,
		RequesterID:    actor.ID,
		BookID:         bookID,
		SourceLanguage: req.SourceLanguage,
		TargetLanguage: req.TargetLanguage,
		BudgetCents:    req.BudgetCents,
		Deadline:       req.Deadline,
		Status:         models.RequestStatusDraft,
		Version:        1,
	}

	var pending []*models.DomainEvent
	err = s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		if err := tx.CreateRequest(ctx, request); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return conflict("a non-cancelled request already exists for this book")
			}
			return storeErr(err)
		}
		return s.record(ctx, tx, &pending, models.EntityTypeRequest, request.ID,
			"", string(models.RequestStatusDraft), actor.ID, request.ID)
	})
	if err != nil {
		return nil, err
	}

	s.publish(pending)
	log.Printf("Request %s created by requester %d (book %s)", request.ID, actor.ID, bookID)
	return request, nil
}

// PublishRequest moves a draft request to OPEN so translators can bid
func (s *RequestService) PublishRequest(ctx context.Context, actor *models.User, requestID uuid.UUID) (*models.Request, error) {
	var request *models.Request
	var pending []*models.DomainEvent

	err := s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		var err error
		request, err = tx.GetRequestByID(ctx, requestID)
		if err != nil {
			return storeErr(err)
		}
		if !s.perms.Can(actor, ActionRequestPublish, request) {
			return permissionDenied()
		}

		next, ok := nextRequestStatus(request.Status, ActionRequestPublish)
		if !ok {
			return invalidTransition(fmt.Sprintf("request cannot be published from status %s", request.Status))
		}

		from := request.Status
		request.Status = next
		if err := tx.UpdateRequest(ctx, request); err != nil {
			return storeErr(err)
		}
		return s.record(ctx, tx, &pending, models.EntityTypeRequest, request.ID,
			string(from), string(next), actor.ID, request.ID)
	})
	if err != nil {
		return nil, err
	}

	s.publish(pending)
	return request, nil
}

// CancelRequest cancels a request. Once any contract under the request is
// signed the request can no longer be cancelled.
func (s *RequestService) CancelRequest(ctx context.Context, actor *models.User, requestID uuid.UUID) (*models.Request, error) {
	var request *models.Request
	var pending []*models.DomainEvent

	err := s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		var err error
		request, err = tx.GetRequestByID(ctx, requestID)
		if err != nil {
			return storeErr(err)
		}
		if !s.perms.Can(actor, ActionRequestCancel, request) {
			return permissionDenied()
		}

		next, ok := nextRequestStatus(request.Status, ActionRequestCancel)
		if !ok {
			return invalidTransition(fmt.Sprintf("request cannot be cancelled from status %s", request.Status))
		}

		contracts, err := tx.ListContractsByRequest(ctx, requestID)
		if err != nil {
			return storeErr(err)
		}
		for _, contract := range contracts {
			if contract.SignedOrLater() {
				return invalidTransition("request has a signed contract and can no longer be cancelled")
			}
		}

		from := request.Status
		now := time.Now()
		request.Status = next
		request.CancelledAt = &now
		if err := tx.UpdateRequest(ctx, request); err != nil {
			return storeErr(err)
		}
		return s.record(ctx, tx, &pending, models.EntityTypeRequest, request.ID,
			string(from), string(next), actor.ID, request.ID)
	})
	if err != nil {
		return nil, err
	}

	s.publish(pending)
	log.Printf("Request %s cancelled by requester %d", request.ID, actor.ID)
	return request, nil
}

// GetRequest retrieves a request. Drafts are visible only to their owner;
// everything else is public marketplace state.
func (s *RequestService) GetRequest(ctx context.Context, actor *models.User, requestID uuid.UUID) (*models.Request, []Action, error) {
	request, err := s.repo.GetRequestByID(ctx, requestID)
	if err != nil {
		return nil, nil, storeErr(err)
	}
	if request.Status == models.RequestStatusDraft && (actor == nil || actor.ID != request.RequesterID) {
		return nil, nil, notFound()
	}
	return request, AvailableRequestActions(s.perms, actor, request), nil
}

// GetRequestByReference resolves a shareable reference code
func (s *RequestService) GetRequestByReference(ctx context.Context, actor *models.User, code string) (*models.Request, []Action, error) {
	request, err := s.repo.GetRequestByReference(ctx, code)
	if err != nil {
		return nil, nil, storeErr(err)
	}
	return s.GetRequest(ctx, actor, request.ID)
}

// ListOpenRequests retrieves requests translators can bid on
func (s *RequestService) ListOpenRequests(ctx context.Context, limit, offset int) ([]*models.Request, int64, error) {
	requests, total, err := s.repo.ListOpenRequests(ctx, limit, offset)
	if err != nil {
		return nil, 0, storeErr(err)
	}
	return requests, total, nil
}

// ListMyRequests retrieves the calling requester's requests
func (s *RequestService) ListMyRequests(ctx context.Context, actor *models.User, limit, offset int) ([]*models.Request, int64, error) {
	requests, total, err := s.repo.ListRequestsByRequester(ctx, actor.ID, limit, offset)
	if err != nil {
		return nil, 0, storeErr(err)
	}
	return requests, total, nil
}

// ListRequestEvents retrieves the durable event log scoped to one request
func (s *RequestService) ListRequestEvents(ctx context.Context, actor *models.User, requestID uuid.UUID, afterSeq int64, limit int) ([]*models.DomainEvent, error) {
	if _, _, err := s.GetRequest(ctx, actor, requestID); err != nil {
		return nil, err
	}
	eventsList, err := s.repo.ListEventsByRequest(ctx, requestID, afterSeq, limit)
	if err != nil {
		return nil, storeErr(err)
	}
	return eventsList, nil
}
