package services

import (
	"context"
	"testing"

	"translation-market/internal/models"
)

func TestDraftRequestVisibleOnlyToOwner(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	requester := createUser(t, env.db, models.RoleRequester)
	stranger := createUser(t, env.db, models.RoleTranslator)

	book, err := env.requests.CreateBook(ctx, requester, &models.CreateBookRequest{
		Title:    "Dead Souls",
		Language: "ru",
	})
	if err != nil {
		t.Fatalf("CreateBook failed: %v", err)
	}
	request, err := env.requests.CreateRequest(ctx, requester, &models.CreateRequestRequest{
		BookID:         book.ID.String(),
		SourceLanguage: "ru",
		TargetLanguage: "de",
		BudgetCents:    100000,
	})
	if err != nil {
		t.Fatalf("CreateRequest failed: %v", err)
	}

	if _, _, err := env.requests.GetRequest(ctx, requester, request.ID); err != nil {
		t.Fatalf("owner should see own draft: %v", err)
	}

	_, _, err = env.requests.GetRequest(ctx, stranger, request.ID)
	mustKind(t, err, KindNotFound)

	// Once published the request is public marketplace state.
	if _, err := env.requests.PublishRequest(ctx, requester, request.ID); err != nil {
		t.Fatalf("PublishRequest failed: %v", err)
	}
	if _, _, err := env.requests.GetRequest(ctx, stranger, request.ID); err != nil {
		t.Fatalf("published request should be visible: %v", err)
	}
}

func TestGetRequestByReference(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	requester := createUser(t, env.db, models.RoleRequester)

	request := openRequest(t, env, requester)
	if request.ReferenceCode == "" {
		t.Fatal("expected a reference code on the request")
	}

	found, _, err := env.requests.GetRequestByReference(ctx, requester, request.ReferenceCode)
	if err != nil {
		t.Fatalf("GetRequestByReference failed: %v", err)
	}
	if found.ID != request.ID {
		t.Errorf("resolved request %s, want %s", found.ID, request.ID)
	}

	_, _, err = env.requests.GetRequestByReference(ctx, requester, "nosuchcode")
	mustKind(t, err, KindNotFound)
}

func TestPublishOnlyFromDraft(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	requester := createUser(t, env.db, models.RoleRequester)

	request := openRequest(t, env, requester)

	_, err := env.requests.PublishRequest(ctx, requester, request.ID)
	mustKind(t, err, KindInvalidTransition)
}

func TestPublishRequiresOwnership(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	requester := createUser(t, env.db, models.RoleRequester)
	other := createUser(t, env.db, models.RoleRequester)

	book, _ := env.requests.CreateBook(ctx, requester, &models.CreateBookRequest{
		Title:    "Oblomov",
		Language: "ru",
	})
	request, err := env.requests.CreateRequest(ctx, requester, &models.CreateRequestRequest{
		BookID:         book.ID.String(),
		SourceLanguage: "ru",
		TargetLanguage: "fr",
		BudgetCents:    100000,
	})
	if err != nil {
		t.Fatalf("CreateRequest failed: %v", err)
	}

	_, err = env.requests.PublishRequest(ctx, other, request.ID)
	mustKind(t, err, KindPermissionDenied)
}

func TestDuplicateRequestPerBookRejected(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	requester := createUser(t, env.db, models.RoleRequester)

	book, err := env.requests.CreateBook(ctx, requester, &models.CreateBookRequest{
		Title:    "We",
		Language: "ru",
	})
	if err != nil {
		t.Fatalf("CreateBook failed: %v", err)
	}

	payload := &models.CreateRequestRequest{
		BookID:         book.ID.String(),
		SourceLanguage: "ru",
		TargetLanguage: "en",
		BudgetCents:    200000,
	}
	request, err := env.requests.CreateRequest(ctx, requester, payload)
	if err != nil {
		t.Fatalf("first CreateRequest failed: %v", err)
	}

	_, err = env.requests.CreateRequest(ctx, requester, payload)
	mustKind(t, err, KindConflict)

	// A cancelled request frees the slot.
	if _, err := env.requests.CancelRequest(ctx, requester, request.ID); err != nil {
		t.Fatalf("CancelRequest failed: %v", err)
	}
	if _, err := env.requests.CreateRequest(ctx, requester, payload); err != nil {
		t.Fatalf("CreateRequest after cancel failed: %v", err)
	}
}

func TestCreateRequestRequiresOwnBook(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	requester := createUser(t, env.db, models.RoleRequester)
	other := createUser(t, env.db, models.RoleRequester)

	book, err := env.requests.CreateBook(ctx, requester, &models.CreateBookRequest{
		Title:    "Fathers and Sons",
		Language: "ru",
	})
	if err != nil {
		t.Fatalf("CreateBook failed: %v", err)
	}

	_, err = env.requests.CreateRequest(ctx, other, &models.CreateRequestRequest{
		BookID:         book.ID.String(),
		SourceLanguage: "ru",
		TargetLanguage: "en",
		BudgetCents:    100000,
	})
	mustKind(t, err, KindNotFound)
}

func TestCreateBookRequiresRequesterRole(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	translator := createUser(t, env.db, models.RoleTranslator)

	_, err := env.requests.CreateBook(ctx, translator, &models.CreateBookRequest{
		Title:    "Anna Karenina",
		Language: "ru",
	})
	mustKind(t, err, KindPermissionDenied)
}

func TestCancelBlockedAfterSignedContract(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	requester := createUser(t, env.db, models.RoleRequester)
	translator := createUser(t, env.db, models.RoleTranslator)

	request, _ := signedContract(t, env, requester, translator)

	_, err := env.requests.CancelRequest(ctx, requester, request.ID)
	mustKind(t, err, KindInvalidTransition)
}

func TestCancelAllowedWhileContractUnsigned(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	requester := createUser(t, env.db, models.RoleRequester)
	translator := createUser(t, env.db, models.RoleTranslator)

	request, _, _ := acceptedContract(t, env, requester, translator)

	request, err := env.requests.CancelRequest(ctx, requester, request.ID)
	if err != nil {
		t.Fatalf("CancelRequest failed: %v", err)
	}
	if request.Status != models.RequestStatusCancelled {
		t.Errorf("expected CANCELLED, got %s", request.Status)
	}
	if request.CancelledAt == nil {
		t.Error("expected CancelledAt to be set")
	}
}

func TestListOpenRequestsIncludesReviewing(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	requester := createUser(t, env.db, models.RoleRequester)
	translator := createUser(t, env.db, models.RoleTranslator)

	// acceptedContract leaves the request in REVIEWING; it must still be
	// biddable.
	request, _, _ := acceptedContract(t, env, requester, translator)

	requests, total, err := env.requests.ListOpenRequests(ctx, 20, 0)
	if err != nil {
		t.Fatalf("ListOpenRequests failed: %v", err)
	}
	if total != 1 || len(requests) != 1 {
		t.Fatalf("expected exactly one open request, got total=%d len=%d", total, len(requests))
	}
	if requests[0].ID != request.ID {
		t.Errorf("listed request %s, want %s", requests[0].ID, request.ID)
	}
}
