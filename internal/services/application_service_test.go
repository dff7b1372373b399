package services

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"

	"translation-market/internal/models"
)

func TestApplyRequiresOpenRequest(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	requester := createUser(t, env.db, models.RoleRequester)
	translator := createUser(t, env.db, models.RoleTranslator)

	book, _ := env.requests.CreateBook(ctx, requester, &models.CreateBookRequest{
		Title:    "The Idiot",
		Language: "ru",
	})
	request, err := env.requests.CreateRequest(ctx, requester, &models.CreateRequestRequest{
		BookID:         book.ID.String(),
		SourceLanguage: "ru",
		TargetLanguage: "en",
		BudgetCents:    100000,
	})
	if err != nil {
		t.Fatalf("CreateRequest failed: %v", err)
	}

	// Still DRAFT: not accepting applications.
	_, err = env.apps.Apply(ctx, translator, request.ID, &models.ApplyRequest{})
	mustKind(t, err, KindInvalidTransition)
}

func TestApplyDeniedForReaders(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	requester := createUser(t, env.db, models.RoleRequester)
	reader := createUser(t, env.db, models.RoleReader)

	request := openRequest(t, env, requester)

	_, err := env.apps.Apply(ctx, reader, request.ID, &models.ApplyRequest{})
	mustKind(t, err, KindPermissionDenied)
}

func TestDuplicateApplicationRejected(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	requester := createUser(t, env.db, models.RoleRequester)
	translator := createUser(t, env.db, models.RoleTranslator)

	request := openRequest(t, env, requester)

	if _, err := env.apps.Apply(ctx, translator, request.ID, &models.ApplyRequest{}); err != nil {
		t.Fatalf("first Apply failed: %v", err)
	}
	_, err := env.apps.Apply(ctx, translator, request.ID, &models.ApplyRequest{})
	mustKind(t, err, KindConflict)
}

func TestWithdrawFreesApplicationSlot(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	requester := createUser(t, env.db, models.RoleRequester)
	translator := createUser(t, env.db, models.RoleTranslator)

	request := openRequest(t, env, requester)
	app, err := env.apps.Apply(ctx, translator, request.ID, &models.ApplyRequest{
		ProposedRate: decimal.NewFromFloat(0.15),
	})
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	app, err = env.apps.Withdraw(ctx, translator, app.ID)
	if err != nil {
		t.Fatalf("Withdraw failed: %v", err)
	}
	if app.Status != models.ApplicationStatusWithdrawn {
		t.Errorf("expected WITHDRAWN, got %s", app.Status)
	}

	// Withdrawn applications do not block a fresh bid.
	if _, err := env.apps.Apply(ctx, translator, request.ID, &models.ApplyRequest{}); err != nil {
		t.Fatalf("re-Apply after withdraw failed: %v", err)
	}

	// A withdrawn application is terminal.
	_, err = env.apps.Withdraw(ctx, translator, app.ID)
	mustKind(t, err, KindInvalidTransition)
}

func TestWithdrawOnlyByApplicant(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	requester := createUser(t, env.db, models.RoleRequester)
	translator := createUser(t, env.db, models.RoleTranslator)
	other := createUser(t, env.db, models.RoleTranslator)

	request := openRequest(t, env, requester)
	app, err := env.apps.Apply(ctx, translator, request.ID, &models.ApplyRequest{})
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	_, err = env.apps.Withdraw(ctx, other, app.ID)
	mustKind(t, err, KindPermissionDenied)
}

func TestRejectApplication(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	requester := createUser(t, env.db, models.RoleRequester)
	translator := createUser(t, env.db, models.RoleTranslator)

	request := openRequest(t, env, requester)
	app, err := env.apps.Apply(ctx, translator, request.ID, &models.ApplyRequest{})
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	app, err = env.apps.Reject(ctx, requester, app.ID)
	if err != nil {
		t.Fatalf("Reject failed: %v", err)
	}
	if app.Status != models.ApplicationStatusRejected {
		t.Errorf("expected REJECTED, got %s", app.Status)
	}

	// Rejected applications cannot be accepted afterwards.
	_, _, err = env.apps.Accept(ctx, requester, app.ID)
	mustKind(t, err, KindInvalidTransition)
}

func TestAcceptOnlyByRequestOwner(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	requester := createUser(t, env.db, models.RoleRequester)
	translator := createUser(t, env.db, models.RoleTranslator)
	other := createUser(t, env.db, models.RoleRequester)

	request := openRequest(t, env, requester)
	app, err := env.apps.Apply(ctx, translator, request.ID, &models.ApplyRequest{})
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	_, _, err = env.apps.Accept(ctx, other, app.ID)
	mustKind(t, err, KindPermissionDenied)
}

func TestAcceptLeavesSiblingApplicationsPending(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	requester := createUser(t, env.db, models.RoleRequester)
	first := createUser(t, env.db, models.RoleTranslator)
	second := createUser(t, env.db, models.RoleTranslator)

	request := openRequest(t, env, requester)
	appA, err := env.apps.Apply(ctx, first, request.ID, &models.ApplyRequest{})
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	appB, err := env.apps.Apply(ctx, second, request.ID, &models.ApplyRequest{})
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	if _, _, err := env.apps.Accept(ctx, requester, appA.ID); err != nil {
		t.Fatalf("Accept failed: %v", err)
	}

	appB, _, err = env.apps.GetApplication(ctx, second, appB.ID)
	if err != nil {
		t.Fatalf("GetApplication failed: %v", err)
	}
	if appB.Status != models.ApplicationStatusPending {
		t.Errorf("sibling application should stay PENDING, got %s", appB.Status)
	}

	// The request stays biddable in REVIEWING and the sibling can still be
	// accepted for a second contract.
	if _, _, err := env.apps.Accept(ctx, requester, appB.ID); err != nil {
		t.Fatalf("accepting sibling failed: %v", err)
	}
}

func TestApplicationVisibility(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	requester := createUser(t, env.db, models.RoleRequester)
	translator := createUser(t, env.db, models.RoleTranslator)
	rival := createUser(t, env.db, models.RoleTranslator)

	request := openRequest(t, env, requester)
	app, err := env.apps.Apply(ctx, translator, request.ID, &models.ApplyRequest{})
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if _, err := env.apps.Apply(ctx, rival, request.ID, &models.ApplyRequest{}); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	// A rival translator cannot read someone else's application.
	_, _, err = env.apps.GetApplication(ctx, rival, app.ID)
	mustKind(t, err, KindNotFound)

	// The owner sees both applications, each translator only their own.
	all, err := env.apps.ListByRequest(ctx, requester, request.ID)
	if err != nil {
		t.Fatalf("ListByRequest failed: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("owner should see 2 applications, got %d", len(all))
	}

	own, err := env.apps.ListByRequest(ctx, rival, request.ID)
	if err != nil {
		t.Fatalf("ListByRequest failed: %v", err)
	}
	if len(own) != 1 || own[0].TranslatorID != rival.ID {
		t.Errorf("translator should see only their own application, got %d", len(own))
	}
}
