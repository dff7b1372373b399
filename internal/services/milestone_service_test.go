package services

import (
	"context"
	"testing"

	"translation-market/internal/models"
)

func TestMilestoneRequiresSignedContract(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	requester := createUser(t, env.db, models.RoleRequester)
	translator := createUser(t, env.db, models.RoleTranslator)

	_, _, contract := acceptedContract(t, env, requester, translator)

	_, err := env.milestones.Create(ctx, requester, contract.ID, &models.CreateMilestoneRequest{
		Title:       "Chapters 1-5",
		AmountCents: 100000,
	})
	mustKind(t, err, KindInvalidTransition)
}

func TestMilestoneOrdinalsAreSequential(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	requester := createUser(t, env.db, models.RoleRequester)
	translator := createUser(t, env.db, models.RoleTranslator)

	_, contract := signedContract(t, env, requester, translator)

	for want := 1; want <= 3; want++ {
		milestone, err := env.milestones.Create(ctx, requester, contract.ID, &models.CreateMilestoneRequest{
			Title:       "Part",
			AmountCents: 100000,
		})
		if err != nil {
			t.Fatalf("Create milestone %d failed: %v", want, err)
		}
		if milestone.Ordinal != want {
			t.Errorf("milestone ordinal %d, want %d", milestone.Ordinal, want)
		}
	}
}

func TestAssignGuards(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	requester := createUser(t, env.db, models.RoleRequester)
	translator := createUser(t, env.db, models.RoleTranslator)
	outsider := createUser(t, env.db, models.RoleTranslator)

	_, contract := signedContract(t, env, requester, translator)
	milestone, err := env.milestones.Create(ctx, requester, contract.ID, &models.CreateMilestoneRequest{
		Title:       "Chapters 1-5",
		AmountCents: 100000,
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	// Only the contract's translator can be assigned.
	_, err = env.milestones.Assign(ctx, requester, milestone.ID, outsider.ID)
	mustKind(t, err, KindInvalidTransition)

	if _, err := env.milestones.Assign(ctx, requester, milestone.ID, translator.ID); err != nil {
		t.Fatalf("Assign failed: %v", err)
	}

	// Assigning twice fails.
	_, err = env.milestones.Assign(ctx, requester, milestone.ID, translator.ID)
	mustKind(t, err, KindInvalidTransition)
}

func TestPreviousMilestoneMustBePaidFirst(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	requester := createUser(t, env.db, models.RoleRequester)
	translator := createUser(t, env.db, models.RoleTranslator)

	_, contract := signedContract(t, env, requester, translator)

	first, err := env.milestones.Create(ctx, requester, contract.ID, &models.CreateMilestoneRequest{
		Title:       "Chapters 1-5",
		AmountCents: 100000,
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	second, err := env.milestones.Create(ctx, requester, contract.ID, &models.CreateMilestoneRequest{
		Title:       "Chapters 6-10",
		AmountCents: 100000,
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if _, err := env.milestones.Assign(ctx, requester, first.ID, translator.ID); err != nil {
		t.Fatalf("Assign failed: %v", err)
	}
	if _, err := env.milestones.Assign(ctx, requester, second.ID, translator.ID); err != nil {
		t.Fatalf("Assign failed: %v", err)
	}

	// The second milestone cannot start while the first is unpaid.
	_, err = env.milestones.Start(ctx, translator, second.ID)
	mustKind(t, err, KindInvalidTransition)

	if _, err := env.milestones.Start(ctx, translator, first.ID); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if _, err := env.milestones.Submit(ctx, translator, first.ID); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if _, err := env.milestones.Approve(ctx, requester, first.ID); err != nil {
		t.Fatalf("Approve failed: %v", err)
	}

	// Approved is still not paid.
	_, err = env.milestones.Start(ctx, translator, second.ID)
	mustKind(t, err, KindInvalidTransition)

	if _, err := env.milestones.MarkPaid(ctx, requester, first.ID); err != nil {
		t.Fatalf("MarkPaid failed: %v", err)
	}
	if _, err := env.milestones.Start(ctx, translator, second.ID); err != nil {
		t.Fatalf("Start after predecessor paid failed: %v", err)
	}

	// Paying the first of two milestones must not complete the contract.
	contract, _, err = env.contracts.GetContract(ctx, requester, contract.ID)
	if err != nil {
		t.Fatalf("GetContract failed: %v", err)
	}
	if contract.Status != models.ContractStatusSigned {
		t.Errorf("contract should stay SIGNED with unpaid milestones, got %s", contract.Status)
	}
}

func TestWorkTransitionsBelongToAssignedTranslator(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	requester := createUser(t, env.db, models.RoleRequester)
	translator := createUser(t, env.db, models.RoleTranslator)
	outsider := createUser(t, env.db, models.RoleTranslator)

	_, contract := signedContract(t, env, requester, translator)
	milestone, err := env.milestones.Create(ctx, requester, contract.ID, &models.CreateMilestoneRequest{
		Title:       "Chapters 1-5",
		AmountCents: 100000,
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := env.milestones.Assign(ctx, requester, milestone.ID, translator.ID); err != nil {
		t.Fatalf("Assign failed: %v", err)
	}

	// A different translator cannot start someone else's milestone.
	_, err = env.milestones.Start(ctx, outsider, milestone.ID)
	mustKind(t, err, KindPermissionDenied)

	// The requester cannot start work either.
	_, err = env.milestones.Start(ctx, requester, milestone.ID)
	mustKind(t, err, KindPermissionDenied)

	if _, err := env.milestones.Start(ctx, translator, milestone.ID); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	// Review-side actions are the requester's.
	_, err = env.milestones.Approve(ctx, translator, milestone.ID)
	mustKind(t, err, KindPermissionDenied)
}

func TestMilestoneStrictStatusOrder(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	requester := createUser(t, env.db, models.RoleRequester)
	translator := createUser(t, env.db, models.RoleTranslator)

	_, contract := signedContract(t, env, requester, translator)
	milestone, err := env.milestones.Create(ctx, requester, contract.ID, &models.CreateMilestoneRequest{
		Title:       "Chapters 1-5",
		AmountCents: 100000,
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := env.milestones.Assign(ctx, requester, milestone.ID, translator.ID); err != nil {
		t.Fatalf("Assign failed: %v", err)
	}

	// Submit before start, approve before submit, pay before approve: all
	// rejected.
	_, err = env.milestones.Submit(ctx, translator, milestone.ID)
	mustKind(t, err, KindInvalidTransition)
	_, err = env.milestones.Approve(ctx, requester, milestone.ID)
	mustKind(t, err, KindInvalidTransition)
	_, err = env.milestones.MarkPaid(ctx, requester, milestone.ID)
	mustKind(t, err, KindInvalidTransition)
}

func TestMilestoneHiddenFromNonParties(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	requester := createUser(t, env.db, models.RoleRequester)
	translator := createUser(t, env.db, models.RoleTranslator)
	stranger := createUser(t, env.db, models.RoleReader)

	_, contract := signedContract(t, env, requester, translator)
	milestone, err := env.milestones.Create(ctx, requester, contract.ID, &models.CreateMilestoneRequest{
		Title:       "Chapters 1-5",
		AmountCents: 100000,
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	_, _, err = env.milestones.GetMilestone(ctx, stranger, milestone.ID)
	mustKind(t, err, KindNotFound)

	_, err = env.milestones.ListByContract(ctx, stranger, contract.ID)
	mustKind(t, err, KindNotFound)
}
