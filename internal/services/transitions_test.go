package services

import (
	"testing"

	"translation-market/internal/models"
)

func TestRequestTransitionTable(t *testing.T) {
	tests := []struct {
		from   models.RequestStatus
		action Action
		want   models.RequestStatus
		ok     bool
	}{
		{models.RequestStatusDraft, ActionRequestPublish, models.RequestStatusOpen, true},
		{models.RequestStatusDraft, ActionRequestCancel, models.RequestStatusCancelled, true},
		{models.RequestStatusOpen, ActionRequestCancel, models.RequestStatusCancelled, true},
		{models.RequestStatusReviewing, ActionRequestCancel, models.RequestStatusCancelled, true},
		{models.RequestStatusContracted, ActionRequestCancel, models.RequestStatusCancelled, true},
		{models.RequestStatusOpen, ActionRequestPublish, "", false},
		{models.RequestStatusInProgress, ActionRequestCancel, "", false},
		{models.RequestStatusCompleted, ActionRequestCancel, "", false},
		{models.RequestStatusCancelled, ActionRequestPublish, "", false},
	}
	for _, tt := range tests {
		next, ok := nextRequestStatus(tt.from, tt.action)
		if ok != tt.ok || (ok && next != tt.want) {
			t.Errorf("nextRequestStatus(%s, %s) = (%s, %v), want (%s, %v)",
				tt.from, tt.action, next, ok, tt.want, tt.ok)
		}
	}
}

func TestMilestoneTransitionsAreLinear(t *testing.T) {
	order := []models.MilestoneStatus{
		models.MilestoneStatusPending,
		models.MilestoneStatusAssigned,
		models.MilestoneStatusInProgress,
		models.MilestoneStatusSubmitted,
		models.MilestoneStatusApproved,
		models.MilestoneStatusPaid,
	}
	actions := []Action{
		ActionMilestoneAssign,
		ActionMilestoneStart,
		ActionMilestoneSubmit,
		ActionMilestoneApprove,
		ActionMilestonePay,
	}

	for i, action := range actions {
		next, ok := nextMilestoneStatus(order[i], action)
		if !ok || next != order[i+1] {
			t.Errorf("nextMilestoneStatus(%s, %s) = (%s, %v), want (%s, true)",
				order[i], action, next, ok, order[i+1])
		}
		// Every status admits exactly its one forward action.
		if got := len(milestoneTransitions[order[i]]); got != 1 {
			t.Errorf("status %s admits %d actions, want 1", order[i], got)
		}
	}
	if len(milestoneTransitions[models.MilestoneStatusPaid]) != 0 {
		t.Error("PAID must be terminal")
	}
}

func TestRecomputeContractStatus(t *testing.T) {
	tests := []struct {
		requester, translator bool
		want                  models.ContractStatus
	}{
		{false, false, models.ContractStatusDraft},
		{true, false, models.ContractStatusPendingTranslator},
		{false, true, models.ContractStatusPendingRequester},
		{true, true, models.ContractStatusSigned},
	}
	for _, tt := range tests {
		c := &models.Contract{RequesterSigned: tt.requester, TranslatorSigned: tt.translator}
		if got := recomputeContractStatus(c); got != tt.want {
			t.Errorf("recomputeContractStatus(req=%v, tr=%v) = %s, want %s",
				tt.requester, tt.translator, got, tt.want)
		}
	}
}

func TestAvailableActionsHints(t *testing.T) {
	perms := NewPermissionEvaluator()
	requester := &models.User{ID: 1, Role: models.RoleRequester}
	translator := &models.User{ID: 2, Role: models.RoleTranslator}

	request := &models.Request{RequesterID: 1, Status: models.RequestStatusOpen}
	if actions := AvailableRequestActions(perms, requester, request); len(actions) != 1 || actions[0] != ActionRequestCancel {
		t.Errorf("owner on OPEN request: got %v, want [request.cancel]", actions)
	}
	if actions := AvailableRequestActions(perms, translator, request); len(actions) != 1 || actions[0] != ActionApplicationCreate {
		t.Errorf("translator on OPEN request: got %v, want [application.create]", actions)
	}

	contract := &models.Contract{
		RequesterID:     1,
		TranslatorID:    2,
		RequesterSigned: true,
		Status:          models.ContractStatusPendingTranslator,
	}
	// Requester already signed: only terminate remains for them.
	if actions := AvailableContractActions(perms, requester, contract); len(actions) != 1 || actions[0] != ActionContractTerminate {
		t.Errorf("signed requester: got %v, want [contract.terminate]", actions)
	}
	if actions := AvailableContractActions(perms, translator, contract); len(actions) != 1 || actions[0] != ActionContractSign {
		t.Errorf("pending translator: got %v, want [contract.sign]", actions)
	}

	signed := &models.Contract{RequesterID: 1, TranslatorID: 2, Status: models.ContractStatusSigned}
	if actions := AvailableContractActions(perms, requester, signed); len(actions) != 1 || actions[0] != ActionMilestoneCreate {
		t.Errorf("signed contract owner: got %v, want [milestone.create]", actions)
	}
}
