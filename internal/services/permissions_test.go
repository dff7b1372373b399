package services

import (
	"testing"

	"translation-market/internal/models"
)

func TestPermissionEvaluator(t *testing.T) {
	perms := NewPermissionEvaluator()

	requester := &models.User{ID: 1, Role: models.RoleRequester}
	translator := &models.User{ID: 2, Role: models.RoleTranslator}
	reader := &models.User{ID: 3, Role: models.RoleReader}

	request := &models.Request{RequesterID: 1}
	foreignRequest := &models.Request{RequesterID: 99}
	app := &models.Application{TranslatorID: 2}
	contract := &models.Contract{RequesterID: 1, TranslatorID: 2}
	milestone := &models.Milestone{TranslatorID: &translator.ID}
	escrow := &models.Escrow{RequesterID: 1}

	tests := []struct {
		name   string
		actor  *models.User
		action Action
		entity interface{}
		want   bool
	}{
		{"nil actor denied", nil, ActionRequestCreate, nil, false},
		{"reader mutates nothing", reader, ActionRequestCreate, nil, false},
		{"reader cannot apply", reader, ActionApplicationCreate, request, false},

		{"requester creates requests", requester, ActionRequestCreate, nil, true},
		{"translator cannot create requests", translator, ActionRequestCreate, nil, false},
		{"owner publishes", requester, ActionRequestPublish, request, true},
		{"non-owner cannot publish", requester, ActionRequestPublish, foreignRequest, false},
		{"owner cancels", requester, ActionRequestCancel, request, true},

		{"translator bids", translator, ActionApplicationCreate, request, true},
		{"no bidding on own request", &models.User{ID: 1, Role: models.RoleTranslator}, ActionApplicationCreate, request, false},
		{"applicant withdraws", translator, ActionApplicationWithdraw, app, true},
		{"non-applicant cannot withdraw", &models.User{ID: 9, Role: models.RoleTranslator}, ActionApplicationWithdraw, app, false},
		{"owner accepts", requester, ActionApplicationAccept, request, true},
		{"translator cannot accept", translator, ActionApplicationAccept, request, false},

		{"requester party signs", requester, ActionContractSign, contract, true},
		{"translator party signs", translator, ActionContractSign, contract, true},
		{"outside translator cannot sign", &models.User{ID: 9, Role: models.RoleTranslator}, ActionContractSign, contract, false},
		{"requester terminates", requester, ActionContractTerminate, contract, true},
		{"translator cannot terminate", translator, ActionContractTerminate, contract, false},

		{"requester manages milestones", requester, ActionMilestoneCreate, contract, true},
		{"translator cannot create milestones", translator, ActionMilestoneCreate, contract, false},
		{"assigned translator starts", translator, ActionMilestoneStart, milestone, true},
		{"unassigned milestone cannot start", translator, ActionMilestoneStart, &models.Milestone{}, false},
		{"requester cannot start work", requester, ActionMilestoneStart, milestone, false},
		{"requester approves", requester, ActionMilestoneApprove, contract, true},
		{"requester pays", requester, ActionMilestonePay, contract, true},

		{"owner funds escrow", requester, ActionEscrowFund, escrow, true},
		{"non-owner cannot fund", &models.User{ID: 9, Role: models.RoleRequester}, ActionEscrowFund, escrow, false},
		{"translator cannot release", translator, ActionEscrowRelease, escrow, false},

		{"wrong entity type denied", requester, ActionRequestPublish, contract, false},
		{"unknown action denied", requester, Action("request.explode"), request, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := perms.Can(tt.actor, tt.action, tt.entity); got != tt.want {
				t.Errorf("Can(%v, %s) = %v, want %v", tt.actor, tt.action, got, tt.want)
			}
		})
	}
}
