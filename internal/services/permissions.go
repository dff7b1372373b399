package services

import (
	"translation-market/internal/models"
)

// Action names a workflow transition for permission and transition-table
// lookups.
type Action string

const (
	ActionRequestCreate  Action = "request.create"
	ActionRequestPublish Action = "request.publish"
	ActionRequestCancel  Action = "request.cancel"

	ActionApplicationCreate   Action = "application.create"
	ActionApplicationWithdraw Action = "application.withdraw"
	ActionApplicationAccept   Action = "application.accept"
	ActionApplicationReject   Action = "application.reject"

	ActionContractSign      Action = "contract.sign"
	ActionContractTerminate Action = "contract.terminate"

	ActionMilestoneCreate  Action = "milestone.create"
	ActionMilestoneAssign  Action = "milestone.assign"
	ActionMilestoneStart   Action = "milestone.start"
	ActionMilestoneSubmit  Action = "milestone.submit"
	ActionMilestoneApprove Action = "milestone.approve"
	ActionMilestonePay     Action = "milestone.pay"

	ActionEscrowFund    Action = "escrow.fund"
	ActionEscrowRelease Action = "escrow.release"
)

// roleActions is the role gate: which roles may attempt which actions at
// all. Ownership is checked separately; readers mutate nothing.
var roleActions = map[models.Role]map[Action]bool{
	models.RoleRequester: {
		ActionRequestCreate:     true,
		ActionRequestPublish:    true,
		ActionRequestCancel:     true,
		ActionApplicationAccept: true,
		ActionApplicationReject: true,
		ActionContractSign:      true,
		ActionContractTerminate: true,
		ActionMilestoneCreate:   true,
		ActionMilestoneAssign:   true,
		ActionMilestoneApprove:  true,
		ActionMilestonePay:      true,
		ActionEscrowFund:        true,
		ActionEscrowRelease:     true,
	},
	models.RoleTranslator: {
		ActionApplicationCreate:   true,
		ActionApplicationWithdraw: true,
		ActionContractSign:        true,
		ActionMilestoneStart:      true,
		ActionMilestoneSubmit:     true,
	},
}

// PermissionEvaluator answers can(actor, action, entity). It fails closed:
// unknown actions, nil actors and entities owned by someone else all deny.
type PermissionEvaluator struct{}

func NewPermissionEvaluator() *PermissionEvaluator {
	return &PermissionEvaluator{}
}

// Can reports whether the actor may attempt the action against the given
// entity. The entity passed is the one whose ownership governs the action:
// accept/reject take the owning Request, milestone management takes the
// parent Contract, work-state transitions take the Milestone itself.
func (e *PermissionEvaluator) Can(actor *models.User, action Action, entity interface{}) bool {
	if actor == nil {
		return false
	}
	if !roleActions[actor.Role][action] {
		return false
	}

	switch action {
	case ActionRequestCreate:
		return true

	case ActionApplicationCreate:
		// Translators may bid on any request except their own.
		req, ok := entity.(*models.Request)
		return ok && req.RequesterID != actor.ID

	case ActionRequestPublish, ActionRequestCancel, ActionApplicationAccept, ActionApplicationReject:
		req, ok := entity.(*models.Request)
		return ok && req.RequesterID == actor.ID

	case ActionApplicationWithdraw:
		app, ok := entity.(*models.Application)
		return ok && app.TranslatorID == actor.ID

	case ActionContractSign:
		contract, ok := entity.(*models.Contract)
		if !ok {
			return false
		}
		if actor.Role == models.RoleRequester {
			return contract.RequesterID == actor.ID
		}
		return contract.TranslatorID == actor.ID

	case ActionContractTerminate, ActionMilestoneCreate, ActionMilestoneAssign,
		ActionMilestoneApprove, ActionMilestonePay:
		contract, ok := entity.(*models.Contract)
		return ok && contract.RequesterID == actor.ID

	case ActionMilestoneStart, ActionMilestoneSubmit:
		milestone, ok := entity.(*models.Milestone)
		return ok && milestone.TranslatorID != nil && *milestone.TranslatorID == actor.ID

	case ActionEscrowFund, ActionEscrowRelease:
		escrow, ok := entity.(*models.Escrow)
		return ok && escrow.RequesterID == actor.ID
	}

	return false
}
