package services

import (
	"sort"

	"translation-market/internal/models"
)

// Available-action hints let clients render controls from server-reported
// state instead of re-deriving transition legality. The hint is advisory:
// every transition is still fully guarded server-side.

// AvailableRequestActions lists the transitions the actor could attempt
// on a request in its current status.
func AvailableRequestActions(e *PermissionEvaluator, actor *models.User, request *models.Request) []Action {
	var actions []Action
	for action := range requestTransitions[request.Status] {
		if e.Can(actor, action, request) {
			actions = append(actions, action)
		}
	}
	if e.Can(actor, ActionApplicationCreate, request) &&
		(request.Status == models.RequestStatusOpen || request.Status == models.RequestStatusReviewing) {
		actions = append(actions, ActionApplicationCreate)
	}
	return sorted(actions)
}

// AvailableApplicationActions lists the transitions the actor could
// attempt on an application. The owning request governs accept/reject.
func AvailableApplicationActions(e *PermissionEvaluator, actor *models.User, app *models.Application, request *models.Request) []Action {
	var actions []Action
	for action := range applicationTransitions[app.Status] {
		entity := interface{}(app)
		if action == ActionApplicationAccept || action == ActionApplicationReject {
			entity = request
		}
		if e.Can(actor, action, entity) {
			actions = append(actions, action)
		}
	}
	return sorted(actions)
}

// AvailableContractActions lists sign/terminate options for a contract
func AvailableContractActions(e *PermissionEvaluator, actor *models.User, contract *models.Contract) []Action {
	var actions []Action
	switch contract.Status {
	case models.ContractStatusDraft, models.ContractStatusPendingRequester, models.ContractStatusPendingTranslator:
		if e.Can(actor, ActionContractSign, contract) && !alreadySigned(actor, contract) {
			actions = append(actions, ActionContractSign)
		}
		if e.Can(actor, ActionContractTerminate, contract) {
			actions = append(actions, ActionContractTerminate)
		}
	case models.ContractStatusSigned:
		if e.Can(actor, ActionMilestoneCreate, contract) {
			actions = append(actions, ActionMilestoneCreate)
		}
	}
	return sorted(actions)
}

// AvailableMilestoneActions lists the transitions the actor could attempt
// on a milestone. Creation/assignment/approval are governed by the parent
// contract; work-state transitions by the milestone's assignee.
func AvailableMilestoneActions(e *PermissionEvaluator, actor *models.User, milestone *models.Milestone, contract *models.Contract) []Action {
	var actions []Action
	for action := range milestoneTransitions[milestone.Status] {
		entity := interface{}(contract)
		if action == ActionMilestoneStart || action == ActionMilestoneSubmit {
			entity = milestone
		}
		if e.Can(actor, action, entity) {
			actions = append(actions, action)
		}
	}
	return sorted(actions)
}

// AvailableEscrowActions lists fund/release options for an escrow
func AvailableEscrowActions(e *PermissionEvaluator, actor *models.User, escrow *models.Escrow) []Action {
	var actions []Action
	for action := range escrowTransitions[escrow.Status] {
		if e.Can(actor, action, escrow) {
			actions = append(actions, action)
		}
	}
	return sorted(actions)
}

func alreadySigned(actor *models.User, contract *models.Contract) bool {
	if actor == nil {
		return false
	}
	if actor.ID == contract.RequesterID && actor.Role == models.RoleRequester {
		return contract.RequesterSigned
	}
	if actor.ID == contract.TranslatorID && actor.Role == models.RoleTranslator {
		return contract.TranslatorSigned
	}
	return false
}

func sorted(actions []Action) []Action {
	sort.Slice(actions, func(i, j int) bool { return actions[i] < actions[j] })
	return actions
}
