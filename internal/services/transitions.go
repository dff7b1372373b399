package services

import (
	"translation-market/internal/models"
)

// Transition tables: current status × action → next status. A missing
// entry is an illegal transition. Contract signing is flag-driven and
// recomputed instead (see recomputeContractStatus); request advancement
// past OPEN is a cascade, never a direct client action.

var requestTransitions = map[models.RequestStatus]map[Action]models.RequestStatus{
	models.RequestStatusDraft: {
		ActionRequestPublish: models.RequestStatusOpen,
		ActionRequestCancel:  models.RequestStatusCancelled,
	},
	models.RequestStatusOpen: {
		ActionRequestCancel: models.RequestStatusCancelled,
	},
	models.RequestStatusReviewing: {
		ActionRequestCancel: models.RequestStatusCancelled,
	},
	models.RequestStatusContracted: {
		ActionRequestCancel: models.RequestStatusCancelled,
	},
}

var applicationTransitions = map[models.ApplicationStatus]map[Action]models.ApplicationStatus{
	models.ApplicationStatusPending: {
		ActionApplicationAccept:   models.ApplicationStatusAccepted,
		ActionApplicationReject:   models.ApplicationStatusRejected,
		ActionApplicationWithdraw: models.ApplicationStatusWithdrawn,
	},
}

var milestoneTransitions = map[models.MilestoneStatus]map[Action]models.MilestoneStatus{
	models.MilestoneStatusPending: {
		ActionMilestoneAssign: models.MilestoneStatusAssigned,
	},
	models.MilestoneStatusAssigned: {
		ActionMilestoneStart: models.MilestoneStatusInProgress,
	},
	models.MilestoneStatusInProgress: {
		ActionMilestoneSubmit: models.MilestoneStatusSubmitted,
	},
	models.MilestoneStatusSubmitted: {
		ActionMilestoneApprove: models.MilestoneStatusApproved,
	},
	models.MilestoneStatusApproved: {
		ActionMilestonePay: models.MilestoneStatusPaid,
	},
}

var escrowTransitions = map[models.EscrowStatus]map[Action]models.EscrowStatus{
	models.EscrowStatusUnfunded: {
		ActionEscrowFund: models.EscrowStatusFunded,
	},
	models.EscrowStatusFunded: {
		ActionEscrowRelease: models.EscrowStatusReleased,
	},
}

func nextRequestStatus(cur models.RequestStatus, action Action) (models.RequestStatus, bool) {
	next, ok := requestTransitions[cur][action]
	return next, ok
}

func nextApplicationStatus(cur models.ApplicationStatus, action Action) (models.ApplicationStatus, bool) {
	next, ok := applicationTransitions[cur][action]
	return next, ok
}

func nextMilestoneStatus(cur models.MilestoneStatus, action Action) (models.MilestoneStatus, bool) {
	next, ok := milestoneTransitions[cur][action]
	return next, ok
}

func nextEscrowStatus(cur models.EscrowStatus, action Action) (models.EscrowStatus, bool) {
	next, ok := escrowTransitions[cur][action]
	return next, ok
}

// recomputeContractStatus derives the signing status from the signature
// flags. SIGNED iff both flags are set; otherwise the status names the
// party whose signature is still missing.
func recomputeContractStatus(c *models.Contract) models.ContractStatus {
	switch {
	case c.RequesterSigned && c.TranslatorSigned:
		return models.ContractStatusSigned
	case c.RequesterSigned:
		return models.ContractStatusPendingTranslator
	case c.TranslatorSigned:
		return models.ContractStatusPendingRequester
	default:
		return models.ContractStatusDraft
	}
}
