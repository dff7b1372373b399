package models

import (
	"time"

	"github.com/google/uuid"
)

type ContractStatus string

const (
	ContractStatusDraft             ContractStatus = "DRAFT"
	ContractStatusPendingRequester  ContractStatus = "PENDING_REQUESTER"
	ContractStatusPendingTranslator ContractStatus = "PENDING_TRANSLATOR"
	ContractStatusSigned            ContractStatus = "SIGNED"
	ContractStatusCompleted         ContractStatus = "COMPLETED"
	ContractStatusTerminated        ContractStatus = "TERMINATED"
)

// SignParty identifies which signature slot a sign call fills.
type SignParty string

const (
	SignPartyRequester  SignParty = "REQUESTER"
	SignPartyTranslator SignParty = "TRANSLATOR"
)

// Contract is the binding agreement created from exactly one accepted
// application. Invariant: Status == SIGNED iff both signature flags are set.
type Contract struct {
	ID                 uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	ApplicationID      uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex" json:"application_id"`
	RequestID          uuid.UUID      `gorm:"type:uuid;not null;index" json:"request_id"`
	RequesterID        uint           `gorm:"not null;index" json:"requester_id"`
	TranslatorID       uint           `gorm:"not null;index" json:"translator_id"`
	TotalAmountCents   int64          `gorm:"not null" json:"total_amount_cents"`
	RequesterSigned    bool           `gorm:"not null;default:false" json:"requester_signed"`
	TranslatorSigned   bool           `gorm:"not null;default:false" json:"translator_signed"`
	RequesterSignedAt  *time.Time     `json:"requester_signed_at,omitempty"`
	TranslatorSignedAt *time.Time     `json:"translator_signed_at,omitempty"`
	Status             ContractStatus `gorm:"size:20;not null;default:DRAFT;index" json:"status"`
	Version            int            `gorm:"not null;default:1" json:"version"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
}

func (Contract) TableName() string {
	return "contracts"
}

// FullySigned reports whether both parties have signed.
func (c *Contract) FullySigned() bool {
	return c.RequesterSigned && c.TranslatorSigned
}

// SignedOrLater reports whether the contract has passed the point of no
// return for request cancellation.
func (c *Contract) SignedOrLater() bool {
	return c.Status == ContractStatusSigned || c.Status == ContractStatusCompleted
}
