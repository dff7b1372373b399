package models

import (
	"time"

	"github.com/google/uuid"
)

type EscrowStatus string

const (
	EscrowStatusUnfunded EscrowStatus = "UNFUNDED"
	EscrowStatusFunded   EscrowStatus = "FUNDED"
	EscrowStatusReleased EscrowStatus = "RELEASED"
)

// Escrow holds funds against a contract. ContractID is nullable so an
// escrow can also stand alone.
type Escrow struct {
	ID          uuid.UUID    `gorm:"type:uuid;primaryKey" json:"id"`
	ContractID  *uuid.UUID   `gorm:"type:uuid;uniqueIndex" json:"contract_id,omitempty"`
	RequesterID uint         `gorm:"not null;index" json:"requester_id"`
	AmountCents int64        `gorm:"not null" json:"amount_cents"`
	Status      EscrowStatus `gorm:"size:20;not null;default:UNFUNDED;index" json:"status"`
	Version     int          `gorm:"not null;default:1" json:"version"`
	FundedAt    *time.Time   `json:"funded_at,omitempty"`
	ReleasedAt  *time.Time   `json:"released_at,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

func (Escrow) TableName() string {
	return "escrows"
}

// CreateEscrowRequest funds a standalone escrow not yet tied to a contract
type CreateEscrowRequest struct {
	AmountCents int64 `json:"amount_cents" binding:"required,gt=0"`
}
