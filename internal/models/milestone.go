package models

import (
	"time"

	"github.com/google/uuid"
)

type MilestoneStatus string

const (
	MilestoneStatusPending    MilestoneStatus = "PENDING"
	MilestoneStatusAssigned   MilestoneStatus = "ASSIGNED"
	MilestoneStatusInProgress MilestoneStatus = "IN_PROGRESS"
	MilestoneStatusSubmitted  MilestoneStatus = "SUBMITTED"
	MilestoneStatusApproved   MilestoneStatus = "APPROVED"
	MilestoneStatusPaid       MilestoneStatus = "PAID"
)

// Milestone is an ordinal, payable unit of work under a signed contract.
// Milestones within one contract execute in strict ordinal sequence:
// milestone k+1 cannot start until milestone k is paid.
type Milestone struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	ContractID   uuid.UUID       `gorm:"type:uuid;not null;index:idx_milestones_contract_ordinal" json:"contract_id"`
	Title        string          `gorm:"size:500;not null" json:"title"`
	AmountCents  int64           `gorm:"not null" json:"amount_cents"`
	TranslatorID *uint           `gorm:"index" json:"translator_id,omitempty"`
	Ordinal      int             `gorm:"not null;index:idx_milestones_contract_ordinal" json:"ordinal"`
	Status       MilestoneStatus `gorm:"size:20;not null;default:PENDING;index" json:"status"`
	Version      int             `gorm:"not null;default:1" json:"version"`
	StartedAt    *time.Time      `json:"started_at,omitempty"`
	SubmittedAt  *time.Time      `json:"submitted_at,omitempty"`
	ApprovedAt   *time.Time      `json:"approved_at,omitempty"`
	PaidAt       *time.Time      `json:"paid_at,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

func (Milestone) TableName() string {
	return "milestones"
}

// CreateMilestoneRequest represents a request to define a milestone
type CreateMilestoneRequest struct {
	Title       string `json:"title" binding:"required"`
	AmountCents int64  `json:"amount_cents" binding:"required,gt=0"`
}

// AssignMilestoneRequest binds a translator to a pending milestone
type AssignMilestoneRequest struct {
	TranslatorID uint `json:"translator_id" binding:"required"`
}
