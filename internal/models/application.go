package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ApplicationStatus string

const (
	ApplicationStatusPending   ApplicationStatus = "PENDING"
	ApplicationStatusAccepted  ApplicationStatus = "ACCEPTED"
	ApplicationStatusRejected  ApplicationStatus = "REJECTED"
	ApplicationStatusWithdrawn ApplicationStatus = "WITHDRAWN"
)

// Application is a translator's bid against an open request. A translator
// may hold at most one non-withdrawn application per request.
type Application struct {
	ID           uuid.UUID         `gorm:"type:uuid;primaryKey" json:"id"`
	RequestID    uuid.UUID         `gorm:"type:uuid;not null;index:idx_applications_request_translator" json:"request_id"`
	TranslatorID uint              `gorm:"not null;index:idx_applications_request_translator" json:"translator_id"`
	CoverLetter  string            `gorm:"type:text" json:"cover_letter"`
	ProposedRate decimal.Decimal   `gorm:"type:decimal(10,4)" json:"proposed_rate"` // per-word rate
	Status       ApplicationStatus `gorm:"size:20;not null;default:PENDING;index" json:"status"`
	Version      int               `gorm:"not null;default:1" json:"version"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

func (Application) TableName() string {
	return "applications"
}

// Terminal reports whether the application can no longer change state.
func (a *Application) Terminal() bool {
	return a.Status != ApplicationStatusPending
}

// ApplyRequest represents a translator's bid payload
type ApplyRequest struct {
	CoverLetter  string          `json:"cover_letter"`
	ProposedRate decimal.Decimal `json:"proposed_rate"`
}
