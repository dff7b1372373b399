package models

import (
	"time"

	"github.com/google/uuid"
)

type RequestStatus string

const (
	RequestStatusDraft      RequestStatus = "DRAFT"
	RequestStatusOpen       RequestStatus = "OPEN"
	RequestStatusReviewing  RequestStatus = "REVIEWING"
	RequestStatusContracted RequestStatus = "CONTRACTED"
	RequestStatusInProgress RequestStatus = "IN_PROGRESS"
	RequestStatusCompleted  RequestStatus = "COMPLETED"
	RequestStatusCancelled  RequestStatus = "CANCELLED"
)

// Request is a requester's published need to translate a book into a
// target language. Status is derived from the contracts underneath it and
// is never set directly by a client.
type Request struct {
	ID             uuid.UUID     `gorm:"type:uuid;primaryKey" json:"id"`
	ReferenceCode  string        `gorm:"size:32;uniqueIndex;not null" json:"reference_code"`
	RequesterID    uint          `gorm:"not null;index:idx_requests_requester_book,priority:1" json:"requester_id"`
	BookID         uuid.UUID     `gorm:"type:uuid;not null;index:idx_requests_requester_book,priority:2" json:"book_id"`
	SourceLanguage string        `gorm:"size:10;not null" json:"source_language"`
	TargetLanguage string        `gorm:"size:10;not null" json:"target_language"`
	BudgetCents    int64         `gorm:"not null" json:"budget_cents"`
	Deadline       *time.Time    `json:"deadline"`
	Status         RequestStatus `gorm:"size:20;not null;default:DRAFT;index" json:"status"`
	Version        int           `gorm:"not null;default:1" json:"version"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
	CancelledAt    *time.Time    `json:"cancelled_at,omitempty"`
}

func (Request) TableName() string {
	return "requests"
}

// Terminal reports whether the request can no longer change state.
func (r *Request) Terminal() bool {
	return r.Status == RequestStatusCompleted || r.Status == RequestStatusCancelled
}

// CreateRequestRequest represents a request to create a translation request
type CreateRequestRequest struct {
	BookID         string     `json:"book_id" binding:"required"`
	SourceLanguage string     `json:"source_language" binding:"required"`
	TargetLanguage string     `json:"target_language" binding:"required"`
	BudgetCents    int64      `json:"budget_cents" binding:"required,gt=0"`
	Deadline       *time.Time `json:"deadline"`
}
