package models

import (
	"time"

	"github.com/google/uuid"
)

type EntityType string

const (
	EntityTypeRequest     EntityType = "REQUEST"
	EntityTypeApplication EntityType = "APPLICATION"
	EntityTypeContract    EntityType = "CONTRACT"
	EntityTypeEscrow      EntityType = "ESCROW"
	EntityTypeMilestone   EntityType = "MILESTONE"
)

// DomainEvent records one successful workflow transition. Seq is the
// database insert order; events for the same entity are delivered to
// subscribers in Seq order.
type DomainEvent struct {
	Seq        int64      `gorm:"primaryKey;autoIncrement" json:"seq"`
	EntityType EntityType `gorm:"size:20;not null;index" json:"entity_type"`
	EntityID   uuid.UUID  `gorm:"type:uuid;not null;index" json:"entity_id"`
	FromStatus string     `gorm:"size:30;not null" json:"from_status"`
	ToStatus   string     `gorm:"size:30;not null" json:"to_status"`
	ActorID    uint       `gorm:"not null;index" json:"actor_id"`
	RequestID  uuid.UUID  `gorm:"type:uuid;not null;index" json:"request_id"`
	CreatedAt  time.Time  `json:"created_at"`
}

func (DomainEvent) TableName() string {
	return "domain_events"
}
