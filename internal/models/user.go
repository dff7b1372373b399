package models

import (
	"time"
)

type Role string

const (
	RoleRequester  Role = "REQUESTER"
	RoleTranslator Role = "TRANSLATOR"
	RoleReader     Role = "READER"
)

// User represents an authenticated marketplace participant
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Email     string    `gorm:"uniqueIndex;not null" json:"email"`
	Username  string    `gorm:"uniqueIndex;not null" json:"username"`
	Role      Role      `gorm:"size:20;not null;default:READER" json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for User model
func (User) TableName() string {
	return "users"
}

// LoginRequest represents a find-or-create login call
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Username string `json:"username"`
	Role     string `json:"role"` // only honored on first login
}
