package models

import (
	"time"

	"github.com/google/uuid"
)

// Book is a work a requester wants translated. Requests reference books
// owned by the same requester.
type Book struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	OwnerID   uint      `gorm:"not null;index" json:"owner_id"`
	Title     string    `gorm:"size:500;not null" json:"title"`
	Author    string    `gorm:"size:255" json:"author"`
	Language  string    `gorm:"size:10;not null" json:"language"`
	CreatedAt time.Time `json:"created_at"`
}

func (Book) TableName() string {
	return "books"
}

// CreateBookRequest represents a request to register a book
type CreateBookRequest struct {
	Title    string `json:"title" binding:"required"`
	Author   string `json:"author"`
	Language string `json:"language" binding:"required"`
}
