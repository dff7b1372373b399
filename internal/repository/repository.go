package repository

import (
	"context"

	"translation-market/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository is the entity store. All workflow state lives here; services
// mutate it only through these methods so version checks and constraint
// mapping happen in one place.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Transaction runs fn against a transactional copy of the repository.
// A returned error rolls back every write made inside fn.
func (r *Repository) Transaction(ctx context.Context, fn func(tx *Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Repository{db: tx})
	})
}

// CreateUser creates a new user
func (r *Repository) CreateUser(ctx context.Context, user *models.User) error {
	return r.mapErr(r.db.WithContext(ctx).Create(user).Error)
}

// GetUserByID retrieves a user by ID
func (r *Repository) GetUserByID(ctx context.Context, userID uint) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("id = ?", userID).First(&user).Error; err != nil {
		return nil, r.mapErr(err)
	}
	return &user, nil
}

// GetUserByEmail retrieves a user by email
func (r *Repository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, r.mapErr(err)
	}
	return &user, nil
}

// CreateBook creates a new book record
func (r *Repository) CreateBook(ctx context.Context, book *models.Book) error {
	return r.mapErr(r.db.WithContext(ctx).Create(book).Error)
}

// GetBookByID retrieves a book by ID
func (r *Repository) GetBookByID(ctx context.Context, bookID uuid.UUID) (*models.Book, error) {
	var book models.Book
	if err := r.db.WithContext(ctx).Where("id = ?", bookID).First(&book).Error; err != nil {
		return nil, r.mapErr(err)
	}
	return &book, nil
}

// ListBooksByOwner retrieves all books registered by a user
func (r *Repository) ListBooksByOwner(ctx context.Context, ownerID uint) ([]*models.Book, error) {
	var books []*models.Book
	err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Find(&books).Error
	if err != nil {
		return nil, r.mapErr(err)
	}
	return books, nil
}
