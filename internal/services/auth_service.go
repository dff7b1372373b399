package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"translation-market/internal/models"
	"translation-market/internal/repository"
	"translation-market/internal/utils"
)

// AuthService handles login. Accounts are created on first login; the
// role is fixed then and never taken from later client assertions.
type AuthService struct {
	repo *repository.Repository
}

func NewAuthService(repo *repository.Repository) *AuthService {
	return &AuthService{repo: repo}
}

// ProcessLogin finds or creates a user by email
func (s *AuthService) ProcessLogin(ctx context.Context, email, username, role string) (*models.User, error) {
	user, err := s.repo.GetUserByEmail(ctx, email)
	if err == nil {
		log.Printf("User logged in: %s (ID: %d, role %s)", email, user.ID, user.Role)
		return user, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, storeErr(err)
	}

	if username == "" {
		username = strings.SplitN(email, "@", 2)[0]
	}

	user = &models.User{
		Email:    email,
		Username: username,
		Role:     parseRole(role),
	}

	if err := s.repo.CreateUser(ctx, user); err != nil {
		if !errors.Is(err, repository.ErrDuplicate) {
			return nil, storeErr(err)
		}
		// Username collision: retry once with a random suffix.
		suffix, genErr := utils.NewReferenceCode()
		if genErr != nil {
			return nil, fmt.Errorf("failed to generate username suffix: %w", genErr)
		}
		user.Username = fmt.Sprintf("%s_%s", username, suffix[:6])
		if err := s.repo.CreateUser(ctx, user); err != nil {
			return nil, storeErr(err)
		}
	}

	log.Printf("New user created: %s (ID: %d, role %s)", email, user.ID, user.Role)
	return user, nil
}

// GetUserByID retrieves a user by their ID
func (s *AuthService) GetUserByID(ctx context.Context, userID uint) (*models.User, error) {
	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, storeErr(err)
	}
	return user, nil
}

func parseRole(role string) models.Role {
	switch models.Role(strings.ToUpper(role)) {
	case models.RoleRequester:
		return models.RoleRequester
	case models.RoleTranslator:
		return models.RoleTranslator
	default:
		return models.RoleReader
	}
}
