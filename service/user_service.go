package service

import (
	"context"
	"database/sql"
	"errors"
	"go-shop-api/model"
	"go-shop-api/repository"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrInvalidRole  = errors.New("invalid role specified")
)

// UserService handles account reads and administrative changes.
type UserService struct {
	userRepo repository.IUserRepository
}

// NewUserService creates a new UserService.
func NewUserService(userRepo repository.IUserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

// GetProfile returns the account behind an authenticated request.
func (s *UserService) GetProfile(ctx context.Context, userID int) (*model.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, storeError(err)
	}
	return user, nil
}

// UpdateUserRole validates the role and calls the repository to update it.
// The new role takes effect with the user's next access token.
func (s *UserService) UpdateUserRole(ctx context.Context, userID int, newRole model.Role) error {
	if newRole != model.RoleAdmin && newRole != model.RoleUser {
		return ErrInvalidRole
	}

	if err := s.userRepo.UpdateRole(ctx, userID, string(newRole)); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrUserNotFound
		}
		return storeError(err)
	}
	return nil
}
