package services

import (
	"context"
	"fmt"

	"github.com/restaurantbooking/backend/internal/apperrors"
	"github.com/restaurantbooking/backend/internal/models"
	"github.com/restaurantbooking/backend/internal/query"
	"go.uber.org/zap"
)

// userService implements the admin user management operations
type userService struct {
	repo   UserRepository
	logger *zap.Logger
}

// NewUserService creates a new user service
func NewUserService(repo UserRepository, logger *zap.Logger) *userService {
	return &userService{
		repo:   repo,
		logger: logger,
	}
}

// List returns one page of users and the total number of matches
func (s *userService) List(ctx context.Context, spec query.Spec) ([]models.User, int, error) {
	users, err := s.repo.List(ctx, spec)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}

	total, err := s.repo.Count(ctx, spec)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}

	return users, total, nil
}

// Get returns a single user
func (s *userService) Get(ctx context.Context, id int) (*models.User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// Delete removes a user and all of their reservations.
// Admins remove their own account through the account endpoint instead.
func (s *userService) Delete(ctx context.Context, principal models.Principal, id int) error {
	if principal.UserID == id {
		return apperrors.Validation("Use the delete account endpoint to remove your own account")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	s.logger.Info("user deleted by admin", zap.Int("user_id", id), zap.Int("admin_id", principal.UserID))
	return nil
}
