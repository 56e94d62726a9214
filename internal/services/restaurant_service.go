package services

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/restaurantbooking/backend/internal/apperrors"
	"github.com/restaurantbooking/backend/internal/models"
	"github.com/restaurantbooking/backend/internal/query"
	"go.uber.org/zap"
)

// RestaurantRepository is the interface that wraps methods for Restaurants table data access
type RestaurantRepository interface {
	// Method Create inserts a new restaurant, a duplicate name is reported as a validation error.
	Create(ctx context.Context, restaurant *models.Restaurant) error
	// Method GetByID retrieves a restaurant or returns a not found error.
	GetByID(ctx context.Context, id int) (*models.Restaurant, error)
	List(ctx context.Context, spec query.Spec) ([]models.Restaurant, error)
	Count(ctx context.Context, spec query.Spec) (int, error)
	// Method Update updates the non-nil fields of a restaurant.
	Update(ctx context.Context, id int, req *models.UpdateRestaurantRequest) error
	// Method Delete removes a restaurant and its reservations atomically.
	Delete(ctx context.Context, id int) error
}

type restaurantService struct {
	repo   RestaurantRepository
	logger *zap.Logger
}

// NewRestaurantService creates a new restaurant service
func NewRestaurantService(repo RestaurantRepository, logger *zap.Logger) *restaurantService {
	return &restaurantService{
		repo:   repo,
		logger: logger,
	}
}

// List returns one page of restaurants and the total number of matches
func (s *restaurantService) List(ctx context.Context, spec query.Spec) ([]models.Restaurant, int, error) {
	restaurants, err := s.repo.List(ctx, spec)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list restaurants: %w", err)
	}

	total, err := s.repo.Count(ctx, spec)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count restaurants: %w", err)
	}

	return restaurants, total, nil
}

// Get returns a single restaurant
func (s *restaurantService) Get(ctx context.Context, id int) (*models.Restaurant, error) {
	restaurant, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get restaurant: %w", err)
	}
	return restaurant, nil
}

// Create validates and stores a new restaurant
func (s *restaurantService) Create(ctx context.Context, req *models.CreateRestaurantRequest) (*models.Restaurant, error) {
	restaurant := &models.Restaurant{
		Name:       strings.TrimSpace(req.Name),
		Address:    strings.TrimSpace(req.Address),
		District:   strings.TrimSpace(req.District),
		Province:   strings.TrimSpace(req.Province),
		PostalCode: strings.TrimSpace(req.PostalCode),
		Phone:      strings.TrimSpace(req.Phone),
		Hours:      strings.TrimSpace(req.Hours),
	}

	required := []struct {
		name  string
		value string
	}{
		{"name", restaurant.Name},
		{"address", restaurant.Address},
		{"district", restaurant.District},
		{"province", restaurant.Province},
		{"postalcode", restaurant.PostalCode},
		{"hours", restaurant.Hours},
	}
	for _, f := range required {
		if f.value == "" {
			return nil, apperrors.Validation("Please add a %s", f.name)
		}
	}
	if err := validateRestaurantLimits(restaurant.Name, restaurant.PostalCode); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, restaurant); err != nil {
		return nil, fmt.Errorf("failed to create restaurant: %w", err)
	}

	s.logger.Info("restaurant created", zap.Int("restaurant_id", restaurant.ID))
	return s.Get(ctx, restaurant.ID)
}

// Update changes the provided restaurant fields and returns the updated restaurant
func (s *restaurantService) Update(ctx context.Context, id int, req *models.UpdateRestaurantRequest) (*models.Restaurant, error) {
	if req.Empty() {
		return nil, apperrors.Validation("Please provide at least one field to update")
	}

	fields := []struct {
		name     string
		value    *string
		optional bool
	}{
		{"name", req.Name, false},
		{"address", req.Address, false},
		{"district", req.District, false},
		{"province", req.Province, false},
		{"postalcode", req.PostalCode, false},
		{"phone", req.Phone, true},
		{"hours", req.Hours, false},
	}
	for _, f := range fields {
		if f.value == nil {
			continue
		}
		*f.value = strings.TrimSpace(*f.value)
		if *f.value == "" && !f.optional {
			return nil, apperrors.Validation("Please add a %s", f.name)
		}
	}

	var name, postalCode string
	if req.Name != nil {
		name = *req.Name
	}
	if req.PostalCode != nil {
		postalCode = *req.PostalCode
	}
	if err := validateRestaurantLimits(name, postalCode); err != nil {
		return nil, err
	}

	// Report a missing restaurant as 404 rather than a silent no-op update
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, id, req); err != nil {
		return nil, fmt.Errorf("failed to update restaurant: %w", err)
	}

	return s.Get(ctx, id)
}

// Delete removes a restaurant and all of its reservations
func (s *restaurantService) Delete(ctx context.Context, id int) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete restaurant: %w", err)
	}

	s.logger.Info("restaurant deleted", zap.Int("restaurant_id", id))
	return nil
}

func validateRestaurantLimits(name, postalCode string) error {
	if utf8.RuneCountInString(name) > models.RestaurantNameMaxLength {
		return apperrors.Validation("Name can not be more than %d characters", models.RestaurantNameMaxLength)
	}
	if utf8.RuneCountInString(postalCode) > models.PostalCodeMaxLength {
		return apperrors.Validation("Postal Code can not be more than %d digits", models.PostalCodeMaxLength)
	}
	return nil
}
