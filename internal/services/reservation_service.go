package services

import (
	"context"
	"fmt"

	"github.com/restaurantbooking/backend/internal/apperrors"
	"github.com/restaurantbooking/backend/internal/models"
	"github.com/restaurantbooking/backend/internal/policy"
	"go.uber.org/zap"
)

// ReservationRepository is the interface that wraps methods for Reservations table data access
type ReservationRepository interface {
	// Method CreateWithinQuota inserts "reservation" if "admit" accepts the owner's current reservation count.
	//
	// The count and the insert happen in one transaction holding a lock on the owner,
	// so "admit" always sees a count no concurrent creation can change.
	// An error returned by "admit" is returned as is and nothing is inserted.
	CreateWithinQuota(ctx context.Context, reservation *models.Reservation, admit func(count int) error) error
	// Method GetByID retrieves a reservation with its restaurant summary or returns a not found error.
	GetByID(ctx context.Context, id int) (*models.Reservation, error)
	// Method List retrieves the reservations matching "filter", zero filter fields match anything.
	List(ctx context.Context, filter models.ReservationFilter) ([]models.Reservation, error)
	// Method Update updates the non-nil fields of a reservation.
	Update(ctx context.Context, id int, req *models.UpdateReservationRequest) error
	// Method Delete removes a reservation or returns a not found error.
	Delete(ctx context.Context, id int) error
}

// RestaurantReader looks up restaurants
type RestaurantReader interface {
	GetByID(ctx context.Context, id int) (*models.Restaurant, error)
}

// ConfirmationEnqueuer schedules the confirmation email of a new reservation
type ConfirmationEnqueuer interface {
	EnqueueConfirmation(ctx context.Context, reservationID int) error
}

type reservationService struct {
	repo        ReservationRepository
	restaurants RestaurantReader
	enqueuer    ConfirmationEnqueuer
	logger      *zap.Logger
}

// NewReservationService creates a new reservation service
func NewReservationService(
	repo ReservationRepository,
	restaurants RestaurantReader,
	enqueuer ConfirmationEnqueuer,
	logger *zap.Logger,
) *reservationService {
	return &reservationService{
		repo:        repo,
		restaurants: restaurants,
		enqueuer:    enqueuer,
		logger:      logger,
	}
}

// List returns the reservations visible to principal.
// Non-admins only see their own, restaurantID narrows the result when not zero.
func (s *reservationService) List(ctx context.Context, principal models.Principal, restaurantID int) ([]models.Reservation, error) {
	filter := models.ReservationFilter{RestaurantID: restaurantID}
	if !principal.IsAdmin() {
		filter.UserID = principal.UserID
	}

	if restaurantID != 0 {
		if _, err := s.restaurants.GetByID(ctx, restaurantID); err != nil {
			return nil, fmt.Errorf("failed to get restaurant: %w", err)
		}
	}

	reservations, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list reservations: %w", err)
	}

	return reservations, nil
}

// Get returns a reservation the principal may read
func (s *reservationService) Get(ctx context.Context, principal models.Principal, id int) (*models.Reservation, error) {
	reservation, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get reservation: %w", err)
	}

	if !policy.CanRead(principal, reservation.UserID) {
		return nil, apperrors.Authorization("User %d is not authorized to access this reservation", principal.UserID)
	}

	return reservation, nil
}

// Create books restaurantID for the principal, subject to the reservation quota.
// Reservations are always created for the principal, admins included.
func (s *reservationService) Create(ctx context.Context, principal models.Principal, restaurantID int, req *models.CreateReservationRequest) (*models.Reservation, error) {
	if req.ResvDate == nil || req.ResvDate.IsZero() {
		return nil, apperrors.Validation("Please add a reservation date")
	}

	restaurant, err := s.restaurants.GetByID(ctx, restaurantID)
	if err != nil {
		return nil, fmt.Errorf("failed to get restaurant: %w", err)
	}

	reservation := &models.Reservation{
		UserID:       principal.UserID,
		RestaurantID: restaurant.ID,
		ResvDate:     req.ResvDate.UTC(),
	}

	admit := func(count int) error {
		if !policy.CanCreate(principal, count) {
			return apperrors.QuotaExceeded("The user with ID %d has already made %d reservations",
				principal.UserID, policy.MaxActiveReservations)
		}
		return nil
	}

	if err := s.repo.CreateWithinQuota(ctx, reservation, admit); err != nil {
		return nil, fmt.Errorf("failed to create reservation: %w", err)
	}

	reservation.Restaurant = &models.RestaurantSummary{
		ID:       restaurant.ID,
		Name:     restaurant.Name,
		Province: restaurant.Province,
		Phone:    restaurant.Phone,
	}

	// The reservation exists at this point, a lost email must not fail the request
	if err := s.enqueuer.EnqueueConfirmation(ctx, reservation.ID); err != nil {
		s.logger.Warn("failed to enqueue reservation confirmation",
			zap.Int("reservation_id", reservation.ID), zap.Error(err))
	}

	s.logger.Info("reservation created",
		zap.Int("reservation_id", reservation.ID),
		zap.Int("user_id", reservation.UserID),
		zap.Int("restaurant_id", reservation.RestaurantID),
	)
	return reservation, nil
}

// Update changes the date or restaurant of a reservation the principal may write
func (s *reservationService) Update(ctx context.Context, principal models.Principal, id int, req *models.UpdateReservationRequest) (*models.Reservation, error) {
	if req.Empty() {
		return nil, apperrors.Validation("Please provide resvDate or restaurantId to update")
	}
	if req.ResvDate != nil {
		if req.ResvDate.IsZero() {
			return nil, apperrors.Validation("Please add a reservation date")
		}
		utc := req.ResvDate.UTC()
		req.ResvDate = &utc
	}

	reservation, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get reservation: %w", err)
	}

	if !policy.CanWrite(principal, reservation.UserID) {
		return nil, apperrors.Authorization("User %d is not authorized to update this reservation", principal.UserID)
	}

	if req.RestaurantID != nil {
		if _, err := s.restaurants.GetByID(ctx, *req.RestaurantID); err != nil {
			return nil, fmt.Errorf("failed to get restaurant: %w", err)
		}
	}

	if err := s.repo.Update(ctx, id, req); err != nil {
		return nil, fmt.Errorf("failed to update reservation: %w", err)
	}

	updated, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get reservation: %w", err)
	}
	return updated, nil
}

// Delete removes a reservation the principal may write
func (s *reservationService) Delete(ctx context.Context, principal models.Principal, id int) error {
	reservation, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get reservation: %w", err)
	}

	if !policy.CanWrite(principal, reservation.UserID) {
		return apperrors.Authorization("User %d is not authorized to delete this reservation", principal.UserID)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete reservation: %w", err)
	}

	return nil
}
