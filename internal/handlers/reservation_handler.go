package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	authmw "github.com/restaurantbooking/backend/internal/auth/middleware"
	"github.com/restaurantbooking/backend/internal/apperrors"
	"github.com/restaurantbooking/backend/internal/models"
	"go.uber.org/zap"
)

// ReservationService is the interface that wraps methods for reservation business logic.
// Every method acts on behalf of "principal".
type ReservationService interface {
	List(ctx context.Context, principal models.Principal, restaurantID int) ([]models.Reservation, error)
	Get(ctx context.Context, principal models.Principal, id int) (*models.Reservation, error)
	Create(ctx context.Context, principal models.Principal, restaurantID int, req *models.CreateReservationRequest) (*models.Reservation, error)
	Update(ctx context.Context, principal models.Principal, id int, req *models.UpdateReservationRequest) (*models.Reservation, error)
	Delete(ctx context.Context, principal models.Principal, id int) error
}

// ReservationHandler handles HTTP requests for reservations
type ReservationHandler struct {
	BaseHandler
	reservationService ReservationService
}

// NewReservationHandler creates a new reservation handler
func NewReservationHandler(reservationService ReservationService, logger *zap.Logger) *ReservationHandler {
	return &ReservationHandler{
		BaseHandler:        BaseHandler{logger: logger},
		reservationService: reservationService,
	}
}

// RegisterRoutes registers the top-level reservation routes.
// All routes require authentication.
func (h *ReservationHandler) RegisterRoutes(r chi.Router, authMiddleware Middleware) {
	r.Route("/reservations", func(r chi.Router) {
		r.Use(authMiddleware)
		r.Get("/", h.List)
		r.Get("/{id}", h.Get)
		r.Put("/{id}", h.Update)
		r.Delete("/{id}", h.Delete)
	})
}

// NestedRoutes returns the routes mounted under /restaurants/{id}.
// The "id" URL parameter is the restaurant id.
func (h *ReservationHandler) NestedRoutes(authMiddleware Middleware) func(chi.Router) {
	return func(r chi.Router) {
		r.Route("/reservations", func(r chi.Router) {
			r.Use(authMiddleware)
			r.Get("/", h.ListForRestaurant)
			r.Post("/", h.Create)
		})
	}
}

// List handles GET /api/v1/reservations
func (h *ReservationHandler) List(w http.ResponseWriter, r *http.Request) {
	restaurantID := 0
	if raw := r.URL.Query().Get("restaurantId"); raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil || id <= 0 {
			h.RespondServiceError(w, r, apperrors.Validation("invalid restaurantId: %s", raw))
			return
		}
		restaurantID = id
	}

	h.list(w, r, restaurantID)
}

// ListForRestaurant handles GET /api/v1/restaurants/{id}/reservations
func (h *ReservationHandler) ListForRestaurant(w http.ResponseWriter, r *http.Request) {
	restaurantID, err := pathID(r, "id")
	if err != nil {
		h.RespondServiceError(w, r, err)
		return
	}

	h.list(w, r, restaurantID)
}

func (h *ReservationHandler) list(w http.ResponseWriter, r *http.Request, restaurantID int) {
	principal, ok := authmw.GetPrincipal(r.Context())
	if !ok {
		h.RespondServiceError(w, r, apperrors.Authentication("Not authorized to access this route"))
		return
	}

	reservations, err := h.reservationService.List(r.Context(), principal, restaurantID)
	if err != nil {
		h.RespondServiceError(w, r, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, listResponse{
		Success: true,
		Count:   len(reservations),
		Total:   len(reservations),
		Data:    reservations,
	})
}

// Get handles GET /api/v1/reservations/{id}
func (h *ReservationHandler) Get(w http.ResponseWriter, r *http.Request) {
	principal, id, ok := h.principalAndID(w, r)
	if !ok {
		return
	}

	reservation, err := h.reservationService.Get(r.Context(), principal, id)
	if err != nil {
		h.RespondServiceError(w, r, err)
		return
	}

	h.RespondData(w, http.StatusOK, reservation)
}

// Create handles POST /api/v1/restaurants/{id}/reservations
func (h *ReservationHandler) Create(w http.ResponseWriter, r *http.Request) {
	principal, restaurantID, ok := h.principalAndID(w, r)
	if !ok {
		return
	}

	var req models.CreateReservationRequest
	if err := decodeJSON(r, &req); err != nil {
		h.RespondServiceError(w, r, err)
		return
	}

	reservation, err := h.reservationService.Create(r.Context(), principal, restaurantID, &req)
	if err != nil {
		h.RespondServiceError(w, r, err)
		return
	}

	h.RespondData(w, http.StatusCreated, reservation)
}

// Update handles PUT /api/v1/reservations/{id}
func (h *ReservationHandler) Update(w http.ResponseWriter, r *http.Request) {
	principal, id, ok := h.principalAndID(w, r)
	if !ok {
		return
	}

	var req models.UpdateReservationRequest
	if err := decodeJSON(r, &req); err != nil {
		h.RespondServiceError(w, r, err)
		return
	}

	reservation, err := h.reservationService.Update(r.Context(), principal, id, &req)
	if err != nil {
		h.RespondServiceError(w, r, err)
		return
	}

	h.RespondData(w, http.StatusOK, reservation)
}

// Delete handles DELETE /api/v1/reservations/{id}
func (h *ReservationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	principal, id, ok := h.principalAndID(w, r)
	if !ok {
		return
	}

	if err := h.reservationService.Delete(r.Context(), principal, id); err != nil {
		h.RespondServiceError(w, r, err)
		return
	}

	h.RespondData(w, http.StatusOK, struct{}{})
}

// principalAndID reads the caller and the "id" URL parameter, writing the error response on failure
func (h *ReservationHandler) principalAndID(w http.ResponseWriter, r *http.Request) (models.Principal, int, bool) {
	principal, ok := authmw.GetPrincipal(r.Context())
	if !ok {
		h.RespondServiceError(w, r, apperrors.Authentication("Not authorized to access this route"))
		return models.Principal{}, 0, false
	}

	id, err := pathID(r, "id")
	if err != nil {
		h.RespondServiceError(w, r, err)
		return models.Principal{}, 0, false
	}

	return principal, id, true
}
