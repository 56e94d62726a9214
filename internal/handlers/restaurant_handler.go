package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/restaurantbooking/backend/internal/models"
	"github.com/restaurantbooking/backend/internal/query"
	"go.uber.org/zap"
)

// RestaurantService is the interface that wraps methods for restaurant business logic
type RestaurantService interface {
	// Method List returns one page of restaurants matching "spec" and the total match count.
	List(ctx context.Context, spec query.Spec) ([]models.Restaurant, int, error)
	// Method Get returns the restaurant with "id".
	Get(ctx context.Context, id int) (*models.Restaurant, error)
	// Method Create validates and stores a restaurant.
	Create(ctx context.Context, req *models.CreateRestaurantRequest) (*models.Restaurant, error)
	// Method Update applies a partial update and returns the updated restaurant.
	Update(ctx context.Context, id int, req *models.UpdateRestaurantRequest) (*models.Restaurant, error)
	// Method Delete removes the restaurant and its reservations.
	Delete(ctx context.Context, id int) error
}

// RestaurantHandler handles HTTP requests for restaurants
type RestaurantHandler struct {
	BaseHandler
	restaurantService RestaurantService
}

// NewRestaurantHandler creates a new restaurant handler
func NewRestaurantHandler(restaurantService RestaurantService, logger *zap.Logger) *RestaurantHandler {
	return &RestaurantHandler{
		BaseHandler:       BaseHandler{logger: logger},
		restaurantService: restaurantService,
	}
}

// RegisterRoutes registers all restaurant handler routes.
// Reads are public; writes need authMiddleware followed by adminMiddleware.
// nested, when non-nil, mounts sub-resources under /restaurants/{id}.
func (h *RestaurantHandler) RegisterRoutes(r chi.Router, authMiddleware, adminMiddleware Middleware, nested func(chi.Router)) {
	r.Route("/restaurants", func(r chi.Router) {
		r.Get("/", h.List)
		r.With(authMiddleware, adminMiddleware).Post("/", h.Create)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.Get)
			r.With(authMiddleware, adminMiddleware).Put("/", h.Update)
			r.With(authMiddleware, adminMiddleware).Delete("/", h.Delete)

			if nested != nil {
				nested(r)
			}
		})
	})
}

// List handles GET /api/v1/restaurants
func (h *RestaurantHandler) List(w http.ResponseWriter, r *http.Request) {
	spec, err := query.Parse(r.URL.Query(), models.RestaurantSchema)
	if err != nil {
		h.RespondServiceError(w, r, err)
		return
	}

	restaurants, total, err := h.restaurantService.List(r.Context(), spec)
	if err != nil {
		h.RespondServiceError(w, r, err)
		return
	}

	h.respondList(w, r, restaurants, len(restaurants), total, spec)
}

// Get handles GET /api/v1/restaurants/{id}
func (h *RestaurantHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.RespondServiceError(w, r, err)
		return
	}

	restaurant, err := h.restaurantService.Get(r.Context(), id)
	if err != nil {
		h.RespondServiceError(w, r, err)
		return
	}

	h.RespondData(w, http.StatusOK, restaurant)
}

// Create handles POST /api/v1/restaurants
func (h *RestaurantHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateRestaurantRequest
	if err := decodeJSON(r, &req); err != nil {
		h.RespondServiceError(w, r, err)
		return
	}

	restaurant, err := h.restaurantService.Create(r.Context(), &req)
	if err != nil {
		h.RespondServiceError(w, r, err)
		return
	}

	h.RespondData(w, http.StatusCreated, restaurant)
}

// Update handles PUT /api/v1/restaurants/{id}
func (h *RestaurantHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.RespondServiceError(w, r, err)
		return
	}

	var req models.UpdateRestaurantRequest
	if err := decodeJSON(r, &req); err != nil {
		h.RespondServiceError(w, r, err)
		return
	}

	restaurant, err := h.restaurantService.Update(r.Context(), id, &req)
	if err != nil {
		h.RespondServiceError(w, r, err)
		return
	}

	h.RespondData(w, http.StatusOK, restaurant)
}

// Delete handles DELETE /api/v1/restaurants/{id}
func (h *RestaurantHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.RespondServiceError(w, r, err)
		return
	}

	if err := h.restaurantService.Delete(r.Context(), id); err != nil {
		h.RespondServiceError(w, r, err)
		return
	}

	h.RespondData(w, http.StatusOK, struct{}{})
}
