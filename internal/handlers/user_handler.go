package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	authmw "github.com/restaurantbooking/backend/internal/auth/middleware"
	"github.com/restaurantbooking/backend/internal/apperrors"
	"github.com/restaurantbooking/backend/internal/models"
	"github.com/restaurantbooking/backend/internal/query"
	"go.uber.org/zap"
)

// UserService is the interface that wraps methods for user administration
type UserService interface {
	List(ctx context.Context, spec query.Spec) ([]models.User, int, error)
	Get(ctx context.Context, id int) (*models.User, error)
	Delete(ctx context.Context, principal models.Principal, id int) error
}

// UserHandler handles HTTP requests for user administration
type UserHandler struct {
	BaseHandler
	userService UserService
}

// NewUserHandler creates a new user handler
func NewUserHandler(userService UserService, logger *zap.Logger) *UserHandler {
	return &UserHandler{
		BaseHandler: BaseHandler{logger: logger},
		userService: userService,
	}
}

// RegisterRoutes registers all user handler routes. Every route is admin only.
func (h *UserHandler) RegisterRoutes(r chi.Router, authMiddleware, adminMiddleware Middleware) {
	r.Route("/users", func(r chi.Router) {
		r.Use(authMiddleware, adminMiddleware)
		r.Get("/", h.List)
		r.Get("/{id}", h.Get)
		r.Delete("/{id}", h.Delete)
	})
}

// List handles GET /api/v1/users
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	spec, err := query.Parse(r.URL.Query(), models.UserSchema)
	if err != nil {
		h.RespondServiceError(w, r, err)
		return
	}

	users, total, err := h.userService.List(r.Context(), spec)
	if err != nil {
		h.RespondServiceError(w, r, err)
		return
	}

	h.respondList(w, r, users, len(users), total, spec)
}

// Get handles GET /api/v1/users/{id}
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.RespondServiceError(w, r, err)
		return
	}

	user, err := h.userService.Get(r.Context(), id)
	if err != nil {
		h.RespondServiceError(w, r, err)
		return
	}

	h.RespondData(w, http.StatusOK, user)
}

// Delete handles DELETE /api/v1/users/{id}
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	principal, ok := authmw.GetPrincipal(r.Context())
	if !ok {
		h.RespondServiceError(w, r, apperrors.Authentication("Not authorized to access this route"))
		return
	}

	id, err := pathID(r, "id")
	if err != nil {
		h.RespondServiceError(w, r, err)
		return
	}

	if err := h.userService.Delete(r.Context(), principal, id); err != nil {
		h.RespondServiceError(w, r, err)
		return
	}

	h.RespondData(w, http.StatusOK, struct{}{})
}
