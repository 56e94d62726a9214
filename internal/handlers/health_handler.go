package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Pinger reports whether a dependency is reachable
type Pinger interface {
	PingContext(ctx context.Context) error
}

// HealthHandler reports service liveness
type HealthHandler struct {
	BaseHandler
	db Pinger
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(db Pinger, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{
		BaseHandler: BaseHandler{logger: logger},
		db:          db,
	}
}

// RegisterRoutes registers the health route
func (h *HealthHandler) RegisterRoutes(r chi.Router) {
	r.Get("/health", h.Health)
}

// Health handles GET /api/v1/health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.db.PingContext(ctx); err != nil {
		h.logger.Error("database health check failed", zap.Error(err))
		h.RespondError(w, http.StatusServiceUnavailable, "database unavailable")
		return
	}

	h.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
