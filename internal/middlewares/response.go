package middlewares

import (
	"encoding/json"
	"net/http"

	"github.com/restaurantbooking/backend/internal/logger"
	"go.uber.org/zap"
)

// WriteError writes the {"success": false, "message": ...} envelope used by every endpoint.
// Middlewares cannot depend on the handlers package, so the envelope is written here.
func WriteError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(map[string]any{
		"success": false,
		"message": message,
	}); err != nil {
		logger.Logger.Error("failed to encode JSON response", zap.Error(err))
	}
}
