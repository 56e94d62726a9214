// Package handlers exposes the HTTP API
package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/restaurantbooking/backend/internal/apperrors"
	"github.com/restaurantbooking/backend/internal/query"
	"go.uber.org/zap"
)

// Middleware wraps an http.Handler
type Middleware = func(http.Handler) http.Handler

// BaseHandler provides the response helpers shared by all handlers
type BaseHandler struct {
	logger *zap.Logger
}

type dataResponse struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
}

type listResponse struct {
	Success    bool              `json:"success"`
	Count      int               `json:"count"`
	Total      int               `json:"total"`
	Pagination *query.Pagination `json:"pagination,omitempty"`
	Data       any               `json:"data"`
}

type tokenResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Token   string `json:"token"`
}

type messageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// RespondJSON sends a JSON response
func (h *BaseHandler) RespondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode JSON response", zap.Error(err))
	}
}

// RespondData sends {"success": true, "data": data}
func (h *BaseHandler) RespondData(w http.ResponseWriter, status int, data any) {
	h.RespondJSON(w, status, dataResponse{Success: true, Data: data})
}

// RespondError sends {"success": false, "message": message}
func (h *BaseHandler) RespondError(w http.ResponseWriter, status int, message string) {
	h.RespondJSON(w, status, messageResponse{Success: false, Message: message})
}

// RespondServiceError maps an error returned by a service to its status code and message
func (h *BaseHandler) RespondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status := apperrors.Status(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
	} else {
		h.logger.Debug("request rejected", zap.Int("status", status), zap.Error(err))
	}
	h.RespondError(w, status, apperrors.Message(err))
}

// respondList sends one page of items, projected to the selected fields of spec
func (h *BaseHandler) respondList(w http.ResponseWriter, r *http.Request, items any, count, total int, spec query.Spec) {
	data, err := query.Project(items, spec.Select())
	if err != nil {
		h.RespondServiceError(w, r, err)
		return
	}

	pagination := spec.Pagination(total)
	h.RespondJSON(w, http.StatusOK, listResponse{
		Success:    true,
		Count:      count,
		Total:      total,
		Pagination: &pagination,
		Data:       data,
	})
}

// decodeJSON decodes the request body into dst
func decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return apperrors.Validation("request body is empty")
		}
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return apperrors.Validation("request body too large")
		}
		return apperrors.Validation("invalid request body")
	}
	return nil
}

// pathID parses a positive integer URL parameter
func pathID(r *http.Request, name string) (int, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		return 0, apperrors.Validation("invalid %s: %s", name, raw)
	}
	return id, nil
}
