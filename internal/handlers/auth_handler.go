package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	authmw "github.com/restaurantbooking/backend/internal/auth/middleware"
	"github.com/restaurantbooking/backend/internal/apperrors"
	"github.com/restaurantbooking/backend/internal/models"
	"go.uber.org/zap"
)

// AuthService is the interface that wraps methods for account lifecycle business logic
type AuthService interface {
	// Method Register creates a user account and returns a session token.
	//
	// A duplicate email or invalid input is returned as a validation error.
	Register(ctx context.Context, req *models.RegisterRequest) (string, error)
	// Method Login returns a session token for valid credentials.
	//
	// An unknown email and a wrong password both return the same authentication error.
	Login(ctx context.Context, req *models.LoginRequest) (string, error)
	// Method Me returns the profile of "userID".
	Me(ctx context.Context, userID int) (*models.User, error)
	// Method UpdateDetails changes the non-nil profile fields and returns the updated profile.
	UpdateDetails(ctx context.Context, userID int, req *models.UpdateDetailsRequest) (*models.User, error)
	// Method UpdatePassword replaces the password after verifying the current one.
	//
	// Older sessions of the user are revoked, the returned token replaces the caller's one.
	UpdatePassword(ctx context.Context, userID int, req *models.UpdatePasswordRequest) (string, error)
	// Method Logout revokes the token "tokenID" until "expiresAt".
	Logout(ctx context.Context, tokenID string, expiresAt time.Time) error
	// Method DeleteAccount removes "userID" and all of their reservations.
	DeleteAccount(ctx context.Context, userID int) error
}

// CookieConfig configures the session token cookie
type CookieConfig struct {
	ExpireDays int
	Secure     bool
}

// AuthHandler handles HTTP requests for authentication and account management
type AuthHandler struct {
	BaseHandler
	authService AuthService
	cookie      CookieConfig
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService AuthService, cookie CookieConfig, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		BaseHandler: BaseHandler{logger: logger},
		authService: authService,
		cookie:      cookie,
	}
}

// RegisterRoutes registers all auth handler routes.
// The router is expected to be scoped to /api/v1.
// limiter guards the credential endpoints, authMiddleware the account endpoints.
func (h *AuthHandler) RegisterRoutes(r chi.Router, authMiddleware, limiter Middleware) {
	r.Route("/auth", func(r chi.Router) {
		r.With(limiter).Post("/register", h.Register)
		r.With(limiter).Post("/login", h.Login)

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware)
			r.Get("/me", h.Me)
			r.Put("/updatedetails", h.UpdateDetails)
			r.Put("/updatepassword", h.UpdatePassword)
			r.Get("/logout", h.Logout)
			r.Delete("/deleteaccount", h.DeleteAccount)
		})
	})
}

// Register handles POST /api/v1/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := decodeJSON(r, &req); err != nil {
		h.RespondServiceError(w, r, err)
		return
	}

	token, err := h.authService.Register(r.Context(), &req)
	if err != nil {
		h.RespondServiceError(w, r, err)
		return
	}

	h.sendToken(w, token)
}

// Login handles POST /api/v1/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		h.RespondServiceError(w, r, err)
		return
	}

	token, err := h.authService.Login(r.Context(), &req)
	if err != nil {
		h.RespondServiceError(w, r, err)
		return
	}

	h.sendToken(w, token)
}

// Me handles GET /api/v1/auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims, ok := authmw.GetClaims(r.Context())
	if !ok {
		h.RespondServiceError(w, r, apperrors.Authentication("Not authorized to access this route"))
		return
	}

	user, err := h.authService.Me(r.Context(), claims.UserID)
	if err != nil {
		h.RespondServiceError(w, r, err)
		return
	}

	h.RespondData(w, http.StatusOK, user)
}

// UpdateDetails handles PUT /api/v1/auth/updatedetails
func (h *AuthHandler) UpdateDetails(w http.ResponseWriter, r *http.Request) {
	claims, ok := authmw.GetClaims(r.Context())
	if !ok {
		h.RespondServiceError(w, r, apperrors.Authentication("Not authorized to access this route"))
		return
	}

	var req models.UpdateDetailsRequest
	if err := decodeJSON(r, &req); err != nil {
		h.RespondServiceError(w, r, err)
		return
	}

	user, err := h.authService.UpdateDetails(r.Context(), claims.UserID, &req)
	if err != nil {
		h.RespondServiceError(w, r, err)
		return
	}

	h.RespondData(w, http.StatusOK, user)
}

// UpdatePassword handles PUT /api/v1/auth/updatepassword
func (h *AuthHandler) UpdatePassword(w http.ResponseWriter, r *http.Request) {
	claims, ok := authmw.GetClaims(r.Context())
	if !ok {
		h.RespondServiceError(w, r, apperrors.Authentication("Not authorized to access this route"))
		return
	}

	var req models.UpdatePasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		h.RespondServiceError(w, r, err)
		return
	}

	token, err := h.authService.UpdatePassword(r.Context(), claims.UserID, &req)
	if err != nil {
		h.RespondServiceError(w, r, err)
		return
	}

	h.setTokenCookie(w, token)
	h.RespondJSON(w, http.StatusOK, tokenResponse{Success: true, Message: "Password updated successfully", Token: token})
}

// Logout handles GET /api/v1/auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	claims, ok := authmw.GetClaims(r.Context())
	if !ok {
		h.RespondServiceError(w, r, apperrors.Authentication("Not authorized to access this route"))
		return
	}

	// The cookie is cleared even if revocation fails
	if err := h.authService.Logout(r.Context(), claims.TokenID, claims.ExpiresAt); err != nil {
		h.logger.Warn("failed to revoke token on logout", zap.Int("user_id", claims.UserID), zap.Error(err))
	}

	h.clearTokenCookie(w)
	h.RespondData(w, http.StatusOK, struct{}{})
}

// DeleteAccount handles DELETE /api/v1/auth/deleteaccount
func (h *AuthHandler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	claims, ok := authmw.GetClaims(r.Context())
	if !ok {
		h.RespondServiceError(w, r, apperrors.Authentication("Not authorized to access this route"))
		return
	}

	if err := h.authService.DeleteAccount(r.Context(), claims.UserID); err != nil {
		h.RespondServiceError(w, r, err)
		return
	}

	if err := h.authService.Logout(r.Context(), claims.TokenID, claims.ExpiresAt); err != nil {
		h.logger.Warn("failed to revoke token of deleted account", zap.Int("user_id", claims.UserID), zap.Error(err))
	}

	h.clearTokenCookie(w)
	h.RespondData(w, http.StatusOK, struct{}{})
}

// sendToken sets the session cookie and writes the token in the body
func (h *AuthHandler) sendToken(w http.ResponseWriter, token string) {
	h.setTokenCookie(w, token)
	h.RespondJSON(w, http.StatusOK, tokenResponse{Success: true, Token: token})
}

func (h *AuthHandler) setTokenCookie(w http.ResponseWriter, token string) {
	maxAge := h.cookie.ExpireDays * 24 * 60 * 60
	http.SetCookie(w, &http.Cookie{
		Name:     authmw.TokenCookieName,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(time.Duration(maxAge) * time.Second),
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// clearTokenCookie overwrites the session cookie with a short-lived placeholder
func (h *AuthHandler) clearTokenCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     authmw.TokenCookieName,
		Value:    "none",
		Path:     "/",
		Expires:  time.Now().Add(10 * time.Second),
		MaxAge:   10,
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}
