// Package middleware authenticates requests and exposes the caller to handlers
package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/restaurantbooking/backend/internal/apperrors"
	"github.com/restaurantbooking/backend/internal/auth/revocation"
	"github.com/restaurantbooking/backend/internal/auth/service"
	"github.com/restaurantbooking/backend/internal/middlewares"
	"github.com/restaurantbooking/backend/internal/models"
	"go.uber.org/zap"
)

// TokenCookieName is the name of the cookie carrying the session token
const TokenCookieName = "token"

type contextKey string

const claimsKey contextKey = "tokenClaims"

// TokenValidator validates session tokens
type TokenValidator interface {
	ValidateToken(token string) (*service.TokenClaims, error)
}

// UserLookup loads the account behind a token subject
type UserLookup interface {
	GetByID(ctx context.Context, id int) (*models.User, error)
}

// AuthMiddleware validates the session token and stores its claims in the request context.
// The subject must still exist, and its stored role replaces the role in the token.
func AuthMiddleware(validator TokenValidator, revoker revocation.Revoker, users UserLookup, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractToken(r)
			if token == "" {
				middlewares.WriteError(w, http.StatusUnauthorized, "Not authorized to access this route")
				return
			}

			claims, err := validator.ValidateToken(token)
			if err != nil {
				logger.Debug("rejected token", zap.Error(err))
				middlewares.WriteError(w, http.StatusUnauthorized, "Not authorized to access this route")
				return
			}

			revoked, err := revoker.IsRevoked(r.Context(), claims.TokenID)
			if err != nil {
				// Revocation store outage must not lock every user out
				logger.Warn("failed to check token revocation", zap.Error(err))
			}
			if revoked {
				middlewares.WriteError(w, http.StatusUnauthorized, "Not authorized to access this route")
				return
			}

			cutoff, err := revoker.RevokedBefore(r.Context(), claims.UserID)
			if err != nil {
				logger.Warn("failed to check user token cutoff", zap.Error(err))
			}
			if !cutoff.IsZero() && claims.IssuedAt.Before(cutoff) {
				middlewares.WriteError(w, http.StatusUnauthorized, "Not authorized to access this route")
				return
			}

			user, err := users.GetByID(r.Context(), claims.UserID)
			if errors.Is(err, apperrors.ErrNotFound) {
				logger.Debug("token subject no longer exists", zap.Int("user_id", claims.UserID))
				middlewares.WriteError(w, http.StatusUnauthorized, "Not authorized to access this route")
				return
			}
			if err != nil {
				logger.Error("failed to load token subject", zap.Int("user_id", claims.UserID), zap.Error(err))
				middlewares.WriteError(w, http.StatusInternalServerError, "internal server error")
				return
			}

			current := *claims
			current.Role = user.Role
			ctx := context.WithValue(r.Context(), claimsKey, &current)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RoleMiddleware only lets through callers holding one of the given roles.
// It must run after AuthMiddleware.
func RoleMiddleware(roles ...models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, ok := GetPrincipal(r.Context())
			if !ok {
				middlewares.WriteError(w, http.StatusUnauthorized, "Not authorized to access this route")
				return
			}

			for _, role := range roles {
				if principal.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}

			middlewares.WriteError(w, http.StatusForbidden, "User role "+string(principal.Role)+" is not authorized to access this route")
		})
	}
}

// GetPrincipal retrieves the authenticated caller from context
func GetPrincipal(ctx context.Context) (models.Principal, bool) {
	claims, ok := GetClaims(ctx)
	if !ok {
		return models.Principal{}, false
	}
	return claims.Principal(), true
}

// GetClaims retrieves the validated token claims from context
func GetClaims(ctx context.Context) (*service.TokenClaims, bool) {
	claims, ok := ctx.Value(claimsKey).(*service.TokenClaims)
	return claims, ok && claims != nil
}

// WithClaims returns a copy of ctx carrying the given claims
func WithClaims(ctx context.Context, claims *service.TokenClaims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}

// extractToken reads the token from the Authorization header, falling back to the cookie
func extractToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader != "" {
		// Expected format: "Bearer <token>"
		parts := strings.Fields(authHeader)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return parts[1]
		}
	}

	cookie, err := r.Cookie(TokenCookieName)
	if err == nil && cookie.Value != "none" {
		return cookie.Value
	}
	return ""
}
