package middlewares

import (
	"net/http"
	"slices"
	"strings"
)

// CORSMiddleware creates a CORS middleware with the specified allowed origins
func CORSMiddleware(allowedOrigins []string) func(http.Handler) http.Handler {
	allowAll := slices.Contains(allowedOrigins, "*")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if allowed := allowedOrigin(origin, allowedOrigins, allowAll); allowed != "" {
				w.Header().Set("Access-Control-Allow-Origin", allowed)
				w.Header().Add("Vary", "Origin")
				// Cookies are only allowed together with an explicit origin
				if allowed != "*" {
					w.Header().Set("Access-Control-Allow-Credentials", "true")
				}
			}

			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, "+RequestIDHeader)
			w.Header().Set("Access-Control-Max-Age", "3600")

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// allowedOrigin returns the value for Access-Control-Allow-Origin, or "" when the origin is not allowed
func allowedOrigin(requestOrigin string, allowedOrigins []string, allowAll bool) string {
	if requestOrigin == "" {
		return ""
	}
	if allowAll {
		return "*"
	}
	for _, allowed := range allowedOrigins {
		if strings.EqualFold(requestOrigin, allowed) {
			return requestOrigin
		}
	}
	return ""
}
