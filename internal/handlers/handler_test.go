package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/restaurantbooking/backend/internal/apperrors"
	authmw "github.com/restaurantbooking/backend/internal/auth/middleware"
	"github.com/restaurantbooking/backend/internal/auth/revocation"
	"github.com/restaurantbooking/backend/internal/auth/service"
	"github.com/restaurantbooking/backend/internal/models"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var (
	alice = models.Principal{UserID: 10, Role: models.RoleUser}
	admin = models.Principal{UserID: 1, Role: models.RoleAdmin}
)

// storedAccounts answers the account lookup of the auth middleware
type storedAccounts map[int]models.Role

func (s storedAccounts) GetByID(ctx context.Context, id int) (*models.User, error) {
	role, ok := s[id]
	if !ok {
		return nil, apperrors.NotFound("No user with the id of %d", id)
	}
	return &models.User{ID: id, Role: role}, nil
}

// testAuth bundles the middlewares used by every router under test
type testAuth struct {
	tokens  *service.TokenGenerator
	authMw  Middleware
	adminMw Middleware
}

func newTestAuth() *testAuth {
	tokens := service.NewTokenGenerator("test-secret-key", time.Hour)
	accounts := storedAccounts{alice.UserID: alice.Role, admin.UserID: admin.Role}
	return &testAuth{
		tokens:  tokens,
		authMw:  authmw.AuthMiddleware(tokens, revocation.NewNoopRevoker(), accounts, zap.NewNop()),
		adminMw: authmw.RoleMiddleware(models.RoleAdmin),
	}
}

func (a *testAuth) tokenFor(t *testing.T, p models.Principal) string {
	t.Helper()
	token, err := a.tokens.GenerateToken(p.UserID, p.Role)
	require.NoError(t, err)
	return token
}

// newAPIRouter scopes a router to /api/v1 the way the api binary does
func newAPIRouter(register func(r chi.Router)) chi.Router {
	r := chi.NewRouter()
	r.Route("/api/v1", register)
	return r
}

func doRequest(t *testing.T, router http.Handler, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func responseCookie(w *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, cookie := range w.Result().Cookies() {
		if cookie.Name == name {
			return cookie
		}
	}
	return nil
}
