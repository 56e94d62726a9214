package handlers

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/restaurantbooking/backend/internal/apperrors"
	"github.com/restaurantbooking/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// mockReservationService is a mock implementation of ReservationService
type mockReservationService struct {
	reservations []models.Reservation
	reservation  *models.Reservation
	err          error
	principal    models.Principal
	restaurantID int
	gotID        int
	createReq    *models.CreateReservationRequest
	updateReq    *models.UpdateReservationRequest
}

func (m *mockReservationService) List(ctx context.Context, principal models.Principal, restaurantID int) ([]models.Reservation, error) {
	m.principal = principal
	m.restaurantID = restaurantID
	return m.reservations, m.err
}

func (m *mockReservationService) Get(ctx context.Context, principal models.Principal, id int) (*models.Reservation, error) {
	m.principal = principal
	m.gotID = id
	return m.reservation, m.err
}

func (m *mockReservationService) Create(ctx context.Context, principal models.Principal, restaurantID int, req *models.CreateReservationRequest) (*models.Reservation, error) {
	m.principal = principal
	m.restaurantID = restaurantID
	m.createReq = req
	return m.reservation, m.err
}

func (m *mockReservationService) Update(ctx context.Context, principal models.Principal, id int, req *models.UpdateReservationRequest) (*models.Reservation, error) {
	m.principal = principal
	m.gotID = id
	m.updateReq = req
	return m.reservation, m.err
}

func (m *mockReservationService) Delete(ctx context.Context, principal models.Principal, id int) error {
	m.principal = principal
	m.gotID = id
	return m.err
}

func setupReservationRouter(svc *mockReservationService) (*testAuth, chi.Router) {
	auth := newTestAuth()
	restaurants := NewRestaurantHandler(&mockRestaurantService{}, zap.NewNop())
	reservations := NewReservationHandler(svc, zap.NewNop())
	return auth, newAPIRouter(func(r chi.Router) {
		restaurants.RegisterRoutes(r, auth.authMw, auth.adminMw, reservations.NestedRoutes(auth.authMw))
		reservations.RegisterRoutes(r, auth.authMw)
	})
}

func TestReservationHandler_List(t *testing.T) {
	resvDate := time.Date(2026, 11, 1, 19, 0, 0, 0, time.UTC)
	list := []models.Reservation{
		{ID: 7, UserID: alice.UserID, RestaurantID: 3, ResvDate: resvDate},
	}

	tests := []struct {
		name             string
		path             string
		wantStatus       int
		wantRestaurantID int
	}{
		{name: "all", path: "/api/v1/reservations", wantStatus: http.StatusOK},
		{name: "restaurant query param", path: "/api/v1/reservations?restaurantId=3", wantStatus: http.StatusOK, wantRestaurantID: 3},
		{name: "nested under restaurant", path: "/api/v1/restaurants/3/reservations", wantStatus: http.StatusOK, wantRestaurantID: 3},
		{name: "invalid restaurant id", path: "/api/v1/reservations?restaurantId=x", wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockReservationService{reservations: list}
			auth, router := setupReservationRouter(svc)

			w := doRequest(t, router, http.MethodGet, tt.path, nil, auth.tokenFor(t, alice))

			require.Equal(t, tt.wantStatus, w.Code)
			if tt.wantStatus != http.StatusOK {
				return
			}
			assert.Equal(t, alice, svc.principal)
			assert.Equal(t, tt.wantRestaurantID, svc.restaurantID)

			body := decodeBody(t, w)
			assert.Equal(t, float64(1), body["count"])
			item := body["data"].([]any)[0].(map[string]any)
			assert.Equal(t, "2026-11-01T19:00:00Z", item["resvDate"])
			assert.Equal(t, float64(alice.UserID), item["user"])
		})
	}

	t.Run("requires token", func(t *testing.T) {
		svc := &mockReservationService{}
		_, router := setupReservationRouter(svc)

		w := doRequest(t, router, http.MethodGet, "/api/v1/reservations", nil, "")

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestReservationHandler_Create(t *testing.T) {
	t.Run("created", func(t *testing.T) {
		svc := &mockReservationService{reservation: &models.Reservation{ID: 1, UserID: alice.UserID, RestaurantID: 3}}
		auth, router := setupReservationRouter(svc)

		w := doRequest(t, router, http.MethodPost, "/api/v1/restaurants/3/reservations",
			map[string]any{"resvDate": "2026-11-01T19:00:00Z", "user": 999}, auth.tokenFor(t, alice))

		require.Equal(t, http.StatusCreated, w.Code)
		assert.Equal(t, 3, svc.restaurantID)
		assert.Equal(t, alice, svc.principal)
		require.NotNil(t, svc.createReq.ResvDate)
		assert.True(t, svc.createReq.ResvDate.Equal(time.Date(2026, 11, 1, 19, 0, 0, 0, time.UTC)))
	})

	t.Run("quota exceeded", func(t *testing.T) {
		svc := &mockReservationService{err: apperrors.QuotaExceeded("The user with ID 10 has already made 3 reservations")}
		auth, router := setupReservationRouter(svc)

		w := doRequest(t, router, http.MethodPost, "/api/v1/restaurants/3/reservations",
			map[string]any{"resvDate": "2026-11-01T19:00:00Z"}, auth.tokenFor(t, alice))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "The user with ID 10 has already made 3 reservations", decodeBody(t, w)["message"])
	})

	t.Run("malformed date", func(t *testing.T) {
		svc := &mockReservationService{}
		auth, router := setupReservationRouter(svc)

		w := doRequest(t, router, http.MethodPost, "/api/v1/restaurants/3/reservations",
			map[string]any{"resvDate": "tomorrow"}, auth.tokenFor(t, alice))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Nil(t, svc.createReq)
	})
}

func TestReservationHandler_Get(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{name: "owner", wantStatus: http.StatusOK},
		{name: "not owner", err: apperrors.Authorization("User 10 is not authorized to access this reservation"), wantStatus: http.StatusForbidden},
		{name: "missing", err: apperrors.NotFound("No reservation with the id of 8"), wantStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockReservationService{reservation: &models.Reservation{ID: 8}, err: tt.err}
			auth, router := setupReservationRouter(svc)

			w := doRequest(t, router, http.MethodGet, "/api/v1/reservations/8", nil, auth.tokenFor(t, alice))

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, 8, svc.gotID)
		})
	}
}

func TestReservationHandler_Update(t *testing.T) {
	svc := &mockReservationService{reservation: &models.Reservation{ID: 8, RestaurantID: 4}}
	auth, router := setupReservationRouter(svc)

	w := doRequest(t, router, http.MethodPut, "/api/v1/reservations/8",
		map[string]any{"restaurantId": 4}, auth.tokenFor(t, admin))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, admin, svc.principal)
	require.NotNil(t, svc.updateReq.RestaurantID)
	assert.Equal(t, 4, *svc.updateReq.RestaurantID)
	assert.Nil(t, svc.updateReq.ResvDate)
}

func TestReservationHandler_Delete(t *testing.T) {
	svc := &mockReservationService{}
	auth, router := setupReservationRouter(svc)

	w := doRequest(t, router, http.MethodDelete, "/api/v1/reservations/8", nil, auth.tokenFor(t, alice))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 8, svc.gotID)
	assert.Equal(t, map[string]any{}, decodeBody(t, w)["data"])
}
