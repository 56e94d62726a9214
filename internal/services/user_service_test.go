package services

import (
	"context"
	"net/url"
	"testing"

	"github.com/restaurantbooking/backend/internal/apperrors"
	"github.com/restaurantbooking/backend/internal/models"
	"github.com/restaurantbooking/backend/internal/query"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestUserService_List(t *testing.T) {
	spec, err := query.Parse(url.Values{"page": {"2"}, "limit": {"1"}}, models.UserSchema)
	require.NoError(t, err)

	repo := &mockUserRepository{users: []models.User{{ID: 1}}, total: 2}
	svc := NewUserService(repo, zap.NewNop())

	users, total, err := svc.List(context.Background(), spec)
	require.NoError(t, err)
	assert.Len(t, users, 1)
	assert.Equal(t, 2, total)
}

func TestUserService_Get(t *testing.T) {
	svc := NewUserService(&mockUserRepository{getByIDErr: apperrors.NotFound("No user with the id of 9")}, zap.NewNop())

	_, err := svc.Get(context.Background(), 9)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestUserService_Delete(t *testing.T) {
	admin := models.Principal{UserID: 1, Role: models.RoleAdmin}

	t.Run("deletes other user", func(t *testing.T) {
		repo := &mockUserRepository{}
		svc := NewUserService(repo, zap.NewNop())

		require.NoError(t, svc.Delete(context.Background(), admin, 5))
		assert.Equal(t, 5, repo.deletedID)
	})

	t.Run("self delete blocked", func(t *testing.T) {
		repo := &mockUserRepository{}
		svc := NewUserService(repo, zap.NewNop())

		err := svc.Delete(context.Background(), admin, 1)
		assert.ErrorIs(t, err, apperrors.ErrValidation)
		assert.Zero(t, repo.deletedID)
	})

	t.Run("missing user", func(t *testing.T) {
		repo := &mockUserRepository{err: apperrors.NotFound("No user with the id of 5")}
		svc := NewUserService(repo, zap.NewNop())

		assert.ErrorIs(t, svc.Delete(context.Background(), admin, 5), apperrors.ErrNotFound)
	})
}
