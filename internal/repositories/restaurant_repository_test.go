package repositories

import (
	"context"
	"database/sql"
	"errors"
	"net/url"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/restaurantbooking/backend/internal/apperrors"
	"github.com/restaurantbooking/backend/internal/models"
	"github.com/restaurantbooking/backend/internal/query"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var restaurantRowColumns = []string{"id", "name", "address", "district", "province", "postal_code", "phone", "hours", "created_at"}

// setupRestaurantTestRepository creates a restaurant repository with a mock database
func setupRestaurantTestRepository(t *testing.T) (*restaurantRepository, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	repo := NewRestaurantRepository(db, zap.NewNop())

	cleanup := func() {
		db.Close()
	}

	return repo, mock, cleanup
}

func TestNewRestaurantRepository(t *testing.T) {
	logger := zap.NewNop()
	db := &sql.DB{}

	repo := NewRestaurantRepository(db, logger)

	assert.NotNil(t, repo)
	assert.Equal(t, db, repo.db)
	assert.Equal(t, logger, repo.logger)
}

func TestRestaurantRepository_Create(t *testing.T) {
	tests := []struct {
		name          string
		setupMock     func(sqlmock.Sqlmock)
		expectedError error
	}{
		{
			name: "success",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`INSERT INTO restaurants`).
					WithArgs("Baan Suan", "12 Sukhumvit", "Watthana", "Bangkok", "10110", "021234567", "10:00-22:00").
					WillReturnResult(sqlmock.NewResult(7, 1))
			},
		},
		{
			name: "duplicate name",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`INSERT INTO restaurants`).
					WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry 'Baan Suan'"})
			},
			expectedError: apperrors.ErrValidation,
		},
		{
			name: "database error",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`INSERT INTO restaurants`).
					WillReturnError(errors.New("database error"))
			},
			expectedError: errors.New("database error"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock, cleanup := setupRestaurantTestRepository(t)
			defer cleanup()

			tt.setupMock(mock)
			restaurant := &models.Restaurant{
				Name:       "Baan Suan",
				Address:    "12 Sukhumvit",
				District:   "Watthana",
				Province:   "Bangkok",
				PostalCode: "10110",
				Phone:      "021234567",
				Hours:      "10:00-22:00",
			}

			err := repo.Create(context.Background(), restaurant)

			if tt.expectedError != nil {
				require.Error(t, err)
				if errors.Is(tt.expectedError, apperrors.ErrValidation) {
					assert.ErrorIs(t, err, apperrors.ErrValidation)
				} else {
					assert.Contains(t, err.Error(), tt.expectedError.Error())
				}
			} else {
				require.NoError(t, err)
				assert.Equal(t, 7, restaurant.ID)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestRestaurantRepository_GetByID(t *testing.T) {
	repo, mock, cleanup := setupRestaurantTestRepository(t)
	defer cleanup()

	created := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows(restaurantRowColumns).
		AddRow(7, "Baan Suan", "12 Sukhumvit", "Watthana", "Bangkok", "10110", "", "10:00-22:00", created)
	mock.ExpectQuery(`SELECT .* FROM restaurants WHERE id = \?`).WithArgs(7).WillReturnRows(rows)
	mock.ExpectQuery(`SELECT .* FROM restaurants WHERE id = \?`).WithArgs(8).WillReturnError(sql.ErrNoRows)

	restaurant, err := repo.GetByID(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, "Baan Suan", restaurant.Name)
	assert.Equal(t, "10110", restaurant.PostalCode)
	assert.Empty(t, restaurant.Phone)

	_, err = repo.GetByID(context.Background(), 8)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.Equal(t, "No restaurant with the id of 8", err.Error())

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRestaurantRepository_ListAndCount(t *testing.T) {
	spec, err := query.Parse(url.Values{
		"province": {"Bangkok"},
		"id[in]":   {"1,2"},
		"sort":     {"name"},
		"limit":    {"10"},
	}, models.RestaurantSchema)
	require.NoError(t, err)

	repo, mock, cleanup := setupRestaurantTestRepository(t)
	defer cleanup()

	rows := sqlmock.NewRows(restaurantRowColumns).
		AddRow(1, "A", "addr", "d", "Bangkok", "10110", "", "h", time.Now()).
		AddRow(2, "B", "addr", "d", "Bangkok", "10110", "", "h", time.Now())
	mock.ExpectQuery(`SELECT .* FROM restaurants WHERE id IN \(\?, \?\) AND province = \? ORDER BY name ASC, id ASC LIMIT \? OFFSET \?`).
		WithArgs("1", "2", "Bangkok", 10, 0).
		WillReturnRows(rows)
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM restaurants WHERE id IN \(\?, \?\) AND province = \?`).
		WithArgs("1", "2", "Bangkok").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	restaurants, err := repo.List(context.Background(), spec)
	require.NoError(t, err)
	assert.Len(t, restaurants, 2)

	count, err := repo.Count(context.Background(), spec)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRestaurantRepository_Update(t *testing.T) {
	name := "Baan Suan 2"
	hours := "11:00-23:00"

	tests := []struct {
		name          string
		req           *models.UpdateRestaurantRequest
		setupMock     func(sqlmock.Sqlmock)
		expectedError error
	}{
		{
			name: "partial update",
			req:  &models.UpdateRestaurantRequest{Name: &name, Hours: &hours},
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`UPDATE restaurants SET name = \?, hours = \? WHERE id = \?`).
					WithArgs(name, hours, 7).
					WillReturnResult(sqlmock.NewResult(0, 1))
			},
		},
		{
			name:          "no fields",
			req:           &models.UpdateRestaurantRequest{},
			setupMock:     func(mock sqlmock.Sqlmock) {},
			expectedError: apperrors.ErrValidation,
		},
		{
			name: "duplicate name",
			req:  &models.UpdateRestaurantRequest{Name: &name},
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`UPDATE restaurants SET name = \? WHERE id = \?`).
					WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"})
			},
			expectedError: apperrors.ErrValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock, cleanup := setupRestaurantTestRepository(t)
			defer cleanup()

			tt.setupMock(mock)

			err := repo.Update(context.Background(), 7, tt.req)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
			} else {
				assert.NoError(t, err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestRestaurantRepository_Delete(t *testing.T) {
	t.Run("cascades reservations", func(t *testing.T) {
		repo, mock, cleanup := setupRestaurantTestRepository(t)
		defer cleanup()

		mock.ExpectBegin()
		mock.ExpectExec(`DELETE FROM reservations WHERE restaurant_id = \?`).
			WithArgs(7).
			WillReturnResult(sqlmock.NewResult(0, 2))
		mock.ExpectExec(`DELETE FROM restaurants WHERE id = \?`).
			WithArgs(7).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		require.NoError(t, repo.Delete(context.Background(), 7))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found rolls back", func(t *testing.T) {
		repo, mock, cleanup := setupRestaurantTestRepository(t)
		defer cleanup()

		mock.ExpectBegin()
		mock.ExpectExec(`DELETE FROM reservations WHERE restaurant_id = \?`).
			WithArgs(7).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec(`DELETE FROM restaurants WHERE id = \?`).
			WithArgs(7).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		assert.ErrorIs(t, repo.Delete(context.Background(), 7), apperrors.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("commit fails", func(t *testing.T) {
		repo, mock, cleanup := setupRestaurantTestRepository(t)
		defer cleanup()

		mock.ExpectBegin()
		mock.ExpectExec(`DELETE FROM reservations WHERE restaurant_id = \?`).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec(`DELETE FROM restaurants WHERE id = \?`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit().WillReturnError(errors.New("commit error"))

		err := repo.Delete(context.Background(), 7)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to commit transaction")
	})
}

func TestMapConstraintError(t *testing.T) {
	assert.ErrorIs(t, mapConstraintError(&mysql.MySQLError{Number: 1062}), apperrors.ErrValidation)
	assert.ErrorIs(t, mapConstraintError(&mysql.MySQLError{Number: 1452}), apperrors.ErrNotFound)
	assert.Nil(t, mapConstraintError(&mysql.MySQLError{Number: 1205}))
	assert.Nil(t, mapConstraintError(errors.New("plain")))
}
