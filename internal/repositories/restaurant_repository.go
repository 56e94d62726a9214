package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/restaurantbooking/backend/internal/apperrors"
	"github.com/restaurantbooking/backend/internal/models"
	"github.com/restaurantbooking/backend/internal/query"
	"go.uber.org/zap"
)

const restaurantColumns = "id, name, address, district, province, postal_code, phone, hours, created_at"

// restaurantRepository implements RestaurantRepository
type restaurantRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewRestaurantRepository creates a new restaurant repository
func NewRestaurantRepository(db *sql.DB, logger *zap.Logger) *restaurantRepository {
	return &restaurantRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a new restaurant into the database
func (r *restaurantRepository) Create(ctx context.Context, restaurant *models.Restaurant) error {
	stmt := `
		INSERT INTO restaurants (name, address, district, province, postal_code, phone, hours)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, stmt,
		restaurant.Name,
		restaurant.Address,
		restaurant.District,
		restaurant.Province,
		restaurant.PostalCode,
		restaurant.Phone,
		restaurant.Hours,
	)
	if err != nil {
		if mapped := mapConstraintError(err); mapped != nil {
			return mapped
		}
		r.logger.Error("failed to create restaurant", zap.Error(err))
		return fmt.Errorf("failed to create restaurant: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		r.logger.Error("failed to get last insert id", zap.Error(err))
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	restaurant.ID = int(id)
	return nil
}

// GetByID retrieves a restaurant by ID
func (r *restaurantRepository) GetByID(ctx context.Context, id int) (*models.Restaurant, error) {
	stmt := "SELECT " + restaurantColumns + " FROM restaurants WHERE id = ?"

	restaurant, err := scanRestaurant(r.db.QueryRowContext(ctx, stmt, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("No restaurant with the id of %d", id)
	}
	if err != nil {
		r.logger.Error("failed to get restaurant by id", zap.Error(err), zap.Int("id", id))
		return nil, fmt.Errorf("failed to get restaurant by id: %w", err)
	}

	return restaurant, nil
}

// List retrieves one page of restaurants matching spec
func (r *restaurantRepository) List(ctx context.Context, spec query.Spec) ([]models.Restaurant, error) {
	where, args := spec.Where()
	stmt := fmt.Sprintf("SELECT %s FROM restaurants %s %s LIMIT ? OFFSET ?", restaurantColumns, where, spec.OrderBy())
	args = append(args, spec.Limit(), spec.Offset())

	rows, err := r.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		r.logger.Error("failed to list restaurants", zap.Error(err))
		return nil, fmt.Errorf("failed to list restaurants: %w", err)
	}
	defer rows.Close()

	restaurants := []models.Restaurant{}
	for rows.Next() {
		restaurant, err := scanRestaurant(rows)
		if err != nil {
			r.logger.Error("failed to scan restaurant", zap.Error(err))
			return nil, fmt.Errorf("failed to scan restaurant: %w", err)
		}
		restaurants = append(restaurants, *restaurant)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("error iterating restaurants", zap.Error(err))
		return nil, fmt.Errorf("error iterating restaurants: %w", err)
	}

	return restaurants, nil
}

// Count returns the number of restaurants matching the filters of spec
func (r *restaurantRepository) Count(ctx context.Context, spec query.Spec) (int, error) {
	where, args := spec.Where()
	stmt := "SELECT COUNT(*) FROM restaurants " + where

	var count int
	if err := r.db.QueryRowContext(ctx, stmt, args...).Scan(&count); err != nil {
		r.logger.Error("failed to count restaurants", zap.Error(err))
		return 0, fmt.Errorf("failed to count restaurants: %w", err)
	}

	return count, nil
}

// Update updates the provided fields of a restaurant
func (r *restaurantRepository) Update(ctx context.Context, id int, req *models.UpdateRestaurantRequest) error {
	var setParts []string
	var args []any

	fields := []struct {
		column string
		value  *string
	}{
		{"name", req.Name},
		{"address", req.Address},
		{"district", req.District},
		{"province", req.Province},
		{"postal_code", req.PostalCode},
		{"phone", req.Phone},
		{"hours", req.Hours},
	}
	for _, f := range fields {
		if f.value != nil {
			setParts = append(setParts, f.column+" = ?")
			args = append(args, *f.value)
		}
	}

	if len(setParts) == 0 {
		return apperrors.Validation("No fields to update")
	}

	stmt := fmt.Sprintf("UPDATE restaurants SET %s WHERE id = ?", strings.Join(setParts, ", "))
	args = append(args, id)

	if _, err := r.db.ExecContext(ctx, stmt, args...); err != nil {
		if mapped := mapConstraintError(err); mapped != nil {
			return mapped
		}
		r.logger.Error("failed to update restaurant", zap.Error(err), zap.Int("id", id))
		return fmt.Errorf("failed to update restaurant: %w", err)
	}

	return nil
}

// Delete removes a restaurant together with its reservations in one transaction
func (r *restaurantRepository) Delete(ctx context.Context, id int) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		r.logger.Error("failed to begin transaction", zap.Error(err))
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM reservations WHERE restaurant_id = ?`, id); err != nil {
		r.logger.Error("failed to delete restaurant reservations", zap.Error(err), zap.Int("id", id))
		return fmt.Errorf("failed to delete restaurant reservations: %w", err)
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM restaurants WHERE id = ?`, id)
	if err != nil {
		r.logger.Error("failed to delete restaurant", zap.Error(err), zap.Int("id", id))
		return fmt.Errorf("failed to delete restaurant: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperrors.NotFound("No restaurant with the id of %d", id)
	}

	if err := tx.Commit(); err != nil {
		r.logger.Error("failed to commit transaction", zap.Error(err))
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

func scanRestaurant(row rowScanner) (*models.Restaurant, error) {
	restaurant := &models.Restaurant{}
	err := row.Scan(
		&restaurant.ID,
		&restaurant.Name,
		&restaurant.Address,
		&restaurant.District,
		&restaurant.Province,
		&restaurant.PostalCode,
		&restaurant.Phone,
		&restaurant.Hours,
		&restaurant.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return restaurant, nil
}
