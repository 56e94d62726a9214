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

const userColumns = "id, firstname, lastname, email, phone, password_hash, role, created_at"

// userRepository implements UserRepository
type userRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *sql.DB, logger *zap.Logger) *userRepository {
	return &userRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a new user into the database
func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	stmt := `
		INSERT INTO users (firstname, lastname, email, phone, password_hash, role)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, stmt,
		user.Firstname, user.Lastname, user.Email, user.Phone, user.PasswordHash, user.Role)
	if err != nil {
		if mapped := mapConstraintError(err); mapped != nil {
			return mapped
		}
		r.logger.Error("failed to create user", zap.Error(err))
		return fmt.Errorf("failed to create user: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		r.logger.Error("failed to get last insert id", zap.Error(err))
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	user.ID = int(id)
	return nil
}

// GetByID retrieves a user by ID
func (r *userRepository) GetByID(ctx context.Context, id int) (*models.User, error) {
	stmt := "SELECT " + userColumns + " FROM users WHERE id = ?"

	user, err := scanUser(r.db.QueryRowContext(ctx, stmt, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("No user with the id of %d", id)
	}
	if err != nil {
		r.logger.Error("failed to get user by id", zap.Error(err), zap.Int("id", id))
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}

	return user, nil
}

// GetByEmail retrieves a user by email
func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	stmt := "SELECT " + userColumns + " FROM users WHERE email = ? LIMIT 1"

	user, err := scanUser(r.db.QueryRowContext(ctx, stmt, email))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("No user with email %s", email)
	}
	if err != nil {
		r.logger.Error("failed to get user by email", zap.Error(err))
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	return user, nil
}

// List retrieves one page of users matching spec
func (r *userRepository) List(ctx context.Context, spec query.Spec) ([]models.User, error) {
	where, args := spec.Where()
	stmt := fmt.Sprintf("SELECT %s FROM users %s %s LIMIT ? OFFSET ?", userColumns, where, spec.OrderBy())
	args = append(args, spec.Limit(), spec.Offset())

	rows, err := r.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		r.logger.Error("failed to list users", zap.Error(err))
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			r.logger.Error("failed to scan user", zap.Error(err))
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, *user)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("error iterating users", zap.Error(err))
		return nil, fmt.Errorf("error iterating users: %w", err)
	}

	return users, nil
}

// Count returns the number of users matching the filters of spec
func (r *userRepository) Count(ctx context.Context, spec query.Spec) (int, error) {
	where, args := spec.Where()
	stmt := "SELECT COUNT(*) FROM users " + where

	var count int
	if err := r.db.QueryRowContext(ctx, stmt, args...).Scan(&count); err != nil {
		r.logger.Error("failed to count users", zap.Error(err))
		return 0, fmt.Errorf("failed to count users: %w", err)
	}

	return count, nil
}

// UpdateDetails updates the provided profile fields of a user
func (r *userRepository) UpdateDetails(ctx context.Context, id int, req *models.UpdateDetailsRequest) error {
	var setParts []string
	var args []any

	if req.Firstname != nil {
		setParts = append(setParts, "firstname = ?")
		args = append(args, *req.Firstname)
	}
	if req.Lastname != nil {
		setParts = append(setParts, "lastname = ?")
		args = append(args, *req.Lastname)
	}
	if req.Phone != nil {
		setParts = append(setParts, "phone = ?")
		args = append(args, *req.Phone)
	}

	if len(setParts) == 0 {
		return apperrors.Validation("No fields to update")
	}

	stmt := fmt.Sprintf("UPDATE users SET %s WHERE id = ?", strings.Join(setParts, ", "))
	args = append(args, id)

	if _, err := r.db.ExecContext(ctx, stmt, args...); err != nil {
		r.logger.Error("failed to update user details", zap.Error(err), zap.Int("id", id))
		return fmt.Errorf("failed to update user details: %w", err)
	}

	return nil
}

// UpdatePassword replaces the password hash of a user
func (r *userRepository) UpdatePassword(ctx context.Context, id int, passwordHash string) error {
	stmt := `UPDATE users SET password_hash = ? WHERE id = ?`

	result, err := r.db.ExecContext(ctx, stmt, passwordHash, id)
	if err != nil {
		r.logger.Error("failed to update password", zap.Error(err), zap.Int("id", id))
		return fmt.Errorf("failed to update password: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperrors.NotFound("No user with the id of %d", id)
	}

	return nil
}

// Delete removes a user together with all of their reservations in one transaction
func (r *userRepository) Delete(ctx context.Context, id int) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		r.logger.Error("failed to begin transaction", zap.Error(err))
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM reservations WHERE user_id = ?`, id); err != nil {
		r.logger.Error("failed to delete user reservations", zap.Error(err), zap.Int("id", id))
		return fmt.Errorf("failed to delete user reservations: %w", err)
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		r.logger.Error("failed to delete user", zap.Error(err), zap.Int("id", id))
		return fmt.Errorf("failed to delete user: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperrors.NotFound("No user with the id of %d", id)
	}

	if err := tx.Commit(); err != nil {
		r.logger.Error("failed to commit transaction", zap.Error(err))
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// rowScanner is implemented by *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*models.User, error) {
	user := &models.User{}
	err := row.Scan(
		&user.ID,
		&user.Firstname,
		&user.Lastname,
		&user.Email,
		&user.Phone,
		&user.PasswordHash,
		&user.Role,
		&user.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return user, nil
}
