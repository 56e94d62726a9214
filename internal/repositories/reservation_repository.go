package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/restaurantbooking/backend/internal/apperrors"
	"github.com/restaurantbooking/backend/internal/models"
	"go.uber.org/zap"
)

const reservationSelect = `
	SELECT r.id, r.user_id, r.restaurant_id, r.resv_date, r.created_at,
		s.id, s.name, s.province, s.phone
	FROM reservations r
	INNER JOIN restaurants s ON s.id = r.restaurant_id
`

const noticeSelect = `
	SELECT r.id, r.resv_date, u.email, u.firstname, s.name, s.address, s.phone
	FROM reservations r
	INNER JOIN users u ON u.id = r.user_id
	INNER JOIN restaurants s ON s.id = r.restaurant_id
`

// reservationRepository implements ReservationRepository
type reservationRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewReservationRepository creates a new reservation repository
func NewReservationRepository(db *sql.DB, logger *zap.Logger) *reservationRepository {
	return &reservationRepository{
		db:     db,
		logger: logger,
	}
}

// CreateWithinQuota inserts a reservation if admit accepts the owner's current reservation count.
// The owner row is locked for the duration of the transaction, so concurrent creations
// for the same user are serialized and the count cannot go stale before the insert.
func (r *reservationRepository) CreateWithinQuota(ctx context.Context, reservation *models.Reservation, admit func(count int) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		r.logger.Error("failed to begin transaction", zap.Error(err))
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var ownerID int
	err = tx.QueryRowContext(ctx, `SELECT id FROM users WHERE id = ? FOR UPDATE`, reservation.UserID).Scan(&ownerID)
	if errors.Is(err, sql.ErrNoRows) {
		return apperrors.NotFound("No user with the id of %d", reservation.UserID)
	}
	if err != nil {
		r.logger.Error("failed to lock user", zap.Error(err), zap.Int("user_id", reservation.UserID))
		return fmt.Errorf("failed to lock user: %w", err)
	}

	var count int
	err = tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM reservations WHERE user_id = ?`, reservation.UserID).Scan(&count)
	if err != nil {
		r.logger.Error("failed to count reservations", zap.Error(err), zap.Int("user_id", reservation.UserID))
		return fmt.Errorf("failed to count reservations: %w", err)
	}

	if err := admit(count); err != nil {
		return err
	}

	if reservation.CreatedAt.IsZero() {
		reservation.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO reservations (user_id, restaurant_id, resv_date, created_at)
		VALUES (?, ?, ?, ?)
	`
	result, err := tx.ExecContext(ctx, query,
		reservation.UserID, reservation.RestaurantID, reservation.ResvDate, reservation.CreatedAt)
	if err != nil {
		if mapped := mapConstraintError(err); mapped != nil {
			return mapped
		}
		r.logger.Error("failed to create reservation", zap.Error(err))
		return fmt.Errorf("failed to create reservation: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		r.logger.Error("failed to get last insert id", zap.Error(err))
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	if err := tx.Commit(); err != nil {
		r.logger.Error("failed to commit transaction", zap.Error(err))
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	reservation.ID = int(id)
	return nil
}

// GetByID retrieves a reservation with its restaurant summary
func (r *reservationRepository) GetByID(ctx context.Context, id int) (*models.Reservation, error) {
	query := reservationSelect + " WHERE r.id = ?"

	reservation, err := scanReservation(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("No reservation with the id of %d", id)
	}
	if err != nil {
		r.logger.Error("failed to get reservation by id", zap.Error(err), zap.Int("id", id))
		return nil, fmt.Errorf("failed to get reservation by id: %w", err)
	}

	return reservation, nil
}

// List retrieves the reservations matching filter ordered by reservation date
func (r *reservationRepository) List(ctx context.Context, filter models.ReservationFilter) ([]models.Reservation, error) {
	var conditions []string
	var args []any

	if filter.UserID != 0 {
		conditions = append(conditions, "r.user_id = ?")
		args = append(args, filter.UserID)
	}
	if filter.RestaurantID != 0 {
		conditions = append(conditions, "r.restaurant_id = ?")
		args = append(args, filter.RestaurantID)
	}

	query := reservationSelect
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY r.resv_date ASC, r.id ASC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("failed to list reservations", zap.Error(err))
		return nil, fmt.Errorf("failed to list reservations: %w", err)
	}
	defer rows.Close()

	reservations := []models.Reservation{}
	for rows.Next() {
		reservation, err := scanReservation(rows)
		if err != nil {
			r.logger.Error("failed to scan reservation", zap.Error(err))
			return nil, fmt.Errorf("failed to scan reservation: %w", err)
		}
		reservations = append(reservations, *reservation)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("error iterating reservations", zap.Error(err))
		return nil, fmt.Errorf("error iterating reservations: %w", err)
	}

	return reservations, nil
}

// Update updates the provided fields of a reservation
func (r *reservationRepository) Update(ctx context.Context, id int, req *models.UpdateReservationRequest) error {
	var setParts []string
	var args []any

	if req.ResvDate != nil {
		setParts = append(setParts, "resv_date = ?")
		args = append(args, *req.ResvDate)
	}
	if req.RestaurantID != nil {
		setParts = append(setParts, "restaurant_id = ?")
		args = append(args, *req.RestaurantID)
	}

	if len(setParts) == 0 {
		return apperrors.Validation("No fields to update")
	}

	query := fmt.Sprintf("UPDATE reservations SET %s WHERE id = ?", strings.Join(setParts, ", "))
	args = append(args, id)

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		if mapped := mapConstraintError(err); mapped != nil {
			return mapped
		}
		r.logger.Error("failed to update reservation", zap.Error(err), zap.Int("id", id))
		return fmt.Errorf("failed to update reservation: %w", err)
	}

	return nil
}

// Delete removes a reservation
func (r *reservationRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM reservations WHERE id = ?`, id)
	if err != nil {
		r.logger.Error("failed to delete reservation", zap.Error(err), zap.Int("id", id))
		return fmt.Errorf("failed to delete reservation: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperrors.NotFound("No reservation with the id of %d", id)
	}

	return nil
}

// GetNotice retrieves the data needed to email the owner of a reservation
func (r *reservationRepository) GetNotice(ctx context.Context, id int) (*models.ReservationNotice, error) {
	query := noticeSelect + " WHERE r.id = ?"

	notice, err := scanNotice(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("No reservation with the id of %d", id)
	}
	if err != nil {
		r.logger.Error("failed to get reservation notice", zap.Error(err), zap.Int("id", id))
		return nil, fmt.Errorf("failed to get reservation notice: %w", err)
	}

	return notice, nil
}

// ListUpcoming retrieves notices for reservations dated within [from, to)
func (r *reservationRepository) ListUpcoming(ctx context.Context, from, to time.Time) ([]models.ReservationNotice, error) {
	query := noticeSelect + " WHERE r.resv_date >= ? AND r.resv_date < ? ORDER BY r.resv_date ASC, r.id ASC"

	rows, err := r.db.QueryContext(ctx, query, from, to)
	if err != nil {
		r.logger.Error("failed to list upcoming reservations", zap.Error(err))
		return nil, fmt.Errorf("failed to list upcoming reservations: %w", err)
	}
	defer rows.Close()

	notices := []models.ReservationNotice{}
	for rows.Next() {
		notice, err := scanNotice(rows)
		if err != nil {
			r.logger.Error("failed to scan reservation notice", zap.Error(err))
			return nil, fmt.Errorf("failed to scan reservation notice: %w", err)
		}
		notices = append(notices, *notice)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("error iterating upcoming reservations", zap.Error(err))
		return nil, fmt.Errorf("error iterating upcoming reservations: %w", err)
	}

	return notices, nil
}

func scanReservation(row rowScanner) (*models.Reservation, error) {
	reservation := &models.Reservation{Restaurant: &models.RestaurantSummary{}}
	err := row.Scan(
		&reservation.ID,
		&reservation.UserID,
		&reservation.RestaurantID,
		&reservation.ResvDate,
		&reservation.CreatedAt,
		&reservation.Restaurant.ID,
		&reservation.Restaurant.Name,
		&reservation.Restaurant.Province,
		&reservation.Restaurant.Phone,
	)
	if err != nil {
		return nil, err
	}
	return reservation, nil
}

func scanNotice(row rowScanner) (*models.ReservationNotice, error) {
	notice := &models.ReservationNotice{}
	err := row.Scan(
		&notice.ReservationID,
		&notice.ResvDate,
		&notice.UserEmail,
		&notice.UserFirstname,
		&notice.RestaurantName,
		&notice.RestaurantAddr,
		&notice.RestaurantTel,
	)
	if err != nil {
		return nil, err
	}
	return notice, nil
}
