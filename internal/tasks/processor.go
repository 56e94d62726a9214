package tasks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/restaurantbooking/backend/internal/apperrors"
	"github.com/restaurantbooking/backend/internal/models"
	"go.uber.org/zap"
)

// NoticeReader loads the data needed to email a user about a reservation
type NoticeReader interface {
	// GetNotice retrieves the reservation together with its user and restaurant.
	//
	// A missing reservation is reported as an apperrors.ErrNotFound error.
	GetNotice(ctx context.Context, id int) (*models.ReservationNotice, error)
}

// Processor handles reservation email tasks
type Processor struct {
	notices NoticeReader
	mailer  Mailer
	logger  *zap.Logger
	now     func() time.Time
}

// NewProcessor creates a new processor
func NewProcessor(notices NoticeReader, mailer Mailer, logger *zap.Logger) *Processor {
	return &Processor{
		notices: notices,
		mailer:  mailer,
		logger:  logger,
		now:     time.Now,
	}
}

// Register binds the processor's handlers to their task types
func (p *Processor) Register(mux *asynq.ServeMux) {
	mux.HandleFunc(TypeReservationConfirmation, p.HandleConfirmation)
	mux.HandleFunc(TypeReservationReminder, p.HandleReminder)
}

// HandleConfirmation emails the booking confirmation of a reservation
func (p *Processor) HandleConfirmation(ctx context.Context, t *asynq.Task) error {
	notice, err := p.loadNotice(ctx, t)
	if err != nil || notice == nil {
		return err
	}

	email, err := ConfirmationEmail(notice)
	if err != nil {
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	}
	return p.send(ctx, t, email, notice.ReservationID)
}

// HandleReminder emails a reminder for an upcoming reservation.
// Reservations moved into the past since enqueueing are skipped.
func (p *Processor) HandleReminder(ctx context.Context, t *asynq.Task) error {
	notice, err := p.loadNotice(ctx, t)
	if err != nil || notice == nil {
		return err
	}

	if notice.ResvDate.Before(p.now()) {
		p.logger.Info("skipping reminder for past reservation", zap.Int("reservation_id", notice.ReservationID))
		return nil
	}

	email, err := ReminderEmail(notice)
	if err != nil {
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	}
	return p.send(ctx, t, email, notice.ReservationID)
}

// loadNotice returns a nil notice without error when the reservation no longer exists
func (p *Processor) loadNotice(ctx context.Context, t *asynq.Task) (*models.ReservationNotice, error) {
	payload, err := ParsePayload(t)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	}

	notice, err := p.notices.GetNotice(ctx, payload.ReservationID)
	if errors.Is(err, apperrors.ErrNotFound) {
		// Deleted before the task ran
		p.logger.Info("reservation no longer exists", zap.String("type", t.Type()), zap.Int("reservation_id", payload.ReservationID))
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return notice, nil
}

func (p *Processor) send(ctx context.Context, t *asynq.Task, email *Email, reservationID int) error {
	if err := p.mailer.Send(ctx, email); err != nil {
		p.logger.Error("failed to send reservation email",
			zap.String("type", t.Type()),
			zap.Int("reservation_id", reservationID),
			zap.Error(err),
		)
		return err
	}

	p.logger.Info("reservation email sent", zap.String("type", t.Type()), zap.Int("reservation_id", reservationID))
	return nil
}
