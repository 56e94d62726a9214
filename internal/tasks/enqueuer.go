package tasks

import (
	"context"
	"fmt"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// TaskClient is the subset of *asynq.Client used to enqueue tasks
type TaskClient interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// Enqueuer places reservation email tasks on the queue
type Enqueuer struct {
	client TaskClient
	logger *zap.Logger
}

// NewEnqueuer creates a new enqueuer
func NewEnqueuer(client TaskClient, logger *zap.Logger) *Enqueuer {
	return &Enqueuer{client: client, logger: logger}
}

// EnqueueConfirmation schedules the confirmation email of a new reservation
func (e *Enqueuer) EnqueueConfirmation(ctx context.Context, reservationID int) error {
	task, err := NewConfirmationTask(reservationID)
	if err != nil {
		return err
	}
	return e.enqueue(ctx, task, reservationID)
}

// EnqueueReminder schedules the reminder email of an upcoming reservation
func (e *Enqueuer) EnqueueReminder(ctx context.Context, reservationID int) error {
	task, err := NewReminderTask(reservationID)
	if err != nil {
		return err
	}
	return e.enqueue(ctx, task, reservationID)
}

func (e *Enqueuer) enqueue(ctx context.Context, task *asynq.Task, reservationID int) error {
	info, err := e.client.EnqueueContext(ctx, task)
	if err != nil {
		return fmt.Errorf("failed to enqueue %s: %w", task.Type(), err)
	}

	e.logger.Debug("task enqueued",
		zap.String("type", task.Type()),
		zap.String("task_id", info.ID),
		zap.Int("reservation_id", reservationID),
	)
	return nil
}
