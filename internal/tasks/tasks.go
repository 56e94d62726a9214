// Package tasks defines the background jobs that email users about their reservations
package tasks

import (
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
)

// Task type names
const (
	TypeReservationConfirmation = "reservation:confirmation"
	TypeReservationReminder     = "reservation:reminder"
)

// QueueEmails is the queue every reservation email task is placed on
const QueueEmails = "emails"

const maxRetry = 5

// ReservationPayload identifies the reservation a task is about
type ReservationPayload struct {
	ReservationID int `json:"reservation_id"`
}

// NewConfirmationTask creates a task that emails the booking confirmation of a reservation
func NewConfirmationTask(reservationID int) (*asynq.Task, error) {
	return newReservationTask(TypeReservationConfirmation, reservationID)
}

// NewReminderTask creates a task that emails a reminder for an upcoming reservation
func NewReminderTask(reservationID int) (*asynq.Task, error) {
	return newReservationTask(TypeReservationReminder, reservationID)
}

func newReservationTask(typename string, reservationID int) (*asynq.Task, error) {
	if reservationID <= 0 {
		return nil, fmt.Errorf("invalid reservation id: %d", reservationID)
	}
	payload, err := json.Marshal(ReservationPayload{ReservationID: reservationID})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal task payload: %w", err)
	}
	return asynq.NewTask(typename, payload, asynq.Queue(QueueEmails), asynq.MaxRetry(maxRetry)), nil
}

// ParsePayload decodes the payload of a reservation task
func ParsePayload(t *asynq.Task) (ReservationPayload, error) {
	var p ReservationPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return ReservationPayload{}, fmt.Errorf("failed to parse task payload: %w", err)
	}
	if p.ReservationID <= 0 {
		return ReservationPayload{}, fmt.Errorf("invalid reservation id in payload: %d", p.ReservationID)
	}
	return p, nil
}
