package tasks

import (
	"context"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewReservationTasks(t *testing.T) {
	tests := []struct {
		name     string
		build    func(int) (*asynq.Task, error)
		wantType string
	}{
		{name: "confirmation", build: NewConfirmationTask, wantType: TypeReservationConfirmation},
		{name: "reminder", build: NewReminderTask, wantType: TypeReservationReminder},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			task, err := tt.build(42)
			require.NoError(t, err)
			assert.Equal(t, tt.wantType, task.Type())
			assert.JSONEq(t, `{"reservation_id": 42}`, string(task.Payload()))

			payload, err := ParsePayload(task)
			require.NoError(t, err)
			assert.Equal(t, 42, payload.ReservationID)
		})
	}

	t.Run("rejects non-positive id", func(t *testing.T) {
		_, err := NewConfirmationTask(0)
		assert.Error(t, err)
	})
}

func TestParsePayload(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{name: "not json", payload: "42"},
		{name: "missing id", payload: `{}`},
		{name: "negative id", payload: `{"reservation_id": -1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParsePayload(asynq.NewTask(TypeReservationReminder, []byte(tt.payload)))
			assert.Error(t, err)
		})
	}
}

// mockTaskClient is a mock implementation of TaskClient
type mockTaskClient struct {
	tasks []*asynq.Task
	err   error
}

func (m *mockTaskClient) EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.tasks = append(m.tasks, task)
	return &asynq.TaskInfo{ID: "task-1", Type: task.Type(), Queue: QueueEmails}, nil
}

func TestEnqueuer(t *testing.T) {
	ctx := context.Background()

	t.Run("confirmation and reminder", func(t *testing.T) {
		client := &mockTaskClient{}
		e := NewEnqueuer(client, zap.NewNop())

		require.NoError(t, e.EnqueueConfirmation(ctx, 7))
		require.NoError(t, e.EnqueueReminder(ctx, 8))

		require.Len(t, client.tasks, 2)
		assert.Equal(t, TypeReservationConfirmation, client.tasks[0].Type())
		assert.Equal(t, TypeReservationReminder, client.tasks[1].Type())

		payload, err := ParsePayload(client.tasks[1])
		require.NoError(t, err)
		assert.Equal(t, 8, payload.ReservationID)
	})

	t.Run("client error", func(t *testing.T) {
		e := NewEnqueuer(&mockTaskClient{err: assert.AnError}, zap.NewNop())

		err := e.EnqueueConfirmation(ctx, 7)
		require.Error(t, err)
		assert.ErrorIs(t, err, assert.AnError)
	})

	t.Run("invalid id is not enqueued", func(t *testing.T) {
		client := &mockTaskClient{}
		e := NewEnqueuer(client, zap.NewNop())

		assert.Error(t, e.EnqueueReminder(ctx, 0))
		assert.Empty(t, client.tasks)
	})
}
