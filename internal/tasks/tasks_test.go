package tasks

import (
	"context"
	"errors"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockClient records enqueued tasks
type mockClient struct {
	tasks []*asynq.Task
	err   error
}

func (m *mockClient) EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.tasks = append(m.tasks, task)
	return &asynq.TaskInfo{Type: task.Type()}, nil
}

func TestWelcomeEmailTask(t *testing.T) {
	task, err := NewWelcomeEmailTask("alice@example.com", "Alice")
	require.NoError(t, err)
	assert.Equal(t, TypeWelcomeEmail, task.Type())

	payload, err := ParseWelcomeEmailPayload(task)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", payload.Email)
	assert.Equal(t, "Alice", payload.Name)
}

func TestParseWelcomeEmailPayload_Errors(t *testing.T) {
	tests := []struct {
		name    string
		payload []byte
	}{
		{name: "invalid json", payload: []byte("{")},
		{name: "missing recipient", payload: []byte(`{"name":"Alice"}`)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseWelcomeEmailPayload(asynq.NewTask(TypeWelcomeEmail, tt.payload))
			assert.Error(t, err)
		})
	}
}

func TestEnqueuer_EnqueueWelcomeEmail(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		client := &mockClient{}
		e := NewEnqueuer(client)

		err := e.EnqueueWelcomeEmail(context.Background(), "alice@example.com", "Alice")

		require.NoError(t, err)
		require.Len(t, client.tasks, 1)
		assert.Equal(t, TypeWelcomeEmail, client.tasks[0].Type())
	})

	t.Run("client error", func(t *testing.T) {
		e := NewEnqueuer(&mockClient{err: errors.New("redis down")})

		err := e.EnqueueWelcomeEmail(context.Background(), "alice@example.com", "Alice")

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to enqueue welcome email")
	})
}

func TestEnqueuer_EnqueueUploadSweep(t *testing.T) {
	tests := []struct {
		name          string
		clientErr     error
		expectedError bool
	}{
		{name: "success"},
		{name: "already pending", clientErr: asynq.ErrDuplicateTask},
		{name: "client error", clientErr: errors.New("redis down"), expectedError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &mockClient{err: tt.clientErr}

			err := NewEnqueuer(client).EnqueueUploadSweep(context.Background())

			if tt.expectedError {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestNoopEnqueuer(t *testing.T) {
	var e NoopEnqueuer
	assert.NoError(t, e.EnqueueWelcomeEmail(context.Background(), "a@b.c", "A"))
	assert.NoError(t, e.EnqueueUploadSweep(context.Background()))
}
