// Package tasks defines the background task types and enqueues them on asynq
package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
)

// Task types
const (
	TypeWelcomeEmail = "email:welcome"
	TypeUploadSweep  = "uploads:sweep"
)

// Queue names with their worker priorities
const (
	QueueEmails      = "emails"
	QueueMaintenance = "maintenance"
)

// Queues maps queue names to their priority for the worker
var Queues = map[string]int{
	QueueEmails:      5,
	QueueMaintenance: 1,
}

// WelcomeEmailPayload is the payload of TypeWelcomeEmail tasks
type WelcomeEmailPayload struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// NewWelcomeEmailTask builds a welcome email task for a newly registered user
func NewWelcomeEmailTask(email, name string) (*asynq.Task, error) {
	payload, err := json.Marshal(WelcomeEmailPayload{Email: email, Name: name})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal welcome email payload: %w", err)
	}
	return asynq.NewTask(TypeWelcomeEmail, payload, asynq.Queue(QueueEmails), asynq.MaxRetry(5)), nil
}

// ParseWelcomeEmailPayload decodes the payload of a welcome email task
func ParseWelcomeEmailPayload(t *asynq.Task) (*WelcomeEmailPayload, error) {
	var p WelcomeEmailPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return nil, fmt.Errorf("failed to unmarshal welcome email payload: %w", err)
	}
	if p.Email == "" {
		return nil, fmt.Errorf("welcome email payload has no recipient")
	}
	return &p, nil
}

// NewUploadSweepTask builds an upload sweep task.
// Only one sweep may be pending at a time.
func NewUploadSweepTask() *asynq.Task {
	return asynq.NewTask(TypeUploadSweep, nil,
		asynq.Queue(QueueMaintenance),
		asynq.MaxRetry(1),
		asynq.Unique(30*time.Minute),
	)
}

// taskClient is the subset of asynq.Client used to enqueue tasks
type taskClient interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// Enqueuer puts tasks on the queue
type Enqueuer struct {
	client taskClient
}

// NewEnqueuer creates an Enqueuer on top of an asynq client
func NewEnqueuer(client taskClient) *Enqueuer {
	return &Enqueuer{client: client}
}

// EnqueueWelcomeEmail enqueues a welcome email for the given recipient
func (e *Enqueuer) EnqueueWelcomeEmail(ctx context.Context, email, name string) error {
	task, err := NewWelcomeEmailTask(email, name)
	if err != nil {
		return err
	}
	if _, err := e.client.EnqueueContext(ctx, task); err != nil {
		return fmt.Errorf("failed to enqueue welcome email: %w", err)
	}
	return nil
}

// EnqueueUploadSweep enqueues an upload sweep. A sweep that is already pending is not an error.
func (e *Enqueuer) EnqueueUploadSweep(ctx context.Context) error {
	if _, err := e.client.EnqueueContext(ctx, NewUploadSweepTask()); err != nil {
		if errors.Is(err, asynq.ErrDuplicateTask) {
			return nil
		}
		return fmt.Errorf("failed to enqueue upload sweep: %w", err)
	}
	return nil
}

// NoopEnqueuer drops every task. It is used when the task queue is disabled.
type NoopEnqueuer struct{}

// EnqueueWelcomeEmail does nothing
func (NoopEnqueuer) EnqueueWelcomeEmail(ctx context.Context, email, name string) error {
	return nil
}

// EnqueueUploadSweep does nothing
func (NoopEnqueuer) EnqueueUploadSweep(ctx context.Context) error {
	return nil
}
