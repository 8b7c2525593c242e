package main

import (
	"context"
	"errors"
	"fmt"
	"html"
	"os"
	"time"

	"github.com/hibiken/asynq"
	"github.com/userhub/backend/internal/storage"
	"github.com/userhub/backend/internal/tasks"
	"go.uber.org/zap"
	"gopkg.in/mail.v2"
)

const welcomeSubject = "Welcome to UserHub"

// Mailer defines the interface for outgoing email delivery
type Mailer interface {
	// Send delivers an HTML email
	//
	// "to" parameter is the recipient address.
	// "subject" parameter is the email subject.
	// "body" parameter is the HTML body.
	//
	// If the email could not be delivered, the error will be returned.
	Send(to, subject, body string) error
}

// ProfileImageRepository defines the interface for reading image references from the users collection
type ProfileImageRepository interface {
	// ListProfileImages retrieves every distinct image filename referenced by a user
	//
	// If some error occurs during data retrieve, the error will be returned together with "nil" value.
	ListProfileImages(ctx context.Context) ([]string, error)
}

// UploadStore defines the interface for the stored uploads the sweep works on
type UploadStore interface {
	// List returns the stored files
	List() ([]storage.FileInfo, error)
	// Delete removes a stored file
	Delete(name string) error
}

// Worker handles task processing
type Worker struct {
	logger       *zap.Logger
	mailer       Mailer
	users        ProfileImageRepository
	uploads      UploadStore
	defaultImage string
	sweepGrace   time.Duration
	now          func() time.Time
}

// NewWorker creates a new worker instance
func NewWorker(
	logger *zap.Logger,
	mailer Mailer,
	users ProfileImageRepository,
	uploads UploadStore,
	defaultImage string,
	sweepGrace time.Duration,
) *Worker {
	return &Worker{
		logger:       logger,
		mailer:       mailer,
		users:        users,
		uploads:      uploads,
		defaultImage: defaultImage,
		sweepGrace:   sweepGrace,
		now:          time.Now,
	}
}

// HandleWelcomeEmail sends the welcome email to a new user
func (w *Worker) HandleWelcomeEmail(ctx context.Context, t *asynq.Task) error {
	payload, err := tasks.ParseWelcomeEmailPayload(t)
	if err != nil {
		// Malformed payloads are not retried
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}

	if err := w.mailer.Send(payload.Email, welcomeSubject, welcomeBody(payload.Name)); err != nil {
		return err
	}

	w.logger.Info("Welcome email sent", zap.String("email", payload.Email))
	return nil
}

// HandleUploadSweep removes uploaded files no user references, together with temp files
// left by interrupted uploads. Files younger than the grace period and the default image are kept.
func (w *Worker) HandleUploadSweep(ctx context.Context, t *asynq.Task) error {
	referenced, err := w.users.ListProfileImages(ctx)
	if err != nil {
		return err
	}
	inUse := make(map[string]struct{}, len(referenced))
	for _, name := range referenced {
		inUse[name] = struct{}{}
	}

	files, err := w.uploads.List()
	if err != nil {
		return err
	}

	cutoff := w.now().Add(-w.sweepGrace)
	removed, temps := 0, 0
	for _, file := range files {
		if file.Name == w.defaultImage || file.ModTime.After(cutoff) {
			continue
		}
		if _, ok := inUse[file.Name]; ok {
			continue
		}
		if err := w.uploads.Delete(file.Name); err != nil && !errors.Is(err, os.ErrNotExist) {
			w.logger.Warn("Failed to delete orphaned upload", zap.String("file", file.Name), zap.Error(err))
			continue
		}
		removed++
		if file.Temp {
			temps++
		}
	}

	w.logger.Info("Upload sweep completed",
		zap.Int("scanned", len(files)),
		zap.Int("removed", removed),
		zap.Int("temp_removed", temps),
	)
	return nil
}

// welcomeBody renders the welcome email body
func welcomeBody(name string) string {
	return fmt.Sprintf("<p>Hi %s,</p><p>your UserHub account is ready. You can log in with your email address now.</p>", html.EscapeString(name))
}

// smtpMailer sends emails through an SMTP server using gopkg.in/mail.v2
type smtpMailer struct {
	host     string
	port     int
	username string
	password string
	from     string
}

// NewSMTPMailer creates a new SMTP mailer
func NewSMTPMailer(host string, port int, username, password, from string) *smtpMailer {
	return &smtpMailer{
		host:     host,
		port:     port,
		username: username,
		password: password,
		from:     from,
	}
}

// Send sends an email
func (m *smtpMailer) Send(to, subject, body string) error {
	msg := mail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", body)

	d := mail.NewDialer(m.host, m.port, m.username, m.password)
	if err := d.DialAndSend(msg); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	return nil
}
