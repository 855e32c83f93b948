// internal/mail/mail.go
package mail

import (
	"context"
	"fmt"
	"strings"

	"github.com/Annany2002/jobboard-backend/config"
	"github.com/Annany2002/jobboard-backend/internal/domain"
	"github.com/Annany2002/jobboard-backend/internal/logger"
	"github.com/Annany2002/jobboard-backend/internal/metrics"
)

var customLog = logger.Named("mail")

// Message is a plain-text email.
type Message struct {
	From    string
	To      []string
	Subject string
	Body    string
}

// Mailer delivers messages.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// defaults fill in the sender and subject prefix from EmailConfig.
type defaults struct {
	from   string
	prefix string
}

func (d defaults) apply(msg Message) (Message, error) {
	if len(msg.To) == 0 {
		return msg, fmt.Errorf("mail: message %q has no recipients", msg.Subject)
	}
	if msg.From == "" {
		msg.From = d.from
	}
	msg.Subject = d.prefix + msg.Subject
	msg.To = append([]string(nil), msg.To...)
	return msg, nil
}

// New returns the mailer selected by cfg.Backend.
func New(cfg config.EmailConfig) (Mailer, error) {
	d := defaults{from: cfg.DefaultFrom, prefix: cfg.SubjectPrefix}
	switch cfg.Backend {
	case "smtp":
		m, err := NewSMTPMailer(cfg)
		if err != nil {
			return nil, err
		}
		return m, nil
	case "console":
		return &ConsoleMailer{defaults: d}, nil
	case "memory":
		return &MemoryMailer{defaults: d}, nil
	}
	return nil, fmt.Errorf("%w: unknown EMAIL_BACKEND %q", config.ErrImproperlyConfigured, cfg.Backend)
}

// ApplicationReceipt is the confirmation sent to an applicant.
func ApplicationReceipt(applicant *domain.User, job *domain.Job, app *domain.Application) Message {
	var body strings.Builder
	fmt.Fprintf(&body, "Hello,\n\nWe received your application for %s at %s.\n", job.Title, job.Company)
	fmt.Fprintf(&body, "Application #%d is now %s. We will email you when its status changes.\n", app.ID, app.Status)
	return Message{
		To:      []string{applicant.Email},
		Subject: fmt.Sprintf("Application received: %s", job.Title),
		Body:    body.String(),
	}
}

// StatusChanged notifies an applicant of a workflow transition.
func StatusChanged(applicant *domain.User, app *domain.Application) Message {
	return Message{
		To:      []string{applicant.Email},
		Subject: fmt.Sprintf("Application #%d is now %s", app.ID, app.Status),
		Body:    fmt.Sprintf("Hello,\n\nThe status of application #%d changed to %s.\n", app.ID, app.Status),
	}
}

// SendLogged delivers msg and logs a failure instead of returning it.
func SendLogged(ctx context.Context, m Mailer, msg Message) {
	if err := m.Send(ctx, msg); err != nil {
		metrics.MailFailures.Inc()
		customLog.WithError(err).Warnf("Failed to send %q to %s", msg.Subject, strings.Join(msg.To, ", "))
	}
}
