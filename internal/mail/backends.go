// internal/mail/backends.go
package mail

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	gomail "github.com/wneessen/go-mail"

	"github.com/Annany2002/jobboard-backend/config"
)

// ConsoleMailer writes messages to the log.
type ConsoleMailer struct {
	defaults
}

func (m *ConsoleMailer) Send(ctx context.Context, msg Message) error {
	msg, err := m.apply(msg)
	if err != nil {
		return err
	}
	customLog.WithFields(logrus.Fields{
		"from": msg.From,
		"to":   strings.Join(msg.To, ", "),
	}).Infof("Subject: %s\n%s", msg.Subject, msg.Body)
	return nil
}

// MemoryMailer keeps sent messages in an outbox.
type MemoryMailer struct {
	defaults

	mu     sync.Mutex
	outbox []Message
}

func (m *MemoryMailer) Send(ctx context.Context, msg Message) error {
	msg, err := m.apply(msg)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.outbox = append(m.outbox, msg)
	return nil
}

// Outbox returns a copy of the sent messages.
func (m *MemoryMailer) Outbox() []Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Message(nil), m.outbox...)
}

// SMTPMailer delivers through an SMTP relay.
type SMTPMailer struct {
	defaults
	client *gomail.Client

	send func(ctx context.Context, msgs ...*gomail.Msg) error
	now  func() time.Time
}

// NewSMTPMailer uses PLAIN auth when EMAIL_HOST_USER is set.
func NewSMTPMailer(cfg config.EmailConfig) (*SMTPMailer, error) {
	opts := []gomail.Option{
		gomail.WithPort(cfg.Port),
		gomail.WithTLSPolicy(gomail.TLSOpportunistic),
	}
	if cfg.HostUser != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(cfg.HostUser),
			gomail.WithPassword(cfg.HostPassword),
		)
	}
	client, err := gomail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: smtp client for %q: %v", config.ErrImproperlyConfigured, cfg.Host, err)
	}
	return &SMTPMailer{
		defaults: defaults{from: cfg.DefaultFrom, prefix: cfg.SubjectPrefix},
		client:   client,
		send:     client.DialAndSendWithContext,
		now:      time.Now,
	}, nil
}

func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	msg, err := m.apply(msg)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	out, err := m.build(msg)
	if err != nil {
		return err
	}
	if err := m.send(ctx, out); err != nil {
		return fmt.Errorf("smtp send via %s: %w", m.client.ServerAddr(), err)
	}
	customLog.Debugf("Sent %q to %d recipient(s)", msg.Subject, len(msg.To))
	return nil
}

// build renders msg as a UTF-8 plain-text message; headers are RFC 2047 encoded.
func (m *SMTPMailer) build(msg Message) (*gomail.Msg, error) {
	out := gomail.NewMsg()
	if err := out.From(msg.From); err != nil {
		return nil, fmt.Errorf("mail: invalid sender %q: %w", msg.From, err)
	}
	if err := out.To(msg.To...); err != nil {
		return nil, fmt.Errorf("mail: invalid recipients %v: %w", msg.To, err)
	}
	out.Subject(headerSafe(msg.Subject))
	out.SetDateWithValue(m.now())
	out.SetBodyString(gomail.TypeTextPlain, msg.Body)
	return out, nil
}

func headerSafe(s string) string {
	return strings.NewReplacer("\r", " ", "\n", " ").Replace(s)
}
