package mail

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mailgun/mailgun-go/v4"
)

// MailgunConfig holds mailgun credentials and the fixed sender address.
type MailgunConfig struct {
	Domain  string        `yaml:"domain" env:"MAILGUN_DOMAIN"`
	APIKey  string        `yaml:"apiKey" env:"API"`
	APIBase string        `yaml:"apiBase" env:"MAILGUN_API_BASE"`
	Sender  string        `yaml:"sender" env:"MAIL_SENDER"`
	Timeout time.Duration `yaml:"timeout"`
}

// MailgunMailer implements Mailer with the mailgun HTTP API.
type MailgunMailer struct {
	client  *mailgun.MailgunImpl
	hasKey  bool
	timeout time.Duration
}

var errMissingAPIKey = errors.New("mailgun api key is required")

// NewMailgunMailer creates a mailgun backed mailer.
// An empty api key is accepted here and reported by Send.
func NewMailgunMailer(cfg MailgunConfig) (*MailgunMailer, error) {
	if cfg.Domain == "" {
		return nil, errors.New("mailgun domain is required")
	}
	client := mailgun.NewMailgun(cfg.Domain, cfg.APIKey)
	if cfg.APIBase != "" {
		client.SetAPIBase(cfg.APIBase)
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &MailgunMailer{client: client, hasKey: cfg.APIKey != "", timeout: cfg.Timeout}, nil
}

// Send delivers msg through mailgun.
func (m *MailgunMailer) Send(ctx context.Context, msg Message) (string, error) {
	if !m.hasKey {
		return "", errMissingAPIKey
	}
	if len(msg.To) == 0 {
		return "", errors.New("recipient is required")
	}
	message := m.client.NewMessage(msg.From, msg.Subject, msg.Text, msg.To...)
	if msg.HTML != "" {
		message.SetHtml(msg.HTML)
	}

	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	_, id, err := m.client.Send(ctx, message)
	if err != nil {
		return "", fmt.Errorf("mailgun send failed: %w", err)
	}
	return id, nil
}
