// Package mailer delivers rendered emails through SendGrid, Resend or the log.
package mailer

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/fastygo/taskdesk/internal/config"
)

// Message is a rendered email ready for delivery.
type Message struct {
	To      string
	ToName  string
	Subject string
	Text    string
	HTML    string
}

type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// New selects a provider from configuration.
func New(cfg config.MailerConfig, logger *zap.Logger) (Mailer, error) {
	switch cfg.Provider {
	case config.MailerSendGrid:
		return NewSendGrid(cfg), nil
	case config.MailerResend:
		return NewResend(cfg), nil
	case config.MailerLog, "":
		return NewLog(logger), nil
	default:
		return nil, fmt.Errorf("unknown mailer provider %q", cfg.Provider)
	}
}
