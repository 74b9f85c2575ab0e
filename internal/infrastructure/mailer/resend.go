package mailer

import (
	"context"
	"fmt"

	"github.com/resend/resend-go/v2"

	"github.com/fastygo/taskdesk/internal/config"
)

type Resend struct {
	client *resend.Client
	from   string
}

func NewResend(cfg config.MailerConfig) *Resend {
	from := cfg.From
	if cfg.FromName != "" {
		from = fmt.Sprintf("%s <%s>", cfg.FromName, cfg.From)
	}
	return &Resend{
		client: resend.NewClient(cfg.APIKey),
		from:   from,
	}
}

func (r *Resend) Send(ctx context.Context, msg Message) error {
	params := &resend.SendEmailRequest{
		From:    r.from,
		To:      []string{msg.To},
		Subject: msg.Subject,
		Html:    msg.HTML,
		Text:    msg.Text,
	}
	if _, err := r.client.Emails.SendWithContext(ctx, params); err != nil {
		return fmt.Errorf("resend send: %w", err)
	}
	return nil
}
