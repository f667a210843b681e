package mailer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"starter-api/pkg/utils"

	"github.com/mailersend/mailersend-go"
)

type MailerSendSender struct {
	client   *mailersend.Mailersend
	from     mailersend.From
	renderer *Renderer
}

func NewMailerSendSender(cfg utils.EmailConfig, renderer *Renderer) (*MailerSendSender, error) {
	if cfg.MailerSendKey == "" || cfg.From == "" {
		return nil, errors.New("MAILERSEND_API_KEY and EMAIL_FROM are required for the mailersend provider")
	}

	return &MailerSendSender{
		client: mailersend.NewMailersend(cfg.MailerSendKey),
		from: mailersend.From{
			Name:  cfg.FromName,
			Email: cfg.From,
		},
		renderer: renderer,
	}, nil
}

func (m *MailerSendSender) Send(ctx context.Context, kind Kind, to string, data map[string]any) error {
	content, err := m.renderer.Render(kind, to, data)
	if err != nil {
		return err
	}

	msg := m.client.Email.NewMessage()
	msg.SetFrom(m.from)
	msg.SetRecipients([]mailersend.Recipient{{Email: to}})
	msg.SetSubject(content.Subject)

	if strings.TrimSpace(content.Text) != "" {
		msg.SetText(content.Text)
	}
	if strings.TrimSpace(content.HTML) != "" {
		msg.SetHTML(content.HTML)
	}

	if _, err := m.client.Email.Send(ctx, msg); err != nil {
		return fmt.Errorf("mailersend %s to %s: %w", kind, to, err)
	}
	return nil
}
