package mailer

import (
	"context"
	"errors"
	"fmt"

	"starter-api/pkg/utils"

	"github.com/wneessen/go-mail"
)

type SMTPSender struct {
	client   *mail.Client
	from     string
	fromName string
	renderer *Renderer
}

func NewSMTPSender(cfg utils.EmailConfig, renderer *Renderer) (*SMTPSender, error) {
	if cfg.Host == "" || cfg.From == "" {
		return nil, errors.New("SMTP_HOST and EMAIL_FROM are required for the smtp provider")
	}

	opts := []mail.Option{
		mail.WithPort(cfg.Port),
	}
	if cfg.User != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthLogin),
			mail.WithUsername(cfg.User),
			mail.WithPassword(cfg.Password),
		)
	}
	if cfg.TLS {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSMandatory))
	} else {
		opts = append(opts, mail.WithTLSPolicy(mail.NoTLS))
	}

	client, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("create smtp client: %w", err)
	}

	return &SMTPSender{
		client:   client,
		from:     cfg.From,
		fromName: cfg.FromName,
		renderer: renderer,
	}, nil
}

func (s *SMTPSender) Send(ctx context.Context, kind Kind, to string, data map[string]any) error {
	content, err := s.renderer.Render(kind, to, data)
	if err != nil {
		return err
	}

	msg := mail.NewMsg()
	if s.fromName != "" {
		err = msg.FromFormat(s.fromName, s.from)
	} else {
		err = msg.From(s.from)
	}
	if err != nil {
		return fmt.Errorf("set from address: %w", err)
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("set to address: %w", err)
	}
	msg.Subject(content.Subject)
	msg.SetBodyString(mail.TypeTextPlain, content.Text)
	msg.AddAlternativeString(mail.TypeTextHTML, content.HTML)

	if err := s.client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("smtp %s to %s: %w", kind, to, err)
	}
	return nil
}
