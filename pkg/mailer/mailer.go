// Package mailer delivers transactional e-mails. Senders are best effort:
// callers log failures and carry on.
package mailer

import (
	"context"
	"fmt"

	"starter-api/pkg/utils"

	"go.uber.org/zap"
)

type Kind string

const (
	KindNewAccount       Kind = "new_account"
	KindResetPassword    Kind = "reset_password"
	KindVerificationCode Kind = "verification_code"
)

type Sender interface {
	Send(ctx context.Context, kind Kind, to string, data map[string]any) error
}

// New picks the sender for cfg.Provider. Disabled e-mail falls back to the
// log sender so codes stay visible in development.
func New(cfg utils.EmailConfig, appName string, log *zap.Logger) (Sender, error) {
	renderer, err := NewRenderer(appName, cfg.WebAppURL)
	if err != nil {
		return nil, err
	}

	if !cfg.Enabled {
		return NewLogSender(renderer, log), nil
	}

	switch cfg.Provider {
	case "mailersend":
		return NewMailerSendSender(cfg, renderer)
	case "smtp":
		return NewSMTPSender(cfg, renderer)
	case "log", "":
		return NewLogSender(renderer, log), nil
	default:
		return nil, fmt.Errorf("unknown email provider %q", cfg.Provider)
	}
}
