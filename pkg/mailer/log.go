package mailer

import (
	"context"

	"go.uber.org/zap"
)

// LogSender writes rendered e-mails to the logger instead of delivering them.
type LogSender struct {
	renderer *Renderer
	log      *zap.Logger
}

func NewLogSender(renderer *Renderer, log *zap.Logger) *LogSender {
	return &LogSender{
		renderer: renderer,
		log:      log.With(zap.String("mailer", "log")),
	}
}

func (l *LogSender) Send(_ context.Context, kind Kind, to string, data map[string]any) error {
	content, err := l.renderer.Render(kind, to, data)
	if err != nil {
		return err
	}

	l.log.Info("Email not delivered (log provider)",
		zap.String("kind", string(kind)),
		zap.String("to", to),
		zap.String("subject", content.Subject),
		zap.String("body", content.Text),
	)
	return nil
}
