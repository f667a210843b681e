package usecase

import (
	"context"
	"time"

	"starter-api/pkg/mailer"

	"go.uber.org/zap"
)

// sendEmail is meant to run in its own goroutine. Failures are logged and
// never reach the caller.
func sendEmail(sender mailer.Sender, log *zap.Logger, kind mailer.Kind, to string, data map[string]any) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := sender.Send(ctx, kind, to, data); err != nil {
		log.Error("Failed to send email",
			zap.Error(err),
			zap.String("kind", string(kind)),
			zap.String("email", to),
		)
	}
}
