package cmd

import (
	"context"

	"starter-api/internal/usecase"

	"go.uber.org/zap"
)

// Sweep deletes expired one-time passwords once and exits.
func Sweep(ctx context.Context, store usecase.OTPStore, logger *zap.Logger) error {
	expired, err := store.SweepExpired(ctx)
	if err != nil {
		return err
	}

	for _, otp := range expired {
		logger.Debug("Expired OTP removed",
			zap.String("otp_id", otp.ID.String()),
			zap.String("email", otp.Email),
		)
	}
	return nil
}
