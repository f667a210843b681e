package entity

import (
	"time"

	"github.com/google/uuid"
)

// OneTimePassword is an e-mailed login code. At most one row exists per
// email; rows are never updated, only replaced or deleted.
type OneTimePassword struct {
	BaseSimple
	VerificationCode string     `db:"verification_code"`
	Email            string     `db:"email"`
	UserID           *uuid.UUID `db:"user_id"`
	ExpiresAt        time.Time  `db:"expires_at"`
}

func (o *OneTimePassword) IsExpired(now time.Time) bool {
	return !o.ExpiresAt.After(now)
}
