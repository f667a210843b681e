package usecase

import (
	"context"
	"fmt"

	"starter-api/internal/data/entity"
	"starter-api/internal/data/repository"
	"starter-api/pkg/apperror"
	"starter-api/pkg/utils"

	"go.uber.org/zap"
)

// UnboundCodeError is returned for a valid code that was requested for an
// email without an account. It matches apperror.ErrInvalidToken.
type UnboundCodeError struct {
	OTP *entity.OneTimePassword
}

func (e *UnboundCodeError) Error() string {
	return apperror.ErrInvalidToken.Error() + ": code not bound to a user"
}

func (e *UnboundCodeError) Unwrap() error {
	return apperror.ErrInvalidToken
}

type OTPAuthenticator interface {
	Authenticate(ctx context.Context, email, code string) (*entity.User, error)
}

type otpAuthenticator struct {
	store  OTPStore
	users  repository.UserRepository
	config *utils.Config
	log    *zap.Logger
}

func NewOTPAuthenticator(store OTPStore, users repository.UserRepository, config *utils.Config, log *zap.Logger) OTPAuthenticator {
	return &otpAuthenticator{
		store:  store,
		users:  users,
		config: config,
		log:    log.With(zap.String("service", "otp_auth")),
	}
}

// Authenticate checks (email, code). The first matching rule wins:
// persistent development code, code lookup, reviewer code, email binding,
// user binding, then the code is consumed.
func (a *otpAuthenticator) Authenticate(ctx context.Context, email, code string) (*entity.User, error) {
	email = utils.NormalizeEmail(email)

	// 1. Persistent code, never in production
	if !a.config.App.IsProduction() && a.config.OTP.PersistentCode != "" && code == a.config.OTP.PersistentCode {
		user, err := a.users.FindByEmail(ctx, email)
		if err != nil {
			return nil, err
		}
		if user != nil {
			a.log.Warn("Persistent OTP used", zap.String("user_id", user.ID.String()))
			return user, nil
		}
	}

	// 2. Lookup
	otp, err := a.store.GetValid(ctx, code)
	if err != nil {
		return nil, err
	}
	if otp == nil {
		return nil, fmt.Errorf("%w: unknown or expired code", apperror.ErrInvalidToken)
	}

	// 3. Reviewer code stays valid until it expires or is deleted
	if reviewer := a.config.OTP.ReviewerEmail; reviewer != "" && otp.Email == reviewer {
		return a.boundUser(ctx, otp)
	}

	// 4. Email binding
	if otp.Email != email {
		a.log.Warn("OTP email mismatch", zap.String("email", email))
		return nil, fmt.Errorf("%w: code issued for another email", apperror.ErrInvalidToken)
	}

	// 5. User binding
	if otp.UserID == nil {
		return nil, &UnboundCodeError{OTP: otp}
	}
	user, err := a.boundUser(ctx, otp)
	if err != nil {
		return nil, err
	}

	// 6. Single use
	if err := a.store.Consume(ctx, otp); err != nil {
		return nil, err
	}

	return user, nil
}

func (a *otpAuthenticator) boundUser(ctx context.Context, otp *entity.OneTimePassword) (*entity.User, error) {
	if otp.UserID == nil {
		return nil, fmt.Errorf("%w: code not bound to a user", apperror.ErrInvalidToken)
	}

	user, err := a.users.FindByID(ctx, *otp.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("%w: bound user no longer exists", apperror.ErrInvalidToken)
	}
	return user, nil
}
