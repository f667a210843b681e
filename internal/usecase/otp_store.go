package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"starter-api/internal/data/entity"
	"starter-api/internal/data/repository"
	"starter-api/pkg/apperror"
	"starter-api/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// maxReplaceAttempts bounds retries when two requests race to create a code
// for the same email.
const maxReplaceAttempts = 3

// OTPStore keeps at most one outstanding code per email.
type OTPStore interface {
	CreateForEmail(ctx context.Context, email string, userID *uuid.UUID) (*entity.OneTimePassword, error)
	// GetValid returns nil when code is unknown or expired.
	GetValid(ctx context.Context, code string) (*entity.OneTimePassword, error)
	// Consume deletes otp. It fails with apperror.ErrInvalidToken when the
	// row is already gone.
	Consume(ctx context.Context, otp *entity.OneTimePassword) error
	SweepExpired(ctx context.Context) ([]*entity.OneTimePassword, error)
	CreateReviewerOTP(ctx context.Context, user *entity.User) (*entity.OneTimePassword, error)
	DeleteReviewerOTP(ctx context.Context) (*entity.OneTimePassword, error)
	Update(ctx context.Context, otp *entity.OneTimePassword) error
}

type otpStore struct {
	repo   repository.OTPRepository
	config *utils.Config
	log    *zap.Logger
	now    func() time.Time
}

func NewOTPStore(repo repository.OTPRepository, config *utils.Config, log *zap.Logger) OTPStore {
	return &otpStore{
		repo:   repo,
		config: config,
		log:    log.With(zap.String("service", "otp_store")),
		now:    time.Now,
	}
}

func (s *otpStore) CreateForEmail(ctx context.Context, email string, userID *uuid.UUID) (*entity.OneTimePassword, error) {
	return s.create(ctx, utils.NormalizeEmail(email), userID, s.config.OTP.TTL())
}

func (s *otpStore) create(ctx context.Context, email string, userID *uuid.UUID, ttl time.Duration) (*entity.OneTimePassword, error) {
	var err error
	for attempt := 1; attempt <= maxReplaceAttempts; attempt++ {
		now := s.now().UTC()
		otp := &entity.OneTimePassword{
			BaseSimple: entity.BaseSimple{
				ID:        uuid.New(),
				CreatedAt: now,
			},
			Email:     email,
			UserID:    userID,
			ExpiresAt: now.Add(ttl),
		}

		err = s.repo.Replace(ctx, otp)
		if err == nil {
			s.log.Info("OTP created",
				zap.String("email", email),
				zap.Time("expires_at", otp.ExpiresAt),
			)
			return otp, nil
		}
		if !errors.Is(err, apperror.ErrConflict) {
			break
		}

		s.log.Warn("Concurrent OTP creation, retrying",
			zap.String("email", email),
			zap.Int("attempt", attempt),
		)
	}

	return nil, fmt.Errorf("create OTP for %s: %w", email, err)
}

func (s *otpStore) GetValid(ctx context.Context, code string) (*entity.OneTimePassword, error) {
	return s.repo.FindValidByCode(ctx, code, s.now().UTC())
}

func (s *otpStore) Consume(ctx context.Context, otp *entity.OneTimePassword) error {
	deleted, err := s.repo.Delete(ctx, otp.ID)
	if err != nil {
		return err
	}
	if !deleted {
		s.log.Warn("OTP already consumed", zap.String("otp_id", otp.ID.String()))
		return fmt.Errorf("%w: code already used", apperror.ErrInvalidToken)
	}
	return nil
}

func (s *otpStore) SweepExpired(ctx context.Context) ([]*entity.OneTimePassword, error) {
	expired, err := s.repo.DeleteExpired(ctx, s.now().UTC())
	if err != nil {
		return nil, err
	}

	s.log.Info("Expired OTPs swept", zap.Int("count", len(expired)))
	return expired, nil
}

// CreateReviewerOTP replaces the reviewer account's code with one that lives
// for OTP.ReviewerExpiryDays.
func (s *otpStore) CreateReviewerOTP(ctx context.Context, user *entity.User) (*entity.OneTimePassword, error) {
	reviewer := s.config.OTP.ReviewerEmail
	if reviewer == "" || user == nil || utils.NormalizeEmail(user.Email) != reviewer {
		return nil, fmt.Errorf("%w: reviewer code requires the reviewer account", apperror.ErrValidation)
	}

	return s.create(ctx, reviewer, &user.ID, s.config.OTP.ReviewerTTL())
}

func (s *otpStore) DeleteReviewerOTP(ctx context.Context) (*entity.OneTimePassword, error) {
	reviewer := s.config.OTP.ReviewerEmail
	if reviewer == "" {
		return nil, fmt.Errorf("%w: no reviewer account configured", apperror.ErrNotFound)
	}

	otp, err := s.repo.FindByEmail(ctx, reviewer)
	if err != nil {
		return nil, err
	}
	if otp == nil {
		return nil, fmt.Errorf("%w: reviewer code", apperror.ErrNotFound)
	}

	deleted, err := s.repo.Delete(ctx, otp.ID)
	if err != nil {
		return nil, err
	}
	if !deleted {
		return nil, fmt.Errorf("%w: reviewer code", apperror.ErrNotFound)
	}

	s.log.Info("Reviewer OTP deleted", zap.String("otp_id", otp.ID.String()))
	return otp, nil
}

func (s *otpStore) Update(ctx context.Context, otp *entity.OneTimePassword) error {
	return s.repo.Update(ctx, otp)
}
