package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"starter-api/internal/data/entity"
	"starter-api/pkg/apperror"
	"starter-api/pkg/database"
	"starter-api/pkg/utils"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// maxCodeAttempts bounds regeneration when a fresh code collides with an
// active one held by another email.
const maxCodeAttempts = 5

var errCodeSpaceExhausted = errors.New("could not allocate a unique verification code")

type OTPRepository interface {
	// Replace deletes any row for otp.Email and inserts otp with a freshly
	// generated code, in one transaction. The code is written back to otp.
	Replace(ctx context.Context, otp *entity.OneTimePassword) error
	FindValidByCode(ctx context.Context, code string, now time.Time) (*entity.OneTimePassword, error)
	FindByEmail(ctx context.Context, email string) (*entity.OneTimePassword, error)
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
	DeleteExpired(ctx context.Context, now time.Time) ([]*entity.OneTimePassword, error)
	Update(ctx context.Context, otp *entity.OneTimePassword) error
}

type otpRepository struct {
	db       database.PgxIface
	log      *zap.Logger
	generate func() string
}

func NewOTPRepository(db database.PgxIface, log *zap.Logger) OTPRepository {
	return newOTPRepository(db, log, utils.GenerateVerificationCode)
}

func newOTPRepository(db database.PgxIface, log *zap.Logger, generate func() string) *otpRepository {
	return &otpRepository{
		db:       db,
		log:      log.With(zap.String("repository", "otp")),
		generate: generate,
	}
}

const otpColumns = `id, verification_code, email, user_id, expires_at, created_at`

func scanOTP(row scanner) (*entity.OneTimePassword, error) {
	var otp entity.OneTimePassword
	err := row.Scan(
		&otp.ID,
		&otp.VerificationCode,
		&otp.Email,
		&otp.UserID,
		&otp.ExpiresAt,
		&otp.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &otp, nil
}

func (r *otpRepository) Replace(ctx context.Context, otp *entity.OneTimePassword) error {
	deleteQuery := `DELETE FROM one_time_passwords WHERE email = $1`
	insertQuery := `
		INSERT INTO one_time_passwords (id, verification_code, email, user_id,
		                                expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (verification_code) DO NOTHING
		RETURNING id
	`

	err := database.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, deleteQuery, otp.Email); err != nil {
			return fmt.Errorf("delete previous OTP for %s: %w", otp.Email, err)
		}

		for attempt := 0; attempt < maxCodeAttempts; attempt++ {
			code := r.generate()

			var id uuid.UUID
			err := tx.QueryRow(ctx, insertQuery,
				otp.ID,
				code,
				otp.Email,
				otp.UserID,
				otp.ExpiresAt,
				otp.CreatedAt,
			).Scan(&id)

			if errors.Is(err, pgx.ErrNoRows) {
				// code taken by another email, draw again
				continue
			}
			if isUniqueViolation(err) {
				return fmt.Errorf("%w: concurrent OTP for %s", apperror.ErrConflict, otp.Email)
			}
			if err != nil {
				return fmt.Errorf("insert OTP for %s: %w", otp.Email, err)
			}

			otp.VerificationCode = code
			return nil
		}

		return errCodeSpaceExhausted
	})

	if err != nil && !errors.Is(err, apperror.ErrConflict) {
		r.log.Error("Failed to replace OTP",
			zap.Error(err),
			zap.String("email", otp.Email),
		)
	}
	return err
}

// FindValidByCode returns the row holding code if it has not expired at now.
func (r *otpRepository) FindValidByCode(ctx context.Context, code string, now time.Time) (*entity.OneTimePassword, error) {
	query := `
		SELECT ` + otpColumns + `
		FROM one_time_passwords
		WHERE verification_code = $1
		  AND expires_at > $2
	`

	otp, err := scanOTP(r.db.QueryRow(ctx, query, code, now))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find valid OTP", zap.Error(err))
		return nil, fmt.Errorf("find valid OTP: %w", err)
	}

	return otp, nil
}

func (r *otpRepository) FindByEmail(ctx context.Context, email string) (*entity.OneTimePassword, error) {
	query := `SELECT ` + otpColumns + ` FROM one_time_passwords WHERE email = $1`

	otp, err := scanOTP(r.db.QueryRow(ctx, query, email))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find OTP by email",
			zap.Error(err),
			zap.String("email", email),
		)
		return nil, fmt.Errorf("find OTP for %s: %w", email, err)
	}

	return otp, nil
}

// Delete reports whether a row was removed. False means another request
// consumed the code first.
func (r *otpRepository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	query := `DELETE FROM one_time_passwords WHERE id = $1`

	result, err := r.db.Exec(ctx, query, id)
	if err != nil {
		r.log.Error("Failed to delete OTP",
			zap.Error(err),
			zap.String("otp_id", id.String()),
		)
		return false, fmt.Errorf("delete OTP %s: %w", id.String(), err)
	}

	return result.RowsAffected() > 0, nil
}

func (r *otpRepository) DeleteExpired(ctx context.Context, now time.Time) ([]*entity.OneTimePassword, error) {
	query := `
		DELETE FROM one_time_passwords
		WHERE expires_at <= $1
		RETURNING ` + otpColumns

	rows, err := r.db.Query(ctx, query, now)
	if err != nil {
		r.log.Error("Failed to delete expired OTPs", zap.Error(err))
		return nil, fmt.Errorf("delete expired OTPs: %w", err)
	}
	defer rows.Close()

	expired := []*entity.OneTimePassword{}
	for rows.Next() {
		otp, err := scanOTP(rows)
		if err != nil {
			r.log.Error("Failed to scan OTP row", zap.Error(err))
			return nil, fmt.Errorf("scan OTP row: %w", err)
		}
		expired = append(expired, otp)
	}

	if err := rows.Err(); err != nil {
		r.log.Error("Rows iteration error", zap.Error(err))
		return nil, fmt.Errorf("iterate OTP rows: %w", err)
	}

	return expired, nil
}

// Update always fails: codes are immutable once issued.
func (r *otpRepository) Update(_ context.Context, otp *entity.OneTimePassword) error {
	r.log.Error("Attempted OTP update", zap.String("otp_id", otp.ID.String()))
	return fmt.Errorf("%w: one-time passwords cannot be updated", apperror.ErrUnsupportedOperation)
}
