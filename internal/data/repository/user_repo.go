package repository

import (
	"context"
	"errors"
	"fmt"

	"starter-api/internal/data/entity"
	"starter-api/pkg/apperror"
	"starter-api/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error)
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
	FindBySSOProvider(ctx context.Context, provider entity.AuthProvider, providerID string) (*entity.User, error)
	FindAll(ctx context.Context, offset, limit int, withArchived bool) ([]*entity.User, error)
	Update(ctx context.Context, user *entity.User) error
	UpdateSSOConfirmationCode(ctx context.Context, id uuid.UUID, code string) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type userRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewUserRepository(db database.PgxIface, log *zap.Logger) UserRepository {
	return &userRepository{
		db:  db,
		log: log.With(zap.String("repository", "user")),
	}
}

const userColumns = `id, email, password_hash, role, language, confirmed,
		       sso_confirmation_code, first_name, last_name, phone, address,
		       city, postcode, state, provider, sso_provider_id, archived,
		       created_at, updated_at`

func scanUser(row scanner) (*entity.User, error) {
	var user entity.User
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.Role,
		&user.Language,
		&user.Confirmed,
		&user.SSOConfirmationCode,
		&user.FirstName,
		&user.LastName,
		&user.Phone,
		&user.Address,
		&user.City,
		&user.Postcode,
		&user.State,
		&user.Provider,
		&user.SSOProviderID,
		&user.Archived,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Create inserts a user. A duplicate email (case-insensitive) or provider
// identity is reported as apperror.ErrConflict.
func (ur *userRepository) Create(ctx context.Context, user *entity.User) error {
	query := `
		INSERT INTO users (id, email, password_hash, role, language, confirmed,
		                   sso_confirmation_code, first_name, last_name, phone,
		                   address, city, postcode, state, provider,
		                   sso_provider_id, archived, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10,
		        $11, $12, $13, $14, $15, $16, $17, $18, $19)
	`

	_, err := ur.db.Exec(ctx, query,
		user.ID,
		user.Email,
		user.PasswordHash,
		user.Role,
		user.Language,
		user.Confirmed,
		user.SSOConfirmationCode,
		user.FirstName,
		user.LastName,
		user.Phone,
		user.Address,
		user.City,
		user.Postcode,
		user.State,
		user.Provider,
		user.SSOProviderID,
		user.Archived,
		user.CreatedAt,
		user.UpdatedAt,
	)

	if isUniqueViolation(err) {
		ur.log.Warn("Duplicate user",
			zap.String("email", user.Email),
			zap.String("constraint", uniqueConstraint(err)),
		)
		return fmt.Errorf("%w: user %s", apperror.ErrConflict, user.Email)
	}
	if err != nil {
		ur.log.Error("Failed to create user",
			zap.Error(err),
			zap.String("email", user.Email),
		)
		return fmt.Errorf("create user %s: %w", user.Email, err)
	}

	return nil
}

func (ur *userRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	user, err := scanUser(ur.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		ur.log.Error("Failed to find user by ID",
			zap.Error(err),
			zap.String("user_id", id.String()),
		)
		return nil, fmt.Errorf("find user by ID %s: %w", id.String(), err)
	}

	return user, nil
}

func (ur *userRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE LOWER(email) = LOWER($1)`

	user, err := scanUser(ur.db.QueryRow(ctx, query, email))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		ur.log.Error("Failed to find user by email",
			zap.Error(err),
			zap.String("email", email),
		)
		return nil, fmt.Errorf("find user by email %s: %w", email, err)
	}

	return user, nil
}

func (ur *userRepository) FindBySSOProvider(ctx context.Context, provider entity.AuthProvider, providerID string) (*entity.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE provider = $1 AND sso_provider_id = $2`

	user, err := scanUser(ur.db.QueryRow(ctx, query, provider, providerID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		ur.log.Error("Failed to find user by provider",
			zap.Error(err),
			zap.String("provider", string(provider)),
		)
		return nil, fmt.Errorf("find user by provider %s: %w", provider, err)
	}

	return user, nil
}

func (ur *userRepository) FindAll(ctx context.Context, offset, limit int, withArchived bool) ([]*entity.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE $1 OR archived = false
		ORDER BY created_at DESC
		OFFSET $2 LIMIT $3
	`

	rows, err := ur.db.Query(ctx, query, withArchived, offset, limit)
	if err != nil {
		ur.log.Error("Failed to get all users",
			zap.Error(err),
			zap.Int("offset", offset),
			zap.Int("limit", limit),
		)
		return nil, fmt.Errorf("find all users offset %d limit %d: %w", offset, limit, err)
	}
	defer rows.Close()

	users := []*entity.User{}
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			ur.log.Error("Failed to scan user row", zap.Error(err))
			return nil, fmt.Errorf("scan user row: %w", err)
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		ur.log.Error("Rows iteration error", zap.Error(err))
		return nil, fmt.Errorf("iterate users rows: %w", err)
	}

	return users, nil
}

func (ur *userRepository) Update(ctx context.Context, user *entity.User) error {
	query := `
		UPDATE users
		SET email = $2, password_hash = $3, role = $4, language = $5,
		    confirmed = $6, first_name = $7, last_name = $8, phone = $9,
		    address = $10, city = $11, postcode = $12, state = $13,
		    archived = $14, updated_at = $15
		WHERE id = $1
	`

	result, err := ur.db.Exec(ctx, query,
		user.ID,
		user.Email,
		user.PasswordHash,
		user.Role,
		user.Language,
		user.Confirmed,
		user.FirstName,
		user.LastName,
		user.Phone,
		user.Address,
		user.City,
		user.Postcode,
		user.State,
		user.Archived,
		user.UpdatedAt,
	)

	if isUniqueViolation(err) {
		return fmt.Errorf("%w: user %s", apperror.ErrConflict, user.Email)
	}
	if err != nil {
		ur.log.Error("Failed to update user",
			zap.Error(err),
			zap.String("user_id", user.ID.String()),
		)
		return fmt.Errorf("update user %s: %w", user.ID.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("%w: user %s", apperror.ErrNotFound, user.ID.String())
	}

	return nil
}

// UpdateSSOConfirmationCode stores a freshly rotated code. The write is
// committed before it returns so tokens minted afterwards verify.
func (ur *userRepository) UpdateSSOConfirmationCode(ctx context.Context, id uuid.UUID, code string) error {
	query := `UPDATE users SET sso_confirmation_code = $2, updated_at = NOW() WHERE id = $1`

	result, err := ur.db.Exec(ctx, query, id, code)
	if err != nil {
		ur.log.Error("Failed to rotate SSO confirmation code",
			zap.Error(err),
			zap.String("user_id", id.String()),
		)
		return fmt.Errorf("rotate sso confirmation code for %s: %w", id.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("%w: user %s", apperror.ErrNotFound, id.String())
	}

	return nil
}

// Delete removes the user for good; owned items and codes cascade.
func (ur *userRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM users WHERE id = $1`

	result, err := ur.db.Exec(ctx, query, id)
	if err != nil {
		ur.log.Error("Failed to delete user",
			zap.Error(err),
			zap.String("id", id.String()),
		)
		return fmt.Errorf("delete user %s: %w", id.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("%w: user %s", apperror.ErrNotFound, id.String())
	}

	ur.log.Info("User deleted", zap.String("id", id.String()))
	return nil
}
