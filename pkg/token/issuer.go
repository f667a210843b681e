// Package token mints and verifies the signed credentials handed to clients:
// access/refresh pairs, SSO confirmation hand-offs, password reset links and
// SSO state round-trips.
package token

import (
	"errors"
	"fmt"
	"time"

	"starter-api/pkg/apperror"
	"starter-api/pkg/utils"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type Context string

const (
	ContextAccess          Context = "access_token"
	ContextRefresh         Context = "refresh_token"
	ContextSSOConfirmation Context = "sso_confirmation_token"
	ContextPasswordReset   Context = "password_reset_token"
	ContextSSOState        Context = "sso_state"
)

const ssoStateTTL = 10 * time.Minute

type Claims struct {
	jwt.RegisteredClaims
	Context             Context `json:"context"`
	UserID              string  `json:"user_id,omitempty"`
	Email               string  `json:"email,omitempty"`
	SSOConfirmationCode string  `json:"sso_confirmation_code,omitempty"`
	ReturnURL           string  `json:"return_url,omitempty"`
	RandomValue         string  `json:"random_value"`
}

// UserUUID returns the subject of the token.
func (c *Claims) UserUUID() (uuid.UUID, error) {
	id, err := uuid.Parse(c.UserID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: malformed subject", apperror.ErrInvalidToken)
	}
	return id, nil
}

type LoginTokens struct {
	AccessToken      string
	RefreshToken     string
	AccessExpiresAt  time.Time
	RefreshExpiresAt time.Time
}

type Issuer struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	ssoTTL     time.Duration
	resetTTL   time.Duration
	now        func() time.Time
}

type Option func(*Issuer)

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(i *Issuer) { i.now = now }
}

func NewIssuer(cfg utils.JWTConfig, opts ...Option) *Issuer {
	i := &Issuer{
		secret:     []byte(cfg.Secret),
		accessTTL:  cfg.AccessTTL(),
		refreshTTL: cfg.RefreshTTL(),
		ssoTTL:     cfg.SSOConfirmTTL(),
		resetTTL:   cfg.PasswordResetTTL(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// IssueLoginTokens mints an access/refresh pair for userID. Expiry
// timestamps are returned in UTC.
func (i *Issuer) IssueLoginTokens(userID uuid.UUID) (*LoginTokens, error) {
	now := i.now().UTC()

	access, accessExp, err := i.sign(now, i.accessTTL, Claims{
		Context: ContextAccess,
		UserID:  userID.String(),
	})
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}

	refresh, refreshExp, err := i.sign(now, i.refreshTTL, Claims{
		Context: ContextRefresh,
		UserID:  userID.String(),
	})
	if err != nil {
		return nil, fmt.Errorf("sign refresh token: %w", err)
	}

	return &LoginTokens{
		AccessToken:      access,
		RefreshToken:     refresh,
		AccessExpiresAt:  accessExp,
		RefreshExpiresAt: refreshExp,
	}, nil
}

// IssueSSOConfirmation binds a short-lived token to the user's current SSO
// confirmation code. Rotating the code on the user invalidates the token.
func (i *Issuer) IssueSSOConfirmation(userID uuid.UUID, code string) (string, error) {
	tok, _, err := i.sign(i.now().UTC(), i.ssoTTL, Claims{
		Context:             ContextSSOConfirmation,
		UserID:              userID.String(),
		SSOConfirmationCode: code,
	})
	return tok, err
}

func (i *Issuer) IssuePasswordReset(email string) (string, error) {
	tok, _, err := i.sign(i.now().UTC(), i.resetTTL, Claims{
		Context: ContextPasswordReset,
		Email:   email,
	})
	return tok, err
}

// IssueSSOState signs the return URL carried through a provider redirect.
func (i *Issuer) IssueSSOState(returnURL string) (string, error) {
	tok, _, err := i.sign(i.now().UTC(), ssoStateTTL, Claims{
		Context:   ContextSSOState,
		ReturnURL: returnURL,
	})
	return tok, err
}

// Parse verifies signature, expiry and context. Every failure is reported
// as apperror.ErrInvalidToken.
func (i *Issuer) Parse(tokenString string, expected Context) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperror.ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, apperror.ErrInvalidToken
	}
	if claims.Context != expected {
		return nil, fmt.Errorf("%w: unexpected context %q", apperror.ErrInvalidToken, claims.Context)
	}

	return claims, nil
}

// sign fills iat, exp and the nonce. A non-positive ttl produces a token
// without expiry.
func (i *Issuer) sign(now time.Time, ttl time.Duration, claims Claims) (string, time.Time, error) {
	if len(i.secret) == 0 {
		return "", time.Time{}, errors.New("token secret is empty")
	}

	claims.IssuedAt = jwt.NewNumericDate(now)
	claims.RandomValue = utils.RandomHex(16)

	var exp time.Time
	if ttl > 0 {
		exp = now.Add(ttl)
		claims.ExpiresAt = jwt.NewNumericDate(exp)
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}
