package usecase

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"net/url"
	"time"

	"starter-api/internal/data/entity"
	"starter-api/internal/data/repository"
	"starter-api/internal/dto/request"
	"starter-api/internal/dto/response"
	"starter-api/internal/sso"
	"starter-api/pkg/apperror"
	"starter-api/pkg/mailer"
	"starter-api/pkg/token"
	"starter-api/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	msgOTPSent        = "If an account exists, a verification code has been sent"
	msgOTPDevelopment = "Development mode: Your verification code is %s"
	msgOTPReviewer    = "Reviewer account: please use the verification code you were given"
)

type AuthService interface {
	Register(ctx context.Context, req *request.RegisterRequest) (*response.LoginResponse, error)
	Login(ctx context.Context, req *request.LoginRequest) (*response.LoginResponse, error)
	RequestOTP(ctx context.Context, req *request.OTPRequest) (*response.MessageResponse, error)
	VerifyOTP(ctx context.Context, req *request.OTPVerifyRequest) (*response.LoginResponse, error)
	Refresh(ctx context.Context, req *request.RefreshRequest) (*response.LoginResponse, error)
	TestToken(ctx context.Context, userID uuid.UUID) (*response.UserResponse, error)
	RecoverPassword(ctx context.Context, email string) (*response.MessageResponse, error)
	ResetPassword(ctx context.Context, req *request.ResetPasswordRequest) (*response.MessageResponse, error)
	SSOLoginURL(ctx context.Context, provider, returnURL string) (string, error)
	SSOCallback(ctx context.Context, provider, code, state string) (string, error)
	SSOConfirm(ctx context.Context, req *request.SSOConfirmRequest) (*response.LoginResponse, error)
	GenerateReviewerOTP(ctx context.Context) (*response.OTPResponse, error)
	DeleteReviewerOTP(ctx context.Context) (*response.OTPResponse, error)
}

type authService struct {
	repo    *repository.Repository
	otp     OTPStore
	otpAuth OTPAuthenticator
	issuer  *token.Issuer
	mail    mailer.Sender
	sso     sso.Registry
	config  *utils.Config
	log     *zap.Logger
	now     func() time.Time
}

func NewAuthService(
	repo *repository.Repository,
	otp OTPStore,
	otpAuth OTPAuthenticator,
	issuer *token.Issuer,
	mail mailer.Sender,
	providers sso.Registry,
	config *utils.Config,
	log *zap.Logger,
) AuthService {
	return &authService{
		repo:    repo,
		otp:     otp,
		otpAuth: otpAuth,
		issuer:  issuer,
		mail:    mail,
		sso:     providers,
		config:  config,
		log:     log,
		now:     time.Now,
	}
}

func (s *authService) Register(ctx context.Context, req *request.RegisterRequest) (*response.LoginResponse, error) {
	// 1. Validate input
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Register validation failed", zap.Any("errors", errs))
		return nil, fmt.Errorf("%w: %s", apperror.ErrValidation, utils.FormatValidationErrors(errs))
	}
	email := utils.NormalizeEmail(req.Email)

	// 2. Email must be free
	existing, err := s.repo.User.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		s.log.Warn("Register with existing email", zap.String("email", email))
		return nil, fmt.Errorf("%w: the user with this email already exists in the system", apperror.ErrConflict)
	}

	// 3. Build the user
	user := s.newUser(email)
	user.FirstName = req.FirstName
	user.LastName = req.LastName
	if req.Language != "" {
		user.Language = entity.Language(req.Language)
	}
	if req.Password != nil {
		hash, err := utils.HashPassword(*req.Password)
		if err != nil {
			s.log.Error("Failed to hash password", zap.Error(err))
			return nil, fmt.Errorf("hash password: %w", err)
		}
		user.PasswordHash = &hash
	}

	// 4. Save
	if err := s.repo.User.Create(ctx, user); err != nil {
		return nil, err
	}

	// 5. Welcome email (async)
	go sendEmail(s.mail, s.log, mailer.KindNewAccount, user.Email, nil)

	s.log.Info("User registered", zap.String("user_id", user.ID.String()))
	return s.loginResponse(user)
}

func (s *authService) Login(ctx context.Context, req *request.LoginRequest) (*response.LoginResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, fmt.Errorf("%w: %s", apperror.ErrValidation, utils.FormatValidationErrors(errs))
	}

	user, err := s.authenticateOrRegister(ctx, utils.NormalizeEmail(req.Email), req.Password)
	if err != nil {
		return nil, err
	}

	return s.activeLoginResponse(user)
}

func (s *authService) RequestOTP(ctx context.Context, req *request.OTPRequest) (*response.MessageResponse, error) {
	email := utils.NormalizeEmail(req.Email)

	// 1. Reviewer codes are only issued by an admin
	if email == s.config.OTP.ReviewerEmail {
		s.log.Info("OTP requested for reviewer account")
		return &response.MessageResponse{Message: msgOTPReviewer}, nil
	}

	// 2. Bind the code to the account when there is one
	user, err := s.repo.User.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	var userID *uuid.UUID
	if user != nil {
		userID = &user.ID
	}

	// 3. Replace any outstanding code
	otp, err := s.otp.CreateForEmail(ctx, email, userID)
	if err != nil {
		return nil, err
	}

	// 4. Deliver (async)
	go sendEmail(s.mail, s.log, mailer.KindVerificationCode, email, map[string]any{
		"Code":         otp.VerificationCode,
		"ValidMinutes": s.config.OTP.ExpiryMinutes,
	})

	if !s.config.App.IsProduction() {
		return &response.MessageResponse{Message: fmt.Sprintf(msgOTPDevelopment, otp.VerificationCode)}, nil
	}
	return &response.MessageResponse{Message: msgOTPSent}, nil
}

func (s *authService) VerifyOTP(ctx context.Context, req *request.OTPVerifyRequest) (*response.LoginResponse, error) {
	user, err := s.otpOrRegister(ctx, utils.NormalizeEmail(req.Email), req.Code)
	if err != nil {
		return nil, err
	}

	return s.activeLoginResponse(user)
}

func (s *authService) Refresh(ctx context.Context, req *request.RefreshRequest) (*response.LoginResponse, error) {
	claims, err := s.issuer.Parse(req.RefreshToken, token.ContextRefresh)
	if err != nil {
		s.log.Warn("Invalid refresh token", zap.Error(err))
		return nil, err
	}

	user, err := s.userFromClaims(ctx, claims)
	if err != nil {
		return nil, err
	}

	return s.activeLoginResponse(user)
}

func (s *authService) TestToken(ctx context.Context, userID uuid.UUID) (*response.UserResponse, error) {
	user, err := s.repo.User.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("%w: user", apperror.ErrNotFound)
	}

	resp := response.UserToResponse(user)
	return &resp, nil
}

func (s *authService) RecoverPassword(ctx context.Context, email string) (*response.MessageResponse, error) {
	email = utils.NormalizeEmail(email)

	user, err := s.repo.User.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("%w: the user with this email does not exist in the system", apperror.ErrNotFound)
	}

	resetToken, err := s.issuer.IssuePasswordReset(user.Email)
	if err != nil {
		s.log.Error("Failed to issue password reset token", zap.Error(err))
		return nil, fmt.Errorf("issue password reset token: %w", err)
	}

	link := fmt.Sprintf("%s/reset-password?token=%s", s.config.Email.WebAppURL, url.QueryEscape(resetToken))
	go sendEmail(s.mail, s.log, mailer.KindResetPassword, user.Email, map[string]any{
		"Link":       link,
		"ValidHours": s.config.JWT.PasswordResetExpiresHours,
	})

	return &response.MessageResponse{Message: "Password recovery email sent"}, nil
}

func (s *authService) ResetPassword(ctx context.Context, req *request.ResetPasswordRequest) (*response.MessageResponse, error) {
	claims, err := s.issuer.Parse(req.Token, token.ContextPasswordReset)
	if err != nil {
		s.log.Warn("Invalid password reset token", zap.Error(err))
		return nil, err
	}

	user, err := s.repo.User.FindByEmail(ctx, claims.Email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("%w: the user with this email does not exist in the system", apperror.ErrNotFound)
	}
	if user.Archived {
		return nil, fmt.Errorf("%w: inactive user", apperror.ErrForbidden)
	}

	hash, err := utils.HashPassword(req.NewPassword)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	user.PasswordHash = &hash
	user.UpdatedAt = s.now().UTC()

	if err := s.repo.User.Update(ctx, user); err != nil {
		return nil, err
	}

	s.log.Info("Password reset", zap.String("user_id", user.ID.String()))
	return &response.MessageResponse{Message: "Password updated successfully"}, nil
}

// SSOLoginURL returns the provider consent URL. returnURL travels in a
// signed state token and receives the confirmation token after callback.
func (s *authService) SSOLoginURL(_ context.Context, providerName, returnURL string) (string, error) {
	provider, err := s.sso.Get(providerName)
	if err != nil {
		return "", fmt.Errorf("%w: %v", apperror.ErrNotFound, err)
	}

	state, err := s.issuer.IssueSSOState(returnURL)
	if err != nil {
		return "", fmt.Errorf("issue sso state: %w", err)
	}

	return provider.AuthCodeURL(state), nil
}

// SSOCallback finishes the provider handshake and returns the client URL to
// redirect to, carrying a single-use confirmation token.
func (s *authService) SSOCallback(ctx context.Context, providerName, code, state string) (string, error) {
	// 1. State we issued
	claims, err := s.issuer.Parse(state, token.ContextSSOState)
	if err != nil {
		s.log.Warn("Invalid SSO state", zap.Error(err))
		return "", err
	}

	provider, err := s.sso.Get(providerName)
	if err != nil {
		return "", fmt.Errorf("%w: %v", apperror.ErrNotFound, err)
	}

	// 2. Provider profile
	identity, err := provider.Exchange(ctx, code)
	if err != nil {
		s.log.Warn("SSO exchange failed", zap.String("provider", providerName), zap.Error(err))
		return "", fmt.Errorf("%w: %v", apperror.ErrUnauthorized, err)
	}

	// 3. Find or create the account
	user, err := s.findOrCreateSSOUser(ctx, entity.AuthProvider(providerName), identity)
	if err != nil {
		return "", err
	}
	if user.Archived {
		return "", fmt.Errorf("%w: inactive user", apperror.ErrForbidden)
	}

	// 4. Rotate the code and mint the hand-off token
	confirmation, err := s.issueSSOConfirmation(ctx, user)
	if err != nil {
		return "", err
	}

	return withQueryParam(claims.ReturnURL, "token", confirmation)
}

func (s *authService) SSOConfirm(ctx context.Context, req *request.SSOConfirmRequest) (*response.LoginResponse, error) {
	claims, err := s.issuer.Parse(req.Token, token.ContextSSOConfirmation)
	if err != nil {
		return nil, err
	}

	user, err := s.userFromClaims(ctx, claims)
	if err != nil {
		return nil, err
	}

	if user.SSOConfirmationCode == nil ||
		subtle.ConstantTimeCompare([]byte(*user.SSOConfirmationCode), []byte(claims.SSOConfirmationCode)) != 1 {
		s.log.Warn("Stale SSO confirmation token", zap.String("user_id", user.ID.String()))
		return nil, fmt.Errorf("%w: confirmation token already used", apperror.ErrInvalidToken)
	}

	// rotate again so the token cannot be replayed
	if err := s.repo.User.UpdateSSOConfirmationCode(ctx, user.ID, utils.GenerateSSOConfirmationCode()); err != nil {
		return nil, err
	}

	return s.activeLoginResponse(user)
}

func (s *authService) GenerateReviewerOTP(ctx context.Context) (*response.OTPResponse, error) {
	reviewer := s.config.OTP.ReviewerEmail
	if reviewer == "" {
		return nil, fmt.Errorf("%w: no reviewer account configured", apperror.ErrValidation)
	}

	user, err := s.repo.User.FindByEmail(ctx, reviewer)
	if err != nil {
		return nil, err
	}
	if user == nil {
		user = s.newUser(reviewer)
		user.Confirmed = true
		if err := s.repo.User.Create(ctx, user); err != nil {
			return nil, err
		}
		s.log.Info("Reviewer account created", zap.String("user_id", user.ID.String()))
	}

	otp, err := s.otp.CreateReviewerOTP(ctx, user)
	if err != nil {
		return nil, err
	}

	resp := response.OTPToResponse(otp)
	return &resp, nil
}

func (s *authService) DeleteReviewerOTP(ctx context.Context) (*response.OTPResponse, error) {
	otp, err := s.otp.DeleteReviewerOTP(ctx)
	if err != nil {
		return nil, err
	}

	resp := response.OTPToResponse(otp)
	return &resp, nil
}

// ==================== HELPER METHODS ====================

// authenticateOrRegister tries secret as a password first, then as a
// one-time code.
func (s *authService) authenticateOrRegister(ctx context.Context, email, secret string) (*entity.User, error) {
	user, err := s.repo.User.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user != nil && utils.CheckPasswordHash(secret, user.PasswordHash) {
		return user, nil
	}

	return s.otpOrRegister(ctx, email, secret)
}

// otpOrRegister authenticates a one-time code and creates the account when
// the code was requested for an email nobody has registered yet. Codes that
// are unknown, expired or issued for another email never register anyone.
func (s *authService) otpOrRegister(ctx context.Context, email, code string) (*entity.User, error) {
	user, err := s.otpAuth.Authenticate(ctx, email, code)
	if err == nil {
		return user, nil
	}

	var unbound *UnboundCodeError
	if errors.As(err, &unbound) {
		return s.registerFromOTP(ctx, email, unbound.OTP)
	}
	if errors.Is(err, apperror.ErrInvalidToken) {
		s.log.Warn("Login failed", zap.String("email", email), zap.Error(err))
		return nil, apperror.ErrUnauthorized
	}
	return nil, err
}

func (s *authService) registerFromOTP(ctx context.Context, email string, otp *entity.OneTimePassword) (*entity.User, error) {
	existing, err := s.repo.User.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		s.log.Warn("Unbound code for existing account", zap.String("user_id", existing.ID.String()))
		return nil, apperror.ErrUnauthorized
	}

	// consume first so a replayed code cannot create a second account
	if err := s.otp.Consume(ctx, otp); err != nil {
		if errors.Is(err, apperror.ErrInvalidToken) {
			return nil, apperror.ErrUnauthorized
		}
		return nil, err
	}

	user := s.newUser(email)
	user.Confirmed = true
	if err := s.repo.User.Create(ctx, user); err != nil {
		if errors.Is(err, apperror.ErrConflict) {
			return nil, apperror.ErrUnauthorized
		}
		return nil, err
	}

	go sendEmail(s.mail, s.log, mailer.KindNewAccount, user.Email, nil)

	s.log.Info("User registered from OTP", zap.String("user_id", user.ID.String()))
	return user, nil
}

func (s *authService) findOrCreateSSOUser(ctx context.Context, provider entity.AuthProvider, identity *sso.Identity) (*entity.User, error) {
	user, err := s.repo.User.FindBySSOProvider(ctx, provider, identity.ProviderID)
	if err != nil {
		return nil, err
	}
	if user != nil {
		return user, nil
	}

	existing, err := s.repo.User.FindByEmail(ctx, identity.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		s.log.Warn("SSO email already used by another account",
			zap.String("provider", string(provider)),
			zap.String("user_id", existing.ID.String()),
		)
		return nil, fmt.Errorf("%w: email already used by another account", apperror.ErrConflict)
	}

	providerID := identity.ProviderID
	user = s.newUser(identity.Email)
	user.Provider = provider
	user.SSOProviderID = &providerID
	user.FirstName = identity.FirstName
	user.LastName = identity.LastName
	user.Confirmed = true

	if err := s.repo.User.Create(ctx, user); err != nil {
		return nil, err
	}

	go sendEmail(s.mail, s.log, mailer.KindNewAccount, user.Email, nil)

	s.log.Info("User registered from SSO",
		zap.String("user_id", user.ID.String()),
		zap.String("provider", string(provider)),
	)
	return user, nil
}

// issueSSOConfirmation stores a fresh code before minting the token bound
// to it, so earlier confirmation tokens stop verifying.
func (s *authService) issueSSOConfirmation(ctx context.Context, user *entity.User) (string, error) {
	code := utils.GenerateSSOConfirmationCode()
	if err := s.repo.User.UpdateSSOConfirmationCode(ctx, user.ID, code); err != nil {
		return "", err
	}
	user.SSOConfirmationCode = &code

	return s.issuer.IssueSSOConfirmation(user.ID, code)
}

func (s *authService) userFromClaims(ctx context.Context, claims *token.Claims) (*entity.User, error) {
	userID, err := claims.UserUUID()
	if err != nil {
		return nil, err
	}

	user, err := s.repo.User.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("%w: subject no longer exists", apperror.ErrInvalidToken)
	}
	return user, nil
}

func (s *authService) activeLoginResponse(user *entity.User) (*response.LoginResponse, error) {
	if user.Archived {
		s.log.Warn("Inactive user tried to login", zap.String("user_id", user.ID.String()))
		return nil, fmt.Errorf("%w: inactive user", apperror.ErrForbidden)
	}
	return s.loginResponse(user)
}

func (s *authService) loginResponse(user *entity.User) (*response.LoginResponse, error) {
	tokens, err := s.issuer.IssueLoginTokens(user.ID)
	if err != nil {
		s.log.Error("Failed to issue tokens", zap.Error(err), zap.String("user_id", user.ID.String()))
		return nil, fmt.Errorf("issue tokens: %w", err)
	}

	return &response.LoginResponse{
		AccessToken:           tokens.AccessToken,
		RefreshToken:          tokens.RefreshToken,
		TokenType:             response.TokenTypeBearer,
		AccessTokenExpiresAt:  tokens.AccessExpiresAt,
		RefreshTokenExpiresAt: tokens.RefreshExpiresAt,
		User:                  response.UserToResponse(user),
	}, nil
}

func (s *authService) newUser(email string) *entity.User {
	now := s.now().UTC()
	return &entity.User{
		Base: entity.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		Email:    email,
		Role:     entity.RoleCustomer,
		Language: entity.LanguageEN,
		Provider: entity.ProviderEmail,
	}
}

func withQueryParam(rawURL, key, value string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("%w: invalid return url", apperror.ErrValidation)
	}
	q := u.Query()
	q.Set(key, value)
	u.RawQuery = q.Encode()
	return u.String(), nil
}
