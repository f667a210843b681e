package usecase

import (
	"starter-api/internal/data/repository"
	"starter-api/internal/sso"
	"starter-api/pkg/mailer"
	"starter-api/pkg/token"
	"starter-api/pkg/utils"

	"go.uber.org/zap"
)

type Service struct {
	Auth AuthService
	User UserService
	Item ItemService
	OTP  OTPStore
}

func NewService(
	repo *repository.Repository,
	issuer *token.Issuer,
	mail mailer.Sender,
	providers sso.Registry,
	config *utils.Config,
	log *zap.Logger,
) *Service {
	otpStore := NewOTPStore(repo.OTP, config, log)
	otpAuth := NewOTPAuthenticator(otpStore, repo.User, config, log)

	return &Service{
		Auth: NewAuthService(repo, otpStore, otpAuth, issuer, mail, providers, config, log),
		User: NewUserService(repo, mail, log),
		Item: NewItemService(repo, log),
		OTP:  otpStore,
	}
}
