package wire

import (
	"starter-api/internal/adaptor"
	"starter-api/pkg/utils"

	"github.com/go-chi/chi/v5"
)

func wireAuth(
	r chi.Router,
	authHandler *adaptor.AuthHandler,
	mw *routeMiddleware,
	config *utils.Config,
) {
	r.Route("/auth", func(r chi.Router) {
		// ==================== PUBLIC ROUTES ====================
		r.Post("/register", authHandler.Register)
		r.With(mw.loginLimit).Post("/login", authHandler.Login)
		r.Post("/refresh", authHandler.Refresh)
		r.With(mw.otpLimit).Post("/otp/request", authHandler.RequestOTP)
		r.With(mw.loginLimit).Post("/otp/verify", authHandler.VerifyOTP)
		r.Post("/password-recovery/{email}", authHandler.RecoverPassword)
		r.Post("/reset-password", authHandler.ResetPassword)

		// SSO handshake
		r.Get("/{provider}/login", authHandler.SSOLogin)
		r.Get("/{provider}/callback", authHandler.SSOCallback)
		r.Post("/sso/confirm", authHandler.SSOConfirm)

		// ==================== PROTECTED ROUTES ====================
		if !config.App.IsProduction() {
			r.With(mw.authenticate).Post("/login/test-token", authHandler.TestToken)
		}

		// ==================== ADMIN ROUTES ====================
		r.With(mw.authenticate, mw.adminOnly).Post("/generate-reviewer-otp", authHandler.GenerateReviewerOTP)
		r.With(mw.authenticate, mw.adminOnly).Delete("/delete-reviewer-otp", authHandler.DeleteReviewerOTP)
	})
}
