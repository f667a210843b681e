package adaptor

import (
	"net/http"
	"strings"

	"starter-api/internal/dto/request"
	"starter-api/internal/usecase"
	"starter-api/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type AuthHandler struct {
	service usecase.AuthService
	log     *zap.Logger
}

func NewAuthHandler(service usecase.AuthService, log *zap.Logger) *AuthHandler {
	return &AuthHandler{
		service: service,
		log:     log,
	}
}

// Register handles POST /auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req request.RegisterRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	resp, err := h.service.Register(r.Context(), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "register")
		return
	}

	utils.ResponseCreated(w, "Registration successful", resp)
}

// Login handles POST /auth/login. It takes JSON {email, password} or an
// OAuth2 password form {username, password}; password may be a one-time code.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req request.LoginRequest

	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/x-www-form-urlencoded") {
		if err := r.ParseForm(); err != nil {
			utils.ResponseBadRequest(w, "Invalid form body", nil)
			return
		}
		req.Email = r.PostForm.Get("username")
		req.Password = r.PostForm.Get("password")

		if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
			utils.ResponseBadRequest(w, "Validation failed", validationErrors)
			return
		}
	} else if !decodeAndValidate(w, r, &req) {
		return
	}

	resp, err := h.service.Login(r.Context(), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "login")
		return
	}

	utils.ResponseSuccess(w, "Login successful", resp)
}

// RequestOTP handles POST /auth/otp/request
func (h *AuthHandler) RequestOTP(w http.ResponseWriter, r *http.Request) {
	var req request.OTPRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	resp, err := h.service.RequestOTP(r.Context(), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "request OTP")
		return
	}

	utils.ResponseSuccess(w, resp.Message, resp)
}

// VerifyOTP handles POST /auth/otp/verify
func (h *AuthHandler) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req request.OTPVerifyRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	resp, err := h.service.VerifyOTP(r.Context(), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "verify OTP")
		return
	}

	utils.ResponseSuccess(w, "Login successful", resp)
}

// Refresh handles POST /auth/refresh
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req request.RefreshRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	resp, err := h.service.Refresh(r.Context(), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "refresh")
		return
	}

	utils.ResponseSuccess(w, "Token refreshed", resp)
}

// TestToken handles POST /auth/login/test-token
func (h *AuthHandler) TestToken(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	resp, err := h.service.TestToken(r.Context(), userID)
	if err != nil {
		handleServiceError(w, h.log, err, "test token")
		return
	}

	utils.ResponseSuccess(w, "Token is valid", resp)
}

// RecoverPassword handles POST /auth/password-recovery/{email}
func (h *AuthHandler) RecoverPassword(w http.ResponseWriter, r *http.Request) {
	email := chi.URLParam(r, "email")
	if email == "" {
		utils.ResponseBadRequest(w, "Email is required", nil)
		return
	}

	resp, err := h.service.RecoverPassword(r.Context(), email)
	if err != nil {
		handleServiceError(w, h.log, err, "recover password")
		return
	}

	utils.ResponseSuccess(w, resp.Message, resp)
}

// ResetPassword handles POST /auth/reset-password
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req request.ResetPasswordRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	resp, err := h.service.ResetPassword(r.Context(), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "reset password")
		return
	}

	utils.ResponseSuccess(w, resp.Message, resp)
}

// SSOLogin handles GET /auth/{provider}/login?return_url=
func (h *AuthHandler) SSOLogin(w http.ResponseWriter, r *http.Request) {
	returnURL := r.URL.Query().Get("return_url")
	if returnURL == "" {
		utils.ResponseBadRequest(w, "return_url is required", nil)
		return
	}

	target, err := h.service.SSOLoginURL(r.Context(), chi.URLParam(r, "provider"), returnURL)
	if err != nil {
		handleServiceError(w, h.log, err, "sso login")
		return
	}

	http.Redirect(w, r, target, http.StatusTemporaryRedirect)
}

// SSOCallback handles GET /auth/{provider}/callback. Providers call it, not
// clients.
func (h *AuthHandler) SSOCallback(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	if errParam := query.Get("error"); errParam != "" {
		h.log.Warn("SSO provider returned an error", zap.String("error", errParam))
		utils.ResponseUnauthorized(w, "Authentication was cancelled")
		return
	}

	target, err := h.service.SSOCallback(r.Context(), chi.URLParam(r, "provider"), query.Get("code"), query.Get("state"))
	if err != nil {
		handleServiceError(w, h.log, err, "sso callback")
		return
	}

	http.Redirect(w, r, target, http.StatusTemporaryRedirect)
}

// SSOConfirm handles POST /auth/sso/confirm
func (h *AuthHandler) SSOConfirm(w http.ResponseWriter, r *http.Request) {
	var req request.SSOConfirmRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	resp, err := h.service.SSOConfirm(r.Context(), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "sso confirm")
		return
	}

	utils.ResponseSuccess(w, "Login successful", resp)
}

// GenerateReviewerOTP handles POST /auth/generate-reviewer-otp (admin only)
func (h *AuthHandler) GenerateReviewerOTP(w http.ResponseWriter, r *http.Request) {
	resp, err := h.service.GenerateReviewerOTP(r.Context())
	if err != nil {
		handleServiceError(w, h.log, err, "generate reviewer OTP")
		return
	}

	utils.ResponseSuccess(w, "Reviewer OTP generated", resp)
}

// DeleteReviewerOTP handles DELETE /auth/delete-reviewer-otp (admin only)
func (h *AuthHandler) DeleteReviewerOTP(w http.ResponseWriter, r *http.Request) {
	resp, err := h.service.DeleteReviewerOTP(r.Context())
	if err != nil {
		handleServiceError(w, h.log, err, "delete reviewer OTP")
		return
	}

	utils.ResponseSuccess(w, "Reviewer OTP deleted", resp)
}
