package response

import (
	"time"

	"starter-api/internal/data/entity"
)

const TokenTypeBearer = "bearer"

type LoginResponse struct {
	AccessToken           string       `json:"access_token"`
	RefreshToken          string       `json:"refresh_token"`
	TokenType             string       `json:"token_type"`
	AccessTokenExpiresAt  time.Time    `json:"access_token_expiration_date"`
	RefreshTokenExpiresAt time.Time    `json:"refresh_token_expiration_date"`
	User                  UserResponse `json:"user"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type OTPResponse struct {
	ID               string    `json:"id"`
	Email            string    `json:"email"`
	VerificationCode string    `json:"verification_code"`
	UserID           *string   `json:"user_id,omitempty"`
	ExpiresAt        time.Time `json:"expires_at"`
	CreatedAt        time.Time `json:"created_at"`
}

func OTPToResponse(otp *entity.OneTimePassword) OTPResponse {
	resp := OTPResponse{
		ID:               otp.ID.String(),
		Email:            otp.Email,
		VerificationCode: otp.VerificationCode,
		ExpiresAt:        otp.ExpiresAt,
		CreatedAt:        otp.CreatedAt,
	}
	if otp.UserID != nil {
		id := otp.UserID.String()
		resp.UserID = &id
	}
	return resp
}
