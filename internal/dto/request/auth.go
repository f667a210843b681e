package request

type RegisterRequest struct {
	Email     string  `json:"email" validate:"required,email,max=255"`
	Password  *string `json:"password,omitempty" validate:"omitempty,min=8,max=128"`
	FirstName string  `json:"first_name" validate:"max=100"`
	LastName  string  `json:"last_name" validate:"max=100"`
	Language  string  `json:"language,omitempty" validate:"omitempty,oneof=en fr"`
}

// LoginRequest accepts a password or a one-time code in Password.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type OTPRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type OTPVerifyRequest struct {
	Email string `json:"email" validate:"required,email"`
	Code  string `json:"code" validate:"required,len=6,numeric"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type ResetPasswordRequest struct {
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=8,max=128"`
}

type SSOConfirmRequest struct {
	Token string `json:"token" validate:"required"`
}
