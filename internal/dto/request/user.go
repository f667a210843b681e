package request

type UserCreateRequest struct {
	Email     string  `json:"email" validate:"required,email,max=255"`
	Password  *string `json:"password,omitempty" validate:"omitempty,min=8,max=128"`
	FirstName string  `json:"first_name" validate:"max=100"`
	LastName  string  `json:"last_name" validate:"max=100"`
	Language  string  `json:"language,omitempty" validate:"omitempty,oneof=en fr"`
	Phone     *string `json:"phone,omitempty" validate:"omitempty,max=32"`
	Address   *string `json:"address,omitempty" validate:"omitempty,max=255"`
	City      *string `json:"city,omitempty" validate:"omitempty,max=100"`
	Postcode  *string `json:"postcode,omitempty" validate:"omitempty,max=20"`
	State     *string `json:"state,omitempty" validate:"omitempty,max=100"`
}

// UserUpdateRequest only touches the fields that are present.
type UserUpdateRequest struct {
	Email     *string `json:"email,omitempty" validate:"omitempty,email,max=255"`
	Password  *string `json:"password,omitempty" validate:"omitempty,min=8,max=128"`
	FirstName *string `json:"first_name,omitempty" validate:"omitempty,max=100"`
	LastName  *string `json:"last_name,omitempty" validate:"omitempty,max=100"`
	Language  *string `json:"language,omitempty" validate:"omitempty,oneof=en fr"`
	Phone     *string `json:"phone,omitempty" validate:"omitempty,max=32"`
	Address   *string `json:"address,omitempty" validate:"omitempty,max=255"`
	City      *string `json:"city,omitempty" validate:"omitempty,max=100"`
	Postcode  *string `json:"postcode,omitempty" validate:"omitempty,max=20"`
	State     *string `json:"state,omitempty" validate:"omitempty,max=100"`
}

// UserAdminUpdateRequest additionally lets admins change role and
// confirmation.
type UserAdminUpdateRequest struct {
	UserUpdateRequest
	Role      *string `json:"role,omitempty" validate:"omitempty,oneof=admin moderator customer"`
	Confirmed *bool   `json:"confirmed,omitempty"`
}
