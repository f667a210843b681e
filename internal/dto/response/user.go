package response

import (
	"time"

	"starter-api/internal/data/entity"
)

type UserResponse struct {
	ID        string              `json:"id"`
	Email     string              `json:"email"`
	Role      entity.UserRole     `json:"role"`
	Language  entity.Language     `json:"language"`
	Confirmed bool                `json:"confirmed"`
	FirstName string              `json:"first_name"`
	LastName  string              `json:"last_name"`
	FullName  string              `json:"full_name"`
	Phone     *string             `json:"phone,omitempty"`
	Address   *string             `json:"address,omitempty"`
	City      *string             `json:"city,omitempty"`
	Postcode  *string             `json:"postcode,omitempty"`
	State     *string             `json:"state,omitempty"`
	Provider  entity.AuthProvider `json:"provider"`
	Archived  bool                `json:"archived"`
	CreatedAt time.Time           `json:"created_at"`
	UpdatedAt time.Time           `json:"updated_at"`
}

type UsersResponse struct {
	Data  []UserResponse `json:"data"`
	Count int            `json:"count"`
}

func UserToResponse(user *entity.User) UserResponse {
	return UserResponse{
		ID:        user.ID.String(),
		Email:     user.Email,
		Role:      user.Role,
		Language:  user.Language,
		Confirmed: user.Confirmed,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		FullName:  user.FullName(),
		Phone:     user.Phone,
		Address:   user.Address,
		City:      user.City,
		Postcode:  user.Postcode,
		State:     user.State,
		Provider:  user.Provider,
		Archived:  user.Archived,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}

func UsersToResponse(users []*entity.User) UsersResponse {
	data := make([]UserResponse, 0, len(users))
	for _, u := range users {
		data = append(data, UserToResponse(u))
	}
	return UsersResponse{Data: data, Count: len(data)}
}
