package entity

import "strings"

type UserRole string

const (
	RoleAdmin     UserRole = "admin"
	RoleModerator UserRole = "moderator"
	RoleCustomer  UserRole = "customer"
)

type Language string

const (
	LanguageEN Language = "en"
	LanguageFR Language = "fr"
)

type AuthProvider string

const (
	ProviderEmail    AuthProvider = "email"
	ProviderGoogle   AuthProvider = "google"
	ProviderFacebook AuthProvider = "facebook"
	ProviderGithub   AuthProvider = "github"
)

// User is an identity record. Accounts created through a third-party
// provider must carry SSOProviderID.
type User struct {
	Base
	Email               string       `db:"email"`
	PasswordHash        *string      `db:"password_hash"`
	Role                UserRole     `db:"role"`
	Language            Language     `db:"language"`
	Confirmed           bool         `db:"confirmed"`
	SSOConfirmationCode *string      `db:"sso_confirmation_code"`
	FirstName           string       `db:"first_name"`
	LastName            string       `db:"last_name"`
	Phone               *string      `db:"phone"`
	Address             *string      `db:"address"`
	City                *string      `db:"city"`
	Postcode            *string      `db:"postcode"`
	State               *string      `db:"state"`
	Provider            AuthProvider `db:"provider"`
	SSOProviderID       *string      `db:"sso_provider_id"`
	Archived            bool         `db:"archived"`
}

func (u *User) IsAdmin() bool     { return u.Role == RoleAdmin }
func (u *User) IsModerator() bool { return u.Role == RoleModerator }
func (u *User) IsCustomer() bool  { return u.Role == RoleCustomer }

func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}
