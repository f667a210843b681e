// Package apperror holds the error taxonomy shared by repositories, services
// and HTTP adaptors. Handlers map these with errors.Is.
package apperror

import "errors"

var (
	// ErrInvalidToken covers an OTP that is unknown, expired, bound to another
	// email or not bound to a user, and any token that fails verification.
	ErrInvalidToken = errors.New("invalid or expired authentication code")

	// ErrUnauthorized is surfaced to callers for every failed login attempt.
	ErrUnauthorized = errors.New("incorrect email, password, or code")

	ErrConflict  = errors.New("already exists")
	ErrNotFound  = errors.New("not found")
	ErrForbidden = errors.New("not enough permissions")

	ErrValidation = errors.New("validation failed")

	// ErrUnsupportedOperation marks a call that breaks a repository contract,
	// e.g. updating a one-time password.
	ErrUnsupportedOperation = errors.New("unsupported operation")
)
