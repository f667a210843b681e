package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestUserDerivedFields(t *testing.T) {
	u := &User{Role: RoleModerator, FirstName: "Ada", LastName: "Lovelace"}

	assert.True(t, u.IsModerator())
	assert.False(t, u.IsAdmin())
	assert.False(t, u.IsCustomer())
	assert.Equal(t, "Ada Lovelace", u.FullName())

	u.LastName = ""
	assert.Equal(t, "Ada", u.FullName())
}

func TestOneTimePasswordIsExpired(t *testing.T) {
	now := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	otp := &OneTimePassword{ExpiresAt: now}

	assert.True(t, otp.IsExpired(now))
	assert.True(t, otp.IsExpired(now.Add(time.Second)))
	assert.False(t, otp.IsExpired(now.Add(-time.Second)))
}
