package token

import (
	"testing"
	"time"

	"starter-api/pkg/apperror"
	"starter-api/pkg/utils"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() utils.JWTConfig {
	return utils.JWTConfig{
		Secret:                    "test-secret",
		AccessExpiresSeconds:      3600,
		RefreshExpiresSeconds:     30 * 24 * 3600,
		SSOConfirmExpiresSeconds:  300,
		PasswordResetExpiresHours: 48,
	}
}

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func newTestIssuer() (*Issuer, *clock) {
	c := &clock{t: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
	return NewIssuer(testConfig(), WithClock(c.now)), c
}

func TestIssueLoginTokens_Horizons(t *testing.T) {
	issuer, c := newTestIssuer()
	userID := uuid.New()

	tokens, err := issuer.IssueLoginTokens(userID)
	require.NoError(t, err)

	assert.True(t, tokens.AccessExpiresAt.After(c.t))
	assert.True(t, tokens.RefreshExpiresAt.After(c.t))
	assert.False(t, tokens.RefreshExpiresAt.Before(tokens.AccessExpiresAt))
	assert.NotEqual(t, tokens.AccessExpiresAt, tokens.RefreshExpiresAt)
	assert.Equal(t, time.UTC, tokens.AccessExpiresAt.Location())

	access, err := issuer.Parse(tokens.AccessToken, ContextAccess)
	require.NoError(t, err)
	assert.Equal(t, userID.String(), access.UserID)

	refresh, err := issuer.Parse(tokens.RefreshToken, ContextRefresh)
	require.NoError(t, err)
	assert.Equal(t, userID.String(), refresh.UserID)
}

func TestParse_RejectsWrongContext(t *testing.T) {
	issuer, _ := newTestIssuer()

	tokens, err := issuer.IssueLoginTokens(uuid.New())
	require.NoError(t, err)

	_, err = issuer.Parse(tokens.RefreshToken, ContextAccess)
	assert.ErrorIs(t, err, apperror.ErrInvalidToken)
}

func TestParse_RejectsExpired(t *testing.T) {
	issuer, c := newTestIssuer()

	tokens, err := issuer.IssueLoginTokens(uuid.New())
	require.NoError(t, err)

	c.t = c.t.Add(2 * time.Hour)

	_, err = issuer.Parse(tokens.AccessToken, ContextAccess)
	assert.ErrorIs(t, err, apperror.ErrInvalidToken)

	_, err = issuer.Parse(tokens.RefreshToken, ContextRefresh)
	assert.NoError(t, err)
}

func TestParse_RejectsForeignSignature(t *testing.T) {
	issuer, _ := newTestIssuer()
	other := NewIssuer(utils.JWTConfig{Secret: "another-secret", AccessExpiresSeconds: 60, RefreshExpiresSeconds: 60})

	tokens, err := other.IssueLoginTokens(uuid.New())
	require.NoError(t, err)

	_, err = issuer.Parse(tokens.AccessToken, ContextAccess)
	assert.ErrorIs(t, err, apperror.ErrInvalidToken)
}

func TestSameInstantTokensDiffer(t *testing.T) {
	issuer, _ := newTestIssuer()
	userID := uuid.New()

	first, err := issuer.IssueLoginTokens(userID)
	require.NoError(t, err)
	second, err := issuer.IssueLoginTokens(userID)
	require.NoError(t, err)

	assert.NotEqual(t, first.AccessToken, second.AccessToken)
}

func TestSSOConfirmationCarriesCode(t *testing.T) {
	issuer, _ := newTestIssuer()
	userID := uuid.New()

	tok, err := issuer.IssueSSOConfirmation(userID, "abc123")
	require.NoError(t, err)

	claims, err := issuer.Parse(tok, ContextSSOConfirmation)
	require.NoError(t, err)
	assert.Equal(t, "abc123", claims.SSOConfirmationCode)

	id, err := claims.UserUUID()
	require.NoError(t, err)
	assert.Equal(t, userID, id)
}

func TestPasswordResetAndState(t *testing.T) {
	issuer, _ := newTestIssuer()

	reset, err := issuer.IssuePasswordReset("jane@example.com")
	require.NoError(t, err)
	claims, err := issuer.Parse(reset, ContextPasswordReset)
	require.NoError(t, err)
	assert.Equal(t, "jane@example.com", claims.Email)

	state, err := issuer.IssueSSOState("https://app.example.com/done")
	require.NoError(t, err)
	claims, err = issuer.Parse(state, ContextSSOState)
	require.NoError(t, err)
	assert.Equal(t, "https://app.example.com/done", claims.ReturnURL)
}

func TestEmptySecretFails(t *testing.T) {
	issuer := NewIssuer(utils.JWTConfig{AccessExpiresSeconds: 60, RefreshExpiresSeconds: 60})
	_, err := issuer.IssueLoginTokens(uuid.New())
	assert.Error(t, err)
}
