package usecase

import (
	"context"
	"testing"
	"time"

	"starter-api/internal/dto/request"
	"starter-api/pkg/mailer"
	"starter-api/pkg/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

const promptly = 500 * time.Millisecond

func TestAuthService_MailFailureDoesNotBlockOrFail(t *testing.T) {
	h := newHarness(t, utils.EnvProduction)
	ctx := context.Background()

	sender := newStalledSender()
	h.auth.mail = sender

	start := time.Now()
	_, err := h.auth.Register(ctx, &request.RegisterRequest{
		Email:    "jane@example.com",
		Password: strPtr("s3cret-pass"),
	})
	require.NoError(t, err)
	assert.Less(t, time.Since(start), promptly, "register")

	start = time.Now()
	_, err = h.auth.RequestOTP(ctx, &request.OTPRequest{Email: "new@example.com"})
	require.NoError(t, err)
	assert.Less(t, time.Since(start), promptly, "request otp")

	code := h.otps.forEmail("new@example.com")[0].VerificationCode

	start = time.Now()
	resp, err := h.auth.VerifyOTP(ctx, &request.OTPVerifyRequest{Email: "new@example.com", Code: code})
	require.NoError(t, err)
	assert.Less(t, time.Since(start), promptly, "verify otp")
	assert.Equal(t, "new@example.com", resp.User.Email)
	assert.Equal(t, 1, h.users.countByEmail("new@example.com"))

	// new account mail, verification code, new account mail
	assert.Eventually(t, func() bool { return sender.count() == 3 }, time.Second, 10*time.Millisecond)
	close(sender.release)
}

func TestSendEmail_LogsFailure(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	sender := newStalledSender()
	close(sender.release)

	sendEmail(sender, zap.New(core), mailer.KindVerificationCode, "jane@example.com", nil)

	entries := logs.FilterMessage("Failed to send email").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "jane@example.com", entries[0].ContextMap()["email"])
	assert.Equal(t, string(mailer.KindVerificationCode), entries[0].ContextMap()["kind"])
}
