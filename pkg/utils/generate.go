package utils

import (
	"crypto/rand"
	"encoding/hex"
	"math/big"
	"strings"
)

// ==================== VERIFICATION CODE ====================

const (
	verificationCodeLength = 6
	verificationAlphabet   = "123456789"

	// BlocklistedCode is never handed out: it is the usual value of the
	// persistent development code and too easy to guess.
	BlocklistedCode = "123456"
)

// GenerateVerificationCode returns a 6-digit code drawn from 1-9, retrying
// while the result equals BlocklistedCode. Collisions with other active
// codes are resolved by the storage layer.
func GenerateVerificationCode() string {
	for {
		code := randomString(verificationAlphabet, verificationCodeLength)
		if code != BlocklistedCode {
			return code
		}
	}
}

func randomString(alphabet string, length int) string {
	var sb strings.Builder
	sb.Grow(length)

	max := big.NewInt(int64(len(alphabet)))
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			panic("crypto/rand unavailable: " + err.Error())
		}
		sb.WriteByte(alphabet[n.Int64()])
	}

	return sb.String()
}

// ==================== SSO ====================

// GenerateSSOConfirmationCode returns a fresh random per-user secret used to
// bind an SSO confirmation token.
func GenerateSSOConfirmationCode() string {
	return RandomHex(32)
}

// RandomHex returns n random bytes hex-encoded.
func RandomHex(n int) string {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		panic("crypto/rand unavailable: " + err.Error())
	}
	return hex.EncodeToString(buf)
}

// NormalizeEmail trims and lower-cases an address before lookup or storage.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
