package security

import (
	"testing"
	"time"

	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword_RoundTrip(t *testing.T) {
	hash, err := HashPassword("bismillah-123")
	require.NoError(t, err)
	assert.NotEqual(t, "bismillah-123", hash)
	assert.True(t, CheckPassword(hash, "bismillah-123"))
	assert.False(t, CheckPassword(hash, "wrong"))

	_, err = HashPassword("   ")
	assert.ErrorIs(t, err, ErrEmptyPassword)
}

func TestIssueAndParseUserToken(t *testing.T) {
	now := time.Now()
	issued, err := IssueUserToken("secret", 42, "admin", time.Hour, now)
	require.NoError(t, err)
	require.NotEmpty(t, issued.JTI)

	claims, err := ParseUserToken("secret", issued.Token)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), claims.UserID)
	assert.Equal(t, "admin", claims.Role)
	assert.Equal(t, issued.JTI, claims.ID)

	_, err = ParseUserToken("other-secret", issued.Token)
	assert.Error(t, err)
}

func TestParseUserToken_Expired(t *testing.T) {
	issued, err := IssueUserToken("secret", 1, "user", time.Minute, time.Now().Add(-2*time.Hour))
	require.NoError(t, err)

	_, err = ParseUserToken("secret", issued.Token)
	assert.Error(t, err)
}

func TestIssueUserToken_MissingSecret(t *testing.T) {
	_, err := IssueUserToken(" ", 1, "user", time.Hour, time.Now())
	assert.ErrorIs(t, err, ErrMissingSecret)
}

func TestValidateTOTP(t *testing.T) {
	key, err := GenerateTOTP("SyariahOS", "user@example.com")
	require.NoError(t, err)
	require.NotEmpty(t, key.Secret)
	assert.Contains(t, key.URL, "otpauth://totp/")

	now := time.Now()
	code, err := totp.GenerateCode(key.Secret, now)
	require.NoError(t, err)
	assert.True(t, ValidateTOTP(code, key.Secret, now))
	assert.False(t, ValidateTOTP("000000x", key.Secret, now))
	assert.False(t, ValidateTOTP("", key.Secret, now))
}

func TestGenerateRandomString(t *testing.T) {
	first, err := GenerateRandomString(16)
	require.NoError(t, err)
	second, err := GenerateRandomString(16)
	require.NoError(t, err)
	assert.Len(t, first, 32)
	assert.NotEqual(t, first, second)

	_, err = GenerateRandomString(0)
	assert.Error(t, err)
}
