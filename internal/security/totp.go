package security

import (
	"strings"
	"time"

	"github.com/pquerna/otp/totp"
)

// TOTPKey holds a generated TOTP secret and its provisioning URL.
type TOTPKey struct {
	Secret string
	URL    string
}

// GenerateTOTP creates a new TOTP secret for the account.
func GenerateTOTP(issuer, account string) (TOTPKey, error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      issuer,
		AccountName: account,
	})
	if err != nil {
		return TOTPKey{}, err
	}
	return TOTPKey{Secret: key.Secret(), URL: key.URL()}, nil
}

// ValidateTOTP checks a code against the secret at the given time.
func ValidateTOTP(code, secret string, now time.Time) bool {
	code = strings.TrimSpace(code)
	if code == "" || secret == "" {
		return false
	}
	ok, err := totp.ValidateCustom(code, secret, now.UTC(), totp.ValidateOpts{
		Period:    30,
		Skew:      1,
		Digits:    6,
		Algorithm: 0,
	})
	return err == nil && ok
}
