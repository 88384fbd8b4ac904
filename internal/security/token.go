package security

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// tokenIssuer is the iss claim of every access token.
const tokenIssuer = "syariahos"

// ErrMissingSecret is returned when no JWT secret is configured.
var ErrMissingSecret = errors.New("security: missing jwt secret")

// UserClaims are the JWT claims carried by an access token.
type UserClaims struct {
	UserID uint64 `json:"uid"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// IssuedToken describes a freshly signed access token.
type IssuedToken struct {
	Token     string
	JTI       string
	ExpiresAt time.Time
}

// IssueUserToken signs an HS256 token for the user with a random jti.
func IssueUserToken(secret string, userID uint64, role string, expiry time.Duration, now time.Time) (IssuedToken, error) {
	if strings.TrimSpace(secret) == "" {
		return IssuedToken{}, ErrMissingSecret
	}
	if expiry <= 0 {
		return IssuedToken{}, fmt.Errorf("security: invalid token expiry %s", expiry)
	}
	jti := uuid.NewString()
	expiresAt := now.Add(expiry).UTC()
	claims := UserClaims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Issuer:    tokenIssuer,
			Subject:   strconv.FormatUint(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now.UTC()),
			NotBefore: jwt.NewNumericDate(now.UTC()),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return IssuedToken{}, fmt.Errorf("security: sign token: %w", err)
	}
	return IssuedToken{Token: signed, JTI: jti, ExpiresAt: expiresAt}, nil
}

// ParseUserToken validates the signature and time claims of a token.
func ParseUserToken(secret, token string) (*UserClaims, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, ErrMissingSecret
	}
	claims := &UserClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return []byte(secret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, err
	}
	if !parsed.Valid || claims.UserID == 0 || claims.ID == "" {
		return nil, errors.New("security: invalid token claims")
	}
	return claims, nil
}
