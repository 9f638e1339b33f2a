package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// defaultAccessTokenTTL applies when the configured TTL is missing or
// nonsensical.
const defaultAccessTokenTTL = 15 * time.Minute

// CustomClaims carries the account identity inside an access token.
// Role and username ride along so request authorisation never needs a
// database lookup.
type CustomClaims struct {
	jwt.RegisteredClaims
	Role     Role   `json:"role"`
	Username string `json:"username"`
}

// GenerateAccessToken signs a short-lived HS256 token for the user.
// The subject is the user ID; each token gets a fresh JTI.
func GenerateAccessToken(user *User, secret string, ttlMinutes int) (string, error) {
	ttl := defaultAccessTokenTTL
	if ttlMinutes > 0 {
		ttl = time.Duration(ttlMinutes) * time.Minute
	}

	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, CustomClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        uuid.NewString(),
		},
		Role:     user.Role,
		Username: user.Username,
	})

	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("signing access token: %w", err)
	}
	return signed, nil
}

// ParseToken checks the signature and expiry of an access token and
// returns its claims. Only HS256 is accepted; a token whose header
// names any other algorithm fails before signature verification.
func ParseToken(tokenString, secret string) (*CustomClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &CustomClaims{},
		func(_ *jwt.Token) (any, error) { return []byte(secret), nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTokenInvalid, err)
	}

	claims, ok := token.Claims.(*CustomClaims)
	if !ok || !token.Valid {
		return nil, ErrTokenInvalid
	}
	if claims.Subject == "" || claims.Role == "" {
		return nil, fmt.Errorf("%w: incomplete claims", ErrTokenInvalid)
	}

	return claims, nil
}
