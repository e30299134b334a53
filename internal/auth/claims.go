package auth

import (
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// defaultTTLMinutes applies when the configured TTL is not positive.
const defaultTTLMinutes = 60

// Claims extends the registered JWT claims with the staff role.
type Claims struct {
	jwt.RegisteredClaims
	Role     Role   `json:"role"`
	Username string `json:"username"`
}

// StaffID returns the numeric staff id carried in the subject.
func (c *Claims) StaffID() (int64, error) {
	id, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: subject %q", ErrTokenInvalid, c.Subject)
	}
	return id, nil
}

// GenerateAccessToken creates a signed HS256 token for s, valid for
// ttlMinutes. Tokens are validated by signature only.
func GenerateAccessToken(s Staff, secret string, ttlMinutes int) (string, time.Time, error) {
	if ttlMinutes <= 0 {
		ttlMinutes = defaultTTLMinutes
	}

	now := time.Now()
	expires := now.Add(time.Duration(ttlMinutes) * time.Minute)
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(s.ID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
			ID:        uuid.NewString(),
		},
		Role:     s.Role,
		Username: s.Username,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("signing access token: %w", err)
	}
	return signed, expires, nil
}

// ParseToken validates a token's signature, algorithm and expiry and returns
// its claims.
func ParseToken(tokenString, secret string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(_ *jwt.Token) (any, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTokenInvalid, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrTokenInvalid
	}
	if _, err := claims.StaffID(); err != nil {
		return nil, err
	}
	if !IsValidRole(claims.Role) {
		return nil, fmt.Errorf("%w: role %q", ErrTokenInvalid, claims.Role)
	}
	return claims, nil
}
