package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ExpiryBuffer is how close to exp a token may get before it counts as expired.
const ExpiryBuffer = 120 * time.Second

// DecodeUnverified reads the claims without checking the signature.
// Only use it for client-side expiry decisions, never for authorization.
func DecodeUnverified(tokenString string) (*Claims, error) {
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tokenString, claims); err != nil {
		return nil, err
	}
	return claims, nil
}

func IsTokenValid(tokenString string, now time.Time) bool {
	if tokenString == "" {
		return false
	}
	claims, err := DecodeUnverified(tokenString)
	if err != nil || claims.ExpiresAt == nil {
		return false
	}
	return claims.ExpiresAt.Time.Sub(now) > ExpiryBuffer
}

// TimeUntilExpiry is zero for expired or undecodable tokens.
func TimeUntilExpiry(tokenString string, now time.Time) time.Duration {
	claims, err := DecodeUnverified(tokenString)
	if err != nil || claims.ExpiresAt == nil {
		return 0
	}
	return max(0, claims.ExpiresAt.Time.Sub(now).Truncate(time.Second))
}

func UserIDFromToken(tokenString string) string {
	claims, err := DecodeUnverified(tokenString)
	if err != nil {
		return ""
	}
	return claims.Subject
}
