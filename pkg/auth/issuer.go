package auth

import (
	"errors"
	"fmt"
	"time"

	"printhub/pkg/model"

	"github.com/golang-jwt/jwt/v5"
)

const (
	TokenAccess  = "access"
	TokenRefresh = "refresh"

	issuerName = "printhub"
)

var (
	ErrInvalidToken   = errors.New("invalid token")
	ErrWrongTokenType = errors.New("wrong token type")
)

// Claims is the payload of both access and refresh tokens. Subject holds the user id.
type Claims struct {
	Email     string     `json:"email,omitempty"`
	Role      model.Role `json:"role,omitempty"`
	SessionID string     `json:"sid,omitempty"`
	TokenType string     `json:"typ"`
	jwt.RegisteredClaims
}

type Issuer struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

func NewIssuer(secret string, accessTTL, refreshTTL time.Duration) *Issuer {
	return &Issuer{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
}

func (i *Issuer) IssueAccess(user *model.User, sessionID string) (string, time.Time, error) {
	return i.sign(Claims{
		Email:     user.Email,
		Role:      user.Role,
		SessionID: sessionID,
		TokenType: TokenAccess,
	}, user.ID, i.accessTTL)
}

func (i *Issuer) IssueRefresh(userID, sessionID string) (string, time.Time, error) {
	return i.sign(Claims{
		SessionID: sessionID,
		TokenType: TokenRefresh,
	}, userID, i.refreshTTL)
}

func (i *Issuer) RefreshTTL() time.Duration {
	return i.refreshTTL
}

func (i *Issuer) sign(claims Claims, subject string, ttl time.Duration) (string, time.Time, error) {
	now := i.now()
	expiresAt := now.Add(ttl)
	claims.RegisteredClaims = jwt.RegisteredClaims{
		Subject:   subject,
		Issuer:    issuerName,
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// Verify checks signature, expiry and token type.
func (i *Issuer) Verify(tokenString, tokenType string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return i.secret, nil
	},
		jwt.WithIssuer(issuerName),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid || claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	if claims.TokenType != tokenType {
		return nil, ErrWrongTokenType
	}
	return claims, nil
}
