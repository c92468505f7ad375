package services

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"github.com/SAP-F-2025/learning-service/internal/models"
)

const tokenIssuer = "learning-service"

// TokenClaims are the claims of a locally issued access token
type TokenClaims struct {
	UserID uint            `json:"uid"`
	Role   models.UserRole `json:"role"`
	jwt.RegisteredClaims
}

type tokenManager struct {
	secret []byte
	ttl    time.Duration
}

func newTokenManager(cfg AuthConfig) *tokenManager {
	return &tokenManager{secret: []byte(cfg.JWTSecret), ttl: cfg.TokenTTL}
}

func (m *tokenManager) issue(user *models.User, now time.Time) (string, time.Time, error) {
	expiresAt := now.Add(m.ttl)
	claims := TokenClaims{
		UserID: user.ID,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Subject:   fmt.Sprintf("%d", user.ID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, expiresAt, nil
}

func (m *tokenManager) parse(tokenString string) (*TokenClaims, error) {
	claims := &TokenClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("%w: invalid token", ErrUnauthorized)
	}
	if claims.Issuer != tokenIssuer {
		return nil, fmt.Errorf("%w: unknown token issuer", ErrUnauthorized)
	}
	return claims, nil
}
