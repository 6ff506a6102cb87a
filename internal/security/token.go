package security

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"

	"scootshare-backend/internal/domain"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
)

// Principal is the authenticated actor supplied by the identity provider.
// The core trusts it once the token validates.
type Principal struct {
	ID   int32
	Role domain.Role
}

// UserClaims defines the claims the identity provider issues for this
// application.
type UserClaims struct {
	UserID int32  `json:"user_id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// TokenManager validates access tokens issued by the identity provider.
type TokenManager interface {
	ValidateToken(tokenString string) (*Principal, error)
}

type tokenManager struct {
	secret []byte
}

func NewTokenManager(secret string) TokenManager {
	return &tokenManager{
		secret: []byte(secret),
	}
}

func (m *tokenManager) ValidateToken(tokenString string) (*Principal, error) {
	claims := &UserClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return m.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}

	role := domain.Role(claims.Role)
	switch role {
	case domain.RoleRenter, domain.RoleHost, domain.RoleAdmin:
	default:
		return nil, ErrInvalidToken
	}

	return &Principal{ID: claims.UserID, Role: role}, nil
}
