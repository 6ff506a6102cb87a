package security_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scootshare-backend/internal/domain"
	"scootshare-backend/internal/security"
)

const testSecret = "unit-test-secret"

func issueToken(t *testing.T, secret string, userID int32, role string, expiresIn time.Duration) string {
	t.Helper()
	claims := security.UserClaims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-time.Minute)),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiresIn)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func TestValidateToken(t *testing.T) {
	mgr := security.NewTokenManager(testSecret)

	principal, err := mgr.ValidateToken(issueToken(t, testSecret, 42, "renter", time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int32(42), principal.ID)
	assert.Equal(t, domain.RoleRenter, principal.Role)
}

func TestValidateTokenExpired(t *testing.T) {
	mgr := security.NewTokenManager(testSecret)

	_, err := mgr.ValidateToken(issueToken(t, testSecret, 42, "renter", -time.Hour))
	assert.ErrorIs(t, err, security.ErrExpiredToken)
}

func TestValidateTokenWrongSecret(t *testing.T) {
	mgr := security.NewTokenManager(testSecret)

	_, err := mgr.ValidateToken(issueToken(t, "other-secret", 42, "renter", time.Hour))
	assert.ErrorIs(t, err, security.ErrInvalidToken)
}

func TestValidateTokenUnknownRole(t *testing.T) {
	mgr := security.NewTokenManager(testSecret)

	_, err := mgr.ValidateToken(issueToken(t, testSecret, 42, "superuser", time.Hour))
	assert.ErrorIs(t, err, security.ErrInvalidToken)
}

func TestValidateTokenGarbage(t *testing.T) {
	mgr := security.NewTokenManager(testSecret)

	_, err := mgr.ValidateToken("not-a-token")
	assert.ErrorIs(t, err, security.ErrInvalidToken)
}
