package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dlemos/procurement-service/internal/model"
)

const testSecret = "test-access-secret"

func signToken(t *testing.T, secret string, claims Claims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func validClaims(userID uuid.UUID, role string) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
		Name: "Ana Souza",
		Role: role,
	}
}

func TestParseValidToken(t *testing.T) {
	parser := NewParser(testSecret)
	userID := uuid.New()

	principal, err := parser.Parse(signToken(t, testSecret, validClaims(userID, "PURCHASING")))
	require.NoError(t, err)

	assert.Equal(t, userID, principal.UserID)
	assert.Equal(t, "Ana Souza", principal.Name)
	assert.Equal(t, model.RolePurchasing, principal.Role)
}

func TestParseRejectsWrongSecret(t *testing.T) {
	parser := NewParser(testSecret)

	_, err := parser.Parse(signToken(t, "another-secret", validClaims(uuid.New(), "ADMIN")))
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseRejectsExpiredToken(t *testing.T) {
	parser := NewParser(testSecret)
	claims := validClaims(uuid.New(), "SUPPLIER")
	claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))

	_, err := parser.Parse(signToken(t, testSecret, claims))
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseRejectsUnknownRole(t *testing.T) {
	parser := NewParser(testSecret)

	_, err := parser.Parse(signToken(t, testSecret, validClaims(uuid.New(), "INTERN")))
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseRejectsBadSubject(t *testing.T) {
	parser := NewParser(testSecret)
	claims := validClaims(uuid.New(), "REQUESTER")
	claims.Subject = "not-a-uuid"

	_, err := parser.Parse(signToken(t, testSecret, claims))
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseRejectsGarbage(t *testing.T) {
	parser := NewParser(testSecret)

	_, err := parser.Parse("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
