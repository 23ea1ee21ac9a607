package jwt

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "afi/pkg/domain-errors"
)

func TestIssueAndValidate(t *testing.T) {
	svc := New("test-key", "afi-test")

	t.Run("round trip", func(t *testing.T) {
		token, err := svc.Issue("ops@example.com", time.Hour)
		require.NoError(t, err)

		claims, err := svc.Validate(token)
		require.NoError(t, err)
		assert.Equal(t, "ops@example.com", claims.Subject)
		assert.Equal(t, ScopeIngest, claims.Scope)
		assert.NotEmpty(t, claims.ID)
	})

	t.Run("empty subject rejected", func(t *testing.T) {
		_, err := svc.Issue("", time.Hour)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest))
	})

	t.Run("expired token", func(t *testing.T) {
		past := New("test-key", "afi-test")
		past.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
		token, err := past.Issue("ops@example.com", time.Minute)
		require.NoError(t, err)

		_, err = svc.Validate(token)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
		assert.Contains(t, err.Error(), "expired")
	})

	t.Run("wrong key", func(t *testing.T) {
		other := New("other-key", "afi-test")
		token, err := other.Issue("ops@example.com", time.Hour)
		require.NoError(t, err)

		_, err = svc.Validate(token)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	t.Run("wrong issuer", func(t *testing.T) {
		other := New("test-key", "someone-else")
		token, err := other.Issue("ops@example.com", time.Hour)
		require.NoError(t, err)

		_, err = svc.Validate(token)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	t.Run("missing scope is forbidden", func(t *testing.T) {
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:   "viewer",
				Issuer:    "afi-test",
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
		})
		signed, err := token.SignedString([]byte("test-key"))
		require.NoError(t, err)

		_, err = svc.Validate(signed)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeForbidden))
	})
}
