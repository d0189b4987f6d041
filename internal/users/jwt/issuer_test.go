package jwt

import (
	"context"
	"testing"
	"time"

	"github.com/bissquit/runningsport/internal/domain"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testUser() *domain.User {
	return &domain.User{
		ID:        "5f1b2c3d",
		Email:     "ana@example.com",
		FirstName: "Ana",
		LastName:  "Lopez",
		BirthDate: "1990-05-01",
		Phone:     "600111222",
		Role:      domain.RoleClient,
		Status:    true,
	}
}

func newTestIssuer(t *testing.T, now time.Time) *Issuer {
	t.Helper()
	issuer, err := NewIssuer(Config{SecretKey: "test-secret", Locale: "es"})
	require.NoError(t, err)
	issuer.now = func() time.Time { return now }
	return issuer
}

func TestNewIssuer(t *testing.T) {
	t.Run("empty secret", func(t *testing.T) {
		_, err := NewIssuer(Config{Locale: "es"})
		assert.Error(t, err)
	})

	t.Run("bad locale", func(t *testing.T) {
		_, err := NewIssuer(Config{SecretKey: "s", Locale: "not a tag"})
		assert.Error(t, err)
	})

	t.Run("canonical locale and default duration", func(t *testing.T) {
		issuer, err := NewIssuer(Config{SecretKey: "s", Locale: "ES-es"})
		require.NoError(t, err)
		assert.Equal(t, "es-ES", issuer.locale)
		assert.Equal(t, DefaultTokenDuration, issuer.duration)
	})
}

func TestIssueToken_Claims(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	issuer := newTestIssuer(t, now)

	token, expiresAt, err := issuer.IssueToken(context.Background(), testUser())
	require.NoError(t, err)
	assert.Equal(t, now.Add(60*time.Minute), expiresAt)

	claims, err := issuer.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "5f1b2c3d", claims.Subject)
	assert.NotEmpty(t, claims.ID)
	assert.Equal(t, "Ana", claims.FirstName)
	assert.Equal(t, "Lopez", claims.LastName)
	assert.Equal(t, "1990-05-01", claims.BirthDate)
	assert.Equal(t, "ana@example.com", claims.Email)
	assert.Equal(t, "600111222", claims.Phone)
	assert.Equal(t, "es", claims.Locale)
	assert.Equal(t, domain.RoleClient, claims.Role)
	assert.Equal(t, now.Unix(), claims.IssuedAt.Unix())
	assert.Equal(t, expiresAt.Unix(), claims.ExpiresAt.Unix())
}

func TestValidateToken(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	issuer := newTestIssuer(t, now)
	token, _, err := issuer.IssueToken(context.Background(), testUser())
	require.NoError(t, err)

	t.Run("valid", func(t *testing.T) {
		userID, role, err := issuer.ValidateToken(context.Background(), token)
		require.NoError(t, err)
		assert.Equal(t, "5f1b2c3d", userID)
		assert.Equal(t, domain.RoleClient, role)
	})

	t.Run("expired", func(t *testing.T) {
		later := newTestIssuer(t, now.Add(61*time.Minute))
		_, _, err := later.ValidateToken(context.Background(), token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("other secret", func(t *testing.T) {
		other, err := NewIssuer(Config{SecretKey: "another-secret", Locale: "es"})
		require.NoError(t, err)
		other.now = func() time.Time { return now }
		_, _, err = other.ValidateToken(context.Background(), token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("tampered", func(t *testing.T) {
		_, _, err := issuer.ValidateToken(context.Background(), token+"x")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("garbage", func(t *testing.T) {
		_, _, err := issuer.ValidateToken(context.Background(), "not-a-token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("unsigned", func(t *testing.T) {
		unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:   "5f1b2c3d",
				ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
			},
		}).SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, _, err = issuer.ValidateToken(context.Background(), unsigned)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("no expiry", func(t *testing.T) {
		noExp, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
			RegisteredClaims: jwt.RegisteredClaims{Subject: "5f1b2c3d"},
		}).SignedString([]byte("test-secret"))
		require.NoError(t, err)

		_, _, err = issuer.ValidateToken(context.Background(), noExp)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}
