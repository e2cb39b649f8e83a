package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shopfront/backend/internal/infrastructure/config"
)

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:                 "test-access-secret-that-is-long-enough",
		RefreshSecret:          "test-refresh-secret-that-is-long-enough",
		AccessTokenExpiration:  15 * time.Minute,
		RefreshTokenExpiration: 24 * time.Hour,
		RememberMeExpiration:   30 * 24 * time.Hour,
		Issuer:                 "shopfront-test",
	}
}

func TestJWTService_GenerateTokenPair(t *testing.T) {
	svc := NewJWTService(testJWTConfig())
	userID := uuid.New()

	pair, err := svc.GenerateTokenPair(Subject{UserID: userID, Email: "ann@example.com", Role: "admin"})
	require.NoError(t, err)
	assert.Equal(t, "Bearer", pair.TokenType)
	assert.NotEqual(t, pair.AccessToken, pair.RefreshToken)

	t.Run("access token carries role and email", func(t *testing.T) {
		claims, err := svc.ValidateAccessToken(pair.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, userID.String(), claims.UserID)
		assert.Equal(t, "admin", claims.Role)
		assert.Equal(t, "ann@example.com", claims.Email)
		assert.NotEmpty(t, claims.ID)
	})

	t.Run("refresh token carries no profile data", func(t *testing.T) {
		claims, err := svc.ValidateRefreshToken(pair.RefreshToken)
		require.NoError(t, err)
		assert.Empty(t, claims.Role)
		assert.Empty(t, claims.Email)
	})

	t.Run("token types are not interchangeable", func(t *testing.T) {
		_, err := svc.ValidateAccessToken(pair.RefreshToken)
		assert.Error(t, err)
		_, err = svc.ValidateRefreshToken(pair.AccessToken)
		assert.Error(t, err)
	})
}

func TestJWTService_RememberMe(t *testing.T) {
	svc := NewJWTService(testJWTConfig())

	short, err := svc.GenerateTokenPair(Subject{UserID: uuid.New()})
	require.NoError(t, err)
	long, err := svc.GenerateTokenPair(Subject{UserID: uuid.New(), RememberMe: true})
	require.NoError(t, err)

	assert.WithinDuration(t, time.Now().Add(24*time.Hour), short.RefreshTokenExpiresAt, time.Minute)
	assert.WithinDuration(t, time.Now().Add(30*24*time.Hour), long.RefreshTokenExpiresAt, time.Minute)

	claims, err := svc.ValidateRefreshToken(long.RefreshToken)
	require.NoError(t, err)
	assert.True(t, claims.RememberMe)
}

func TestJWTService_Validate(t *testing.T) {
	cfg := testJWTConfig()
	svc := NewJWTService(cfg)

	t.Run("expired token", func(t *testing.T) {
		past := NewJWTService(cfg)
		past.now = func() time.Time { return time.Now().Add(-time.Hour) }
		pair, err := past.GenerateTokenPair(Subject{UserID: uuid.New()})
		require.NoError(t, err)

		_, err = svc.ValidateAccessToken(pair.AccessToken)
		assert.ErrorIs(t, err, ErrExpiredToken)
	})

	t.Run("wrong secret", func(t *testing.T) {
		other := cfg
		other.Secret = "another-secret-entirely-different-value"
		pair, err := NewJWTService(other).GenerateTokenPair(Subject{UserID: uuid.New()})
		require.NoError(t, err)

		_, err = svc.ValidateAccessToken(pair.AccessToken)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("wrong issuer", func(t *testing.T) {
		other := cfg
		other.Issuer = "someone-else"
		pair, err := NewJWTService(other).GenerateTokenPair(Subject{UserID: uuid.New()})
		require.NoError(t, err)

		_, err = svc.ValidateAccessToken(pair.AccessToken)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("rejects none algorithm", func(t *testing.T) {
		token := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{UserID: uuid.NewString(), TokenType: TokenTypeAccess})
		raw, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = svc.ValidateAccessToken(raw)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := svc.ValidateAccessToken("not.a.token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestClaims_RemainingTTL(t *testing.T) {
	c := &Claims{}
	assert.Zero(t, c.RemainingTTL())

	c.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))
	assert.Zero(t, c.RemainingTTL())

	c.ExpiresAt = jwt.NewNumericDate(time.Now().Add(time.Hour))
	assert.InDelta(t, time.Hour.Seconds(), c.RemainingTTL().Seconds(), 5)
}
