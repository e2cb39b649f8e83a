package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shopfront/backend/internal/infrastructure/auth"
)

func TestRedisTokenBlacklist(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	bl := auth.NewRedisTokenBlacklist(client)
	ctx := context.Background()

	t.Run("revoked jti is reported until ttl passes", func(t *testing.T) {
		require.NoError(t, bl.Revoke(ctx, "jti-1", time.Minute))

		revoked, err := bl.IsRevoked(ctx, "jti-1")
		require.NoError(t, err)
		assert.True(t, revoked)

		mr.FastForward(2 * time.Minute)
		revoked, err = bl.IsRevoked(ctx, "jti-1")
		require.NoError(t, err)
		assert.False(t, revoked)
	})

	t.Run("non positive ttl is a no-op", func(t *testing.T) {
		require.NoError(t, bl.Revoke(ctx, "jti-2", 0))
		revoked, err := bl.IsRevoked(ctx, "jti-2")
		require.NoError(t, err)
		assert.False(t, revoked)
	})

	t.Run("user revocation covers earlier tokens", func(t *testing.T) {
		require.NoError(t, bl.RevokeUser(ctx, "user-1", time.Hour))

		revoked, err := bl.IsUserRevoked(ctx, "user-1", time.Now().Add(-time.Hour))
		require.NoError(t, err)
		assert.True(t, revoked)

		revoked, err = bl.IsUserRevoked(ctx, "user-1", time.Now().Add(time.Hour))
		require.NoError(t, err)
		assert.False(t, revoked)

		revoked, err = bl.IsUserRevoked(ctx, "user-2", time.Now())
		require.NoError(t, err)
		assert.False(t, revoked)
	})

	t.Run("redis failure is returned", func(t *testing.T) {
		mr.SetError("boom")
		defer mr.SetError("")

		_, err := bl.IsRevoked(ctx, "jti-3")
		assert.Error(t, err)
	})
}

func TestInMemoryTokenBlacklist(t *testing.T) {
	bl := auth.NewInMemoryTokenBlacklist()
	ctx := context.Background()

	require.NoError(t, bl.Revoke(ctx, "jti", time.Millisecond))
	time.Sleep(5 * time.Millisecond)
	revoked, err := bl.IsRevoked(ctx, "jti")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, bl.Revoke(ctx, "jti", time.Hour))
	revoked, err = bl.IsRevoked(ctx, "jti")
	require.NoError(t, err)
	assert.True(t, revoked)

	issued := time.Now().Add(-time.Second)
	require.NoError(t, bl.RevokeUser(ctx, "u", time.Hour))
	revoked, err = bl.IsUserRevoked(ctx, "u", issued)
	require.NoError(t, err)
	assert.True(t, revoked)
}
