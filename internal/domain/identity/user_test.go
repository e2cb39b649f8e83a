package identity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUser(t *testing.T) {
	t.Run("creates customer with hashed password", func(t *testing.T) {
		u, err := NewUser(" Ada@Example.com ", "correct horse", "Ada")
		require.NoError(t, err)

		assert.Equal(t, "ada@example.com", u.Email)
		assert.Equal(t, RoleCustomer, u.Role)
		assert.Equal(t, UserStatusActive, u.Status)
		assert.NotEqual(t, "correct horse", u.PasswordHash)
		assert.True(t, u.VerifyPassword("correct horse"))
		assert.False(t, u.VerifyPassword("wrong horse"))
		assert.False(t, u.IsAdmin())

		events := u.GetDomainEvents()
		require.Len(t, events, 1)
		assert.Equal(t, EventTypeUserRegistered, events[0].EventType())
	})

	t.Run("rejects malformed email", func(t *testing.T) {
		_, err := NewUser("not-an-email", "correct horse", "")
		assert.Error(t, err)
		_, err = NewUser("Ada <ada@example.com>", "correct horse", "")
		assert.Error(t, err)
	})

	t.Run("rejects short password", func(t *testing.T) {
		_, err := NewUser("ada@example.com", "short", "")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "at least 8")
	})
}

func TestUser_LoginFailures(t *testing.T) {
	u, err := NewUser("ada@example.com", "correct horse", "")
	require.NoError(t, err)

	assert.False(t, u.RecordLoginFailure(3, time.Minute))
	assert.False(t, u.RecordLoginFailure(3, time.Minute))
	assert.True(t, u.RecordLoginFailure(3, time.Minute))
	assert.True(t, u.IsLocked())
	assert.False(t, u.CanLogin())

	u.Enable()
	assert.True(t, u.CanLogin())
	assert.Equal(t, 0, u.FailedAttempts)
}

func TestUser_LockExpires(t *testing.T) {
	u, err := NewUser("ada@example.com", "correct horse", "")
	require.NoError(t, err)

	u.RecordLoginFailure(1, -time.Second)
	assert.False(t, u.IsLocked())
	assert.True(t, u.CanLogin())

	u.RecordLoginSuccess()
	assert.Equal(t, UserStatusActive, u.Status)
	assert.NotNil(t, u.LastLoginAt)
}

func TestUser_Roles(t *testing.T) {
	u, err := NewUser("ada@example.com", "correct horse", "")
	require.NoError(t, err)

	require.NoError(t, u.SetRole(RoleAdmin))
	assert.True(t, u.IsAdmin())
	assert.Error(t, u.SetRole("owner"))

	u.Disable()
	assert.False(t, u.CanLogin())
}
