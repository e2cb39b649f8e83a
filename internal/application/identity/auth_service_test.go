package identity

import (
	"context"
	"testing"
	"time"

	"github.com/shopfront/backend/internal/application/event"
	"github.com/shopfront/backend/internal/domain/identity"
	"github.com/shopfront/backend/internal/domain/shared"
	"github.com/shopfront/backend/internal/infrastructure/auth"
	"github.com/shopfront/backend/internal/infrastructure/config"
	"github.com/shopfront/backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testPassword = "correct-horse"

type authFixture struct {
	svc       *AuthService
	users     *testutil.MockUserRepository
	blacklist *auth.InMemoryTokenBlacklist
	jwt       *auth.JWTService
	pub       *testutil.RecordingPublisher
}

func newAuthFixture() *authFixture {
	f := &authFixture{
		users:     new(testutil.MockUserRepository),
		blacklist: auth.NewInMemoryTokenBlacklist(),
		jwt: auth.NewJWTService(config.JWTConfig{
			Secret:                 "test-access-secret-that-is-long-enough",
			AccessTokenExpiration:  15 * time.Minute,
			RefreshTokenExpiration: 24 * time.Hour,
			RememberMeExpiration:   30 * 24 * time.Hour,
			Issuer:                 "shopfront-test",
		}),
		pub: testutil.NewRecordingPublisher(),
	}
	f.svc = NewAuthService(f.users, f.jwt, f.blacklist, event.NewDispatcher(f.pub, zap.NewNop()),
		AuthServiceConfig{MaxLoginAttempts: 2, LockDuration: time.Minute}, zap.NewNop())
	return f
}

func (f *authFixture) existingUser(t *testing.T) *identity.User {
	t.Helper()
	user, err := identity.NewUser("ana@example.com", testPassword, "Ana")
	require.NoError(t, err)
	user.ClearDomainEvents()
	f.users.On("FindByEmail", mock.Anything, "ana@example.com").Return(user, nil)
	f.users.On("FindByID", mock.Anything, user.ID).Return(user, nil)
	f.users.On("Save", mock.Anything, user).Return(nil)
	return user
}

func errCode(t *testing.T, err error) string {
	t.Helper()
	var de *shared.DomainError
	require.ErrorAs(t, err, &de)
	return de.Code
}

func TestAuthService_Register(t *testing.T) {
	f := newAuthFixture()
	f.users.On("ExistsByEmail", mock.Anything, "ana@example.com").Return(false, nil)
	f.users.On("Save", mock.Anything, mock.AnythingOfType("*identity.User")).Return(nil)

	resp, err := f.svc.Register(context.Background(), RegisterRequest{Email: "Ana@Example.com", Password: testPassword})
	require.NoError(t, err)
	assert.Equal(t, "customer", resp.User.Role)
	assert.Equal(t, "ana@example.com", resp.User.DisplayName)
	assert.Equal(t, []string{identity.EventTypeUserRegistered}, f.pub.Types())

	claims, err := f.jwt.ValidateAccessToken(resp.Tokens.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID.String(), claims.UserID)
}

func TestAuthService_Register_Duplicate(t *testing.T) {
	f := newAuthFixture()
	f.users.On("ExistsByEmail", mock.Anything, "ana@example.com").Return(true, nil)

	_, err := f.svc.Register(context.Background(), RegisterRequest{Email: "ana@example.com", Password: testPassword})
	assert.Equal(t, "EMAIL_EXISTS", errCode(t, err))
	f.users.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestAuthService_Login_RememberMe(t *testing.T) {
	f := newAuthFixture()
	f.existingUser(t)

	short, err := f.svc.Login(context.Background(), LoginRequest{Email: "ana@example.com", Password: testPassword})
	require.NoError(t, err)
	long, err := f.svc.Login(context.Background(), LoginRequest{Email: "ana@example.com", Password: testPassword, RememberMe: true})
	require.NoError(t, err)

	assert.True(t, long.Tokens.RefreshTokenExpiresAt.After(short.Tokens.RefreshTokenExpiresAt.Add(24*time.Hour)))
	assert.NotNil(t, long.User.LastLoginAt)
}

func TestAuthService_Login_LocksAfterFailures(t *testing.T) {
	f := newAuthFixture()
	f.existingUser(t)
	ctx := context.Background()

	_, err := f.svc.Login(ctx, LoginRequest{Email: "ana@example.com", Password: "wrong-password"})
	assert.Equal(t, "INVALID_CREDENTIALS", errCode(t, err))
	_, err = f.svc.Login(ctx, LoginRequest{Email: "ana@example.com", Password: "wrong-password"})
	assert.Equal(t, "ACCOUNT_LOCKED", errCode(t, err))
	_, err = f.svc.Login(ctx, LoginRequest{Email: "ana@example.com", Password: testPassword})
	assert.Equal(t, "ACCOUNT_LOCKED", errCode(t, err))
}

func TestAuthService_Login_UnknownEmail(t *testing.T) {
	f := newAuthFixture()
	f.users.On("FindByEmail", mock.Anything, "nobody@example.com").Return(nil, shared.ErrNotFound)

	_, err := f.svc.Login(context.Background(), LoginRequest{Email: "nobody@example.com", Password: testPassword})
	assert.Equal(t, "INVALID_CREDENTIALS", errCode(t, err))
}

func TestAuthService_Refresh_Rotates(t *testing.T) {
	f := newAuthFixture()
	f.existingUser(t)
	ctx := context.Background()
	login, err := f.svc.Login(ctx, LoginRequest{Email: "ana@example.com", Password: testPassword, RememberMe: true})
	require.NoError(t, err)

	refreshed, err := f.svc.Refresh(ctx, RefreshRequest{RefreshToken: login.Tokens.RefreshToken})
	require.NoError(t, err)
	claims, err := f.jwt.ValidateRefreshToken(refreshed.Tokens.RefreshToken)
	require.NoError(t, err)
	assert.True(t, claims.RememberMe)

	_, err = f.svc.Refresh(ctx, RefreshRequest{RefreshToken: login.Tokens.RefreshToken})
	assert.Equal(t, "TOKEN_REVOKED", errCode(t, err))

	_, err = f.svc.Refresh(ctx, RefreshRequest{RefreshToken: "garbage"})
	assert.Equal(t, "TOKEN_INVALID", errCode(t, err))
}

func TestAuthService_Logout(t *testing.T) {
	f := newAuthFixture()
	f.existingUser(t)
	ctx := context.Background()
	login, err := f.svc.Login(ctx, LoginRequest{Email: "ana@example.com", Password: testPassword})
	require.NoError(t, err)

	access, err := f.svc.Authenticate(ctx, login.Tokens.AccessToken)
	require.NoError(t, err)
	require.NoError(t, f.svc.Logout(ctx, access, LogoutRequest{RefreshToken: login.Tokens.RefreshToken}))

	_, err = f.svc.Authenticate(ctx, login.Tokens.AccessToken)
	assert.ErrorIs(t, err, auth.ErrTokenBlacklisted)
	_, err = f.svc.Refresh(ctx, RefreshRequest{RefreshToken: login.Tokens.RefreshToken})
	assert.Equal(t, "TOKEN_REVOKED", errCode(t, err))
}

func TestAuthService_ChangePassword(t *testing.T) {
	f := newAuthFixture()
	user := f.existingUser(t)
	ctx := context.Background()

	err := f.svc.ChangePassword(ctx, user.ID, ChangePasswordRequest{OldPassword: "nope", NewPassword: "another-secret"})
	assert.Equal(t, "INVALID_PASSWORD", errCode(t, err))

	login, err := f.svc.Login(ctx, LoginRequest{Email: "ana@example.com", Password: testPassword})
	require.NoError(t, err)
	require.NoError(t, f.svc.ChangePassword(ctx, user.ID, ChangePasswordRequest{OldPassword: testPassword, NewPassword: "another-secret"}))

	_, err = f.svc.Authenticate(ctx, login.Tokens.AccessToken)
	assert.ErrorIs(t, err, auth.ErrTokenBlacklisted)
	assert.True(t, user.VerifyPassword("another-secret"))
}

func TestAuthService_Me(t *testing.T) {
	f := newAuthFixture()
	user := f.existingUser(t)

	me, err := f.svc.Me(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ana", me.DisplayName)

	updated, err := f.svc.UpdateProfile(context.Background(), user.ID, UpdateProfileRequest{DisplayName: "Ana Lima", Phone: "+351 900"})
	require.NoError(t, err)
	assert.Equal(t, "Ana Lima", updated.DisplayName)
}
