package handler

import (
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopfront/backend/internal/application/event"
	identityapp "github.com/shopfront/backend/internal/application/identity"
	"github.com/shopfront/backend/internal/domain/identity"
	"github.com/shopfront/backend/internal/domain/shared"
	"github.com/shopfront/backend/internal/infrastructure/auth"
	"github.com/shopfront/backend/internal/infrastructure/config"
	"github.com/shopfront/backend/internal/interfaces/http/dto"
	"github.com/shopfront/backend/internal/interfaces/http/middleware"
	"github.com/shopfront/backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newAuthRouter(users *testutil.MockUserRepository) *gin.Engine {
	jwtService := auth.NewJWTService(config.JWTConfig{
		Secret:                 "handler-test-secret-at-least-32-bytes",
		AccessTokenExpiration:  15 * time.Minute,
		RefreshTokenExpiration: 24 * time.Hour,
		RememberMeExpiration:   30 * 24 * time.Hour,
		Issuer:                 "shopfront-test",
	})
	svc := identityapp.NewAuthService(users, jwtService, auth.NewInMemoryTokenBlacklist(),
		event.NewDispatcher(testutil.NewRecordingPublisher(), zap.NewNop()),
		identityapp.DefaultAuthServiceConfig(), zap.NewNop())
	h := NewAuthHandler(svc)

	return newTestRouter(nil, func(r gin.IRouter) {
		r.POST("/auth/register", h.Register)
		r.POST("/auth/login", h.Login)
		r.POST("/auth/refresh", h.RefreshToken)
		authed := r.Group("", middleware.RequireAuth(svc, zap.NewNop()))
		authed.GET("/auth/me", h.GetCurrentUser)
		authed.POST("/auth/logout", h.Logout)
	})
}

func TestAuthHandler_RegisterMeLogout(t *testing.T) {
	users := new(testutil.MockUserRepository)
	var saved *identity.User
	users.On("ExistsByEmail", mock.Anything, "ana@example.com").Return(false, nil)
	users.On("Save", mock.Anything, mock.AnythingOfType("*identity.User")).
		Run(func(args mock.Arguments) { saved = args.Get(1).(*identity.User) }).
		Return(nil)
	r := newAuthRouter(users)

	w := testutil.Do(t, r, testutil.Request{
		Method: http.MethodPost,
		Path:   "/auth/register",
		Body:   identityapp.RegisterRequest{Email: "Ana@Example.com", Password: "correct-horse-1", DisplayName: "Ana"},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	registered := testutil.DecodeData[identityapp.AuthResponse](t, w)
	assert.Equal(t, "ana@example.com", registered.User.Email)
	assert.Equal(t, string(identity.RoleCustomer), registered.User.Role)
	require.NotNil(t, saved)
	token := registered.Tokens.AccessToken

	users.On("FindByID", mock.Anything, saved.ID).Return(saved, nil)
	w = testutil.Do(t, r, testutil.Request{Path: "/auth/me", Token: token})
	me := testutil.DecodeData[identityapp.UserResponse](t, w)
	assert.Equal(t, saved.ID, me.ID)

	w = testutil.Do(t, r, testutil.Request{Method: http.MethodPost, Path: "/auth/logout", Token: token})
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = testutil.Do(t, r, testutil.Request{Path: "/auth/me", Token: token})
	testutil.AssertErrorResponse(t, w, http.StatusUnauthorized, dto.ErrCodeTokenRevoked)
}

func TestAuthHandler_Register_Validation(t *testing.T) {
	w := testutil.Do(t, newAuthRouter(new(testutil.MockUserRepository)), testutil.Request{
		Method: http.MethodPost,
		Path:   "/auth/register",
		Body:   identityapp.RegisterRequest{Email: "not-an-email", Password: "short"},
	})
	testutil.AssertErrorResponse(t, w, http.StatusBadRequest, dto.ErrCodeValidation)
}

func TestAuthHandler_Register_EmailTaken(t *testing.T) {
	users := new(testutil.MockUserRepository)
	users.On("ExistsByEmail", mock.Anything, "ana@example.com").Return(true, nil)

	w := testutil.Do(t, newAuthRouter(users), testutil.Request{
		Method: http.MethodPost,
		Path:   "/auth/register",
		Body:   identityapp.RegisterRequest{Email: "ana@example.com", Password: "correct-horse-1"},
	})
	testutil.AssertErrorResponse(t, w, http.StatusConflict, "EMAIL_EXISTS")
}

func TestAuthHandler_Login_InvalidCredentials(t *testing.T) {
	users := new(testutil.MockUserRepository)
	ana, err := identity.NewUser("ana@example.com", "correct-horse-1", "Ana")
	require.NoError(t, err)
	users.On("FindByEmail", mock.Anything, "ana@example.com").Return(ana, nil)
	users.On("FindByEmail", mock.Anything, "bob@example.com").Return(nil, shared.ErrNotFound)
	users.On("Save", mock.Anything, ana).Return(nil)
	r := newAuthRouter(users)

	for _, req := range []identityapp.LoginRequest{
		{Email: "ana@example.com", Password: "wrong-password"},
		{Email: "bob@example.com", Password: "correct-horse-1"},
	} {
		w := testutil.Do(t, r, testutil.Request{Method: http.MethodPost, Path: "/auth/login", Body: req})
		testutil.AssertErrorResponse(t, w, http.StatusUnauthorized, "INVALID_CREDENTIALS")
	}
	assert.Equal(t, 1, ana.FailedAttempts)
}

func TestAuthHandler_Refresh_Garbage(t *testing.T) {
	w := testutil.Do(t, newAuthRouter(new(testutil.MockUserRepository)), testutil.Request{
		Method: http.MethodPost,
		Path:   "/auth/refresh",
		Body:   identityapp.RefreshRequest{RefreshToken: "garbage"},
	})
	testutil.AssertErrorResponse(t, w, http.StatusUnauthorized, "TOKEN_INVALID")
}

func TestAuthHandler_RefreshCookie(t *testing.T) {
	users := new(testutil.MockUserRepository)
	ana, err := identity.NewUser("ana@example.com", "correct-horse-1", "Ana")
	require.NoError(t, err)
	users.On("FindByEmail", mock.Anything, "ana@example.com").Return(ana, nil)
	users.On("FindByID", mock.Anything, ana.ID).Return(ana, nil)
	users.On("Save", mock.Anything, ana).Return(nil)

	jwtService := auth.NewJWTService(config.JWTConfig{
		Secret:                 "handler-test-secret-at-least-32-bytes",
		AccessTokenExpiration:  15 * time.Minute,
		RefreshTokenExpiration: 24 * time.Hour,
		RememberMeExpiration:   30 * 24 * time.Hour,
	})
	svc := identityapp.NewAuthService(users, jwtService, auth.NewInMemoryTokenBlacklist(),
		event.NewDispatcher(testutil.NewRecordingPublisher(), zap.NewNop()),
		identityapp.DefaultAuthServiceConfig(), zap.NewNop())
	h := NewAuthHandler(svc).WithRefreshCookie(config.CookieConfig{Path: "/api/v1/auth", Secure: true, SameSite: "strict"})
	r := newTestRouter(nil, func(r gin.IRouter) {
		r.POST("/auth/login", h.Login)
		r.POST("/auth/refresh", h.RefreshToken)
	})

	w := testutil.Do(t, r, testutil.Request{
		Method: http.MethodPost,
		Path:   "/auth/login",
		Body:   identityapp.LoginRequest{Email: "ana@example.com", Password: "correct-horse-1", RememberMe: true},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, RefreshCookieName, cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)
	assert.True(t, cookies[0].Secure)
	assert.Equal(t, http.SameSiteStrictMode, cookies[0].SameSite)

	w = testutil.Do(t, r, testutil.Request{
		Method:  http.MethodPost,
		Path:    "/auth/refresh",
		Headers: map[string]string{"Cookie": RefreshCookieName + "=" + cookies[0].Value},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	rotated := w.Result().Cookies()
	require.Len(t, rotated, 1)
	assert.NotEqual(t, cookies[0].Value, rotated[0].Value)
}
