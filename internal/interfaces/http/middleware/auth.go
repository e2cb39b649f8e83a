package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopfront/backend/internal/domain/identity"
	"github.com/shopfront/backend/internal/infrastructure/auth"
	"github.com/shopfront/backend/internal/infrastructure/logger"
	"github.com/shopfront/backend/internal/interfaces/http/dto"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Context keys set by the auth middleware
const (
	SessionKey    = "auth_session"
	UserIDKey     = "user_id"
	AuthHeaderKey = "Authorization"
	BearerPrefix  = "Bearer "
)

// Authenticator resolves a bearer token into verified, unrevoked claims
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*auth.Claims, error)
}

// Session is the authenticated caller of a request
type Session struct {
	UserID uuid.UUID
	Email  string
	Role   identity.Role
	Claims *auth.Claims
}

// IsAdmin reports whether the caller holds the admin role
func (s *Session) IsAdmin() bool {
	return s != nil && s.Role == identity.RoleAdmin
}

// CurrentUser returns the session attached by RequireAuth or OptionalAuth
func CurrentUser(c *gin.Context) (*Session, bool) {
	v, exists := c.Get(SessionKey)
	if !exists {
		return nil, false
	}
	s, ok := v.(*Session)
	return s, ok && s != nil
}

// RequireAuth rejects requests without a valid bearer token
func RequireAuth(authn Authenticator, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			abortUnauthorized(c, dto.ErrCodeUnauthorized, "Authentication required")
			return
		}

		session, err := authenticate(c, authn, token)
		if err != nil {
			handleAuthError(c, log, err)
			return
		}
		attach(c, session)
		c.Next()
	}
}

// OptionalAuth attaches a session when a valid token is present and
// otherwise lets the request through anonymously.
func OptionalAuth(authn Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token, ok := bearerToken(c); ok {
			if session, err := authenticate(c, authn, token); err == nil {
				attach(c, session)
			}
		}
		c.Next()
	}
}

// RequireRole allows only sessions holding role. It must run after RequireAuth.
func RequireRole(role identity.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, ok := CurrentUser(c)
		if !ok {
			abortUnauthorized(c, dto.ErrCodeUnauthorized, "Authentication required")
			return
		}
		if session.Role != role {
			c.AbortWithStatusJSON(http.StatusForbidden, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeForbidden, "Insufficient role", requestIDOf(c)))
			return
		}
		c.Next()
	}
}

// RequireAdmin is RequireRole(identity.RoleAdmin)
func RequireAdmin() gin.HandlerFunc {
	return RequireRole(identity.RoleAdmin)
}

func bearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader(AuthHeaderKey)
	if !strings.HasPrefix(header, BearerPrefix) {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, BearerPrefix))
	return token, token != ""
}

func authenticate(c *gin.Context, authn Authenticator, token string) (*Session, error) {
	claims, err := authn.Authenticate(c.Request.Context(), token)
	if err != nil {
		return nil, err
	}
	userID, err := claims.UserUUID()
	if err != nil {
		return nil, auth.ErrInvalidClaims
	}
	return &Session{
		UserID: userID,
		Email:  claims.Email,
		Role:   identity.Role(claims.Role),
		Claims: claims,
	}, nil
}

func attach(c *gin.Context, s *Session) {
	c.Set(SessionKey, s)
	c.Set(UserIDKey, s.UserID.String())

	ctx := logger.WithUserID(c.Request.Context(), s.UserID.String())
	c.Request = c.Request.WithContext(ctx)
	trace.SpanFromContext(ctx).SetAttributes(attribute.String("user_id", s.UserID.String()))
}

func handleAuthError(c *gin.Context, log *zap.Logger, err error) {
	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		abortUnauthorized(c, dto.ErrCodeTokenExpired, "Token has expired")
	case errors.Is(err, auth.ErrTokenBlacklisted):
		abortUnauthorized(c, dto.ErrCodeTokenRevoked, "Token has been revoked")
	case errors.Is(err, auth.ErrInvalidToken), errors.Is(err, auth.ErrInvalidTokenType),
		errors.Is(err, auth.ErrInvalidClaims), errors.Is(err, auth.ErrTokenNotYetValid):
		abortUnauthorized(c, dto.ErrCodeTokenInvalid, "Invalid token")
	default:
		// revocation store unreachable; refuse rather than trust a possibly revoked token
		if log != nil {
			log.Error("Token revocation check failed", zap.Error(err), zap.String("path", c.Request.URL.Path))
		}
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, dto.NewErrorResponseWithRequestID(
			dto.ErrCodeUnavailable, "Authentication temporarily unavailable", requestIDOf(c)))
	}
}

func abortUnauthorized(c *gin.Context, code, message string) {
	c.Header("WWW-Authenticate", `Bearer realm="shopfront"`)
	c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponseWithRequestID(code, message, requestIDOf(c)))
}
