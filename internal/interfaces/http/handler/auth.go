package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopfront/backend/internal/application/identity"
	"github.com/shopfront/backend/internal/infrastructure/config"
)

// RefreshCookieName is the HttpOnly cookie carrying the refresh token
const RefreshCookieName = "shop_refresh"

// AuthHandler handles account sign-up, sign-in and the caller's profile
type AuthHandler struct {
	BaseHandler
	authService *identity.AuthService
	cookie      *config.CookieConfig
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *identity.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// WithRefreshCookie makes the handler also hand out the refresh token as an
// HttpOnly cookie and accept it back on refresh.
func (h *AuthHandler) WithRefreshCookie(cfg config.CookieConfig) *AuthHandler {
	h.cookie = &cfg
	return h
}

func (h *AuthHandler) setRefreshCookie(c *gin.Context, result *identity.AuthResponse) {
	if h.cookie == nil || result == nil || result.Tokens == nil {
		return
	}
	maxAge := int(time.Until(result.Tokens.RefreshTokenExpiresAt).Seconds())
	c.SetSameSite(sameSiteMode(h.cookie.SameSite))
	c.SetCookie(RefreshCookieName, result.Tokens.RefreshToken, maxAge, h.cookie.Path, h.cookie.Domain, h.cookie.Secure, true)
}

func (h *AuthHandler) clearRefreshCookie(c *gin.Context) {
	if h.cookie == nil {
		return
	}
	c.SetSameSite(sameSiteMode(h.cookie.SameSite))
	c.SetCookie(RefreshCookieName, "", -1, h.cookie.Path, h.cookie.Domain, h.cookie.Secure, true)
}

func (h *AuthHandler) cookieToken(c *gin.Context) string {
	if h.cookie == nil {
		return ""
	}
	token, _ := c.Cookie(RefreshCookieName)
	return token
}

func sameSiteMode(s string) http.SameSite {
	switch strings.ToLower(s) {
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}

// Register godoc
// @ID           registerUser
// @Summary      Register a new account
// @Description  The new account is signed in.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body identity.RegisterRequest true "Register request"
// @Success      201 {object} dto.Response{data=identity.AuthResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      429 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req identity.RegisterRequest
	if !h.bindJSON(c, &req) {
		return
	}
	result, err := h.authService.Register(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.setRefreshCookie(c, result)
	h.Created(c, result)
}

// Login godoc
// @ID           loginUser
// @Summary      Sign in
// @Description  Sign in
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body identity.LoginRequest true "Login request"
// @Success      200 {object} dto.Response{data=identity.AuthResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      429 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req identity.LoginRequest
	if !h.bindJSON(c, &req) {
		return
	}
	result, err := h.authService.Login(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.setRefreshCookie(c, result)
	h.Success(c, result)
}

// RefreshToken godoc
// @ID           refreshToken
// @Summary      Rotate the refresh token
// @Description  The presented refresh token is spent; the answer carries a new pair. Without a body the refresh cookie is used.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body identity.RefreshRequest true "Refresh request"
// @Success      200 {object} dto.Response{data=identity.AuthResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      429 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /auth/refresh [post]
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req identity.RefreshRequest
	if token := h.cookieToken(c); token != "" && c.Request.ContentLength <= 0 {
		req.RefreshToken = token
	} else if !h.bindJSON(c, &req) {
		return
	}
	result, err := h.authService.Refresh(c.Request.Context(), req)
	if err != nil {
		h.clearRefreshCookie(c)
		h.HandleError(c, err)
		return
	}
	h.setRefreshCookie(c, result)
	h.Success(c, result)
}

// Logout godoc
// @ID           logoutUser
// @Summary      Sign out
// @Description  The body is optional; when it names the refresh token that one is revoked too.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body identity.LogoutRequest false "Logout request"
// @Success      204 "No Content"
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	var req identity.LogoutRequest
	if c.Request.ContentLength > 0 && !h.bindJSON(c, &req) {
		return
	}
	if req.RefreshToken == "" {
		req.RefreshToken = h.cookieToken(c)
	}
	if err := h.authService.Logout(c.Request.Context(), s.Claims, req); err != nil {
		h.HandleError(c, err)
		return
	}
	h.clearRefreshCookie(c)
	h.NoContent(c)
}

// GetCurrentUser godoc
// @ID           getCurrentUser
// @Summary      Get the signed-in user
// @Description  Get the signed-in user
// @Tags         auth
// @Produce      json
// @Success      200 {object} dto.Response{data=identity.UserResponse}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /auth/me [get]
func (h *AuthHandler) GetCurrentUser(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	user, err := h.authService.Me(c.Request.Context(), s.UserID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, user)
}

// UpdateProfile godoc
// @ID           updateProfile
// @Summary      Update the signed-in user's profile
// @Description  Update the signed-in user's profile
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body identity.UpdateProfileRequest true "Update profile request"
// @Success      200 {object} dto.Response{data=identity.UserResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /auth/me [put]
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	var req identity.UpdateProfileRequest
	if !h.bindJSON(c, &req) {
		return
	}
	user, err := h.authService.UpdateProfile(c.Request.Context(), s.UserID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, user)
}

// ChangePassword godoc
// @ID           changePassword
// @Summary      Change the signed-in user's password
// @Description  Every session of the user, this one included, is signed out.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body identity.ChangePasswordRequest true "Change password request"
// @Success      204 "No Content"
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /auth/password [put]
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	var req identity.ChangePasswordRequest
	if !h.bindJSON(c, &req) {
		return
	}
	if err := h.authService.ChangePassword(c.Request.Context(), s.UserID, req); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
