package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopfront/backend/internal/domain/identity"
	"github.com/shopfront/backend/internal/domain/shared"
	"github.com/shopfront/backend/internal/infrastructure/auth"
	"github.com/shopfront/backend/internal/interfaces/http/dto"
	"github.com/shopfront/backend/internal/interfaces/http/middleware"
	"github.com/shopfront/backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func shopperSession() *middleware.Session {
	id := testutil.TestUserID()
	return &middleware.Session{
		UserID: id,
		Email:  "ana@example.com",
		Role:   identity.RoleCustomer,
		Claims: &auth.Claims{UserID: id.String(), Email: "ana@example.com", Role: string(identity.RoleCustomer)},
	}
}

// newTestRouter builds an engine with request ids and, when s is set, a
// session attached to every request.
func newTestRouter(s *middleware.Session, register func(r gin.IRouter)) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestID())
	if s != nil {
		r.Use(func(c *gin.Context) {
			c.Set(middleware.SessionKey, s)
			c.Next()
		})
	}
	register(r)
	return r
}

func TestHandleError(t *testing.T) {
	h := &BaseHandler{}
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"generic not found", shared.ErrNotFound, http.StatusNotFound, dto.ErrCodeNotFound},
		{"wrapped domain error", fmt.Errorf("load: %w", shared.ErrInvalidState), http.StatusUnprocessableEntity, dto.ErrCodeInvalidState},
		{"specific code kept", shared.NewDomainError("CATEGORY_IN_USE", "in use"), http.StatusConflict, "CATEGORY_IN_USE"},
		{"payment failure", shared.NewDomainError("PAYMENT_FAILED", "declined"), http.StatusPaymentRequired, "PAYMENT_FAILED"},
		{"deadline", context.DeadlineExceeded, http.StatusServiceUnavailable, dto.ErrCodeUnavailable},
		{"unexpected", errors.New("disk on fire"), http.StatusInternalServerError, dto.ErrCodeInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestRouter(nil, func(r gin.IRouter) {
				r.GET("/x", func(c *gin.Context) { h.HandleError(c, tt.err) })
			})
			w := testutil.Do(t, r, testutil.Request{Path: "/x"})
			testutil.AssertErrorResponse(t, w, tt.status, tt.code)
		})
	}
}

func TestHandleError_HidesInternalDetails(t *testing.T) {
	h := &BaseHandler{}
	r := newTestRouter(nil, func(r gin.IRouter) {
		r.GET("/x", func(c *gin.Context) { h.HandleError(c, errors.New("pq: password authentication failed")) })
	})
	w := testutil.Do(t, r, testutil.Request{Path: "/x"})
	assert.NotContains(t, w.Body.String(), "pq:")
}

func TestErrorCarriesRequestID(t *testing.T) {
	h := &BaseHandler{}
	r := newTestRouter(nil, func(r gin.IRouter) {
		r.GET("/x", func(c *gin.Context) { h.BadRequest(c, "nope") })
	})
	w := testutil.Do(t, r, testutil.Request{Path: "/x", Headers: map[string]string{middleware.RequestIDHeader: "req-42"}})
	assert.Contains(t, w.Body.String(), `"request_id":"req-42"`)
}

func TestUUIDParam(t *testing.T) {
	h := &BaseHandler{}
	r := newTestRouter(nil, func(r gin.IRouter) {
		r.GET("/items/:id", func(c *gin.Context) {
			id, ok := h.uuidParam(c, "id")
			if ok {
				h.Success(c, id)
			}
		})
	})

	w := testutil.Do(t, r, testutil.Request{Path: "/items/not-a-uuid"})
	testutil.AssertErrorResponse(t, w, http.StatusBadRequest, dto.ErrCodeInvalidInput)

	id := uuid.New()
	w = testutil.Do(t, r, testutil.Request{Path: "/items/" + id.String()})
	assert.Equal(t, id, testutil.DecodeData[uuid.UUID](t, w))
}

func TestBindJSON(t *testing.T) {
	type payload struct {
		Name string `json:"name" binding:"required"`
	}
	h := &BaseHandler{}
	r := newTestRouter(nil, func(r gin.IRouter) {
		r.POST("/x", func(c *gin.Context) {
			var p payload
			if h.bindJSON(c, &p) {
				h.Created(c, p)
			}
		})
	})

	w := testutil.Do(t, r, testutil.Request{Method: http.MethodPost, Path: "/x", Body: []byte("{")})
	testutil.AssertErrorResponse(t, w, http.StatusBadRequest, dto.ErrCodeInvalidJSON)

	w = testutil.Do(t, r, testutil.Request{Method: http.MethodPost, Path: "/x", Body: map[string]string{}})
	testutil.AssertErrorResponse(t, w, http.StatusBadRequest, dto.ErrCodeValidation)

	w = testutil.Do(t, r, testutil.Request{Method: http.MethodPost, Path: "/x", Body: payload{Name: "lamp"}})
	require.Equal(t, http.StatusCreated, w.Code)
}

func TestSessionRequired(t *testing.T) {
	h := &BaseHandler{}
	r := newTestRouter(nil, func(r gin.IRouter) {
		r.GET("/me", func(c *gin.Context) {
			if s, ok := h.session(c); ok {
				h.Success(c, s.Email)
			}
		})
	})
	testutil.AssertErrorResponse(t, testutil.Do(t, r, testutil.Request{Path: "/me"}), http.StatusUnauthorized, dto.ErrCodeUnauthorized)
}

func TestPageOf(t *testing.T) {
	page, size := pageOf(0, 0)
	assert.Equal(t, 1, page)
	assert.Equal(t, shared.DefaultPageSize, size)

	page, size = pageOf(3, 10)
	assert.Equal(t, 3, page)
	assert.Equal(t, 10, size)
}
