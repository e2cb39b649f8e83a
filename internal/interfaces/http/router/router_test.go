package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopfront/backend/internal/interfaces/http/handler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(engine *gin.Engine, method, path string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func TestRouterSetup(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine, WithAPIVersion("v2"))

	group := NewDomainGroup("test", "/test")
	group.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") }).
		PATCH("/items/:id", func(c *gin.Context) { c.String(http.StatusOK, c.Param("id")) })
	r.Register(group).Setup()

	w := serve(engine, http.MethodGet, "/api/v2/test/ping", nil)
	assert.Equal(t, "pong", w.Body.String())
	w = serve(engine, http.MethodPatch, "/api/v2/test/items/42", nil)
	assert.Equal(t, "42", w.Body.String())
	assert.Equal(t, http.StatusNotFound, serve(engine, http.MethodGet, "/api/v1/test/ping", nil).Code)
}

func TestDomainGroup_MiddlewareScope(t *testing.T) {
	engine := gin.New()
	stamp := func(c *gin.Context) {
		c.Header("X-Guarded", "yes")
		c.Next()
	}

	g := NewDomainGroup("catalog", "/catalog")
	g.GET("/open", func(c *gin.Context) { c.Status(http.StatusOK) })
	inner := g.Group("inner", "/inner").Use(stamp, nil)
	inner.GET("", func(c *gin.Context) { c.Status(http.StatusOK) })
	g.RegisterRoutes(engine.Group("/api"))

	assert.Empty(t, serve(engine, http.MethodGet, "/api/catalog/open", nil).Header().Get("X-Guarded"))
	assert.Equal(t, "yes", serve(engine, http.MethodGet, "/api/catalog/inner", nil).Header().Get("X-Guarded"))
	assert.Equal(t, "inner", inner.Name())
	assert.Equal(t, "/inner", inner.Prefix())
}

func testHandlers() Handlers {
	return Handlers{
		System:     handler.NewSystemHandler("shopfront", "test", nil),
		Auth:       &handler.AuthHandler{},
		Storefront: &handler.StorefrontHandler{},
		Categories: &handler.CategoryHandler{},
		Products:   &handler.ProductHandler{},
		Reviews:    &handler.ReviewHandler{},
		Cart:       &handler.CartHandler{},
		Orders:     &handler.OrderHandler{},
		Promotions: &handler.PromotionHandler{},
		Sellers:    &handler.SellerHandler{},
		Shops:      &handler.ShopHandler{},
		Customers:  &handler.CustomerHandler{},
		Marketing:  &handler.MarketingHandler{},
		Webhooks:   &handler.PaymentWebhookHandler{},
	}
}

// testGuards reject every call unless the matching header is present, so
// the services behind the handlers are never reached.
func testGuards() Guards {
	return Guards{
		RequireAuth: func(c *gin.Context) {
			if c.GetHeader("X-User") == "" {
				c.AbortWithStatus(http.StatusUnauthorized)
				return
			}
			c.Next()
		},
		RequireAdmin: func(c *gin.Context) {
			c.AbortWithStatus(http.StatusForbidden)
		},
		AuthRateLimit: func(c *gin.Context) {
			c.Header("X-Auth-Limited", "1")
			c.Next()
		},
	}
}

func TestShopfront_Routes(t *testing.T) {
	engine := gin.New()
	Shopfront(engine, testHandlers(), testGuards())

	registered := make(map[string]bool)
	for _, route := range engine.Routes() {
		registered[route.Method+" "+route.Path] = true
	}
	for _, want := range []string{
		"GET /health",
		"GET /ready",
		"GET /api/v1/products",
		"GET /api/v1/products/:id",
		"GET /api/v1/products/recommended",
		"GET /api/v1/categories",
		"POST /api/v1/auth/login",
		"GET /api/v1/auth/me",
		"POST /api/v1/cart/items",
		"POST /api/v1/checkout",
		"POST /api/v1/orders/:id/cancel",
		"POST /api/v1/promotions/preview",
		"POST /api/v1/webhooks/stripe",
		"GET /api/v1/admin/products",
		"DELETE /api/v1/admin/products/:id/images",
		"PUT /api/v1/admin/orders/:id/status",
		"POST /api/v1/admin/reviews/:id/approve",
		"PUT /api/v1/admin/promotions/:id/active",
		"DELETE /api/v1/admin/sellers/:id",
		"GET /api/v1/admin/customers",
	} {
		assert.True(t, registered[want], "missing route %s", want)
	}
}

func TestShopfront_Guards(t *testing.T) {
	engine := gin.New()
	Shopfront(engine, testHandlers(), testGuards())

	assert.Equal(t, http.StatusOK, serve(engine, http.MethodGet, "/health", nil).Code)
	assert.Equal(t, http.StatusOK, serve(engine, http.MethodGet, "/api/v1/system/ping", nil).Code)

	assert.Equal(t, http.StatusUnauthorized, serve(engine, http.MethodGet, "/api/v1/cart", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, serve(engine, http.MethodGet, "/api/v1/admin/orders", nil).Code)
	assert.Equal(t, http.StatusForbidden,
		serve(engine, http.MethodGet, "/api/v1/admin/orders", map[string]string{"X-User": "ana"}).Code)

	w := serve(engine, http.MethodPost, "/api/v1/auth/logout", nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "1", w.Header().Get("X-Auth-Limited"))
}
