package router

import (
	"github.com/gin-gonic/gin"
	"github.com/shopfront/backend/internal/interfaces/http/handler"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Handlers are the API handlers mounted by Shopfront
type Handlers struct {
	System     *handler.SystemHandler
	Auth       *handler.AuthHandler
	Storefront *handler.StorefrontHandler
	Categories *handler.CategoryHandler
	Products   *handler.ProductHandler
	Reviews    *handler.ReviewHandler
	Cart       *handler.CartHandler
	Orders     *handler.OrderHandler
	Promotions *handler.PromotionHandler
	Sellers    *handler.SellerHandler
	Shops      *handler.ShopHandler
	Customers  *handler.CustomerHandler
	Marketing  *handler.MarketingHandler
	Webhooks   *handler.PaymentWebhookHandler
}

// Guards are the access middleware of the route groups. A nil guard is
// skipped.
type Guards struct {
	// RequireAuth rejects callers without a valid token
	RequireAuth gin.HandlerFunc
	// OptionalAuth attaches the caller when a token is present
	OptionalAuth gin.HandlerFunc
	// RequireAdmin runs after RequireAuth on the admin group
	RequireAdmin gin.HandlerFunc
	// AuthRateLimit throttles the credential endpoints
	AuthRateLimit gin.HandlerFunc
	// Docs guards /swagger; the docs are not mounted without it
	Docs gin.HandlerFunc
}

// Shopfront mounts the probes and API documentation at the root and the
// REST API under /api/v1
func Shopfront(engine *gin.Engine, h Handlers, g Guards) *Router {
	engine.GET("/health", h.System.Health)
	engine.GET("/ready", h.System.Ready)
	if g.Docs != nil {
		engine.GET("/swagger/*any", g.Docs, ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	r := NewRouter(engine)
	r.Register(
		systemRoutes(h),
		authRoutes(h, g),
		storefrontRoutes(h, g),
		shopperRoutes(h, g),
		adminRoutes(h, g),
	)
	r.Setup()
	return r
}

func systemRoutes(h Handlers) *DomainGroup {
	g := NewDomainGroup("system", "")
	g.GET("/system/info", h.System.GetSystemInfo)
	g.GET("/system/ping", h.System.Ping)
	g.POST("/webhooks/stripe", h.Webhooks.HandleStripe)
	return g
}

func authRoutes(h Handlers, guards Guards) *DomainGroup {
	g := NewDomainGroup("auth", "/auth").Use(guards.AuthRateLimit)
	g.POST("/register", h.Auth.Register)
	g.POST("/login", h.Auth.Login)
	g.POST("/refresh", h.Auth.RefreshToken)

	me := g.Group("session", "").Use(guards.RequireAuth)
	me.POST("/logout", h.Auth.Logout)
	me.GET("/me", h.Auth.GetCurrentUser)
	me.PUT("/me", h.Auth.UpdateProfile)
	me.PUT("/password", h.Auth.ChangePassword)
	return g
}

func storefrontRoutes(h Handlers, guards Guards) *DomainGroup {
	g := NewDomainGroup("storefront", "")
	g.GET("/products", h.Storefront.ListProducts)
	g.GET("/products/random", h.Storefront.RandomProducts)
	g.GET("/products/recommended", h.Storefront.Recommended)
	g.GET("/products/:id/related", h.Storefront.RelatedProducts)
	g.GET("/products/:id/reviews", h.Reviews.ListForProduct)
	g.GET("/categories", h.Categories.List)
	g.GET("/categories/:id", h.Categories.Get)
	g.GET("/about", h.Marketing.About)
	g.POST("/newsletter/subscribe", h.Marketing.Subscribe)
	g.POST("/newsletter/unsubscribe", h.Marketing.Unsubscribe)

	viewer := g.Group("viewer", "").Use(guards.OptionalAuth)
	viewer.GET("/products/:id", h.Storefront.GetProduct)
	return g
}

func shopperRoutes(h Handlers, guards Guards) *DomainGroup {
	g := NewDomainGroup("shopper", "").Use(guards.RequireAuth)
	g.GET("/cart", h.Cart.Get)
	g.DELETE("/cart", h.Cart.Clear)
	g.POST("/cart/items", h.Cart.AddItem)
	g.PUT("/cart/items/:lineId", h.Cart.UpdateItem)
	g.DELETE("/cart/items/:lineId", h.Cart.RemoveItem)

	g.POST("/checkout", h.Orders.Checkout)
	g.GET("/orders", h.Orders.ListMine)
	g.GET("/orders/:id", h.Orders.GetMine)
	g.POST("/orders/:id/cancel", h.Orders.CancelMine)
	g.POST("/orders/:id/pay", h.Orders.Pay)

	g.POST("/promotions/preview", h.Promotions.Preview)
	g.POST("/products/:id/reviews", h.Reviews.Submit)
	g.GET("/me/recently-viewed", h.Storefront.RecentlyViewed)
	return g
}

func adminRoutes(h Handlers, guards Guards) *DomainGroup {
	g := NewDomainGroup("admin", "/admin").Use(guards.RequireAuth, guards.RequireAdmin)

	products := g.Group("products", "/products")
	products.GET("", h.Products.List)
	products.POST("", h.Products.Create)
	products.GET("/:id", h.Products.Get)
	products.PUT("/:id", h.Products.Update)
	products.DELETE("/:id", h.Products.Delete)
	products.PUT("/:id/pricing", h.Products.UpdatePricing)
	products.PUT("/:id/stock", h.Products.UpdateStock)
	products.POST("/:id/activate", h.Products.Activate)
	products.POST("/:id/deactivate", h.Products.Deactivate)
	products.POST("/:id/images/upload-url", h.Products.InitiateImageUpload)
	products.POST("/:id/images", h.Products.ConfirmImageUpload)
	products.DELETE("/:id/images", h.Products.DeleteImage)

	categories := g.Group("categories", "/categories")
	categories.POST("", h.Categories.Create)
	categories.PUT("/:id", h.Categories.Update)
	categories.DELETE("/:id", h.Categories.Delete)

	reviews := g.Group("reviews", "/reviews")
	reviews.GET("", h.Reviews.List)
	reviews.GET("/:id", h.Reviews.Get)
	reviews.POST("/:id/approve", h.Reviews.Approve)
	reviews.POST("/:id/reject", h.Reviews.Reject)
	reviews.DELETE("/:id", h.Reviews.Delete)

	orders := g.Group("orders", "/orders")
	orders.GET("", h.Orders.List)
	orders.GET("/:id", h.Orders.Get)
	orders.PUT("/:id/status", h.Orders.UpdateStatus)

	promotions := g.Group("promotions", "/promotions")
	promotions.GET("", h.Promotions.List)
	promotions.POST("", h.Promotions.Create)
	promotions.GET("/:id", h.Promotions.Get)
	promotions.PUT("/:id", h.Promotions.Update)
	promotions.PUT("/:id/active", h.Promotions.SetActive)
	promotions.DELETE("/:id", h.Promotions.Delete)

	sellers := g.Group("sellers", "/sellers")
	sellers.GET("", h.Sellers.List)
	sellers.POST("", h.Sellers.Create)
	sellers.GET("/:id", h.Sellers.Get)
	sellers.PUT("/:id", h.Sellers.Update)
	sellers.PUT("/:id/status", h.Sellers.SetStatus)
	sellers.DELETE("/:id", h.Sellers.Delete)

	shops := g.Group("shops", "/shops")
	shops.GET("", h.Shops.List)
	shops.POST("", h.Shops.Create)
	shops.GET("/:id", h.Shops.Get)
	shops.PUT("/:id", h.Shops.Update)
	shops.PUT("/:id/status", h.Shops.SetStatus)
	shops.DELETE("/:id", h.Shops.Delete)

	customers := g.Group("customers", "/customers")
	customers.GET("", h.Customers.List)
	customers.GET("/:id", h.Customers.Get)
	customers.PUT("/:id", h.Customers.Update)
	customers.PUT("/:id/status", h.Customers.SetStatus)
	customers.DELETE("/:id", h.Customers.Delete)
	return g
}
