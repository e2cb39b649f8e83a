package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	_ "github.com/shopfront/backend/docs"
	cartapp "github.com/shopfront/backend/internal/application/cart"
	catalogapp "github.com/shopfront/backend/internal/application/catalog"
	appevent "github.com/shopfront/backend/internal/application/event"
	identityapp "github.com/shopfront/backend/internal/application/identity"
	marketingapp "github.com/shopfront/backend/internal/application/marketing"
	partnerapp "github.com/shopfront/backend/internal/application/partner"
	promotionapp "github.com/shopfront/backend/internal/application/promotion"
	reviewapp "github.com/shopfront/backend/internal/application/review"
	"github.com/shopfront/backend/internal/application/storefront"
	tradeapp "github.com/shopfront/backend/internal/application/trade"
	"github.com/shopfront/backend/internal/domain/trade"
	"github.com/shopfront/backend/internal/infrastructure/auth"
	"github.com/shopfront/backend/internal/infrastructure/cache"
	"github.com/shopfront/backend/internal/infrastructure/config"
	"github.com/shopfront/backend/internal/infrastructure/event"
	"github.com/shopfront/backend/internal/infrastructure/logger"
	"github.com/shopfront/backend/internal/infrastructure/payment"
	"github.com/shopfront/backend/internal/infrastructure/persistence"
	"github.com/shopfront/backend/internal/infrastructure/storage"
	"github.com/shopfront/backend/internal/infrastructure/telemetry"
	"github.com/shopfront/backend/internal/interfaces/http/handler"
	"github.com/shopfront/backend/internal/interfaces/http/middleware"
	"github.com/shopfront/backend/internal/interfaces/http/router"
	"go.uber.org/zap"
)

//	@title			Shopfront API
//	@version		1.0
//	@description	Storefront, checkout and back-office API of the Shopfront e-commerce backend

//	@host		localhost:8080
//	@BasePath	/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"

// version is stamped at build time with -ldflags "-X main.version=..."
var version = "dev"

const (
	shutdownTimeout    = 30 * time.Second
	eventDedupTTL      = 24 * time.Hour
	poolStatsInterval  = 15 * time.Second
	orderStatsInterval = time.Minute
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	baseLog, syncLog, err := logger.New(cfg.Log)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer syncLog()

	if err := run(cfg, baseLog); err != nil {
		baseLog.Fatal("Server exited with error", zap.Error(err))
	}
}

func run(cfg *config.Config, baseLog *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Telemetry first so every later component logs and traces through it
	logProvider, err := telemetry.NewLoggerProvider(ctx, cfg.Telemetry, baseLog)
	if err != nil {
		return err
	}
	log := logProvider.Bridge(baseLog)
	zap.ReplaceGlobals(log)

	tracerProvider, err := telemetry.NewTracerProvider(ctx, cfg.Telemetry, log)
	if err != nil {
		return err
	}
	meterProvider, err := telemetry.NewMeterProvider(ctx, cfg.Telemetry, log)
	if err != nil {
		return err
	}
	profiler, err := telemetry.NewProfiler(cfg.Telemetry, log)
	if err != nil {
		return err
	}
	defer shutdownTelemetry(log, logProvider, tracerProvider, meterProvider, profiler)

	log.Info("Starting shopfront backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	// Database
	db, err := persistence.NewDatabase(ctx, cfg.Database, log, persistence.Options{
		LogLevel:      cfg.Log.Level,
		SlowThreshold: cfg.Telemetry.DBSlowQueryThresh,
		LogFullSQL:    cfg.Telemetry.DBLogFullSQL,
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	if err := telemetry.RegisterDBTracing(db.DB, cfg.Telemetry, log); err != nil {
		return err
	}

	meter := meterProvider.Meter("shopfront")
	dbMetrics, err := telemetry.NewDBMetrics(meter, cfg.Telemetry.DBSlowQueryThresh, log)
	if err != nil {
		return err
	}
	if err := dbMetrics.Register(db.DB); err != nil {
		return err
	}
	if sqlDB, err := db.DB.DB(); err == nil {
		dbMetrics.CollectPoolStats(ctx, sqlDB, poolStatsInterval)
	}
	defer dbMetrics.Stop()

	// Redis
	redisClient, err := cache.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	defer func() {
		_ = redisClient.Close()
	}()

	// Repositories
	productRepo := cache.NewCachedProductRepository(persistence.NewGormProductRepository(db.DB), redisClient, cfg.Cache.ProductTTL, log)
	categoryRepo := persistence.NewGormCategoryRepository(db.DB)
	orderRepo := persistence.NewGormOrderRepository(db.DB)
	sellerRepo := persistence.NewGormSellerRepository(db.DB)
	shopRepo := persistence.NewGormShopRepository(db.DB)
	customerRepo := persistence.NewGormCustomerRepository(db.DB)
	promoRepo := persistence.NewGormPromotionRepository(db.DB)
	reviewRepo := persistence.NewGormReviewRepository(db.DB)
	subscriberRepo := persistence.NewGormSubscriberRepository(db.DB)
	userRepo := persistence.NewGormUserRepository(db.DB)
	cartStore := cache.NewCartStore(redisClient, cfg.Cache.CartTTL)
	recentStore := cache.NewRecentlyViewedStore(redisClient, cfg.Cache.RecentlyViewedTTL)
	idempotency := cache.NewRedisIdempotencyStore(redisClient)
	txManager := persistence.NewTxManager(db.DB)

	// Events
	businessMetrics, err := telemetry.NewBusinessMetrics(meter, log)
	if err != nil {
		return err
	}
	defer businessMetrics.Stop()
	businessMetrics.StartPeriodicCollection(ctx, orderRepo, orderStatsInterval)

	bus := event.NewInMemoryEventBus(log)
	customerStats := tradeapp.NewCustomerStatsHandler(customerRepo, log)
	bus.Subscribe(event.NewIdempotentHandler(customerStats, idempotency, eventDedupTTL, log), customerStats.EventTypes()...)
	bus.Subscribe(businessMetrics, businessMetrics.EventTypes()...)
	if cfg.Kafka.Enabled {
		forwarder := event.NewKafkaForwarder(event.NewKafkaWriter(cfg.Kafka, log), log)
		defer func() {
			if err := forwarder.Close(); err != nil {
				log.Warn("Error closing Kafka writer", zap.Error(err))
			}
		}()
		bus.Subscribe(forwarder, forwarder.EventTypes()...)
	}
	if err := bus.Start(ctx); err != nil {
		return err
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := bus.Stop(stopCtx); err != nil {
			log.Warn("Event bus did not drain", zap.Error(err))
		}
	}()
	dispatcher := appevent.NewDispatcher(bus, log)

	// External services
	var gateway trade.PaymentGateway
	if cfg.Payment.Enabled {
		stripeGateway, err := payment.NewStripeGateway(cfg.Payment, log)
		if err != nil {
			return err
		}
		gateway = stripeGateway
	} else {
		log.Info("Payments disabled; card checkout is unavailable")
	}

	var objects catalogapp.ObjectStorageService
	if cfg.Storage.Enabled {
		s3, err := storage.NewS3ObjectStorage(ctx, cfg.Storage, storage.WithLogger(log))
		if err != nil {
			return err
		}
		if err := s3.EnsureBucket(ctx); err != nil {
			return err
		}
		objects = s3
	} else if cfg.App.Env == "development" && cfg.Storage.PublicBaseURL != "" {
		objects = storage.NewStubObjectStorage(cfg.Storage.PublicBaseURL)
	}

	// Services
	blacklist := auth.NewRedisTokenBlacklist(redisClient)
	jwtService := auth.NewJWTService(cfg.JWT)
	authConfig := identityapp.DefaultAuthServiceConfig()
	if cfg.JWT.MaxLoginAttempts > 0 {
		authConfig.MaxLoginAttempts = cfg.JWT.MaxLoginAttempts
	}
	if cfg.JWT.LockDuration > 0 {
		authConfig.LockDuration = cfg.JWT.LockDuration
	}
	authService := identityapp.NewAuthService(userRepo, jwtService, blacklist, dispatcher, authConfig, log)

	categoryService := catalogapp.NewCategoryService(categoryRepo, productRepo)
	productService := catalogapp.NewProductService(productRepo, categoryRepo, dispatcher)
	var imageService *catalogapp.ImageService
	if objects != nil {
		imageService = catalogapp.NewImageService(productRepo, objects, dispatcher, catalogapp.ImageServiceConfig{
			UploadURLExpiry: cfg.Storage.PresignExpiry,
			MaxFileSize:     cfg.Storage.MaxUploadSize,
		})
	}
	storefrontService := storefront.NewService(productRepo, reviewRepo, recentStore, log)
	reviewService := reviewapp.NewService(reviewRepo, productRepo, userRepo, dispatcher)
	cartService := cartapp.NewService(cartStore, productRepo, businessMetrics)
	promotionService := promotionapp.NewService(promoRepo, cartStore)
	shipping := tradeapp.ShippingPolicy{
		FlatFee:          cfg.Shipping.FlatFee,
		FreeShippingOver: cfg.Shipping.FreeShippingOver,
		AllowedCountries: cfg.Shipping.AllowedCountries,
	}
	checkoutService := tradeapp.NewCheckoutService(tradeapp.CheckoutDeps{
		Carts:      cartStore,
		Products:   productRepo,
		Orders:     orderRepo,
		Promotions: promoRepo,
		Customers:  customerRepo,
		Users:      userRepo,
		Tx:         txManager,
		Gateway:    gateway,
		Events:     dispatcher,
		Payments:   businessMetrics,
		Shipping:   shipping,
		Currency:   cfg.Payment.Currency,
		Logger:     log,
	})
	orderService := tradeapp.NewOrderService(orderRepo, productRepo, promoRepo, txManager, gateway, dispatcher, log)
	webhookService := tradeapp.NewPaymentWebhookService(orderRepo, gateway, idempotency, dispatcher, businessMetrics, log)
	marketingService := marketingapp.NewService(subscriberRepo,
		marketingapp.StoreProfile{
			Name:        cfg.Store.Name,
			Tagline:     cfg.Store.Tagline,
			Description: cfg.Store.Description,
			Email:       cfg.Store.Email,
			Phone:       cfg.Store.Phone,
			Address:     cfg.Store.Address,
			Social:      cfg.Store.Social,
		},
		marketingapp.ShippingInfo{
			FlatFee:          cfg.Shipping.FlatFee,
			FreeShippingOver: cfg.Shipping.FreeShippingOver,
			Countries:        cfg.Shipping.AllowedCountries,
		},
		log,
	)

	// HTTP
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		return err
	}

	corsConfig := middleware.DefaultCORSConfig()
	if len(cfg.HTTP.CORSAllowOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	}
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		corsConfig.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		corsConfig.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}
	securityConfig := middleware.DefaultSecurityConfig()
	securityConfig.HSTSEnabled = cfg.Cookie.Secure

	engine.Use(
		logger.Recovery(log),
		middleware.RequestID(),
		logger.GinMiddleware(log, "/health", "/ready"),
		middleware.TracingWithConfig(middleware.TracingConfig{
			ServiceName: cfg.Telemetry.ServiceName,
			Enabled:     tracerProvider.IsEnabled(),
		}),
		middleware.TracingAttributeInjector(),
		middleware.SpanErrorMarker(),
		middleware.HTTPMetrics(middleware.HTTPMetricsConfig{
			MeterProvider: meterProvider,
			Enabled:       meterProvider.IsEnabled(),
		}),
		middleware.CORSWithConfig(corsConfig),
		middleware.SecureWithConfig(securityConfig),
		middleware.BodyLimit(cfg.HTTP.MaxBodySize),
	)

	if profiler.IsEnabled() {
		engine.Use(middleware.ProfilingLabels())
	}
	if cfg.HTTP.RateLimitEnabled {
		limiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		defer limiter.Stop()
		engine.Use(middleware.RateLimit(limiter))
	}
	var authLimit gin.HandlerFunc
	if cfg.HTTP.AuthRateLimitEnabled {
		limiter := middleware.NewRateLimiter(cfg.HTTP.AuthRateLimitRequests, cfg.HTTP.AuthRateLimitWindow)
		defer limiter.Stop()
		authLimit = middleware.AuthRateLimit(limiter)
	}

	checks := map[string]handler.DependencyCheck{
		"database": db.Ping,
		"redis": func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		},
	}

	router.Shopfront(engine,
		router.Handlers{
			System:     handler.NewSystemHandler(cfg.App.Name, version, checks),
			Auth:       handler.NewAuthHandler(authService).WithRefreshCookie(cfg.Cookie),
			Storefront: handler.NewStorefrontHandler(storefrontService),
			Categories: handler.NewCategoryHandler(categoryService),
			Products:   handler.NewProductHandler(productService, imageService),
			Reviews:    handler.NewReviewHandler(reviewService),
			Cart:       handler.NewCartHandler(cartService),
			Orders:     handler.NewOrderHandler(checkoutService, orderService),
			Promotions: handler.NewPromotionHandler(promotionService),
			Sellers:    handler.NewSellerHandler(partnerapp.NewSellerService(sellerRepo, shopRepo)),
			Shops:      handler.NewShopHandler(partnerapp.NewShopService(shopRepo, sellerRepo)),
			Customers:  handler.NewCustomerHandler(partnerapp.NewCustomerService(customerRepo)),
			Marketing:  handler.NewMarketingHandler(marketingService),
			Webhooks:   handler.NewPaymentWebhookHandler(webhookService),
		},
		router.Guards{
			RequireAuth:   middleware.RequireAuth(authService, log),
			OptionalAuth:  middleware.OptionalAuth(authService),
			RequireAdmin:  middleware.RequireAdmin(),
			AuthRateLimit: authLimit,
			Docs: middleware.SwaggerProtection(middleware.SwaggerConfig{
				Enabled:     cfg.Swagger.Enabled,
				RequireAuth: cfg.Swagger.RequireAuth,
				AllowedIPs:  cfg.Swagger.AllowedIPs,
			}, middleware.RequireAuth(authService, log)),
		},
	)

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
		BaseContext: func(_ net.Listener) context.Context {
			return logger.WithContext(context.Background(), log)
		},
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return err
		}
	case <-ctx.Done():
	}
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	log.Info("Server exited gracefully")
	return nil
}

type shutdowner interface {
	Shutdown(ctx context.Context) error
}

func shutdownTelemetry(log *zap.Logger, providers ...shutdowner) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	for _, p := range providers {
		if err := p.Shutdown(ctx); err != nil {
			log.Warn("Telemetry shutdown failed", zap.Error(err))
		}
	}
}
