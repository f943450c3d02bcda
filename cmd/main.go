package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	echoSwagger "github.com/swaggo/echo-swagger"

	"dinepos/docs"
	"dinepos/internal/analytics"
	"dinepos/internal/caching"
	"dinepos/internal/config"
	"dinepos/internal/handlers"
	"dinepos/internal/jobs"
	"dinepos/internal/jobs/background"
	"dinepos/internal/logging"
	"dinepos/internal/middleware"
	"dinepos/internal/realtime"
	"dinepos/internal/repositories"
	"dinepos/internal/services"
	"dinepos/pkg/database"
)

const version = "1.0.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("invalid configuration")
	}
	logging.Setup(cfg.LogLevel, cfg.IsProduction())

	if err := run(cfg); err != nil {
		logrus.WithError(err).Fatal("server stopped")
	}
}

func run(cfg *config.Config) error {
	ctx := context.Background()

	if cfg.RunMigrations {
		if err := database.Migrate(cfg.DatabaseURL); err != nil {
			return err
		}
	}

	pool, err := database.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns)
	if err != nil {
		return err
	}
	defer pool.Close()

	redisClient := caching.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	defer redisClient.Close()
	cacheSvc := caching.NewRedisCacheService(redisClient)

	publisher, err := newPublisher(cfg, redisClient)
	if err != nil {
		return err
	}
	defer publisher.Close()

	var objectStore services.MinioService
	if cfg.ReceiptsEnabled() {
		objectStore, err = services.NewMinioService(cfg.MinioEndpoint, cfg.MinioAccessKey, cfg.MinioSecretKey, cfg.MinioUseSSL)
		if err != nil {
			return fmt.Errorf("failed to initialize MinIO service: %w", err)
		}
		if err := objectStore.EnsureBucketExists(ctx, cfg.ReceiptsBucket); err != nil {
			logrus.WithError(err).WithField("bucket", cfg.ReceiptsBucket).Warn("receipt bucket unavailable")
		}
	} else {
		logrus.Info("MINIO_ENDPOINT not set, receipt archive disabled")
	}

	taxMode, err := services.ParseTaxRateMode(cfg.TaxRatePolicy)
	if err != nil {
		return err
	}
	taxPolicy := services.NewTaxPolicy(taxMode, cfg.DefaultGSTPercentage)

	// Create repositories
	store := repositories.NewStore(pool)

	// Create services
	orderSvc := services.NewOrderService(store, taxPolicy, publisher)
	receiptSvc := services.NewReceiptService(objectStore, cfg.ReceiptsBucket)
	billingSvc := services.NewBillingService(store, taxPolicy, cacheSvc, receiptSvc, publisher)
	inventorySvc := services.NewInventoryService(store, publisher)
	tableSvc := services.NewTableService(store)
	itemSvc := services.NewItemService(store, cacheSvc)
	settingsSvc := services.NewSettingsService(store, cacheSvc)
	rbacSvc := services.NewRBACService(store.RolePermissions(), cacheSvc)
	analyticsSvc := analytics.NewAnalyticsService(store.Analytics(), cacheSvc)

	// Background jobs
	alertSvc := jobs.NewInventoryAlertService(store.Inventory(), inventorySvc, publisher)
	refreshSvc := jobs.NewAnalyticsRefreshService(store.Inventory(), analyticsSvc)
	scheduler, err := background.NewJobScheduler(alertSvc, refreshSvc)
	if err != nil {
		return err
	}
	scheduler.Start()
	defer func() {
		if err := scheduler.Stop(); err != nil {
			logrus.WithError(err).Warn("scheduler shutdown failed")
		}
	}()

	// JWT verification
	var keyFunc jwt.Keyfunc
	if cfg.JWKSURL != "" {
		jwks, err := middleware.NewJWKS(cfg.JWKSURL)
		if err != nil {
			return err
		}
		defer jwks.EndBackground()
		keyFunc = jwks.Keyfunc
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Global middleware
	e.Use(echoMiddleware.RequestID())
	e.Use(middleware.RequestLogger())
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.CORSWithConfig(echoMiddleware.CORSConfig{
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAuthorization,
			middleware.OutletHeader, handlers.IdempotencyKeyHeader},
	}))
	e.Pre(echoMiddleware.RemoveTrailingSlash())

	versionMiddleware := middleware.NewVersionMiddleware()
	e.Use(versionMiddleware.APIVersionResolver())

	// Health endpoints (no auth required)
	healthHandlers := handlers.NewHealthHandlers(pool, cacheSvc, version, scheduler.GetJobStatus)
	e.GET("/health", healthHandlers.HealthCheck)
	e.GET("/health/ready", healthHandlers.ReadinessCheck)
	e.GET("/health/metrics", healthHandlers.GetMetrics)

	docs.SwaggerInfo.Version = version
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	registerRoutes(e, versionMiddleware, routeDeps{
		jwtConfig: middleware.JWTConfig(cfg.JWTSecret, keyFunc),
		cache:     cacheSvc,
		rateLimit: cfg.RateLimitPerMinute,
		rbac:      middleware.NewRBACMiddleware(rbacSvc),
		orders:    handlers.NewOrderHandlers(orderSvc),
		bills:     handlers.NewBillHandlers(billingSvc),
		tables:    handlers.NewTableHandlers(tableSvc),
		inventory: handlers.NewInventoryHandlers(inventorySvc),
		items:     handlers.NewItemHandlers(itemSvc),
		settings:  handlers.NewSettingsHandlers(settingsSvc),
		analytics: handlers.NewAnalyticsHandlers(analyticsSvc),
		me:        handlers.NewMeHandlers(rbacSvc),
	})

	serverErr := make(chan error, 1)
	go func() {
		logrus.WithFields(logrus.Fields{"port": cfg.Port, "version": version}).Info("dinepos server starting")
		if err := e.Start(fmt.Sprintf(":%d", cfg.Port)); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-serverErr:
		return err
	case sig := <-quit:
		logrus.WithField("signal", sig.String()).Info("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}

func newPublisher(cfg *config.Config, redisClient *redis.Client) (realtime.Publisher, error) {
	switch cfg.RealtimeBackend {
	case config.RealtimeAMQP:
		return realtime.NewAMQPPublisher(cfg.AMQPURL)
	case config.RealtimeNone:
		return realtime.NewNoopPublisher(), nil
	}
	return realtime.NewRedisPublisher(redisClient), nil
}
