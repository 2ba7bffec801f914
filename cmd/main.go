package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/random"

	"conexx/internal/analytics"
	"conexx/internal/caching"
	"conexx/internal/common"
	"conexx/internal/handlers"
	"conexx/internal/jobs/background"
	"conexx/internal/middleware"
	"conexx/internal/models"
	"conexx/internal/repositories"
	"conexx/internal/services"
)

const version = "1.0.0"

func main() {
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	pool, err := pgxpool.New(context.Background(), databaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		jwtSecret = random.String(32)
		log.Printf("WARNING: Using generated JWT secret; sessions will not survive a restart")
	}

	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}
	redisPassword := os.Getenv("REDIS_PASSWORD")
	redisDB := 0
	if redisDBStr := os.Getenv("REDIS_DB"); redisDBStr != "" {
		if db, err := strconv.Atoi(redisDBStr); err == nil {
			redisDB = db
		}
	}

	minioEndpoint := os.Getenv("MINIO_ENDPOINT")
	if minioEndpoint == "" {
		minioEndpoint = "localhost:9000"
	}
	minioAccessKey := os.Getenv("MINIO_ACCESS_KEY")
	if minioAccessKey == "" {
		minioAccessKey = "minioadmin"
	}
	minioSecretKey := os.Getenv("MINIO_SECRET_KEY")
	if minioSecretKey == "" {
		minioSecretKey = "minioadmin"
	}
	minioUseSSL := os.Getenv("MINIO_USE_SSL") == "true"

	syncInterval := 10 * time.Minute
	if intervalStr := os.Getenv("SYNC_INTERVAL"); intervalStr != "" {
		if parsed, err := time.ParseDuration(intervalStr); err == nil && parsed > 0 {
			syncInterval = parsed
		} else {
			log.Printf("Invalid SYNC_INTERVAL %q, keeping default %s", intervalStr, syncInterval)
		}
	}

	asaasWebhookToken := os.Getenv("ASAAS_WEBHOOK_TOKEN")

	// Repositories
	userRepo := repositories.NewUserRepository(pool)
	tenantRepo := repositories.NewTenantRepository(pool)
	orderRepo := repositories.NewOrderRepository(pool)
	checkoutRepo := repositories.NewAbandonedCheckoutRepository(pool)
	subscriptionRepo := repositories.NewSubscriptionRepository(pool)
	paymentRepo := repositories.NewPaymentRepository(pool)
	notificationRepo := repositories.NewNotificationRepository(pool)
	pushRepo := repositories.NewPushRepository(pool)
	settingsRepo := repositories.NewSettingsRepository(pool)
	couponRepo := repositories.NewCouponRepository(pool)

	// Cache + object storage
	cacheSvc := caching.NewRedisCacheService(redisAddr, redisPassword, redisDB)
	archiveSvc, err := services.NewReportArchiveService(minioEndpoint, minioAccessKey, minioSecretKey, minioUseSSL)
	if err != nil {
		log.Fatalf("Failed to initialize report archive: %v", err)
	}
	if err := archiveSvc.EnsureBucketExists(context.Background()); err != nil {
		log.Printf("WARN: Failed to ensure report bucket: %v", err)
	}

	// Services
	authSvc := services.NewAuthService(userRepo, jwtSecret, 24*time.Hour)
	notificationSvc := services.NewNotificationService(userRepo, notificationRepo, pushRepo)
	analyticsSvc := analytics.NewService(orderRepo, tenantRepo, cacheSvc)
	yampiSvc := services.NewYampiService(os.Getenv("YAMPI_BASE_URL"))
	syncSvc := services.NewSyncService(tenantRepo, orderRepo, checkoutRepo, couponRepo,
		yampiSvc, notificationSvc, analyticsSvc, cacheSvc)
	asaasSvc := services.NewAsaasService(settingsRepo)
	subscriptionSvc := services.NewSubscriptionService(subscriptionRepo, paymentRepo, tenantRepo,
		userRepo, asaasSvc, notificationSvc)
	metaAdsSvc := services.NewMetaAdsService(os.Getenv("META_GRAPH_BASE_URL"))
	ga4Svc := services.NewGA4Service(os.Getenv("GA4_BASE_URL"))
	reportSvc := services.NewReportService(tenantRepo, pushRepo, orderRepo, notificationSvc, archiveSvc)

	// Background jobs
	scheduler := background.NewJobScheduler(syncSvc, subscriptionSvc, reportSvc, syncInterval)

	// Handlers
	authHandlers := handlers.NewAuthHandlers(authSvc)
	syncHandlers := handlers.NewSyncHandlers(syncSvc)
	metricsHandlers := handlers.NewMetricsHandlers(analyticsSvc, tenantRepo, metaAdsSvc, ga4Svc)
	tenantHandlers := handlers.NewTenantHandlers(tenantRepo, notificationSvc)
	subscriptionHandlers := handlers.NewSubscriptionHandlers(subscriptionSvc)
	webhookHandlers := handlers.NewWebhookHandlers(subscriptionSvc, asaasWebhookToken)
	pushHandlers := handlers.NewPushHandlers(pushRepo)
	notificationHandlers := handlers.NewNotificationHandlers(notificationRepo)
	couponHandlers := handlers.NewCouponHandlers(couponRepo)
	orderHandlers := handlers.NewOrderHandlers(orderRepo, checkoutRepo)
	settingsHandlers := handlers.NewSettingsHandlers(settingsRepo)
	healthHandlers := handlers.NewHealthHandlers(pool, scheduler)

	e := echo.New()
	e.HideBanner = true

	e.Use(echoMiddleware.Logger())
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.CORS())
	e.Use(echoMiddleware.RemoveTrailingSlash())

	// Keep the response envelope consistent for errors raised outside handlers.
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		if httpErr, ok := err.(*echo.HTTPError); ok {
			_ = common.SendError(c, httpErr.Code, "REQUEST_FAILED", fmt.Sprintf("%v", httpErr.Message), nil)
			return
		}
		_ = common.SendCodedError(c, err)
	}

	e.GET("/health", healthHandlers.HealthCheck)
	e.GET("/health/ready", healthHandlers.ReadinessCheck)

	v1 := e.Group("/v1")

	v1.POST("/auth/login", authHandlers.Login)
	v1.POST("/webhooks/asaas", webhookHandlers.HandleAsaas)

	protected := v1.Group("")
	protected.Use(middleware.JWTMiddleware(jwtSecret))

	adminOnly := middleware.RequireRole(models.RolePlatformAdmin)

	// Sync
	protected.POST("/sync", syncHandlers.SyncAll, adminOnly)
	protected.POST("/sync/:tenantId", syncHandlers.SyncTenant)

	// Metrics
	protected.GET("/metrics/revenue", metricsHandlers.Revenue)
	protected.GET("/metrics/commission", metricsHandlers.Commission)
	protected.GET("/metrics/goals", metricsHandlers.Goals)
	protected.GET("/metrics/summary", metricsHandlers.Summary)
	protected.GET("/metrics/ads", metricsHandlers.Ads)
	protected.GET("/metrics/ga4", metricsHandlers.GA4)

	// Tenants
	protected.GET("/tenants", tenantHandlers.ListTenants, adminOnly)
	protected.POST("/tenants", tenantHandlers.CreateTenant, adminOnly)
	protected.GET("/tenants/:id", tenantHandlers.GetTenant)
	protected.PUT("/tenants/:id", tenantHandlers.UpdateTenant, adminOnly)
	protected.PUT("/tenants/:id/credentials", tenantHandlers.UpdateCredentials, adminOnly)
	protected.DELETE("/tenants/:id", tenantHandlers.DeleteTenant, adminOnly)

	// Subscriptions
	protected.POST("/subscriptions", subscriptionHandlers.CreateSubscription, adminOnly)
	protected.GET("/subscriptions", subscriptionHandlers.ListSubscriptions)
	protected.DELETE("/subscriptions/:id", subscriptionHandlers.CancelSubscription, adminOnly)

	// Push
	protected.GET("/push/settings", pushHandlers.GetSettings)
	protected.PUT("/push/settings", pushHandlers.PutSettings)
	protected.POST("/push/subscriptions", pushHandlers.Subscribe)
	protected.DELETE("/push/subscriptions", pushHandlers.Unsubscribe)
	protected.GET("/push/logs", pushHandlers.ListLogs)

	// Orders
	protected.GET("/orders", orderHandlers.ListOrders)
	protected.GET("/checkouts", orderHandlers.ListCheckouts)

	// Coupons
	protected.GET("/coupons", couponHandlers.List)

	// Platform settings
	protected.GET("/settings/asaas", settingsHandlers.GetAsaasConfig, adminOnly)
	protected.PUT("/settings/asaas", settingsHandlers.PutAsaasConfig, adminOnly)

	// Notifications
	protected.GET("/notifications", notificationHandlers.List)
	protected.POST("/notifications/:id/read", notificationHandlers.MarkRead)
	protected.POST("/notifications/read-all", notificationHandlers.MarkAllRead)

	if err := scheduler.Start(); err != nil {
		log.Fatalf("Failed to start scheduler: %v", err)
	}
	defer func() {
		if err := scheduler.Stop(); err != nil {
			log.Printf("Failed to stop scheduler: %v", err)
		}
	}()

	portStr := os.Getenv("PORT")
	if portStr == "" {
		portStr = "8080"
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		log.Fatalf("Invalid port %s: %v", portStr, err)
	}

	go func() {
		log.Printf("Conexx server v%s starting on port %d", version, port)
		if err := e.Start(fmt.Sprintf(":%d", port)); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}
}
