package main

import (
	"context"
	"fmt"
	"log"
	httpMetrics "mySmartMarket/app/echo-server/metrics"
	"mySmartMarket/app/echo-server/router"
	"mySmartMarket/business/activity"
	"mySmartMarket/business/catalog"
	"mySmartMarket/business/customer"
	"mySmartMarket/business/recommend"
	"mySmartMarket/internal/middleware"
	psqlRepo "mySmartMarket/internal/repository/postgres"
	redisRepo "mySmartMarket/internal/repository/redis"
	"mySmartMarket/internal/rest"
	"mySmartMarket/pkg/config"
	"mySmartMarket/pkg/database"
	redisClient "mySmartMarket/pkg/database/redis"
	"mySmartMarket/pkg/logger"
	"mySmartMarket/pkg/metrics"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger.Init(cfg.App.Environment)
	defer logger.Sync()
	logger.Info("Starting MySmartMarket", "version", cfg.App.Version)

	db, err := database.InitPostgres(cfg)
	if err != nil {
		logger.Fatal("Failed to connect to database", "error", err)
	}

	logger.Info("Database connected successfully")

	sweepCtx, stopSweeper := context.WithCancel(context.Background())
	defer stopSweeper()

	// Sessions live in redis when configured, otherwise in process memory
	var sessionStore recommend.SessionStore
	var rdb *redis.Client
	if cfg.Redis.Enabled() {
		rdb, err = redisClient.NewRedisClient(cfg.Redis)
		if err != nil {
			logger.Fatal("Failed to connect to redis", "error", err)
		}
		sessionStore = redisRepo.NewSessionRepository(rdb, cfg.Recommend.SessionTTL)
		logger.Info("Redis session store enabled", "host", cfg.Redis.RedisHost)
	} else {
		memoryStore := recommend.NewMemorySessionStore(cfg.Recommend.SessionTTL)
		go memoryStore.RunSweeper(sweepCtx, time.Minute)
		sessionStore = memoryStore
		logger.Info("In-memory session store enabled")
	}

	// Init metrics
	metrics.Init()
	httpMetrics.Init()

	// Init repo
	schemaRepo := psqlRepo.NewSchemaRepository(db)
	productRepo := psqlRepo.NewProductRepository(db)
	purchaseRepo := psqlRepo.NewPurchaseRepository(db, schemaRepo)
	customerRepo := psqlRepo.NewCustomerRepository(db)
	eventRepo := psqlRepo.NewRecommendationEventRepository(db)

	// Init service
	engine := recommend.NewEngine(productRepo, purchaseRepo, sessionStore, recommend.Config{
		NeighborMinSimilarity: cfg.Recommend.NeighborMinSimilarity,
		NeighborCount:         cfg.Recommend.NeighborCount,
		LatentMinScore:        cfg.Recommend.LatentMinScore,
		MaxRank:               cfg.Recommend.MaxRank,
		DecayDays:             cfg.Recommend.DecayDays,
		Parallel:              cfg.Recommend.Parallel,
		Seed:                  cfg.Recommend.Seed,
	})
	customerService := customer.NewCustomerService(customerRepo, purchaseRepo, engine)
	catalogService := catalog.NewCatalogService(productRepo, engine)
	activityService := activity.NewActivityService(eventRepo)

	// Init handler
	recommendationHandler := rest.NewRecommendationHandler(engine, catalogService, activityService)
	customerHandler := rest.NewCustomerHandler(customerService, activityService)
	categoryHandler := rest.NewCategoryHandler(catalogService)
	healthHandler := rest.NewHealthHandler(schemaRepo, productRepo, cfg.App.Version)

	// Init echo
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Server.ReadTimeout = cfg.Server.RequestTimeout
	e.Server.WriteTimeout = 2 * cfg.Server.RequestTimeout

	// HTTP error handler
	e.HTTPErrorHandler = middleware.ErrorHandler

	// Global middleware
	e.Use(echomiddleware.Recover())
	e.Use(middleware.TraceID())
	e.Use(httpMetrics.Middleware())
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: cfg.Server.AllowOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderXRequestID, rest.HeaderSessionID},
	}))

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Setup routes
	api := e.Group("/api/v1")
	router.SetupRecommendationRoutes(api, recommendationHandler)
	router.SetupCustomerRoutes(api, customerHandler)
	router.SetupCategoryRoutes(api, categoryHandler)
	router.SetupHealthRoutes(api, healthHandler)

	// Goroutine server
	go func() {
		addr := fmt.Sprintf(":%s", cfg.Server.Port)
		logger.Info("Server starting", "address", addr)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", "error", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Shutdown server
	if err := e.Shutdown(ctx); err != nil {
		logger.Error("Server shutdown error", "error", err)
	}

	if err := redisClient.CloseRedisClient(rdb); err != nil {
		logger.Error("Redis close error", "error", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}

	logger.Info("Server stopped")
}
