package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	appbilling "github.com/agentbill/backend/internal/application/billing"
	"github.com/agentbill/backend/internal/infrastructure/cache"
	"github.com/agentbill/backend/internal/infrastructure/config"
	"github.com/agentbill/backend/internal/infrastructure/logger"
	"github.com/agentbill/backend/internal/infrastructure/persistence"
	"github.com/agentbill/backend/internal/infrastructure/strategy/pricing"
	"github.com/agentbill/backend/internal/interfaces/http/handler"
	"github.com/agentbill/backend/internal/interfaces/http/middleware"
	"github.com/agentbill/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting AgentBill Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Create GORM logger backed by zap
	gormLogLevel := logger.MapGormLogLevel(cfg.Log.Level)
	gormLog := logger.NewGormLogger(log, gormLogLevel)

	// Initialize database connection with custom logger
	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	if err := db.AutoMigrate(); err != nil {
		log.Fatal("Failed to migrate database schema", zap.Error(err))
	}

	// Initialize repositories
	modelRepo := persistence.NewGormBillingModelRepository(db.DB)
	metricRepo := persistence.NewGormOutcomeMetricRepository(db.DB)
	ruleRepo := persistence.NewGormVerificationRuleRepository(db.DB)
	costRepo := persistence.NewGormCostEntryRepository(db.DB)

	// Snapshot provider: repository-backed, optionally fronted by a cache
	upstream := cache.NewRepositorySnapshotProvider(modelRepo)
	var snapshots appbilling.SnapshotProvider = upstream
	var invalidator appbilling.SnapshotInvalidator
	if cfg.Snapshot.CacheEnabled {
		factory := cache.NewSnapshotCacheFactory(cfg.Redis,
			cache.WithFactoryLogger(log),
			cache.WithFactoryTTL(cfg.Snapshot.CacheTTL),
		)
		cached, err := factory.CreateProvider(upstream)
		if err != nil {
			log.Fatal("Failed to create snapshot cache", zap.Error(err))
		}
		snapshots = cached
		if inv, ok := cached.(appbilling.SnapshotInvalidator); ok {
			invalidator = inv
		}
		log.Info("Snapshot cache enabled", zap.Duration("ttl", cfg.Snapshot.CacheTTL))
	}

	// Initialize services
	calculator := pricing.NewCalculator()
	modelService := appbilling.NewModelService(modelRepo, invalidator, log)
	calcService := appbilling.NewCalculationService(snapshots, calculator, costRepo, log)
	outcomeService := appbilling.NewOutcomeService(snapshots, metricRepo, ruleRepo, log)

	// Initialize handlers
	modelHandler := handler.NewBillingModelHandler(modelService)
	calcHandler := handler.NewCalculationHandler(calcService)
	outcomeHandler := handler.NewOutcomeHandler(outcomeService)
	systemHandler := handler.NewSystemHandler()

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	middleware.SetupValidator()

	engine := gin.New()

	// Configure trusted proxies
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Middleware stack, in order: request id, panic recovery, request
	// logging, CORS, body limit, org scoping
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))

	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		corsConfig.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		corsConfig.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))

	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	orgConfig := middleware.DefaultOrgConfig()
	orgConfig.Logger = log
	engine.Use(middleware.OrgMiddlewareWithConfig(orgConfig))

	// Health check endpoint (outside API versioning, org-exempt)
	engine.GET("/health", healthHandler(db))

	// API routes
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.Register(modelHandler).
		Register(calcHandler).
		Register(outcomeHandler).
		Register(systemHandler)
	r.Setup()

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// healthHandler reports liveness including database connectivity
func healthHandler(db *persistence.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		reqLog := logger.GetGinLogger(c)
		if err := db.Ping(); err != nil {
			reqLog.Warn("Health check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"time":     time.Now().Format(time.RFC3339),
				"database": "error",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":   "healthy",
			"time":     time.Now().Format(time.RFC3339),
			"database": "ok",
		})
	}
}
