package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	financeapp "github.com/erp/procurement/internal/application/finance"
	inventoryapp "github.com/erp/procurement/internal/application/inventory"
	partnerapp "github.com/erp/procurement/internal/application/partner"
	reportapp "github.com/erp/procurement/internal/application/report"
	tradeapp "github.com/erp/procurement/internal/application/trade"
	"github.com/erp/procurement/internal/domain/numbering"
	"github.com/erp/procurement/internal/domain/trade"
	"github.com/erp/procurement/internal/infrastructure/config"
	"github.com/erp/procurement/internal/infrastructure/event"
	"github.com/erp/procurement/internal/infrastructure/lock"
	"github.com/erp/procurement/internal/infrastructure/logger"
	"github.com/erp/procurement/internal/infrastructure/notification"
	"github.com/erp/procurement/internal/infrastructure/persistence"
	"github.com/erp/procurement/internal/infrastructure/storage"
	"github.com/erp/procurement/internal/infrastructure/strategy"
	"github.com/erp/procurement/internal/infrastructure/telemetry"
	"github.com/erp/procurement/internal/interfaces/http/handler"
	"github.com/erp/procurement/internal/interfaces/http/middleware"
	"github.com/erp/procurement/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// version is overwritten at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	}, cfg.App.Env)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting procurement server",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	ctx := context.Background()

	// Telemetry
	telemetryCfg := telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}
	tp, err := telemetry.NewTracerProvider(ctx, telemetryCfg, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}
	defer func() {
		if err := tp.Shutdown(context.Background()); err != nil {
			log.Error("Error shutting down tracer provider", zap.Error(err))
		}
	}()
	mp, err := telemetry.NewMeterProvider(ctx, telemetryCfg, 0, log)
	if err != nil {
		log.Fatal("Failed to initialize meter provider", zap.Error(err))
	}
	defer func() {
		if err := mp.Shutdown(context.Background()); err != nil {
			log.Error("Error shutting down meter provider", zap.Error(err))
		}
	}()
	metrics, err := telemetry.NewProcurementMetrics(mp.Meter("procurement"))
	if err != nil {
		log.Fatal("Failed to create procurement metrics", zap.Error(err))
	}

	// Database
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level),
		logger.WithSlowThreshold(cfg.Telemetry.DBSlowQueryThresh))
	db, err := persistence.NewDatabase(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	if cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled {
		if err := telemetry.RegisterDBTracing(db.DB, cfg.Database.DBName, log); err != nil {
			log.Fatal("Failed to register database tracing", zap.Error(err))
		}
	}
	log.Info("Database connected successfully")

	// Repositories
	orderRepo := persistence.NewGormOrderRepository(db.DB)
	productRepo := persistence.NewGormProductRepository(db.DB)
	batchRepo := persistence.NewGormBatchRepository(db.DB)
	supplierRepo := persistence.NewGormSupplierRepository(db.DB)
	technicianRepo := persistence.NewGormTechnicianRepository(db.DB)
	ledgerRepo := persistence.NewGormLedgerRepository(db.DB)
	factRepo := persistence.NewGormFactRepository(db.DB)
	scope := persistence.NewGormTransactionScope(db.DB)

	// Order numbering, one generator per kind
	numberOpts := []numbering.Option{
		numbering.WithMaxAttempts(cfg.Numbering.MaxAttempts),
		numbering.WithCollisionHook(metrics.RecordNumberCollision),
	}
	generators := make(map[trade.Kind]*numbering.Generator)
	for _, kind := range trade.AllKinds() {
		store, err := persistence.NewOrderNumberStore(db.DB, kind)
		if err != nil {
			log.Fatal("Failed to create number store", zap.String("kind", kind.String()), zap.Error(err))
		}
		generators[kind] = numbering.NewGenerator(store, numberOpts...)
	}

	costRegistry, err := strategy.NewRegistryWithDefaults(cfg.Costing.Strategy)
	if err != nil {
		log.Fatal("Failed to initialize cost strategies", zap.Error(err))
	}

	// Event bus; status changes go to the notification queue when Redis is configured
	eventBus := event.NewInMemoryEventBus(log)
	var locker tradeapp.Locker = lock.NewLocalLocker()
	if cfg.Redis.Enabled() {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer func() {
			_ = redisClient.Close()
		}()
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Fatal("Failed to connect to redis", zap.String("addr", cfg.Redis.Addr()), zap.Error(err))
		}
		locker = lock.NewRedisLocker(redisClient, lock.WithLogger(log))

		queueClient := asynq.NewClient(asynq.RedisClientOpt{
			Addr:     cfg.Redis.Addr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer func() {
			_ = queueClient.Close()
		}()
		eventBus.Subscribe(notification.NewEnqueuer(
			queueClient,
			event.NewDomainSerializer(),
			cfg.Notification.Queue,
			cfg.Notification.MaxRetry,
			log,
		))
		log.Info("Redis order lock and notification queue enabled", zap.String("addr", cfg.Redis.Addr()))
	} else {
		log.Warn("Redis not configured, using in-process order lock and no notifications")
	}
	if err := eventBus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		_ = eventBus.Stop(context.Background())
	}()

	// Application services
	orderService := tradeapp.NewOrderService(orderRepo, productRepo, supplierRepo, technicianRepo, generators)
	if cfg.Storage.Bucket != "" {
		proofs, err := storage.NewS3ProofStore(ctx, &cfg.Storage, storage.WithLogger(log))
		if err != nil {
			log.Fatal("Failed to initialize proof storage", zap.Error(err))
		}
		orderService.SetProofChecker(proofs)
	}
	transitionService := tradeapp.NewTransitionService(scope, locker, costRegistry,
		tradeapp.WithCostMethod(cfg.Costing.Strategy),
		tradeapp.WithEventPublisher(eventBus),
		tradeapp.WithMetrics(metrics),
		tradeapp.WithNumberingOptions(numberOpts...),
	)
	reportService := reportapp.NewService(factRepo, reportapp.WithMetrics(metrics))
	ledgerService := financeapp.NewLedgerService(ledgerRepo)
	reconcileService := partnerapp.NewReconcileService(factRepo, scope)
	batchService := inventoryapp.NewBatchService(batchRepo, productRepo)

	// HTTP
	if err := middleware.SetupValidator(); err != nil {
		log.Fatal("Failed to register validation rules", zap.Error(err))
	}
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		log.Fatal("Invalid trusted proxies", zap.Error(err))
	}

	httpMetrics, err := middleware.HTTPMetrics(mp.Meter("procurement/http"))
	if err != nil {
		log.Fatal("Failed to create HTTP metrics", zap.Error(err))
	}
	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowOrigins = cfg.HTTP.CORSAllowOrigins

	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Tracing(cfg.Telemetry.ServiceName, cfg.Telemetry.Enabled)...)
	engine.Use(httpMetrics)
	engine.Use(middleware.CORSWithConfig(corsCfg))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	systemHandler := handler.NewSystemHandler(cfg.App.Name, version, db)
	engine.GET("/health", systemHandler.Health)

	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	router.RegisterProcurement(r, router.Handlers{
		Orders:      handler.NewOrderHandler(orderService),
		Transitions: handler.NewTransitionHandler(transitionService),
		Reports:     handler.NewReportHandler(reportService),
		Ledger:      handler.NewLedgerHandler(ledgerService),
		Partners:    handler.NewPartnerHandler(reconcileService),
		Inventory:   handler.NewInventoryHandler(batchService),
		System:      systemHandler,
	}, cfg.HTTP.ReportTimeout)
	r.Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
