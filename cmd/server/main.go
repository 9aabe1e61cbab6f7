package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	dispatchapp "github.com/Ayibatonye-ikemike/suoops-backend-sub000/internal/application/dispatch"
	identityapp "github.com/Ayibatonye-ikemike/suoops-backend-sub000/internal/application/identity"
	intakeapp "github.com/Ayibatonye-ikemike/suoops-backend-sub000/internal/application/intake"
	invoiceapp "github.com/Ayibatonye-ikemike/suoops-backend-sub000/internal/application/invoice"
	paymentapp "github.com/Ayibatonye-ikemike/suoops-backend-sub000/internal/application/payment"
	domtask "github.com/Ayibatonye-ikemike/suoops-backend-sub000/internal/domain/task"
	"github.com/Ayibatonye-ikemike/suoops-backend-sub000/internal/infrastructure/auth"
	"github.com/Ayibatonye-ikemike/suoops-backend-sub000/internal/infrastructure/cache"
	"github.com/Ayibatonye-ikemike/suoops-backend-sub000/internal/infrastructure/config"
	"github.com/Ayibatonye-ikemike/suoops-backend-sub000/internal/infrastructure/eventlog"
	"github.com/Ayibatonye-ikemike/suoops-backend-sub000/internal/infrastructure/logger"
	"github.com/Ayibatonye-ikemike/suoops-backend-sub000/internal/infrastructure/notify"
	"github.com/Ayibatonye-ikemike/suoops-backend-sub000/internal/infrastructure/payment"
	"github.com/Ayibatonye-ikemike/suoops-backend-sub000/internal/infrastructure/persistence"
	"github.com/Ayibatonye-ikemike/suoops-backend-sub000/internal/infrastructure/render"
	"github.com/Ayibatonye-ikemike/suoops-backend-sub000/internal/infrastructure/speech"
	"github.com/Ayibatonye-ikemike/suoops-backend-sub000/internal/infrastructure/storage"
	infratask "github.com/Ayibatonye-ikemike/suoops-backend-sub000/internal/infrastructure/task"
	"github.com/Ayibatonye-ikemike/suoops-backend-sub000/internal/infrastructure/telemetry"
	"github.com/Ayibatonye-ikemike/suoops-backend-sub000/internal/infrastructure/vision"
	"github.com/Ayibatonye-ikemike/suoops-backend-sub000/internal/interfaces/http/handler"
	"github.com/Ayibatonye-ikemike/suoops-backend-sub000/internal/interfaces/http/middleware"
	"github.com/Ayibatonye-ikemike/suoops-backend-sub000/internal/interfaces/http/router"
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

	log.Info("Starting invoice pipeline",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Database
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, logger.MapGormLogLevel(cfg.Log.Level))
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Repositories
	tenantRepo := persistence.NewGormTenantRepository(db.DB)
	invoiceRepo := persistence.NewGormInvoiceRepository(db.DB)
	paymentEventRepo := persistence.NewGormPaymentEventRepository(db.DB)
	taskRepo := persistence.NewGormTaskRepository(db.DB)

	// Idempotency store: Redis with in-memory fallback for dev setups
	idemFactory := cache.NewIdempotencyStoreFactory(cfg.Redis, cache.WithLogger(log))
	idemStore, err := idemFactory.CreateStore()
	if err != nil {
		log.Fatal("Failed to create idempotency store", zap.Error(err))
	}

	// Token blacklist shares the Redis instance; missing Redis means
	// revocation is unavailable, not that startup fails.
	var blacklist auth.TokenBlacklist
	redisBlacklist, err := auth.NewRedisTokenBlacklist(auth.RedisTokenBlacklistConfig{
		Host:     cfg.Redis.Host,
		Port:     cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		log.Warn("Redis token blacklist unavailable, using in-memory", zap.Error(err))
		blacklist = auth.NewInMemoryTokenBlacklist()
	} else {
		blacklist = redisBlacklist
	}

	// Domain events land on the structured log as an audit trail
	eventPublisher := eventlog.NewPublisher(log)

	// Identity services
	jwtService := auth.NewJWTService(cfg.JWT)
	authService := identityapp.NewAuthService(tenantRepo, jwtService, log)
	tenantService := identityapp.NewTenantService(tenantRepo, log,
		identityapp.WithEventPublisher(eventPublisher))

	// Invoice lifecycle over the task queue
	lifecycleService := invoiceapp.NewLifecycleService(invoiceRepo, taskRepo, log,
		invoiceapp.WithEventPublisher(eventPublisher))

	// Outbound channel gateway, also the media source for inbound images
	notifier := notify.NewClient(cfg.Channel, log)

	// Intake pipeline: speech and vision backends feed extraction
	speechClient := speech.NewClient(cfg.Speech)
	visionClient := vision.NewClient(cfg.Vision)
	pipelineService := intakeapp.NewPipelineService(intakeapp.PipelineConfig{
		Resolver: tenantService,
		Creator:  lifecycleService,
		Speech:   speechClient,
		Receipts: intakeapp.NewReceiptExtractor(notifier, visionClient, log),
		Enqueuer: taskRepo,
		Logger:   log,
	})

	// Document storage
	docStore, err := storage.NewS3DocumentStore(&cfg.Storage)
	if err != nil {
		log.Fatal("Failed to create document store", zap.Error(err))
	}
	if err := docStore.EnsureBucket(context.Background()); err != nil {
		log.Fatal("Failed to ensure document bucket", zap.Error(err))
	}

	// Telemetry
	ctx := context.Background()
	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}
	meterProvider, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize meter provider", zap.Error(err))
	}

	var pipelineMetrics *telemetry.PipelineMetrics
	if cfg.Telemetry.Enabled {
		pipelineMetrics, err = telemetry.NewPipelineMetrics(telemetry.PipelineMetricsConfig{
			Meter:  meterProvider.Meter("invoice-pipeline"),
			Logger: log,
		})
		if err != nil {
			log.Warn("Pipeline metrics disabled", zap.Error(err))
		}
	}

	// Task dispatcher and executors
	executors := dispatchapp.NewExecutors(dispatchapp.ExecutorConfig{
		InvoiceRepo: invoiceRepo,
		TenantRepo:  tenantRepo,
		Renderer:    render.NewPDFRenderer(),
		Store:       docStore,
		Notifier:    notifier,
		Inbound:     pipelineService,
		Logger:      log,
	})

	dispatcherConfig := infratask.DefaultDispatcherConfig()
	if cfg.Dispatcher.Workers > 0 {
		dispatcherConfig.Workers = cfg.Dispatcher.Workers
	}
	if cfg.Dispatcher.BatchSize > 0 {
		dispatcherConfig.BatchSize = cfg.Dispatcher.BatchSize
	}
	if cfg.Dispatcher.PollInterval > 0 {
		dispatcherConfig.PollInterval = cfg.Dispatcher.PollInterval
	}
	if cfg.Dispatcher.TaskTimeout > 0 {
		dispatcherConfig.TaskTimeout = cfg.Dispatcher.TaskTimeout
	}
	if cfg.Dispatcher.BaseBackoff > 0 {
		dispatcherConfig.RetryPolicy.BaseBackoff = cfg.Dispatcher.BaseBackoff
	}
	if cfg.Dispatcher.MaxBackoff > 0 {
		dispatcherConfig.RetryPolicy.MaxBackoff = cfg.Dispatcher.MaxBackoff
	}
	if cfg.Dispatcher.DeadRetention > 0 {
		dispatcherConfig.CleanupRetention = cfg.Dispatcher.DeadRetention
	}
	dispatcherConfig.Metrics = pipelineMetrics

	dispatcher := infratask.NewDispatcher(taskRepo, dispatcherConfig, log)
	dispatcher.Register(domtask.KindProcessInbound, executors.ProcessInbound)
	dispatcher.Register(domtask.KindRenderInvoice, executors.RenderInvoice)
	dispatcher.Register(domtask.KindRenderReceipt, executors.RenderReceipt)
	dispatcher.Register(domtask.KindSendNotification, executors.SendNotification)
	dispatcher.Register(domtask.KindSendDocument, executors.SendDocument)

	if cfg.Dispatcher.Enabled {
		if err := dispatcher.Start(context.Background()); err != nil {
			log.Fatal("Failed to start task dispatcher", zap.Error(err))
		}
		log.Info("Task dispatcher started",
			zap.Int("workers", dispatcherConfig.Workers),
			zap.Duration("poll_interval", dispatcherConfig.PollInterval),
		)
	}

	// Payment event guard with the configured providers
	eventGuard := paymentapp.NewEventGuard(paymentapp.EventGuardConfig{
		EventRepo:   paymentEventRepo,
		Lifecycle:   lifecycleService,
		Idempotency: idemStore,
		Logger:      log,
	})
	if cfg.Payment.StripeWebhookSecret != "" {
		eventGuard.RegisterProvider(payment.NewStripeProvider(cfg.Payment.StripeWebhookSecret))
	}
	if cfg.Payment.PaystackSecretKey != "" {
		eventGuard.RegisterProvider(payment.NewPaystackProvider(cfg.Payment.PaystackSecretKey))
	}

	// HTTP handlers
	systemHandler := handler.NewSystemHandler(db.DB)
	authHandler := handler.NewAuthHandler(authService, tenantService)
	tenantHandler := handler.NewTenantHandler(tenantService)
	invoiceHandler := handler.NewInvoiceHandler(lifecycleService)
	channelWebhookHandler := handler.NewChannelWebhookHandler(cfg.Channel, taskRepo, log)
	paymentWebhookHandler := handler.NewPaymentWebhookHandler(eventGuard, log)
	taskHandler := handler.NewTaskHandler(taskRepo)

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	middleware.SetupValidator()

	engine := gin.New()

	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())
	engine.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))
	engine.Use(middleware.TracingWithConfig(middleware.TracingConfig{
		ServiceName: cfg.Telemetry.ServiceName,
		Enabled:     cfg.Telemetry.Enabled,
	}))
	engine.Use(middleware.SpanErrorMarker())
	engine.Use(middleware.HTTPMetrics(middleware.HTTPMetricsConfig{
		MeterProvider: meterProvider,
		ServiceName:   cfg.Telemetry.ServiceName,
		Enabled:       cfg.Telemetry.Enabled,
	}))

	if cfg.HTTP.RateLimitEnabled {
		rateLimiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		engine.Use(middleware.RateLimit(rateLimiter))
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
		)
	}

	jwtConfig := middleware.DefaultJWTConfig(jwtService)
	jwtConfig.TokenBlacklist = blacklist
	jwtConfig.Logger = log
	engine.Use(middleware.JWTAuthMiddlewareWithConfig(jwtConfig))

	router.NewRouter(engine, router.WithAPIVersion("v1")).
		Register(systemHandler).
		Register(authHandler).
		Register(tenantHandler).
		Register(invoiceHandler).
		Register(channelWebhookHandler).
		Register(paymentWebhookHandler).
		Register(taskHandler).
		Setup()

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
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown: stop accepting requests, drain the dispatcher,
	// then flush telemetry.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if cfg.Dispatcher.Enabled {
		if err := dispatcher.Stop(shutdownCtx); err != nil {
			log.Error("Error stopping task dispatcher", zap.Error(err))
		}
	}
	if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Error shutting down tracer provider", zap.Error(err))
	}
	if err := meterProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Error shutting down meter provider", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
