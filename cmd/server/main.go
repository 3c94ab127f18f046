package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	appcash "github.com/cortecaja/backend/internal/application/cashdrawer"
	appevent "github.com/cortecaja/backend/internal/application/event"
	appidentity "github.com/cortecaja/backend/internal/application/identity"
	appnotification "github.com/cortecaja/backend/internal/application/notification"
	"github.com/cortecaja/backend/internal/domain/shared"
	"github.com/cortecaja/backend/internal/infrastructure/auth"
	"github.com/cortecaja/backend/internal/infrastructure/cache"
	"github.com/cortecaja/backend/internal/infrastructure/config"
	"github.com/cortecaja/backend/internal/infrastructure/event"
	"github.com/cortecaja/backend/internal/infrastructure/logger"
	"github.com/cortecaja/backend/internal/infrastructure/migration"
	"github.com/cortecaja/backend/internal/infrastructure/notify"
	"github.com/cortecaja/backend/internal/infrastructure/persistence"
	"github.com/cortecaja/backend/internal/infrastructure/printing"
	"github.com/cortecaja/backend/internal/infrastructure/storage"
	"github.com/cortecaja/backend/internal/infrastructure/telemetry"
	"github.com/cortecaja/backend/internal/interfaces/http/handler"
	"github.com/cortecaja/backend/internal/interfaces/http/middleware"
	"github.com/cortecaja/backend/internal/interfaces/http/router"
	"github.com/cortecaja/backend/migrations"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	_ "github.com/cortecaja/backend/docs"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

//	@title			Corte de Caja API
//	@version		1.0
//	@description	Cash drawer sessions, ledger movements and end-of-day reconciliation reports.

//	@contact.name	API Support
//	@contact.url	https://github.com/cortecaja/backend

//	@host		localhost:8080
//	@BasePath	/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	logCfg := &logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	}
	bootLog, err := logger.New(logCfg)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}

	ctx := context.Background()

	// Telemetry starts before the real logger so the OTLP core can be teed in
	providers, err := telemetry.Setup(ctx, cfg.Telemetry, bootLog)
	if err != nil {
		bootLog.Fatal("Failed to initialize telemetry", zap.Error(err))
	}
	log, err := logger.New(logCfg, providers.LogCore(logger.ParseLevel(cfg.Log.Level)))
	if err != nil {
		bootLog.Fatal("Failed to initialize logger", zap.Error(err))
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting Corte de Caja backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	loc, err := cfg.Reconciliation.Location()
	if err != nil {
		log.Fatal("Invalid reconciliation timezone", zap.Error(err))
	}

	// Database
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level),
		logger.WithSlowThreshold(cfg.Telemetry.DBSlowQueryThresh),
		logger.WithParameterizedQueries(!cfg.Telemetry.DBLogFullSQL),
	)
	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	if err := providers.DB.Register(db.DB); err != nil {
		log.Fatal("Failed to register database tracing", zap.Error(err))
	}
	log.Info("Database connected successfully")

	if cfg.Database.MigrateOnStart {
		if err := migrate(db, log); err != nil {
			log.Fatal("Failed to apply migrations", zap.Error(err))
		}
	}

	// Redis is optional; everything backed by it has an in-process fallback
	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient, err = cache.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			log.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		log.Info("Redis connected", zap.String("addr", cfg.Redis.Addr()))
	}

	// Repositories
	sessionRepo := persistence.NewGormSessionRepository(db.DB)
	movementRepo := persistence.NewGormMovementRepository(db.DB)
	reportRepo := persistence.NewGormReportRepository(db.DB)
	userRepo := persistence.NewGormUserRepository(db.DB)
	notificationRepo := persistence.NewGormNotificationRepository(db.DB)
	outboxRepo := event.NewGormOutboxRepository(db.DB)

	// Events are written to the outbox in the same transaction as the change
	serializer := event.NewEventSerializer()
	outboxPublisher := event.NewOutboxPublisher(serializer).WithMaxRetries(cfg.Event.MaxRetries)
	txScope := persistence.NewGormTransactionScope(db.DB, outboxPublisher.WriterFor)

	// Report documents
	chrome := printing.NewChromedpRenderer(
		printing.ChromedpConfigFrom(cfg.Chrome, cfg.Reconciliation.RenderTimeout, log))
	engine := printing.NewTemplateEngine(printing.WithLocation(loc))
	renderers := []appcash.DocumentRenderer{
		printing.NewPDFDocumentRenderer(engine, chrome),
		printing.NewExcelWorkbookRenderer(loc),
	}
	store, err := storage.NewDocumentStore(ctx, &cfg.Storage, log)
	if err != nil {
		log.Fatal("Failed to initialize document storage", zap.Error(err))
	}

	// Application services
	hasher := auth.NewBcryptHasher(cfg.Auth.BcryptCost)
	jwtService := auth.NewJWTService(cfg.JWT)
	var blacklist auth.TokenBlacklist = auth.NewInMemoryTokenBlacklist()
	if redisClient != nil {
		blacklist = auth.NewRedisTokenBlacklist(redisClient)
	}

	authService := appidentity.NewAuthService(
		auth.NewBcryptCredentialVerifier(userRepo, hasher), userRepo, jwtService, blacklist, log)
	userService := appidentity.NewUserService(userRepo, hasher, blacklist, cfg.JWT.RefreshTokenExpiration, log)
	sessionService := appcash.NewSessionService(sessionRepo, movementRepo, txScope, loc, log)
	reconciliationService := appcash.NewReconciliationService(
		sessionRepo, movementRepo, reportRepo, txScope, renderers, store,
		appcash.ReconciliationOptions{
			Location:                     loc,
			IncludeFinalSessionMovements: cfg.Reconciliation.IncludeFinalSessionMovements,
			RenderTimeout:                cfg.Reconciliation.RenderTimeout,
			UploadTimeout:                cfg.Reconciliation.UploadTimeout,
			KeyPrefix:                    cfg.Reconciliation.ObjectKeyPrefix,
			Locker:                       cache.NewGenerationLocker(redisClient, log),
		}, log)
	notificationService := appnotification.NewNotificationService(notificationRepo)
	outboxService := appevent.NewOutboxService(outboxRepo, log)

	if cfg.Auth.BootstrapAdminEmail != "" {
		created, err := userService.BootstrapAdmin(ctx,
			cfg.Auth.BootstrapAdminEmail, cfg.Auth.BootstrapAdminName, cfg.Auth.BootstrapAdminPassword)
		if err != nil {
			log.Fatal("Failed to bootstrap admin user", zap.Error(err))
		}
		if created {
			log.Info("Bootstrap admin created", zap.String("email", cfg.Auth.BootstrapAdminEmail))
		}
	}

	// Event bus and outbox delivery
	eventBus := event.NewInMemoryEventBus(log)
	ledgerMetrics, err := telemetry.NewLedgerMetrics(providers.Meter.Meter("corte"))
	if err != nil {
		log.Fatal("Failed to register ledger metrics", zap.Error(err))
	}
	eventBus.Subscribe(ledgerMetrics)

	notifier, err := notify.NewNotifier(cfg.Notification, redisClient, log)
	if err != nil {
		log.Fatal("Failed to initialize notifier", zap.Error(err))
	}
	idempotencyStore := cache.NewIdempotencyStore(redisClient, log)
	eventBus.Subscribe(event.NewIdempotentHandler(
		appnotification.NewReconciliationNotifiedHandler(userRepo, notificationRepo, notifier, loc, log),
		idempotencyStore,
		"reconciliation-notified",
		shared.DefaultIdempotencyConfig(),
		log,
	))
	if err := eventBus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}

	var processor *event.OutboxProcessor
	if cfg.Event.ProcessorEnabled {
		processor = event.NewOutboxProcessor(outboxRepo, eventBus, serializer, event.OutboxProcessorConfig{
			BatchSize:        cfg.Event.BatchSize,
			PollInterval:     cfg.Event.PollInterval,
			CleanupEnabled:   cfg.Event.CleanupEnabled,
			CleanupRetention: cfg.Event.CleanupRetention,
			CleanupInterval:  cfg.Event.CleanupInterval,
		}, log).WithObserver(ledgerMetrics)
		if err := processor.Start(ctx); err != nil {
			log.Fatal("Failed to start outbox processor", zap.Error(err))
		}
		log.Info("Outbox processor started",
			zap.Int("batch_size", cfg.Event.BatchSize),
			zap.Duration("poll_interval", cfg.Event.PollInterval),
		)
	}

	// HTTP
	if cfg.App.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engineHTTP := gin.New()
	if err := engineHTTP.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		log.Fatal("Invalid trusted proxies", zap.Error(err))
	}

	httpMetrics, err := middleware.HTTPMetrics(providers.Meter.Meter("corte.http"))
	if err != nil {
		log.Fatal("Failed to register HTTP metrics", zap.Error(err))
	}
	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		corsCfg.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		corsCfg.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}

	limiterCtx, stopLimiters := context.WithCancel(ctx)
	defer stopLimiters()

	engineHTTP.Use(
		logger.Recovery(log),
		middleware.RequestID(),
		middleware.Tracing(cfg.Telemetry.ServiceName, cfg.Telemetry.Enabled),
		middleware.SpanAttributes(),
		httpMetrics,
		middleware.Profiling(cfg.Telemetry.ProfilingEnabled),
		logger.GinMiddleware(log),
		middleware.Secure(middleware.DefaultSecurityConfig()),
		middleware.CORS(corsCfg),
		middleware.BodyLimit(cfg.HTTP.MaxBodySize),
	)
	if cfg.HTTP.RateLimitEnabled {
		limiter := newLimiter(limiterCtx, redisClient, "ratelimit:api", cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		engineHTTP.Use(middleware.RateLimit(limiter, middleware.ClientIPKey, log))
	}

	var loginLimit gin.HandlerFunc
	if cfg.HTTP.AuthRateLimitEnabled {
		limiter := newLimiter(limiterCtx, redisClient, "ratelimit:login", cfg.HTTP.AuthRateLimitRequests, cfg.HTTP.AuthRateLimitWindow)
		loginLimit = middleware.RateLimit(limiter, middleware.ClientIPKey, log)
	}

	checks := map[string]handler.PingFunc{"database": db.Ping}
	if redisClient != nil {
		checks["redis"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
	}
	router.RegisterHealth(engineHTTP, handler.NewHealthHandler(telemetry.ServiceVersion, checks))

	if cfg.Swagger.Enabled {
		engineHTTP.GET("/swagger/*any",
			middleware.SwaggerProtection(true, cfg.Swagger.AllowedIPs),
			ginSwagger.WrapHandler(swaggerFiles.Handler))
		log.Info("Swagger UI enabled", zap.Strings("allowed_ips", cfg.Swagger.AllowedIPs))
	}

	r := router.NewRouter(engineHTTP, router.WithAPIVersion("v1"))
	groups := router.APIGroups(router.Handlers{
		Auth:           handler.NewAuthHandler(authService),
		Session:        handler.NewSessionHandler(sessionService),
		Reconciliation: handler.NewReconciliationHandler(reconciliationService),
		User:           handler.NewUserHandler(userService),
		Notification:   handler.NewNotificationHandler(notificationService),
		Outbox:         handler.NewOutboxHandler(outboxService),
	}, router.Guards{
		Auth:       middleware.JWTAuth(authService, log),
		LoginLimit: loginLimit,
	})
	for _, g := range groups {
		r.Register(g)
	}
	r.Setup()
	log.Info("API routes registered", zap.Int("count", len(r.Routes())))

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engineHTTP,
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

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	stopLimiters()
	if processor != nil {
		if err := processor.Stop(shutdownCtx); err != nil {
			log.Error("Error stopping outbox processor", zap.Error(err))
		}
	}
	if err := eventBus.Stop(shutdownCtx); err != nil {
		log.Error("Error stopping event bus", zap.Error(err))
	}
	if err := chrome.Close(); err != nil {
		log.Error("Error closing browser", zap.Error(err))
	}
	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			log.Error("Error closing Redis", zap.Error(err))
		}
	}
	if err := providers.Shutdown(shutdownCtx); err != nil {
		log.Error("Error shutting down telemetry", zap.Error(err))
	}
	if err := db.Close(); err != nil {
		log.Error("Error closing database", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

func migrate(db *persistence.Database, log *zap.Logger) error {
	sqlDB, err := db.DB.DB()
	if err != nil {
		return err
	}
	m, err := migration.NewFromFS(sqlDB, migrations.FS, log)
	if err != nil {
		return err
	}
	return m.Up()
}

// newLimiter shares counters across replicas through Redis when available
func newLimiter(ctx context.Context, client *redis.Client, prefix string, limit int, window time.Duration) middleware.Limiter {
	if client != nil {
		return middleware.NewRedisRateLimiter(client, prefix, limit, window)
	}
	limiter := middleware.NewRateLimiter(limit, window)
	go limiter.Run(ctx)
	return limiter
}
