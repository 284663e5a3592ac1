package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	eventapp "github.com/workforce/backend/internal/application/event"
	formapp "github.com/workforce/backend/internal/application/form"
	"github.com/workforce/backend/internal/domain/shared"
	"github.com/workforce/backend/internal/infrastructure/auth"
	"github.com/workforce/backend/internal/infrastructure/cache"
	"github.com/workforce/backend/internal/infrastructure/config"
	"github.com/workforce/backend/internal/infrastructure/event"
	"github.com/workforce/backend/internal/infrastructure/logger"
	"github.com/workforce/backend/internal/infrastructure/migration"
	"github.com/workforce/backend/internal/infrastructure/persistence"
	"github.com/workforce/backend/internal/infrastructure/storage"
	"github.com/workforce/backend/internal/infrastructure/telemetry"
	"github.com/workforce/backend/internal/interfaces/http/handler"
	"github.com/workforce/backend/internal/interfaces/http/middleware"
	"github.com/workforce/backend/internal/interfaces/http/router"
	"github.com/workforce/backend/migrations"
	"go.uber.org/zap"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	_ "github.com/workforce/backend/docs"
)

// version is overridden at build time with -ldflags "-X main.version=..."
var version = "dev"

//	@title			Workforce Forms API
//	@version		1.0
//	@description	Form templates, draft and submitted forms, and approval decisions.

//	@contact.name	API Support

//	@license.name	Apache 2.0
//	@license.url	http://www.apache.org/licenses/LICENSE-2.0.html

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

	baseLog, err := logger.New(&logger.Config{
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		Output:  cfg.Log.Output,
		Service: cfg.App.Name,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = baseLog.Sync()
	}()

	ctx := context.Background()
	tel := setupTelemetry(ctx, cfg, baseLog)
	defer tel.shutdown(baseLog)
	log := tel.log

	log.Info("Starting forms backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level),
		logger.WithSlowThreshold(cfg.Telemetry.DBSlowQueryThresh))
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

	if err := telemetry.RegisterDBTracing(db.DB, telemetry.DBTracingConfig{
		Enabled:         cfg.Telemetry.DBTraceEnabled,
		LogFullSQL:      cfg.Telemetry.DBLogFullSQL,
		SlowQueryThresh: cfg.Telemetry.DBSlowQueryThresh,
		DBName:          cfg.Database.DBName,
	}, log); err != nil {
		log.Fatal("Failed to register database tracing", zap.Error(err))
	}

	sqlDB, err := db.DB.DB()
	if err != nil {
		log.Fatal("Failed to get underlying sql.DB", zap.Error(err))
	}
	if _, err := telemetry.RegisterDBPoolMetrics(tel.meter.Meter("forms-backend/db"), sqlDB); err != nil {
		log.Warn("Failed to register connection pool metrics", zap.Error(err))
	}

	if cfg.Database.AutoMigrate {
		m, err := migration.New(sqlDB, migrations.FS, log)
		if err != nil {
			log.Fatal("Failed to prepare migrations", zap.Error(err))
		}
		if err := m.Up(); err != nil {
			log.Fatal("Failed to apply migrations", zap.Error(err))
		}
		// Closing the migrator would close the shared sql.DB.
		log.Info("Database migrations applied")
	}

	templateRepo := persistence.NewGormFormTemplateRepository(db.DB)
	submissionRepo := persistence.NewGormFormSubmissionRepository(db.DB)
	historyRepo := persistence.NewGormStatusHistoryRepository(db.DB)
	outboxRepo := event.NewGormOutboxRepository(db.DB)

	eventSerializer := event.NewEventSerializer()
	event.RegisterAllEvents(eventSerializer)
	outboxPublisher := event.NewOutboxPublisher(eventSerializer)
	templateRepo.SetOutboxEventSaver(outboxPublisher)
	submissionRepo.SetOutboxEventSaver(outboxPublisher)

	submissionOpts := []formapp.SubmissionServiceOption{
		formapp.WithMaxSignatureBytes(cfg.Forms.MaxSignatureBytes),
	}
	if cfg.Storage.Enabled {
		objects, err := storage.NewS3ObjectStorage(&cfg.Storage,
			storage.WithLogger(log),
			storage.WithPresignExpiration(cfg.Storage.PresignExpiration))
		if err != nil {
			log.Fatal("Failed to create object storage client", zap.Error(err))
		}
		if err := objects.EnsureBucket(ctx); err != nil {
			log.Fatal("Signature bucket is not reachable", zap.String("bucket", cfg.Storage.Bucket), zap.Error(err))
		}
		signatures := storage.NewS3SignatureStore(objects, cfg.Storage.KeyPrefix, cfg.Storage.PresignExpiration, log)
		submissionOpts = append(submissionOpts, formapp.WithSignatureStore(signatures))
		log.Info("Approval signatures stored in object storage", zap.String("bucket", cfg.Storage.Bucket))
	}

	templateService := formapp.NewTemplateService(templateRepo, submissionRepo, log)
	submissionService := formapp.NewSubmissionService(templateRepo, submissionRepo, historyRepo, log, submissionOpts...)

	eventBus := event.NewInMemoryEventBus(log)
	if err := subscribeHandlers(ctx, cfg, eventBus, historyRepo, tel.meter, log); err != nil {
		log.Fatal("Failed to register event handlers", zap.Error(err))
	}
	if err := eventBus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		if err := eventBus.Stop(context.Background()); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()

	if cfg.Event.ProcessorEnabled {
		processorConfig := event.DefaultOutboxProcessorConfig()
		processorConfig.BatchSize = cfg.Event.BatchSize
		processorConfig.PollInterval = cfg.Event.PollInterval
		processorConfig.CleanupEnabled = cfg.Event.CleanupEnabled
		processorConfig.CleanupRetention = cfg.Event.CleanupRetention

		processor := event.NewOutboxProcessor(outboxRepo, eventBus, eventSerializer, processorConfig, log)
		if err := processor.Start(ctx); err != nil {
			log.Fatal("Failed to start outbox processor", zap.Error(err))
		}
		// Deferred after the bus so the processor stops first.
		defer func() {
			if err := processor.Stop(context.Background()); err != nil {
				log.Error("Error stopping outbox processor", zap.Error(err))
			}
		}()
		log.Info("Outbox processor started",
			zap.Int("batch_size", processorConfig.BatchSize),
			zap.Duration("poll_interval", processorConfig.PollInterval),
		)
	} else {
		log.Warn("Outbox processor disabled; status history and metrics will not be updated")
	}

	if cfg.App.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Fatal("Invalid trusted proxies", zap.Error(err))
		}
	} else if err := engine.SetTrustedProxies(nil); err != nil {
		log.Fatal("Failed to disable proxy trust", zap.Error(err))
	}
	middleware.SetupValidator()

	httpMetrics, err := middleware.HTTPMetrics(tel.meter.Meter("forms-backend/http"))
	if err != nil {
		log.Fatal("Failed to create HTTP metrics", zap.Error(err))
	}

	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	corsConfig.AllowMethods = cfg.HTTP.CORSAllowMethods
	corsConfig.AllowHeaders = cfg.HTTP.CORSAllowHeaders

	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(middleware.Tracing(cfg.Telemetry.ServiceName))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure(middleware.DefaultSecurityConfig()))
	engine.Use(middleware.CORS(corsConfig))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))
	engine.Use(httpMetrics)
	if cfg.Telemetry.ProfilingEnabled {
		engine.Use(middleware.Profiling())
	}

	jwtService := auth.NewJWTService(cfg.JWT)
	authenticate := middleware.Authenticate(middleware.IdentityConfig{
		JWT:          jwtService,
		AllowHeaders: cfg.Forms.AllowIdentityHeaders,
		Logger:       log,
	})
	if cfg.Forms.AllowIdentityHeaders {
		log.Warn("Identity headers accepted without a token; do not expose this instance")
	}

	systemHandler := handler.NewSystemHandler(db, cfg.App.Name, version)
	engine.GET("/health", systemHandler.Health)

	engine.GET("/swagger/*any",
		middleware.SwaggerProtection(middleware.SwaggerConfig{
			Enabled:     cfg.Swagger.Enabled,
			RequireAuth: cfg.Swagger.RequireAuth,
			AllowedIPs:  cfg.Swagger.AllowedIPs,
		}, authenticate),
		ginSwagger.WrapHandler(swaggerFiles.Handler),
	)

	apiMiddleware := []gin.HandlerFunc{authenticate, middleware.SpanAttributes()}
	var rateLimiter *middleware.RateLimiter
	if cfg.HTTP.RateLimitEnabled {
		rateLimiter = middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		defer rateLimiter.Stop()
		apiMiddleware = append(apiMiddleware, middleware.RateLimit(rateLimiter))
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
		)
	}

	r := router.NewRouter(engine,
		router.WithAPIVersion("v1"),
		router.WithMiddleware(apiMiddleware...),
	)
	r.Register(router.FormsRoutes(
		handler.NewTemplateHandler(templateService),
		handler.NewSubmissionHandler(submissionService),
	)).Register(router.OutboxRoutes(
		handler.NewOutboxHandler(eventapp.NewOutboxService(outboxRepo, log)),
	)).Register(router.SystemRoutes(systemHandler))
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
		return
	}
	log.Info("Server exited gracefully")
}

// subscribeHandlers registers the form event handlers on the bus, each behind
// an idempotency guard so outbox redelivery is harmless.
func subscribeHandlers(
	ctx context.Context,
	cfg *config.Config,
	bus *event.InMemoryEventBus,
	historyRepo *persistence.GormStatusHistoryRepository,
	meter *telemetry.MeterProvider,
	log *zap.Logger,
) error {
	store, err := cache.NewIdempotencyStoreFactory(cfg.Redis,
		cache.WithLogger(log),
		cache.WithRequireRedis(cfg.Event.RequireRedisDedup),
	).CreateStore(ctx)
	if err != nil {
		return err
	}

	idempotency := event.WithIdempotencyConfig(shared.IdempotencyConfig{
		TTL:     cfg.Event.IdempotencyTTL,
		Enabled: true,
	})
	metrics := &event.IdempotencyMetrics{}

	history := formapp.NewStatusHistoryHandler(historyRepo, log)
	bus.Subscribe(event.NewIdempotentHandler(history, store, log, idempotency, event.WithIdempotencyMetrics(metrics)))

	formMetrics, err := telemetry.NewFormMetrics(meter.Meter(telemetry.MeterName))
	if err != nil {
		return err
	}
	bus.Subscribe(event.NewIdempotentHandler(formMetrics, store, log, idempotency, event.WithIdempotencyMetrics(metrics)))
	return nil
}

type telemetryStack struct {
	log      *zap.Logger
	tracer   *telemetry.TracerProvider
	meter    *telemetry.MeterProvider
	logs     *telemetry.LoggerProvider
	profiler *telemetry.Profiler
}

// setupTelemetry starts tracing, metrics, log export and profiling. Exporter
// failures are logged and the service runs without that signal.
func setupTelemetry(ctx context.Context, cfg *config.Config, base *zap.Logger) *telemetryStack {
	t := &telemetryStack{log: base}
	tc := cfg.Telemetry

	tracer, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           tc.Enabled,
		CollectorEndpoint: tc.CollectorEndpoint,
		SamplingRatio:     tc.SamplingRatio,
		ServiceName:       tc.ServiceName,
		Insecure:          tc.Insecure,
	}, base)
	if err != nil {
		base.Warn("Tracing unavailable", zap.Error(err))
	} else {
		t.tracer = tracer
	}

	meter, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           tc.Enabled,
		CollectorEndpoint: tc.CollectorEndpoint,
		ExportInterval:    tc.MetricsInterval,
		ServiceName:       tc.ServiceName,
		Insecure:          tc.Insecure,
	}, base)
	if err != nil {
		base.Warn("Metrics unavailable", zap.Error(err))
		meter, _ = telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{}, base)
	}
	t.meter = meter

	if tc.Enabled && tc.LogsEnabled {
		logs, err := telemetry.NewLoggerProvider(ctx, telemetry.LogsConfig{
			Enabled:           true,
			CollectorEndpoint: tc.CollectorEndpoint,
			ServiceName:       tc.ServiceName,
			Insecure:          tc.Insecure,
		}, base)
		if err != nil {
			base.Warn("Log export unavailable", zap.Error(err))
		} else {
			t.logs = logs
			t.log = telemetry.Bridge(base, logs, tc.ServiceName, logger.ParseLevel(cfg.Log.Level))
		}
	}

	if tc.ProfilingEnabled {
		profiler, err := telemetry.NewProfiler(telemetry.ProfilerConfig{
			Enabled:           true,
			ServerAddress:     tc.PyroscopeAddress,
			ApplicationName:   tc.ServiceName,
			BasicAuthUser:     tc.PyroscopeUser,
			BasicAuthPassword: tc.PyroscopePassword,
			ProfileTypes:      telemetry.DefaultProfileTypes,
		}, base)
		if err != nil {
			base.Warn("Profiling unavailable", zap.Error(err))
		} else {
			t.profiler = profiler
			if t.tracer != nil {
				t.tracer.EnableSpanProfiles()
			}
		}
	}
	return t
}

func (t *telemetryStack) shutdown(log *zap.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if t.profiler != nil {
		if err := t.profiler.Stop(); err != nil {
			log.Warn("Error stopping profiler", zap.Error(err))
		}
	}
	if t.tracer != nil {
		if err := t.tracer.Shutdown(ctx); err != nil {
			log.Warn("Error flushing traces", zap.Error(err))
		}
	}
	if err := t.meter.Shutdown(ctx); err != nil {
		log.Warn("Error flushing metrics", zap.Error(err))
	}
	if t.logs != nil {
		if err := t.logs.Shutdown(ctx); err != nil {
			log.Warn("Error flushing logs", zap.Error(err))
		}
	}
}
