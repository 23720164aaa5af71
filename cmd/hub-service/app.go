package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	_ "github.com/lib/pq" // PostgreSQL driver

	"mdhub/internal/broker"
	"mdhub/internal/config"
	"mdhub/internal/constants"
	"mdhub/internal/ingestion"
	"mdhub/internal/logger"
	"mdhub/internal/organization"
	"mdhub/internal/queue"
	"mdhub/internal/redaction"
	"mdhub/pkg/bootstrap"
	"mdhub/pkg/health"
	"mdhub/pkg/metrics"
	"mdhub/pkg/middleware"
	"mdhub/pkg/migrations"
	"mdhub/pkg/ratelimit"
	"mdhub/pkg/tracing"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

type App struct {
	config         *config.Config
	logger         logger.Logger
	dbConnector    *bootstrap.DatabaseConnector
	db             *sql.DB
	redisClient    *redis.Client
	transport      *broker.AMQPTransport
	server         *http.Server
	router         *gin.Engine
	tracerProvider *tracing.TracerProvider
}

func NewApp(cfg *config.Config, log logger.Logger) *App {
	return &App{
		config:      cfg,
		logger:      log,
		dbConnector: bootstrap.NewDatabaseConnector(cfg, log),
	}
}

func (a *App) Initialize(ctx context.Context) error {
	if err := a.initDatabases(ctx); err != nil {
		return fmt.Errorf("failed to initialize databases: %w", err)
	}

	if err := a.initRouter(); err != nil {
		return fmt.Errorf("failed to initialize router: %w", err)
	}

	if err := a.initServer(); err != nil {
		return fmt.Errorf("failed to initialize server: %w", err)
	}

	tp, err := tracing.Init(a.config.Tracing, "hub-service")
	if err != nil {
		return fmt.Errorf("failed to initialize tracing: %w", err)
	}
	a.tracerProvider = tp

	return nil
}

func (a *App) initDatabases(ctx context.Context) error {
	db, err := a.dbConnector.InitPostgreSQL(ctx)
	if err != nil {
		return err
	}
	a.db = db

	if a.config.Database.RunMigrations {
		if err := migrations.RunPostgres(db, "file://migrations"); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
		a.logger.InfowCtx(ctx, "Database migrations applied")
	}

	redisClient, err := a.dbConnector.InitRedis(ctx)
	if err != nil {
		a.logger.WarnwCtx(ctx, "Redis connection failed, organization cache disabled", "error", err)
	} else {
		a.redisClient = redisClient
	}

	return nil
}

func (a *App) initRouter() error {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	if a.config.Tracing.Enabled {
		router.Use(tracing.GinMiddleware("hub-service"))
	}

	router.Use(middleware.RecoveryMiddleware(a.logger))
	router.Use(middleware.LoggerMiddleware(a.logger))
	router.Use(middleware.RequestIDMiddleware())

	if a.config.Operator.RateLimit.Enabled {
		rateLimitConfig := ratelimit.RateLimitConfig{
			RPS:             a.config.Operator.RateLimit.RPS,
			Burst:           a.config.Operator.RateLimit.Burst,
			CleanupInterval: time.Duration(a.config.Operator.RateLimit.CleanupInterval) * time.Second,
			MaxAge:          time.Duration(a.config.Operator.RateLimit.MaxAge) * time.Second,
		}
		router.Use(ratelimit.RateLimitMiddleware(rateLimitConfig))
		a.logger.InfowCtx(context.Background(), "Rate limiting enabled", "rps", rateLimitConfig.RPS, "burst", rateLimitConfig.Burst)
	}

	metrics.RegisterIngestionMetrics()
	metrics.RegisterBrokerMetrics()
	metrics.RegisterManagementMetrics()

	ingestionRepo := ingestion.NewRepository(a.db)
	queueRepo := queue.NewRepository(a.db)

	a.transport = broker.NewAMQPTransport(a.config.Broker.RabbitMQ, queueRepo, ingestionRepo, a.logger)

	var resolver organization.Resolver = organization.NewHTTPResolver(a.config.Collaborators.OrganizationResolver)
	if a.redisClient != nil {
		ttl := time.Duration(a.config.Collaborators.OrganizationResolver.CacheTTLSeconds) * time.Second
		resolver = organization.NewCachedResolver(resolver, a.redisClient, ttl, a.logger)
	}

	ruleSource := redaction.NewHTTPSource(a.config.Collaborators.RuleSource)
	engine := redaction.NewEngine(ruleSource, a.logger)

	ingestionSvc := ingestion.NewService(ingestionRepo, resolver, engine, a.transport, queueRepo, a.logger)
	queueSvc := queue.NewService(queueRepo, a.transport, a.config.Broker.RabbitMQ, a.logger)

	ingestion.NewHandler(ingestionSvc, a.logger).RegisterRoutes(router)
	queue.NewHandler(queueSvc, a.logger).RegisterRoutes(router)

	healthRegistry := health.NewCheckerRegistry()
	healthRegistry.Register(health.NewPostgreSQLChecker(a.db))
	if a.redisClient != nil {
		// redis only backs the organization cache, so losing it degrades
		// the service rather than taking it down.
		healthRegistry.RegisterOptional(health.NewRedisChecker(a.redisClient))
	}
	healthRegistry.Register(health.NewBrokerChecker(a.transport.Healthy))

	router.GET("/health", func(c *gin.Context) {
		h := healthRegistry.Check(c.Request.Context())
		statusCode := http.StatusOK
		if h.Status == health.StatusUnhealthy {
			statusCode = http.StatusServiceUnavailable
		}
		c.JSON(statusCode, h)
	})

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	a.router = router
	return nil
}

func (a *App) initServer() error {
	a.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", a.config.Server.Port),
		Handler:      a.router,
		ReadTimeout:  a.config.Server.ReadTimeoutSeconds,
		WriteTimeout: a.config.Server.WriteTimeoutSeconds,
	}
	return nil
}

func (a *App) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.logger.InfowCtx(ctx, "Server listening", "port", a.config.Server.Port)
		if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		return a.Shutdown(ctx)
	})

	return g.Wait()
}

func (a *App) Shutdown(ctx context.Context) error {
	a.logger.InfowCtx(ctx, "Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
	defer cancel()

	var errs []error

	if a.server != nil {
		if err := a.server.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("server shutdown error: %w", err))
		}
	}

	if a.transport != nil {
		if err := a.transport.Close(); err != nil {
			errs = append(errs, fmt.Errorf("broker shutdown error: %w", err))
		}
	}

	if a.tracerProvider != nil {
		if err := a.tracerProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("tracer provider shutdown error: %w", err))
		}
	}

	dbErrs := a.dbConnector.ShutdownDatabases(ctx, a.redisClient, a.db)
	errs = append(errs, dbErrs...)

	if len(errs) > 0 {
		return fmt.Errorf("shutdown errors: %v", errs)
	}

	a.logger.InfowCtx(ctx, "Server exited successfully")
	return nil
}
