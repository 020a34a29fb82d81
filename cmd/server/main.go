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
	_ "github.com/opsconsole/backend/docs"
	ledgerapp "github.com/opsconsole/backend/internal/application/ledger"
	"github.com/opsconsole/backend/internal/domain/ledger"
	"github.com/opsconsole/backend/internal/domain/shared"
	"github.com/opsconsole/backend/internal/infrastructure/cache"
	"github.com/opsconsole/backend/internal/infrastructure/config"
	"github.com/opsconsole/backend/internal/infrastructure/logger"
	"github.com/opsconsole/backend/internal/infrastructure/persistence"
	"github.com/opsconsole/backend/internal/infrastructure/printing"
	"github.com/opsconsole/backend/internal/infrastructure/telemetry"
	"github.com/opsconsole/backend/internal/interfaces/http/handler"
	"github.com/opsconsole/backend/internal/interfaces/http/middleware"
	"github.com/opsconsole/backend/internal/interfaces/http/router"
	"go.uber.org/zap"
)

const shutdownTimeout = 30 * time.Second

//go:generate go run github.com/swaggo/swag/v2/cmd/swag@v2.0.0-rc5 init --dir ../.. --generalInfo cmd/server/main.go --output ../../docs --outputTypes go --overridesFile ../../.swaggo --parseInternal

//	@title			Ledger API
//	@version		1.0
//	@description	Revenue, expense and owner distribution ledger.

//	@license.name	Apache 2.0
//	@license.url	http://www.apache.org/licenses/LICENSE-2.0.html

//	@host		localhost:8080
//	@BasePath	/api/v1

//	@securityDefinitions.apikey	ActorID
//	@in							header
//	@name						X-User-ID
//	@description				Acting user recorded on every mutation. Required on POST and DELETE.

//	@externalDocs.description	OpenAPI
//	@externalDocs.url			https://swagger.io/resources/open-api/

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(logger.ForEnvironment(cfg.App.Env, cfg.Log.Level, cfg.Log.Format, cfg.Log.Output))
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting ledger service",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	ctx := context.Background()

	// Telemetry
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
		ExportInterval:    cfg.Telemetry.MetricsInterval,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize meter provider", zap.Error(err))
	}
	logsProvider, err := telemetry.NewLoggerProvider(ctx, telemetry.LogsConfig{
		Enabled:           cfg.Telemetry.Enabled && cfg.Telemetry.LogsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize logger provider", zap.Error(err))
	}
	if logsProvider.Enabled() {
		log = logger.Tee(log, logsProvider.Core(logger.ParseLevel(cfg.Log.Level)))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := logsProvider.Shutdown(shutdownCtx); err != nil {
			log.Error("Error shutting down logger provider", zap.Error(err))
		}
		if err := meterProvider.Shutdown(shutdownCtx); err != nil {
			log.Error("Error shutting down meter provider", zap.Error(err))
		}
		if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
			log.Error("Error shutting down tracer provider", zap.Error(err))
		}
	}()

	meter := meterProvider.Meter(cfg.Telemetry.ServiceName)
	ledgerMetrics, err := telemetry.NewLedgerMetrics(telemetry.LedgerMetricsConfig{Meter: meter})
	if err != nil {
		log.Fatal("Failed to register ledger metrics", zap.Error(err))
	}

	// Database
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level), cfg.Telemetry.DBSlowQueryThresh)
	db, err := persistence.NewDatabase(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	dbTracing := telemetry.NewDBTracingPlugin(telemetry.DBTracingConfig{
		Enabled:         cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled,
		LogFullSQL:      cfg.Telemetry.DBLogFullSQL,
		SlowQueryThresh: cfg.Telemetry.DBSlowQueryThresh,
		DBSystem:        "postgresql",
	}, log)
	if err := dbTracing.Register(db.DB); err != nil {
		log.Fatal("Failed to register database tracing", zap.Error(err))
	}
	log.Info("Database connected successfully")

	// Idempotency
	var idempotencyStore shared.IdempotencyStore
	if cfg.Idempotency.Enabled {
		factory := cache.NewIdempotencyStoreFactory(cfg.Idempotency, cfg.Redis,
			cache.WithLogger(log),
			cache.WithInMemoryFallback(cfg.App.Env != "production"),
		)
		idempotencyStore, err = factory.CreateStore(ctx)
		if err != nil {
			log.Fatal("Failed to create idempotency store", zap.Error(err))
		}
		defer func() {
			if err := idempotencyStore.Close(); err != nil {
				log.Error("Error closing idempotency store", zap.Error(err))
			}
		}()
	}

	// Ledger
	pool, err := ledger.NewOwnerPool(cfg.Ledger.Owners, cfg.Ledger.IneligibleOwners)
	if err != nil {
		log.Fatal("Invalid owner pool", zap.Error(err))
	}
	log.Info("Owner pool loaded",
		zap.Strings("owners", pool.Names()),
		zap.Strings("ineligible", cfg.Ledger.IneligibleOwners),
	)

	orderRepo := persistence.NewGormOrderRepository(db.DB)
	salaryRepo := persistence.NewGormSalaryPaymentRepository(db.DB)
	expenseRepo := persistence.NewGormExpenseRepository(db.DB)
	savingsRepo := persistence.NewGormBankSavingsRepository(db.DB)
	recordRepo := persistence.NewGormDistributionRecordRepository(db.DB)

	serviceOpts := []ledgerapp.Option{
		ledgerapp.WithLogger(log),
		ledgerapp.WithMetrics(ledgerMetrics),
	}
	aggregationService := ledgerapp.NewAggregationService(orderRepo, salaryRepo, expenseRepo, serviceOpts...)
	expenseService := ledgerapp.NewExpenseService(expenseRepo, pool, serviceOpts...)
	savingsService := ledgerapp.NewBankSavingsService(savingsRepo, aggregationService, serviceOpts...)
	statementRenderer := printing.NewStatementRenderer(printing.StatementConfig{
		Title:    cfg.App.Name + " Distribution Statement",
		Currency: cfg.Ledger.Currency,
	})
	distributionService := ledgerapp.NewDistributionService(
		aggregationService, savingsService, expenseRepo, recordRepo, pool, statementRenderer, serviceOpts...,
	)

	// HTTP
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		log.Fatal("Invalid trusted proxies", zap.Error(err))
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
	securityConfig.HSTSEnabled = cfg.App.Env == "production"

	// Order matters: the request ID and actor must be on the context before
	// the logger and span annotator read them.
	engine.Use(
		middleware.RequestID(),
		logger.Recovery(log),
		logger.GinMiddleware(log),
		middleware.Tracing(cfg.Telemetry.ServiceName, cfg.Telemetry.Enabled),
		middleware.Actor(),
		middleware.SpanAnnotator(),
		middleware.HTTPMetrics(meter),
		middleware.Secure(securityConfig),
		middleware.CORSWithConfig(corsConfig),
		middleware.BodyLimit(middleware.DefaultMaxBodyBytes),
	)

	routerOpts := []router.Option{
		router.WithHealth(handler.NewHealthHandler(db, cfg.App.Name)),
		router.WithSwagger(middleware.SwaggerConfig{
			Enabled:    cfg.Swagger.Enabled,
			AllowedIPs: cfg.Swagger.AllowedIPs,
		}),
	}
	if idempotencyStore != nil {
		routerOpts = append(routerOpts, router.WithIdempotency(idempotencyStore, cfg.Idempotency.TTL))
	}
	router.New(engine, routerOpts...).
		Register(
			router.LedgerRoutes{Handler: handler.NewLedgerHandler(aggregationService)},
			router.ExpenseRoutes{Handler: handler.NewExpenseHandler(expenseService)},
			router.BankSavingsRoutes{Handler: handler.NewBankSavingsHandler(savingsService)},
			router.DistributionRoutes{Handler: handler.NewDistributionHandler(distributionService)},
		).
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
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
		return
	}

	log.Info("Server exited gracefully")
}
