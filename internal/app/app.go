package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/ugc-dashboard/reporting/internal/config"
	httpcontroller "github.com/ugc-dashboard/reporting/internal/controller/http"
	"github.com/ugc-dashboard/reporting/internal/database"
	"github.com/ugc-dashboard/reporting/internal/delivery"
	"github.com/ugc-dashboard/reporting/internal/document"
	"github.com/ugc-dashboard/reporting/internal/domain/report/dao"
	"github.com/ugc-dashboard/reporting/internal/domain/report/policy"
	"github.com/ugc-dashboard/reporting/internal/domain/report/scheduler"
	"github.com/ugc-dashboard/reporting/internal/domain/report/service"
	"github.com/ugc-dashboard/reporting/internal/httpx/response"
	"github.com/ugc-dashboard/reporting/internal/httpx/upstream/actor"
	"github.com/ugc-dashboard/reporting/internal/httpx/upstream/capture"
	"github.com/ugc-dashboard/reporting/internal/httpx/upstream/llm"
	"github.com/ugc-dashboard/reporting/internal/logging"
	"github.com/ugc-dashboard/reporting/internal/storage"
)

// App is the main application container
type App struct {
	cfg        config.Config
	httpServer *http.Server
	router     *chi.Mux
	logger     zerolog.Logger

	// Infrastructure
	pool    *pgxpool.Pool
	storage *storage.S3Storage

	// Domain policies (interfaces for HTTP handlers)
	reportPolicy *policy.Policy

	// Scheduler for weekly report generation
	scheduler *scheduler.Scheduler
}

// NewApp creates and initializes the application
func NewApp(ctx context.Context, cfg config.Config) (*App, error) {
	logger := logging.New(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format}, os.Stdout)

	// Initialize router with middleware
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(logging.Middleware(logger))
	r.Use(middleware.Timeout(cfg.Server.RequestTimeout))

	app := &App{
		cfg:    cfg,
		router: r,
		logger: logger,
	}

	// Initialize infrastructure
	if err := app.initInfrastructure(ctx); err != nil {
		return nil, fmt.Errorf("initializing infrastructure: %w", err)
	}

	// Initialize domain layers
	if err := app.initDomains(ctx); err != nil {
		app.closeInfrastructure()
		return nil, fmt.Errorf("initializing domains: %w", err)
	}

	// Register routes
	app.registerRoutes()

	// Initialize HTTP server
	app.httpServer = &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      app.router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Initialize scheduler
	if cfg.Scheduler.Enabled {
		app.scheduler = scheduler.New(app.reportPolicy, cfg.Scheduler.Interval, logger)
	}

	return app, nil
}

// initInfrastructure initializes infrastructure components (Postgres, S3)
func (a *App) initInfrastructure(ctx context.Context) error {
	pool, err := database.NewPostgresPool(ctx, a.cfg.Database.PostgresDSN, database.PoolConfig{
		MaxConns:     int32(a.cfg.Database.MaxOpenConns),
		MinConns:     int32(a.cfg.Database.MaxIdleConns),
		ConnLifetime: a.cfg.Database.ConnLifetime,
	})
	if err != nil {
		return fmt.Errorf("connecting to postgres: %w", err)
	}
	a.pool = pool

	if a.cfg.Database.AutoMigrate {
		if err := database.Migrate(ctx, pool); err != nil {
			pool.Close()
			return fmt.Errorf("running migrations: %w", err)
		}
	}

	if a.cfg.S3.Enabled {
		a.storage = storage.NewS3Storage(storage.S3Config{
			Endpoint:        a.cfg.S3.Endpoint,
			AccessKeyID:     a.cfg.S3.AccessKeyID,
			SecretAccessKey: a.cfg.S3.SecretAccessKey,
			Bucket:          a.cfg.S3.Bucket,
			Region:          a.cfg.S3.Region,
			PublicURL:       a.cfg.S3.PublicURL,
			Prefix:          a.cfg.S3.Prefix,
		})
	}

	return nil
}

// initDomains initializes domain layers (DAO, Service, Policy)
func (a *App) initDomains(_ context.Context) error {
	builder, err := a.newBuilder()
	if err != nil {
		return err
	}

	svc := service.New(dao.NewReportPostgres(a.pool), dao.NewContentPostgres(a.pool))

	opts := []policy.Option{policy.WithLogger(a.logger)}
	if a.cfg.Actor.Token != "" {
		client := actor.New(a.cfg.Actor.Token,
			actor.WithBaseURL(a.cfg.Actor.BaseURL),
			actor.WithActor(actor.PlatformInstagram, a.cfg.Actor.InstagramActor),
			actor.WithActor(actor.PlatformTikTok, a.cfg.Actor.TikTokActor),
			actor.WithRateLimit(a.cfg.Actor.RunsPerSecond, a.cfg.Actor.Burst),
			actor.WithHTTPClient(&http.Client{Timeout: a.cfg.Actor.Timeout}),
		)
		opts = append(opts, policy.WithCollector(&collectorAdapter{runner: client}))
	}
	if a.cfg.LLM.APIKey != "" {
		client := llm.NewClient(a.cfg.LLM.APIKey,
			llm.WithBaseURL(a.cfg.LLM.BaseURL),
			llm.WithModel(a.cfg.LLM.Model),
			llm.WithHTTPClient(&http.Client{Timeout: a.cfg.LLM.Timeout}),
		)
		opts = append(opts, policy.WithRecommender(policy.NewLLMRecommender(&completerAdapter{
			client:      client,
			temperature: a.cfg.LLM.Temperature,
			maxTokens:   a.cfg.LLM.MaxTokens,
		})))
	}

	a.reportPolicy = policy.New(svc, builder, a.newDeliverer(), opts...)
	return nil
}

func (a *App) newBuilder() (*document.Builder, error) {
	size, err := document.ParsePageSize(a.cfg.Report.PageSize)
	if err != nil {
		return nil, fmt.Errorf("report page size: %w", err)
	}

	opts := []document.Option{
		document.WithPageSize(size),
		document.WithAttribution(a.cfg.Report.Attribution),
		document.WithLogger(a.logger),
	}
	if a.cfg.Capture.BaseURL != "" {
		client := capture.New(
			capture.WithBaseURL(a.cfg.Capture.BaseURL),
			capture.WithAPIKey(a.cfg.Capture.APIKey),
			capture.WithViewportWidth(a.cfg.Capture.ViewportWidth),
			capture.WithHTTPClient(&http.Client{Timeout: a.cfg.Capture.Timeout}),
		)
		guarded := capture.NewBreakerClient(client, capture.BreakerSettings{
			MinRequests:  a.cfg.Capture.BreakerMinCalls,
			FailureRatio: a.cfg.Capture.BreakerRatio,
			Timeout:      a.cfg.Capture.BreakerCooldown,
		}, a.logger)
		opts = append(opts, document.WithCapturer(&captureAdapter{capturer: guarded}))
	}

	return document.NewBuilder(opts...), nil
}

func (a *App) newDeliverer() *delivery.Chain {
	opts := []delivery.ChainOption{delivery.WithLogger(a.logger)}
	if a.storage != nil {
		opts = append(opts, delivery.Then(string(delivery.MethodStorage), delivery.NewStorageDeliverer(a.storage)))
	}
	opts = append(opts, delivery.Then(string(delivery.MethodInline), delivery.InlineDeliverer{}))
	return delivery.NewChain(opts...)
}

// registerRoutes registers all HTTP routes
func (a *App) registerRoutes() {
	// Health check
	a.router.Get("/healthz", a.healthHandler)
	a.router.Get("/readyz", a.readyHandler)
	a.router.Handle("/metrics", promhttp.Handler())

	// Swagger UI documentation
	swaggerHandler := httpcontroller.NewSwaggerHandler("UGC Reporting API", OpenAPISpec)
	swaggerHandler.RegisterRoutes(a.router)

	// API v1
	a.router.Route("/api/v1", func(r chi.Router) {
		httpcontroller.NewReportHandler(a.reportPolicy).RegisterRoutes(r)
		httpcontroller.NewContentHandler(a.reportPolicy).RegisterRoutes(r)
	})
}

// healthHandler handles health check requests
func (a *App) healthHandler(w http.ResponseWriter, _ *http.Request) {
	response.OK(w, map[string]string{"status": "ok"})
}

// readyHandler checks database and storage connectivity
func (a *App) readyHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	if err := a.pool.Ping(ctx); err != nil {
		zerolog.Ctx(r.Context()).Warn().Err(err).Msg("database not ready")
		response.ServiceUnavailable(w, "database unavailable")
		return
	}
	if a.storage != nil {
		if err := a.storage.Ping(ctx); err != nil {
			zerolog.Ctx(r.Context()).Warn().Err(err).Msg("storage not ready")
			response.ServiceUnavailable(w, "storage unavailable")
			return
		}
	}
	response.OK(w, map[string]string{"status": "ready"})
}

// Run starts the application and blocks until shutdown signal
func (a *App) Run(ctx context.Context) error {
	// Start scheduler if enabled
	if a.scheduler != nil {
		go a.scheduler.Start(ctx)
	}

	// Channel to receive errors from server
	errCh := make(chan error, 1)

	// Start HTTP server in goroutine
	go func() {
		a.logger.Info().Str("addr", a.cfg.Server.Address()).Msg("starting HTTP server")
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case sig := <-quit:
		a.logger.Info().Str("signal", sig.String()).Msg("received shutdown signal")
	case <-ctx.Done():
		a.logger.Info().Msg("context cancelled")
	}

	// Graceful shutdown
	return a.Shutdown(context.Background())
}

// Shutdown gracefully shuts down the application
func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Info().Msg("shutting down...")

	// Stop scheduler
	if a.scheduler != nil {
		a.scheduler.Stop()
	}

	// Shutdown HTTP server with timeout
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down HTTP server: %w", err)
	}

	a.closeInfrastructure()

	a.logger.Info().Msg("shutdown complete")
	return nil
}

func (a *App) closeInfrastructure() {
	if a.pool != nil {
		a.pool.Close()
	}
}
