package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/Omega248/kintsugi-dashboard-sub000/internal/config"
	apperrors "github.com/Omega248/kintsugi-dashboard-sub000/internal/errors"
	"github.com/Omega248/kintsugi-dashboard-sub000/internal/infrastructure"
	customMiddleware "github.com/Omega248/kintsugi-dashboard-sub000/internal/middleware"
	"github.com/Omega248/kintsugi-dashboard-sub000/internal/services"
	"github.com/Omega248/kintsugi-dashboard-sub000/internal/source"
	handlers "github.com/Omega248/kintsugi-dashboard-sub000/internal/transport/http"
	"github.com/Omega248/kintsugi-dashboard-sub000/pkg/contracts"
)

// AppName is logged at startup
const AppName = "Kintsugi Dashboard"

// Application represents the main application container
type Application struct {
	Config        *config.Config
	Router        *chi.Mux
	Server        *http.Server
	Logger        *slog.Logger
	Telemetry     *infrastructure.Telemetry
	Pipeline      *Pipeline
	HealthService *services.HealthService
	Scheduler     *source.Scheduler

	closeLogger func() error
}

// NewApplication loads the configuration at configPath (or the usual
// locations when empty) and wires every component
func NewApplication(configPath string) (*Application, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, closeLogger, err := infrastructure.NewLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	logger.Info("Application starting",
		slog.String("name", AppName),
		slog.String("version", contracts.Version))

	tel, err := infrastructure.InitializeOTel(cfg.Telemetry, logger)
	if err != nil {
		_ = closeLogger()
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}

	return newApplication(cfg, logger, closeLogger, tel)
}

// newApplication finishes wiring once the ambient stack exists
func newApplication(cfg *config.Config, logger *slog.Logger, closeLogger func() error, tel *infrastructure.Telemetry) (*Application, error) {
	app := &Application{
		Config:      cfg,
		Logger:      logger,
		Telemetry:   tel,
		closeLogger: closeLogger,
	}

	if err := app.initializeServices(); err != nil {
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	app.setupRouter()
	app.createServer()

	return app, nil
}

// initializeServices builds the pipeline and the services on top of it
func (a *Application) initializeServices() error {
	pipeline, err := NewPipeline(context.Background(), a.Config, a.Telemetry, a.Logger)
	if err != nil {
		return err
	}
	a.Pipeline = pipeline

	a.HealthService = services.NewHealthService(contracts.Version, pipeline.Cache,
		infrastructure.WithComponent(a.Logger, "health_service"))

	if spec := a.Config.Source.RefreshSchedule; spec != "" {
		scheduler, err := source.NewScheduler(spec, pipeline.Cache, pipeline.Location,
			a.Config.Source.FetchTimeout*3, a.Logger)
		if err != nil {
			return err
		}
		a.Scheduler = scheduler
	}

	return nil
}

// setupRouter configures the middleware chain and routes.
// Order: RequestID → RealIP → OTel → Logger → Recoverer → headers → RateLimiter.
func (a *Application) setupRouter() {
	r := chi.NewRouter()
	errorHandler := apperrors.NewErrorHandler(a.Logger)

	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.RealIP)
	r.Use(customMiddleware.StripSlashes)

	r.NotFound(errorHandler.NotFound)
	r.MethodNotAllowed(errorHandler.MethodNotAllowed)

	r.Group(func(r chi.Router) {
		otelMiddleware, err := customMiddleware.NewOTelMiddleware(a.Telemetry, a.Logger)
		if err != nil {
			a.Logger.Error("Failed to create OpenTelemetry middleware", slog.String("error", err.Error()))
		} else {
			r.Use(otelMiddleware.Handler)
		}

		r.Use(customMiddleware.StructuredLogger(a.Logger))
		r.Use(customMiddleware.Recoverer(a.Logger))
		r.Use(customMiddleware.SecurityHeaders)
		r.Use(customMiddleware.CORS(customMiddleware.CORSConfig{
			AllowedOrigins: a.Config.Security.AllowedOrigins,
			Logger:         a.Logger,
		}))

		if a.Config.Security.RateLimit.Enabled {
			r.Use(customMiddleware.NewRateLimiter(
				a.Config.Security.RateLimit.RPS,
				a.Config.Security.RateLimit.Burst,
				a.Logger,
			).Handler)
		}

		a.setupAPIRoutes(r, errorHandler)
	})

	// Prometheus metrics endpoint, outside the middleware group
	r.Handle("/metrics", a.Telemetry.MetricsHandler())

	a.Router = r
}

// setupAPIRoutes mounts the JSON API under /api
func (a *Application) setupAPIRoutes(r chi.Router, errorHandler *apperrors.ErrorHandler) {
	healthHandler := handlers.NewHealthHandler(a.HealthService, a.Logger)
	dashboardHandler := handlers.NewDashboardHandler(a.Pipeline.Dashboard, a.Pipeline.Location, a.Logger, errorHandler)

	r.Route("/api", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))
		r.Use(customMiddleware.ContentTypeValidator("application/json"))

		healthHandler.Routes(r)

		r.Group(func(r chi.Router) {
			r.Use(customMiddleware.Timeout(a.Config.Server.RequestTimeout, a.Logger))
			dashboardHandler.Routes(r)
		})
	})
}

// createServer creates the HTTP server
func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:         fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler:      a.Router,
		ReadTimeout:  a.Config.Server.ReadTimeout,
		WriteTimeout: a.Config.Server.WriteTimeout,
		IdleTimeout:  a.Config.Server.IdleTimeout,
	}
}

// Start warms the cache, starts the refresh schedule and serves HTTP in the
// background. A listen failure cancels ctx through cancel.
func (a *Application) Start(ctx context.Context, cancel context.CancelFunc) error {
	a.Logger.InfoContext(ctx, "Starting application",
		slog.String("name", AppName),
		slog.String("version", contracts.Version),
		slog.Int("port", a.Config.Server.Port),
		slog.String("source_mode", a.Config.Source.Mode))

	// Failed fetches are served from the empty fallback, so warm-up never fails
	warm := a.Pipeline.Cache.FetchAll(ctx)
	a.Logger.InfoContext(ctx, "Cache warmed",
		slog.Int("orders", len(warm.Orders)),
		slog.Int("payouts", len(warm.Payouts)),
		slog.Int("staff", len(warm.Staff)))

	if a.Scheduler != nil {
		a.Scheduler.Start()
	}

	go func() {
		if err := a.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.Logger.ErrorContext(ctx, "Server error", slog.String("error", err.Error()))
			cancel()
		}
	}()

	a.Logger.InfoContext(ctx, "Application started successfully",
		slog.String("address", fmt.Sprintf("http://localhost:%d", a.Config.Server.Port)))

	return nil
}

// Stop gracefully stops the application
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "Shutting down application")

	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	if a.Scheduler != nil {
		a.Scheduler.Stop(shutdownCtx)
	}

	if a.Telemetry != nil {
		if err := a.Telemetry.Shutdown(shutdownCtx); err != nil {
			a.Logger.ErrorContext(ctx, "Error shutting down OpenTelemetry", slog.String("error", err.Error()))
		}
	}

	a.Logger.InfoContext(ctx, "Application shutdown complete")

	if a.closeLogger != nil {
		return a.closeLogger()
	}
	return nil
}

// Run runs the application until interrupted
func (a *Application) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	if err := a.Start(ctx, cancel); err != nil {
		return err
	}

	select {
	case <-sigChan:
		a.Logger.InfoContext(ctx, "Received interrupt signal")
	case <-ctx.Done():
		a.Logger.WarnContext(ctx, "Server stopped unexpectedly")
	}

	return a.Stop(context.Background())
}
