package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"confgate/internal/config"
	apierrors "confgate/internal/errors"
	"confgate/internal/infrastructure"
	customMiddleware "confgate/internal/middleware"
	"confgate/internal/services"
	handlers "confgate/internal/transport/http"
)

// Application represents the main application container
type Application struct {
	Settings      *Settings
	Config        *config.Service
	Router        *chi.Mux
	Server        *http.Server
	Logger        *slog.Logger
	OTelProviders *infrastructure.OTelProviders
	HealthService *services.HealthService
	ConfigService *services.ConfigService

	errorHandler *apierrors.ErrorHandler
	resolutions  *infrastructure.ResolutionMetrics
	listener     net.Listener
}

// NewApplication resolves the schema through svc and wires the HTTP server.
// An invalid value for any registered key aborts startup; absent required
// keys only fail readiness.
func NewApplication(svc *config.Service) (*Application, error) {
	settings, err := LoadSettings()
	if err != nil {
		return nil, apierrors.NewConfigError("failed to load settings", err)
	}

	loggingConfig, err := infrastructure.LoadLoggingConfig(svc)
	if err != nil {
		return nil, apierrors.NewConfigError("failed to load logging configuration", err)
	}
	logger, err := infrastructure.InitializeLogger(loggingConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	logger.Info("Application starting",
		slog.String("name", config.AppName),
		slog.String("version", config.AppVersion),
		slog.String("log_level", loggingConfig.Level))

	otelConfig, err := infrastructure.LoadOTelConfig()
	if err != nil {
		return nil, apierrors.NewConfigError("failed to load telemetry configuration", err)
	}
	providers, err := infrastructure.InitializeOTel(otelConfig, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}

	a := &Application{
		Settings:      settings,
		Config:        svc,
		Logger:        logger,
		OTelProviders: providers,
		HealthService: services.NewHealthService(config.AppVersion, svc, settings.RequiredKeys, settings.ReadyTimeout, logger),
		ConfigService: services.NewConfigService(svc, logger),
		errorHandler:  apierrors.NewErrorHandler(logger, settings.IncludeStack),
	}

	a.resolutions, err = infrastructure.CreateResolutionMetrics(providers.Meter)
	if err != nil {
		logger.Warn("Failed to create resolution metrics", slog.String("error", err.Error()))
	}

	if err := a.resolveConfig(context.Background()); err != nil {
		// Flush whatever telemetry the failed startup produced.
		_ = providers.Shutdown(context.Background())
		return nil, apierrors.NewConfigError("invalid configuration", err)
	}

	a.setupRouter()
	a.createServer()

	return a, nil
}

// resolveConfig checks every registered key once, records the outcome and
// copies the values the process uses into Settings.
func (a *Application) resolveConfig(ctx context.Context) error {
	ctx = infrastructure.EnsureTraceID(ctx)
	ctx, span := a.OTelProviders.Tracer.Start(ctx, "config.resolve")
	defer span.End()

	var errs []error
	reports := a.ConfigService.Check(ctx, nil, a.Settings.RequiredKeys, false)
	for _, report := range reports {
		a.resolutions.RecordResolution(ctx, report.Key, string(report.State))
		switch report.State {
		case services.StateInvalid:
			_, err := a.Config.Get(report.Key)
			errs = append(errs, err)
		case services.StateUnset:
			if report.Required {
				a.Logger.WarnContext(ctx, "Required key is not set", slog.String("key", report.Key))
			}
		}
	}
	span.SetAttributes(attribute.Int("config.keys", len(reports)))

	if err := errors.Join(errs...); err != nil {
		infrastructure.RecordError(ctx, err)
		return err
	}

	var err error
	s := a.Settings
	if s.Port, err = a.Config.GetInt(config.KeyPort); err != nil {
		return err
	}
	if s.OtherAPIURL, err = a.Config.GetString(config.KeyOtherAPIURL); err != nil {
		return err
	}
	if s.AdminClientID, err = a.Config.GetString(config.KeyAdminClientID); err != nil {
		return err
	}
	if s.AdminClientSecret, err = a.Config.GetString(config.KeyAdminClientSecret); err != nil {
		return err
	}
	if s.FeatureFlipping, err = a.Config.GetBool(config.KeyFeatureFlipping); err != nil {
		return err
	}

	a.Logger.InfoContext(ctx, "Configuration resolved",
		slog.Int("keys", len(reports)),
		slog.Int("port", s.Port),
		slog.String("other_api_url", s.OtherAPIURL),
		slog.Bool("feature_flipping", s.FeatureFlipping))
	return nil
}

// setupRouter configures the router, its middleware and routes
func (a *Application) setupRouter() {
	r := chi.NewRouter()

	r.NotFound(a.errorHandler.NotFound)
	r.MethodNotAllowed(a.errorHandler.MethodNotAllowed)

	r.Use(customMiddleware.RequestID)
	if a.Settings.RequireHTTPS {
		r.Use(customMiddleware.RequireHTTPS)
	}

	r.Group(func(r chi.Router) {
		// Order: OTel → Logger → Recoverer → SecurityHeaders → RateLimit
		otelMiddleware, err := customMiddleware.NewOTelMiddleware(a.OTelProviders)
		if err != nil {
			a.Logger.Error("Failed to create OpenTelemetry middleware", slog.String("error", err.Error()))
		} else {
			r.Use(otelMiddleware.Handler)
		}

		r.Use(customMiddleware.StructuredLogger(a.Logger))
		r.Use(a.errorHandler.Recoverer)
		r.Use(customMiddleware.SecurityHeaders)

		if a.Settings.RateLimitEnabled {
			r.Use(customMiddleware.NewRateLimiter(
				a.Settings.RateLimitRPS,
				a.Settings.RateLimitBurst,
				a.Logger,
			).Handler)
		}

		a.setupAPIRoutes(r)
	})

	r.Handle(config.MetricsEndpoint, a.OTelProviders.PrometheusHTTP)

	a.Router = r
}

// setupAPIRoutes configures API endpoints
func (a *Application) setupAPIRoutes(r chi.Router) {
	health := handlers.NewHealthHandler(a.HealthService, a.errorHandler, a.Logger)
	configHandler := handlers.NewConfigHandler(a.ConfigService, a.Settings.RequiredKeys, a.errorHandler, a.Logger)

	r.Route(config.APIBasePath, func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))

		r.Get("/", health.Hello)
		r.Get("/health", health.HealthCheck)
		r.Get("/health/ready", health.ReadinessCheck)
		r.Get("/health/live", health.LivenessCheck)
		r.Get("/version", health.Version)
		r.Mount("/config", configHandler.Routes())
	})
}

// createServer creates the HTTP server
func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:         a.Settings.Addr(),
		Handler:      a.Router,
		ReadTimeout:  a.Settings.ReadTimeout,
		WriteTimeout: a.Settings.WriteTimeout,
		IdleTimeout:  a.Settings.IdleTimeout,
	}
}

// Listen binds the server address. Run calls it when it has not been called.
func (a *Application) Listen() error {
	if a.listener != nil {
		return nil
	}
	ln, err := net.Listen("tcp", a.Server.Addr)
	if err != nil {
		return apierrors.NewNetworkError("failed to listen on "+a.Server.Addr, err)
	}
	a.listener = ln
	return nil
}

// Addr returns the bound address, or an empty string before Listen.
func (a *Application) Addr() string {
	if a.listener == nil {
		return ""
	}
	return a.listener.Addr().String()
}

// Run serves until ctx is cancelled or the process receives SIGINT or
// SIGTERM, then shuts down gracefully.
func (a *Application) Run(ctx context.Context) error {
	if err := a.Listen(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	a.Logger.InfoContext(ctx, "Application started",
		slog.String("address", a.Addr()),
		slog.Int("required_keys", len(a.Settings.RequiredKeys)))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := a.Server.Serve(a.listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		a.Logger.InfoContext(ctx, "Received shutdown signal")
		return a.Stop(context.WithoutCancel(ctx))
	})
	return g.Wait()
}

// Stop gracefully stops the application
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "Shutting down application")

	shutdownCtx, cancel := context.WithTimeout(ctx, a.Settings.ShutdownTimeout)
	defer cancel()

	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	if a.OTelProviders != nil {
		if err := a.OTelProviders.Shutdown(shutdownCtx); err != nil {
			a.Logger.ErrorContext(ctx, "Error shutting down OpenTelemetry", slog.String("error", err.Error()))
		}
	}

	a.Logger.InfoContext(ctx, "Application shutdown complete")
	return infrastructure.CloseLogFile()
}
