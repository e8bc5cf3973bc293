package http

import (
	"context"
	stdhttp "net/http"
	"time"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"download-service/internal/auth"
	"download-service/internal/config"
	"download-service/internal/http/handler"
	"download-service/internal/http/middleware"
	"download-service/internal/metrics"
)

const (
	requestBodyLimit     = "1M"
	productionEnv        = "production"
	limiterPruneInterval = time.Minute
)

type ServerDependencies struct {
	Config         *config.Config
	Logger         *zap.Logger
	Downloads      handler.DownloadService
	Profiles       handler.ProfileEnsurer
	AuthMiddleware *auth.Middleware
	HealthChecks   map[string]handler.HealthCheck
	HTTPMetrics    *metrics.HTTPMetrics
	Gatherer       prometheus.Gatherer
}

type Server struct {
	echo            *echo.Echo
	deps            *ServerDependencies
	downloadLimiter *middleware.RateLimiter
}

func NewServer(deps *ServerDependencies) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Logger)

	e.Server.ReadTimeout = deps.Config.Server.ReadTimeout
	e.Server.WriteTimeout = deps.Config.Server.WriteTimeout

	// Request ID first so every log line carries it
	e.Use(middleware.RequestID())
	e.Use(middleware.SecurityHeaders(deps.Config.App.Env == productionEnv))
	e.Use(middleware.RequestLogger(deps.Logger))
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.BodyLimit(requestBodyLimit))
	e.Use(deps.HTTPMetrics.Middleware())

	downloadLimiter := middleware.NewRateLimiter(
		deps.Config.Download.RateLimitPerSecond,
		deps.Config.Download.RateLimitBurst,
	)

	downloadHandler := handler.NewDownloadHandler(deps.Downloads, deps.Config.Download.RedirectByDefault)
	profileHandler := handler.NewProfileHandler(deps.Profiles, deps.Config.Download.RoleLookupTimeout)
	healthHandler := handler.NewHealthHandler(deps.HealthChecks, deps.Logger)

	e.GET("/health", healthHandler.Check)
	if deps.Gatherer != nil {
		e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))
	}

	if deps.Config.App.EnableProfiling {
		registerProfiling(e)
	}

	api := e.Group("/api")
	api.POST("/downloads", downloadHandler.Create, downloadLimiter.Middleware())
	api.GET("/downloads", downloadHandler.Get, downloadLimiter.Middleware())
	api.POST("/profiles/ensure", profileHandler.Ensure, deps.AuthMiddleware.RequireIdentity())

	return &Server{
		echo:            e,
		deps:            deps,
		downloadLimiter: downloadLimiter,
	}
}

// StartBackground launches housekeeping that runs until ctx is done.
func (s *Server) StartBackground(ctx context.Context) {
	s.downloadLimiter.StartPruning(ctx, limiterPruneInterval, middleware.DefaultLimiterIdleTTL)
}

func (s *Server) Start(address string) error {
	return s.echo.Start(address)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() stdhttp.Handler {
	return s.echo
}

// ShutdownTimeout is how long Shutdown may wait for in-flight requests.
func (s *Server) ShutdownTimeout() time.Duration {
	return s.deps.Config.Server.ShutdownTimeout
}
