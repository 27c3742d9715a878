// Package server assembles the gin engine that serves both the HTML pages and
// the JSON API, and runs it until its context is cancelled.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/dmehra2102/prod-golang-projects/saludvital/internal/config"
	v1 "github.com/dmehra2102/prod-golang-projects/saludvital/internal/handler/v1"
	"github.com/dmehra2102/prod-golang-projects/saludvital/internal/handler/web"
	"github.com/dmehra2102/prod-golang-projects/saludvital/internal/middleware"
	"github.com/dmehra2102/prod-golang-projects/saludvital/internal/service"
	"github.com/dmehra2102/prod-golang-projects/saludvital/pkg/metrics"
)

const limiterCleanupInterval = time.Minute

// Deps are the already constructed collaborators the routes need.
type Deps struct {
	Services *service.Services
	Auth     *service.AuthService
	Tokens   middleware.TokenValidator // required when sign-in is enabled
	Metrics  *metrics.Collector
	Clock    service.Clock
	// Ping reports database health for /healthz.
	Ping func(ctx context.Context) error
}

type Server struct {
	cfg     *config.Config
	engine  *gin.Engine
	http    *http.Server
	limiter *middleware.IPRateLimiter
	log     *zap.Logger
}

func New(cfg *config.Config, deps Deps, log *zap.Logger) (*Server, error) {
	if cfg.Auth.Enabled && deps.Tokens == nil {
		return nil, errors.New("sign-in is enabled but no token validator was provided")
	}
	if cfg.App.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		cfg:     cfg,
		engine:  gin.New(),
		limiter: middleware.NewIPRateLimiter(rate.Limit(cfg.RateLimit.RequestsPerSecond), cfg.RateLimit.BurstSize),
		log:     log.Named("server"),
	}
	s.routes(deps)

	s.http = &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      s.engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}
	return s, nil
}

// Handler exposes the engine for in-process tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) routes(deps Deps) {
	r := s.engine
	r.Use(
		middleware.Recovery(s.log),
		middleware.RequestID(),
		middleware.Logger(s.log),
		middleware.SecurityHeaders(),
	)
	if s.cfg.Tracing.Enabled {
		r.Use(middleware.Tracing(s.cfg.Tracing.ServiceName))
	}
	r.Use(
		middleware.Metrics(deps.Metrics),
		middleware.CORS(s.cfg.CORS),
		middleware.RateLimit(s.limiter),
	)
	r.SetHTMLTemplate(web.Templates())

	r.GET("/healthz", s.health(deps.Ping))
	r.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))

	var apiGuards v1.Guards
	var pageGuards web.Guards
	if s.cfg.Auth.Enabled {
		authLimit := middleware.RateLimit(middleware.NewIPRateLimiter(
			rate.Every(time.Minute/time.Duration(max(s.cfg.RateLimit.AuthRequestsPerMinute, 1))),
			max(s.cfg.RateLimit.AuthRequestsPerMinute, 1),
		))
		apiGuards = v1.Guards{Authenticate: middleware.Authenticate(deps.Tokens), AuthLimit: authLimit}
		pageGuards = web.Guards{
			Authenticate: middleware.AuthenticatePage(deps.Tokens, s.cfg.Auth.CookieName, "/login"),
			AuthLimit:    authLimit,
		}
	}

	v1.NewHandler(deps.Services, deps.Auth, deps.Clock, s.log).
		RegisterRoutes(r.Group("/api"), apiGuards)

	web.NewHandler(deps.Services, deps.Auth, deps.Clock, web.Options{
		AuthEnabled:  s.cfg.Auth.Enabled,
		CookieName:   s.cfg.Auth.CookieName,
		CookieSecure: s.cfg.Auth.CookieSecure,
		SessionTTL:   s.cfg.JWT.AccessTokenTTL,
	}, s.log).RegisterRoutes(r, pageGuards)
}

func (s *Server) health(ping func(ctx context.Context) error) gin.HandlerFunc {
	return func(c *gin.Context) {
		if ping != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := ping(ctx); err != nil {
				s.log.Warn("health check failed", zap.Error(err))
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "database": "down"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": s.cfg.App.Name,
			"version": s.cfg.App.Version,
		})
	}
}

// Run serves until ctx is cancelled, then drains in-flight requests within
// the configured shutdown timeout.
func (s *Server) Run(ctx context.Context) error {
	stop := make(chan struct{})
	defer close(stop)
	go s.limiter.RunCleanup(limiterCleanupInterval, stop)

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("http server listening", zap.String("addr", s.http.Addr))
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.log.Info("shutting down http server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := s.http.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down http server: %w", err)
	}
	return nil
}
