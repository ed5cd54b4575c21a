// Package server assembles the gatekeeper pipeline into an HTTP
// server: recovery, request ID, logging, metrics, security headers,
// CORS and rate limit key derivation, in that order, around whatever
// application handlers the host registers.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"

	"github.com/edgegard/gatekeeper/internal/config"
	"github.com/edgegard/gatekeeper/internal/health"
	"github.com/edgegard/gatekeeper/internal/middleware"
	"github.com/edgegard/gatekeeper/internal/observability"
	"github.com/edgegard/gatekeeper/internal/origin"
	"github.com/edgegard/gatekeeper/internal/ratelimit"
	"github.com/edgegard/gatekeeper/internal/sanitize"
)

// ginModeOnce ensures gin.SetMode is only called once to avoid race
// conditions.
var ginModeOnce sync.Once

// Server is the gatekeeper HTTP server.
type Server struct {
	engine     *gin.Engine
	httpServer *http.Server
	cfg        *config.Config
	logger     observability.Logger
	metrics    *observability.Metrics
	checker    *health.Checker
	sanitizer  *sanitize.Sanitizer
	mu         sync.Mutex
	running    bool
}

// Option configures the server.
type Option func(*Server)

// WithVersion stamps the build version into the health probes.
func WithVersion(version string) Option {
	return func(s *Server) {
		s.checker = health.NewChecker(version)
	}
}

// New creates a Server from validated configuration. The origin
// policy, key deriver and header values are built once here and shared
// read-only across requests.
func New(cfg *config.Config, logger observability.Logger, metrics *observability.Metrics, opts ...Option) *Server {
	if logger == nil {
		logger = observability.NopLogger()
	}

	ginModeOnce.Do(func() {
		gin.SetMode(gin.ReleaseMode)
	})

	engine := gin.New()

	policy := origin.NewPolicy(cfg.CORS.AllowOrigins)
	deriver := ratelimit.NewKeyDeriver(
		ratelimit.NewClientIPExtractor(cfg.RateLimitKey.TrustedProxies),
		cfg.RateLimitKey.IdentityHeader,
	)

	engine.Use(
		middleware.RecoveryWithConfig(middleware.RecoveryConfig{
			Logger:           logger,
			EnableStackTrace: true,
		}),
		middleware.RequestID(),
		middleware.LoggingWithConfig(middleware.LoggingConfig{
			Logger:    logger,
			SkipPaths: []string{"/healthz", "/readyz", "/metrics"},
		}),
		middleware.Metrics(metrics),
		middleware.SecurityHeadersWithConfig(middleware.SecurityConfig{
			HSTSMaxAge:            cfg.Security.HSTS.MaxAge,
			HSTSIncludeSubDomains: cfg.Security.HSTS.IncludeSubDomains,
			CSP:                   cspPolicy(cfg.Security.CSP),
			Metrics:               metrics,
		}),
		middleware.CORSWithConfig(middleware.CORSConfig{
			Policy:           policy,
			AllowCredentials: cfg.CORS.AllowCredentials,
			MaxAge:           cfg.CORS.MaxAge,
			Metrics:          metrics,
		}),
		middleware.RateLimitKeyWithConfig(middleware.RateLimitKeyConfig{
			Deriver: deriver,
			Metrics: metrics,
		}),
	)

	var sanitizeOpts []sanitize.Option
	if metrics != nil {
		sanitizeOpts = append(sanitizeOpts, sanitize.WithCleanHook(metrics.RecordFieldSanitized))
	}

	s := &Server{
		engine:    engine,
		cfg:       cfg,
		logger:    logger,
		metrics:   metrics,
		checker:   health.NewChecker("dev"),
		sanitizer: sanitize.New(cfg.Sanitize.Denylist, sanitizeOpts...),
	}
	for _, opt := range opts {
		opt(s)
	}

	engine.GET("/healthz", s.checker.LivenessHandler())
	engine.GET("/readyz", s.checker.ReadinessHandler())
	if metrics != nil {
		engine.GET("/metrics", gin.WrapH(metrics.Handler()))
	}

	return s
}

// cspPolicy maps the configuration directive lists onto the middleware
// policy.
func cspPolicy(cfg config.CSPConfig) middleware.CSPPolicy {
	return middleware.CSPPolicy{
		DefaultSrc: cfg.DefaultSrc,
		ScriptSrc:  cfg.ScriptSrc,
		StyleSrc:   cfg.StyleSrc,
		FontSrc:    cfg.FontSrc,
		ImgSrc:     cfg.ImgSrc,
		ConnectSrc: cfg.ConnectSrc,
		FrameSrc:   cfg.FrameSrc,
		ObjectSrc:  cfg.ObjectSrc,
		BaseURI:    cfg.BaseURI,
		FormAction: cfg.FormAction,
	}
}

// Engine returns the underlying gin engine so the host can register
// application routes behind the gatekeeper pipeline.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// Handle registers an application handler behind the pipeline.
func (s *Server) Handle(method, path string, handlers ...gin.HandlerFunc) {
	s.engine.Handle(method, path, handlers...)
}

// Sanitizer returns the configured input sanitizer for application
// handlers to clean free-text fields with.
func (s *Server) Sanitizer() *sanitize.Sanitizer {
	return s.sanitizer
}

// Start runs the server until ctx is cancelled or the listener fails.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return fmt.Errorf("server already running")
	}

	s.httpServer = &http.Server{
		Addr:         s.cfg.Server.ListenAddress,
		Handler:      s.engine,
		ReadTimeout:  s.cfg.Server.ReadTimeout.Duration(),
		WriteTimeout: s.cfg.Server.WriteTimeout.Duration(),
		IdleTimeout:  s.cfg.Server.IdleTimeout.Duration(),
	}
	s.running = true
	s.mu.Unlock()

	s.logger.Info("starting gatekeeper",
		observability.String("address", s.cfg.Server.ListenAddress),
	)

	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		return s.Shutdown(context.Background())
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	}
}

// Shutdown gracefully drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running || s.httpServer == nil {
		return nil
	}
	s.running = false
	s.checker.SetDraining(true)

	shutdownCtx, cancel := context.WithTimeout(ctx, s.cfg.Server.ShutdownTimeout.Duration())
	defer cancel()

	s.logger.Info("shutting down gatekeeper")
	return s.httpServer.Shutdown(shutdownCtx)
}
