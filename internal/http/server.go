// Package http provides the HTTP server implementation: routing, middleware,
// and lifecycle for the authorization API and the metrics endpoint.
package http

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"

	authzhttp "github.com/capgate/capgate/internal/authz/http"
	"github.com/capgate/capgate/internal/metrics"
)

// Options controls the optional middleware of the API server.
type Options struct {
	CORSEnabled      bool
	CORSAllowOrigins string

	RateLimitEnabled bool
	RateLimitRPS     float64
	RateLimitBurst   int

	// MetricsProvider enables per-request HTTP metrics when set.
	MetricsProvider  *metrics.Provider
	MetricsNamespace string
}

// Server represents the authorization API server.
type Server struct {
	server *http.Server
	router *gin.Engine
	logger *slog.Logger
	ready  atomic.Bool
}

// NewServer creates a new API server and wires the full route table.
func NewServer(
	host string,
	port int,
	logger *slog.Logger,
	authzHandler *authzhttp.AuthzHandler,
	opts Options,
) *Server {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestid.New())
	router.Use(CustomLoggerMiddleware(logger))

	if corsMiddleware := createCORSMiddleware(opts.CORSEnabled, opts.CORSAllowOrigins, logger); corsMiddleware != nil {
		router.Use(corsMiddleware)
	}

	if opts.RateLimitEnabled {
		router.Use(RateLimitMiddleware(opts.RateLimitRPS, opts.RateLimitBurst, logger))
	}

	if opts.MetricsProvider != nil {
		router.Use(metrics.HTTPMetricsMiddleware(opts.MetricsProvider.MeterProvider(), opts.MetricsNamespace))
	}

	server := &Server{
		server: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", host, port),
			Handler:      router,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		router: router,
		logger: logger,
	}

	server.ready.Store(true)

	router.GET("/health", healthHandler)
	router.GET("/ready", server.readyHandler)

	v1 := router.Group("/v1")
	{
		v1.POST("/authorize", authzHandler.AuthorizeHandler)
		v1.GET("/capabilities", authzHandler.ListCapabilitiesHandler)
		v1.GET("/policies", authzHandler.ListPoliciesHandler)
		v1.POST("/reload", authzHandler.ReloadHandler)
	}

	return server
}

// GetHandler returns the http.Handler for testing purposes.
func (s *Server) GetHandler() http.Handler {
	return s.router
}

// Start starts the API server and blocks until it stops.
func (s *Server) Start(ctx context.Context) error {
	s.logger.Info("starting http server", slog.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the API server. In-flight requests get until
// the context deadline to complete; /ready starts failing immediately so load
// balancers stop routing new traffic.
func (s *Server) Shutdown(ctx context.Context) error {
	s.ready.Store(false)
	s.logger.Info("shutting down http server")
	return s.server.Shutdown(ctx)
}

// healthHandler reports process liveness.
func healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// readyHandler reports whether the server accepts new traffic.
func (s *Server) readyHandler(c *gin.Context) {
	if !s.ready.Load() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not ready"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}
