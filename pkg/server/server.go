// Package server provides the main HTTP gateway server for nutrition
// lookups.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"macrolog-hq/ceres/pkg/audit"
	"macrolog-hq/ceres/pkg/config"
	"macrolog-hq/ceres/pkg/gateway/handlers"
	"macrolog-hq/ceres/pkg/gateway/middleware"
	"macrolog-hq/ceres/pkg/telemetry/metrics"
)

// Server is the HTTP gateway server fronting the FatSecret API.
type Server struct {
	config       *config.Config
	httpServer   *http.Server
	service      handlers.FoodService
	collector    *metrics.Collector
	recorder     *audit.Recorder
	shutdownChan chan struct{}
	shutdownOnce sync.Once
	mu           sync.RWMutex
	isRunning    bool
}

// NewServer creates a new gateway server. The metrics collector and audit
// recorder may be nil, in which case the corresponding middleware is not
// installed.
func NewServer(cfg *config.Config, service handlers.FoodService, collector *metrics.Collector, recorder *audit.Recorder) *Server {
	return &Server{
		config:       cfg,
		service:      service,
		collector:    collector,
		recorder:     recorder,
		shutdownChan: make(chan struct{}),
		isRunning:    false,
	}
}

// Start starts the HTTP server and blocks until shutdown.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return fmt.Errorf("server is already running")
	}
	s.isRunning = true
	s.mu.Unlock()

	handler := s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:           s.config.Gateway.ListenAddress,
		Handler:        handler,
		ReadTimeout:    s.config.Gateway.ReadTimeout,
		WriteTimeout:   s.config.Gateway.WriteTimeout,
		IdleTimeout:    s.config.Gateway.IdleTimeout,
		MaxHeaderBytes: s.config.Gateway.MaxHeaderBytes,
	}

	errChan := make(chan error, 1)
	go func() {
		slog.Info("starting gateway server",
			"address", s.config.Gateway.ListenAddress,
			"fatsecret_configured", s.service.Configured(),
		)

		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case <-ctx.Done():
		slog.Info("context cancelled, initiating shutdown")
		return s.Shutdown(context.Background())
	case sig := <-sigChan:
		slog.Info("received shutdown signal", "signal", sig.String())
		return s.Shutdown(context.Background())
	case err := <-errChan:
		return err
	case <-s.shutdownChan:
		slog.Info("shutdown requested")
		return s.Shutdown(context.Background())
	}
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.mu.Lock()
		if !s.isRunning {
			s.mu.Unlock()
			return
		}
		s.mu.Unlock()

		slog.Info("initiating graceful shutdown", "timeout", s.config.Gateway.ShutdownTimeout.String())

		shutdownCtx, cancel := context.WithTimeout(ctx, s.config.Gateway.ShutdownTimeout)
		defer cancel()

		if s.httpServer != nil {
			if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
				slog.Error("error during server shutdown", "error", err)
				shutdownErr = fmt.Errorf("server shutdown error: %w", err)
			}
		}

		s.mu.Lock()
		s.isRunning = false
		s.mu.Unlock()

		slog.Info("gateway server stopped")
	})

	return shutdownErr
}

// Stop requests a shutdown from another goroutine. Start returns once the
// shutdown completes.
func (s *Server) Stop() {
	s.mu.RLock()
	running := s.isRunning
	s.mu.RUnlock()
	if !running {
		return
	}

	select {
	case <-s.shutdownChan:
	default:
		close(s.shutdownChan)
	}
}

// Handler returns the fully assembled handler with the middleware chain
// applied. It is exported for in-process testing against httptest.
func (s *Server) Handler() http.Handler {
	return s.setupRoutes()
}

// setupRoutes configures HTTP routes and the middleware chain.
func (s *Server) setupRoutes() http.Handler {
	mux := http.NewServeMux()

	statusHandler := handlers.NewStatusHandler()
	healthHandler := handlers.NewHealthHandler(s.service)
	searchHandler := handlers.NewSearchHandler(s.service)
	foodHandler := handlers.NewFoodHandler(s.service)
	barcodeHandler := handlers.NewBarcodeHandler(s.service)
	notFoundHandler := handlers.NewNotFoundHandler()

	// Register routes. The bare subtree patterns catch "/food/" and
	// "/barcode/" with an empty path value so the handlers can return
	// their missing-parameter errors instead of the generic 404. The
	// {rest...} variants accept trailing segments, taking the first
	// segment as the parameter.
	mux.Handle("/{$}", statusHandler)
	mux.Handle("/health", healthHandler)
	mux.Handle("/search", searchHandler)
	mux.Handle("/food/{foodID}", foodHandler)
	mux.Handle("/food/{foodID}/{rest...}", foodHandler)
	mux.Handle("/food/", foodHandler)
	mux.Handle("/barcode/{code}", barcodeHandler)
	mux.Handle("/barcode/{code}/{rest...}", barcodeHandler)
	mux.Handle("/barcode/", barcodeHandler)
	mux.Handle("/", notFoundHandler)

	if s.collector != nil {
		path := s.config.Telemetry.Metrics.Path
		if path == "" {
			path = "/metrics"
		}
		mux.Handle(path, s.collector.Handler())
	}

	// Apply middleware chain, innermost first.
	var handler http.Handler = mux

	// Timeout middleware
	handler = middleware.TimeoutMiddleware(s.config.Gateway.WriteTimeout)(handler)

	// CORS middleware
	corsConfig := s.convertCORSConfig()
	handler = middleware.CORSMiddleware(corsConfig)(handler)

	// Audit middleware
	if s.recorder != nil {
		handler = middleware.AuditMiddleware(s.recorder)(handler)
	}

	// Metrics middleware
	if s.collector != nil {
		handler = middleware.MetricsMiddleware(s.collector)(handler)
	}

	// Logging middleware
	handler = middleware.LoggingMiddleware(handler)

	// Request ID middleware, outside logging so completion logs carry
	// the request ID.
	handler = middleware.RequestIDMiddleware(handler)

	// Recovery middleware (outermost)
	handler = middleware.RecoveryMiddleware(handler)

	return handler
}

// convertCORSConfig converts the gateway CORS configuration to the
// middleware representation, falling back to defaults for empty fields.
func (s *Server) convertCORSConfig() *middleware.CORSConfig {
	cfg := middleware.DefaultCORSConfig()
	if s.config.Gateway.CORS.AllowedOrigin != "" {
		cfg.AllowedOrigin = s.config.Gateway.CORS.AllowedOrigin
	}
	if len(s.config.Gateway.CORS.AllowedMethods) > 0 {
		cfg.AllowedMethods = s.config.Gateway.CORS.AllowedMethods
	}
	if len(s.config.Gateway.CORS.AllowedHeaders) > 0 {
		cfg.AllowedHeaders = s.config.Gateway.CORS.AllowedHeaders
	}
	return cfg
}
