package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"log/slog"

	"github.com/youssefadel94/github-copilot-proxy/pkg/config"
	"github.com/youssefadel94/github-copilot-proxy/pkg/limits/ratelimit"
	"github.com/youssefadel94/github-copilot-proxy/pkg/proxy/handlers"
	"github.com/youssefadel94/github-copilot-proxy/pkg/proxy/middleware"
	"github.com/youssefadel94/github-copilot-proxy/pkg/telemetry/metrics"
)

// Deps are the wired collaborators the HTTP layer exposes. Limiter and
// Metrics may be nil when the corresponding feature is disabled.
type Deps struct {
	Gateway     *handlers.Gateway
	Limiter     *ratelimit.SessionLimiter
	Metrics     *metrics.Collector
	MetricsPath string
	Ready       handlers.ReadyChecker
}

// Server is the caller-facing HTTP server.
type Server struct {
	config *config.ProxyConfig
	deps   Deps

	httpServer   *http.Server
	shutdownChan chan struct{}
	shutdownOnce sync.Once
	mu           sync.RWMutex
	isRunning    bool
}

// NewServer creates the server. It does not bind the listen address until
// Start is called.
func NewServer(cfg *config.ProxyConfig, deps Deps) *Server {
	return &Server{
		config:       cfg,
		deps:         deps,
		shutdownChan: make(chan struct{}),
	}
}

// Start starts the HTTP server and blocks until shutdown, triggered by
// context cancellation, SIGINT/SIGTERM, or Shutdown.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return fmt.Errorf("server is already running")
	}
	s.isRunning = true
	s.mu.Unlock()

	// WriteTimeout stays at the configured value, zero by default:
	// a whole-response deadline would sever long SSE streams.
	s.httpServer = &http.Server{
		Addr:           s.config.ListenAddress,
		Handler:        s.setupRoutes(),
		ReadTimeout:    s.config.ReadTimeout,
		WriteTimeout:   s.config.WriteTimeout,
		IdleTimeout:    s.config.IdleTimeout,
		MaxHeaderBytes: s.config.MaxHeaderBytes,
	}

	errChan := make(chan error, 1)
	go func() {
		slog.Info("starting gateway server", "address", s.config.ListenAddress)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

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
		return s.Shutdown(context.Background())
	}
}

// Shutdown gracefully drains in-flight requests, bounded by the configured
// shutdown timeout. Active SSE streams past the deadline are cut.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.mu.Lock()
		if !s.isRunning {
			s.mu.Unlock()
			return
		}
		s.mu.Unlock()

		slog.Info("initiating graceful shutdown", "timeout", s.config.ShutdownTimeout.String())

		shutdownCtx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
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

// setupRoutes builds the route table and middleware chain.
func (s *Server) setupRoutes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/v1/chat/completions", s.deps.Gateway.ChatCompletions)
	mux.HandleFunc("/v1/completions", s.deps.Gateway.Completions)
	mux.HandleFunc("/v1/responses", s.deps.Gateway.Responses)
	mux.HandleFunc("/v1/models", s.deps.Gateway.Models)
	mux.Handle("/health", handlers.NewHealthHandler())
	mux.Handle("/ready", handlers.NewReadyHandler(s.deps.Ready))

	if s.deps.Metrics != nil {
		path := s.deps.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		mux.Handle(path, s.deps.Metrics.Handler())
	}

	var handler http.Handler = mux

	if s.deps.Limiter != nil {
		var rm middleware.RateLimitMetrics
		if s.deps.Metrics != nil {
			rm = s.deps.Metrics.Request
		}
		handler = middleware.RateLimit(s.deps.Limiter, rm)(handler)
	}

	handler = middleware.CORS(middleware.DefaultCORSConfig())(handler)
	handler = middleware.Logging(handler)
	handler = middleware.RequestID(handler)
	handler = middleware.Recovery(handler)

	return handler
}

// IsRunning reports whether Start has been called and not yet shut down.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// Handler returns the configured HTTP handler, for tests.
func (s *Server) Handler() http.Handler {
	return s.setupRoutes()
}
