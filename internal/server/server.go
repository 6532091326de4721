package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	apisetup "outbound-caller/internal/api"
	"outbound-caller/internal/bootstrap"
	"outbound-caller/internal/config"
	"outbound-caller/internal/observability"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Server encapsulates the HTTP server and the call workers behind it
type Server struct {
	httpServer *http.Server
	router     *gin.Engine
	deps       *bootstrap.Dependencies
	config     *config.Config
	logger     *observability.Logger
}

// New creates a new Server instance
func New(cfg *config.Config, deps *bootstrap.Dependencies, logger *observability.Logger) *Server {
	return &Server{
		config: cfg,
		deps:   deps,
		logger: logger,
	}
}

// Setup configures the HTTP router with middleware and routes
func (s *Server) Setup() {
	s.router = gin.New()

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "X-Request-ID"}
	corsConfig.AllowAllOrigins = true

	s.router.Use(cors.New(corsConfig))
	s.router.Use(observability.Middleware(s.logger))

	var guards []gin.HandlerFunc
	if s.deps.Auth != nil {
		guards = append(guards, s.deps.Auth.Middleware)
	}

	rootRouter := s.router.Group("/")
	api := apisetup.New(rootRouter, s.deps.CallHandler, guards...)
	api.RegisterRoutes()
}

// Start begins listening for HTTP requests and starts the call workers
func (s *Server) Start(ctx context.Context) error {
	if err := s.deps.CallPool.Start(ctx); err != nil {
		return fmt.Errorf("failed to start call worker pool: %w", err)
	}

	// Consume call jobs published to Kafka
	go func() {
		if err := s.deps.CallConsumer.Start(ctx); err != nil {
			s.logger.Error(ctx, "call consumer stopped with error", err)
		}
	}()

	s.httpServer = &http.Server{
		Addr:    fmt.Sprintf(":%d", s.config.Server.Port),
		Handler: s.router,
	}

	// Run the server in a goroutine so that it doesn't block
	go func() {
		s.logger.Info(ctx, fmt.Sprintf("Server starting on port %d", s.config.Server.Port))
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error(ctx, "server failed to start", err)
			os.Exit(1)
		}
	}()

	return nil
}

// WaitForShutdown blocks until a shutdown signal is received, then gracefully shuts down.
// Calls in progress are allowed to finish up to the drain timeout.
func (s *Server) WaitForShutdown(ctx context.Context) error {
	quit := make(chan os.Signal, 1)
	// kill (no param) default sends syscall.SIGTERM
	// kill -2 is syscall.SIGINT
	// kill -9 is syscall.SIGKILL but can't be caught, so don't need to add it
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	<-quit
	s.logger.Info(ctx, "Shutting down server...")

	// Stop taking new calls before draining the ones in flight
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	s.deps.CallConsumer.Stop()
	if err := s.deps.CallPool.Drain(context.Background()); err != nil {
		s.logger.Error(ctx, "failed to drain call worker pool", err)
	}

	s.deps.Cleanup()

	s.logger.Info(ctx, "Server exited gracefully")
	return nil
}
