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

	"legalmitra-backend/config"
	"legalmitra-backend/handlers"
	"legalmitra-backend/logger"

	"github.com/gin-gonic/gin"
)

const shutdownTimeout = 30 * time.Second

type Server struct {
	cfg    *config.Config
	deps   handlers.Dependencies
	logger *logger.Logger
	router *gin.Engine
}

func New(cfg *config.Config, deps handlers.Dependencies, logger *logger.Logger) *Server {
	if cfg.LogLevel == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(loggingMiddleware(logger))
	router.Use(corsMiddleware())
	if cfg.APIRateLimit > 0 {
		router.Use(rateLimitMiddleware(newClientLimiter(cfg.APIRateLimit, cfg.APIRateWindow)))
	}

	deps.Logger = logger
	handlers.SetupRoutes(router, deps)

	return &Server{
		cfg:    cfg,
		deps:   deps,
		logger: logger,
		router: router,
	}
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until SIGINT or SIGTERM, then drains requests and jobs
func (s *Server) Run() error {
	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", s.cfg.Host, s.cfg.Port),
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	s.logger.Info("Server started", "address", srv.Addr)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("failed to start server: %w", err)
	case <-quit:
	}

	s.logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		s.logger.Error("Server forced to shutdown", "error", err)
		return err
	}

	// ending the sessions cancels their jobs
	s.deps.Sessions.Close()
	if err := s.deps.Jobs.Wait(ctx); err != nil {
		s.logger.Warn("Background jobs still running at exit", "error", err)
	}

	s.logger.Info("Server exited gracefully")
	return nil
}
