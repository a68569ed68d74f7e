// Package api serves the rowguard engine over HTTP.
//
// Clients log in once to obtain a JWT pair; each later request borrows a
// pooled engine connection, binds the token's identity to it and returns
// it, reset, when the request ends.
package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/marmos91/rowguard/internal/logger"
	"github.com/marmos91/rowguard/pkg/auth"
	"github.com/marmos91/rowguard/pkg/config"
	"github.com/marmos91/rowguard/pkg/engine"
)

// Server provides an HTTP server for the REST API.
type Server struct {
	server       *http.Server
	engine       *engine.Engine
	pool         *engine.Pool
	jwtService   *auth.JWTService
	config       config.APIConfig
	shutdownOnce sync.Once
}

// NewServer creates a stopped API server over eng. poolSize bounds the
// idle connections kept between requests.
//
// The JWT secret comes from cfg or ROWGUARD_API_SECRET and must be at
// least 32 characters.
func NewServer(cfg config.APIConfig, eng *engine.Engine, poolSize int) (*Server, error) {
	jwtSecret := cfg.GetJWTSecret()
	if len(jwtSecret) < 32 {
		return nil, fmt.Errorf("JWT secret must be at least 32 characters; set via %s env var or config", config.EnvJWTSecret)
	}

	jwtService, err := auth.NewJWTService(auth.JWTConfig{
		Secret:               jwtSecret,
		Issuer:               "rowguard",
		AccessTokenDuration:  cfg.JWT.AccessTokenDuration,
		RefreshTokenDuration: cfg.JWT.RefreshTokenDuration,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create JWT service: %w", err)
	}

	pool := eng.NewPool(poolSize)

	return &Server{
		server: &http.Server{
			Addr:         fmt.Sprintf(":%d", cfg.Port),
			Handler:      NewRouter(eng, pool, jwtService),
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
			IdleTimeout:  cfg.IdleTimeout,
		},
		engine:     eng,
		pool:       pool,
		jwtService: jwtService,
		config:     cfg,
	}, nil
}

// Handler returns the router, for in-process tests.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.server.Addr)
	if err != nil {
		return fmt.Errorf("API server failed: %w", err)
	}

	errChan := make(chan error, 1)
	go func() {
		logger.Info("API server listening", "port", s.config.Port)
		if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("API server shutdown signal received")
		// ctx is already cancelled; shutdown needs a fresh deadline.
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.Stop(shutdownCtx)
	case err := <-errChan:
		s.pool.Close()
		return fmt.Errorf("API server failed: %w", err)
	}
}

// Stop shuts the server down and closes the connection pool. It is safe
// to call more than once.
func (s *Server) Stop(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		logger.Debug("API server shutdown initiated")

		if err := s.server.Shutdown(ctx); err != nil {
			shutdownErr = fmt.Errorf("API server shutdown error: %w", err)
			logger.Error("API server shutdown error", logger.Err(err))
		} else {
			logger.Info("API server stopped gracefully")
		}
		s.pool.Close()
	})
	return shutdownErr
}

// Port returns the configured TCP port.
func (s *Server) Port() int {
	return s.config.Port
}
