package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"user-console/internal/adapter/gin/webconsole"
)

// Server runs the web console and, when enabled, the users API side by side.
type Server struct {
	Console *http.Server
	API     *http.Server

	sessions        *webconsole.Registry
	shutdownTimeout time.Duration
	log             *zap.Logger
}

// Config holds listen addresses and timeouts.
type Config struct {
	ConsoleAddr     string
	APIAddr         string
	ShutdownTimeout time.Duration
}

// New creates a Server. A nil api handler leaves the users API off.
func New(cfg Config, console, api http.Handler, sessions *webconsole.Registry, l *zap.Logger) *Server {
	s := &Server{
		Console:         newHTTPServer(cfg.ConsoleAddr, console),
		sessions:        sessions,
		shutdownTimeout: cfg.ShutdownTimeout,
		log:             l,
	}
	if api != nil {
		s.API = newHTTPServer(cfg.APIAddr, api)
	}
	return s
}

func newHTTPServer(addr string, h http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 2 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}

// Run serves until ctx is done or a listener fails, then shuts everything
// down gracefully.
func (s *Server) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	if s.sessions != nil {
		g.Go(func() error {
			s.sessions.Run(gctx)
			return nil
		})
	}

	for name, srv := range s.servers() {
		g.Go(func() error {
			s.log.Info("server listening", zap.String("server", name), zap.String("address", srv.Addr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("%s server: %w", name, err)
			}
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		return s.shutdown()
	})

	return g.Wait()
}

func (s *Server) servers() map[string]*http.Server {
	m := map[string]*http.Server{"console": s.Console}
	if s.API != nil {
		m["api"] = s.API
	}
	return m
}

func (s *Server) shutdown() error {
	timeout := s.shutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	var errs []error
	for name, srv := range s.servers() {
		s.log.Info("shutting down server", zap.String("server", name))
		if err := srv.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("%s shutdown: %w", name, err))
		}
	}
	return errors.Join(errs...)
}
