package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"
)

// Server owns one bound TCP port's HTTP lifecycle and its graceful shutdown,
// one instance per Configuration rather than one per process.
type Server struct {
	addr       string
	logger     *slog.Logger
	httpServer *http.Server
	once       sync.Once
}

// New binds handler to addr without yet listening.
func New(addr string, handler http.Handler, logger *slog.Logger) (*Server, error) {
	if handler == nil {
		return nil, errors.New("server: handler required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		addr:   addr,
		logger: logger.With(slog.String("agent", "listener"), slog.String("address", addr)),
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
			IdleTimeout:       120 * time.Second,
		},
	}, nil
}

// NewForPort is a convenience constructor building the "host:port" address
// the way the rest of the adapter expects it.
func NewForPort(port int, handler http.Handler, logger *slog.Logger) (*Server, error) {
	return New(net.JoinHostPort("0.0.0.0", strconv.Itoa(port)), handler, logger)
}

// Run blocks until ctx is cancelled or the listener fails. A listener
// failure is fatal for this server only; it does not touch its siblings.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		s.logger.Info("http listener starting")
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("server: listen %s: %w", s.addr, err)
			return
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.shutdown(shutdownCtx); err != nil {
			return err
		}
		return ctx.Err()
	case err := <-errCh:
		return err
	}
}

func (s *Server) shutdown(ctx context.Context) error {
	var shutdownErr error
	s.once.Do(func() {
		s.logger.Info("http listener shutting down")
		shutdownErr = s.httpServer.Shutdown(ctx)
	})
	return shutdownErr
}
