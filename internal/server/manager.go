package server

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/dsaferreira/doppelganger-go/internal/config"
	"github.com/dsaferreira/doppelganger-go/internal/metrics"
)

// Manager owns one Server per Configuration, each on its own port, running
// independently of the management server that exposes /metrics.
type Manager struct {
	servers []*Server
}

// NewManager builds one router+listener pair per Configuration in servers.
func NewManager(servers config.Servers, logger *slog.Logger, recorder metrics.Recorder, verbose bool) (*Manager, error) {
	m := &Manager{}
	for i, cfg := range servers.Configurations {
		router := NewRouter(cfg, logger, recorder, verbose)
		srv, err := NewForPort(cfg.Port, router, logger)
		if err != nil {
			return nil, fmt.Errorf("server: configuration[%d]: %w", i, err)
		}
		m.servers = append(m.servers, srv)
	}
	return m, nil
}

// Run starts every bound listener concurrently and blocks until ctx is
// cancelled or any listener fails. A failing listener does not stop the
// others mid-flight; errgroup collects the first error and cancels the
// shared context so every listener begins its own graceful shutdown.
func (m *Manager) Run(ctx context.Context) error {
	group, groupCtx := errgroup.WithContext(ctx)
	for _, srv := range m.servers {
		srv := srv
		group.Go(func() error {
			return srv.Run(groupCtx)
		})
	}
	return group.Wait()
}
