package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/dsaferreira/doppelganger-go/internal/config"
	"github.com/dsaferreira/doppelganger-go/internal/logging"
	"github.com/dsaferreira/doppelganger-go/internal/metrics"
	"github.com/dsaferreira/doppelganger-go/internal/server"
	"github.com/prometheus/client_golang/prometheus"
)

const defaultEnvPrefix = "DOPPEL"

func main() {
	verbose := flag.Bool("verbose", false, "log raw request bodies decoded as UTF-8")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: doppelganger [--verbose] <config-file>")
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, defaultEnvPrefix, flag.Arg(0), *verbose); err != nil {
		var cle *configLoadError
		if errors.As(err, &cle) {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(2)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// configLoadError marks a failure during Loader.Load so main can map it to
// exit code 2 without the rest of run's errors doing the same.
type configLoadError struct{ err error }

func (e *configLoadError) Error() string { return e.err.Error() }
func (e *configLoadError) Unwrap() error { return e.err }

// configLoader is the surface run needs from config.Loader.
type configLoader interface {
	Load(ctx context.Context) (config.Servers, error)
}

var newConfigLoader = func(path string) configLoader {
	return config.NewLoader(path)
}

// runnable is satisfied by both server.Server and server.Manager.
type runnable interface {
	Run(ctx context.Context) error
}

var newManager = func(servers config.Servers, logger *slog.Logger, recorder metrics.Recorder, verbose bool) (runnable, error) {
	return server.NewManager(servers, logger, recorder, verbose)
}

var newManagementServer = func(addr string, handler http.Handler, logger *slog.Logger) (runnable, error) {
	return server.New(addr, handler, logger)
}

// run wires the declarative mock servers, the management /metrics server,
// and structured logging together, then blocks until ctx is cancelled or a
// listener fails.
func run(ctx context.Context, envPrefix, configPath string, verbose bool) error {
	loader := newConfigLoader(configPath)
	servers, err := loader.Load(ctx)
	if err != nil {
		return &configLoadError{err: fmt.Errorf("load configuration: %w", err)}
	}

	opts, err := config.LoadRuntimeOptions(envPrefix)
	if err != nil {
		return fmt.Errorf("load runtime options: %w", err)
	}
	opts.Verbose = opts.Verbose || verbose

	logger, err := logging.New(opts)
	if err != nil {
		return fmt.Errorf("configure logger: %w", err)
	}

	registry := prometheus.NewRegistry()
	recorder := metrics.NewRecorder(registry)

	manager, err := newManager(servers, logger, recorder, opts.Verbose)
	if err != nil {
		return fmt.Errorf("construct mock servers: %w", err)
	}

	mgmtMux := http.NewServeMux()
	mgmtMux.Handle("/metrics", recorder.Handler())
	mgmtAddr := net.JoinHostPort(opts.MetricsAddr, strconv.Itoa(opts.MetricsPort))
	mgmtSrv, err := newManagementServer(mgmtAddr, mgmtMux, logger)
	if err != nil {
		return fmt.Errorf("construct management server: %w", err)
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error { return manager.Run(groupCtx) })
	group.Go(func() error { return mgmtSrv.Run(groupCtx) })

	if err := group.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	logger.Info("shutdown complete")
	return nil
}
