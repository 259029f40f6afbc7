package server

import (
	"context"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"runtime"
	"strconv"
	"syscall"
	"time"

	"github.com/jroosing/minidns/internal/config"
	"github.com/jroosing/minidns/internal/helpers"
	"github.com/jroosing/minidns/internal/resolvers"
)

// Runner orchestrates the DNS server startup and shutdown.
type Runner struct {
	logger *slog.Logger
	stats  *DNSStats
	ready  chan net.Addr
}

// NewRunner creates a new server runner with the given logger.
func NewRunner(logger *slog.Logger) *Runner {
	return &Runner{logger: logger, stats: NewDNSStats(), ready: make(chan net.Addr, 1)}
}

// Stats returns the counters shared with the management API.
func (r *Runner) Stats() *DNSStats {
	return r.stats
}

// Ready yields the bound UDP address once the listener is up.
func (r *Runner) Ready() <-chan net.Addr {
	return r.ready
}

// Run starts the DNS server and blocks until SIGINT/SIGTERM.
func (r *Runner) Run(cfg *config.Config, resolver resolvers.Resolver) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	return r.RunWithContext(ctx, cfg, resolver)
}

// RunWithContext starts the DNS server and blocks until ctx is canceled or
// the listener fails.
//
// Server lifecycle:
//  1. Configure runtime (GOMAXPROCS based on workers setting)
//  2. Bind the UDP socket
//  3. Serve until ctx is done
//  4. Stop with a timeout for in-flight requests and close the resolver
func (r *Runner) RunWithContext(ctx context.Context, cfg *config.Config, resolver resolvers.Resolver) error {
	defer resolver.Close()

	procs := r.configureRuntime(cfg)
	maxConc := calculateMaxConcurrency(cfg, procs)

	addr := net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port))
	conn, err := listenUDP(ctx, addr)
	if err != nil {
		return err
	}

	h := &QueryHandler{Logger: r.logger, Resolver: resolver, Stats: r.stats}
	udp := &UDPServer{Logger: r.logger, Handler: h, MaxConcurrency: maxConc}

	if r.logger != nil {
		r.logger.Info("dns listening", "addr", conn.LocalAddr().String(), "max_concurrency", maxConc)
	}
	select {
	case r.ready <- conn.LocalAddr():
	default:
	}

	errCh := make(chan error, 1)
	go func() { errCh <- udp.RunOnConn(ctx, conn) }()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		return err
	}

	if err := udp.Stop(5 * time.Second); err != nil && r.logger != nil {
		r.logger.Warn("dns shutdown", "err", err)
	}
	return <-errCh
}

// configureRuntime sets GOMAXPROCS based on worker configuration.
// Workers can reduce but never increase parallelism beyond the default.
func (r *Runner) configureRuntime(cfg *config.Config) int {
	procs := runtime.GOMAXPROCS(0)
	if cfg.Server.Workers.Mode == config.WorkersFixed && cfg.Server.Workers.Value > 0 && cfg.Server.Workers.Value < procs {
		runtime.GOMAXPROCS(cfg.Server.Workers.Value)
		procs = cfg.Server.Workers.Value
		if r.logger != nil {
			r.logger.Info("runtime", "gomaxprocs", procs)
		}
	}
	return procs
}

// calculateMaxConcurrency determines the maximum concurrent request handlers.
func calculateMaxConcurrency(cfg *config.Config, procs int) int {
	if cfg.Server.MaxConcurrency > 0 {
		return cfg.Server.MaxConcurrency
	}
	return helpers.ClampInt(procs*256, 1, 2048)
}
