package serve

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
)

// Config holds the host health endpoint configuration: network settings,
// graceful shutdown behavior, and optional TLS.
type Config struct {
	// Port is the TCP port the gRPC server listens on. Zero picks any
	// available port. Default: 50051.
	Port int

	// AdvertiseAddr overrides the address published for discovery. A
	// bare hostname gets the listen port appended; an addr with a port
	// is used as-is. Empty advertises localhost with the listen port.
	AdvertiseAddr string

	// LocalMode, when set, additionally listens on a Unix domain socket
	// at this path (created with 0600 permissions, removed on
	// shutdown). Useful when the workspace server and the plugin host
	// share a machine.
	LocalMode string

	// GracefulTimeout bounds the wait for active requests during
	// graceful shutdown; past it the server force-stops.
	// Default: 30 seconds.
	GracefulTimeout time.Duration

	// TLSCertFile is the path to the PEM server certificate. Empty
	// disables TLS.
	TLSCertFile string

	// TLSKeyFile is the path to the PEM private key. Empty disables
	// TLS.
	TLSKeyFile string

	// Logger receives server lifecycle logs. Defaults to
	// slog.Default().
	Logger *slog.Logger
}

// DefaultConfig returns defaults suitable for local development.
func DefaultConfig() *Config {
	return &Config{
		Port:            50051,
		GracefulTimeout: 30 * time.Second,
	}
}

// Server is the host's health endpoint: a gRPC server carrying the
// standard grpc.health.v1 service, with per-plugin serving status driven
// by the lifecycle controllers. Hosts may register additional services
// on it through GRPCServer.
type Server struct {
	grpcServer   *grpc.Server
	healthServer *health.Server
	tcpListener  net.Listener
	unixListener net.Listener
	config       *Config
	logger       *slog.Logger
}

// NewServer creates the server and binds its listeners. A nil cfg uses
// DefaultConfig. A stale socket file at the LocalMode path is removed
// before binding.
func NewServer(cfg *Config) (*Server, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	tcpListener, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.Port))
	if err != nil {
		return nil, fmt.Errorf("failed to listen on port %d: %w", cfg.Port, err)
	}

	var unixListener net.Listener
	if cfg.LocalMode != "" {
		if err := os.Remove(cfg.LocalMode); err != nil && !os.IsNotExist(err) {
			tcpListener.Close()
			return nil, fmt.Errorf("failed to remove stale socket %s: %w", cfg.LocalMode, err)
		}
		unixListener, err = net.Listen("unix", cfg.LocalMode)
		if err != nil {
			tcpListener.Close()
			return nil, fmt.Errorf("failed to listen on socket %s: %w", cfg.LocalMode, err)
		}
		if err := os.Chmod(cfg.LocalMode, 0600); err != nil {
			tcpListener.Close()
			unixListener.Close()
			os.Remove(cfg.LocalMode)
			return nil, fmt.Errorf("failed to restrict socket permissions: %w", err)
		}
	}

	var opts []grpc.ServerOption
	if cfg.TLSCertFile != "" && cfg.TLSKeyFile != "" {
		creds, err := credentials.NewServerTLSFromFile(cfg.TLSCertFile, cfg.TLSKeyFile)
		if err != nil {
			tcpListener.Close()
			if unixListener != nil {
				unixListener.Close()
				os.Remove(cfg.LocalMode)
			}
			return nil, fmt.Errorf("failed to load TLS credentials: %w", err)
		}
		opts = append(opts, grpc.Creds(creds))
	}

	grpcServer := grpc.NewServer(opts...)
	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)

	return &Server{
		grpcServer:   grpcServer,
		healthServer: healthServer,
		tcpListener:  tcpListener,
		unixListener: unixListener,
		config:       cfg,
		logger:       logger,
	}, nil
}

// GRPCServer returns the underlying gRPC server so hosts can register
// additional services before Serve.
func (s *Server) GRPCServer() *grpc.Server {
	return s.grpcServer
}

// Health returns the reporter lifecycle controllers flip as plugins
// enable and disable. Each plugin is a named service in the health
// protocol; the empty service name reports the host as a whole.
func (s *Server) Health() *Reporter {
	return &Reporter{hs: s.healthServer}
}

// Serve starts the server on its listeners and blocks until the context
// is cancelled, a SIGINT/SIGTERM arrives, or serving fails. Cancellation
// and signals trigger a graceful stop.
func (s *Server) Serve(ctx context.Context) error {
	errCh := make(chan error, 2)

	go func() {
		errCh <- s.grpcServer.Serve(s.tcpListener)
	}()
	if s.unixListener != nil {
		go func() {
			errCh <- s.grpcServer.Serve(s.unixListener)
		}()
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case <-ctx.Done():
		s.GracefulStop()
		return ctx.Err()
	case sig := <-sigCh:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))
		s.GracefulStop()
		return nil
	case err := <-errCh:
		s.removeSocket()
		if errors.Is(err, grpc.ErrServerStopped) {
			return nil
		}
		return fmt.Errorf("gRPC server error: %w", err)
	}
}

// Stop stops the server immediately, terminating active RPCs.
func (s *Server) Stop() {
	s.grpcServer.Stop()
	s.removeSocket()
}

// GracefulStop flips every health service to NOT_SERVING so callers
// drain, stops accepting connections, and waits up to GracefulTimeout
// for active RPCs before force-stopping.
func (s *Server) GracefulStop() {
	s.healthServer.Shutdown()

	ctx, cancel := context.WithTimeout(context.Background(), s.config.GracefulTimeout)
	defer cancel()

	done := make(chan struct{})
	go func() {
		s.grpcServer.GracefulStop()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("server stopped gracefully")
	case <-ctx.Done():
		s.logger.Warn("graceful shutdown timed out, forcing stop")
		s.grpcServer.Stop()
	}
	s.removeSocket()
}

// Port returns the bound TCP port. Useful with Port 0, where the
// kernel picks.
func (s *Server) Port() int {
	if s.tcpListener != nil {
		if addr, ok := s.tcpListener.Addr().(*net.TCPAddr); ok {
			return addr.Port
		}
	}
	return s.config.Port
}

// Endpoint returns the address to publish in the instance registry:
// the Unix socket when LocalMode is set, otherwise the advertise
// address or localhost with the bound port.
func (s *Server) Endpoint() string {
	if s.config.LocalMode != "" {
		return "unix://" + s.config.LocalMode
	}
	if s.config.AdvertiseAddr != "" {
		if strings.Contains(s.config.AdvertiseAddr, ":") {
			return s.config.AdvertiseAddr
		}
		return fmt.Sprintf("%s:%d", s.config.AdvertiseAddr, s.Port())
	}
	return fmt.Sprintf("localhost:%d", s.Port())
}

func (s *Server) removeSocket() {
	if s.config.LocalMode != "" {
		os.Remove(s.config.LocalMode)
	}
}
