package grpc

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"google.golang.org/grpc"
	grpchealth "google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/keepalive"
	"google.golang.org/grpc/reflection"

	mdwerror "github.com/msto63/formplan/foundation/core/error"
	mdwlog "github.com/msto63/formplan/foundation/core/log"
	"github.com/msto63/formplan/pkg/core/config"
)

// ServerConfig holds gRPC server configuration
type ServerConfig struct {
	Host              string
	Port              int
	MaxRecvMsgSize    int
	MaxSendMsgSize    int
	EnableReflection  bool
	KeepaliveInterval time.Duration
	KeepaliveTimeout  time.Duration
	Logger            *mdwlog.Logger
}

// DefaultServerConfig returns a default server configuration
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Host:              "0.0.0.0",
		Port:              9300,
		MaxRecvMsgSize:    4 * 1024 * 1024, // 4MB
		MaxSendMsgSize:    4 * 1024 * 1024, // 4MB
		EnableReflection:  false,
		KeepaliveInterval: 30 * time.Second,
		KeepaliveTimeout:  10 * time.Second,
	}
}

// ServerConfigFrom maps the server section of the application config
func ServerConfigFrom(cfg config.ServerConfig, logger *mdwlog.Logger) ServerConfig {
	sc := DefaultServerConfig()
	sc.Host = cfg.Host
	sc.Port = cfg.Port
	sc.EnableReflection = cfg.Reflection
	if cfg.MaxRecvMsgSize > 0 {
		sc.MaxRecvMsgSize = cfg.MaxRecvMsgSize
	}
	if cfg.KeepaliveInterval.Duration > 0 {
		sc.KeepaliveInterval = cfg.KeepaliveInterval.Duration
	}
	if cfg.KeepaliveTimeout.Duration > 0 {
		sc.KeepaliveTimeout = cfg.KeepaliveTimeout.Duration
	}
	sc.Logger = logger
	return sc
}

// Server wraps a gRPC server with the standard interceptors and the
// grpc.health.v1 service
type Server struct {
	server *grpc.Server
	health *grpchealth.Server
	config ServerConfig
	logger *mdwlog.Logger

	mu       sync.Mutex
	listener net.Listener
}

// NewServer creates a new gRPC server
func NewServer(cfg ServerConfig, opts ...grpc.ServerOption) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = mdwlog.Discard()
	}
	logger = logger.WithName("grpc")

	// Build server options
	serverOpts := []grpc.ServerOption{
		grpc.MaxRecvMsgSize(cfg.MaxRecvMsgSize),
		grpc.MaxSendMsgSize(cfg.MaxSendMsgSize),
		grpc.KeepaliveParams(keepalive.ServerParameters{
			Time:    cfg.KeepaliveInterval,
			Timeout: cfg.KeepaliveTimeout,
		}),
		grpc.KeepaliveEnforcementPolicy(keepalive.EnforcementPolicy{
			MinTime:             5 * time.Second,
			PermitWithoutStream: true,
		}),
		// request id first so recovery and logging see it
		grpc.ChainUnaryInterceptor(
			RequestIDInterceptor(),
			RecoveryInterceptor(logger),
			LoggingInterceptor(logger),
		),
	}

	// Append custom options
	serverOpts = append(serverOpts, opts...)

	server := grpc.NewServer(serverOpts...)

	hs := grpchealth.NewServer()
	healthpb.RegisterHealthServer(server, hs)

	// Enable reflection for grpcurl and friends
	if cfg.EnableReflection {
		reflection.Register(server)
	}

	return &Server{
		server: server,
		health: hs,
		config: cfg,
		logger: logger,
	}
}

// GRPCServer returns the underlying gRPC server for service registration
func (s *Server) GRPCServer() *grpc.Server {
	return s.server
}

// SetServingStatus updates the health status of service. The empty name
// is the overall server status.
func (s *Server) SetServingStatus(service string, serving bool) {
	status := healthpb.HealthCheckResponse_NOT_SERVING
	if serving {
		status = healthpb.HealthCheckResponse_SERVING
	}
	s.health.SetServingStatus(service, status)
}

// Serve serves on an existing listener until Stop
func (s *Server) Serve(listener net.Listener) error {
	s.mu.Lock()
	s.listener = listener
	s.mu.Unlock()

	s.logger.Info("gRPC server listening", mdwlog.Fields{"address": listener.Addr().String()})
	return s.server.Serve(listener)
}

// Start listens on the configured address and serves until Stop
func (s *Server) Start() error {
	listener, err := s.listen()
	if err != nil {
		return err
	}
	return s.Serve(listener)
}

func (s *Server) listen() (net.Listener, error) {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, mdwerror.Wrap(err, "listen").
			WithCode(mdwerror.CodeServiceError).
			WithOperation("grpc.Server.Start").
			WithDetail("address", addr)
	}
	return listener, nil
}

// Stop gracefully stops the gRPC server
func (s *Server) Stop() {
	s.health.Shutdown()
	s.server.GracefulStop()
}

// StopWithTimeout stops the server gracefully, forcing it when ctx ends
func (s *Server) StopWithTimeout(ctx context.Context) {
	s.health.Shutdown()

	done := make(chan struct{})
	go func() {
		s.server.GracefulStop()
		close(done)
	}()

	select {
	case <-done:
		return
	case <-ctx.Done():
		s.logger.Warn("graceful stop timed out, forcing shutdown")
		s.server.Stop()
	}
}

// Address returns the server address
func (s *Server) Address() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
}
