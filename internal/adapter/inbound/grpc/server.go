package grpc

import (
	"context"
	"fmt"

	"google.golang.org/grpc"

	pkggrpc "github.com/0xsj/overwatch-pkg/grpc"
	"github.com/0xsj/overwatch-pkg/log"
)

// ServerConfig holds configuration for the directory gRPC server.
type ServerConfig struct {
	Host              string
	Port              int
	EnableReflection  bool
	EnableHealthCheck bool
}

// Address returns the server address.
func (c ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Validate validates the server configuration.
func (c ServerConfig) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	return nil
}

// Server wraps the pkg grpc.Server for the directory service.
type Server struct {
	server  *pkggrpc.Server
	handler QueryServiceServer
	logger  log.Logger
}

// NewServer creates a new directory gRPC server.
func NewServer(cfg ServerConfig, handler QueryServiceServer, logger log.Logger) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid server config: %w", err)
	}

	server, err := pkggrpc.NewServer(
		pkggrpc.WithServerAddress(cfg.Address()),
		pkggrpc.WithServerLogger(logger),
		pkggrpc.WithServerReflection(cfg.EnableReflection),
		pkggrpc.WithServerHealthCheck(cfg.EnableHealthCheck),
		pkggrpc.WithUnaryInterceptors(BuildUnaryInterceptors(logger)...),
		pkggrpc.WithStreamInterceptors(BuildStreamInterceptors(logger)...),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create grpc server: %w", err)
	}

	s := &Server{
		server:  server,
		handler: handler,
		logger:  logger,
	}
	s.server.RegisterService(&QueryService_ServiceDesc, s.handler)

	return s, nil
}

// MarkReady reports the query service as serving to health checks.
// Callers invoke it once the query registry has been built.
func (s *Server) MarkReady() {
	s.server.SetServingStatus(QueryServiceName, true)
}

// Start starts the gRPC server.
func (s *Server) Start(ctx context.Context) error {
	s.logger.Info("starting directory gRPC server",
		log.String("address", s.server.Address()),
	)
	return s.server.Start(ctx)
}

// Run starts the server and blocks until shutdown.
func (s *Server) Run() error {
	s.logger.Info("running directory gRPC server",
		log.String("address", s.server.Address()),
	)
	return s.server.Run()
}

// Stop gracefully stops the gRPC server.
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("stopping directory gRPC server")
	s.server.SetServingStatus(QueryServiceName, false)
	return s.server.Stop(ctx)
}

// GRPCServer returns the underlying grpc.Server.
func (s *Server) GRPCServer() *grpc.Server {
	return s.server.Server()
}

// Address returns the server's listen address.
func (s *Server) Address() string {
	return s.server.Address()
}

// IsRunning returns true if the server is running.
func (s *Server) IsRunning() bool {
	return s.server.IsRunning()
}
