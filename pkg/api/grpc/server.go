// Package grpc hosts the gRPC surface of the service. Only server
// lifecycle is wired for now; service registration lands with the
// first generated proto.
package grpc

import (
	"fmt"
	"net"

	"go.uber.org/zap"
	"google.golang.org/grpc"
)

// Server wraps the gRPC server lifecycle
type Server struct {
	server   *grpc.Server
	listener net.Listener
	logger   *zap.Logger
}

// NewServer creates a gRPC server listening on the given port
func NewServer(port int, logger *zap.Logger) (*Server, error) {
	listener, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		return nil, fmt.Errorf("failed to listen on port %d: %w", port, err)
	}

	return &Server{
		server:   grpc.NewServer(),
		listener: listener,
		logger:   logger,
	}, nil
}

// Start serves until Shutdown is called
func (s *Server) Start() error {
	s.logger.Info("starting gRPC server", zap.String("addr", s.listener.Addr().String()))

	if err := s.server.Serve(s.listener); err != nil {
		return fmt.Errorf("gRPC server failed: %w", err)
	}
	return nil
}

// Shutdown stops the server gracefully
func (s *Server) Shutdown() {
	s.logger.Info("shutting down gRPC server")
	s.server.GracefulStop()
	s.logger.Info("gRPC server shut down complete")
}
