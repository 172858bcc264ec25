// Package grpc exposes a health endpoint over gRPC so orchestrators can probe
// the backend without touching the HTTP surface. It only starts when
// GRPC_PORT is configured.
package grpc

import (
	"context"
	"fmt"
	"net"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/ordersync/ordersync/pkg/logger"
)

// Server wraps a grpc.Server with the health service registered.
type Server struct {
	srv    *grpc.Server
	health *health.Server
	port   string
}

// NewServer builds the server with a unary logging interceptor.
func NewServer(port string) *Server {
	s := grpc.NewServer(grpc.ChainUnaryInterceptor(loggingInterceptor))
	h := health.NewServer()
	healthpb.RegisterHealthServer(s, h)
	h.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	return &Server{srv: s, health: h, port: port}
}

// Serve listens on the configured port and blocks until Stop.
func (s *Server) Serve() error {
	lis, err := net.Listen("tcp", ":"+s.port)
	if err != nil {
		return fmt.Errorf("grpc: listen :%s: %w", s.port, err)
	}
	logger.Info("grpc server listening", "port", s.port)
	return s.srv.Serve(lis)
}

// Stop marks the service unhealthy and drains connections.
func (s *Server) Stop() {
	s.health.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
	s.srv.GracefulStop()
}

func loggingInterceptor(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
	start := time.Now()
	resp, err := handler(ctx, req)
	logger.Debug("grpc call",
		"method", info.FullMethod,
		"duration_ms", time.Since(start).Milliseconds(),
		"error", err,
	)
	return resp, err
}
