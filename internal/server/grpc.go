// internal/server/grpc.go
package server

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
	"google.golang.org/grpc/status"
)

const maxMessageSize = 4 * 1024 * 1024

// GRPCServer exposes grpc.health.v1.Health for orchestrator probes. The
// overall status ("") and ServiceName track the HTTP server.
type GRPCServer struct {
	server *grpc.Server
	health *health.Server
	logger zerolog.Logger
}

func NewGRPCServer(logger zerolog.Logger) *GRPCServer {
	server := grpc.NewServer(
		grpc.MaxRecvMsgSize(maxMessageSize),
		grpc.MaxSendMsgSize(maxMessageSize),
		grpc.UnaryInterceptor(loggingInterceptor(logger)),
	)

	hs := health.NewServer()
	healthpb.RegisterHealthServer(server, hs)

	// Enable reflection for grpcurl testing
	reflection.Register(server)

	s := &GRPCServer{server: server, health: hs, logger: logger}
	s.SetServing(false)
	return s
}

// Start listens on port and serves in the background.
func (s *GRPCServer) Start(port string) (net.Addr, error) {
	lis, err := net.Listen("tcp", ":"+port)
	if err != nil {
		return nil, fmt.Errorf("listen for gRPC on port %s: %w", port, err)
	}

	go func() {
		if err := s.Serve(lis); err != nil {
			s.logger.Error().Err(err).Msg("gRPC server failed")
		}
	}()

	s.logger.Info().Str("addr", lis.Addr().String()).Msg("gRPC health server started")
	return lis.Addr(), nil
}

func (s *GRPCServer) Serve(lis net.Listener) error {
	return s.server.Serve(lis)
}

func (s *GRPCServer) SetServing(serving bool) {
	st := healthpb.HealthCheckResponse_NOT_SERVING
	if serving {
		st = healthpb.HealthCheckResponse_SERVING
	}
	s.health.SetServingStatus("", st)
	s.health.SetServingStatus(ServiceName, st)
}

// Stop reports NOT_SERVING to watchers, then drains in-flight RPCs.
func (s *GRPCServer) Stop() {
	s.health.Shutdown()
	s.server.GracefulStop()
}

func loggingInterceptor(logger zerolog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()

		resp, err := handler(ctx, req)

		event := logger.Debug()
		if err != nil {
			event = logger.Warn().Err(err)
		}
		event.
			Str("method", info.FullMethod).
			Str("code", status.Code(err).String()).
			Dur("duration", time.Since(start)).
			Msg("gRPC request")

		return resp, err
	}
}
