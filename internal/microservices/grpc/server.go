package grpc

import (
	"fmt"
	"log/slog"
	"net"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	models "webremote/internal/microservices/http-api/models"
)

// VehicleService is the health service name that mirrors the vehicle status.
const VehicleService = "webremote.vehicle"

// HealthServer exposes grpc.health.v1 for the relay process and the vehicle.
type HealthServer struct {
	grpcServer *grpc.Server
	health     *health.Server
	logger     *slog.Logger
}

func NewHealthServer(logger *slog.Logger) *HealthServer {
	if logger == nil {
		logger = slog.Default()
	}
	hs := health.NewServer()
	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	hs.SetServingStatus(VehicleService, healthpb.HealthCheckResponse_NOT_SERVING)

	grpcServer := grpc.NewServer()
	healthpb.RegisterHealthServer(grpcServer, hs)
	reflection.Register(grpcServer)

	return &HealthServer{grpcServer: grpcServer, health: hs, logger: logger}
}

// SetVehicleStatus is registered as a health listener.
func (s *HealthServer) SetVehicleStatus(status models.HealthStatus) {
	serving := healthpb.HealthCheckResponse_NOT_SERVING
	if status.Serving() {
		serving = healthpb.HealthCheckResponse_SERVING
	}
	s.health.SetServingStatus(VehicleService, serving)
}

// Serve blocks until the listener fails or the server is stopped.
func (s *HealthServer) Serve(lis net.Listener) error {
	s.logger.Info("grpc_health_listening", "addr", lis.Addr().String())
	if err := s.grpcServer.Serve(lis); err != nil {
		return fmt.Errorf("gRPC server failed: %w", err)
	}
	return nil
}

// StartGRPCServer listens on addr and serves in the background.
func (s *HealthServer) StartGRPCServer(addr string) (net.Addr, error) {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	go func() {
		if err := s.Serve(lis); err != nil {
			s.logger.Error("grpc_server_failed", "error", err)
		}
	}()
	return lis.Addr(), nil
}

// GracefulStop marks every service NOT_SERVING and drains open RPCs.
func (s *HealthServer) GracefulStop() {
	s.health.Shutdown()
	s.grpcServer.GracefulStop()
}
