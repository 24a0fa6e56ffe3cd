package grpc

import (
	"fmt"
	"log"
	"net"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// HealthServer exposes a gRPC health checking endpoint so external
// monitors can probe whether the bot process is serving.
type HealthServer struct {
	addr   string
	server *grpc.Server
	status *health.Server
}

// NewHealthServer creates a health server listening on addr.
func NewHealthServer(addr string) *HealthServer {
	return &HealthServer{
		addr:   addr,
		server: grpc.NewServer(),
		status: health.NewServer(),
	}
}

// Start begins serving health checks in the background.
func (h *HealthServer) Start() error {
	lis, err := net.Listen("tcp", h.addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", h.addr, err)
	}

	healthpb.RegisterHealthServer(h.server, h.status)
	h.status.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)

	go func() {
		log.Printf("Health server listening on %s", h.addr)
		if err := h.server.Serve(lis); err != nil {
			log.Printf("Health server stopped: %v", err)
		}
	}()
	return nil
}

// Stop marks the service as not serving and shuts the server down.
func (h *HealthServer) Stop() {
	h.status.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
	h.server.GracefulStop()
	log.Println("Health server stopped.")
}
