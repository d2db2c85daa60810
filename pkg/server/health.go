package server

import (
	"net"

	"github.com/decred/slog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// HealthService is the service name reported by the health endpoint in
// addition to the empty overall name.
const HealthService = "threecardpoker.House"

// HealthServer exposes the standard gRPC health service for the house
// server. It reports NOT_SERVING until the listener is accepting and again
// once the server stops.
type HealthServer struct {
	log    slog.Logger
	health *health.Server
	grpc   *grpc.Server
}

func newHealthServer(log slog.Logger) *HealthServer {
	h := &HealthServer{
		log:    log,
		health: health.NewServer(),
		grpc:   grpc.NewServer(),
	}
	healthpb.RegisterHealthServer(h.grpc, h.health)
	h.SetServing(false)
	return h
}

// SetServing updates the reported status.
func (h *HealthServer) SetServing(serving bool) {
	status := healthpb.HealthCheckResponse_NOT_SERVING
	if serving {
		status = healthpb.HealthCheckResponse_SERVING
	}
	h.health.SetServingStatus("", status)
	h.health.SetServingStatus(HealthService, status)
}

// Serve answers health checks on ln until Stop is called.
func (h *HealthServer) Serve(ln net.Listener) error {
	h.log.Infof("Health endpoint listening on %s", ln.Addr())
	return h.grpc.Serve(ln)
}

// Shutdown marks every service NOT_SERVING for good. The endpoint keeps
// answering until Stop.
func (h *HealthServer) Shutdown() {
	h.health.Shutdown()
}

// Stop marks every service NOT_SERVING and stops the gRPC server.
func (h *HealthServer) Stop() {
	h.health.Shutdown()
	h.grpc.Stop()
}
