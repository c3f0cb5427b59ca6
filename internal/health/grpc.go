package health

import (
	"log/slog"
	"sync"

	"github.com/eleven-am/auteur/internal/vision"
	grpchealth "google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

const VisionService = "auteur.vision"

// Reporter mirrors the vision session onto the gRPC health service: SERVING
// while streaming with insights that have not gone stale, NOT_SERVING
// otherwise.
type Reporter struct {
	server *grpchealth.Server
	logger *slog.Logger

	mu        sync.Mutex
	state     vision.State
	freshness vision.Freshness
}

func NewReporter(server *grpchealth.Server, logger *slog.Logger) *Reporter {
	server.SetServingStatus(VisionService, healthpb.HealthCheckResponse_NOT_SERVING)
	return &Reporter{
		server:    server,
		logger:    logger.With("component", "grpc-health"),
		state:     vision.StateIdle,
		freshness: vision.FreshnessIdle,
	}
}

func (r *Reporter) ObserveState(s vision.State) {
	r.mu.Lock()
	r.state = s
	status := r.statusLocked()
	r.mu.Unlock()

	r.server.SetServingStatus(VisionService, status)
	r.logger.Debug("vision health updated", "state", s, "status", status.String())
}

func (r *Reporter) ObserveFreshness(f vision.Freshness) {
	r.mu.Lock()
	prev := r.freshness
	r.freshness = f
	status := r.statusLocked()
	r.mu.Unlock()

	r.server.SetServingStatus(VisionService, status)
	if f == vision.FreshnessStale {
		r.logger.Warn("vision insights went stale", "status", status.String())
	} else if prev == vision.FreshnessStale {
		r.logger.Info("vision insights recovered", "freshness", f)
	}
}

func (r *Reporter) statusLocked() healthpb.HealthCheckResponse_ServingStatus {
	if r.state == vision.StateStreaming && r.freshness != vision.FreshnessStale {
		return healthpb.HealthCheckResponse_SERVING
	}
	return healthpb.HealthCheckResponse_NOT_SERVING
}

// Shutdown marks every service NOT_SERVING ahead of a graceful stop.
func (r *Reporter) Shutdown() {
	r.server.Shutdown()
}
