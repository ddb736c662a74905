package grpc

import (
	"context"
	"time"

	"github.com/Miraines/MoonyAndStarry/gamefi-auth/internal/infra/health"
	"go.uber.org/zap"
	grpchealth "google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// ServiceName is the name clients pass to grpc.health.v1.Health/Check.
const ServiceName = "gamefi.auth"

// HealthReporter mirrors DB and Redis reachability into the standard gRPC
// health service.
type HealthReporter struct {
	srv      *grpchealth.Server
	checker  *health.Checker
	interval time.Duration
	log      *zap.Logger
}

func NewHealthReporter(checker *health.Checker, interval time.Duration, log *zap.Logger) *HealthReporter {
	if log == nil {
		log = zap.NewNop()
	}
	srv := grpchealth.NewServer()
	srv.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_NOT_SERVING)
	return &HealthReporter{srv: srv, checker: checker, interval: interval, log: log}
}

func (h *HealthReporter) Server() healthpb.HealthServer { return h.srv }

// Run probes once immediately and then on every tick until ctx is done.
// On return every service is marked NOT_SERVING.
func (h *HealthReporter) Run(ctx context.Context) error {
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	h.probe(ctx)
	for {
		select {
		case <-ctx.Done():
			h.srv.Shutdown()
			return nil
		case <-ticker.C:
			h.probe(ctx)
		}
	}
}

func (h *HealthReporter) probe(ctx context.Context) {
	st := healthpb.HealthCheckResponse_SERVING
	if !h.checker.Check(ctx).Healthy {
		st = healthpb.HealthCheckResponse_NOT_SERVING
	}
	h.srv.SetServingStatus(ServiceName, st)
	h.srv.SetServingStatus("", st)
	h.log.Debug("gRPC health updated", zap.String("status", st.String()))
}
