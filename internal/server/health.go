package server

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// HealthServiceName is the health-check service name reported next to the
// overall ("") status.
const HealthServiceName = "herobound.QuestServer"

// Pinger reports whether a dependency is usable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthMonitor pings the store periodically and mirrors the result into a
// gRPC health server.
type HealthMonitor struct {
	pinger   Pinger
	health   *health.Server
	interval time.Duration
	timeout  time.Duration
	logger   *zap.Logger

	stopOnce sync.Once
	stop     chan struct{}
}

// NewHealthMonitor creates a HealthMonitor. A non-positive interval defaults to 30s.
//
// Precondition: pinger, hs and logger must be non-nil.
func NewHealthMonitor(pinger Pinger, hs *health.Server, interval time.Duration, logger *zap.Logger) *HealthMonitor {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &HealthMonitor{
		pinger:   pinger,
		health:   hs,
		interval: interval,
		timeout:  5 * time.Second,
		logger:   logger,
		stop:     make(chan struct{}),
	}
}

// Check pings once and publishes the resulting status.
//
// Postcondition: Both "" and HealthServiceName report the returned status.
func (m *HealthMonitor) Check(ctx context.Context) healthpb.HealthCheckResponse_ServingStatus {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	status := healthpb.HealthCheckResponse_SERVING
	if err := m.pinger.Ping(ctx); err != nil {
		m.logger.Warn("store health check failed", zap.Error(err))
		status = healthpb.HealthCheckResponse_NOT_SERVING
	}
	m.health.SetServingStatus("", status)
	m.health.SetServingStatus(HealthServiceName, status)
	return status
}

// Start checks immediately and then every interval until Stop or ctx ends.
func (m *HealthMonitor) Start(ctx context.Context) error {
	m.Check(ctx)
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			m.Check(ctx)
		case <-m.stop:
			return nil
		case <-ctx.Done():
			return nil
		}
	}
}

// Stop ends the loop and marks every service NOT_SERVING.
func (m *HealthMonitor) Stop() {
	m.stopOnce.Do(func() {
		close(m.stop)
		m.health.Shutdown()
	})
}
