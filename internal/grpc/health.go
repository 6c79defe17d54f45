package grpc

import (
	"context"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// ServiceName is the health service name clients check for the storefront.
const ServiceName = "storefront"

const DefaultCheckInterval = 10 * time.Second

type PingFunc func(ctx context.Context) error

// HealthChecker publishes the storefront's serving status, following storage reachability.
type HealthChecker struct {
	health   *health.Server
	ping     PingFunc
	interval time.Duration

	mu      sync.Mutex
	serving bool

	stop chan struct{}
	wg   sync.WaitGroup
}

func NewHealthChecker(ping PingFunc, interval time.Duration) *HealthChecker {
	if interval <= 0 {
		interval = DefaultCheckInterval
	}
	h := &HealthChecker{
		health:   health.NewServer(),
		ping:     ping,
		interval: interval,
		stop:     make(chan struct{}),
	}
	h.health.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_NOT_SERVING)
	return h
}

// Check pings storage once and updates the published status.
func (h *HealthChecker) Check(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	err := h.ping(ctx)
	serving := err == nil

	h.mu.Lock()
	changed := serving != h.serving
	h.serving = serving
	h.mu.Unlock()

	status := healthpb.HealthCheckResponse_SERVING
	if !serving {
		status = healthpb.HealthCheckResponse_NOT_SERVING
	}
	h.health.SetServingStatus(ServiceName, status)
	h.health.SetServingStatus("", status)

	if changed {
		log.WithFields(log.Fields{"service": ServiceName, "status": status.String()}).WithError(err).Info("health status changed")
	}
	return serving
}

// Start runs Check immediately and then on every interval until Close.
func (h *HealthChecker) Start() {
	h.Check(context.Background())

	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		ticker := time.NewTicker(h.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				h.Check(context.Background())
			case <-h.stop:
				return
			}
		}
	}()
}

// Close stops the checks and reports NOT_SERVING to every watcher.
func (h *HealthChecker) Close() {
	close(h.stop)
	h.wg.Wait()
	h.health.Shutdown()
}

// NewServer returns a gRPC server exposing health and reflection, instrumented with OpenTelemetry.
func NewServer(h *HealthChecker) *grpc.Server {
	s := grpc.NewServer(grpc.StatsHandler(otelgrpc.NewServerHandler()))
	healthpb.RegisterHealthServer(s, h.health)

	// Enable reflection for grpcurl/grpcui
	reflection.Register(s)
	return s
}
