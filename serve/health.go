package serve

import (
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
)

// Reporter publishes per-plugin serving state through the standard gRPC
// health protocol. The lifecycle controller calls SetServing on enable
// and disable; health checkers query the plugin by name as the service.
type Reporter struct {
	hs *health.Server
}

// SetServing marks the named plugin SERVING or NOT_SERVING.
func (r *Reporter) SetServing(name string, up bool) {
	status := grpc_health_v1.HealthCheckResponse_NOT_SERVING
	if up {
		status = grpc_health_v1.HealthCheckResponse_SERVING
	}
	r.hs.SetServingStatus(name, status)
}

// NopReporter discards serving updates, for hosts that do not expose a
// health endpoint.
type NopReporter struct{}

// SetServing does nothing.
func (NopReporter) SetServing(name string, up bool) {}
