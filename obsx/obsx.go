package obsx

import (
	"context"
	"net/http"

	api "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"

	"github.com/red2n/opentele/obsx/internal"
)

// Options holds configuration for the metrics provider.
type Options struct {
	ServiceName    string            // Service name for the metrics resource
	ServiceVersion string            // Service version, "0.0.0" when empty
	ResourceAttrs  map[string]string // Additional resource attributes
}

// Provider manages OpenTelemetry metrics provider with Prometheus export.
// The provider must be shut down when no longer needed.
type Provider struct {
	impl *internal.Provider
}

// NewProvider creates a new metrics provider with Prometheus export.
func NewProvider(ctx context.Context, opts Options) (*Provider, error) {
	impl, err := internal.NewProvider(ctx, internal.ProviderOptions{
		ServiceName:    opts.ServiceName,
		ServiceVersion: opts.ServiceVersion,
		ResourceAttrs:  opts.ResourceAttrs,
	})
	if err != nil {
		return nil, err
	}

	return &Provider{impl: impl}, nil
}

// MeterProvider returns the OpenTelemetry meter provider.
func (p *Provider) MeterProvider() *metric.MeterProvider {
	return p.impl.MeterProvider
}

// PrometheusHandler returns an HTTP handler serving the Prometheus text format.
// It is safe for concurrent use; metrics are collected on scrape.
func (p *Provider) PrometheusHandler() http.Handler {
	return p.impl.Handler()
}

// Meter returns an OpenTelemetry Meter for creating custom metrics.
func (p *Provider) Meter(name string) api.Meter {
	return p.impl.MeterProvider.Meter(name)
}

// Shutdown flushes and stops the provider. It blocks for at most five seconds.
func (p *Provider) Shutdown(ctx context.Context) error {
	return p.impl.Shutdown(ctx)
}

// EnableRuntimeMetrics registers Go runtime gauges:
//   - process_runtime_go_goroutines
//   - process_runtime_go_gc_count_total
//   - process_runtime_go_memory_heap_bytes
//   - process_runtime_go_memory_stack_bytes
//   - process_uptime_seconds
func (p *Provider) EnableRuntimeMetrics(ctx context.Context) error {
	return internal.EnableRuntimeMetrics(ctx, p.impl.MeterProvider)
}

// ServiceMetricsOptions supplies the readers behind the observable service
// instruments. Nil readers leave their instrument unregistered.
type ServiceMetricsOptions struct {
	IdleSeconds    func() float64                    // Accumulated idle seconds
	LifecycleState func() (value int64, name string) // Current lifecycle state
}

// ServiceMetrics records broker traffic.
type ServiceMetrics struct {
	impl *internal.ServiceMetrics
}

// NewServiceMetrics registers the service instruments:
//   - broker_messages_received_total{topic}
//   - service_idle_seconds_total
//   - lifecycle_state{state}
func (p *Provider) NewServiceMetrics(opts ServiceMetricsOptions) (*ServiceMetrics, error) {
	impl, err := internal.NewServiceMetrics(p.impl.MeterProvider, internal.ServiceMetricsOptions{
		IdleSeconds:    opts.IdleSeconds,
		LifecycleState: opts.LifecycleState,
	})
	if err != nil {
		return nil, err
	}
	return &ServiceMetrics{impl: impl}, nil
}

// MessageReceived counts one message received on topic.
func (m *ServiceMetrics) MessageReceived(ctx context.Context, topic string) {
	m.impl.MessageReceived(ctx, topic)
}
