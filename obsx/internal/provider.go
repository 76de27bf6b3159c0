// Package internal provides internal implementation for the obsx package.
package internal

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
)

const (
	// ShutdownTimeout bounds Provider.Shutdown.
	ShutdownTimeout = 5 * time.Second
	// DefaultServiceVersion is reported when no version is configured.
	DefaultServiceVersion = "0.0.0"
)

var errNoServiceName = errors.New("service name is required")

// ProviderOptions holds configuration for the metrics provider.
type ProviderOptions struct {
	ServiceName    string
	ServiceVersion string
	ResourceAttrs  map[string]string
}

// Provider owns a meter provider and the private Prometheus registry it
// exports to. Nothing is installed globally.
type Provider struct {
	MeterProvider *metric.MeterProvider
	registry      *promclient.Registry
}

// NewProvider builds the resource, the registry and the meter provider.
func NewProvider(ctx context.Context, opts ProviderOptions) (*Provider, error) {
	if opts.ServiceName == "" {
		return nil, errNoServiceName
	}
	if opts.ServiceVersion == "" {
		opts.ServiceVersion = DefaultServiceVersion
	}

	res, err := resource.New(ctx, resource.WithAttributes(resourceAttrs(opts)...))
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	registry := promclient.NewRegistry()
	if err := registry.Register(collectors.NewBuildInfoCollector()); err != nil {
		return nil, fmt.Errorf("failed to register build info: %w", err)
	}

	exporter, err := prometheus.New(
		prometheus.WithRegisterer(registry),
		prometheus.WithoutUnits(),
		prometheus.WithoutScopeInfo(),
		prometheus.WithoutCounterSuffixes(), // instrument names already end in _total
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create prometheus exporter: %w", err)
	}

	return &Provider{
		MeterProvider: metric.NewMeterProvider(metric.WithResource(res), metric.WithReader(exporter)),
		registry:      registry,
	}, nil
}

// resourceAttrs returns the service identity followed by the extra
// attributes in key order.
func resourceAttrs(opts ProviderOptions) []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		semconv.ServiceName(opts.ServiceName),
		semconv.ServiceVersion(opts.ServiceVersion),
	}

	keys := make([]string, 0, len(opts.ResourceAttrs))
	for k := range opts.ResourceAttrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		attrs = append(attrs, attribute.String(k, opts.ResourceAttrs[k]))
	}
	return attrs
}

// Handler serves the registry in the Prometheus exposition format. A
// provider without a registry answers 503.
func (p *Provider) Handler() http.Handler {
	if p.registry == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "metrics not available", http.StatusServiceUnavailable)
		})
	}
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{
		ErrorHandling:     promhttp.ContinueOnError,
		EnableOpenMetrics: true,
	})
}

// Shutdown stops the meter provider within ShutdownTimeout.
func (p *Provider) Shutdown(ctx context.Context) error {
	if p.MeterProvider == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, ShutdownTimeout)
	defer cancel()
	if err := p.MeterProvider.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown meter provider: %w", err)
	}
	return nil
}
