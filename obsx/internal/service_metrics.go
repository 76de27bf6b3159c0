package internal

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// ServiceMetricsOptions supplies the readers behind the observable instruments.
// A nil reader leaves its instrument unregistered.
type ServiceMetricsOptions struct {
	IdleSeconds    func() float64
	LifecycleState func() (value int64, name string)
}

// ServiceMetrics holds the synchronous instruments of the service.
type ServiceMetrics struct {
	received metric.Int64Counter
}

// NewServiceMetrics registers the broker counter plus the idle-time and
// lifecycle-state observables on meterProvider.
func NewServiceMetrics(meterProvider *sdkmetric.MeterProvider, opts ServiceMetricsOptions) (*ServiceMetrics, error) {
	if meterProvider == nil {
		return nil, errNilMeterProvider
	}
	meter := meterProvider.Meter(MeterPrefix + "/service")

	received, err := meter.Int64Counter(
		"broker_messages_received_total",
		metric.WithDescription("Messages received from the broker, by topic"),
		metric.WithUnit("{message}"),
	)
	if err != nil {
		return nil, err
	}

	if opts.IdleSeconds != nil {
		read := opts.IdleSeconds
		_, err = meter.Float64ObservableCounter(
			"service_idle_seconds_total",
			metric.WithDescription("Accumulated idle seconds observed by the idle monitor"),
			metric.WithUnit("s"),
			metric.WithFloat64Callback(func(_ context.Context, o metric.Float64Observer) error {
				o.Observe(read())
				return nil
			}),
		)
		if err != nil {
			return nil, err
		}
	}

	if opts.LifecycleState != nil {
		read := opts.LifecycleState
		_, err = meter.Int64ObservableGauge(
			"lifecycle_state",
			metric.WithDescription("Current lifecycle state of the service"),
			metric.WithInt64Callback(func(_ context.Context, o metric.Int64Observer) error {
				value, name := read()
				o.Observe(value, metric.WithAttributes(attribute.String("state", name)))
				return nil
			}),
		)
		if err != nil {
			return nil, err
		}
	}

	return &ServiceMetrics{received: received}, nil
}

// MessageReceived increments the broker counter for topic.
func (m *ServiceMetrics) MessageReceived(ctx context.Context, topic string) {
	m.received.Add(ctx, 1, metric.WithAttributes(attribute.String("topic", topic)))
}
