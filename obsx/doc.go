// Package obsx provides Prometheus-based metrics for the opentele service.
//
// # Overview
//
// obsx constructs an OpenTelemetry meter provider whose only reader is a
// Prometheus exporter bound to a private registry. The registry is served by
// PrometheusHandler on the ops listener; nothing is pushed remotely.
//
// # Instruments
//
//   - go_build_info from the Prometheus client collectors
//   - Go runtime gauges (goroutines, heap, stack, GC cycles, uptime)
//   - broker_messages_received_total, by topic
//   - service_idle_seconds_total, read from the idle monitor on scrape
//   - lifecycle_state, the orchestrator state as a number with a state label
//
// # Usage
//
//	provider, err := obsx.NewProvider(ctx, obsx.Options{ServiceName: "Service"})
//	if err != nil {
//		return err
//	}
//	defer provider.Shutdown(ctx)
//
//	_ = provider.EnableRuntimeMetrics(ctx)
//	metrics, _ := provider.NewServiceMetrics(obsx.ServiceMetricsOptions{
//		IdleSeconds: func() float64 { return state.TotalIdle().Seconds() },
//	})
//	metrics.MessageReceived(ctx, "net.navin.connection")
package obsx
