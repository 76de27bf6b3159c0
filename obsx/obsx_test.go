package obsx

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProvider(t *testing.T) {
	tests := []struct {
		name    string
		opts    Options
		wantErr bool
	}{
		{
			name: "valid options",
			opts: Options{ServiceName: "Service", ServiceVersion: "1.0.0"},
		},
		{
			name:    "missing service name",
			opts:    Options{ServiceVersion: "1.0.0"},
			wantErr: true,
		},
		{
			name: "with resource attributes",
			opts: Options{
				ServiceName:   "Service",
				ResourceAttrs: map[string]string{"deployment.environment": "test"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider, err := NewProvider(context.Background(), tt.opts)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, provider.MeterProvider())

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			assert.NoError(t, provider.Shutdown(ctx))
		})
	}
}

func TestProvider_ServiceMetricsScrape(t *testing.T) {
	ctx := context.Background()
	provider, err := NewProvider(ctx, Options{ServiceName: "Service"})
	require.NoError(t, err)
	defer provider.Shutdown(ctx)

	require.NoError(t, provider.EnableRuntimeMetrics(ctx))
	metrics, err := provider.NewServiceMetrics(ServiceMetricsOptions{
		IdleSeconds:    func() float64 { return 60 },
		LifecycleState: func() (int64, string) { return 3, "serving" },
	})
	require.NoError(t, err)
	metrics.MessageReceived(ctx, "net.navin.connection")

	w := httptest.NewRecorder()
	provider.PrometheusHandler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "broker_messages_received_total")
	assert.Contains(t, body, "service_idle_seconds_total 60")
	assert.Contains(t, body, `state="serving"`)
	assert.Contains(t, body, "process_runtime_go_goroutines")
}

func TestProvider_Meter(t *testing.T) {
	provider, err := NewProvider(context.Background(), Options{ServiceName: "Service"})
	require.NoError(t, err)
	defer provider.Shutdown(context.Background())

	counter, err := provider.Meter("custom").Int64Counter("custom_total")
	require.NoError(t, err)
	counter.Add(context.Background(), 1)
}
