package observability

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/raywall/insurance-sim/pkg/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheusProvider_Count(t *testing.T) {
	p := NewPrometheusProvider("insurance_sim")

	require.NoError(t, p.Count(metrics.GatewayRequests, 1, []string{"method:GET", "route:/api/claims", "status:200"}))
	require.NoError(t, p.Count(metrics.GatewayRequests, 2, []string{"status:200", "route:/api/claims", "method:GET"}))
	require.NoError(t, p.Count(metrics.GatewayRequests, 1, []string{"method:POST", "route:/api/claims", "status:201"}))

	vec := p.counters[metrics.GatewayRequests]
	assert.Equal(t, 3.0, testutil.ToFloat64(vec.WithLabelValues("GET", "/api/claims", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(vec.WithLabelValues("POST", "/api/claims", "201")))

	// conjunto de labels diferente do registrado
	assert.Error(t, p.Count(metrics.GatewayRequests, 1, []string{"method:GET"}))
}

func TestPrometheusProvider_GaugeAndHistogram(t *testing.T) {
	p := NewPrometheusProvider("")

	require.NoError(t, p.Gauge("store.records", 5, []string{"collection:claims"}))
	require.NoError(t, p.Gauge("store.records", 4, []string{"collection:claims"}))
	assert.Equal(t, 4.0, testutil.ToFloat64(p.gauges["store.records"].WithLabelValues("claims")))

	require.NoError(t, p.Histogram(metrics.GatewayLatencyMS, 12, nil))
	require.NoError(t, p.Histogram(metrics.GatewayLatencyMS, 30, nil))
	assert.Equal(t, 1, testutil.CollectAndCount(p.histograms[metrics.GatewayLatencyMS]))
}

func TestPrometheusProvider_Handler(t *testing.T) {
	p := NewPrometheusProvider("insurance_sim")
	require.NoError(t, p.Count(metrics.GatewayPanics, 1, []string{"route:/api/boom"}))

	rec := httptest.NewRecorder()
	p.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, _ := io.ReadAll(rec.Body)
	assert.Contains(t, string(body), `insurance_sim_gateway_panics_total{route="/api/boom"} 1`)
}

func TestSanitize(t *testing.T) {
	assert.Equal(t, "gateway_latency_ms", sanitize("gateway.latency_ms"))
	assert.Equal(t, "insurance_sim", sanitize("insurance-sim."))
}
