package metrics

// Provider define o contrato para envio de métricas.
// Permite trocar Datadog por outro backend sem alterar gateway ou client.
type Provider interface {
	Count(name string, value float64, tags []string) error
	Gauge(name string, value float64, tags []string) error
	Histogram(name string, value float64, tags []string) error
}

// Nomes das métricas emitidas pelo gateway.
const (
	GatewayRequests  = "gateway.requests"
	GatewayLatencyMS = "gateway.latency_ms"
	GatewayPanics    = "gateway.panics"
)

// Noop descarta todas as métricas.
type Noop struct{}

func (Noop) Count(string, float64, []string) error     { return nil }
func (Noop) Gauge(string, float64, []string) error     { return nil }
func (Noop) Histogram(string, float64, []string) error { return nil }
