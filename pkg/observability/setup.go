package observability

import (
	"fmt"

	"github.com/DataDog/datadog-go/v5/statsd"
	"github.com/raywall/insurance-sim/pkg/config"
	"github.com/raywall/insurance-sim/pkg/metrics"
)

// StatsdClient é o subconjunto de statsd.ClientInterface usado aqui.
type StatsdClient interface {
	Count(name string, value int64, tags []string, rate float64) error
	Gauge(name string, value float64, tags []string, rate float64) error
	Histogram(name string, value float64, tags []string, rate float64) error
	Close() error
}

// DatadogProvider adapta o client DogStatsD para metrics.Provider.
type DatadogProvider struct {
	client StatsdClient
	tags   []string
}

// NewDatadogProvider envolve um client já criado. tags são anexadas a todas
// as métricas.
func NewDatadogProvider(client StatsdClient, tags ...string) *DatadogProvider {
	return &DatadogProvider{client: client, tags: tags}
}

func (d *DatadogProvider) Count(name string, value float64, tags []string) error {
	return d.client.Count(name, int64(value), d.merge(tags), 1)
}

func (d *DatadogProvider) Gauge(name string, value float64, tags []string) error {
	return d.client.Gauge(name, value, d.merge(tags), 1)
}

func (d *DatadogProvider) Histogram(name string, value float64, tags []string) error {
	return d.client.Histogram(name, value, d.merge(tags), 1)
}

// Close descarrega o buffer do client.
func (d *DatadogProvider) Close() error {
	return d.client.Close()
}

func (d *DatadogProvider) merge(tags []string) []string {
	if len(d.tags) == 0 {
		return tags
	}
	out := make([]string, 0, len(d.tags)+len(tags))
	out = append(out, d.tags...)
	return append(out, tags...)
}

// SetupMetrics inicializa o provider conforme o YAML: Datadog tem
// precedência sobre Prometheus; sem nenhum dos dois, metrics.Noop.
func SetupMetrics(cfg config.MetricsConf, service string) (metrics.Provider, error) {
	if !cfg.Datadog.Enabled {
		if cfg.Prometheus.Enabled {
			return NewPrometheusProvider(cfg.Prometheus.Namespace), nil
		}
		return metrics.Noop{}, nil
	}

	opts := []statsd.Option{
		statsd.WithNamespace(cfg.Datadog.Namespace),
	}
	client, err := statsd.New(cfg.Datadog.Addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("falha ao conectar no datadog statsd: %w", err)
	}

	var tags []string
	if service != "" {
		tags = append(tags, "service:"+service)
	}
	return NewDatadogProvider(client, tags...), nil
}
