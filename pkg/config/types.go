package config

import (
	"time"

	"github.com/raywall/insurance-sim/pkg/auth"
)

// Valores aplicados por ApplyDefaults.
const (
	DefaultAPIPrefix  = "/api"
	DefaultTimeout    = 10 * time.Second
	DefaultRetries    = 1
	DefaultRetryDelay = time.Second
)

// AppConfig representa a estrutura raiz do arquivo YAML do simulador.
type AppConfig struct {
	Version     string                    `yaml:"version" validate:"required"`
	Service     ServiceDetails            `yaml:"service" validate:"required"`
	Client      ClientConf                `yaml:"client"`
	Collections map[string]CollectionConf `yaml:"collections" validate:"dive"`
}

// ServiceDetails contém os metadados e configurações de runtime do gateway.
type ServiceDetails struct {
	Name    string `yaml:"name" validate:"required,hostname_rfc1123"`
	Runtime string `yaml:"runtime" validate:"required,oneof=local lambda"`
	Port    int    `yaml:"port" env:"PORT" validate:"required_if=Runtime local"`
	// Prefixo das rotas simuladas (padrão /api).
	APIPrefix string `yaml:"api_prefix" validate:"omitempty,startswith=/"`
	// Latência artificial aplicada a cada chamada simulada. Ex: "300ms".
	Latency string `yaml:"latency"`
	// URL da fila SQS cujas mensagens resetam o store para o seed.
	ResetQueue string      `yaml:"reset_queue" env:"RESET_QUEUE_URL"`
	Logging    LoggingConf `yaml:"logging"`
	Metrics    MetricsConf `yaml:"metrics"`
}

// ClientConf configura o client resiliente usado pelo toolkit.
type ClientConf struct {
	BaseURL    string            `yaml:"base_url" validate:"omitempty,url"`
	Timeout    string            `yaml:"timeout"`
	Retries    *int              `yaml:"retries" validate:"omitempty,gte=0"`
	RetryDelay string            `yaml:"retry_delay"`
	Headers    map[string]string `yaml:"headers"`
	Auth       auth.Config       `yaml:"auth"`
}

// CollectionConf agrupa as regras CEL avaliadas nas escritas de uma coleção.
type CollectionConf struct {
	Validations []ValidationRule `yaml:"validations" validate:"dive"`
}

type ErrorResponse struct {
	Code int    `yaml:"code" validate:"gte=400,lt=600"`
	Msg  string `yaml:"msg" validate:"required"`
}

type ValidationRule struct {
	ID     string        `yaml:"id" validate:"required"`
	Expr   string        `yaml:"expr" validate:"required"`
	OnFail ErrorResponse `yaml:"on_fail" validate:"required"`
}

type LoggingConf struct {
	Enabled bool   `yaml:"enabled"`
	Level   string `yaml:"level" validate:"omitempty,oneof=debug info warn error"`
	Format  string `yaml:"format" validate:"omitempty,oneof=json console"`
}

type MetricsConf struct {
	Datadog    DatadogConf    `yaml:"datadog"`
	Prometheus PrometheusConf `yaml:"prometheus"`
}

type DatadogConf struct {
	Enabled   bool   `yaml:"enabled" env:"DD_ENABLED"`
	Addr      string `yaml:"addr" env:"DD_AGENT_HOST" validate:"required_if=Enabled true"`
	Namespace string `yaml:"namespace"`
}

// PrometheusConf expõe as métricas do gateway no servidor HTTP local.
type PrometheusConf struct {
	Enabled   bool   `yaml:"enabled"`
	Path      string `yaml:"path" validate:"omitempty,startswith=/"`
	Namespace string `yaml:"namespace"`
}

// ApplyDefaults preenche os campos opcionais ausentes.
func (c *AppConfig) ApplyDefaults() {
	if c.Service.APIPrefix == "" {
		c.Service.APIPrefix = DefaultAPIPrefix
	}
	if c.Service.Logging.Level == "" {
		c.Service.Logging.Level = "info"
	}
	if c.Service.Logging.Format == "" {
		c.Service.Logging.Format = "json"
	}
	if c.Service.Metrics.Prometheus.Path == "" {
		c.Service.Metrics.Prometheus.Path = "/metrics"
	}
	if c.Client.Timeout == "" {
		c.Client.Timeout = DefaultTimeout.String()
	}
	if c.Client.RetryDelay == "" {
		c.Client.RetryDelay = DefaultRetryDelay.String()
	}
	if c.Client.Retries == nil {
		retries := DefaultRetries
		c.Client.Retries = &retries
	}
}

// GetLatency devolve a latência artificial (0 quando ausente ou inválida).
func (s ServiceDetails) GetLatency() time.Duration {
	return parseDuration(s.Latency, 0)
}

func (c ClientConf) GetTimeout() time.Duration {
	return parseDuration(c.Timeout, DefaultTimeout)
}

// GetRetries devolve o número de retries (padrão DefaultRetries).
func (c ClientConf) GetRetries() int {
	if c.Retries == nil {
		return DefaultRetries
	}
	return *c.Retries
}

func (c ClientConf) GetRetryDelay() time.Duration {
	return parseDuration(c.RetryDelay, DefaultRetryDelay)
}

// Rules devolve as validações declaradas por coleção.
func (c *AppConfig) Rules() map[string][]ValidationRule {
	out := make(map[string][]ValidationRule, len(c.Collections))
	for name, col := range c.Collections {
		if len(col.Validations) > 0 {
			out[name] = col.Validations
		}
	}
	return out
}

func parseDuration(s string, def time.Duration) time.Duration {
	if s == "" {
		return def
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return def
	}
	return d
}
