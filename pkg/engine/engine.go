package engine

import (
	"context"
	"fmt"
	"net/http"

	"github.com/raywall/insurance-sim/pkg/auth"
	"github.com/raywall/insurance-sim/pkg/client"
	"github.com/raywall/insurance-sim/pkg/config"
	"github.com/raywall/insurance-sim/pkg/gateway"
	"github.com/raywall/insurance-sim/pkg/insurance"
	"github.com/raywall/insurance-sim/pkg/logger"
	"github.com/raywall/insurance-sim/pkg/metrics"
	"github.com/raywall/insurance-sim/pkg/observability"
	"github.com/raywall/insurance-sim/pkg/router"
	"github.com/raywall/insurance-sim/pkg/rules"
	"github.com/raywall/insurance-sim/pkg/store"
	"github.com/rs/zerolog"
)

// ServiceEngine concentra tudo que é montado em tempo de boot a partir do
// AppConfig: logger, métricas, regras CEL, store, backend e gateway.
type ServiceEngine struct {
	ConfigSource string
	Config       *config.AppConfig
	Logger       zerolog.Logger
	Metrics      metrics.Provider
	RuleManager  *rules.RuleManager
	Rules        *rules.RuleSet
	Store        *store.Store
	Backend      *insurance.Backend
	Registry     *router.Registry
	Gateway      *gateway.Gateway
}

// Option customiza a montagem da engine.
type Option func(*options)

type options struct {
	logger  *zerolog.Logger
	metrics metrics.Provider
	backend []insurance.Option
}

// WithLogger substitui o logger derivado de service.logging.
func WithLogger(l zerolog.Logger) Option {
	return func(o *options) { o.logger = &l }
}

// WithMetrics substitui o provider derivado de service.metrics.
func WithMetrics(p metrics.Provider) Option {
	return func(o *options) { o.metrics = p }
}

// WithBackendOptions repassa opções ao insurance.Backend (ex: relógio fixo).
func WithBackendOptions(opts ...insurance.Option) Option {
	return func(o *options) { o.backend = append(o.backend, opts...) }
}

func NewServiceEngine(cfg *config.AppConfig, configSource string, opts ...Option) (*ServiceEngine, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	var log zerolog.Logger
	if o.logger != nil {
		log = *o.logger
	} else {
		log = logger.Configure(cfg.Service.Logging, cfg.Service.Name)
	}

	provider := o.metrics
	if provider == nil {
		var err error
		provider, err = observability.SetupMetrics(cfg.Service.Metrics, cfg.Service.Name)
		if err != nil {
			return nil, fmt.Errorf("falha métricas: %w", err)
		}
	}

	rm, err := rules.NewRuleManager()
	if err != nil {
		return nil, fmt.Errorf("falha fatal ao iniciar RuleManager: %w", err)
	}
	ruleSet, err := rules.NewRuleSet(rm, cfg.Rules())
	if err != nil {
		return nil, fmt.Errorf("falha ao compilar validações: %w", err)
	}

	st := store.New(store.DefaultCollections)
	backendOpts := append([]insurance.Option{
		insurance.WithRules(ruleSet),
		insurance.WithLogger(log.With().Str("component", "backend").Logger()),
	}, o.backend...)
	backend := insurance.NewBackend(st, backendOpts...)

	prefix := cfg.Service.APIPrefix
	if prefix == "" {
		prefix = config.DefaultAPIPrefix
	}
	reg := router.NewRegistry()
	backend.Register(reg, prefix)

	gw := gateway.New(reg,
		gateway.WithPrefix(prefix),
		gateway.WithLatency(cfg.Service.GetLatency()),
		gateway.WithLogger(log.With().Str("component", "gateway").Logger()),
		gateway.WithMetrics(provider),
	)

	log.Info().
		Str("prefix", prefix).
		Int("routes", reg.Len()).
		Int("rules", ruleSet.Len()).
		Dur("latency", cfg.Service.GetLatency()).
		Msg("simulador inicializado")

	return &ServiceEngine{
		ConfigSource: configSource,
		Config:       cfg,
		Logger:       log,
		Metrics:      provider,
		RuleManager:  rm,
		Rules:        ruleSet,
		Store:        st,
		Backend:      backend,
		Registry:     reg,
		Gateway:      gw,
	}, nil
}

// MetricsHandler devolve o path e o handler de exposição quando o provider
// é Prometheus. Com outros providers devolve ("", nil).
func (se *ServiceEngine) MetricsHandler() (string, http.Handler) {
	prom, ok := se.Metrics.(*observability.PrometheusProvider)
	if !ok {
		return "", nil
	}
	return se.Config.Service.Metrics.Prometheus.Path, prom.Handler()
}

// Reload volta o backend ao estado inicial (seed).
func (se *ServiceEngine) Reload() {
	se.Backend.Reload()
	se.Logger.Info().Msg("estado simulado recarregado")
}

// NewClient monta o client resiliente descrito em cfg.Client. Com simulate,
// o transporte passa pelo gateway em memória. Quando há autenticação
// configurada, o auth.Manager é iniciado e devolvido para o chamador parar.
func NewClient(ctx context.Context, cfg *config.AppConfig, gw *gateway.Gateway, log zerolog.Logger) (*client.Client, *auth.Manager, error) {
	httpClient := &http.Client{}
	if gw != nil {
		gateway.Install(httpClient, gw)
	}

	// retries: 0 explícito na configuração desliga o retry
	retries := cfg.Client.GetRetries()
	if retries == 0 {
		retries = client.NoRetries
	}
	c := client.New(client.Config{
		BaseURL:    cfg.Client.BaseURL,
		Timeout:    cfg.Client.GetTimeout(),
		Retries:    retries,
		RetryDelay: cfg.Client.GetRetryDelay(),
		Headers:    cfg.Client.Headers,
	}, client.WithHTTPClient(httpClient), client.WithLogger(log))
	c.Errors.Use(client.LogErrors(log))

	mgr := auth.FromConfig(cfg.Client.Auth, httpClient, log.With().Str("component", "auth").Logger())
	if mgr == nil {
		return c, nil, nil
	}
	if err := mgr.Start(ctx); err != nil {
		return nil, nil, fmt.Errorf("erro iniciando autenticação: %w", err)
	}
	c.Requests.Use(client.BearerToken(mgr))
	return c, mgr, nil
}
