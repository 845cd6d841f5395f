package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// ErrNotStarted é devolvido por Token antes do primeiro fetch.
var ErrNotStarted = errors.New("auth: token manager não inicializado")

// Config descreve como o client obtém o bearer token enviado ao backend
// de administração. Com Token preenchido o valor é estático; com TokenURL
// usa-se o fluxo OAuth2 client credentials.
type Config struct {
	Token        string `yaml:"token" json:"token"`
	TokenURL     string `yaml:"token_url" json:"token_url"`
	ClientID     string `yaml:"client_id" json:"client_id"`
	ClientSecret string `yaml:"client_secret" json:"client_secret"`
	Scope        string `yaml:"scope" json:"scope"`
}

// Enabled informa se há alguma forma de autenticação configurada.
func (c Config) Enabled() bool {
	return c.Token != "" || c.TokenURL != ""
}

// RFC 6749, seção 5.1
type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
	TokenType   string `json:"token_type"`
}

// Fetcher busca um token novo e informa o seu tempo de vida.
type Fetcher func(ctx context.Context) (string, time.Duration, error)

// Manager mantém o token atual e o renova em background antes de expirar.
type Manager struct {
	mu      sync.RWMutex
	token   string
	ready   bool
	fetcher Fetcher
	logger  zerolog.Logger

	stopOnce sync.Once
	stop     chan struct{}
}

// NewManager cria um Manager para o fetcher informado.
func NewManager(fetcher Fetcher, logger zerolog.Logger) *Manager {
	return &Manager{
		fetcher: fetcher,
		logger:  logger,
		stop:    make(chan struct{}),
	}
}

// FromConfig monta o Manager adequado para cfg. Devolve nil quando a
// autenticação não está configurada.
func FromConfig(cfg Config, doer HTTPDoer, logger zerolog.Logger) *Manager {
	switch {
	case cfg.Token != "":
		return NewManager(Static(cfg.Token), logger)
	case cfg.TokenURL != "":
		return NewManager(ClientCredentials(cfg, doer), logger)
	default:
		return nil
	}
}

// Start faz o primeiro fetch de forma síncrona e agenda as renovações.
func (m *Manager) Start(ctx context.Context) error {
	token, ttl, err := m.fetcher(ctx)
	if err != nil {
		return fmt.Errorf("falha inicial ao obter token: %w", err)
	}
	m.set(token)

	if ttl > 0 {
		go m.refreshLoop(ctx, ttl)
	}
	return nil
}

// Token devolve o token atual.
func (m *Manager) Token() (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if !m.ready {
		return "", ErrNotStarted
	}
	return m.token, nil
}

// Stop encerra a renovação. Pode ser chamado mais de uma vez.
func (m *Manager) Stop() {
	m.stopOnce.Do(func() { close(m.stop) })
}

func (m *Manager) set(token string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = token
	m.ready = true
}

func (m *Manager) refreshLoop(ctx context.Context, ttl time.Duration) {
	timer := time.NewTimer(renewAfter(ttl))
	defer timer.Stop()

	for {
		select {
		case <-m.stop:
			return
		case <-ctx.Done():
			return
		case <-timer.C:
			token, next, err := m.fetcher(ctx)
			wait := 10 * time.Second
			if err != nil {
				m.logger.Warn().Err(err).Dur("retry_in", wait).Msg("falha ao renovar token")
			} else {
				m.set(token)
				wait = renewAfter(next)
				m.logger.Debug().Dur("next_refresh", wait).Msg("token renovado")
			}
			timer.Reset(wait)
		}
	}
}

// renova com 80% do tempo de vida consumido
func renewAfter(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return 5 * time.Minute
	}
	return time.Duration(float64(ttl) * 0.8)
}

// Static devolve sempre o mesmo token, sem expiração.
func Static(token string) Fetcher {
	return func(context.Context) (string, time.Duration, error) {
		if token == "" {
			return "", 0, errors.New("token estático vazio")
		}
		return token, 0, nil
	}
}

// HTTPDoer é satisfeito por *http.Client.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// ClientCredentials busca tokens no TokenURL com grant_type=client_credentials.
func ClientCredentials(cfg Config, doer HTTPDoer) Fetcher {
	if doer == nil {
		doer = &http.Client{Timeout: 10 * time.Second}
	}
	return func(ctx context.Context) (string, time.Duration, error) {
		form := url.Values{}
		form.Set("grant_type", "client_credentials")
		form.Set("client_id", cfg.ClientID)
		form.Set("client_secret", cfg.ClientSecret)
		if cfg.Scope != "" {
			form.Set("scope", cfg.Scope)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, cfg.TokenURL, strings.NewReader(form.Encode()))
		if err != nil {
			return "", 0, fmt.Errorf("erro ao criar request: %w", err)
		}
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.Header.Set("Accept", "application/json")

		resp, err := doer.Do(req)
		if err != nil {
			return "", 0, fmt.Errorf("erro de conexão oauth: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 400 {
			return "", 0, fmt.Errorf("oauth provider retornou erro: %d", resp.StatusCode)
		}

		var body tokenResponse
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			return "", 0, fmt.Errorf("erro decode json token: %w", err)
		}
		if body.AccessToken == "" {
			return "", 0, errors.New("access_token veio vazio")
		}
		return body.AccessToken, time.Duration(body.ExpiresIn) * time.Second, nil
	}
}
